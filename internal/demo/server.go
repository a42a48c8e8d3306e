// Package demo serves a simulated clinic backend for development and
// acceptance tests. It implements the same REST contracts as the real
// backend with seeded in-memory data and records what was submitted.
//
// This MUST never be pointed at by a production console; it is a
// stand-in for the external collaborator, not a server product.
package demo

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wolfman30/practice-admin-console/internal/clinicapi"
	"github.com/wolfman30/practice-admin-console/pkg/logging"
)

// modifierSeed scopes a modifier to professions; empty means unscoped.
type modifierSeed struct {
	clinicapi.BillingModifier
	Professions []string
}

// Server is the in-memory clinic backend.
type Server struct {
	mu        sync.Mutex
	codes     []clinicapi.BillingCode
	modifiers []modifierSeed
	sessions  map[int64][]clinicapi.BillingSession
	bookings  map[int64][]clinicapi.PatientBooking
	saved     []clinicapi.SessionSubmission
	created   []clinicapi.BookingRecord
	updated   map[int64]clinicapi.BookingRecord

	latency time.Duration
	logger  *logging.Logger
}

// ServerOption configures the mock backend.
type ServerOption func(*Server)

// WithLatency delays every response, for exercising request sequencing.
func WithLatency(d time.Duration) ServerOption {
	return func(s *Server) { s.latency = d }
}

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates a mock backend with seeded reference data.
func NewServer(opts ...ServerOption) *Server {
	s := &Server{
		codes: []clinicapi.BillingCode{
			{Code: "A1", Description: "Initial consultation", BaseFee: 100},
			{Code: "B2", Description: "Follow-up consultation", BaseFee: 65.50},
			{Code: "C3", Description: "Extended treatment", BaseFee: 180},
		},
		modifiers: []modifierSeed{
			{BillingModifier: clinicapi.BillingModifier{Code: "HALF", Description: "Half rate", Multiplier: 0.5}},
			{BillingModifier: clinicapi.BillingModifier{Code: "AFTER", Description: "After hours", Multiplier: 1.25}},
			{
				BillingModifier: clinicapi.BillingModifier{Code: "GROUP", Description: "Group session", Multiplier: 0.75},
				Professions:     []string{"physiotherapy"},
			},
		},
		sessions: map[int64][]clinicapi.BillingSession{
			3: {
				{ID: 12, Entries: []clinicapi.SessionEntry{
					{CodeID: "A1", BillingModifier: "HALF", FinalFee: 50},
				}},
			},
		},
		bookings: map[int64][]clinicapi.PatientBooking{
			1: {
				{Date: "2026-08-20", Time: "09:00", Profession: "Physiotherapy", TherapistName: "N. Adams", BillingCompleted: true, NotesCompleted: true},
				{Date: "2026-08-27", Time: "11:30", Profession: "Biokinetics", TherapistName: "C. Naidoo", BillingCompleted: false, NotesCompleted: true},
			},
		},
		updated: make(map[int64]clinicapi.BookingRecord),
		logger:  logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes mounts the clinic API contracts.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Get("/api/billing_codes", s.handleBillingCodes)
	r.Get("/api/billing_modifiers", s.handleBillingModifiers)
	r.Post("/billing-sessions", s.handleSaveSession)
	r.Get("/billing-sessions/{patientID}", s.handleListSessions)
	r.Post("/api/bookings", s.handleCreateBooking)
	r.Patch("/api/bookings/{id}", s.handleUpdateBooking)
	r.Get("/api/patient/{id}/bookings", s.handlePatientBookings)
	return r
}

// SavedSessions returns the submissions recorded so far.
func (s *Server) SavedSessions() []clinicapi.SessionSubmission {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]clinicapi.SessionSubmission, len(s.saved))
	copy(out, s.saved)
	return out
}

// CreatedBookings returns the bookings created so far.
func (s *Server) CreatedBookings() []clinicapi.BookingRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]clinicapi.BookingRecord, len(s.created))
	copy(out, s.created)
	return out
}

// UpdatedBooking returns the latest update for a booking id.
func (s *Server) UpdatedBooking(id int64) (clinicapi.BookingRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.updated[id]
	return rec, ok
}

func (s *Server) handleBillingCodes(w http.ResponseWriter, r *http.Request) {
	s.delay()
	s.mu.Lock()
	codes := make([]clinicapi.BillingCode, len(s.codes))
	copy(codes, s.codes)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, codes)
}

func (s *Server) handleBillingModifiers(w http.ResponseWriter, r *http.Request) {
	s.delay()
	profession := r.URL.Query().Get("profession")

	s.mu.Lock()
	out := make([]clinicapi.BillingModifier, 0, len(s.modifiers))
	for _, m := range s.modifiers {
		if profession == "" || len(m.Professions) == 0 || contains(m.Professions, profession) {
			out = append(out, m.BillingModifier)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	s.delay()
	var sub clinicapi.SessionSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		http.Error(w, "invalid session payload", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.saved = append(s.saved, sub)
	s.sessions[sub.Session.PatientID] = append(s.sessions[sub.Session.PatientID], clinicapi.BillingSession{
		ID:      sub.Session.ID,
		Entries: sub.Entries,
	})
	s.mu.Unlock()

	s.logger.Info("billing session recorded",
		"booking_id", sub.Session.ID,
		"patient_id", sub.Session.PatientID,
		"entries", len(sub.Entries),
	)
	writeJSON(w, http.StatusCreated, map[string]string{"status": "saved"})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	s.delay()
	patientID, err := strconv.ParseInt(chi.URLParam(r, "patientID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid patient id", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	sessions := append([]clinicapi.BillingSession(nil), s.sessions[patientID]...)
	s.mu.Unlock()
	if sessions == nil {
		sessions = []clinicapi.BillingSession{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	s.delay()
	var rec clinicapi.BookingRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "invalid booking payload", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.created = append(s.created, rec)
	s.mu.Unlock()

	s.logger.Info("booking created", "name", rec.Name, "date", rec.Date, "time", rec.Time)
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

func (s *Server) handleUpdateBooking(w http.ResponseWriter, r *http.Request) {
	s.delay()
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid booking id", http.StatusBadRequest)
		return
	}
	var rec clinicapi.BookingRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "invalid booking payload", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.updated[id] = rec
	s.mu.Unlock()

	s.logger.Info("booking updated", "booking_id", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handlePatientBookings(w http.ResponseWriter, r *http.Request) {
	s.delay()
	patientID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid patient id", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	bookings := append([]clinicapi.PatientBooking(nil), s.bookings[patientID]...)
	s.mu.Unlock()
	if bookings == nil {
		bookings = []clinicapi.PatientBooking{}
	}
	writeJSON(w, http.StatusOK, bookings)
}

// requestLogger emits structured logs for every request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		next.ServeHTTP(w, r)
		s.logger.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", reqID,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) delay() {
	if s.latency > 0 {
		time.Sleep(s.latency)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
