package clinicapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/practice-admin-console/internal/observability/metrics"
)

func TestNew(t *testing.T) {
	t.Run("creates client with defaults", func(t *testing.T) {
		client, err := New("http://localhost:8080")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.baseURL != "http://localhost:8080" {
			t.Errorf("expected baseURL http://localhost:8080, got %s", client.baseURL)
		}
	})

	t.Run("trims trailing slash", func(t *testing.T) {
		client, err := New("http://localhost:8080/")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.baseURL != "http://localhost:8080" {
			t.Errorf("expected trimmed baseURL, got %s", client.baseURL)
		}
	})

	t.Run("rejects empty base URL", func(t *testing.T) {
		if _, err := New("   "); err == nil {
			t.Fatal("expected error for empty base URL")
		}
	})

	t.Run("accepts custom HTTP client", func(t *testing.T) {
		custom := &http.Client{Timeout: 5 * time.Second}
		client, err := New("http://localhost:8080", WithHTTPClient(custom))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.httpClient != custom {
			t.Error("expected custom HTTP client to be set")
		}
	})
}

func TestClient_BillingCodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/billing_codes" {
			t.Errorf("expected path /api/billing_codes, got %s", r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("expected X-Request-ID header")
		}
		json.NewEncoder(w).Encode([]BillingCode{
			{Code: "A1", Description: "Initial consultation", BaseFee: 100},
		})
	}))
	defer server.Close()

	client, err := New(server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	codes, err := client.BillingCodes(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(codes) != 1 || codes[0].Code != "A1" || codes[0].BaseFee != 100 {
		t.Errorf("unexpected codes: %+v", codes)
	}
}

func TestClient_BillingModifiers(t *testing.T) {
	t.Run("passes profession filter", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/billing_modifiers" {
				t.Errorf("expected path /api/billing_modifiers, got %s", r.URL.Path)
			}
			if got := r.URL.Query().Get("profession"); got != "physiotherapy" {
				t.Errorf("expected profession physiotherapy, got %q", got)
			}
			json.NewEncoder(w).Encode([]BillingModifier{
				{Code: "HALF", Description: "Half rate", Multiplier: 0.5},
			})
		}))
		defer server.Close()

		client, _ := New(server.URL)
		mods, err := client.BillingModifiers(context.Background(), "physiotherapy")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(mods) != 1 || mods[0].Multiplier != 0.5 {
			t.Errorf("unexpected modifiers: %+v", mods)
		}
	})

	t.Run("empty profession stays on the query string", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !r.URL.Query().Has("profession") {
				t.Error("expected profession query parameter even when empty")
			}
			json.NewEncoder(w).Encode([]BillingModifier{})
		}))
		defer server.Close()

		client, _ := New(server.URL)
		if _, err := client.BillingModifiers(context.Background(), ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestClient_SaveBillingSession(t *testing.T) {
	t.Run("posts session payload", func(t *testing.T) {
		var got SessionSubmission
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/billing-sessions" {
				t.Errorf("expected path /billing-sessions, got %s", r.URL.Path)
			}
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			if ct := r.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected JSON content type, got %s", ct)
			}
			json.NewDecoder(r.Body).Decode(&got)
			w.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		client, _ := New(server.URL)
		err := client.SaveBillingSession(context.Background(), SessionSubmission{
			Session: Session{ID: 7, PatientID: 3, TotalAmount: 200},
			Entries: []SessionEntry{{CodeID: "A1", FinalFee: 200}},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Session.ID != 7 || len(got.Entries) != 1 || got.Entries[0].CodeID != "A1" {
			t.Errorf("unexpected payload received: %+v", got)
		}
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer server.Close()

		client, _ := New(server.URL)
		err := client.SaveBillingSession(context.Background(), SessionSubmission{})
		if err == nil {
			t.Fatal("expected error for 500 response")
		}
	})
}

func TestClient_Bookings(t *testing.T) {
	t.Run("create posts to the collection", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/api/bookings" {
				t.Errorf("expected POST /api/bookings, got %s %s", r.Method, r.URL.Path)
			}
			w.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		client, _ := New(server.URL)
		if err := client.CreateBooking(context.Background(), BookingRecord{Name: "J Smith"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("update patches the resource", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPatch || r.URL.Path != "/api/bookings/42" {
				t.Errorf("expected PATCH /api/bookings/42, got %s %s", r.Method, r.URL.Path)
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client, _ := New(server.URL)
		if err := client.UpdateBooking(context.Background(), 42, BookingRecord{ID: 42}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestClient_PatientBookings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/patient/3/bookings" {
			t.Errorf("expected path /api/patient/3/bookings, got %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]PatientBooking{
			{Date: "2026-08-20", Time: "09:00", TherapistName: "N. Adams", BillingCompleted: true},
		})
	}))
	defer server.Close()

	client, _ := New(server.URL)
	bookings, err := client.PatientBookings(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bookings) != 1 || !bookings[0].BillingCompleted {
		t.Errorf("unexpected bookings: %+v", bookings)
	}
}

func TestClient_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewAPIMetrics(reg)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]BillingCode{})
	}))
	defer server.Close()

	client, _ := New(server.URL, WithMetrics(m))
	if _, err := client.BillingCodes(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, fam := range families {
		if fam.GetName() == "practice_api_requests_total" {
			found = true
		}
	}
	if !found {
		t.Error("expected practice_api_requests_total to be registered after a request")
	}
}
