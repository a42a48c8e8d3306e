// Package booking implements the bookings table and the booking modal:
// sorting, form population, create/update submission and the per-patient
// bookings list.
package booking

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/text/collate"

	"github.com/wolfman30/practice-admin-console/internal/clinicapi"
	"github.com/wolfman30/practice-admin-console/internal/practice"
	"github.com/wolfman30/practice-admin-console/internal/ui"
	"github.com/wolfman30/practice-admin-console/pkg/logging"
)

var bookingTracer = otel.Tracer("practice.internal.booking")

// Completion glyphs for the billing/notes columns of the bookings list.
const (
	GlyphDone    = "✓"
	GlyphPending = "✗"
)

// API is the slice of the clinic client the booking controller needs.
type API interface {
	CreateBooking(ctx context.Context, rec clinicapi.BookingRecord) error
	UpdateBooking(ctx context.Context, id int64, rec clinicapi.BookingRecord) error
	PatientBookings(ctx context.Context, patientID int64) ([]clinicapi.PatientBooking, error)
}

// Controller drives the bookings table, the booking form modal and the
// per-patient bookings list modal.
type Controller struct {
	mu sync.Mutex

	table     *ui.Table
	form      Form
	formModal ui.Modal

	listTable   *ui.Table
	listModal   ui.Modal
	listPatient int64
	listGen     uint64

	api      API
	logger   *logging.Logger
	collator *collate.Collator
	validate *validator.Validate

	openPatientModal func(patientID int64)
	onSaved          func()
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) ControllerOption {
	return func(c *Controller) { c.logger = logger }
}

// WithCollator sets the collator used for table sorting.
func WithCollator(col *collate.Collator) ControllerOption {
	return func(c *Controller) { c.collator = col }
}

// WithPatientModalOpener wires the host's patient-modal capability,
// invoked when an opened booking carries a patient.
func WithPatientModalOpener(open func(patientID int64)) ControllerOption {
	return func(c *Controller) { c.openPatientModal = open }
}

// WithOnSaved registers a hook run after every successful booking save,
// so the host view can re-render its own table.
func WithOnSaved(fn func()) ControllerOption {
	return func(c *Controller) { c.onSaved = fn }
}

// NewController creates a booking controller.
func NewController(api API, opts ...ControllerOption) *Controller {
	if api == nil {
		panic("booking: api required")
	}
	c := &Controller{
		api:       api,
		logger:    logging.Default(),
		collator:  ui.NewCollator("en"),
		validate:  validator.New(),
		table:     ui.NewTable("Name", "Date", "Time", "Therapist"),
		listTable: ui.NewTable("Date", "Time", "Profession", "Therapist", "Billing", "Notes"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Table returns the page's bookings table. The host fills its rows.
func (c *Controller) Table() *ui.Table { return c.table }

// ListTable returns the per-patient bookings list table.
func (c *Controller) ListTable() *ui.Table { return c.listTable }

// Form returns the booking form state for editing between open and
// submit.
func (c *Controller) Form() *Form { return &c.form }

// SortTable sorts the bookings table by the given column, toggling the
// direction on repeated sorts of the same column.
func (c *Controller) SortTable(col int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.table.SortByColumn(col, c.collator)
}

// OpenBookingModal populates the form from rec (nil means a new booking
// with default duration) and shows the modal. A booking that carries a
// patient also opens the patient modal when the host has wired one;
// otherwise that is logged and skipped.
func (c *Controller) OpenBookingModal(page practice.Context, rec *clinicapi.BookingRecord) {
	c.mu.Lock()
	c.form.reset(page, rec)
	c.formModal.Show()
	c.mu.Unlock()

	if rec != nil && rec.PatientID != 0 {
		if c.openPatientModal == nil {
			c.logger.Warn("no patient modal opener configured", "patient_id", rec.PatientID)
			return
		}
		c.openPatientModal(rec.PatientID)
	}
}

// CloseBookingModal hides the booking modal.
func (c *Controller) CloseBookingModal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.formModal.Hide()
}

// BookingModalVisible reports whether the booking form modal is showing.
func (c *Controller) BookingModalVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.formModal.Visible()
}

// BookingsModalVisible reports whether the bookings list modal is
// showing.
func (c *Controller) BookingsModalVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listModal.Visible()
}

// BackdropVisible reports whether the shared backdrop is showing: it is
// visible while any of the controller's modals is.
func (c *Controller) BackdropVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.formModal.Visible() || c.listModal.Visible()
}

// SubmitBookingForm validates the form and saves it, updating when an id
// is present and creating otherwise. A validation failure never issues a
// request. On success the modal closes and, instead of a page reload, the
// current patient's bookings list is re-fetched and the OnSaved hook run.
func (c *Controller) SubmitBookingForm(ctx context.Context) error {
	ctx, span := bookingTracer.Start(ctx, "booking.submit")
	defer span.End()

	c.mu.Lock()
	rec := c.form.record()
	listPatient := c.listPatient
	c.mu.Unlock()
	span.SetAttributes(attribute.Int64("practice.booking_id", rec.ID))

	if err := validateRecord(c.validate, rec); err != nil {
		span.RecordError(err)
		c.logger.Warn("booking form rejected", "error", err)
		return err
	}

	var err error
	if rec.ID != 0 {
		err = c.api.UpdateBooking(ctx, rec.ID, rec)
	} else {
		err = c.api.CreateBooking(ctx, rec)
	}
	if err != nil {
		span.RecordError(err)
		c.logger.Error("booking save failed", "booking_id", rec.ID, "error", err)
		return err
	}
	c.logger.Info("booking saved", "booking_id", rec.ID, "date", rec.Date, "time", rec.Time)

	c.CloseBookingModal()

	if listPatient != 0 {
		c.refreshList(ctx, listPatient)
	}
	if c.onSaved != nil {
		c.onSaved()
	}
	return nil
}

// OpenBookingsModal fetches patientID's bookings, renders one row per
// booking with completion glyphs, and shows the list modal. A failed
// fetch renders a single full-width error row instead. Rapid re-opens
// are sequenced so the last requested patient wins.
func (c *Controller) OpenBookingsModal(ctx context.Context, patientID int64) {
	ctx, span := bookingTracer.Start(ctx, "booking.open_list")
	defer span.End()
	span.SetAttributes(attribute.Int64("practice.patient_id", patientID))

	c.mu.Lock()
	c.listGen++
	gen := c.listGen
	c.listPatient = patientID
	c.mu.Unlock()

	bookings, err := c.api.PatientBookings(ctx, patientID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.listGen {
		return
	}
	if err != nil {
		span.RecordError(err)
		c.logger.Warn("patient bookings fetch failed", "patient_id", patientID, "error", err)
		c.listTable.SetErrorRow("Failed to load bookings")
		c.listModal.Show()
		return
	}
	c.renderListLocked(bookings)
	c.listModal.Show()
}

// CloseBookingsModal hides the bookings list modal.
func (c *Controller) CloseBookingsModal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listModal.Hide()
}

func (c *Controller) refreshList(ctx context.Context, patientID int64) {
	bookings, err := c.api.PatientBookings(ctx, patientID)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.logger.Warn("bookings list refresh failed", "patient_id", patientID, "error", err)
		c.listTable.SetErrorRow("Failed to load bookings")
		return
	}
	c.renderListLocked(bookings)
}

func (c *Controller) renderListLocked(bookings []clinicapi.PatientBooking) {
	rows := make([][]string, 0, len(bookings))
	for _, b := range bookings {
		rows = append(rows, []string{
			b.Date,
			b.Time,
			b.Profession,
			b.TherapistName,
			completionGlyph(b.BillingCompleted),
			completionGlyph(b.NotesCompleted),
		})
	}
	c.listTable.SetRows(rows)
}

func completionGlyph(done bool) string {
	if done {
		return GlyphDone
	}
	return GlyphPending
}
