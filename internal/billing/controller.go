// Package billing implements the billing-session form: a dynamic table of
// line items whose rate and total cells are recomputed on every edit, and
// which is saved to the clinic backend as one session.
package billing

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/practice-admin-console/internal/clinicapi"
	"github.com/wolfman30/practice-admin-console/internal/practice"
	"github.com/wolfman30/practice-admin-console/internal/ui"
	"github.com/wolfman30/practice-admin-console/pkg/logging"
)

var billingTracer = otel.Tracer("practice.internal.billing")

// Placeholder shown in computed cells before a value exists.
const Placeholder = "-"

// API is the slice of the clinic client the billing form needs.
type API interface {
	BillingCodes(ctx context.Context) ([]clinicapi.BillingCode, error)
	BillingModifiers(ctx context.Context, profession string) ([]clinicapi.BillingModifier, error)
	SaveBillingSession(ctx context.Context, sub clinicapi.SessionSubmission) error
	BillingSessions(ctx context.Context, patientID int64) ([]clinicapi.BillingSession, error)
}

// Row is one billing line item. The cell fields hold displayed text, the
// input fields hold what the user typed; baseRate caches the unmodified
// fee once a code has been looked up.
type Row struct {
	CodeInput     string
	Description   string
	RateCell      string
	QuantityInput string
	TotalCell     string
	Modifier      ui.Select

	baseRate    *float64
	catalogSeq  requestSeq
	modifierSeq requestSeq
}

// BaseRate returns the cached unmodified fee and whether one is set.
func (r *Row) BaseRate() (float64, bool) {
	if r.baseRate == nil {
		return 0, false
	}
	return *r.baseRate, true
}

// CodeID returns the leading token of the code input, the part before
// " - " with surrounding whitespace removed.
func (r *Row) CodeID() string {
	token, _, _ := strings.Cut(r.CodeInput, " - ")
	return strings.TrimSpace(token)
}

// Controller drives the billing form. All mutations go through its
// methods; fetches happen outside the lock and stale responses are
// discarded per row, so the last request started always wins.
type Controller struct {
	mu          sync.Mutex
	rows        []*Row
	overallCell string
	modal       ui.Modal

	api      API
	logger   *logging.Logger
	notifier Notifier
	now      func() time.Time
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) ControllerOption {
	return func(c *Controller) { c.logger = logger }
}

// WithNotifier sets the user-facing save notifier.
func WithNotifier(n Notifier) ControllerOption {
	return func(c *Controller) { c.notifier = n }
}

// WithClock overrides the session-date clock.
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) { c.now = now }
}

// NewController creates a billing form with one blank row. Modifier
// options for that row are not loaded yet; the host calls AddRow or
// LoadExisting before showing the modal.
func NewController(api API, opts ...ControllerOption) *Controller {
	if api == nil {
		panic("billing: api required")
	}
	c := &Controller{
		api:         api,
		logger:      logging.Default(),
		now:         time.Now,
		overallCell: formatAmount(0),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.notifier == nil {
		c.notifier = logNotifier{logger: c.logger}
	}
	c.rows = []*Row{newRow()}
	return c
}

func newRow() *Row {
	r := &Row{
		QuantityInput: "1",
		RateCell:      Placeholder,
		TotalCell:     Placeholder,
	}
	r.Modifier.Reset("None")
	return r
}

// Rows returns the rows in display order.
func (c *Controller) Rows() []*Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Row, len(c.rows))
	copy(out, c.rows)
	return out
}

// OverallTotal returns the displayed overall total.
func (c *Controller) OverallTotal() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overallCell
}

// Open shows the billing modal.
func (c *Controller) Open() { c.modal.Show() }

// Close hides the billing modal.
func (c *Controller) Close() { c.modal.Hide() }

// Visible reports whether the billing modal is showing.
func (c *Controller) Visible() bool { return c.modal.Visible() }

// AddRow appends a fresh row: quantity 1, empty texts, placeholder
// computed cells, no cached base rate, and modifier options reloaded for
// the page's profession. Nothing is copied from existing rows.
func (c *Controller) AddRow(ctx context.Context, page practice.Context) *Row {
	row := newRow()
	c.mu.Lock()
	c.rows = append(c.rows, row)
	c.mu.Unlock()

	c.LoadModifiers(ctx, page, row)
	return row
}

// RemoveRow deletes row and recomputes the overall total. The last
// remaining row is never removed; the call reports whether it did
// anything.
func (c *Controller) RemoveRow(row *Row) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.rows) <= 1 {
		return false
	}
	for i, r := range c.rows {
		if r == row {
			c.rows = append(c.rows[:i], c.rows[i+1:]...)
			c.updateOverallLocked()
			return true
		}
	}
	return false
}

// PopulateRow looks the row's code identifier up in the catalog and, on a
// match, caches the base fee and fills the description, rate and total
// cells. An unknown code or a failed fetch leaves the row untouched.
func (c *Controller) PopulateRow(ctx context.Context, page practice.Context, row *Row) {
	codeID := row.CodeID()
	if codeID == "" {
		return
	}

	ctx, gen := row.catalogSeq.begin(ctx)
	codes, err := c.api.BillingCodes(ctx)
	if err != nil {
		c.logger.Warn("billing code lookup failed", "code", codeID, "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !row.catalogSeq.current(gen) {
		return
	}
	for _, bc := range codes {
		if bc.Code == codeID {
			fee := bc.BaseFee
			row.baseRate = &fee
			row.Description = bc.Description
			row.RateCell = formatAmount(fee)
			row.TotalCell = formatAmount(fee * float64(parseQuantity(row.QuantityInput)))
			c.updateOverallLocked()
			return
		}
	}
	c.logger.Warn("billing code not found", "code", codeID)
}

// LoadModifiers fetches the modifiers for the page's profession and
// appends one option per modifier to the row's select. The None default
// is the caller's responsibility, installed via Reset before this call.
func (c *Controller) LoadModifiers(ctx context.Context, page practice.Context, row *Row) {
	ctx, gen := row.modifierSeq.begin(ctx)
	mods, err := c.api.BillingModifiers(ctx, page.Profession)
	if err != nil {
		c.logger.Warn("modifier load failed", "profession", page.Profession, "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !row.modifierSeq.current(gen) {
		return
	}
	for _, mod := range mods {
		mult := mod.Multiplier
		row.Modifier.Append(ui.Option{
			Value:      mod.Code,
			Label:      mod.Code + " - " + mod.Description,
			Multiplier: &mult,
		})
	}
}

// ApplyModifier recomputes the row from its cached base rate (0 when no
// code has been looked up) and the selected multiplier (1 when the
// selection carries none).
func (c *Controller) ApplyModifier(row *Row) {
	c.mu.Lock()
	defer c.mu.Unlock()
	base := 0.0
	if row.baseRate != nil {
		base = *row.baseRate
	}
	rate := base * row.Modifier.SelectedMultiplier()
	row.RateCell = formatAmount(rate)
	row.TotalCell = formatAmount(rate * float64(parseQuantity(row.QuantityInput)))
	c.updateOverallLocked()
}

// RecalcTotal recomputes the total after a quantity edit, reparsing the
// displayed rate. An unparsable rate cell skips the update entirely.
func (c *Controller) RecalcTotal(row *Row) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rate, ok := parseAmount(row.RateCell)
	if !ok {
		return
	}
	row.TotalCell = formatAmount(rate * float64(parseQuantity(row.QuantityInput)))
	c.updateOverallLocked()
}

// UpdateOverallTotal recomputes the overall total from the row totals.
func (c *Controller) UpdateOverallTotal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateOverallLocked()
}

func (c *Controller) updateOverallLocked() {
	sum := 0.0
	for _, row := range c.rows {
		if v, ok := parseAmount(row.TotalCell); ok {
			sum += v
		}
	}
	c.overallCell = formatAmount(sum)
}

// Submit collects the rows with a code identifier into session entries
// and saves the session. A failed save notifies the user and keeps the
// modal open for retry; success notifies and hides it.
func (c *Controller) Submit(ctx context.Context, page practice.Context) error {
	ctx, span := billingTracer.Start(ctx, "billing.submit")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("practice.booking_id", page.BookingID),
		attribute.Int64("practice.patient_id", page.PatientID),
	)

	c.mu.Lock()
	sub := clinicapi.SessionSubmission{
		Session: clinicapi.Session{
			ID:          page.BookingID,
			PatientID:   page.PatientID,
			TherapistID: page.TherapistID,
			SessionDate: c.now().Format("2006-01-02"),
			Notes:       "",
		},
	}
	if total, ok := parseAmount(c.overallCell); ok {
		sub.Session.TotalAmount = total
	}
	for _, row := range c.rows {
		codeID := row.CodeID()
		if codeID == "" {
			continue
		}
		entry := clinicapi.SessionEntry{
			CodeID:          codeID,
			BillingModifier: row.Modifier.SelectedValue(),
		}
		if fee, ok := parseAmount(row.TotalCell); ok {
			entry.FinalFee = fee
		}
		sub.Entries = append(sub.Entries, entry)
	}
	c.mu.Unlock()

	if err := c.api.SaveBillingSession(ctx, sub); err != nil {
		span.RecordError(err)
		c.logger.Error("billing session save failed", "booking_id", page.BookingID, "error", err)
		c.notifier.Failure("Failed to save billing session. Please try again.")
		return err
	}

	c.logger.Info("billing session saved",
		"booking_id", page.BookingID,
		"patient_id", page.PatientID,
		"entries", len(sub.Entries),
	)
	c.notifier.Success("Billing session saved.")
	c.modal.Hide()
	return nil
}

// LoadExisting restores the session persisted for bookingID. The restored
// fees keep priority: the catalog refresh afterwards only fills in
// descriptions and never overwrites the rate, total or cached base rate.
// No matching session, or a failed fetch, leaves the form as it is.
func (c *Controller) LoadExisting(ctx context.Context, page practice.Context, bookingID int64) {
	ctx, span := billingTracer.Start(ctx, "billing.load_existing")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("practice.booking_id", bookingID),
		attribute.Int64("practice.patient_id", page.PatientID),
	)

	sessions, err := c.api.BillingSessions(ctx, page.PatientID)
	if err != nil {
		span.RecordError(err)
		c.logger.Warn("billing session fetch failed", "patient_id", page.PatientID, "error", err)
		return
	}

	var session *clinicapi.BillingSession
	for i := range sessions {
		if sessions[i].ID == bookingID {
			session = &sessions[i]
			break
		}
	}
	if session == nil {
		c.logger.Info("no billing session for booking", "booking_id", bookingID)
		return
	}

	c.mu.Lock()
	c.rows = c.rows[:0]
	for _, entry := range session.Entries {
		row := newRow()
		fee := entry.FinalFee
		row.CodeInput = entry.CodeID
		row.baseRate = &fee
		row.RateCell = formatAmount(fee)
		row.TotalCell = formatAmount(fee)
		c.rows = append(c.rows, row)
	}
	if len(c.rows) == 0 {
		c.rows = []*Row{newRow()}
	}
	rows := make([]*Row, len(c.rows))
	copy(rows, c.rows)
	c.mu.Unlock()

	for i, row := range rows {
		c.LoadModifiers(ctx, page, row)
		if i < len(session.Entries) && session.Entries[i].BillingModifier != "" {
			c.mu.Lock()
			row.Modifier.Choose(session.Entries[i].BillingModifier)
			c.mu.Unlock()
		}
	}

	c.refreshDescriptions(ctx, rows)
	c.UpdateOverallTotal()
}

// refreshDescriptions fills row descriptions from the catalog without
// touching the restored fees.
func (c *Controller) refreshDescriptions(ctx context.Context, rows []*Row) {
	codes, err := c.api.BillingCodes(ctx)
	if err != nil {
		c.logger.Warn("billing code lookup failed", "error", err)
		return
	}
	byCode := make(map[string]clinicapi.BillingCode, len(codes))
	for _, bc := range codes {
		byCode[bc.Code] = bc
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, row := range rows {
		if bc, ok := byCode[row.CodeID()]; ok {
			row.Description = bc.Description
		}
	}
}

// Table renders the form as a text table for the console demo.
func (c *Controller) Table() *ui.Table {
	c.mu.Lock()
	defer c.mu.Unlock()
	tbl := ui.NewTable("Code", "Description", "Rate", "Qty", "Modifier", "Total")
	for _, row := range c.rows {
		tbl.AppendRow(
			row.CodeInput,
			row.Description,
			row.RateCell,
			row.QuantityInput,
			row.Modifier.Selected().Label,
			row.TotalCell,
		)
	}
	tbl.AppendRow("", "", "", "", "Overall", c.overallCell)
	return tbl
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// parseAmount reads a displayed monetary cell. Placeholders and other
// non-numeric text report false.
func parseAmount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseQuantity reads a quantity input, defaulting to 1 when the text is
// not a positive integer.
func parseQuantity(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 1 {
		return 1
	}
	return v
}
