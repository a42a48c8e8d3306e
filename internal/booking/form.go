package booking

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/wolfman30/practice-admin-console/internal/clinicapi"
	"github.com/wolfman30/practice-admin-console/internal/practice"
	"github.com/wolfman30/practice-admin-console/internal/ui"
)

// DefaultDuration is the duration preset for a new booking, in minutes.
const DefaultDuration = 15

// Form holds the booking modal's field state. Time falls back to
// StartTime on submit when the primary field is left empty.
type Form struct {
	ID                   int64
	Name                 string
	Date                 string
	Time                 string
	StartTime            string
	Duration             int
	Notes                string
	AppointmentTypeID    int64
	AppointmentTypeColor string
	Therapist            ui.Select
}

// reset populates the form from rec, or with the empty defaults when rec
// is nil. The therapist list is rebuilt from the page context with the
// current therapist selected.
func (f *Form) reset(page practice.Context, rec *clinicapi.BookingRecord) {
	*f = Form{Duration: DefaultDuration}
	therapistID := page.TherapistID
	if rec != nil {
		f.ID = rec.ID
		f.Name = rec.Name
		f.Date = rec.Date
		f.Time = rec.Time
		f.Duration = rec.Duration
		f.Notes = rec.Notes
		f.AppointmentTypeID = rec.AppointmentTypeID
		f.AppointmentTypeColor = rec.AppointmentTypeColor
		if rec.TherapistID != 0 {
			therapistID = rec.TherapistID
		}
	}

	f.Therapist.Reset("Select therapist")
	for _, t := range page.Therapists {
		f.Therapist.Append(ui.Option{
			Value: strconv.FormatInt(t.ID, 10),
			Label: t.Name,
		})
	}
	if therapistID != 0 {
		f.Therapist.Choose(strconv.FormatInt(therapistID, 10))
	}
}

// record assembles the wire record from the current field state.
func (f *Form) record() clinicapi.BookingRecord {
	t := f.Time
	if t == "" {
		t = f.StartTime
	}
	therapistID, _ := strconv.ParseInt(f.Therapist.SelectedValue(), 10, 64)
	return clinicapi.BookingRecord{
		ID:                   f.ID,
		Name:                 f.Name,
		Date:                 f.Date,
		Time:                 t,
		Duration:             f.Duration,
		TherapistID:          therapistID,
		Notes:                f.Notes,
		AppointmentTypeID:    f.AppointmentTypeID,
		AppointmentTypeColor: f.AppointmentTypeColor,
	}
}

// formPayload is the validated shape of a booking submission.
type formPayload struct {
	Name        string `validate:"required"`
	Date        string `validate:"required,datetime=2006-01-02"`
	Time        string `validate:"required,datetime=15:04"`
	Duration    int    `validate:"min=1"`
	TherapistID int64  `validate:"required"`
}

func validateRecord(v *validator.Validate, rec clinicapi.BookingRecord) error {
	payload := formPayload{
		Name:        rec.Name,
		Date:        rec.Date,
		Time:        rec.Time,
		Duration:    rec.Duration,
		TherapistID: rec.TherapistID,
	}
	if err := v.Struct(payload); err != nil {
		return fmt.Errorf("booking: invalid form: %w", err)
	}
	return nil
}
