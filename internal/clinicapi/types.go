package clinicapi

// BillingCode is one entry of the billing-code catalog.
type BillingCode struct {
	Code        string  `json:"code"`
	Description string  `json:"description"`
	BaseFee     float64 `json:"base_fee"`
}

// BillingModifier scales a base fee, optionally scoped to a profession.
type BillingModifier struct {
	Code        string  `json:"modifier_code"`
	Description string  `json:"modifier_description"`
	Multiplier  float64 `json:"modifier_multiplier"`
}

// SessionEntry is one persisted billing line item.
type SessionEntry struct {
	CodeID          string  `json:"code_id"`
	BillingModifier string  `json:"billing_modifier"`
	FinalFee        float64 `json:"final_fee"`
}

// Session ties a set of billing entries to one booking/patient/therapist.
type Session struct {
	ID          int64   `json:"id"`
	PatientID   int64   `json:"patient_id"`
	TherapistID int64   `json:"therapist_id"`
	SessionDate string  `json:"session_date"`
	Notes       string  `json:"notes"`
	TotalAmount float64 `json:"total_amount"`
}

// SessionSubmission is the save-session request body.
type SessionSubmission struct {
	Session Session        `json:"session"`
	Entries []SessionEntry `json:"entries"`
}

// BillingSession is a persisted session as returned by the list endpoint.
type BillingSession struct {
	ID      int64          `json:"id"`
	Entries []SessionEntry `json:"entries"`
}

// BookingRecord is the create/update body for one booking. A zero ID means
// the booking does not exist yet.
type BookingRecord struct {
	ID                   int64  `json:"id,omitempty"`
	Name                 string `json:"name"`
	Date                 string `json:"date"`
	Time                 string `json:"time"`
	Duration             int    `json:"duration"`
	TherapistID          int64  `json:"therapist_id"`
	Notes                string `json:"notes"`
	AppointmentTypeID    int64  `json:"appointment_type_id"`
	AppointmentTypeColor string `json:"appointment_type_color"`
	PatientID            int64  `json:"patient_id,omitempty"`
}

// PatientBooking is one row of a patient's booking history.
type PatientBooking struct {
	Date             string `json:"date"`
	Time             string `json:"time"`
	Profession       string `json:"profession"`
	TherapistName    string `json:"therapist_name"`
	BillingCompleted bool   `json:"billing_completed"`
	NotesCompleted   bool   `json:"notes_completed"`
}
