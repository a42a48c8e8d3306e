// Package practice carries the page-level state the host application
// resolves before driving the controllers.
package practice

// Context identifies what the admin page is currently looking at. The host
// view resolves these before calling into a controller and passes the
// struct into each operation that needs it; controllers never read ambient
// globals.
type Context struct {
	BookingID   int64
	PatientID   int64
	TherapistID int64
	Profession  string
	Therapists  []Therapist
}

// Therapist is one selectable practitioner for the booking form.
type Therapist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
