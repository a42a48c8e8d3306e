package ui

// Modal tracks the visibility of one dialog. The page has exactly two
// states per modal, hidden and visible; any data loading happens before
// the visible transition.
type Modal struct {
	visible bool
}

// Show makes the modal visible.
func (m *Modal) Show() { m.visible = true }

// Hide hides the modal.
func (m *Modal) Hide() { m.visible = false }

// Visible reports whether the modal is showing.
func (m *Modal) Visible() bool { return m.visible }
