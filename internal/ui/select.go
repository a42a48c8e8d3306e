// Package ui models the admin-page widgets the controllers manipulate:
// modals, selects, and sortable text tables. The widgets hold displayed
// text exactly as the page would, so numeric cells round-trip through
// their formatted representation.
package ui

// Option is one entry in a Select. Multiplier carries the auxiliary data a
// billing-modifier option is tagged with; it is nil for options without
// one (including the None default).
type Option struct {
	Value      string
	Label      string
	Multiplier *float64
}

// Select is an ordered option list with at most one selected entry. A
// freshly Reset select has its default option selected, mirroring how a
// rebuilt select element behaves.
type Select struct {
	options  []Option
	selected int
}

// Reset replaces all options with a single default option (empty value,
// no multiplier) and selects it.
func (s *Select) Reset(defaultLabel string) {
	s.options = []Option{{Value: "", Label: defaultLabel}}
	s.selected = 0
}

// Append adds an option to the end of the list.
func (s *Select) Append(opt Option) {
	s.options = append(s.options, opt)
}

// Choose selects the option with the given value. It reports whether a
// matching option exists; the selection is unchanged when none does.
func (s *Select) Choose(value string) bool {
	for i, opt := range s.options {
		if opt.Value == value {
			s.selected = i
			return true
		}
	}
	return false
}

// Selected returns the currently selected option. A zero-value Select has
// no options and returns the zero Option.
func (s *Select) Selected() Option {
	if s.selected < 0 || s.selected >= len(s.options) {
		return Option{}
	}
	return s.options[s.selected]
}

// SelectedValue returns the selected option's value, "" when nothing is
// selected.
func (s *Select) SelectedValue() string {
	return s.Selected().Value
}

// SelectedMultiplier returns the selected option's multiplier, defaulting
// to 1 when the option carries none.
func (s *Select) SelectedMultiplier() float64 {
	opt := s.Selected()
	if opt.Multiplier == nil {
		return 1
	}
	return *opt.Multiplier
}

// Options returns the option list for rendering.
func (s *Select) Options() []Option {
	return s.options
}

// Len returns the number of options.
func (s *Select) Len() int {
	return len(s.options)
}
