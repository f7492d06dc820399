package domain

// DefaultEmployees is the roster used when no roster file is configured.
var DefaultEmployees = []string{"ايهاب", "بسام", "ضحى", "حوراء", "سارة", "معاذ", "محمود", "نزار"}

// Roster is the fixed list of employees that may select themselves.
type Roster []string

// Contains reports whether name is on the roster.
func (r Roster) Contains(name string) bool {
	for _, n := range r {
		if n == name {
			return true
		}
	}
	return false
}
