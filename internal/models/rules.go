package models

// Correction rewrites a teacher name found in source cells. An empty Replacement drops the teacher group.
type Correction struct {
	Match       string `yaml:"match" json:"match"`
	Replacement string `yaml:"replacement" json:"replacement"`
}

// AvailabilityRules holds school policy applied when ranking substitutes.
type AvailabilityRules struct {
	// SpecialTeachers are never offered as substitutes.
	SpecialTeachers []string `yaml:"specialTeachers" json:"specialTeachers"`
	// EarliestPeriod maps a teacher to the first zero-based period index they may cover.
	EarliestPeriod map[string]int `yaml:"earliestPeriod" json:"earliestPeriod"`
	Corrections    []Correction   `yaml:"corrections" json:"corrections"`
}

// IsSpecial reports whether teacher is excluded from substitution duty.
func (r AvailabilityRules) IsSpecial(teacher string) bool {
	for _, name := range r.SpecialTeachers {
		if name == teacher {
			return true
		}
	}
	return false
}

// AllowsPeriod applies the earliest-period restriction for teacher.
func (r AvailabilityRules) AllowsPeriod(teacher string, period int) bool {
	threshold, ok := r.EarliestPeriod[teacher]
	if !ok {
		return true
	}
	return period >= threshold
}
