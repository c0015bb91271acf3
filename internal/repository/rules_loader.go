package repository

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/sma-substitution-api/internal/models"
)

// ParseRules decodes an availability rules YAML document.
func ParseRules(data []byte) (models.AvailabilityRules, error) {
	var rules models.AvailabilityRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return models.AvailabilityRules{}, fmt.Errorf("decode rules: %w", err)
	}

	special := make([]string, 0, len(rules.SpecialTeachers))
	for _, name := range rules.SpecialTeachers {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			special = append(special, trimmed)
		}
	}
	rules.SpecialTeachers = special

	if rules.EarliestPeriod == nil {
		rules.EarliestPeriod = map[string]int{}
	}
	for teacher, period := range rules.EarliestPeriod {
		if period < 0 {
			return models.AvailabilityRules{}, fmt.Errorf("earliest period for %s must not be negative", teacher)
		}
	}
	return rules, nil
}

// LoadRulesFile reads and decodes a rules file.
func LoadRulesFile(path string) (models.AvailabilityRules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.AvailabilityRules{}, fmt.Errorf("read rules %s: %w", path, err)
	}
	return ParseRules(data)
}
