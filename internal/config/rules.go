package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/motorlog/vehicle-maintenance/internal/recommend"
)

// rulesFile is the YAML schema for the maintenance rule table.
type rulesFile struct {
	Rules []ruleEntry `yaml:"rules"`
}

type ruleEntry struct {
	ServiceType        string  `yaml:"service_type"`
	Component          string  `yaml:"component"`
	MileageInterval    float64 `yaml:"mileage_interval"`
	TimeIntervalMonths float64 `yaml:"time_interval_months"`
}

// DefaultRules returns the built-in maintenance rule table, used when
// no rules file is configured.
func DefaultRules() []recommend.CategoryRule {
	return []recommend.CategoryRule{
		{ServiceType: "oil_change", Component: "Engine Oil", MileageInterval: 5000, TimeIntervalMonths: 6},
		{ServiceType: "tire_rotation", Component: "Tires", MileageInterval: 7500, TimeIntervalMonths: 6},
		{ServiceType: "brake_service", Component: "Brakes", MileageInterval: 20000, TimeIntervalMonths: 24},
		{ServiceType: "battery_service", Component: "Battery", MileageInterval: 50000, TimeIntervalMonths: 48},
		{ServiceType: "inspection", Component: "General Inspection", MileageInterval: 12000, TimeIntervalMonths: 12},
	}
}

// LoadRules reads and validates the maintenance rule table from a YAML
// file. Rules with non-positive intervals or duplicate service types
// are rejected here, at load time, so evaluation never sees them.
func LoadRules(path string) ([]recommend.CategoryRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}
	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("rules file %s contains no rules", path)
	}

	rules := make([]recommend.CategoryRule, 0, len(file.Rules))
	seen := make(map[string]bool, len(file.Rules))
	for _, entry := range file.Rules {
		if entry.ServiceType == "" {
			return nil, fmt.Errorf("rules file %s: rule with empty service_type", path)
		}
		if seen[entry.ServiceType] {
			return nil, fmt.Errorf("rules file %s: duplicate rule for %q", path, entry.ServiceType)
		}
		seen[entry.ServiceType] = true

		rule := recommend.CategoryRule{
			ServiceType:        entry.ServiceType,
			Component:          entry.Component,
			MileageInterval:    entry.MileageInterval,
			TimeIntervalMonths: entry.TimeIntervalMonths,
		}
		if rule.Component == "" {
			rule.Component = rule.ServiceType
		}
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("rules file %s: %w", path, err)
		}
		rules = append(rules, rule)
	}

	return rules, nil
}
