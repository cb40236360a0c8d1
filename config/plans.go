package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PlanLimits are the free plan ceilings per resource kind.
type PlanLimits struct {
	Stays       int `yaml:"stays" json:"stays"`
	Recipes     int `yaml:"recipes" json:"recipes"`
	Ingredients int `yaml:"ingredients" json:"ingredients"`
	Utensils    int `yaml:"utensils" json:"utensils"`
}

func DefaultPlanLimits() PlanLimits {
	return PlanLimits{Stays: 3, Recipes: 10, Ingredients: 20, Utensils: 10}
}

type plansFile struct {
	Free PlanLimits `yaml:"free"`
}

// LoadPlanLimits reads the `free:` section of a YAML file. Keys left out
// keep their default value; an empty path returns the defaults.
func LoadPlanLimits(path string) (PlanLimits, error) {
	limits := DefaultPlanLimits()
	if path == "" {
		return limits, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return limits, fmt.Errorf("read plans file: %w", err)
	}
	return ParsePlanLimits(data)
}

func ParsePlanLimits(data []byte) (PlanLimits, error) {
	f := plansFile{Free: DefaultPlanLimits()}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return PlanLimits{}, fmt.Errorf("parse plans file: %w", err)
	}
	l := f.Free
	if l.Stays < 0 || l.Recipes < 0 || l.Ingredients < 0 || l.Utensils < 0 {
		return PlanLimits{}, fmt.Errorf("parse plans file: limits must not be negative")
	}
	return l, nil
}
