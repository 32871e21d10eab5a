package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"luxeleads/internal/models"
)

// Catalog represents the structure of the catalog.yaml file: the interests offered
// on the lead form and the score tiers leads are sorted into.
type Catalog struct {
	Interests  []string          `yaml:"interests"`
	ScoreTiers []ScoreTierConfig `yaml:"score_tiers"`
}

// ScoreTierConfig defines a score tier and the interests that place a lead in it.
type ScoreTierConfig struct {
	Name      string   `yaml:"name"`
	Score     int      `yaml:"score"`
	Interests []string `yaml:"interests,omitempty"`
}

// DefaultCatalog is used when no catalog file exists.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Interests: append([]string(nil), models.DefaultInterests...),
		ScoreTiers: []ScoreTierConfig{
			{Name: "Platinum", Score: 90, Interests: []string{models.InterestInvestment, models.InterestCustomDesign}},
			{Name: "Gold", Score: 75, Interests: []string{models.InterestRings, models.InterestNecklaces}},
			{Name: "Silver", Score: 50, Interests: []string{models.InterestEarrings, models.InterestBracelets}},
			{Name: "Bronze", Score: 25},
		},
	}
}

// LoadCatalog loads the catalog file at path. A missing file yields DefaultCatalog.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultCatalog(), nil
		}
		return nil, err
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates catalog YAML.
func ParseCatalog(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	// Set defaults
	if len(cat.Interests) == 0 {
		cat.Interests = append([]string(nil), models.DefaultInterests...)
	}

	seen := make(map[string]bool)
	for _, tier := range cat.ScoreTiers {
		if tier.Name == "" {
			return nil, fmt.Errorf("parse catalog: score tier without a name")
		}
		if seen[tier.Name] {
			return nil, fmt.Errorf("parse catalog: duplicate score tier %q", tier.Name)
		}
		seen[tier.Name] = true
		for _, interest := range tier.Interests {
			if !cat.HasInterest(interest) {
				return nil, fmt.Errorf("parse catalog: tier %q references unknown interest %q", tier.Name, interest)
			}
		}
	}

	return &cat, nil
}

// HasInterest reports whether interest is offered.
func (c *Catalog) HasInterest(interest string) bool {
	if c == nil {
		return false
	}
	for _, i := range c.Interests {
		if i == interest {
			return true
		}
	}
	return false
}

// TierForInterest returns the first tier listing interest. When no tier lists it, the
// first tier without an interest list acts as the fallback. nil means no tier applies.
func (c *Catalog) TierForInterest(interest string) *ScoreTierConfig {
	if c == nil {
		return nil
	}
	var fallback *ScoreTierConfig
	for i := range c.ScoreTiers {
		tier := &c.ScoreTiers[i]
		if len(tier.Interests) == 0 {
			if fallback == nil {
				fallback = tier
			}
			continue
		}
		for _, candidate := range tier.Interests {
			if candidate == interest {
				return tier
			}
		}
	}
	return fallback
}
