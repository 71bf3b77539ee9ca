package stub

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"rituals/internal/models"
)

// Seed is the stub backend's catalog: the plans and promo codes the
// subscription endpoints serve. A YAML file can replace the built-in
// defaults for demoing different pricing.
type Seed struct {
	Plans      []models.Plan      `yaml:"plans"`
	PromoCodes []models.PromoCode `yaml:"promo_codes"`
}

// DefaultSeed returns the built-in catalog.
func DefaultSeed() *Seed {
	return &Seed{
		Plans: []models.Plan{
			{
				ID:       models.PlanFree,
				Name:     "Free",
				Price:    0,
				Currency: "usd",
				Interval: "month",
				Features: []string{"Daily ritual", "Sleep journal"},
			},
			{
				ID:          models.PlanPremiumMonthly,
				Name:        "Premium Monthly",
				Price:       999,
				Currency:    "usd",
				Interval:    "month",
				Features:    []string{"Everything in Free", "Guided audio library", "Weekly trends"},
				TrialDays:   7,
				MostPopular: true,
			},
			{
				ID:        models.PlanPremiumAnnual,
				Name:      "Premium Annual",
				Price:     7999,
				Currency:  "usd",
				Interval:  "year",
				Features:  []string{"Everything in Premium", "2 months free"},
				TrialDays: 7,
			},
		},
		PromoCodes: []models.PromoCode{
			{Code: "SLEEPWELL", Valid: true, DiscountPercent: 20, Description: "20% off the first period"},
		},
	}
}

// LoadSeed reads a YAML catalog from path, or returns the defaults when
// path is empty.
func LoadSeed(path string) (*Seed, error) {
	if path == "" {
		return DefaultSeed(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed YAML: %w", err)
	}
	if len(seed.Plans) == 0 {
		seed.Plans = DefaultSeed().Plans
	}
	return &seed, nil
}
