// Package reliability computes deterministic reliability assessments for used
// vehicles from brand, mileage and age.
package reliability

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/carwise/internal/domain/knowledge"
	"github.com/okian/carwise/internal/domain/vehicle"
)

// Scoring constants.
const (
	baseScore           = 75
	reliableBrandBonus  = 10
	premiumBrandPenalty = -5
	minScore            = 0
	maxScore            = 100
	highMileageKm       = 150_000
)

// issueCategories are the categories listed in every assessment, in order.
var issueCategories = []knowledge.Category{knowledge.Engine, knowledge.Transmission, knowledge.Electrical}

// Breakdown shows how the score was assembled.
type Breakdown struct {
	Base    int `json:"base"`
	Brand   int `json:"brand"`
	Mileage int `json:"mileage"`
	Age     int `json:"age"`
}

// Assessment is the outcome of a reliability evaluation.
type Assessment struct {
	Score          int               `json:"score"`
	Recommendation Tier              `json:"recommendation"`
	Narrative      string            `json:"narrative"`
	Issues         []knowledge.Issue `json:"issues"`
	Breakdown      Breakdown         `json:"breakdown"`
}

// Option applies a configuration option to the Estimator.
type Option func(*Estimator)

// WithClock sets the time source used to derive vehicle age.
func WithClock(now func() time.Time) Option {
	return func(e *Estimator) {
		if now != nil {
			e.now = now
		}
	}
}

// Estimator computes reliability assessments. It holds no mutable state and
// is safe for concurrent use.
type Estimator struct {
	now func() time.Time
}

// NewEstimator creates an Estimator.
func NewEstimator(opts ...Option) *Estimator {
	e := &Estimator{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Assess evaluates d. The descriptor is normalized first; a descriptor that
// fails validation yields a *vehicle.ValidationError.
func (e *Estimator) Assess(d vehicle.Descriptor) (Assessment, error) {
	now := e.now()
	d = d.Normalize()
	if err := d.Validate(now); err != nil {
		return Assessment{}, err
	}

	band := bandFor(d.MileageKm)
	b := Breakdown{
		Base:    baseScore,
		Brand:   BrandAdjustment(d.Brand),
		Mileage: band.adjustment,
		Age:     AgeAdjustment(d.Age(now)),
	}
	score := clamp(b.Base + b.Brand + b.Mileage + b.Age)
	tier := TierFor(score)

	return Assessment{
		Score:          score,
		Recommendation: tier,
		Narrative:      narrative(tier, score, d, band),
		Issues:         issuesFor(d),
		Breakdown:      b,
	}, nil
}

// BrandAdjustment returns the score adjustment for brand.
func BrandAdjustment(brand string) int {
	switch {
	case vehicle.IsReliable(brand):
		return reliableBrandBonus
	case vehicle.IsPremium(brand):
		return premiumBrandPenalty
	default:
		return 0
	}
}

func clamp(score int) int {
	return max(minScore, min(maxScore, score))
}

func narrative(tier Tier, score int, d vehicle.Descriptor, band mileageBand) string {
	name := strings.TrimSpace(d.Brand + " " + d.Model)
	return fmt.Sprintf(tierTemplates[tier], name, score) + " " + band.clause
}

func issuesFor(d vehicle.Descriptor) []knowledge.Issue {
	issues := make([]knowledge.Issue, 0, len(issueCategories)+1)
	for _, c := range issueCategories {
		issues = append(issues, knowledge.Lookup(c, d.Brand, d.TransmissionType))
	}
	if d.MileageKm > highMileageKm {
		issues = append(issues, knowledge.HighMileage())
	}
	return issues
}
