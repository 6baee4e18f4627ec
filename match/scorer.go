package match

import (
	"errors"
	"fmt"
	"math"
)

// ErrScoreOutOfRange signals a sub-score outside [0, 100].
var ErrScoreOutOfRange = errors.New("match: sub-score out of range")

// Weights configures the contribution of each breakdown component. The four
// mandatory weights are expected to sum to 1.0; when an investor sub-score is
// present its weight joins the average and the total is renormalized.
type Weights struct {
	Price    float64
	Location float64
	Size     float64
	Feature  float64
	Investor float64
}

// DefaultWeights weighs the mandatory components equally with a modest
// investor contribution when one applies.
func DefaultWeights() Weights {
	return Weights{
		Price:    0.25,
		Location: 0.25,
		Size:     0.25,
		Feature:  0.25,
		Investor: 0.20,
	}
}

// Scorer derives a match's overall score from its breakdown. Pure and
// deterministic: the same breakdown always yields the same integer.
type Scorer struct {
	weights Weights
}

// NewScorer builds a scorer with the given weights.
func NewScorer(weights Weights) *Scorer {
	return &Scorer{weights: weights}
}

// Score combines the breakdown into one overall integer in [0, 100]. The
// weighted sum is divided by the participating weight total, rounded to the
// nearest integer and clamped so rounding can never drift out of range.
func (s *Scorer) Score(b Breakdown) (int, error) {
	components := []struct {
		name   string
		value  int
		weight float64
	}{
		{"price", b.Price, s.weights.Price},
		{"location", b.Location, s.weights.Location},
		{"size", b.Size, s.weights.Size},
		{"feature", b.Feature, s.weights.Feature},
	}
	if b.Investor != nil {
		components = append(components, struct {
			name   string
			value  int
			weight float64
		}{"investor", *b.Investor, s.weights.Investor})
	}

	var sum, total float64
	for _, c := range components {
		if c.value < 0 || c.value > 100 {
			return 0, fmt.Errorf("%w: %s=%d", ErrScoreOutOfRange, c.name, c.value)
		}
		sum += float64(c.value) * c.weight
		total += c.weight
	}
	if total == 0 {
		return 0, fmt.Errorf("match: weight total is zero")
	}

	overall := int(math.Round(sum / total))
	if overall < 0 {
		overall = 0
	}
	if overall > 100 {
		overall = 100
	}
	return overall, nil
}
