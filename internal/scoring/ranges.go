package scoring

import (
	"fmt"
	"strings"
)

// StatusRange labels every percentage p with Min <= p <= Max.
type StatusRange struct {
	Min   int    `mapstructure:"min" json:"min" yaml:"min"`
	Max   int    `mapstructure:"max" json:"max" yaml:"max"`
	Label string `mapstructure:"label" json:"label" yaml:"label"`
}

// Ranges is an ordered status table. The first matching range wins, so
// overlapping entries resolve to the one listed first.
type Ranges []StatusRange

// DefaultRanges is the status table used when none is configured.
func DefaultRanges() Ranges {
	return Ranges{
		{Min: 0, Max: 20, Label: "🙈 Do we even know each other?"},
		{Min: 21, Max: 40, Label: "🙂 Acquaintance"},
		{Min: 41, Max: 60, Label: "😊 Good friend"},
		{Min: 61, Max: 80, Label: "🤗 Close friend"},
		{Min: 81, Max: 100, Label: "💖 Best friend"},
	}
}

// Classify returns the label of the first range containing pct.
func (r Ranges) Classify(pct int) (string, error) {
	for _, sr := range r {
		if sr.Min <= pct && pct <= sr.Max {
			return sr.Label, nil
		}
	}
	return "", fmt.Errorf("%w: %d", ErrClassificationGap, pct)
}

// Validate checks that every range is well formed and that together they
// cover [0,100] without gaps.
func (r Ranges) Validate() error {
	if len(r) == 0 {
		return fmt.Errorf("no status ranges configured")
	}
	var covered [101]bool
	for i, sr := range r {
		if sr.Min > sr.Max {
			return fmt.Errorf("range %d: min %d > max %d", i, sr.Min, sr.Max)
		}
		if sr.Min < 0 || sr.Max > 100 {
			return fmt.Errorf("range %d: [%d,%d] outside [0,100]", i, sr.Min, sr.Max)
		}
		if strings.TrimSpace(sr.Label) == "" {
			return fmt.Errorf("range %d: empty label", i)
		}
		for p := sr.Min; p <= sr.Max; p++ {
			covered[p] = true
		}
	}
	var gaps []string
	for p, ok := range covered {
		if !ok {
			gaps = append(gaps, fmt.Sprint(p))
		}
	}
	if len(gaps) > 0 {
		return fmt.Errorf("%w: %s", ErrClassificationGap, strings.Join(gaps, ", "))
	}
	return nil
}
