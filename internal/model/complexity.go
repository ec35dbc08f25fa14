package model

import "encoding/json"

// Complexity is the reading difficulty label derived from the
// Flesch Reading Ease score.
type Complexity int

const (
	// ComplexityUnknown is used when the document has no words.
	ComplexityUnknown Complexity = iota
	ComplexityVeryDifficult
	ComplexityDifficult
	ComplexityFairlyDifficult
	ComplexityStandard
	ComplexityEasy
)

// ComplexityFor maps a Flesch Reading Ease score to a label.
func ComplexityFor(readingEase float64) Complexity {
	switch {
	case readingEase < 30:
		return ComplexityVeryDifficult
	case readingEase < 50:
		return ComplexityDifficult
	case readingEase < 60:
		return ComplexityFairlyDifficult
	case readingEase < 70:
		return ComplexityStandard
	default:
		return ComplexityEasy
	}
}

// String returns a human-readable representation of the complexity.
func (c Complexity) String() string {
	switch c {
	case ComplexityVeryDifficult:
		return "very difficult"
	case ComplexityDifficult:
		return "difficult"
	case ComplexityFairlyDifficult:
		return "fairly difficult"
	case ComplexityStandard:
		return "standard"
	case ComplexityEasy:
		return "easy"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the complexity as its label.
func (c Complexity) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes a label produced by MarshalJSON.
func (c *Complexity) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*c = ParseComplexity(s)
	return nil
}

// ParseComplexity converts a label back to a Complexity.
// Unrecognized labels yield ComplexityUnknown.
func ParseComplexity(s string) Complexity {
	for c := ComplexityVeryDifficult; c <= ComplexityEasy; c++ {
		if c.String() == s {
			return c
		}
	}
	return ComplexityUnknown
}
