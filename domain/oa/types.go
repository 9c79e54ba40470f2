package oa

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// OAData is the transport form of an orthogonal array.
type OAData struct {
	ID       string     `json:"id"`
	Runs     int        `json:"runs"`
	Factors  int        `json:"factors"`
	Levels   []int      `json:"levels"`
	Strength int        `json:"strength"`
	Data     [][]int    `json:"data"`
	Metadata OAMetadata `json:"metadata"`
}

// OAMetadata describes where an array came from.
type OAMetadata struct {
	Name      *string   `json:"name"`
	Algorithm string    `json:"algorithm"`
	CreatedAt time.Time `json:"createdAt"`
	Notes     *string   `json:"notes"`
}

// NewOAData wraps a validated array for transport.
func NewOAData(id string, a *Array, meta OAMetadata) OAData {
	return OAData{
		ID:       id,
		Runs:     a.Runs(),
		Factors:  a.Factors(),
		Levels:   a.Levels(),
		Strength: a.Strength(),
		Data:     a.Rows(),
		Metadata: meta,
	}
}

// Array re-validates the transported matrix against its declared levels.
func (d OAData) Array() (*Array, error) {
	if len(d.Levels) == 0 {
		a, err := FromMatrix(d.Data)
		if err != nil {
			return nil, err
		}
		return a.WithStrength(d.Strength), nil
	}
	return NewArray(d.Data, d.Levels, d.Strength)
}

// LevelSpec is either a single symmetric level count or one count per factor.
// In JSON it is a number or an array of numbers.
type LevelSpec struct {
	Symmetric int
	Mixed     []int
}

// Symmetric returns a spec with the same level count for all factors.
func Symmetric(levels int) LevelSpec {
	return LevelSpec{Symmetric: levels}
}

// Mixed returns a spec with one level count per factor.
func Mixed(levels ...int) LevelSpec {
	if levels == nil {
		levels = []int{}
	}
	return LevelSpec{Mixed: levels}
}

// IsMixed reports whether the spec lists per-factor levels.
func (s LevelSpec) IsMixed() bool {
	return s.Mixed != nil
}

func (s LevelSpec) String() string {
	if s.IsMixed() {
		return fmt.Sprint(s.Mixed)
	}
	return fmt.Sprint(s.Symmetric)
}

func (s LevelSpec) MarshalJSON() ([]byte, error) {
	if s.IsMixed() {
		return json.Marshal(s.Mixed)
	}
	return json.Marshal(s.Symmetric)
}

func (s *LevelSpec) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var mixed []int
		if err := json.Unmarshal(b, &mixed); err != nil {
			return err
		}
		*s = Mixed(mixed...)
		return nil
	}
	var symmetric int
	if err := json.Unmarshal(b, &symmetric); err != nil {
		return fmt.Errorf("levels must be a number or an array of numbers: %w", err)
	}
	*s = Symmetric(symmetric)
	return nil
}

// BuildRequest asks for an array with the given shape.
type BuildRequest struct {
	Levels   LevelSpec `json:"levels"`
	Factors  int       `json:"factors"`
	Strength int       `json:"strength"`
	MinRuns  *int      `json:"minRuns,omitempty"`
}

// ConstructionOption is advisory metadata about one construction method.
type ConstructionOption struct {
	Name        string   `json:"name"`
	Runs        int      `json:"runs"`
	MaxFactors  int      `json:"maxFactors"`
	Description string   `json:"description"`
	Constraints []string `json:"constraints"`
}

// ValidationResult reports whether build parameters can be satisfied.
type ValidationResult struct {
	Valid       bool                 `json:"valid"`
	Errors      []string             `json:"errors"`
	Warnings    []string             `json:"warnings"`
	Suggestions []ConstructionOption `json:"suggestions"`
}

// StandardArrayInfo describes one catalogue array.
type StandardArrayInfo struct {
	Name        string `json:"name"`
	Runs        int    `json:"runs"`
	Factors     int    `json:"factors"`
	Levels      int    `json:"levels"`
	Strength    int    `json:"strength"`
	Description string `json:"description"`
}

// ImportValidation summarizes an imported matrix.
type ImportValidation struct {
	Runs              int      `json:"runs"`
	Factors           int      `json:"factors"`
	Levels            []int    `json:"levels"`
	IsMixed           bool     `json:"isMixed"`
	EstimatedStrength int      `json:"estimatedStrength"`
	Warnings          []string `json:"warnings"`
}
