package catalogue

import (
	"context"
	"fmt"
	"strings"

	"taguchi/domain/core"
	"taguchi/domain/oa"
	"taguchi/ports"
)

// standardArrays is the published Taguchi catalogue, smallest first
var standardArrays = []oa.StandardArrayInfo{
	{Name: "L4", Runs: 4, Factors: 3, Levels: 2, Strength: 2, Description: "Smallest 2-level array"},
	{Name: "L8", Runs: 8, Factors: 7, Levels: 2, Strength: 2, Description: "Common 2-level array"},
	{Name: "L9", Runs: 9, Factors: 4, Levels: 3, Strength: 2, Description: "Smallest 3-level array"},
	{Name: "L12", Runs: 12, Factors: 11, Levels: 2, Strength: 2, Description: "Plackett-Burman 12-run"},
	{Name: "L16", Runs: 16, Factors: 15, Levels: 2, Strength: 2, Description: "16-run 2-level array"},
	{Name: "L18", Runs: 18, Factors: 7, Levels: 3, Strength: 2, Description: "Mixed 2/3-level array (modified)"},
	{Name: "L25", Runs: 25, Factors: 6, Levels: 5, Strength: 2, Description: "5-level Bose array"},
	{Name: "L27", Runs: 27, Factors: 13, Levels: 3, Strength: 2, Description: "Full 3-level array"},
	{Name: "L32", Runs: 32, Factors: 31, Levels: 2, Strength: 2, Description: "32-run Hadamard array"},
	{Name: "L36", Runs: 36, Factors: 11, Levels: 6, Strength: 2, Description: "6-level array"},
	{Name: "L49", Runs: 49, Factors: 8, Levels: 7, Strength: 2, Description: "7-level Bose array"},
	{Name: "L50", Runs: 50, Factors: 11, Levels: 5, Strength: 2, Description: "Extended 5-level array"},
	{Name: "L64", Runs: 64, Factors: 63, Levels: 2, Strength: 2, Description: "64-run Hadamard array"},
	{Name: "L81", Runs: 81, Factors: 40, Levels: 3, Strength: 2, Description: "Large 3-level array"},
}

// Filter narrows a catalogue search. Nil fields do not constrain.
type Filter struct {
	MinRuns    *int
	MaxRuns    *int
	Levels     *int
	MinFactors *int
}

func (f Filter) matches(info oa.StandardArrayInfo) bool {
	switch {
	case f.MinRuns != nil && info.Runs < *f.MinRuns:
		return false
	case f.MaxRuns != nil && info.Runs > *f.MaxRuns:
		return false
	case f.Levels != nil && info.Levels != *f.Levels:
		return false
	case f.MinFactors != nil && info.Factors < *f.MinFactors:
		return false
	}
	return true
}

// Service answers catalogue queries and loads standard arrays from a source
type Service struct {
	source ports.StandardArraySourcePort
	clock  core.Clock
}

// NewService creates a catalogue service. A nil source still serves List and
// Search; Get then fails with core.ErrEngineUnavailable.
func NewService(source ports.StandardArraySourcePort, clock core.Clock) *Service {
	if clock == nil {
		clock = core.SystemClock
	}
	return &Service{source: source, clock: clock}
}

// List returns every catalogue entry
func (s *Service) List() []oa.StandardArrayInfo {
	return append([]oa.StandardArrayInfo(nil), standardArrays...)
}

// Search returns the entries matching every set filter field
func (s *Service) Search(f Filter) []oa.StandardArrayInfo {
	out := []oa.StandardArrayInfo{}
	for _, info := range standardArrays {
		if f.matches(info) {
			out = append(out, info)
		}
	}
	return out
}

// Info looks up catalogue metadata by name, ignoring case
func (s *Service) Info(name string) (oa.StandardArrayInfo, bool) {
	for _, info := range standardArrays {
		if strings.EqualFold(info.Name, strings.TrimSpace(name)) {
			return info, true
		}
	}
	return oa.StandardArrayInfo{}, false
}

// Get loads a standard array and wraps it for transport
func (s *Service) Get(ctx context.Context, name string) (*oa.OAData, error) {
	if s.source == nil {
		return nil, core.ErrEngineUnavailable
	}

	a, err := s.source.StandardArray(ctx, name)
	if err != nil {
		return nil, err
	}

	label := strings.ToUpper(strings.TrimSpace(name))
	description := ""
	if info, ok := s.Info(name); ok {
		label = info.Name
		description = info.Description
	}
	title := fmt.Sprintf("%s - %s", label, description)

	data := oa.NewOAData(core.NewID().String(), a, oa.OAMetadata{
		Name:      &title,
		Algorithm: oa.MethodCatalogue,
		CreatedAt: s.clock(),
	})
	return &data, nil
}
