package verification

import (
	"context"
	"strings"

	"taguchi/domain/core"
	"taguchi/domain/oa"
	"taguchi/domain/stats"
	"taguchi/ports"
)

// Orchestrator runs strength checks through the external verifier and maps its
// findings onto the issue taxonomy.
type Orchestrator struct {
	verifier ports.StrengthVerifierPort
}

// NewOrchestrator creates an orchestrator. A nil verifier makes every call fail
// with core.ErrEngineUnavailable.
func NewOrchestrator(verifier ports.StrengthVerifierPort) *Orchestrator {
	return &Orchestrator{verifier: verifier}
}

// Verify checks a raw matrix against a claimed strength.
func (o *Orchestrator) Verify(ctx context.Context, matrix [][]int, claimed int) (*stats.VerificationResult, error) {
	a, err := oa.FromMatrix(matrix)
	if err != nil {
		return nil, err
	}
	return o.VerifyArray(ctx, a, claimed)
}

// VerifyArray checks an ingested array against a claimed strength.
func (o *Orchestrator) VerifyArray(ctx context.Context, a *oa.Array, claimed int) (*stats.VerificationResult, error) {
	if o.verifier == nil {
		return nil, core.ErrEngineUnavailable
	}

	report, err := o.verifier.VerifyStrength(ctx, a, claimed)
	if err != nil {
		return nil, core.NewExternalEngineError("verify strength", err)
	}

	issues := make([]stats.Issue, 0, len(report.Issues))
	for _, raw := range report.Issues {
		issues = append(issues, ClassifyIssue(raw))
	}

	return &stats.VerificationResult{
		IsValid:         report.IsValid,
		ClaimedStrength: claimed,
		ActualStrength:  report.ActualStrength,
		Issues:          issues,
	}, nil
}

// ComputeStrength asks the verifier for the largest strength up to maxCheck.
func (o *Orchestrator) ComputeStrength(ctx context.Context, matrix [][]int, maxCheck int) (int, error) {
	a, err := oa.FromMatrix(matrix)
	if err != nil {
		return 0, err
	}
	if o.verifier == nil {
		return 0, core.ErrEngineUnavailable
	}

	strength, err := o.verifier.ComputeStrength(ctx, a, maxCheck)
	if err != nil {
		return 0, core.NewExternalEngineError("compute strength", err)
	}
	return strength, nil
}

// outOfRangeMarkers identify an out-of-range finding in rendered issue text.
var outOfRangeMarkers = []string{"ValueOutOfRange", "value out of range"}

// ClassifyIssue maps one verifier finding to an Issue. Tagged issues supply
// their own kind and location. Anything else is classified by its rendered
// text, which is a best-effort mapping: text mentioning an out-of-range value
// is ValueOutOfRange, everything else BalanceViolation.
func ClassifyIssue(raw ports.RawIssue) stats.Issue {
	text := raw.String()

	if tagged, ok := raw.(ports.TaggedIssue); ok {
		return stats.Issue{
			Kind:        tagged.Kind(),
			Description: text,
			Location:    tagged.Location(),
		}
	}

	kind := stats.IssueBalanceViolation
	lower := strings.ToLower(text)
	for _, marker := range outOfRangeMarkers {
		if strings.Contains(text, marker) || strings.Contains(lower, marker) {
			kind = stats.IssueValueOutOfRange
			break
		}
	}

	return stats.Issue{Kind: kind, Description: text}
}
