package ports

import (
	"context"

	"taguchi/domain/doe"
	"taguchi/domain/oa"
)

// ArrayRepository persists arrays and their analyses
type ArrayRepository interface {
	SaveArray(ctx context.Context, data oa.OAData) error
	GetArray(ctx context.Context, id string) (*oa.OAData, error)
	ListArrays(ctx context.Context, limit int) ([]oa.OAData, error)

	SaveAnalysis(ctx context.Context, arrayID string, analysis doe.Analysis) (string, error)
	ListAnalyses(ctx context.Context, arrayID string) ([]doe.Analysis, error)
}
