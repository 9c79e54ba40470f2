package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"taguchi/domain/core"
	"taguchi/domain/doe"
	"taguchi/domain/oa"
	"taguchi/ports"

	"github.com/jmoiron/sqlx"
)

// ArrayRepositoryImpl implements ArrayRepository for PostgreSQL
type ArrayRepositoryImpl struct {
	db *sqlx.DB
}

// NewArrayRepository creates a new PostgreSQL array repository
func NewArrayRepository(db *sqlx.DB) ports.ArrayRepository {
	return &ArrayRepositoryImpl{db: db}
}

// arrayRow mirrors one oa_arrays record
type arrayRow struct {
	ID        string         `db:"id"`
	Name      sql.NullString `db:"name"`
	Algorithm string         `db:"algorithm"`
	Runs      int            `db:"runs"`
	Factors   int            `db:"factors"`
	Strength  int            `db:"strength"`
	Levels    []byte         `db:"levels"`
	Data      []byte         `db:"data"`
	Notes     sql.NullString `db:"notes"`
	CreatedAt time.Time      `db:"created_at"`
}

// analysisRow mirrors one doe_analyses record
type analysisRow struct {
	ID         string    `db:"id"`
	ArrayID    string    `db:"array_id"`
	GrandMean  float64   `db:"grand_mean"`
	Result     []byte    `db:"result"`
	AnalyzedAt time.Time `db:"analyzed_at"`
}

func toArrayRow(d oa.OAData) (arrayRow, error) {
	levels, err := json.Marshal(d.Levels)
	if err != nil {
		return arrayRow{}, err
	}
	data, err := json.Marshal(d.Data)
	if err != nil {
		return arrayRow{}, err
	}
	return arrayRow{
		ID:        d.ID,
		Name:      nullString(d.Metadata.Name),
		Algorithm: d.Metadata.Algorithm,
		Runs:      d.Runs,
		Factors:   d.Factors,
		Strength:  d.Strength,
		Levels:    levels,
		Data:      data,
		Notes:     nullString(d.Metadata.Notes),
		CreatedAt: d.Metadata.CreatedAt,
	}, nil
}

func (r arrayRow) toOAData() (oa.OAData, error) {
	d := oa.OAData{
		ID:       r.ID,
		Runs:     r.Runs,
		Factors:  r.Factors,
		Strength: r.Strength,
		Metadata: oa.OAMetadata{
			Name:      stringPtr(r.Name),
			Algorithm: r.Algorithm,
			CreatedAt: r.CreatedAt.UTC(),
			Notes:     stringPtr(r.Notes),
		},
	}
	if err := json.Unmarshal(r.Levels, &d.Levels); err != nil {
		return oa.OAData{}, err
	}
	if err := json.Unmarshal(r.Data, &d.Data); err != nil {
		return oa.OAData{}, err
	}
	return d, nil
}

func toAnalysisRow(id, arrayID string, a doe.Analysis) (analysisRow, error) {
	a.ConfigID = id
	result, err := json.Marshal(a)
	if err != nil {
		return analysisRow{}, err
	}
	return analysisRow{
		ID:         id,
		ArrayID:    arrayID,
		GrandMean:  a.GrandMean,
		Result:     result,
		AnalyzedAt: a.AnalyzedAt,
	}, nil
}

func (r analysisRow) toAnalysis() (doe.Analysis, error) {
	var a doe.Analysis
	if err := json.Unmarshal(r.Result, &a); err != nil {
		return doe.Analysis{}, err
	}
	a.ConfigID = r.ID
	return a, nil
}

// SaveArray inserts or replaces an array
func (r *ArrayRepositoryImpl) SaveArray(ctx context.Context, data oa.OAData) error {
	row, err := toArrayRow(data)
	if err != nil {
		return core.NewIOError("encode array", err)
	}

	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO oa_arrays (id, name, algorithm, runs, factors, strength, levels, data, notes, created_at)
		VALUES (:id, :name, :algorithm, :runs, :factors, :strength, :levels, :data, :notes, :created_at)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			algorithm = EXCLUDED.algorithm,
			runs = EXCLUDED.runs,
			factors = EXCLUDED.factors,
			strength = EXCLUDED.strength,
			levels = EXCLUDED.levels,
			data = EXCLUDED.data,
			notes = EXCLUDED.notes
	`, row)
	if err != nil {
		return core.NewIOError("save array", err)
	}
	return nil
}

// GetArray retrieves an array by ID
func (r *ArrayRepositoryImpl) GetArray(ctx context.Context, id string) (*oa.OAData, error) {
	var row arrayRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, name, algorithm, runs, factors, strength, levels, data, notes, created_at
		FROM oa_arrays
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.NewNotFoundError("array", id)
	}
	if err != nil {
		return nil, core.NewIOError("get array", err)
	}

	data, err := row.toOAData()
	if err != nil {
		return nil, core.NewIOError("decode array", err)
	}
	return &data, nil
}

// ListArrays returns the most recent arrays, optionally limited
func (r *ArrayRepositoryImpl) ListArrays(ctx context.Context, limit int) ([]oa.OAData, error) {
	query := `
		SELECT id, name, algorithm, runs, factors, strength, levels, data, notes, created_at
		FROM oa_arrays
		ORDER BY created_at DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	var rows []arrayRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, core.NewIOError("list arrays", err)
	}

	out := make([]oa.OAData, 0, len(rows))
	for _, row := range rows {
		data, err := row.toOAData()
		if err != nil {
			return nil, core.NewIOError("decode array", err)
		}
		out = append(out, data)
	}
	return out, nil
}

// SaveAnalysis stores an analysis against an array and returns its new ID,
// which also becomes the analysis ConfigID
func (r *ArrayRepositoryImpl) SaveAnalysis(ctx context.Context, arrayID string, analysis doe.Analysis) (string, error) {
	id := core.NewID().String()
	row, err := toAnalysisRow(id, arrayID, analysis)
	if err != nil {
		return "", core.NewIOError("encode analysis", err)
	}

	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO doe_analyses (id, array_id, grand_mean, result, analyzed_at)
		VALUES (:id, :array_id, :grand_mean, :result, :analyzed_at)
	`, row)
	if err != nil {
		return "", core.NewIOError("save analysis", err)
	}
	return id, nil
}

// ListAnalyses returns an array's analyses, newest first
func (r *ArrayRepositoryImpl) ListAnalyses(ctx context.Context, arrayID string) ([]doe.Analysis, error) {
	var rows []analysisRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, array_id, grand_mean, result, analyzed_at
		FROM doe_analyses
		WHERE array_id = $1
		ORDER BY analyzed_at DESC
	`, arrayID)
	if err != nil {
		return nil, core.NewIOError("list analyses", err)
	}

	out := make([]doe.Analysis, 0, len(rows))
	for _, row := range rows {
		a, err := row.toAnalysis()
		if err != nil {
			return nil, core.NewIOError("decode analysis", err)
		}
		out = append(out, a)
	}
	return out, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
