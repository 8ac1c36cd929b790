// Package storage holds the durable per-user records. The blotter analysis
// table has single-document-per-user semantics: each upload overwrites the
// prior stored analysis entirely, no history is kept.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AlterSupport/erad-trading-copilot-staging/internal/blotter"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DatabasePool defines the interface for database pool operations.
// This interface allows for both real pool and mock pool implementations.
type DatabasePool interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// AnalysisRepository persists the latest blotter analysis per user.
type AnalysisRepository struct {
	pool DatabasePool
}

// NewAnalysisRepository creates a new analysis repository.
func NewAnalysisRepository(pool DatabasePool) *AnalysisRepository {
	return &AnalysisRepository{
		pool: pool,
	}
}

// SaveLatest upserts the user's latest analysis record. The analysis document
// is stored as JSONB; uploadedAt defaults to now when the caller leaves it
// empty.
func (r *AnalysisRepository) SaveLatest(ctx context.Context, userID string, record blotter.CloudRecord) error {
	if userID == "" {
		return errors.New("user id is required")
	}
	if record.Analysis == nil || record.FileName == "" {
		return errors.New("record must carry a file name and analysis")
	}

	analysisJSON, err := json.Marshal(record.Analysis)
	if err != nil {
		return fmt.Errorf("failed to serialize analysis: %w", err)
	}

	uploadedAt := record.UploadedAt
	if uploadedAt == "" {
		uploadedAt = time.Now().UTC().Format(time.RFC3339)
	}

	query := `
		INSERT INTO blotter_analyses (user_id, file_name, file_size, analysis, uploaded_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET
			file_name = EXCLUDED.file_name,
			file_size = EXCLUDED.file_size,
			analysis = EXCLUDED.analysis,
			uploaded_at = EXCLUDED.uploaded_at,
			updated_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query, userID, record.FileName, record.FileSize, analysisJSON, uploadedAt); err != nil {
		return fmt.Errorf("failed to store latest analysis: %w", err)
	}
	return nil
}

// GetLatest fetches the user's latest analysis record. Returns (nil, nil)
// when the user has never synced an analysis.
func (r *AnalysisRepository) GetLatest(ctx context.Context, userID string) (*blotter.CloudRecord, error) {
	if userID == "" {
		return nil, nil
	}

	query := `
		SELECT file_name, file_size, analysis, uploaded_at
		FROM blotter_analyses
		WHERE user_id = $1
	`

	var (
		fileName     string
		fileSize     int64
		analysisJSON []byte
		uploadedAt   string
	)
	err := r.pool.QueryRow(ctx, query, userID).Scan(&fileName, &fileSize, &analysisJSON, &uploadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest analysis: %w", err)
	}

	var result blotter.AnalysisResult
	if err := json.Unmarshal(analysisJSON, &result); err != nil {
		return nil, fmt.Errorf("failed to decode stored analysis: %w", err)
	}

	// A row without a file name or analysis body is treated as absent rather
	// than surfaced as a broken record.
	if fileName == "" {
		return nil, nil
	}

	return &blotter.CloudRecord{
		FileName:   fileName,
		Analysis:   &result,
		FileSize:   fileSize,
		UploadedAt: uploadedAt,
	}, nil
}
