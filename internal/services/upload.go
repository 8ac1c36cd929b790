package services

import (
	"context"
	"encoding/base64"
	"path/filepath"
	"strings"
	"time"

	"github.com/AlterSupport/erad-trading-copilot-staging/internal/analysis"
	"github.com/AlterSupport/erad-trading-copilot-staging/internal/blotter"
	"github.com/AlterSupport/erad-trading-copilot-staging/internal/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// allowedExtensions are the blotter formats the desk works with. The check is
// a fast client-facing guard; the pipeline revalidates on its side.
var allowedExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
	".json": true,
}

// Analyzer submits a blotter to the external analysis pipeline.
type Analyzer interface {
	AnalyzeBlotter(ctx context.Context, req *analysis.AnalyzeRequest) (*blotter.AnalysisResult, error)
}

// LatestAnalysisStore persists the durable per-user record.
type LatestAnalysisStore interface {
	SaveLatest(ctx context.Context, userID string, record blotter.CloudRecord) error
}

// UploadOrchestrator drives a single blotter from validated submission to a
// stored, synced analysis result. It mutates the caller's registry and never
// queues: one upload in flight per session is the caller's responsibility to
// enforce (disable the trigger while isUploading is set).
type UploadOrchestrator struct {
	analyzer     Analyzer
	store        LatestAnalysisStore
	contents     *blotter.ContentCache
	maxFileBytes int64
	logger       *logrus.Entry
}

// NewUploadOrchestrator creates an upload orchestrator. store and contents
// are optional; without a store the durable-sync step is skipped entirely.
func NewUploadOrchestrator(analyzer Analyzer, store LatestAnalysisStore, contents *blotter.ContentCache, maxFileBytes int64) *UploadOrchestrator {
	return &UploadOrchestrator{
		analyzer:     analyzer,
		store:        store,
		contents:     contents,
		maxFileBytes: maxFileBytes,
		logger:       logrus.WithField("component", "upload_orchestrator"),
	}
}

// ValidateUpload applies the synchronous pre-flight checks: extension and
// size. A rejection here happens before any registry mutation or network
// call.
func (o *UploadOrchestrator) ValidateUpload(fileName string, size int64) error {
	ext := strings.ToLower(filepath.Ext(fileName))
	if !allowedExtensions[ext] {
		return utils.NewValidationError("Invalid file type. Please upload CSV, XLSX, or JSON files only.")
	}
	if size > o.maxFileBytes {
		return utils.NewValidationErrorf("File size exceeds %dMB limit.", o.maxFileBytes/(1024*1024))
	}
	return nil
}

// Upload runs the full lifecycle for one file:
// validate -> register -> encode -> submit -> store result -> durable sync.
//
// The registry's isUploading flag is cleared on every exit path. Durable sync
// is best-effort: a sync failure logs and leaves the local result intact, it
// never fails the upload. There is no automatic retry of anything.
func (o *UploadOrchestrator) Upload(ctx context.Context, reg *blotter.Registry, userID, fileName string, content []byte) (*blotter.AnalysisResult, error) {
	if err := o.ValidateUpload(fileName, int64(len(content))); err != nil {
		return nil, err
	}

	ctx, span := otel.Tracer("services").Start(ctx, "blotter.upload")
	defer span.End()
	span.SetAttributes(
		attribute.String("blotter.file_name", fileName),
		attribute.Int("blotter.file_size", len(content)),
	)

	reg.AddFile(blotter.File{Name: fileName, Size: int64(len(content))})
	reg.SetUploading(true)
	defer reg.SetUploading(false)

	// Keep the raw bytes around so the chat assistant can attach this file
	// later without a re-upload. Failure here is harmless.
	if o.contents != nil && userID != "" {
		if err := o.contents.Put(ctx, userID, fileName, content); err != nil {
			o.logger.WithError(err).Warn("Failed to cache blotter content")
		}
	}

	reg.SetProgress(25)

	fileType := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	req := &analysis.AnalyzeRequest{
		FileContent: base64.StdEncoding.EncodeToString(content),
		FileName:    fileName,
		FileType:    fileType,
	}

	result, err := o.analyzer.AnalyzeBlotter(ctx, req)
	if err != nil {
		o.logger.WithError(err).WithField("file_name", fileName).Error("Blotter analysis failed")
		reg.SetError("Failed to upload blotter.")
		reg.MarkFileFailed(fileName)
		return nil, err
	}

	reg.SetAnalysisResult(fileName, result)
	reg.SetProgress(100)

	if o.store != nil && userID != "" {
		uploadedAt := time.Now().UTC().Format(time.RFC3339)
		record := blotter.CloudRecord{
			FileName:   fileName,
			Analysis:   result,
			FileSize:   int64(len(content)),
			UploadedAt: uploadedAt,
		}
		if err := o.store.SaveLatest(ctx, userID, record); err != nil {
			// Durable sync is an optimization, not a correctness requirement
			// for the current session.
			o.logger.WithError(err).WithField("file_name", fileName).Error("Failed to sync blotter analysis to durable storage")
		} else {
			reg.MarkFileSynced(fileName, uploadedAt)
		}
	}

	return result, nil
}
