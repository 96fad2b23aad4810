package connectors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ticketdash/internal"
	"ticketdash/internal/config"
	"ticketdash/internal/metrics"
	"ticketdash/internal/pipeline"
)

// FetchService loads every data document of a folder into one batch.
type FetchService struct {
	store    FileStore
	provider string
	schema   config.Schema
	retries  int
	docs     *DocumentStore
	log      *zap.Logger
	metrics  *metrics.Metrics

	now   func() time.Time
	sleep func(time.Duration)
}

func NewFetchService(store FileStore, cfg config.Config, docs *DocumentStore, log *zap.Logger, m *metrics.Metrics) *FetchService {
	if log == nil {
		log = zap.NewNop()
	}
	return &FetchService{
		store:    store,
		provider: cfg.StoreProvider,
		schema:   cfg.Schema,
		retries:  cfg.FetchRetries,
		docs:     docs,
		log:      log,
		metrics:  m,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Fetch lists folderID, downloads and parses every data document and stamps
// each record with its source name and companion id. Only a listing failure
// is returned as an error; a bad document is reported as skipped.
func (s *FetchService) Fetch(ctx context.Context, folderID string) (internal.Batch, error) {
	started := s.now()
	report := internal.BatchReport{
		TraceID:   uuid.NewString(),
		FolderID:  folderID,
		StartedAt: started,
		Documents: []internal.DocumentResult{},
	}
	log := s.log.With(zap.String("traceId", report.TraceID), zap.String("folderId", folderID))

	var files []internal.RemoteFile
	err := Retry(ctx, s.retries, s.sleep, func() error {
		var listErr error
		files, listErr = s.store.List(ctx, folderID)
		return listErr
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.FetchErrors.Inc()
		}
		return internal.Batch{}, fmt.Errorf("list folder %s: %w", folderID, err)
	}
	report.Listed = len(files)

	companions := pipeline.BuildCompanionIndex(files, s.schema)
	report.Companions = len(companions)

	records := []internal.RawRecord{}
	for _, file := range files {
		if pipeline.ClassifyFile(file.Name, s.schema) != internal.KindData {
			continue
		}
		report.DataDocs++
		if file.Provider == "" {
			file.Provider = s.provider
		}

		companionID, hasCompanion := companions.Lookup(file.Name)
		result := internal.DocumentResult{FileID: file.ID, Name: file.Name, Status: internal.DocumentOK}
		if hasCompanion {
			result.CompanionID = companionID
		}

		content, parsed, err := s.load(ctx, file)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return internal.Batch{}, ctxErr
			}
			result.Status = internal.DocumentSkipped
			result.Reason = skipReason(err)
			report.Skipped++
			log.Warn("document skipped", zap.String("file", file.Name), zap.String("reason", result.Reason))
		} else {
			for _, rec := range parsed {
				rec.Set(internal.FieldSourceName, file.Name)
				if hasCompanion {
					rec.Set(internal.FieldCompanionID, companionID)
				} else {
					rec.Set(internal.FieldCompanionID, nil)
				}
				records = append(records, rec)
			}
			result.Records = len(parsed)
		}

		if s.metrics != nil {
			s.metrics.Documents.WithLabelValues(string(result.Status)).Inc()
		}
		if s.docs != nil {
			if err := s.docs.Store(folderID, file, content, result); err != nil {
				log.Warn("document ledger write failed", zap.String("file", file.Name), zap.Error(err))
			}
		}
		report.Documents = append(report.Documents, result)
	}

	report.Records = len(records)
	report.FinishedAt = s.now()
	if s.metrics != nil {
		s.metrics.FetchDuration.Observe(report.FinishedAt.Sub(started).Seconds())
		s.metrics.Records.Set(float64(report.Records))
	}
	log.Info("folder loaded",
		zap.Int("listed", report.Listed),
		zap.Int("dataDocs", report.DataDocs),
		zap.Int("records", report.Records),
		zap.Int("skipped", report.Skipped),
	)

	return internal.Batch{
		FolderID:  folderID,
		FetchedAt: report.FinishedAt,
		Records:   records,
		Report:    report,
	}, nil
}

// Download returns the raw bytes of a file, retrying transient failures.
func (s *FetchService) Download(ctx context.Context, fileID string) ([]byte, error) {
	var content []byte
	err := Retry(ctx, s.retries, s.sleep, func() error {
		var err error
		content, err = s.store.Download(ctx, fileID)
		return err
	})
	return content, err
}

func (s *FetchService) load(ctx context.Context, file internal.RemoteFile) ([]byte, []internal.RawRecord, error) {
	content, err := s.Download(ctx, file.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("download: %w", err)
	}
	records, err := pipeline.ParseDocument(content)
	if err != nil {
		return content, nil, err
	}
	return content, records, nil
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, pipeline.ErrEmptyDocument):
		return "empty"
	case errors.Is(err, pipeline.ErrInvalidEncoding):
		return "invalid encoding"
	case errors.Is(err, pipeline.ErrUnsupportedShape):
		return "unsupported shape"
	default:
		return err.Error()
	}
}
