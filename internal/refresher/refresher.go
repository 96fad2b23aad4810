package refresher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"ticketdash/internal"
	"ticketdash/internal/config"
	"ticketdash/internal/dashboard"
	"ticketdash/internal/pipeline"
	"ticketdash/internal/storage"
)

type Source interface {
	Get(ctx context.Context, folderID string) (internal.Batch, error)
	Invalidate(folderID string)
}

// Service reloads the folder on a cron schedule and persists each batch.
type Service struct {
	db     *storage.DB
	cfg    config.Config
	source Source
	dash   *dashboard.Service
	log    *zap.Logger
	now    func() time.Time
}

type Result struct {
	Report     internal.BatchReport
	ExportPath string
}

func NewService(db *storage.DB, cfg config.Config, source Source, dash *dashboard.Service, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, cfg: cfg, source: source, dash: dash, log: log, now: time.Now}
}

// Run executes one cycle immediately and then one per schedule tick until
// ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	cronLog := cron.PrintfLogger(zap.NewStdLog(s.log))
	c := cron.New(
		cron.WithLocation(s.cfg.Location()),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	if _, err := c.AddFunc(s.cfg.RefreshSchedule, func() { s.runLogged(ctx) }); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", s.cfg.RefreshSchedule, err)
	}

	s.runLogged(ctx)
	c.Start()
	s.log.Info("refresher started", zap.String("schedule", s.cfg.RefreshSchedule), zap.String("folderId", s.cfg.FolderID))

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func (s *Service) runLogged(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.RunCycle(ctx); err != nil {
		s.log.Error("refresh cycle failed", zap.Error(err))
	}
}

// RunCycle reloads the folder, stores the record snapshot and the run row,
// and writes the export workbook when auto export is on.
func (s *Service) RunCycle(ctx context.Context) (Result, error) {
	s.source.Invalidate(s.cfg.FolderID)
	batch, err := s.source.Get(ctx, s.cfg.FolderID)
	if err != nil {
		return Result{}, err
	}

	if err := s.db.ReplaceSnapshot(batch.FolderID, batch.Records); err != nil {
		return Result{}, fmt.Errorf("store snapshot: %w", err)
	}
	if err := s.db.InsertRun(batch.Report); err != nil {
		return Result{}, fmt.Errorf("store run: %w", err)
	}

	res := Result{Report: batch.Report}
	if s.cfg.AutoExport {
		ds := s.dash.Normalize(batch.Records)
		path := filepath.Join(s.cfg.OutputDir, pipeline.ReportFileName(s.now().In(s.cfg.Location())))
		if err := pipeline.ExportToXLSX(ds, pipeline.SummarizeTop(ds, s.cfg.Schema.TopN), path); err != nil {
			return res, fmt.Errorf("auto export: %w", err)
		}
		res.ExportPath = path
	}

	s.log.Info("refresh cycle done",
		zap.String("traceId", batch.Report.TraceID),
		zap.Int("records", batch.Report.Records),
		zap.Int("skipped", batch.Report.Skipped),
		zap.String("export", res.ExportPath),
	)
	return res, nil
}
