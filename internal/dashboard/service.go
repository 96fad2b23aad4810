package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"ticketdash/internal"
	"ticketdash/internal/config"
	"ticketdash/internal/pipeline"
	"ticketdash/internal/util"
)

// ErrUnknownDocument is returned for companion ids that no current ticket
// refers to.
var ErrUnknownDocument = errors.New("unknown document")

type BatchSource interface {
	Get(ctx context.Context, folderID string) (internal.Batch, error)
	Invalidate(folderID string)
}

type Downloader interface {
	Download(ctx context.Context, fileID string) ([]byte, error)
}

// View is the normalized dataset for the configured folder. When loading
// failed Dataset is empty and Err says why.
type View struct {
	Dataset   pipeline.Dataset
	FetchedAt time.Time
	Report    *internal.BatchReport
	Err       string
}

// Result is a filtered view with its aggregates.
type Result struct {
	View
	Criteria pipeline.FilterCriteria
	Rows     pipeline.Dataset
	Summary  pipeline.Summary
}

type Document struct {
	ID       string
	Content  []byte
	FileName string
	Ticket   pipeline.Row
}

type Service struct {
	cfg        config.Config
	source     BatchSource
	downloader Downloader
	normalizer *pipeline.Normalizer
	filter     *pipeline.Filter
	log        *zap.Logger
	now        func() time.Time

	mu       sync.Mutex
	memoKey  string
	memoData pipeline.Dataset
}

func NewService(cfg config.Config, source BatchSource, downloader Downloader, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		cfg:        cfg,
		source:     source,
		downloader: downloader,
		normalizer: pipeline.NewNormalizer(cfg.Schema, cfg.Location()),
		filter:     pipeline.NewFilter(cfg.Schema),
		log:        log,
		now:        time.Now,
	}
}

func (s *Service) Config() config.Config { return s.cfg }

// Load returns the current dataset sorted newest first.
func (s *Service) Load(ctx context.Context) View {
	batch, err := s.source.Get(ctx, s.cfg.FolderID)
	if err != nil {
		s.log.Error("load folder failed", zap.String("folderId", s.cfg.FolderID), zap.Error(err))
		return View{Dataset: pipeline.Dataset{Columns: []string{}, Rows: []pipeline.Row{}}, Err: err.Error()}
	}
	report := batch.Report
	return View{
		Dataset:   s.normalized(batch),
		FetchedAt: batch.FetchedAt,
		Report:    &report,
	}
}

// Refresh drops the cached batch and loads the folder again.
func (s *Service) Refresh(ctx context.Context) View {
	s.source.Invalidate(s.cfg.FolderID)
	return s.Load(ctx)
}

func (s *Service) Query(ctx context.Context, c pipeline.FilterCriteria) Result {
	view := s.Load(ctx)
	return s.Apply(view, c)
}

// Apply filters an already loaded view.
func (s *Service) Apply(view View, c pipeline.FilterCriteria) Result {
	rows := s.filter.Apply(view.Dataset, c)
	return Result{
		View:     view,
		Criteria: c,
		Rows:     rows,
		Summary:  pipeline.SummarizeTop(rows, s.cfg.Schema.TopN),
	}
}

func (s *Service) Choices(view View) pipeline.Choices {
	return pipeline.BuildChoices(view.Dataset, s.cfg.Schema, s.today())
}

// Normalize runs records that did not come from the cache, such as a
// stored snapshot, through the same steps as Load.
func (s *Service) Normalize(records []internal.RawRecord) pipeline.Dataset {
	return pipeline.SortNewestFirst(s.normalizer.Normalize(records))
}

// Companion downloads a companion document referenced by a current ticket.
func (s *Service) Companion(ctx context.Context, id string) (Document, error) {
	view := s.Load(ctx)
	if view.Err != "" {
		return Document{}, errors.New(view.Err)
	}

	row, ok := findCompanion(view.Dataset, id)
	if !ok {
		return Document{}, fmt.Errorf("%w: %s", ErrUnknownDocument, id)
	}

	content, err := s.downloader.Download(ctx, id)
	if err != nil {
		return Document{}, fmt.Errorf("download companion %s: %w", id, err)
	}
	return Document{ID: id, Content: content, FileName: s.companionFileName(row), Ticket: row}, nil
}

func (s *Service) Preview(ctx context.Context, id string) (pipeline.Preview, Document, error) {
	doc, err := s.Companion(ctx, id)
	if err != nil {
		return pipeline.Preview{}, Document{}, err
	}
	preview, err := pipeline.ExtractPreview(doc.Content)
	if err != nil {
		return pipeline.Preview{}, doc, fmt.Errorf("preview %s: %w", id, err)
	}
	return preview, doc, nil
}

// TicketLabel is the ticket number of row, or "" when the schema has none.
func (s *Service) TicketLabel(row pipeline.Row) string {
	if s.cfg.Schema.Ticket.Key == "" {
		return ""
	}
	v, ok := row.Record.Get(s.cfg.Schema.Ticket.Key)
	if !ok || v == nil {
		return ""
	}
	return util.ToText(v)
}

func (s *Service) companionFileName(row pipeline.Row) string {
	ticket := s.TicketLabel(row)
	if ticket == "" {
		ticket = "doc"
	}
	return "Ticket_" + util.SafeFileName(ticket) + ".pdf"
}

func (s *Service) today() time.Time {
	now := s.now().In(s.cfg.Location())
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func (s *Service) normalized(batch internal.Batch) pipeline.Dataset {
	key := batch.Report.TraceID
	s.mu.Lock()
	defer s.mu.Unlock()
	if key != "" && key == s.memoKey {
		return s.memoData
	}
	ds := s.Normalize(batch.Records)
	s.memoKey, s.memoData = key, ds
	return ds
}

func findCompanion(ds pipeline.Dataset, id string) (pipeline.Row, bool) {
	if id == "" {
		return pipeline.Row{}, false
	}
	for _, row := range ds.Rows {
		if row.CompanionID() == id {
			return row, true
		}
	}
	return pipeline.Row{}, false
}
