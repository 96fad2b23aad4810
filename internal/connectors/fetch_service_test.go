package connectors

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"ticketdash/internal"
	"ticketdash/internal/config"
	"ticketdash/internal/metrics"
	"ticketdash/internal/storage"
)

type fakeStore struct {
	files     []internal.RemoteFile
	contents  map[string]string
	failures  map[string]int
	listErr   error
	downloads map[string]int
}

func (f *fakeStore) List(ctx context.Context, folderID string) ([]internal.RemoteFile, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.files, nil
}

func (f *fakeStore) Download(ctx context.Context, fileID string) ([]byte, error) {
	if f.downloads == nil {
		f.downloads = map[string]int{}
	}
	f.downloads[fileID]++
	if f.failures[fileID] > 0 {
		f.failures[fileID]--
		return nil, errors.New("connection reset")
	}
	content, ok := f.contents[fileID]
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(content), nil
}

func newTestService(store FileStore, docs *DocumentStore) *FetchService {
	cfg := config.Config{StoreProvider: ProviderDrive, Schema: config.DefaultSchema(), FetchRetries: 3}
	s := NewFetchService(store, cfg, docs, zap.NewNop(), metrics.New(prometheus.NewRegistry()))
	s.sleep = func(time.Duration) {}
	return s
}

func sampleStore() *fakeStore {
	return &fakeStore{
		files: []internal.RemoteFile{
			{ID: "d1", Name: "Ticket-001.JSON"},
			{ID: "p1", Name: "ticket_001.pdf"},
			{ID: "d2", Name: "ticket-002.json"},
			{ID: "d3", Name: "broken.json"},
			{ID: "d4", Name: "empty.json"},
			{ID: "x1", Name: "readme.txt"},
		},
		contents: map[string]string{
			"d1": `{"ticket_no":"1","plate":"A"}`,
			"d2": `[{"ticket_no":"2"},{"ticket_no":"3"}]`,
			"d3": `{"ticket_no":`,
			"d4": ``,
		},
		failures: map[string]int{"d2": 2},
	}
}

func TestFetchBuildsBatch(t *testing.T) {
	store := sampleStore()
	batch, err := newTestService(store, nil).Fetch(context.Background(), "folder")
	if err != nil {
		t.Fatal(err)
	}

	if len(batch.Records) != 3 {
		t.Fatalf("records=%d", len(batch.Records))
	}
	first := batch.Records[0]
	if first.SourceName() != "Ticket-001.JSON" || first.CompanionID() != "p1" {
		t.Fatalf("first=%+v", first.Values)
	}
	if v, ok := batch.Records[1].Get(internal.FieldCompanionID); !ok || v != nil {
		t.Fatalf("companion of unmatched record=%v,%v", v, ok)
	}

	r := batch.Report
	if r.TraceID == "" || r.Listed != 6 || r.DataDocs != 4 || r.Companions != 1 || r.Records != 3 || r.Skipped != 2 {
		t.Fatalf("report=%+v", r)
	}
	reasons := map[string]string{}
	for _, d := range r.Documents {
		reasons[d.Name] = d.Reason
	}
	if reasons["empty.json"] != "empty" {
		t.Fatalf("empty reason=%q", reasons["empty.json"])
	}
	if reasons["broken.json"] == "" {
		t.Fatal("broken document not reported")
	}
	if store.downloads["d2"] != 3 {
		t.Fatalf("d2 downloads=%d", store.downloads["d2"])
	}
}

func TestFetchListFailure(t *testing.T) {
	store := &fakeStore{listErr: errors.New("forbidden")}
	if _, err := newTestService(store, nil).Fetch(context.Background(), "folder"); err == nil {
		t.Fatal("expected error")
	}
}

func TestFetchWritesLedger(t *testing.T) {
	dir := t.TempDir()
	db, err := storage.Open(filepath.Join(dir, "t.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	rawDir := filepath.Join(dir, "raw")
	if _, err := newTestService(sampleStore(), NewDocumentStore(db, rawDir)).Fetch(context.Background(), "folder"); err != nil {
		t.Fatal(err)
	}

	row, err := db.GetDocument("d1")
	if err != nil || row == nil {
		t.Fatalf("row=%v err=%v", row, err)
	}
	if row.Status != internal.DocumentOK || row.Records != 1 || row.Provider != ProviderDrive {
		t.Fatalf("row=%+v", row)
	}
	if _, err := os.Stat(row.RawRef); err != nil {
		t.Fatalf("raw copy: %v", err)
	}

	empty, err := db.GetDocument("d4")
	if err != nil || empty == nil || empty.Status != internal.DocumentSkipped || empty.Reason != "empty" {
		t.Fatalf("empty=%+v err=%v", empty, err)
	}
}

func TestRetryStopsOnNotFound(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 5, func(time.Duration) {}, func() error {
		calls++
		return ErrNotFound
	})
	if !errors.Is(err, ErrNotFound) || calls != 1 {
		t.Fatalf("err=%v calls=%d", err, calls)
	}
}

func TestRateLimiterHonoursContext(t *testing.T) {
	l := NewRateLimiter(1)
	ctx, cancel := context.WithCancel(context.Background())
	if err := l.WaitTurn(ctx); err != nil {
		t.Fatal(err)
	}
	cancel()
	if err := l.WaitTurn(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v", err)
	}
}
