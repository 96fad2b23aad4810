package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"ticketdash/internal/config"
)

func TestNewWithLocalStore(t *testing.T) {
	root := t.TempDir()
	folder := filepath.Join(root, "folders", "site")
	if err := os.MkdirAll(folder, 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"T-1.json": `{"ticket_no":"1","client":"ACME","price":"10","date_out":"2024-03-05 08:00:00"}`,
		"t_1.pdf":  "%PDF-1.4",
		"T-2.json": `[{"ticket_no":"2","client":"Atlas","price":"5","date_out":"2024-03-06 08:00:00"}]`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(folder, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.Config{
		DBPath:        filepath.Join(root, "data", "app.db"),
		RawDocDir:     filepath.Join(root, "data", "raw"),
		StoreProvider: "dir",
		LocalDir:      filepath.Join(root, "folders"),
		FolderID:      "site",
		FetchRetries:  1,
		CacheTTLSec:   600,
		Timezone:      "UTC",
		Schema:        config.DefaultSchema(),
	}

	a, err := New(context.Background(), cfg, zap.NewNop(), prometheus.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	view := a.Dash.Load(context.Background())
	if view.Err != "" || view.Dataset.Len() != 2 {
		t.Fatalf("view err=%q len=%d", view.Err, view.Dataset.Len())
	}
	if got := view.Dataset.Rows[1].CompanionID(); got != "site/t_1.pdf" {
		t.Fatalf("companion=%q", got)
	}

	doc, err := a.Dash.Companion(context.Background(), "site/t_1.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if doc.FileName != "Ticket_1.pdf" {
		t.Fatalf("file name=%s", doc.FileName)
	}

	if _, err := a.Refresher.RunCycle(context.Background()); err != nil {
		t.Fatal(err)
	}
	records, err := a.DB.ListSnapshot("site")
	if err != nil || len(records) != 2 {
		t.Fatalf("snapshot=%d err=%v", len(records), err)
	}
}

func TestNewRequiresFolder(t *testing.T) {
	if _, err := New(context.Background(), config.Config{}, zap.NewNop(), nil); err == nil {
		t.Fatal("expected error")
	}
}
