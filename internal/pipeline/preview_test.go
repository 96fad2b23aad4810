package pipeline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
)

func makePDF(t *testing.T, text string) []byte {
	t.Helper()
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.AddPage()
	doc.SetFont("Helvetica", "", 14)
	doc.Cell(60, 10, text)
	buf := bytes.NewBuffer(nil)
	if err := doc.Output(buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExtractPreview(t *testing.T) {
	preview, err := ExtractPreview(makePDF(t, "Ticket 001"))
	if err != nil {
		t.Fatal(err)
	}
	if preview.Pages != 1 {
		t.Fatalf("pages=%d", preview.Pages)
	}
	if !strings.Contains(preview.Text, "Ticket") {
		t.Fatalf("text=%q", preview.Text)
	}
}

func TestExtractPreviewRejectsGarbage(t *testing.T) {
	if _, err := ExtractPreview([]byte("not a pdf")); err == nil {
		t.Fatal("expected error")
	}
}
