package pipeline

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Preview is the text view of a companion document.
type Preview struct {
	Pages int    `json:"pages"`
	Text  string `json:"text"`
}

func ExtractPreview(content []byte) (preview Preview, err error) {
	defer func() {
		if r := recover(); r != nil {
			preview, err = Preview{}, fmt.Errorf("read pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return Preview{}, err
	}

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, strings.TrimSpace(text))
	}

	return Preview{Pages: r.NumPage(), Text: strings.Join(pages, "\n\n")}, nil
}
