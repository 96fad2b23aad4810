package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ticketdash/internal/connectors"
	"ticketdash/internal/dashboard"
	"ticketdash/internal/i18n"
	"ticketdash/internal/pipeline"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ticketJSON struct {
	Fields      map[string]any `json:"fields"`
	Ticket      string         `json:"ticket"`
	Source      string         `json:"source"`
	CompanionID string         `json:"companionId,omitempty"`
}

type summaryJSON struct {
	pipeline.Summary
	Formatted struct {
		TotalPrice  string `json:"totalPrice"`
		TotalWeight string `json:"totalWeight"`
	} `json:"formatted"`
	Language string `json:"language"`
}

func (s *Server) locale(c *gin.Context) i18n.Locale {
	return i18n.Resolve(c.Query("lang"), c.GetHeader("Accept-Language"), s.dash.Config().DefaultLanguage)
}

// load resolves the filter criteria of the request and applies them.
func (s *Server) load(c *gin.Context) (dashboard.Result, bool) {
	cfg := s.dash.Config()
	criteria, err := pipeline.CriteriaFromValues(c.Request.URL.Query(), cfg.Schema, cfg.Location())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return dashboard.Result{}, false
	}
	return s.dash.Query(c.Request.Context(), criteria), true
}

func (s *Server) tickets(c *gin.Context) {
	res, ok := s.load(c)
	if !ok {
		return
	}

	columns := pipeline.ExportColumns(res.Rows)
	out := make([]ticketJSON, 0, res.Rows.Len())
	for _, row := range res.Rows.Rows {
		fields := make(map[string]any, len(columns))
		for _, col := range columns {
			fields[col] = row.Cell(col)
		}
		out = append(out, ticketJSON{
			Fields:      fields,
			Ticket:      s.dash.TicketLabel(row),
			Source:      row.SourceName(),
			CompanionID: row.CompanionID(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"columns":        columns,
		"displayColumns": pipeline.DisplayColumns(res.Rows),
		"count":          len(out),
		"total":          res.View.Dataset.Len(),
		"tickets":        out,
		"fetchedAt":      res.View.FetchedAt,
		"error":          res.View.Err,
	})
}

func (s *Server) choices(c *gin.Context) {
	view := s.dash.Load(c.Request.Context())
	c.JSON(http.StatusOK, s.dash.Choices(view))
}

func (s *Server) summary(c *gin.Context) {
	res, ok := s.load(c)
	if !ok {
		return
	}
	loc := s.locale(c)
	out := summaryJSON{Summary: res.Summary, Language: loc.Code}
	out.Formatted.TotalPrice = loc.Money(res.Summary.TotalPrice)
	out.Formatted.TotalWeight = loc.Weight(res.Summary.TotalWeight)
	c.JSON(http.StatusOK, out)
}

func (s *Server) report(c *gin.Context) {
	view := s.dash.Load(c.Request.Context())
	if view.Err != "" || view.Report == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": view.Err})
		return
	}
	c.JSON(http.StatusOK, view.Report)
}

func (s *Server) exportXLSX(c *gin.Context) {
	res, ok := s.load(c)
	if !ok {
		return
	}
	buf := bytes.NewBuffer(nil)
	if err := pipeline.WriteXLSX(res.Rows, res.Summary, buf); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	name := pipeline.ReportFileName(time.Now().In(s.dash.Config().Location()))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (s *Server) document(c *gin.Context) {
	doc, err := s.dash.Companion(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.documentError(c, err)
		return
	}
	disposition := "inline"
	if c.Query("download") == "1" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", fmt.Sprintf(`%s; filename="%s"`, disposition, doc.FileName))
	c.Data(http.StatusOK, "application/pdf", doc.Content)
}

func (s *Server) preview(c *gin.Context) {
	preview, doc, err := s.dash.Preview(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.documentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":       doc.ID,
		"fileName": doc.FileName,
		"ticket":   s.dash.TicketLabel(doc.Ticket),
		"pages":    preview.Pages,
		"text":     preview.Text,
	})
}

func (s *Server) documentError(c *gin.Context, err error) {
	loc := s.locale(c)
	if errors.Is(err, dashboard.ErrUnknownDocument) || errors.Is(err, connectors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": loc.Labels.PDFMissing})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}

func (s *Server) refresh(c *gin.Context) {
	view := s.dash.Refresh(c.Request.Context())
	status := http.StatusOK
	if view.Err != "" {
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{
		"records":   view.Dataset.Len(),
		"fetchedAt": view.FetchedAt,
		"error":     view.Err,
	})
}
