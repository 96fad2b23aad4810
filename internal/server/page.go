package server

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ticketdash/internal/i18n"
	"ticketdash/internal/pipeline"
	"ticketdash/internal/util"
)

//go:embed templates/*.html
var templateFS embed.FS

func parsePage() (*template.Template, error) {
	return template.New("index.html").ParseFS(templateFS, "templates/index.html")
}

type option struct {
	Value    string
	Selected bool
}

type selectBox struct {
	Name    string
	Label   string
	Options []option
}

type pageRow struct {
	Cells       []string
	Ticket      string
	CompanionID string
}

type hourBar struct {
	Hour    string
	Count   int
	Percent int
}

type pageData struct {
	L          i18n.Labels
	Lang       string
	Dir        string
	Languages  []i18n.Locale
	Company    string
	Website    string
	Phone      string
	LastUpdate string
	Error      string

	From, To     string
	MinDate      string
	MaxDate      string
	Query        string
	Selects      []selectBox
	Columns      []string
	Rows         []pageRow
	Count        int
	TotalPrice   string
	TotalWeight  string
	ByHour       []hourBar
	TopProducts  []pipeline.ProductCount
	ExportURL    string
	LangURLs     map[string]string
	Skipped      int
}

func (s *Server) index(c *gin.Context) {
	cfg := s.dash.Config()
	loc := s.locale(c)

	view := s.dash.Load(c.Request.Context())
	criteria, err := pipeline.CriteriaFromValues(c.Request.URL.Query(), cfg.Schema, cfg.Location())
	errText := view.Err
	if err != nil {
		errText = err.Error()
		criteria = pipeline.FilterCriteria{}
	}
	res := s.dash.Apply(view, criteria)
	choices := s.dash.Choices(view)

	data := pageData{
		L:         loc.Labels,
		Lang:      loc.Code,
		Dir:       loc.Dir(),
		Languages: i18n.All(),
		Company:   cfg.CompanyName,
		Website:   cfg.WebsiteURL,
		Phone:     cfg.PhoneNumber,
		Error:     errText,
		MinDate:   choices.MinDate,
		MaxDate:   choices.MaxDate,
		Query:     criteria.Query,
		Count:     res.Rows.Len(),
		Columns:   pipeline.DisplayColumns(res.Rows),

		TotalPrice:  loc.Money(res.Summary.TotalPrice),
		TotalWeight: loc.Weight(res.Summary.TotalWeight),
		TopProducts: res.Summary.TopProducts,
		LangURLs:    map[string]string{},
	}
	if !view.FetchedAt.IsZero() {
		data.LastUpdate = view.FetchedAt.In(cfg.Location()).Format("15:04")
	}
	if view.Report != nil {
		data.Skipped = view.Report.Skipped
	}
	if criteria.From != nil {
		data.From = criteria.From.Format(pipeline.DayLayout)
	}
	if criteria.To != nil {
		data.To = criteria.To.Format(pipeline.DayLayout)
	}

	data.Selects = []selectBox{
		newSelect("client", loc.Labels.Clients, choices.Clients, criteria.Clients),
		newSelect("vehicle", loc.Labels.Vehicles, choices.Vehicles, criteria.Vehicles),
		newSelect("product", loc.Labels.Products, choices.Products, criteria.Products),
		newSelect("driver", loc.Labels.Drivers, choices.Drivers, criteria.Drivers),
	}
	for _, custom := range choices.Custom {
		data.Selects = append(data.Selects, newSelect(custom.Key, custom.Label, custom.Values, criteria.Custom[custom.Key]))
	}

	for _, row := range res.Rows.Rows {
		cells := make([]string, 0, len(data.Columns))
		for _, col := range data.Columns {
			v, _ := row.Record.Get(col)
			cells = append(cells, util.ToText(v))
		}
		data.Rows = append(data.Rows, pageRow{Cells: cells, Ticket: s.dash.TicketLabel(row), CompanionID: row.CompanionID()})
	}

	peak := 0
	for _, h := range res.Summary.ByHour {
		if h.Count > peak {
			peak = h.Count
		}
	}
	for _, h := range res.Summary.ByHour {
		data.ByHour = append(data.ByHour, hourBar{Hour: twoDigits(h.Hour), Count: h.Count, Percent: h.Count * 100 / peak})
	}

	values := criteria.Values()
	values.Set("lang", loc.Code)
	data.ExportURL = "/api/export.xlsx?" + values.Encode()
	for _, l := range data.Languages {
		v := cloneValues(c.Request.URL.Query())
		v.Set("lang", l.Code)
		data.LangURLs[l.Code] = "/?" + v.Encode()
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := s.page.Execute(c.Writer, data); err != nil {
		s.log.Error("render page failed", zap.Error(err))
	}
}

func newSelect(name, label string, values, selected []string) selectBox {
	chosen := make(map[string]struct{}, len(selected))
	for _, v := range selected {
		chosen[v] = struct{}{}
	}
	box := selectBox{Name: name, Label: label, Options: make([]option, 0, len(values))}
	for _, v := range values {
		_, ok := chosen[v]
		box.Options = append(box.Options, option{Value: v, Selected: ok})
	}
	return box
}

func cloneValues(v url.Values) url.Values {
	out := url.Values{}
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
