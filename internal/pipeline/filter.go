package pipeline

import (
	"strings"
	"time"

	"golang.org/x/text/cases"

	"ticketdash/internal/config"
	"ticketdash/internal/util"
)

// FilterCriteria holds the operator's current selections. A nil bound, an
// empty list or an empty query places no restriction on that dimension.
type FilterCriteria struct {
	From     *time.Time
	To       *time.Time
	Clients  []string
	Vehicles []string
	Products []string
	Drivers  []string
	Custom   map[string][]string
	Query    string
}

func (c FilterCriteria) IsZero() bool {
	if c.From != nil || c.To != nil || strings.TrimSpace(c.Query) != "" {
		return false
	}
	if len(c.Clients) > 0 || len(c.Vehicles) > 0 || len(c.Products) > 0 || len(c.Drivers) > 0 {
		return false
	}
	for _, values := range c.Custom {
		if len(values) > 0 {
			return false
		}
	}
	return true
}

type Filter struct {
	searchColumns []string
}

// NewFilter builds a filter whose free-text search looks at the schema's
// search columns, or at every non-system column, derived ones included, when
// none are configured.
func NewFilter(schema config.Schema) *Filter {
	return &Filter{searchColumns: schema.SearchColumns}
}

// Apply returns the rows of ds matching every dimension of c, in their
// original order. ds is left untouched.
func (f *Filter) Apply(ds Dataset, c FilterCriteria) Dataset {
	out := Dataset{Columns: append([]string(nil), ds.Columns...), Rows: make([]Row, 0, len(ds.Rows))}

	clients := toSet(c.Clients)
	vehicles := toSet(c.Vehicles)
	products := toSet(c.Products)
	drivers := toSet(c.Drivers)
	custom := map[string]map[string]struct{}{}
	for key, values := range c.Custom {
		if set := toSet(values); set != nil {
			custom[key] = set
		}
	}

	var fromKey, toKey int
	if c.From != nil {
		fromKey = dateKey(*c.From)
	}
	if c.To != nil {
		toKey = dateKey(*c.To)
	}

	fold := cases.Fold()
	query := fold.String(strings.TrimSpace(c.Query))
	columns := f.columnsFor(ds)

	for _, row := range ds.Rows {
		day := dateKey(row.CleanDate)
		if c.From != nil && day < fromKey {
			continue
		}
		if c.To != nil && day > toKey {
			continue
		}
		if !inSet(clients, row.ClientRef) || !inSet(vehicles, row.VehicleRef) || !inSet(products, row.MainProduct) || !inSet(drivers, row.DriverRef) {
			continue
		}
		if !matchCustom(custom, row) {
			continue
		}
		if query != "" && !matchQuery(fold, query, columns, row) {
			continue
		}
		out.Rows = append(out.Rows, row)
	}

	return out
}

func (f *Filter) columnsFor(ds Dataset) []string {
	if len(f.searchColumns) > 0 {
		return f.searchColumns
	}
	return ExportColumns(ds)
}

func matchCustom(custom map[string]map[string]struct{}, row Row) bool {
	for key, set := range custom {
		v, ok := row.Record.Get(key)
		if !ok {
			return false
		}
		if _, ok := set[util.ToText(v)]; !ok {
			return false
		}
	}
	return true
}

func matchQuery(fold cases.Caser, query string, columns []string, row Row) bool {
	for _, col := range columns {
		if strings.Contains(fold.String(searchText(row, col)), query) {
			return true
		}
	}
	return false
}

// searchText renders a cell the way it is displayed. Missing and null cells
// are empty.
func searchText(row Row, col string) string {
	switch v := row.Cell(col).(type) {
	case string:
		return v
	case time.Time:
		return v.Format(DateLayout)
	default:
		return util.ToText(v)
	}
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func inSet(set map[string]struct{}, value string) bool {
	if set == nil {
		return true
	}
	_, ok := set[value]
	return ok
}

// dateKey compares calendar days in the time's own location.
func dateKey(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}
