package pipeline

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"

	"ticketdash/internal"
	"ticketdash/internal/config"
	"ticketdash/internal/util"
)

// DateLayout is how clean_date is rendered; it parses back to the same value.
const DateLayout = "2006-01-02 15:04:05"

// Row is a ticket after defaulting, cleaning and derivation.
type Row struct {
	Record      internal.RawRecord
	CleanDate   time.Time
	CleanPrice  decimal.Decimal
	CleanWeight decimal.Decimal
	MainProduct string
	VehicleRef  string
	ClientRef   string
	DriverRef   string
	Hour        int
}

func (r Row) SourceName() string  { return r.Record.SourceName() }
func (r Row) CompanionID() string { return r.Record.CompanionID() }

// Dataset is an ordered list of rows plus the raw columns in first-seen order.
type Dataset struct {
	Columns []string
	Rows    []Row
}

func (ds Dataset) Len() int { return len(ds.Rows) }

type Normalizer struct {
	schema config.Schema
	loc    *time.Location
	now    func() time.Time
}

func NewNormalizer(schema config.Schema, loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	return &Normalizer{schema: schema, loc: loc, now: time.Now}
}

// Normalize turns raw records into rows. It never fails: bad dates fall back
// to the secondary date and then to the current time, bad numbers become 0.
// Input records are not modified.
func (n *Normalizer) Normalize(records []internal.RawRecord) Dataset {
	now := n.now().In(n.loc)
	expected := n.schema.ExpectedKeys()

	ds := Dataset{Columns: []string{}, Rows: make([]Row, 0, len(records))}
	seen := map[string]struct{}{}

	for _, raw := range records {
		rec := raw.Clone()
		for _, key := range expected {
			if !rec.Has(key) {
				rec.Set(key, "")
			}
		}
		for _, key := range rec.Keys {
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				ds.Columns = append(ds.Columns, key)
			}
		}

		cleanDate := n.resolveDate(rec, now)
		ds.Rows = append(ds.Rows, Row{
			Record:      rec,
			CleanDate:   cleanDate,
			CleanPrice:  util.CleanDecimal(valueOf(rec, n.schema.Price.Key)),
			CleanWeight: util.CleanDecimal(valueOf(rec, n.schema.Weight.Key)),
			MainProduct: textOf(rec, n.schema.Product.Key),
			VehicleRef:  textOf(rec, n.schema.Plate.Key),
			ClientRef:   textOf(rec, n.schema.Client.Key),
			DriverRef:   textOf(rec, n.schema.Driver.Key),
			Hour:        cleanDate.Hour(),
		})
	}

	return ds
}

func (n *Normalizer) resolveDate(rec internal.RawRecord, now time.Time) time.Time {
	if t, ok := n.parseDate(valueOf(rec, n.schema.Date.Key)); ok {
		return t
	}
	if key := n.schema.DateFallback.Key; key != "" && rec.Has(key) {
		if t, ok := n.parseDate(valueOf(rec, key)); ok {
			return t
		}
	}
	return now
}

// parseDate accepts whatever dateparse recognizes, month first, then day
// first when that fails. Failures, including panics from odd input, report
// false.
func (n *Normalizer) parseDate(v any) (parsed time.Time, ok bool) {
	var text string
	switch t := v.(type) {
	case string:
		text = strings.TrimSpace(t)
	case json.Number:
		text = t.String()
	default:
		return time.Time{}, false
	}
	if text == "" {
		return time.Time{}, false
	}

	defer func() {
		if r := recover(); r != nil {
			parsed, ok = time.Time{}, false
		}
	}()
	t, err := dateparse.ParseIn(text, n.loc)
	if err != nil {
		// 25/03/2024 only reads day first.
		t, err = dateparse.ParseIn(text, n.loc, dateparse.PreferMonthFirst(false))
		if err != nil {
			return time.Time{}, false
		}
	}
	return t, true
}

func valueOf(rec internal.RawRecord, key string) any {
	if key == "" {
		return ""
	}
	v, ok := rec.Get(key)
	if !ok {
		return ""
	}
	return v
}

func textOf(rec internal.RawRecord, key string) string {
	return util.ToText(valueOf(rec, key))
}
