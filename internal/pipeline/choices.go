package pipeline

import (
	"sort"
	"time"

	"ticketdash/internal/config"
	"ticketdash/internal/util"
)

type CustomChoice struct {
	Key    string   `json:"key"`
	Label  string   `json:"label"`
	Values []string `json:"values"`
}

// Choices are the values offered in each multi-select.
type Choices struct {
	Clients  []string       `json:"clients"`
	Vehicles []string       `json:"vehicles"`
	Products []string       `json:"products"`
	Drivers  []string       `json:"drivers"`
	Custom   []CustomChoice `json:"custom"`
	MinDate  string         `json:"minDate"`
	MaxDate  string         `json:"maxDate"`
}

func BuildChoices(ds Dataset, schema config.Schema, today time.Time) Choices {
	c := Choices{
		Clients:  unique(ds, func(r Row) string { return r.ClientRef }, false),
		Vehicles: unique(ds, func(r Row) string { return r.VehicleRef }, false),
		Products: unique(ds, func(r Row) string { return r.MainProduct }, false),
		Drivers:  unique(ds, func(r Row) string { return r.DriverRef }, false),
		Custom:   []CustomChoice{},
	}

	present := map[string]struct{}{}
	for _, col := range ds.Columns {
		present[col] = struct{}{}
	}
	for _, f := range schema.Custom {
		if f.Label == "" {
			continue
		}
		if _, ok := present[f.Key]; !ok {
			continue
		}
		key := f.Key
		c.Custom = append(c.Custom, CustomChoice{
			Key:   key,
			Label: f.Label,
			Values: unique(ds, func(r Row) string {
				v, _ := r.Record.Get(key)
				return util.ToText(v)
			}, true),
		})
	}

	minDay, maxDay := DateBounds(ds, today)
	c.MinDate = minDay.Format(DayLayout)
	c.MaxDate = maxDay.Format(DayLayout)
	return c
}

// DateBounds returns the earliest and latest clean_date, or today twice for
// an empty dataset.
func DateBounds(ds Dataset, today time.Time) (time.Time, time.Time) {
	if len(ds.Rows) == 0 {
		return today, today
	}
	minDay, maxDay := ds.Rows[0].CleanDate, ds.Rows[0].CleanDate
	for _, row := range ds.Rows[1:] {
		if row.CleanDate.Before(minDay) {
			minDay = row.CleanDate
		}
		if row.CleanDate.After(maxDay) {
			maxDay = row.CleanDate
		}
	}
	return minDay, maxDay
}

// SortNewestFirst returns a copy of ds ordered by clean_date descending.
func SortNewestFirst(ds Dataset) Dataset {
	out := Dataset{Columns: append([]string(nil), ds.Columns...), Rows: append([]Row(nil), ds.Rows...)}
	sort.SliceStable(out.Rows, func(i, j int) bool {
		return out.Rows[i].CleanDate.After(out.Rows[j].CleanDate)
	})
	return out
}

func unique(ds Dataset, pick func(Row) string, dropUnset bool) []string {
	out := []string{}
	seen := map[string]struct{}{}
	for _, row := range ds.Rows {
		v := pick(row)
		if dropUnset && util.IsUnset(v) {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
