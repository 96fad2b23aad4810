package pipeline

import (
	"reflect"
	"testing"

	"ticketdash/internal/config"
)

func TestFilterEmptyCriteriaIsIdentity(t *testing.T) {
	ds := mustDataset(t, sampleTickets)
	out := NewFilter(config.DefaultSchema()).Apply(ds, FilterCriteria{})
	if !reflect.DeepEqual(ticketNumbers(out), ticketNumbers(ds)) {
		t.Fatalf("got %v want %v", ticketNumbers(out), ticketNumbers(ds))
	}
	if !reflect.DeepEqual(out.Columns, ds.Columns) {
		t.Fatalf("columns changed")
	}
}

func TestFilterDimensions(t *testing.T) {
	ds := mustDataset(t, sampleTickets)
	f := NewFilter(config.DefaultSchema())

	cases := []struct {
		name     string
		criteria FilterCriteria
		want     []string
	}{
		{name: "client", criteria: FilterCriteria{Clients: []string{"Atlas"}}, want: []string{"T2", "T3"}},
		{name: "clients or", criteria: FilterCriteria{Clients: []string{"Atlas", "ACME Corp"}}, want: []string{"T1", "T2", "T3", "T4"}},
		{name: "client and vehicle", criteria: FilterCriteria{Clients: []string{"Atlas"}, Vehicles: []string{"12345-A-6"}}, want: []string{"T3"}},
		{name: "product", criteria: FilterCriteria{Products: []string{"Ciment"}}, want: []string{"T4"}},
		{name: "driver", criteria: FilterCriteria{Drivers: []string{"Omar"}}, want: []string{"T1", "T3"}},
		{name: "no match", criteria: FilterCriteria{Drivers: []string{"Nobody"}}, want: []string{}},
		{name: "date inclusive ignores time", criteria: FilterCriteria{From: day(2024, 3, 5), To: day(2024, 3, 5)}, want: []string{"T1", "T2"}},
		{name: "date open end", criteria: FilterCriteria{From: day(2024, 3, 6)}, want: []string{"T3", "T4"}},
		{name: "custom", criteria: FilterCriteria{Custom: map[string][]string{"ex1": {"Casablanca"}}}, want: []string{"T1", "T4"}},
		{name: "custom empty set", criteria: FilterCriteria{Custom: map[string][]string{"ex1": {}}}, want: []string{"T1", "T2", "T3", "T4"}},
		{name: "query case insensitive", criteria: FilterCriteria{Query: "acme"}, want: []string{"T1", "T4"}},
		{name: "query any column", criteria: FilterCriteria{Query: "gravet"}, want: []string{"T2"}},
		{name: "query skips system columns", criteria: FilterCriteria{Query: "special"}, want: []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ticketNumbers(f.Apply(ds, tc.criteria))
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

func TestFilterConfiguredSearchColumns(t *testing.T) {
	schema := config.DefaultSchema()
	schema.SearchColumns = []string{"_json_filename"}
	ds := mustDataset(t, sampleTickets)

	got := ticketNumbers(NewFilter(schema).Apply(ds, FilterCriteria{Query: "SPECIAL"}))
	if !reflect.DeepEqual(got, []string{"T4"}) {
		t.Fatalf("got %v", got)
	}
	got = ticketNumbers(NewFilter(schema).Apply(ds, FilterCriteria{Query: "acme corp"}))
	if len(got) != 0 {
		t.Fatalf("searched outside configured columns: %v", got)
	}
}

func TestFilterSearchesDerivedColumns(t *testing.T) {
	ds := mustDataset(t, sampleTickets)

	schema := config.DefaultSchema()
	schema.SearchColumns = []string{ColCleanDate, ColMainProduct}
	f := NewFilter(schema)

	cases := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "clean date", query: "2024-03-05", want: []string{"T1", "T2"}},
		{name: "main product", query: "sable", want: []string{"T1", "T3"}},
		{name: "raw column not configured", query: "omar", want: []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ticketNumbers(f.Apply(ds, FilterCriteria{Query: tc.query}))
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

func TestFilterDefaultSearchIncludesCleanDate(t *testing.T) {
	ds := mustDataset(t, `[
	 {"ticket_no":"A","date_out":"25/03/2024 08:30"},
	 {"ticket_no":"B","date_out":"2024-03-26 09:00:00"}
	]`)
	got := ticketNumbers(NewFilter(config.DefaultSchema()).Apply(ds, FilterCriteria{Query: "2024-03-25"}))
	if !reflect.DeepEqual(got, []string{"A"}) {
		t.Fatalf("got %v", got)
	}
}

func TestFilterComposes(t *testing.T) {
	ds := mustDataset(t, sampleTickets)
	f := NewFilter(config.DefaultSchema())

	byClient := FilterCriteria{Clients: []string{"Atlas"}}
	byDate := FilterCriteria{From: day(2024, 3, 6), To: day(2024, 3, 31)}
	both := FilterCriteria{Clients: []string{"Atlas"}, From: day(2024, 3, 6), To: day(2024, 3, 31)}

	chained := ticketNumbers(f.Apply(f.Apply(ds, byClient), byDate))
	combined := ticketNumbers(f.Apply(ds, both))
	if !reflect.DeepEqual(chained, combined) {
		t.Fatalf("chained %v combined %v", chained, combined)
	}
	if !reflect.DeepEqual(combined, []string{"T3"}) {
		t.Fatalf("combined %v", combined)
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	ds := mustDataset(t, sampleTickets)
	before := ticketNumbers(ds)
	f := NewFilter(config.DefaultSchema())
	_ = f.Apply(ds, FilterCriteria{Clients: []string{"Atlas"}})
	_ = f.Apply(ds, FilterCriteria{Query: "sable"})
	if !reflect.DeepEqual(ticketNumbers(ds), before) {
		t.Fatalf("input changed: %v", ticketNumbers(ds))
	}
}

func TestCriteriaIsZero(t *testing.T) {
	if !(FilterCriteria{Custom: map[string][]string{"ex1": nil}}).IsZero() {
		t.Fatal("empty custom selection should be zero")
	}
	if (FilterCriteria{Query: "x"}).IsZero() {
		t.Fatal("query should not be zero")
	}
}
