package pipeline

import (
	"reflect"
	"testing"
)

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(Dataset{})
	if s.Count != 0 || !s.TotalPrice.IsZero() || !s.TotalWeight.IsZero() {
		t.Fatalf("unexpected totals %+v", s)
	}
	if s.ByHour == nil || len(s.ByHour) != 0 {
		t.Fatalf("byHour=%v", s.ByHour)
	}
	if s.TopProducts == nil || len(s.TopProducts) != 0 {
		t.Fatalf("topProducts=%v", s.TopProducts)
	}
}

func TestSummarizeTotalsAndHours(t *testing.T) {
	s := Summarize(mustDataset(t, sampleTickets))
	if s.Count != 4 {
		t.Fatalf("count=%d", s.Count)
	}
	if s.TotalPrice.String() != "2584.75" {
		t.Fatalf("price=%s", s.TotalPrice)
	}
	if s.TotalWeight.String() != "23500" {
		t.Fatalf("weight=%s", s.TotalWeight)
	}
	want := []HourCount{{Hour: 8, Count: 1}, {Hour: 10, Count: 2}, {Hour: 23, Count: 1}}
	if !reflect.DeepEqual(s.ByHour, want) {
		t.Fatalf("byHour=%v", s.ByHour)
	}
}

func TestSummarizeTopProductsStableTies(t *testing.T) {
	doc := `[`
	products := []string{"A", "B", "C", "A", "B", "C", "A", "B", "C", "A", "B", "A", "B"}
	for i, p := range products {
		if i > 0 {
			doc += ","
		}
		doc += `{"product":"` + p + `"}`
	}
	doc += `]`

	s := Summarize(mustDataset(t, doc))
	want := []ProductCount{{Product: "A", Count: 5}, {Product: "B", Count: 5}, {Product: "C", Count: 3}}
	if !reflect.DeepEqual(s.TopProducts, want) {
		t.Fatalf("got %v", s.TopProducts)
	}
}

func TestSummarizeTopLimit(t *testing.T) {
	doc := `[{"product":"P1"},{"product":"P2"},{"product":"P3"},{"product":"P2"}]`
	s := SummarizeTop(mustDataset(t, doc), 2)
	want := []ProductCount{{Product: "P2", Count: 2}, {Product: "P1", Count: 1}}
	if !reflect.DeepEqual(s.TopProducts, want) {
		t.Fatalf("got %v", s.TopProducts)
	}
}
