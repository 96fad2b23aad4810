package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Documents.WithLabelValues("ok").Add(3)
	m.CacheHits.Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	values := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			if c := metric.GetCounter(); c != nil {
				values[mf.GetName()] += c.GetValue()
			}
		}
	}

	if values["ticketdash_documents_total"] != 3 {
		t.Fatalf("documents=%v", values["ticketdash_documents_total"])
	}
	if values["ticketdash_cache_hits_total"] != 1 {
		t.Fatalf("cache hits=%v", values["ticketdash_cache_hits_total"])
	}
}

func TestNewTwiceOnOneRegistryPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	defer func() {
		if recover() == nil {
			t.Fatal("expected duplicate registration panic")
		}
	}()
	New(reg)
}
