package pipeline

import (
	"testing"
	"time"

	"ticketdash/internal"
	"ticketdash/internal/config"
)

var fixedNow = time.Date(2024, 6, 1, 14, 30, 0, 0, time.UTC)

func testNormalizer() *Normalizer {
	n := NewNormalizer(config.DefaultSchema(), time.UTC)
	n.now = func() time.Time { return fixedNow }
	return n
}

func mustRecords(t *testing.T, doc string) []internal.RawRecord {
	t.Helper()
	records, err := ParseDocument([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	return records
}

func mustDataset(t *testing.T, doc string) Dataset {
	t.Helper()
	return testNormalizer().Normalize(mustRecords(t, doc))
}

func ticketNumbers(ds Dataset) []string {
	out := make([]string, 0, len(ds.Rows))
	for _, r := range ds.Rows {
		v, _ := r.Record.Get("ticket_no")
		s, _ := v.(string)
		out = append(out, s)
	}
	return out
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

const sampleTickets = `[
 {"ticket_no":"T1","plate":"12345-A-6","product":"Sable","client":"ACME Corp","driver":"Omar","net":"12,500 kg","price":"1,234.50 MAD","date_out":"2024-03-05 08:15:00","ex1":"Casablanca","_json_filename":"t1.json"},
 {"ticket_no":"T2","plate":"777-B-1","product":"Gravette","client":"Atlas","driver":"Said","net":"8000","price":"900","date_out":"2024-03-05 23:59:00","ex1":"Rabat","_json_filename":"t2.json"},
 {"ticket_no":"T3","plate":"12345-A-6","product":"Sable","client":"Atlas","driver":"Omar","net":"","price":"","date_out":"2024-03-06 10:00:00","ex1":null,"_json_filename":"t3.json"},
 {"ticket_no":"T4","plate":"555-C-2","product":"Ciment","client":"ACME Corp","driver":"Hamid","net":3000,"price":450.25,"date_out":"2024-03-07 10:45:00","ex1":"Casablanca","_json_filename":"acme-special.json"}
]`
