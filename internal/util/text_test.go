package util

import (
	"encoding/json"
	"testing"
)

func TestFileKey(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "upper json", input: "Ticket-001.JSON", want: "ticket001"},
		{name: "underscore pdf", input: "ticket_001.pdf", want: "ticket001"},
		{name: "double extension", input: "T 12.backup.json", want: "t12backup"},
		{name: "no extension", input: "Ticket 7", want: "ticket7"},
		{name: "accents dropped", input: "Reçu-é1.pdf", want: "reu1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FileKey(tc.input); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestToText(t *testing.T) {
	cases := []struct {
		name  string
		input any
		want  string
	}{
		{name: "nil", input: nil, want: "nan"},
		{name: "string", input: "ABC", want: "ABC"},
		{name: "number literal", input: json.Number("12.50"), want: "12.5"},
		{name: "exponent literal", input: json.Number("1e5"), want: "100000"},
		{name: "integer literal", input: json.Number("3000"), want: "3000"},
		{name: "float", input: 1234.5, want: "1234.5"},
		{name: "bool", input: true, want: "True"},
		{name: "object", input: map[string]any{"a": "b"}, want: `{"a":"b"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ToText(tc.input); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestSafeFileName(t *testing.T) {
	cases := map[string]string{
		"001":       "001",
		"T 12/3":    "T_12_3",
		"A-7.b":     "A-7.b",
		"reçu n°4":  "reçu_n_4",
	}
	for in, want := range cases {
		if got := SafeFileName(in); got != want {
			t.Fatalf("SafeFileName(%q)=%q want %q", in, got, want)
		}
	}
}
