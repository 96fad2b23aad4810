package i18n

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		name, choice, accept, fallback, want string
	}{
		{"explicit code", "ar", "fr-FR", EN, AR},
		{"explicit tag", "fr-MA", "", EN, FR},
		{"accept language", "", "de-DE;q=0.9, en-GB;q=0.8", FR, EN},
		{"unsupported accept", "", "de-DE", FR, FR},
		{"bad choice falls through", "xx-invalid-", "ar-MA", FR, AR},
		{"nothing", "", "", FR, FR},
		{"unknown fallback", "", "", "DE", EN},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Resolve(tc.choice, tc.accept, tc.fallback); got.Code != tc.want {
				t.Fatalf("got %s want %s", got.Code, tc.want)
			}
		})
	}
}

func TestArabicIsRightToLeft(t *testing.T) {
	if Get(AR).Dir() != "rtl" || Get(FR).Dir() != "ltr" {
		t.Fatal("unexpected direction")
	}
}

func TestAmount(t *testing.T) {
	en := Get(EN)
	if got := en.Amount(decimal.RequireFromString("1234.5")); got != "1,234.50" {
		t.Fatalf("amount=%q", got)
	}
	if got := en.Money(decimal.RequireFromString("0")); got != "0.00 MAD" {
		t.Fatalf("money=%q", got)
	}
	if got := Get(FR).Weight(decimal.RequireFromString("12")); got != "12,00 kg" {
		t.Fatalf("weight=%q", got)
	}
}

func TestAllLocalesHaveLabels(t *testing.T) {
	for _, l := range All() {
		if l.Labels.Title == "" || l.Labels.Currency == "" || l.Labels.TotalPrice == "" {
			t.Fatalf("%s incomplete", l.Code)
		}
	}
}
