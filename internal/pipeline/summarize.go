package pipeline

import (
	"sort"

	"github.com/shopspring/decimal"
)

const DefaultTopN = 5

type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

type ProductCount struct {
	Product string `json:"product"`
	Count   int    `json:"count"`
}

type Summary struct {
	Count       int             `json:"count"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
	TotalWeight decimal.Decimal `json:"totalWeight"`
	ByHour      []HourCount     `json:"byHour"`
	TopProducts []ProductCount  `json:"topProducts"`
}

func Summarize(ds Dataset) Summary {
	return SummarizeTop(ds, DefaultTopN)
}

// SummarizeTop computes totals, the hourly histogram (hours present only,
// ascending) and the n most frequent products. Products with equal counts
// keep the order in which they were first seen.
func SummarizeTop(ds Dataset, n int) Summary {
	if n <= 0 {
		n = DefaultTopN
	}
	s := Summary{
		TotalPrice:  decimal.Zero,
		TotalWeight: decimal.Zero,
		ByHour:      []HourCount{},
		TopProducts: []ProductCount{},
	}

	hours := map[int]int{}
	counts := map[string]int{}
	var order []string
	for _, row := range ds.Rows {
		s.Count++
		s.TotalPrice = s.TotalPrice.Add(row.CleanPrice)
		s.TotalWeight = s.TotalWeight.Add(row.CleanWeight)
		hours[row.Hour]++
		if _, ok := counts[row.MainProduct]; !ok {
			order = append(order, row.MainProduct)
		}
		counts[row.MainProduct]++
	}

	for hour, count := range hours {
		s.ByHour = append(s.ByHour, HourCount{Hour: hour, Count: count})
	}
	sort.Slice(s.ByHour, func(i, j int) bool { return s.ByHour[i].Hour < s.ByHour[j].Hour })

	ranked := make([]ProductCount, 0, len(order))
	for _, p := range order {
		ranked = append(ranked, ProductCount{Product: p, Count: counts[p]})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	s.TopProducts = append(s.TopProducts, ranked...)

	return s
}
