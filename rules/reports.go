package rules

import "sort"

// DefaultTopN is how many entries occupancy rankings show.
const DefaultTopN = 5

// TopN returns the n entries with the highest count, highest first.
// Ties keep their input order. The input slice is not modified.
func TopN[T any](items []T, n int, count func(T) int) []T {
	sorted := make([]T, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return count(sorted[i]) > count(sorted[j])
	})
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// PaymentTotals are the grand totals of a monthly teacher payment report.
type PaymentTotals struct {
	Escuelita float64 `json:"total_escuelita"`
	Pension   float64 `json:"total_pension"`
	General   float64 `json:"total_general"`
}

// PaymentTotal is what a teacher is paid for the month.
func PaymentTotal(pagoEscuelita, pagoPension float64) float64 {
	return pagoEscuelita + pagoPension
}

// Percentage applies a percentage rate to an amount.
func Percentage(amount, rate float64) float64 {
	return amount * rate / 100
}

// SumPayments adds up the escuelita and pension payments of every teacher.
func SumPayments[T any](items []T, escuelita, pension func(T) float64) PaymentTotals {
	var t PaymentTotals
	for _, it := range items {
		e, p := escuelita(it), pension(it)
		t.Escuelita += e
		t.Pension += p
		t.General += PaymentTotal(e, p)
	}
	return t
}
