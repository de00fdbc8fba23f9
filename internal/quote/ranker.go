package quote

import (
	"sort"

	"github.com/blessandsoul/project-x-sub001/internal/model"
)

// Rank returns annotated copies of the quotes sorted ascending by total
// price, ties broken by estimated duration then provider id so the order is
// fully deterministic. Exactly the first element carries IsBest; an empty
// input yields an empty output. The input slice is never mutated.
func Rank(quotes []model.Quote) []model.Quote {
	out := make([]model.Quote, len(quotes))
	copy(out, quotes)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalCents != out[j].TotalCents {
			return out[i].TotalCents < out[j].TotalCents
		}
		if out[i].EstimatedDays != out[j].EstimatedDays {
			return out[i].EstimatedDays < out[j].EstimatedDays
		}
		return out[i].ProviderID < out[j].ProviderID
	})

	for i := range out {
		out[i].IsBest = i == 0
	}
	return out
}
