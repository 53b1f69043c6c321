package layout

import (
	"cmp"
	"slices"
	"strings"

	"github.com/matzehuels/readstack/pkg/errors"
	"github.com/matzehuels/readstack/pkg/genome"
)

// Order is the processing order used before packing.
type Order string

// Supported processing orders.
const (
	OrderInput Order = "input"
	OrderStart Order = "start"
	OrderEnd   Order = "end"
)

// ValidOrders is the set of supported orders.
var ValidOrders = map[Order]bool{
	OrderInput: true,
	OrderStart: true,
	OrderEnd:   true,
}

// ParseOrder converts a flag or config value into an Order. The empty string
// means OrderInput.
func ParseOrder(s string) (Order, error) {
	o := Order(strings.ToLower(strings.TrimSpace(s)))
	if o == "" {
		return OrderInput, nil
	}
	if !ValidOrders[o] {
		return "", errors.New(errors.ErrCodeInvalidOrder, "invalid order: %q (must be one of: input, start, end)", s)
	}
	return o, nil
}

// sequence returns the input indices in processing order. Sorting is stable
// so equal keys keep their input order.
func sequence(features []genome.Feature, o Order) []int {
	idx := make([]int, len(features))
	for i := range idx {
		idx[i] = i
	}
	switch o {
	case OrderStart:
		slices.SortStableFunc(idx, func(a, b int) int {
			return cmp.Compare(features[a].Start, features[b].Start)
		})
	case OrderEnd:
		slices.SortStableFunc(idx, func(a, b int) int {
			return cmp.Compare(features[a].End, features[b].End)
		})
	}
	return idx
}
