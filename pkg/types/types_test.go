package types_test

import (
	"slices"
	"testing"

	"github.com/MrWong99/elocution/pkg/types"
)

func TestPriority_Rank(t *testing.T) {
	t.Parallel()

	got := []types.Priority{types.PriorityLow, "", types.PriorityHigh, types.PriorityMedium}
	slices.SortStableFunc(got, func(a, b types.Priority) int { return a.Rank() - b.Rank() })

	want := []types.Priority{types.PriorityHigh, types.PriorityMedium, types.PriorityLow, ""}
	if !slices.Equal(got, want) {
		t.Errorf("sorted = %v, want %v", got, want)
	}
}
