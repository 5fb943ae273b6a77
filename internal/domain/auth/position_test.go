package auth

import (
	"testing"
)

// The rank inversion (lower ordinal = higher authority) is easy to get
// backwards, so the comparison is pinned with an exhaustive truth table.
func TestPositionIsAtLeast_Exhaustive(t *testing.T) {
	order := Positions()

	rankOf := map[Position]int{
		PositionOwner:    0,
		PositionAdmin:    1,
		PositionManager:  2,
		PositionTeamLead: 3,
		PositionEmployee: 4,
		PositionIntern:   5,
	}

	for _, p := range order {
		for _, min := range order {
			want := rankOf[p] <= rankOf[min]
			if got := p.IsAtLeast(min); got != want {
				t.Errorf("%s.IsAtLeast(%s) = %v, want %v", p, min, got, want)
			}
		}
	}
}

func TestPositionIsAtLeast_Manager(t *testing.T) {
	admits := []Position{PositionOwner, PositionAdmin, PositionManager}
	denies := []Position{PositionTeamLead, PositionEmployee, PositionIntern}

	for _, p := range admits {
		if !p.IsAtLeast(PositionManager) {
			t.Errorf("%s should satisfy at-least-MANAGER", p)
		}
	}
	for _, p := range denies {
		if p.IsAtLeast(PositionManager) {
			t.Errorf("%s should not satisfy at-least-MANAGER", p)
		}
	}
}

func TestPositionUnknown(t *testing.T) {
	var unknown Position = "CONSULTANT"
	if unknown.Valid() {
		t.Error("unknown position must not be valid")
	}
	if unknown.IsAtLeast(PositionIntern) {
		t.Error("unknown position must never pass a rank check")
	}
	if PositionOwner.IsAtLeast(unknown) {
		t.Error("rank check against unknown minimum must fail")
	}
	if _, err := unknown.Rank(); err == nil {
		t.Error("Rank of unknown position must error")
	}
}
