package auth

import "fmt"

// Position is the rank axis of an employee's authority within the
// currently selected tenant. It is orthogonal to roles/permissions.
type Position string

const (
	PositionOwner    Position = "OWNER"
	PositionAdmin    Position = "ADMIN"
	PositionManager  Position = "MANAGER"
	PositionTeamLead Position = "TEAM_LEAD"
	PositionEmployee Position = "EMPLOYEE"
	PositionIntern   Position = "INTERN"
)

// positionRank is the explicit rank table. A lower rank value is a
// HIGHER authority: OWNER(0) outranks everyone, INTERN(5) no one.
// Authorization must never depend on declaration order.
var positionRank = map[Position]int{
	PositionOwner:    0,
	PositionAdmin:    1,
	PositionManager:  2,
	PositionTeamLead: 3,
	PositionEmployee: 4,
	PositionIntern:   5,
}

// Rank returns the numeric rank of the position.
func (p Position) Rank() (int, error) {
	r, ok := positionRank[p]
	if !ok {
		return 0, fmt.Errorf("unknown position %q", p)
	}
	return r, nil
}

// Valid reports whether p is a known position.
func (p Position) Valid() bool {
	_, ok := positionRank[p]
	return ok
}

// IsAtLeast reports whether p has at least the authority of min.
// Because lower rank means higher authority, "at least MANAGER" admits
// OWNER, ADMIN and MANAGER but not TEAM_LEAD.
func (p Position) IsAtLeast(min Position) bool {
	pr, ok := positionRank[p]
	if !ok {
		return false
	}
	mr, ok := positionRank[min]
	if !ok {
		return false
	}
	return pr <= mr
}

// Positions lists all known positions from highest to lowest authority.
func Positions() []Position {
	return []Position{
		PositionOwner,
		PositionAdmin,
		PositionManager,
		PositionTeamLead,
		PositionEmployee,
		PositionIntern,
	}
}
