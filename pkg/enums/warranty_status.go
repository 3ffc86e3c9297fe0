package enums

import "fmt"

// WarrantyStatus tracks where a warranty sits in its claim lifecycle.
type WarrantyStatus string

const (
	WarrantyStatusActive     WarrantyStatus = "active"
	WarrantyStatusClaimed    WarrantyStatus = "claimed"
	WarrantyStatusProcessing WarrantyStatus = "processing"
	WarrantyStatusCompleted  WarrantyStatus = "completed"
	WarrantyStatusCancelled  WarrantyStatus = "cancelled"
	WarrantyStatusExpired    WarrantyStatus = "expired"
)

var validWarrantyStatuses = []WarrantyStatus{
	WarrantyStatusActive,
	WarrantyStatusClaimed,
	WarrantyStatusProcessing,
	WarrantyStatusCompleted,
	WarrantyStatusCancelled,
	WarrantyStatusExpired,
}

var warrantyTransitions = map[WarrantyStatus][]WarrantyStatus{
	WarrantyStatusActive:     {WarrantyStatusClaimed, WarrantyStatusCancelled, WarrantyStatusExpired},
	WarrantyStatusClaimed:    {WarrantyStatusProcessing, WarrantyStatusCancelled},
	WarrantyStatusProcessing: {WarrantyStatusCompleted, WarrantyStatusCancelled},
}

// WarrantyStatuses returns every status in lifecycle order.
func WarrantyStatuses() []WarrantyStatus {
	out := make([]WarrantyStatus, len(validWarrantyStatuses))
	copy(out, validWarrantyStatuses)
	return out
}

// String implements fmt.Stringer.
func (s WarrantyStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known WarrantyStatus.
func (s WarrantyStatus) IsValid() bool {
	for _, candidate := range validWarrantyStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition leaves this status.
func (s WarrantyStatus) IsTerminal() bool {
	return s.IsValid() && len(warrantyTransitions[s]) == 0
}

// CanTransitionTo reports whether the lifecycle permits moving from s to next.
// Staying in place is always allowed.
func (s WarrantyStatus) CanTransitionTo(next WarrantyStatus) bool {
	if !s.IsValid() || !next.IsValid() {
		return false
	}
	if s == next {
		return true
	}
	for _, candidate := range warrantyTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// AllowedTransitions lists the statuses reachable from s in one step.
func (s WarrantyStatus) AllowedTransitions() []WarrantyStatus {
	next := warrantyTransitions[s]
	out := make([]WarrantyStatus, len(next))
	copy(out, next)
	return out
}

// ParseWarrantyStatus converts raw input into a WarrantyStatus.
func ParseWarrantyStatus(value string) (WarrantyStatus, error) {
	for _, candidate := range validWarrantyStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid warranty status %q", value)
}
