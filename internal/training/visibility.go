package training

import "github.com/google/uuid"

// OverrideState is a user's per-entity visibility exception on shared content.
type OverrideState string

const (
	OverrideInherit  OverrideState = ""
	OverrideForceOn  OverrideState = "on"
	OverrideForceOff OverrideState = "off"
)

// ParseOverrideState maps a stored value onto the tri-state. Unknown values
// inherit.
func ParseOverrideState(s string) OverrideState {
	switch OverrideState(s) {
	case OverrideForceOn:
		return OverrideForceOn
	case OverrideForceOff:
		return OverrideForceOff
	default:
		return OverrideInherit
	}
}

// Visibility is what the resolver needs to know about one entity as seen by
// one user.
type Visibility struct {
	OwnerID  *uuid.UUID
	Active   bool
	Override OverrideState
}

// Global reports whether the entity is shared content.
func (v Visibility) Global() bool { return v.OwnerID == nil }

// OwnedBy reports whether the entity belongs to userID.
func (v Visibility) OwnedBy(userID uuid.UUID) bool {
	return v.OwnerID != nil && *v.OwnerID == userID
}

// EffectiveActive combines the entity flag with the user's override. Overrides
// only apply to shared content, and never revive an inactive entity.
func EffectiveActive(v Visibility) bool {
	if !v.Active {
		return false
	}
	if !v.Global() {
		return true
	}
	return v.Override != OverrideForceOff
}

// VisibleTo is EffectiveActive plus the ownership rule: personal content of
// another user is never visible.
func VisibleTo(v Visibility, userID uuid.UUID) bool {
	if !v.Global() && !v.OwnedBy(userID) {
		return false
	}
	return EffectiveActive(v)
}

// NextOverride is the state written when a user toggles shared content for
// themselves. Turning it off writes a ForceOff row; toggling again removes the
// row so the entity inherits again.
func NextOverride(current OverrideState) OverrideState {
	if current == OverrideInherit {
		return OverrideForceOff
	}
	return OverrideInherit
}
