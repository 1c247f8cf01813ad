package perm

import (
	"replydesk/internal/model"
)

// WritePath is where an ordering change is persisted.
type WritePath int

const (
	// WriteOverride persists to the session-local store only.
	WriteOverride WritePath = iota
	// WriteAuthoritative persists to the shared record store.
	WriteAuthoritative
)

func (p WritePath) String() string {
	switch p {
	case WriteAuthoritative:
		return "authoritative"
	default:
		return "override"
	}
}

// SelectWritePath decides which store an ordering change goes to.
//
// Rules:
// - Administrative surface and an elevated actor: authoritative.
// - Everything else, including an elevated actor on the home surface: override.
//
// Home-surface changes never reach the shared store, whatever the actor's role.
func SelectWritePath(actor model.Actor, surface model.Surface) WritePath {
	if surface == model.SurfaceAdmin && actor.Elevated() {
		return WriteAuthoritative
	}
	return WriteOverride
}

// ParsePrivilege accepts the privilege names used on the command line and in config.
func ParsePrivilege(s string) (model.Privilege, bool) {
	switch model.Privilege(s) {
	case model.PrivilegeAdmin:
		return model.PrivilegeAdmin, true
	case model.PrivilegeAgent, "":
		return model.PrivilegeAgent, true
	default:
		return "", false
	}
}

// ParseSurface accepts "admin" or "home" (the default).
func ParseSurface(s string) (model.Surface, bool) {
	switch model.Surface(s) {
	case model.SurfaceAdmin:
		return model.SurfaceAdmin, true
	case model.SurfaceHome, "":
		return model.SurfaceHome, true
	default:
		return "", false
	}
}
