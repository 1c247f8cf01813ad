package model

import (
	"time"
)

type Privilege string

const (
	PrivilegeAgent Privilege = "agent"
	PrivilegeAdmin Privilege = "admin"
)

type Actor struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name,omitempty" yaml:"name,omitempty"`
	Privilege Privilege `json:"privilege" yaml:"privilege"`
}

// Elevated reports whether the actor may write the shared ordering.
func (a Actor) Elevated() bool {
	return a.Privilege == PrivilegeAdmin
}

// Surface identifies the screen an operation originates from.
type Surface string

const (
	// SurfaceAdmin is the administrative configuration screen.
	SurfaceAdmin Surface = "admin"
	// SurfaceHome is the general agent screen.
	SurfaceHome Surface = "home"
)

// Domain is the logical kind of item being ordered. Override keys are scoped by it.
type Domain string

const (
	DomainReplies Domain = "replies"
	DomainEmails  Domain = "emails"
)

// ContainerID is a group id or Ungrouped.
type ContainerID string

// Ungrouped is the implicit pool for templates without a group.
const Ungrouped ContainerID = "ungrouped"

// GroupList addresses the ordering of the groups themselves.
const GroupList ContainerID = "groups"

// ContainerOf returns the container a group id (nil = ungrouped) belongs to.
func ContainerOf(groupID *string) ContainerID {
	if groupID == nil || *groupID == "" {
		return Ungrouped
	}
	return ContainerID(*groupID)
}

// GroupIDFor is the inverse of ContainerOf.
func GroupIDFor(c ContainerID) *string {
	if c == Ungrouped || c == "" {
		return nil
	}
	id := string(c)
	return &id
}

type LocalizedBody struct {
	Locale string `json:"locale" yaml:"locale"`
	Body   string `json:"body" yaml:"body"`
}

type Template struct {
	ID     string          `json:"id" yaml:"id"`
	Domain Domain          `json:"domain" yaml:"domain"`
	Title  string          `json:"title" yaml:"title"`
	Bodies []LocalizedBody `json:"bodies" yaml:"bodies"`

	Category string `json:"category,omitempty" yaml:"category,omitempty"`
	Genre    string `json:"genre,omitempty" yaml:"genre,omitempty"`

	GroupID        *string `json:"groupId,omitempty" yaml:"groupId,omitempty"`
	Position       int     `json:"position" yaml:"position"`
	GlobalPosition int     `json:"globalPosition" yaml:"globalPosition"`

	CreatedAt time.Time `json:"createdAt" yaml:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt,omitempty"`
}

// Container returns the container the template currently belongs to.
func (t Template) Container() ContainerID {
	return ContainerOf(t.GroupID)
}

type Group struct {
	ID         string `json:"id" yaml:"id"`
	Domain     Domain `json:"domain" yaml:"domain"`
	Name       string `json:"name" yaml:"name"`
	Color      string `json:"color,omitempty" yaml:"color,omitempty"`
	OrderIndex int    `json:"orderIndex" yaml:"orderIndex"`
	Active     bool   `json:"active" yaml:"active"`
}

// PositionUpdate is one row of a reorder request sent to the record store.
type PositionUpdate struct {
	ID         string `json:"id"`
	OrderIndex int    `json:"orderIndex"`
}

// PositionUpdates expresses an ordered id list as sequential positions starting at 0.
func PositionUpdates(ids []string) []PositionUpdate {
	out := make([]PositionUpdate, 0, len(ids))
	for i, id := range ids {
		out = append(out, PositionUpdate{ID: id, OrderIndex: i})
	}
	return out
}
