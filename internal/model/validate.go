package model

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Validate checks a template record as it enters the core from a store or a seed file.
func (t Template) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("template id is empty")
	}
	if ContainerID(t.ID) == Ungrouped {
		return fmt.Errorf("template id %q is reserved", t.ID)
	}
	if t.GroupID != nil {
		if strings.TrimSpace(*t.GroupID) == "" {
			return fmt.Errorf("template %s: group id is blank", t.ID)
		}
		if ContainerID(*t.GroupID) == Ungrouped || ContainerID(*t.GroupID) == GroupList {
			return fmt.Errorf("template %s: group id %q is reserved", t.ID, *t.GroupID)
		}
	}
	if t.Position < 0 {
		return fmt.Errorf("template %s: negative position %d", t.ID, t.Position)
	}
	if t.GlobalPosition < 0 {
		return fmt.Errorf("template %s: negative global position %d", t.ID, t.GlobalPosition)
	}
	seen := map[string]bool{}
	for i, b := range t.Bodies {
		loc := strings.ToLower(strings.TrimSpace(b.Locale))
		if loc == "" {
			return fmt.Errorf("template %s: bodies[%d].locale is empty", t.ID, i)
		}
		if _, err := language.Parse(loc); err != nil {
			return fmt.Errorf("template %s: bodies[%d].locale %q: %w", t.ID, i, b.Locale, err)
		}
		if seen[loc] {
			return fmt.Errorf("template %s: duplicate locale %q", t.ID, b.Locale)
		}
		seen[loc] = true
	}
	return nil
}

// Validate checks a group record as it enters the core.
func (g Group) Validate() error {
	id := strings.TrimSpace(g.ID)
	if id == "" {
		return errors.New("group id is empty")
	}
	if ContainerID(id) == Ungrouped || ContainerID(id) == GroupList {
		return fmt.Errorf("group id %q is reserved", g.ID)
	}
	if g.OrderIndex < 0 {
		return fmt.Errorf("group %s: negative order index %d", g.ID, g.OrderIndex)
	}
	return nil
}

// BodyFor returns the body best matching the requested locale.
// The first body is the default and wins when nothing matches.
func (t Template) BodyFor(locale string) string {
	if len(t.Bodies) == 0 {
		return ""
	}
	locale = strings.TrimSpace(locale)
	if locale == "" || len(t.Bodies) == 1 {
		return t.Bodies[0].Body
	}
	want, err := language.Parse(locale)
	if err != nil {
		return t.Bodies[0].Body
	}
	tags := make([]language.Tag, 0, len(t.Bodies))
	for _, b := range t.Bodies {
		tag, err := language.Parse(b.Locale)
		if err != nil {
			tag = language.Und
		}
		tags = append(tags, tag)
	}
	_, idx, conf := language.NewMatcher(tags).Match(want)
	if conf == language.No || idx < 0 || idx >= len(t.Bodies) {
		return t.Bodies[0].Body
	}
	return t.Bodies[idx].Body
}
