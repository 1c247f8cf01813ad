package store

import (
	"context"
	"fmt"
	"io"
	"strings"

	"replydesk/internal/model"

	"gopkg.in/yaml.v3"
)

// Seed is the yaml import format. File order defines order: groups get order_index by their
// position in the file, and templates get sequential positions within their container.
type Seed struct {
	Domain    model.Domain     `yaml:"domain"`
	Groups    []model.Group    `yaml:"groups"`
	Templates []model.Template `yaml:"templates"`
}

func LoadSeed(r io.Reader) (*Seed, error) {
	var s Seed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if err == io.EOF {
			return &s, nil
		}
		return nil, fmt.Errorf("seed: %w", err)
	}
	return &s, nil
}

// Normalize fills domain, ids and positions. It does not touch the database.
func (s *Seed) Normalize(defaultDomain model.Domain) error {
	if strings.TrimSpace(string(s.Domain)) == "" {
		s.Domain = defaultDomain
	}
	groupIDs := map[string]bool{}
	for i := range s.Groups {
		g := &s.Groups[i]
		if strings.TrimSpace(g.ID) == "" {
			id, err := NewID("grp")
			if err != nil {
				return err
			}
			g.ID = id
		}
		if groupIDs[g.ID] {
			return fmt.Errorf("seed: duplicate group id %s", g.ID)
		}
		groupIDs[g.ID] = true
		g.Domain = s.Domain
		g.OrderIndex = i
		g.Active = true
	}

	next := map[model.ContainerID]int{}
	seen := map[string]bool{}
	for i := range s.Templates {
		t := &s.Templates[i]
		if strings.TrimSpace(t.ID) == "" {
			id, err := NewID("tpl")
			if err != nil {
				return err
			}
			t.ID = id
		}
		if seen[t.ID] {
			return fmt.Errorf("seed: duplicate template id %s", t.ID)
		}
		seen[t.ID] = true
		if t.GroupID != nil && !groupIDs[*t.GroupID] {
			return fmt.Errorf("seed: template %s references unknown group %s", t.ID, *t.GroupID)
		}
		t.Domain = s.Domain
		c := t.Container()
		t.Position = next[c]
		next[c]++
		t.GlobalPosition = i
	}
	return nil
}

// SeedWriter is the subset of the record store a seed import needs.
type SeedWriter interface {
	UpsertGroup(ctx context.Context, g model.Group) error
	UpsertTemplate(ctx context.Context, t model.Template) error
}

// Apply upserts groups first so templates can reference them.
func (s *Seed) Apply(ctx context.Context, w SeedWriter) error {
	for _, g := range s.Groups {
		if err := w.UpsertGroup(ctx, g); err != nil {
			return fmt.Errorf("seed group %s: %w", g.ID, err)
		}
	}
	for _, t := range s.Templates {
		if err := w.UpsertTemplate(ctx, t); err != nil {
			return fmt.Errorf("seed template %s: %w", t.ID, err)
		}
	}
	return nil
}
