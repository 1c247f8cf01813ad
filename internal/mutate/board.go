package mutate

import (
	"replydesk/internal/model"
	"replydesk/internal/ordering"
	"replydesk/internal/perm"
)

// Board is what a surface shows: named groups in order, each with its templates in order, and
// the ungrouped pool last.
type Board struct {
	Domain    model.Domain `json:"domain" yaml:"domain"`
	Path      string       `json:"path" yaml:"path"`
	Groups    []Lane       `json:"groups" yaml:"groups"`
	Ungrouped Lane         `json:"ungrouped" yaml:"ungrouped"`

	writePath perm.WritePath
}

type Lane struct {
	Container model.ContainerID `json:"container" yaml:"container"`
	Group     *model.Group      `json:"group,omitempty" yaml:"group,omitempty"`
	Templates []model.Template  `json:"templates" yaml:"templates"`
}

func (b *Board) WritePath() perm.WritePath { return b.writePath }

// Lane returns the lane for a container.
func (b *Board) Lane(id model.ContainerID) (Lane, bool) {
	if id == model.Ungrouped {
		return b.Ungrouped, true
	}
	for _, l := range b.Groups {
		if l.Container == id {
			return l, true
		}
	}
	return Lane{}, false
}

// IDs returns the template ids of a container in display order.
func (l Lane) IDs() []string {
	out := make([]string, 0, len(l.Templates))
	for _, t := range l.Templates {
		out = append(out, t.ID)
	}
	return out
}

// Board returns the view for a write path. Templates carry the group and position they are
// displayed with, which on the override path may differ from the record store.
func (c *Coordinator) Board(path perm.WritePath) *Board {
	c.mu.Lock()
	defer c.mu.Unlock()

	b := &Board{Domain: c.domain, Path: path.String(), writePath: path}
	views := c.viewsLocked(path)
	lane := func(cid model.ContainerID) Lane {
		l := Lane{Container: cid, Templates: []model.Template{}}
		for i, id := range views[cid] {
			t := c.templates[id]
			t.GroupID = model.GroupIDFor(cid)
			t.Position = i
			l.Templates = append(l.Templates, t)
		}
		return l
	}
	for i, gid := range c.groupViewLocked(path) {
		l := lane(model.ContainerID(gid))
		g := c.groups[gid]
		g.OrderIndex = i
		l.Group = &g
		b.Groups = append(b.Groups, l)
	}
	b.Ungrouped = lane(model.Ungrouped)
	return b
}

// View returns the ids shown in one container for a write path.
func (c *Coordinator) View(path perm.WritePath, container model.ContainerID) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if container == model.GroupList {
		return c.groupViewLocked(path), nil
	}
	if _, ok := c.containers[container]; !ok {
		return nil, ordering.Invalid("view", "%v", NotFoundError{Kind: "container", ID: string(container)})
	}
	return c.viewLocked(path, container), nil
}

func (c *Coordinator) viewLocked(path perm.WritePath, container model.ContainerID) []string {
	if path == perm.WriteAuthoritative {
		if st := c.containers[container]; st != nil {
			return st.Authoritative()
		}
		return nil
	}
	return c.viewsLocked(path)[container]
}

// groupViewLocked is the group order: the override (limited to known groups) layered over the
// synced order on the override path.
func (c *Coordinator) groupViewLocked(path perm.WritePath) []string {
	base := c.groupList.Authoritative()
	if path == perm.WriteAuthoritative {
		return base
	}
	var known []string
	for _, id := range c.groupList.Override() {
		if _, ok := c.groups[id]; ok {
			known = append(known, id)
		}
	}
	return ordering.Layer(known, base)
}

// viewsLocked computes every container's view. On the override path an item listed in a
// container's override is shown there; when several overrides list it the first container in
// display order wins; unlisted items stay where the record store has them; unknown ids are
// dropped.
func (c *Coordinator) viewsLocked(path perm.WritePath) map[model.ContainerID][]string {
	order := make([]model.ContainerID, 0, len(c.containers))
	for _, gid := range c.groupViewLocked(path) {
		order = append(order, model.ContainerID(gid))
	}
	order = append(order, model.Ungrouped)

	out := make(map[model.ContainerID][]string, len(order))
	if path == perm.WriteAuthoritative {
		for _, cid := range order {
			if st := c.containers[cid]; st != nil {
				out[cid] = st.Authoritative()
			}
		}
		return out
	}

	claimed := map[string]model.ContainerID{}
	listed := map[model.ContainerID][]string{}
	for _, cid := range order {
		st := c.containers[cid]
		if st == nil {
			continue
		}
		for _, id := range st.Override() {
			if _, ok := c.templates[id]; !ok {
				continue
			}
			if _, ok := claimed[id]; ok {
				continue
			}
			claimed[id] = cid
			listed[cid] = append(listed[cid], id)
		}
	}
	for _, cid := range order {
		st := c.containers[cid]
		if st == nil {
			continue
		}
		var base []string
		for _, id := range st.Authoritative() {
			if owner, ok := claimed[id]; ok && owner != cid {
				continue
			}
			base = append(base, id)
		}
		out[cid] = ordering.Layer(listed[cid], base)
	}
	return out
}
