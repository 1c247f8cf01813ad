package mutate

import (
	"context"
	"errors"

	"replydesk/internal/model"
	"replydesk/internal/ordering"
	"replydesk/internal/perm"
)

// ReorderWithinContainer moves the item at from to index to inside one container.
// from == to is a no-op with no persistence.
func (c *Coordinator) ReorderWithinContainer(ctx context.Context, scope Scope, container model.ContainerID, from, to int) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reorderLocked(ctx, scope.WritePath(), Operation{Kind: OpReorder, From: container, To: container, FromIndex: from, ToIndex: to})
}

// MoveItem takes itemID out of from and inserts it into to at dropIndex (appended when nil).
// The move is applied as one step: either both containers change or neither does.
func (c *Coordinator) MoveItem(ctx context.Context, scope Scope, itemID string, from, to model.ContainerID, dropIndex *int) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.moveLocked(ctx, scope.WritePath(), Operation{Kind: OpMove, ItemID: itemID, From: from, To: to, DropIndex: dropIndex})
}

// ReorderContainers reorders the named groups. The ungrouped pool is not part of that list.
func (c *Coordinator) ReorderContainers(ctx context.Context, scope Scope, from, to int) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reorderGroupsLocked(ctx, scope.WritePath(), Operation{Kind: OpReorderContainers, From: model.GroupList, To: model.GroupList, FromIndex: from, ToIndex: to})
}

func (c *Coordinator) reorderLocked(ctx context.Context, path perm.WritePath, op Operation) (*Result, error) {
	if c.closed {
		return nil, ErrClosed
	}
	st := c.containers[op.To]
	if st == nil {
		return nil, ordering.Invalid("reorder", "%v", NotFoundError{Kind: "container", ID: string(op.To)})
	}
	view := c.viewLocked(path, op.To)
	ids, changed, err := ordering.MoveIndex(view, op.FromIndex, op.ToIndex)
	if err != nil {
		return nil, err
	}
	op.ItemID = view[op.FromIndex]
	if !changed {
		return completedResult(op, path, false), nil
	}

	if path == perm.WriteOverride {
		if err := st.CommitOverride(ctx, ids); err != nil {
			return nil, err
		}
		c.logger.Debug().Str("container", string(op.To)).Msg("override reorder saved")
		return completedResult(op, path, true), nil
	}

	snap := c.snapshotLocked()
	sc, err := st.StageAuthoritative(ids)
	if err != nil {
		return nil, err
	}
	r := newResult(op, path, true)
	c.enqueueLocked(ctx, r, snap, map[model.ContainerID][]string{op.To: ids}, sc.Persist)
	c.signal()
	return r, nil
}

func (c *Coordinator) moveLocked(ctx context.Context, path perm.WritePath, op Operation) (*Result, error) {
	if c.closed {
		return nil, ErrClosed
	}
	if _, ok := c.templates[op.ItemID]; !ok {
		return nil, ordering.Invalid("move", "%v", NotFoundError{Kind: "template", ID: op.ItemID})
	}
	fromStore, toStore := c.containers[op.From], c.containers[op.To]
	if fromStore == nil {
		return nil, ordering.Invalid("move", "%v", NotFoundError{Kind: "container", ID: string(op.From)})
	}
	if toStore == nil {
		return nil, ordering.Invalid("move", "%v", NotFoundError{Kind: "container", ID: string(op.To)})
	}

	fromView := c.viewLocked(path, op.From)
	idx := indexOf(fromView, op.ItemID)
	if idx < 0 {
		return nil, ordering.Invalid("move", "template %s is not in %s", op.ItemID, op.From)
	}
	op.FromIndex = idx

	if op.From == op.To {
		op.Kind = OpReorder
		op.ToIndex = len(fromView) - 1
		if op.DropIndex != nil {
			op.ToIndex = *op.DropIndex
		}
		return c.reorderLocked(ctx, path, op)
	}

	toView := c.viewLocked(path, op.To)
	at := len(toView)
	if op.DropIndex != nil {
		at = *op.DropIndex
		if at < 0 || at > len(toView) {
			return nil, ordering.Invalid("move", "drop index %d out of range [0,%d]", at, len(toView))
		}
	}
	op.ToIndex = at

	newFrom := make([]string, 0, len(fromView)-1)
	newFrom = append(newFrom, fromView[:idx]...)
	newFrom = append(newFrom, fromView[idx+1:]...)
	newTo := make([]string, 0, len(toView)+1)
	newTo = append(newTo, toView[:at]...)
	newTo = append(newTo, op.ItemID)
	newTo = append(newTo, toView[at:]...)

	if path == perm.WriteOverride {
		if err := c.moveOverrideLocked(ctx, op, newFrom, newTo); err != nil {
			return nil, err
		}
		c.logger.Debug().Str("template", op.ItemID).Str("from", string(op.From)).Str("to", string(op.To)).Msg("override move saved")
		return completedResult(op, path, true), nil
	}

	snap := c.snapshotLocked()
	scTo, err := toStore.StageAuthoritative(newTo)
	if err != nil {
		return nil, err
	}
	scFrom, err := fromStore.StageAuthoritative(newFrom)
	if err != nil {
		c.restoreLocked(snap)
		return nil, err
	}
	tpl := c.templates[op.ItemID]
	tpl.GroupID = model.GroupIDFor(op.To)
	c.templates[op.ItemID] = tpl

	target := model.GroupIDFor(op.To)
	adapter := c.adapter
	persist := func(ctx context.Context) error {
		if adapter == nil {
			return &ordering.PersistenceError{Op: "move", Container: op.To, Path: perm.WriteAuthoritative.String(), Err: errors.New("no record store configured")}
		}
		if err := adapter.MoveItem(ctx, op.ItemID, target); err != nil {
			return &ordering.PersistenceError{Op: "move", Container: op.To, Path: perm.WriteAuthoritative.String(), Err: err}
		}
		if err := scTo.Persist(ctx); err != nil {
			return err
		}
		return scFrom.Persist(ctx)
	}
	r := newResult(op, path, true)
	c.enqueueLocked(ctx, r, snap, map[model.ContainerID][]string{op.From: newFrom, op.To: newTo}, persist)
	c.signal()
	return r, nil
}

// moveOverrideLocked writes the override maps touched by a move. The moved item is also
// dropped from any other override still listing it, so only the target claims it. On a
// failed write the overrides already written are rolled back.
func (c *Coordinator) moveOverrideLocked(ctx context.Context, op Operation, newFrom, newTo []string) error {
	type write struct {
		st   *ordering.Store
		ids  []string
		prev []string
	}
	writes := []write{
		{st: c.containers[op.To], ids: newTo},
		{st: c.containers[op.From], ids: newFrom},
	}
	for cid, st := range c.containers {
		if cid == op.From || cid == op.To {
			continue
		}
		if prev := st.Override(); indexOf(prev, op.ItemID) >= 0 {
			writes = append(writes, write{st: st, ids: removeID(prev, op.ItemID)})
		}
	}

	for i := range writes {
		writes[i].prev = writes[i].st.Override()
		if err := writes[i].st.CommitOverride(ctx, writes[i].ids); err != nil {
			for j := i - 1; j >= 0; j-- {
				if rerr := writes[j].st.RollbackOverride(ctx, writes[j].prev); rerr != nil {
					c.logger.Error().Err(rerr).Str("container", string(writes[j].st.Container())).Msg("override rollback failed")
				}
			}
			return err
		}
	}
	return nil
}

func (c *Coordinator) reorderGroupsLocked(ctx context.Context, path perm.WritePath, op Operation) (*Result, error) {
	if c.closed {
		return nil, ErrClosed
	}
	view := c.groupViewLocked(path)
	ids, changed, err := ordering.MoveIndex(view, op.FromIndex, op.ToIndex)
	if err != nil {
		return nil, err
	}
	op.ItemID = view[op.FromIndex]
	if !changed {
		return completedResult(op, path, false), nil
	}

	if path == perm.WriteOverride {
		if err := c.groupList.CommitOverride(ctx, ids); err != nil {
			return nil, err
		}
		return completedResult(op, path, true), nil
	}

	snap := c.snapshotLocked()
	sc, err := c.groupList.StageAuthoritative(ids)
	if err != nil {
		return nil, err
	}
	groups := make(map[string]model.Group, len(c.groups))
	for id, g := range c.groups {
		groups[id] = g
	}
	for i, id := range ids {
		g := groups[id]
		g.OrderIndex = i
		groups[id] = g
	}
	c.groups = groups

	r := newResult(op, path, true)
	c.enqueueLocked(ctx, r, snap, map[model.ContainerID][]string{model.GroupList: ids}, sc.Persist)
	c.signal()
	return r, nil
}

func indexOf(ids []string, id string) int {
	for i, x := range ids {
		if x == id {
			return i
		}
	}
	return -1
}

func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}
