package mutate

import (
	"context"

	"replydesk/internal/model"
	"replydesk/internal/ordering"
	"replydesk/internal/perm"
)

type SubjectKind string

const (
	SubjectItem  SubjectKind = "item"
	SubjectGroup SubjectKind = "group"
)

// TargetKind classifies where a drag ended.
type TargetKind string

const (
	// TargetItem is a specific position inside a container (or, for group drags, in the group list).
	TargetItem TargetKind = "item"
	// TargetContainer is a container header or its empty area: append to the end.
	TargetContainer TargetKind = "container"
	// TargetUngrouped is the ungrouped pool's drop zone.
	TargetUngrouped TargetKind = "ungrouped"
)

type DropTarget struct {
	Kind      TargetKind        `json:"kind" yaml:"kind"`
	Container model.ContainerID `json:"container,omitempty" yaml:"container,omitempty"`
	Index     int               `json:"index" yaml:"index"`
}

// DragIntent is a finished drag gesture, independent of any presentation framework. Indexes
// refer to the view the gesture was made on.
type DragIntent struct {
	Subject         SubjectKind       `json:"subject" yaml:"subject"`
	SourceContainer model.ContainerID `json:"sourceContainer,omitempty" yaml:"sourceContainer,omitempty"`
	SourceIndex     int               `json:"sourceIndex" yaml:"sourceIndex"`
	Target          DropTarget        `json:"target" yaml:"target"`
}

type OpKind string

const (
	OpReorder           OpKind = "reorder"
	OpMove              OpKind = "move"
	OpReorderContainers OpKind = "reorder-groups"
	OpReload            OpKind = "reload"
)

// Operation is a classified drop. DropIndex is nil for an append.
type Operation struct {
	Kind      OpKind            `json:"kind" yaml:"kind"`
	ItemID    string            `json:"itemId,omitempty" yaml:"itemId,omitempty"`
	From      model.ContainerID `json:"from,omitempty" yaml:"from,omitempty"`
	To        model.ContainerID `json:"to,omitempty" yaml:"to,omitempty"`
	FromIndex int               `json:"fromIndex" yaml:"fromIndex"`
	ToIndex   int               `json:"toIndex" yaml:"toIndex"`
	DropIndex *int              `json:"dropIndex,omitempty" yaml:"dropIndex,omitempty"`
}

// ResolveDrop classifies a drag gesture against the view the scope sees.
func (c *Coordinator) ResolveDrop(scope Scope, intent DragIntent) (Operation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolveDropLocked(scope.WritePath(), intent)
}

// ApplyDrag resolves and performs a drag gesture as one step.
func (c *Coordinator) ApplyDrag(ctx context.Context, scope Scope, intent DragIntent) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	path := scope.WritePath()
	op, err := c.resolveDropLocked(path, intent)
	if err != nil {
		return nil, err
	}
	switch op.Kind {
	case OpReorderContainers:
		return c.reorderGroupsLocked(ctx, path, op)
	case OpReorder:
		return c.reorderLocked(ctx, path, op)
	default:
		return c.moveLocked(ctx, path, op)
	}
}

func (c *Coordinator) resolveDropLocked(path perm.WritePath, intent DragIntent) (Operation, error) {
	if intent.Subject == SubjectGroup {
		groups := c.groupViewLocked(path)
		if intent.SourceIndex < 0 || intent.SourceIndex >= len(groups) {
			return Operation{}, ordering.Invalid("drag", "group index %d out of range [0,%d)", intent.SourceIndex, len(groups))
		}
		op := Operation{
			Kind:      OpReorderContainers,
			ItemID:    groups[intent.SourceIndex],
			From:      model.GroupList,
			To:        model.GroupList,
			FromIndex: intent.SourceIndex,
			ToIndex:   intent.Target.Index,
		}
		if intent.Target.Kind != TargetItem {
			op.ToIndex = len(groups) - 1
		}
		return op, nil
	}
	if intent.Subject != SubjectItem {
		return Operation{}, ordering.Invalid("drag", "unknown subject %q", intent.Subject)
	}

	if _, ok := c.containers[intent.SourceContainer]; !ok {
		return Operation{}, ordering.Invalid("drag", "%v", NotFoundError{Kind: "container", ID: string(intent.SourceContainer)})
	}
	source := c.viewLocked(path, intent.SourceContainer)
	if intent.SourceIndex < 0 || intent.SourceIndex >= len(source) {
		return Operation{}, ordering.Invalid("drag", "source index %d out of range [0,%d)", intent.SourceIndex, len(source))
	}
	itemID := source[intent.SourceIndex]

	target := intent.Target.Container
	switch intent.Target.Kind {
	case TargetUngrouped:
		target = model.Ungrouped
	case TargetItem, TargetContainer:
		if _, ok := c.containers[target]; !ok {
			return Operation{}, ordering.Invalid("drag", "%v", NotFoundError{Kind: "container", ID: string(target)})
		}
	default:
		return Operation{}, ordering.Invalid("drag", "unknown target %q", intent.Target.Kind)
	}

	op := Operation{ItemID: itemID, From: intent.SourceContainer, To: target, FromIndex: intent.SourceIndex}
	if target == intent.SourceContainer {
		op.Kind = OpReorder
		op.ToIndex = len(source) - 1
		if intent.Target.Kind == TargetItem {
			op.ToIndex = intent.Target.Index
		}
		return op, nil
	}
	op.Kind = OpMove
	if intent.Target.Kind == TargetItem {
		idx := intent.Target.Index
		op.DropIndex = &idx
		op.ToIndex = idx
	} else {
		op.ToIndex = len(c.viewLocked(path, target))
	}
	return op, nil
}
