package kanban

import (
	"sort"

	"github.com/google/uuid"
	"github.com/kanban/backend/internal/domain/shared"
)

const (
	// DefaultGap is the spacing between sibling positions. Sparse integer
	// positions let most insertions compute a midpoint between two
	// neighbours without touching any other row.
	DefaultGap = 1024

	// MinPosition is the floor for position values.
	MinPosition = 0

	// minMidpointGap is the smallest gap between two adjacent siblings
	// that still admits an integer midpoint. Anything smaller forces a
	// rebalance of the whole container.
	minMidpointGap = 2
)

// TargetKind discriminates the placement target union.
type TargetKind string

const (
	TargetEnd      TargetKind = "end"
	TargetStart    TargetKind = "start"
	TargetAfter    TargetKind = "after"
	TargetBefore   TargetKind = "before"
	TargetAbsolute TargetKind = "absolute"
)

// Target describes where an item should be placed among its siblings.
// It is a tagged union: Ref is set for after/before, Position for absolute.
type Target struct {
	Kind     TargetKind
	Ref      uuid.UUID
	Position int
}

// End places the item after the last sibling.
func End() Target { return Target{Kind: TargetEnd} }

// Start places the item before the first sibling.
func Start() Target { return Target{Kind: TargetStart} }

// After places the item immediately after the referenced sibling.
func After(ref uuid.UUID) Target { return Target{Kind: TargetAfter, Ref: ref} }

// Before places the item immediately before the referenced sibling.
func Before(ref uuid.UUID) Target { return Target{Kind: TargetBefore, Ref: ref} }

// Absolute places the item at an exact position value.
func Absolute(position int) Target { return Target{Kind: TargetAbsolute, Position: position} }

// Validate checks the target's structural validity.
func (t Target) Validate() error {
	switch t.Kind {
	case TargetEnd, TargetStart:
		return nil
	case TargetAfter, TargetBefore:
		if t.Ref == uuid.Nil {
			return shared.ErrInvalidTarget
		}
		return nil
	case TargetAbsolute:
		if t.Position < MinPosition {
			return shared.ErrInvalidTarget
		}
		return nil
	default:
		return shared.ErrInvalidTarget
	}
}

// Sibling is the ordering view of an item within a container: just its
// identity and position. The sibling set is always recomputed from stored
// rows per request, never cached across requests.
type Sibling struct {
	ID       uuid.UUID
	Position int
}

// PositionAssignment is one row of a rebalance batch.
type PositionAssignment struct {
	ID       uuid.UUID
	Position int
}

// Placement is the outcome of a position computation. When Rebalance is
// false the item takes Position and no sibling is touched. When Rebalance
// is true, Assignments renumbers every sibling (the placed item included)
// at DefaultGap intervals in their resulting relative order, and must be
// applied as a single atomic batch.
type Placement struct {
	Position    int
	Rebalance   bool
	Assignments []PositionAssignment
}

// ComputePlacement resolves target against the container's sibling set.
//
// siblings must be the container's non-deleted items, excluding the item
// being placed (relevant for same-container reorders). They need not be
// pre-sorted. itemID identifies the item being placed; it appears in the
// rebalance assignments.
//
// displace enables reorder semantics for absolute targets: a collision
// slots the item in front of the occupant via rebalance instead of
// failing with PositionConflict.
func ComputePlacement(siblings []Sibling, itemID uuid.UUID, target Target, displace bool) (Placement, error) {
	if err := target.Validate(); err != nil {
		return Placement{}, err
	}

	ordered := make([]Sibling, len(siblings))
	copy(ordered, siblings)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Position < ordered[j].Position })

	switch target.Kind {
	case TargetEnd:
		return placeAtEnd(ordered), nil

	case TargetStart:
		return placeAtStart(ordered, itemID), nil

	case TargetAfter:
		idx := indexOf(ordered, target.Ref)
		if idx < 0 {
			return Placement{}, shared.ErrInvalidTarget
		}
		if idx == len(ordered)-1 {
			return placeAtEnd(ordered), nil
		}
		return placeBetween(ordered, itemID, idx, idx+1), nil

	case TargetBefore:
		idx := indexOf(ordered, target.Ref)
		if idx < 0 {
			return Placement{}, shared.ErrInvalidTarget
		}
		if idx == 0 {
			return placeAtStart(ordered, itemID), nil
		}
		return placeBetween(ordered, itemID, idx-1, idx), nil

	case TargetAbsolute:
		occupant := -1
		for i, s := range ordered {
			if s.Position == target.Position {
				occupant = i
				break
			}
		}
		if occupant < 0 {
			return Placement{Position: target.Position}, nil
		}
		if !displace {
			return Placement{}, shared.ErrPositionConflict
		}
		// Displacement: the item takes the occupant's slot and everything
		// from the occupant onward shifts back; resolved by renumbering.
		return rebalanceWithInsert(ordered, itemID, occupant), nil
	}

	return Placement{}, shared.ErrInvalidTarget
}

// placeAtEnd appends after the last sibling. An empty container yields
// DefaultGap so that a later insert-before still has room above zero.
func placeAtEnd(ordered []Sibling) Placement {
	if len(ordered) == 0 {
		return Placement{Position: DefaultGap}
	}
	return Placement{Position: ordered[len(ordered)-1].Position + DefaultGap}
}

// placeAtStart inserts before the first sibling, flooring at MinPosition.
// If the floor itself is taken the container is renumbered.
func placeAtStart(ordered []Sibling, itemID uuid.UUID) Placement {
	if len(ordered) == 0 {
		return Placement{Position: DefaultGap}
	}
	first := ordered[0].Position
	if first-DefaultGap >= MinPosition {
		return Placement{Position: first - DefaultGap}
	}
	if first > MinPosition {
		return Placement{Position: MinPosition}
	}
	return rebalanceWithInsert(ordered, itemID, 0)
}

// placeBetween computes the midpoint of two adjacent siblings. A gap too
// small for an integer midpoint triggers a rebalance with the item slotted
// between them.
func placeBetween(ordered []Sibling, itemID uuid.UUID, lo, hi int) Placement {
	a, b := ordered[lo].Position, ordered[hi].Position
	if b-a < minMidpointGap {
		return rebalanceWithInsert(ordered, itemID, hi)
	}
	return Placement{Position: a + (b-a)/2}
}

// rebalanceWithInsert renumbers the whole container at DefaultGap
// intervals starting from MinPosition, with the placed item occupying
// slot insertAt of the resulting order. Relative order of the existing
// siblings is preserved.
func rebalanceWithInsert(ordered []Sibling, itemID uuid.UUID, insertAt int) Placement {
	assignments := make([]PositionAssignment, 0, len(ordered)+1)
	itemPosition := MinPosition

	slot := 0
	assign := func(id uuid.UUID) {
		assignments = append(assignments, PositionAssignment{ID: id, Position: MinPosition + slot*DefaultGap})
		slot++
	}

	for i, s := range ordered {
		if i == insertAt {
			itemPosition = MinPosition + slot*DefaultGap
			assign(itemID)
		}
		assign(s.ID)
	}
	if insertAt >= len(ordered) {
		itemPosition = MinPosition + slot*DefaultGap
		assign(itemID)
	}

	return Placement{Position: itemPosition, Rebalance: true, Assignments: assignments}
}

// ColumnSiblings projects columns onto the ordering view, dropping the
// excluded (moving) column if present.
func ColumnSiblings(columns []Column, exclude uuid.UUID) []Sibling {
	siblings := make([]Sibling, 0, len(columns))
	for _, c := range columns {
		if c.ID == exclude {
			continue
		}
		siblings = append(siblings, Sibling{ID: c.ID, Position: c.Position})
	}
	return siblings
}

// CardSiblings projects cards onto the ordering view, dropping the
// excluded (moving) card if present.
func CardSiblings(cards []Card, exclude uuid.UUID) []Sibling {
	siblings := make([]Sibling, 0, len(cards))
	for _, c := range cards {
		if c.ID == exclude {
			continue
		}
		siblings = append(siblings, Sibling{ID: c.ID, Position: c.Position})
	}
	return siblings
}

func indexOf(ordered []Sibling, id uuid.UUID) int {
	for i, s := range ordered {
		if s.ID == id {
			return i
		}
	}
	return -1
}
