package availability

import (
	"errors"
	"fmt"

	"anatwithme/internal/domain/timeslot"
)

// Domain errors
var (
	ErrEmptyUserID     = errors.New("user ID cannot be empty")
	ErrInvalidSlotID   = errors.New("time slot ID must be positive")
	ErrIncompleteGrid  = errors.New("time slot reference data is incomplete")
	ErrDuplicateCoord  = errors.New("duplicate (day, position) coordinate in time slot data")
	ErrMalformedSlot   = errors.New("malformed time slot row")
)

// Mark declares that a user is free during one weekly slot. Membership is
// binary: a mark either exists for the (UserID, TimeSlotID) pair or it does
// not, so state change is always insert or delete, never update. The store
// enforces uniqueness on the pair.
type Mark struct {
	UserID     string
	TimeSlotID int64
}

// Validate checks if the Mark has valid data.
// PRE: Mark struct is populated
// POST: Returns nil if valid, error otherwise
func (m *Mark) Validate() error {
	if m.UserID == "" {
		return ErrEmptyUserID
	}
	if m.TimeSlotID <= 0 {
		return ErrInvalidSlotID
	}
	return nil
}

// Coord addresses one grid cell by day and hour position.
type Coord struct {
	Day      int
	Position int
}

// Lookup maps grid coordinates to time slot IDs.
type Lookup map[Coord]int64

// BuildLookup builds the coordinate lookup from the full time slot reference
// set. The input must contain all 112 rows with pairwise-distinct
// coordinates and formula-consistent slot indices; anything less is a
// configuration error and the caller must refuse to render the grid rather
// than show a partial one.
// PRE: slots loaded from the time_slot table
// POST: Returns a lookup covering every (day, position) pair, or an error
func BuildLookup(slots []timeslot.TimeSlot) (Lookup, error) {
	if len(slots) != timeslot.TotalSlots {
		return nil, fmt.Errorf("have %d slots, want %d: %w", len(slots), timeslot.TotalSlots, ErrIncompleteGrid)
	}
	lookup := make(Lookup, timeslot.TotalSlots)
	for _, s := range slots {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedSlot, err)
		}
		pos, err := s.PositionInDay()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedSlot, err)
		}
		c := Coord{Day: s.Day, Position: pos}
		if _, exists := lookup[c]; exists {
			return nil, fmt.Errorf("day=%d position=%d: %w", c.Day, c.Position, ErrDuplicateCoord)
		}
		lookup[c] = s.ID
	}
	return lookup, nil
}

// Selection is the set of slot IDs a user currently has marked.
type Selection map[int64]struct{}

// InitialSelection builds the starting selection from the user's saved mark
// IDs. No default selections are invented.
// PRE: savedIDs loaded from the availability table
// POST: Returns a set containing exactly the saved IDs
func InitialSelection(savedIDs []int64) Selection {
	sel := make(Selection, len(savedIDs))
	for _, id := range savedIDs {
		sel[id] = struct{}{}
	}
	return sel
}

// Contains reports whether the slot ID is selected.
// INVARIANT: Selection is not mutated
func (s Selection) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// SlotIDs returns the selected IDs in no particular order.
// INVARIANT: Selection is not mutated
func (s Selection) SlotIDs() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	return ids
}

// OpKind is the kind of persistence intent produced by a toggle.
type OpKind int

const (
	OpNone OpKind = iota
	OpInsert
	OpDelete
)

// PersistOp is the persistence intent returned by Toggle. The caller
// executes it against the availability store; the returned selection does
// not wait for that to succeed.
type PersistOp struct {
	Kind       OpKind
	TimeSlotID int64
}

// Toggle flips the cell at (day, position) in the given selection.
//
// The flip is optimistic: the returned selection reflects it immediately,
// before persistence confirms. If the coordinate resolves to no slot ID the
// toggle is a no-op (returns the input selection unchanged and OpNone); that
// guards against lookup construction bugs, not an expected user path.
//
// The input selection is never mutated; a flipped copy is returned. The pair
// (user, slot) flips insert-xor-delete, so concurrent toggles of distinct
// cells commute regardless of persistence completion order.
// PRE: lookup built by BuildLookup
// POST: Returns the new selection and an insert/delete/none intent
func (l Lookup) Toggle(day, position int, sel Selection) (Selection, PersistOp) {
	id, ok := l[Coord{Day: day, Position: position}]
	if !ok {
		return sel, PersistOp{Kind: OpNone}
	}

	next := make(Selection, len(sel)+1)
	for k := range sel {
		next[k] = struct{}{}
	}

	if sel.Contains(id) {
		delete(next, id)
		return next, PersistOp{Kind: OpDelete, TimeSlotID: id}
	}
	next[id] = struct{}{}
	return next, PersistOp{Kind: OpInsert, TimeSlotID: id}
}
