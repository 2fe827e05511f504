// Package mirror is the client-side optimistic copy of server entity
// state. One collection is kept in three synchronized views: the
// per-status columns, a filtered projection, and a flat list for
// cross-column lookups. Mutations are applied to all three before the
// server answers and rolled back from a snapshot, all three at once, if
// it refuses. Filter and user state are passed in explicitly; the board
// holds no ambient globals.
package mirror

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"projecttracker/internal/model"
)

var ErrItemNotFound = errors.New("item not on board")

// Item is the board's projection of a task or deliverable.
type Item struct {
	ID         int
	Title      string
	Status     model.Status
	AssigneeID int
}

// Filter is the explicit search state the filtered view is derived under.
type Filter struct {
	Search     string
	AssigneeID int // 0 matches any assignee
}

func (f Filter) matches(item Item) bool {
	if f.AssigneeID != 0 && item.AssigneeID != f.AssigneeID {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(item.Title), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

// RemoteMutator pushes one status change to the server.
type RemoteMutator func(itemID int, status model.Status) error

type Board struct {
	mu         sync.Mutex
	columns    map[model.Status][]Item
	filtered   []Item
	flat       []Item
	filter     Filter
	generation uint64
}

func NewBoard(items []Item, filter Filter) *Board {
	b := &Board{filter: filter}
	b.rebuild(items)
	return b
}

// Reload replaces the board content with fresh server state. Any
// still-in-flight move becomes stale: its rollback or commit must not
// reapply old data over this.
func (b *Board) Reload(items []Item) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.generation++
	b.rebuild(items)
}

func (b *Board) rebuild(items []Item) {
	b.columns = map[model.Status][]Item{
		model.StatusTodo:       {},
		model.StatusInProgress: {},
		model.StatusDone:       {},
	}
	b.flat = make([]Item, 0, len(items))
	for _, item := range items {
		b.columns[item.Status] = append(b.columns[item.Status], item)
		b.flat = append(b.flat, item)
	}
	b.refilter()
}

func (b *Board) refilter() {
	b.filtered = b.filtered[:0]
	for _, status := range []model.Status{model.StatusTodo, model.StatusInProgress, model.StatusDone} {
		for _, item := range b.columns[status] {
			if b.filter.matches(item) {
				b.filtered = append(b.filtered, item)
			}
		}
	}
}

// SetFilter replaces the filter state and re-derives the filtered view.
func (b *Board) SetFilter(f Filter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter = f
	b.refilter()
}

// Column returns a copy of one status column.
func (b *Board) Column(status model.Status) []Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Item(nil), b.columns[status]...)
}

// Filtered returns a copy of the filtered projection.
func (b *Board) Filtered() []Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Item(nil), b.filtered...)
}

// Flat returns a copy of the flat lookup list.
func (b *Board) Flat() []Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Item(nil), b.flat...)
}

type snapshot struct {
	columns  map[model.Status][]Item
	filtered []Item
	flat     []Item
}

func (b *Board) snapshot() snapshot {
	s := snapshot{
		columns:  make(map[model.Status][]Item, len(b.columns)),
		filtered: append([]Item(nil), b.filtered...),
		flat:     append([]Item(nil), b.flat...),
	}
	for status, col := range b.columns {
		s.columns[status] = append([]Item(nil), col...)
	}
	return s
}

func (b *Board) restore(s snapshot) {
	b.columns = s.columns
	b.filtered = s.filtered
	b.flat = s.flat
}

// Move is one in-flight optimistic status change. Rollback and Commit are
// superseded silently if a newer move or reload has touched the board.
type Move struct {
	board      *Board
	generation uint64
	before     snapshot
}

// BeginMove snapshots all three views, applies the new status to the item
// in all three, and returns the handle the transport completion uses.
func (b *Board) BeginMove(itemID int, newStatus model.Status) (*Move, error) {
	if !newStatus.Valid() {
		return nil, fmt.Errorf("unrecognized status %q", newStatus)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	idx := -1
	for i, item := range b.flat {
		if item.ID == itemID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrItemNotFound
	}

	before := b.snapshot()
	b.generation++

	// Columns: out of the old column, onto the end of the new one.
	old := b.flat[idx].Status
	col := b.columns[old]
	for i, item := range col {
		if item.ID == itemID {
			b.columns[old] = append(col[:i:i], col[i+1:]...)
			break
		}
	}
	moved := b.flat[idx]
	moved.Status = newStatus
	b.columns[newStatus] = append(b.columns[newStatus], moved)

	// Flat keeps its position; only the status changes.
	b.flat[idx].Status = newStatus
	b.refilter()

	return &Move{board: b, generation: b.generation, before: before}, nil
}

// Rollback restores all three views from the pre-move snapshot. A partial
// restore is a correctness bug, so the snapshot swap is atomic under the
// board lock. Stale rollbacks (a newer move or reload happened first) are
// discarded: last request wins.
func (m *Move) Rollback() {
	m.board.mu.Lock()
	defer m.board.mu.Unlock()
	if m.board.generation != m.generation {
		return
	}
	m.board.restore(m.before)
	m.board.refilter()
}

// MoveItem is the synchronous drag-and-drop path: optimistic apply, remote
// call, rollback on refusal or transport error.
func (b *Board) MoveItem(itemID int, newStatus model.Status, remote RemoteMutator) error {
	move, err := b.BeginMove(itemID, newStatus)
	if err != nil {
		return err
	}
	if err := remote(itemID, newStatus); err != nil {
		move.Rollback()
		return err
	}
	return nil
}

// ReorderWithinColumn permutes one column locally. No remote call: order
// within a column is presentation state, and the flat lookup list keeps
// its own stable order.
func (b *Board) ReorderWithinColumn(status model.Status, from, to int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	col := b.columns[status]
	if from < 0 || from >= len(col) || to < 0 || to >= len(col) {
		return fmt.Errorf("reorder out of range: %d -> %d in %d items", from, to, len(col))
	}
	item := col[from]
	col = append(col[:from], col[from+1:]...)
	col = append(col[:to], append([]Item{item}, col[to:]...)...)
	b.columns[status] = col
	b.refilter()
	return nil
}
