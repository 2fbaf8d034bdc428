/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package store owns the form being edited. Every change goes through one of
// the Store's operations, each of which leaves the state consistent before
// any subscriber sees it.
package store

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rayyan-akhter/form-forge/internal/domain"
	applog "github.com/rayyan-akhter/form-forge/internal/log"
	"github.com/rayyan-akhter/form-forge/internal/registry"
	"github.com/rayyan-akhter/form-forge/internal/undo"
)

// Store is the single source of truth for one live document. Operations
// never fail: acting on an id that is not in the document does nothing.
// A Store is safe for concurrent use, though callers normally drive it from
// one event loop.
type Store struct {
	mu      sync.Mutex
	state   State
	newID   func() string
	now     func() time.Time
	history *undo.Manager
	log     *slog.Logger

	subMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

type Option func(*Store)

// WithIDGenerator replaces the uuid based id source.
func WithIDGenerator(fn func() string) Option { return func(s *Store) { s.newID = fn } }

// WithClock replaces time.Now.
func WithClock(fn func() time.Time) Option { return func(s *Store) { s.now = fn } }

// WithHistory sets the undo manager; pass nil to disable undo.
func WithHistory(m *undo.Manager) Option { return func(s *Store) { s.history = m } }

func WithLogger(l *slog.Logger) Option { return func(s *Store) { s.log = l } }

// WithInitialForm starts the store on f instead of a blank document.
func WithInitialForm(f domain.FormData) Option {
	return func(s *Store) { s.state = initialState(normalize(f)) }
}

func New(opts ...Option) *Store {
	s := &Store{
		newID:   uuid.NewString,
		now:     time.Now,
		history: undo.NewManager(undo.Config{}),
		subs:    make(map[int]func(State)),
	}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = applog.WithComponent("store")
	}
	if s.state.Form.ID == "" {
		s.state = initialState(domain.NewForm(s.newID(), s.now()))
	}
	return s
}

// State returns a deep copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Form returns a deep copy of the live document.
func (s *Store) Form() domain.FormData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Form.Clone()
}

// Subscribe registers fn to be called with a copy of the state after every
// change. Calls happen on the goroutine that made the change, after the
// store lock is released.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// edit runs fn against the live document. When fn reports a change the
// document is stamped, the prior version goes to the undo history and
// subscribers are notified. fn must leave the state untouched when it
// returns false.
func (s *Store) edit(op string, fn func(st *State) bool) bool {
	s.mu.Lock()
	var before []byte
	if s.history != nil {
		b, err := json.Marshal(s.state.Form)
		if err != nil {
			s.log.Warn("undo snapshot failed", slog.String("op", op), slog.Any("err", err))
		}
		before = b
	}
	if !fn(&s.state) {
		s.mu.Unlock()
		return false
	}
	now := s.now()
	s.state.Form.Touch(now)
	if s.history != nil && before != nil {
		s.history.Push(undo.Snapshot{FormID: s.state.Form.ID, Blob: before, TS: now})
	}
	snap := s.state.Clone()
	s.mu.Unlock()
	s.log.Debug("form changed", slog.String("op", op), slog.String("form", snap.Form.ID),
		slog.Int("components", len(snap.Form.Components)))
	s.notify(snap)
	return true
}

// view changes transient state only; the document and its stamp stay as they are.
func (s *Store) view(fn func(st *State) bool) {
	s.mu.Lock()
	if !fn(&s.state) {
		s.mu.Unlock()
		return
	}
	snap := s.state.Clone()
	s.mu.Unlock()
	s.notify(snap)
}

func (s *Store) notify(st State) {
	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(st.Clone())
	}
}

func (s *Store) rejectInPreview(st *State, op string) bool {
	if st.Mode == ModePreview {
		s.log.Info("structural edit ignored in preview mode", slog.String("op", op))
		return true
	}
	return false
}

// uniqueID draws ids until one is unused in the document.
func (s *Store) uniqueID(f *domain.FormData) string {
	for {
		id := s.newID()
		if id != "" && f.IndexOf(id) < 0 {
			return id
		}
	}
}

func normalize(f domain.FormData) domain.FormData {
	f = f.Clone()
	if f.Components == nil {
		f.Components = []domain.Component{}
	}
	return f
}

// SetMode switches between edit and preview. Unknown modes are ignored.
// Entering preview drops any drag in progress.
func (s *Store) SetMode(m Mode) {
	if !m.valid() {
		s.log.Warn("unknown mode ignored", slog.String("mode", string(m)))
		return
	}
	s.view(func(st *State) bool {
		if st.Mode == m {
			return false
		}
		st.Mode = m
		if m == ModePreview {
			st.Dragging, st.ActiveDragID = false, ""
		}
		return true
	})
}

// AddComponent appends a new component of type t built from its template,
// selects it and returns its id. Unknown tags get the generic template.
// In preview mode nothing happens and the empty string is returned.
func (s *Store) AddComponent(t domain.FieldType) string {
	var id string
	s.edit("add_component", func(st *State) bool {
		if s.rejectInPreview(st, "add_component") {
			return false
		}
		if !registry.Known(t) {
			s.log.Warn("unknown field type, using generic template", slog.String("type", string(t)))
		}
		c := registry.Template(t)
		c.ID = s.uniqueID(&st.Form)
		st.Form.Components = append(st.Form.Components, c)
		st.SelectedID = c.ID
		id = c.ID
		return true
	})
	return id
}

// UpdateComponent merges u into the component with id. Updates carrying an
// invalid width, a malformed rule or duplicate option ids are dropped whole.
// Props of the wrong variant are ignored while the base fields still apply;
// an update left with nothing to apply does not touch the document.
func (s *Store) UpdateComponent(id string, u domain.ComponentUpdate) {
	if err := u.Validate(); err != nil {
		s.log.Warn("component update rejected", slog.String("id", id), slog.Any("err", err))
		return
	}
	s.edit("update_component", func(st *State) bool {
		if s.rejectInPreview(st, "update_component") {
			return false
		}
		i := st.Form.IndexOf(id)
		if i < 0 {
			return false
		}
		c, ok := st.Form.Components[i].Apply(u)
		if !ok {
			s.log.Warn("props update does not match component type",
				slog.String("id", id), slog.String("type", string(c.Type)))
		}
		if !u.SetsBase() && (u.Props == nil || !ok) {
			return false
		}
		st.Form.Components[i] = c
		return true
	})
}

// RemoveComponent deletes the component with id. The selection is cleared
// whenever something was removed, whichever component was selected.
func (s *Store) RemoveComponent(id string) {
	s.edit("remove_component", func(st *State) bool {
		if s.rejectInPreview(st, "remove_component") {
			return false
		}
		i := st.Form.IndexOf(id)
		if i < 0 {
			return false
		}
		st.Form.Components = append(st.Form.Components[:i:i], st.Form.Components[i+1:]...)
		st.SelectedID = ""
		if st.ActiveDragID == id {
			st.Dragging, st.ActiveDragID = false, ""
		}
		return true
	})
}

// DuplicateComponent inserts a deep copy of id right after it, labelled
// "<label> (Copy)", and selects the copy.
func (s *Store) DuplicateComponent(id string) (string, bool) {
	var newID string
	ok := s.edit("duplicate_component", func(st *State) bool {
		if s.rejectInPreview(st, "duplicate_component") {
			return false
		}
		i := st.Form.IndexOf(id)
		if i < 0 {
			return false
		}
		c := st.Form.Components[i].Clone()
		c.ID = s.uniqueID(&st.Form)
		c.Label += " (Copy)"
		list := make([]domain.Component, 0, len(st.Form.Components)+1)
		list = append(list, st.Form.Components[:i+1]...)
		list = append(list, c)
		list = append(list, st.Form.Components[i+1:]...)
		st.Form.Components = list
		st.SelectedID = c.ID
		newID = c.ID
		return true
	})
	return newID, ok
}

// MoveComponent takes the component at from out of the list and reinserts
// it at to. Indices outside the list are rejected.
func (s *Store) MoveComponent(from, to int) {
	s.edit("move_component", func(st *State) bool {
		if s.rejectInPreview(st, "move_component") {
			return false
		}
		return s.moveLocked(st, from, to)
	})
}

func (s *Store) moveLocked(st *State, from, to int) bool {
	n := len(st.Form.Components)
	if from < 0 || from >= n || to < 0 || to >= n {
		s.log.Warn("move out of range ignored", slog.Int("from", from), slog.Int("to", to), slog.Int("len", n))
		return false
	}
	if from == to {
		return false
	}
	list := st.Form.Components
	moved := list[from]
	if from < to {
		copy(list[from:to], list[from+1:to+1])
	} else {
		copy(list[to+1:from+1], list[to:from])
	}
	list[to] = moved
	return true
}

// SelectComponent marks id as selected. Ids not in the document are ignored;
// the empty string clears the selection.
func (s *Store) SelectComponent(id string) {
	s.view(func(st *State) bool {
		if id != "" && st.Form.IndexOf(id) < 0 {
			return false
		}
		if st.SelectedID == id {
			return false
		}
		st.SelectedID = id
		return true
	})
}

func (s *Store) ClearSelection() { s.SelectComponent("") }

// UpdateTheme merges u into the theme; font sizes merge one by one.
// An update naming a color that cannot be parsed is dropped whole.
func (s *Store) UpdateTheme(u domain.ThemeUpdate) {
	if u.IsZero() {
		return
	}
	if err := u.Validate(); err != nil {
		s.log.Warn("theme update rejected", slog.Any("err", err))
		return
	}
	s.edit("update_theme", func(st *State) bool {
		st.Form.Theme = st.Form.Theme.Apply(u)
		return true
	})
}

// UpdateFormSettings replaces title and description. An empty description
// removes it.
func (s *Store) UpdateFormSettings(title, description string) {
	s.edit("update_form_settings", func(st *State) bool {
		st.Form.Title = title
		st.Form.Description = description
		return true
	})
}

// SetDragging sets the raw drag flag a front end shows while a gesture runs.
func (s *Store) SetDragging(v bool) {
	s.view(func(st *State) bool {
		if st.Dragging == v {
			return false
		}
		if v && st.Mode == ModePreview {
			return false
		}
		st.Dragging = v
		if !v {
			st.ActiveDragID = ""
		}
		return true
	})
}

// BeginDrag starts dragging the component with id.
func (s *Store) BeginDrag(id string) {
	s.view(func(st *State) bool {
		if st.Mode == ModePreview || st.Form.IndexOf(id) < 0 {
			return false
		}
		st.Dragging, st.ActiveDragID = true, id
		return true
	})
}

// EndDrag drops the dragged component onto the position of overID. The
// indices come from the current order, so a component removed mid-drag
// just cancels the gesture.
func (s *Store) EndDrag(overID string) {
	moved := s.edit("drag_move", func(st *State) bool {
		active := st.ActiveDragID
		if active == "" || overID == "" || active == overID || st.Mode == ModePreview {
			return false
		}
		from, to := st.Form.IndexOf(active), st.Form.IndexOf(overID)
		if from < 0 || to < 0 || !s.moveLocked(st, from, to) {
			return false
		}
		st.Dragging, st.ActiveDragID = false, ""
		return true
	})
	if !moved {
		s.CancelDrag()
	}
}

// CancelDrag abandons the gesture without moving anything.
func (s *Store) CancelDrag() {
	s.view(func(st *State) bool {
		if !st.Dragging && st.ActiveDragID == "" {
			return false
		}
		st.Dragging, st.ActiveDragID = false, ""
		return true
	})
}

// ToggleComponentSettings opens the component panel, or closes it if open.
// Opening it closes the theme panel.
func (s *Store) ToggleComponentSettings() { s.togglePanel(PanelComponent) }

// ToggleThemeSettings opens the theme panel, or closes it if open.
// Opening it closes the component panel.
func (s *Store) ToggleThemeSettings() { s.togglePanel(PanelTheme) }

func (s *Store) togglePanel(p Panel) {
	s.view(func(st *State) bool {
		if st.Panel == p {
			st.Panel = PanelNone
		} else {
			st.Panel = p
		}
		return true
	})
}

// ResetForm replaces the document with a fresh blank one and returns to a
// clean edit session. Undo history of the old document is dropped.
func (s *Store) ResetForm() {
	s.replace("reset_form", domain.NewForm(s.newID(), s.now()))
}

// LoadForm makes a copy of f the live document, as when reopening a saved form.
func (s *Store) LoadForm(f domain.FormData) {
	s.replace("load_form", normalize(f))
}

func (s *Store) replace(op string, f domain.FormData) {
	s.mu.Lock()
	old := s.state.Form.ID
	s.state = initialState(f)
	snap := s.state.Clone()
	s.mu.Unlock()
	if s.history != nil {
		s.history.Clear(old)
		s.history.Clear(f.ID)
	}
	s.log.Info("form replaced", slog.String("op", op), slog.String("form", f.ID), slog.String("previous", old))
	s.notify(snap)
}

// Undo restores the document as it was before the last edit. It returns
// false when there is nothing to undo.
func (s *Store) Undo() bool { return s.travel("undo") }

// Redo re-applies the last undone edit.
func (s *Store) Redo() bool { return s.travel("redo") }

// CanUndo reports whether Undo and Redo would do anything.
func (s *Store) CanUndo() (undo, redo bool) {
	if s.history == nil {
		return false, false
	}
	s.mu.Lock()
	id := s.state.Form.ID
	s.mu.Unlock()
	u, r := s.history.Depth(id)
	return u > 0, r > 0
}

func (s *Store) travel(op string) bool {
	if s.history == nil {
		return false
	}
	s.mu.Lock()
	if s.state.Mode == ModePreview {
		s.mu.Unlock()
		s.log.Info("structural edit ignored in preview mode", slog.String("op", op))
		return false
	}
	cur, err := json.Marshal(s.state.Form)
	if err != nil {
		s.mu.Unlock()
		s.log.Warn("undo snapshot failed", slog.String("op", op), slog.Any("err", err))
		return false
	}
	id := s.state.Form.ID
	var (
		snap undo.Snapshot
		ok   bool
	)
	if op == "undo" {
		snap, ok = s.history.Undo(id, cur)
	} else {
		snap, ok = s.history.Redo(id, cur)
	}
	if !ok {
		s.mu.Unlock()
		return false
	}
	f, err := domain.DecodeForm(snap.Blob)
	if err != nil {
		s.mu.Unlock()
		s.log.Error("undo snapshot unreadable", slog.String("op", op), slog.Any("err", err))
		return false
	}
	stamp := s.state.Form.UpdatedAt
	f.ID, f.UpdatedAt = id, stamp
	f.Touch(s.now())
	s.state.Form = f
	if s.state.SelectedID != "" && f.IndexOf(s.state.SelectedID) < 0 {
		s.state.SelectedID = ""
	}
	if s.state.ActiveDragID != "" && f.IndexOf(s.state.ActiveDragID) < 0 {
		s.state.Dragging, s.state.ActiveDragID = false, ""
	}
	st := s.state.Clone()
	s.mu.Unlock()
	s.log.Debug("history step", slog.String("op", op), slog.String("form", id))
	s.notify(st)
	return true
}
