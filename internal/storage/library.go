/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rayyan-akhter/form-forge/internal/domain"
	applog "github.com/rayyan-akhter/form-forge/internal/log"
)

// SavedFormsKey is the key the whole list of saved forms lives under.
const SavedFormsKey = "formforge.savedForms"

// Snapshot is a saved copy of a form stamped with the time it was saved.
type Snapshot struct {
	domain.FormData
	LastEdited time.Time `json:"lastEdited"`
}

// Library is the list of saved forms. Every write replaces the whole list;
// the last write wins. Callers hand in copies and get copies back, so a
// Library never shares memory with a live document.
type Library struct {
	kv  KV
	now func() time.Time
	log *slog.Logger
	mu  sync.Mutex
}

type LibraryOption func(*Library)

func WithLibraryClock(fn func() time.Time) LibraryOption { return func(l *Library) { l.now = fn } }

func WithLibraryLogger(lg *slog.Logger) LibraryOption { return func(l *Library) { l.log = lg } }

func NewLibrary(kv KV, opts ...LibraryOption) *Library {
	l := &Library{kv: kv, now: time.Now}
	for _, o := range opts {
		o(l)
	}
	if l.log == nil {
		l.log = applog.WithComponent("library")
	}
	return l
}

// Save upserts a snapshot of f: an entry with the same id is replaced in
// place, otherwise the snapshot is appended. Stored entries this version
// cannot read are written back untouched.
func (l *Library) Save(ctx context.Context, f domain.FormData) (Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lg := applog.WithForm(applog.WithOperation(l.log, "save"), f.ID)

	snap := Snapshot{FormData: f.Clone(), LastEdited: l.now().UTC()}
	raw, err := json.Marshal(snap)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: encode: %v", ErrInvalid, err)
	}
	if err := ValidateRecord(raw); err != nil {
		lg.Warn("snapshot refused", slog.Any("err", err))
		return Snapshot{}, err
	}
	entries, err := l.load(ctx)
	if err != nil {
		lg.Error("load saved forms failed", slog.Any("err", err))
		return Snapshot{}, err
	}
	replaced := false
	for i := range entries {
		if entries[i].id == snap.ID {
			entries[i] = entry{id: snap.ID, snap: snap}
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, entry{id: snap.ID, snap: snap})
	}
	if err := l.store(ctx, entries); err != nil {
		lg.Error("write saved forms failed", slog.Any("err", err))
		return Snapshot{}, err
	}
	lg.Info("form saved", slog.Int("components", len(snap.Components)), slog.Bool("replaced", replaced))
	return cloneSnapshot(snap), nil
}

// List returns all readable snapshots in insertion order; re-saving a form
// keeps its position.
func (l *Library) List(ctx context.Context) ([]Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries, err := l.load(ctx)
	if err != nil {
		applog.WithOperation(l.log, "list").Error("load saved forms failed", slog.Any("err", err))
		return []Snapshot{}, err
	}
	list := make([]Snapshot, 0, len(entries))
	for _, e := range entries {
		if e.raw == nil {
			list = append(list, e.snap)
		}
	}
	return list, nil
}

// Get returns the snapshot with id.
func (l *Library) Get(ctx context.Context, id string) (Snapshot, bool, error) {
	list, err := l.List(ctx)
	if err != nil {
		return Snapshot{}, false, err
	}
	for _, s := range list {
		if s.ID == id {
			return s, true, nil
		}
	}
	return Snapshot{}, false, nil
}

// Delete removes the snapshot with id. Deleting an id that is not saved
// writes nothing.
func (l *Library) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	lg := applog.WithForm(applog.WithOperation(l.log, "delete"), id)
	entries, err := l.load(ctx)
	if err != nil {
		lg.Error("load saved forms failed", slog.Any("err", err))
		return err
	}
	out := entries[:0]
	for _, e := range entries {
		if e.id == "" || e.id != id {
			out = append(out, e)
		}
	}
	if len(out) == len(entries) {
		return nil
	}
	if err := l.store(ctx, out); err != nil {
		lg.Error("write saved forms failed", slog.Any("err", err))
		return err
	}
	lg.Info("form deleted")
	return nil
}

// entry is one element of the stored list. raw is set when the record
// could not be read; it is then carried through writes byte for byte
// until a save or delete of the same id replaces it.
type entry struct {
	id   string
	snap Snapshot
	raw  json.RawMessage
}

func (e entry) MarshalJSON() ([]byte, error) {
	if e.raw != nil {
		return e.raw, nil
	}
	return json.Marshal(e.snap)
}

func (l *Library) load(ctx context.Context) ([]entry, error) {
	b, found, err := l.kv.Get(ctx, SavedFormsKey)
	if err != nil {
		if errors.Is(err, ErrCorrupt) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !found {
		return []entry{}, nil
	}
	entries, perr := l.decodeList(b)
	if perr == nil {
		return entries, nil
	}
	rr, ok := l.kv.(RevisionReader)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, perr)
	}
	prev, found, err := rr.LatestRevision(ctx, SavedFormsKey)
	if err != nil || !found {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, perr)
	}
	entries, err = l.decodeList(prev)
	if err != nil {
		return nil, fmt.Errorf("%w: %v; previous revision: %v", ErrCorrupt, perr, err)
	}
	l.log.Warn("saved forms were unreadable, recovered previous revision",
		slog.Any("err", perr), slog.Int("forms", len(entries)))
	return entries, nil
}

// decodeList parses the stored list. Records that fail the schema or do
// not decode are kept raw so one bad entry cannot hide or lose the others.
func (l *Library) decodeList(b []byte) ([]entry, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(b, &raws); err != nil {
		return nil, err
	}
	out := make([]entry, 0, len(raws))
	for i, raw := range raws {
		if err := ValidateRecord(raw); err != nil {
			l.log.Warn("skipping invalid saved form", slog.Int("index", i), slog.Any("err", err))
			out = append(out, entry{id: rawID(raw), raw: raw})
			continue
		}
		s, err := decodeSnapshot(raw)
		if err != nil {
			l.log.Warn("skipping undecodable saved form", slog.Int("index", i), slog.Any("err", err))
			out = append(out, entry{id: rawID(raw), raw: raw})
			continue
		}
		out = append(out, entry{id: s.ID, snap: s})
	}
	return out, nil
}

// rawID reads the id of a record that otherwise failed to decode.
func rawID(raw []byte) string {
	var head struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(raw, &head)
	return head.ID
}

func (l *Library) store(ctx context.Context, entries []entry) error {
	b, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrInvalid, err)
	}
	if err := l.kv.Set(ctx, SavedFormsKey, b); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func decodeSnapshot(raw []byte) (Snapshot, error) {
	s := Snapshot{FormData: domain.FormData{Theme: domain.DefaultTheme()}}
	if err := json.Unmarshal(raw, &s); err != nil {
		return Snapshot{}, err
	}
	if s.Components == nil {
		s.Components = []domain.Component{}
	}
	// list entries written by older versions carry only id, title and lastEdited
	if s.CreatedAt.IsZero() {
		s.CreatedAt = s.LastEdited
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = s.LastEdited
	}
	return s, nil
}

func cloneSnapshot(s Snapshot) Snapshot {
	s.FormData = s.FormData.Clone()
	return s
}
