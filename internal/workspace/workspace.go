/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package workspace ties a live form Store to the saved-forms Library. It is
// the layer every front end talks to: saving, opening and deleting forms,
// listing them for the home view and reporting soft failures as notices
// instead of errors the user has to handle.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rayyan-akhter/form-forge/internal/domain"
	applog "github.com/rayyan-akhter/form-forge/internal/log"
	"github.com/rayyan-akhter/form-forge/internal/registry"
	"github.com/rayyan-akhter/form-forge/internal/storage"
	"github.com/rayyan-akhter/form-forge/internal/store"
)

// Notice titles.
const (
	MsgSaved        = "Form saved successfully!"
	MsgSaveFailed   = "Could not save form"
	MsgAdded        = "Component added"
	MsgNotFound     = "Form not found"
	MsgOpenFailed   = "Could not open form"
	MsgDeleted      = "Form deleted"
	MsgDeleteFailed = "Could not delete form"
	MsgListFailed   = "Could not load saved forms"
)

// ErrNotFound is returned by Open for an id that is not in the library.
var ErrNotFound = errors.New("form not found")

// Recorder receives usage events. *telemetry.Client implements it.
type Recorder interface {
	ComponentAdded(t domain.FieldType)
	FormSaved(components int)
	FormDeleted()
}

type nopRecorder struct{}

func (nopRecorder) ComponentAdded(domain.FieldType) {}
func (nopRecorder) FormSaved(int)                   {}
func (nopRecorder) FormDeleted()                    {}

// FormItem is one entry of the saved-forms list.
type FormItem struct {
	ID         string
	Title      string
	LastEdited time.Time
}

type Workspace struct {
	Store   *store.Store
	Library *storage.Library
	Notices *Notifier

	events Recorder
	log    *slog.Logger
}

type Option func(*Workspace)

func WithRecorder(r Recorder) Option { return func(w *Workspace) { w.events = r } }

func WithNotifier(n *Notifier) Option { return func(w *Workspace) { w.Notices = n } }

func WithLogger(l *slog.Logger) Option { return func(w *Workspace) { w.log = l } }

// New wires st and lib together.
func New(st *store.Store, lib *storage.Library, opts ...Option) *Workspace {
	w := &Workspace{Store: st, Library: lib}
	for _, o := range opts {
		o(w)
	}
	if w.Notices == nil {
		w.Notices = NewNotifier(0)
	}
	if w.events == nil {
		w.events = nopRecorder{}
	}
	if w.log == nil {
		w.log = applog.WithComponent("workspace")
	}
	return w
}

// Save writes the live document to the library. The live document is left
// as it is whether or not the write succeeds.
func (w *Workspace) Save(ctx context.Context) (storage.Snapshot, error) {
	f := w.Store.Form()
	snap, err := w.Library.Save(ctx, f)
	if err != nil {
		applog.WithForm(w.log, f.ID).Error("save failed", slog.Any("err", err))
		w.Notices.Post(LevelError, MsgSaveFailed, describe(err))
		return storage.Snapshot{}, err
	}
	w.events.FormSaved(len(snap.Components))
	w.Notices.Post(LevelSuccess, MsgSaved, snap.Title)
	return snap, nil
}

// Autosave saves the live document without posting a notice. It returns the
// id the document was saved under.
func (w *Workspace) Autosave(ctx context.Context) (string, error) {
	snap, err := w.Library.Save(ctx, w.Store.Form())
	if err != nil {
		return "", err
	}
	return snap.ID, nil
}

// Open loads the saved form id into the store, replacing the live document
// and its history.
func (w *Workspace) Open(ctx context.Context, id string) error {
	snap, found, err := w.Library.Get(ctx, id)
	if err != nil {
		w.Notices.Post(LevelError, MsgOpenFailed, describe(err))
		return err
	}
	if !found {
		w.Notices.Post(LevelError, MsgNotFound, id)
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	w.Store.LoadForm(snap.FormData)
	applog.WithForm(w.log, id).Info("form opened", slog.Int("components", len(snap.Components)))
	return nil
}

// New replaces the live document with a blank one.
func (w *Workspace) New() {
	w.Store.ResetForm()
}

// Delete removes the saved form id. The live document is not affected, even
// when it is the form being deleted.
func (w *Workspace) Delete(ctx context.Context, id string) error {
	if err := w.Library.Delete(ctx, id); err != nil {
		w.Notices.Post(LevelError, MsgDeleteFailed, describe(err))
		return err
	}
	w.events.FormDeleted()
	w.Notices.Post(LevelInfo, MsgDeleted, id)
	return nil
}

// Forms lists saved forms for the home view. On failure it posts a notice
// and returns an empty list.
func (w *Workspace) Forms(ctx context.Context) []FormItem {
	list, err := w.Library.List(ctx)
	if err != nil {
		w.Notices.Post(LevelError, MsgListFailed, describe(err))
		return []FormItem{}
	}
	out := make([]FormItem, 0, len(list))
	for _, s := range list {
		out = append(out, FormItem{ID: s.ID, Title: s.Title, LastEdited: s.LastEdited})
	}
	return out
}

// AddComponent appends a component of type t to the live document. It
// does nothing in preview mode and reports false.
func (w *Workspace) AddComponent(t domain.FieldType) (string, bool) {
	id := w.Store.AddComponent(t)
	if id == "" {
		return "", false
	}
	w.events.ComponentAdded(t)
	w.Notices.Post(LevelInfo, MsgAdded, fmt.Sprintf("Added a new %s component to your form.", t))
	return id, true
}

// Palette returns the field types grouped for the component panel.
func (w *Workspace) Palette() []registry.Category { return registry.Palette() }

func describe(err error) string {
	switch {
	case errors.Is(err, storage.ErrCorrupt):
		return "saved forms are damaged and could not be read"
	case errors.Is(err, storage.ErrUnavailable):
		return "storage is not available"
	case errors.Is(err, storage.ErrInvalid):
		return "the form could not be stored"
	}
	return err.Error()
}
