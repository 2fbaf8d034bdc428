/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package undo keeps bounded in-memory undo/redo history for form documents.
package undo

import (
	"sync"
	"time"
)

// Snapshot is a serialized document state. Blob is opaque to the manager;
// its size is taken as len(Blob). TS is when the state was captured.
type Snapshot struct {
	FormID string
	Blob   []byte
	TS     time.Time
}

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes is a soft cap; the oldest entries across all documents are
	// pruned when it is exceeded.
	MaxBytes int
	// MaxPerForm limits the undo depth of one document (0 means unlimited).
	MaxPerForm int
	// MinInterval folds pushes that arrive within the interval of the previous
	// one into that entry, so a burst of edits undoes in one step. Negative
	// disables coalescing.
	MinInterval time.Duration
}

// Manager holds an undo and a redo stack per document id.
// It is safe for concurrent use.
type Manager struct {
	cfg  Config
	mu   sync.Mutex
	undo map[string][]Snapshot
	redo map[string][]Snapshot
	// accounting
	totalBytes int
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 16 * 1024 * 1024 // 16 MiB
	}
	if cfg.MinInterval == 0 {
		cfg.MinInterval = 250 * time.Millisecond
	}
	return &Manager{cfg: cfg, undo: make(map[string][]Snapshot), redo: make(map[string][]Snapshot)}
}

// Push records the state a document had before an edit and drops its redo
// stack. A push within MinInterval of the previous one keeps the earlier
// state and only extends the burst.
func (m *Manager) Push(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropRedoLocked(s.FormID)
	stack := m.undo[s.FormID]
	if n := len(stack); n > 0 && m.cfg.MinInterval > 0 {
		last := &stack[n-1]
		if d := s.TS.Sub(last.TS); d >= 0 && d < m.cfg.MinInterval {
			last.TS = s.TS
			return
		}
	}
	m.undo[s.FormID] = append(stack, s)
	m.totalBytes += len(s.Blob)
	m.enforceCapsLocked(s.FormID)
}

// Undo pops the most recent saved state of formID. current is the state
// being left; it goes on the redo stack.
func (m *Manager) Undo(formID string, current []byte) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[formID]
	if len(stack) == 0 {
		return Snapshot{}, false
	}
	s := stack[len(stack)-1]
	m.undo[formID] = stack[:len(stack)-1]
	m.totalBytes -= len(s.Blob)
	m.redo[formID] = append(m.redo[formID], Snapshot{FormID: formID, Blob: current, TS: s.TS})
	m.totalBytes += len(current)
	m.enforceCapsLocked(formID)
	return s, true
}

// Redo reverses the last Undo. current goes back on the undo stack.
func (m *Manager) Redo(formID string, current []byte) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.redo[formID]
	if len(r) == 0 {
		return Snapshot{}, false
	}
	s := r[len(r)-1]
	m.redo[formID] = r[:len(r)-1]
	m.totalBytes -= len(s.Blob)
	// redo entries never coalesce, each one was a separate step
	m.undo[formID] = append(m.undo[formID], Snapshot{FormID: formID, Blob: current, TS: time.Time{}})
	m.totalBytes += len(current)
	m.enforceCapsLocked(formID)
	return s, true
}

// Depth returns how many undo and redo steps formID has.
func (m *Manager) Depth(formID string) (undo, redo int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo[formID]), len(m.redo[formID])
}

// Clear drops both stacks of formID.
func (m *Manager) Clear(formID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.undo[formID] {
		m.totalBytes -= len(s.Blob)
	}
	delete(m.undo, formID)
	m.dropRedoLocked(formID)
	if m.totalBytes < 0 {
		m.totalBytes = 0
	}
}

// Stats returns current sizes for diagnostics. Redo entries count towards
// totalBytes but not towards forms or snapshots.
func (m *Manager) Stats() (totalBytes int, forms int, totalSnapshots int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	forms = len(m.undo)
	for _, v := range m.undo {
		totalSnapshots += len(v)
	}
	return m.totalBytes, forms, totalSnapshots
}

func (m *Manager) dropRedoLocked(formID string) {
	for _, s := range m.redo[formID] {
		m.totalBytes -= len(s.Blob)
	}
	delete(m.redo, formID)
}

func (m *Manager) enforceCapsLocked(formID string) {
	if m.cfg.MaxPerForm > 0 {
		stack := m.undo[formID]
		if len(stack) > m.cfg.MaxPerForm {
			toDrop := len(stack) - m.cfg.MaxPerForm
			for i := 0; i < toDrop; i++ {
				m.totalBytes -= len(stack[i].Blob)
			}
			m.undo[formID] = append([]Snapshot{}, stack[toDrop:]...)
		}
	}
	// global memory cap: prune the oldest bottom entry across documents
	for m.cfg.MaxBytes > 0 && m.totalBytes > m.cfg.MaxBytes {
		oldestForm := ""
		found := false
		var oldestTS time.Time
		for id, stack := range m.undo {
			if len(stack) == 0 {
				continue
			}
			if !found || stack[0].TS.Before(oldestTS) {
				oldestForm, oldestTS, found = id, stack[0].TS, true
			}
		}
		if !found {
			break
		}
		stack := m.undo[oldestForm]
		m.totalBytes -= len(stack[0].Blob)
		m.undo[oldestForm] = stack[1:]
		if len(m.undo[oldestForm]) == 0 {
			delete(m.undo, oldestForm)
		}
	}
}
