/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import (
	"testing"
	"time"
)

func TestUndoRedoBasic(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024 * 1024, MaxPerForm: 10, MinInterval: 10 * time.Millisecond})
	id := "f1"
	t0 := time.Now()
	m.Push(Snapshot{FormID: id, Blob: []byte("a"), TS: t0})
	m.Push(Snapshot{FormID: id, Blob: []byte("b"), TS: t0.Add(20 * time.Millisecond)})
	if _, forms, total := m.Stats(); forms != 1 || total != 2 {
		t.Fatalf("expected 1 form and 2 snapshots, got forms=%d total=%d", forms, total)
	}
	s, ok := m.Undo(id, []byte("c"))
	if !ok || string(s.Blob) != "b" {
		t.Fatalf("undo expected 'b', got ok=%v blob=%q", ok, string(s.Blob))
	}
	s, ok = m.Redo(id, []byte("b"))
	if !ok || string(s.Blob) != "c" {
		t.Fatalf("redo expected 'c', got ok=%v blob=%q", ok, string(s.Blob))
	}
	if u, r := m.Depth(id); u != 2 || r != 0 {
		t.Fatalf("depth after redo: undo=%d redo=%d", u, r)
	}
}

func TestPushDropsRedo(t *testing.T) {
	m := NewManager(Config{MinInterval: -1})
	t0 := time.Now()
	m.Push(Snapshot{FormID: "x", Blob: []byte("1"), TS: t0})
	if _, ok := m.Undo("x", []byte("2")); !ok {
		t.Fatalf("undo failed")
	}
	m.Push(Snapshot{FormID: "x", Blob: []byte("1"), TS: t0.Add(time.Second)})
	if _, ok := m.Redo("x", []byte("3")); ok {
		t.Fatalf("redo should be gone after a new edit")
	}
}

func TestCoalesceKeepsOldest(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024 * 1024, MaxPerForm: 10, MinInterval: 50 * time.Millisecond})
	id := "f2"
	t0 := time.Now()
	m.Push(Snapshot{FormID: id, Blob: []byte("1"), TS: t0})
	m.Push(Snapshot{FormID: id, Blob: []byte("2"), TS: t0.Add(10 * time.Millisecond)})
	m.Push(Snapshot{FormID: id, Blob: []byte("3"), TS: t0.Add(40 * time.Millisecond)})
	_, _, total := m.Stats()
	if total != 1 {
		t.Fatalf("expected coalesced to 1 snapshot, got %d", total)
	}
	s, ok := m.Undo(id, []byte("4"))
	if !ok || string(s.Blob) != "1" {
		t.Fatalf("expected the pre-burst snapshot '1', got ok=%v blob=%q", ok, string(s.Blob))
	}
}

func TestCaps(t *testing.T) {
	m := NewManager(Config{MaxBytes: 20, MaxPerForm: 2, MinInterval: time.Millisecond})
	t0 := time.Now()
	for i := 0; i < 10; i++ {
		m.Push(Snapshot{FormID: "f3", Blob: []byte("xxxxx"), TS: t0.Add(time.Duration(i) * time.Second)})
	}
	tb, _, total := m.Stats()
	if total > 2 {
		t.Fatalf("expected MaxPerForm cap to limit to 2, got %d", total)
	}
	if tb != 10 {
		t.Fatalf("byte accounting off: %d", tb)
	}
}

func TestClearAndStats(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024, MaxPerForm: 10, MinInterval: time.Millisecond})
	m.Push(Snapshot{FormID: "f7", Blob: []byte("abcdef"), TS: time.Now()})
	m.Undo("f7", []byte("ghi"))
	m.Push(Snapshot{FormID: "f7", Blob: []byte("abcdef"), TS: time.Now().Add(time.Second)})
	tb, forms, total := m.Stats()
	if tb == 0 || forms != 1 || total != 1 {
		t.Fatalf("unexpected stats before clear: tb=%d forms=%d total=%d", tb, forms, total)
	}
	m.Clear("f7")
	tb2, forms2, total2 := m.Stats()
	if tb2 != 0 || forms2 != 0 || total2 != 0 {
		t.Fatalf("expected cleared stats to be zero, got tb=%d forms=%d total=%d", tb2, forms2, total2)
	}
}

func TestGlobalPruneAcrossForms(t *testing.T) {
	m := NewManager(Config{MaxBytes: 8, MaxPerForm: 0, MinInterval: time.Millisecond})
	t0 := time.Now()
	m.Push(Snapshot{FormID: "old", Blob: []byte("xxxx"), TS: t0})
	m.Push(Snapshot{FormID: "new", Blob: []byte("yyyy"), TS: t0.Add(time.Second)})
	m.Push(Snapshot{FormID: "new", Blob: []byte("zzzz"), TS: t0.Add(2 * time.Second)})

	if _, ok := m.Undo("old", nil); ok {
		t.Fatalf("expected the oldest document's history to be pruned")
	}
	if _, ok := m.Undo("new", nil); !ok {
		t.Fatalf("expected newer document to keep history")
	}
}
