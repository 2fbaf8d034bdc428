/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/rayyan-akhter/form-forge/internal/domain"
	applog "github.com/rayyan-akhter/form-forge/internal/log"
	"github.com/rayyan-akhter/form-forge/internal/undo"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func seqIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	clk := &fakeClock{t: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)}
	base := []Option{
		WithIDGenerator(seqIDs("id-")),
		WithClock(clk.now),
		WithLogger(applog.Discard()),
		WithHistory(undo.NewManager(undo.Config{MinInterval: -1})),
	}
	return New(append(base, opts...)...)
}

func ids(s *Store) []string {
	var out []string
	for _, c := range s.Form().Components {
		out = append(out, c.ID)
	}
	return out
}

func labels(s *Store) []string {
	var out []string
	for _, c := range s.Form().Components {
		out = append(out, c.Label)
	}
	return out
}

func TestNewStoreStartsBlank(t *testing.T) {
	s := newTestStore(t)
	st := s.State()
	if st.Form.ID != "id-1" || st.Form.Title != domain.DefaultTitle || len(st.Form.Components) != 0 {
		t.Fatalf("unexpected initial form %+v", st.Form)
	}
	if st.Mode != ModeEdit || st.Panel != PanelNone || st.SelectedID != "" || st.Dragging {
		t.Fatalf("unexpected transient state %+v", st)
	}
}

func TestAddShortTextScenario(t *testing.T) {
	s := newTestStore(t)
	id := s.AddComponent(domain.TypeShortText)
	st := s.State()
	if len(st.Form.Components) != 1 {
		t.Fatalf("want 1 component, got %d", len(st.Form.Components))
	}
	c := st.Form.Components[0]
	if c.ID != id || c.Type != domain.TypeShortText || c.Label != "Short Text" || c.Required || c.Width != domain.WidthFull {
		t.Fatalf("unexpected component %+v", c)
	}
	rules := c.Rules()
	if len(rules) != 1 || rules[0].Kind != domain.RuleMaxLength || rules[0].Bound != 100 {
		t.Fatalf("seed rule: %+v", rules)
	}
	if st.SelectedID != id {
		t.Fatalf("new component not selected: %q", st.SelectedID)
	}
}

func TestAddUnknownTypeFallsBack(t *testing.T) {
	s := newTestStore(t)
	id := s.AddComponent("hologram")
	c, ok := s.Form().Component(id)
	if !ok || c.Label != "Question" {
		t.Fatalf("fallback component: %+v %v", c, ok)
	}
}

func TestDuplicateSelectScenario(t *testing.T) {
	s := newTestStore(t)
	src := s.AddComponent(domain.TypeSelect)
	cp, ok := s.DuplicateComponent(src)
	if !ok || cp == src {
		t.Fatalf("duplicate: %q %v", cp, ok)
	}
	st := s.State()
	if len(st.Form.Components) != 2 {
		t.Fatalf("want 2 components")
	}
	a, b := st.Form.Components[0], st.Form.Components[1]
	if b.ID != cp || b.Label != "Dropdown (Copy)" || st.SelectedID != cp {
		t.Fatalf("copy: %+v selected=%q", b, st.SelectedID)
	}
	if diff := cmp.Diff(a.Options(), b.Options()); diff != "" {
		t.Fatalf("options differ: %s", diff)
	}
	// options are copied by value
	s.UpdateComponent(src, domain.ComponentUpdate{Props: domain.ChoiceUpdate{
		Options: &[]domain.Option{{ID: "z", Label: "Z", Value: "z"}},
	}})
	got, _ := s.Form().Component(cp)
	if len(got.Options()) != 3 {
		t.Fatalf("copy shares options with source: %+v", got.Options())
	}
}

func TestDuplicateInsertsAfterSource(t *testing.T) {
	s := newTestStore(t)
	a := s.AddComponent(domain.TypeHeading)
	s.AddComponent(domain.TypeParagraph)
	s.DuplicateComponent(a)
	if diff := cmp.Diff([]string{"Heading Text", "Heading Text (Copy)", "Paragraph Text"}, labels(s)); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
}

func TestDuplicateUnknownIsNoop(t *testing.T) {
	s := newTestStore(t)
	s.AddComponent(domain.TypeEmail)
	before := s.State()
	if _, ok := s.DuplicateComponent("missing"); ok {
		t.Fatalf("duplicate of missing id reported success")
	}
	if diff := cmp.Diff(before, s.State()); diff != "" {
		t.Fatalf("state changed:\n%s", diff)
	}
}

func TestIDsStayUniqueWithCollidingGenerator(t *testing.T) {
	gen := []string{"f", "x", "x", "x", "y", "x", "z", "y", "w"}
	i := 0
	next := func() string {
		id := gen[i%len(gen)]
		i++
		return id
	}
	s := newTestStore(t, WithIDGenerator(next))
	a := s.AddComponent(domain.TypeName)
	s.AddComponent(domain.TypePhone)
	s.DuplicateComponent(a)
	s.AddComponent(domain.TypeDate)
	seen := map[string]bool{}
	for _, id := range ids(s) {
		if seen[id] {
			t.Fatalf("duplicate id %q in %v", id, ids(s))
		}
		seen[id] = true
	}
}

func TestMoveScenario(t *testing.T) {
	s := newTestStore(t)
	a := s.AddComponent(domain.TypeShortText)
	b := s.AddComponent(domain.TypeEmail)
	c := s.AddComponent(domain.TypeNumber)
	s.MoveComponent(0, 2)
	if diff := cmp.Diff([]string{b, c, a}, ids(s)); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
	s.MoveComponent(2, 0)
	if diff := cmp.Diff([]string{a, b, c}, ids(s)); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
}

func TestMoveMatchesRemoveThenInsert(t *testing.T) {
	for n := 1; n <= 5; n++ {
		for from := 0; from < n; from++ {
			for to := 0; to < n; to++ {
				s := newTestStore(t)
				for k := 0; k < n; k++ {
					s.AddComponent(domain.TypeShortText)
				}
				orig := ids(s)
				want := append([]string{}, orig[:from]...)
				want = append(want, orig[from+1:]...)
				want = append(want[:to], append([]string{orig[from]}, want[to:]...)...)
				s.MoveComponent(from, to)
				if diff := cmp.Diff(want, ids(s)); diff != "" {
					t.Fatalf("n=%d move(%d,%d) (-want +got):\n%s", n, from, to, diff)
				}
			}
		}
	}
}

func TestMoveOutOfRangeIsRejected(t *testing.T) {
	s := newTestStore(t)
	s.AddComponent(domain.TypeShortText)
	s.AddComponent(domain.TypeEmail)
	before := s.State()
	for _, mv := range [][2]int{{-1, 0}, {0, 2}, {5, 1}, {1, 1}} {
		s.MoveComponent(mv[0], mv[1])
	}
	if diff := cmp.Diff(before, s.State()); diff != "" {
		t.Fatalf("state changed:\n%s", diff)
	}
}

func TestRemoveSelectedScenario(t *testing.T) {
	s := newTestStore(t)
	a := s.AddComponent(domain.TypeShortText)
	b := s.AddComponent(domain.TypeEmail)
	c := s.AddComponent(domain.TypeNumber)
	s.SelectComponent(b)
	s.RemoveComponent(b)
	st := s.State()
	if diff := cmp.Diff([]string{a, c}, ids(s)); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
	if st.SelectedID != "" {
		t.Fatalf("selection should be cleared, got %q", st.SelectedID)
	}
}

func TestRemoveClearsSelectionEvenForOtherComponent(t *testing.T) {
	s := newTestStore(t)
	a := s.AddComponent(domain.TypeShortText)
	b := s.AddComponent(domain.TypeEmail)
	s.SelectComponent(a)
	s.RemoveComponent(b)
	if got := s.State().SelectedID; got != "" {
		t.Fatalf("selection kept: %q", got)
	}
}

func TestRemoveUnknownIsNoop(t *testing.T) {
	s := newTestStore(t)
	a := s.AddComponent(domain.TypeShortText)
	before := s.State()
	s.RemoveComponent("missing")
	after := s.State()
	if after.SelectedID != a {
		t.Fatalf("no-op remove cleared selection")
	}
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("state changed:\n%s", diff)
	}
}

func TestUpdateChangesOnlyLabel(t *testing.T) {
	s := newTestStore(t)
	s.AddComponent(domain.TypeSelect)
	target := s.AddComponent(domain.TypeShortText)
	s.AddComponent(domain.TypeSlider)
	before := s.Form()

	s.UpdateComponent(target, domain.ComponentUpdate{Label: domain.Ptr("X")})
	after := s.Form()

	want := before.Clone()
	want.Components[1].Label = "X"
	want.UpdatedAt = after.UpdatedAt
	if diff := cmp.Diff(want, after); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Fatalf("updatedAt not advanced")
	}
}

func TestUpdateUnknownIDLeavesStamp(t *testing.T) {
	s := newTestStore(t)
	s.AddComponent(domain.TypeShortText)
	before := s.Form()
	s.UpdateComponent("missing", domain.ComponentUpdate{Label: domain.Ptr("X")})
	if diff := cmp.Diff(before, s.Form()); diff != "" {
		t.Fatalf("document changed:\n%s", diff)
	}
}

func TestUpdateRejectsInvalid(t *testing.T) {
	s := newTestStore(t)
	id := s.AddComponent(domain.TypeShortText)
	before := s.Form()
	s.UpdateComponent(id, domain.ComponentUpdate{Label: domain.Ptr("X"), Width: domain.Ptr(domain.Width("wide"))})
	if diff := cmp.Diff(before, s.Form()); diff != "" {
		t.Fatalf("invalid update applied:\n%s", diff)
	}
}

func TestUpdateVariantProps(t *testing.T) {
	s := newTestStore(t)
	id := s.AddComponent(domain.TypeSlider)
	s.UpdateComponent(id, domain.ComponentUpdate{
		Required: domain.Ptr(true),
		Props:    domain.RangeUpdate{Max: domain.Ptr(10.0)},
	})
	c, _ := s.Form().Component(id)
	p := c.Props.(domain.RangeProps)
	if !c.Required || *p.Max != 10 || *p.Min != 0 || *p.Default != 50 {
		t.Fatalf("unexpected %+v %+v", c, p)
	}
}

func TestUpdateWithNothingToApplyIsNoop(t *testing.T) {
	s := newTestStore(t)
	id := s.AddComponent(domain.TypeSlider)
	before := s.Form()
	s.UpdateComponent(id, domain.ComponentUpdate{Props: domain.ImageUpdate{ImageURL: domain.Ptr("x.png")}})
	s.UpdateComponent(id, domain.ComponentUpdate{})
	if diff := cmp.Diff(before, s.Form()); diff != "" {
		t.Fatalf("document changed:\n%s", diff)
	}
	// the only history entry is the add
	if !s.Undo() {
		t.Fatalf("undo failed")
	}
	if n := len(s.Form().Components); n != 0 {
		t.Fatalf("undo restored an empty step, %d components left", n)
	}
}

func TestSelectionIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	a := s.AddComponent(domain.TypeShortText)
	s.AddComponent(domain.TypeEmail)
	s.SelectComponent(a)
	once := s.State()
	s.SelectComponent(a)
	if diff := cmp.Diff(once, s.State()); diff != "" {
		t.Fatalf("second select changed state:\n%s", diff)
	}
	if !once.Form.UpdatedAt.Equal(s.Form().UpdatedAt) {
		t.Fatalf("selection stamped the document")
	}
	s.SelectComponent("missing")
	if s.State().SelectedID != a {
		t.Fatalf("unknown id replaced selection")
	}
	s.ClearSelection()
	if s.State().SelectedID != "" {
		t.Fatalf("selection not cleared")
	}
}

func TestPanelsAreExclusive(t *testing.T) {
	s := newTestStore(t)
	steps := []struct {
		toggle func()
		want   Panel
	}{
		{s.ToggleComponentSettings, PanelComponent},
		{s.ToggleThemeSettings, PanelTheme},
		{s.ToggleThemeSettings, PanelNone},
		{s.ToggleThemeSettings, PanelTheme},
		{s.ToggleComponentSettings, PanelComponent},
		{s.ToggleComponentSettings, PanelNone},
	}
	for i, st := range steps {
		st.toggle()
		if got := s.State().Panel; got != st.want {
			t.Fatalf("step %d: got %v want %v", i, got, st.want)
		}
	}
}

func TestThemeNestedMergeScenario(t *testing.T) {
	s := newTestStore(t)
	s.UpdateTheme(domain.ThemeUpdate{FontSize: &domain.FontSizeUpdate{Base: domain.Ptr("1.2rem")}})
	th := s.Form().Theme
	if th.FontSize.Base != "1.2rem" || th.FontSize.Heading != "1.5rem" || th.FontSize.Label != "0.875rem" {
		t.Fatalf("font sizes: %+v", th.FontSize)
	}
	if th.PrimaryColor != domain.DefaultTheme().PrimaryColor {
		t.Fatalf("other theme fields changed: %+v", th)
	}
}

func TestThemeRejectsBadColor(t *testing.T) {
	s := newTestStore(t)
	before := s.Form()
	s.UpdateTheme(domain.ThemeUpdate{PrimaryColor: domain.Ptr("#nothex"), Spacing: domain.Ptr("2rem")})
	if diff := cmp.Diff(before, s.Form()); diff != "" {
		t.Fatalf("bad theme update applied:\n%s", diff)
	}
}

func TestFormSettings(t *testing.T) {
	s := newTestStore(t)
	s.UpdateFormSettings("Survey", "")
	f := s.Form()
	if f.Title != "Survey" || f.Description != "" {
		t.Fatalf("settings: %q %q", f.Title, f.Description)
	}
	s.UpdateFormSettings("Survey", "About you")
	if s.Form().Description != "About you" {
		t.Fatalf("description not set")
	}
}

func TestTimestampMonotonic(t *testing.T) {
	s := newTestStore(t)
	prev := s.Form().UpdatedAt
	check := func(name string) {
		t.Helper()
		cur := s.Form().UpdatedAt
		if !cur.After(prev) {
			t.Fatalf("%s: updatedAt %v not after %v", name, cur, prev)
		}
		prev = cur
	}
	a := s.AddComponent(domain.TypeShortText)
	check("add")
	b, _ := s.DuplicateComponent(a)
	check("duplicate")
	s.MoveComponent(1, 0)
	check("move")
	s.UpdateComponent(b, domain.ComponentUpdate{HelpText: domain.Ptr("help")})
	check("update")
	s.UpdateTheme(domain.ThemeUpdate{Spacing: domain.Ptr("2rem")})
	check("theme")
	s.UpdateFormSettings("T", "D")
	check("settings")
	s.RemoveComponent(a)
	check("remove")
	s.Undo()
	check("undo")
}

func TestTimestampMonotonicWithFrozenClock(t *testing.T) {
	frozen := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newTestStore(t, WithClock(func() time.Time { return frozen }))
	prev := s.Form().UpdatedAt
	s.AddComponent(domain.TypeEmail)
	if !s.Form().UpdatedAt.After(prev) {
		t.Fatalf("frozen clock should still advance updatedAt")
	}
}

func TestPreviewBlocksStructuralEdits(t *testing.T) {
	s := newTestStore(t)
	a := s.AddComponent(domain.TypeShortText)
	s.AddComponent(domain.TypeEmail)
	s.SetMode(ModePreview)
	before := s.Form()

	if id := s.AddComponent(domain.TypeNumber); id != "" {
		t.Fatalf("add in preview returned %q", id)
	}
	s.UpdateComponent(a, domain.ComponentUpdate{Label: domain.Ptr("X")})
	s.RemoveComponent(a)
	s.DuplicateComponent(a)
	s.MoveComponent(0, 1)
	s.BeginDrag(a)
	if diff := cmp.Diff(before, s.Form()); diff != "" {
		t.Fatalf("preview allowed a structural edit:\n%s", diff)
	}
	if s.State().Dragging {
		t.Fatalf("drag started in preview")
	}

	s.UpdateFormSettings("Still editable", "")
	if s.Form().Title != "Still editable" {
		t.Fatalf("settings should stay editable in preview")
	}
	s.SetMode(ModeEdit)
	s.RemoveComponent(a)
	if len(s.Form().Components) != 1 {
		t.Fatalf("edit mode should allow removal again")
	}
}

func TestSetModeIgnoresUnknown(t *testing.T) {
	s := newTestStore(t)
	s.SetMode("fullscreen")
	if s.State().Mode != ModeEdit {
		t.Fatalf("unknown mode applied")
	}
}

func TestDragMovesByCurrentOrder(t *testing.T) {
	s := newTestStore(t)
	a := s.AddComponent(domain.TypeShortText)
	b := s.AddComponent(domain.TypeEmail)
	c := s.AddComponent(domain.TypeNumber)
	s.BeginDrag(a)
	if st := s.State(); !st.Dragging || st.ActiveDragID != a {
		t.Fatalf("drag not started: %+v", st)
	}
	s.EndDrag(c)
	st := s.State()
	if st.Dragging || st.ActiveDragID != "" {
		t.Fatalf("drag state not cleared: %+v", st)
	}
	if diff := cmp.Diff([]string{b, c, a}, ids(s)); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
}

func TestDragOntoMissingOrSelfCancels(t *testing.T) {
	s := newTestStore(t)
	a := s.AddComponent(domain.TypeShortText)
	s.AddComponent(domain.TypeEmail)
	before := s.Form()
	s.BeginDrag(a)
	s.EndDrag("gone")
	s.BeginDrag(a)
	s.EndDrag(a)
	s.BeginDrag(a)
	s.CancelDrag()
	if st := s.State(); st.Dragging || st.ActiveDragID != "" {
		t.Fatalf("drag state left over: %+v", st)
	}
	if diff := cmp.Diff(before, s.Form()); diff != "" {
		t.Fatalf("document changed:\n%s", diff)
	}
}

func TestResetForm(t *testing.T) {
	s := newTestStore(t)
	old := s.Form().ID
	a := s.AddComponent(domain.TypeShortText)
	s.SelectComponent(a)
	s.ToggleThemeSettings()
	s.SetMode(ModePreview)
	s.ResetForm()
	st := s.State()
	if st.Form.ID == old || len(st.Form.Components) != 0 || st.Form.Title != domain.DefaultTitle {
		t.Fatalf("form not reset: %+v", st.Form)
	}
	if st.SelectedID != "" || st.Panel != PanelNone || st.Mode != ModeEdit {
		t.Fatalf("transient state not reset: %+v", st)
	}
	if s.Undo() {
		t.Fatalf("history should be empty after reset")
	}
}

func TestLoadForm(t *testing.T) {
	s := newTestStore(t)
	f := domain.NewForm("saved-1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	f.Title = "Saved"
	f.Components = append(f.Components, domain.Component{ID: "c1", Type: domain.TypeEmail, Label: "E",
		Width: domain.WidthFull, Props: domain.InputProps{}})
	s.ToggleComponentSettings()
	s.LoadForm(f)
	f.Components[0].Label = "mutated after load"
	st := s.State()
	if st.Form.ID != "saved-1" || st.Form.Title != "Saved" || st.Form.Components[0].Label != "E" {
		t.Fatalf("load: %+v", st.Form)
	}
	if st.Panel != PanelNone {
		t.Fatalf("panel should close on load")
	}
	id := s.AddComponent(domain.TypePhone)
	if id == "" || id == "c1" {
		t.Fatalf("add after load: %q", id)
	}
}

func TestUndoRedo(t *testing.T) {
	s := newTestStore(t)
	a := s.AddComponent(domain.TypeShortText)
	s.UpdateComponent(a, domain.ComponentUpdate{Label: domain.Ptr("First")})
	s.UpdateComponent(a, domain.ComponentUpdate{Label: domain.Ptr("Second")})

	if !s.Undo() {
		t.Fatalf("undo failed")
	}
	if got := labels(s); got[0] != "First" {
		t.Fatalf("after undo: %v", got)
	}
	if u, r := s.CanUndo(); !u || !r {
		t.Fatalf("CanUndo = %v,%v", u, r)
	}
	if !s.Redo() {
		t.Fatalf("redo failed")
	}
	if got := labels(s); got[0] != "Second" {
		t.Fatalf("after redo: %v", got)
	}
	s.Undo()
	s.Undo()
	s.Undo()
	if n := len(s.Form().Components); n != 0 {
		t.Fatalf("undo past add left %d components", n)
	}
	if s.Undo() {
		t.Fatalf("undo beyond history succeeded")
	}
}

func TestUndoClearsStaleSelection(t *testing.T) {
	s := newTestStore(t)
	a := s.AddComponent(domain.TypeShortText)
	if s.State().SelectedID != a {
		t.Fatalf("precondition")
	}
	s.Undo()
	if s.State().SelectedID != "" {
		t.Fatalf("selection of undone component kept")
	}
}

func TestWithoutHistory(t *testing.T) {
	s := newTestStore(t, WithHistory(nil))
	s.AddComponent(domain.TypeShortText)
	if s.Undo() || s.Redo() {
		t.Fatalf("undo without history")
	}
}

func TestSubscribersSeeEveryChange(t *testing.T) {
	s := newTestStore(t)
	var seen []State
	unsub := s.Subscribe(func(st State) { seen = append(seen, st) })
	a := s.AddComponent(domain.TypeShortText)
	s.SelectComponent(a)   // already selected: no event
	s.ToggleThemeSettings() // event
	s.RemoveComponent("x")  // no-op: no event
	if len(seen) != 2 {
		t.Fatalf("want 2 notifications, got %d", len(seen))
	}
	if len(seen[0].Form.Components) != 1 || seen[1].Panel != PanelTheme {
		t.Fatalf("unexpected snapshots %+v", seen)
	}
	seen[0].Form.Components[0].Label = "mutated"
	if labels(s)[0] == "mutated" {
		t.Fatalf("subscriber snapshot aliases live state")
	}
	unsub()
	unsub()
	s.ToggleThemeSettings()
	if len(seen) != 2 {
		t.Fatalf("notified after unsubscribe")
	}
}

func TestStateIsACopy(t *testing.T) {
	s := newTestStore(t)
	s.AddComponent(domain.TypeCheckbox)
	st := s.State()
	st.Form.Components[0].Props.(domain.ChoiceProps).Options[0].Label = "mutated"
	st.Form.Components = nil
	if s.Form().Components[0].Options()[0].Label != "Option 1" {
		t.Fatalf("State shares memory with the store")
	}
}
