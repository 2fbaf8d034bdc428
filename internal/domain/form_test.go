/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func sampleForm() FormData {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	f := NewForm("form-1", now)
	f.Components = []Component{
		{ID: "a", Type: TypeShortText, Label: "Name", Width: WidthFull, Props: InputProps{
			Placeholder: "Your name",
			Validation:  []ValidationRule{MaxLengthRule(100, "Too long")},
		}},
		{ID: "b", Type: TypeSelect, Label: "Pick", Width: WidthHalf, Props: ChoiceProps{
			Options: []Option{{ID: "o1", Label: "One", Value: "1"}, {ID: "o2", Label: "Two", Value: "2"}},
			Default: []string{"2"},
		}},
		{ID: "c", Type: TypeCheckbox, Label: "Tags", Width: WidthThird, Props: ChoiceProps{
			Options: []Option{{ID: "x", Label: "X", Value: "x"}},
			Default: []string{"x"},
		}},
		{ID: "d", Type: TypeNumber, Label: "Age", Width: WidthFull, Props: NumberProps{
			Min: Ptr(0.0), Max: Ptr(130.0), Default: Ptr(30.0),
		}},
		{ID: "e", Type: TypeSlider, Label: "Level", Width: WidthFull, Props: RangeProps{
			Min: Ptr(0.0), Max: Ptr(100.0), Step: Ptr(1.0), Default: Ptr(50.0),
		}},
		{ID: "f", Type: TypeSwitch, Label: "On", Width: WidthFull, Props: SwitchProps{Default: true}},
		{ID: "g", Type: TypeFile, Label: "CV", Width: WidthFull, Props: FileProps{AcceptedFileTypes: ".pdf", MaxFileSize: 5}},
		{ID: "h", Type: TypeImage, Label: "Logo", Width: WidthFull, Props: ImageProps{ImageURL: "https://example.com/a.png"}},
		{ID: "i", Type: TypeLink, Label: "Docs", Width: WidthFull, Props: LinkProps{LinkURL: "https://example.com", LinkText: "Read"}},
		{ID: "j", Type: TypeDivider, Width: WidthFull, Props: StaticProps{}},
	}
	return f
}

func TestFormJSONRoundTrip(t *testing.T) {
	f := sampleForm()
	b, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := DecodeForm(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(f, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestComponentWireShape(t *testing.T) {
	f := sampleForm()
	b, err := json.Marshal(f.Components[1])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m["type"] != "select" || m["width"] != "half" || m["required"] != false {
		t.Fatalf("unexpected base fields: %v", m)
	}
	if m["defaultValue"] != "2" {
		t.Fatalf("select default should be a plain string, got %v", m["defaultValue"])
	}
	for _, k := range []string{"imageUrl", "linkUrl", "min", "maxFileSize", "helpText"} {
		if _, ok := m[k]; ok {
			t.Fatalf("unexpected key %q in %s", k, b)
		}
	}
}

func TestDecodeToleratesOldAndUnknown(t *testing.T) {
	raw := `{
		"id": "old",
		"title": "Legacy",
		"components": [
			{"id": "1", "type": "hologram", "label": "Future"},
			{"id": "2", "type": "rating", "label": "Stars", "max": 5, "defaultValue": "3"},
			{"id": "3", "type": "switch", "label": "S", "defaultValue": "true"},
			{"id": "4", "type": "radio", "label": "R", "defaultValue": ["a"]},
			{"id": "5", "type": "shortText", "label": "T", "defaultValue": 42,
			 "validation": [{"type": "minLength", "value": "3", "message": "short"}]}
		],
		"theme": {"primaryColor": "#000000"},
		"createdAt": "2024-01-01T00:00:00Z",
		"updatedAt": "2024-01-02T00:00:00Z"
	}`
	f, err := DecodeForm([]byte(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if f.Description != "" {
		t.Fatalf("description should be absent, got %q", f.Description)
	}
	if f.Theme.PrimaryColor != "#000000" || f.Theme.SecondaryColor != DefaultTheme().SecondaryColor {
		t.Fatalf("theme not merged over defaults: %+v", f.Theme)
	}
	if f.Theme.FontSize.Heading != "1.5rem" {
		t.Fatalf("font sizes should default, got %+v", f.Theme.FontSize)
	}
	c := f.Components
	if _, ok := c[0].Props.(StaticProps); !ok || c[0].Width != WidthFull {
		t.Fatalf("unknown type should fall back to static/full: %+v", c[0])
	}
	rp := c[1].Props.(RangeProps)
	if rp.Max == nil || *rp.Max != 5 || rp.Default == nil || *rp.Default != 3 {
		t.Fatalf("rating props: %+v", rp)
	}
	if !c[2].Props.(SwitchProps).Default {
		t.Fatalf("switch default should coerce from string")
	}
	if d := c[3].Props.(ChoiceProps).Default; len(d) != 1 || d[0] != "a" {
		t.Fatalf("radio default: %v", d)
	}
	ip := c[4].Props.(InputProps)
	if ip.Default != "42" {
		t.Fatalf("numeric default should keep its text, got %q", ip.Default)
	}
	if len(ip.Validation) != 1 || ip.Validation[0].Bound != 3 {
		t.Fatalf("rule bound from string: %+v", ip.Validation)
	}
}

func TestDecodeNullComponents(t *testing.T) {
	f, err := DecodeForm([]byte(`{"id":"x","title":"t","components":null}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if f.Components == nil || len(f.Components) != 0 {
		t.Fatalf("expected empty non-nil components, got %#v", f.Components)
	}
}

func TestCloneIsDeep(t *testing.T) {
	f := sampleForm()
	cp := f.Clone()
	ch := cp.Components[1].Props.(ChoiceProps)
	ch.Options[0].Label = "changed"
	np := cp.Components[3].Props.(NumberProps)
	*np.Max = 1
	ip := cp.Components[0].Props.(InputProps)
	ip.Validation[0].Message = "changed"

	if f.Components[1].Props.(ChoiceProps).Options[0].Label != "One" {
		t.Fatalf("options shared with clone")
	}
	if *f.Components[3].Props.(NumberProps).Max != 130 {
		t.Fatalf("number pointer shared with clone")
	}
	if f.Components[0].Props.(InputProps).Validation[0].Message != "Too long" {
		t.Fatalf("validation shared with clone")
	}
}

func TestTouchIsMonotonic(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	f := NewForm("x", base)
	f.Touch(base)
	if !f.UpdatedAt.After(base) {
		t.Fatalf("same clock reading should still advance: %v", f.UpdatedAt)
	}
	prev := f.UpdatedAt
	f.Touch(base.Add(-time.Hour))
	if !f.UpdatedAt.After(prev) {
		t.Fatalf("clock going backwards moved updatedAt back: %v", f.UpdatedAt)
	}
	later := base.Add(time.Minute)
	f.Touch(later)
	if !f.UpdatedAt.Equal(later) {
		t.Fatalf("got %v want %v", f.UpdatedAt, later)
	}
}

func TestNewFormDefaults(t *testing.T) {
	now := time.Now()
	f := NewForm("id", now)
	if f.Title != DefaultTitle || f.Description != DefaultDescription {
		t.Fatalf("unexpected metadata: %q %q", f.Title, f.Description)
	}
	if len(f.Components) != 0 || f.Components == nil {
		t.Fatalf("components should be empty and non-nil")
	}
	if !f.CreatedAt.Equal(f.UpdatedAt) {
		t.Fatalf("timestamps differ: %v %v", f.CreatedAt, f.UpdatedAt)
	}
	if f.Theme != DefaultTheme() {
		t.Fatalf("theme: %+v", f.Theme)
	}
}

func TestIndexOfAndLookup(t *testing.T) {
	f := sampleForm()
	if f.IndexOf("c") != 2 || f.IndexOf("nope") != -1 {
		t.Fatalf("IndexOf wrong")
	}
	if c, ok := f.Component("h"); !ok || c.Label != "Logo" {
		t.Fatalf("lookup: %+v %v", c, ok)
	}
}

func TestFieldTypes(t *testing.T) {
	ts := FieldTypes()
	if len(ts) != 22 {
		t.Fatalf("want 22 field types, got %d", len(ts))
	}
	ts[0] = "mutated"
	if FieldTypes()[0] != TypeShortText {
		t.Fatalf("FieldTypes should return a copy")
	}
	if FieldType("nope").Known() || !TypeFileDisplay.Known() {
		t.Fatalf("Known wrong")
	}
	if !TypeDivider.IsLayout() || TypeEmail.IsLayout() {
		t.Fatalf("IsLayout wrong")
	}
	if !strings.EqualFold(string(TypeFileDisplay), "filedisplay") {
		t.Fatalf("tag spelling changed: %s", TypeFileDisplay)
	}
}

func TestPropsFor(t *testing.T) {
	cases := map[FieldType]Props{
		TypeLongText: InputProps{},
		TypeDate:     InputProps{},
		TypeNumber:   NumberProps{},
		TypeRadio:    ChoiceProps{},
		TypeFile:     FileProps{},
		TypeRating:   RangeProps{},
		TypeSwitch:   SwitchProps{},
		TypeImage:    ImageProps{},
		TypeLink:     LinkProps{},
		TypePayment:  StaticProps{},
		"bogus":      StaticProps{},
	}
	for ft, want := range cases {
		if diff := cmp.Diff(want, PropsFor(ft)); diff != "" {
			t.Fatalf("%s: %s", ft, diff)
		}
	}
}
