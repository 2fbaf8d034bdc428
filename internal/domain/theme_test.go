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
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestThemeNestedFontSizeMerge(t *testing.T) {
	th := DefaultTheme()
	got := th.Apply(ThemeUpdate{FontSize: &FontSizeUpdate{Base: Ptr("1.2rem")}})
	if got.FontSize.Base != "1.2rem" {
		t.Fatalf("base: got %q", got.FontSize.Base)
	}
	if got.FontSize.Heading != "1.5rem" || got.FontSize.Label != "0.875rem" {
		t.Fatalf("siblings clobbered: %+v", got.FontSize)
	}
	want := th
	want.FontSize.Base = "1.2rem"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("other fields changed (-want +got):\n%s", diff)
	}
	if th.FontSize.Base != "1rem" {
		t.Fatalf("receiver modified")
	}
}

func TestThemeApplyTopLevel(t *testing.T) {
	got := DefaultTheme().Apply(ThemeUpdate{PrimaryColor: Ptr("#000"), Spacing: Ptr("2rem")})
	if got.PrimaryColor != "#000" || got.Spacing != "2rem" || got.AccentColor != "#ec4899" {
		t.Fatalf("unexpected theme %+v", got)
	}
}

func TestThemeUpdateValidate(t *testing.T) {
	if err := (ThemeUpdate{PrimaryColor: Ptr("rebeccapurple"), AccentColor: Ptr("#abc")}).Validate(); err != nil {
		t.Fatalf("valid colors rejected: %v", err)
	}
	if err := (ThemeUpdate{BackgroundColor: Ptr("#zzz")}).Validate(); err == nil {
		t.Fatalf("expected error for malformed color")
	}
	if err := (ThemeUpdate{FontFamily: Ptr("anything goes")}).Validate(); err != nil {
		t.Fatalf("font family is not a color: %v", err)
	}
}

func TestThemeUpdateIsZero(t *testing.T) {
	if !(ThemeUpdate{}).IsZero() || !(ThemeUpdate{FontSize: &FontSizeUpdate{}}).IsZero() {
		t.Fatalf("empty updates should be zero")
	}
	if (ThemeUpdate{FontSize: &FontSizeUpdate{Label: Ptr("1px")}}).IsZero() {
		t.Fatalf("label update is not zero")
	}
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want color.RGBA
		ok   bool
	}{
		{"#6366f1", color.RGBA{0x63, 0x66, 0xf1, 0xff}, true},
		{"#FFF", color.RGBA{0xff, 0xff, 0xff, 0xff}, true},
		{"#11223380", color.RGBA{0x11, 0x22, 0x33, 0x80}, true},
		{"Red", color.RGBA{0xff, 0, 0, 0xff}, true},
		{"", color.RGBA{}, false},
		{"#12", color.RGBA{}, false},
		{"notacolor", color.RGBA{}, false},
	}
	for _, c := range cases {
		got, err := ParseColor(c.in)
		if (err == nil) != c.ok {
			t.Fatalf("%q: err=%v", c.in, err)
		}
		if c.ok && got != c.want {
			t.Fatalf("%q: got %v want %v", c.in, got, c.want)
		}
	}
}

func TestDefaultThemeColorsParse(t *testing.T) {
	th := DefaultTheme()
	for _, s := range []string{th.PrimaryColor, th.SecondaryColor, th.AccentColor, th.BackgroundColor} {
		if _, err := ParseColor(s); err != nil {
			t.Fatalf("%s: %v", s, err)
		}
	}
}

func TestValidationRuleWire(t *testing.T) {
	rules := []ValidationRule{
		RequiredRule("needed"),
		EmailRule("Please enter a valid email address"),
		MinLengthRule(2, "short"),
		MaxLengthRule(100, "long"),
		PatternRule(`^\d+$`, "digits"),
		CustomRule("custom"),
	}
	b, err := json.Marshal(rules)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw []map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if raw[3]["type"] != "maxLength" || raw[3]["value"] != float64(100) {
		t.Fatalf("maxLength wire: %v", raw[3])
	}
	if raw[4]["value"] != `^\d+$` {
		t.Fatalf("pattern wire: %v", raw[4])
	}
	if _, ok := raw[0]["value"]; ok {
		t.Fatalf("required should carry no value: %v", raw[0])
	}
	var back []ValidationRule
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(rules, back); diff != "" {
		t.Fatalf("rules changed (-want +got):\n%s", diff)
	}
}

func TestValidationRuleCheck(t *testing.T) {
	good := []ValidationRule{RequiredRule(""), MinLengthRule(0, "m"), PatternRule("a+", "p")}
	for _, r := range good {
		if err := r.Check(); err != nil {
			t.Fatalf("%v: %v", r.Kind, err)
		}
	}
	bad := []ValidationRule{
		{Kind: "luhn"},
		MaxLengthRule(-1, "neg"),
		PatternRule("", "empty"),
		PatternRule("(", "unbalanced"),
	}
	for _, r := range bad {
		if err := r.Check(); err == nil {
			t.Fatalf("%+v should be rejected", r)
		}
	}
}

func TestThemeUpdateForEveryKey(t *testing.T) {
	values := map[string]string{
		"primaryColor": "#000", "secondaryColor": "red", "accentColor": "#123456", "backgroundColor": "white",
		"fontFamily": "Georgia, serif", "fontSize.base": "15px", "fontSize.heading": "2rem",
		"fontSize.label": "12px", "borderRadius": "0", "spacing": "2rem",
	}
	for _, key := range ThemeKeys() {
		want, ok := values[key]
		if !ok {
			t.Fatalf("no test value for %q", key)
		}
		u, err := ThemeUpdateFor(key, want)
		if err != nil {
			t.Fatalf("%s: %v", key, err)
		}
		got, _ := DefaultTheme().Apply(u).Value(key)
		if got != want {
			t.Fatalf("%s: got %q want %q", key, got, want)
		}
	}
	if len(values) != len(ThemeKeys()) {
		t.Fatalf("ThemeKeys lists %d keys", len(ThemeKeys()))
	}
}

func TestThemeUpdateForRejects(t *testing.T) {
	if _, err := ThemeUpdateFor("fontWeight", "bold"); err == nil {
		t.Fatalf("unknown key accepted")
	}
	if _, err := ThemeUpdateFor("accentColor", "#zzz"); err == nil {
		t.Fatalf("bad color accepted")
	}
	if _, ok := DefaultTheme().Value("fontWeight"); ok {
		t.Fatalf("Value knows an unknown key")
	}
}
