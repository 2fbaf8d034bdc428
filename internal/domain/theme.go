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
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ThemeSettings is the visual theme shared by every component of a document.
// Colors are CSS colors (#rgb, #rrggbb or a CSS color name); sizes are CSS length tokens.
type ThemeSettings struct {
	PrimaryColor    string    `json:"primaryColor"`
	SecondaryColor  string    `json:"secondaryColor"`
	AccentColor     string    `json:"accentColor"`
	BackgroundColor string    `json:"backgroundColor"`
	FontFamily      string    `json:"fontFamily"`
	FontSize        FontSizes `json:"fontSize"`
	BorderRadius    string    `json:"borderRadius"`
	Spacing         string    `json:"spacing"`
}

type FontSizes struct {
	Base    string `json:"base"`
	Heading string `json:"heading"`
	Label   string `json:"label"`
}

// DefaultTheme returns the theme of a new document.
func DefaultTheme() ThemeSettings {
	return ThemeSettings{
		PrimaryColor:    "#6366f1", // indigo
		SecondaryColor:  "#a855f7", // purple
		AccentColor:     "#ec4899", // pink
		BackgroundColor: "#ffffff",
		FontFamily:      "Inter, sans-serif",
		FontSize:        FontSizes{Base: "1rem", Heading: "1.5rem", Label: "0.875rem"},
		BorderRadius:    "0.5rem",
		Spacing:         "1rem",
	}
}

// ThemeUpdate is a partial theme. Nil fields are left untouched; FontSize is
// merged field by field.
type ThemeUpdate struct {
	PrimaryColor    *string
	SecondaryColor  *string
	AccentColor     *string
	BackgroundColor *string
	FontFamily      *string
	FontSize        *FontSizeUpdate
	BorderRadius    *string
	Spacing         *string
}

type FontSizeUpdate struct {
	Base    *string
	Heading *string
	Label   *string
}

// Apply merges u into t and returns the result.
func (t ThemeSettings) Apply(u ThemeUpdate) ThemeSettings {
	set(&t.PrimaryColor, u.PrimaryColor)
	set(&t.SecondaryColor, u.SecondaryColor)
	set(&t.AccentColor, u.AccentColor)
	set(&t.BackgroundColor, u.BackgroundColor)
	set(&t.FontFamily, u.FontFamily)
	set(&t.BorderRadius, u.BorderRadius)
	set(&t.Spacing, u.Spacing)
	if fs := u.FontSize; fs != nil {
		set(&t.FontSize.Base, fs.Base)
		set(&t.FontSize.Heading, fs.Heading)
		set(&t.FontSize.Label, fs.Label)
	}
	return t
}

// Validate rejects updates carrying colors ParseColor cannot read.
func (u ThemeUpdate) Validate() error {
	var errs []error
	for name, v := range map[string]*string{
		"primaryColor":    u.PrimaryColor,
		"secondaryColor":  u.SecondaryColor,
		"accentColor":     u.AccentColor,
		"backgroundColor": u.BackgroundColor,
	} {
		if v == nil {
			continue
		}
		if _, err := ParseColor(*v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// IsZero reports whether u would change nothing.
func (u ThemeUpdate) IsZero() bool {
	fsZero := u.FontSize == nil || (u.FontSize.Base == nil && u.FontSize.Heading == nil && u.FontSize.Label == nil)
	return u.PrimaryColor == nil && u.SecondaryColor == nil && u.AccentColor == nil &&
		u.BackgroundColor == nil && u.FontFamily == nil && u.BorderRadius == nil &&
		u.Spacing == nil && fsZero
}

var themeKeys = []string{
	"primaryColor", "secondaryColor", "accentColor", "backgroundColor", "fontFamily",
	"fontSize.base", "fontSize.heading", "fontSize.label", "borderRadius", "spacing",
}

// ThemeKeys lists the dotted keys accepted by ThemeUpdateFor, in settings
// panel order.
func ThemeKeys() []string { return append([]string(nil), themeKeys...) }

// ThemeUpdateFor builds the single-field update for a dotted key such as
// "fontSize.heading". The result is validated.
func ThemeUpdateFor(key, value string) (ThemeUpdate, error) {
	var u ThemeUpdate
	v := &value
	switch key {
	case "primaryColor":
		u.PrimaryColor = v
	case "secondaryColor":
		u.SecondaryColor = v
	case "accentColor":
		u.AccentColor = v
	case "backgroundColor":
		u.BackgroundColor = v
	case "fontFamily":
		u.FontFamily = v
	case "fontSize.base":
		u.FontSize = &FontSizeUpdate{Base: v}
	case "fontSize.heading":
		u.FontSize = &FontSizeUpdate{Heading: v}
	case "fontSize.label":
		u.FontSize = &FontSizeUpdate{Label: v}
	case "borderRadius":
		u.BorderRadius = v
	case "spacing":
		u.Spacing = v
	default:
		return ThemeUpdate{}, fmt.Errorf("unknown theme key %q", key)
	}
	if err := u.Validate(); err != nil {
		return ThemeUpdate{}, err
	}
	return u, nil
}

// Value returns the setting stored under a ThemeKeys key.
func (t ThemeSettings) Value(key string) (string, bool) {
	switch key {
	case "primaryColor":
		return t.PrimaryColor, true
	case "secondaryColor":
		return t.SecondaryColor, true
	case "accentColor":
		return t.AccentColor, true
	case "backgroundColor":
		return t.BackgroundColor, true
	case "fontFamily":
		return t.FontFamily, true
	case "fontSize.base":
		return t.FontSize.Base, true
	case "fontSize.heading":
		return t.FontSize.Heading, true
	case "fontSize.label":
		return t.FontSize.Label, true
	case "borderRadius":
		return t.BorderRadius, true
	case "spacing":
		return t.Spacing, true
	}
	return "", false
}

// ParseColor reads #rgb, #rrggbb, #rrggbbaa or a CSS color name.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return color.RGBA{}, errors.New("empty color")
	}
	if !strings.HasPrefix(s, "#") {
		if c, ok := colornames.Map[s]; ok {
			return c, nil
		}
		return color.RGBA{}, fmt.Errorf("unknown color name %q", s)
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("malformed color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("malformed color %q", s)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
