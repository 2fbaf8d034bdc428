/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package ui holds the desktop editor (built with -tags fyne) and the
// display helpers it shares with the command line front end.
package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rayyan-akhter/form-forge/internal/domain"
)

// Summary describes c in one line: type, label, width and the settings that
// matter for its variant.
func Summary(c domain.Component) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-11s %q", c.Type, c.Label)
	if c.Required {
		b.WriteString(" *")
	}
	if c.Width != "" && c.Width != domain.WidthFull {
		fmt.Fprintf(&b, " [%s]", c.Width)
	}
	switch p := c.Props.(type) {
	case domain.InputProps:
		if p.Placeholder != "" {
			fmt.Fprintf(&b, " placeholder=%q", p.Placeholder)
		}
	case domain.NumberProps:
		if p.Min != nil || p.Max != nil {
			fmt.Fprintf(&b, " range=%s..%s", optNumber(p.Min), optNumber(p.Max))
		}
	case domain.ChoiceProps:
		labels := make([]string, 0, len(p.Options))
		for _, o := range p.Options {
			labels = append(labels, o.Label)
		}
		fmt.Fprintf(&b, " options=[%s]", strings.Join(labels, ", "))
	case domain.FileProps:
		fmt.Fprintf(&b, " accept=%q max=%sMB", p.AcceptedFileTypes, formatFloat(p.MaxFileSize))
	case domain.RangeProps:
		fmt.Fprintf(&b, " range=%s..%s", optNumber(p.Min), optNumber(p.Max))
	case domain.SwitchProps:
		fmt.Fprintf(&b, " default=%t", p.Default)
	case domain.ImageProps:
		fmt.Fprintf(&b, " src=%s", p.ImageURL)
	case domain.LinkProps:
		fmt.Fprintf(&b, " href=%s", p.LinkURL)
	}
	if n := len(c.Rules()); n > 0 {
		fmt.Fprintf(&b, " rules=%d", n)
	}
	return b.String()
}

// LastEdited formats a saved form's stamp for list views.
func LastEdited(t time.Time) string {
	if t.IsZero() {
		return "Last edited: unknown"
	}
	return "Last edited: " + t.Local().Format("Jan 2, 2006 15:04")
}

// FormatOptions renders options one per line as "label|value" for editing.
func FormatOptions(opts []domain.Option) string {
	lines := make([]string, 0, len(opts))
	for _, o := range opts {
		lines = append(lines, o.Label+"|"+o.Value)
	}
	return strings.Join(lines, "\n")
}

// ParseOptions reads the FormatOptions text back. Lines keep the id of the
// option at the same position; extra lines get fresh opt-N ids. A line
// without "|" uses its label as the value. Blank lines are skipped.
func ParseOptions(text string, existing []domain.Option) []domain.Option {
	used := make(map[string]bool, len(existing))
	for _, o := range existing {
		used[o.ID] = true
	}
	next := 1
	fresh := func() string {
		for {
			id := "opt-" + strconv.Itoa(next)
			next++
			if !used[id] {
				used[id] = true
				return id
			}
		}
	}
	out := []domain.Option{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		label, value, ok := strings.Cut(line, "|")
		label = strings.TrimSpace(label)
		value = strings.TrimSpace(value)
		if !ok {
			value = label
		}
		var id string
		if i := len(out); i < len(existing) {
			id = existing[i].ID
		} else {
			id = fresh()
		}
		out = append(out, domain.Option{ID: id, Label: label, Value: value})
	}
	return out
}

// ParseNumber reads an optional number field. Blank input yields nil.
func ParseNumber(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("not a number: %q", s)
	}
	return &v, nil
}

// cssPixels converts a CSS length to device-independent pixels with 1rem
// = 16px. Unparseable input yields def.
func cssPixels(s string, def float32) float32 {
	s = strings.ToLower(strings.TrimSpace(s))
	mul := 1.0
	switch {
	case strings.HasSuffix(s, "rem"):
		s, mul = strings.TrimSuffix(s, "rem"), 16
	case strings.HasSuffix(s, "em"):
		s, mul = strings.TrimSuffix(s, "em"), 16
	case strings.HasSuffix(s, "px"):
		s = strings.TrimSuffix(s, "px")
	case strings.HasSuffix(s, "pt"):
		s, mul = strings.TrimSuffix(s, "pt"), 4.0/3
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 {
		return def
	}
	return float32(v * mul)
}

func optNumber(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatFloat(*v)
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
