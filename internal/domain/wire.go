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
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// componentRecord is the flat shape a component has in saved snapshots:
// the shared fields plus every variant attribute, each omitted when unset.
type componentRecord struct {
	ID                string           `json:"id"`
	Type              FieldType        `json:"type"`
	Label             string           `json:"label"`
	Placeholder       string           `json:"placeholder,omitempty"`
	Required          bool             `json:"required"`
	HelpText          string           `json:"helpText,omitempty"`
	Options           []Option         `json:"options,omitempty"`
	DefaultValue      json.RawMessage  `json:"defaultValue,omitempty"`
	Validation        []ValidationRule `json:"validation,omitempty"`
	Width             Width            `json:"width"`
	ImageURL          string           `json:"imageUrl,omitempty"`
	LinkURL           string           `json:"linkUrl,omitempty"`
	LinkText          string           `json:"linkText,omitempty"`
	Min               *float64         `json:"min,omitempty"`
	Max               *float64         `json:"max,omitempty"`
	Step              *float64         `json:"step,omitempty"`
	AcceptedFileTypes string           `json:"acceptedFileTypes,omitempty"`
	MaxFileSize       *float64         `json:"maxFileSize,omitempty"`
}

func (c Component) MarshalJSON() ([]byte, error) {
	rec := componentRecord{
		ID:       c.ID,
		Type:     c.Type,
		Label:    c.Label,
		Required: c.Required,
		HelpText: c.HelpText,
		Width:    c.Width,
	}
	if rec.Width == "" {
		rec.Width = WidthFull
	}
	var dv any
	switch p := c.Props.(type) {
	case InputProps:
		rec.Placeholder, rec.Validation = p.Placeholder, p.Validation
		if p.Default != "" {
			dv = p.Default
		}
	case NumberProps:
		rec.Placeholder, rec.Validation = p.Placeholder, p.Validation
		rec.Min, rec.Max, rec.Step = p.Min, p.Max, p.Step
		if p.Default != nil {
			dv = *p.Default
		}
	case ChoiceProps:
		rec.Placeholder, rec.Options, rec.Validation = p.Placeholder, p.Options, p.Validation
		switch {
		case len(p.Default) == 0:
		case c.Type != TypeCheckbox && len(p.Default) == 1:
			dv = p.Default[0]
		default:
			dv = p.Default
		}
	case FileProps:
		rec.AcceptedFileTypes = p.AcceptedFileTypes
		if p.MaxFileSize != 0 {
			rec.MaxFileSize = Ptr(p.MaxFileSize)
		}
	case RangeProps:
		rec.Min, rec.Max, rec.Step = p.Min, p.Max, p.Step
		if p.Default != nil {
			dv = *p.Default
		}
	case SwitchProps:
		dv = p.Default
	case ImageProps:
		rec.ImageURL = p.ImageURL
	case LinkProps:
		rec.LinkURL, rec.LinkText = p.LinkURL, p.LinkText
	}
	if dv != nil {
		b, err := json.Marshal(dv)
		if err != nil {
			return nil, err
		}
		rec.DefaultValue = b
	}
	return json.Marshal(rec)
}

// UnmarshalJSON is lenient: unknown type tags decode with StaticProps, a
// missing width becomes full and a default value of the wrong shape is dropped.
func (c *Component) UnmarshalJSON(b []byte) error {
	var rec componentRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return err
	}
	out := Component{
		ID:       rec.ID,
		Type:     rec.Type,
		Label:    rec.Label,
		Required: rec.Required,
		HelpText: rec.HelpText,
		Width:    rec.Width,
	}
	if !out.Width.Valid() {
		out.Width = WidthFull
	}
	dv := bytes.TrimSpace(rec.DefaultValue)
	if bytes.Equal(dv, []byte("null")) {
		dv = nil
	}
	switch p := PropsFor(rec.Type).(type) {
	case InputProps:
		p.Placeholder, p.Validation = rec.Placeholder, rec.Validation
		p.Default, _ = decodeString(dv)
		out.Props = p
	case NumberProps:
		p.Placeholder, p.Validation = rec.Placeholder, rec.Validation
		p.Min, p.Max, p.Step = rec.Min, rec.Max, rec.Step
		p.Default = decodeNumber(dv)
		out.Props = p
	case ChoiceProps:
		p.Placeholder, p.Options, p.Validation = rec.Placeholder, rec.Options, rec.Validation
		p.Default = decodeStrings(dv)
		out.Props = p
	case FileProps:
		p.AcceptedFileTypes = rec.AcceptedFileTypes
		if rec.MaxFileSize != nil {
			p.MaxFileSize = *rec.MaxFileSize
		}
		out.Props = p
	case RangeProps:
		p.Min, p.Max, p.Step = rec.Min, rec.Max, rec.Step
		p.Default = decodeNumber(dv)
		out.Props = p
	case SwitchProps:
		p.Default = decodeBool(dv)
		out.Props = p
	case ImageProps:
		p.ImageURL = rec.ImageURL
		out.Props = p
	case LinkProps:
		p.LinkURL, p.LinkText = rec.LinkURL, rec.LinkText
		out.Props = p
	default:
		out.Props = p
	}
	*c = out
	return nil
}

func decodeString(raw []byte) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	if raw[0] == '{' || raw[0] == '[' {
		return "", false
	}
	// numbers and booleans keep their literal text
	return string(raw), true
}

func decodeNumber(raw []byte) *float64 {
	if len(raw) == 0 {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	if s, ok := decodeString(raw); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return &f
		}
	}
	return nil
}

func decodeStrings(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	if s, ok := decodeString(raw); ok && s != "" {
		return []string{s}
	}
	return nil
}

func decodeBool(raw []byte) bool {
	if len(raw) == 0 {
		return false
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err == nil {
		return v
	}
	s, _ := decodeString(raw)
	v, _ = strconv.ParseBool(strings.TrimSpace(s))
	return v
}
