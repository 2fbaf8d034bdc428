/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package domain defines the form document model: the ordered list of typed
// components, the shared theme and the wire format used for saved snapshots.
package domain

import (
	"encoding/json"
	"time"
)

// FormData is one form document. Components order is display and tab order.
type FormData struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Components  []Component   `json:"components"`
	Theme       ThemeSettings `json:"theme"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

const (
	DefaultTitle       = "Untitled Form"
	DefaultDescription = "Form description"
)

// NewForm returns a blank document with the default theme.
func NewForm(id string, now time.Time) FormData {
	now = now.UTC()
	return FormData{
		ID:          id,
		Title:       DefaultTitle,
		Description: DefaultDescription,
		Components:  []Component{},
		Theme:       DefaultTheme(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Clone returns a deep copy; the result shares no slices with f.
func (f FormData) Clone() FormData {
	out := f
	out.Components = make([]Component, len(f.Components))
	for i, c := range f.Components {
		out.Components[i] = c.Clone()
	}
	return out
}

// Touch stamps UpdatedAt. The stamp never goes backwards and always moves
// forward by at least a nanosecond, so coarse or skewed clocks still order edits.
func (f *FormData) Touch(now time.Time) {
	now = now.UTC()
	if !now.After(f.UpdatedAt) {
		now = f.UpdatedAt.Add(time.Nanosecond)
	}
	f.UpdatedAt = now
}

// IndexOf returns the position of the component with id, or -1.
func (f FormData) IndexOf(id string) int {
	for i := range f.Components {
		if f.Components[i].ID == id {
			return i
		}
	}
	return -1
}

// Component returns the component with id.
func (f FormData) Component(id string) (Component, bool) {
	if i := f.IndexOf(id); i >= 0 {
		return f.Components[i], true
	}
	return Component{}, false
}

// DecodeForm parses a saved document. Missing theme attributes keep their
// defaults and a missing component list decodes as empty, so snapshots written
// by older versions stay readable.
func DecodeForm(b []byte) (FormData, error) {
	f := FormData{Theme: DefaultTheme()}
	if err := json.Unmarshal(b, &f); err != nil {
		return FormData{}, err
	}
	if f.Components == nil {
		f.Components = []Component{}
	}
	return f, nil
}

// Ptr returns a pointer to v. Handy for building update commands.
func Ptr[T any](v T) *T { return &v }
