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

import "github.com/rayyan-akhter/form-forge/internal/domain"

type Mode string

const (
	ModeEdit    Mode = "edit"
	ModePreview Mode = "preview"
)

func (m Mode) valid() bool { return m == ModeEdit || m == ModePreview }

// Panel is the side panel currently open. At most one is open at a time.
type Panel int

const (
	PanelNone Panel = iota
	PanelComponent
	PanelTheme
)

func (p Panel) String() string {
	switch p {
	case PanelComponent:
		return "component"
	case PanelTheme:
		return "theme"
	default:
		return "none"
	}
}

// State is the live document together with the transient editing state.
// Values returned by the store are copies and may be modified freely.
type State struct {
	Form         domain.FormData
	Mode         Mode
	SelectedID   string
	Dragging     bool
	ActiveDragID string
	Panel        Panel
}

func (s State) Clone() State {
	s.Form = s.Form.Clone()
	return s
}

// Selected returns the selected component, if any.
func (s State) Selected() (domain.Component, bool) {
	if s.SelectedID == "" {
		return domain.Component{}, false
	}
	return s.Form.Component(s.SelectedID)
}

func initialState(f domain.FormData) State {
	return State{Form: f, Mode: ModeEdit, Panel: PanelNone}
}
