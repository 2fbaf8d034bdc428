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
)

// ComponentUpdate is a partial edit of one component. Nil fields are left as
// they are. Props must be the command matching the component's props variant;
// the type tag itself cannot be changed.
type ComponentUpdate struct {
	Label    *string
	Required *bool
	HelpText *string
	Width    *Width
	Props    PropsUpdate
}

// PropsUpdate is implemented by the variant commands below.
type PropsUpdate interface {
	apply(Props) (Props, bool)
	rules() *[]ValidationRule
}

type InputUpdate struct {
	Placeholder *string
	Default     *string
	Validation  *[]ValidationRule
}

type NumberUpdate struct {
	Placeholder *string
	Default     *float64
	Min         *float64
	Max         *float64
	Step        *float64
	Validation  *[]ValidationRule
}

type ChoiceUpdate struct {
	Placeholder *string
	Options     *[]Option
	Default     *[]string
	Validation  *[]ValidationRule
}

type FileUpdate struct {
	AcceptedFileTypes *string
	MaxFileSize       *float64
}

type RangeUpdate struct {
	Min     *float64
	Max     *float64
	Step    *float64
	Default *float64
}

type SwitchUpdate struct {
	Default *bool
}

type ImageUpdate struct {
	ImageURL *string
}

type LinkUpdate struct {
	LinkURL  *string
	LinkText *string
}

// SetsBase reports whether u changes any of the fields shared by all types.
func (u ComponentUpdate) SetsBase() bool {
	return u.Label != nil || u.Required != nil || u.HelpText != nil || u.Width != nil
}

// Validate rejects widths outside the enumeration, malformed rules and
// options with duplicate ids.
func (u ComponentUpdate) Validate() error {
	var errs []error
	if u.Width != nil && !u.Width.Valid() {
		errs = append(errs, fmt.Errorf("width %q", *u.Width))
	}
	if u.Props != nil {
		if rs := u.Props.rules(); rs != nil {
			for i, r := range *rs {
				if err := r.Check(); err != nil {
					errs = append(errs, fmt.Errorf("validation[%d]: %w", i, err))
				}
			}
		}
		if cu, ok := u.Props.(ChoiceUpdate); ok && cu.Options != nil {
			seen := make(map[string]bool, len(*cu.Options))
			for _, o := range *cu.Options {
				if seen[o.ID] {
					errs = append(errs, fmt.Errorf("duplicate option id %q", o.ID))
				}
				seen[o.ID] = true
			}
		}
	}
	return errors.Join(errs...)
}

// Apply returns a copy of c with u merged in. The bool is false when u.Props
// does not fit c's variant; the base fields are merged either way.
func (c Component) Apply(u ComponentUpdate) (Component, bool) {
	out := c.Clone()
	set(&out.Label, u.Label)
	set(&out.Required, u.Required)
	set(&out.HelpText, u.HelpText)
	set(&out.Width, u.Width)
	if u.Props == nil {
		return out, true
	}
	if out.Props == nil {
		out.Props = PropsFor(out.Type)
	}
	p, ok := u.Props.apply(out.Props)
	if ok {
		out.Props = p
	}
	return out, ok
}

func (u InputUpdate) apply(p Props) (Props, bool) {
	cur, ok := p.(InputProps)
	if !ok {
		return p, false
	}
	set(&cur.Placeholder, u.Placeholder)
	set(&cur.Default, u.Default)
	setRules(&cur.Validation, u.Validation)
	return cur, true
}

func (u NumberUpdate) apply(p Props) (Props, bool) {
	cur, ok := p.(NumberProps)
	if !ok {
		return p, false
	}
	set(&cur.Placeholder, u.Placeholder)
	setFloat(&cur.Default, u.Default)
	setFloat(&cur.Min, u.Min)
	setFloat(&cur.Max, u.Max)
	setFloat(&cur.Step, u.Step)
	setRules(&cur.Validation, u.Validation)
	return cur, true
}

func (u ChoiceUpdate) apply(p Props) (Props, bool) {
	cur, ok := p.(ChoiceProps)
	if !ok {
		return p, false
	}
	set(&cur.Placeholder, u.Placeholder)
	if u.Options != nil {
		cur.Options = append([]Option{}, (*u.Options)...)
	}
	if u.Default != nil {
		cur.Default = append([]string{}, (*u.Default)...)
	}
	setRules(&cur.Validation, u.Validation)
	return cur, true
}

func (u FileUpdate) apply(p Props) (Props, bool) {
	cur, ok := p.(FileProps)
	if !ok {
		return p, false
	}
	set(&cur.AcceptedFileTypes, u.AcceptedFileTypes)
	set(&cur.MaxFileSize, u.MaxFileSize)
	return cur, true
}

func (u RangeUpdate) apply(p Props) (Props, bool) {
	cur, ok := p.(RangeProps)
	if !ok {
		return p, false
	}
	setFloat(&cur.Min, u.Min)
	setFloat(&cur.Max, u.Max)
	setFloat(&cur.Step, u.Step)
	setFloat(&cur.Default, u.Default)
	return cur, true
}

func (u SwitchUpdate) apply(p Props) (Props, bool) {
	cur, ok := p.(SwitchProps)
	if !ok {
		return p, false
	}
	set(&cur.Default, u.Default)
	return cur, true
}

func (u ImageUpdate) apply(p Props) (Props, bool) {
	cur, ok := p.(ImageProps)
	if !ok {
		return p, false
	}
	set(&cur.ImageURL, u.ImageURL)
	return cur, true
}

func (u LinkUpdate) apply(p Props) (Props, bool) {
	cur, ok := p.(LinkProps)
	if !ok {
		return p, false
	}
	set(&cur.LinkURL, u.LinkURL)
	set(&cur.LinkText, u.LinkText)
	return cur, true
}

func (u InputUpdate) rules() *[]ValidationRule  { return u.Validation }
func (u NumberUpdate) rules() *[]ValidationRule { return u.Validation }
func (u ChoiceUpdate) rules() *[]ValidationRule { return u.Validation }
func (FileUpdate) rules() *[]ValidationRule     { return nil }
func (RangeUpdate) rules() *[]ValidationRule    { return nil }
func (SwitchUpdate) rules() *[]ValidationRule   { return nil }
func (ImageUpdate) rules() *[]ValidationRule    { return nil }
func (LinkUpdate) rules() *[]ValidationRule     { return nil }

func setFloat(dst **float64, v *float64) {
	if v != nil {
		*dst = cloneFloat(v)
	}
}

func setRules(dst *[]ValidationRule, v *[]ValidationRule) {
	if v != nil {
		*dst = append([]ValidationRule{}, (*v)...)
	}
}
