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

// FieldType is the wire-stable tag of a component kind.
type FieldType string

const (
	TypeShortText   FieldType = "shortText"
	TypeLongText    FieldType = "longText"
	TypeEmail       FieldType = "email"
	TypeNumber      FieldType = "number"
	TypeCheckbox    FieldType = "checkbox"
	TypeRadio       FieldType = "radio"
	TypeSelect      FieldType = "select"
	TypeDate        FieldType = "date"
	TypePhone       FieldType = "phone"
	TypeName        FieldType = "name"
	TypeAddress     FieldType = "address"
	TypeHeading     FieldType = "heading"
	TypeParagraph   FieldType = "paragraph"
	TypeDivider     FieldType = "divider"
	TypeFile        FieldType = "file"
	TypePayment     FieldType = "payment"
	TypeRating      FieldType = "rating"
	TypeSwitch      FieldType = "switch"
	TypeSlider      FieldType = "slider"
	TypeImage       FieldType = "image"
	TypeLink        FieldType = "link"
	TypeFileDisplay FieldType = "fileDisplay"
)

var fieldTypes = []FieldType{
	TypeShortText, TypeLongText, TypeEmail, TypeNumber, TypeCheckbox, TypeRadio,
	TypeSelect, TypeDate, TypePhone, TypeName, TypeAddress, TypeHeading,
	TypeParagraph, TypeDivider, TypeFile, TypePayment, TypeRating, TypeSwitch,
	TypeSlider, TypeImage, TypeLink, TypeFileDisplay,
}

// FieldTypes lists every known tag in enumeration order.
func FieldTypes() []FieldType { return append([]FieldType(nil), fieldTypes...) }

// Known reports whether t is part of the enumeration.
func (t FieldType) Known() bool {
	for _, k := range fieldTypes {
		if k == t {
			return true
		}
	}
	return false
}

// IsLayout reports whether t is a non-input layout element.
func (t FieldType) IsLayout() bool {
	switch t {
	case TypeHeading, TypeParagraph, TypeDivider, TypeImage, TypeLink, TypeFileDisplay:
		return true
	}
	return false
}

type Width string

const (
	WidthFull  Width = "full"
	WidthHalf  Width = "half"
	WidthThird Width = "third"
)

func (w Width) Valid() bool { return w == WidthFull || w == WidthHalf || w == WidthThird }

// Option is one choice of a checkbox, radio or select field.
// ID is unique within its owning component.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Component is one entry of a document: an input, a choice control or a
// layout element. Attributes shared by every kind live on the struct; the
// ones only some kinds have live in Props, whose concrete type is fixed by Type.
type Component struct {
	ID       string
	Type     FieldType
	Label    string
	Required bool
	HelpText string
	Width    Width
	Props    Props
}

// Clone returns a deep copy.
func (c Component) Clone() Component {
	if c.Props != nil {
		c.Props = c.Props.clone()
	}
	return c
}

// Placeholder returns the placeholder text for kinds that have one.
func (c Component) Placeholder() string {
	switch p := c.Props.(type) {
	case InputProps:
		return p.Placeholder
	case NumberProps:
		return p.Placeholder
	case ChoiceProps:
		return p.Placeholder
	}
	return ""
}

// Options returns the choices of a choice component, nil for other kinds.
func (c Component) Options() []Option {
	if p, ok := c.Props.(ChoiceProps); ok {
		return append([]Option(nil), p.Options...)
	}
	return nil
}

// Rules returns the declared validation rules, nil for kinds without rules.
func (c Component) Rules() []ValidationRule {
	switch p := c.Props.(type) {
	case InputProps:
		return cloneRules(p.Validation)
	case NumberProps:
		return cloneRules(p.Validation)
	case ChoiceProps:
		return cloneRules(p.Validation)
	}
	return nil
}

// Props holds the attributes specific to one family of field types.
// The set of implementations is closed; see PropsFor.
type Props interface {
	clone() Props
}

// InputProps: shortText, longText, email, phone, name, address, date.
type InputProps struct {
	Placeholder string
	Default     string
	Validation  []ValidationRule
}

// NumberProps: number.
type NumberProps struct {
	Placeholder string
	Default     *float64
	Min         *float64
	Max         *float64
	Step        *float64
	Validation  []ValidationRule
}

// ChoiceProps: checkbox, radio, select. Default holds option values; radio
// and select use at most one.
type ChoiceProps struct {
	Placeholder string
	Options     []Option
	Default     []string
	Validation  []ValidationRule
}

// FileProps: file. MaxFileSize is in megabytes.
type FileProps struct {
	AcceptedFileTypes string
	MaxFileSize       float64
}

// RangeProps: rating, slider.
type RangeProps struct {
	Min     *float64
	Max     *float64
	Step    *float64
	Default *float64
}

// SwitchProps: switch.
type SwitchProps struct {
	Default bool
}

// ImageProps: image.
type ImageProps struct {
	ImageURL string
}

// LinkProps: link.
type LinkProps struct {
	LinkURL  string
	LinkText string
}

// StaticProps: heading, paragraph, divider, payment, fileDisplay and unknown tags.
type StaticProps struct{}

func (p InputProps) clone() Props {
	p.Validation = cloneRules(p.Validation)
	return p
}

func (p NumberProps) clone() Props {
	p.Default, p.Min, p.Max, p.Step = cloneFloat(p.Default), cloneFloat(p.Min), cloneFloat(p.Max), cloneFloat(p.Step)
	p.Validation = cloneRules(p.Validation)
	return p
}

func (p ChoiceProps) clone() Props {
	if p.Options != nil {
		p.Options = append([]Option(nil), p.Options...)
	}
	if p.Default != nil {
		p.Default = append([]string(nil), p.Default...)
	}
	p.Validation = cloneRules(p.Validation)
	return p
}

func (p FileProps) clone() Props { return p }

func (p RangeProps) clone() Props {
	p.Min, p.Max, p.Step, p.Default = cloneFloat(p.Min), cloneFloat(p.Max), cloneFloat(p.Step), cloneFloat(p.Default)
	return p
}

func (p SwitchProps) clone() Props { return p }
func (p ImageProps) clone() Props  { return p }
func (p LinkProps) clone() Props   { return p }
func (p StaticProps) clone() Props { return p }

// PropsFor returns empty props of the variant that belongs to t.
func PropsFor(t FieldType) Props {
	switch t {
	case TypeShortText, TypeLongText, TypeEmail, TypePhone, TypeName, TypeAddress, TypeDate:
		return InputProps{}
	case TypeNumber:
		return NumberProps{}
	case TypeCheckbox, TypeRadio, TypeSelect:
		return ChoiceProps{}
	case TypeFile:
		return FileProps{}
	case TypeRating, TypeSlider:
		return RangeProps{}
	case TypeSwitch:
		return SwitchProps{}
	case TypeImage:
		return ImageProps{}
	case TypeLink:
		return LinkProps{}
	default:
		return StaticProps{}
	}
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
