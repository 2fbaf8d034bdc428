/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package registry is the catalog of field types: the label and template a
// new component of each type starts from, and how the palette groups them.
package registry

import (
	"fmt"

	"github.com/rayyan-akhter/form-forge/internal/domain"
)

// FallbackLabel is used for type tags the catalog does not know.
const FallbackLabel = "Question"

const (
	// placeholder targets for the image and link layout elements
	PlaceholderImageURL = "https://via.placeholder.com/400x200"
	PlaceholderLinkURL  = "https://example.com"
)

var labels = map[domain.FieldType]string{
	domain.TypeShortText:   "Short Text",
	domain.TypeLongText:    "Long Text",
	domain.TypeEmail:       "Email",
	domain.TypeNumber:      "Number",
	domain.TypeCheckbox:    "Checkbox Group",
	domain.TypeRadio:       "Radio Group",
	domain.TypeSelect:      "Dropdown",
	domain.TypeDate:        "Date",
	domain.TypePhone:       "Phone Number",
	domain.TypeName:        "Name",
	domain.TypeAddress:     "Address",
	domain.TypeFile:        "File Upload",
	domain.TypePayment:     "Payment",
	domain.TypeRating:      "Rating",
	domain.TypeSwitch:      "Switch",
	domain.TypeSlider:      "Slider",
	domain.TypeImage:       "Image",
	domain.TypeLink:        "Link",
	domain.TypeFileDisplay: "File Display",
	domain.TypeHeading:     "Heading",
	domain.TypeParagraph:   "Paragraph",
	domain.TypeDivider:     "Divider",
}

// DefaultLabel returns the human readable name of t.
func DefaultLabel(t domain.FieldType) string {
	if l, ok := labels[t]; ok {
		return l
	}
	return FallbackLabel
}

// Known reports whether the catalog has an entry for t.
func Known(t domain.FieldType) bool {
	_, ok := labels[t]
	return ok
}

// Types lists the cataloged types in palette order.
func Types() []domain.FieldType {
	var out []domain.FieldType
	for _, c := range Palette() {
		for _, it := range c.Items {
			out = append(out, it.Type)
		}
	}
	return out
}

// Template returns the attributes a new component of type t starts with.
// The id is left empty. Every call builds fresh slices, so callers may keep
// and mutate the result. Unknown tags get a generic question with no props.
func Template(t domain.FieldType) domain.Component {
	c := domain.Component{
		Type:     t,
		Label:    DefaultLabel(t),
		Required: false,
		Width:    domain.WidthFull,
		Props:    domain.PropsFor(t),
	}
	switch t {
	case domain.TypeShortText:
		c.Props = domain.InputProps{
			Placeholder: "Enter your answer",
			Validation:  []domain.ValidationRule{domain.MaxLengthRule(100, "Maximum 100 characters allowed")},
		}
	case domain.TypeLongText:
		c.Props = domain.InputProps{Placeholder: "Enter your answer"}
	case domain.TypeEmail:
		c.Props = domain.InputProps{
			Placeholder: "Enter your email",
			Validation:  []domain.ValidationRule{domain.EmailRule("Please enter a valid email address")},
		}
	case domain.TypeNumber:
		c.Props = domain.NumberProps{Placeholder: "Enter a number"}
	case domain.TypeCheckbox, domain.TypeRadio:
		c.Props = domain.ChoiceProps{Options: defaultOptions()}
	case domain.TypeSelect:
		c.Props = domain.ChoiceProps{Placeholder: "Select an option", Options: defaultOptions()}
	case domain.TypeDate:
		c.Props = domain.InputProps{Placeholder: "Select a date"}
	case domain.TypePhone:
		c.Props = domain.InputProps{Placeholder: "Enter phone number"}
	case domain.TypeName:
		c.Props = domain.InputProps{Placeholder: "Enter your name"}
	case domain.TypeAddress:
		c.Props = domain.InputProps{Placeholder: "Enter your address"}
	case domain.TypeFile:
		c.Props = domain.FileProps{AcceptedFileTypes: ".pdf,.docx,.jpg,.png", MaxFileSize: 5}
	case domain.TypeRating:
		c.Label = "Rate your experience"
		c.Props = domain.RangeProps{Max: domain.Ptr(5.0)}
	case domain.TypeSwitch:
		c.Label = "Toggle Option"
		c.Props = domain.SwitchProps{Default: false}
	case domain.TypeSlider:
		c.Props = domain.RangeProps{
			Min:     domain.Ptr(0.0),
			Max:     domain.Ptr(100.0),
			Step:    domain.Ptr(1.0),
			Default: domain.Ptr(50.0),
		}
	case domain.TypeImage:
		c.Props = domain.ImageProps{ImageURL: PlaceholderImageURL}
	case domain.TypeLink:
		c.Props = domain.LinkProps{LinkURL: PlaceholderLinkURL, LinkText: "Click here"}
	case domain.TypeHeading:
		c.Label = "Heading Text"
	case domain.TypeParagraph:
		c.Label = "Paragraph Text"
	case domain.TypeDivider:
		c.Label = ""
	}
	return c
}

// Option ids only need to be unique within their component, so a fixed
// sequence keeps templates deterministic.
func defaultOptions() []domain.Option {
	out := make([]domain.Option, 3)
	for i := range out {
		n := i + 1
		out[i] = domain.Option{
			ID:    fmt.Sprintf("opt-%d", n),
			Label: fmt.Sprintf("Option %d", n),
			Value: fmt.Sprintf("option%d", n),
		}
	}
	return out
}
