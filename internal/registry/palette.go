/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package registry

import "github.com/rayyan-akhter/form-forge/internal/domain"

// Item is one button of the component palette.
type Item struct {
	Type  domain.FieldType
	Label string
}

// Category is a titled group of palette items.
type Category struct {
	Name  string
	Items []Item
}

// Palette returns the palette groups in display order. Palette labels are
// shorter than DefaultLabel in a few places (Checkbox vs Checkbox Group).
func Palette() []Category {
	return []Category{
		{Name: "Basic", Items: []Item{
			{domain.TypeShortText, "Short Text"},
			{domain.TypeLongText, "Long Text"},
			{domain.TypeEmail, "Email"},
			{domain.TypeNumber, "Number"},
			{domain.TypeCheckbox, "Checkbox"},
			{domain.TypeRadio, "Radio"},
			{domain.TypeSelect, "Dropdown"},
			{domain.TypeDate, "Date"},
		}},
		{Name: "Advanced", Items: []Item{
			{domain.TypePhone, "Phone"},
			{domain.TypeName, "Name"},
			{domain.TypeAddress, "Address"},
			{domain.TypeFile, "File Upload"},
			{domain.TypePayment, "Payment"},
			{domain.TypeRating, "Rating"},
			{domain.TypeSwitch, "Switch"},
			{domain.TypeSlider, "Slider"},
		}},
		{Name: "Layout", Items: []Item{
			{domain.TypeHeading, "Heading"},
			{domain.TypeParagraph, "Paragraph"},
			{domain.TypeDivider, "Divider"},
			{domain.TypeImage, "Image"},
			{domain.TypeLink, "Link"},
			{domain.TypeFileDisplay, "File Display"},
		}},
	}
}
