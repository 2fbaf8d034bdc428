/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package export renders a form document to printable formats.
package export

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/rayyan-akhter/form-forge/internal/domain"
	"github.com/rayyan-akhter/form-forge/internal/version"
)

// PDFOptions controls PDF export. Units are points.
type PDFOptions struct {
	PageSize string  // "A4" (default), "Letter" or any size gofpdf knows
	Margin   float64 // default 48
	Author   string
	// TypeTags prints each component's type tag next to its label.
	TypeTags bool
}

const (
	gridColumns = 6
	gutter      = 12.0
	fieldHeight = 22.0
	areaHeight  = 64.0
	fontFamily  = "Helvetica"
)

// ExportFormPDF writes a printable preview of f to outPath, creating the
// directory if needed.
func ExportFormPDF(f domain.FormData, outPath string, opt PDFOptions) error {
	if strings.TrimSpace(outPath) == "" {
		return fmt.Errorf("output path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	pdf := build(f, opt)
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// WriteFormPDF is ExportFormPDF for an arbitrary writer.
func WriteFormPDF(w io.Writer, f domain.FormData, opt PDFOptions) error {
	pdf := build(f, opt)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

type renderer struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string

	primary, accent, text, muted, border color.RGBA

	base, heading, label float64
	gap                  float64
	typeTags             bool
}

func build(f domain.FormData, opt PDFOptions) *gofpdf.Fpdf {
	size := opt.PageSize
	if size == "" {
		size = "A4"
	}
	margin := opt.Margin
	if margin <= 0 {
		margin = 48
	}
	pdf := gofpdf.New("P", "pt", size, "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetTitle(f.Title, true)
	author := opt.Author
	if author == "" {
		author = "Form Forge"
	}
	pdf.SetAuthor(author, true)
	pdf.SetCreator("formforge "+version.String(), true)
	pdf.AliasNbPages("")

	def := domain.DefaultTheme()
	r := &renderer{
		pdf:      pdf,
		tr:       pdf.UnicodeTranslatorFromDescriptor(""),
		primary:  themeColor(f.Theme.PrimaryColor, def.PrimaryColor),
		accent:   themeColor(f.Theme.AccentColor, def.AccentColor),
		text:     color.RGBA{R: 17, G: 24, B: 39, A: 255},
		muted:    color.RGBA{R: 107, G: 114, B: 128, A: 255},
		border:   color.RGBA{R: 209, G: 213, B: 219, A: 255},
		base:     cssPoints(f.Theme.FontSize.Base, 12),
		heading:  cssPoints(f.Theme.FontSize.Heading, 18),
		label:    cssPoints(f.Theme.FontSize.Label, 10.5),
		gap:      cssPoints(f.Theme.Spacing, 12),
		typeTags: opt.TypeTags,
	}
	pdf.SetFooterFunc(func() {
		pdf.SetY(-margin / 2)
		pdf.SetFont(fontFamily, "", 8)
		setText(pdf, r.muted)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()
	r.document(f)
	return pdf
}

func (r *renderer) document(f domain.FormData) {
	pdf := r.pdf
	left, top, right, _ := pdf.GetMargins()
	pageW, pageH := pdf.GetPageSize()
	width := pageW - left - right
	bottom := pageH - top

	y := top
	y += r.paragraph(left, y, width, r.heading*1.3, "B", r.primary, f.Title, true)
	if f.Description != "" {
		y += 4
		y += r.paragraph(left, y, width, r.base, "", r.muted, f.Description, true)
	}
	y += r.gap / 2
	setDraw(pdf, r.primary)
	pdf.SetLineWidth(1)
	pdf.Line(left, y, left+width, y)
	y += r.gap

	for _, row := range rows(f.Components) {
		h := 0.0
		for _, cell := range row {
			if bh := r.block(cell.c, 0, 0, cell.w(width), false); bh > h {
				h = bh
			}
		}
		if y+h > bottom && y > top {
			pdf.AddPage()
			y = top
		}
		x := left
		for _, cell := range row {
			w := cell.w(width)
			r.block(cell.c, x, y, w, true)
			x += w + gutter
		}
		y += h + r.gap
	}
}

type cell struct {
	c    domain.Component
	span int
}

func (c cell) w(total float64) float64 {
	unit := (total - gutter*(gridColumns-1)) / gridColumns
	return unit*float64(c.span) + gutter*float64(c.span-1)
}

func span(w domain.Width) int {
	switch w {
	case domain.WidthHalf:
		return 3
	case domain.WidthThird:
		return 2
	}
	return gridColumns
}

// rows packs components left to right; a component that does not fit the
// remaining columns starts a new row.
func rows(cs []domain.Component) [][]cell {
	var out [][]cell
	var cur []cell
	used := 0
	for _, c := range cs {
		s := span(c.Width)
		if used+s > gridColumns && len(cur) > 0 {
			out = append(out, cur)
			cur, used = nil, 0
		}
		cur = append(cur, cell{c: c, span: s})
		used += s
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// block lays out one component at (x, y) and returns its height. With draw
// false nothing is painted, so the same code measures and renders.
func (r *renderer) block(c domain.Component, x, y, w float64, draw bool) float64 {
	pdf := r.pdf
	h := 0.0
	switch c.Type {
	case domain.TypeHeading:
		return r.paragraph(x, y, w, r.heading, "B", r.primary, c.Label, draw)
	case domain.TypeParagraph:
		return r.paragraph(x, y, w, r.base, "", r.text, c.Label, draw)
	case domain.TypeDivider:
		if draw {
			setDraw(pdf, r.border)
			pdf.SetLineWidth(0.75)
			pdf.Line(x, y+r.gap/2, x+w, y+r.gap/2)
		}
		return r.gap
	}

	h += r.labelLine(c, x, y+h, w, draw)
	h += 4
	switch p := c.Props.(type) {
	case domain.ChoiceProps:
		if c.Type == domain.TypeSelect {
			text := p.Placeholder
			for _, o := range p.Options {
				if len(p.Default) > 0 && o.Value == p.Default[0] {
					text = o.Label
				}
			}
			h += r.box(x, y+h, w, fieldHeight, text, "v", draw)
			if len(p.Options) > 0 {
				labels := make([]string, 0, len(p.Options))
				for _, o := range p.Options {
					labels = append(labels, o.Label)
				}
				h += 2
				h += r.paragraph(x, y+h, w, r.label*0.9, "I", r.muted, "Options: "+strings.Join(labels, ", "), draw)
			}
			break
		}
		h += r.choices(c.Type, p, x, y+h, w, draw)
	case domain.FileProps:
		hint := "Drop a file here"
		var parts []string
		if p.AcceptedFileTypes != "" {
			parts = append(parts, "Accepted: "+p.AcceptedFileTypes)
		}
		if p.MaxFileSize > 0 {
			parts = append(parts, "Max "+formatNumber(p.MaxFileSize)+" MB")
		}
		if len(parts) > 0 {
			hint += " (" + strings.Join(parts, ", ") + ")"
		}
		if draw {
			pdf.SetDashPattern([]float64{3, 2}, 0)
		}
		h += r.box(x, y+h, w, areaHeight*0.75, hint, "", draw)
		if draw {
			pdf.SetDashPattern([]float64{}, 0)
		}
	case domain.RangeProps:
		if c.Type == domain.TypeRating {
			h += r.rating(p, x, y+h, w, draw)
		} else {
			h += r.slider(p, x, y+h, w, draw)
		}
	case domain.SwitchProps:
		h += r.toggle(p.Default, x, y+h, draw)
	case domain.ImageProps:
		h += r.box(x, y+h, w, areaHeight, "Image: "+p.ImageURL, "", draw)
	case domain.LinkProps:
		h += r.link(p, x, y+h, w, draw)
	case domain.NumberProps:
		text := p.Placeholder
		if p.Default != nil {
			text = formatNumber(*p.Default)
		}
		var bounds []string
		if p.Min != nil {
			bounds = append(bounds, "min "+formatNumber(*p.Min))
		}
		if p.Max != nil {
			bounds = append(bounds, "max "+formatNumber(*p.Max))
		}
		h += r.box(x, y+h, w, fieldHeight, text, strings.Join(bounds, " / "), draw)
	case domain.InputProps:
		h += r.inputs(c.Type, p, x, y+h, w, draw)
	default:
		h += r.paragraph(x, y+h, w, r.label, "I", r.muted, "Unsupported component type: "+string(c.Type), draw)
	}
	if c.HelpText != "" {
		h += 3
		h += r.paragraph(x, y+h, w, r.label*0.9, "", r.muted, c.HelpText, draw)
	}
	return h
}

func (r *renderer) labelLine(c domain.Component, x, y, w float64, draw bool) float64 {
	pdf := r.pdf
	label := c.Label
	if r.typeTags {
		label += " [" + string(c.Type) + "]"
	}
	if !c.Required {
		return r.paragraph(x, y, w, r.label, "B", r.text, label, draw)
	}
	pdf.SetFont(fontFamily, "B", r.label)
	star := pdf.GetStringWidth(" *")
	h := r.paragraph(x, y, w-star, r.label, "B", r.text, label, draw)
	if draw {
		lines := pdf.SplitLines([]byte(r.tr(label)), w-star)
		last := ""
		if len(lines) > 0 {
			last = string(lines[len(lines)-1])
		}
		lh := r.label * 1.25
		pdf.SetXY(x+pdf.GetStringWidth(last), y+h-lh)
		setText(pdf, r.accent)
		pdf.CellFormat(star, lh, " *", "", 0, "L", false, 0, "")
	}
	return h
}

// paragraph wraps s to width w and returns the height used.
func (r *renderer) paragraph(x, y, w, size float64, style string, col color.RGBA, s string, draw bool) float64 {
	pdf := r.pdf
	pdf.SetFont(fontFamily, style, size)
	lh := size * 1.25
	txt := r.tr(s)
	n := len(pdf.SplitLines([]byte(txt), w))
	if n == 0 {
		n = 1
	}
	if draw {
		setText(pdf, col)
		pdf.SetXY(x, y)
		pdf.MultiCell(w, lh, txt, "", "L", false)
	}
	return float64(n) * lh
}

// box draws an input outline with muted placeholder text and an optional
// right-aligned hint.
func (r *renderer) box(x, y, w, h float64, placeholder, hint string, draw bool) float64 {
	if !draw {
		return h
	}
	pdf := r.pdf
	setDraw(pdf, r.border)
	pdf.SetLineWidth(0.75)
	pdf.Rect(x, y, w, h, "D")
	pdf.SetFont(fontFamily, "", r.label)
	setText(pdf, r.muted)
	pad := 6.0
	if hint != "" {
		hw := pdf.GetStringWidth(r.tr(hint)) + pad
		pdf.SetXY(x+w-hw-pad/2, y)
		pdf.CellFormat(hw, fieldHeight, r.tr(hint), "", 0, "R", false, 0, "")
	}
	if placeholder != "" {
		pdf.SetXY(x+pad, y)
		pdf.CellFormat(w-2*pad, fieldHeight, r.tr(fit(pdf, placeholder, w-2*pad, r.tr)), "", 0, "L", false, 0, "")
	}
	return h
}

func (r *renderer) inputs(t domain.FieldType, p domain.InputProps, x, y, w float64, draw bool) float64 {
	text := p.Placeholder
	if p.Default != "" {
		text = p.Default
	}
	switch t {
	case domain.TypeLongText:
		return r.box(x, y, w, areaHeight, text, "", draw)
	case domain.TypeDate:
		if text == "" {
			text = "Pick a date"
		}
		return r.box(x, y, w, fieldHeight, text, "date", draw)
	case domain.TypeAddress:
		half := (w - gutter/2) / 2
		h := 0.0
		h += r.box(x, y+h, w, fieldHeight, "Street Address", "", draw) + 4
		h += r.box(x, y+h, w, fieldHeight, "Street Address Line 2", "", draw) + 4
		r.box(x, y+h, half, fieldHeight, "City", "", draw)
		h += r.box(x+half+gutter/2, y+h, half, fieldHeight, "State / Province", "", draw) + 4
		r.box(x, y+h, half, fieldHeight, "Postal / Zip Code", "", draw)
		h += r.box(x+half+gutter/2, y+h, half, fieldHeight, "Country", "v", draw)
		return h
	}
	return r.box(x, y, w, fieldHeight, text, "", draw)
}

func (r *renderer) choices(t domain.FieldType, p domain.ChoiceProps, x, y, w float64, draw bool) float64 {
	pdf := r.pdf
	selected := make(map[string]bool, len(p.Default))
	for _, v := range p.Default {
		selected[v] = true
	}
	const mark = 9.0
	lh := r.base * 1.4
	h := 0.0
	for _, o := range p.Options {
		cy := y + h + lh/2
		if draw {
			setDraw(pdf, r.border)
			pdf.SetLineWidth(0.75)
			setFill(pdf, r.primary)
			style := "D"
			if selected[o.Value] {
				style = "FD"
			}
			if t == domain.TypeRadio {
				pdf.Circle(x+mark/2, cy, mark/2, style)
			} else {
				pdf.Rect(x, cy-mark/2, mark, mark, style)
			}
		}
		h += r.paragraph(x+mark+6, y+h+(lh-r.base*1.25)/2, w-mark-6, r.base, "", r.text, o.Label, draw)
		h += lh - r.base*1.25
	}
	if len(p.Options) == 0 {
		h += r.paragraph(x, y, w, r.label, "I", r.muted, "No options", draw)
	}
	return h
}

func (r *renderer) rating(p domain.RangeProps, x, y, w float64, draw bool) float64 {
	n := 5
	if p.Max != nil && *p.Max >= 1 && *p.Max <= 20 {
		n = int(*p.Max)
	}
	const size = 18.0
	if !draw {
		return size
	}
	pdf := r.pdf
	pdf.SetFont(fontFamily, "", r.label)
	for i := 0; i < n; i++ {
		cx := x + float64(i)*(size+4)
		if cx+size > x+w {
			break
		}
		setDraw(pdf, r.primary)
		pdf.SetLineWidth(0.75)
		pdf.Rect(cx, y, size, size, "D")
		setText(pdf, r.primary)
		pdf.SetXY(cx, y)
		pdf.CellFormat(size, size, strconv.Itoa(i+1), "", 0, "C", false, 0, "")
	}
	return size
}

func (r *renderer) slider(p domain.RangeProps, x, y, w float64, draw bool) float64 {
	lo, hi := 0.0, 100.0
	if p.Min != nil {
		lo = *p.Min
	}
	if p.Max != nil {
		hi = *p.Max
	}
	val := lo
	if p.Default != nil {
		val = *p.Default
	}
	const h = 26.0
	if !draw {
		return h
	}
	pdf := r.pdf
	frac := 0.0
	if hi > lo {
		frac = (val - lo) / (hi - lo)
	}
	frac = min(max(frac, 0), 1)
	track := y + 6
	setDraw(pdf, r.border)
	pdf.SetLineWidth(3)
	pdf.Line(x, track, x+w, track)
	setDraw(pdf, r.primary)
	pdf.Line(x, track, x+w*frac, track)
	setFill(pdf, r.primary)
	pdf.Circle(x+w*frac, track, 5, "F")

	pdf.SetFont(fontFamily, "", r.label*0.9)
	setText(pdf, r.muted)
	pdf.SetXY(x, track+6)
	pdf.CellFormat(w/3, 12, formatNumber(lo), "", 0, "L", false, 0, "")
	pdf.SetXY(x+w/3, track+6)
	pdf.CellFormat(w/3, 12, formatNumber(val), "", 0, "C", false, 0, "")
	pdf.SetXY(x+2*w/3, track+6)
	pdf.CellFormat(w/3, 12, formatNumber(hi), "", 0, "R", false, 0, "")
	return h
}

func (r *renderer) toggle(on bool, x, y float64, draw bool) float64 {
	const tw, th = 28.0, 14.0
	if !draw {
		return th
	}
	pdf := r.pdf
	track := r.border
	knob := x + th/2
	state := "Off"
	if on {
		track, knob, state = r.primary, x+tw-th/2, "On"
	}
	setFill(pdf, track)
	pdf.Rect(x+th/2, y, tw-th, th, "F")
	pdf.Circle(x+th/2, y+th/2, th/2, "F")
	pdf.Circle(x+tw-th/2, y+th/2, th/2, "F")
	pdf.SetFillColor(255, 255, 255)
	pdf.Circle(knob, y+th/2, th/2-2, "F")
	pdf.SetFont(fontFamily, "", r.label)
	setText(pdf, r.muted)
	pdf.SetXY(x+tw+6, y)
	pdf.CellFormat(40, th, state, "", 0, "L", false, 0, "")
	return th
}

func (r *renderer) link(p domain.LinkProps, x, y, w float64, draw bool) float64 {
	text := p.LinkText
	if text == "" {
		text = p.LinkURL
	}
	h := r.paragraph(x, y, w, r.base, "U", r.primary, text, draw)
	if draw && p.LinkURL != "" {
		r.pdf.SetFont(fontFamily, "U", r.base)
		tw := min(r.pdf.GetStringWidth(r.tr(text)), w)
		r.pdf.LinkString(x, y, tw, h, p.LinkURL)
	}
	return h
}

// fit shortens s with an ellipsis until it fits w at the current font.
func fit(pdf *gofpdf.Fpdf, s string, w float64, tr func(string) string) string {
	if pdf.GetStringWidth(tr(s)) <= w {
		return s
	}
	rs := []rune(s)
	for len(rs) > 0 && pdf.GetStringWidth(tr(string(rs)+"...")) > w {
		rs = rs[:len(rs)-1]
	}
	return string(rs) + "..."
}

func themeColor(s, fallback string) color.RGBA {
	if c, err := domain.ParseColor(s); err == nil {
		return c
	}
	c, _ := domain.ParseColor(fallback)
	return c
}

// cssPoints converts a CSS length (rem, em, px, pt or a bare number of px)
// to points, taking 1rem as 16px. Values outside 4..72pt fall back to def.
func cssPoints(s string, def float64) float64 {
	s = strings.ToLower(strings.TrimSpace(s))
	mul := 0.75
	switch {
	case strings.HasSuffix(s, "rem"):
		s, mul = strings.TrimSuffix(s, "rem"), 12
	case strings.HasSuffix(s, "em"):
		s, mul = strings.TrimSuffix(s, "em"), 12
	case strings.HasSuffix(s, "px"):
		s = strings.TrimSuffix(s, "px")
	case strings.HasSuffix(s, "pt"):
		s, mul = strings.TrimSuffix(s, "pt"), 1
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	pt := v * mul
	if pt < 4 || pt > 72 {
		return def
	}
	return pt
}

func formatNumber(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func setText(pdf *gofpdf.Fpdf, c color.RGBA) { pdf.SetTextColor(int(c.R), int(c.G), int(c.B)) }
func setDraw(pdf *gofpdf.Fpdf, c color.RGBA) { pdf.SetDrawColor(int(c.R), int(c.G), int(c.B)) }
func setFill(pdf *gofpdf.Fpdf, c color.RGBA) { pdf.SetFillColor(int(c.R), int(c.G), int(c.B)) }
