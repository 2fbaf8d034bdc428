//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/rayyan-akhter/form-forge/internal/crash"
	"github.com/rayyan-akhter/form-forge/internal/domain"
	"github.com/rayyan-akhter/form-forge/internal/export"
	applog "github.com/rayyan-akhter/form-forge/internal/log"
	"github.com/rayyan-akhter/form-forge/internal/registry"
	"github.com/rayyan-akhter/form-forge/internal/store"
	"github.com/rayyan-akhter/form-forge/internal/workspace"
)

const saveTimeout = 5 * time.Second

// Run opens the editor window on ws and blocks until it is closed.
func Run(ws *workspace.Workspace) error {
	if ws == nil {
		return errors.New("ui: no workspace")
	}
	defer crash.Recover(ws)
	l := applog.WithComponent("ui")
	l.Info("starting UI")

	fyneApp := app.NewWithID("io.formforge")
	w := fyneApp.NewWindow("Form Forge")
	prefs := fyneApp.Preferences()
	winW := max(prefs.IntWithFallback("window.width", 1280), 900)
	winH := max(prefs.IntWithFallback("window.height", 820), 600)
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))
	w.SetCloseIntercept(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		w.Close()
	})

	e := newEditor(ws, w)
	unsubscribe := ws.Store.Subscribe(func(st store.State) {
		fyne.Do(func() { e.render(st) })
	})
	defer unsubscribe()

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			case n := <-ws.Notices.C():
				fyne.Do(func() { e.showNotice(n) })
			}
		}
	}()

	w.SetMainMenu(e.menu())
	e.shortcuts()
	w.SetContent(e.content())
	e.render(ws.Store.State())
	w.ShowAndRun()
	return nil
}

type editor struct {
	ws  *workspace.Workspace
	win fyne.Window
	log *slog.Logger

	status   *widget.Label
	title    *widget.Entry
	desc     *widget.Entry
	rows     *fyne.Container
	settings *fyne.Container
	modeBtn  *widget.Button
	undoBtn  *widget.Button
	redoBtn  *widget.Button

	settingsKey string
	dragDY      float32
}

func newEditor(ws *workspace.Workspace, w fyne.Window) *editor {
	e := &editor{
		ws:       ws,
		win:      w,
		log:      applog.WithComponent("ui"),
		status:   widget.NewLabel("Ready"),
		title:    widget.NewEntry(),
		desc:     widget.NewMultiLineEntry(),
		rows:     container.NewVBox(),
		settings: container.NewStack(),
	}
	e.desc.SetMinRowsVisible(2)
	e.title.OnSubmitted = func(string) { e.commitSettings() }
	e.modeBtn = widget.NewButtonWithIcon("Preview", theme.VisibilityIcon(), e.toggleMode)
	e.undoBtn = widget.NewButtonWithIcon("", theme.ContentUndoIcon(), func() { ws.Store.Undo() })
	e.redoBtn = widget.NewButtonWithIcon("", theme.ContentRedoIcon(), func() { ws.Store.Redo() })
	return e
}

func (e *editor) content() fyne.CanvasObject {
	header := container.NewHBox(
		widget.NewLabelWithStyle("Form Builder", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		e.modeBtn,
		widget.NewButtonWithIcon("Theme", theme.ColorPaletteIcon(), e.ws.Store.ToggleThemeSettings),
		widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), e.save),
		e.undoBtn, e.redoBtn,
	)
	formSettings := widget.NewForm(
		widget.NewFormItem("Title", e.title),
		widget.NewFormItem("Description", e.desc),
	)
	formSettings.SubmitText = "Apply"
	formSettings.OnSubmit = e.commitSettings
	center := container.NewBorder(formSettings, nil, nil, nil, container.NewVScroll(e.rows))
	split := container.NewHSplit(e.palette(), container.NewHSplit(center, container.NewVScroll(e.settings)))
	split.Offset = 0.2
	return container.NewBorder(header, e.status, nil, nil, split)
}

func (e *editor) palette() fyne.CanvasObject {
	acc := widget.NewAccordion()
	for _, cat := range registry.Palette() {
		box := container.NewVBox()
		for _, it := range cat.Items {
			t := it.Type
			box.Add(widget.NewButtonWithIcon(it.Label, theme.ContentAddIcon(), func() { e.ws.AddComponent(t) }))
		}
		acc.Append(widget.NewAccordionItem(cat.Name, box))
	}
	acc.MultiOpen = true
	acc.OpenAll()
	return container.NewVScroll(container.NewBorder(widget.NewLabelWithStyle("Components", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}), nil, nil, nil, acc))
}

func (e *editor) menu() *fyne.MainMenu {
	file := fyne.NewMenu("File",
		fyne.NewMenuItem("New Form", func() { e.ws.New() }),
		fyne.NewMenuItem("Open…", e.openDialog),
		fyne.NewMenuItem("Save", e.save),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export as PDF…", e.exportPDF),
	)
	edit := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", func() { e.ws.Store.Undo() }),
		fyne.NewMenuItem("Redo", func() { e.ws.Store.Redo() }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Component Settings", e.ws.Store.ToggleComponentSettings),
		fyne.NewMenuItem("Theme Settings", e.ws.Store.ToggleThemeSettings),
	)
	return fyne.NewMainMenu(file, edit)
}

func (e *editor) shortcuts() {
	c := e.win.Canvas()
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault},
		func(fyne.Shortcut) { e.ws.Store.Undo() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault | fyne.KeyModifierShift},
		func(fyne.Shortcut) { e.ws.Store.Redo() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierShortcutDefault},
		func(fyne.Shortcut) { e.save() })
}

func (e *editor) toggleMode() {
	if e.ws.Store.State().Mode == store.ModeEdit {
		e.ws.Store.SetMode(store.ModePreview)
	} else {
		e.ws.Store.SetMode(store.ModeEdit)
	}
}

func (e *editor) commitSettings() {
	e.ws.Store.UpdateFormSettings(strings.TrimSpace(e.title.Text), strings.TrimSpace(e.desc.Text))
}

func (e *editor) save() {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	_, _ = e.ws.Save(ctx)
}

func (e *editor) showNotice(n workspace.Notice) {
	text := n.Title
	if n.Detail != "" {
		text += ": " + n.Detail
	}
	e.status.SetText(text)
	e.log.Debug("notice", slog.String("level", n.Level.String()), slog.String("text", text))
	if n.Level == workspace.LevelError {
		dialog.ShowError(errors.New(text), e.win)
	}
}

// render projects st onto the widgets. The settings panel is rebuilt only
// when the panel or the selected component changes, so typing in it is not
// interrupted by the edits it makes.
func (e *editor) render(st store.State) {
	f := st.Form
	if e.title.Text != f.Title {
		e.title.SetText(f.Title)
	}
	if e.desc.Text != f.Description {
		e.desc.SetText(f.Description)
	}
	if st.Mode == store.ModePreview {
		e.modeBtn.SetText("Edit")
		e.modeBtn.SetIcon(theme.DocumentCreateIcon())
	} else {
		e.modeBtn.SetText("Preview")
		e.modeBtn.SetIcon(theme.VisibilityIcon())
	}
	canUndo, canRedo := e.ws.Store.CanUndo()
	setEnabled(e.undoBtn, canUndo && st.Mode == store.ModeEdit)
	setEnabled(e.redoBtn, canRedo && st.Mode == store.ModeEdit)

	e.rows.RemoveAll()
	if len(f.Components) == 0 {
		e.rows.Add(widget.NewLabel("Add components from the panel on the left to start building your form."))
	}
	for i, c := range f.Components {
		e.rows.Add(e.row(st, i, c))
	}
	e.rows.Refresh()

	key := fmt.Sprintf("%s/%s/%s/%s", f.ID, st.Panel, st.SelectedID, st.Mode)
	if key != e.settingsKey {
		e.settingsKey = key
		e.settings.RemoveAll()
		switch st.Panel {
		case store.PanelTheme:
			e.settings.Add(e.themePanel(f.Theme))
		case store.PanelComponent:
			if c, ok := st.Selected(); ok {
				e.settings.Add(e.componentPanel(c))
			}
		}
		e.settings.Refresh()
	}
}

func (e *editor) row(st store.State, index int, c domain.Component) fyne.CanvasObject {
	th := st.Form.Theme
	preview := st.Mode == store.ModePreview
	body := container.NewVBox()
	if !c.Type.IsLayout() {
		body.Add(e.labelLine(c, th))
	}
	body.Add(previewWidget(c, th, preview))
	if c.HelpText != "" {
		body.Add(widget.NewLabelWithStyle(c.HelpText, fyne.TextAlignLeading, fyne.TextStyle{Italic: true}))
	}
	if preview {
		return body
	}

	id := c.ID
	bg := canvas.NewRectangle(color.Transparent)
	bg.CornerRadius = 6
	if st.SelectedID == id {
		primary := themeColor(th.PrimaryColor)
		bg.FillColor = color.NRGBA{R: primary.R, G: primary.G, B: primary.B, A: 0x20}
		bg.StrokeColor = primary
		bg.StrokeWidth = 1
	}
	if st.ActiveDragID == id {
		bg.FillColor = color.NRGBA{A: 0x18}
	}
	actions := container.NewHBox(
		widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
			e.ws.Store.SelectComponent(id)
			if e.ws.Store.State().Panel != store.PanelComponent {
				e.ws.Store.ToggleComponentSettings()
			}
		}),
		widget.NewButtonWithIcon("", theme.MoveUpIcon(), func() { e.ws.Store.MoveComponent(index, index-1) }),
		widget.NewButtonWithIcon("", theme.MoveDownIcon(), func() { e.ws.Store.MoveComponent(index, index+1) }),
		widget.NewButtonWithIcon("", theme.ContentCopyIcon(), func() { e.ws.Store.DuplicateComponent(id) }),
		widget.NewButtonWithIcon("", theme.DeleteIcon(), func() { e.ws.Store.RemoveComponent(id) }),
	)
	handle := newDragHandle(
		func(dy float32) {
			if e.ws.Store.State().ActiveDragID == "" {
				e.dragDY = 0
				e.ws.Store.BeginDrag(id)
			}
			e.dragDY += dy
		},
		func() { e.endDrag(index) },
	)
	tap := newTapArea(func() { e.ws.Store.SelectComponent(id) })
	card := container.NewBorder(nil, nil, handle, actions, container.NewStack(tap, body))
	return container.NewStack(bg, container.NewPadded(card))
}

// endDrag maps the accumulated drag distance to a target row, using the
// height of the dragged row as the unit.
func (e *editor) endDrag(from int) {
	objs := e.rows.Objects
	if from < 0 || from >= len(objs) {
		e.ws.Store.CancelDrag()
		return
	}
	unit := objs[from].Size().Height
	if unit <= 0 {
		e.ws.Store.CancelDrag()
		return
	}
	to := from + int(e.dragDY/unit+sign(e.dragDY)*0.5)
	e.dragDY = 0
	f := e.ws.Store.Form()
	to = min(max(to, 0), len(f.Components)-1)
	if to == from {
		e.ws.Store.CancelDrag()
		return
	}
	e.ws.Store.EndDrag(f.Components[to].ID)
}

func sign(v float32) float32 {
	if v < 0 {
		return -1
	}
	return 1
}

func (e *editor) labelLine(c domain.Component, th domain.ThemeSettings) fyne.CanvasObject {
	label := canvas.NewText(c.Label, theme.Color(theme.ColorNameForeground))
	label.TextStyle = fyne.TextStyle{Bold: true}
	label.TextSize = cssPixels(th.FontSize.Label, theme.TextSize())
	if !c.Required {
		return label
	}
	star := canvas.NewText("*", themeColor(th.AccentColor))
	star.TextSize = label.TextSize
	star.TextStyle = label.TextStyle
	return container.NewHBox(label, star)
}

func previewWidget(c domain.Component, th domain.ThemeSettings, enabled bool) fyne.CanvasObject {
	var obj fyne.CanvasObject
	switch c.Type {
	case domain.TypeHeading:
		t := canvas.NewText(c.Label, themeColor(th.PrimaryColor))
		t.TextStyle = fyne.TextStyle{Bold: true}
		t.TextSize = cssPixels(th.FontSize.Heading, 24)
		return t
	case domain.TypeParagraph:
		l := widget.NewLabel(c.Label)
		l.Wrapping = fyne.TextWrapWord
		return l
	case domain.TypeDivider:
		return widget.NewSeparator()
	case domain.TypeAddress:
		entry := func(ph string) fyne.CanvasObject {
			en := widget.NewEntry()
			en.SetPlaceHolder(ph)
			setEnabled(en, enabled)
			return en
		}
		country := widget.NewSelect([]string{"United States", "Canada", "United Kingdom", "Australia"}, nil)
		country.PlaceHolder = "Country"
		setEnabled(country, enabled)
		return container.NewVBox(
			entry("Street Address"), entry("Street Address Line 2"),
			container.NewGridWithColumns(2, entry("City"), entry("State / Province")),
			container.NewGridWithColumns(2, entry("Postal / Zip Code"), country),
		)
	}

	switch p := c.Props.(type) {
	case domain.InputProps:
		var en *widget.Entry
		if c.Type == domain.TypeLongText {
			en = widget.NewMultiLineEntry()
		} else {
			en = widget.NewEntry()
		}
		en.SetPlaceHolder(p.Placeholder)
		en.SetText(p.Default)
		obj = en
	case domain.NumberProps:
		en := widget.NewEntry()
		en.SetPlaceHolder(p.Placeholder)
		if p.Default != nil {
			en.SetText(formatFloat(*p.Default))
		}
		obj = en
	case domain.ChoiceProps:
		labels := make([]string, 0, len(p.Options))
		var selected []string
		for _, o := range p.Options {
			labels = append(labels, o.Label)
			for _, d := range p.Default {
				if d == o.Value {
					selected = append(selected, o.Label)
				}
			}
		}
		switch c.Type {
		case domain.TypeCheckbox:
			g := widget.NewCheckGroup(labels, nil)
			g.SetSelected(selected)
			obj = g
		case domain.TypeRadio:
			g := widget.NewRadioGroup(labels, nil)
			if len(selected) > 0 {
				g.SetSelected(selected[0])
			}
			obj = g
		default:
			s := widget.NewSelect(labels, nil)
			s.PlaceHolder = p.Placeholder
			if len(selected) > 0 {
				s.SetSelected(selected[0])
			}
			obj = s
		}
	case domain.FileProps:
		hint := fmt.Sprintf("Accepted: %s (max %s MB)", p.AcceptedFileTypes, formatFloat(p.MaxFileSize))
		obj = container.NewVBox(widget.NewButtonWithIcon("Choose file", theme.FileIcon(), func() {}), widget.NewLabel(hint))
	case domain.RangeProps:
		lo, hi := 0.0, 100.0
		if p.Min != nil {
			lo = *p.Min
		}
		if p.Max != nil {
			hi = *p.Max
		}
		if c.Type == domain.TypeRating {
			n := int(hi)
			if n < 1 || n > 20 {
				n = 5
			}
			box := container.NewHBox()
			for i := 1; i <= n; i++ {
				box.Add(widget.NewButton(strconv.Itoa(i), func() {}))
			}
			obj = box
			break
		}
		s := widget.NewSlider(lo, hi)
		if p.Step != nil && *p.Step > 0 {
			s.Step = *p.Step
		}
		if p.Default != nil {
			s.SetValue(*p.Default)
		}
		obj = s
	case domain.SwitchProps:
		ch := widget.NewCheck("", nil)
		ch.SetChecked(p.Default)
		obj = ch
	case domain.ImageProps:
		obj = hyperlink("Image: "+p.ImageURL, p.ImageURL)
	case domain.LinkProps:
		text := p.LinkText
		if text == "" {
			text = p.LinkURL
		}
		return hyperlink(text, p.LinkURL)
	default:
		return widget.NewLabel("Unsupported component type: " + string(c.Type))
	}
	setEnabled(obj, enabled)
	return obj
}

func hyperlink(text, raw string) fyne.CanvasObject {
	u, err := url.Parse(raw)
	if err != nil || raw == "" {
		return widget.NewLabel(text)
	}
	return widget.NewHyperlink(text, u)
}

func (e *editor) componentPanel(c domain.Component) fyne.CanvasObject {
	id := c.ID
	label := widget.NewEntry()
	label.SetText(c.Label)
	required := widget.NewCheck("Required", nil)
	required.SetChecked(c.Required)
	help := widget.NewEntry()
	help.SetText(c.HelpText)
	width := widget.NewSelect([]string{string(domain.WidthFull), string(domain.WidthHalf), string(domain.WidthThird)}, nil)
	width.SetSelected(string(c.Width))

	items := []*widget.FormItem{
		widget.NewFormItem("Type", widget.NewLabel(registry.DefaultLabel(c.Type))),
		widget.NewFormItem("Label", label),
		widget.NewFormItem("", required),
		widget.NewFormItem("Help text", help),
		widget.NewFormItem("Width", width),
	}
	extra, build := propsEditor(c)
	items = append(items, extra...)

	form := widget.NewForm(items...)
	form.SubmitText = "Apply"
	form.OnSubmit = func() {
		pu, err := build()
		if err != nil {
			dialog.ShowError(err, e.win)
			return
		}
		w := domain.Width(width.Selected)
		u := domain.ComponentUpdate{
			Label:    domain.Ptr(label.Text),
			Required: domain.Ptr(required.Checked),
			HelpText: domain.Ptr(help.Text),
			Width:    &w,
			Props:    pu,
		}
		if err := u.Validate(); err != nil {
			dialog.ShowError(err, e.win)
			return
		}
		e.ws.Store.UpdateComponent(id, u)
	}
	form.CancelText = "Close"
	form.OnCancel = e.ws.Store.ToggleComponentSettings
	return container.NewVBox(widget.NewLabelWithStyle("Component Settings", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}), form)
}

// propsEditor returns the form rows for c's variant and a function reading
// them back as an update command.
func propsEditor(c domain.Component) ([]*widget.FormItem, func() (domain.PropsUpdate, error)) {
	entry := func(text string) *widget.Entry {
		en := widget.NewEntry()
		en.SetText(text)
		return en
	}
	num := func(v *float64) *widget.Entry {
		if v == nil {
			return entry("")
		}
		return entry(formatFloat(*v))
	}
	switch p := c.Props.(type) {
	case domain.InputProps:
		ph, def := entry(p.Placeholder), entry(p.Default)
		return []*widget.FormItem{widget.NewFormItem("Placeholder", ph), widget.NewFormItem("Default", def)},
			func() (domain.PropsUpdate, error) {
				return domain.InputUpdate{Placeholder: domain.Ptr(ph.Text), Default: domain.Ptr(def.Text)}, nil
			}
	case domain.NumberProps:
		ph, lo, hi, step := entry(p.Placeholder), num(p.Min), num(p.Max), num(p.Step)
		return []*widget.FormItem{
				widget.NewFormItem("Placeholder", ph), widget.NewFormItem("Min", lo),
				widget.NewFormItem("Max", hi), widget.NewFormItem("Step", step),
			}, func() (domain.PropsUpdate, error) {
				u := domain.NumberUpdate{Placeholder: domain.Ptr(ph.Text)}
				var err error
				if u.Min, err = ParseNumber(lo.Text); err != nil {
					return nil, err
				}
				if u.Max, err = ParseNumber(hi.Text); err != nil {
					return nil, err
				}
				if u.Step, err = ParseNumber(step.Text); err != nil {
					return nil, err
				}
				return u, nil
			}
	case domain.ChoiceProps:
		ph := entry(p.Placeholder)
		opts := widget.NewMultiLineEntry()
		opts.SetText(FormatOptions(p.Options))
		opts.SetMinRowsVisible(4)
		existing := p.Options
		return []*widget.FormItem{
				widget.NewFormItem("Placeholder", ph),
				{Text: "Options", Widget: opts, HintText: "one per line: label|value"},
			}, func() (domain.PropsUpdate, error) {
				parsed := ParseOptions(opts.Text, existing)
				return domain.ChoiceUpdate{Placeholder: domain.Ptr(ph.Text), Options: &parsed}, nil
			}
	case domain.FileProps:
		types, size := entry(p.AcceptedFileTypes), entry(formatFloat(p.MaxFileSize))
		return []*widget.FormItem{widget.NewFormItem("Accepted types", types), widget.NewFormItem("Max size (MB)", size)},
			func() (domain.PropsUpdate, error) {
				mb, err := ParseNumber(size.Text)
				if err != nil {
					return nil, err
				}
				return domain.FileUpdate{AcceptedFileTypes: domain.Ptr(types.Text), MaxFileSize: mb}, nil
			}
	case domain.RangeProps:
		lo, hi, step, def := num(p.Min), num(p.Max), num(p.Step), num(p.Default)
		return []*widget.FormItem{
				widget.NewFormItem("Min", lo), widget.NewFormItem("Max", hi),
				widget.NewFormItem("Step", step), widget.NewFormItem("Default", def),
			}, func() (domain.PropsUpdate, error) {
				var u domain.RangeUpdate
				var err error
				for _, f := range []struct {
					dst **float64
					src *widget.Entry
				}{{&u.Min, lo}, {&u.Max, hi}, {&u.Step, step}, {&u.Default, def}} {
					if *f.dst, err = ParseNumber(f.src.Text); err != nil {
						return nil, err
					}
				}
				return u, nil
			}
	case domain.SwitchProps:
		on := widget.NewCheck("On by default", nil)
		on.SetChecked(p.Default)
		return []*widget.FormItem{widget.NewFormItem("", on)},
			func() (domain.PropsUpdate, error) { return domain.SwitchUpdate{Default: domain.Ptr(on.Checked)}, nil }
	case domain.ImageProps:
		src := entry(p.ImageURL)
		return []*widget.FormItem{widget.NewFormItem("Image URL", src)},
			func() (domain.PropsUpdate, error) { return domain.ImageUpdate{ImageURL: domain.Ptr(src.Text)}, nil }
	case domain.LinkProps:
		href, text := entry(p.LinkURL), entry(p.LinkText)
		return []*widget.FormItem{widget.NewFormItem("URL", href), widget.NewFormItem("Text", text)},
			func() (domain.PropsUpdate, error) {
				return domain.LinkUpdate{LinkURL: domain.Ptr(href.Text), LinkText: domain.Ptr(text.Text)}, nil
			}
	}
	return nil, func() (domain.PropsUpdate, error) { return nil, nil }
}

func (e *editor) themePanel(th domain.ThemeSettings) fyne.CanvasObject {
	entries := make(map[string]*widget.Entry, len(domain.ThemeKeys()))
	var items []*widget.FormItem
	for _, key := range domain.ThemeKeys() {
		en := widget.NewEntry()
		v, _ := th.Value(key)
		en.SetText(v)
		entries[key] = en
		items = append(items, widget.NewFormItem(key, en))
	}
	form := widget.NewForm(items...)
	form.SubmitText = "Apply"
	form.OnSubmit = func() {
		var errs []error
		for _, key := range domain.ThemeKeys() {
			v := strings.TrimSpace(entries[key].Text)
			if cur, _ := th.Value(key); v == cur {
				continue
			}
			u, err := domain.ThemeUpdateFor(key, v)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			e.ws.Store.UpdateTheme(u)
		}
		if err := errors.Join(errs...); err != nil {
			dialog.ShowError(err, e.win)
		}
	}
	form.CancelText = "Close"
	form.OnCancel = e.ws.Store.ToggleThemeSettings
	return container.NewVBox(widget.NewLabelWithStyle("Theme Settings", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}), form)
}

func (e *editor) openDialog() {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	items := e.ws.Forms(ctx)
	cancel()
	if len(items) == 0 {
		dialog.ShowInformation("No Saved Forms", "Create your first form to see it listed here.", e.win)
		return
	}
	var d dialog.Dialog
	list := widget.NewList(
		func() int { return len(items) },
		func() fyne.CanvasObject {
			return container.NewBorder(nil, nil, nil,
				container.NewHBox(widget.NewButton("Edit", nil), widget.NewButtonWithIcon("", theme.DeleteIcon(), nil)),
				widget.NewLabel(""))
		},
		func(i widget.ListItemID, o fyne.CanvasObject) {
			it := items[i]
			row := o.(*fyne.Container)
			row.Objects[0].(*widget.Label).SetText(it.Title + "  ·  " + LastEdited(it.LastEdited))
			btns := row.Objects[1].(*fyne.Container)
			btns.Objects[0].(*widget.Button).OnTapped = func() {
				ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
				defer cancel()
				if err := e.ws.Open(ctx, it.ID); err == nil {
					d.Hide()
				}
			}
			btns.Objects[1].(*widget.Button).OnTapped = func() {
				dialog.ShowConfirm("Delete Form", fmt.Sprintf("Delete %q?", it.Title), func(ok bool) {
					if !ok {
						return
					}
					ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
					defer cancel()
					_ = e.ws.Delete(ctx, it.ID)
					d.Hide()
				}, e.win)
			}
		},
	)
	d = dialog.NewCustom("Your Forms", "Close", list, e.win)
	d.Resize(fyne.NewSize(560, 420))
	d.Show()
}

func (e *editor) exportPDF() {
	save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, e.win)
			return
		}
		if uc == nil {
			return
		}
		outPath := uc.URI().Path()
		_ = uc.Close()
		if err := export.ExportFormPDF(e.ws.Store.Form(), outPath, export.PDFOptions{}); err != nil {
			dialog.ShowError(err, e.win)
			return
		}
		dialog.ShowInformation("Export PDF", "Exported to "+outPath, e.win)
	}, e.win)
	save.SetFileName(fileName(e.ws.Store.Form().Title) + ".pdf")
	save.SetFilter(fstorage.NewExtensionFileFilter([]string{".pdf"}))
	save.Show()
}

func fileName(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "form"
	}
	return b.String()
}

func themeColor(s string) color.RGBA {
	if c, err := domain.ParseColor(s); err == nil {
		return c
	}
	c, _ := domain.ParseColor(domain.DefaultTheme().PrimaryColor)
	return c
}

type disableable interface {
	Enable()
	Disable()
}

func setEnabled(o fyne.CanvasObject, on bool) {
	d, ok := o.(disableable)
	if !ok {
		return
	}
	if on {
		d.Enable()
	} else {
		d.Disable()
	}
}

// dragHandle reports vertical drag movement on the grip icon of a row.
type dragHandle struct {
	widget.Icon
	onDrag func(dy float32)
	onEnd  func()
}

func newDragHandle(onDrag func(dy float32), onEnd func()) *dragHandle {
	h := &dragHandle{onDrag: onDrag, onEnd: onEnd}
	h.SetResource(theme.MenuIcon())
	h.ExtendBaseWidget(h)
	return h
}

func (h *dragHandle) Dragged(ev *fyne.DragEvent) { h.onDrag(ev.Dragged.DY) }
func (h *dragHandle) DragEnd()                   { h.onEnd() }

// tapArea selects a row when its body is clicked.
type tapArea struct {
	widget.BaseWidget
	onTap func()
}

func newTapArea(onTap func()) *tapArea {
	t := &tapArea{onTap: onTap}
	t.ExtendBaseWidget(t)
	return t
}

func (t *tapArea) Tapped(*fyne.PointEvent) { t.onTap() }

func (t *tapArea) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(canvas.NewRectangle(color.Transparent))
}
