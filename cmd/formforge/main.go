/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/rayyan-akhter/form-forge/internal/config"
	"github.com/rayyan-akhter/form-forge/internal/crash"
	"github.com/rayyan-akhter/form-forge/internal/domain"
	"github.com/rayyan-akhter/form-forge/internal/export"
	applog "github.com/rayyan-akhter/form-forge/internal/log"
	"github.com/rayyan-akhter/form-forge/internal/registry"
	"github.com/rayyan-akhter/form-forge/internal/storage"
	"github.com/rayyan-akhter/form-forge/internal/store"
	"github.com/rayyan-akhter/form-forge/internal/telemetry"
	"github.com/rayyan-akhter/form-forge/internal/ui"
	"github.com/rayyan-akhter/form-forge/internal/undo"
	"github.com/rayyan-akhter/form-forge/internal/version"
	"github.com/rayyan-akhter/form-forge/internal/workspace"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "Form Forge")
	fmt.Fprintf(w, "Version: %s\n", version.String())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  formforge version                      Show version")
	fmt.Fprintln(w, "  formforge types                        List field types by palette category")
	fmt.Fprintln(w, "  formforge new <title>                  Create and save an empty form")
	fmt.Fprintln(w, "  formforge list                         List saved forms")
	fmt.Fprintln(w, "  formforge show <id>                    Print a saved form")
	fmt.Fprintln(w, "  formforge add <id> <type>              Append a component of <type>")
	fmt.Fprintln(w, "  formforge move <id> <from> <to>        Move a component between positions")
	fmt.Fprintln(w, "  formforge theme <id> <key> <value>     Change one theme setting (e.g. fontSize.base 1.1rem)")
	fmt.Fprintln(w, "  formforge delete <id>                  Delete a saved form")
	fmt.Fprintln(w, "  formforge export <id> <out.pdf>        Export a printable PDF preview")
	fmt.Fprintln(w, "  formforge ui                           Launch the desktop editor (build with -tags fyne)")
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// exit codes
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var errUsage = errors.New("usage")

type cli struct {
	ws     *workspace.Workspace
	out    io.Writer
	errOut io.Writer
	log    *slog.Logger
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, cfgErr := config.Load()
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
		Console:   stderr,
	})
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config not loaded, using defaults", slog.Any("err", cfgErr))
	}
	if len(args) == 0 {
		usage(stdout)
		return exitOK
	}
	switch args[0] {
	case "version", "--version", "-v":
		fmt.Fprintln(stdout, "Form Forge")
		fmt.Fprintln(stdout, version.String())
		return exitOK
	case "help", "--help", "-h":
		usage(stdout)
		return exitOK
	case "types":
		printTypes(stdout)
		return exitOK
	}

	ctx := context.Background()
	crash.SetReportDir(cfg.General.CrashDir)
	tcfg := telemetry.FromEnv()
	tcfg.OptIn = tcfg.OptIn || cfg.General.TelemetryOptIn
	events := telemetry.New(tcfg)
	telemetry.SetDefault(events)
	defer func() {
		flushCtx, cancel := context.WithTimeout(ctx, time.Second)
		events.Flush(flushCtx)
		cancel()
		events.Close()
	}()

	kv, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.Location(), cfg.Storage.KeepRevisions)
	if err != nil {
		l.Error("open storage failed", slog.Any("err", err), slog.String("driver", cfg.Storage.Driver))
		fmt.Fprintln(stderr, "Error:", err)
		return exitError
	}
	defer func() {
		if err := kv.Close(); err != nil {
			l.Error("close storage failed", slog.Any("err", err))
		}
	}()

	st := store.New(store.WithHistory(undo.NewManager(undo.Config{
		MaxBytes:    cfg.Undo.MaxBytes,
		MaxPerForm:  cfg.Undo.MaxDepth,
		MinInterval: cfg.Undo.MinInterval(),
	})))
	ws := workspace.New(st, storage.NewLibrary(kv), workspace.WithRecorder(events))
	defer crash.Recover(ws)

	c := &cli{ws: ws, out: stdout, errOut: stderr, log: l}
	err = c.dispatch(ctx, args)
	c.flushNotices()
	switch {
	case errors.Is(err, errUsage):
		usage(stderr)
		return exitUsage
	case err != nil:
		fmt.Fprintln(stderr, "Error:", err)
		return exitError
	}
	return exitOK
}

func (c *cli) dispatch(ctx context.Context, args []string) error {
	need := func(n int) error {
		if len(args) < n+1 {
			fmt.Fprintf(c.errOut, "%s requires %d argument(s)\n", args[0], n)
			return errUsage
		}
		return nil
	}
	c.log.Debug("command", slog.String("cmd", args[0]), slog.Int("args", len(args)-1))
	switch args[0] {
	case "new":
		if err := need(1); err != nil {
			return err
		}
		return c.newForm(ctx, args[1])
	case "list":
		return c.list(ctx)
	case "show":
		if err := need(1); err != nil {
			return err
		}
		return c.show(ctx, args[1])
	case "add":
		if err := need(2); err != nil {
			return err
		}
		return c.add(ctx, args[1], domain.FieldType(args[2]))
	case "move":
		if err := need(3); err != nil {
			return err
		}
		from, err1 := strconv.Atoi(args[2])
		to, err2 := strconv.Atoi(args[3])
		if err := errors.Join(err1, err2); err != nil {
			return fmt.Errorf("positions must be integers: %w", err)
		}
		return c.move(ctx, args[1], from, to)
	case "theme":
		if err := need(3); err != nil {
			return err
		}
		return c.theme(ctx, args[1], args[2], args[3])
	case "delete":
		if err := need(1); err != nil {
			return err
		}
		return c.ws.Delete(ctx, args[1])
	case "export":
		if err := need(2); err != nil {
			return err
		}
		return c.export(ctx, args[1], args[2])
	case "ui":
		return ui.Run(c.ws)
	}
	fmt.Fprintf(c.errOut, "unknown command %q\n", args[0])
	return errUsage
}

func (c *cli) newForm(ctx context.Context, title string) error {
	c.ws.New()
	c.ws.Store.UpdateFormSettings(title, c.ws.Store.Form().Description)
	snap, err := c.ws.Save(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, snap.ID)
	return nil
}

func (c *cli) list(ctx context.Context) error {
	items := c.ws.Forms(ctx)
	if len(items) == 0 {
		fmt.Fprintln(c.out, "No saved forms.")
		return nil
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tLAST EDITED")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", it.ID, it.Title, it.LastEdited.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func (c *cli) show(ctx context.Context, id string) error {
	if err := c.ws.Open(ctx, id); err != nil {
		return err
	}
	f := c.ws.Store.Form()
	fmt.Fprintf(c.out, "%s (%s)\n", f.Title, f.ID)
	if f.Description != "" {
		fmt.Fprintln(c.out, f.Description)
	}
	fmt.Fprintf(c.out, "Updated: %s\n", f.UpdatedAt.Local().Format(time.DateTime))
	fmt.Fprintln(c.out, "Theme:")
	for _, k := range domain.ThemeKeys() {
		v, _ := f.Theme.Value(k)
		fmt.Fprintf(c.out, "  %-17s %s\n", k, v)
	}
	fmt.Fprintf(c.out, "Components (%d):\n", len(f.Components))
	for i, comp := range f.Components {
		fmt.Fprintf(c.out, "  %2d  %s  %s\n", i, comp.ID, ui.Summary(comp))
	}
	return nil
}

// edit opens a saved form, applies fn and saves it back. An edit that leaves
// the document untouched is an error and nothing is written.
func (c *cli) edit(ctx context.Context, id string, fn func(s *store.Store) error) error {
	if err := c.ws.Open(ctx, id); err != nil {
		return err
	}
	before := c.ws.Store.Form().UpdatedAt
	if err := fn(c.ws.Store); err != nil {
		return err
	}
	if c.ws.Store.Form().UpdatedAt.Equal(before) {
		return errors.New("nothing changed")
	}
	_, err := c.ws.Save(ctx)
	return err
}

func (c *cli) add(ctx context.Context, id string, t domain.FieldType) error {
	if !registry.Known(t) {
		return fmt.Errorf("unknown field type %q (see: formforge types)", t)
	}
	return c.edit(ctx, id, func(*store.Store) error {
		newID, ok := c.ws.AddComponent(t)
		if !ok {
			return errors.New("component not added")
		}
		fmt.Fprintln(c.out, newID)
		return nil
	})
}

func (c *cli) move(ctx context.Context, id string, from, to int) error {
	return c.edit(ctx, id, func(s *store.Store) error {
		n := len(s.Form().Components)
		if from < 0 || from >= n || to < 0 || to >= n {
			return fmt.Errorf("positions must be between 0 and %d", n-1)
		}
		s.MoveComponent(from, to)
		return nil
	})
}

func (c *cli) theme(ctx context.Context, id, key, value string) error {
	u, err := domain.ThemeUpdateFor(key, value)
	if err != nil {
		return err
	}
	return c.edit(ctx, id, func(s *store.Store) error {
		s.UpdateTheme(u)
		return nil
	})
}

func (c *cli) export(ctx context.Context, id, out string) error {
	if err := c.ws.Open(ctx, id); err != nil {
		return err
	}
	if err := export.ExportFormPDF(c.ws.Store.Form(), out, export.PDFOptions{}); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Exported to", out)
	return nil
}

func (c *cli) flushNotices() {
	for _, n := range c.ws.Notices.Drain() {
		if n.Detail != "" {
			fmt.Fprintf(c.errOut, "%s: %s\n", n.Title, n.Detail)
		} else {
			fmt.Fprintln(c.errOut, n.Title)
		}
	}
}

func printTypes(w io.Writer) {
	for _, cat := range registry.Palette() {
		fmt.Fprintf(w, "%s:\n", cat.Name)
		for _, it := range cat.Items {
			fmt.Fprintf(w, "  %-12s %s\n", it.Type, it.Label)
		}
	}
}
