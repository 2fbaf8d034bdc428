/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a crash report, a last-chance save of the
// open form and a clean non-zero exit.
package crash

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	applog "github.com/rayyan-akhter/form-forge/internal/log"
	"github.com/rayyan-akhter/form-forge/internal/telemetry"
	"github.com/rayyan-akhter/form-forge/internal/version"
)

// Autosaver persists the live document. *workspace.Workspace implements it.
type Autosaver interface {
	Autosave(ctx context.Context) (id string, err error)
}

var (
	autosaveTimeout = 5 * time.Second

	exitFn = os.Exit
	upload = telemetry.UploadCrash

	dirMu     sync.Mutex
	reportDir string
)

// SetReportDir sets where crash reports are written. Empty means the OS
// temp dir.
func SetReportDir(dir string) {
	dirMu.Lock()
	reportDir = dir
	dirMu.Unlock()
}

// Recover must be deferred directly:
//
//	defer crash.Recover(ws)
//
// On panic it logs the value and stack, writes a report, tries to autosave
// the open form through w (which may be nil) and exits with code 2.
func Recover(w Autosaver) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	reportPath, err := writeReport(r, stack)
	if err != nil {
		l.Error("write crash report failed", slog.Any("err", err), slog.String("path", reportPath))
	}
	if w != nil {
		if id, err := autosave(w); err != nil {
			l.Error("autosave after crash failed", slog.Any("err", err))
		} else {
			l.Info("form autosaved after crash", slog.String("form", id))
			_, _ = fmt.Fprintf(os.Stderr, "Your form was saved (id %s).\n", id)
		}
	}
	_, _ = fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath)
	_, _ = fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
	exitFn(2)
}

// autosave gives up after autosaveTimeout; the panicking goroutine may still
// hold locks the save needs.
func autosave(w Autosaver) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), autosaveTimeout)
	defer cancel()
	type result struct {
		id  string
		err error
	}
	done := make(chan result, 1)
	go func() {
		id, err := w.Autosave(ctx)
		done <- result{id, err}
	}()
	select {
	case r := <-done:
		return r.id, r.err
	case <-ctx.Done():
		return "", fmt.Errorf("autosave: %w", ctx.Err())
	}
}

func writeReport(panicVal any, stack []byte) (string, error) {
	dirMu.Lock()
	dir := reportDir
	dirMu.Unlock()
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		dir = os.TempDir()
	}
	now := time.Now()
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", now.Format("20060102-150405")))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Form Forge Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", now.Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", stack)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			applog.WithComponent("crash").Error("close crash report failed", slog.Any("err", err), slog.String("path", path))
		}
	}()
	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	_ = f.Sync()

	upload(buf.Bytes())
	return path, nil
}
