/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	applog "github.com/rayyan-akhter/form-forge/internal/log"
)

// BackupsDirName is the subdirectory of a FileKV holding earlier values.
const BackupsDirName = "backups"

// FileKV stores each key as <dir>/<key>.json. Writes go to a temp file that
// is synced and renamed over the target; the previous file is first copied
// to backups/<key>.json.<stamp>.bak. Reads fall back to the newest backup
// when the current file is missing or does not hold valid JSON.
type FileKV struct {
	dir  string
	keep int
	now  func() time.Time
}

func OpenFileKV(dir string, keep int) (*FileKV, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("directory is required")
	}
	if err := os.MkdirAll(filepath.Join(dir, BackupsDirName), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", ErrUnavailable, dir, err)
	}
	if keep <= 0 {
		keep = 10
	}
	return &FileKV{dir: dir, keep: keep, now: time.Now}, nil
}

func (k *FileKV) Dir() string { return k.dir }

// fileName maps a key to a safe file name. Letters, digits, '.', '-' and '_'
// are kept; every other byte becomes %XX so distinct keys never share a file.
func fileName(key string) string {
	var b strings.Builder
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '.', c == '-', c == '_':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String() + ".json"
}

func (k *FileKV) path(key string) string { return filepath.Join(k.dir, fileName(key)) }

func (k *FileKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	l := applog.WithOperation(applog.WithComponent("storage"), "file_get").With(slog.String("key", key))
	b, err := os.ReadFile(k.path(key))
	switch {
	case err == nil && json.Valid(b):
		return b, true, nil
	case err == nil:
		l.Warn("current file is not valid JSON, trying backup")
	case errors.Is(err, os.ErrNotExist):
	default:
		l.Warn("read failed, trying backup", slog.Any("err", err))
	}
	bak, berr := k.latestBackup(key)
	if berr != nil {
		if err == nil {
			// present but unreadable and nothing to fall back on
			return nil, false, fmt.Errorf("%w: %s: no usable backup: %v", ErrCorrupt, key, berr)
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w; backup attempt: %v", key, err, berr)
	}
	l.Info("restored value from backup")
	return bak, true, nil
}

func (k *FileKV) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target := k.path(key)
	if err := k.backup(key); err != nil {
		return err
	}
	temp := filepath.Join(k.dir, fmt.Sprintf(".%s.tmp-%d-%d", fileName(key), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, value); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write temp %s: %w", key, err)
	}
	// Windows cannot rename over an existing file
	if _, err := os.Stat(target); err == nil {
		_ = os.Remove(target)
	}
	if err := os.Rename(temp, target); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

// Delete removes the value and its backups so a later Get cannot
// resurrect it.
func (k *FileKV) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(k.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	for _, p := range k.backups(key) {
		_ = os.Remove(p)
	}
	return nil
}

func (k *FileKV) Close() error { return nil }

// LatestRevision returns the newest backup of key.
func (k *FileKV) LatestRevision(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	b, err := k.latestBackup(key)
	if err != nil {
		return nil, false, nil
	}
	return b, true, nil
}

func (k *FileKV) backup(key string) error {
	cur := k.path(key)
	if _, err := os.Stat(cur); err != nil {
		return nil
	}
	stamp := k.now().UTC().Format(backupStamp)
	bpath := filepath.Join(k.dir, BackupsDirName, fmt.Sprintf("%s.%s.bak", fileName(key), stamp))
	if err := copyFile(cur, bpath); err != nil {
		return fmt.Errorf("backup %s: %w", key, err)
	}
	if list := k.backups(key); len(list) > k.keep {
		for _, p := range list[:len(list)-k.keep] {
			_ = os.Remove(p)
		}
	}
	return nil
}

const backupStamp = "20060102-150405.000000000"

// backups lists the backup files of key, oldest first.
func (k *FileKV) backups(key string) []string {
	bdir := filepath.Join(k.dir, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil
	}
	prefix := fileName(key) + "."
	var out []string
	for _, e := range ents {
		name := e.Name()
		rest, ok := strings.CutPrefix(name, prefix)
		if !ok {
			continue
		}
		// "a" must not pick up the backups of "a.json"
		if stamp, ok := strings.CutSuffix(rest, ".bak"); ok && len(stamp) == len(backupStamp) {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out) // the stamp sorts lexicographically
	return out
}

// latestBackup returns the newest backup holding valid JSON.
func (k *FileKV) latestBackup(key string) ([]byte, error) {
	list := k.backups(key)
	if len(list) == 0 {
		return nil, errors.New("no backups found")
	}
	for i := len(list) - 1; i >= 0; i-- {
		b, err := os.ReadFile(list[i])
		if err == nil && json.Valid(b) {
			return b, nil
		}
	}
	return nil, errors.New("no readable backup")
}

// writeFileSync writes data to a file and flushes it to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies src to dst, overwriting dst.
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
