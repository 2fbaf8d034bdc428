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
	"errors"
	"fmt"
	"strings"
)

// KV is a flat key-value store. Get reports found=false for a missing key
// without an error.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// RevisionReader is implemented by stores that keep the value a key had
// before its last overwrite.
type RevisionReader interface {
	LatestRevision(ctx context.Context, key string) (value []byte, found bool, err error)
}

var (
	// ErrUnavailable wraps failures of the underlying store.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrCorrupt means stored data could not be decoded.
	ErrCorrupt = errors.New("storage corrupted")
	// ErrInvalid means a record was refused before it was written.
	ErrInvalid = errors.New("invalid record")
)

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverFile   = "file"
)

// Open returns the store for driver. path is the database file for sqlite
// and the directory for file; memory ignores it. keep bounds the number of
// earlier revisions or backups kept per key.
func Open(ctx context.Context, driver, path string, keep int) (KV, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverMemory:
		return NewMemoryKV(), nil
	case DriverSQLite, "":
		return OpenSQLite(ctx, path, keep)
	case DriverFile:
		return OpenFileKV(path, keep)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
