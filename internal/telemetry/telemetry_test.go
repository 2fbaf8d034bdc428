/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rayyan-akhter/form-forge/internal/domain"
)

type recorder struct {
	mu      sync.Mutex
	events  []map[string]any
	crashes [][]byte
}

func (r *recorder) server(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/events", func(w http.ResponseWriter, req *http.Request) {
		b, _ := io.ReadAll(req.Body)
		var m map[string]any
		_ = json.Unmarshal(b, &m)
		r.mu.Lock()
		r.events = append(r.events, m)
		r.mu.Unlock()
	})
	mux.HandleFunc("/crash", func(w http.ResponseWriter, req *http.Request) {
		b, _ := io.ReadAll(req.Body)
		r.mu.Lock()
		r.crashes = append(r.crashes, b)
		r.mu.Unlock()
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func (r *recorder) waitEvents(t *testing.T, n int) []map[string]any {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		r.mu.Lock()
		got := len(r.events)
		r.mu.Unlock()
		if got >= n {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) < n {
		t.Fatalf("want %d events, got %d", n, len(r.events))
	}
	return append([]map[string]any(nil), r.events...)
}

func TestClientSendsFormEvents(t *testing.T) {
	rec := &recorder{}
	srv := rec.server(t)
	c := New(Config{OptIn: true, EventsURL: srv.URL + "/events", Timeout: 2 * time.Second})
	defer c.Close()

	c.ComponentAdded(domain.TypeEmail)
	c.FormSaved(3)
	c.FormDeleted()
	c.Flush(context.Background())

	events := rec.waitEvents(t, 3)
	byName := map[string]map[string]any{}
	for _, e := range events {
		byName[e["name"].(string)] = e
		if _, ok := e["ts"].(string); !ok {
			t.Fatalf("event without ts: %v", e)
		}
	}
	if got := byName[EventComponentAdded]["type"]; got != "email" {
		t.Fatalf("component_added type = %v", got)
	}
	if got := byName[EventFormSaved]["components"]; got != float64(3) {
		t.Fatalf("form_saved components = %v", got)
	}
	if _, ok := byName[EventFormDeleted]; !ok {
		t.Fatalf("form_deleted missing: %v", events)
	}
}

func TestUploadCrash(t *testing.T) {
	rec := &recorder{}
	srv := rec.server(t)
	c := New(Config{OptIn: true, CrashURL: srv.URL + "/crash", Timeout: 2 * time.Second})
	defer c.Close()
	if c.Enabled() {
		t.Fatalf("client without events URL should report disabled")
	}
	c.UploadCrash([]byte("STACK"))
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rec.mu.Lock()
		n := len(rec.crashes)
		rec.mu.Unlock()
		if n > 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("crash report not uploaded")
}

func TestDisabledClientSendsNothing(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	c := New(Config{OptIn: false, EventsURL: srv.URL, CrashURL: srv.URL, Timeout: time.Second})
	defer c.Close()
	c.FormSaved(1)
	c.UploadCrash([]byte("x"))

	c2 := New(Config{OptIn: true, EventsURL: srv.URL, Timeout: time.Second})
	defer c2.Close()
	c2.Event("", nil)
	c2.Flush(nil)

	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(&hits) != 0 {
		t.Fatalf("expected no requests, got %d", hits)
	}
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	c.ComponentAdded(domain.TypeDate)
	c.FormSaved(0)
	c.UploadCrash(nil)
	c.Flush(context.Background())
	c.Close()
	if c.Enabled() || c.Dropped() != 0 {
		t.Fatalf("nil client must be disabled")
	}
}

func TestFullQueueDrops(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	c := New(Config{OptIn: true, EventsURL: srv.URL, Timeout: 5 * time.Second, QueueSize: 1})
	defer c.Close()
	for i := 0; i < 10; i++ {
		c.FormSaved(i)
	}
	if c.Dropped() == 0 {
		t.Fatalf("expected drops with a one-slot queue")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvOptIn, "yes")
	t.Setenv(EnvURL, " http://127.0.0.1:0/events ")
	t.Setenv(EnvCrashURL, "")
	t.Setenv(EnvTimeoutMs, "100")
	t.Setenv(EnvDebug, "1")

	cfg := FromEnv()
	if !cfg.OptIn || cfg.EventsURL != "http://127.0.0.1:0/events" || cfg.Timeout != 100*time.Millisecond || !cfg.DebugLogging {
		t.Fatalf("FromEnv: %+v", cfg)
	}

	t.Setenv(EnvTimeoutMs, "nope")
	if FromEnv().Timeout != 1500*time.Millisecond {
		t.Fatalf("bad timeout should keep the default")
	}
}

func TestDefaultClient(t *testing.T) {
	t.Setenv(EnvOptIn, "")
	SetDefault(nil)
	if Default().Enabled() {
		t.Fatalf("default client enabled without opt-in")
	}
	c := New(Config{OptIn: true, EventsURL: "http://127.0.0.1:0"})
	SetDefault(c)
	defer SetDefault(nil)
	if !Default().Enabled() {
		t.Fatalf("installed client not returned")
	}
}
