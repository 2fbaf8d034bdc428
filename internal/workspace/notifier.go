/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package workspace

import (
	"sync/atomic"
	"time"
)

// Level is the severity of a Notice.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notice is a short-lived message for the user, shown by front ends as a
// toast or a line on stderr.
type Notice struct {
	Level  Level
	Title  string
	Detail string
	At     time.Time
}

const defaultNoticeQueue = 32

// Notifier is a bounded queue of notices. Posting never blocks: when the
// queue is full the notice is dropped and counted.
type Notifier struct {
	q       chan Notice
	dropped atomic.Int64
	now     func() time.Time
}

// NewNotifier returns a queue holding up to size notices (32 when size <= 0).
func NewNotifier(size int) *Notifier {
	if size <= 0 {
		size = defaultNoticeQueue
	}
	return &Notifier{q: make(chan Notice, size), now: time.Now}
}

// Post queues a notice.
func (n *Notifier) Post(level Level, title, detail string) {
	if n == nil {
		return
	}
	select {
	case n.q <- Notice{Level: level, Title: title, Detail: detail, At: n.now()}:
	default:
		n.dropped.Add(1)
	}
}

// C exposes the queue for front ends that consume notices as they arrive.
func (n *Notifier) C() <-chan Notice { return n.q }

// Drain returns and removes every queued notice.
func (n *Notifier) Drain() []Notice {
	var out []Notice
	for {
		select {
		case nt := <-n.q:
			out = append(out, nt)
		default:
			return out
		}
	}
}

// Dropped is the number of notices lost to a full queue.
func (n *Notifier) Dropped() int64 { return n.dropped.Load() }
