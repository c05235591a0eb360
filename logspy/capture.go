/*
 * Copyright 2020 grant@lastweekend.com.au
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package logspy records log messages for verification during tests.
package logspy

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Levels above slog.LevelError, for code that distinguishes them
const (
	LevelCritical = slog.Level(12)
	LevelFatal    = slog.Level(16)
)

type store struct {
	mutex    sync.Mutex
	messages map[slog.Level][]string
}

// Capture is a slog.Handler that keeps the message of every record, per level.
// Attributes and groups are accepted and dropped.
type Capture struct {
	*store
}

var _ slog.Handler = Capture{}

// NewCapture returns an empty Capture
func NewCapture() Capture {
	return Capture{&store{messages: make(map[slog.Level][]string)}}
}

// Logger returns a logger writing to c
func (c Capture) Logger() *slog.Logger {
	return slog.New(c)
}

// Enabled is true for every level
func (c Capture) Enabled(context.Context, slog.Level) bool {
	return true
}

// Handle keeps the record's message under its level
func (c Capture) Handle(_ context.Context, r slog.Record) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.messages[r.Level] = append(c.messages[r.Level], r.Message)
	return nil
}

// WithAttrs drops attrs and returns c
func (c Capture) WithAttrs([]slog.Attr) slog.Handler {
	return c
}

// WithGroup drops the group and returns c
func (c Capture) WithGroup(string) slog.Handler {
	return c
}

// Messages returns the messages logged at level, oldest first
func (c Capture) Messages(level slog.Level) []string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return append([]string{}, c.messages[level]...)
}

// ContainsLog reports whether substr is part of any message logged at level
func (c Capture) ContainsLog(level slog.Level, substr string) bool {
	for _, msg := range c.Messages(level) {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}
