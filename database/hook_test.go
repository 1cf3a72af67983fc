/*
 * Copyright 2025 tomoncle.
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

package database

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
)

type recordingLogger struct {
	warnings []string
}

func (l *recordingLogger) SetLevel(LogLevel) {}
func (l *recordingLogger) Debug(string, ...interface{}) {}
func (l *recordingLogger) Info(string, ...interface{}) {}
func (l *recordingLogger) Error(string, ...interface{}) {}
func (l *recordingLogger) Warn(msg string, f ...interface{}) {
	l.warnings = append(l.warnings, fmt.Sprint(msg, f))
}

func event(query string, took time.Duration, err error) *bun.QueryEvent {
	return &bun.QueryEvent{Query: query, StartTime: time.Now().Add(-took), Err: err}
}

func TestQueryHookWritesStatements(t *testing.T) {
	t.Setenv("BUNDEBUG", "2")
	var buf bytes.Buffer
	h := NewQueryHook(&buf)

	h.AfterQuery(context.Background(), event(`SELECT count(*) FROM "members" AS "m"`, time.Millisecond, nil))
	assert.Contains(t, buf.String(), `FROM "members"`)
	assert.Contains(t, buf.String(), "[BUN]")

	buf.Reset()
	EnableBunSqlSilent(true)
	h.AfterQuery(context.Background(), event("SELECT 1", 0, nil))
	EnableBunSqlSilent(false)
	assert.Empty(t, buf.String())
}

func TestQueryHookFailuresOnly(t *testing.T) {
	t.Setenv("BUNDEBUG", "1")
	var buf bytes.Buffer
	h := NewQueryHook(&buf)

	h.AfterQuery(context.Background(), event("SELECT 1", 0, nil))
	assert.Empty(t, buf.String())

	h.AfterQuery(context.Background(), event("SELECT nope", 0, errors.New("no such column: nope")))
	assert.Contains(t, buf.String(), "no such column")
}

func TestSlowQueryHook(t *testing.T) {
	logger := &recordingLogger{}
	h := NewSlowQueryHook(50*time.Millisecond, logger)

	h.AfterQuery(context.Background(), event("SELECT fast", time.Millisecond, nil))
	assert.Empty(t, logger.warnings)

	h.AfterQuery(context.Background(), event("SELECT slow", time.Second, nil))
	assert.Len(t, logger.warnings, 1)
	assert.Contains(t, logger.warnings[0], "SELECT slow")

	h.AfterQuery(context.Background(), event("SELECT broken", time.Second, errors.New("boom")))
	assert.Len(t, logger.warnings, 1)
}
