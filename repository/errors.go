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

package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/tomoncle/memberquery/database"
)

var (
	ErrNotFound        = errors.New("repository: not found")
	ErrNonUniqueResult = errors.New("repository: query returned more than one row")
	ErrValidation      = errors.New("repository: invalid input")
)

// ValidationError reports a malformed search input. It matches ErrValidation.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StoreError wraps a failure of the underlying database. Kind classifies the
// driver error.
type StoreError struct {
	Op   string
	Kind database.SQLError
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("op=%s kind=%s: %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// storeError wraps err for op. Domain errors and errors that are already
// wrapped pass through.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	switch {
	case errors.As(err, &se),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrNonUniqueResult),
		errors.Is(err, ErrValidation):
		return err
	}
	_, kind := database.IsSqlError(err)
	return &StoreError{Op: op, Kind: kind, Err: err}
}

// notFound maps sql.ErrNoRows to ErrNotFound and wraps everything else.
func notFound(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("op=%s: %w", op, ErrNotFound)
	}
	return storeError(op, err)
}
