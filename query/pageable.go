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

package query

import (
	"context"

	"github.com/tomoncle/memberquery/types"
)

// FetchFunc loads at most limit rows starting at offset.
type FetchFunc[T any] func(ctx context.Context, offset, limit int) ([]*T, error)

// CountFunc returns the number of rows matching the query, ignoring the window.
type CountFunc func(ctx context.Context) (int, error)

// InferTotal decides whether the total follows from the content window alone.
// returned is the number of rows in the window and more reports whether a row
// exists beyond it. The total is known when nothing lies beyond the window and
// either the window is non-empty or it starts at offset 0; an empty window past
// the start may lie beyond the end and needs a count.
func InferTotal(offset, returned int, more bool) (total int, ok bool) {
	if more {
		return 0, false
	}
	if returned > 0 || offset == 0 {
		return offset + returned, true
	}
	return 0, false
}

// LazyCountPage fetches the content first with one look-ahead row and runs
// count only when InferTotal cannot tell the total. count is never called when
// fetch fails.
func LazyCountPage[T any](ctx context.Context, req *types.PageRequest, fetch FetchFunc[T], count CountFunc) (*types.Pagination[T], error) {
	size := req.GetPageSize()
	offset := req.GetOffset()

	rows, err := fetch(ctx, offset, size+1)
	if err != nil {
		return nil, err
	}
	more := len(rows) > size
	if more {
		rows = rows[:size]
	}

	total, ok := InferTotal(offset, len(rows), more)
	if !ok {
		if total, err = count(ctx); err != nil {
			return nil, err
		}
	}
	return types.NewPagination(req, rows, total), nil
}

// CountFirstPage runs count first and skips the content query when nothing
// matches.
func CountFirstPage[T any](ctx context.Context, req *types.PageRequest, fetch FetchFunc[T], count CountFunc) (*types.Pagination[T], error) {
	total, err := count(ctx)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return types.NewDefaultPagination[T](req), nil
	}
	rows, err := fetch(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, err
	}
	return types.NewPagination(req, rows, total), nil
}

// EagerCountPage always runs both queries, content first.
func EagerCountPage[T any](ctx context.Context, req *types.PageRequest, fetch FetchFunc[T], count CountFunc) (*types.Pagination[T], error) {
	rows, err := fetch(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, err
	}
	total, err := count(ctx)
	if err != nil {
		return nil, err
	}
	return types.NewPagination(req, rows, total), nil
}
