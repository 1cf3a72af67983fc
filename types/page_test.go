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

package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequestNormalization(t *testing.T) {
	r := NewPageRequest(-3, 0)
	assert.Equal(t, 0, r.GetPage())
	assert.Equal(t, DefaultPageSize, r.GetPageSize())
	assert.Equal(t, 0, r.GetOffset())

	r = NewPageRequest(2, 500)
	assert.Equal(t, MaxPageSize, r.GetPageSize())
	assert.Equal(t, 2*MaxPageSize, r.GetOffset())

	limits := PageLimits{DefaultSize: 5, MaxSize: 8}
	assert.Equal(t, 5, limits.Request(0, -1).GetPageSize())
	assert.Equal(t, 8, limits.Request(0, 9).GetPageSize())
	assert.Equal(t, 21, limits.Request(3, 7).GetOffset())
}

func TestPageRequestClampsHugePages(t *testing.T) {
	r := NewPageRequest(1<<62, 2)
	assert.Equal(t, MaxPage(2), r.GetPage())
	assert.Positive(t, r.GetOffset())
	assert.LessOrEqual(t, r.GetOffset()+r.GetPageSize(), math.MaxInt-1)

	r = NewPageRequest(math.MaxInt, 0)
	assert.Equal(t, MaxPage(DefaultPageSize), r.GetPage())
	assert.Positive(t, r.GetOffset())

	last := NewPageRequest(MaxPage(3), 3)
	assert.Equal(t, last.GetPage(), last.Next().GetPage())

	p := NewPagination[int](r, nil, 4)
	assert.False(t, p.HasNext)
	assert.True(t, p.HasPrevious)
}

func TestPageLimitsSize(t *testing.T) {
	limits := PageLimits{DefaultSize: 5, MaxSize: 8}
	assert.Equal(t, 5, limits.Size(0))
	assert.Equal(t, 8, limits.Size(50))
	assert.Equal(t, 6, limits.Size(6))
	assert.Equal(t, DefaultPageSize, PageLimits{}.Size(-1))
	assert.Equal(t, math.MaxInt-2, MaxPage(0))
}

func TestPageRequestOrdersAreCopied(t *testing.T) {
	orders := []Order{NewOrder("member_age", Desc)}
	r := NewPageRequest(0, 10, orders...)
	orders[0].Property = "changed"

	got := r.GetOrders()
	assert.Equal(t, "member_age", got[0].Property)
	got[0].Property = "changed again"
	assert.Equal(t, "member_age", r.GetOrders()[0].Property)
}

func TestPageRequestNext(t *testing.T) {
	r := NewPageRequest(0, 3, NewOrder("member_name", Asc).WithNulls(NullsLast))
	next := r.Next()
	assert.Equal(t, 1, next.GetPage())
	assert.Equal(t, 3, next.GetOffset())
	assert.Equal(t, 0, r.GetPage())
	assert.Equal(t, "page=1 size=3 sort=[member_name ASC NULLS LAST]", next.String())
}

func TestPaginationMetadata(t *testing.T) {
	one, two := 1, 2
	p := NewPagination(NewPageRequest(0, 2), []*int{&one, &two}, 5)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.First)
	assert.False(t, p.Last)
	assert.True(t, p.HasNext)
	assert.False(t, p.HasPrevious)

	p = NewPagination(NewPageRequest(2, 2), []*int{&one}, 5)
	assert.True(t, p.Last)
	assert.False(t, p.HasNext)
	assert.True(t, p.HasPrevious)

	empty := NewDefaultPagination[int](NewPageRequest(0, 2))
	assert.Equal(t, 0, empty.TotalPages)
	assert.True(t, empty.Last)
	assert.NotNil(t, empty.Items)
}

func TestDirectionAndNullHandlingEnums(t *testing.T) {
	d, ok := ParseDirection("DESC")
	assert.True(t, ok)
	assert.Equal(t, Desc, d)
	assert.Equal(t, "descending", d.Desc())

	_, ok = ParseDirection("sideways")
	assert.False(t, ok)
	assert.False(t, Direction(IllegalValue).IsValid())
	assert.Equal(t, IllegalName, Direction(7).Name())

	n, ok := ParseNullHandling("nulls_last")
	assert.True(t, ok)
	assert.Equal(t, NullsLast, n)
	assert.Equal(t, "member_name DESC NULLS LAST", NewOrder("member_name", Desc).WithNulls(n).String())

	_, ok = ParseNullHandling("nullsmiddle")
	assert.False(t, ok)
}
