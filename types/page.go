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
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Order sorts by a projection property.
type Order struct {
	Property  string
	Direction Direction
	Nulls     NullHandling
}

// NewOrder returns an order on property with native null placement.
func NewOrder(property string, direction Direction) Order {
	return Order{Property: property, Direction: direction}
}

// WithNulls returns a copy of o with the given null placement.
func (o Order) WithNulls(n NullHandling) Order {
	o.Nulls = n
	return o
}

// String renders "member_age DESC" or "member_name ASC NULLS LAST".
func (o Order) String() string {
	s := o.Property + " " + o.Direction.String()
	if o.Nulls != NullsNative {
		s += " " + o.Nulls.String()
	}
	return s
}

// PageLimits bounds the page size of requests built from user input.
type PageLimits struct {
	DefaultSize int
	MaxSize     int
}

// DefaultPageLimits uses a page size of 20 capped at 100.
var DefaultPageLimits = PageLimits{DefaultSize: DefaultPageSize, MaxSize: MaxPageSize}

// MaxPage is the largest page index for size whose window, including one
// look-ahead row, ends within the int range.
func MaxPage(size int) int {
	if size < 1 {
		size = 1
	}
	return (math.MaxInt-1)/size - 1
}

// Size returns the page size Request would use for size.
func (l PageLimits) Size(size int) int {
	def := l.DefaultSize
	if def < 1 {
		def = DefaultPageSize
	}
	if size < 1 {
		size = def
	}
	if l.MaxSize > 0 && size > l.MaxSize {
		size = l.MaxSize
	}
	return size
}

// Request builds a normalized PageRequest: a negative page becomes 0, a
// non-positive size becomes DefaultSize, sizes above MaxSize are capped and
// pages beyond MaxPage are clamped to it.
func (l PageLimits) Request(page, size int, orders ...Order) *PageRequest {
	size = l.Size(size)
	if page < 0 {
		page = 0
	}
	if last := MaxPage(size); page > last {
		page = last
	}
	return &PageRequest{page: page, pageSize: size, orders: append([]Order(nil), orders...)}
}

// PageRequest is a zero-based page window with optional ordering. It is
// immutable once constructed.
type PageRequest struct {
	page     int
	pageSize int
	orders   []Order
}

// NewPageRequest builds a request with DefaultPageLimits.
func NewPageRequest(page, pageSize int, orders ...Order) *PageRequest {
	return DefaultPageLimits.Request(page, pageSize, orders...)
}

func (p *PageRequest) GetPage() int { return p.page }

func (p *PageRequest) GetPageSize() int { return p.pageSize }

// GetOffset returns page * pageSize.
func (p *PageRequest) GetOffset() int { return p.page * p.pageSize }

// GetOrders returns a copy of the requested orders.
func (p *PageRequest) GetOrders() []Order {
	return append([]Order(nil), p.orders...)
}

// Next returns the request for the following page. The last addressable
// page is its own successor.
func (p *PageRequest) Next() *PageRequest {
	next := p.page + 1
	if next > MaxPage(p.pageSize) {
		next = p.page
	}
	return &PageRequest{page: next, pageSize: p.pageSize, orders: p.orders}
}

func (p *PageRequest) String() string {
	parts := make([]string, len(p.orders))
	for i, o := range p.orders {
		parts[i] = o.String()
	}
	return "page=" + strconv.Itoa(p.page) + " size=" + strconv.Itoa(p.pageSize) + " sort=[" + strings.Join(parts, ", ") + "]"
}

// Pagination holds paged result items along with pagination metadata.
type Pagination[T any] struct {
	Page        int  `json:"page"`
	PageSize    int  `json:"pageSize"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	First       bool `json:"first"`
	Last        bool `json:"last"`
	HasNext     bool `json:"hasNext"`
	HasPrevious bool `json:"hasPrevious"`
	Items       []*T `json:"items"`
}

// NewPagination builds a page for req holding items out of total elements.
func NewPagination[T any](req *PageRequest, items []*T, total int) *Pagination[T] {
	if items == nil {
		items = make([]*T, 0)
	}
	p := &Pagination[T]{
		Page:     req.GetPage(),
		PageSize: req.GetPageSize(),
		Total:    total,
		Items:    items,
	}
	if p.PageSize > 0 {
		p.TotalPages = (total + p.PageSize - 1) / p.PageSize
	}
	p.First = p.Page == 0
	p.HasPrevious = p.Page > 0
	p.HasNext = p.Page+1 < p.TotalPages
	p.Last = !p.HasNext
	return p
}

// NewDefaultPagination constructs an empty page for req.
func NewDefaultPagination[T any](req *PageRequest) *Pagination[T] {
	return NewPagination[T](req, nil, 0)
}
