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

import "strings"

// Common illegal/default values used by enums.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
	IllegalDesc  = "unknown"
)

// BaseEnum represents a basic enum contract used by domain types.
type BaseEnum interface {
	IsValid() bool
	Number() int
	String() string
	Desc() string
	Name() string
}

// Direction is the sort direction of an Order.
type Direction int

const (
	Asc Direction = iota
	Desc
)

var _ BaseEnum = Asc

func (d Direction) IsValid() bool { return d == Asc || d == Desc }

func (d Direction) Number() int {
	if !d.IsValid() {
		return IllegalValue
	}
	return int(d)
}

func (d Direction) Name() string {
	switch d {
	case Asc:
		return "ASC"
	case Desc:
		return "DESC"
	}
	return IllegalName
}

func (d Direction) String() string { return d.Name() }

func (d Direction) Desc() string {
	switch d {
	case Asc:
		return "ascending"
	case Desc:
		return "descending"
	}
	return IllegalDesc
}

// ParseDirection accepts "asc" and "desc" in any case.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc":
		return Asc, true
	case "desc":
		return Desc, true
	}
	return Direction(IllegalValue), false
}

// NullHandling places NULL values before or after the others.
type NullHandling int

const (
	NullsNative NullHandling = iota
	NullsFirst
	NullsLast
)

var _ BaseEnum = NullsNative

func (n NullHandling) IsValid() bool { return n >= NullsNative && n <= NullsLast }

func (n NullHandling) Number() int {
	if !n.IsValid() {
		return IllegalValue
	}
	return int(n)
}

func (n NullHandling) Name() string {
	switch n {
	case NullsNative:
		return ""
	case NullsFirst:
		return "NULLS FIRST"
	case NullsLast:
		return "NULLS LAST"
	}
	return IllegalName
}

func (n NullHandling) String() string { return n.Name() }

func (n NullHandling) Desc() string {
	switch n {
	case NullsNative:
		return "store default"
	case NullsFirst:
		return "nulls first"
	case NullsLast:
		return "nulls last"
	}
	return IllegalDesc
}

// ParseNullHandling accepts "nullsfirst", "nulls_first", "nullslast" and
// "nulls_last" in any case.
func ParseNullHandling(s string) (NullHandling, bool) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "") {
	case "":
		return NullsNative, true
	case "nullsfirst":
		return NullsFirst, true
	case "nullslast":
		return NullsLast, true
	}
	return NullHandling(IllegalValue), false
}
