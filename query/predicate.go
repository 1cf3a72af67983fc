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
	"fmt"
	"strings"

	"github.com/uptrace/bun"
)

// Predicate is an immutable boolean SQL fragment with its bind arguments.
// A nil *Predicate places no constraint on the query.
type Predicate struct {
	expr string
	args []interface{}
}

// Raw wraps a bun query fragment, e.g. Raw("? > ?", bun.Ident("m.age"), 18).
func Raw(expr string, args ...interface{}) *Predicate {
	return &Predicate{expr: expr, args: append([]interface{}(nil), args...)}
}

// Eq matches column = value.
func Eq(column string, value interface{}) *Predicate {
	return Raw("? = ?", bun.Ident(column), value)
}

// Goe matches column >= value.
func Goe(column string, value interface{}) *Predicate {
	return Raw("? >= ?", bun.Ident(column), value)
}

// Loe matches column <= value.
func Loe(column string, value interface{}) *Predicate {
	return Raw("? <= ?", bun.Ident(column), value)
}

// Between matches lo <= column <= hi.
func Between(column string, lo, hi interface{}) *Predicate {
	return Raw("? BETWEEN ? AND ?", bun.Ident(column), lo, hi)
}

// IsNull matches rows where column is NULL.
func IsNull(column string) *Predicate {
	return Raw("? IS NULL", bun.Ident(column))
}

// And joins the present predicates. It returns nil when none is present.
func And(preds ...*Predicate) *Predicate {
	return join(" AND ", preds, false)
}

// Or joins the predicates. An absent operand matches everything, which makes
// the whole disjunction absent.
func Or(preds ...*Predicate) *Predicate {
	return join(" OR ", preds, true)
}

func join(op string, preds []*Predicate, absentWins bool) *Predicate {
	present := make([]*Predicate, 0, len(preds))
	for _, p := range preds {
		if p == nil {
			if absentWins {
				return nil
			}
			continue
		}
		present = append(present, p)
	}
	switch len(present) {
	case 0:
		return nil
	case 1:
		return present[0]
	}

	parts := make([]string, len(present))
	var args []interface{}
	for i, p := range present {
		parts[i] = "(" + p.expr + ")"
		args = append(args, p.args...)
	}
	return &Predicate{expr: strings.Join(parts, op), args: args}
}

// Expr returns the SQL fragment with "?" placeholders.
func (p *Predicate) Expr() string {
	if p == nil {
		return ""
	}
	return p.expr
}

// Args returns a copy of the bind arguments.
func (p *Predicate) Args() []interface{} {
	if p == nil {
		return nil
	}
	return append([]interface{}(nil), p.args...)
}

func (p *Predicate) String() string {
	if p == nil {
		return "<none>"
	}
	return fmt.Sprintf("%s %v", p.expr, p.args)
}

// Filterable is implemented by bun select, update and delete queries.
type Filterable[Q any] interface {
	Where(query string, args ...interface{}) Q
}

// Where applies p to q. A nil predicate leaves q untouched.
func Where[Q Filterable[Q]](q Q, p *Predicate) Q {
	if p == nil {
		return q
	}
	return q.Where(p.expr, p.args...)
}
