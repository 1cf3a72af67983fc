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

package api

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/tomoncle/memberquery/model"
	"github.com/tomoncle/memberquery/repository"
	"github.com/tomoncle/memberquery/types"
)

// parseCondition reads memberName, teamName, ageGoe and ageLoe. Missing or
// empty parameters leave the field absent.
func parseCondition(q url.Values) (*model.MemberSearchCondition, error) {
	cond := &model.MemberSearchCondition{
		MemberName: q.Get("memberName"),
		TeamName:   q.Get("teamName"),
	}
	var err error
	if cond.AgeGoe, err = optionalInt(q, "ageGoe"); err != nil {
		return nil, err
	}
	if cond.AgeLoe, err = optionalInt(q, "ageLoe"); err != nil {
		return nil, err
	}
	return cond, nil
}

func optionalInt(q url.Values, key string) (*int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, repository.NewValidationError(key, "%q is not an integer", raw)
	}
	return &v, nil
}

// parseOrders reads every sort parameter of the form
// "property[,asc|desc][,nulls_first|nulls_last]".
func parseOrders(q url.Values) ([]types.Order, error) {
	values := q["sort"]
	orders := make([]types.Order, 0, len(values))
	for _, v := range values {
		parts := strings.Split(v, ",")
		prop := strings.TrimSpace(parts[0])
		if prop == "" {
			return nil, repository.NewValidationError("sort", "empty property in %q", v)
		}
		order := types.NewOrder(prop, types.Asc)
		for _, p := range parts[1:] {
			p = strings.TrimSpace(p)
			if d, ok := types.ParseDirection(p); ok {
				order.Direction = d
				continue
			}
			if n, ok := types.ParseNullHandling(p); ok {
				order.Nulls = n
				continue
			}
			return nil, repository.NewValidationError("sort", "unknown modifier %q in %q", p, v)
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// parsePage reads page and size and normalizes them with limits.
func parsePage(q url.Values, limits types.PageLimits) (*types.PageRequest, error) {
	page, err := optionalInt(q, "page")
	if err != nil {
		return nil, err
	}
	size, err := optionalInt(q, "size")
	if err != nil {
		return nil, err
	}
	orders, err := parseOrders(q)
	if err != nil {
		return nil, err
	}
	p, s := 0, 0
	if page != nil {
		p = *page
	}
	if size != nil {
		s = *size
	}
	if last := types.MaxPage(limits.Size(s)); p > last {
		return nil, repository.NewValidationError("page", "must be at most %d for size %d", last, limits.Size(s))
	}
	return limits.Request(p, s, orders...), nil
}
