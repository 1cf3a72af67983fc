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
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/tomoncle/memberquery/database"
	"github.com/tomoncle/memberquery/model"
	"github.com/tomoncle/memberquery/query"
)

const (
	colMemberName = "m.name"
	colMemberAge  = "m.age"
	colTeamName   = "t.name"
)

// AgePolicy is the window substituted for a missing age bound.
type AgePolicy struct {
	Floor   int
	Ceiling int
}

// DefaultAgePolicy is the [0, 100] window.
func DefaultAgePolicy() AgePolicy {
	return AgePolicyFrom(database.DefaultQueryPolicy())
}

// AgePolicyFrom reads the window from the query configuration.
func AgePolicyFrom(cfg database.QueryPolicyConfig) AgePolicy {
	return AgePolicy{Floor: cfg.AgeFloor, Ceiling: cfg.AgeCeiling}
}

func hasText(s string) bool {
	return strings.TrimSpace(s) != ""
}

// EqualsMemberName matches the member name exactly, or nothing when name is blank.
func EqualsMemberName(name string) *query.Predicate {
	if !hasText(name) {
		return nil
	}
	return query.Eq(colMemberName, name)
}

// EqualsTeamName matches the team name exactly, or nothing when name is blank.
func EqualsTeamName(name string) *query.Predicate {
	if !hasText(name) {
		return nil
	}
	return query.Eq(colTeamName, name)
}

// AgeBetween matches goe <= age <= loe. A single missing bound is replaced by
// the policy floor or ceiling; with both missing there is no constraint.
func AgeBetween(goe, loe *int, policy AgePolicy) (*query.Predicate, error) {
	if goe == nil && loe == nil {
		return nil, nil
	}
	lo, hi := policy.Floor, policy.Ceiling
	if goe != nil {
		lo = *goe
	}
	if loe != nil {
		hi = *loe
	}
	if lo > hi {
		return nil, NewValidationError("age", "lower bound %d is greater than upper bound %d", lo, hi)
	}
	return query.Between(colMemberAge, lo, hi), nil
}

// MemberSearchPredicate validates cond and folds its present conditions into
// one predicate. It returns nil when every condition is absent.
func MemberSearchPredicate(cond *model.MemberSearchCondition, policy AgePolicy) (*query.Predicate, error) {
	if cond == nil {
		return nil, nil
	}
	if err := ValidateCondition(cond); err != nil {
		return nil, err
	}
	age, err := AgeBetween(cond.AgeGoe, cond.AgeLoe, policy)
	if err != nil {
		return nil, err
	}
	return query.And(
		EqualsMemberName(cond.MemberName),
		EqualsTeamName(cond.TeamName),
		age,
	), nil
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func conditionValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// ValidateCondition checks the field constraints of cond and reports the
// first violation as a ValidationError.
func ValidateCondition(cond *model.MemberSearchCondition) error {
	err := conditionValidator().Struct(cond)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return NewValidationError(fe.Field(), "failed %q constraint (param %q, value %v)", fe.Tag(), fe.Param(), fe.Value())
	}
	return NewValidationError("condition", "%v", err)
}
