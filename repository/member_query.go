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
	"context"
	"strings"

	"github.com/tomoncle/memberquery/database"
	"github.com/tomoncle/memberquery/model"
	"github.com/tomoncle/memberquery/query"
	"github.com/tomoncle/memberquery/types"
	"github.com/uptrace/bun"
)

// Paging strategy labels reported to the metrics.
const (
	StrategyLazyCount  = "lazy_count"
	StrategyCountFirst = "count_first"
	StrategyEager      = "eager"
)

// memberSortColumns maps the projection aliases accepted in orders to columns.
var memberSortColumns = map[string]string{
	"member_id":   "m.id",
	"member_name": "m.name",
	"member_age":  "m.age",
	"team_id":     "t.id",
	"team_name":   "t.name",
}

// SortableMemberProperties lists the order properties accepted by the search.
func SortableMemberProperties() []string {
	return []string{"member_id", "member_name", "member_age", "team_id", "team_name"}
}

// MemberQueryRepository runs the member/team search projection.
type MemberQueryRepository struct {
	db     bun.IDB
	policy AgePolicy
}

// NewMemberQueryRepository binds the search to db using the age window of cfg.
func NewMemberQueryRepository(db bun.IDB, cfg database.QueryPolicyConfig) *MemberQueryRepository {
	return &MemberQueryRepository{db: db, policy: AgePolicyFrom(cfg)}
}

func (r *MemberQueryRepository) joined() *bun.SelectQuery {
	return r.db.NewSelect().
		Model((*model.Member)(nil)).
		Join("LEFT JOIN teams AS t ON t.id = m.team_id")
}

func (r *MemberQueryRepository) projection(pred *query.Predicate) *bun.SelectQuery {
	q := r.joined().
		ColumnExpr("m.id AS member_id").
		ColumnExpr("m.name AS member_name").
		ColumnExpr("m.age AS member_age").
		ColumnExpr("t.id AS team_id").
		ColumnExpr("t.name AS team_name")
	return query.Where(q, pred)
}

func applyMemberOrders(q *bun.SelectQuery, orders []types.Order) (*bun.SelectQuery, error) {
	for _, o := range orders {
		col, ok := memberSortColumns[strings.ToLower(o.Property)]
		if !ok {
			return nil, NewValidationError("sort", "unknown property %q, expected one of %s",
				o.Property, strings.Join(SortableMemberProperties(), ", "))
		}
		q = orderBy(q, col, o)
	}
	return q, nil
}

// orderBy sorts q by col in o's direction with o's null placement.
func orderBy(q *bun.SelectQuery, col string, o types.Order) *bun.SelectQuery {
	// "x IS NULL" is 0 for values and 1 for NULL on every supported dialect
	switch o.Nulls {
	case types.NullsFirst:
		q = q.OrderExpr("? IS NULL DESC", bun.Ident(col))
	case types.NullsLast:
		q = q.OrderExpr("? IS NULL ASC", bun.Ident(col))
	}
	return q.OrderExpr("? "+o.Direction.Name(), bun.Ident(col))
}

func (r *MemberQueryRepository) predicate(cond *model.MemberSearchCondition) (*query.Predicate, error) {
	return MemberSearchPredicate(cond, r.policy)
}

func (r *MemberQueryRepository) fetcher(pred *query.Predicate, orders []types.Order) query.FetchFunc[model.MemberTeamDto] {
	return func(ctx context.Context, offset, limit int) ([]*model.MemberTeamDto, error) {
		q, err := applyMemberOrders(r.projection(pred), orders)
		if err != nil {
			return nil, err
		}
		rows := make([]*model.MemberTeamDto, 0, limit)
		if err := q.Offset(offset).Limit(limit).Scan(ctx, &rows); err != nil {
			return nil, storeError("member.search", err)
		}
		return rows, nil
	}
}

// counter returns the count supplier and a flag set once it runs.
func (r *MemberQueryRepository) counter(pred *query.Predicate) (query.CountFunc, *bool) {
	executed := new(bool)
	return func(ctx context.Context) (int, error) {
		*executed = true
		n, err := query.Where(r.joined(), pred).Count(ctx)
		return n, storeError("member.count", err)
	}, executed
}

// Search returns every match in store order.
func (r *MemberQueryRepository) Search(ctx context.Context, cond *model.MemberSearchCondition, orders ...types.Order) ([]*model.MemberTeamDto, error) {
	pred, err := r.predicate(cond)
	if err != nil {
		return nil, err
	}
	q, err := applyMemberOrders(r.projection(pred), orders)
	if err != nil {
		return nil, err
	}
	rows := make([]*model.MemberTeamDto, 0)
	if err := q.Scan(ctx, &rows); err != nil {
		return nil, storeError("member.search", err)
	}
	return rows, nil
}

// SearchPage fetches the window first and counts only when the total cannot
// be inferred from it. A search matching nothing still runs the content
// query; SearchPageCounted skips it when the count is zero.
func (r *MemberQueryRepository) SearchPage(ctx context.Context, cond *model.MemberSearchCondition, page *types.PageRequest) (*types.Pagination[model.MemberTeamDto], error) {
	return r.page(ctx, StrategyLazyCount, query.LazyCountPage[model.MemberTeamDto], cond, page)
}

// SearchPageCounted counts first and returns an empty page without the
// content query when nothing matches.
func (r *MemberQueryRepository) SearchPageCounted(ctx context.Context, cond *model.MemberSearchCondition, page *types.PageRequest) (*types.Pagination[model.MemberTeamDto], error) {
	return r.page(ctx, StrategyCountFirst, query.CountFirstPage[model.MemberTeamDto], cond, page)
}

// SearchPageSimple always runs the content and the count query.
func (r *MemberQueryRepository) SearchPageSimple(ctx context.Context, cond *model.MemberSearchCondition, page *types.PageRequest) (*types.Pagination[model.MemberTeamDto], error) {
	return r.page(ctx, StrategyEager, query.EagerCountPage[model.MemberTeamDto], cond, page)
}

type pageStrategy func(context.Context, *types.PageRequest, query.FetchFunc[model.MemberTeamDto], query.CountFunc) (*types.Pagination[model.MemberTeamDto], error)

func (r *MemberQueryRepository) page(ctx context.Context, strategy string, run pageStrategy, cond *model.MemberSearchCondition, page *types.PageRequest) (*types.Pagination[model.MemberTeamDto], error) {
	pred, err := r.predicate(cond)
	if err != nil {
		return nil, err
	}
	// reject bad orders before any query runs
	if _, err := applyMemberOrders(r.db.NewSelect(), page.GetOrders()); err != nil {
		return nil, err
	}
	count, executed := r.counter(pred)
	result, err := run(ctx, page, r.fetcher(pred, page.GetOrders()), count)
	if err != nil {
		return nil, err
	}
	database.ObservePageCount(strategy, *executed)
	return result, nil
}

// SearchOne returns the single match. found is false when nothing matches and
// ErrNonUniqueResult is returned when more than one row does.
func (r *MemberQueryRepository) SearchOne(ctx context.Context, cond *model.MemberSearchCondition) (dto *model.MemberTeamDto, found bool, err error) {
	pred, err := r.predicate(cond)
	if err != nil {
		return nil, false, err
	}
	rows, err := r.fetcher(pred, nil)(ctx, 0, 2)
	if err != nil {
		return nil, false, err
	}
	switch len(rows) {
	case 0:
		return nil, false, nil
	case 1:
		return rows[0], true, nil
	default:
		return nil, false, ErrNonUniqueResult
	}
}

// TeamStats aggregates member ages per team, teams without members included,
// ordered by team name.
func (r *MemberQueryRepository) TeamStats(ctx context.Context) ([]*model.TeamStat, error) {
	stats := make([]*model.TeamStat, 0)
	err := r.db.NewSelect().
		Model((*model.Team)(nil)).
		ColumnExpr("t.id AS team_id").
		ColumnExpr("t.name AS team_name").
		ColumnExpr("COUNT(m.id) AS member_count").
		ColumnExpr("COALESCE(SUM(m.age), 0) AS sum_age").
		ColumnExpr("COALESCE(AVG(m.age), 0.0) AS avg_age").
		ColumnExpr("COALESCE(MIN(m.age), 0) AS min_age").
		ColumnExpr("COALESCE(MAX(m.age), 0) AS max_age").
		Join("LEFT JOIN members AS m ON m.team_id = t.id").
		GroupExpr("t.id, t.name").
		OrderExpr("t.name ASC").
		Scan(ctx, &stats)
	if err != nil {
		return nil, storeError("team.stats", err)
	}
	return stats, nil
}
