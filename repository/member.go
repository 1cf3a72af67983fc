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
	"errors"
	"fmt"

	"github.com/tomoncle/memberquery/model"
	"github.com/tomoncle/memberquery/query"
	"github.com/uptrace/bun"
)

// MemberRepository stores members and answers the lookups by name and team.
type MemberRepository struct {
	Repository[model.Member]
	db bun.IDB
}

func NewMemberRepository(db bun.IDB) *MemberRepository {
	return &MemberRepository{Repository: NewRepository[model.Member](db), db: db}
}

// Save inserts m and fills in its id.
func (r *MemberRepository) Save(ctx context.Context, m *model.Member) error {
	_, err := r.db.NewInsert().Model(m).Exec(ctx)
	return storeError("member.save", err)
}

// FindByID returns found == false when no member has the id.
func (r *MemberRepository) FindByID(ctx context.Context, id int64) (m *model.Member, found bool, err error) {
	m, err = r.GetOne(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return m, true, nil
}

func (r *MemberRepository) FindAll(ctx context.Context) ([]*model.Member, error) {
	return r.GetAll(ctx)
}

func (r *MemberRepository) FindByName(ctx context.Context, name string) ([]*model.Member, error) {
	return r.List(ctx, query.Eq(colMemberName, name))
}

// FindByTeam returns the members of a team, or the members without a team
// when teamID is nil.
func (r *MemberRepository) FindByTeam(ctx context.Context, teamID *int64) ([]*model.Member, error) {
	if teamID == nil {
		return r.List(ctx, query.IsNull("m.team_id"))
	}
	return r.List(ctx, query.Eq("m.team_id", *teamID))
}

// ChangeTeam moves the member with memberID to team, or out of any team.
func (r *MemberRepository) ChangeTeam(ctx context.Context, memberID int64, team *model.Team) error {
	m, found, err := r.FindByID(ctx, memberID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("op=member.change_team id=%d: %w", memberID, ErrNotFound)
	}
	m.ChangeTeam(team)
	_, err = r.db.NewUpdate().Model(m).Column("team_id").WherePK().Exec(ctx)
	return storeError("member.change_team", err)
}

// BulkAddAge adds delta to the age of every member matching pred and returns
// the number of updated rows.
func (r *MemberRepository) BulkAddAge(ctx context.Context, delta int, pred *query.Predicate) (int64, error) {
	q := r.db.NewUpdate().
		Model((*model.Member)(nil)).
		Set("age = age + ?", delta)
	if pred == nil {
		// bun refuses an UPDATE without WHERE
		pred = query.Raw("1 = 1")
	}
	res, err := query.Where(q, pred).Exec(ctx)
	if err != nil {
		return 0, storeError("member.bulk_add_age", err)
	}
	n, err := res.RowsAffected()
	return n, storeError("member.bulk_add_age", err)
}

// TeamRepository stores teams.
type TeamRepository struct {
	Repository[model.Team]
	db bun.IDB
}

func NewTeamRepository(db bun.IDB) *TeamRepository {
	return &TeamRepository{Repository: NewRepository[model.Team](db), db: db}
}

// Save inserts t and fills in its id.
func (r *TeamRepository) Save(ctx context.Context, t *model.Team) error {
	_, err := r.db.NewInsert().Model(t).Exec(ctx)
	return storeError("team.save", err)
}

// FindByName returns found == false when no team has the name.
func (r *TeamRepository) FindByName(ctx context.Context, name string) (*model.Team, bool, error) {
	teams, err := r.List(ctx, query.Eq(colTeamName, name))
	if err != nil {
		return nil, false, err
	}
	switch len(teams) {
	case 0:
		return nil, false, nil
	case 1:
		return teams[0], true, nil
	default:
		return nil, false, ErrNonUniqueResult
	}
}

// Delete removes the team and unassigns its members in one transaction, so
// the outcome does not depend on foreign key support in the dialect.
func (r *TeamRepository) Delete(ctx context.Context, id any) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewUpdate().
			Model((*model.Member)(nil)).
			Set("team_id = NULL").
			Where("team_id = ?", id).
			Exec(ctx)
		if err != nil {
			return storeError("team.delete", err)
		}
		return r.Repository.WithDB(tx).Delete(ctx, id)
	})
}
