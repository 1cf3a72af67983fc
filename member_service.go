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

package memberquery

import (
	"context"
	"sync"

	"github.com/tomoncle/memberquery/database"
	"github.com/tomoncle/memberquery/model"
	"github.com/tomoncle/memberquery/repository"
	"github.com/tomoncle/memberquery/types"
	"github.com/uptrace/bun"
)

// MemberService is the entry point of the member/team search and of the
// member and team writes.
type MemberService interface {
	// Search returns every member matching cond, in store order unless
	// orders are given.
	Search(ctx context.Context, cond *model.MemberSearchCondition, orders ...types.Order) ([]*model.MemberTeamDto, error)

	// SearchPage fetches the page first and counts only when the total
	// cannot be inferred from it.
	SearchPage(ctx context.Context, cond *model.MemberSearchCondition, page *types.PageRequest) (*types.Pagination[model.MemberTeamDto], error)

	// SearchPageCounted counts first and skips the content query when
	// nothing matches.
	SearchPageCounted(ctx context.Context, cond *model.MemberSearchCondition, page *types.PageRequest) (*types.Pagination[model.MemberTeamDto], error)

	// SearchPageSimple always runs both queries.
	SearchPageSimple(ctx context.Context, cond *model.MemberSearchCondition, page *types.PageRequest) (*types.Pagination[model.MemberTeamDto], error)

	// SearchOne returns the single match, found == false when there is none
	// and repository.ErrNonUniqueResult when there are several.
	SearchOne(ctx context.Context, cond *model.MemberSearchCondition) (*model.MemberTeamDto, bool, error)

	TeamStats(ctx context.Context) ([]*model.TeamStat, error)

	SaveMember(ctx context.Context, m *model.Member) error
	FindMember(ctx context.Context, id int64) (*model.Member, bool, error)
	MembersOfTeam(ctx context.Context, teamID *int64) ([]*model.Member, error)
	ChangeTeam(ctx context.Context, memberID int64, team *model.Team) error
	DeleteMember(ctx context.Context, id int64) error

	SaveTeam(ctx context.Context, t *model.Team) error
	FindTeam(ctx context.Context, name string) (*model.Team, bool, error)
	// DeleteTeam removes the team and leaves its members without a team.
	DeleteTeam(ctx context.Context, id int64) error

	// Seed loads the sample teams and members unless they already exist.
	Seed(ctx context.Context) error
}

type memberServiceImpl struct {
	db     bun.IDB
	policy *database.QueryPolicyConfig

	once    sync.Once
	search  *repository.MemberQueryRepository
	members *repository.MemberRepository
	teams   *repository.TeamRepository
}

// NewMemberService returns a MemberService bound to the global database and
// its query policy, resolved on first use.
func NewMemberService() MemberService {
	return &memberServiceImpl{}
}

// NewMemberServiceWithDB returns a MemberService bound to db.
func NewMemberServiceWithDB(db bun.IDB, policy database.QueryPolicyConfig) MemberService {
	return &memberServiceImpl{db: db, policy: &policy}
}

func (s *memberServiceImpl) init() {
	s.once.Do(func() {
		db := s.db
		if db == nil {
			db = database.GetDB()
		}
		policy := database.DefaultQueryPolicy()
		if s.policy != nil {
			policy = *s.policy
		} else if cfg := database.GetConfig(); cfg != nil {
			policy = cfg.QueryPolicy
		}
		s.db = db
		s.search = repository.NewMemberQueryRepository(db, policy)
		s.members = repository.NewMemberRepository(db)
		s.teams = repository.NewTeamRepository(db)
	})
}

func (s *memberServiceImpl) Search(ctx context.Context, cond *model.MemberSearchCondition, orders ...types.Order) ([]*model.MemberTeamDto, error) {
	s.init()
	return s.search.Search(ctx, cond, orders...)
}

func (s *memberServiceImpl) SearchPage(ctx context.Context, cond *model.MemberSearchCondition, page *types.PageRequest) (*types.Pagination[model.MemberTeamDto], error) {
	s.init()
	return s.search.SearchPage(ctx, cond, page)
}

func (s *memberServiceImpl) SearchPageCounted(ctx context.Context, cond *model.MemberSearchCondition, page *types.PageRequest) (*types.Pagination[model.MemberTeamDto], error) {
	s.init()
	return s.search.SearchPageCounted(ctx, cond, page)
}

func (s *memberServiceImpl) SearchPageSimple(ctx context.Context, cond *model.MemberSearchCondition, page *types.PageRequest) (*types.Pagination[model.MemberTeamDto], error) {
	s.init()
	return s.search.SearchPageSimple(ctx, cond, page)
}

func (s *memberServiceImpl) SearchOne(ctx context.Context, cond *model.MemberSearchCondition) (*model.MemberTeamDto, bool, error) {
	s.init()
	return s.search.SearchOne(ctx, cond)
}

func (s *memberServiceImpl) TeamStats(ctx context.Context) ([]*model.TeamStat, error) {
	s.init()
	return s.search.TeamStats(ctx)
}

func (s *memberServiceImpl) SaveMember(ctx context.Context, m *model.Member) error {
	s.init()
	if m.ID != 0 {
		return s.members.Update(ctx, m)
	}
	return s.members.Save(ctx, m)
}

func (s *memberServiceImpl) FindMember(ctx context.Context, id int64) (*model.Member, bool, error) {
	s.init()
	return s.members.FindByID(ctx, id)
}

func (s *memberServiceImpl) MembersOfTeam(ctx context.Context, teamID *int64) ([]*model.Member, error) {
	s.init()
	return s.members.FindByTeam(ctx, teamID)
}

func (s *memberServiceImpl) ChangeTeam(ctx context.Context, memberID int64, team *model.Team) error {
	s.init()
	return s.members.ChangeTeam(ctx, memberID, team)
}

func (s *memberServiceImpl) DeleteMember(ctx context.Context, id int64) error {
	s.init()
	return s.members.Delete(ctx, id)
}

func (s *memberServiceImpl) SaveTeam(ctx context.Context, t *model.Team) error {
	s.init()
	if t.ID != 0 {
		return s.teams.Update(ctx, t)
	}
	return s.teams.Save(ctx, t)
}

func (s *memberServiceImpl) FindTeam(ctx context.Context, name string) (*model.Team, bool, error) {
	s.init()
	return s.teams.FindByName(ctx, name)
}

func (s *memberServiceImpl) DeleteTeam(ctx context.Context, id int64) error {
	s.init()
	return s.teams.Delete(ctx, id)
}

func (s *memberServiceImpl) Seed(ctx context.Context) error {
	s.init()
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return repository.SeedSampleData(ctx, tx)
	})
}
