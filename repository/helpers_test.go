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
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tomoncle/memberquery/database"
	"github.com/tomoncle/memberquery/model"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// queryRecorder keeps the SQL of every query run through the db.
type queryRecorder struct {
	mu      sync.Mutex
	queries []string
}

func (r *queryRecorder) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (r *queryRecorder) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, event.Query)
}

func (r *queryRecorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = nil
}

func (r *queryRecorder) matching(substr string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, q := range r.queries {
		if strings.Contains(strings.ToLower(q), substr) {
			n++
		}
	}
	return n
}

// countQueries counts the total queries issued by the pagers.
func (r *queryRecorder) countQueries() int { return r.matching("count(*)") }

// contentQueries counts the projection queries of the member search.
func (r *queryRecorder) contentQueries() int { return r.matching("as member_id") }

func (r *queryRecorder) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queries)
}

// newTestDB opens a private in-memory sqlite database with the registered
// tables created.
func newTestDB(t *testing.T) (*bun.DB, *queryRecorder) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	sqldb, err := sql.Open(sqliteshim.ShimName, fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	for _, m := range database.RegisteredModelInstances() {
		_, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx)
		require.NoError(t, err)
	}

	rec := &queryRecorder{}
	db.AddQueryHook(rec)
	return db, rec
}

type fixture struct {
	teamA, teamB *model.Team
	members      []*model.Member
}

// seedFixture stores teamA with member1 (10) and member2 (20) and teamB with
// member3 (30) and member4 (40).
func seedFixture(t *testing.T, db bun.IDB) fixture {
	t.Helper()
	ctx := context.Background()
	teams := NewTeamRepository(db)
	teamA, teamB := model.NewTeam("teamA"), model.NewTeam("teamB")
	require.NoError(t, teams.Save(ctx, teamA))
	require.NoError(t, teams.Save(ctx, teamB))

	members := []*model.Member{
		model.NewMember("member1", 10, teamA),
		model.NewMember("member2", 20, teamA),
		model.NewMember("member3", 30, teamB),
		model.NewMember("member4", 40, teamB),
	}
	repo := NewMemberRepository(db)
	for _, m := range members {
		require.NoError(t, repo.Save(ctx, m))
	}
	return fixture{teamA: teamA, teamB: teamB, members: members}
}

func intPtr(v int) *int { return &v }

func ages(rows []*model.MemberTeamDto) []int {
	out := make([]int, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.MemberAge)
	}
	return out
}
