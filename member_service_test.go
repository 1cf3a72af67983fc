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
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/memberquery/database"
	"github.com/tomoncle/memberquery/model"
	"github.com/tomoncle/memberquery/query"
	"github.com/tomoncle/memberquery/repository"
	"github.com/tomoncle/memberquery/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func openTestDB(t *testing.T) *bun.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	sqldb, err := sql.Open(sqliteshim.ShimName, fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	for _, m := range database.RegisteredModelInstances() {
		_, err := db.NewCreateTable().Model(m).IfNotExists().Exec(context.Background())
		require.NoError(t, err)
	}
	return db
}

func TestMemberService_SeedAndSearch(t *testing.T) {
	db := openTestDB(t)
	svc := NewMemberServiceWithDB(db, database.DefaultQueryPolicy())
	ctx := context.Background()

	require.NoError(t, svc.Seed(ctx))
	require.NoError(t, svc.Seed(ctx))

	all, err := svc.Search(ctx, &model.MemberSearchCondition{})
	require.NoError(t, err)
	assert.Len(t, all, repository.SampleMemberCount)

	cond := &model.MemberSearchCondition{TeamName: repository.SampleTeamA, AgeGoe: intPtr(91)}
	page, err := svc.SearchPage(ctx, cond, types.NewPageRequest(0, 3, types.NewOrder("member_age", types.Asc)))
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, 92, page.Items[0].MemberAge)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 2, page.TotalPages)

	counted, err := svc.SearchPageCounted(ctx, cond, types.NewPageRequest(1, 3, types.NewOrder("member_age", types.Asc)))
	require.NoError(t, err)
	assert.Len(t, counted.Items, 2)
	assert.Equal(t, 5, counted.Total)

	simple, err := svc.SearchPageSimple(ctx, cond, types.NewPageRequest(1, 3, types.NewOrder("member_age", types.Asc)))
	require.NoError(t, err)
	assert.Equal(t, counted.Items, simple.Items)

	one, found, err := svc.SearchOne(ctx, &model.MemberSearchCondition{MemberName: "member7"})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, repository.SampleTeamB, *one.TeamName)

	stats, err := svc.TeamStats(ctx)
	require.NoError(t, err)
	assert.Len(t, stats, 2)
}

func TestMemberService_Writes(t *testing.T) {
	db := openTestDB(t)
	svc := NewMemberServiceWithDB(db, database.DefaultQueryPolicy())
	ctx := context.Background()

	team := model.NewTeam("blue")
	require.NoError(t, svc.SaveTeam(ctx, team))
	m := model.NewMember("ann", 33, team)
	require.NoError(t, svc.SaveMember(ctx, m))

	m.Age = 34
	require.NoError(t, svc.SaveMember(ctx, m))
	got, found, err := svc.FindMember(ctx, m.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 34, got.Age)

	inTeam, err := svc.MembersOfTeam(ctx, &team.ID)
	require.NoError(t, err)
	assert.Len(t, inTeam, 1)

	require.NoError(t, svc.DeleteTeam(ctx, team.ID))
	_, found, err = svc.FindTeam(ctx, "blue")
	require.NoError(t, err)
	assert.False(t, found)

	got, _, err = svc.FindMember(ctx, m.ID)
	require.NoError(t, err)
	assert.Nil(t, got.TeamID)

	require.NoError(t, svc.DeleteMember(ctx, m.ID))
	_, found, err = svc.FindMember(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestService_GenericTeamCrud(t *testing.T) {
	db := openTestDB(t)
	svc := NewServiceWithDB[model.Team](db)
	ctx := context.Background()

	require.NoError(t, svc.Save(ctx, model.NewTeam("a"), model.NewTeam("b"), model.NewTeam("c")))

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	named, err := svc.List(ctx, query.Eq("t.name", "b"))
	require.NoError(t, err)
	require.Len(t, named, 1)

	page, err := svc.Page(ctx, nil, types.NewPageRequest(0, 2, types.NewOrder("name", types.Desc)))
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "c", page.Items[0].Name)
	assert.Equal(t, 3, page.Total)

	require.NoError(t, svc.Delete(ctx, named[0].ID))
	_, err = svc.Get(ctx, named[0].ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func intPtr(v int) *int { return &v }
