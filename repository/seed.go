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
	"fmt"

	"github.com/tomoncle/memberquery/database"
	"github.com/tomoncle/memberquery/model"
	"github.com/uptrace/bun"
)

const (
	SampleTeamA       = "teamA"
	SampleTeamB       = "teamB"
	SampleMemberCount = 100
)

func init() {
	database.RegisterDataInitializer("sample_members", SeedSampleData)
}

// SeedSampleData creates teamA and teamB and member1..member100 aged 1..100,
// even members in teamA and odd members in teamB. It does nothing when teamA
// already exists.
func SeedSampleData(ctx context.Context, db bun.IDB) error {
	teams := NewTeamRepository(db)
	if _, found, err := teams.FindByName(ctx, SampleTeamA); err != nil || found {
		return err
	}

	teamA, teamB := model.NewTeam(SampleTeamA), model.NewTeam(SampleTeamB)
	if err := teams.Create(ctx, teamA, teamB); err != nil {
		return err
	}
	// multi-row inserts do not report ids back on every dialect
	if err := reloadTeam(ctx, teams, teamA); err != nil {
		return err
	}
	if err := reloadTeam(ctx, teams, teamB); err != nil {
		return err
	}

	members := make([]*model.Member, 0, SampleMemberCount)
	for i := 1; i <= SampleMemberCount; i++ {
		team := teamB
		if i%2 == 0 {
			team = teamA
		}
		members = append(members, model.NewMember(fmt.Sprintf("member%d", i), i, team))
	}
	return NewMemberRepository(db).Create(ctx, members...)
}

func reloadTeam(ctx context.Context, teams *TeamRepository, t *model.Team) error {
	saved, found, err := teams.FindByName(ctx, t.Name)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("op=seed team=%s: %w", t.Name, ErrNotFound)
	}
	t.ID = saved.ID
	return nil
}
