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

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMember(t *testing.T) {
	team := &Team{ID: 7, Name: "teamA"}
	m := NewMember("member1", 10, team)

	require.NotNil(t, m.Name)
	assert.Equal(t, "member1", m.DisplayName())
	assert.Equal(t, 10, m.Age)
	require.NotNil(t, m.TeamID)
	assert.Equal(t, int64(7), *m.TeamID)
	assert.True(t, m.InTeam(team))
}

func TestMemberWithoutNameOrTeam(t *testing.T) {
	m := NewMember("", 30, nil)
	assert.Nil(t, m.Name)
	assert.Nil(t, m.TeamID)
	assert.Empty(t, m.DisplayName())
	assert.False(t, m.InTeam(&Team{ID: 1}))
}

func TestChangeTeamMovesMembership(t *testing.T) {
	a, b := &Team{ID: 1, Name: "teamA"}, &Team{ID: 2, Name: "teamB"}
	m := NewMember("member1", 10, a)

	m.ChangeTeam(b)
	assert.False(t, m.InTeam(a))
	assert.True(t, m.InTeam(b))

	// the stored id does not follow later changes to the team value
	b.ID = 99
	assert.Equal(t, int64(2), *m.TeamID)

	m.ChangeTeam(nil)
	assert.Nil(t, m.TeamID)
}

func TestChangeName(t *testing.T) {
	m := NewMember("member1", 10, nil)
	m.ChangeName("renamed")
	assert.Equal(t, "renamed", m.DisplayName())
	m.ChangeName("")
	assert.Nil(t, m.Name)
}

func TestNewMemberTeamDtoKeepsTupleOrder(t *testing.T) {
	name, team := "member1", "teamA"
	teamID := int64(3)
	dto := NewMemberTeamDto(1, &name, 10, &teamID, &team)
	assert.Equal(t, int64(1), dto.MemberID)
	assert.Equal(t, "member1", *dto.MemberName)
	assert.Equal(t, 10, dto.MemberAge)
	assert.Equal(t, int64(3), *dto.TeamID)
	assert.Equal(t, "teamA", *dto.TeamName)
}
