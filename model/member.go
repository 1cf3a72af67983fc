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
	"github.com/tomoncle/memberquery/database"
	"github.com/uptrace/bun"
)

func init() {
	database.RegisterModel((*Team)(nil), 10)
	database.RegisterModel((*Member)(nil), 20)
}

// Team groups members. Membership is owned by Member.TeamID; the members of a
// team are looked up, never stored on the team.
type Team struct {
	bun.BaseModel `bun:"table:teams,alias:t"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Name string `bun:"name,notnull" json:"name"`
}

// NewTeam returns an unsaved team.
func NewTeam(name string) *Team {
	return &Team{Name: name}
}

// Member belongs to at most one team.
type Member struct {
	bun.BaseModel `bun:"table:members,alias:m"`

	ID     int64   `bun:"id,pk,autoincrement" json:"id"`
	Name   *string `bun:"name" json:"name"`
	Age    int     `bun:"age,notnull" json:"age"`
	TeamID *int64  `bun:"team_id" json:"teamId"`
}

// NewMember returns an unsaved member. An empty name is stored as NULL and a
// nil team leaves the member unassigned.
func NewMember(name string, age int, team *Team) *Member {
	m := &Member{Age: age}
	m.ChangeName(name)
	m.ChangeTeam(team)
	return m
}

// ChangeName replaces the name; an empty name clears it.
func (m *Member) ChangeName(name string) {
	if name == "" {
		m.Name = nil
		return
	}
	m.Name = &name
}

// ChangeTeam moves the member to team, or out of any team when team is nil.
func (m *Member) ChangeTeam(team *Team) {
	if team == nil {
		m.TeamID = nil
		return
	}
	id := team.ID
	m.TeamID = &id
}

// DisplayName returns the name or "" when unset.
func (m *Member) DisplayName() string {
	if m.Name == nil {
		return ""
	}
	return *m.Name
}

// InTeam reports whether the member belongs to team.
func (m *Member) InTeam(team *Team) bool {
	return team != nil && m.TeamID != nil && *m.TeamID == team.ID
}
