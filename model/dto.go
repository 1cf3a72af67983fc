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

// MemberTeamDto is the flattened member/team row produced by the search
// projection. Team fields are nil for a member without a team.
type MemberTeamDto struct {
	MemberID   int64   `bun:"member_id" json:"memberId"`
	MemberName *string `bun:"member_name" json:"memberName"`
	MemberAge  int     `bun:"member_age" json:"memberAge"`
	TeamID     *int64  `bun:"team_id" json:"teamId"`
	TeamName   *string `bun:"team_name" json:"teamName"`
}

// NewMemberTeamDto builds the projection from its ordered tuple.
func NewMemberTeamDto(memberID int64, memberName *string, memberAge int, teamID *int64, teamName *string) *MemberTeamDto {
	return &MemberTeamDto{
		MemberID:   memberID,
		MemberName: memberName,
		MemberAge:  memberAge,
		TeamID:     teamID,
		TeamName:   teamName,
	}
}

// MemberDto is the name/age projection of a member.
type MemberDto struct {
	Name *string `bun:"name" json:"name"`
	Age  int     `bun:"age" json:"age"`
}

// TeamStat aggregates the ages of one team's members.
type TeamStat struct {
	TeamID      int64   `bun:"team_id" json:"teamId"`
	TeamName    string  `bun:"team_name" json:"teamName"`
	MemberCount int     `bun:"member_count" json:"memberCount"`
	SumAge      int     `bun:"sum_age" json:"sumAge"`
	AvgAge      float64 `bun:"avg_age" json:"avgAge"`
	MinAge      int     `bun:"min_age" json:"minAge"`
	MaxAge      int     `bun:"max_age" json:"maxAge"`
}

// MemberSearchCondition filters the member search. Every field is optional;
// an empty name or a nil bound places no constraint.
type MemberSearchCondition struct {
	MemberName string `json:"memberName" validate:"max=64"`
	TeamName   string `json:"teamName" validate:"max=64"`
	AgeGoe     *int   `json:"ageGoe" validate:"omitempty,gte=0"`
	AgeLoe     *int   `json:"ageLoe" validate:"omitempty,gte=0"`
}
