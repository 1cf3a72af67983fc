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

package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForeignKeyConstraint_GenerateSQL(t *testing.T) {
	fk := DefaultForeignKeys()[0]
	assert.Equal(t, "fk_members_team_id", fk.GenerateConstraintName())
	assert.Equal(t,
		"ALTER TABLE members ADD CONSTRAINT fk_members_team_id FOREIGN KEY (team_id) REFERENCES teams(id) ON DELETE SET NULL",
		fk.GenerateSQL())

	fk.ConstraintName = "fk_custom"
	fk.OnUpdate = "cascade"
	assert.Equal(t,
		"ALTER TABLE members ADD CONSTRAINT fk_custom FOREIGN KEY (team_id) REFERENCES teams(id) ON DELETE SET NULL ON UPDATE CASCADE",
		fk.GenerateSQL())
}

func TestLoadForeignKeyManager(t *testing.T) {
	m, err := LoadForeignKeyManager(nil, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultForeignKeys(), m.ListAllConstraints())

	path := filepath.Join(t.TempDir(), "fk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
foreign_keys:
  - table: members
    column: team_id
    reference_table: teams
    reference_column: id
    on_delete: RESTRICT
`), 0o600))
	m, err = LoadForeignKeyManager(nil, path)
	require.NoError(t, err)
	require.Len(t, m.ListAllConstraints(), 1)
	assert.Equal(t, "RESTRICT", m.ListAllConstraints()[0].OnDelete)
	assert.Empty(t, m.ValidateConstraints())

	_, err = LoadForeignKeyManager(nil, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateConstraints(t *testing.T) {
	m := NewForeignKeyManager(nil,
		ForeignKeyConstraint{Table: "members", Column: "team_id", ReferenceTable: "teams", ReferenceColumn: "id", OnDelete: "EXPLODE"},
		ForeignKeyConstraint{Table: "", Column: "x"},
	)
	errs := m.ValidateConstraints()
	assert.Len(t, errs, 3)
}
