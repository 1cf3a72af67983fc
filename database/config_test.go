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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.ConnectionConfig.Type)
}

func TestLoadConfig_OverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
connection:
  type: postgres
  host: db.internal
  port: 5432
  slow_query_time: 250ms
query:
  age_ceiling: 120
  max_page_size: 50
log:
  level: debug
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.ConnectionConfig.Type)
	assert.Equal(t, "db.internal", cfg.ConnectionConfig.Host)
	assert.Equal(t, 5432, cfg.ConnectionConfig.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.ConnectionConfig.SlowQueryTime)
	assert.Equal(t, 120, cfg.QueryPolicy.AgeCeiling)
	assert.Equal(t, 0, cfg.QueryPolicy.AgeFloor)
	assert.Equal(t, 20, cfg.QueryPolicy.DefaultPageSize)
	assert.Equal(t, 50, cfg.QueryPolicy.MaxPageSize)
	assert.Equal(t, "debug", cfg.Log.Level)
	// untouched sections keep their defaults
	assert.True(t, cfg.DataMigrateConfig.EnableMigrateOnStartup)
}

func TestLoadConfig_RejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("connection: [oops"), 0o600))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.QueryPolicy.AgeFloor = 200
	assert.ErrorContains(t, cfg.Validate(), "age_floor")

	cfg = DefaultConfig()
	cfg.QueryPolicy.DefaultPageSize = 0
	assert.ErrorContains(t, cfg.Validate(), "default_page_size")

	cfg = DefaultConfig()
	cfg.QueryPolicy.MaxPageSize = 5
	assert.ErrorContains(t, cfg.Validate(), "max_page_size")
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("DB_TYPE", "mysql")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("DB_ENABLE_QUERY_LOG", "true")
	t.Setenv("DB_SLOW_QUERY_TIME", "1s")
	t.Setenv("QUERY_AGE_FLOOR", "18")
	t.Setenv("QUERY_MAX_PAGE_SIZE", "500")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")

	cfg := DefaultConfig()
	ApplyEnvOverrides(cfg)

	assert.Equal(t, "mysql", cfg.ConnectionConfig.Type)
	assert.Equal(t, 3307, cfg.ConnectionConfig.Port)
	assert.True(t, cfg.ConnectionConfig.EnableQueryLog)
	assert.Equal(t, time.Second, cfg.ConnectionConfig.SlowQueryTime)
	assert.Equal(t, 18, cfg.QueryPolicy.AgeFloor)
	assert.Equal(t, 100, cfg.QueryPolicy.AgeCeiling)
	assert.Equal(t, 500, cfg.QueryPolicy.MaxPageSize)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "test", cfg.DataInitConfig.Environment)
	assert.Equal(t, DefaultConnectionConfig().MaxOpenConns, cfg.ConnectionConfig.MaxOpenConns)
}

func TestCreateFromConfig_RejectsUnknownType(t *testing.T) {
	_, err := NewDatabaseFactory().CreateFromConfig(&ConnectionConfig{Type: "oracle"})
	assert.Error(t, err)
}
