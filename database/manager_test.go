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
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type widget struct {
	bun.BaseModel `bun:"table:widgets,alias:w"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name,notnull"`
}

func init() {
	RegisterModel((*widget)(nil), 1)
	RegisterDataInitializer("widgets", func(ctx context.Context, db bun.IDB) error {
		exists, err := db.NewSelect().Model((*widget)(nil)).Where("name = ?", "first").Exists(ctx)
		if err != nil || exists {
			return err
		}
		_, err = db.NewInsert().Model(&widget{Name: "first"}).Exec(ctx)
		return err
	})
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "file::memory:?cache=shared", sqliteDSN(""))
	assert.Equal(t, "file::memory:?cache=shared", sqliteDSN(":memory:"))
	assert.Equal(t, "members.db", sqliteDSN("members"))
	assert.Equal(t, "/tmp/members.db", sqliteDSN("/tmp/members.db"))
	assert.Equal(t, "file:x?mode=memory", sqliteDSN("file:x?mode=memory"))
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.ConnectionConfig.DBName = ":memory:"
	cfg.ConnectionConfig.HealthCheckInterval = 0
	cfg.ConnectionConfig.SlowQueryTime = 0
	cfg.DataInitConfig.AutoInitOnMigration = true
	return cfg
}

func TestInitDatabaseWithOptions_MigratesAndSeeds(t *testing.T) {
	ctx := context.Background()
	db, err := InitDatabaseWithOptions(ctx, testConfig(), true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDB() })

	assert.Same(t, db, GetDB())
	assert.NotNil(t, GetDatabaseManager())

	var names []string
	require.NoError(t, db.NewSelect().Model((*widget)(nil)).Column("name").Scan(ctx, &names))
	assert.Equal(t, []string{"first"}, names)

	applied, err := NewMigrationManager(db, nil, testConfig()).GetAppliedMigrations(ctx)
	require.NoError(t, err)
	versions := make([]string, 0, len(applied))
	for _, m := range applied {
		versions = append(versions, m.Version)
	}
	assert.Equal(t, []string{"001", "002", "003"}, versions)

	// a second run applies nothing and seeds nothing twice
	require.NoError(t, RunMigrations(ctx))
	require.NoError(t, InitData(ctx))
	n, err := db.NewSelect().Model((*widget)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	health := GetHealthStatus(ctx)
	assert.True(t, health.Healthy)
	assert.Equal(t, 1, GetDatabaseStats().MaxOpenConns)
}

func TestInitDatabaseWithOptions_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.QueryPolicy.AgeFloor = 500
	_, err := InitDatabaseWithOptions(context.Background(), cfg, false)
	assert.Error(t, err)

	_, err = InitDB(context.Background(), nil)
	assert.Error(t, err)
}

func TestManagerWithoutConnection(t *testing.T) {
	m := NewDatabaseManager(nil)
	assert.Nil(t, m.GetDB())
	assert.Error(t, m.Ping(context.Background()))
	assert.False(t, m.HealthCheck(context.Background()).Healthy)
	assert.Equal(t, &DBStats{}, m.GetStats())
	assert.NoError(t, m.Disconnect())
}

func memoryConnection() *ConnectionConfig {
	cfg := DefaultConnectionConfig()
	cfg.DBName = memoryDBName
	cfg.SlowQueryTime = 0
	cfg.HealthCheckInterval = time.Hour
	cfg.ReconnectInterval = time.Millisecond
	return cfg
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestHealthCheckStopsAndRestartsWithConnection(t *testing.T) {
	ctx := context.Background()
	dm := NewDatabaseManager(memoryConnection()).(*defaultDatabaseManager)

	require.NoError(t, dm.Connect(ctx))
	first := dm.stopHealthCheck
	require.NotNil(t, first)

	// connecting again while connected keeps the running loop
	require.NoError(t, dm.Connect(ctx))
	assert.Equal(t, first, dm.stopHealthCheck)

	require.NoError(t, dm.Disconnect())
	assert.True(t, isClosed(first))
	assert.Nil(t, dm.stopHealthCheck)
	assert.NoError(t, dm.Disconnect())

	require.NoError(t, dm.Connect(ctx))
	second := dm.stopHealthCheck
	require.NotNil(t, second)
	assert.False(t, isClosed(second))
	require.NoError(t, dm.Disconnect())
	assert.True(t, isClosed(second))
}

func TestHandleReconnect(t *testing.T) {
	ctx := context.Background()
	dm := NewDatabaseManager(memoryConnection()).(*defaultDatabaseManager)
	require.NoError(t, dm.Connect(ctx))
	t.Cleanup(func() { _ = dm.Disconnect() })
	stop := dm.stopHealthCheck

	old := dm.GetDB()
	dm.handleReconnect(stop)
	assert.NotSame(t, old, dm.GetDB())
	assert.True(t, dm.HealthCheck(ctx).Healthy)
	assert.Equal(t, 0, dm.reconnectTries)
	assert.Equal(t, stop, dm.stopHealthCheck)

	dm.mu.Lock()
	dm.reconnectTries = dm.config.MaxReconnectTries
	dm.mu.Unlock()
	current := dm.GetDB()
	dm.handleReconnect(stop)
	assert.Same(t, current, dm.GetDB())
}

func TestHandleReconnectAfterDisconnect(t *testing.T) {
	ctx := context.Background()
	dm := NewDatabaseManager(memoryConnection()).(*defaultDatabaseManager)
	require.NoError(t, dm.Connect(ctx))
	stop := dm.stopHealthCheck
	require.NoError(t, dm.Disconnect())

	dm.handleReconnect(stop)
	assert.Nil(t, dm.GetDB())
	assert.Nil(t, dm.stopHealthCheck)
}
