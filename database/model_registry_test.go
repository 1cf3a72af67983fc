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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type gadget struct {
	bun.BaseModel `bun:"table:gadgets"`

	ID int64 `bun:"id,pk,autoincrement"`
}

func TestRegisterModel(t *testing.T) {
	RegisterModel((*gadget)(nil), 1)
	// a later registration of the same type keeps the first priority
	RegisterModel((*gadget)(nil), -5)

	models := RegisteredModels()
	var count int
	for _, m := range models {
		if _, ok := m.Instance.(*gadget); ok {
			count++
			assert.Equal(t, 1, m.Priority)
		}
	}
	assert.Equal(t, 1, count)

	for i := 1; i < len(models); i++ {
		assert.LessOrEqual(t, models[i-1].Priority, models[i].Priority)
	}

	// widget and gadget share priority 1 and keep registration order
	instances := RegisteredModelInstances()
	require.Len(t, instances, len(models))
	assert.IsType(t, (*widget)(nil), instances[0])
	assert.IsType(t, (*gadget)(nil), instances[1])
}
