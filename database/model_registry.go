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
	"reflect"
	"sort"
	"sync"
)

// SQLModel is a Bun model whose table migration 001 creates. Models with a
// lower Priority are created first so referenced tables exist before the
// tables pointing at them.
type SQLModel struct {
	Instance interface{}
	Priority int
}

type modelRegistry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]int
	models []SQLModel
}

var registry = &modelRegistry{byType: make(map[reflect.Type]int)}

// RegisterModel adds instance, a nil struct pointer such as (*Member)(nil),
// to the migrated models. A second registration of the same type is ignored.
func RegisterModel(instance interface{}, priority int) {
	typ := reflect.TypeOf(instance)
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if _, ok := registry.byType[typ]; ok {
		return
	}
	registry.byType[typ] = len(registry.models)
	registry.models = append(registry.models, SQLModel{Instance: instance, Priority: priority})
}

// RegisteredModels returns the models by ascending priority; equal priorities
// keep their registration order.
func RegisteredModels() []SQLModel {
	registry.mu.RLock()
	out := append([]SQLModel(nil), registry.models...)
	registry.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

// RegisteredModelInstances returns the model instances in priority order.
func RegisteredModelInstances() []interface{} {
	models := RegisteredModels()
	instances := make([]interface{}, len(models))
	for i, m := range models {
		instances[i] = m.Instance
	}
	return instances
}
