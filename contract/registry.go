/*
 * Copyright 2023 ICON Foundation
 *
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


package contract

import (
	"sort"
	"sync"

	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"
)

// Registry maps keys to factories. Registration happens in init, so a
// duplicated key panics.
type Registry[F any] struct {
	kind string
	m    map[string]F
	mtx  sync.RWMutex
}

func NewRegistry[F any](kind string) *Registry[F] {
	return &Registry[F]{
		kind: kind,
		m:    make(map[string]F),
	}
}

func (r *Registry[F]) Register(f F, keys ...string) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	for _, k := range keys {
		if _, ok := r.m[k]; ok {
			log.Panicf("already registered %s:%s", r.kind, k)
		}
		r.m[k] = f
		log.Tracef("register %s:%s", r.kind, k)
	}
}

func (r *Registry[F]) Get(key string) (F, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	f, ok := r.m[key]
	if !ok {
		return f, errors.NotFoundError.Errorf("not found %s:%s", r.kind, key)
	}
	return f, nil
}

// Keys returns the registered keys in order.
func (r *Registry[F]) Keys() []string {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	keys := make([]string, 0, len(r.m))
	for k := range r.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
