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
	"testing"

	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"
	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry[func() int]("test")
	r.Register(func() int { return 1 }, "b", "a")
	r.Register(func() int { return 2 }, "c")
	assert.Equal(t, []string{"a", "b", "c"}, r.Keys())

	f, err := r.Get("a")
	assert.NoError(t, err)
	assert.Equal(t, 1, f())
	f, err = r.Get("c")
	assert.NoError(t, err)
	assert.Equal(t, 2, f())

	_, err = r.Get("d")
	assert.True(t, errors.NotFoundError.Equals(err))

	assert.Panics(t, func() {
		r.Register(func() int { return 3 }, "b")
	})
}

func TestOptions_LogLevel(t *testing.T) {
	type testOptions struct {
		Name  string   `json:"name"`
		Level LogLevel `json:"level"`
	}
	opt, err := EncodeOptions(testOptions{Name: "weth", Level: LogLevel(log.InfoLevel)})
	assert.NoError(t, err)
	assert.Equal(t, Options{"name": "weth", "level": log.InfoLevel.String()}, opt)

	v := testOptions{Name: "default"}
	assert.NoError(t, DecodeOptions(nil, &v))
	assert.Equal(t, "default", v.Name)
	assert.NoError(t, DecodeOptions(opt, &v))
	assert.Equal(t, "weth", v.Name)
	assert.Equal(t, log.InfoLevel, v.Level.Level())

	err = DecodeOptions(Options{"level": "unknown"}, &v)
	assert.True(t, ErrorCodeInvalidOption.Equals(err))
}
