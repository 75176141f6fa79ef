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
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/icon-project/btp2/common/log"
	"github.com/stretchr/testify/assert"
)

type testBlock int64

func (b testBlock) ID() BlockID {
	return fmt.Sprintf("block-%d", b)
}

func (b testBlock) Height() int64 {
	return int64(b)
}

func (b testBlock) EqualID(id BlockID) (bool, error) {
	return b.ID() == id, nil
}

type testSupplier struct {
	latest testBlock
	ch     chan testBlock
}

func (s *testSupplier) Latest() (BlockInfo, error) {
	return s.latest, nil
}

func (s *testSupplier) HeightByID(id BlockID) (int64, error) {
	var h int64
	_, err := fmt.Sscanf(id.(string), "block-%d", &h)
	return h, err
}

func (s *testSupplier) Serve(ctx context.Context, last BlockInfo, cb func(BlockInfo)) error {
	for {
		select {
		case b := <-s.ch:
			cb(b)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func TestDefaultFinalityMonitor(t *testing.T) {
	s := &testSupplier{latest: 5, ch: make(chan testBlock)}
	m, err := NewDefaultFinalityMonitor(Options{"retry_interval_sec": 1}, s, log.GlobalLogger())
	assert.NoError(t, err)
	assert.False(t, m.IsStarted())

	last, err := m.Last()
	assert.NoError(t, err)
	assert.Equal(t, int64(5), last.Height())

	ok, err := m.IsFinalized(5, "block-5")
	assert.NoError(t, err)
	assert.True(t, ok)
	ok, err = m.IsFinalized(3, "block-3")
	assert.NoError(t, err)
	assert.True(t, ok)
	ok, err = m.IsFinalized(3, "block-4")
	assert.NoError(t, err)
	assert.False(t, ok)
	ok, err = m.IsFinalized(6, "block-6")
	assert.NoError(t, err)
	assert.False(t, ok)

	sub := m.Subscribe(4)
	assert.True(t, m.IsStarted())
	assert.Equal(t, 1, m.Subscriptions())

	s.ch <- 6
	s.ch <- 6
	s.ch <- 7
	for _, expected := range []int64{6, 7} {
		select {
		case bi := <-sub.C():
			assert.Equal(t, expected, bi.Height())
		case <-time.After(5 * time.Second):
			t.Fatal("timeout")
		}
	}

	sub.Unsubscribe()
	assert.False(t, m.IsStarted())
	assert.Equal(t, 0, m.Subscriptions())
	_, ok = <-sub.C()
	assert.False(t, ok)
}

func TestDefaultFinalitySubscription_Serve(t *testing.T) {
	s := &testSupplier{latest: 0, ch: make(chan testBlock)}
	m, err := NewDefaultFinalityMonitor(nil, s, log.GlobalLogger())
	assert.NoError(t, err)
	sub := m.Subscribe(2)
	s.ch <- 1
	s.ch <- 2
	assert.Eventually(t, func() bool {
		last, err := m.Last()
		return err == nil && last.Height() == 2
	}, 5*time.Second, 10*time.Millisecond)
	sub.Unsubscribe()
	sub.Unsubscribe()

	heights := make([]int64, 0)
	sub.Serve(context.Background(), func(info BlockInfo) {
		heights = append(heights, info.Height())
	})
	assert.Equal(t, []int64{1, 2}, heights)
}

func TestDefaultFinalityMonitor_DropSlowSubscription(t *testing.T) {
	s := &testSupplier{latest: 0, ch: make(chan testBlock)}
	m, err := NewDefaultFinalityMonitor(nil, s, log.GlobalLogger())
	assert.NoError(t, err)
	slow := m.Subscribe(1)
	fast := m.Subscribe(4)
	s.ch <- 1
	s.ch <- 2
	assert.Eventually(t, func() bool {
		return m.Subscriptions() == 1
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, int64(1), (<-slow.C()).Height())
	_, ok := <-slow.C()
	assert.False(t, ok)
	assert.Equal(t, int64(1), (<-fast.C()).Height())
	assert.Equal(t, int64(2), (<-fast.C()).Height())
	fast.Unsubscribe()
	assert.False(t, m.IsStarted())
}
