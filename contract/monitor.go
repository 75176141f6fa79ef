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
	"sync"
	"time"

	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"
)

const (
	DefaultFinalityMonitorRetryIntervalSec = 1
)

type DefaultFinalityMonitorOptions struct {
	RetryIntervalSec uint `json:"retry_interval_sec"`
}

type finalitySubscription struct {
	m  *DefaultFinalityMonitor
	ch chan BlockInfo
}

func (s *finalitySubscription) C() <-chan BlockInfo {
	return s.ch
}

func (s *finalitySubscription) Unsubscribe() {
	s.m.unsubscribe(s)
}

// Serve calls cb for every notified block until the subscription is
// closed or ctx is done.
func (s *finalitySubscription) Serve(ctx context.Context, cb func(info BlockInfo)) {
	for {
		select {
		case v, ok := <-s.ch:
			if !ok {
				return
			}
			cb(v)
		case <-ctx.Done():
			return
		}
	}
}

// DefaultFinalityMonitor fans out the final blocks served by a FinalitySupplier.
// The supplier runs only while a subscription exists. A subscriber that
// does not drain its channel is dropped and its channel closed.
type DefaultFinalityMonitor struct {
	fs   FinalitySupplier
	opt  DefaultFinalityMonitorOptions
	subs map[*finalitySubscription]struct{}
	last BlockInfo

	cancel context.CancelFunc
	mtx    sync.RWMutex
	l      log.Logger
}

func NewDefaultFinalityMonitor(options Options, fs FinalitySupplier, l log.Logger) (*DefaultFinalityMonitor, error) {
	opt := DefaultFinalityMonitorOptions{}
	if err := DecodeOptions(options, &opt); err != nil {
		return nil, err
	}
	if opt.RetryIntervalSec == 0 {
		opt.RetryIntervalSec = DefaultFinalityMonitorRetryIntervalSec
	}
	return &DefaultFinalityMonitor{
		fs:   fs,
		opt:  opt,
		subs: make(map[*finalitySubscription]struct{}),
		l:    l,
	}, nil
}

func (m *DefaultFinalityMonitor) Subscribe(size uint) FinalitySubscription {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	s := &finalitySubscription{
		m:  m,
		ch: make(chan BlockInfo, size),
	}
	m.subs[s] = struct{}{}
	if m.cancel == nil {
		ctx, cancel := context.WithCancel(context.Background())
		m.cancel = cancel
		go m.run(ctx)
	}
	return s
}

func (m *DefaultFinalityMonitor) unsubscribe(s *finalitySubscription) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.drop(s)
	if len(m.subs) == 0 && m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// drop requires the lock.
func (m *DefaultFinalityMonitor) drop(s *finalitySubscription) {
	if _, ok := m.subs[s]; ok {
		delete(m.subs, s)
		close(s.ch)
	}
}

func (m *DefaultFinalityMonitor) run(ctx context.Context) {
	retry := time.Duration(m.opt.RetryIntervalSec) * time.Second
	for {
		if err := m.fs.Serve(ctx, m.lastNotified(), m.notify); err != nil {
			m.l.Debugf("fail to Serve err:%+v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(retry):
		}
	}
}

func (m *DefaultFinalityMonitor) notify(bi BlockInfo) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if m.last != nil && bi.Height() <= m.last.Height() {
		return
	}
	m.last = bi
	for s := range m.subs {
		select {
		case s.ch <- bi:
		default:
			m.l.Debugf("drop slow subscription height:%d", bi.Height())
			m.drop(s)
		}
	}
}

func (m *DefaultFinalityMonitor) lastNotified() BlockInfo {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.last
}

func (m *DefaultFinalityMonitor) Subscriptions() int {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return len(m.subs)
}

func (m *DefaultFinalityMonitor) IsStarted() bool {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.cancel != nil
}

// Last returns the latest notified block while started, otherwise asks the supplier.
func (m *DefaultFinalityMonitor) Last() (BlockInfo, error) {
	m.mtx.RLock()
	last, started := m.last, m.cancel != nil
	m.mtx.RUnlock()
	if last != nil && started {
		return last, nil
	}
	return m.fs.Latest()
}

func (m *DefaultFinalityMonitor) HeightByID(id BlockID) (int64, error) {
	return m.fs.HeightByID(id)
}

func (m *DefaultFinalityMonitor) IsFinalized(height int64, id BlockID) (bool, error) {
	if height < 0 {
		return false, errors.IllegalArgumentError.Errorf("invalid height:%d", height)
	}
	last, err := m.Last()
	if err != nil {
		return false, err
	}
	switch {
	case height > last.Height():
		return false, nil
	case height == last.Height():
		return last.EqualID(id)
	}
	h, err := m.fs.HeightByID(id)
	if err != nil {
		return false, err
	}
	return h == height, nil
}
