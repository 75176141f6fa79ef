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

package proxy

import (
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/icon-project/btp2/common/errors"
)

type LogParser[E any] func(log types.Log) (*E, error)

// EventFilter is a typed log filter of an event. Each rule constrains the
// indexed input at the same position, an empty rule matches any value.
type EventFilter[E any] struct {
	c      *BoundContract
	event  abi.Event
	topics [][]common.Hash
	parse  LogParser[E]
}

func NewEventFilter[E any](c *BoundContract, name string, parse LogParser[E], rules ...[]interface{}) (*EventFilter[E], error) {
	ev, ok := c.abi.Events[name]
	if !ok {
		return nil, ErrorCodeUnknownEvent.Errorf("unknown event:%s", name)
	}
	if ev.Anonymous {
		return nil, ErrorCodeInvalidData.Errorf("anonymous event:%s has no signature topic", name)
	}
	indexed := 0
	for _, input := range ev.Inputs {
		if input.Indexed {
			indexed++
		}
	}
	if len(rules) > indexed {
		return nil, ErrorCodeInvalidData.Errorf("too many rules, event:%s indexed:%d rules:%d",
			name, indexed, len(rules))
	}
	topics, err := abi.MakeTopics(rules...)
	if err != nil {
		return nil, errors.Wrapf(err, "fail to MakeTopics err:%s", err.Error())
	}
	return &EventFilter[E]{
		c:      c,
		event:  ev,
		topics: append([][]common.Hash{{ev.ID}}, topics...),
		parse:  parse,
	}, nil
}

func (f *EventFilter[E]) Event() abi.Event {
	return f.event
}

// Topics returns the topic rules, the first one is the event signature.
func (f *EventFilter[E]) Topics() [][]common.Hash {
	return f.topics
}

// Query returns the log filter query without block range.
func (f *EventFilter[E]) Query() ethereum.FilterQuery {
	return ethereum.FilterQuery{
		Addresses: []common.Address{f.c.address},
		Topics:    f.topics,
	}
}

// Match reports whether log satisfies the filter.
func (f *EventFilter[E]) Match(log types.Log) bool {
	if log.Address != f.c.address {
		return false
	}
	if len(log.Topics) < len(f.topics) {
		return false
	}
	for i, rule := range f.topics {
		if len(rule) == 0 {
			continue
		}
		matched := false
		for _, t := range rule {
			if log.Topics[i] == t {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func (f *EventFilter[E]) Parse(log types.Log) (*E, error) {
	return f.parse(log)
}

// Filter queries the past logs in the range of opts.
func (f *EventFilter[E]) Filter(opts *bind.FilterOpts) ([]*E, error) {
	if opts == nil {
		opts = new(bind.FilterOpts)
	}
	q := f.Query()
	q.FromBlock = new(big.Int).SetUint64(opts.Start)
	if opts.End != nil {
		q.ToBlock = new(big.Int).SetUint64(*opts.End)
	}
	logs, err := f.c.backend.FilterLogs(ensureContext(opts.Context), q)
	if err != nil {
		return nil, err
	}
	ret := make([]*E, 0, len(logs))
	for _, l := range logs {
		if l.Removed || !f.Match(l) {
			continue
		}
		e, err := f.parse(l)
		if err != nil {
			return nil, err
		}
		ret = append(ret, e)
	}
	return ret, nil
}

// Watch subscribes the future logs and delivers parsed events to sink.
func (f *EventFilter[E]) Watch(opts *bind.WatchOpts, sink chan<- *E) (event.Subscription, error) {
	if opts == nil {
		opts = new(bind.WatchOpts)
	}
	q := f.Query()
	if opts.Start != nil {
		q.FromBlock = new(big.Int).SetUint64(*opts.Start)
	}
	logs := make(chan types.Log)
	sub, err := f.c.backend.SubscribeFilterLogs(ensureContext(opts.Context), q, logs)
	if err != nil {
		return nil, err
	}
	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer sub.Unsubscribe()
		for {
			select {
			case l := <-logs:
				if l.Removed || !f.Match(l) {
					continue
				}
				e, err := f.parse(l)
				if err != nil {
					return err
				}
				select {
				case sink <- e:
				case err = <-sub.Err():
					return err
				case <-quit:
					return nil
				}
			case err := <-sub.Err():
				return err
			case <-quit:
				return nil
			}
		}
	}), nil
}
