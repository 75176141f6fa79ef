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

package weth

import (
	"context"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"
	"gorm.io/gorm"

	"github.com/icon-project/weth-sdk/contract"
	"github.com/icon-project/weth-sdk/database"
	"github.com/icon-project/weth-sdk/proxy"
	"github.com/icon-project/weth-sdk/service"
	wethservice "github.com/icon-project/weth-sdk/service/weth"
	"github.com/icon-project/weth-sdk/tracker"
	"github.com/icon-project/weth-sdk/weth"
)

const (
	EventApproval   = "Approval"
	EventDeposit    = "Deposit"
	EventTransfer   = "Transfer"
	EventWithdrawal = "Withdrawal"

	DefaultBlockRange = 1000
)

const (
	subscriptionBufferSize = 5
	resubscribeInterval    = time.Second
)

var (
	sortRegexp = regexp.MustCompile(`^[a-z_]+( (asc|desc))?(, ?[a-z_]+( (asc|desc))?)*$`)
)

func init() {
	tracker.RegisterFactory(wethservice.ServiceName, NewTracker)
}

type TrackerOptions struct {
	// InitHeight is the first height to store, negative or zero to start from the
	// final block at the first run.
	InitHeight int64 `json:"init_height"`
	// BlockRange is the maximum number of blocks of a log query.
	BlockRange uint64 `json:"block_range,omitempty"`
	// Events to store, all of weth.EventNames if empty.
	Events []string `json:"events,omitempty"`
}

type Network struct {
	NetworkType string
	Options     TrackerOptions
	proxy       *weth.IWETH9L1
	fm          contract.FinalityMonitor
}

type Tracker struct {
	s         service.Service
	nMap      map[string]*Network
	runCancel context.CancelFunc
	runMtx    sync.RWMutex
	wg        sync.WaitGroup
	l         log.Logger

	db *gorm.DB
	er *EventRepository
	cr *CursorRepository
}

func NewTracker(s service.Service, networks map[string]tracker.Network, db *gorm.DB, l log.Logger) (tracker.Tracker, error) {
	if s.Name() != wethservice.ServiceName {
		return nil, errors.Errorf("invalid service name:%s", s.Name())
	}
	nMap := make(map[string]*Network)
	for network, n := range networks {
		opt := &TrackerOptions{}
		if err := contract.DecodeOptions(n.Options, opt); err != nil {
			return nil, err
		}
		if opt.BlockRange == 0 {
			opt.BlockRange = DefaultBlockRange
		}
		if len(opt.Events) == 0 {
			opt.Events = weth.EventNames
		}
		for _, name := range opt.Events {
			if !isEventName(name) {
				return nil, errors.IllegalArgumentError.Errorf("invalid event:%s network:%s", name, network)
			}
		}
		p, err := wethservice.ProxyOf(s, network)
		if err != nil {
			return nil, err
		}
		nMap[network] = &Network{
			NetworkType: n.NetworkType,
			Options:     *opt,
			proxy:       p,
			fm:          n.Adaptor.FinalityMonitor(),
		}
	}
	er, err := NewEventRepository(db)
	if err != nil {
		return nil, err
	}
	cr, err := NewCursorRepository(db)
	if err != nil {
		return nil, err
	}
	return &Tracker{
		s:    s,
		nMap: nMap,
		l:    l,
		db:   db,
		er:   er,
		cr:   cr,
	}, nil
}

func isEventName(name string) bool {
	for _, v := range weth.EventNames {
		if v == name {
			return true
		}
	}
	return false
}

func (r *Tracker) Name() string {
	return r.s.Name()
}

func (r *Tracker) Start() error {
	r.runMtx.Lock()
	defer r.runMtx.Unlock()
	if r.runCancel != nil {
		return errors.Errorf("already started")
	}
	ctx, cancel := context.WithCancel(context.Background())
	for network := range r.nMap {
		r.wg.Add(1)
		go func(network string) {
			defer r.wg.Done()
			r.finalityMonitor(ctx, network)
		}(network)
	}
	r.runCancel = cancel
	return nil
}

// Stop cancels the tracking and waits until every network stops.
func (r *Tracker) Stop() error {
	r.runMtx.Lock()
	defer r.runMtx.Unlock()
	if r.runCancel == nil {
		return errors.Errorf("already stopped")
	}
	r.runCancel()
	r.runCancel = nil
	r.wg.Wait()
	return nil
}

func (r *Tracker) finalityMonitor(ctx context.Context, network string) {
	r.l.Debugf("finalityMonitor network:%s", network)
	n := r.nMap[network]
	for {
		s := n.fm.Subscribe(subscriptionBufferSize)
		s.Serve(ctx, func(bi contract.BlockInfo) {
			if err := r.Sync(ctx, network, bi.Height()); err != nil {
				r.l.Warnf("fail to Sync network:%s height:%d err:%+v", network, bi.Height(), err)
			}
		})
		s.Unsubscribe()
		select {
		case <-ctx.Done():
			r.l.Debugf("finalityMonitor context done network:%s", network)
			return
		case <-time.After(resubscribeInterval):
			r.l.Debugf("resubscribe network:%s", network)
		}
	}
}

func (r *Tracker) nextHeight(network string, final int64) (int64, error) {
	c, err := r.cr.FindByNetwork(network)
	if err != nil {
		return 0, err
	}
	if c != nil {
		return c.Height + 1, nil
	}
	if ih := r.nMap[network].Options.InitHeight; ih > 0 {
		return ih, nil
	}
	return final, nil
}

// Sync stores the events of network up to the final height.
// The events of a window and the cursor are stored in a transaction, and the
// duplicated events of a window stored again are ignored.
func (r *Tracker) Sync(ctx context.Context, network string, final int64) error {
	n, ok := r.nMap[network]
	if !ok {
		return errors.NotFoundError.Errorf("not found network:%s", network)
	}
	from, err := r.nextHeight(network, final)
	if err != nil {
		return err
	}
	for from <= final {
		to := from + int64(n.Options.BlockRange) - 1
		if to > final {
			to = final
		}
		l, err := r.collect(ctx, network, n, uint64(from), uint64(to))
		if err != nil {
			return err
		}
		stored := 0
		err = r.db.Transaction(func(tx *gorm.DB) error {
			er := r.er.WithTx(tx)
			for _, e := range l {
				saved, err := er.SaveIfAbsent(e)
				if err != nil {
					return err
				}
				if saved {
					stored++
				}
			}
			return r.cr.WithTx(tx).Save(&Cursor{Network: network, Height: to})
		})
		if err != nil {
			return err
		}
		r.l.Debugf("Sync network:%s from:%d to:%d events:%d stored:%d", network, from, to, len(l), stored)
		from = to + 1
	}
	return nil
}

func filterEvents[E any](
	ctx context.Context,
	f *proxy.EventFilter[E],
	err error,
	from, to uint64,
	conv func(*E) *Event,
) ([]*Event, error) {
	if err != nil {
		return nil, err
	}
	l, err := f.Filter(&bind.FilterOpts{Start: from, End: &to, Context: ctx})
	if err != nil {
		return nil, err
	}
	ret := make([]*Event, 0, len(l))
	for _, e := range l {
		ret = append(ret, conv(e))
	}
	return ret, nil
}

func newEvent(network, name string, raw types.Log) *Event {
	return &Event{
		Network:     network,
		Name:        name,
		Address:     raw.Address.Hex(),
		BlockHeight: int64(raw.BlockNumber),
		BlockHash:   raw.BlockHash.Hex(),
		TxHash:      raw.TxHash.Hex(),
		LogIndex:    raw.Index,
	}
}

func (r *Tracker) collect(ctx context.Context, network string, n *Network, from, to uint64) ([]*Event, error) {
	ret := make([]*Event, 0)
	for _, name := range n.Options.Events {
		var (
			l   []*Event
			err error
		)
		switch name {
		case EventApproval:
			f, ferr := n.proxy.Filters.Approval(nil, nil)
			l, err = filterEvents(ctx, f, ferr, from, to, func(v *weth.IWETH9L1Approval) *Event {
				e := newEvent(network, name, v.Raw)
				e.Src, e.Guy, e.Wad = v.Src.Hex(), v.Guy.Hex(), v.Wad.String()
				return e
			})
		case EventDeposit:
			f, ferr := n.proxy.Filters.Deposit(nil)
			l, err = filterEvents(ctx, f, ferr, from, to, func(v *weth.IWETH9L1Deposit) *Event {
				e := newEvent(network, name, v.Raw)
				e.Dst, e.Wad = v.Dst.Hex(), v.Wad.String()
				return e
			})
		case EventTransfer:
			f, ferr := n.proxy.Filters.Transfer(nil, nil)
			l, err = filterEvents(ctx, f, ferr, from, to, func(v *weth.IWETH9L1Transfer) *Event {
				e := newEvent(network, name, v.Raw)
				e.Src, e.Dst, e.Wad = v.Src.Hex(), v.Dst.Hex(), v.Wad.String()
				return e
			})
		case EventWithdrawal:
			f, ferr := n.proxy.Filters.Withdrawal(nil)
			l, err = filterEvents(ctx, f, ferr, from, to, func(v *weth.IWETH9L1Withdrawal) *Event {
				e := newEvent(network, name, v.Raw)
				e.Src, e.Wad = v.Src.Hex(), v.Wad.String()
				return e
			})
		}
		if err != nil {
			return nil, errors.Wrapf(err, "fail to filter %s err:%s", name, err.Error())
		}
		ret = append(ret, l...)
	}
	sort.SliceStable(ret, func(i, j int) bool {
		if ret[i].BlockHeight != ret[j].BlockHeight {
			return ret[i].BlockHeight < ret[j].BlockHeight
		}
		return ret[i].LogIndex < ret[j].LogIndex
	})
	return ret, nil
}

func (r *Tracker) Find(p tracker.FindParam) (*database.Page[any], error) {
	if len(p.Network) > 0 {
		if _, ok := r.nMap[p.Network]; !ok {
			return nil, errors.NotFoundError.Errorf("not found network:%s", p.Network)
		}
	}
	if len(p.Name) > 0 && !isEventName(p.Name) {
		return nil, errors.IllegalArgumentError.Errorf("invalid event:%s", p.Name)
	}
	if len(p.Pageable.Sort) > 0 && !sortRegexp.MatchString(p.Pageable.Sort) {
		return nil, errors.IllegalArgumentError.Errorf("invalid sort:%s", p.Pageable.Sort)
	}
	address := p.Address
	if len(address) > 0 {
		if !common.IsHexAddress(address) {
			return nil, errors.IllegalArgumentError.Errorf("invalid address:%s", address)
		}
		// stored in checksum form
		address = common.HexToAddress(address).Hex()
	}
	ret, err := r.er.PageBy(p.Network, p.Name, address, p.Pageable)
	if err != nil {
		return nil, err
	}
	return ret.ToAny(), nil
}

func (r *Tracker) Summary() ([]any, error) {
	l, err := r.er.Summary()
	if err != nil {
		return nil, err
	}
	ret := make([]any, len(l))
	for i, v := range l {
		ret[i] = v
	}
	return ret, nil
}

func (r *Tracker) Networks() []tracker.NetworkOfTracker {
	ret := make([]tracker.NetworkOfTracker, 0, len(r.nMap))
	for network, n := range r.nMap {
		nt := tracker.NetworkOfTracker{
			Name:    network,
			Address: n.proxy.Address().Hex(),
			Type:    n.NetworkType,
			Height:  -1,
		}
		if c, err := r.cr.FindByNetwork(network); err == nil && c != nil {
			nt.Height = c.Height
		}
		ret = append(ret, nt)
	}
	sort.Slice(ret, func(i, j int) bool {
		return ret[i].Name < ret[j].Name
	})
	return ret
}
