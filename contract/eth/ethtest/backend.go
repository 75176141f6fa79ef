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

// Package ethtest provides an in-memory bind.ContractBackend for tests.
// Backend also serves the receipt and header queries of ethclient.Client.
package ethtest

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/rpc"
)

const (
	DefaultGasEstimate = uint64(50000)
)

var (
	DefaultCode      = []byte{0x60, 0x80, 0x60, 0x40}
	DefaultGasPrice  = big.NewInt(1000000000)
	DefaultGasTipCap = big.NewInt(100000000)
)

type CallFunc func(msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)

type Backend struct {
	mtx sync.Mutex

	Chain          *big.Int
	Code           []byte
	BaseFee        *big.Int
	GasEstimate    uint64
	Subscribable   bool
	OnCall         CallFunc
	OnEstimateGas  func(msg ethereum.CallMsg) (uint64, error)
	OnSendTransact func(tx *types.Transaction) error

	head      uint64
	finalized *uint64
	nonces    map[common.Address]uint64
	receipts  map[common.Hash]*types.Receipt
	logs      []types.Log
	calls     []ethereum.CallMsg
	gasMsgs   []ethereum.CallMsg
	sent      []*types.Transaction
	queries   []ethereum.FilterQuery
	feed      event.Feed
}

// NewBackend returns a Backend with a london-style head, so dynamic fee
// transactions are built by default.
func NewBackend() *Backend {
	return &Backend{
		Chain:        big.NewInt(1337),
		Code:         DefaultCode,
		BaseFee:      big.NewInt(1000000000),
		GasEstimate:  DefaultGasEstimate,
		Subscribable: true,
		nonces:       make(map[common.Address]uint64),
		receipts:     make(map[common.Hash]*types.Receipt),
	}
}

func (b *Backend) SetHead(height uint64) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.head = height
}

func (b *Backend) Head() uint64 {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return b.head
}

// SetFinalized makes HeaderByNumber(rpc.FinalizedBlockNumber) return the header of height.
func (b *Backend) SetFinalized(height uint64) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.finalized = &height
}

// SetReceipt marks the transaction of r.TxHash as mined.
func (b *Backend) SetReceipt(r *types.Receipt) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.receipts[r.TxHash] = r
}

func (b *Backend) SetNonce(addr common.Address, nonce uint64) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.nonces[addr] = nonce
}

func (b *Backend) Calls() []ethereum.CallMsg {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return append([]ethereum.CallMsg(nil), b.calls...)
}

func (b *Backend) EstimateGasCalls() []ethereum.CallMsg {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return append([]ethereum.CallMsg(nil), b.gasMsgs...)
}

func (b *Backend) Sent() []*types.Transaction {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return append([]*types.Transaction(nil), b.sent...)
}

func (b *Backend) Queries() []ethereum.FilterQuery {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return append([]ethereum.FilterQuery(nil), b.queries...)
}

// Emit stores logs and delivers them to the live subscriptions.
// The head is raised to the highest block number of logs.
func (b *Backend) Emit(logs ...types.Log) {
	b.mtx.Lock()
	for _, l := range logs {
		b.logs = append(b.logs, l)
		if l.BlockNumber > b.head {
			b.head = l.BlockNumber
		}
	}
	b.mtx.Unlock()
	for _, l := range logs {
		b.feed.Send(l)
	}
}

func (b *Backend) header(number uint64) *types.Header {
	return &types.Header{
		Number:     new(big.Int).SetUint64(number),
		ParentHash: common.BigToHash(new(big.Int).SetUint64(number)),
		BaseFee:    b.BaseFee,
		Difficulty: common.Big0,
	}
}

// BlockHash returns the hash of the header of number served by this backend.
func (b *Backend) BlockHash(number uint64) common.Hash {
	return b.header(number).Hash()
}

func (b *Backend) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	return b.Code, nil
}

func (b *Backend) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	b.mtx.Lock()
	b.calls = append(b.calls, call)
	f := b.OnCall
	b.mtx.Unlock()
	if f == nil {
		return nil, nil
	}
	return f(call, blockNumber)
}

func (b *Backend) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	if number == nil || number.Sign() < 0 {
		if number != nil && number.Int64() == int64(rpc.FinalizedBlockNumber) && b.finalized != nil {
			return b.header(*b.finalized), nil
		}
		return b.header(b.head), nil
	}
	if number.Uint64() > b.head {
		return nil, ethereum.NotFound
	}
	return b.header(number.Uint64()), nil
}

func (b *Backend) HeaderByHash(ctx context.Context, hash common.Hash) (*types.Header, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	for n := uint64(0); n <= b.head; n++ {
		if h := b.header(n); h.Hash() == hash {
			return h, nil
		}
	}
	return nil, ethereum.NotFound
}

func (b *Backend) BlockNumber(ctx context.Context) (uint64, error) {
	return b.Head(), nil
}

func (b *Backend) ChainID(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(b.Chain), nil
}

func (b *Backend) TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	for _, tx := range b.sent {
		if tx.Hash() == hash {
			_, mined := b.receipts[hash]
			return tx, !mined, nil
		}
	}
	return nil, false, ethereum.NotFound
}

func (b *Backend) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	if r, ok := b.receipts[hash]; ok {
		return r, nil
	}
	return nil, ethereum.NotFound
}

func (b *Backend) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return b.Code, nil
}

func (b *Backend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return b.nonces[account], nil
}

func (b *Backend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(DefaultGasPrice), nil
}

func (b *Backend) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(DefaultGasTipCap), nil
}

func (b *Backend) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	b.mtx.Lock()
	b.gasMsgs = append(b.gasMsgs, call)
	f := b.OnEstimateGas
	b.mtx.Unlock()
	if f != nil {
		return f(call)
	}
	return b.GasEstimate, nil
}

func (b *Backend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	b.mtx.Lock()
	f := b.OnSendTransact
	b.mtx.Unlock()
	if f != nil {
		if err := f(tx); err != nil {
			return err
		}
	}
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.sent = append(b.sent, tx)
	return nil
}

func (b *Backend) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.queries = append(b.queries, q)
	var from, to uint64
	to = b.head
	if q.FromBlock != nil {
		from = q.FromBlock.Uint64()
	}
	if q.ToBlock != nil {
		to = q.ToBlock.Uint64()
	}
	ret := make([]types.Log, 0)
	for _, l := range b.logs {
		if q.BlockHash != nil {
			if l.BlockHash != *q.BlockHash {
				continue
			}
		} else if l.BlockNumber < from || l.BlockNumber > to {
			continue
		}
		if MatchQuery(q, l) {
			ret = append(ret, l)
		}
	}
	return ret, nil
}

func (b *Backend) SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	if !b.Subscribable {
		return nil, rpc.ErrNotificationsUnsupported
	}
	in := make(chan types.Log, 16)
	fs := b.feed.Subscribe(in)
	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer fs.Unsubscribe()
		for {
			select {
			case l := <-in:
				if !MatchQuery(q, l) {
					continue
				}
				select {
				case ch <- l:
				case <-quit:
					return nil
				}
			case err := <-fs.Err():
				return err
			case <-quit:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}), nil
}

// MatchQuery reports whether l satisfies the addresses and topics of q.
func MatchQuery(q ethereum.FilterQuery, l types.Log) bool {
	if len(q.Addresses) > 0 {
		found := false
		for _, addr := range q.Addresses {
			if addr == l.Address {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(q.Topics) > len(l.Topics) {
		return false
	}
	for i, rule := range q.Topics {
		if len(rule) == 0 {
			continue
		}
		found := false
		for _, t := range rule {
			if t == l.Topics[i] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
