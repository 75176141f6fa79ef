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

package eth

import (
	"context"
	"math/big"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	ethLog "github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
	lru "github.com/hashicorp/golang-lru"
	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"

	"github.com/icon-project/weth-sdk/contract"
)

const (
	NetworkTypeEth             = "eth"
	NetworkTypeEth2            = "eth2"
	NetworkTypeBSC             = "bsc"
	DefaultGetResultInterval   = 2 * time.Second
	DefaultPollHeadIntervalMs  = 2000
	DefaultBlockRange          = 1000
	DefaultHandlerCacheSize    = 32
	DefaultSubscribeBufferSize = 256
)

var (
	DefaultGasLimit = uint64(8000000)
	NetworkTypes    = []string{
		NetworkTypeEth,
		NetworkTypeEth2,
		NetworkTypeBSC,
	}
)

func init() {
	contract.RegisterAdaptorFactory(NewAdaptor, NetworkTypes...)
}

// Client is the subset of ethclient.Client used by Adaptor.
type Client interface {
	bind.ContractBackend
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	HeaderByHash(ctx context.Context, hash common.Hash) (*types.Header, error)
	TransactionByHash(ctx context.Context, hash common.Hash) (tx *types.Transaction, isPending bool, err error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

type Adaptor struct {
	Client
	fm          *contract.DefaultFinalityMonitor
	chainID     *big.Int
	networkType string
	cache       *lru.Cache
	opt         AdaptorOption
	l           log.Logger
}

type AdaptorOption struct {
	FinalityMonitor   contract.Options  `json:"finality_monitor"`
	TransportLogLevel contract.LogLevel `json:"transport_log_level,omitempty"`
	PollHeadInterval  uint              `json:"poll_head_interval_ms,omitempty"`
	BlockRange        uint64            `json:"block_range,omitempty"`
	HandlerCacheSize  int               `json:"handler_cache_size,omitempty"`
}

func NewAdaptor(networkType string, endpoint string, options contract.Options, l log.Logger) (contract.Adaptor, error) {
	opt := &AdaptorOption{}
	if err := contract.DecodeOptions(options, opt); err != nil {
		return nil, err
	}
	lv := contract.EnsureTransportLogLevel(opt.TransportLogLevel.Level())
	ethLog.Root().SetHandler(ethLog.FuncHandler(func(r *ethLog.Record) error {
		l.Log(log.Level(r.Lvl+1), r.Msg)
		return nil
	}))
	rc, err := rpc.DialOptions(
		context.Background(),
		endpoint,
		rpc.WithHTTPClient(contract.NewHttpClient(lv, l)))
	if err != nil {
		return nil, errors.Wrapf(err, "fail to DialOptions err:%s", err.Error())
	}
	return NewAdaptorWithClient(networkType, ethclient.NewClient(rc), options, l)
}

func NewAdaptorWithClient(networkType string, c Client, options contract.Options, l log.Logger) (*Adaptor, error) {
	opt := AdaptorOption{}
	if err := contract.DecodeOptions(options, &opt); err != nil {
		return nil, err
	}
	if opt.PollHeadInterval == 0 {
		opt.PollHeadInterval = DefaultPollHeadIntervalMs
	}
	if opt.BlockRange == 0 {
		opt.BlockRange = DefaultBlockRange
	}
	if opt.HandlerCacheSize <= 0 {
		opt.HandlerCacheSize = DefaultHandlerCacheSize
	}
	opt.TransportLogLevel = contract.LogLevel(contract.EnsureTransportLogLevel(opt.TransportLogLevel.Level()))
	chainID, err := c.ChainID(context.Background())
	if err != nil {
		return nil, errors.Wrapf(err, "fail to ChainID err:%s", err.Error())
	}
	fmOptions := opt.FinalityMonitor
	switch networkType {
	case NetworkTypeEth2:
		if _, ok := fmOptions["finalized"]; !ok {
			fmOptions = contract.Options{"finalized": true}
			for k, v := range opt.FinalityMonitor {
				fmOptions[k] = v
			}
		}
	case NetworkTypeEth, NetworkTypeBSC:
	default:
		return nil, errors.Errorf("not supported networkType:%s", networkType)
	}
	fs, err := NewFinalitySupplier(fmOptions, c, l)
	if err != nil {
		return nil, err
	}
	fm, err := contract.NewDefaultFinalityMonitor(fmOptions, fs, l)
	if err != nil {
		return nil, err
	}
	cache, err := lru.New(opt.HandlerCacheSize)
	if err != nil {
		return nil, errors.Wrapf(err, "fail to lru.New err:%s", err.Error())
	}
	return &Adaptor{
		Client:      c,
		fm:          fm,
		chainID:     chainID,
		networkType: networkType,
		cache:       cache,
		opt:         opt,
		l:           l,
	}, nil
}

func (a *Adaptor) NetworkType() string {
	return a.networkType
}

func (a *Adaptor) ChainIDOf() *big.Int {
	return new(big.Int).Set(a.chainID)
}

// GetResult returns ErrorCodeNotFoundTransaction while the transaction is pending.
func (a *Adaptor) GetResult(id contract.TxID) (contract.TxResult, error) {
	txh, err := CommonHashOf(id)
	if err != nil {
		return nil, contract.ErrorCodeInvalidParam.Wrapf(err, "invalid txID:%v err:%s", id, err.Error())
	}
	ctx := context.Background()
	_, pending, err := a.Client.TransactionByHash(ctx, txh)
	if err != nil {
		if err == ethereum.NotFound {
			return nil, contract.ErrorCodeNotFoundTransaction.Wrapf(err, "not found txID:%v", id)
		}
		return nil, errors.Wrapf(err, "fail to TransactionByHash err:%s", err.Error())
	}
	if pending {
		return nil, contract.ErrorCodeNotFoundTransaction.Errorf("pending txID:%v", id)
	}
	txr, err := a.Client.TransactionReceipt(ctx, txh)
	if err != nil {
		if err == ethereum.NotFound {
			return nil, contract.ErrorCodeNotFoundTransaction.Wrapf(err, "not found receipt txID:%v", id)
		}
		return nil, errors.Wrapf(err, "fail to TransactionReceipt err:%s", err.Error())
	}
	var txf *TxFailure
	if !IsSuccess(txr) {
		if txf, err = a.TransactionFailureReason(ctx, txr.TxHash, txr.BlockNumber); err != nil {
			a.l.Debugf("fail to TransactionFailureReason txID:%v err:%+v", id, err)
		}
	}
	return NewTxResult(txr, txf), nil
}

// WaitResult polls GetResult until the transaction is mined or ctx is done.
func (a *Adaptor) WaitResult(ctx context.Context, id contract.TxID) (contract.TxResult, error) {
	for {
		r, err := a.GetResult(id)
		if err == nil || !contract.ErrorCodeNotFoundTransaction.Equals(err) {
			return r, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(DefaultGetResultInterval):
		}
	}
}

// TransactionFailureReason replays the transaction at the block to get the revert reason.
func (a *Adaptor) TransactionFailureReason(ctx context.Context, txHash common.Hash, blockNumber *big.Int) (*TxFailure, error) {
	tx, pending, err := a.Client.TransactionByHash(ctx, txHash)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, errors.New("transaction is pending")
	}
	from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	if err != nil {
		return nil, err
	}
	p := ethereum.CallMsg{
		From:  from,
		To:    tx.To(),
		Gas:   tx.Gas(),
		Value: tx.Value(),
		Data:  tx.Data(),
	}
	_, err = a.Client.CallContract(ctx, p, blockNumber)
	if err == nil {
		return nil, errors.New("no failure on replay")
	}
	f := NewTxFailure(err)
	if f == nil {
		return nil, err
	}
	return f, nil
}

// EstimateGas returns *TxFailure if the execution reverts.
func (a *Adaptor) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	r, err := a.Client.EstimateGas(ctx, msg)
	if err != nil {
		if txf := NewTxFailure(err); txf != nil {
			return r, txf
		}
		return r, err
	}
	return r, nil
}

func (a *Adaptor) Handler(spec []byte, address contract.Address) (contract.Handler, error) {
	if !common.IsHexAddress(string(address)) {
		return nil, contract.ErrorCodeInvalidParam.Errorf("invalid address:%s", address)
	}
	h, err := NewHandler(spec, common.HexToAddress(string(address)), a, a.l)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (a *Adaptor) FinalityMonitor() contract.FinalityMonitor {
	return a.fm
}

func newTopicToAddressesMap(sigToAddrs map[string][]contract.Address) map[common.Hash][]common.Address {
	topicToAddrs := make(map[common.Hash][]common.Address)
	for signature, addresses := range sigToAddrs {
		al := make([]common.Address, len(addresses))
		for i, address := range addresses {
			al[i] = common.HexToAddress(string(address))
		}
		topicToAddrs[crypto.Keccak256Hash([]byte(signature))] = al
	}
	return topicToAddrs
}

// newFilterQuery returns the query of logs of any topic emitted by any address.
// The result is wider than topicToAddrs, so matchLog is required on the result.
func newFilterQuery(topicToAddrs map[common.Hash][]common.Address) *ethereum.FilterQuery {
	topics := make([]common.Hash, 0, len(topicToAddrs))
	addrs := make([]common.Address, 0)
	exists := make(map[common.Address]bool)
	for topic, al := range topicToAddrs {
		topics = append(topics, topic)
		for _, addr := range al {
			if !exists[addr] {
				exists[addr] = true
				addrs = append(addrs, addr)
			}
		}
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].Hex() < topics[j].Hex() })
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Hex() < addrs[j].Hex() })
	return &ethereum.FilterQuery{
		Addresses: addrs,
		Topics:    [][]common.Hash{topics},
	}
}

func matchLog(topicToAddrs map[common.Hash][]common.Address, l types.Log) bool {
	if len(l.Topics) == 0 {
		return false
	}
	addrs, ok := topicToAddrs[l.Topics[0]]
	if !ok {
		return false
	}
	if len(addrs) == 0 {
		return true
	}
	for _, addr := range addrs {
		if addr == l.Address {
			return true
		}
	}
	return false
}

func (a *Adaptor) MonitorEvent(
	ctx context.Context,
	cb contract.EventCallback,
	efs []contract.EventFilter,
	height int64) error {
	if len(efs) == 0 {
		return errors.New("EventFilter required")
	}
	nameToTopic := make(map[string]string)
	for i, f := range efs {
		ef, ok := f.(*EventFilter)
		if !ok {
			return errors.Errorf("not support EventFilter idx:%d %T", i, f)
		}
		nameToTopic[f.Spec().Name] = ef.Topic().Hex()
	}
	sigToAddrs := contract.NewSignatureToAddressesMap(efs)
	a.l.Debugf("MonitorEvent nameToTopic:%v height:%d", nameToTopic, height)
	return a.MonitorBaseEvent(ctx, func(be contract.BaseEvent) error {
		for _, f := range efs {
			e, err := f.Filter(be)
			if err != nil {
				a.l.Debugf("fail to Filter err:%+v", err)
				continue
			}
			if e != nil {
				if err = cb(e); err != nil {
					return err
				}
			}
		}
		return nil
	}, sigToAddrs, height)
}

// MonitorBaseEvent delivers the matched logs from height, or from the head if
// height is not positive. It subscribes the logs, falling back to polling the
// head when the node does not support notifications.
func (a *Adaptor) MonitorBaseEvent(
	ctx context.Context,
	cb contract.BaseEventCallback,
	sigToAddrs map[string][]contract.Address,
	height int64) error {
	topicToAddrs := newTopicToAddressesMap(sigToAddrs)
	fq := newFilterQuery(topicToAddrs)
	onLog := func(l types.Log) error {
		if l.Removed || !matchLog(topicToAddrs, l) {
			return nil
		}
		return cb(NewBaseEvent(l))
	}

	ch := make(chan types.Log, DefaultSubscribeBufferSize)
	s, err := a.Client.SubscribeFilterLogs(ctx, *fq, ch)
	if err != nil {
		if err != rpc.ErrNotificationsUnsupported {
			return errors.Wrapf(err, "fail to SubscribeFilterLogs err:%s", err.Error())
		}
		a.l.Debugf("fail to SubscribeFilterLogs, try monitorByPollHead")
		return a.monitorByPollHead(ctx, fq, height, onLog)
	}
	defer s.Unsubscribe()

	var caughtUp uint64
	if height > 0 {
		head, err := a.Client.BlockNumber(ctx)
		if err != nil {
			return errors.Wrapf(err, "fail to BlockNumber err:%s", err.Error())
		}
		if err = a.filterLogs(ctx, fq, uint64(height), head, onLog); err != nil {
			return err
		}
		caughtUp = head
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err = <-s.Err():
			return err
		case el := <-ch:
			if height > 0 && el.BlockNumber <= caughtUp {
				continue
			}
			a.l.Logf(a.opt.TransportLogLevel.Level(), "SubscribeFilterLogs:%+v", el)
			if err = onLog(el); err != nil {
				return err
			}
		}
	}
}

// filterLogs queries the logs of [from, to] in windows of BlockRange.
func (a *Adaptor) filterLogs(ctx context.Context, fq *ethereum.FilterQuery, from, to uint64, cb func(types.Log) error) error {
	for start := from; start <= to; start += a.opt.BlockRange {
		end := start + a.opt.BlockRange - 1
		if end > to {
			end = to
		}
		q := *fq
		q.FromBlock = new(big.Int).SetUint64(start)
		q.ToBlock = new(big.Int).SetUint64(end)
		a.l.Tracef("filterLogs from:%d to:%d", start, end)
		logs, err := a.Client.FilterLogs(ctx, q)
		if err != nil {
			return errors.Wrapf(err, "fail to FilterLogs err:%s", err.Error())
		}
		for _, l := range logs {
			if err = cb(l); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *Adaptor) monitorByPollHead(ctx context.Context, fq *ethereum.FilterQuery, height int64, cb func(types.Log) error) error {
	var next uint64
	if height > 0 {
		next = uint64(height)
	} else {
		head, err := a.Client.BlockNumber(ctx)
		if err != nil {
			return errors.Wrapf(err, "fail to BlockNumber err:%s", err.Error())
		}
		next = head + 1
	}
	interval := time.Duration(a.opt.PollHeadInterval) * time.Millisecond
	a.l.Debugf("monitorByPollHead height:%d", next)
	for {
		head, err := a.Client.BlockNumber(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.l.Warnf("fail to BlockNumber err:%+v", err)
		} else if head >= next {
			if err = a.filterLogs(ctx, fq, next, head, cb); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return err
			}
			next = head + 1
		}
		select {
		case <-ctx.Done():
			a.l.Debugf("monitorByPollHead context done next:%d", next)
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
