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
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"

	"github.com/icon-project/weth-sdk/contract"
)

const (
	DefaultPollingPeriodSec = 2
)

var (
	rpcFinalizedBlockNumber = big.NewInt(int64(rpc.FinalizedBlockNumber))
)

type BlockInfo struct {
	id     common.Hash
	height int64
}

func NewBlockInfo(h *types.Header) *BlockInfo {
	return &BlockInfo{
		id:     h.Hash(),
		height: h.Number.Int64(),
	}
}

func (b *BlockInfo) ID() contract.BlockID {
	return NewBlockID(b.id)
}

func (b *BlockInfo) Height() int64 {
	return b.height
}

func (b *BlockInfo) EqualID(id contract.BlockID) (bool, error) {
	h, err := CommonHashOf(id)
	if err != nil {
		return false, err
	}
	return h == b.id, nil
}

func (b *BlockInfo) String() string {
	return fmt.Sprintf("BlockInfo{ID:%s,Height:%d}", b.id.Hex(), b.height)
}

type BlockInfoJson struct {
	ID     common.Hash
	Height int64
}

func (b *BlockInfo) UnmarshalJSON(bytes []byte) error {
	v := &BlockInfoJson{}
	if err := json.Unmarshal(bytes, v); err != nil {
		return err
	}
	b.id = v.ID
	b.height = v.Height
	return nil
}

func (b *BlockInfo) MarshalJSON() ([]byte, error) {
	v := BlockInfoJson{
		ID:     b.id,
		Height: b.height,
	}
	return json.Marshal(v)
}

type FinalitySupplierOptions struct {
	PollingPeriodSec uint `json:"polling_period_sec"`
	// Confirmations is the depth from the head regarded as final.
	// Ignored when Finalized is set.
	Confirmations uint64 `json:"confirmations"`
	// Finalized uses the finalized block tag of the node.
	Finalized bool `json:"finalized"`
}

// FinalitySupplier polls the head of the node and supplies the final block,
// which is either the finalized block or the block of head minus confirmations.
type FinalitySupplier struct {
	c   Client
	opt FinalitySupplierOptions
	l   log.Logger
}

func NewFinalitySupplier(options contract.Options, c Client, l log.Logger) (*FinalitySupplier, error) {
	opt := FinalitySupplierOptions{}
	if err := contract.DecodeOptions(options, &opt); err != nil {
		return nil, err
	}
	if opt.PollingPeriodSec == 0 {
		opt.PollingPeriodSec = DefaultPollingPeriodSec
	}
	return &FinalitySupplier{
		c:   c,
		opt: opt,
		l:   l,
	}, nil
}

func (s *FinalitySupplier) latestHeader(ctx context.Context) (*types.Header, error) {
	if s.opt.Finalized {
		return s.c.HeaderByNumber(ctx, rpcFinalizedBlockNumber)
	}
	n, err := s.c.BlockNumber(ctx)
	if err != nil {
		return nil, err
	}
	if n < s.opt.Confirmations {
		n = 0
	} else {
		n -= s.opt.Confirmations
	}
	return s.c.HeaderByNumber(ctx, new(big.Int).SetUint64(n))
}

func (s *FinalitySupplier) Latest() (contract.BlockInfo, error) {
	h, err := s.latestHeader(context.Background())
	if err != nil {
		return nil, errors.Wrapf(err, "fail to get latest header err:%s", err.Error())
	}
	return NewBlockInfo(h), nil
}

func (s *FinalitySupplier) HeightByID(id contract.BlockID) (int64, error) {
	h, err := CommonHashOf(id)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid BlockID err:%v", err.Error())
	}
	bh, err := s.c.HeaderByHash(context.Background(), h)
	if err != nil {
		return 0, err
	}
	return bh.Number.Int64(), nil
}

// Serve calls cb whenever the final block goes beyond last, until ctx is done.
func (s *FinalitySupplier) Serve(ctx context.Context, last contract.BlockInfo, cb func(contract.BlockInfo)) error {
	var current int64 = -1
	if last != nil {
		current = last.Height()
	}
	period := time.Duration(s.opt.PollingPeriodSec) * time.Second
	for {
		bh, err := s.latestHeader(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.l.Warnf("fail to get latest header current:%d err:%+v", current, err)
		} else if bh.Number.Int64() > current {
			bi := NewBlockInfo(bh)
			s.l.Tracef("FinalitySupplier notify %s", bi)
			cb(bi)
			current = bi.height
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(period):
		}
	}
}
