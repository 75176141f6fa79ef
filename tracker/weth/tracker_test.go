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
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"
	"github.com/stretchr/testify/assert"

	"github.com/icon-project/weth-sdk/contract"
	"github.com/icon-project/weth-sdk/contract/eth"
	"github.com/icon-project/weth-sdk/contract/eth/ethtest"
	"github.com/icon-project/weth-sdk/database"
	"github.com/icon-project/weth-sdk/service"
	wethservice "github.com/icon-project/weth-sdk/service/weth"
	"github.com/icon-project/weth-sdk/tracker"
)

const (
	networkEthTest = "eth_test"
)

var (
	wethAddress = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	srcAddress  = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	dstAddress  = common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
)

func MustEncodeOptions(v interface{}) contract.Options {
	opt, err := contract.EncodeOptions(v)
	if err != nil {
		log.Panicf("%+v", err)
	}
	return opt
}

func packUint256(v int64) []byte {
	return common.LeftPadBytes(big.NewInt(v).Bytes(), 32)
}

func wethLog(height uint64, index uint, sig string, wad int64, indexed ...common.Address) types.Log {
	topics := []common.Hash{crypto.Keccak256Hash([]byte(sig))}
	for _, addr := range indexed {
		topics = append(topics, common.BytesToHash(addr.Bytes()))
	}
	return types.Log{
		Address:     wethAddress,
		Topics:      topics,
		Data:        packUint256(wad),
		BlockNumber: height,
		BlockHash:   common.BigToHash(new(big.Int).SetUint64(height)),
		TxHash:      common.BigToHash(new(big.Int).SetUint64(height*100 + uint64(index))),
		Index:       index,
	}
}

func transferLog(height uint64, index uint, src, dst common.Address, wad int64) types.Log {
	return wethLog(height, index, "Transfer(address,address,uint256)", wad, src, dst)
}

func depositLog(height uint64, index uint, dst common.Address, wad int64) types.Log {
	return wethLog(height, index, "Deposit(address,uint256)", wad, dst)
}

// findByHeightRange returns the stored events of network in [from, to] in log order.
func findByHeightRange(r *EventRepository, network string, from, to int64) ([]Event, error) {
	return r.FindWithOrder(orderByHeightAndLogIndex,
		"network = ? AND block_height BETWEEN ? AND ?", network, from, to)
}

func newTestTracker(t *testing.T, b *ethtest.Backend, opt TrackerOptions) *Tracker {
	l := log.GlobalLogger()
	a, err := eth.NewAdaptorWithClient(eth.NetworkTypeEth, b, nil, l)
	if err != nil {
		assert.FailNow(t, "fail to NewAdaptorWithClient", err)
	}
	s, err := service.NewService(wethservice.ServiceName, map[string]service.Network{
		networkEthTest: {
			NetworkType: eth.NetworkTypeEth,
			Adaptor:     a,
			Options: MustEncodeOptions(service.DefaultServiceOptions{
				ContractAddress: contract.Address(wethAddress.Hex()),
			}),
		},
	}, l)
	if err != nil {
		assert.FailNow(t, "fail to NewService", err)
	}
	db, err := database.OpenDatabase(database.Config{
		Driver: database.DriverSQLite,
		DBName: database.SQLiteMemory,
	}, l)
	if err != nil {
		assert.FailNow(t, "fail to OpenDatabase", err)
	}
	tkr, err := tracker.NewTracker(wethservice.ServiceName, s, map[string]tracker.Network{
		networkEthTest: {
			NetworkType: eth.NetworkTypeEth,
			Adaptor:     a,
			Options:     MustEncodeOptions(opt),
		},
	}, db, l)
	if err != nil {
		assert.FailNow(t, "fail to NewTracker", err)
	}
	assert.Equal(t, wethservice.ServiceName, tkr.Name())
	return tkr.(*Tracker)
}

func Test_NewTracker(t *testing.T) {
	assert.Contains(t, tracker.TrackerNames(), wethservice.ServiceName)
	b := ethtest.NewBackend()
	tkr := newTestTracker(t, b, TrackerOptions{})
	n := tkr.nMap[networkEthTest]
	assert.Equal(t, uint64(DefaultBlockRange), n.Options.BlockRange)
	assert.Equal(t, []string{EventApproval, EventDeposit, EventTransfer, EventWithdrawal}, n.Options.Events)

	a, _ := eth.NewAdaptorWithClient(eth.NetworkTypeEth, b, nil, log.GlobalLogger())
	_, err := NewTracker(tkr.s, map[string]tracker.Network{
		networkEthTest: {
			NetworkType: eth.NetworkTypeEth,
			Adaptor:     a,
			Options:     MustEncodeOptions(TrackerOptions{Events: []string{"Unknown"}}),
		},
	}, nil, log.GlobalLogger())
	assert.Error(t, err)
}

func Test_TrackerSync(t *testing.T) {
	b := ethtest.NewBackend()
	b.Emit(
		depositLog(1, 0, srcAddress, 10),
		transferLog(2, 0, srcAddress, dstAddress, 3),
		transferLog(3, 1, dstAddress, srcAddress, 1),
		transferLog(5, 0, srcAddress, dstAddress, 2),
	)
	tkr := newTestTracker(t, b, TrackerOptions{
		InitHeight: 1,
		BlockRange: 2,
		Events:     []string{EventDeposit, EventTransfer},
	})
	ctx := context.Background()

	assert.NoError(t, tkr.Sync(ctx, networkEthTest, 5))
	count, err := tkr.er.Count(nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(4), count)
	// windows [1,2], [3,4], [5,5] for each event
	assert.Equal(t, 6, len(b.Queries()))
	c, err := tkr.cr.FindByNetwork(networkEthTest)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), c.Height)

	assert.NoError(t, tkr.Sync(ctx, networkEthTest, 5))
	assert.Equal(t, 6, len(b.Queries()), "nothing to sync")

	assert.NoError(t, tkr.cr.Delete(c))
	assert.NoError(t, tkr.Sync(ctx, networkEthTest, 5))
	count, err = tkr.er.Count(nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(4), count, "duplicated events")

	l, err := findByHeightRange(tkr.er, networkEthTest, 2, 3)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(l))
	assert.Equal(t, EventTransfer, l[0].Name)
	assert.Equal(t, srcAddress.Hex(), l[0].Src)
	assert.Equal(t, dstAddress.Hex(), l[0].Dst)
	assert.Equal(t, "3", l[0].Wad)
	assert.Equal(t, int64(3), l[1].BlockHeight)

	assert.Error(t, tkr.Sync(ctx, "unknown", 5))
}

func Test_TrackerFind(t *testing.T) {
	b := ethtest.NewBackend()
	b.Emit(
		depositLog(1, 0, srcAddress, 10),
		transferLog(2, 0, srcAddress, dstAddress, 3),
		transferLog(3, 0, dstAddress, wethAddress, 1),
	)
	tkr := newTestTracker(t, b, TrackerOptions{InitHeight: 1})
	assert.NoError(t, tkr.Sync(context.Background(), networkEthTest, 3))

	page, err := tkr.Find(tracker.FindParam{
		Network: networkEthTest,
		Name:    EventTransfer,
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, page.TotalElements)
	assert.Equal(t, int64(2), page.Content[0].(Event).BlockHeight)

	page, err = tkr.Find(tracker.FindParam{
		Address:  srcAddress.Hex(),
		Pageable: database.Pageable{Size: 1, Sort: "block_height desc"},
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 1, len(page.Content))
	assert.Equal(t, int64(2), page.Content[0].(Event).BlockHeight)

	_, err = tkr.Find(tracker.FindParam{Network: "unknown"})
	assert.Error(t, err)
	_, err = tkr.Find(tracker.FindParam{Name: "Unknown"})
	assert.Error(t, err)
	_, err = tkr.Find(tracker.FindParam{Pageable: database.Pageable{Sort: "id; drop table weth_event"}})
	assert.Error(t, err)

	summary, err := tkr.Summary()
	assert.NoError(t, err)
	assert.Equal(t, []any{
		EventSummary{Network: networkEthTest, Name: EventDeposit, Count: 1},
		EventSummary{Network: networkEthTest, Name: EventTransfer, Count: 2},
	}, summary)

	networks := tkr.Networks()
	assert.Equal(t, 1, len(networks))
	assert.Equal(t, int64(3), networks[0].Height)
	assert.Equal(t, wethAddress.Hex(), networks[0].Address)
}

func Test_TrackerFindByAddress(t *testing.T) {
	b := ethtest.NewBackend()
	b.Emit(transferLog(1, 0, srcAddress, dstAddress, 3))
	tkr := newTestTracker(t, b, TrackerOptions{InitHeight: 1})
	assert.NoError(t, tkr.Sync(context.Background(), networkEthTest, 1))

	for _, address := range []string{
		srcAddress.Hex(),
		strings.ToLower(srcAddress.Hex()),
		"0x" + strings.ToUpper(srcAddress.Hex()[2:]),
	} {
		page, err := tkr.Find(tracker.FindParam{Address: address})
		assert.NoError(t, err)
		assert.Equal(t, 1, page.TotalElements, "address:%s", address)
	}

	for _, address := range []string{"0x1234", "not an address"} {
		_, err := tkr.Find(tracker.FindParam{Address: address})
		assert.True(t, errors.IllegalArgumentError.Equals(err), "address:%s", address)
	}
}

func Test_TrackerStart(t *testing.T) {
	b := ethtest.NewBackend()
	b.Emit(depositLog(1, 0, srcAddress, 10))
	tkr := newTestTracker(t, b, TrackerOptions{InitHeight: 1})

	assert.NoError(t, tkr.Start())
	assert.Error(t, tkr.Start())
	assert.Eventually(t, func() bool {
		count, err := tkr.er.Count(nil)
		return err == nil && count == 1
	}, 5*time.Second, 100*time.Millisecond)

	b.Emit(transferLog(2, 0, srcAddress, dstAddress, 3))
	assert.Eventually(t, func() bool {
		count, err := tkr.er.Count(nil)
		return err == nil && count == 2
	}, 5*time.Second, 100*time.Millisecond)

	assert.NoError(t, tkr.Stop())
	assert.Error(t, tkr.Stop())
}
