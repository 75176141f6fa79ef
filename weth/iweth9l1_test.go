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
	"bytes"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"

	"github.com/icon-project/weth-sdk/contract/eth/ethtest"
	"github.com/icon-project/weth-sdk/proxy"
)

var (
	wethAddr = common.HexToAddress("0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2")
	alice    = common.HexToAddress("0x000000000000000000000000000000000000a11c")
	bob      = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	oneEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
)

func newTestWETH(t *testing.T) (*IWETH9L1, *ethtest.Backend) {
	backend := ethtest.NewBackend()
	w, err := NewIWETH9L1(wethAddr, backend)
	if err != nil {
		t.Fatalf("fail to NewIWETH9L1 err:%+v", err)
	}
	return w, backend
}

func TestMetaData_MatchesABI(t *testing.T) {
	parsed, err := IWETH9L1MetaData.GetAbi()
	assert.NoError(t, err)
	embedded, err := abi.JSON(bytes.NewReader(ABI))
	assert.NoError(t, err)

	assert.Equal(t, len(embedded.Methods), len(parsed.Methods))
	for name, m := range embedded.Methods {
		assert.Equal(t, m.ID, parsed.Methods[name].ID, name)
		assert.Equal(t, m.StateMutability, parsed.Methods[name].StateMutability, name)
	}
	assert.Equal(t, len(embedded.Events), len(parsed.Events))
	for name, e := range embedded.Events {
		assert.Equal(t, e.ID, parsed.Events[name].ID, name)
	}
	for _, name := range EventNames {
		_, ok := parsed.Events[name]
		assert.True(t, ok, name)
	}
}

func TestIWETH9L1_Selectors(t *testing.T) {
	w, _ := newTestWETH(t)
	i := w.Interface()
	for sig, selector := range map[string]string{
		"balanceOf(address)":                    "0x70a08231",
		"transfer(address,uint256)":             "0xa9059cbb",
		"approve(address,uint256)":              "0x095ea7b3",
		"transferFrom(address,address,uint256)": "0x23b872dd",
		"totalSupply()":                         "0x18160ddd",
		"deposit()":                             "0xd0e30db0",
		"withdraw(uint256)":                     "0x2e1a7d4d",
		"allowance(address)":                    hexutil.Encode(crypto.Keccak256([]byte("allowance(address)"))[:4]),
	} {
		m, err := i.GetFunction(sig)
		assert.NoError(t, err, sig)
		assert.Equal(t, selector, hexutil.Encode(m.ID), sig)
	}
	for _, sig := range []string{
		"Approval(address,address,uint256)",
		"Deposit(address,uint256)",
		"Transfer(address,address,uint256)",
		"Withdrawal(address,uint256)",
	} {
		e, err := i.GetEvent(sig)
		assert.NoError(t, err, sig)
		assert.Equal(t, crypto.Keccak256Hash([]byte(sig)), e.ID, sig)
	}
}

func TestIWETH9L1_FunctionDataRoundTrip(t *testing.T) {
	w, _ := newTestWETH(t)
	i := w.Interface()
	wad := big.NewInt(1234567)
	for name, args := range map[string][]interface{}{
		"allowance":    {alice},
		"approve":      {bob, wad},
		"balanceOf":    {alice},
		"deposit":      {},
		"totalSupply":  {},
		"transfer":     {bob, wad},
		"transferFrom": {alice, bob, wad},
		"withdraw":     {wad},
	} {
		data, err := i.EncodeFunctionData(name, args...)
		assert.NoError(t, err, name)
		decoded, err := i.DecodeFunctionData(name, data)
		assert.NoError(t, err, name)
		assert.Equal(t, len(args), len(decoded), name)
		for idx := range args {
			if v, ok := args[idx].(*big.Int); ok {
				assert.Equal(t, 0, v.Cmp(decoded[idx].(*big.Int)), name)
			} else {
				assert.Equal(t, args[idx], decoded[idx], name)
			}
		}
	}
}

func TestIWETH9L1_ResultShape(t *testing.T) {
	w, backend := newTestWETH(t)
	balance := big.NewInt(5000)
	backend.OnCall = func(msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
		m, err := w.Interface().GetFunction(hexutil.Encode(msg.Data[:4]))
		if err != nil {
			return nil, err
		}
		switch m.Name {
		case "balanceOf", "totalSupply", "allowance":
			return m.Outputs.Pack(balance)
		case "approve", "transfer", "transferFrom":
			return m.Outputs.Pack(true)
		}
		return nil, nil
	}

	v, err := w.BalanceOf(nil, alice)
	assert.NoError(t, err)
	assert.Equal(t, 0, balance.Cmp(v))

	out, err := w.Functions.BalanceOf(nil, alice)
	assert.NoError(t, err)
	assert.Equal(t, 0, balance.Cmp(out.Out0))

	supply, err := w.TotalSupply(&proxy.CallOverrides{BlockNumber: big.NewInt(10)})
	assert.NoError(t, err)
	assert.Equal(t, 0, balance.Cmp(supply))

	allowance, err := w.Functions.Allowance(nil, bob)
	assert.NoError(t, err)
	assert.Equal(t, 0, balance.Cmp(allowance.Out0))

	ok, err := w.CallStatic.Transfer(&proxy.Overrides{From: alice}, bob, big.NewInt(1))
	assert.NoError(t, err)
	assert.True(t, ok)

	err = w.CallStatic.Deposit(proxy.WithValue(&proxy.Overrides{From: alice}, oneEther))
	assert.NoError(t, err)
	err = w.CallStatic.Withdraw(nil, big.NewInt(1))
	assert.NoError(t, err)

	assert.Empty(t, backend.Sent())
}

func TestIWETH9L1_Payable(t *testing.T) {
	w, backend := newTestWETH(t)

	tx, err := w.PopulateTransaction.Deposit(proxy.WithValue(&proxy.Overrides{From: alice}, oneEther))
	assert.NoError(t, err)
	assert.Equal(t, 0, oneEther.Cmp(tx.Value))
	assert.Equal(t, wethAddr, *tx.To)

	gas, err := w.EstimateGas.Deposit(proxy.WithValue(nil, oneEther))
	assert.NoError(t, err)
	assert.Equal(t, ethtest.DefaultGasEstimate, gas)

	tx, err = w.PopulateTransaction.Withdraw(&proxy.Overrides{From: alice}, oneEther)
	assert.NoError(t, err)
	assert.Nil(t, tx.Value)

	_, err = w.Contract().Populate(proxy.WithValue(nil, oneEther), "withdraw", oneEther)
	assert.True(t, proxy.ErrorCodeNotPayable.Equals(err))
	_, err = w.Contract().Transact(proxy.WithValue(nil, oneEther), "withdraw", oneEther)
	assert.True(t, proxy.ErrorCodeNotPayable.Equals(err))
	assert.Empty(t, backend.Sent())
}

func TestIWETH9L1_Filters(t *testing.T) {
	w, backend := newTestWETH(t)

	f, err := w.Filters.Transfer(nil, []common.Address{bob})
	assert.NoError(t, err)
	topics := f.Topics()
	assert.Len(t, topics, 3)
	assert.Equal(t, []common.Hash{crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))}, topics[0])
	assert.Empty(t, topics[1])
	assert.Equal(t, []common.Hash{common.BytesToHash(bob.Bytes())}, topics[2])

	wad := common.LeftPadBytes(big.NewInt(9).Bytes(), 32)
	transfer := func(src, dst common.Address, height uint64) types.Log {
		return types.Log{
			Address:     wethAddr,
			Topics:      []common.Hash{topics[0][0], common.BytesToHash(src.Bytes()), common.BytesToHash(dst.Bytes())},
			Data:        wad,
			BlockNumber: height,
		}
	}
	backend.Emit(transfer(alice, bob, 1), transfer(bob, alice, 2), transfer(common.Address{}, bob, 3))

	events, err := f.Filter(nil)
	assert.NoError(t, err)
	assert.Len(t, events, 2)
	for _, e := range events {
		assert.Equal(t, bob, e.Dst)
		assert.Equal(t, int64(9), e.Wad.Int64())
	}
	assert.Equal(t, alice, events[0].Src)
	assert.Equal(t, common.Address{}, events[1].Src)

	df, err := w.Filters.Deposit(nil)
	assert.NoError(t, err)
	assert.Len(t, df.Topics(), 1)

	af, err := w.Filters.Approval([]common.Address{alice, bob}, nil)
	assert.NoError(t, err)
	assert.Len(t, af.Topics()[1], 2)

	wf, err := w.Filters.Withdrawal([]common.Address{alice})
	assert.NoError(t, err)
	assert.Equal(t, "Withdrawal", wf.Event().Name)
}

func TestIWETH9L1_ParseEvents(t *testing.T) {
	w, _ := newTestWETH(t)
	wad := common.LeftPadBytes(oneEther.Bytes(), 32)

	l := types.Log{
		Address: wethAddr,
		Topics:  []common.Hash{crypto.Keccak256Hash([]byte("Deposit(address,uint256)")), common.BytesToHash(alice.Bytes())},
		Data:    wad,
	}
	d, err := w.ParseDeposit(l)
	assert.NoError(t, err)
	assert.Equal(t, alice, d.Dst)
	assert.Equal(t, 0, oneEther.Cmp(d.Wad))
	assert.Equal(t, l, d.Raw)

	_, err = w.ParseWithdrawal(l)
	assert.Error(t, err)

	l.Topics[0] = crypto.Keccak256Hash([]byte("Withdrawal(address,uint256)"))
	wd, err := w.ParseWithdrawal(l)
	assert.NoError(t, err)
	assert.Equal(t, alice, wd.Src)

	l.Topics = []common.Hash{
		crypto.Keccak256Hash([]byte("Approval(address,address,uint256)")),
		common.BytesToHash(alice.Bytes()),
		common.BytesToHash(bob.Bytes()),
	}
	a, err := w.ParseApproval(l)
	assert.NoError(t, err)
	assert.Equal(t, alice, a.Src)
	assert.Equal(t, bob, a.Guy)
}

func TestIWETH9L1_Attach(t *testing.T) {
	w, _ := newTestWETH(t)
	other := w.Attach(bob)
	assert.Equal(t, bob, other.Address())
	assert.Equal(t, wethAddr, w.Address())

	tx, err := other.PopulateTransaction.Transfer(nil, alice, big.NewInt(1))
	assert.NoError(t, err)
	assert.Equal(t, bob, *tx.To)

	connected := w.Connect(ethtest.NewBackend())
	assert.Equal(t, wethAddr, connected.Address())
	assert.NotSame(t, w.Contract().Backend(), connected.Contract().Backend())
}
