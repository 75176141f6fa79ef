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
	"context"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"

	"github.com/icon-project/weth-sdk/contract/eth/ethtest"
)

const testABI = `[
{"anonymous":false,"inputs":[{"indexed":true,"name":"src","type":"address"},{"indexed":true,"name":"guy","type":"address"},{"indexed":false,"name":"wad","type":"uint256"}],"name":"Approval","type":"event"},
{"anonymous":false,"inputs":[{"indexed":true,"name":"dst","type":"address"},{"indexed":false,"name":"wad","type":"uint256"}],"name":"Deposit","type":"event"},
{"anonymous":false,"inputs":[{"indexed":true,"name":"src","type":"address"},{"indexed":true,"name":"dst","type":"address"},{"indexed":false,"name":"wad","type":"uint256"}],"name":"Transfer","type":"event"},
{"inputs":[{"name":"guy","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[],"name":"deposit","outputs":[],"stateMutability":"payable","type":"function"},
{"inputs":[{"name":"dst","type":"address"},{"name":"wad","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"},
{"inputs":[{"name":"_amount","type":"uint256"}],"name":"withdraw","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

var (
	contractAddr = common.HexToAddress("0x00000000000000000000000000000000000c0ffe")
	alice        = common.HexToAddress("0x000000000000000000000000000000000000a11c")
	bob          = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	oneEther     = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
)

func newTestContract(t *testing.T) (*BoundContract, *ethtest.Backend) {
	parsed, err := abi.JSON(strings.NewReader(testABI))
	if err != nil {
		t.Fatalf("fail to parse abi err:%+v", err)
	}
	backend := ethtest.NewBackend()
	return NewBoundContract(contractAddr, parsed, backend), backend
}

func selector(sig string) []byte {
	return crypto.Keccak256([]byte(sig))[:4]
}

func word(v *big.Int) []byte {
	return common.LeftPadBytes(v.Bytes(), 32)
}

func TestBoundContract_Populate(t *testing.T) {
	c, backend := newTestContract(t)

	tx, err := c.Populate(WithValue(&Overrides{From: alice, GasLimit: 60000}, oneEther), "deposit")
	assert.NoError(t, err)
	assert.Equal(t, contractAddr, *tx.To)
	assert.Equal(t, alice, tx.From)
	assert.Equal(t, selector("deposit()"), tx.Data)
	assert.Equal(t, 0, oneEther.Cmp(tx.Value))
	assert.Equal(t, uint64(60000), tx.GasLimit)

	tx, err = c.Populate(nil, "transfer", bob, big.NewInt(5))
	assert.NoError(t, err)
	assert.Equal(t, selector("transfer(address,uint256)"), tx.Data[:4])
	assert.Len(t, tx.Data, 4+32*2)
	assert.Nil(t, tx.Value)

	assert.Empty(t, backend.Calls())
	assert.Empty(t, backend.EstimateGasCalls())
	assert.Empty(t, backend.Sent())
}

func TestBoundContract_NotPayable(t *testing.T) {
	c, backend := newTestContract(t)
	opts := WithValue(nil, big.NewInt(1))

	_, err := c.Populate(opts, "withdraw", big.NewInt(1))
	assert.True(t, ErrorCodeNotPayable.Equals(err))
	_, err = c.Simulate(opts, "withdraw", big.NewInt(1))
	assert.True(t, ErrorCodeNotPayable.Equals(err))
	_, err = c.EstimateGas(opts, "withdraw", big.NewInt(1))
	assert.True(t, ErrorCodeNotPayable.Equals(err))
	_, err = c.Transact(opts, "withdraw", big.NewInt(1))
	assert.True(t, ErrorCodeNotPayable.Equals(err))

	assert.Empty(t, backend.Calls())
	assert.Empty(t, backend.EstimateGasCalls())
	assert.Empty(t, backend.Sent())

	_, err = c.Populate(WithValue(nil, big.NewInt(0)), "withdraw", big.NewInt(1))
	assert.NoError(t, err)
}

func TestBoundContract_UnknownMethod(t *testing.T) {
	c, _ := newTestContract(t)
	_, err := c.Call(nil, "nothing")
	assert.True(t, ErrorCodeUnknownMethod.Equals(err))
	_, err = c.Populate(nil, "nothing")
	assert.True(t, ErrorCodeUnknownMethod.Equals(err))
}

func TestBoundContract_Call(t *testing.T) {
	c, backend := newTestContract(t)
	balance := big.NewInt(12345)
	backend.OnCall = func(msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
		return word(balance), nil
	}

	out, err := c.Call(&CallOverrides{From: bob, BlockNumber: big.NewInt(7)}, "balanceOf", alice)
	assert.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, 0, balance.Cmp(out[0].(*big.Int)))

	calls := backend.Calls()
	assert.Len(t, calls, 1)
	assert.Equal(t, bob, calls[0].From)
	assert.Equal(t, contractAddr, *calls[0].To)
	assert.Equal(t, selector("balanceOf(address)"), calls[0].Data[:4])
	assert.Equal(t, common.LeftPadBytes(alice.Bytes(), 32), calls[0].Data[4:])

	_, err = c.Call(&CallOverrides{Pending: true}, "balanceOf", alice)
	assert.ErrorIs(t, err, bind.ErrNoPendingState)
}

func TestBoundContract_CallNoCode(t *testing.T) {
	c, backend := newTestContract(t)
	backend.Code = nil
	_, err := c.Call(nil, "balanceOf", alice)
	assert.ErrorIs(t, err, bind.ErrNoCode)
}

func TestBoundContract_Simulate(t *testing.T) {
	c, backend := newTestContract(t)
	backend.OnCall = func(msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
		return word(big.NewInt(1)), nil
	}

	out, err := c.Simulate(&Overrides{From: alice}, "transfer", bob, big.NewInt(3))
	assert.NoError(t, err)
	assert.Equal(t, []interface{}{true}, out)

	out, err = c.Simulate(WithValue(&Overrides{From: alice}, oneEther), "deposit")
	assert.NoError(t, err)
	assert.Empty(t, out)

	calls := backend.Calls()
	assert.Len(t, calls, 2)
	assert.Equal(t, alice, calls[0].From)
	assert.Nil(t, calls[0].Value)
	assert.Equal(t, 0, oneEther.Cmp(calls[1].Value))
	assert.Empty(t, backend.Sent())
}

func TestBoundContract_EstimateGas(t *testing.T) {
	c, backend := newTestContract(t)

	gas, err := c.EstimateGas(WithValue(&Overrides{From: alice}, oneEther), "deposit")
	assert.NoError(t, err)
	assert.Equal(t, ethtest.DefaultGasEstimate, gas)

	msgs := backend.EstimateGasCalls()
	assert.Len(t, msgs, 1)
	assert.Equal(t, alice, msgs[0].From)
	assert.Equal(t, 0, oneEther.Cmp(msgs[0].Value))
	assert.Equal(t, selector("deposit()"), msgs[0].Data)
}

func TestBoundContract_Transact(t *testing.T) {
	c, backend := newTestContract(t)
	key, err := crypto.GenerateKey()
	assert.NoError(t, err)
	auth, err := bind.NewKeyedTransactorWithChainID(key, backend.Chain)
	assert.NoError(t, err)
	auth.Value = big.NewInt(99)

	_, err = c.Transact(nil, "transfer", bob, big.NewInt(1))
	assert.Error(t, err)

	signed := c.WithSigner(auth)
	tx, err := signed.Transact(nil, "transfer", bob, big.NewInt(1))
	assert.NoError(t, err)
	assert.Equal(t, contractAddr, *tx.To())
	assert.Equal(t, uint8(types.DynamicFeeTxType), tx.Type())
	assert.Equal(t, ethtest.DefaultGasEstimate, tx.Gas())
	assert.Equal(t, 0, tx.Value().Sign())
	assert.Len(t, backend.Sent(), 1)

	from, err := types.Sender(types.LatestSignerForChainID(backend.Chain), tx)
	assert.NoError(t, err)
	assert.Equal(t, auth.From, from)

	tx, err = signed.Transact(WithValue(&Overrides{NoSend: true, GasPrice: big.NewInt(7), GasLimit: 30000}, oneEther), "deposit")
	assert.NoError(t, err)
	assert.Equal(t, uint8(types.LegacyTxType), tx.Type())
	assert.Equal(t, 0, oneEther.Cmp(tx.Value()))
	assert.Equal(t, uint64(30000), tx.Gas())
	assert.Len(t, backend.Sent(), 1)
}

func TestBoundContract_Attach(t *testing.T) {
	c, _ := newTestContract(t)
	other := ethtest.NewBackend()

	a := c.Attach(bob)
	assert.Equal(t, bob, a.Address())
	assert.Equal(t, contractAddr, c.Address())

	b := c.Connect(other)
	assert.Equal(t, contractAddr, b.Address())
	assert.Equal(t, bind.ContractBackend(other), b.Backend())
}

func TestPopulatedTransaction_Transaction(t *testing.T) {
	to := contractAddr
	p := &PopulatedTransaction{To: &to, Data: []byte{1}, Nonce: big.NewInt(3), GasLimit: 21000,
		GasFeeCap: big.NewInt(10), GasTipCap: big.NewInt(1)}
	tx := p.Transaction(big.NewInt(5))
	assert.Equal(t, uint8(types.DynamicFeeTxType), tx.Type())
	assert.Equal(t, uint64(3), tx.Nonce())
	assert.Equal(t, 0, big.NewInt(5).Cmp(tx.ChainId()))

	p.GasPrice = big.NewInt(2)
	tx = p.Transaction(big.NewInt(5))
	assert.Equal(t, uint8(types.LegacyTxType), tx.Type())
}

func TestOverrides_TransactOpts(t *testing.T) {
	ctx := context.Background()
	auth := &bind.TransactOpts{From: alice, GasLimit: 1, Value: big.NewInt(5)}

	opts := (*Overrides)(nil).transactOpts(auth)
	assert.Equal(t, alice, opts.From)
	assert.Nil(t, opts.Value)
	assert.Equal(t, big.NewInt(5), auth.Value)

	opts = (&Overrides{From: bob, GasLimit: 9, Context: ctx}).transactOpts(auth)
	assert.Equal(t, bob, opts.From)
	assert.Equal(t, uint64(9), opts.GasLimit)
	assert.Equal(t, ctx, opts.Context)

	opts = WithValue(nil, big.NewInt(8)).transactOpts(auth)
	assert.Equal(t, alice, opts.From)
	assert.Equal(t, big.NewInt(8), opts.Value)

	opts = (*PayableOverrides)(nil).transactOpts(nil)
	assert.Nil(t, opts.Value)
}
