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
)

// BoundContract is the runtime of generated bindings. It shapes every call
// into the four forms: send, static call, gas estimation and populate.
type BoundContract struct {
	bc      *bind.BoundContract
	address common.Address
	abi     abi.ABI
	backend bind.ContractBackend
	auth    *bind.TransactOpts
}

func NewBoundContract(address common.Address, parsed abi.ABI, backend bind.ContractBackend) *BoundContract {
	return &BoundContract{
		bc:      bind.NewBoundContract(address, parsed, backend, backend, backend),
		address: address,
		abi:     parsed,
		backend: backend,
	}
}

func (c *BoundContract) Address() common.Address {
	return c.address
}

func (c *BoundContract) ABI() abi.ABI {
	return c.abi
}

func (c *BoundContract) Backend() bind.ContractBackend {
	return c.backend
}

func (c *BoundContract) Interface() *Interface {
	return NewInterface(c.abi)
}

// Attach returns a copy bound to address.
func (c *BoundContract) Attach(address common.Address) *BoundContract {
	r := NewBoundContract(address, c.abi, c.backend)
	r.auth = c.auth
	return r
}

// Connect returns a copy using backend.
func (c *BoundContract) Connect(backend bind.ContractBackend) *BoundContract {
	r := NewBoundContract(c.address, c.abi, backend)
	r.auth = c.auth
	return r
}

// WithSigner returns a copy which uses auth as default transact options.
// Value of auth is ignored.
func (c *BoundContract) WithSigner(auth *bind.TransactOpts) *BoundContract {
	r := NewBoundContract(c.address, c.abi, c.backend)
	r.auth = auth
	return r
}

func (c *BoundContract) method(name string) (abi.Method, error) {
	m, ok := c.abi.Methods[name]
	if !ok {
		return m, ErrorCodeUnknownMethod.Errorf("unknown method:%s", name)
	}
	return m, nil
}

func (c *BoundContract) resolve(opts TxOptions) *bind.TransactOpts {
	if opts == nil {
		return (*Overrides)(nil).transactOpts(c.auth)
	}
	return opts.transactOpts(c.auth)
}

func checkPayable(m abi.Method, value *big.Int) error {
	if value != nil && value.Sign() > 0 && !m.IsPayable() {
		return ErrorCodeNotPayable.Errorf("method:%s is not payable, value:%v", m.RawName, value)
	}
	return nil
}

// Call invokes a read-only method and returns the decoded outputs.
func (c *BoundContract) Call(opts *CallOverrides, method string, params ...interface{}) ([]interface{}, error) {
	if _, err := c.method(method); err != nil {
		return nil, err
	}
	return c.call(opts.callOpts(), nil, method, params...)
}

// Simulate invokes any method as a read-only call, so the state is not mutated.
func (c *BoundContract) Simulate(opts TxOptions, method string, params ...interface{}) ([]interface{}, error) {
	m, err := c.method(method)
	if err != nil {
		return nil, err
	}
	topts := c.resolve(opts)
	if err = checkPayable(m, topts.Value); err != nil {
		return nil, err
	}
	copts := &bind.CallOpts{From: topts.From, Context: topts.Context}
	if co, ok := opts.(*CallOverrides); ok && co != nil {
		copts = co.callOpts()
	}
	return c.call(copts, topts.Value, method, params...)
}

func (c *BoundContract) call(opts *bind.CallOpts, value *big.Int, method string, params ...interface{}) ([]interface{}, error) {
	input, err := c.abi.Pack(method, params...)
	if err != nil {
		return nil, err
	}
	ctx := ensureContext(opts.Context)
	msg := ethereum.CallMsg{From: opts.From, To: &c.address, Data: input, Value: value}
	var output []byte
	if opts.Pending {
		pb, ok := c.backend.(bind.PendingContractCaller)
		if !ok {
			return nil, bind.ErrNoPendingState
		}
		output, err = pb.PendingCallContract(ctx, msg)
	} else {
		output, err = c.backend.CallContract(ctx, msg, opts.BlockNumber)
	}
	if err != nil {
		return nil, err
	}
	if len(output) == 0 && len(c.abi.Methods[method].Outputs) > 0 {
		code, err := c.backend.CodeAt(ctx, c.address, opts.BlockNumber)
		if err != nil {
			return nil, err
		}
		if len(code) == 0 {
			return nil, bind.ErrNoCode
		}
	}
	return c.abi.Unpack(method, output)
}

// Transact signs and submits a transaction invoking method.
func (c *BoundContract) Transact(opts TxOptions, method string, params ...interface{}) (*types.Transaction, error) {
	m, err := c.method(method)
	if err != nil {
		return nil, err
	}
	topts := c.resolve(opts)
	if err = checkPayable(m, topts.Value); err != nil {
		return nil, err
	}
	return c.bc.Transact(topts, method, params...)
}

// EstimateGas returns the amount of gas required to invoke method.
func (c *BoundContract) EstimateGas(opts TxOptions, method string, params ...interface{}) (uint64, error) {
	m, err := c.method(method)
	if err != nil {
		return 0, err
	}
	topts := c.resolve(opts)
	if err = checkPayable(m, topts.Value); err != nil {
		return 0, err
	}
	input, err := c.abi.Pack(method, params...)
	if err != nil {
		return 0, err
	}
	return c.backend.EstimateGas(ensureContext(topts.Context), ethereum.CallMsg{
		From:      topts.From,
		To:        &c.address,
		GasPrice:  topts.GasPrice,
		GasFeeCap: topts.GasFeeCap,
		GasTipCap: topts.GasTipCap,
		Value:     topts.Value,
		Data:      input,
	})
}

// Populate returns the unsigned transaction of method with the given options.
// It never reaches the backend.
func (c *BoundContract) Populate(opts TxOptions, method string, params ...interface{}) (*PopulatedTransaction, error) {
	m, err := c.method(method)
	if err != nil {
		return nil, err
	}
	topts := c.resolve(opts)
	if err = checkPayable(m, topts.Value); err != nil {
		return nil, err
	}
	input, err := c.abi.Pack(method, params...)
	if err != nil {
		return nil, err
	}
	to := c.address
	return &PopulatedTransaction{
		To:        &to,
		From:      topts.From,
		Data:      input,
		Value:     topts.Value,
		Nonce:     topts.Nonce,
		GasLimit:  topts.GasLimit,
		GasPrice:  topts.GasPrice,
		GasFeeCap: topts.GasFeeCap,
		GasTipCap: topts.GasTipCap,
	}, nil
}

// UnpackLog decodes log of event into out.
func (c *BoundContract) UnpackLog(out interface{}, event string, log types.Log) error {
	ev, ok := c.abi.Events[event]
	if !ok {
		return ErrorCodeUnknownEvent.Errorf("unknown event:%s", event)
	}
	if len(log.Topics) == 0 || log.Topics[0] != ev.ID {
		return ErrorCodeInvalidData.Errorf("event signature mismatch, event:%s", event)
	}
	return c.bc.UnpackLog(out, event, log)
}

type PopulatedTransaction struct {
	To        *common.Address `json:"to"`
	From      common.Address  `json:"from"`
	Data      []byte          `json:"data"`
	Value     *big.Int        `json:"value,omitempty"`
	Nonce     *big.Int        `json:"nonce,omitempty"`
	GasLimit  uint64          `json:"gasLimit,omitempty"`
	GasPrice  *big.Int        `json:"gasPrice,omitempty"`
	GasFeeCap *big.Int        `json:"maxFeePerGas,omitempty"`
	GasTipCap *big.Int        `json:"maxPriorityFeePerGas,omitempty"`
}

// Transaction returns the unsigned transaction for chainID, legacy if GasPrice is set.
func (p *PopulatedTransaction) Transaction(chainID *big.Int) *types.Transaction {
	var nonce uint64
	if p.Nonce != nil {
		nonce = p.Nonce.Uint64()
	}
	if p.GasPrice != nil {
		return types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			GasPrice: p.GasPrice,
			Gas:      p.GasLimit,
			To:       p.To,
			Value:    p.Value,
			Data:     p.Data,
		})
	}
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: p.GasTipCap,
		GasFeeCap: p.GasFeeCap,
		Gas:       p.GasLimit,
		To:        p.To,
		Value:     p.Value,
		Data:      p.Data,
	})
}
