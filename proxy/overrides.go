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

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// TxOptions is implemented by *CallOverrides, *Overrides and *PayableOverrides.
// A nil pointer of any of them is a valid TxOptions and means "no overrides".
type TxOptions interface {
	transactOpts(auth *bind.TransactOpts) *bind.TransactOpts
}

// CallOverrides are the options of a read-only call.
type CallOverrides struct {
	From        common.Address
	BlockNumber *big.Int
	Pending     bool
	Context     context.Context
}

func (o *CallOverrides) callOpts() *bind.CallOpts {
	if o == nil {
		return &bind.CallOpts{}
	}
	return &bind.CallOpts{
		Pending:     o.Pending,
		From:        o.From,
		BlockNumber: o.BlockNumber,
		Context:     o.Context,
	}
}

func (o *CallOverrides) transactOpts(auth *bind.TransactOpts) *bind.TransactOpts {
	opts := (*Overrides)(nil).transactOpts(auth)
	if o == nil {
		return opts
	}
	if o.From != (common.Address{}) {
		opts.From = o.From
	}
	if o.Context != nil {
		opts.Context = o.Context
	}
	return opts
}

// Overrides are the options of a state-mutating call. There is no way to attach
// a value, use PayableOverrides for payable methods.
type Overrides struct {
	From      common.Address
	Signer    bind.SignerFn
	Nonce     *big.Int
	GasPrice  *big.Int
	GasFeeCap *big.Int
	GasTipCap *big.Int
	GasLimit  uint64
	NoSend    bool
	Context   context.Context
}

func (o *Overrides) transactOpts(auth *bind.TransactOpts) *bind.TransactOpts {
	opts := &bind.TransactOpts{}
	if auth != nil {
		*opts = *auth
	}
	opts.Value = nil
	if o == nil {
		return opts
	}
	if o.From != (common.Address{}) {
		opts.From = o.From
	}
	if o.Signer != nil {
		opts.Signer = o.Signer
	}
	if o.Nonce != nil {
		opts.Nonce = o.Nonce
	}
	if o.GasPrice != nil {
		opts.GasPrice = o.GasPrice
	}
	if o.GasFeeCap != nil {
		opts.GasFeeCap = o.GasFeeCap
	}
	if o.GasTipCap != nil {
		opts.GasTipCap = o.GasTipCap
	}
	if o.GasLimit > 0 {
		opts.GasLimit = o.GasLimit
	}
	if o.Context != nil {
		opts.Context = o.Context
	}
	opts.NoSend = opts.NoSend || o.NoSend
	return opts
}

// PayableOverrides are Overrides with the amount of wei to send along.
type PayableOverrides struct {
	Overrides
	Value *big.Int
}

func (o *PayableOverrides) transactOpts(auth *bind.TransactOpts) *bind.TransactOpts {
	if o == nil {
		return (*Overrides)(nil).transactOpts(auth)
	}
	opts := o.Overrides.transactOpts(auth)
	opts.Value = o.Value
	return opts
}

// WithValue returns PayableOverrides of o carrying value.
func WithValue(o *Overrides, value *big.Int) *PayableOverrides {
	po := &PayableOverrides{Value: value}
	if o != nil {
		po.Overrides = *o
	}
	return po
}

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
