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

package contract

import (
	"context"
)

type Params map[string]interface{}
type ReturnValue interface{}
type TxID interface{}
type BlockID interface{}
type TxResult interface {
	Success() bool
	Events() []BaseEvent
	Failure() interface{}
	BlockID() BlockID
	BlockHeight() int64
	TxID() TxID
}
type BaseEvent interface {
	Address() Address
	SignatureMatcher() SignatureMatcher
	Indexed() int
	IndexedValue(i int) EventIndexedValue
	BlockID() BlockID
	BlockHeight() int64
	TxID() TxID
	Identifier() int
}

type Event interface {
	BaseEvent
	Signature() string
	Name() string
	Params() Params
}

type EventFilter interface {
	Filter(event BaseEvent) (Event, error)
	Signature() string
	Address() Address
	Spec() EventSpec
}

type SignatureMatcher interface {
	Match(v string) bool
}

type EventIndexedValue interface {
	Match(v interface{}) bool
}

type EventCallback func(e Event) error

// Handler is the dynamic proxy of a deployed contract, driven by its Spec.
type Handler interface {
	Invoke(method string, params Params, options Options) (TxID, error)
	Call(method string, params Params, options Options) (ReturnValue, error)
	// Simulate executes any method, including mutating ones, without a transaction.
	Simulate(method string, params Params, options Options) (ReturnValue, error)
	EstimateGas(method string, params Params, options Options) (Integer, error)
	// Populate returns the unsigned transaction of the method without contacting the network.
	Populate(method string, params Params, options Options) (*PopulatedTransaction, error)
	EventFilter(name string, params Params) (EventFilter, error)
	Spec() Spec
	Address() Address
	MonitorEvent(ctx context.Context, cb EventCallback, nameToParams map[string][]Params, height int64) error
}

type PopulatedTransaction struct {
	To        Address `json:"to"`
	From      Address `json:"from,omitempty"`
	Data      Bytes   `json:"data"`
	Value     Integer `json:"value,omitempty"`
	Nonce     Integer `json:"nonce,omitempty"`
	GasLimit  Integer `json:"gasLimit,omitempty"`
	GasPrice  Integer `json:"gasPrice,omitempty"`
	GasFeeCap Integer `json:"gasFeeCap,omitempty"`
	GasTipCap Integer `json:"gasTipCap,omitempty"`
	ChainID   Integer `json:"chainId,omitempty"`
}

type BaseEventCallback func(e BaseEvent) error

type BlockInfo interface {
	ID() BlockID
	Height() int64
	EqualID(id BlockID) (bool, error)
}

type FinalityMonitor interface {
	IsFinalized(height int64, id BlockID) (bool, error)
	HeightByID(id BlockID) (int64, error)
	Last() (BlockInfo, error)
	Subscribe(size uint) FinalitySubscription
}

type FinalitySubscription interface {
	C() <-chan BlockInfo
	Unsubscribe()
	Serve(ctx context.Context, cb func(info BlockInfo))
}

type FinalitySupplier interface {
	Latest() (BlockInfo, error)
	HeightByID(id BlockID) (int64, error)
	Serve(context.Context, BlockInfo, func(BlockInfo)) error
}

type Adaptor interface {
	NetworkType() string
	GetResult(id TxID) (TxResult, error)
	Handler(spec []byte, address Address) (Handler, error)
	FinalityMonitor() FinalityMonitor
	MonitorEvent(ctx context.Context, cb EventCallback, efs []EventFilter, height int64) error
	MonitorBaseEvent(ctx context.Context, cb BaseEventCallback, sigToAddrs map[string][]Address, height int64) error
}

// NewSignatureToAddressesMap groups the addresses of filters by event signature,
// without duplicates.
func NewSignatureToAddressesMap(fs []EventFilter) map[string][]Address {
	sigToAddrs := make(map[string][]Address)
	for _, f := range fs {
		addrs := sigToAddrs[f.Signature()]
		tAddr := f.Address()
		exists := false
		for _, addr := range addrs {
			if addr == tAddr {
				exists = true
				break
			}
		}
		if !exists {
			sigToAddrs[f.Signature()] = append(addrs, tAddr)
		}
	}
	return sigToAddrs
}
