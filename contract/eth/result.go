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
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/icon-project/btp2/common/errors"

	"github.com/icon-project/weth-sdk/contract"
)

func NewTxID(h common.Hash) contract.TxID {
	return h.Hex()
}

func NewBlockID(h common.Hash) contract.BlockID {
	return h.Hex()
}

// CommonHashOf accepts a hex string, bytes or common.Hash of 32 bytes.
func CommonHashOf(v interface{}) (common.Hash, error) {
	switch t := v.(type) {
	case common.Hash:
		return t, nil
	case *common.Hash:
		if t == nil {
			return common.Hash{}, errors.New("nil hash")
		}
		return *t, nil
	}
	b, err := contract.BytesOf(v)
	if err != nil {
		return common.Hash{}, err
	}
	if len(b) != common.HashLength {
		return common.Hash{}, errors.Errorf("invalid hash length:%d", len(b))
	}
	return common.BytesToHash(b), nil
}

func IsSuccess(r *types.Receipt) bool {
	return r.Status == types.ReceiptStatusSuccessful
}

type TxResult struct {
	*types.Receipt
	events  []contract.BaseEvent
	failure *TxFailure
}

func (r *TxResult) Success() bool {
	return IsSuccess(r.Receipt)
}

func (r *TxResult) Events() []contract.BaseEvent {
	return r.events
}

func (r *TxResult) Failure() interface{} {
	if r.failure == nil {
		return nil
	}
	return r.failure
}

func (r *TxResult) BlockID() contract.BlockID {
	return NewBlockID(r.BlockHash)
}

func (r *TxResult) BlockHeight() int64 {
	return r.BlockNumber.Int64()
}

func (r *TxResult) TxID() contract.TxID {
	return NewTxID(r.TxHash)
}

func NewTxResult(txr *types.Receipt, txf *TxFailure) contract.TxResult {
	r := &TxResult{
		Receipt: txr,
		events:  make([]contract.BaseEvent, len(txr.Logs)),
		failure: txf,
	}
	for i, l := range txr.Logs {
		r.events[i] = NewBaseEvent(*l)
	}
	return r
}

// TxFailure is the JSON-RPC error of a reverted execution.
type TxFailure struct {
	code    int
	message string
	data    interface{}
	reason  string
}

func (f *TxFailure) Error() string {
	if len(f.reason) > 0 {
		return fmt.Sprintf("%s: %s", f.message, f.reason)
	}
	return f.message
}

func (f *TxFailure) ErrorCode() int {
	return f.code
}

func (f *TxFailure) ErrorData() interface{} {
	return f.data
}

func (f *TxFailure) Reason() string {
	return f.reason
}

func (f *TxFailure) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Code    int         `json:"code"`
		Message string      `json:"message"`
		Data    interface{} `json:"data,omitempty"`
		Reason  string      `json:"reason,omitempty"`
	}{f.code, f.message, f.data, f.reason})
}

// NewTxFailure returns nil if err does not carry the revert data.
func NewTxFailure(err error) *TxFailure {
	if err == nil {
		return nil
	}
	de, ok := err.(rpc.DataError)
	if !ok {
		return nil
	}
	f := &TxFailure{
		message: err.Error(),
		data:    de.ErrorData(),
	}
	if ec, ok := err.(rpc.Error); ok {
		f.code = ec.ErrorCode()
	}
	if s, ok := f.data.(string); ok {
		if b, dErr := hexutil.Decode(s); dErr == nil {
			if reason, uErr := abi.UnpackRevert(b); uErr == nil {
				f.reason = reason
			}
		}
	}
	return f
}

type BaseEvent struct {
	*types.Log
	signature EventSignature
	indexed   int
}

func NewBaseEvent(l types.Log) *BaseEvent {
	e := &BaseEvent{
		Log: &l,
	}
	if len(l.Topics) > 0 {
		e.signature = EventSignature(l.Topics[0].Hex())
		e.indexed = len(l.Topics) - 1
	}
	return e
}

func (e *BaseEvent) Address() contract.Address {
	return contract.Address(e.Log.Address.String())
}

func (e *BaseEvent) SignatureMatcher() contract.SignatureMatcher {
	return e.signature
}

func (e *BaseEvent) Indexed() int {
	return e.indexed
}

func (e *BaseEvent) IndexedValue(i int) contract.EventIndexedValue {
	if i >= 0 && i < e.indexed {
		return EventIndexedValue(e.Topics[i+1].Hex())
	}
	return nil
}

func (e *BaseEvent) BlockID() contract.BlockID {
	return NewBlockID(e.BlockHash)
}

func (e *BaseEvent) BlockHeight() int64 {
	return int64(e.BlockNumber)
}

func (e *BaseEvent) TxID() contract.TxID {
	return NewTxID(e.TxHash)
}

func (e *BaseEvent) Identifier() int {
	return int(e.Index)
}

// EventSignature is the hex of the first topic.
type EventSignature string

// Match accepts either the topic hex or the signature text, e.g. Deposit(address,uint256).
func (s EventSignature) Match(v string) bool {
	if len(s) == 0 {
		return false
	}
	if string(s) == v {
		return true
	}
	return string(s) == crypto.Keccak256Hash([]byte(v)).Hex()
}

// EventIndexedValue is the hex of an indexed topic.
type EventIndexedValue string

func (i EventIndexedValue) Match(v interface{}) bool {
	var tv interface{}
	switch t := v.(type) {
	case contract.Integer:
		bi, err := t.AsBigInt()
		if err != nil {
			return false
		}
		tv = bi
	case contract.String:
		tv = string(t)
	case contract.Address:
		if !common.IsHexAddress(string(t)) {
			return false
		}
		tv = common.HexToAddress(string(t))
	case contract.Bytes:
		tv = []byte(t)
	case contract.Boolean:
		tv = bool(t)
	default:
		return false
	}
	topics, err := abi.MakeTopics([]interface{}{tv})
	if err != nil {
		return false
	}
	return string(i) == topics[0][0].Hex()
}

// HashValue is the topic of an indexed value of reference type,
// which keeps only the keccak256 hash of the value.
type HashValue []byte

func (h HashValue) Match(v interface{}) bool {
	var b []byte
	switch t := v.(type) {
	case contract.String:
		b = []byte(t)
	case contract.Bytes:
		b = t
	default:
		return false
	}
	return bytes.Equal(h, crypto.Keccak256Hash(b).Bytes())
}

func (h HashValue) Bytes() []byte {
	return h
}

func (h HashValue) String() string {
	return hexutil.Encode(h)
}

func (h HashValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

type Event struct {
	contract.BaseEvent
	name      string
	signature string
	params    contract.Params
}

func (e *Event) Name() string {
	return e.name
}

func (e *Event) Signature() string {
	return e.signature
}

func (e *Event) Params() contract.Params {
	return e.params
}

// EventFilter matches the logs of an event emitted by address. Constrained
// indexed params are compared by topic.
type EventFilter struct {
	in      contract.EventSpec
	out     abi.Event
	address common.Address
	params  contract.Params
	topics  map[int]common.Hash
}

func newEventFilter(in contract.EventSpec, out abi.Event, address common.Address, params contract.Params) (*EventFilter, error) {
	f := &EventFilter{
		in:      in,
		out:     out,
		address: address,
		params:  params,
		topics:  make(map[int]common.Hash),
	}
	pos := 0
	for _, arg := range out.Inputs {
		if !arg.Indexed {
			continue
		}
		pos++
		p, ok := params[arg.Name]
		if !ok {
			continue
		}
		v, err := encode(arg.Type, p)
		if err != nil {
			return nil, contract.ErrorCodeInvalidParam.Wrapf(err, "invalid param:%s err:%s", arg.Name, err.Error())
		}
		topics, err := abi.MakeTopics([]interface{}{v})
		if err != nil {
			return nil, contract.ErrorCodeInvalidParam.Wrapf(err, "not filterable param:%s err:%s", arg.Name, err.Error())
		}
		f.topics[pos] = topics[0][0]
	}
	return f, nil
}

// Filter returns nil without error if the event does not match.
func (f *EventFilter) Filter(event contract.BaseEvent) (contract.Event, error) {
	be, ok := event.(*BaseEvent)
	if !ok {
		return nil, errors.Errorf("invalid type event %T", event)
	}
	l := be.Log
	if l.Address != f.address || len(l.Topics) == 0 || l.Topics[0] != f.out.ID {
		return nil, nil
	}
	if len(l.Topics)-1 != f.in.Indexed {
		return nil, nil
	}
	for pos, topic := range f.topics {
		if l.Topics[pos] != topic {
			return nil, nil
		}
	}
	out := make(map[string]interface{})
	indexed := make(abi.Arguments, 0, f.in.Indexed)
	for _, arg := range f.out.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	if err := abi.ParseTopicsIntoMap(out, indexed, l.Topics[1:]); err != nil {
		return nil, errors.Wrapf(err, "fail to ParseTopicsIntoMap err:%s", err.Error())
	}
	if err := f.out.Inputs.UnpackIntoMap(out, l.Data); err != nil {
		return nil, errors.Wrapf(err, "fail to UnpackIntoMap err:%s", err.Error())
	}
	params := make(contract.Params)
	for _, arg := range f.out.Inputs {
		v := out[arg.Name]
		if h, isHash := v.(common.Hash); isHash && arg.Indexed && arg.Type.T != abi.FixedBytesTy {
			params[arg.Name] = HashValue(h.Bytes())
			continue
		}
		dv, err := decode(arg.Type, v)
		if err != nil {
			return nil, err
		}
		params[arg.Name] = dv
	}
	return &Event{
		BaseEvent: event,
		name:      f.out.RawName,
		signature: f.out.Sig,
		params:    params,
	}, nil
}

func (f *EventFilter) Signature() string {
	return f.out.Sig
}

func (f *EventFilter) Address() contract.Address {
	return contract.Address(f.address.String())
}

func (f *EventFilter) Spec() contract.EventSpec {
	return f.in
}

// Topic returns the topic of the event signature.
func (f *EventFilter) Topic() common.Hash {
	return f.out.ID
}
