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
	"bytes"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// Interface encodes and decodes call data, results and logs of a contract
// without any backend.
type Interface struct {
	abi abi.ABI
}

func NewInterface(parsed abi.ABI) *Interface {
	return &Interface{abi: parsed}
}

func (i *Interface) ABI() abi.ABI {
	return i.abi
}

// GetFunction finds a method by name, signature like "transfer(address,uint256)"
// or hex encoded selector.
func (i *Interface) GetFunction(nameOrSignatureOrSelector string) (abi.Method, error) {
	key := nameOrSignatureOrSelector
	if m, ok := i.abi.Methods[key]; ok {
		return m, nil
	}
	for _, m := range i.abi.Methods {
		if m.Sig == key {
			return m, nil
		}
	}
	if strings.HasPrefix(key, "0x") {
		if b, err := hexutil.Decode(key); err == nil && len(b) == 4 {
			if m, err := i.abi.MethodById(b); err == nil {
				return *m, nil
			}
		}
	}
	return abi.Method{}, ErrorCodeUnknownMethod.Errorf("unknown method:%s", key)
}

// GetEvent finds an event by name, signature like "Transfer(address,address,uint256)"
// or hex encoded topic.
func (i *Interface) GetEvent(nameOrSignatureOrTopic string) (abi.Event, error) {
	key := nameOrSignatureOrTopic
	if e, ok := i.abi.Events[key]; ok {
		return e, nil
	}
	for _, e := range i.abi.Events {
		if e.Sig == key {
			return e, nil
		}
	}
	if strings.HasPrefix(key, "0x") && len(key) == 2+2*common.HashLength {
		if e, err := i.abi.EventByID(common.HexToHash(key)); err == nil {
			return *e, nil
		}
	}
	return abi.Event{}, ErrorCodeUnknownEvent.Errorf("unknown event:%s", key)
}

// EventTopic returns the first topic of logs emitted by event name.
func (i *Interface) EventTopic(name string) (common.Hash, error) {
	e, err := i.GetEvent(name)
	if err != nil {
		return common.Hash{}, err
	}
	return e.ID, nil
}

func (i *Interface) EncodeFunctionData(name string, args ...interface{}) ([]byte, error) {
	m, err := i.GetFunction(name)
	if err != nil {
		return nil, err
	}
	return i.abi.Pack(m.Name, args...)
}

// DecodeFunctionData returns the arguments encoded in data, including the selector.
func (i *Interface) DecodeFunctionData(name string, data []byte) ([]interface{}, error) {
	m, err := i.GetFunction(name)
	if err != nil {
		return nil, err
	}
	if len(data) < 4 || !bytes.Equal(data[:4], m.ID) {
		return nil, ErrorCodeInvalidData.Errorf("selector mismatch, method:%s", m.Sig)
	}
	return m.Inputs.Unpack(data[4:])
}

func (i *Interface) EncodeFunctionResult(name string, values ...interface{}) ([]byte, error) {
	m, err := i.GetFunction(name)
	if err != nil {
		return nil, err
	}
	return m.Outputs.Pack(values...)
}

func (i *Interface) DecodeFunctionResult(name string, data []byte) ([]interface{}, error) {
	m, err := i.GetFunction(name)
	if err != nil {
		return nil, err
	}
	return m.Outputs.Unpack(data)
}

// ParseLog decodes indexed and non-indexed inputs of log into a map keyed by input name.
func (i *Interface) ParseLog(log types.Log) (abi.Event, map[string]interface{}, error) {
	if len(log.Topics) == 0 {
		return abi.Event{}, nil, ErrorCodeInvalidData.Errorf("no topics")
	}
	e, err := i.abi.EventByID(log.Topics[0])
	if err != nil {
		return abi.Event{}, nil, ErrorCodeUnknownEvent.Wrapf(err, "unknown topic:%s", log.Topics[0].Hex())
	}
	out := make(map[string]interface{})
	if len(log.Data) > 0 {
		if err = e.Inputs.UnpackIntoMap(out, log.Data); err != nil {
			return abi.Event{}, nil, err
		}
	}
	var indexed abi.Arguments
	for _, arg := range e.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	if err = abi.ParseTopicsIntoMap(out, indexed, log.Topics[1:]); err != nil {
		return abi.Event{}, nil, err
	}
	return *e, out, nil
}
