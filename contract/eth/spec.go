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
	"sort"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/icon-project/btp2/common/errors"

	"github.com/icon-project/weth-sdk/contract"
)

const (
	SpecVersion = "1"
)

func init() {
	contract.RegisterSpecFactory(NewSpecFromJSON, NetworkTypes...)
}

func NewSpecFromJSON(b []byte) (*contract.Spec, error) {
	out, err := abi.JSON(bytes.NewReader(b))
	if err != nil {
		return nil, contract.ErrorCodeInvalidParam.Wrapf(err, "fail to abi.JSON err:%s", err.Error())
	}
	s, err := NewSpec(out)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// NewSpec describes methods and events of out, ordered by name.
// Tuples and methods with multiple outputs are not supported.
func NewSpec(out abi.ABI) (contract.Spec, error) {
	spec := contract.Spec{
		SpecVersion: SpecVersion,
		Methods:     make([]contract.MethodSpec, 0),
		Events:      make([]contract.EventSpec, 0),
	}
	for _, m := range sortedMethods(out) {
		inputs := make([]contract.NameAndTypeSpec, 0)
		for _, i := range m.Inputs {
			t, err := NewTypeSpec(i.Type)
			if err != nil {
				return spec, errors.Wrapf(err, "method:%s input:%s err:%s", m.Name, i.Name, err.Error())
			}
			inputs = append(inputs, contract.NameAndTypeSpec{
				Name: i.Name,
				Type: t,
			})
		}
		var output contract.TypeSpec
		switch len(m.Outputs) {
		case 0:
			output.Name = contract.TVoid.String()
		case 1:
			t, err := NewTypeSpec(m.Outputs[0].Type)
			if err != nil {
				return spec, errors.Wrapf(err, "method:%s output err:%s", m.Name, err.Error())
			}
			output = t
		default:
			return spec, errors.Errorf("not supported multiple outputs method:%s", m.Name)
		}
		spec.Methods = append(spec.Methods, contract.MethodSpec{
			Name:      m.RawName,
			Signature: m.Sig,
			Inputs:    inputs,
			Output:    output,
			ReadOnly:  m.IsConstant(),
			Payable:   m.IsPayable(),
		})
	}
	for _, e := range sortedEvents(out) {
		indexed := 0
		inputs := make([]contract.NameAndTypeSpec, 0)
		for _, i := range e.Inputs {
			t, err := NewTypeSpec(i.Type)
			if err != nil {
				return spec, errors.Wrapf(err, "event:%s input:%s err:%s", e.Name, i.Name, err.Error())
			}
			if i.Indexed {
				indexed++
			}
			inputs = append(inputs, contract.NameAndTypeSpec{
				Name:    i.Name,
				Type:    t,
				Indexed: i.Indexed,
			})
		}
		spec.Events = append(spec.Events, contract.EventSpec{
			Name:      e.RawName,
			Signature: e.Sig,
			Indexed:   indexed,
			Inputs:    inputs,
		})
	}
	b, err := json.Marshal(spec)
	if err != nil {
		return spec, errors.Wrapf(err, "fail to Marshal err:%s", err.Error())
	}
	ret := contract.Spec{}
	if err = json.Unmarshal(b, &ret); err != nil {
		return spec, errors.Wrapf(err, "fail to Unmarshal err:%s", err.Error())
	}
	return ret, nil
}

func sortedMethods(out abi.ABI) []abi.Method {
	ret := make([]abi.Method, 0, len(out.Methods))
	for _, m := range out.Methods {
		ret = append(ret, m)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Name < ret[j].Name })
	return ret
}

func sortedEvents(out abi.ABI) []abi.Event {
	ret := make([]abi.Event, 0, len(out.Events))
	for _, e := range out.Events {
		ret = append(ret, e)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Name < ret[j].Name })
	return ret
}

func NewTypeSpec(t abi.Type) (contract.TypeSpec, error) {
	switch t.T {
	case abi.ArrayTy, abi.SliceTy:
		s, err := NewTypeSpec(*t.Elem)
		if err != nil {
			return s, err
		}
		return contract.TypeSpec{
			Name:      s.Name,
			Dimension: s.Dimension + 1,
			Origin:    t.String(),
		}, nil
	default:
		return NewPrimitiveTypeSpec(t)
	}
}

func NewPrimitiveTypeSpec(t abi.Type) (contract.TypeSpec, error) {
	var s contract.TypeTag
	switch t.T {
	case abi.IntTy, abi.UintTy:
		s = contract.TInteger
	case abi.StringTy:
		s = contract.TString
	case abi.AddressTy:
		s = contract.TAddress
	case abi.BytesTy, abi.FixedBytesTy:
		s = contract.TBytes
	case abi.BoolTy:
		s = contract.TBoolean
	default:
		return contract.TypeSpec{}, errors.Errorf("not supported type:%s", t.String())
	}
	return contract.TypeSpec{
		Name:   s.String(),
		Origin: t.String(),
	}, nil
}
