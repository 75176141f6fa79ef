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
	"encoding/json"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"
)

type TypeTag int64

const (
	TUnknown TypeTag = iota
	TVoid
	TInteger
	TBoolean
	TString
	TBytes
	TAddress
)

var (
	specLogger = log.New()
)

func init() {
	specLogger.SetLevel(log.DebugLevel)
}

func (t TypeTag) String() string {
	return typeIdToNames[t]
}

func (t TypeTag) Type() reflect.Type {
	return typeIdToType[t]
}

var (
	typeIdToNames = []string{"Unknown", "Void", "Integer", "Boolean", "String", "Bytes", "Address"}
	typeIdToType  = []reflect.Type{
		nil,
		nil,
		reflect.TypeOf(Integer("")),
		reflect.TypeOf(Boolean(true)),
		reflect.TypeOf(String("")),
		reflect.TypeOf(Bytes("")),
		reflect.TypeOf(Address("")),
	}
	nameToTypeIds = map[string]TypeTag{
		"Void":    TVoid,
		"Integer": TInteger,
		"Boolean": TBoolean,
		"String":  TString,
		"Bytes":   TBytes,
		"Address": TAddress,
	}
)

func TypeIDByName(name string) TypeTag {
	if t, ok := nameToTypeIds[name]; ok {
		return t
	}
	return TUnknown
}

// Integer is a 0x-prefixed hex string. Decimal strings are accepted as input.
type Integer string

func parseBigInt(s string) (*big.Int, bool) {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}
	if len(s) == 0 || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return nil, false
	}
	r, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, false
	}
	if neg {
		r.Neg(r)
	}
	return r, true
}

func (i Integer) AsUint64() (uint64, error) {
	bi, err := i.AsBigInt()
	if err != nil {
		return 0, err
	}
	if !bi.IsUint64() {
		return 0, errors.Errorf("out of range uint64 %s", i)
	}
	return bi.Uint64(), nil
}

func (i Integer) AsInt64() (int64, error) {
	bi, err := i.AsBigInt()
	if err != nil {
		return 0, err
	}
	if !bi.IsInt64() {
		return 0, errors.Errorf("out of range int64 %s", i)
	}
	return bi.Int64(), nil
}

func (i Integer) AsBigInt() (*big.Int, error) {
	r, ok := parseBigInt(string(i))
	if !ok {
		return nil, errors.Errorf("fail to convert big.Int %q", string(i))
	}
	return r, nil
}

func FromUint64(i uint64) Integer {
	return FromBigInt(new(big.Int).SetUint64(i))
}
func FromInt64(i int64) Integer {
	return FromBigInt(big.NewInt(i))
}
func FromBigInt(i *big.Int) Integer {
	return Integer(hexutil.EncodeBig(i))
}

type Boolean bool
type String string

// Bytes is marshaled as a 0x-prefixed hex string.
type Bytes []byte

func (b Bytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hexutil.Encode(b))
}

func (b *Bytes) UnmarshalJSON(input []byte) error {
	var v hexutil.Bytes
	if err := json.Unmarshal(input, &v); err != nil {
		return err
	}
	*b = Bytes(v)
	return nil
}

type Address string

type TypeSpec struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension,omitempty"`
	// Origin is the type name of the contract language, e.g. uint256.
	Origin string `json:"origin,omitempty"`

	Type   reflect.Type `json:"-"`
	TypeID TypeTag      `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (s *TypeSpec) UnmarshalJSON(data []byte) error {
	type tSpec TypeSpec
	if err := json.Unmarshal(data, (*tSpec)(s)); err != nil {
		return err
	}
	s.TypeID = TypeIDByName(s.Name)
	return nil
}

func (s *TypeSpec) resolveType() error {
	if s.TypeID == TUnknown {
		return errors.Errorf("unknown type name:%s", s.Name)
	}
	t := s.TypeID.Type()
	for i := 0; i < s.Dimension; i++ {
		t = reflect.SliceOf(t)
	}
	s.Type = t
	specLogger.Tracef("TypeSpec resolve name:%s type:%s dimension:%d goType:%v\n",
		s.Name, s.TypeID.String(), s.Dimension, s.Type)
	return nil
}

type NameAndTypeSpec struct {
	Name     string   `json:"name"`
	Type     TypeSpec `json:"type"`
	Optional bool     `json:"optional,omitempty"`
	Indexed  bool     `json:"indexed,omitempty"`
}

type MethodSpec struct {
	Name      string            `json:"name"`
	Signature string            `json:"signature,omitempty"`
	Inputs    []NameAndTypeSpec `json:"inputs"`
	Output    TypeSpec          `json:"output"`
	Payable   bool              `json:"payable,omitempty"`
	ReadOnly  bool              `json:"readOnly,omitempty"`

	InputMap map[string]*NameAndTypeSpec `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (s *MethodSpec) UnmarshalJSON(data []byte) error {
	type tSpec MethodSpec
	if err := json.Unmarshal(data, (*tSpec)(s)); err != nil {
		return err
	}
	s.InputMap = make(map[string]*NameAndTypeSpec)
	for i := 0; i < len(s.Inputs); i++ {
		v := &s.Inputs[i]
		s.InputMap[v.Name] = v
	}
	return nil
}

func (s *MethodSpec) resolveType() error {
	for _, v := range s.InputMap {
		specLogger.Traceln("MethodSpec resolve input:", v.Name)
		if err := v.Type.resolveType(); err != nil {
			return err
		}
	}
	specLogger.Traceln("MethodSpec resolve output:", s.Output.Name)
	if s.Output.TypeID == TVoid {
		return nil
	}
	return s.Output.resolveType()
}

type EventSpec struct {
	Name      string            `json:"name"`
	Signature string            `json:"signature,omitempty"`
	Indexed   int               `json:"indexed,omitempty"`
	Inputs    []NameAndTypeSpec `json:"inputs"`

	InputMap map[string]*NameAndTypeSpec `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (s *EventSpec) UnmarshalJSON(data []byte) error {
	type tSpec EventSpec
	if err := json.Unmarshal(data, (*tSpec)(s)); err != nil {
		return err
	}
	s.InputMap = make(map[string]*NameAndTypeSpec)
	for i := 0; i < len(s.Inputs); i++ {
		v := &s.Inputs[i]
		s.InputMap[v.Name] = v
	}
	return nil
}

func (s *EventSpec) resolveType() error {
	for _, v := range s.InputMap {
		specLogger.Traceln("EventSpec resolve input:", v.Name)
		if err := v.Type.resolveType(); err != nil {
			return err
		}
	}
	if s.Signature == "" {
		return errors.Errorf("empty event signature name:%s", s.Name)
	}
	return nil
}

type Spec struct {
	SpecVersion string       `json:"specVersion"`
	Name        string       `json:"name"`
	Methods     []MethodSpec `json:"methods"`
	Events      []EventSpec  `json:"events"`

	MethodMap map[string]*MethodSpec `json:"-"`
	EventMap  map[string]*EventSpec  `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (s *Spec) UnmarshalJSON(data []byte) error {
	type tSpec Spec
	if err := json.Unmarshal(data, (*tSpec)(s)); err != nil {
		return err
	}
	s.MethodMap = make(map[string]*MethodSpec)
	for i := 0; i < len(s.Methods); i++ {
		v := &s.Methods[i]
		s.MethodMap[v.Name] = v
		specLogger.Tracef("MethodSpec resolve name:%s readonly:%v\n", v.Name, v.ReadOnly)
		if err := v.resolveType(); err != nil {
			return err
		}
	}
	s.EventMap = make(map[string]*EventSpec)
	for i := 0; i < len(s.Events); i++ {
		v := &s.Events[i]
		s.EventMap[v.Name] = v
		specLogger.Tracef("EventSpec resolve name:%s indexed:%v\n", v.Name, v.Indexed)
		if err := v.resolveType(); err != nil {
			return err
		}
	}
	return nil
}

// ParamsTypeCheck verifies every param is an indexed input of the event
// with a value of the input type. Omitted inputs are not constrained.
func ParamsTypeCheck(s *EventSpec, params Params) error {
	for k, v := range params {
		spec, ok := s.InputMap[k]
		if !ok {
			return ErrorCodeInvalidParam.Errorf("not found param name:%s", k)
		}
		if !spec.Indexed {
			return ErrorCodeInvalidParam.Errorf("not indexed param name:%s", k)
		}
		if err := typeCheck(spec, v); err != nil {
			return err
		}
	}
	return nil
}

func typeCheck(s *NameAndTypeSpec, value interface{}) error {
	specLogger.Traceln("typeCheck name:", s.Name, "typeName:", s.Type.Name, "type:", s.Type.TypeID.String(),
		"reflect:", s.Type.Type)
	if s.Type.Dimension > 0 {
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return ErrorCodeInvalidParam.Errorf("invalid param type name:%s expected:list actual:%T",
				s.Name, value)
		}
		elem := *s
		elem.Type.Dimension--
		for i := 0; i < rv.Len(); i++ {
			if err := typeCheck(&elem, rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	}
	return primitiveTypeCheck(s, value)
}

func primitiveTypeCheck(s *NameAndTypeSpec, value interface{}) error {
	ok := false
	switch s.Type.TypeID {
	case TInteger:
		_, ok = value.(Integer)
	case TString:
		_, ok = value.(String)
	case TAddress:
		_, ok = value.(Address)
	case TBytes:
		_, ok = value.(Bytes)
	case TBoolean:
		_, ok = value.(Boolean)
	default:
		return ErrorCodeInvalidParam.Errorf("not supported param type name:%s typeID:%v",
			s.Name, s.Type.TypeID.String())
	}
	if !ok {
		return ErrorCodeInvalidParam.Errorf("invalid param type name:%s expected:%s actual:%T",
			s.Name, s.Type.TypeID.String(), value)
	}
	return nil
}
