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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntegerOf(t *testing.T) {
	oneEther, _ := new(big.Int).SetString("1000000000000000000", 10)
	for _, tc := range []struct {
		in       interface{}
		expected Integer
	}{
		{"1000000000000000000", "0xde0b6b3a7640000"},
		{"0xde0b6b3a7640000", "0xde0b6b3a7640000"},
		{"010", "0xa"},
		{"-0x10", "-0x10"},
		{oneEther, "0xde0b6b3a7640000"},
		{*big.NewInt(0), "0x0"},
		{uint8(255), "0xff"},
		{int64(-1), "-0x1"},
		{float64(42), "0x2a"},
		{json.Number("16"), "0x10"},
	} {
		v, err := IntegerOf(tc.in)
		assert.NoError(t, err, "%v", tc.in)
		assert.Equal(t, tc.expected, v, "%v", tc.in)
	}

	for _, in := range []interface{}{"", "0x", "12ab", "0xzz", "--1", float64(1.5), true, Integer("0xq")} {
		_, err := IntegerOf(in)
		assert.Error(t, err, "%v", in)
	}
}

func TestInteger_As(t *testing.T) {
	i := FromUint64(1 << 40)
	u, err := i.AsUint64()
	assert.NoError(t, err)
	assert.Equal(t, uint64(1<<40), u)

	n, err := FromInt64(-7).AsInt64()
	assert.NoError(t, err)
	assert.Equal(t, int64(-7), n)

	_, err = Integer("-0x1").AsUint64()
	assert.Error(t, err)
	_, err = Integer("0x10000000000000000").AsInt64()
	assert.Error(t, err)
}

func TestBytes_JSON(t *testing.T) {
	b, err := json.Marshal(Bytes{0xd0, 0xe3, 0x0d, 0xb0})
	assert.NoError(t, err)
	assert.Equal(t, `"0xd0e30db0"`, string(b))

	var v Bytes
	assert.NoError(t, json.Unmarshal([]byte(`"0x2e1a7d4d"`), &v))
	assert.Equal(t, Bytes{0x2e, 0x1a, 0x7d, 0x4d}, v)
	assert.Error(t, json.Unmarshal([]byte(`"2e1a"`), &v))
}

func TestParamOf(t *testing.T) {
	v, err := ParamOf([]interface{}{"0x1", uint16(2)})
	assert.NoError(t, err)
	assert.Equal(t, []interface{}{String("0x1"), Integer("0x2")}, v)

	p, err := ParamsOf(map[string]interface{}{
		"guy": Address("0x000000000000000000000000000000000000a11c"),
		"wad": big.NewInt(10),
		"ok":  true,
	})
	assert.NoError(t, err)
	assert.Equal(t, Params{
		"guy": Address("0x000000000000000000000000000000000000a11c"),
		"wad": Integer("0xa"),
		"ok":  Boolean(true),
	}, p)

	_, err = ParamOf(struct{}{})
	assert.Error(t, err)

	bv, err := BooleanOf("true")
	assert.NoError(t, err)
	assert.Equal(t, Boolean(true), bv)

	bs, err := BytesOf([4]byte{1, 2, 3, 4})
	assert.NoError(t, err)
	assert.Equal(t, Bytes{1, 2, 3, 4}, bs)
	_, err = BytesOf("0x0")
	assert.Error(t, err)
}

func TestOptions(t *testing.T) {
	type opt struct {
		From  Address `json:"from,omitempty"`
		Value Integer `json:"value,omitempty"`
	}
	options, err := EncodeOptions(opt{From: "0xabc", Value: "0x1"})
	assert.NoError(t, err)
	assert.Equal(t, Options{"from": "0xabc", "value": "0x1"}, options)

	var decoded opt
	assert.NoError(t, DecodeOptions(options, &decoded))
	assert.Equal(t, opt{From: "0xabc", Value: "0x1"}, decoded)

	err = DecodeOptions(Options{"value": 1}, &decoded)
	assert.True(t, ErrorCodeInvalidOption.Equals(err))
}

func TestParamsTypeCheck(t *testing.T) {
	var s EventSpec
	err := json.Unmarshal([]byte(`{
		"name":"Transfer","signature":"Transfer(address,address,uint256)","indexed":2,
		"inputs":[
			{"name":"src","type":{"name":"Address"},"indexed":true},
			{"name":"dst","type":{"name":"Address"},"indexed":true},
			{"name":"wad","type":{"name":"Integer"}}
		]}`), &s)
	assert.NoError(t, err)
	assert.NoError(t, s.resolveType())

	assert.NoError(t, ParamsTypeCheck(&s, Params{"dst": Address("0x1")}))
	assert.NoError(t, ParamsTypeCheck(&s, Params{}))
	assert.True(t, ErrorCodeInvalidParam.Equals(ParamsTypeCheck(&s, Params{"wad": Integer("0x1")})))
	assert.True(t, ErrorCodeInvalidParam.Equals(ParamsTypeCheck(&s, Params{"guy": Address("0x1")})))
	assert.True(t, ErrorCodeInvalidParam.Equals(ParamsTypeCheck(&s, Params{"src": String("0x1")})))
}

func TestNewSignatureToAddressesMap(t *testing.T) {
	m := NewSignatureToAddressesMap([]EventFilter{
		&testFilter{sig: "Deposit(address,uint256)", addr: "0x1"},
		&testFilter{sig: "Deposit(address,uint256)", addr: "0x1"},
		&testFilter{sig: "Deposit(address,uint256)", addr: "0x2"},
		&testFilter{sig: "Withdrawal(address,uint256)", addr: "0x1"},
	})
	assert.Equal(t, map[string][]Address{
		"Deposit(address,uint256)":    {"0x1", "0x2"},
		"Withdrawal(address,uint256)": {"0x1"},
	}, m)
}

type testFilter struct {
	sig  string
	addr Address
}

func (f *testFilter) Filter(event BaseEvent) (Event, error) { return nil, nil }
func (f *testFilter) Signature() string                    { return f.sig }
func (f *testFilter) Address() Address                     { return f.addr }
func (f *testFilter) Spec() EventSpec                      { return EventSpec{} }
