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


package bindgen

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stubSources mirror the API of the packages imported by generated proxies,
// so generated code can be type-checked without loading go-ethereum.
var stubSources = map[string]string{
	"math/big": `package big
type Int struct{ v int64 }
func NewInt(x int64) *Int { return &Int{x} }
`,
	"github.com/ethereum/go-ethereum/common": `package common
import "math/big"
type Address [20]byte
type Hash [32]byte
var Big1 = big.NewInt(1)
`,
	"github.com/ethereum/go-ethereum/core/types": `package types
import "github.com/ethereum/go-ethereum/common"
type Bloom [256]byte
func BloomLookup(bin Bloom, topic interface{}) bool { return false }
type Log struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte
}
type Transaction struct{}
`,
	"github.com/ethereum/go-ethereum/accounts/abi": `package abi
type ABI struct{}
func ConvertType(in interface{}, proto interface{}) interface{} { return proto }
`,
	"github.com/ethereum/go-ethereum/accounts/abi/bind": `package bind
import "github.com/ethereum/go-ethereum/accounts/abi"
type MetaData struct{ ABI string }
func (m *MetaData) GetAbi() (*abi.ABI, error) { return &abi.ABI{}, nil }
type ContractBackend interface{}
type TransactOpts struct{}
`,
	ProxyImportPath: `package proxy
import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)
type TxOptions interface {
	transactOpts(auth *bind.TransactOpts) *bind.TransactOpts
}
type CallOverrides struct{}
func (o *CallOverrides) transactOpts(auth *bind.TransactOpts) *bind.TransactOpts { return auth }
type Overrides struct{}
func (o *Overrides) transactOpts(auth *bind.TransactOpts) *bind.TransactOpts { return auth }
type PayableOverrides struct{ Value *big.Int }
func (o *PayableOverrides) transactOpts(auth *bind.TransactOpts) *bind.TransactOpts { return auth }
type Interface struct{}
type PopulatedTransaction struct{}
type BoundContract struct{}
func NewBoundContract(address common.Address, parsed abi.ABI, backend bind.ContractBackend) *BoundContract {
	return &BoundContract{}
}
func (c *BoundContract) Address() common.Address { return common.Address{} }
func (c *BoundContract) Interface() *Interface { return &Interface{} }
func (c *BoundContract) Attach(address common.Address) *BoundContract { return c }
func (c *BoundContract) Connect(backend bind.ContractBackend) *BoundContract { return c }
func (c *BoundContract) WithSigner(auth *bind.TransactOpts) *BoundContract { return c }
func (c *BoundContract) Call(opts *CallOverrides, method string, params ...interface{}) ([]interface{}, error) {
	return nil, nil
}
func (c *BoundContract) Simulate(opts TxOptions, method string, params ...interface{}) ([]interface{}, error) {
	return nil, nil
}
func (c *BoundContract) Transact(opts TxOptions, method string, params ...interface{}) (*types.Transaction, error) {
	return nil, nil
}
func (c *BoundContract) EstimateGas(opts TxOptions, method string, params ...interface{}) (uint64, error) {
	return 0, nil
}
func (c *BoundContract) Populate(opts TxOptions, method string, params ...interface{}) (*PopulatedTransaction, error) {
	return nil, nil
}
func (c *BoundContract) UnpackLog(out interface{}, event string, log types.Log) error { return nil }
type LogParser[E any] func(log types.Log) (*E, error)
type EventFilter[E any] struct{}
func NewEventFilter[E any](c *BoundContract, name string, parse LogParser[E], rules ...[]interface{}) (*EventFilter[E], error) {
	return &EventFilter[E]{}, nil
}
`,
}

type stubImporter struct {
	fset *token.FileSet
	pkgs map[string]*types.Package
}

func (s *stubImporter) Import(path string) (*types.Package, error) {
	if p, ok := s.pkgs[path]; ok {
		return p, nil
	}
	src, ok := stubSources[path]
	if !ok {
		return nil, ErrorCodeInvalidABI.Errorf("no stub for %s", path)
	}
	f, err := parser.ParseFile(s.fset, path+".go", src, 0)
	if err != nil {
		return nil, err
	}
	conf := types.Config{Importer: s}
	p, err := conf.Check(path, s.fset, []*ast.File{f}, nil)
	if err != nil {
		return nil, err
	}
	s.pkgs[path] = p
	return p, nil
}

// typeCheck returns every type error of src.
func typeCheck(t *testing.T, src []byte) []string {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "generated.go", src, 0)
	if err != nil {
		t.Fatalf("fail to parse err:%+v", err)
	}
	var errs []string
	conf := types.Config{
		Importer: &stubImporter{fset: fset, pkgs: make(map[string]*types.Package)},
		Error: func(err error) {
			errs = append(errs, err.Error())
		},
	}
	_, _ = conf.Check("example.com/generated", fset, []*ast.File{f}, nil)
	return errs
}

func TestTypeCheck_DetectsUnusedVariable(t *testing.T) {
	errs := typeCheck(t, []byte(`package p

import "github.com/icon-project/weth-sdk/proxy"

func f(c *proxy.BoundContract) error {
	out, err := c.Call(nil, "ping")
	return err
}
`))
	if assert.Equal(t, 1, len(errs)) {
		assert.Contains(t, errs[0], "not used")
	}
}

func TestGenerate_TypeChecks(t *testing.T) {
	for _, tc := range []struct {
		typ string
		abi string
	}{
		{"IWETH9L1", string(readWETHABI(t))},
		{"Pinger", `[
			{"type":"function","name":"ping","stateMutability":"view","inputs":[],"outputs":[]},
			{"type":"function","name":"check","stateMutability":"pure",
				"inputs":[{"name":"x","type":"uint256"}],"outputs":[]},
			{"type":"function","name":"poke","stateMutability":"nonpayable","inputs":[],"outputs":[]},
			{"type":"function","name":"fund","stateMutability":"payable","inputs":[],"outputs":[]},
			{"type":"function","name":"pair","stateMutability":"view","inputs":[],
				"outputs":[{"name":"a","type":"address"},{"name":"","type":"bytes32"}]},
			{"type":"function","name":"label","stateMutability":"view","inputs":[],
				"outputs":[{"name":"","type":"string"}]},
			{"type":"event","name":"Pinged","anonymous":false,"inputs":[
				{"name":"who","type":"address","indexed":true},
				{"name":"tag","type":"string","indexed":true},
				{"name":"count","type":"uint64","indexed":false}]}
		]`},
	} {
		code, err := Generate(Config{Type: tc.typ, Package: "generated", ABI: []byte(tc.abi)})
		if !assert.NoError(t, err, "type:%s", tc.typ) {
			continue
		}
		assert.Empty(t, typeCheck(t, code), "type:%s", tc.typ)
	}
}

func TestGenerate_NoOutputView(t *testing.T) {
	code, err := Generate(Config{Type: "Pinger", Package: "generated", ABI: []byte(`[
		{"type":"function","name":"ping","stateMutability":"view","inputs":[],"outputs":[]}
	]`)})
	assert.NoError(t, err)
	src := string(code)
	assert.Contains(t, src, "func (_Pinger *PingerFunctions) Ping(opts *proxy.CallOverrides) error {")
	assert.Contains(t, src, "func (_Pinger *Pinger) Ping(opts *proxy.CallOverrides) error {")
	assert.NotContains(t, src, "PingerPingOutput")
}
