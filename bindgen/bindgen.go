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

// Package bindgen generates typed proxies of a contract ABI which bind to
// the proxy package.
package bindgen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"go/format"
	"go/token"
	"sort"
	"strconv"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/icon-project/btp2/common/errors"
)

const (
	ProxyImportPath  = "github.com/icon-project/weth-sdk/proxy"
	DefaultGenerator = "weth-cli gen"
)

const (
	ErrorCodeInvalidABI errors.Code = errors.CodeGeneral + 32 + iota
	ErrorCodeUnsupportedType
	ErrorCodeNameConflict
)

var (
	// members of the generated proxy type
	reservedMethods = map[string]bool{
		"Address":             true,
		"Contract":            true,
		"Interface":           true,
		"Attach":              true,
		"Connect":             true,
		"WithSigner":          true,
		"CallStatic":          true,
		"EstimateGas":         true,
		"PopulateTransaction": true,
		"Functions":           true,
		"Filters":             true,
	}
	// identifiers used in the generated function bodies
	reservedParams = map[string]bool{
		"opts":      true,
		"out":       true,
		"out0":      true,
		"outstruct": true,
		"err":       true,
		"log":       true,
		"abi":       true,
		"big":       true,
		"bind":      true,
		"common":    true,
		"types":     true,
		"proxy":     true,
	}
)

type Config struct {
	Type      string
	Package   string
	ABI       []byte
	Generator string
}

type Arg struct {
	Name string
	Type string
}

type Method struct {
	Original   abi.Method
	Name       string
	Normalized string
	Constant   bool
	Payable    bool
	Opts       string
	Inputs     []Arg
	Outputs    []Arg
	Structured bool
}

// HasOutputStruct reports whether the Functions namespace or a multi-output
// method needs the Output struct. A read-only method without outputs has none.
func (m *Method) HasOutputStruct() bool {
	return (m.Constant && len(m.Outputs) > 0) || m.Structured
}

func (m *Method) ReturnType() string {
	if len(m.Outputs) == 1 {
		return m.Outputs[0].Type
	}
	return ""
}

type Event struct {
	Original   abi.Event
	Name       string
	Normalized string
	Fields     []Arg
	Indexed    []Arg
}

type Binding struct {
	Generator   string
	Package     string
	Type        string
	InputABI    string
	ProxyImport string
	Methods     []*Method
	Events      []*Event
}

func (b *Binding) Calls() []*Method {
	ret := make([]*Method, 0)
	for _, m := range b.Methods {
		if m.Constant {
			ret = append(ret, m)
		}
	}
	return ret
}

func (b *Binding) Transacts() []*Method {
	ret := make([]*Method, 0)
	for _, m := range b.Methods {
		if !m.Constant {
			ret = append(ret, m)
		}
	}
	return ret
}

// Generate renders the typed proxy source of cfg.ABI, formatted by gofmt.
func Generate(cfg Config) ([]byte, error) {
	b, err := NewBinding(cfg)
	if err != nil {
		return nil, err
	}
	return Render(b)
}

func Render(b *Binding) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, b); err != nil {
		return nil, errors.Wrapf(err, "fail to execute template err:%s", err.Error())
	}
	code, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, errors.Wrapf(err, "fail to format err:%s\n%s", err.Error(), buf.String())
	}
	return code, nil
}

func NewBinding(cfg Config) (*Binding, error) {
	if !token.IsIdentifier(cfg.Type) {
		return nil, ErrorCodeInvalidABI.Errorf("invalid type name:%s", cfg.Type)
	}
	if !token.IsIdentifier(cfg.Package) {
		return nil, ErrorCodeInvalidABI.Errorf("invalid package name:%s", cfg.Package)
	}
	parsed, err := abi.JSON(bytes.NewReader(cfg.ABI))
	if err != nil {
		return nil, ErrorCodeInvalidABI.Wrapf(err, "fail to parse abi err:%s", err.Error())
	}
	compact := new(bytes.Buffer)
	if err = json.Compact(compact, cfg.ABI); err != nil {
		return nil, ErrorCodeInvalidABI.Wrapf(err, "fail to compact abi err:%s", err.Error())
	}
	typ := abi.ToCamelCase(cfg.Type)
	b := &Binding{
		Generator:   cfg.Generator,
		Package:     cfg.Package,
		Type:        typ,
		InputABI:    compact.String(),
		ProxyImport: ProxyImportPath,
	}
	if b.Generator == "" {
		b.Generator = DefaultGenerator
	}

	names := make([]string, 0, len(parsed.Methods))
	for name := range parsed.Methods {
		names = append(names, name)
	}
	sort.Strings(names)
	members := make(map[string]string)
	for _, name := range names {
		m, err := newMethod(parsed.Methods[name])
		if err != nil {
			return nil, err
		}
		if reservedMethods[m.Normalized] {
			return nil, ErrorCodeNameConflict.Errorf("reserved method name:%s", m.Name)
		}
		if other, ok := members[m.Normalized]; ok {
			return nil, ErrorCodeNameConflict.Errorf("method:%s conflicts with %s", m.Name, other)
		}
		members[m.Normalized] = m.Name
		b.Methods = append(b.Methods, m)
	}

	names = names[:0]
	for name := range parsed.Events {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		e, err := newEvent(parsed.Events[name])
		if err != nil {
			return nil, err
		}
		if other, ok := members["Parse"+e.Normalized]; ok {
			return nil, ErrorCodeNameConflict.Errorf("event:%s conflicts with method %s", e.Name, other)
		}
		b.Events = append(b.Events, e)
	}
	return b, nil
}

func newMethod(original abi.Method) (*Method, error) {
	m := &Method{
		Original:   original,
		Name:       original.Name,
		Normalized: abi.ToCamelCase(original.Name),
		Constant:   original.IsConstant(),
		Payable:    original.IsPayable(),
		Structured: len(original.Outputs) > 1,
	}
	switch {
	case m.Constant:
		m.Opts = "*proxy.CallOverrides"
	case m.Payable:
		m.Opts = "*proxy.PayableOverrides"
	default:
		m.Opts = "*proxy.Overrides"
	}
	used := make(map[string]bool)
	for i, input := range original.Inputs {
		typ, err := bindType(input.Type)
		if err != nil {
			return nil, ErrorCodeUnsupportedType.Wrapf(err, "method:%s input:%d", original.Name, i)
		}
		name := paramName(input.Name, i, used)
		m.Inputs = append(m.Inputs, Arg{Name: name, Type: typ})
	}
	fields := make(map[string]bool)
	for i, output := range original.Outputs {
		typ, err := bindType(output.Type)
		if err != nil {
			return nil, ErrorCodeUnsupportedType.Wrapf(err, "method:%s output:%d", original.Name, i)
		}
		name := "Out" + strconv.Itoa(i)
		if output.Name != "" {
			if n := abi.ToCamelCase(output.Name); token.IsIdentifier(n) && !fields[n] {
				name = n
			}
		}
		fields[name] = true
		m.Outputs = append(m.Outputs, Arg{Name: name, Type: typ})
	}
	return m, nil
}

func newEvent(original abi.Event) (*Event, error) {
	if original.Anonymous {
		return nil, ErrorCodeUnsupportedType.Errorf("anonymous event:%s", original.Name)
	}
	e := &Event{
		Original:   original,
		Name:       original.Name,
		Normalized: abi.ToCamelCase(original.Name),
	}
	used := make(map[string]bool)
	fields := make(map[string]bool)
	for i, input := range original.Inputs {
		typ, err := bindType(input.Type)
		if err != nil {
			return nil, ErrorCodeUnsupportedType.Wrapf(err, "event:%s input:%d", original.Name, i)
		}
		field := abi.ToCamelCase(input.Name)
		if field == "Raw" || fields[field] || !token.IsIdentifier(field) {
			return nil, ErrorCodeNameConflict.Errorf("event:%s invalid field name:%s", original.Name, input.Name)
		}
		fields[field] = true
		if input.Indexed {
			if isReferenceType(input.Type) {
				typ = "common.Hash"
			}
			e.Indexed = append(e.Indexed, Arg{Name: paramName(input.Name, i, used), Type: typ})
		}
		e.Fields = append(e.Fields, Arg{Name: field, Type: typ})
	}
	return e, nil
}

func paramName(name string, i int, used map[string]bool) string {
	if name == "" || !token.IsIdentifier(name) || reservedParams[name] || used[name] || name == "_" {
		name = fmt.Sprintf("arg%d", i)
	}
	used[name] = true
	return name
}

// isReferenceType reports whether indexed values of t are stored as keccak hash.
func isReferenceType(t abi.Type) bool {
	switch t.T {
	case abi.StringTy, abi.BytesTy, abi.SliceTy, abi.ArrayTy, abi.TupleTy:
		return true
	}
	return false
}

func bindType(t abi.Type) (string, error) {
	switch t.T {
	case abi.AddressTy:
		return "common.Address", nil
	case abi.BoolTy:
		return "bool", nil
	case abi.StringTy:
		return "string", nil
	case abi.BytesTy:
		return "[]byte", nil
	case abi.FixedBytesTy:
		return fmt.Sprintf("[%d]byte", t.Size), nil
	case abi.FunctionTy:
		return "[24]byte", nil
	case abi.IntTy, abi.UintTy:
		prefix := ""
		if t.T == abi.UintTy {
			prefix = "u"
		}
		switch t.Size {
		case 8, 16, 32, 64:
			return fmt.Sprintf("%sint%d", prefix, t.Size), nil
		}
		return "*big.Int", nil
	case abi.SliceTy:
		elem, err := bindType(*t.Elem)
		if err != nil {
			return "", err
		}
		return "[]" + elem, nil
	case abi.ArrayTy:
		elem, err := bindType(*t.Elem)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("[%d]%s", t.Size, elem), nil
	default:
		return "", ErrorCodeUnsupportedType.Errorf("not supported type:%s", t.String())
	}
}
