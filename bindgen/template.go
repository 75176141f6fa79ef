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

import "text/template"

var tmpl = template.Must(template.New("proxy").Parse(tmplSource))

const tmplSource = `// Code generated by {{.Generator}}. DO NOT EDIT.

package {{.Package}}

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"{{.ProxyImport}}"
)

// Reference imports to suppress errors if they are not otherwise used.
var (
	_ = big.NewInt
	_ = abi.ConvertType
	_ = common.Big1
	_ = types.BloomLookup
)

// {{.Type}}MetaData contains the ABI of {{.Type}}.
var {{.Type}}MetaData = &bind.MetaData{
	ABI: {{printf "%q" .InputABI}},
}

// {{.Type}} is a typed proxy of {{.Type}} contract.
type {{.Type}} struct {
	CallStatic          *{{.Type}}CallStatic
	EstimateGas         *{{.Type}}EstimateGas
	PopulateTransaction *{{.Type}}PopulateTransaction
	Functions           *{{.Type}}Functions
	Filters             *{{.Type}}Filters

	contract *proxy.BoundContract
}

// {{.Type}}CallStatic invokes every method as a read-only call.
type {{.Type}}CallStatic struct {
	contract *proxy.BoundContract
}

// {{.Type}}EstimateGas estimates the gas of every method.
type {{.Type}}EstimateGas struct {
	contract *proxy.BoundContract
}

// {{.Type}}PopulateTransaction builds unsigned transactions of every method.
type {{.Type}}PopulateTransaction struct {
	contract *proxy.BoundContract
}

// {{.Type}}Functions returns the outputs of read-only methods as a struct.
type {{.Type}}Functions struct {
	contract *proxy.BoundContract
}

// {{.Type}}Filters builds typed log filters of every event.
type {{.Type}}Filters struct {
	contract *proxy.BoundContract
}

// New{{.Type}} creates a proxy of {{.Type}} deployed at address.
func New{{.Type}}(address common.Address, backend bind.ContractBackend) (*{{.Type}}, error) {
	parsed, err := {{.Type}}MetaData.GetAbi()
	if err != nil {
		return nil, err
	}
	return new{{.Type}}(proxy.NewBoundContract(address, *parsed, backend)), nil
}

func new{{.Type}}(contract *proxy.BoundContract) *{{.Type}} {
	return &{{.Type}}{
		CallStatic:          &{{.Type}}CallStatic{contract: contract},
		EstimateGas:         &{{.Type}}EstimateGas{contract: contract},
		PopulateTransaction: &{{.Type}}PopulateTransaction{contract: contract},
		Functions:           &{{.Type}}Functions{contract: contract},
		Filters:             &{{.Type}}Filters{contract: contract},
		contract:            contract,
	}
}

func (_{{.Type}} *{{.Type}}) Address() common.Address {
	return _{{.Type}}.contract.Address()
}

func (_{{.Type}} *{{.Type}}) Contract() *proxy.BoundContract {
	return _{{.Type}}.contract
}

func (_{{.Type}} *{{.Type}}) Interface() *proxy.Interface {
	return _{{.Type}}.contract.Interface()
}

// Attach returns a proxy of the same backend bound to address.
func (_{{.Type}} *{{.Type}}) Attach(address common.Address) *{{.Type}} {
	return new{{.Type}}(_{{.Type}}.contract.Attach(address))
}

// Connect returns a proxy of the same address using backend.
func (_{{.Type}} *{{.Type}}) Connect(backend bind.ContractBackend) *{{.Type}} {
	return new{{.Type}}(_{{.Type}}.contract.Connect(backend))
}

// WithSigner returns a proxy which signs transactions with auth by default.
func (_{{.Type}} *{{.Type}}) WithSigner(auth *bind.TransactOpts) *{{.Type}} {
	return new{{.Type}}(_{{.Type}}.contract.WithSigner(auth))
}
{{range .Methods}}{{if .HasOutputStruct}}
// {{$.Type}}{{.Normalized}}Output is the outputs of {{.Original.Sig}}.
type {{$.Type}}{{.Normalized}}Output struct {
{{range .Outputs}}	{{.Name}} {{.Type}}
{{end}}}
{{end}}{{end}}
{{range .Calls}}
// {{.Normalized}} is a read-only call of {{.Original.Sig}}.
func (_{{$.Type}} *{{$.Type}}) {{.Normalized}}(opts {{.Opts}}{{range .Inputs}}, {{.Name}} {{.Type}}{{end}}) {{if .Structured}}({{$.Type}}{{.Normalized}}Output, error){{else if .ReturnType}}({{.ReturnType}}, error){{else}}error{{end}} {
	return _{{$.Type}}.CallStatic.{{.Normalized}}(opts{{range .Inputs}}, {{.Name}}{{end}})
}
{{end}}
{{range .Transacts}}
// {{.Normalized}} sends a transaction of {{.Original.Sig}}.
func (_{{$.Type}} *{{$.Type}}) {{.Normalized}}(opts {{.Opts}}{{range .Inputs}}, {{.Name}} {{.Type}}{{end}}) (*types.Transaction, error) {
	return _{{$.Type}}.contract.Transact(opts, "{{.Name}}"{{range .Inputs}}, {{.Name}}{{end}})
}
{{end}}
{{range .Methods}}
// {{.Normalized}} calls {{.Original.Sig}} without changing the state.
func (_{{$.Type}} *{{$.Type}}CallStatic) {{.Normalized}}(opts {{.Opts}}{{range .Inputs}}, {{.Name}} {{.Type}}{{end}}) {{if .Structured}}({{$.Type}}{{.Normalized}}Output, error){{else if .ReturnType}}({{.ReturnType}}, error){{else}}error{{end}} {
{{- if .Structured}}
	out, err := _{{$.Type}}.contract.{{if .Constant}}Call{{else}}Simulate{{end}}(opts, "{{.Name}}"{{range .Inputs}}, {{.Name}}{{end}})
	outstruct := new({{$.Type}}{{.Normalized}}Output)
	if err != nil {
		return *outstruct, err
	}
{{range $i, $o := .Outputs}}	outstruct.{{$o.Name}} = *abi.ConvertType(out[{{$i}}], new({{$o.Type}})).(*{{$o.Type}})
{{end}}	return *outstruct, nil
{{- else if .ReturnType}}
	out, err := _{{$.Type}}.contract.{{if .Constant}}Call{{else}}Simulate{{end}}(opts, "{{.Name}}"{{range .Inputs}}, {{.Name}}{{end}})
	if err != nil {
		return *new({{.ReturnType}}), err
	}
	out0 := *abi.ConvertType(out[0], new({{.ReturnType}})).(*{{.ReturnType}})
	return out0, nil
{{- else}}
	_, err := _{{$.Type}}.contract.{{if .Constant}}Call{{else}}Simulate{{end}}(opts, "{{.Name}}"{{range .Inputs}}, {{.Name}}{{end}})
	return err
{{- end}}
}
{{end}}
{{range .Methods}}
// {{.Normalized}} estimates the gas of {{.Original.Sig}}.
func (_{{$.Type}} *{{$.Type}}EstimateGas) {{.Normalized}}(opts {{.Opts}}{{range .Inputs}}, {{.Name}} {{.Type}}{{end}}) (uint64, error) {
	return _{{$.Type}}.contract.EstimateGas(opts, "{{.Name}}"{{range .Inputs}}, {{.Name}}{{end}})
}
{{end}}
{{range .Methods}}
// {{.Normalized}} builds an unsigned transaction of {{.Original.Sig}}.
func (_{{$.Type}} *{{$.Type}}PopulateTransaction) {{.Normalized}}(opts {{.Opts}}{{range .Inputs}}, {{.Name}} {{.Type}}{{end}}) (*proxy.PopulatedTransaction, error) {
	return _{{$.Type}}.contract.Populate(opts, "{{.Name}}"{{range .Inputs}}, {{.Name}}{{end}})
}
{{end}}
{{range .Calls}}
{{- if .Outputs}}
// {{.Normalized}} calls {{.Original.Sig}} and returns all outputs.
func (_{{$.Type}} *{{$.Type}}Functions) {{.Normalized}}(opts {{.Opts}}{{range .Inputs}}, {{.Name}} {{.Type}}{{end}}) ({{$.Type}}{{.Normalized}}Output, error) {
	out, err := _{{$.Type}}.contract.Call(opts, "{{.Name}}"{{range .Inputs}}, {{.Name}}{{end}})
	outstruct := new({{$.Type}}{{.Normalized}}Output)
	if err != nil {
		return *outstruct, err
	}
{{range $i, $o := .Outputs}}	outstruct.{{$o.Name}} = *abi.ConvertType(out[{{$i}}], new({{$o.Type}})).(*{{$o.Type}})
{{end}}	return *outstruct, nil
}
{{- else}}
// {{.Normalized}} calls {{.Original.Sig}} which has no outputs.
func (_{{$.Type}} *{{$.Type}}Functions) {{.Normalized}}(opts {{.Opts}}{{range .Inputs}}, {{.Name}} {{.Type}}{{end}}) error {
	_, err := _{{$.Type}}.contract.Call(opts, "{{.Name}}"{{range .Inputs}}, {{.Name}}{{end}})
	return err
}
{{- end}}
{{end}}
{{range .Transacts}}
// {{.Normalized}} sends a transaction of {{.Original.Sig}}.
func (_{{$.Type}} *{{$.Type}}Functions) {{.Normalized}}(opts {{.Opts}}{{range .Inputs}}, {{.Name}} {{.Type}}{{end}}) (*types.Transaction, error) {
	return _{{$.Type}}.contract.Transact(opts, "{{.Name}}"{{range .Inputs}}, {{.Name}}{{end}})
}
{{end}}
{{range .Events}}
// {{$.Type}}{{.Normalized}} is a log of {{.Original.Sig}}.
type {{$.Type}}{{.Normalized}} struct {
{{range .Fields}}	{{.Name}} {{.Type}}
{{end}}	Raw types.Log
}

// Parse{{.Normalized}} decodes a log of {{.Original.Sig}}.
func (_{{$.Type}} *{{$.Type}}) Parse{{.Normalized}}(log types.Log) (*{{$.Type}}{{.Normalized}}, error) {
	return parse{{$.Type}}{{.Normalized}}(_{{$.Type}}.contract, log)
}

func parse{{$.Type}}{{.Normalized}}(contract *proxy.BoundContract, log types.Log) (*{{$.Type}}{{.Normalized}}, error) {
	event := new({{$.Type}}{{.Normalized}})
	if err := contract.UnpackLog(event, "{{.Name}}", log); err != nil {
		return nil, err
	}
	event.Raw = log
	return event, nil
}

// {{.Normalized}} returns a filter of {{.Original.Sig}} logs.
// Each argument constrains the indexed input of the same name, nil matches any value.
func (_{{$.Type}} *{{$.Type}}Filters) {{.Normalized}}({{range $i, $a := .Indexed}}{{if $i}}, {{end}}{{$a.Name}} []{{$a.Type}}{{end}}) (*proxy.EventFilter[{{$.Type}}{{.Normalized}}], error) {
{{range .Indexed}}	var {{.Name}}Rule []interface{}
	for _, {{.Name}}Item := range {{.Name}} {
		{{.Name}}Rule = append({{.Name}}Rule, {{.Name}}Item)
	}
{{end}}	return proxy.NewEventFilter[{{$.Type}}{{.Normalized}}](_{{$.Type}}.contract, "{{.Name}}", func(log types.Log) (*{{$.Type}}{{.Normalized}}, error) {
		return parse{{$.Type}}{{.Normalized}}(_{{$.Type}}.contract, log)
	}{{range .Indexed}}, {{.Name}}Rule{{end}})
}
{{end}}
`
