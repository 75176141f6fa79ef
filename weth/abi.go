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

// Package weth is the typed proxy of IWETH9L1, the wrapped ether token.
package weth

import (
	_ "embed"
)

//go:generate go run ../cmd/weth-cli gen --type IWETH9L1 --pkg weth --abi IWETH9L1.abi.json --out iweth9l1.go

const (
	ContractType = "IWETH9L1"
)

// ABI is the JSON ABI which iweth9l1.go is generated from.
//
//go:embed IWETH9L1.abi.json
var ABI []byte

// EventNames are the events of IWETH9L1 in the order of generated filters.
var EventNames = []string{"Approval", "Deposit", "Transfer", "Withdrawal"}
