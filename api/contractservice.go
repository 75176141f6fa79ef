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

package api

import (
	"encoding/json"
	"fmt"

	"github.com/icon-project/btp2/common/log"

	"github.com/icon-project/weth-sdk/contract"
	"github.com/icon-project/weth-sdk/service"
)

type RegisterContractServiceRequest struct {
	Address contract.Address `json:"address" validate:"required"`
	Spec    json.RawMessage  `json:"spec" validate:"required"`
}

// NewContractService binds a contract of the network with the given spec,
// so that the contract is served like a registered service.
func NewContractService(a contract.Adaptor, spec []byte, address contract.Address, network string, l log.Logger) (service.Service, error) {
	opt, err := contract.EncodeOptions(service.DefaultServiceOptions{ContractAddress: address})
	if err != nil {
		return nil, err
	}
	return service.NewDefaultService(
		ContractServiceName(network, address),
		map[string]service.Network{
			network: {
				NetworkType: a.NetworkType(),
				Adaptor:     a,
				Options:     opt,
			},
		},
		map[string][]byte{a.NetworkType(): spec},
		l)
}

func ContractServiceName(network string, address contract.Address) string {
	return fmt.Sprintf("%s|%s", network, address)
}
