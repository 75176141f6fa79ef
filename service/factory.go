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

package service

import (
	"context"

	"github.com/icon-project/btp2/common/log"

	"github.com/icon-project/weth-sdk/contract"
)

type Service interface {
	Name() string
	Networks() []string
	Spec(network string) (contract.Spec, error)
	Invoke(network, method string, params contract.Params, options contract.Options) (contract.TxID, error)
	Call(network, method string, params contract.Params, options contract.Options) (contract.ReturnValue, error)
	Simulate(network, method string, params contract.Params, options contract.Options) (contract.ReturnValue, error)
	EstimateGas(network, method string, params contract.Params, options contract.Options) (contract.Integer, error)
	Populate(network, method string, params contract.Params, options contract.Options) (*contract.PopulatedTransaction, error)
	EventFilters(network string, nameToParams map[string][]contract.Params) ([]contract.EventFilter, error)
	MonitorEvent(ctx context.Context, network string, cb contract.EventCallback, efs []contract.EventFilter, height int64) error
}

type Network struct {
	NetworkType string
	Adaptor     contract.Adaptor
	Options     contract.Options
}

type Factory func(map[string]Network, log.Logger) (Service, error)

var (
	factories = contract.NewRegistry[Factory]("service")
)

func RegisterFactory(serviceName string, f Factory) {
	factories.Register(f, serviceName)
}

func NewService(name string, networks map[string]Network, l log.Logger) (Service, error) {
	f, err := factories.Get(name)
	if err != nil {
		return nil, err
	}
	return f(networks, l)
}

// ServiceNames returns the registered names in order.
func ServiceNames() []string {
	return factories.Keys()
}
