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

// Package weth registers the service of IWETH9L1.
package weth

import (
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"

	"github.com/icon-project/weth-sdk/contract/eth"
	"github.com/icon-project/weth-sdk/service"
	"github.com/icon-project/weth-sdk/weth"
)

const (
	ServiceName = "weth"
)

var (
	typeToSpec = map[string][]byte{
		eth.NetworkTypeEth:  weth.ABI,
		eth.NetworkTypeEth2: weth.ABI,
		eth.NetworkTypeBSC:  weth.ABI,
	}
)

func init() {
	service.RegisterFactory(ServiceName, NewService)
}

type Service struct {
	*service.DefaultService
	l log.Logger
}

func NewService(networks map[string]service.Network, l log.Logger) (service.Service, error) {
	s, err := service.NewDefaultService(ServiceName, networks, typeToSpec, l)
	if err != nil {
		return nil, err
	}
	return &Service{
		DefaultService: s,
		l:              l,
	}, nil
}

// Proxy returns the typed proxy over the client of the network.
func (s *Service) Proxy(network string) (*weth.IWETH9L1, error) {
	return ProxyOf(s, network)
}

// ProxyOf returns the typed proxy of the network of s, which may be wrapped by service.SignerService.
func ProxyOf(s service.Service, network string) (*weth.IWETH9L1, error) {
	var ds *service.DefaultService
	switch t := s.(type) {
	case *Service:
		ds = t.DefaultService
	case *service.SignerService:
		return ProxyOf(t.Service, network)
	default:
		return nil, errors.Errorf("not supported service %T", s)
	}
	h, err := ds.Handler(network)
	if err != nil {
		return nil, err
	}
	a, err := ds.Adaptor(network)
	if err != nil {
		return nil, err
	}
	backend, ok := a.(bind.ContractBackend)
	if !ok {
		return nil, errors.Errorf("not supported adaptor %T", a)
	}
	return weth.NewIWETH9L1(common.HexToAddress(string(h.Address())), backend)
}
