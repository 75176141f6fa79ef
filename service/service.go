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
	"sort"

	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"

	"github.com/icon-project/weth-sdk/contract"
)

type DefaultServiceOptions struct {
	ContractAddress contract.Address `json:"contract_address"`
}

// DefaultService binds one contract per network, with the spec of the network type.
type DefaultService struct {
	name string
	m    map[string]contract.Handler
	a    map[string]contract.Adaptor
	l    log.Logger
}

func NewDefaultService(name string, networks map[string]Network, typeToSpec map[string][]byte, l log.Logger) (*DefaultService, error) {
	hMap := make(map[string]contract.Handler)
	aMap := make(map[string]contract.Adaptor)
	for network, n := range networks {
		opt := &DefaultServiceOptions{}
		if err := contract.DecodeOptions(n.Options, opt); err != nil {
			return nil, err
		}
		spec, ok := typeToSpec[n.NetworkType]
		if !ok {
			return nil, errors.Errorf("not supported networkType:%s service:%s", n.NetworkType, name)
		}
		h, err := n.Adaptor.Handler(spec, opt.ContractAddress)
		if err != nil {
			return nil, err
		}
		hMap[network] = h
		aMap[network] = n.Adaptor
	}
	return &DefaultService{
		name: name,
		m:    hMap,
		a:    aMap,
		l:    l,
	}, nil
}

func (s *DefaultService) Name() string {
	return s.name
}

func (s *DefaultService) Networks() []string {
	ret := make([]string, 0, len(s.m))
	for network := range s.m {
		ret = append(ret, network)
	}
	sort.Strings(ret)
	return ret
}

func (s *DefaultService) Handler(network string) (contract.Handler, error) {
	h, ok := s.m[network]
	if !ok {
		return nil, errors.NotFoundError.Errorf("not found handler network:%s", network)
	}
	return h, nil
}

func (s *DefaultService) Spec(network string) (contract.Spec, error) {
	h, err := s.Handler(network)
	if err != nil {
		return contract.Spec{}, err
	}
	return h.Spec(), nil
}

func (s *DefaultService) Invoke(network, method string, params contract.Params, options contract.Options) (contract.TxID, error) {
	h, err := s.Handler(network)
	if err != nil {
		return nil, err
	}
	return h.Invoke(method, params, options)
}

func (s *DefaultService) Call(network, method string, params contract.Params, options contract.Options) (contract.ReturnValue, error) {
	h, err := s.Handler(network)
	if err != nil {
		return nil, err
	}
	return h.Call(method, params, options)
}

func (s *DefaultService) Simulate(network, method string, params contract.Params, options contract.Options) (contract.ReturnValue, error) {
	h, err := s.Handler(network)
	if err != nil {
		return nil, err
	}
	return h.Simulate(method, params, options)
}

func (s *DefaultService) EstimateGas(network, method string, params contract.Params, options contract.Options) (contract.Integer, error) {
	h, err := s.Handler(network)
	if err != nil {
		return "", err
	}
	return h.EstimateGas(method, params, options)
}

func (s *DefaultService) Populate(network, method string, params contract.Params, options contract.Options) (*contract.PopulatedTransaction, error) {
	h, err := s.Handler(network)
	if err != nil {
		return nil, err
	}
	return h.Populate(method, params, options)
}

// EventFilters makes a filter per params, or one without params if the list is empty.
func (s *DefaultService) EventFilters(network string, nameToParams map[string][]contract.Params) ([]contract.EventFilter, error) {
	h, err := s.Handler(network)
	if err != nil {
		return nil, err
	}
	efs := make([]contract.EventFilter, 0)
	for name, l := range nameToParams {
		if len(l) == 0 {
			l = []contract.Params{nil}
		}
		for _, params := range l {
			ef, err := h.EventFilter(name, params)
			if err != nil {
				return nil, err
			}
			efs = append(efs, ef)
		}
	}
	return efs, nil
}

func (s *DefaultService) MonitorEvent(ctx context.Context, network string, cb contract.EventCallback, efs []contract.EventFilter, height int64) error {
	h, err := s.Handler(network)
	if err != nil {
		return err
	}
	for _, ef := range efs {
		if ef.Address() != h.Address() {
			return errors.IllegalArgumentError.Errorf("invalid EventFilter address:%s", ef.Address())
		}
	}
	s.l.Debugf("MonitorEvent network:%s filters:%d height:%d", network, len(efs), height)
	return s.a[network].MonitorEvent(ctx, cb, efs, height)
}

// Adaptor returns the adaptor of network.
func (s *DefaultService) Adaptor(network string) (contract.Adaptor, error) {
	a, ok := s.a[network]
	if !ok {
		return nil, errors.NotFoundError.Errorf("not found adaptor network:%s", network)
	}
	return a, nil
}
