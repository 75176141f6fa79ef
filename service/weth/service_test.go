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

package weth

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/icon-project/btp2/common/log"
	"github.com/stretchr/testify/assert"

	"github.com/icon-project/weth-sdk/contract"
	"github.com/icon-project/weth-sdk/contract/eth"
	"github.com/icon-project/weth-sdk/contract/eth/ethtest"
	"github.com/icon-project/weth-sdk/service"
)

const (
	networkEthTest = "eth_test"
)

var (
	wethAddress = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
)

func newTestService(t *testing.T, networkType string) (service.Service, *ethtest.Backend) {
	b := ethtest.NewBackend()
	l := log.GlobalLogger()
	a, err := eth.NewAdaptorWithClient(networkType, b, nil, l)
	if err != nil {
		assert.FailNow(t, "fail to NewAdaptorWithClient", err)
	}
	opt, err := contract.EncodeOptions(service.DefaultServiceOptions{
		ContractAddress: contract.Address(wethAddress.String()),
	})
	if err != nil {
		assert.FailNow(t, "fail to EncodeOptions", err)
	}
	s, err := service.NewService(ServiceName, map[string]service.Network{
		networkEthTest: {
			NetworkType: networkType,
			Adaptor:     a,
			Options:     opt,
		},
	}, l)
	if err != nil {
		assert.FailNow(t, "fail to NewService", err)
	}
	return s, b
}

func Test_NewService(t *testing.T) {
	assert.Contains(t, service.ServiceNames(), ServiceName)
	for _, nt := range eth.NetworkTypes {
		s, _ := newTestService(t, nt)
		assert.Equal(t, ServiceName, s.Name())
		spec, err := s.Spec(networkEthTest)
		assert.NoError(t, err)
		assert.Equal(t, 4, len(spec.EventMap), "networkType:%s", nt)
	}
}

func Test_ProxyOf(t *testing.T) {
	s, b := newTestService(t, eth.NetworkTypeEth)
	b.OnCall = func(msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
		return common.LeftPadBytes(big.NewInt(9).Bytes(), 32), nil
	}
	p, err := s.(*Service).Proxy(networkEthTest)
	assert.NoError(t, err)
	assert.Equal(t, wethAddress, p.Address())
	r, err := p.CallStatic.TotalSupply(nil)
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(9), r)

	ss, err := service.NewSignerService(s, nil, log.GlobalLogger())
	assert.NoError(t, err)
	p, err = ProxyOf(ss, networkEthTest)
	assert.NoError(t, err)
	assert.Equal(t, wethAddress, p.Address())

	_, err = ProxyOf(s, "unknown")
	assert.Error(t, err)
}
