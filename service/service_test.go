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
	"crypto/ecdsa"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"
	"github.com/icon-project/btp2/common/wallet"
	"github.com/stretchr/testify/assert"

	"github.com/icon-project/weth-sdk/contract"
	"github.com/icon-project/weth-sdk/contract/eth"
	"github.com/icon-project/weth-sdk/contract/eth/ethtest"
	"github.com/icon-project/weth-sdk/weth"
)

const (
	networkEthTest = "eth_test"
	keySecret      = "weth"
)

var (
	wethAddress = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	dstAddress  = common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
)

func MustEncodeOptions(v interface{}) contract.Options {
	opt, err := contract.EncodeOptions(v)
	if err != nil {
		log.Panicf("%+v", err)
	}
	return opt
}

func MustNewWallet(key *ecdsa.PrivateKey) wallet.Wallet {
	ks, err := keystore.EncryptKey(&keystore.Key{
		Address:    crypto.PubkeyToAddress(key.PublicKey),
		PrivateKey: key,
	}, keySecret, keystore.LightScryptN, keystore.LightScryptP)
	if err != nil {
		log.Panicf("fail to EncryptKey err:%+v", err)
	}
	w, err := wallet.DecryptKeyStore(ks, []byte(keySecret))
	if err != nil {
		log.Panicf("fail to DecryptKeyStore err:%+v", err)
	}
	return w
}

func newTestService(t *testing.T) (*DefaultService, *ethtest.Backend) {
	b := ethtest.NewBackend()
	l := log.GlobalLogger()
	a, err := eth.NewAdaptorWithClient(eth.NetworkTypeEth, b, MustEncodeOptions(eth.AdaptorOption{}), l)
	if err != nil {
		assert.FailNow(t, "fail to NewAdaptorWithClient", err)
	}
	networks := map[string]Network{
		networkEthTest: {
			NetworkType: eth.NetworkTypeEth,
			Adaptor:     a,
			Options: MustEncodeOptions(DefaultServiceOptions{
				ContractAddress: contract.Address(wethAddress.String()),
			}),
		},
	}
	s, err := NewDefaultService("weth", networks, map[string][]byte{eth.NetworkTypeEth: weth.ABI}, l)
	if err != nil {
		assert.FailNow(t, "fail to NewDefaultService", err)
	}
	return s, b
}

func packUint256(v int64) []byte {
	return common.LeftPadBytes(big.NewInt(v).Bytes(), 32)
}

func Test_NewDefaultService(t *testing.T) {
	s, _ := newTestService(t)
	assert.Equal(t, "weth", s.Name())
	assert.Equal(t, []string{networkEthTest}, s.Networks())

	spec, err := s.Spec(networkEthTest)
	assert.NoError(t, err)
	_, ok := spec.MethodMap["deposit"]
	assert.True(t, ok)

	_, err = s.Spec("unknown")
	assert.True(t, errors.NotFoundError.Equals(err))
	_, err = s.Call("unknown", "totalSupply", nil, nil)
	assert.True(t, errors.NotFoundError.Equals(err))

	_, err = NewDefaultService("weth", map[string]Network{
		networkEthTest: {NetworkType: "unknown"},
	}, map[string][]byte{eth.NetworkTypeEth: weth.ABI}, log.GlobalLogger())
	assert.Error(t, err)
}

func Test_DefaultServiceCall(t *testing.T) {
	s, b := newTestService(t)
	b.OnCall = func(msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
		return packUint256(42), nil
	}
	r, err := s.Call(networkEthTest, "totalSupply", nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, contract.Integer("0x2a"), r)

	r, err = s.Simulate(networkEthTest, "deposit", nil, contract.Options{"value": "0x1"})
	assert.NoError(t, err)
	assert.Nil(t, r)

	gas, err := s.EstimateGas(networkEthTest, "deposit", nil, contract.Options{"value": "0x1"})
	assert.NoError(t, err)
	assert.Equal(t, contract.FromUint64(ethtest.DefaultGasEstimate), gas)
}

func Test_DefaultServiceEventFilters(t *testing.T) {
	s, b := newTestService(t)
	efs, err := s.EventFilters(networkEthTest, map[string][]contract.Params{
		"Deposit": nil,
		"Transfer": {
			{"src": dstAddress.String()},
			{"dst": dstAddress.String()},
		},
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, len(efs))

	_, err = s.EventFilters(networkEthTest, map[string][]contract.Params{"Unknown": nil})
	assert.True(t, contract.ErrorCodeNotFoundEvent.Equals(err))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ch := make(chan contract.Event, 1)
	go func() {
		time.Sleep(100 * time.Millisecond)
		b.Emit(types.Log{
			Address: wethAddress,
			Topics: []common.Hash{
				crypto.Keccak256Hash([]byte("Deposit(address,uint256)")),
				common.BytesToHash(dstAddress.Bytes()),
			},
			Data:        packUint256(3),
			BlockNumber: 1,
			BlockHash:   b.BlockHash(1),
			TxHash:      common.HexToHash("0x01"),
		})
	}()
	err = s.MonitorEvent(ctx, networkEthTest, func(e contract.Event) error {
		ch <- e
		cancel()
		return nil
	}, efs, 0)
	assert.Error(t, err)
	select {
	case e := <-ch:
		assert.Equal(t, "Deposit", e.Name())
		assert.Equal(t, contract.Integer("0x3"), e.Params()["wad"])
	default:
		assert.Fail(t, "no event")
	}
}

func Test_SignerService(t *testing.T) {
	s, b := newTestService(t)
	key, _ := crypto.GenerateKey()
	w := MustNewWallet(key)
	from := crypto.PubkeyToAddress(key.PublicKey)
	b.SetNonce(from, 3)

	_, err := NewSignerService(s, map[string]Signer{
		networkEthTest: NewDefaultSigner(w, "icon"),
	}, log.GlobalLogger())
	assert.Error(t, err)

	ss, err := NewSignerService(s, map[string]Signer{
		networkEthTest: NewDefaultSigner(w, eth.NetworkTypeEth),
	}, log.GlobalLogger())
	assert.NoError(t, err)

	txID, err := ss.Invoke(networkEthTest, "transfer", contract.Params{
		"dst": dstAddress.String(),
		"wad": "100",
	}, nil)
	assert.NoError(t, err)
	sent := b.Sent()
	assert.Equal(t, 1, len(sent))
	assert.Equal(t, eth.NewTxID(sent[0].Hash()), txID)
	assert.Equal(t, uint64(3), sent[0].Nonce())
	sender, err := types.LatestSignerForChainID(b.Chain).Sender(sent[0])
	assert.NoError(t, err)
	assert.Equal(t, from, sender)

	_, err = ss.Invoke(networkEthTest, "transfer", contract.Params{
		"dst": dstAddress.String(),
		"wad": "100",
	}, contract.Options{"from": dstAddress.String()})
	assert.True(t, contract.ErrorCodeRequireSignature.Equals(err), "other sender")

	ptx, err := ss.Populate(networkEthTest, "deposit", nil, contract.Options{"value": "0x10"})
	assert.NoError(t, err)
	assert.Equal(t, contract.Address(w.Address()), ptx.From)

	_, err = ss.Invoke("unknown", "deposit", nil, nil)
	assert.True(t, errors.NotFoundError.Equals(err))
}
