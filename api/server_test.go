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
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
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
	"github.com/icon-project/weth-sdk/database"
	"github.com/icon-project/weth-sdk/service"
	wethservice "github.com/icon-project/weth-sdk/service/weth"
	"github.com/icon-project/weth-sdk/tracker"
	wethtracker "github.com/icon-project/weth-sdk/tracker/weth"
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

func packUint256(v int64) []byte {
	return common.LeftPadBytes(big.NewInt(v).Bytes(), 32)
}

func depositLog(b *ethtest.Backend, height uint64, dst common.Address, wad int64) types.Log {
	return types.Log{
		Address: wethAddress,
		Topics: []common.Hash{
			crypto.Keccak256Hash([]byte("Deposit(address,uint256)")),
			common.BytesToHash(dst.Bytes()),
		},
		Data:        packUint256(wad),
		BlockNumber: height,
		BlockHash:   b.BlockHash(height),
		TxHash:      common.BigToHash(new(big.Int).SetUint64(height)),
	}
}

type testEnv struct {
	b      *ethtest.Backend
	s      *Server
	c      *Client
	signer service.Signer
	tkr    *wethtracker.Tracker
}

func newTestEnv(t *testing.T) *testEnv {
	l := log.GlobalLogger()
	b := ethtest.NewBackend()
	a, err := eth.NewAdaptorWithClient(eth.NetworkTypeEth, b, nil, l)
	if err != nil {
		assert.FailNow(t, "fail to NewAdaptorWithClient", err)
	}
	networks := map[string]service.Network{
		networkEthTest: {
			NetworkType: eth.NetworkTypeEth,
			Adaptor:     a,
			Options: MustEncodeOptions(service.DefaultServiceOptions{
				ContractAddress: contract.Address(wethAddress.Hex()),
			}),
		},
	}
	svc, err := service.NewService(wethservice.ServiceName, networks, l)
	if err != nil {
		assert.FailNow(t, "fail to NewService", err)
	}
	key, _ := crypto.GenerateKey()
	signer := service.NewDefaultSigner(MustNewWallet(key), eth.NetworkTypeEth)
	ss, err := service.NewSignerService(svc, map[string]service.Signer{networkEthTest: signer}, l)
	if err != nil {
		assert.FailNow(t, "fail to NewSignerService", err)
	}
	db, err := database.OpenDatabase(database.Config{
		Driver: database.DriverSQLite,
		DBName: database.SQLiteMemory,
	}, l)
	if err != nil {
		assert.FailNow(t, "fail to OpenDatabase", err)
	}
	tkr, err := tracker.NewTracker(wethservice.ServiceName, svc, map[string]tracker.Network{
		networkEthTest: {
			NetworkType: eth.NetworkTypeEth,
			Adaptor:     a,
			Options:     MustEncodeOptions(wethtracker.TrackerOptions{InitHeight: 1}),
		},
	}, db, l)
	if err != nil {
		assert.FailNow(t, "fail to NewTracker", err)
	}

	s := NewServer("", log.DebugLevel, l)
	s.AddAdaptor(networkEthTest, a)
	s.AddService(ss)
	s.AddTracker(tkr)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return &testEnv{
		b:      b,
		s:      s,
		c:      NewClient(ts.URL, log.DebugLevel, l),
		signer: signer,
		tkr:    tkr.(*wethtracker.Tracker),
	}
}

func Test_ServerInfos(t *testing.T) {
	env := newTestEnv(t)
	ni, err := env.c.NetworkInfos()
	assert.NoError(t, err)
	assert.Equal(t, NetworkInfos{{Name: networkEthTest, NetworkType: eth.NetworkTypeEth}}, ni)

	si, err := env.c.ServiceInfos(networkEthTest)
	assert.NoError(t, err)
	assert.Equal(t, ServiceInfos{{Name: wethservice.ServiceName, Networks: []string{networkEthTest}}}, si)

	_, err = env.c.ServiceInfos("unknown")
	assert.Error(t, err)

	spec, err := env.c.Spec(networkEthTest, wethservice.ServiceName)
	assert.NoError(t, err)
	m, ok := spec.MethodMap["balanceOf"]
	assert.True(t, ok)
	assert.True(t, m.ReadOnly)
	assert.Equal(t, 4, len(spec.EventMap))
}

func Test_ServerCall(t *testing.T) {
	env := newTestEnv(t)
	env.b.OnCall = func(msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
		return packUint256(42), nil
	}
	var r contract.Integer
	_, err := env.c.Call(networkEthTest, wethservice.ServiceName, "totalSupply", &Request{}, &r)
	assert.NoError(t, err)
	assert.Equal(t, contract.Integer("0x2a"), r)

	_, err = env.c.Call(networkEthTest, wethservice.ServiceName, "balanceOf", &Request{
		Params: contract.Params{"guy": dstAddress.Hex()},
	}, &r)
	assert.NoError(t, err)
	assert.Equal(t, contract.Integer("0x2a"), r)

	_, err = env.c.Call(networkEthTest, wethservice.ServiceName, "deposit", &Request{}, &r)
	assert.Error(t, err, "writable method with GET")

	_, err = env.c.Call(networkEthTest, wethservice.ServiceName, "unknown", &Request{}, &r)
	assert.Error(t, err)

	_, err = env.c.Call(networkEthTest, "unknown", "totalSupply", &Request{}, &r)
	assert.Error(t, err)
}

func Test_ServerInvoke(t *testing.T) {
	env := newTestEnv(t)
	txID, err := env.c.Invoke(networkEthTest, wethservice.ServiceName, "deposit", &Request{
		Options: contract.Options{"value": "0x10"},
	}, nil)
	assert.NoError(t, err)
	sent := env.b.Sent()
	assert.Equal(t, 1, len(sent))
	assert.Equal(t, eth.NewTxID(sent[0].Hash()), txID)

	_, err = env.c.Invoke(networkEthTest, wethservice.ServiceName, "totalSupply", &Request{}, nil)
	assert.Error(t, err, "readonly method with POST")

	_, err = env.c.GetResult(networkEthTest, txID)
	assert.True(t, contract.ErrorCodeNotFoundTransaction.Equals(err), "pending")

	env.b.SetReceipt(&types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		TxHash:      sent[0].Hash(),
		BlockHash:   env.b.BlockHash(3),
		BlockNumber: big.NewInt(3),
		Logs:        []*types.Log{},
	})
	r, err := env.c.GetResult(networkEthTest, txID)
	assert.NoError(t, err)
	assert.True(t, r.Success)
	assert.Equal(t, int64(3), r.BlockHeight)
	assert.Equal(t, txID, r.TxID)
}

func Test_ServerContractServiceWithClientSigner(t *testing.T) {
	env := newTestEnv(t)
	err := env.c.RegisterContractService(networkEthTest, &RegisterContractServiceRequest{
		Address: contract.Address(wethAddress.Hex()),
		Spec:    weth.ABI,
	})
	assert.NoError(t, err)
	name := ContractServiceName(networkEthTest, contract.Address(wethAddress.Hex()))
	assert.NotNil(t, env.s.GetService(name))

	err = env.c.RegisterContractService(networkEthTest, &RegisterContractServiceRequest{})
	assert.Error(t, err)

	key, _ := crypto.GenerateKey()
	signer := service.NewDefaultSigner(MustNewWallet(key), eth.NetworkTypeEth)
	from := crypto.PubkeyToAddress(key.PublicKey)
	env.b.SetNonce(from, 5)
	txID, err := env.c.Invoke(networkEthTest, wethAddress.Hex(), "transfer", &Request{
		Params: contract.Params{"dst": dstAddress.Hex(), "wad": "0x1"},
	}, signer)
	assert.NoError(t, err)
	sent := env.b.Sent()
	assert.Equal(t, 1, len(sent))
	assert.Equal(t, eth.NewTxID(sent[0].Hash()), txID)
	assert.Equal(t, uint64(5), sent[0].Nonce())
	sender, err := types.LatestSignerForChainID(env.b.Chain).Sender(sent[0])
	assert.NoError(t, err)
	assert.Equal(t, from, sender)

	_, err = env.c.Invoke(networkEthTest, wethAddress.Hex(), "transfer", &Request{
		Params: contract.Params{"dst": dstAddress.Hex(), "wad": "0x1"},
	}, nil)
	assert.Error(t, err, "without signer")
}

func Test_ServerStaticEstimatePopulate(t *testing.T) {
	env := newTestEnv(t)
	var r interface{}
	_, err := env.c.Static(networkEthTest, wethservice.ServiceName, "deposit", &Request{
		Options: contract.Options{"value": "0x10"},
	}, &r)
	assert.NoError(t, err)
	assert.Nil(t, r)

	gas, err := env.c.EstimateGas(networkEthTest, wethservice.ServiceName, "deposit", &Request{
		Options: contract.Options{"value": "0x10"},
	})
	assert.NoError(t, err)
	assert.Equal(t, contract.FromUint64(ethtest.DefaultGasEstimate), gas)

	ptx, err := env.c.Populate(networkEthTest, wethservice.ServiceName, "deposit", &Request{
		Options: contract.Options{"value": "0x10"},
	})
	assert.NoError(t, err)
	assert.Equal(t, contract.Address(env.signer.Address()), ptx.From)
	assert.Equal(t, contract.Address(wethAddress.Hex()), ptx.To)
	assert.Equal(t, contract.Integer("0x10"), ptx.Value)

	_, err = env.c.Populate(networkEthTest, wethservice.ServiceName, "transfer", &Request{
		Params: contract.Params{"dst": "invalid"},
	})
	assert.Error(t, err)
}

func Test_ServerTracker(t *testing.T) {
	env := newTestEnv(t)
	env.b.Emit(
		depositLog(env.b, 1, dstAddress, 10),
		depositLog(env.b, 2, dstAddress, 20),
	)
	assert.NoError(t, env.tkr.Sync(context.Background(), networkEthTest, 2))

	infos, err := env.c.TrackerInfos()
	assert.NoError(t, err)
	assert.Equal(t, 1, len(infos))
	assert.Equal(t, wethservice.ServiceName, infos[0].Name)
	assert.Equal(t, int64(2), infos[0].Networks[0].Height)

	page, err := env.c.TrackerEvents(wethservice.ServiceName, &TrackerFindRequest{
		Network: networkEthTest,
		Address: dstAddress.Hex(),
		Size:    1,
		Sort:    "block_height desc",
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, page.TotalElements)
	assert.Equal(t, 1, len(page.Content))
	e, ok := page.Content[0].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, "20", e["wad"])

	_, err = env.c.TrackerEvents(wethservice.ServiceName, &TrackerFindRequest{Sort: "wad; --"})
	assert.Error(t, err)
	_, err = env.c.TrackerEvents(wethservice.ServiceName, &TrackerFindRequest{Size: 10000})
	assert.Error(t, err)
	_, err = env.c.TrackerEvents("unknown", &TrackerFindRequest{})
	assert.Error(t, err)

	summary, err := env.c.TrackerSummary(wethservice.ServiceName)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(summary))
}

func Test_ServerMonitorEvent(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := env.c.MonitorEvent(ctx, networkEthTest, wethservice.ServiceName, &MonitorRequest{
		NameToParams: map[string][]contract.Params{"Unknown": nil},
	}, func(e *Event) error { return nil })
	assert.True(t, contract.ErrorCodeNotFoundEvent.Equals(err))

	go func() {
		time.Sleep(300 * time.Millisecond)
		env.b.Emit(depositLog(env.b, 1, dstAddress, 3))
	}()
	stop := errors.New("stop")
	var received *Event
	err = env.c.MonitorEvent(ctx, networkEthTest, wethservice.ServiceName, &MonitorRequest{
		NameToParams: map[string][]contract.Params{"Deposit": nil},
	}, func(e *Event) error {
		received = e
		return stop
	})
	assert.Equal(t, stop, err)
	if assert.NotNil(t, received) {
		assert.Equal(t, "Deposit", received.Name)
		assert.Equal(t, int64(1), received.BlockHeight)
		assert.Equal(t, "0x3", received.Params["wad"])
	}
}

func Test_ServerOpenAPI(t *testing.T) {
	env := newTestEnv(t)
	get := func(path string) (int, map[string]interface{}) {
		resp, err := http.Get(env.c.baseUrl + path)
		if err != nil {
			assert.FailNow(t, "fail to Get", err)
		}
		defer resp.Body.Close()
		m := make(map[string]interface{})
		_ = json.NewDecoder(resp.Body).Decode(&m)
		return resp.StatusCode, m
	}
	code, m := get(UrlOpenAPI)
	assert.Equal(t, http.StatusOK, code)
	paths, ok := m["paths"].(map[string]interface{})
	assert.True(t, ok)
	assert.Contains(t, paths, "/api/{network}/weth/deposit")
	assert.Contains(t, paths, "/api/{network}/weth/deposit/estimate")
	assert.Contains(t, paths, "/api/{network}/weth/balanceOf/static")
	assert.NotContains(t, paths, "/api/{network}/weth/balanceOf/populate")

	code, _ = get(UrlOpenAPI + "/" + wethservice.ServiceName)
	assert.Equal(t, http.StatusOK, code)
	code, _ = get(UrlOpenAPI + "/unknown")
	assert.Equal(t, http.StatusNotFound, code)
}
