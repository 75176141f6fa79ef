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
	"encoding/hex"
	"strings"

	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"
	"github.com/icon-project/btp2/common/wallet"

	"github.com/icon-project/weth-sdk/contract"
	"github.com/icon-project/weth-sdk/contract/eth"
)

type Signer interface {
	wallet.Wallet
	NetworkType() string
}

type defaultSigner struct {
	wallet.Wallet
	networkType string
}

func (s *defaultSigner) NetworkType() string {
	return s.networkType
}

func NewDefaultSigner(w wallet.Wallet, networkType string) Signer {
	return &defaultSigner{
		Wallet:      w,
		networkType: networkType,
	}
}

func isEthNetworkType(networkType string) bool {
	for _, nt := range eth.NetworkTypes {
		if nt == networkType {
			return true
		}
	}
	return false
}

// SignerService signs the transactions of Invoke with the signer of the network.
// The signer also becomes the default 'from' of EstimateGas and Populate.
type SignerService struct {
	Service
	sMap map[string]Signer
	l    log.Logger
}

func (s *SignerService) signer(network string) (Signer, error) {
	w, ok := s.sMap[network]
	if !ok {
		return nil, errors.NotFoundError.Errorf("not found signer network:%s", network)
	}
	return w, nil
}

// PrepareToSign fills the empty 'from' of options with the address of w.
func PrepareToSign(options contract.Options, w Signer) (contract.Options, error) {
	if !isEthNetworkType(w.NetworkType()) {
		return nil, errors.Errorf("not support network type:%s", w.NetworkType())
	}
	opt := &eth.InvokeOptions{}
	if err := contract.DecodeOptions(options, opt); err != nil {
		return nil, err
	}
	if len(opt.From) == 0 {
		opt.From = contract.Address(w.Address())
	}
	return contract.EncodeOptions(opt)
}

// Sign returns options with the signature of data, which is the Data of RequireSignatureError.
// The 'from' of options must be the address of w.
func Sign(data []byte, options contract.Options, w Signer) (contract.Options, error) {
	opt := &eth.InvokeOptions{}
	if err := contract.DecodeOptions(options, opt); err != nil {
		return nil, err
	}
	if !strings.EqualFold(string(opt.From), w.Address()) {
		return nil, errors.IllegalArgumentError.Errorf("mismatch from:%s signer:%s", opt.From, w.Address())
	}
	sig, err := w.Sign(data)
	if err != nil {
		return nil, errors.Wrapf(err, "fail to Sign err:%s", err.Error())
	}
	opt.Signature = sig
	return contract.EncodeOptions(opt)
}

func (s *SignerService) prepare(network string, options contract.Options) (contract.Options, error) {
	w, err := s.signer(network)
	if err != nil {
		return nil, err
	}
	s.l.Debugf("prepare network:%s, address:%s", network, w.Address())
	return PrepareToSign(options, w)
}

func (s *SignerService) sign(network string, rse contract.RequireSignatureError) (contract.Options, error) {
	w, err := s.signer(network)
	if err != nil {
		return nil, err
	}
	opt, err := Sign(rse.Data(), rse.Options(), w)
	if err != nil {
		if errors.IllegalArgumentError.Equals(err) {
			s.l.Debugf("skip sign network:%s err:%s", network, err.Error())
			return nil, rse
		}
		return nil, err
	}
	s.l.Debugf("sign network:%s, data:%s", network, hex.EncodeToString(rse.Data()))
	return opt, nil
}

func (s *SignerService) Invoke(network, method string, params contract.Params, options contract.Options) (contract.TxID, error) {
	opt, err := s.prepare(network, options)
	if err != nil {
		return nil, err
	}
	txID, err := s.Service.Invoke(network, method, params, opt)
	if err != nil {
		if rse, ok := err.(contract.RequireSignatureError); ok {
			if opt, err = s.sign(network, rse); err != nil {
				return nil, err
			}
			return s.Service.Invoke(network, method, params, opt)
		}
		return nil, err
	}
	return txID, nil
}

func (s *SignerService) EstimateGas(network, method string, params contract.Params, options contract.Options) (contract.Integer, error) {
	opt, err := s.prepare(network, options)
	if err != nil {
		return "", err
	}
	return s.Service.EstimateGas(network, method, params, opt)
}

func (s *SignerService) Populate(network, method string, params contract.Params, options contract.Options) (*contract.PopulatedTransaction, error) {
	opt, err := s.prepare(network, options)
	if err != nil {
		return nil, err
	}
	return s.Service.Populate(network, method, params, opt)
}

func NewSignerService(s Service, signers map[string]Signer, l log.Logger) (*SignerService, error) {
	for network, w := range signers {
		if !isEthNetworkType(w.NetworkType()) {
			return nil, errors.Errorf("not support network type:%s network:%s", w.NetworkType(), network)
		}
	}
	return &SignerService{
		Service: s,
		sMap:    signers,
		l:       l,
	}, nil
}
