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

package eth

import (
	"bytes"
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"

	"github.com/icon-project/weth-sdk/contract"
)

type handlerSpec struct {
	in  contract.Spec
	out abi.ABI
}

func (a *Adaptor) handlerSpec(spec []byte) (*handlerSpec, error) {
	k := crypto.Keccak256Hash(spec)
	if v, ok := a.cache.Get(k); ok {
		return v.(*handlerSpec), nil
	}
	out, err := abi.JSON(bytes.NewBuffer(spec))
	if err != nil {
		return nil, contract.ErrorCodeInvalidParam.Wrapf(err, "fail to abi.JSON err:%s", err.Error())
	}
	in, err := NewSpec(out)
	if err != nil {
		return nil, err
	}
	hs := &handlerSpec{in: in, out: out}
	a.cache.Add(k, hs)
	return hs, nil
}

func NewHandler(spec []byte, address common.Address, a *Adaptor, l log.Logger) (*Handler, error) {
	hs, err := a.handlerSpec(spec)
	if err != nil {
		return nil, err
	}
	return &Handler{
		in:      hs.in,
		out:     hs.out,
		address: address,
		a:       a,
		l:       l,
		signer:  types.LatestSignerForChainID(a.chainID),
	}, nil
}

type Handler struct {
	in      contract.Spec
	out     abi.ABI
	address common.Address
	a       *Adaptor
	l       log.Logger

	signer types.Signer
}

// method resolves overloaded methods by the number of params.
// readonly is checked only if checkReadonly is set.
func (h *Handler) method(name string, params contract.Params, checkReadonly, readonly bool) (*abi.Method, error) {
	methods := make([]abi.Method, 0)
	for _, m := range h.out.Methods {
		if m.RawName == name {
			methods = append(methods, m)
		}
	}
	var ret *abi.Method
	switch len(methods) {
	case 0:
		return nil, contract.ErrorCodeNotFoundMethod.Errorf("not found method:%s", name)
	case 1:
		ret = &methods[0]
	default:
		for i, m := range methods {
			if len(m.Inputs) == len(params) {
				ret = &methods[i]
				break
			}
		}
		if ret == nil {
			return nil, contract.ErrorCodeNotFoundMethod.Errorf("not found method:%s with %d params", name, len(params))
		}
	}
	if checkReadonly && ret.IsConstant() != readonly {
		return nil, contract.ErrorCodeMismatchReadonly.Errorf("mismatch readonly, method:%s expected:%v", name, readonly)
	}
	return ret, nil
}

func (h *Handler) callData(m *abi.Method, params contract.Params) (b []byte, err error) {
	r := make([]interface{}, len(m.Inputs))
	for i, v := range m.Inputs {
		param, ok := params[v.Name]
		if !ok || param == nil {
			return nil, contract.ErrorCodeInvalidParam.Errorf("required param:%s", v.Name)
		}
		if r[i], err = encode(v.Type, param); err != nil {
			return nil, contract.ErrorCodeInvalidParam.Wrapf(err, "invalid param:%s err:%s", v.Name, err.Error())
		}
		h.l.Tracef("callData index:%d name:%s param:%v encoded:%v type:%T\n",
			i, v.Name, param, r[i], r[i])
	}
	if b, err = h.out.Pack(m.Name, r...); err != nil {
		return nil, errors.Wrapf(err, "fail to Pack err:%s", err.Error())
	}
	return b, nil
}

func (h *Handler) returnValue(m *abi.Method, bs []byte) (contract.ReturnValue, error) {
	if len(m.Outputs) == 0 {
		return nil, nil
	}
	ret, err := m.Outputs.Unpack(bs)
	if err != nil {
		return nil, errors.Wrapf(err, "fail to Unpack err:%s", err.Error())
	}
	return decode(m.Outputs[0].Type, ret[0])
}

func checkPayable(m *abi.Method, value *big.Int) error {
	if value != nil && value.Sign() > 0 && !m.IsPayable() {
		return contract.ErrorCodeNotPayable.Errorf("not payable method:%s value:%s", m.RawName, value)
	}
	return nil
}

type InvokeOptions struct {
	From      contract.Address `json:"from,omitempty"`
	Value     contract.Integer `json:"value,omitempty"`
	GasPrice  contract.Integer `json:"gasPrice,omitempty"`
	GasLimit  contract.Integer `json:"gasLimit,omitempty"`
	GasFeeCap contract.Integer `json:"gasFeeCap,omitempty"`
	GasTipCap contract.Integer `json:"gasTipCap,omitempty"`
	Nonce     contract.Integer `json:"nonce,omitempty"`
	Signature contract.Bytes   `json:"signature,omitempty"`
	Estimate  contract.Boolean `json:"estimate,omitempty"`
}

type baseTx struct {
	ChainID   *big.Int
	To        *common.Address
	From      *common.Address
	Data      []byte
	Value     *big.Int
	GasLimit  uint64
	Nonce     uint64
	GasPrice  *big.Int
	GasTipCap *big.Int
	GasFeeCap *big.Int
}

func (p *baseTx) TxData() types.TxData {
	if p.GasPrice != nil {
		return &types.LegacyTx{
			Nonce:    p.Nonce,
			Gas:      p.GasLimit,
			Value:    p.Value,
			GasPrice: p.GasPrice,
			To:       p.To,
			Data:     p.Data,
		}
	} else {
		return &types.DynamicFeeTx{
			Nonce:     p.Nonce,
			Gas:       p.GasLimit,
			Value:     p.Value,
			ChainID:   p.ChainID,
			GasFeeCap: p.GasFeeCap,
			GasTipCap: p.GasTipCap,
			To:        p.To,
			Data:      p.Data,
		}
	}
}

func (p *baseTx) CallMsg() ethereum.CallMsg {
	msg := ethereum.CallMsg{
		To:    p.To,
		Data:  p.Data,
		Value: p.Value,
	}
	if p.From != nil {
		msg.From = *p.From
	}
	return msg
}

// newBaseTx converts options without any network call.
func (h *Handler) newBaseTx(m *abi.Method, opt *InvokeOptions, data []byte) (p *baseTx, err error) {
	p = &baseTx{
		ChainID:  h.a.chainID,
		To:       &h.address,
		Data:     data,
		GasLimit: DefaultGasLimit,
	}
	if len(opt.From) > 0 {
		if !common.IsHexAddress(string(opt.From)) {
			return nil, contract.ErrorCodeInvalidOption.Errorf("invalid 'from' %s", opt.From)
		}
		from := common.HexToAddress(string(opt.From))
		p.From = &from
	}
	if len(opt.Value) > 0 {
		if p.Value, err = opt.Value.AsBigInt(); err != nil {
			return nil, contract.ErrorCodeInvalidOption.Wrapf(err, "invalid 'value' err:%s", err.Error())
		}
		if p.Value.Sign() < 0 {
			return nil, contract.ErrorCodeInvalidOption.Errorf("negative 'value' %s", opt.Value)
		}
	}
	if err = checkPayable(m, p.Value); err != nil {
		return nil, err
	}
	if len(opt.GasLimit) > 0 {
		if p.GasLimit, err = opt.GasLimit.AsUint64(); err != nil {
			return nil, contract.ErrorCodeInvalidOption.Wrapf(err, "invalid 'gasLimit' err:%s", err.Error())
		}
	}
	if len(opt.Nonce) > 0 {
		if p.Nonce, err = opt.Nonce.AsUint64(); err != nil {
			return nil, contract.ErrorCodeInvalidOption.Wrapf(err, "invalid 'nonce' err:%s", err.Error())
		}
	}
	if len(opt.GasPrice) > 0 {
		if p.GasPrice, err = opt.GasPrice.AsBigInt(); err != nil {
			return nil, contract.ErrorCodeInvalidOption.Wrapf(err, "invalid 'gasPrice' err:%s", err.Error())
		}
	}
	if len(opt.GasFeeCap) > 0 {
		if p.GasFeeCap, err = opt.GasFeeCap.AsBigInt(); err != nil {
			return nil, contract.ErrorCodeInvalidOption.Wrapf(err, "invalid 'gasFeeCap' err:%s", err.Error())
		}
	}
	if len(opt.GasTipCap) > 0 {
		if p.GasTipCap, err = opt.GasTipCap.AsBigInt(); err != nil {
			return nil, contract.ErrorCodeInvalidOption.Wrapf(err, "invalid 'gasTipCap' err:%s", err.Error())
		}
	}
	if p.GasPrice != nil && (p.GasFeeCap != nil || p.GasTipCap != nil) {
		return nil, contract.ErrorCodeInvalidOption.Errorf("both gasPrice and (gasFeeCap or gasTipCap) specified")
	}
	return p, nil
}

func (h *Handler) estimate(opt *InvokeOptions, p *baseTx) error {
	gasLimit, err := h.a.EstimateGas(context.Background(), p.CallMsg())
	if err != nil {
		return err
	}
	if len(opt.GasLimit) == 0 {
		p.GasLimit = gasLimit
		opt.GasLimit = contract.FromUint64(gasLimit)
	}
	return nil
}

func (h *Handler) prepareSign(opt *InvokeOptions, p *baseTx) (optUpdated bool, err error) {
	if len(opt.GasLimit) == 0 {
		opt.GasLimit = contract.FromUint64(p.GasLimit)
		optUpdated = true
	}
	if len(opt.Nonce) == 0 {
		if p.From == nil {
			return false, contract.ErrorCodeInvalidOption.Errorf("required 'from'")
		}
		if p.Nonce, err = h.a.PendingNonceAt(context.Background(), *p.From); err != nil {
			return false, errors.Wrapf(err, "fail to PendingNonceAt err:%s", err.Error())
		}
		opt.Nonce = contract.FromUint64(p.Nonce)
		optUpdated = true
	}

	if p.GasPrice == nil {
		if p.GasFeeCap == nil || p.GasTipCap == nil {
			var head *types.Header
			if head, err = h.a.HeaderByNumber(context.Background(), nil); err != nil {
				return false, errors.Wrapf(err, "fail to HeaderByNumber err:%s", err.Error())
			}
			if head.BaseFee != nil {
				if p.GasTipCap == nil {
					if p.GasTipCap, err = h.a.SuggestGasTipCap(context.Background()); err != nil {
						return false, errors.Wrapf(err, "fail to SuggestGasTipCap err:%s", err.Error())
					}
					opt.GasTipCap = contract.FromBigInt(p.GasTipCap)
					optUpdated = true
				}
				if p.GasFeeCap == nil {
					p.GasFeeCap = new(big.Int).Add(
						p.GasTipCap,
						new(big.Int).Mul(head.BaseFee, big.NewInt(2)),
					)
					opt.GasFeeCap = contract.FromBigInt(p.GasFeeCap)
					optUpdated = true
				}
				if p.GasFeeCap.Cmp(p.GasTipCap) < 0 {
					return false, contract.ErrorCodeInvalidOption.Errorf(
						"gasFeeCap (%v) < gasTipCap (%v)", p.GasFeeCap, p.GasTipCap)
				}
			} else {
				if p.GasPrice, err = h.a.SuggestGasPrice(context.Background()); err != nil {
					return false, errors.Wrapf(err, "fail to SuggestGasPrice err:%s", err.Error())
				}
				opt.GasPrice = contract.FromBigInt(p.GasPrice)
				optUpdated = true
			}
		}
	}
	return optUpdated, nil
}

// Invoke returns contract.RequireSignatureError with the hash to sign, if
// 'signature' is not in options. The options of the error are the ones to
// retry with the signature.
func (h *Handler) Invoke(method string, params contract.Params, options contract.Options) (contract.TxID, error) {
	out, err := h.method(method, params, true, false)
	if err != nil {
		return nil, err
	}
	data, err := h.callData(out, params)
	if err != nil {
		return nil, err
	}
	opt := &InvokeOptions{}
	if err = contract.DecodeOptions(options, opt); err != nil {
		return nil, err
	}
	p, err := h.newBaseTx(out, opt, data)
	if err != nil {
		return nil, err
	}
	if len(opt.Signature) == 0 {
		optUpdated := false
		if opt.Estimate {
			if err = h.estimate(opt, p); err != nil {
				return nil, err
			}
			optUpdated = true
		}
		var signUpdated bool
		if signUpdated, err = h.prepareSign(opt, p); err != nil {
			return nil, err
		}
		if optUpdated || signUpdated {
			opt.Estimate = false
			if options, err = contract.EncodeOptions(opt); err != nil {
				return nil, err
			}
		}
		return nil, contract.NewRequireSignatureError(h.signer.Hash(types.NewTx(p.TxData())).Bytes(), options)
	}

	tx, err := types.NewTx(p.TxData()).WithSignature(h.signer, opt.Signature)
	if err != nil {
		return nil, contract.ErrorCodeInvalidOption.Wrapf(err, "fail to WithSignature err:%s", err.Error())
	}
	if err = h.a.SendTransaction(context.Background(), tx); err != nil {
		return nil, errors.Wrapf(err, "fail to SendTransaction err:%s", err.Error())
	}
	return NewTxID(tx.Hash()), nil
}

type CallOption struct {
	From        contract.Address `json:"from,omitempty"`
	BlockNumber contract.Integer `json:"blockNumber,omitempty"`
}

func (o *CallOption) callMsg(to *common.Address, data []byte) (ethereum.CallMsg, *big.Int, error) {
	p := ethereum.CallMsg{
		To:   to,
		Data: data,
	}
	if len(o.From) > 0 {
		if !common.IsHexAddress(string(o.From)) {
			return p, nil, contract.ErrorCodeInvalidOption.Errorf("invalid 'from' %s", o.From)
		}
		p.From = common.HexToAddress(string(o.From))
	}
	var bn *big.Int
	if len(o.BlockNumber) > 0 {
		var err error
		if bn, err = o.BlockNumber.AsBigInt(); err != nil {
			return p, nil, contract.ErrorCodeInvalidOption.Wrapf(err, "invalid 'blockNumber' err:%s", err.Error())
		}
	}
	return p, bn, nil
}

func (h *Handler) Call(method string, params contract.Params, options contract.Options) (contract.ReturnValue, error) {
	out, err := h.method(method, params, true, true)
	if err != nil {
		return nil, err
	}
	data, err := h.callData(out, params)
	if err != nil {
		return nil, err
	}
	opt := &CallOption{}
	if err = contract.DecodeOptions(options, opt); err != nil {
		return nil, err
	}
	p, bn, err := opt.callMsg(&h.address, data)
	if err != nil {
		return nil, err
	}
	bs, err := h.a.CallContract(context.Background(), p, bn)
	if err != nil {
		if txf := NewTxFailure(err); txf != nil {
			return nil, txf
		}
		return nil, errors.Wrapf(err, "fail to CallContract err:%s", err.Error())
	}
	return h.returnValue(out, bs)
}

type SimulateOption struct {
	CallOption
	Value contract.Integer `json:"value,omitempty"`
}

func (h *Handler) Simulate(method string, params contract.Params, options contract.Options) (contract.ReturnValue, error) {
	out, err := h.method(method, params, false, false)
	if err != nil {
		return nil, err
	}
	data, err := h.callData(out, params)
	if err != nil {
		return nil, err
	}
	opt := &SimulateOption{}
	if err = contract.DecodeOptions(options, opt); err != nil {
		return nil, err
	}
	p, bn, err := opt.callMsg(&h.address, data)
	if err != nil {
		return nil, err
	}
	if len(opt.Value) > 0 {
		if p.Value, err = opt.Value.AsBigInt(); err != nil {
			return nil, contract.ErrorCodeInvalidOption.Wrapf(err, "invalid 'value' err:%s", err.Error())
		}
	}
	if err = checkPayable(out, p.Value); err != nil {
		return nil, err
	}
	bs, err := h.a.CallContract(context.Background(), p, bn)
	if err != nil {
		if txf := NewTxFailure(err); txf != nil {
			return nil, txf
		}
		return nil, errors.Wrapf(err, "fail to CallContract err:%s", err.Error())
	}
	return h.returnValue(out, bs)
}

// EstimateGas returns *TxFailure as error, if the execution reverts.
func (h *Handler) EstimateGas(method string, params contract.Params, options contract.Options) (contract.Integer, error) {
	out, err := h.method(method, params, false, false)
	if err != nil {
		return "", err
	}
	data, err := h.callData(out, params)
	if err != nil {
		return "", err
	}
	opt := &InvokeOptions{}
	if err = contract.DecodeOptions(options, opt); err != nil {
		return "", err
	}
	p, err := h.newBaseTx(out, opt, data)
	if err != nil {
		return "", err
	}
	gas, err := h.a.EstimateGas(context.Background(), p.CallMsg())
	if err != nil {
		return "", err
	}
	return contract.FromUint64(gas), nil
}

// Populate builds the unsigned transaction from params and options only.
func (h *Handler) Populate(method string, params contract.Params, options contract.Options) (*contract.PopulatedTransaction, error) {
	out, err := h.method(method, params, false, false)
	if err != nil {
		return nil, err
	}
	data, err := h.callData(out, params)
	if err != nil {
		return nil, err
	}
	opt := &InvokeOptions{}
	if err = contract.DecodeOptions(options, opt); err != nil {
		return nil, err
	}
	if _, err = h.newBaseTx(out, opt, data); err != nil {
		return nil, err
	}
	return &contract.PopulatedTransaction{
		To:        contract.Address(h.address.String()),
		From:      opt.From,
		Data:      data,
		Value:     opt.Value,
		Nonce:     opt.Nonce,
		GasLimit:  opt.GasLimit,
		GasPrice:  opt.GasPrice,
		GasFeeCap: opt.GasFeeCap,
		GasTipCap: opt.GasTipCap,
		ChainID:   contract.FromBigInt(h.a.chainID),
	}, nil
}

// EventFilter accepts only indexed params of the event.
func (h *Handler) EventFilter(name string, params contract.Params) (contract.EventFilter, error) {
	in, has := h.in.EventMap[name]
	if !has {
		return nil, contract.ErrorCodeNotFoundEvent.Errorf("not found event:%s", name)
	}
	out, has := h.out.Events[name]
	if !has {
		return nil, contract.ErrorCodeNotFoundEvent.Errorf("not found event:%s", name)
	}
	validParams, err := contract.ParamsOfWithSpec(in.InputMap, params)
	if err != nil {
		return nil, err
	}
	if err = contract.ParamsTypeCheck(in, validParams); err != nil {
		return nil, err
	}
	return newEventFilter(*in, out, h.address, validParams)
}

func (h *Handler) Spec() contract.Spec {
	return h.in
}

func (h *Handler) Address() contract.Address {
	return contract.Address(h.address.String())
}

func (h *Handler) MonitorEvent(
	ctx context.Context,
	cb contract.EventCallback,
	nameToParams map[string][]contract.Params,
	height int64) error {
	efs := make([]contract.EventFilter, 0)
	for name, l := range nameToParams {
		if len(l) == 0 {
			l = []contract.Params{nil}
		}
		for _, params := range l {
			ef, err := h.EventFilter(name, params)
			if err != nil {
				return err
			}
			efs = append(efs, ef)
		}
	}
	return h.a.MonitorEvent(ctx, cb, efs, height)
}
