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
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"

	"github.com/icon-project/weth-sdk/contract"
)

var (
	codecLogger = log.New()
)

func init() {
	codecLogger.SetLevel(log.DebugLevel)
}

// encode converts a param into the go value which abi.Arguments.Pack expects for s.
func encode(s abi.Type, value interface{}) (interface{}, error) {
	if v, ok := value.(reflect.Value); ok {
		value = v.Interface()
	}
	switch s.T {
	case abi.ArrayTy, abi.SliceTy:
		return encodeArray(s, value)
	case abi.TupleTy:
		return nil, errors.Errorf("fail encode, not supported %v", s)
	default:
		return encodePrimitive(s, value)
	}
}

func encodePrimitive(s abi.Type, value interface{}) (interface{}, error) {
	switch s.T {
	case abi.IntTy, abi.UintTy:
		v, err := contract.IntegerOf(value)
		if err != nil {
			return nil, errors.Wrapf(err, "fail encodePrimitive integer, err:%s", err.Error())
		}
		bi, err := v.AsBigInt()
		if err != nil {
			return nil, errors.Wrapf(err, "fail encodePrimitive integer, err:%s", err.Error())
		}
		bl := s.Size
		if s.T == abi.UintTy && bi.Sign() < 0 {
			return nil, errors.Errorf("fail encodePrimitive integer, invalid sign")
		}
		if s.T == abi.IntTy {
			// two's complement range
			bl = bl - 1
			if bi.Sign() < 0 {
				bi = new(big.Int).Add(bi, common.Big1)
			}
		}
		if bl < bi.BitLen() {
			return nil, errors.Errorf("fail encodePrimitive integer, out of range size:%d value:%s",
				s.Size, v)
		}
		if bi, err = v.AsBigInt(); err != nil {
			return nil, err
		}
		switch s.Size {
		case 8, 16, 32, 64:
			if s.T == abi.IntTy {
				i := bi.Int64()
				switch s.Size {
				case 8:
					return int8(i), nil
				case 16:
					return int16(i), nil
				case 32:
					return int32(i), nil
				}
				return i, nil
			} else {
				i := bi.Uint64()
				switch s.Size {
				case 8:
					return uint8(i), nil
				case 16:
					return uint16(i), nil
				case 32:
					return uint32(i), nil
				}
				return i, nil
			}
		default:
			return bi, nil
		}
	case abi.StringTy:
		v, err := contract.StringOf(value)
		if err != nil {
			return nil, errors.Wrapf(err, "fail encodePrimitive string, err:%s", err.Error())
		}
		return string(v), nil
	case abi.AddressTy:
		if v, ok := value.(common.Address); ok {
			return v, nil
		}
		v, err := contract.AddressOf(value)
		if err != nil {
			return nil, errors.Wrapf(err, "fail encodePrimitive address, err:%s", err.Error())
		}
		if !common.IsHexAddress(string(v)) {
			return nil, errors.Errorf("fail encodePrimitive address, required hex")
		}
		return common.HexToAddress(string(v)), nil
	case abi.BytesTy:
		v, err := contract.BytesOf(value)
		if err != nil {
			return nil, errors.Wrapf(err, "fail encodePrimitive bytes, err:%s", err.Error())
		}
		return []byte(v), nil
	case abi.FixedBytesTy:
		v, err := contract.BytesOf(value)
		if err != nil {
			return nil, errors.Wrapf(err, "fail encodePrimitive fixed bytes, err:%s", err.Error())
		}
		if len(v) != s.Size {
			return nil, errors.Errorf("fail encodePrimitive fixed bytes, invalid length expected:%d actual:%d",
				s.Size, len(v))
		}
		ret := reflect.New(s.GetType()).Elem()
		reflect.Copy(ret, reflect.ValueOf([]byte(v)))
		return ret.Interface(), nil
	case abi.BoolTy:
		v, err := contract.BooleanOf(value)
		if err != nil {
			return nil, errors.Wrapf(err, "fail encodePrimitive boolean, err:%s", err.Error())
		}
		return bool(v), nil
	default:
		return nil, errors.Errorf("fail encodePrimitive, not supported %v", s)
	}
}

func encodeArray(s abi.Type, value interface{}) (interface{}, error) {
	v := reflect.ValueOf(value)
	if !v.IsValid() || (v.Kind() != reflect.Array && v.Kind() != reflect.Slice) {
		return nil, errors.Errorf("fail encodeArray, invalid type %T", value)
	}
	var ret reflect.Value
	if s.T == abi.ArrayTy {
		if v.Len() != s.Size {
			return nil, errors.Errorf("fail encodeArray, invalid length expected:%d actual:%d",
				s.Size, v.Len())
		}
		ret = reflect.New(s.GetType()).Elem()
	} else {
		ret = reflect.MakeSlice(s.GetType(), v.Len(), v.Len())
	}
	for i := 0; i < v.Len(); i++ {
		re, err := encode(*s.Elem, v.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		ret.Index(i).Set(reflect.ValueOf(re))
	}
	return ret.Interface(), nil
}

// decode converts a go value unpacked by abi.Arguments into a param.
func decode(s abi.Type, value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}
	codecLogger.Traceln("decode type:", s.String(), "reflect:", s.GetType(), reflect.TypeOf(value))
	switch s.T {
	case abi.ArrayTy, abi.SliceTy:
		return decodeArray(s, reflect.ValueOf(value))
	case abi.TupleTy:
		return nil, errors.Errorf("fail decode, not supported %v", s)
	default:
		return decodePrimitive(s, value)
	}
}

func decodePrimitive(s abi.Type, value interface{}) (interface{}, error) {
	v, ok := value.(reflect.Value)
	if !ok {
		v = reflect.ValueOf(value)
	}
	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	if s.GetType() != v.Type() {
		return nil, errors.Errorf("fail decodePrimitive, invalid type expected:%v actual:%v",
			s.GetType(), v.Type())
	}
	switch s.T {
	case abi.IntTy, abi.UintTy:
		switch s.Size {
		case 8, 16, 32, 64:
			if s.T == abi.IntTy {
				return contract.FromInt64(v.Int()), nil
			} else {
				return contract.FromUint64(v.Uint()), nil
			}
		default:
			return contract.FromBigInt(v.Interface().(*big.Int)), nil
		}
	case abi.StringTy:
		return contract.String(v.String()), nil
	case abi.AddressTy:
		return contract.Address(v.Interface().(common.Address).String()), nil
	case abi.BytesTy:
		return contract.Bytes(v.Bytes()), nil
	case abi.FixedBytesTy:
		return contract.BytesOf(v.Interface())
	case abi.BoolTy:
		return contract.Boolean(v.Bool()), nil
	default:
		return nil, errors.Errorf("fail decodePrimitive, not supported %v", s)
	}
}

func decodeArray(s abi.Type, v reflect.Value) (interface{}, error) {
	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	if v.Kind() != reflect.Array && v.Kind() != reflect.Slice {
		return nil, errors.Errorf("fail decodeArray, invalid type %v", v.Kind())
	}
	ret := make([]interface{}, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		re, err := decode(*s.Elem, v.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		ret = append(ret, re)
	}
	return ret, nil
}
