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

package contract

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/intconv"
)

// ParamOf converts a go value into one of Integer, Boolean, String, Bytes,
// Address, Params or a slice of them.
func ParamOf(value interface{}) (interface{}, error) {
	var err error
	switch v := value.(type) {
	case Params:
		return ParamsOf(v)
	case Address:
		return v, nil
	case Integer, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, big.Int, *big.Int,
		float64, json.Number:
		return IntegerOf(v)
	case Boolean, bool:
		return BooleanOf(v)
	case String, string:
		return StringOf(v)
	case Bytes, []byte:
		return BytesOf(v)
	case fmt.Stringer:
		return StringOf(v.String())
	default:
		rv := reflect.ValueOf(value)
		if !rv.IsValid() {
			return nil, errors.New("nil value")
		}
		switch rv.Kind() {
		case reflect.Array, reflect.Slice:
			ret := make([]interface{}, 0, rv.Len())
			for i := 0; i < rv.Len(); i++ {
				var p interface{}
				if p, err = ParamOf(rv.Index(i).Interface()); err != nil {
					return nil, err
				}
				ret = append(ret, p)
			}
			return ret, nil
		case reflect.Map:
			return ParamsOf(v)
		default:
			return nil, errors.Errorf("not supported type %T", v)
		}
	}
}

const (
	invalidInteger = ""
)

func IntegerOf(value interface{}) (Integer, error) {
	switch v := value.(type) {
	case Integer:
		if _, err := v.AsBigInt(); err != nil {
			return invalidInteger, err
		}
		return v, nil
	case string:
		bi, ok := parseBigInt(v)
		if !ok {
			return invalidInteger, errors.Errorf("invalid integer %q", v)
		}
		return FromBigInt(bi), nil
	case json.Number:
		return IntegerOf(string(v))
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return invalidInteger, errors.Errorf("invalid integer %v", v)
		}
		bi, _ := big.NewFloat(v).Int(nil)
		return FromBigInt(bi), nil
	case []byte:
		return FromBigInt(intconv.BigIntSetBytes(new(big.Int), v)), nil
	case big.Int:
		return FromBigInt(&v), nil
	case *big.Int:
		if v == nil {
			return invalidInteger, errors.New("nil big.Int")
		}
		return FromBigInt(v), nil
	default:
		rv := reflect.ValueOf(value)
		if rv.CanInt() {
			return FromInt64(rv.Int()), nil
		} else if rv.CanUint() {
			return FromUint64(rv.Uint()), nil
		} else {
			return invalidInteger, errors.Errorf("invalid type %T", value)
		}
	}
}

func BooleanOf(value interface{}) (Boolean, error) {
	switch v := value.(type) {
	case Boolean:
		return v, nil
	case bool:
		return Boolean(v), nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, errors.Errorf("invalid boolean %q", v)
		}
		return Boolean(b), nil
	default:
		return false, errors.Errorf("invalid type %T", v)
	}
}

func StringOf(value interface{}) (String, error) {
	switch v := value.(type) {
	case String:
		return v, nil
	case string:
		return String(v), nil
	default:
		return "", errors.Errorf("invalid type %T", v)
	}
}

func BytesOf(value interface{}) (Bytes, error) {
	switch v := value.(type) {
	case Bytes:
		return v, nil
	case []byte:
		return v, nil
	case string:
		b, err := hexutil.Decode(v)
		if err != nil {
			return nil, errors.Errorf("invalid hex bytes %q", v)
		}
		return b, nil
	default:
		rv := reflect.ValueOf(value)
		if rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8 {
			ret := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(ret), rv)
			return ret, nil
		}
		return nil, errors.Errorf("invalid type %T", v)
	}
}

func AddressOf(value interface{}) (Address, error) {
	switch v := value.(type) {
	case Address:
		return v, nil
	case string:
		return Address(v), nil
	case String:
		return Address(v), nil
	case fmt.Stringer:
		return Address(v.String()), nil
	default:
		return "", errors.Errorf("invalid type %T", v)
	}
}

// ParamsOf converts every value of a string keyed map with ParamOf.
// Params is converted in place.
func ParamsOf(value interface{}) (Params, error) {
	if v, ok := value.(Params); ok {
		for k, p := range v {
			c, err := ParamOf(p)
			if err != nil {
				return nil, err
			}
			v[k] = c
		}
		return v, nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map {
		return nil, errors.Errorf("invalid type:%T", value)
	}
	if rv.Type().Key().Kind() != reflect.String {
		return nil, errors.Errorf("not supported key type %v", rv.Type().Key())
	}
	ret := make(Params, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		p, err := ParamOf(iter.Value().Interface())
		if err != nil {
			return nil, err
		}
		ret[iter.Key().String()] = p
	}
	return ret, nil
}

// ParamsOfWithSpec converts each param into the type of the input named by it.
func ParamsOfWithSpec(inputs map[string]*NameAndTypeSpec, params Params) (Params, error) {
	ret := make(Params)
	for k, v := range params {
		s, ok := inputs[k]
		if !ok {
			return nil, ErrorCodeInvalidParam.Errorf("not found param name:%s", k)
		}
		p, err := paramOfWithSpec(s.Type.TypeID, s.Type.Dimension, v)
		if err != nil {
			return nil, ErrorCodeInvalidParam.Wrapf(err, "invalid param name:%s err:%s", k, err.Error())
		}
		ret[k] = p
	}
	return ret, nil
}

func paramOfWithSpec(t TypeTag, dimension int, value interface{}) (interface{}, error) {
	if dimension > 0 {
		rv := reflect.ValueOf(value)
		if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
			return nil, errors.Errorf("invalid type %T expected list", value)
		}
		l := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			v, err := paramOfWithSpec(t, dimension-1, rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			l[i] = v
		}
		return l, nil
	}
	switch t {
	case TInteger:
		return IntegerOf(value)
	case TBoolean:
		return BooleanOf(value)
	case TString:
		return StringOf(value)
	case TBytes:
		return BytesOf(value)
	case TAddress:
		return AddressOf(value)
	default:
		return nil, errors.Errorf("not supported type:%s", t.String())
	}
}
