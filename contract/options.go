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

	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"
)

// Options is the loosely typed form of per-component options in the config file.
type Options map[string]interface{}

func EncodeOptions(v interface{}) (Options, error) {
	options := make(Options)
	if err := convertJSON(v, &options); err != nil {
		return nil, errors.Wrapf(err, "fail to EncodeOptions err:%s", err.Error())
	}
	return options, nil
}

// DecodeOptions fills v from options. A nil options leaves v untouched.
func DecodeOptions(options Options, v interface{}) error {
	if options == nil {
		return nil
	}
	if err := convertJSON(options, v); err != nil {
		return ErrorCodeInvalidOption.Wrapf(err, "fail to DecodeOptions err:%s", err.Error())
	}
	return nil
}

func convertJSON(from, to interface{}) error {
	b, err := json.Marshal(from)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, to)
}

type LogLevel log.Level

func (l LogLevel) Level() log.Level {
	return log.Level(l)
}

func (l LogLevel) MarshalJSON() ([]byte, error) {
	ll := log.Level(l)
	if ll > log.TraceLevel || ll < log.PanicLevel {
		return nil, errors.New("out of range log.Level")
	}
	return json.Marshal(ll.String())
}

func (l *LogLevel) UnmarshalJSON(input []byte) error {
	var str string
	err := json.Unmarshal(input, &str)
	if err != nil {
		return err
	}
	v, err := log.ParseLevel(str)
	if err != nil {
		return err
	}
	*l = LogLevel(v)
	return nil
}

