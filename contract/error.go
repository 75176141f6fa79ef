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

import "github.com/icon-project/btp2/common/errors"

const (
	ErrorCodeNotFoundMethod errors.Code = errors.CodeGeneral + iota
	ErrorCodeMismatchReadonly
	ErrorCodeNotFoundEvent
	ErrorCodeInvalidParam
	ErrorCodeInvalidOption
	ErrorCodeRequireSignature
	ErrorCodeNotFoundTransaction
	ErrorCodeNotPayable
)

var (
	errRequireSignature = errors.NewBase(ErrorCodeRequireSignature, "RequireSignatureError")
)

// RequireSignatureError carries the hash to sign and the resolved options,
// so the caller can retry Invoke with the signature attached.
type RequireSignatureError interface {
	errors.ErrorCoder
	Data() []byte
	Options() Options
}
type requireSignatureError struct {
	errors.ErrorCoder
	data    []byte
	options Options
}

func (e *requireSignatureError) Data() []byte {
	return e.data
}

func (e *requireSignatureError) Options() Options {
	return e.options
}

func NewRequireSignatureError(data []byte, options Options) RequireSignatureError {
	return &requireSignatureError{
		ErrorCoder: errRequireSignature,
		data:       data,
		options:    options,
	}
}

type EstimateError interface {
	error
	ErrorCode() int
	ErrorData() interface{}
	Reason() string
}

// IsNotFound reports whether err refers to a missing network, method, event or transaction.
func IsNotFound(err error) bool {
	switch errors.CodeOf(err) {
	case errors.NotFoundError, ErrorCodeNotFoundMethod, ErrorCodeNotFoundEvent, ErrorCodeNotFoundTransaction:
		return true
	}
	return false
}

// IsInvalidRequest reports whether err is caused by the request itself.
// Retrying the same request fails the same way.
func IsInvalidRequest(err error) bool {
	switch errors.CodeOf(err) {
	case errors.IllegalArgumentError,
		ErrorCodeMismatchReadonly,
		ErrorCodeInvalidParam,
		ErrorCodeInvalidOption,
		ErrorCodeNotPayable,
		ErrorCodeRequireSignature:
		return true
	}
	return false
}
