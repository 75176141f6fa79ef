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
	"github.com/icon-project/btp2/common/log"
)

type AdaptorFactory func(networkType string, endpoint string, opt Options, l log.Logger) (Adaptor, error)

type SpecFactory func(b []byte) (*Spec, error)

var (
	adaptors = NewRegistry[AdaptorFactory]("networkType")
	specs    = NewRegistry[SpecFactory]("networkType")
)

func RegisterAdaptorFactory(af AdaptorFactory, networkTypes ...string) {
	adaptors.Register(af, networkTypes...)
}

func RegisterSpecFactory(sf SpecFactory, networkTypes ...string) {
	specs.Register(sf, networkTypes...)
}

func NewAdaptor(networkType string, endpoint string, opt Options, l log.Logger) (Adaptor, error) {
	af, err := adaptors.Get(networkType)
	if err != nil {
		return nil, err
	}
	return af(networkType, endpoint, opt, l.WithFields(log.Fields{
		log.FieldKeyChain:  networkType,
		log.FieldKeyModule: "contract",
	}))
}

func NewSpec(networkType string, b []byte) (*Spec, error) {
	sf, err := specs.Get(networkType)
	if err != nil {
		return nil, err
	}
	return sf(b)
}

// NetworkTypes returns the network types which have an adaptor.
func NetworkTypes() []string {
	return adaptors.Keys()
}
