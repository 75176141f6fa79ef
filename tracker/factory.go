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

package tracker

import (
	"github.com/icon-project/btp2/common/log"
	"gorm.io/gorm"

	"github.com/icon-project/weth-sdk/contract"
	"github.com/icon-project/weth-sdk/database"
	"github.com/icon-project/weth-sdk/service"
)

// Tracker stores the events of a service into the database.
type Tracker interface {
	Name() string
	Start() error
	Stop() error
	Find(FindParam) (*database.Page[any], error)
	Summary() ([]any, error)
	Networks() []NetworkOfTracker
}

type FindParam struct {
	Network  string            `json:"network" query:"network"`
	Name     string            `json:"name,omitempty" query:"name"`
	Address  string            `json:"address,omitempty" query:"address"`
	Pageable database.Pageable `json:"pageable"`
}

type Network struct {
	NetworkType string
	Adaptor     contract.Adaptor
	Options     contract.Options
}

type NetworkOfTracker struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Type    string `json:"type"`
	Height  int64  `json:"height"`
}

type Factory func(service.Service, map[string]Network, *gorm.DB, log.Logger) (Tracker, error)

var (
	factories = contract.NewRegistry[Factory]("tracker")
)

func RegisterFactory(trackerName string, f Factory) {
	factories.Register(f, trackerName)
}

// TrackerNames returns the registered names in order.
func TrackerNames() []string {
	return factories.Keys()
}

func NewTracker(name string, s service.Service, networks map[string]Network, db *gorm.DB, l log.Logger) (Tracker, error) {
	f, err := factories.Get(name)
	if err != nil {
		return nil, err
	}
	return f(s, networks, db, l.WithFields(log.Fields{log.FieldKeyChain: name, log.FieldKeyModule: "tracker"}))
}
