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


package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/icon-project/btp2/common/cli"
	"github.com/icon-project/btp2/common/config"
	"github.com/icon-project/btp2/common/log"
	"github.com/icon-project/btp2/common/wallet"
	"github.com/spf13/viper"

	"github.com/icon-project/weth-sdk/contract"
	"github.com/icon-project/weth-sdk/contract/eth"
	"github.com/icon-project/weth-sdk/database"
	"github.com/icon-project/weth-sdk/service"
	wethservice "github.com/icon-project/weth-sdk/service/weth"
	wethtracker "github.com/icon-project/weth-sdk/tracker/weth"
	"github.com/icon-project/weth-sdk/weth"
)

const (
	exampleContractAddress = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
)

type Config struct {
	config.FileConfig `json:",squash"`

	Server   ServerConfig             `json:"server"`
	Database *database.Config         `json:"database,omitempty"`
	Networks map[string]NetworkConfig `json:"networks"`

	LogLevel     string            `json:"log_level"`
	ConsoleLevel string            `json:"console_level"`
	LogWriter    *log.WriterConfig `json:"log_writer,omitempty"`
}

type ServerConfig struct {
	Address      string `json:"address"`
	DumpLogLevel string `json:"dump_log_level,omitempty"`
}

type NetworkConfig struct {
	NetworkType string                      `json:"type"`
	Endpoint    string                      `json:"endpoint"`
	Options     contract.Options            `json:"options,omitempty"`
	Services    map[string]contract.Options `json:"services,omitempty"`
	// Trackers keyed by the name of the service to track, requires Database
	Trackers map[string]contract.Options `json:"trackers,omitempty"`
	Signer   *SignerConfig               `json:"signer,omitempty"`
}

type SignerConfig struct {
	Keystore string `json:"keystore"`
	Secret   string `json:"secret"`
}

// ReadConfig merges the json file into vc, then decodes vc into cfg.
func ReadConfig(filePath string, cfg *Config, vc *viper.Viper) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("fail to open config file=%s err=%+v", filePath, err)
	}
	defer f.Close()
	vc.SetConfigType("json")
	if err = vc.ReadConfig(f); err != nil {
		return fmt.Errorf("fail to read config file=%s err=%+v", filePath, err)
	}
	if err = vc.Unmarshal(cfg, cli.ViperDecodeOptJson); err != nil {
		return fmt.Errorf("fail to unmarshall config from env err=%+v", err)
	}
	cfg.FilePath, _ = filepath.Abs(filePath)
	return nil
}

// databaseConfig resolves the sqlite file relative to the config file.
func (c *Config) databaseConfig() (database.Config, error) {
	if c.Database == nil {
		return database.Config{}, fmt.Errorf("require database for trackers")
	}
	dbCfg := *c.Database
	if dbCfg.Driver == database.DriverSQLite && dbCfg.DBName != database.SQLiteMemory {
		dbCfg.DBName = c.ResolveAbsolute(dbCfg.DBName)
	}
	return dbCfg, nil
}

// fillExample sets the example networks and a sqlite database if not configured.
func (c *Config) fillExample() {
	if len(c.Networks) == 0 {
		c.Networks = exampleNetworks()
	}
	if c.Database == nil {
		c.Database = &database.Config{
			Driver: database.DriverSQLite,
			DBName: "weth-sdk.db",
		}
	}
}

func MustEncodeOptions(v interface{}) contract.Options {
	opt, err := contract.EncodeOptions(v)
	if err != nil {
		log.Panicf("%+v", err)
	}
	return opt
}

func NewWallet(keystore, secret string) (wallet.Wallet, error) {
	ks, err := os.ReadFile(keystore)
	if err != nil {
		return nil, fmt.Errorf("fail to read keystore file=%s err=%+v", keystore, err)
	}
	pw, err := os.ReadFile(secret)
	if err != nil {
		return nil, fmt.Errorf("fail to read secret file=%s err=%+v", secret, err)
	}
	return wallet.DecryptKeyStore(ks, pw)
}

func (c *SignerConfig) NewSigner(networkType string) (service.Signer, error) {
	w, err := NewWallet(c.Keystore, c.Secret)
	if err != nil {
		return nil, err
	}
	return service.NewDefaultSigner(w, networkType), nil
}

func exampleNetworks() map[string]NetworkConfig {
	return map[string]NetworkConfig{
		eth.NetworkTypeEth + "Network": {
			NetworkType: eth.NetworkTypeEth,
			Endpoint:    "http://localhost:8545",
			Options: MustEncodeOptions(eth.AdaptorOption{
				FinalityMonitor: MustEncodeOptions(eth.FinalitySupplierOptions{
					Confirmations: 12,
				}),
				TransportLogLevel: contract.LogLevel(log.TraceLevel),
			}),
			Services: map[string]contract.Options{
				wethservice.ServiceName: MustEncodeOptions(service.DefaultServiceOptions{
					ContractAddress: exampleContractAddress,
				}),
			},
			Trackers: map[string]contract.Options{
				wethservice.ServiceName: MustEncodeOptions(wethtracker.TrackerOptions{
					BlockRange: wethtracker.DefaultBlockRange,
					Events:     weth.EventNames,
				}),
			},
			Signer: &SignerConfig{
				Keystore: "/path/to/keystore",
				Secret:   "/path/to/secret",
			},
		},
		eth.NetworkTypeEth2 + "Network": {
			NetworkType: eth.NetworkTypeEth2,
			Endpoint:    "http://localhost:8546",
			Options: MustEncodeOptions(eth.AdaptorOption{
				FinalityMonitor: MustEncodeOptions(eth.FinalitySupplierOptions{
					Finalized: true,
				}),
				TransportLogLevel: contract.LogLevel(log.TraceLevel),
			}),
			Services: map[string]contract.Options{
				wethservice.ServiceName: MustEncodeOptions(service.DefaultServiceOptions{
					ContractAddress: exampleContractAddress,
				}),
			},
		},
	}
}

