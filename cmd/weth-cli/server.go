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
	"path/filepath"

	"github.com/icon-project/btp2/common/cli"
	"github.com/icon-project/btp2/common/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/icon-project/weth-sdk/api"
	"github.com/icon-project/weth-sdk/contract"
	"github.com/icon-project/weth-sdk/database"
	"github.com/icon-project/weth-sdk/service"
	"github.com/icon-project/weth-sdk/tracker"
)

func setupLogger(cfg *Config, modLevels map[string]string) (log.Logger, error) {
	l := log.GlobalLogger()
	if cfg.LogWriter != nil {
		lwCfg := *cfg.LogWriter
		lwCfg.Filename = cfg.ResolveAbsolute(lwCfg.Filename)
		writer, err := log.NewWriter(&lwCfg)
		if err != nil {
			return nil, fmt.Errorf("fail to make writer err=%+v", err)
		}
		if err = l.SetFileWriter(writer); err != nil {
			return nil, fmt.Errorf("fail to set file logger err=%+v", err)
		}
	}
	lv, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log_level=%s", cfg.LogLevel)
	}
	l.SetLevel(lv)
	if lv, err = log.ParseLevel(cfg.ConsoleLevel); err != nil {
		return nil, fmt.Errorf("invalid console_level=%s", cfg.ConsoleLevel)
	}
	l.SetConsoleLevel(lv)
	for mod, lvStr := range modLevels {
		if lv, err = log.ParseLevel(lvStr); err != nil {
			return nil, fmt.Errorf("invalid mod_level mod=%s level=%s", mod, lvStr)
		}
		l.SetModuleLevel(mod, lv)
	}
	return l, nil
}

// components groups the networks of each service and tracker by name.
type components struct {
	services map[string]map[string]service.Network
	trackers map[string]map[string]tracker.Network
	signers  map[string]service.Signer
}

func (c *components) addNetwork(network string, n NetworkConfig, a contract.Adaptor) error {
	for name, opt := range n.Services {
		if c.services[name] == nil {
			c.services[name] = make(map[string]service.Network)
		}
		c.services[name][network] = service.Network{NetworkType: n.NetworkType, Adaptor: a, Options: opt}
	}
	for name, opt := range n.Trackers {
		if c.trackers[name] == nil {
			c.trackers[name] = make(map[string]tracker.Network)
		}
		c.trackers[name][network] = tracker.Network{NetworkType: n.NetworkType, Adaptor: a, Options: opt}
	}
	if n.Signer != nil {
		signer, err := n.Signer.NewSigner(n.NetworkType)
		if err != nil {
			return err
		}
		c.signers[network] = signer
	}
	return nil
}

// newServer builds the server from cfg. The returned trackers are started,
// the caller stops them.
func newServer(cfg *Config, l log.Logger) (*api.Server, []tracker.Tracker, error) {
	dumpLevel, err := log.ParseLevel(cfg.Server.DumpLogLevel)
	if err != nil {
		return nil, nil, err
	}
	s := api.NewServer(cfg.Server.Address, contract.EnsureTransportLogLevel(dumpLevel), l)
	c := &components{
		services: make(map[string]map[string]service.Network),
		trackers: make(map[string]map[string]tracker.Network),
		signers:  make(map[string]service.Signer),
	}
	for network, n := range cfg.Networks {
		a, err := contract.NewAdaptor(n.NetworkType, n.Endpoint, n.Options, l)
		if err != nil {
			return nil, nil, err
		}
		s.AddAdaptor(network, a)
		if err = c.addNetwork(network, n, a); err != nil {
			return nil, nil, err
		}
	}

	services := make(map[string]service.Service)
	for name, networks := range c.services {
		svc, err := service.NewService(name, networks, l)
		if err != nil {
			return nil, nil, err
		}
		if len(c.signers) > 0 {
			if svc, err = service.NewSignerService(svc, c.signers, l); err != nil {
				return nil, nil, err
			}
		}
		s.AddService(svc)
		services[name] = svc
	}
	if len(c.trackers) == 0 {
		return s, nil, nil
	}

	dbCfg, err := cfg.databaseConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.OpenDatabase(dbCfg, l)
	if err != nil {
		return nil, nil, err
	}
	var started []tracker.Tracker
	stopAll := func() {
		for _, t := range started {
			if err := t.Stop(); err != nil {
				l.Warnf("fail to Stop tracker:%s err:%+v", t.Name(), err)
			}
		}
	}
	for name, networks := range c.trackers {
		svc, ok := services[name]
		if !ok {
			stopAll()
			return nil, nil, fmt.Errorf("not found service for tracker:%s", name)
		}
		t, err := tracker.NewTracker(name, svc, networks, db, l)
		if err == nil {
			err = t.Start()
		}
		if err != nil {
			stopAll()
			return nil, nil, err
		}
		started = append(started, t)
		s.AddTracker(t)
	}
	return s, started, nil
}

func NewServerCommand(parentCmd *cobra.Command, parentVc *viper.Viper, version, build string, logoLines []string) (*cobra.Command, *viper.Viper) {
	rootCmd, rootVc := cli.NewCommand(parentCmd, parentVc, "server", "Server management")
	cfg := &Config{}
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cfgFilePath := rootVc.GetString("config"); cfgFilePath != "" {
			if err := ReadConfig(cfgFilePath, cfg, rootVc); err != nil {
				return err
			}
		}
		if err := rootVc.Unmarshal(&cfg, cli.ViperDecodeOptJson); err != nil {
			return fmt.Errorf("fail to unmarshall config from env err=%+v", err)
		}
		return nil
	}
	rootPFlags := rootCmd.PersistentFlags()
	rootPFlags.StringP("config", "c", "", "Parsing configuration file")
	rootPFlags.String("log_level", "debug", "Global log level (trace,debug,info,warn,error,fatal,panic)")
	rootPFlags.String("console_level", "trace", "Console log level (trace,debug,info,warn,error,fatal,panic)")
	rootPFlags.String("log_writer.filename", "weth-sdk.log", "Log file name (rotated files resides in same directory)")
	rootPFlags.Int("log_writer.maxsize", 100, "Maximum log file size in MiB")
	rootPFlags.Int("log_writer.maxage", 0, "Maximum age of log file in day")
	rootPFlags.Int("log_writer.maxbackups", 0, "Maximum number of backups")
	rootPFlags.Bool("log_writer.localtime", false, "Use localtime on rotated log file instead of UTC")
	rootPFlags.Bool("log_writer.compress", false, "Use gzip on rotated log file")
	rootPFlags.String("server.address", "localhost:8080", "Listen address of the server")
	rootPFlags.String("server.dump_log_level", "trace", "Log level of request and response dump (trace,debug,info)")
	cli.BindPFlags(rootVc, rootPFlags)

	saveCmd := &cobra.Command{
		Use:   "save [file]",
		Short: "Save configuration",
		Args:  cli.ArgsWithDefaultErrorFunc(cobra.ExactArgs(1)),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return cli.ValidateFlagsWithViper(rootVc, cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			saveFilePath := args[0]
			cfg.FilePath, _ = filepath.Abs(saveFilePath)
			cfg.BaseDir = cfg.ResolveRelative(cfg.BaseDir)
			if cfg.LogWriter != nil {
				cfg.LogWriter.Filename = cfg.ResolveRelative(cfg.LogWriter.Filename)
			}
			if example, _ := cmd.Flags().GetBool("example"); example {
				cfg.fillExample()
			}
			if err := cli.JsonPrettySaveFile(saveFilePath, 0644, cfg); err != nil {
				return err
			}
			cmd.Println("Save configuration to", saveFilePath)
			return nil
		},
	}
	rootCmd.AddCommand(saveCmd)
	saveCmd.Flags().Bool("example", false, "Fill networks and database with example")

	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start server",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return cli.ValidateFlagsWithViper(rootVc, cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, line := range logoLines {
				log.Println(line)
			}
			log.Printf("Version : %s", version)
			log.Printf("Build   : %s", build)

			modLevels, _ := cmd.Flags().GetStringToString("mod_level")
			l, err := setupLogger(cfg, modLevels)
			if err != nil {
				return err
			}
			s, trackers, err := newServer(cfg, l)
			if err != nil {
				return err
			}
			defer func() {
				for _, t := range trackers {
					if err := t.Stop(); err != nil {
						l.Warnf("fail to Stop tracker:%s err:%+v", t.Name(), err)
					}
				}
			}()
			return s.Start()
		},
	}
	rootCmd.AddCommand(startCmd)
	startFlags := startCmd.Flags()
	startFlags.StringToString("mod_level", nil, "Set console log level for specific module ('mod'='level',...)")
	startFlags.MarkHidden("mod_level")
	return rootCmd, rootVc
}
