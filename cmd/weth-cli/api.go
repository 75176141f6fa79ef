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
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/icon-project/btp2/common/cli"
	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/icon-project/weth-sdk/api"
	"github.com/icon-project/weth-sdk/contract"
	"github.com/icon-project/weth-sdk/contract/eth"
)

func GetStringToInterface(fs *pflag.FlagSet, name string) (map[string]interface{}, error) {
	m, err := fs.GetStringToString(name)
	if err != nil {
		return nil, err
	}
	r := make(map[string]interface{})
	for k, v := range m {
		r[k] = v
	}
	return r, nil
}

// ReadAndUnmarshal accepts a json string or a path of json file.
func ReadAndUnmarshal(raw string, v interface{}) error {
	var b []byte
	if strings.HasPrefix(strings.TrimSpace(raw), "{") {
		b = []byte(raw)
	} else {
		var err error
		if b, err = os.ReadFile(raw); err != nil {
			return err
		}
	}
	return json.Unmarshal(b, v)
}

func printResponse(v interface{}) error {
	if err := cli.JsonPrettyPrintln(os.Stdout, v); err != nil {
		return errors.Errorf("fail to print response v:%+v err:%+v", v, err)
	}
	return nil
}

func NewClient(vc *viper.Viper) (*api.Client, error) {
	l := log.GlobalLogger()
	if lv, err := log.ParseLevel(vc.GetString("log_level")); err != nil {
		return nil, errors.Wrapf(err, "fail to parseLevel log_level err:%s", err.Error())
	} else {
		l.SetLevel(lv)
	}
	if lv, err := log.ParseLevel(vc.GetString("console_level")); err != nil {
		return nil, errors.Wrapf(err, "fail to parseLevel console_level err:%s", err.Error())
	} else {
		l.SetConsoleLevel(lv)
	}
	dumpLogLevel, err := log.ParseLevel(vc.GetString("dump_log_level"))
	if err != nil {
		return nil, errors.Wrapf(err, "fail to parseLevel dump_log_level err:%s", err.Error())
	}
	return api.NewClient(
		vc.GetString("url"),
		contract.EnsureTransportLogLevel(dumpLogLevel),
		l), nil
}

func ClientPersistentPreRunE(vc *viper.Viper, c *api.Client) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := cli.ValidateFlagsWithViper(vc, cmd.Flags()); err != nil {
			return err
		}
		nc, err := NewClient(vc)
		if err != nil {
			return err
		}
		*c = *nc
		return nil
	}
}

func AddClientRequiredFlags(c *cobra.Command) {
	pFlags := c.PersistentFlags()
	pFlags.String("url", "http://localhost:8080", "server address")
	pFlags.String("log_level", "debug", "Global log level (trace,debug,info,warn,error,fatal,panic)")
	pFlags.String("console_level", "trace", "Console log level (trace,debug,info,warn,error,fatal,panic)")
	pFlags.String("dump_log_level", "trace", "client dump log level (trace,debug,info)")
}

func NewApiCommand(parentCmd *cobra.Command, parentVc *viper.Viper) (*cobra.Command, *viper.Viper) {
	rootCmd, rootVc := cli.NewCommand(parentCmd, parentVc, "api", "API cli")
	var (
		c           api.Client
		network     string
		networkType string
	)
	persistentPreRunE := ClientPersistentPreRunE(rootVc, &c)
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := persistentPreRunE(cmd, args); err != nil {
			return err
		}
		network = rootVc.GetString("network.name")
		networkType = rootVc.GetString("network.type")
		return nil
	}
	AddClientRequiredFlags(rootCmd)
	rootPFlags := rootCmd.PersistentFlags()
	rootPFlags.String("network.name", "", "network name")
	rootPFlags.String("network.type", eth.NetworkTypeEth,
		fmt.Sprintf("network type, one of %s", strings.Join(contract.NetworkTypes(), ",")))
	cli.MarkAnnotationCustom(rootPFlags, "network.name", "network.type")
	cli.BindPFlags(rootVc, rootPFlags)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "networks",
		Short: "Get list of network information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.NetworkInfos()
			if err != nil {
				return err
			}
			return cli.JsonPrettyPrintln(os.Stdout, r)
		},
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "services",
		Short: "Get list of service information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.ServiceInfos(network)
			if err != nil {
				return err
			}
			return cli.JsonPrettyPrintln(os.Stdout, r)
		},
	})
	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Register contract service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := os.ReadFile(cmd.Flag("contract.spec").Value.String())
			if err != nil {
				return err
			}
			registerReq := &api.RegisterContractServiceRequest{
				Address: contract.Address(cmd.Flag("contract.address").Value.String()),
				Spec:    spec,
			}
			if err = c.RegisterContractService(network, registerReq); err != nil {
				return err
			}
			cmd.Println("Operation success")
			return nil
		},
	}
	rootCmd.AddCommand(registerCmd)
	registerFlags := registerCmd.Flags()
	registerFlags.String("contract.address", "", "contract address")
	registerFlags.String("contract.spec", "", "contract abi json file")
	cli.MarkAnnotationRequired(registerFlags, "contract.address", "contract.spec")

	resultCmd := &cobra.Command{
		Use:   "result TX_ID",
		Short: "GetResult",
		Args:  cli.ArgsWithDefaultErrorFunc(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			txr, err := c.GetResult(network, args[0])
			if err != nil {
				return err
			}
			return cli.JsonPrettyPrintln(os.Stdout, txr)
		},
	}
	rootCmd.AddCommand(resultCmd)

	var svc string
	serviceApiPreRunE := func(cmd *cobra.Command, args []string) error {
		svc = cmd.Flag("service").Value.String()
		if len(svc) == 0 {
			svc = cmd.Flag("contract.address").Value.String()
		}
		if len(svc) == 0 {
			return errors.New("require service or contract.address")
		}
		return nil
	}
	addServiceFlags := func(fs *pflag.FlagSet) {
		fs.String("service", "", "service name")
		fs.String("contract.address", "", "address of registered contract, if '--service' used, will be ignored")
	}
	specCmd := &cobra.Command{
		Use:     "spec",
		Short:   "Get spec of service",
		Args:    cobra.NoArgs,
		PreRunE: serviceApiPreRunE,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.Spec(network, svc)
			if err != nil {
				return err
			}
			return cli.JsonPrettyPrintln(os.Stdout, r)
		},
	}
	addServiceFlags(specCmd.Flags())
	rootCmd.AddCommand(specCmd)

	var (
		method string
		req    = &api.Request{}
	)
	newMethodApiCommand := func(use, short string) *cobra.Command {
		cmd := &cobra.Command{
			Use:   fmt.Sprintf("%s METHOD", use),
			Short: short,
			Args:  cli.ArgsWithDefaultErrorFunc(cobra.ExactArgs(1)),
			PreRunE: func(cmd *cobra.Command, args []string) error {
				if err := serviceApiPreRunE(cmd, args); err != nil {
					return err
				}
				method = args[0]
				var (
					fs  = cmd.Flags()
					err error
				)
				if raw := cmd.Flag("raw").Value.String(); len(raw) > 0 {
					if err = ReadAndUnmarshal(raw, req); err != nil {
						return err
					}
				}
				if fs.Changed("param") {
					if req.Params, err = GetStringToInterface(fs, "param"); err != nil {
						return err
					}
				}
				if fs.Changed("option") {
					if req.Options, err = GetStringToInterface(fs, "option"); err != nil {
						return err
					}
				}
				return nil
			},
		}
		fs := cmd.Flags()
		addServiceFlags(fs)
		fs.StringToString("param", nil,
			"key=value, Function parameters, will overwrite the params of '--raw'")
		fs.StringToString("option", nil,
			"key=value, Call options, will overwrite the options of '--raw'")
		fs.String("raw", "", "request using raw json file or json-string")
		return cmd
	}
	for _, mc := range []struct {
		use, short string
		run        func() (interface{}, error)
	}{
		{"call", "Call the read-only method", func() (interface{}, error) {
			var resp interface{}
			_, err := c.Call(network, svc, method, req, &resp)
			return resp, err
		}},
		{"static", "Simulate the method without sending transaction", func() (interface{}, error) {
			var resp interface{}
			_, err := c.Static(network, svc, method, req, &resp)
			return resp, err
		}},
		{"estimate", "Estimate gas of the method", func() (interface{}, error) {
			return c.EstimateGas(network, svc, method, req)
		}},
		{"populate", "Populate unsigned transaction of the method", func() (interface{}, error) {
			return c.Populate(network, svc, method, req)
		}},
	} {
		run := mc.run
		cmd := newMethodApiCommand(mc.use, mc.short)
		cmd.RunE = func(cmd *cobra.Command, args []string) error {
			r, err := run()
			if err != nil {
				return err
			}
			return printResponse(r)
		}
		rootCmd.AddCommand(cmd)
	}

	invokeCmd := newMethodApiCommand("invoke", "Invoke")
	invokeCmd.RunE = func(cmd *cobra.Command, args []string) error {
		sc := &SignerConfig{
			Keystore: cmd.Flag("keystore").Value.String(),
			Secret:   cmd.Flag("secret").Value.String(),
		}
		s, err := sc.NewSigner(networkType)
		if err != nil {
			return err
		}
		txID, err := c.Invoke(network, svc, method, req, s)
		if err != nil {
			return err
		}
		return printResponse(txID)
	}
	rootCmd.AddCommand(invokeCmd)
	invokeFlags := invokeCmd.Flags()
	invokeFlags.String("keystore", "", "keystore file path")
	invokeFlags.String("secret", "", "secret file path")
	cli.MarkAnnotationRequired(invokeFlags, "keystore", "secret")
	return rootCmd, rootVc
}
