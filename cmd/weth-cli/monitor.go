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
	"context"
	"os"

	"github.com/icon-project/btp2/common/cli"
	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/intconv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/icon-project/weth-sdk/api"
	"github.com/icon-project/weth-sdk/contract"
)

func NewMonitorCommand(parentCmd *cobra.Command, parentVc *viper.Viper) (*cobra.Command, *viper.Viper) {
	rootCmd, rootVc := cli.NewCommand(parentCmd, parentVc, "monitor", "Monitor cli")
	var (
		c       api.Client
		network string
	)
	persistentPreRunE := ClientPersistentPreRunE(rootVc, &c)
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := persistentPreRunE(cmd, args); err != nil {
			return err
		}
		network = rootVc.GetString("network.name")
		return nil
	}
	AddClientRequiredFlags(rootCmd)
	rootPFlags := rootCmd.PersistentFlags()
	rootPFlags.String("network.name", "", "network name")
	cli.MarkAnnotationCustom(rootPFlags, "network.name")
	cli.BindPFlags(rootVc, rootPFlags)

	eventCmd := &cobra.Command{
		Use:   "event",
		Short: "Event monitor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			height, err := intconv.ParseInt(cmd.Flag("height").Value.String(), 64)
			if err != nil {
				return err
			}
			req := &api.MonitorRequest{
				Height:       height,
				NameToParams: make(map[string][]contract.Params),
			}
			if raw := cmd.Flag("raw").Value.String(); len(raw) > 0 {
				if err = ReadAndUnmarshal(raw, req); err != nil {
					return err
				}
			}
			nameToRawJson, err := cmd.Flags().GetStringToString("filter")
			if err != nil {
				return err
			}
			for name, rawJson := range nameToRawJson {
				var params contract.Params
				if len(rawJson) > 0 {
					if err = ReadAndUnmarshal(rawJson, &params); err != nil {
						return err
					}
				}
				req.NameToParams[name] = append(req.NameToParams[name], params)
			}
			if len(req.NameToParams) == 0 {
				return errors.New("require filter at least one")
			}
			svc := cmd.Flag("service").Value.String()
			if len(svc) == 0 {
				svc = cmd.Flag("contract.address").Value.String()
			}
			if len(svc) == 0 {
				return errors.New("require service or contract.address")
			}
			ctx, cancel := context.WithCancel(context.Background())
			cli.OnInterrupt(cancel)
			return c.MonitorEvent(ctx, network, svc, req, func(e *api.Event) error {
				return cli.JsonPrettyPrintln(os.Stdout, e)
			})
		},
	}
	rootCmd.AddCommand(eventCmd)
	eventFlags := eventCmd.Flags()
	eventFlags.String("service", "", "service name")
	eventFlags.String("contract.address", "", "address of registered contract, if '--service' used, will be ignored")
	eventFlags.StringToString("filter", nil,
		"Event=Filter, raw json file or json string, will be appended to the filters of '--raw'")
	eventFlags.String("height", "0", "height, if '--raw' used, will overwrite")
	eventFlags.String("raw", "", "request using raw json file or json-string")
	return rootCmd, rootVc
}

func NewTrackerCommand(parentCmd *cobra.Command, parentVc *viper.Viper) (*cobra.Command, *viper.Viper) {
	rootCmd, rootVc := cli.NewCommand(parentCmd, parentVc, "tracker", "Tracker cli")
	var c api.Client
	rootCmd.PersistentPreRunE = ClientPersistentPreRunE(rootVc, &c)
	AddClientRequiredFlags(rootCmd)
	cli.BindPFlags(rootVc, rootCmd.PersistentFlags())

	rootCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Get list of tracker information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.TrackerInfos()
			if err != nil {
				return err
			}
			return cli.JsonPrettyPrintln(os.Stdout, r)
		},
	})

	eventsCmd := &cobra.Command{
		Use:   "events TRACKER",
		Short: "Find stored events",
		Args:  cli.ArgsWithDefaultErrorFunc(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()
			req := &api.TrackerFindRequest{
				Network: cmd.Flag("network").Value.String(),
				Name:    cmd.Flag("event").Value.String(),
				Address: cmd.Flag("address").Value.String(),
				Sort:    cmd.Flag("sort").Value.String(),
			}
			var err error
			if req.Page, err = fs.GetUint("page"); err != nil {
				return err
			}
			if req.Size, err = fs.GetUint("size"); err != nil {
				return err
			}
			r, err := c.TrackerEvents(args[0], req)
			if err != nil {
				return err
			}
			return cli.JsonPrettyPrintln(os.Stdout, r)
		},
	}
	rootCmd.AddCommand(eventsCmd)
	eventsFlags := eventsCmd.Flags()
	eventsFlags.String("network", "", "network name")
	eventsFlags.String("event", "", "event name")
	eventsFlags.String("address", "", "address of src, dst or guy")
	eventsFlags.Uint("page", 0, "page number, starts from zero")
	eventsFlags.Uint("size", 0, "page size")
	eventsFlags.String("sort", "", "sort order (e.g. 'block_height desc')")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "summary TRACKER",
		Short: "Get number of stored events",
		Args:  cli.ArgsWithDefaultErrorFunc(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.TrackerSummary(args[0])
			if err != nil {
				return err
			}
			return cli.JsonPrettyPrintln(os.Stdout, r)
		},
	})
	return rootCmd, rootVc
}
