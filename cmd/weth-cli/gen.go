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
	"os"

	"github.com/icon-project/btp2/common/cli"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/icon-project/weth-sdk/bindgen"
)

func NewGenerateCommand(parentCmd *cobra.Command, parentVc *viper.Viper) (*cobra.Command, *viper.Viper) {
	rootCmd, rootVc := cli.NewCommand(parentCmd, parentVc, "gen", "Generate typed proxy from contract abi")
	rootCmd.Args = cobra.NoArgs
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		b, err := os.ReadFile(rootVc.GetString("abi"))
		if err != nil {
			return err
		}
		code, err := bindgen.Generate(bindgen.Config{
			Type:      rootVc.GetString("type"),
			Package:   rootVc.GetString("pkg"),
			ABI:       b,
			Generator: bindgen.DefaultGenerator,
		})
		if err != nil {
			return err
		}
		out := rootVc.GetString("out")
		if len(out) == 0 {
			_, err = os.Stdout.Write(code)
			return err
		}
		if err = os.WriteFile(out, code, 0644); err != nil {
			return err
		}
		cmd.Println("Generate", rootVc.GetString("type"), "to", out)
		return nil
	}
	fs := rootCmd.Flags()
	fs.String("type", "", "type name of the proxy")
	fs.String("pkg", "", "package name of the generated file")
	fs.String("abi", "", "contract abi json file")
	fs.String("out", "", "output file, stdout if empty")
	cli.MarkAnnotationRequired(fs, "type", "pkg", "abi")
	cli.BindPFlags(rootVc, fs)
	rootCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		return cli.ValidateFlagsWithViper(rootVc, cmd.Flags())
	}
	return rootCmd, rootVc
}
