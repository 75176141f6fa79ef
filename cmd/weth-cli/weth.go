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
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/icon-project/btp2/common/cli"
	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/icon-project/weth-sdk/contract"
	"github.com/icon-project/weth-sdk/proxy"
	"github.com/icon-project/weth-sdk/weth"
)

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.IllegalArgumentError.Errorf("invalid address:%s", s)
	}
	return common.HexToAddress(s), nil
}

func parseAmount(s string) (*big.Int, error) {
	v, ok := math.ParseBig256(s)
	if !ok {
		return nil, errors.IllegalArgumentError.Errorf("invalid amount:%s", s)
	}
	return v, nil
}

func NewTransactOpts(ctx context.Context, c *ethclient.Client, keystoreFile, secretFile string) (*bind.TransactOpts, error) {
	ks, err := os.ReadFile(keystoreFile)
	if err != nil {
		return nil, err
	}
	pw, err := os.ReadFile(secretFile)
	if err != nil {
		return nil, err
	}
	key, err := keystore.DecryptKey(ks, strings.TrimSpace(string(pw)))
	if err != nil {
		return nil, errors.Wrapf(err, "fail to DecryptKey err:%s", err.Error())
	}
	chainID, err := c.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	return bind.NewKeyedTransactorWithChainID(key.PrivateKey, chainID)
}

func NewWethCommand(parentCmd *cobra.Command, parentVc *viper.Viper) (*cobra.Command, *viper.Viper) {
	rootCmd, rootVc := cli.NewCommand(parentCmd, parentVc, "weth", "IWETH9L1 typed proxy cli")
	var (
		c   *ethclient.Client
		p   *weth.IWETH9L1
		ctx = context.Background()
	)
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := cli.ValidateFlagsWithViper(rootVc, cmd.Flags()); err != nil {
			return err
		}
		l := log.GlobalLogger()
		if lv, err := log.ParseLevel(rootVc.GetString("log_level")); err != nil {
			return errors.Wrapf(err, "fail to parseLevel log_level err:%s", err.Error())
		} else {
			l.SetLevel(lv)
		}
		dumpLogLevel, err := log.ParseLevel(rootVc.GetString("dump_log_level"))
		if err != nil {
			return errors.Wrapf(err, "fail to parseLevel dump_log_level err:%s", err.Error())
		}
		rc, err := rpc.DialOptions(ctx, rootVc.GetString("endpoint"),
			rpc.WithHTTPClient(contract.NewHttpClient(contract.EnsureTransportLogLevel(dumpLogLevel), l)))
		if err != nil {
			return errors.Wrapf(err, "fail to DialOptions err:%s", err.Error())
		}
		c = ethclient.NewClient(rc)
		addr, err := parseAddress(rootVc.GetString("contract.address"))
		if err != nil {
			return err
		}
		p, err = weth.NewIWETH9L1(addr, c)
		return err
	}
	rootPFlags := rootCmd.PersistentFlags()
	rootPFlags.String("endpoint", "http://localhost:8545", "endpoint of the node")
	rootPFlags.String("contract.address", "", "address of IWETH9L1")
	rootPFlags.String("log_level", "debug", "Global log level (trace,debug,info,warn,error,fatal,panic)")
	rootPFlags.String("dump_log_level", "trace", "client dump log level (trace,debug,info)")
	cli.MarkAnnotationRequired(rootPFlags, "contract.address")
	cli.BindPFlags(rootVc, rootPFlags)

	printResult := func(v interface{}) error {
		return cli.JsonPrettyPrintln(os.Stdout, v)
	}
	rootCmd.AddCommand(&cobra.Command{
		Use:   "totalSupply",
		Short: "Get total supply",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := p.TotalSupply(&proxy.CallOverrides{Context: ctx})
			if err != nil {
				return err
			}
			return printResult(r.String())
		},
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "balanceOf GUY",
		Short: "Get balance of GUY",
		Args:  cli.ArgsWithDefaultErrorFunc(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			guy, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			r, err := p.BalanceOf(&proxy.CallOverrides{Context: ctx}, guy)
			if err != nil {
				return err
			}
			return printResult(r.String())
		},
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "allowance GUY",
		Short: "Get allowance of GUY",
		Args:  cli.ArgsWithDefaultErrorFunc(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			guy, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			r, err := p.Allowance(&proxy.CallOverrides{Context: ctx}, guy)
			if err != nil {
				return err
			}
			return printResult(r.String())
		},
	})

	// send runs fn with the proxy bound to the signer of the flags.
	// With '--estimate', prints estimated gas instead of sending.
	type sendFunc func(p *weth.IWETH9L1, estimate bool, o *proxy.Overrides) (interface{}, error)
	newSendCommand := func(use, short string, nArgs int, fn func(args []string) (sendFunc, error)) *cobra.Command {
		cmd := &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cli.ArgsWithDefaultErrorFunc(cobra.ExactArgs(nArgs)),
			RunE: func(cmd *cobra.Command, args []string) error {
				send, err := fn(args)
				if err != nil {
					return err
				}
				auth, err := NewTransactOpts(ctx,
					c, cmd.Flag("keystore").Value.String(), cmd.Flag("secret").Value.String())
				if err != nil {
					return err
				}
				fs := cmd.Flags()
				estimate, _ := fs.GetBool("estimate")
				wait, _ := fs.GetBool("wait")
				r, err := send(p.WithSigner(auth), estimate, &proxy.Overrides{Context: ctx})
				if err != nil {
					return err
				}
				tx, ok := r.(*types.Transaction)
				if !ok {
					return printResult(r)
				}
				if !wait {
					return printResult(tx.Hash().Hex())
				}
				receipt, err := bind.WaitMined(ctx, c, tx)
				if err != nil {
					return err
				}
				return printResult(receipt)
			},
		}
		fs := cmd.Flags()
		fs.String("keystore", "", "keystore file path")
		fs.String("secret", "", "secret file path")
		fs.Bool("estimate", false, "print estimated gas without sending")
		fs.Bool("wait", false, "wait for the receipt")
		cli.MarkAnnotationRequired(fs, "keystore", "secret")
		return cmd
	}

	depositCmd := newSendCommand("deposit WAD", "Deposit WAD of ether", 1,
		func(args []string) (sendFunc, error) {
			wad, err := parseAmount(args[0])
			if err != nil {
				return nil, err
			}
			return func(p *weth.IWETH9L1, estimate bool, o *proxy.Overrides) (interface{}, error) {
				po := proxy.WithValue(o, wad)
				if estimate {
					return p.EstimateGas.Deposit(po)
				}
				return p.Deposit(po)
			}, nil
		})
	rootCmd.AddCommand(depositCmd)

	withdrawCmd := newSendCommand("withdraw WAD", "Withdraw WAD of ether", 1,
		func(args []string) (sendFunc, error) {
			wad, err := parseAmount(args[0])
			if err != nil {
				return nil, err
			}
			return func(p *weth.IWETH9L1, estimate bool, o *proxy.Overrides) (interface{}, error) {
				if estimate {
					return p.EstimateGas.Withdraw(o, wad)
				}
				return p.Withdraw(o, wad)
			}, nil
		})
	rootCmd.AddCommand(withdrawCmd)

	approveCmd := newSendCommand("approve GUY WAD", "Approve GUY to spend WAD", 2,
		func(args []string) (sendFunc, error) {
			guy, err := parseAddress(args[0])
			if err != nil {
				return nil, err
			}
			wad, err := parseAmount(args[1])
			if err != nil {
				return nil, err
			}
			return func(p *weth.IWETH9L1, estimate bool, o *proxy.Overrides) (interface{}, error) {
				if estimate {
					return p.EstimateGas.Approve(o, guy, wad)
				}
				return p.Approve(o, guy, wad)
			}, nil
		})
	rootCmd.AddCommand(approveCmd)

	transferCmd := newSendCommand("transfer DST WAD", "Transfer WAD to DST", 2,
		func(args []string) (sendFunc, error) {
			dst, err := parseAddress(args[0])
			if err != nil {
				return nil, err
			}
			wad, err := parseAmount(args[1])
			if err != nil {
				return nil, err
			}
			return func(p *weth.IWETH9L1, estimate bool, o *proxy.Overrides) (interface{}, error) {
				if estimate {
					return p.EstimateGas.Transfer(o, dst, wad)
				}
				return p.Transfer(o, dst, wad)
			}, nil
		})
	rootCmd.AddCommand(transferCmd)

	transferFromCmd := newSendCommand("transferFrom SRC DST WAD", "Transfer WAD from SRC to DST", 3,
		func(args []string) (sendFunc, error) {
			src, err := parseAddress(args[0])
			if err != nil {
				return nil, err
			}
			dst, err := parseAddress(args[1])
			if err != nil {
				return nil, err
			}
			wad, err := parseAmount(args[2])
			if err != nil {
				return nil, err
			}
			return func(p *weth.IWETH9L1, estimate bool, o *proxy.Overrides) (interface{}, error) {
				if estimate {
					return p.EstimateGas.TransferFrom(o, src, dst, wad)
				}
				return p.TransferFrom(o, src, dst, wad)
			}, nil
		})
	rootCmd.AddCommand(transferFromCmd)
	return rootCmd, rootVc
}
