// Copyright © 2025 The proofd authors
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zcashlight/proofd/internal/confutil"
	"github.com/zcashlight/proofd/internal/log"
	"github.com/zcashlight/proofd/internal/paramfetch"
	"github.com/zcashlight/proofd/internal/service"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "proofd",
		Short:         "Zcash Sapling proof generation service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(startCommand(), fetchParamsCommand(), versionCommand())
	return cmd
}

func startCommand() *cobra.Command {
	var configFile string
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the proof generation HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runService(cmd.Context(), configFile)
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML configuration file")
	return cmd
}

func loadConfig(ctx context.Context, configFile string) (*service.Config, error) {
	conf := &service.Config{}
	if configFile != "" {
		if err := service.ReadAndParseYAMLFile(ctx, configFile, conf); err != nil {
			return nil, err
		}
	}
	if conf.HTTP.Port == nil {
		conf.HTTP.Port = confutil.P(8080)
	}
	return conf, nil
}

func runService(ctx context.Context, configFile string) error {
	conf, err := loadConfig(ctx, configFile)
	if err != nil {
		return err
	}
	log.InitConfig(&conf.Log)

	svc, err := service.New(ctx, conf)
	if err != nil {
		return err
	}
	if err := svc.Start(); err != nil {
		return err
	}
	log.L(ctx).Infof("proofd %s serving on http://%s", Version, svc.Addr())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigs:
		log.L(ctx).Infof("Shutting down on %s", sig)
	case <-ctx.Done():
	}
	svc.Stop()
	return nil
}

func fetchParamsCommand() *cobra.Command {
	var configFile string
	var dir string
	cmd := &cobra.Command{
		Use:   "fetch-params",
		Short: "Download and verify the Sapling proving parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log.EnsureInit()
			conf, err := fetchParamsConfig(ctx, configFile, dir)
			if err != nil {
				return err
			}
			fetcher, err := paramfetch.New(ctx, conf)
			if err != nil {
				return err
			}
			if err := fetcher.Fetch(ctx); err != nil {
				return err
			}
			fmt.Printf("Sapling parameters ready in %s\n", fetcher.Dir())
			return nil
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML configuration file")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Target directory (default ~/.zcash-params)")
	return cmd
}

// fetchParamsConfig resolves the download settings from the service
// configuration file, with the --dir flag taking precedence over the
// paramFetch section.
func fetchParamsConfig(ctx context.Context, configFile, dir string) (*paramfetch.Config, error) {
	svcConf, err := loadConfig(ctx, configFile)
	if err != nil {
		return nil, err
	}
	conf := &svcConf.ParamFetch
	if dir != "" {
		conf.Dir = confutil.P(dir)
	}
	return conf, nil
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(Version)
		},
	}
}
