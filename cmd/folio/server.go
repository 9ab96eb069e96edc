/*
 * Copyright 2020 The Yorkie Authors. All rights reserved.
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
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yorkie-team/folio/cmd/folio/config"
	"github.com/yorkie-team/folio/server"
)

var (
	gracefulTimeout = 10 * time.Second
)

var (
	profilingPort        int
	enablePprof          bool
	housekeepingInterval time.Duration
	retentionKeepAuto    int
)

func newServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server [options]",
		Short: "Start folio server",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.Load()
			if err != nil {
				return err
			}

			// Flags only apply when no config file is given.
			if viper.GetString(config.FlagConfig) == "" {
				conf.Profiling.Port = profilingPort
				conf.Profiling.EnablePprof = enablePprof
				conf.Housekeeping.Interval = housekeepingInterval.String()
				conf.Housekeeping.RetentionKeepAuto = retentionKeepAuto
			}

			f, err := server.New(conf)
			if err != nil {
				return err
			}

			if err := f.Start(); err != nil {
				return err
			}

			if code := handleSignal(f); code != 0 {
				return fmt.Errorf("exit code: %d", code)
			}

			return nil
		},
	}
}

func handleSignal(f *server.Folio) int {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	var sig os.Signal
	select {
	case s := <-sigCh:
		sig = s
	case <-f.ShutdownCh():
		// folio is already shutdown
		return 0
	}

	graceful := false
	if sig == syscall.SIGINT || sig == syscall.SIGTERM {
		graceful = true
	}

	gracefulCh := make(chan struct{})
	go func() {
		if err := f.Shutdown(graceful); err != nil {
			return
		}
		close(gracefulCh)
	}()

	select {
	case <-sigCh:
		return 1
	case <-time.After(gracefulTimeout):
		return 1
	case <-gracefulCh:
		return 0
	}
}

func init() {
	cmd := newServerCmd()
	cmd.Flags().IntVar(
		&profilingPort,
		"profiling-port",
		server.DefaultProfilingPort,
		"Profiling port",
	)
	cmd.Flags().BoolVar(
		&enablePprof,
		"enable-pprof",
		false,
		"Enable runtime profiling data via HTTP server.",
	)
	cmd.Flags().DurationVar(
		&housekeepingInterval,
		"housekeeping-interval",
		server.DefaultHousekeepingInterval,
		"housekeeping interval between housekeeping runs",
	)
	cmd.Flags().IntVar(
		&retentionKeepAuto,
		"retention-keep-auto",
		server.DefaultHousekeepingRetentionKeepAuto,
		"Number of newest auto versions kept per document, 0 disables retention",
	)
	rootCmd.AddCommand(cmd)
}
