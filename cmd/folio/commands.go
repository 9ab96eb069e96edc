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

// Package main is the entry point of the folio CLI.
package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/yorkie-team/folio/api/types"
	"github.com/yorkie-team/folio/cmd/folio/config"
	"github.com/yorkie-team/folio/cmd/folio/document"
	"github.com/yorkie-team/folio/cmd/folio/versions"
	"github.com/yorkie-team/folio/internal/version"
	"github.com/yorkie-team/folio/pkg/errors"
)

var rootCmd = &cobra.Command{
	Use:               "folio",
	Short:             "Version history for documents",
	Version:           version.Version,
	PersistentPreRunE: config.Preload,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Run executes CLI. It exits with 2 when the request was rejected, e.g. a
// pinned version was deleted, and with 1 on any other failure.
func Run() int {
	if err := rootCmd.Execute(); err != nil {
		info := errors.ErrorInfoOf(err)
		rootCmd.PrintErrln("Error:", info.String())
		if info.IsClient {
			return 2
		}
		return 1
	}

	return 0
}

// buildInfo returns the build information of this binary.
func buildInfo() *types.VersionDetail {
	return &types.VersionDetail{
		FolioVersion: version.Version,
		GitCommit:    version.GitCommit,
		GoVersion:    runtime.Version(),
		BuildDate:    version.BuildDate,
	}
}

func init() {
	info := buildInfo()
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Folio: %s\nCommit: %s\nGo: %s\nBuild date: %s\n",
		info.FolioVersion,
		info.GitCommit,
		info.GoVersion,
		info.BuildDate,
	))

	rootCmd.AddCommand(document.SubCmd)
	rootCmd.AddCommand(versions.SubCmd)
	config.AddPersistentFlags(rootCmd)
}
