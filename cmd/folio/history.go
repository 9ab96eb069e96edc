/*
 * Copyright 2022 The Yorkie Authors. All rights reserved.
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
	"errors"

	"github.com/spf13/cobra"

	"github.com/yorkie-team/folio/api/types"
	"github.com/yorkie-team/folio/cmd/folio/config"
	"github.com/yorkie-team/folio/cmd/folio/versions"
	"github.com/yorkie-team/folio/server"
)

var (
	page         int
	pageSize     int
	sourceFilter string
	pinnedOnly   bool
	output       string
)

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history [document id]",
		Short: "Show the history of a document",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("document id is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := &types.ListVersionsFields{
				Page:     page,
				PageSize: pageSize,
			}
			if sourceFilter != "" {
				source, err := types.ParseVersionSource(sourceFilter)
				if err != nil {
					return err
				}
				fields.Source = &source
			}
			if pinnedOnly {
				fields.Pinned = &pinnedOnly
			}

			return config.Run(func(ctx context.Context, f *server.Folio) error {
				list, total, err := f.ListVersions(ctx, types.ID(args[0]), fields)
				if err != nil {
					return err
				}

				if err := versions.PrintVersions(cmd, output, list); err != nil {
					return err
				}
				if output == "" {
					cmd.Printf("page %d, %d of %d versions\n", fields.Page, len(list), total)
				}
				return nil
			})
		},
	}
}

func init() {
	cmd := newHistoryCmd()
	cmd.Flags().IntVar(
		&page,
		"page",
		1,
		"The page to output, starting at 1",
	)
	cmd.Flags().IntVar(
		&pageSize,
		"size",
		types.DefaultPageSize,
		"The number of versions to output per page",
	)
	cmd.Flags().StringVar(
		&sourceFilter,
		"source",
		"",
		"(optional) Only show versions of the given source: auto, manual, revert",
	)
	cmd.Flags().BoolVar(
		&pinnedOnly,
		"pinned",
		false,
		"Only show pinned versions",
	)
	cmd.Flags().StringVarP(
		&output,
		"output",
		"o",
		"",
		"One of 'yaml' or 'json'.",
	)
	rootCmd.AddCommand(cmd)
}
