/*
 * Copyright 2025 The Yorkie Authors. All rights reserved.
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
	"github.com/yorkie-team/folio/server"
)

var (
	revertLabel    string
	revertAuthorID string
)

func newRevertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revert [document id] [version id]",
		Short: "Restore a document to an earlier version by appending a new one",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("document id and version id are required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Run(func(ctx context.Context, f *server.Folio) error {
				result, err := f.Revert(ctx, types.ID(args[0]), &types.RevertFields{
					ToVersionID: types.ID(args[1]),
					Label:       revertLabel,
					AuthorID:    revertAuthorID,
				})
				if err != nil {
					return err
				}

				cmd.Printf(
					"Reverted to version %d: %s (seq %d)\n",
					result.RevertedTo.Seq,
					result.NewVersionID(),
					result.NewVersion.Seq,
				)
				return nil
			})
		},
	}
}

func init() {
	cmd := newRevertCmd()
	cmd.Flags().StringVar(
		&revertLabel,
		"label",
		"",
		"(optional) Label of the new version, defaults to \"Revert to version N\"",
	)
	cmd.Flags().StringVar(
		&revertAuthorID,
		"author",
		"",
		"(optional) Author of the revert",
	)
	rootCmd.AddCommand(cmd)
}
