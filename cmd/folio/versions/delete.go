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

package versions

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yorkie-team/folio/api/types"
	"github.com/yorkie-team/folio/cmd/folio/config"
	"github.com/yorkie-team/folio/server"
)

func newDeleteVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete [document id] [version id]",
		Short:   "Delete a version that is neither pinned nor current",
		Aliases: []string{"rm"},
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("document id and version id are required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Run(func(ctx context.Context, f *server.Folio) error {
				if err := f.DeleteVersion(ctx, types.ID(args[0]), types.ID(args[1])); err != nil {
					return fmt.Errorf("failed to delete version: %w", err)
				}

				cmd.Printf("Version deleted: %s\n", args[1])
				return nil
			})
		},
	}
}

func init() {
	SubCmd.AddCommand(newDeleteVersionCmd())
}
