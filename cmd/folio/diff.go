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
	"github.com/yorkie-team/folio/pkg/diff"
	"github.com/yorkie-team/folio/server"
)

// linePrefixes maps a change kind to the prefix of its line.
var linePrefixes = map[diff.Kind]string{
	diff.Equal:  " ",
	diff.Insert: "+",
	diff.Delete: "-",
}

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff [document id] [base version id] [compare version id|current]",
		Short: "Show the line changes between two versions of a document",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 3 {
				return errors.New("document id, base version id and compare target are required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := &types.DiffFields{BaseVersionID: types.ID(args[1])}
			if args[2] == types.CurrentTarget {
				fields.CompareCurrent = true
			} else {
				fields.CompareVersionID = types.ID(args[2])
			}

			return config.Run(func(ctx context.Context, f *server.Folio) error {
				result, err := f.GetDiff(ctx, types.ID(args[0]), fields)
				if err != nil {
					return err
				}

				cmd.Printf("--- %s\n", result.BaseVersionID)
				if result.CompareCurrent {
					cmd.Printf("+++ %s\n", types.CurrentTarget)
				} else {
					cmd.Printf("+++ %s\n", result.CompareVersionID)
				}
				for _, change := range result.Diffs {
					cmd.Printf("%s%s\n", linePrefixes[change.Kind], change.Value)
				}
				cmd.Printf("%d insertions(+), %d deletions(-)\n", result.Stats.Insertions, result.Stats.Deletions)
				return nil
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(newDiffCmd())
}
