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

var (
	contentFile   string
	source        string
	label         string
	forceSnapshot bool
	authorID      string
)

func newCreateVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create [document id]",
		Short: "Record the given content as a new version of the document",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("document id is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			versionSource, err := types.ParseVersionSource(source)
			if err != nil {
				return err
			}

			content, err := config.ReadContent(contentFile)
			if err != nil {
				return err
			}

			return config.Run(func(ctx context.Context, f *server.Folio) error {
				version, err := f.CreateVersion(ctx, types.ID(args[0]), &types.CreateVersionFields{
					Content:       content,
					Source:        versionSource,
					Label:         label,
					ForceSnapshot: forceSnapshot,
					AuthorID:      authorID,
				})
				if err != nil {
					return fmt.Errorf("failed to create version: %w", err)
				}

				cmd.Printf("Version created: %s (seq %d)\n", version.ID, version.Seq)
				return nil
			})
		},
	}
}

func init() {
	cmd := newCreateVersionCmd()
	cmd.Flags().StringVarP(
		&contentFile,
		"file",
		"f",
		"",
		"File holding the content of the version, - for stdin",
	)
	cmd.Flags().StringVar(
		&source,
		"source",
		types.VersionSourceManual.String(),
		"Source of the version: auto, manual, revert",
	)
	cmd.Flags().StringVar(
		&label,
		"label",
		"",
		"(optional) Label of the version",
	)
	cmd.Flags().BoolVar(
		&forceSnapshot,
		"snapshot",
		false,
		"Mark the version as a snapshot",
	)
	cmd.Flags().StringVar(
		&authorID,
		"author",
		"",
		"(optional) Author of the version",
	)
	SubCmd.AddCommand(cmd)
}
