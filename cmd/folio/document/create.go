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

package document

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yorkie-team/folio/cmd/folio/config"
	"github.com/yorkie-team/folio/server"
)

var contentFile string

func newCreateDocumentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a new document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := config.ReadContent(contentFile)
			if err != nil {
				return err
			}

			return config.Run(func(ctx context.Context, f *server.Folio) error {
				doc, err := f.CreateDocument(ctx, content)
				if err != nil {
					return fmt.Errorf("failed to create document: %w", err)
				}

				cmd.Printf("Document created: %s\n", doc.ID)
				return nil
			})
		},
	}
}

func init() {
	cmd := newCreateDocumentCmd()
	cmd.Flags().StringVarP(
		&contentFile,
		"file",
		"f",
		"",
		"File holding the initial content of the document, - for stdin",
	)
	SubCmd.AddCommand(cmd)
}
