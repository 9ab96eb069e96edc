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

// Package versions provides the version commands of the folio CLI.
package versions

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yorkie-team/folio/api/types"
)

var (
	// SubCmd represents the version command
	SubCmd = &cobra.Command{
		Use:   "version",
		Short: "Manage versions of a document",
	}
)

// PrintVersions prints the given versions in the given output format.
func PrintVersions(cmd *cobra.Command, output string, versions []*types.Version) error {
	switch output {
	case "":
		tw := table.NewWriter()
		tw.Style().Options.DrawBorder = false
		tw.Style().Options.SeparateColumns = false
		tw.Style().Options.SeparateFooter = false
		tw.Style().Options.SeparateHeader = false
		tw.Style().Options.SeparateRows = false
		tw.AppendHeader(table.Row{
			"ID",
			"SEQ",
			"SOURCE",
			"LABEL",
			"WORDS",
			"SNAPSHOT",
			"PINNED",
			"AUTHOR",
			"CREATED AT",
		})
		for _, version := range versions {
			tw.AppendRow(table.Row{
				version.ID,
				version.Seq,
				version.Source,
				version.Label,
				version.WordCount,
				version.IsSnapshot,
				version.IsPinned,
				version.AuthorID,
				version.CreatedAt.Local().Format(time.DateTime),
			})
		}
		cmd.Printf("%s\n", tw.Render())
	case "json":
		jsonOutput, err := json.MarshalIndent(versions, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		cmd.Println(string(jsonOutput))
	case "yaml":
		yamlOutput, err := yaml.Marshal(versions)
		if err != nil {
			return fmt.Errorf("marshal YAML: %w", err)
		}
		cmd.Println(string(yamlOutput))
	default:
		return fmt.Errorf("unknown output format: %s", output)
	}

	return nil
}
