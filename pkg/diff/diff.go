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

/*
Package diff compares two texts line by line.

The comparison is a greedy line pairing, not a minimal edit script. Both
texts are split into lines and two cursors walk them in lock-step: equal
lines are emitted as Equal, differing lines are emitted as a Delete of the
base line followed by an Insert of the compare line. When one side runs out,
the rest of the other side is emitted with a single tag. Consumers depend on
the resulting insertion and deletion counts, so the pairing must stay as is.

Compute is pure and safe for concurrent use.
*/
package diff

import (
	"strings"
	"unicode/utf8"
)

// Kind is the kind of a line change.
type Kind string

const (
	// Equal means the line is present in both texts at the same position.
	Equal Kind = "equal"

	// Insert means the line is only present in the compare text.
	Insert Kind = "insert"

	// Delete means the line is only present in the base text.
	Delete Kind = "delete"
)

// Change is a single line of a diff.
type Change struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value"`
}

// Stats is the aggregate of a diff.
type Stats struct {
	// Insertions is the number of characters on inserted lines.
	Insertions int `json:"insertions"`

	// Deletions is the number of characters on deleted lines.
	Deletions int `json:"deletions"`
}

// SplitLines splits the given text on "\n". An empty text is a single empty
// line, so joining the result with "\n" always gives the text back.
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}

// Compute returns the ordered line changes that turn base into compare.
func Compute(base, compare string) []Change {
	baseLines := SplitLines(base)
	compareLines := SplitLines(compare)

	changes := make([]Change, 0, max(len(baseLines), len(compareLines)))

	i, j := 0, 0
	for i < len(baseLines) && j < len(compareLines) {
		if baseLines[i] == compareLines[j] {
			changes = append(changes, Change{Kind: Equal, Value: baseLines[i]})
		} else {
			changes = append(changes,
				Change{Kind: Delete, Value: baseLines[i]},
				Change{Kind: Insert, Value: compareLines[j]},
			)
		}
		i++
		j++
	}

	for ; i < len(baseLines); i++ {
		changes = append(changes, Change{Kind: Delete, Value: baseLines[i]})
	}
	for ; j < len(compareLines); j++ {
		changes = append(changes, Change{Kind: Insert, Value: compareLines[j]})
	}

	return changes
}

// ComputeStats sums the character lengths of inserted and deleted lines.
// Lengths are counted in Unicode code points.
func ComputeStats(changes []Change) Stats {
	var stats Stats
	for _, c := range changes {
		switch c.Kind {
		case Insert:
			stats.Insertions += utf8.RuneCountInString(c.Value)
		case Delete:
			stats.Deletions += utf8.RuneCountInString(c.Value)
		}
	}

	return stats
}

// Reconstruct rebuilds both sides of a diff: Equal and Delete lines give the
// base text, Equal and Insert lines give the compare text.
func Reconstruct(changes []Change) (base string, compare string) {
	var baseLines, compareLines []string
	for _, c := range changes {
		switch c.Kind {
		case Equal:
			baseLines = append(baseLines, c.Value)
			compareLines = append(compareLines, c.Value)
		case Delete:
			baseLines = append(baseLines, c.Value)
		case Insert:
			compareLines = append(compareLines, c.Value)
		}
	}

	return strings.Join(baseLines, "\n"), strings.Join(compareLines, "\n")
}

// IsIdentical returns true if the diff has no Insert or Delete lines.
func IsIdentical(changes []Change) bool {
	for _, c := range changes {
		if c.Kind != Equal {
			return false
		}
	}
	return true
}
