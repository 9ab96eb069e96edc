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

// Package text derives the searchable forms of a version's content: the
// plain text without markup and the word count.
package text

import (
	"io"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockElements are elements whose boundaries separate lines of text.
var blockElements = map[atom.Atom]bool{
	atom.Address:    true,
	atom.Article:    true,
	atom.Blockquote: true,
	atom.Br:         true,
	atom.Div:        true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Hr:         true,
	atom.Li:         true,
	atom.P:          true,
	atom.Pre:        true,
	atom.Section:    true,
	atom.Tr:         true,
}

// skippedElements are elements whose text is not part of the document.
var skippedElements = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
}

// PlainText returns the text of the given markup. Entities are unescaped,
// block elements and line breaks become newlines, and runs of blank lines
// collapse into one. Text without markup is returned trimmed.
func PlainText(content string) string {
	if !strings.ContainsRune(content, '<') && !strings.ContainsRune(content, '&') {
		return strings.TrimSpace(content)
	}

	var sb strings.Builder
	skipDepth := 0
	z := html.NewTokenizer(strings.NewReader(content))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return collapseBlankLines(sb.String())
			}
			// a broken document keeps what was read so far.
			return collapseBlankLines(sb.String())
		case html.TextToken:
			if skipDepth == 0 {
				sb.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if skippedElements[a] && tt == html.StartTagToken {
				skipDepth++
			}
			if blockElements[a] {
				sb.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if skippedElements[a] && skipDepth > 0 {
				skipDepth--
			}
			if blockElements[a] {
				sb.WriteByte('\n')
			}
		}
	}
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	result := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRightFunc(line, unicode.IsSpace)
		if line == "" {
			if !blank && len(result) > 0 {
				result = append(result, "")
			}
			blank = true
			continue
		}
		blank = false
		result = append(result, line)
	}

	return strings.TrimSpace(strings.Join(result, "\n"))
}

// CountWords counts the words of the given plain text. Every Han ideograph
// is one word and every maximal run of Latin letters is one word. Digits,
// punctuation and other scripts are not counted.
func CountWords(text string) int {
	count := 0
	inLatin := false
	for _, r := range text {
		if unicode.Is(unicode.Han, r) {
			count++
			inLatin = false
			continue
		}

		if unicode.IsLetter(r) && unicode.Is(unicode.Latin, r) {
			if !inLatin {
				count++
				inLatin = true
			}
			continue
		}

		inLatin = false
	}

	return count
}

// IsBlank returns true if the given content has no visible text.
func IsBlank(content string) bool {
	return strings.TrimSpace(content) == ""
}
