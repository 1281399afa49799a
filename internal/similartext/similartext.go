// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package similartext ranks identifiers by Levenshtein similarity so error
// messages can propose likely fixes for misspelled names.
package similartext

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// MaxSuggestions bounds how many candidates Suggest returns.
const MaxSuggestions = 3

// MinSimilarity is the floor at or below which a candidate is not worth
// suggesting.
const MinSimilarity = 0.3

// Similarity is 1 - dist/max(len), computed case-insensitively. Identical
// strings score 1, strings with nothing in common score 0.
func Similarity(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	dist := levenshtein.ComputeDistance(strings.ToLower(a), strings.ToLower(b))
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	return 1.0 - float64(dist)/float64(maxLen)
}

type scored struct {
	name  string
	score float64
}

func rank(names []string, input string) []scored {
	ranked := make([]scored, 0, len(names))
	for _, name := range names {
		ranked = append(ranked, scored{name, Similarity(input, name)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].name < ranked[j].name
	})
	return ranked
}

// Suggest returns up to MaxSuggestions names similar to input, best match
// first. Candidates scoring MinSimilarity or less are dropped.
func Suggest(names []string, input string) []string {
	if input == "" || len(names) == 0 {
		return nil
	}
	var out []string
	for _, s := range rank(names, input) {
		if s.score <= MinSimilarity {
			break
		}
		out = append(out, s.name)
		if len(out) == MaxSuggestions {
			break
		}
	}
	return out
}

// Find returns a string of the form ", maybe you mean a or b?" suitable for
// appending to a not-found error, or an empty string when nothing in names
// resembles src.
func Find(names []string, src string) string {
	suggestions := Suggest(names, src)
	if len(suggestions) == 0 {
		return ""
	}
	return fmt.Sprintf(", maybe you mean %s?", strings.Join(suggestions, " or "))
}

// FindFromMap does the same as Find but taking a map instead, whose keys
// will be used as the list of candidate names.
func FindFromMap(names interface{}, src string) string {
	rnames := reflect.ValueOf(names)
	if rnames.Kind() != reflect.Map {
		panic("similartext.FindFromMap: non-map argument")
	}
	keys := make([]string, 0, rnames.Len())
	for _, k := range rnames.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)
	return Find(keys, src)
}
