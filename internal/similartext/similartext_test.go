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

package similartext

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSimilarity(t *testing.T) {
	require := require.New(t)

	require.Equal(1.0, Similarity("", ""))
	require.Equal(0.0, Similarity("foo", ""))
	require.Equal(1.0, Similarity("users", "users"))
	require.Equal(1.0, Similarity("Users", "users"))
	require.InDelta(0.8, Similarity("userz", "users"), 1e-9)
	require.True(Similarity("users", "xyzzy") < 0.3)
}

func TestSuggest(t *testing.T) {
	require := require.New(t)

	var names []string
	require.Empty(Suggest(names, "users"))

	names = []string{"users", "orders", "products", "user_events"}
	require.Empty(Suggest(names, ""))

	res := Suggest(names, "userz")
	require.NotEmpty(res)
	require.Equal("users", res[0])

	res = Suggest(names, "willBeTooDifferentFromAll")
	require.Empty(res)

	// Never more than three, best match first.
	res = Suggest([]string{"aaa", "aab", "aac", "aad"}, "aaa")
	require.Len(res, MaxSuggestions)
	require.Equal("aaa", res[0])
}

func TestFind(t *testing.T) {
	require := require.New(t)

	var names []string
	require.Empty(Find(names, ""))

	names = []string{"foo", "bar", "aka", "ake"}
	require.Empty(Find(names, ""))
	require.Equal(", maybe you mean foo?", Find(names, "foo"))
	require.Empty(Find(names, "willBeTooDifferent"))
	require.Equal(", maybe you mean aka or ake?", Find(names, "aki"))
}

func TestFindFromMap(t *testing.T) {
	require := require.New(t)

	var names map[string]int
	require.Empty(FindFromMap(names, ""))

	names = map[string]int{"foo": 1, "bar": 2}
	require.Equal(", maybe you mean foo?", FindFromMap(names, "foo"))
	require.Empty(FindFromMap(names, ""))
}
