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

package plan

import (
	"strings"

	"github.com/space-rf-org/DB25-sub000/sql"
)

// SortKey is one ORDER BY key.
type SortKey struct {
	Expr       sql.Expression
	Ascending  bool
	NullsFirst bool
}

func (k SortKey) String() string {
	s := k.Expr.String()
	if !k.Ascending {
		s += " DESC"
	}
	if k.NullsFirst {
		s += " NULLS FIRST"
	} else {
		s += " NULLS LAST"
	}
	return s
}

// Sort orders its input by the given keys. It is a blocking operator: its
// startup cost equals its total cost.
type Sort struct {
	base
	SortKeys []SortKey
}

// NewSort creates a sort over a child.
func NewSort(keys []SortKey, child Node) *Sort {
	s := &Sort{base: newBase(), SortKeys: keys}
	s.SetChildren(child)
	return s
}

// Child returns the single input.
func (s *Sort) Child() Node { return s.children[0] }

func (s *Sort) Copy() Node {
	out := *s
	out.base = s.copyBase()
	out.SortKeys = append([]SortKey(nil), s.SortKeys...)
	return &out
}

func (s *Sort) Format(sb *strings.Builder, indent int) {
	sb.WriteString(indentString(indent) + "Sort (" + s.cost.String() + ")\n")
	if len(s.SortKeys) > 0 {
		sb.WriteString(indentString(indent+1) + "Sort Key: ")
		for i, key := range s.SortKeys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(key.String())
		}
		sb.WriteString("\n")
	}
	s.formatChildren(sb, indent+1)
}

func (s *Sort) String() string { return nodeString(s) }
