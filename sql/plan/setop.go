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

import "strings"

// SetOpKind distinguishes the set operations.
type SetOpKind int

const (
	UnionOp SetOpKind = iota
	IntersectOp
	ExceptOp
)

func (k SetOpKind) String() string {
	switch k {
	case IntersectOp:
		return "Intersect"
	case ExceptOp:
		return "Except"
	default:
		return "Union"
	}
}

// SetOp combines two inputs with UNION, INTERSECT or EXCEPT semantics.
type SetOp struct {
	base
	Kind SetOpKind
	All  bool
}

// NewSetOp creates a set operation over two children.
func NewSetOp(kind SetOpKind, all bool, left, right Node) *SetOp {
	s := &SetOp{base: newBase(), Kind: kind, All: all}
	s.SetChildren(left, right)
	return s
}

func (s *SetOp) Copy() Node {
	out := *s
	out.base = s.copyBase()
	return &out
}

func (s *SetOp) Format(sb *strings.Builder, indent int) {
	name := s.Kind.String()
	if s.All {
		name += " All"
	}
	sb.WriteString(indentString(indent) + name + " (" + s.cost.String() + ")\n")
	s.formatChildren(sb, indent+1)
}

func (s *SetOp) String() string { return nodeString(s) }
