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
	"fmt"
	"strings"
)

// Limit passes through at most Limit rows after skipping Offset rows.
// A nil Limit means LIMIT ALL.
type Limit struct {
	base
	Limit  *int
	Offset *int
}

// NewLimit creates a limit over a child.
func NewLimit(limit, offset *int, child Node) *Limit {
	l := &Limit{base: newBase(), Limit: limit, Offset: offset}
	l.SetChildren(child)
	return l
}

// Child returns the single input.
func (l *Limit) Child() Node { return l.children[0] }

func (l *Limit) Copy() Node {
	out := *l
	out.base = l.copyBase()
	if l.Limit != nil {
		v := *l.Limit
		out.Limit = &v
	}
	if l.Offset != nil {
		v := *l.Offset
		out.Offset = &v
	}
	return &out
}

func (l *Limit) Format(sb *strings.Builder, indent int) {
	sb.WriteString(indentString(indent) + "Limit (" + l.cost.String() + ")\n")
	sb.WriteString(indentString(indent + 1))
	if l.Offset != nil && *l.Offset > 0 {
		sb.WriteString(fmt.Sprintf("Offset: %d ", *l.Offset))
	}
	if l.Limit != nil {
		sb.WriteString(fmt.Sprintf("Limit: %d", *l.Limit))
	} else {
		sb.WriteString("Limit: ALL")
	}
	sb.WriteString("\n")
	l.formatChildren(sb, indent+1)
}

func (l *Limit) String() string { return nodeString(l) }
