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

// Project narrows its child's output to the given expressions.
type Project struct {
	base
	Projections []sql.Expression
	// Aliases holds the output name of each projection, "" when unnamed.
	Aliases []string
}

// NewProject creates a projection over a child.
func NewProject(projections []sql.Expression, child Node) *Project {
	p := &Project{base: newBase(), Projections: projections}
	p.SetChildren(child)
	return p
}

// Child returns the single input.
func (p *Project) Child() Node { return p.children[0] }

func (p *Project) Copy() Node {
	out := *p
	out.base = p.copyBase()
	out.Projections = append([]sql.Expression(nil), p.Projections...)
	out.Aliases = append([]string(nil), p.Aliases...)
	return &out
}

func (p *Project) Format(sb *strings.Builder, indent int) {
	sb.WriteString(indentString(indent) + "Projection (" + p.cost.String() + ")\n")
	if len(p.Projections) > 0 {
		sb.WriteString(indentString(indent+1) + "Output: ")
		for i, e := range p.Projections {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(e.String())
			if i < len(p.Aliases) && p.Aliases[i] != "" && p.Aliases[i] != e.String() {
				sb.WriteString(" AS " + p.Aliases[i])
			}
		}
		sb.WriteString("\n")
	}
	p.formatChildren(sb, indent+1)
}

func (p *Project) String() string { return nodeString(p) }
