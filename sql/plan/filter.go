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

// Filter drops the child rows its conditions reject. The conditions are
// implicitly conjoined.
type Filter struct {
	base
	Conditions []sql.Expression
}

// NewFilter creates a selection over a child.
func NewFilter(conditions []sql.Expression, child Node) *Filter {
	f := &Filter{base: newBase(), Conditions: conditions}
	f.SetChildren(child)
	return f
}

// Child returns the single input.
func (f *Filter) Child() Node { return f.children[0] }

func (f *Filter) Copy() Node {
	out := *f
	out.base = f.copyBase()
	out.Conditions = append([]sql.Expression(nil), f.Conditions...)
	return &out
}

func (f *Filter) Format(sb *strings.Builder, indent int) {
	sb.WriteString(indentString(indent) + "Filter (" + f.cost.String() + ")\n")
	if len(f.Conditions) > 0 {
		sb.WriteString(indentString(indent+1) + "Filter: " + sql.ExprsToString(f.Conditions, " AND ") + "\n")
	}
	f.formatChildren(sb, indent+1)
}

func (f *Filter) String() string { return nodeString(f) }
