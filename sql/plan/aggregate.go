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

// Aggregate groups its input and computes aggregate expressions per group.
// HAVING conditions filter the produced groups.
type Aggregate struct {
	base
	GroupBy          []sql.Expression
	Aggregates       []sql.Expression
	HavingConditions []sql.Expression
}

// NewAggregate creates an aggregation over a child.
func NewAggregate(groupBy, aggregates []sql.Expression, child Node) *Aggregate {
	a := &Aggregate{base: newBase(), GroupBy: groupBy, Aggregates: aggregates}
	a.SetChildren(child)
	return a
}

// Child returns the single input.
func (a *Aggregate) Child() Node { return a.children[0] }

func (a *Aggregate) Copy() Node {
	out := *a
	out.base = a.copyBase()
	out.GroupBy = append([]sql.Expression(nil), a.GroupBy...)
	out.Aggregates = append([]sql.Expression(nil), a.Aggregates...)
	out.HavingConditions = append([]sql.Expression(nil), a.HavingConditions...)
	return &out
}

func (a *Aggregate) Format(sb *strings.Builder, indent int) {
	sb.WriteString(indentString(indent) + "Aggregate (" + a.cost.String() + ")\n")
	if len(a.GroupBy) > 0 {
		sb.WriteString(indentString(indent+1) + "Group Key: " + sql.ExprsToString(a.GroupBy, ", ") + "\n")
	}
	if len(a.Aggregates) > 0 {
		sb.WriteString(indentString(indent+1) + "Aggregates: " + sql.ExprsToString(a.Aggregates, ", ") + "\n")
	}
	if len(a.HavingConditions) > 0 {
		sb.WriteString(indentString(indent+1) + "Filter: " + sql.ExprsToString(a.HavingConditions, " AND ") + "\n")
	}
	a.formatChildren(sb, indent+1)
}

func (a *Aggregate) String() string { return nodeString(a) }
