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
	"strconv"
	"strings"

	"github.com/space-rf-org/DB25-sub000/sql"
)

// InsertInto writes rows into a table, from embedded VALUES lists or from
// a child select plan.
type InsertInto struct {
	base
	TableName     string
	TargetColumns []string
	ValueLists    [][]sql.Expression
}

// NewInsertInto creates an insert node. A nil selectPlan means the rows
// come from ValueLists.
func NewInsertInto(tableName string, columns []string, selectPlan Node) *InsertInto {
	n := &InsertInto{base: newBase(), TableName: tableName, TargetColumns: columns}
	if selectPlan != nil {
		n.SetChildren(selectPlan)
	}
	return n
}

func (n *InsertInto) Copy() Node {
	out := *n
	out.base = n.copyBase()
	out.TargetColumns = append([]string(nil), n.TargetColumns...)
	out.ValueLists = make([][]sql.Expression, len(n.ValueLists))
	for i, row := range n.ValueLists {
		out.ValueLists[i] = append([]sql.Expression(nil), row...)
	}
	return &out
}

func (n *InsertInto) Format(sb *strings.Builder, indent int) {
	sb.WriteString(indentString(indent) + "Insert on " + n.TableName + " (" + n.cost.String() + ")\n")
	if len(n.TargetColumns) > 0 {
		sb.WriteString(indentString(indent+1) + "Columns: " + strings.Join(n.TargetColumns, ", ") + "\n")
	}
	if len(n.ValueLists) > 0 {
		sb.WriteString(indentString(indent+1) + "Values: " + pluralRows(len(n.ValueLists)) + "\n")
	}
	n.formatChildren(sb, indent+1)
}

func pluralRows(n int) string {
	if n == 1 {
		return "1 row"
	}
	return strconv.Itoa(n) + " rows"
}

func (n *InsertInto) String() string { return nodeString(n) }

// Update rewrites the rows its child produces, assigning NewValues to
// TargetColumns.
type Update struct {
	base
	TableName     string
	TargetColumns []string
	NewValues     []sql.Expression
}

// NewUpdate creates an update node over a child scan.
func NewUpdate(tableName string, columns []string, values []sql.Expression, child Node) *Update {
	n := &Update{base: newBase(), TableName: tableName, TargetColumns: columns, NewValues: values}
	n.SetChildren(child)
	return n
}

func (n *Update) Copy() Node {
	out := *n
	out.base = n.copyBase()
	out.TargetColumns = append([]string(nil), n.TargetColumns...)
	out.NewValues = append([]sql.Expression(nil), n.NewValues...)
	return &out
}

func (n *Update) Format(sb *strings.Builder, indent int) {
	sb.WriteString(indentString(indent) + "Update on " + n.TableName + " (" + n.cost.String() + ")\n")
	if len(n.TargetColumns) > 0 {
		sb.WriteString(indentString(indent+1) + "Set: ")
		for i, col := range n.TargetColumns {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(col)
			if i < len(n.NewValues) {
				sb.WriteString(" = " + n.NewValues[i].String())
			}
		}
		sb.WriteString("\n")
	}
	n.formatChildren(sb, indent+1)
}

func (n *Update) String() string { return nodeString(n) }

// DeleteFrom removes the rows its child produces.
type DeleteFrom struct {
	base
	TableName string
}

// NewDeleteFrom creates a delete node over a child scan.
func NewDeleteFrom(tableName string, child Node) *DeleteFrom {
	n := &DeleteFrom{base: newBase(), TableName: tableName}
	n.SetChildren(child)
	return n
}

func (n *DeleteFrom) Copy() Node {
	out := *n
	out.base = n.copyBase()
	return &out
}

func (n *DeleteFrom) Format(sb *strings.Builder, indent int) {
	sb.WriteString(indentString(indent) + "Delete on " + n.TableName + " (" + n.cost.String() + ")\n")
	n.formatChildren(sb, indent+1)
}

func (n *DeleteFrom) String() string { return nodeString(n) }
