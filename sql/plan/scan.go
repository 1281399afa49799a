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

// TableScan reads a full table, optionally filtering inline.
type TableScan struct {
	base
	TableID          sql.TableID
	TableName        string
	Alias            string
	FilterConditions []sql.Expression
}

// NewTableScan creates a scan over the named table.
func NewTableScan(tableID sql.TableID, tableName, alias string) *TableScan {
	return &TableScan{base: newBase(), TableID: tableID, TableName: tableName, Alias: alias}
}

func (s *TableScan) Copy() Node {
	out := *s
	out.base = s.copyBase()
	out.FilterConditions = append([]sql.Expression(nil), s.FilterConditions...)
	return &out
}

func (s *TableScan) Format(sb *strings.Builder, indent int) {
	sb.WriteString(indentString(indent) + "Seq Scan on " + s.TableName)
	if s.Alias != "" {
		sb.WriteString(" " + s.Alias)
	}
	sb.WriteString(" (" + s.cost.String() + ")\n")
	if len(s.FilterConditions) > 0 {
		sb.WriteString(indentString(indent+1) + "Filter: " + sql.ExprsToString(s.FilterConditions, " AND ") + "\n")
	}
	s.formatChildren(sb, indent+1)
}

func (s *TableScan) String() string { return nodeString(s) }

// IndexScan reads a table through one of its indexes.
type IndexScan struct {
	base
	TableID          sql.TableID
	TableName        string
	IndexName        string
	Alias            string
	IndexConditions  []sql.Expression
	FilterConditions []sql.Expression
}

// NewIndexScan creates an index scan over the named table and index.
func NewIndexScan(tableID sql.TableID, tableName, indexName, alias string) *IndexScan {
	return &IndexScan{base: newBase(), TableID: tableID, TableName: tableName, IndexName: indexName, Alias: alias}
}

func (s *IndexScan) Copy() Node {
	out := *s
	out.base = s.copyBase()
	out.IndexConditions = append([]sql.Expression(nil), s.IndexConditions...)
	out.FilterConditions = append([]sql.Expression(nil), s.FilterConditions...)
	return &out
}

func (s *IndexScan) Format(sb *strings.Builder, indent int) {
	sb.WriteString(indentString(indent) + "Index Scan using " + s.IndexName + " on " + s.TableName)
	if s.Alias != "" {
		sb.WriteString(" " + s.Alias)
	}
	sb.WriteString(" (" + s.cost.String() + ")\n")
	if len(s.IndexConditions) > 0 {
		sb.WriteString(indentString(indent+1) + "Index Cond: " + sql.ExprsToString(s.IndexConditions, " AND ") + "\n")
	}
	if len(s.FilterConditions) > 0 {
		sb.WriteString(indentString(indent+1) + "Filter: " + sql.ExprsToString(s.FilterConditions, " AND ") + "\n")
	}
	s.formatChildren(sb, indent+1)
}

func (s *IndexScan) String() string { return nodeString(s) }
