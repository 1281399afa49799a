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

package binder

import (
	"github.com/space-rf-org/DB25-sub000/sql"
	"github.com/space-rf-org/DB25-sub000/sql/expression"
)

// StatementType discriminates the bound statement variants.
type StatementType int

const (
	SelectType StatementType = iota
	InsertType
	UpdateType
	DeleteType
)

func (t StatementType) String() string {
	switch t {
	case SelectType:
		return "SELECT"
	case InsertType:
		return "INSERT"
	case UpdateType:
		return "UPDATE"
	case DeleteType:
		return "DELETE"
	}
	return "UNKNOWN"
}

// Statement is a fully-bound statement: every identifier resolved to a
// schema ID, every expression typed.
type Statement interface {
	StatementType() StatementType
	// TableRefs maps every in-scope name (table names and aliases) to its
	// bound reference.
	TableRefs() map[string]*BoundTableRef
	// Parameters lists the $N placeholders of the statement in index
	// order.
	Parameters() []*BoundParameter
}

// BoundParameter describes one $N placeholder.
type BoundParameter struct {
	Index    int
	Type     sql.ColumnType
	Nullable bool
}

// BoundTableRef is a table reference with its schema resolved at bind
// time. For CTE-backed references the column IDs are positions in the
// CTE's inferred column list (0-based) rather than registry IDs, and
// Indexes is empty.
type BoundTableRef struct {
	TableID        sql.TableID
	TableName      string
	Alias          string
	ColumnNameToID map[string]sql.ColumnID
	Columns        []sql.Column
	Indexes        []sql.Index
}

// Name returns the name the reference is addressed by in the query: the
// alias when present, the table name otherwise.
func (r *BoundTableRef) Name() string {
	if r.Alias != "" {
		return r.Alias
	}
	return r.TableName
}

// Virtual reports whether the reference points at a CTE.
func (r *BoundTableRef) Virtual() bool { return r.TableID.Virtual() }

// CTEDefinition is one registered common table expression.
type CTEDefinition struct {
	Name        string
	ColumnNames []string
	ColumnTypes []sql.ColumnType
	Definition  *SelectStatement
	Recursive   bool
	TempTableID sql.TableID
}

// statement is the embedded base of every bound statement.
type statement struct {
	typ       StatementType
	tableRefs map[string]*BoundTableRef
	params    []*BoundParameter
}

func newStatement(typ StatementType) statement {
	return statement{typ: typ, tableRefs: make(map[string]*BoundTableRef)}
}

func (s *statement) StatementType() StatementType         { return s.typ }
func (s *statement) TableRefs() map[string]*BoundTableRef { return s.tableRefs }
func (s *statement) Parameters() []*BoundParameter        { return s.params }

// OrderByKey is one bound ORDER BY entry.
type OrderByKey struct {
	Expr       sql.Expression
	Ascending  bool
	NullsFirst bool
}

// SelectStatement is a bound SELECT.
type SelectStatement struct {
	statement
	SelectList []sql.Expression
	// OutputNames carries the output name of each select-list entry: the
	// AS alias when given, the column name for plain references, ""
	// otherwise.
	OutputNames []string
	// Star records that the select list was `*` before expansion.
	Star           bool
	From           *BoundTableRef
	JoinTables     []*BoundTableRef
	JoinKinds      []sql.JoinKind
	JoinConditions []sql.Expression // parallel to JoinTables; nil = cross product
	Where          sql.Expression
	GroupBy        []sql.Expression
	Having         sql.Expression
	OrderBy        []OrderByKey
	Limit          *int
	Offset         *int
	CTEs           []*CTEDefinition
}

// NewSelectStatement creates an empty bound SELECT.
func NewSelectStatement() *SelectStatement {
	return &SelectStatement{statement: newStatement(SelectType)}
}

// HasAggregates reports whether the select list contains an aggregate
// function call.
func (s *SelectStatement) HasAggregates() bool {
	for _, e := range s.SelectList {
		agg := false
		sql.InspectExpr(e, func(e sql.Expression) bool {
			if f, ok := e.(*expression.Function); ok && f.IsAggregate() {
				agg = true
				return false
			}
			return true
		})
		if agg {
			return true
		}
	}
	return false
}

// Assignment is one SET clause of an UPDATE.
type Assignment struct {
	ColumnID sql.ColumnID
	Column   string
	Value    sql.Expression
}

// InsertStatement is a bound INSERT.
type InsertStatement struct {
	statement
	Target        *BoundTableRef
	TargetColumns []sql.ColumnID
	// Exactly one of Values and Source is set.
	Values           [][]sql.Expression
	Source           *SelectStatement
	ConflictColumns  []sql.ColumnID
	ReturningColumns []sql.ColumnID
}

// NewInsertStatement creates an empty bound INSERT.
func NewInsertStatement() *InsertStatement {
	return &InsertStatement{statement: newStatement(InsertType)}
}

// UpdateStatement is a bound UPDATE.
type UpdateStatement struct {
	statement
	Target           *BoundTableRef
	Assignments      []Assignment
	Where            sql.Expression
	ReturningColumns []sql.ColumnID
}

// NewUpdateStatement creates an empty bound UPDATE.
func NewUpdateStatement() *UpdateStatement {
	return &UpdateStatement{statement: newStatement(UpdateType)}
}

// DeleteStatement is a bound DELETE.
type DeleteStatement struct {
	statement
	Target           *BoundTableRef
	Where            sql.Expression
	ReturningColumns []sql.ColumnID
}

// NewDeleteStatement creates an empty bound DELETE.
func NewDeleteStatement() *DeleteStatement {
	return &DeleteStatement{statement: newStatement(DeleteType)}
}

// Subquery wraps a bound inner SELECT used as an expression. Its result
// type is Text pending better inference.
type Subquery struct {
	Query *SelectStatement
}

// NewSubquery wraps a bound select.
func NewSubquery(q *SelectStatement) *Subquery { return &Subquery{Query: q} }

func (s *Subquery) Type() sql.ColumnType       { return sql.Text }
func (s *Subquery) IsNullable() bool           { return true }
func (s *Subquery) Children() []sql.Expression { return nil }
func (s *Subquery) Eval(sql.Tuple) string      { return "" }
func (s *Subquery) String() string             { return "(subquery)" }
