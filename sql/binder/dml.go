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
	"github.com/sirupsen/logrus"

	"github.com/space-rf-org/DB25-sub000/sql"
	"github.com/space-rf-org/DB25-sub000/sql/ast"
	"github.com/space-rf-org/DB25-sub000/sql/expression"
)

// bindDMLTarget resolves the target table of an INSERT / UPDATE / DELETE
// and establishes the single-table scope its expressions bind in.
func (b *Binder) bindDMLTarget(node ast.Node) *BoundTableRef {
	rv, ok := node.Relation()
	if !ok || rv.RelName == "" {
		b.addError(sql.ErrInvalidAST.New("DML statement has no target table"))
		return nil
	}
	// CTEs are not valid DML targets; resolve directly against the schema.
	id, found := b.registry.ResolveTable(rv.RelName)
	if !found {
		b.addTableNotFoundError(rv.RelName)
		return nil
	}
	def := b.registry.TableDefinition(id)
	ref := &BoundTableRef{
		TableID:        id,
		TableName:      rv.RelName,
		Alias:          rv.Alias,
		ColumnNameToID: make(map[string]sql.ColumnID, len(def.Columns)),
		Columns:        append([]sql.Column(nil), def.Columns...),
		Indexes:        b.registry.TableIndexes(id),
	}
	for i, col := range def.Columns {
		ref.ColumnNameToID[col.Name] = sql.ColumnID(i + 1)
	}
	b.addToScope(ref)
	return ref
}

// resolveTargetColumns maps a list of column names onto the target table,
// reporting each miss with suggestions.
func (b *Binder) resolveTargetColumns(names []string, target *BoundTableRef) []sql.ColumnID {
	var ids []sql.ColumnID
	for _, name := range names {
		id, ok := target.ColumnNameToID[name]
		if !ok {
			b.addColumnNotFoundError(name, target.TableName)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func (b *Binder) bindInsert(ins ast.Node) *InsertStatement {
	stmt := NewInsertStatement()

	stmt.Target = b.bindDMLTarget(ins)
	if stmt.Target == nil {
		return nil
	}
	stmt.TargetColumns = b.resolveTargetColumns(ins.InsertColumns(), stmt.Target)

	if source, ok := ins.InsertSource(); ok {
		if rows := source.ValuesLists(); len(rows) > 0 {
			for i, row := range rows {
				var bound []sql.Expression
				for _, item := range row {
					if e := b.bindExpression(item); e != nil {
						bound = append(bound, e)
					}
				}
				if len(stmt.TargetColumns) > 0 && len(bound) != len(stmt.TargetColumns) {
					b.addError(sql.ErrInsertValueCountMismatch.New(i+1, len(bound), len(stmt.TargetColumns)))
					continue
				}
				stmt.Values = append(stmt.Values, bound)
			}
		} else {
			stmt.Source = b.bindSelect(source)
		}
	}

	stmt.ConflictColumns = b.resolveTargetColumns(ins.OnConflictColumns(), stmt.Target)
	stmt.ReturningColumns = b.resolveTargetColumns(ins.ReturningColumns(), stmt.Target)

	stmt.tableRefs = copyScope(b.scope)
	b.collectDMLParameters(&stmt.statement, stmt.expressions())
	return stmt
}

func (s *InsertStatement) expressions() []sql.Expression {
	var exprs []sql.Expression
	for _, row := range s.Values {
		exprs = append(exprs, row...)
	}
	return exprs
}

func (b *Binder) bindUpdate(upd ast.Node) *UpdateStatement {
	stmt := NewUpdateStatement()

	stmt.Target = b.bindDMLTarget(upd)
	if stmt.Target == nil {
		return nil
	}

	for _, target := range upd.TargetList() {
		if target.Name == "" {
			b.addError(sql.ErrInvalidAST.New("SET clause without a column name"))
			continue
		}
		id, ok := stmt.Target.ColumnNameToID[target.Name]
		if !ok {
			b.addColumnNotFoundError(target.Name, stmt.Target.TableName)
			continue
		}
		value := b.bindExpression(target.Val)
		if value == nil {
			continue
		}
		b.checkAssignmentType(stmt.Target, id, value)
		stmt.Assignments = append(stmt.Assignments, Assignment{
			ColumnID: id,
			Column:   target.Name,
			Value:    value,
		})
	}

	if where := upd.Where(); where.Exists() {
		stmt.Where = b.bindExpression(where)
	}
	stmt.ReturningColumns = b.resolveTargetColumns(upd.ReturningColumns(), stmt.Target)

	stmt.tableRefs = copyScope(b.scope)
	exprs := []sql.Expression{stmt.Where}
	for _, a := range stmt.Assignments {
		exprs = append(exprs, a.Value)
	}
	b.collectDMLParameters(&stmt.statement, exprs)
	return stmt
}

// checkAssignmentType reports (but does not fail on) assignments whose
// value type is incompatible with the column.
func (b *Binder) checkAssignmentType(target *BoundTableRef, id sql.ColumnID, value sql.Expression) {
	col := target.Columns[int(id)-1]
	vt := value.Type()
	if vt == sql.Unknown || sql.TypesCompatibleForComparison(col.Type, vt) {
		return
	}
	// Non-fatal: the assignment still binds with the value expression as
	// bound; no conversion to text is applied to it.
	logrus.WithError(sql.ErrTypeMismatch.New(col.Type, vt)).
		WithField("column", col.Name).
		Warn("incompatible assignment type")
}

func (b *Binder) bindDelete(del ast.Node) *DeleteStatement {
	stmt := NewDeleteStatement()

	stmt.Target = b.bindDMLTarget(del)
	if stmt.Target == nil {
		return nil
	}
	if where := del.Where(); where.Exists() {
		stmt.Where = b.bindExpression(where)
	}
	stmt.ReturningColumns = b.resolveTargetColumns(del.ReturningColumns(), stmt.Target)

	stmt.tableRefs = copyScope(b.scope)
	b.collectDMLParameters(&stmt.statement, []sql.Expression{stmt.Where})
	return stmt
}

// collectDMLParameters gathers the bind variables of a DML statement into
// its parameter list, applying the inferred types.
func (b *Binder) collectDMLParameters(s *statement, exprs []sql.Expression) {
	byIndex := map[int]*BoundParameter{}
	for _, e := range exprs {
		sql.InspectExpr(e, func(e sql.Expression) bool {
			if bv, ok := e.(*expression.BindVar); ok {
				if typ, ok := b.paramTypes[bv.Index]; ok {
					bv.Typ = typ
				}
				byIndex[bv.Index] = &BoundParameter{Index: bv.Index, Type: bv.Typ, Nullable: true}
			}
			return true
		})
	}
	s.params = orderedParameters(byIndex)
}
