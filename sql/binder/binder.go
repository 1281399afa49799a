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

// Package binder turns the parser's AST into bound statements: every
// table and column identifier resolved against the schema registry, every
// expression typed. User errors never abort the traversal; they accumulate
// and the binder returns nil when any of them prevented a valid tree.
package binder

import (
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/space-rf-org/DB25-sub000/sql"
	"github.com/space-rf-org/DB25-sub000/sql/ast"
	"github.com/space-rf-org/DB25-sub000/sql/expression"
)

// Binder binds one statement at a time. It is not safe for concurrent use;
// each compilation should own its binder or calls must be serialized.
type Binder struct {
	registry *sql.Registry
	errors   []*Error

	// Current scope: every name (table name or alias) visible to column
	// resolution, plus the same references in declaration order for
	// deterministic `*` expansion and suggestion lists.
	scope     map[string]*BoundTableRef
	scopeList []*BoundTableRef

	// CTE state, cleared at the start of every top-level bind.
	ctes        []*CTEDefinition
	cteByName   map[string]*CTEDefinition
	nextTempID  sql.TableID

	// Parameter types inferred from context; the last context wins.
	paramTypes map[int]sql.ColumnType
}

// New creates a binder over the given registry.
func New(registry *sql.Registry) *Binder {
	b := &Binder{registry: registry}
	b.resetState()
	return b
}

func (b *Binder) resetState() {
	b.scope = make(map[string]*BoundTableRef)
	b.scopeList = nil
	b.ctes = nil
	b.cteByName = make(map[string]*CTEDefinition)
	b.nextTempID = sql.VirtualTableIDBase
	b.paramTypes = make(map[int]sql.ColumnType)
}

// Errors returns the errors recorded since the last ClearErrors.
func (b *Binder) Errors() []*Error { return b.errors }

// ClearErrors drops accumulated errors.
func (b *Binder) ClearErrors() { b.errors = nil }

// Bind parses the SQL text and binds its first statement. On any error it
// returns nil and the error list is non-empty.
func (b *Binder) Bind(sqlText string) Statement {
	doc, err := ast.Parse(sqlText)
	if err != nil {
		b.addError(err)
		return nil
	}
	return b.BindDocument(doc)
}

// BindDocument binds the first statement of a parsed document.
func (b *Binder) BindDocument(doc *ast.Document) Statement {
	stmts := doc.Statements()
	if len(stmts) == 0 {
		b.addError(sql.ErrInvalidAST.New("no statements found"))
		return nil
	}
	return b.BindAST(stmts[0])
}

// BindAST dispatches on the statement type and binds it. CTE state and
// parameter inference are reset per call, so binding the same tree twice
// yields structurally identical results.
func (b *Binder) BindAST(stmt ast.Node) Statement {
	b.resetState()
	before := len(b.errors)

	var bound Statement
	switch {
	case isSelect(stmt):
		sel, _ := stmt.SelectStmt()
		if s := b.bindSelect(sel); s != nil {
			bound = s
		}
	case isInsert(stmt):
		ins, _ := stmt.InsertStmt()
		if s := b.bindInsert(ins); s != nil {
			bound = s
		}
	case isUpdate(stmt):
		upd, _ := stmt.UpdateStmt()
		if s := b.bindUpdate(upd); s != nil {
			bound = s
		}
	case isDelete(stmt):
		del, _ := stmt.DeleteStmt()
		if s := b.bindDelete(del); s != nil {
			bound = s
		}
	default:
		b.addError(sql.ErrUnsupportedStatement.New())
	}

	if len(b.errors) > before {
		return nil
	}
	return bound
}

func isSelect(n ast.Node) bool { _, ok := n.SelectStmt(); return ok }
func isInsert(n ast.Node) bool { _, ok := n.InsertStmt(); return ok }
func isUpdate(n ast.Node) bool { _, ok := n.UpdateStmt(); return ok }
func isDelete(n ast.Node) bool { _, ok := n.DeleteStmt(); return ok }

// bindSelect binds a SELECT in clause order: CTEs, FROM, JOINs, the select
// list (only after the scope is complete), WHERE, and the trailing
// clauses.
func (b *Binder) bindSelect(sel ast.Node) *SelectStatement {
	stmt := NewSelectStatement()

	if with, ok := sel.WithClause(); ok {
		b.bindWithClause(with)
	}

	for _, entry := range sel.FromClause() {
		b.bindFromEntry(entry, stmt)
	}

	b.bindSelectList(sel.TargetList(), stmt)

	if where := sel.Where(); where.Exists() {
		stmt.Where = b.bindExpression(where)
	}

	for _, g := range sel.GroupClause() {
		if e := b.bindExpression(g); e != nil {
			stmt.GroupBy = append(stmt.GroupBy, e)
		}
	}
	if having := sel.Having(); having.Exists() {
		stmt.Having = b.bindExpression(having)
	}
	for _, key := range sel.SortClause() {
		e := b.bindExpression(key.Expr)
		if e == nil {
			continue
		}
		stmt.OrderBy = append(stmt.OrderBy, OrderByKey{
			Expr:       e,
			Ascending:  !key.Descending,
			NullsFirst: key.NullsFirst,
		})
	}
	if count := sel.LimitCount(); count.Exists() {
		stmt.Limit = b.bindLimitValue(count)
	}
	if offset := sel.LimitOffset(); offset.Exists() {
		stmt.Offset = b.bindLimitValue(offset)
	}

	stmt.tableRefs = copyScope(b.scope)
	b.collectParameters(stmt)
	stmt.CTEs = b.ctes

	logrus.WithFields(logrus.Fields{
		"tables":  len(stmt.tableRefs),
		"columns": len(stmt.SelectList),
		"ctes":    len(stmt.CTEs),
	}).Debug("bound SELECT statement")

	return stmt
}

// bindFromEntry handles one FROM clause entry, which is either a table
// reference or a join tree. Join trees are flattened left to right.
func (b *Binder) bindFromEntry(entry ast.Node, stmt *SelectStatement) {
	if join, ok := entry.JoinExpr(); ok {
		b.bindFromEntry(join.LArg, stmt)

		right := b.bindTableNode(join.RArg)
		if right == nil {
			b.addError(sql.ErrInvalidAST.New("failed to bind JOIN table"))
			return
		}
		b.addToScope(right)
		stmt.JoinTables = append(stmt.JoinTables, right)
		stmt.JoinKinds = append(stmt.JoinKinds, sql.JoinKindFromAST(join.JoinType))
		// Quals bound after both sides are in scope.
		var cond sql.Expression
		if join.Quals.Exists() {
			cond = b.bindExpression(join.Quals)
		}
		stmt.JoinConditions = append(stmt.JoinConditions, cond)
		return
	}

	ref := b.bindTableNode(entry)
	if ref == nil {
		return
	}
	b.addToScope(ref)
	if stmt.From == nil {
		stmt.From = ref
	} else {
		// A bare second FROM entry is an implicit cross join.
		stmt.JoinTables = append(stmt.JoinTables, ref)
		stmt.JoinKinds = append(stmt.JoinKinds, sql.CrossJoin)
		stmt.JoinConditions = append(stmt.JoinConditions, nil)
	}
}

func (b *Binder) addToScope(ref *BoundTableRef) {
	b.scope[ref.TableName] = ref
	if ref.Alias != "" {
		b.scope[ref.Alias] = ref
	}
	b.scopeList = append(b.scopeList, ref)
}

// bindTableNode resolves a RangeVar to a bound reference. CTEs shadow real
// tables of the same name.
func (b *Binder) bindTableNode(node ast.Node) *BoundTableRef {
	rv, ok := node.RangeVar()
	if !ok {
		return nil
	}
	if rv.RelName == "" {
		b.addError(sql.ErrInvalidAST.New("empty table name in table reference"))
		return nil
	}
	return b.bindTableByName(rv.RelName, rv.Alias)
}

func (b *Binder) bindTableByName(name, alias string) *BoundTableRef {
	if cte, ok := b.cteByName[name]; ok {
		return cteTableRef(cte, alias)
	}

	id, ok := b.registry.ResolveTable(name)
	if !ok {
		b.addTableNotFoundError(name)
		return nil
	}
	def := b.registry.TableDefinition(id)
	ref := &BoundTableRef{
		TableID:        id,
		TableName:      name,
		Alias:          alias,
		ColumnNameToID: make(map[string]sql.ColumnID, len(def.Columns)),
		Columns:        append([]sql.Column(nil), def.Columns...),
		Indexes:        b.registry.TableIndexes(id),
	}
	for i, col := range def.Columns {
		ref.ColumnNameToID[col.Name] = sql.ColumnID(i + 1)
	}
	return ref
}

// cteTableRef builds a reference over a CTE's inferred schema. Column IDs
// are 0-based positions in the CTE column list, not registry IDs.
func cteTableRef(cte *CTEDefinition, alias string) *BoundTableRef {
	ref := &BoundTableRef{
		TableID:        cte.TempTableID,
		TableName:      cte.Name,
		Alias:          alias,
		ColumnNameToID: make(map[string]sql.ColumnID, len(cte.ColumnNames)),
	}
	for i, name := range cte.ColumnNames {
		ref.ColumnNameToID[name] = sql.ColumnID(i)
		typ := sql.Text
		if i < len(cte.ColumnTypes) {
			typ = cte.ColumnTypes[i]
		}
		ref.Columns = append(ref.Columns, sql.Column{Name: name, Type: typ, Nullable: true})
	}
	return ref
}

// bindSelectList binds the target list, expanding `*` to every column of
// every in-scope table in declaration order.
func (b *Binder) bindSelectList(targets []ast.ResTarget, stmt *SelectStatement) {
	for _, target := range targets {
		if ref, ok := target.Val.ColumnRef(); ok && ref.Star && len(ref.Fields) == 0 {
			stmt.Star = true
			for _, tref := range b.scopeList {
				for _, col := range tref.Columns {
					id := tref.ColumnNameToID[col.Name]
					stmt.SelectList = append(stmt.SelectList,
						expression.NewGetField(tref.TableID, id, col.Name, col.Type, col.Nullable))
					stmt.OutputNames = append(stmt.OutputNames, col.Name)
				}
			}
			continue
		}
		if e := b.bindExpression(target.Val); e != nil {
			stmt.SelectList = append(stmt.SelectList, e)
			stmt.OutputNames = append(stmt.OutputNames, outputName(target, e))
		} else {
			b.addError(sql.ErrInvalidAST.New("failed to bind SELECT expression"))
		}
	}
}

// outputName picks the display name of a select-list entry: the AS alias
// when given, the column name for plain references, "" otherwise.
func outputName(target ast.ResTarget, e sql.Expression) string {
	if target.Name != "" {
		return target.Name
	}
	if f, ok := e.(*expression.GetField); ok {
		return f.Name
	}
	return ""
}

// bindExpression dispatches on the AST node shape.
func (b *Binder) bindExpression(node ast.Node) sql.Expression {
	switch {
	case hasColumnRef(node):
		ref, _ := node.ColumnRef()
		return b.bindColumnRef(ref)
	case hasAConst(node):
		c, _ := node.AConst()
		return bindConstant(c)
	case hasParamRef(node):
		n, _ := node.ParamRef()
		return b.bindParameter(n)
	case hasFuncCall(node):
		f, _ := node.FuncCall()
		return b.bindFunctionCall(f)
	case hasAExpr(node):
		e, _ := node.AExpr()
		return b.bindAExpr(e)
	case hasBoolExpr(node):
		e, _ := node.BoolExpr()
		return b.bindBoolExpr(e)
	case hasSubLink(node):
		inner, _ := node.SubLink()
		return b.bindSubquery(inner)
	}
	b.addError(sql.ErrInvalidAST.New("unsupported expression node"))
	return nil
}

func hasColumnRef(n ast.Node) bool { _, ok := n.ColumnRef(); return ok }
func hasAConst(n ast.Node) bool    { _, ok := n.AConst(); return ok }
func hasParamRef(n ast.Node) bool  { _, ok := n.ParamRef(); return ok }
func hasFuncCall(n ast.Node) bool  { _, ok := n.FuncCall(); return ok }
func hasAExpr(n ast.Node) bool     { _, ok := n.AExpr(); return ok }
func hasBoolExpr(n ast.Node) bool  { _, ok := n.BoolExpr(); return ok }
func hasSubLink(n ast.Node) bool   { _, ok := n.SubLink(); return ok }

// bindColumnRef resolves a column reference against the current scope.
// Unqualified lookups are restricted to in-scope tables, never the global
// index.
func (b *Binder) bindColumnRef(ref ast.ColumnRef) sql.Expression {
	switch len(ref.Fields) {
	case 1:
		name := ref.Fields[0]
		var matches []*BoundTableRef
		for _, tref := range b.scopeList {
			if _, ok := tref.ColumnNameToID[name]; ok {
				matches = append(matches, tref)
			}
		}
		switch len(matches) {
		case 0:
			b.addColumnNotFoundError(name, "")
			return nil
		case 1:
			return fieldFromRef(matches[0], name, "")
		default:
			b.addAmbiguousColumnError(name, matches)
			return nil
		}
	case 2:
		qualifier, name := ref.Fields[0], ref.Fields[1]
		tref, ok := b.scope[qualifier]
		if !ok {
			// A qualifier outside the FROM scope may still be a CTE or a
			// real table; bindTableByName reports the miss itself.
			tref = b.bindTableByName(qualifier, "")
			if tref == nil {
				return nil
			}
		}
		if _, ok := tref.ColumnNameToID[name]; !ok {
			b.addColumnNotFoundError(name, tref.Name())
			return nil
		}
		return fieldFromRef(tref, name, qualifier)
	default:
		b.addError(sql.ErrInvalidAST.New("invalid column reference format"))
		return nil
	}
}

func fieldFromRef(ref *BoundTableRef, name, qualifier string) sql.Expression {
	id := ref.ColumnNameToID[name]
	var col sql.Column
	for _, c := range ref.Columns {
		if c.Name == name {
			col = c
			break
		}
	}
	if qualifier == "" {
		return expression.NewGetField(ref.TableID, id, name, col.Type, col.Nullable)
	}
	return expression.NewGetFieldWithTable(ref.TableID, id, qualifier, name, col.Type, col.Nullable)
}

// bindConstant maps literal subtypes onto column types. Constants are
// non-nullable.
func bindConstant(c ast.AConst) sql.Expression {
	switch c.Kind {
	case ast.IntConst:
		return expression.NewLiteral(c.Text, sql.Integer)
	case ast.FloatConst:
		return expression.NewLiteral(c.Text, sql.Decimal)
	case ast.StringConst:
		return expression.NewLiteral(c.Text, sql.Text)
	default:
		return expression.NewLiteral("", sql.Text)
	}
}

func (b *Binder) bindParameter(index int) sql.Expression {
	bv := expression.NewBindVar(index)
	if typ, ok := b.paramTypes[index]; ok {
		bv.Typ = typ
	}
	return bv
}

func (b *Binder) bindFunctionCall(call ast.FuncCall) sql.Expression {
	args := make([]sql.Expression, 0, len(call.Args))
	for _, arg := range call.Args {
		if e := b.bindExpression(arg); e != nil {
			args = append(args, e)
		}
	}
	f := expression.NewFunction(call.Name, args...)
	f.Star = call.Star
	return f
}

// normalizeOperator rewrites parser operator spellings into the planner's
// canonical ones.
func normalizeOperator(op string) string {
	switch op {
	case "~~":
		return "LIKE"
	case "!~~":
		return "NOT LIKE"
	}
	return op
}

func (b *Binder) bindAExpr(e ast.AExpr) sql.Expression {
	left := b.bindExpression(e.LExpr)
	right := b.bindExpression(e.RExpr)
	if left == nil || right == nil {
		return nil
	}
	op := normalizeOperator(e.Name)

	b.inferParameterTypes(op, left, right)

	typ := b.binaryOpType(op, left, right)
	return expression.NewBinaryOp(op, left, right, typ)
}

func (b *Binder) binaryOpType(op string, left, right sql.Expression) sql.ColumnType {
	switch op {
	case "=", "<>", "!=", "<", ">", "<=", ">=", "LIKE", "NOT LIKE", "AND", "OR":
		return sql.Boolean
	case "+", "-", "*", "/", "%":
		return b.registry.CommonType(left.Type(), right.Type())
	default:
		return sql.Text
	}
}

// inferParameterTypes refines a bind variable's type from the typed
// expression on the other side of a comparison. When the same parameter
// appears in several contexts the last one wins.
func (b *Binder) inferParameterTypes(op string, left, right sql.Expression) {
	switch op {
	case "=", "<>", "!=", "<", ">", "<=", ">=", "LIKE", "NOT LIKE":
	default:
		return
	}
	if bv, ok := left.(*expression.BindVar); ok && right.Type() != sql.Unknown {
		bv.Typ = right.Type()
		b.paramTypes[bv.Index] = right.Type()
	}
	if bv, ok := right.(*expression.BindVar); ok && left.Type() != sql.Unknown {
		bv.Typ = left.Type()
		b.paramTypes[bv.Index] = left.Type()
	}
}

// bindBoolExpr folds AND/OR argument lists left-associatively; NOT becomes
// a unary node.
func (b *Binder) bindBoolExpr(e ast.BoolExpr) sql.Expression {
	switch e.Op {
	case "NOT_EXPR":
		if len(e.Args) != 1 {
			b.addError(sql.ErrInvalidAST.New("NOT expression must have one argument"))
			return nil
		}
		child := b.bindExpression(e.Args[0])
		if child == nil {
			return nil
		}
		return expression.NewNot(child)
	case "AND_EXPR", "OR_EXPR":
		op := "AND"
		if e.Op == "OR_EXPR" {
			op = "OR"
		}
		var acc sql.Expression
		for _, arg := range e.Args {
			bound := b.bindExpression(arg)
			if bound == nil {
				return nil
			}
			if acc == nil {
				acc = bound
				continue
			}
			acc = expression.NewBinaryOp(op, acc, bound, sql.Boolean)
		}
		return acc
	default:
		b.addError(sql.ErrInvalidAST.New("unknown boolean operator " + e.Op))
		return nil
	}
}

// bindSubquery binds an inner SELECT in a child scope layered over the
// current one, so correlated references still resolve.
func (b *Binder) bindSubquery(subselect ast.Node) sql.Expression {
	sel, ok := subselect.SelectStmt()
	if !ok {
		b.addError(sql.ErrInvalidAST.New("subquery is not a SELECT"))
		return nil
	}
	savedScope, savedList := b.scope, b.scopeList
	b.scope = copyScope(savedScope)
	b.scopeList = append([]*BoundTableRef(nil), savedList...)
	inner := b.bindSelect(sel)
	b.scope, b.scopeList = savedScope, savedList
	if inner == nil {
		return nil
	}
	return NewSubquery(inner)
}

// bindLimitValue binds a LIMIT/OFFSET expression and extracts its constant
// value. Non-constant limits are left unset.
func (b *Binder) bindLimitValue(node ast.Node) *int {
	e := b.bindExpression(node)
	lit, ok := e.(*expression.Literal)
	if !ok {
		return nil
	}
	v, err := strconv.Atoi(lit.Value)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

// collectParameters walks every expression of the statement, refines bind
// variables with the inferred types, and records the parameter list in
// index order.
func (b *Binder) collectParameters(stmt *SelectStatement) {
	byIndex := map[int]*BoundParameter{}
	collect := func(e sql.Expression) {
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
	for _, e := range stmt.SelectList {
		collect(e)
	}
	collect(stmt.Where)
	for _, e := range stmt.JoinConditions {
		collect(e)
	}
	for _, e := range stmt.GroupBy {
		collect(e)
	}
	collect(stmt.Having)
	for _, key := range stmt.OrderBy {
		collect(key.Expr)
	}

	stmt.params = orderedParameters(byIndex)
}

func orderedParameters(byIndex map[int]*BoundParameter) []*BoundParameter {
	max := 0
	for i := range byIndex {
		if i > max {
			max = i
		}
	}
	var params []*BoundParameter
	for i := 1; i <= max; i++ {
		if p, ok := byIndex[i]; ok {
			params = append(params, p)
		}
	}
	return params
}

func copyScope(scope map[string]*BoundTableRef) map[string]*BoundTableRef {
	out := make(map[string]*BoundTableRef, len(scope))
	for k, v := range scope {
		out[k] = v
	}
	return out
}
