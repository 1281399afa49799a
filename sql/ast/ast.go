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

// Package ast is the narrow interface over the parse tree the PostgreSQL
// parser emits. The binder asks typed questions ("is this a ColumnRef?")
// through this package and never touches raw JSON keys itself.
package ast

import (
	pg_query "github.com/pganalyze/pg_query_go/v2"
	"github.com/valyala/fastjson"

	"github.com/space-rf-org/DB25-sub000/sql"
)

// Node wraps one node of the parse tree. The zero Node does not exist in
// the tree; Exists distinguishes it.
type Node struct {
	v *fastjson.Value
}

// Exists reports whether the node is present in the tree.
func (n Node) Exists() bool { return n.v != nil }

func (n Node) get(keys ...string) Node {
	if n.v == nil {
		return Node{}
	}
	return Node{v: n.v.Get(keys...)}
}

func (n Node) str(keys ...string) string {
	if n.v == nil {
		return ""
	}
	b := n.v.GetStringBytes(keys...)
	return string(b)
}

func (n Node) array(keys ...string) []Node {
	if n.v == nil {
		return nil
	}
	vals := n.v.GetArray(keys...)
	nodes := make([]Node, 0, len(vals))
	for _, v := range vals {
		nodes = append(nodes, Node{v: v})
	}
	return nodes
}

// Document is a parsed statement list.
type Document struct {
	stmts []Node
}

// Parse runs the PostgreSQL parser over the SQL text and wraps the
// resulting tree. Parser rejections come back as sql.ErrParseFailure.
func Parse(sqlText string) (*Document, error) {
	out, err := pg_query.ParseToJSON(sqlText)
	if err != nil {
		return nil, sql.ErrParseFailure.New(err.Error())
	}
	return ParseJSON(out)
}

// ParseJSON wraps a pre-parsed JSON tree. Tests use this entry point to
// feed hand-written trees without invoking the parser.
func ParseJSON(data string) (*Document, error) {
	var p fastjson.Parser
	v, err := p.Parse(data)
	if err != nil {
		return nil, sql.ErrInvalidAST.New(err.Error())
	}
	root := Node{v: v}
	stmts := root.array("stmts")
	if len(stmts) == 0 {
		return nil, sql.ErrInvalidAST.New("no statements found")
	}
	doc := &Document{}
	for _, s := range stmts {
		doc.stmts = append(doc.stmts, s.get("stmt"))
	}
	return doc, nil
}

// Statements returns the top-level statement nodes.
func (d *Document) Statements() []Node { return d.stmts }

// SelectStmt returns the select payload when the node is a SELECT.
func (n Node) SelectStmt() (Node, bool) {
	s := n.get("SelectStmt")
	return s, s.Exists()
}

// InsertStmt returns the insert payload when the node is an INSERT.
func (n Node) InsertStmt() (Node, bool) {
	s := n.get("InsertStmt")
	return s, s.Exists()
}

// UpdateStmt returns the update payload when the node is an UPDATE.
func (n Node) UpdateStmt() (Node, bool) {
	s := n.get("UpdateStmt")
	return s, s.Exists()
}

// DeleteStmt returns the delete payload when the node is a DELETE.
func (n Node) DeleteStmt() (Node, bool) {
	s := n.get("DeleteStmt")
	return s, s.Exists()
}

// stringValue unwraps {"String": {"sval": ...}} nodes, accepting the older
// "str" key variant for parser-version tolerance.
func stringValue(n Node) string {
	s := n.get("String")
	if !s.Exists() {
		if n.v != nil && n.v.Type() == fastjson.TypeString {
			b, _ := n.v.StringBytes()
			return string(b)
		}
		return ""
	}
	if v := s.str("sval"); v != "" {
		return v
	}
	return s.str("str")
}

// TargetList returns the SELECT list (or UPDATE SET list) entries.
func (n Node) TargetList() []ResTarget {
	var targets []ResTarget
	for _, t := range n.array("targetList") {
		rt := t.get("ResTarget")
		if !rt.Exists() {
			continue
		}
		targets = append(targets, ResTarget{Name: rt.str("name"), Val: rt.get("val")})
	}
	return targets
}

// ResTarget is one entry of a target list: an optional output name and the
// expression.
type ResTarget struct {
	Name string
	Val  Node
}

// FromClause returns the FROM entries in declaration order.
func (n Node) FromClause() []Node { return n.array("fromClause") }

// Where returns the WHERE clause expression.
func (n Node) Where() Node { return n.get("whereClause") }

// GroupClause returns the GROUP BY expressions.
func (n Node) GroupClause() []Node { return n.array("groupClause") }

// Having returns the HAVING clause expression.
func (n Node) Having() Node { return n.get("havingClause") }

// SortClause returns the ORDER BY entries.
func (n Node) SortClause() []SortBy {
	var keys []SortBy
	for _, s := range n.array("sortClause") {
		sb := s.get("SortBy")
		if !sb.Exists() {
			continue
		}
		keys = append(keys, SortBy{
			Expr:       sb.get("node"),
			Descending: sb.str("sortby_dir") == "SORTBY_DESC",
			NullsFirst: sb.str("sortby_nulls") == "SORTBY_NULLS_FIRST",
		})
	}
	return keys
}

// SortBy is one ORDER BY key.
type SortBy struct {
	Expr       Node
	Descending bool
	NullsFirst bool
}

// SetOperation returns the set-operation parts of a SELECT whose op is a
// UNION / INTERSECT / EXCEPT. The arms are bare SelectStmt payloads.
func (n Node) SetOperation() (SetOperation, bool) {
	op := n.str("op")
	if op == "" || op == "SETOP_NONE" {
		return SetOperation{}, false
	}
	return SetOperation{
		Op:   op,
		All:  n.v.GetBool("all"),
		LArg: n.get("larg"),
		RArg: n.get("rarg"),
	}, true
}

// SetOperation is a UNION / INTERSECT / EXCEPT over two SELECT arms.
type SetOperation struct {
	Op   string
	All  bool
	LArg Node
	RArg Node
}

// LimitCount returns the LIMIT expression.
func (n Node) LimitCount() Node { return n.get("limitCount") }

// LimitOffset returns the OFFSET expression.
func (n Node) LimitOffset() Node { return n.get("limitOffset") }

// ValuesLists returns the VALUES rows of a select-shaped INSERT source.
func (n Node) ValuesLists() [][]Node {
	var rows [][]Node
	for _, row := range n.array("valuesLists") {
		items := row.get("List").array("items")
		if items == nil {
			// Older parse trees carry the row as a bare array.
			items = row.array()
		}
		rows = append(rows, items)
	}
	return rows
}

// WithClause returns the CTE list attached to a statement.
func (n Node) WithClause() (WithClause, bool) {
	w := n.get("withClause")
	if !w.Exists() {
		return WithClause{}, false
	}
	wc := WithClause{Recursive: w.v.GetBool("recursive")}
	for _, c := range w.array("ctes") {
		cte := c.get("CommonTableExpr")
		if !cte.Exists() {
			continue
		}
		def := CommonTableExpr{
			Name:      cte.str("ctename"),
			Recursive: wc.Recursive,
			Query:     cte.get("ctequery"),
		}
		for _, col := range cte.array("aliascolnames") {
			def.ColumnNames = append(def.ColumnNames, stringValue(col))
		}
		wc.CTEs = append(wc.CTEs, def)
	}
	return wc, true
}

// WithClause is a statement's WITH clause.
type WithClause struct {
	Recursive bool
	CTEs      []CommonTableExpr
}

// CommonTableExpr is one CTE declaration.
type CommonTableExpr struct {
	Name        string
	ColumnNames []string
	Recursive   bool
	Query       Node
}

// RangeVar returns the table reference when the node is one.
func (n Node) RangeVar() (RangeVar, bool) {
	rv := n.get("RangeVar")
	if !rv.Exists() {
		return RangeVar{}, false
	}
	return RangeVar{
		RelName: rv.str("relname"),
		Alias:   rv.str("alias", "aliasname"),
	}, true
}

// RangeVar is a table reference with an optional alias.
type RangeVar struct {
	RelName string
	Alias   string
}

// JoinExpr returns the join payload when the node is one.
func (n Node) JoinExpr() (JoinExpr, bool) {
	j := n.get("JoinExpr")
	if !j.Exists() {
		return JoinExpr{}, false
	}
	return JoinExpr{
		JoinType: j.str("jointype"),
		LArg:     j.get("larg"),
		RArg:     j.get("rarg"),
		Quals:    j.get("quals"),
	}, true
}

// JoinExpr is a join between two FROM entries.
type JoinExpr struct {
	JoinType string
	LArg     Node
	RArg     Node
	Quals    Node
}

// ColumnRef returns the column reference when the node is one. Star is set
// for a bare or qualified `*`.
func (n Node) ColumnRef() (ColumnRef, bool) {
	cr := n.get("ColumnRef")
	if !cr.Exists() {
		return ColumnRef{}, false
	}
	ref := ColumnRef{}
	for _, f := range cr.array("fields") {
		if f.get("A_Star").Exists() {
			ref.Star = true
			continue
		}
		ref.Fields = append(ref.Fields, stringValue(f))
	}
	return ref, true
}

// ColumnRef is a possibly-qualified column reference.
type ColumnRef struct {
	Fields []string
	Star   bool
}

// ConstKind distinguishes the literal subtypes of A_Const.
type ConstKind int

const (
	NullConst ConstKind = iota
	IntConst
	FloatConst
	StringConst
)

// AConst returns the literal when the node is one, with the value rendered
// to canonical text.
func (n Node) AConst() (AConst, bool) {
	c := n.get("A_Const")
	if !c.Exists() {
		return AConst{}, false
	}
	val := c.get("val")
	if !val.Exists() {
		// Newer parser versions flatten the value into the node itself.
		val = c
	}
	if iv := val.get("Integer"); iv.Exists() {
		return AConst{Kind: IntConst, Text: iv.get("ival").rawNumber()}, true
	}
	if fv := val.get("Float"); fv.Exists() {
		if s := fv.str("str"); s != "" {
			return AConst{Kind: FloatConst, Text: s}, true
		}
		return AConst{Kind: FloatConst, Text: fv.str("fval")}, true
	}
	if sv := val.get("String"); sv.Exists() {
		text := sv.str("sval")
		if text == "" {
			text = sv.str("str")
		}
		return AConst{Kind: StringConst, Text: text}, true
	}
	return AConst{Kind: NullConst}, true
}

func (n Node) rawNumber() string {
	if n.v == nil {
		return "0"
	}
	return n.v.String()
}

// AConst is a literal constant.
type AConst struct {
	Kind ConstKind
	Text string
}

// ParamRef returns the 1-based parameter number when the node is a $N
// placeholder.
func (n Node) ParamRef() (int, bool) {
	p := n.get("ParamRef")
	if !p.Exists() {
		return 0, false
	}
	return p.v.GetInt("number"), true
}

// AExpr returns the infix expression when the node is one. Name is the
// operator text ("=", "<", "~~", ...).
func (n Node) AExpr() (AExpr, bool) {
	e := n.get("A_Expr")
	if !e.Exists() {
		return AExpr{}, false
	}
	expr := AExpr{LExpr: e.get("lexpr"), RExpr: e.get("rexpr")}
	names := e.array("name")
	if len(names) > 0 {
		expr.Name = stringValue(names[len(names)-1])
	}
	return expr, true
}

// AExpr is an infix operator expression.
type AExpr struct {
	Name  string
	LExpr Node
	RExpr Node
}

// BoolExpr returns the boolean connective when the node is one. Op is
// "AND_EXPR", "OR_EXPR" or "NOT_EXPR".
func (n Node) BoolExpr() (BoolExpr, bool) {
	b := n.get("BoolExpr")
	if !b.Exists() {
		return BoolExpr{}, false
	}
	return BoolExpr{Op: b.str("boolop"), Args: b.array("args")}, true
}

// BoolExpr is an AND/OR/NOT connective.
type BoolExpr struct {
	Op   string
	Args []Node
}

// FuncCall returns the function call when the node is one.
func (n Node) FuncCall() (FuncCall, bool) {
	f := n.get("FuncCall")
	if !f.Exists() {
		return FuncCall{}, false
	}
	call := FuncCall{Args: f.array("args"), Star: f.v.GetBool("agg_star")}
	names := f.array("funcname")
	if len(names) > 0 {
		call.Name = stringValue(names[len(names)-1])
	}
	return call, true
}

// FuncCall is a function invocation. Star marks count(*).
type FuncCall struct {
	Name string
	Args []Node
	Star bool
}

// SubLink returns the inner subselect when the node is a subquery
// expression.
func (n Node) SubLink() (Node, bool) {
	s := n.get("SubLink")
	if !s.Exists() {
		return Node{}, false
	}
	return s.get("subselect"), true
}

// Relation returns the target table of a DML statement.
func (n Node) Relation() (RangeVar, bool) {
	r := n.get("relation")
	if !r.Exists() {
		return RangeVar{}, false
	}
	return RangeVar{RelName: r.str("relname"), Alias: r.str("alias", "aliasname")}, true
}

// InsertColumns returns the named target columns of an INSERT.
func (n Node) InsertColumns() []string {
	var cols []string
	for _, c := range n.array("cols") {
		rt := c.get("ResTarget")
		if rt.Exists() {
			cols = append(cols, rt.str("name"))
		}
	}
	return cols
}

// InsertSource returns the selectStmt payload of an INSERT; its
// ValuesLists are non-empty for a VALUES insert.
func (n Node) InsertSource() (Node, bool) {
	s := n.get("selectStmt")
	if !s.Exists() {
		return Node{}, false
	}
	inner, ok := s.SelectStmt()
	if !ok {
		return Node{}, false
	}
	return inner, true
}

// OnConflictColumns returns the inference columns of an INSERT ... ON
// CONFLICT clause.
func (n Node) OnConflictColumns() []string {
	var cols []string
	infer := n.get("onConflictClause", "infer")
	for _, e := range infer.array("indexElems") {
		ie := e.get("IndexElem")
		if ie.Exists() {
			cols = append(cols, ie.str("name"))
		}
	}
	return cols
}

// ReturningColumns returns the column names of a RETURNING list; non-column
// expressions are skipped.
func (n Node) ReturningColumns() []string {
	var cols []string
	for _, t := range n.array("returningList") {
		rt := t.get("ResTarget")
		if !rt.Exists() {
			continue
		}
		if ref, ok := rt.get("val").ColumnRef(); ok && len(ref.Fields) > 0 {
			cols = append(cols, ref.Fields[len(ref.Fields)-1])
		}
	}
	return cols
}
