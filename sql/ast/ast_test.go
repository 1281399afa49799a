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

package ast

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/space-rf-org/DB25-sub000/sql"
)

func mustParse(t *testing.T, doc string) Node {
	t.Helper()
	d, err := ParseJSON(doc)
	require.NoError(t, err)
	require.NotEmpty(t, d.Statements())
	return d.Statements()[0]
}

func TestParseJSONErrors(t *testing.T) {
	require := require.New(t)

	_, err := ParseJSON("{not json")
	require.Error(err)
	require.True(sql.ErrInvalidAST.Is(err))

	_, err = ParseJSON(`{"version": 130000}`)
	require.Error(err)
	require.True(sql.ErrInvalidAST.Is(err))
}

func TestSelectShape(t *testing.T) {
	require := require.New(t)

	stmt := mustParse(t, `{"stmts":[{"stmt":{"SelectStmt":{
		"targetList":[
			{"ResTarget":{"val":{"ColumnRef":{"fields":[{"String":{"sval":"id"}}]}}}},
			{"ResTarget":{"name":"n","val":{"ColumnRef":{"fields":[{"String":{"str":"name"}}]}}}}
		],
		"fromClause":[{"RangeVar":{"relname":"users","alias":{"aliasname":"u"}}}],
		"whereClause":{"A_Expr":{"name":[{"String":{"sval":">"}}],
			"lexpr":{"ColumnRef":{"fields":[{"String":{"sval":"id"}}]}},
			"rexpr":{"A_Const":{"val":{"Integer":{"ival":10}}}}}},
		"sortClause":[{"SortBy":{"node":{"ColumnRef":{"fields":[{"String":{"sval":"name"}}]}},
			"sortby_dir":"SORTBY_DESC","sortby_nulls":"SORTBY_NULLS_FIRST"}}],
		"limitCount":{"A_Const":{"val":{"Integer":{"ival":5}}}}
	}}}]}`)

	sel, ok := stmt.SelectStmt()
	require.True(ok)

	targets := sel.TargetList()
	require.Len(targets, 2)
	require.Equal("", targets[0].Name)
	require.Equal("n", targets[1].Name)

	// Both sval and str spellings decode.
	ref, ok := targets[0].Val.ColumnRef()
	require.True(ok)
	require.Equal([]string{"id"}, ref.Fields)
	ref, ok = targets[1].Val.ColumnRef()
	require.True(ok)
	require.Equal([]string{"name"}, ref.Fields)

	from := sel.FromClause()
	require.Len(from, 1)
	rv, ok := from[0].RangeVar()
	require.True(ok)
	require.Equal("users", rv.RelName)
	require.Equal("u", rv.Alias)

	where := sel.Where()
	require.True(where.Exists())
	expr, ok := where.AExpr()
	require.True(ok)
	require.Equal(">", expr.Name)
	c, ok := expr.RExpr.AConst()
	require.True(ok)
	require.Equal(IntConst, c.Kind)
	require.Equal("10", c.Text)

	keys := sel.SortClause()
	require.Len(keys, 1)
	require.True(keys[0].Descending)
	require.True(keys[0].NullsFirst)

	limit, ok := sel.LimitCount().AConst()
	require.True(ok)
	require.Equal("5", limit.Text)
}

func TestStarAndConstKinds(t *testing.T) {
	require := require.New(t)

	stmt := mustParse(t, `{"stmts":[{"stmt":{"SelectStmt":{
		"targetList":[{"ResTarget":{"val":{"ColumnRef":{"fields":[{"A_Star":{}}]}}}}],
		"whereClause":{"BoolExpr":{"boolop":"AND_EXPR","args":[
			{"A_Expr":{"name":[{"String":{"sval":"="}}],
				"lexpr":{"ColumnRef":{"fields":[{"String":{"sval":"a"}}]}},
				"rexpr":{"A_Const":{"val":{"Float":{"str":"3.14"}}}}}},
			{"A_Expr":{"name":[{"String":{"sval":"~~"}}],
				"lexpr":{"ColumnRef":{"fields":[{"String":{"sval":"b"}}]}},
				"rexpr":{"A_Const":{"val":{"String":{"str":"A%"}}}}}}
		]}}
	}}}]}`)

	sel, _ := stmt.SelectStmt()
	ref, ok := sel.TargetList()[0].Val.ColumnRef()
	require.True(ok)
	require.True(ref.Star)
	require.Empty(ref.Fields)

	be, ok := sel.Where().BoolExpr()
	require.True(ok)
	require.Equal("AND_EXPR", be.Op)
	require.Len(be.Args, 2)

	first, _ := be.Args[0].AExpr()
	c, _ := first.RExpr.AConst()
	require.Equal(FloatConst, c.Kind)
	require.Equal("3.14", c.Text)

	second, _ := be.Args[1].AExpr()
	require.Equal("~~", second.Name)
	c, _ = second.RExpr.AConst()
	require.Equal(StringConst, c.Kind)
	require.Equal("A%", c.Text)
}

func TestJoinAndFuncAndParam(t *testing.T) {
	require := require.New(t)

	stmt := mustParse(t, `{"stmts":[{"stmt":{"SelectStmt":{
		"targetList":[{"ResTarget":{"val":{"FuncCall":{
			"funcname":[{"String":{"sval":"count"}}],"agg_star":true}}}}],
		"fromClause":[{"JoinExpr":{"jointype":"JOIN_LEFT",
			"larg":{"RangeVar":{"relname":"users"}},
			"rarg":{"RangeVar":{"relname":"orders"}},
			"quals":{"A_Expr":{"name":[{"String":{"sval":"="}}],
				"lexpr":{"ColumnRef":{"fields":[{"String":{"sval":"users"}},{"String":{"sval":"id"}}]}},
				"rexpr":{"ParamRef":{"number":1}}}}}}]
	}}}]}`)

	sel, _ := stmt.SelectStmt()
	call, ok := sel.TargetList()[0].Val.FuncCall()
	require.True(ok)
	require.Equal("count", call.Name)
	require.True(call.Star)

	join, ok := sel.FromClause()[0].JoinExpr()
	require.True(ok)
	require.Equal("JOIN_LEFT", join.JoinType)
	rv, _ := join.LArg.RangeVar()
	require.Equal("users", rv.RelName)

	quals, _ := join.Quals.AExpr()
	ref, _ := quals.LExpr.ColumnRef()
	require.Equal([]string{"users", "id"}, ref.Fields)
	n, ok := quals.RExpr.ParamRef()
	require.True(ok)
	require.Equal(1, n)
}

func TestWithClauseAndSetOperation(t *testing.T) {
	require := require.New(t)

	stmt := mustParse(t, `{"stmts":[{"stmt":{"SelectStmt":{
		"withClause":{"recursive":true,"ctes":[{"CommonTableExpr":{
			"ctename":"s",
			"aliascolnames":[{"String":{"sval":"n"}}],
			"ctequery":{"SelectStmt":{"op":"SETOP_UNION","all":true,
				"larg":{"targetList":[]},
				"rarg":{"targetList":[]}}}}}]},
		"targetList":[]
	}}}]}`)

	sel, _ := stmt.SelectStmt()
	with, ok := sel.WithClause()
	require.True(ok)
	require.True(with.Recursive)
	require.Len(with.CTEs, 1)
	require.Equal("s", with.CTEs[0].Name)
	require.Equal([]string{"n"}, with.CTEs[0].ColumnNames)
	require.True(with.CTEs[0].Recursive)

	body, ok := with.CTEs[0].Query.SelectStmt()
	require.True(ok)
	setop, ok := body.SetOperation()
	require.True(ok)
	require.Equal("SETOP_UNION", setop.Op)
	require.True(setop.All)
	require.True(setop.LArg.Exists())
	require.True(setop.RArg.Exists())
}

func TestInsertShape(t *testing.T) {
	require := require.New(t)

	stmt := mustParse(t, `{"stmts":[{"stmt":{"InsertStmt":{
		"relation":{"relname":"users"},
		"cols":[{"ResTarget":{"name":"id"}},{"ResTarget":{"name":"name"}}],
		"selectStmt":{"SelectStmt":{"valuesLists":[
			{"List":{"items":[
				{"A_Const":{"val":{"Integer":{"ival":1}}}},
				{"A_Const":{"val":{"String":{"sval":"alice"}}}}
			]}}
		]}},
		"onConflictClause":{"infer":{"indexElems":[{"IndexElem":{"name":"id"}}]}},
		"returningList":[{"ResTarget":{"val":{"ColumnRef":{"fields":[{"String":{"sval":"id"}}]}}}}]
	}}}]}`)

	ins, ok := stmt.InsertStmt()
	require.True(ok)
	rv, ok := ins.Relation()
	require.True(ok)
	require.Equal("users", rv.RelName)
	require.Equal([]string{"id", "name"}, ins.InsertColumns())

	source, ok := ins.InsertSource()
	require.True(ok)
	rows := source.ValuesLists()
	require.Len(rows, 1)
	require.Len(rows[0], 2)

	require.Equal([]string{"id"}, ins.OnConflictColumns())
	require.Equal([]string{"id"}, ins.ReturningColumns())
}
