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

package expression

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/space-rf-org/DB25-sub000/sql"
)

func testTuple() sql.Tuple {
	t := sql.NewTuple("7", "alice")
	t.SetNamedValue("id", "7")
	t.SetNamedValue("name", "alice")
	return t
}

func TestGetField(t *testing.T) {
	require := require.New(t)

	f := NewGetFieldWithTable(1, 1, "u", "id", sql.Integer, false)
	require.Equal("u.id", f.String())
	require.Equal(sql.Integer, f.Type())
	require.False(f.IsNullable())
	require.Equal("7", f.Eval(testTuple()))

	// Positional fallback only for tuples without a name map.
	bare := sql.NewTuple("42")
	require.Equal("42", NewGetField(1, 1, "id", sql.Integer, false).Eval(bare))

	// A mapped tuple without the column yields nothing.
	require.Equal("", NewGetField(1, 1, "missing", sql.Integer, false).Eval(testTuple()))
}

func TestLiteral(t *testing.T) {
	require := require.New(t)

	l := NewLiteral("10", sql.Integer)
	require.Equal("10", l.String())
	require.Equal("10", l.Eval(sql.Tuple{}))
	require.False(l.IsNullable())

	s := NewLiteral("A%", sql.Text)
	require.Equal("'A%'", s.String())
}

func TestBindVar(t *testing.T) {
	require := require.New(t)

	bv := NewBindVar(2)
	require.Equal("$2", bv.String())
	require.Equal(sql.Unknown, bv.Type())
	require.Equal("", bv.Eval(sql.Tuple{}))
}

func TestFunctionTypes(t *testing.T) {
	require := require.New(t)

	count := NewFunction("COUNT")
	count.Star = true
	require.Equal(sql.Integer, count.Type())
	require.True(count.IsAggregate())
	require.Equal("count(*)", count.String())

	arg := NewGetField(1, 1, "id", sql.Integer, false)
	require.Equal(sql.Integer, NewFunction("sum", arg).Type())
	require.Equal(sql.Integer, NewFunction("max", arg).Type())
	require.Equal(sql.Text, NewFunction("upper", arg).Type())
	require.False(NewFunction("upper", arg).IsAggregate())

	name := NewGetField(1, 2, "name", sql.Varchar, true)
	require.Equal("ALICE", NewFunction("upper", name).Eval(testTuple()))
	require.Equal("5", NewFunction("length", name).Eval(testTuple()))
}

func TestBinaryOpEval(t *testing.T) {
	require := require.New(t)

	id := NewGetField(1, 1, "id", sql.Integer, false)
	name := NewGetField(1, 2, "name", sql.Varchar, true)

	gt := NewBinaryOp(">", id, NewLiteral("5", sql.Integer), sql.Boolean)
	require.True(gt.IsComparison())
	require.Equal("true", gt.Eval(testTuple()))

	lt := NewBinaryOp("<", id, NewLiteral("5", sql.Integer), sql.Boolean)
	require.Equal("false", lt.Eval(testTuple()))

	eq := NewBinaryOp("=", name, NewLiteral("alice", sql.Text), sql.Boolean)
	require.Equal("true", eq.Eval(testTuple()))

	like := NewBinaryOp("LIKE", name, NewLiteral("a%", sql.Text), sql.Boolean)
	require.Equal("true", like.Eval(testTuple()))

	and := NewBinaryOp("AND", gt, eq, sql.Boolean)
	require.True(and.IsLogical())
	require.Equal("true", and.Eval(testTuple()))

	or := NewBinaryOp("OR", lt, eq, sql.Boolean)
	require.Equal("true", or.Eval(testTuple()))

	sum := NewBinaryOp("+", id, NewLiteral("3", sql.Integer), sql.Integer)
	require.True(sum.IsArithmetic())
	require.Equal("10", sum.Eval(testTuple()))

	div := NewBinaryOp("/", id, NewLiteral("0", sql.Integer), sql.Integer)
	require.Equal("", div.Eval(testTuple()))

	require.Equal("id > 5", gt.String())
}

func TestNot(t *testing.T) {
	require := require.New(t)

	id := NewGetField(1, 1, "id", sql.Integer, false)
	gt := NewBinaryOp(">", id, NewLiteral("5", sql.Integer), sql.Boolean)
	not := NewNot(gt)
	require.Equal(sql.Boolean, not.Type())
	require.Equal("false", not.Eval(testTuple()))
	require.Equal("NOT id > 5", not.String())
}

func TestCompare(t *testing.T) {
	require := require.New(t)

	// Numeric when both sides parse.
	require.Equal(-1, Compare("9", "10"))
	require.Equal(0, Compare("10", "10.0"))
	// Lexical otherwise.
	require.Equal(1, Compare("b", "a"))
	require.True(Compare("9", "abc") != 0)
}

func TestEvalLike(t *testing.T) {
	tests := []struct {
		value   string
		pattern string
		match   bool
	}{
		{"alice", "a%", true},
		{"alice", "%ce", true},
		{"alice", "%li%", true},
		{"alice", "alice", true},
		{"alice", "b%", false},
		{"alice", "%x%", false},
		{"", "%", true},
	}
	for _, test := range tests {
		require.Equal(t, test.match, EvalComparison("LIKE", test.value, test.pattern),
			"%q LIKE %q", test.value, test.pattern)
		require.Equal(t, !test.match, EvalComparison("NOT LIKE", test.value, test.pattern))
	}
}
