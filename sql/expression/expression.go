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

// Package expression implements the bound expression nodes produced by the
// binder and evaluated by the physical operators.
package expression

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"

	"github.com/space-rf-org/DB25-sub000/sql"
)

// GetField is a resolved column reference. TableID and ColumnID are the
// registry IDs the name bound to; Table keeps the alias or table name used
// in the query for display and scoped evaluation.
type GetField struct {
	TableID  sql.TableID
	ColumnID sql.ColumnID
	Table    string
	Name     string
	fieldTyp sql.ColumnType
	nullable bool
}

// NewGetField creates a column reference.
func NewGetField(tableID sql.TableID, columnID sql.ColumnID, name string, typ sql.ColumnType, nullable bool) *GetField {
	return &GetField{TableID: tableID, ColumnID: columnID, Name: name, fieldTyp: typ, nullable: nullable}
}

// NewGetFieldWithTable creates a column reference carrying its qualifier.
func NewGetFieldWithTable(tableID sql.TableID, columnID sql.ColumnID, table, name string, typ sql.ColumnType, nullable bool) *GetField {
	return &GetField{TableID: tableID, ColumnID: columnID, Table: table, Name: name, fieldTyp: typ, nullable: nullable}
}

func (f *GetField) Type() sql.ColumnType       { return f.fieldTyp }
func (f *GetField) IsNullable() bool           { return f.nullable }
func (f *GetField) Children() []sql.Expression { return nil }

func (f *GetField) String() string {
	if f.Table == "" {
		return f.Name
	}
	return f.Table + "." + f.Name
}

// Eval reads the field from the tuple by column name, trying the
// qualified spelling next. A tuple without a name map is read
// positionally; a mapped tuple that lacks the name yields "", so callers
// can tell "not this side" from a real value.
func (f *GetField) Eval(t sql.Tuple) string {
	if t.ColumnMap == nil {
		return t.Value(int(f.ColumnID) - 1)
	}
	if v := t.NamedValue(f.Name); v != "" {
		return v
	}
	if f.Table != "" {
		return t.NamedValue(f.Table + "." + f.Name)
	}
	return ""
}

// Literal is a constant with its value held as canonical text.
type Literal struct {
	Value string
	typ   sql.ColumnType
}

// NewLiteral creates a constant of the given type. Constants are never
// nullable.
func NewLiteral(value string, typ sql.ColumnType) *Literal {
	return &Literal{Value: value, typ: typ}
}

func (l *Literal) Type() sql.ColumnType       { return l.typ }
func (l *Literal) IsNullable() bool           { return false }
func (l *Literal) Children() []sql.Expression { return nil }
func (l *Literal) Eval(sql.Tuple) string      { return l.Value }

func (l *Literal) String() string {
	if sql.IsStringType(l.typ) {
		return "'" + l.Value + "'"
	}
	return l.Value
}

// BindVar is a query parameter placeholder ($N). Index is 1-based,
// matching the parser's numbering. The type starts Unknown and is refined
// by the binder from surrounding context.
type BindVar struct {
	Index int
	Typ   sql.ColumnType
}

// NewBindVar creates a parameter reference.
func NewBindVar(index int) *BindVar {
	return &BindVar{Index: index, Typ: sql.Unknown}
}

func (b *BindVar) Type() sql.ColumnType       { return b.Typ }
func (b *BindVar) IsNullable() bool           { return true }
func (b *BindVar) Children() []sql.Expression { return nil }
func (b *BindVar) Eval(sql.Tuple) string      { return "" }
func (b *BindVar) String() string             { return fmt.Sprintf("$%d", b.Index) }

// aggregates are the functions the planner recognizes as aggregating.
var aggregates = map[string]bool{
	"count": true,
	"sum":   true,
	"avg":   true,
	"min":   true,
	"max":   true,
}

// Function is a call with bound arguments. Star marks count(*).
type Function struct {
	Name string
	Args []sql.Expression
	Star bool
	typ  sql.ColumnType
}

// NewFunction creates a bound function call. The result type follows the
// binder's rules: count and sum yield Integer, min and max the argument
// type, everything else Text.
func NewFunction(name string, args ...sql.Expression) *Function {
	f := &Function{Name: strings.ToLower(name), Args: args}
	switch f.Name {
	case "count", "sum":
		f.typ = sql.Integer
	case "min", "max":
		if len(args) > 0 {
			f.typ = args[0].Type()
		} else {
			f.typ = sql.Text
		}
	default:
		f.typ = sql.Text
	}
	return f
}

func (f *Function) Type() sql.ColumnType       { return f.typ }
func (f *Function) IsNullable() bool           { return true }
func (f *Function) Children() []sql.Expression { return f.Args }

// IsAggregate reports whether the call is one of the aggregate functions.
func (f *Function) IsAggregate() bool { return aggregates[f.Name] }

func (f *Function) String() string {
	if f.Star {
		return f.Name + "(*)"
	}
	return fmt.Sprintf("%s(%s)", f.Name, sql.ExprsToString(f.Args, ", "))
}

// Eval evaluates non-aggregate calls per-tuple. Aggregate results are
// computed by the aggregate operator and read back from the tuple under
// the call's display name, which makes HAVING conditions evaluable on the
// operator's output.
func (f *Function) Eval(t sql.Tuple) string {
	if v := t.NamedValue(f.String()); v != "" {
		return v
	}
	switch f.Name {
	case "upper":
		if len(f.Args) == 1 {
			return strings.ToUpper(f.Args[0].Eval(t))
		}
	case "lower":
		if len(f.Args) == 1 {
			return strings.ToLower(f.Args[0].Eval(t))
		}
	case "length":
		if len(f.Args) == 1 {
			return cast.ToString(len(f.Args[0].Eval(t)))
		}
	}
	return ""
}

// comparison operators by their bound name.
var comparisons = map[string]bool{
	"=": true, "<>": true, "!=": true,
	"<": true, ">": true, "<=": true, ">=": true,
	"LIKE": true, "NOT LIKE": true,
}

var logical = map[string]bool{"AND": true, "OR": true}

var arithmetic = map[string]bool{"+": true, "-": true, "*": true, "/": true, "%": true}

// BinaryOp is an infix operation over two bound operands: arithmetic,
// comparison, or logical connective. NOT is represented as a unary via Not.
type BinaryOp struct {
	Op    string
	Left  sql.Expression
	Right sql.Expression
	typ   sql.ColumnType
}

// NewBinaryOp creates an operation with an explicit result type; the
// binder computes it from the operand types.
func NewBinaryOp(op string, left, right sql.Expression, typ sql.ColumnType) *BinaryOp {
	return &BinaryOp{Op: op, Left: left, Right: right, typ: typ}
}

func (b *BinaryOp) Type() sql.ColumnType       { return b.typ }
func (b *BinaryOp) Children() []sql.Expression { return []sql.Expression{b.Left, b.Right} }

func (b *BinaryOp) IsNullable() bool {
	return b.Left.IsNullable() || b.Right.IsNullable()
}

// IsComparison reports whether the operator yields a boolean from a value
// comparison.
func (b *BinaryOp) IsComparison() bool { return comparisons[b.Op] }

// IsLogical reports whether the operator is AND or OR.
func (b *BinaryOp) IsLogical() bool { return logical[b.Op] }

// IsArithmetic reports whether the operator is numeric arithmetic.
func (b *BinaryOp) IsArithmetic() bool { return arithmetic[b.Op] }

func (b *BinaryOp) String() string {
	return fmt.Sprintf("%s %s %s", b.Left, b.Op, b.Right)
}

// Eval evaluates the operation over string-encoded values: comparisons and
// connectives yield "true"/"false", arithmetic yields a numeric string.
func (b *BinaryOp) Eval(t sql.Tuple) string {
	switch {
	case b.IsLogical():
		l := b.Left.Eval(t) == "true"
		r := b.Right.Eval(t) == "true"
		if b.Op == "AND" {
			return boolText(l && r)
		}
		return boolText(l || r)
	case b.IsComparison():
		return boolText(EvalComparison(b.Op, b.Left.Eval(t), b.Right.Eval(t)))
	case b.IsArithmetic():
		l, lerr := cast.ToFloat64E(b.Left.Eval(t))
		r, rerr := cast.ToFloat64E(b.Right.Eval(t))
		if lerr != nil || rerr != nil {
			return ""
		}
		var v float64
		switch b.Op {
		case "+":
			v = l + r
		case "-":
			v = l - r
		case "*":
			v = l * r
		case "/":
			if r == 0 {
				return ""
			}
			v = l / r
		case "%":
			if r == 0 {
				return ""
			}
			v = math.Mod(l, r)
		}
		return FormatNumeric(v)
	}
	return ""
}

// Not is logical negation, the degenerate unary member of the operator
// family.
type Not struct {
	Child sql.Expression
}

// NewNot creates a negation.
func NewNot(child sql.Expression) *Not { return &Not{Child: child} }

func (n *Not) Type() sql.ColumnType       { return sql.Boolean }
func (n *Not) IsNullable() bool           { return n.Child.IsNullable() }
func (n *Not) Children() []sql.Expression { return []sql.Expression{n.Child} }
func (n *Not) String() string             { return "NOT " + n.Child.String() }

func (n *Not) Eval(t sql.Tuple) string {
	return boolText(n.Child.Eval(t) != "true")
}

func boolText(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// Compare orders two string-encoded values: numerically when both parse as
// numbers, lexically otherwise. Returns -1, 0 or 1.
func Compare(a, b string) int {
	fa, aerr := cast.ToFloat64E(a)
	fb, berr := cast.ToFloat64E(b)
	if aerr == nil && berr == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

// EvalComparison applies a comparison operator to two string-encoded
// values.
func EvalComparison(op, left, right string) bool {
	switch op {
	case "=":
		return Compare(left, right) == 0
	case "<>", "!=":
		return Compare(left, right) != 0
	case "<":
		return Compare(left, right) < 0
	case ">":
		return Compare(left, right) > 0
	case "<=":
		return Compare(left, right) <= 0
	case ">=":
		return Compare(left, right) >= 0
	case "LIKE":
		return evalLike(left, right)
	case "NOT LIKE":
		return !evalLike(left, right)
	}
	return false
}

// evalLike supports the %-wildcard subset of LIKE patterns.
func evalLike(value, pattern string) bool {
	parts := strings.Split(pattern, "%")
	if len(parts) == 1 {
		return value == pattern
	}
	if parts[0] != "" && !strings.HasPrefix(value, parts[0]) {
		return false
	}
	if last := parts[len(parts)-1]; last != "" && !strings.HasSuffix(value, last) {
		return false
	}
	rest := value
	for _, part := range parts {
		if part == "" {
			continue
		}
		i := strings.Index(rest, part)
		if i < 0 {
			return false
		}
		rest = rest[i+len(part):]
	}
	return true
}

// FormatNumeric renders a float the way tuple values store numbers:
// integral values without a fraction.
func FormatNumeric(v float64) string {
	if v == float64(int64(v)) {
		return cast.ToString(int64(v))
	}
	return cast.ToString(v)
}
