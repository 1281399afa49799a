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

// Package sql holds the shared types of the query planning pipeline: the
// schema registry, the type system, expressions, and the tuple-batch
// protocol physical operators speak.
package sql

import "fmt"

// Expression is a bound, typed expression tree node. Expressions are built
// by the binder and shared by the logical and physical plan layers.
type Expression interface {
	fmt.Stringer
	// Type is the resolved result type of the expression.
	Type() ColumnType
	// IsNullable reports whether the expression may evaluate to NULL.
	IsNullable() bool
	// Children returns the operand expressions, empty for leaves.
	Children() []Expression
	// Eval evaluates the expression against a tuple of string-encoded
	// values. Expressions that cannot be evaluated at runtime (bind
	// variables, subqueries) return "".
	Eval(t Tuple) string
}

// InspectExpr walks the expression tree depth-first, calling f for every
// node. Returning false stops descent into that node's children.
func InspectExpr(e Expression, f func(Expression) bool) {
	if e == nil {
		return
	}
	if !f(e) {
		return
	}
	for _, child := range e.Children() {
		InspectExpr(child, f)
	}
}

// ExprsToString formats a list of expressions joined by sep, used by the
// plan printers.
func ExprsToString(exprs []Expression, sep string) string {
	s := ""
	for i, e := range exprs {
		if i > 0 {
			s += sep
		}
		s += e.String()
	}
	return s
}
