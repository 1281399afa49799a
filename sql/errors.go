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

package sql

import (
	"gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrParseFailure is returned when the SQL parser rejects the input.
	ErrParseFailure = errors.NewKind("Parse error: %s")

	// ErrTableNotFound is returned when a table identifier does not resolve.
	ErrTableNotFound = errors.NewKind("Table '%s' not found")

	// ErrColumnNotFound is returned when a column identifier does not
	// resolve in the current scope.
	ErrColumnNotFound = errors.NewKind("Column '%s' not found")

	// ErrColumnNotFoundInTable is the qualified-reference variant of
	// ErrColumnNotFound.
	ErrColumnNotFoundInTable = errors.NewKind("Column '%s' not found in table '%s'")

	// ErrAmbiguousColumn is returned when an unqualified column name is
	// exposed by more than one in-scope table.
	ErrAmbiguousColumn = errors.NewKind("Ambiguous column reference '%s'. Could be: %s")

	// ErrTypeMismatch is logged as a warning for UPDATE assignments whose
	// value type is incompatible with the column. Binding continues, so
	// this is advisory.
	ErrTypeMismatch = errors.NewKind("incompatible types in expression: %s and %s")

	// ErrDuplicateCTE is returned for two CTEs of the same name in one
	// WITH clause.
	ErrDuplicateCTE = errors.NewKind("Duplicate CTE name '%s'")

	// ErrCTEMissingQuery is returned for a CTE without a query body.
	ErrCTEMissingQuery = errors.NewKind("CTE '%s' has no query")

	// ErrCTENotSelect is returned for a CTE whose body is not a SELECT.
	ErrCTENotSelect = errors.NewKind("CTE '%s' body must be a SELECT statement")

	// ErrCTEColumnCountMismatch is returned when an explicit CTE column
	// list does not match the width of the CTE query.
	ErrCTEColumnCountMismatch = errors.NewKind("CTE '%s' declares %d columns but its query produces %d")

	// ErrInsertValueCountMismatch is returned when a VALUES row is wider
	// or narrower than the INSERT target column list.
	ErrInsertValueCountMismatch = errors.NewKind("INSERT row %d has %d values but %d target columns")

	// ErrUnsupportedStatement is returned for statement types outside
	// SELECT / INSERT / UPDATE / DELETE.
	ErrUnsupportedStatement = errors.NewKind("Unsupported statement type")

	// ErrInvalidAST is returned when the parse tree is structurally not
	// what the adapter promises.
	ErrInvalidAST = errors.NewKind("Invalid AST: %s")
)
