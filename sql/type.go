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

import "strings"

// ColumnType is the set of column types understood by the planner.
type ColumnType int

const (
	// Unknown is the zero type, used for parameters before inference
	// refines them.
	Unknown ColumnType = iota
	Integer
	BigInt
	Varchar
	Text
	Boolean
	Timestamp
	Date
	Decimal
	JSON
	UUID
)

func (t ColumnType) String() string {
	switch t {
	case Integer:
		return "INTEGER"
	case BigInt:
		return "BIGINT"
	case Varchar:
		return "VARCHAR"
	case Text:
		return "TEXT"
	case Boolean:
		return "BOOLEAN"
	case Timestamp:
		return "TIMESTAMP"
	case Date:
		return "DATE"
	case Decimal:
		return "DECIMAL"
	case JSON:
		return "JSON"
	case UUID:
		return "UUID"
	default:
		return "UNKNOWN"
	}
}

// ColumnTypeFromString parses a SQL type name. Returns false for names the
// planner doesn't know.
func ColumnTypeFromString(s string) (ColumnType, bool) {
	switch strings.ToUpper(s) {
	case "INTEGER", "INT", "INT4":
		return Integer, true
	case "BIGINT", "INT8":
		return BigInt, true
	case "VARCHAR", "CHARACTER VARYING":
		return Varchar, true
	case "TEXT":
		return Text, true
	case "BOOLEAN", "BOOL":
		return Boolean, true
	case "TIMESTAMP":
		return Timestamp, true
	case "DATE":
		return Date, true
	case "DECIMAL", "NUMERIC":
		return Decimal, true
	case "JSON", "JSONB":
		return JSON, true
	case "UUID":
		return UUID, true
	default:
		return Unknown, false
	}
}

// IsNumericType reports whether t belongs to the numeric family.
func IsNumericType(t ColumnType) bool {
	return t == Integer || t == BigInt || t == Decimal
}

// IsStringType reports whether t belongs to the string family.
func IsStringType(t ColumnType) bool {
	return t == Varchar || t == Text
}

// IsDateType reports whether t belongs to the date family.
func IsDateType(t ColumnType) bool {
	return t == Date || t == Timestamp
}

// TypesCompatibleForComparison reports whether two types may appear on the
// two sides of a comparison without an explicit cast.
func TypesCompatibleForComparison(left, right ColumnType) bool {
	if left == right {
		return true
	}
	if IsNumericType(left) && IsNumericType(right) {
		return true
	}
	if IsStringType(left) && IsStringType(right) {
		return true
	}
	if IsDateType(left) && IsDateType(right) {
		return true
	}
	return false
}

// TypesCompatibleForArithmetic reports whether two types may be combined by
// an arithmetic operator.
func TypesCompatibleForArithmetic(left, right ColumnType) bool {
	return IsNumericType(left) && IsNumericType(right)
}

// ArithmeticResultType returns the widest numeric type of the two operands.
// Both operands must be numeric.
func ArithmeticResultType(left, right ColumnType) ColumnType {
	if left == Decimal || right == Decimal {
		return Decimal
	}
	if left == BigInt || right == BigInt {
		return BigInt
	}
	return Integer
}
