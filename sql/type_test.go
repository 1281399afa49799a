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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeFamilies(t *testing.T) {
	for _, typ := range []ColumnType{Integer, BigInt, Decimal} {
		assert.True(t, IsNumericType(typ), typ.String())
	}
	for _, typ := range []ColumnType{Varchar, Text} {
		assert.True(t, IsStringType(typ), typ.String())
	}
	for _, typ := range []ColumnType{Date, Timestamp} {
		assert.True(t, IsDateType(typ), typ.String())
	}
	for _, typ := range []ColumnType{Boolean, JSON, UUID} {
		assert.False(t, IsNumericType(typ) || IsStringType(typ) || IsDateType(typ), typ.String())
	}
}

func TestTypeComparisons(t *testing.T) {
	require := require.New(t)

	require.True(TypesCompatibleForComparison(Integer, Decimal))
	require.True(TypesCompatibleForComparison(Date, Timestamp))
	require.True(TypesCompatibleForComparison(JSON, JSON))
	require.False(TypesCompatibleForComparison(Integer, Text))

	require.True(TypesCompatibleForArithmetic(Integer, BigInt))
	require.False(TypesCompatibleForArithmetic(Integer, Varchar))

	require.Equal(Decimal, ArithmeticResultType(Integer, Decimal))
	require.Equal(BigInt, ArithmeticResultType(Integer, BigInt))
	require.Equal(Integer, ArithmeticResultType(Integer, Integer))
}

func TestColumnTypeStrings(t *testing.T) {
	tests := []struct {
		typ  ColumnType
		name string
	}{
		{Integer, "INTEGER"},
		{BigInt, "BIGINT"},
		{Varchar, "VARCHAR"},
		{Text, "TEXT"},
		{Boolean, "BOOLEAN"},
		{Timestamp, "TIMESTAMP"},
		{Date, "DATE"},
		{Decimal, "DECIMAL"},
		{JSON, "JSON"},
		{UUID, "UUID"},
		{Unknown, "UNKNOWN"},
	}
	for _, test := range tests {
		assert.Equal(t, test.name, test.typ.String())
		if test.typ == Unknown {
			continue
		}
		parsed, ok := ColumnTypeFromString(test.name)
		assert.True(t, ok)
		assert.Equal(t, test.typ, parsed)
	}

	parsed, ok := ColumnTypeFromString("int")
	assert.True(t, ok)
	assert.Equal(t, Integer, parsed)
	parsed, ok = ColumnTypeFromString("numeric")
	assert.True(t, ok)
	assert.Equal(t, Decimal, parsed)
	_, ok = ColumnTypeFromString("frobnicator")
	assert.False(t, ok)
}
