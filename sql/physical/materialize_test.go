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

package physical

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/space-rf-org/DB25-sub000/sql"
	"github.com/space-rf-org/DB25-sub000/sql/expression"
)

func TestMaterializeFilters(t *testing.T) {
	require := require.New(t)

	cond := expression.NewBinaryOp(">",
		expression.NewGetField(2, 3, "total", sql.Decimal, true),
		expression.NewLiteral("80", sql.Integer),
		sql.Boolean)
	mat := NewMaterialize([]sql.Expression{cond}, NewSequentialScan("orders", "", testSource()))

	tuples := drain(t, mat)
	// totals 100 and 250 survive.
	require.Len(tuples, 2)
	require.Equal(4, mat.Stats().RowsProcessed)
	require.Equal(2, mat.Stats().RowsReturned)

	mat.Reset()
	require.Len(drain(t, mat), 2)
}

func TestMaterializePassthrough(t *testing.T) {
	require := require.New(t)

	mat := NewMaterialize(nil, NewSequentialScan("users", "", testSource()))
	require.Len(drain(t, mat), 3)
}

func TestGather(t *testing.T) {
	require := require.New(t)

	src := testSource()
	g := NewGather(
		NewSequentialScan("users", "", src),
		NewSequentialScan("orders", "", src))
	tuples := drain(t, g)
	require.Len(tuples, 7)

	g.Reset()
	require.Len(drain(t, g), 7)
}
