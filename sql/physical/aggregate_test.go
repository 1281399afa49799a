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

func userIDField() sql.Expression {
	return expression.NewGetField(2, 2, "user_id", sql.Integer, false)
}

func totalField() sql.Expression {
	return expression.NewGetField(2, 3, "total", sql.Decimal, true)
}

func TestHashAggregateGrouped(t *testing.T) {
	require := require.New(t)

	count := expression.NewFunction("count", totalField())
	sum := expression.NewFunction("sum", totalField())
	agg := NewHashAggregate(
		[]sql.Expression{userIDField()},
		[]sql.Expression{count, sum},
		NewSequentialScan("orders", "", testSource()))

	tuples := drain(t, agg)
	// user 1 has two orders, users 2 and 9 one each.
	require.Len(tuples, 3)

	byUser := map[string]sql.Tuple{}
	for _, tuple := range tuples {
		byUser[tuple.Value(0)] = tuple
	}
	require.Equal("2", byUser["1"].Value(1))
	require.Equal("350", byUser["1"].Value(2))
	require.Equal("1", byUser["2"].Value(1))
	require.Equal("75", byUser["2"].Value(2))

	// First-seen group order.
	require.Equal("1", tuples[0].Value(0))
	require.Equal(4, agg.Stats().RowsProcessed)
	require.Equal(3, agg.Stats().RowsReturned)
}

func TestHashAggregateMinMaxAvg(t *testing.T) {
	require := require.New(t)

	min := expression.NewFunction("min", totalField())
	max := expression.NewFunction("max", totalField())
	avg := expression.NewFunction("avg", totalField())
	agg := NewHashAggregate(nil,
		[]sql.Expression{min, max, avg},
		NewSequentialScan("orders", "", testSource()))

	tuples := drain(t, agg)
	require.Len(tuples, 1)
	require.Equal("5", tuples[0].Value(0))
	require.Equal("250", tuples[0].Value(1))
	require.Equal("107.5", tuples[0].Value(2))
}

func TestHashAggregateCountStar(t *testing.T) {
	require := require.New(t)

	count := expression.NewFunction("count")
	count.Star = true
	agg := NewHashAggregate(nil, []sql.Expression{count},
		NewSequentialScan("users", "", testSource()))

	tuples := drain(t, agg)
	require.Len(tuples, 1)
	require.Equal("3", tuples[0].Value(0))
}

func TestHashAggregateHaving(t *testing.T) {
	require := require.New(t)

	count := expression.NewFunction("count", totalField())
	agg := NewHashAggregate(
		[]sql.Expression{userIDField()},
		[]sql.Expression{count},
		NewSequentialScan("orders", "", testSource()))
	// HAVING count(total) > 1 keeps only user 1. The aggregate's result
	// is read back from the produced tuple under the call's display name.
	agg.HavingConditions = []sql.Expression{
		expression.NewBinaryOp(">", count,
			expression.NewLiteral("1", sql.Integer),
			sql.Boolean),
	}

	tuples := drain(t, agg)
	require.Len(tuples, 1)
	require.Equal("1", tuples[0].Value(0))
}

func TestHashAggregateReset(t *testing.T) {
	require := require.New(t)

	count := expression.NewFunction("count", totalField())
	agg := NewHashAggregate([]sql.Expression{userIDField()}, []sql.Expression{count},
		NewSequentialScan("orders", "", testSource()))

	first := drain(t, agg)
	agg.Reset()
	second := drain(t, agg)
	require.Equal(len(first), len(second))
}
