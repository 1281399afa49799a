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
	"github.com/space-rf-org/DB25-sub000/sql/plan"
)

func nameKey(ascending bool) plan.SortKey {
	return plan.SortKey{
		Expr:      expression.NewGetField(1, 2, "name", sql.Varchar, true),
		Ascending: ascending,
	}
}

func totalKey(ascending bool) plan.SortKey {
	return plan.SortKey{
		Expr:      expression.NewGetField(2, 3, "total", sql.Decimal, true),
		Ascending: ascending,
	}
}

func TestSortAscendingDescending(t *testing.T) {
	require := require.New(t)

	sort := NewSort([]plan.SortKey{nameKey(false)}, NewSequentialScan("users", "", testSource()))
	tuples := drain(t, sort)
	require.Len(tuples, 3)
	require.Equal("carol", tuples[0].NamedValue("name"))
	require.Equal("alice", tuples[2].NamedValue("name"))

	sort = NewSort([]plan.SortKey{totalKey(true)}, NewSequentialScan("orders", "", testSource()))
	tuples = drain(t, sort)
	require.Len(tuples, 4)
	// Numeric order, not lexical: 5 < 75 < 100 < 250.
	require.Equal("5", tuples[0].NamedValue("total"))
	require.Equal("250", tuples[3].NamedValue("total"))

	// Blocking: startup equals totals in stats terms; the sort consumed
	// everything before emitting.
	require.Equal(4, sort.Stats().RowsProcessed)
	require.Equal(4, sort.Stats().RowsReturned)
}

func TestSortNullsOrdering(t *testing.T) {
	require := require.New(t)

	tbl := testSource()
	users, _ := tbl.Table("users")
	users.Insert("4", "", "dave@example.com")

	first := NewSort([]plan.SortKey{{Expr: expression.NewGetField(1, 2, "name", sql.Varchar, true), Ascending: true, NullsFirst: true}},
		NewSequentialScan("users", "", tbl))
	tuples := drain(t, first)
	require.Equal("", tuples[0].NamedValue("name"))

	last := NewSort([]plan.SortKey{{Expr: expression.NewGetField(1, 2, "name", sql.Varchar, true), Ascending: true, NullsFirst: false}},
		NewSequentialScan("users", "", tbl))
	tuples = drain(t, last)
	require.Equal("", tuples[len(tuples)-1].NamedValue("name"))
}

func TestSortOverBudgetReportsTempFiles(t *testing.T) {
	require := require.New(t)

	sort := NewSort([]plan.SortKey{nameKey(true)}, NewSequentialScan("users", "", testSource()))
	ctx := sql.NewExecutionContext()
	ctx.WorkMemLimit = 16 // three rows * 32 bytes exceeds this
	sort.Initialize(ctx)

	_, err := sort.NextBatch()
	require.NoError(err)
	require.True(sort.Stats().UsedTempFiles)
	require.True(sort.Stats().DiskWrites >= 0)
	require.Equal(3*sortBytesPerRow, sort.Stats().MemoryUsedBytes)
}

func TestSortStableOnEqualKeys(t *testing.T) {
	require := require.New(t)

	tbl := testSource()
	orders, _ := tbl.Table("orders")
	orders.Insert("14", "1", "100")

	sort := NewSort([]plan.SortKey{totalKey(true)}, NewSequentialScan("orders", "", tbl))
	tuples := drain(t, sort)

	// The two totals of 100 keep their scan order.
	var ids []string
	for _, tuple := range tuples {
		if tuple.NamedValue("total") == "100" {
			ids = append(ids, tuple.NamedValue("id"))
		}
	}
	require.Equal([]string{"10", "14"}, ids)
}
