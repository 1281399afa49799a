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
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/space-rf-org/DB25-sub000/memory"
	"github.com/space-rf-org/DB25-sub000/sql"
	"github.com/space-rf-org/DB25-sub000/sql/expression"
)

func bigSource(rows int) *memory.Database {
	db := memory.NewDatabase("big")
	t := memory.NewTable("events", "id", "kind")
	t.Generate(rows)
	db.AddTable(t)
	return db
}

func TestParallelSequentialScanAllRows(t *testing.T) {
	require := require.New(t)

	scan := NewParallelSequentialScan("events", 4, bigSource(5000))
	tuples := drain(t, scan)
	require.Len(tuples, 5000)
	require.Equal(5000, scan.Stats().RowsProcessed)
	require.Equal(5000, scan.Stats().RowsReturned)

	// Workers cover disjoint ranges: every row appears exactly once.
	ids := make([]string, 0, len(tuples))
	for _, tuple := range tuples {
		ids = append(ids, tuple.NamedValue("id"))
	}
	sort.Strings(ids)
	for i := 1; i < len(ids); i++ {
		require.NotEqual(ids[i-1], ids[i])
	}
}

func TestParallelSequentialScanFilter(t *testing.T) {
	require := require.New(t)

	scan := NewParallelSequentialScan("events", 3, bigSource(100))
	scan.FilterConditions = []sql.Expression{
		expression.NewBinaryOp("<=",
			expression.NewGetField(1, 1, "id", sql.Integer, false),
			expression.NewLiteral("10", sql.Integer),
			sql.Boolean),
	}
	tuples := drain(t, scan)
	require.Len(tuples, 10)
}

func TestParallelSequentialScanReset(t *testing.T) {
	require := require.New(t)

	scan := NewParallelSequentialScan("events", 2, bigSource(500))
	first := drain(t, scan)

	scan.Reset()
	second := drain(t, scan)
	require.Equal(len(first), len(second))
}

func TestParallelSequentialScanCleanupJoinsWorkers(t *testing.T) {
	require := require.New(t)

	scan := NewParallelSequentialScan("events", 4, bigSource(5000))
	scan.Initialize(sql.NewExecutionContext())

	// Read one batch, then abandon the stream.
	_, err := scan.NextBatch()
	require.NoError(err)
	scan.Cleanup()

	// After cleanup the operator can be reset and rerun.
	scan.Reset()
	tuples := drain(t, scan)
	require.Len(tuples, 5000)
}

func TestParallelDegreeClamped(t *testing.T) {
	require := require.New(t)

	scan := NewParallelSequentialScan("events", 0, bigSource(10))
	require.Equal(1, scan.Degree)
	tuples := drain(t, scan)
	require.Len(tuples, 10)
}
