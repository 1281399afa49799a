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
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/space-rf-org/DB25-sub000/sql"
	"github.com/space-rf-org/DB25-sub000/sql/expression"
)

func TestSequentialScan(t *testing.T) {
	require := require.New(t)

	scan := NewSequentialScan("users", "", testSource())
	tuples := drain(t, scan)
	require.Len(tuples, 3)
	// Insertion order.
	require.Equal("alice", tuples[0].NamedValue("name"))
	require.Equal("carol", tuples[2].NamedValue("name"))
	require.Equal(3, scan.Stats().RowsProcessed)
	require.Equal(3, scan.Stats().RowsReturned)
	require.False(scan.HasMoreData())
}

func TestSequentialScanFilter(t *testing.T) {
	require := require.New(t)

	scan := NewSequentialScan("users", "", testSource())
	scan.FilterConditions = []sql.Expression{
		expression.NewBinaryOp(">",
			expression.NewGetField(1, 1, "id", sql.Integer, false),
			expression.NewLiteral("1", sql.Integer),
			sql.Boolean),
	}
	tuples := drain(t, scan)
	require.Len(tuples, 2)
	require.Equal(3, scan.Stats().RowsProcessed)
	require.Equal(2, scan.Stats().RowsReturned)
}

func TestSequentialScanReset(t *testing.T) {
	require := require.New(t)

	scan := NewSequentialScan("users", "", testSource())
	first := drain(t, scan)

	scan.Reset()
	scan.Initialize(sql.NewExecutionContext())
	var second []sql.Tuple
	for {
		batch, err := scan.NextBatch()
		if err == io.EOF {
			break
		}
		require.NoError(err)
		second = append(second, batch.Tuples...)
	}
	require.Equal(len(first), len(second))
	// Reset cleared the stats.
	require.Equal(3, scan.Stats().RowsProcessed)
}

func TestSequentialScanMockData(t *testing.T) {
	require := require.New(t)

	// Without a source the scan materializes deterministic mock rows.
	scan := NewSequentialScan("widgets", "", nil)
	scan.SetOutputColumns("id", "label")
	tuples := drain(t, scan)
	require.Len(tuples, mockScanRows)
	require.Equal("1", tuples[0].NamedValue("id"))
	require.Equal("label_1", tuples[0].NamedValue("label"))
}

func TestIndexScanDiskReads(t *testing.T) {
	require := require.New(t)

	scan := NewIndexScan("users", "users_pkey", "", testSource())
	tuples := drain(t, scan)
	require.Len(tuples, 3)
	require.True(scan.Stats().DiskReads >= 1)
}

func TestScanCopyExecutesIndependently(t *testing.T) {
	require := require.New(t)

	scan := NewSequentialScan("users", "", testSource())
	first := drain(t, scan)

	cp := scan.Copy()
	second := drain(t, cp)
	require.Equal(len(first), len(second))
}
