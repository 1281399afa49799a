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
	"strings"

	"github.com/space-rf-org/DB25-sub000/memory"
	"github.com/space-rf-org/DB25-sub000/sql"
)

// estimatedTupleSize is the assumed per-tuple footprint used to size scan
// batches against the work-mem limit.
const estimatedTupleSize = 64

// mockScanRows is how many rows a scan materializes when no row source
// covers its table.
const mockScanRows = 1000

// SequentialScan reads a table front to back, evaluating its filter
// conditions inline.
type SequentialScan struct {
	operatorBase
	TableName        string
	Alias            string
	FilterConditions []sql.Expression

	source  RowSource
	data    []sql.Tuple
	columns []string
	pos     int
}

// NewSequentialScan creates a scan over the named table. A nil source
// makes the scan materialize deterministic mock data on initialize.
func NewSequentialScan(tableName, alias string, source RowSource) *SequentialScan {
	return &SequentialScan{TableName: tableName, Alias: alias, source: source}
}

func (s *SequentialScan) Initialize(ctx *sql.ExecutionContext) {
	s.initBase(ctx)
	if s.data != nil {
		return
	}
	if s.source != nil {
		if rows, columns, ok := s.source.TableRows(s.TableName); ok {
			s.data, s.columns = rows, columns
		}
	}
	if s.data == nil {
		s.data, s.columns = generateMockRows(s.TableName, s.output, mockScanRows)
	}
	if len(s.output) == 0 {
		s.output = s.columns
	}
}

func (s *SequentialScan) NextBatch() (*sql.TupleBatch, error) {
	s.startTiming()
	defer s.endTiming()

	if s.pos >= len(s.data) {
		s.hasMore = false
		return nil, io.EOF
	}

	limit := s.batchLimit(estimatedTupleSize)
	batch := sql.NewTupleBatch(s.columns...)
	for s.pos < len(s.data) && batch.Len() < limit {
		tuple := s.data[s.pos]
		s.pos++
		s.stats.RowsProcessed++
		if passesFilters(tuple, s.FilterConditions) {
			batch.Add(tuple)
			s.stats.RowsReturned++
		}
	}
	if s.pos >= len(s.data) {
		s.hasMore = false
	}
	return batch, nil
}

func (s *SequentialScan) Reset() {
	s.resetBase()
	s.pos = 0
}

func (s *SequentialScan) Cleanup() {
	s.cleanupChildren()
}

func (s *SequentialScan) Copy() Operator {
	out := *s
	out.operatorBase = s.copyBase()
	out.pos = 0
	return &out
}

func (s *SequentialScan) Format(sb *strings.Builder, indent int) {
	sb.WriteString(indentString(indent) + "Seq Scan on " + s.TableName)
	if s.Alias != "" {
		sb.WriteString(" " + s.Alias)
	}
	sb.WriteString(" (" + s.cost.String() + ")\n")
	if len(s.FilterConditions) > 0 {
		sb.WriteString(indentString(indent+1) + "Filter: " + sql.ExprsToString(s.FilterConditions, " AND ") + "\n")
	}
	s.formatChildren(sb, indent+1)
}

func (s *SequentialScan) String() string { return operatorString(s) }

// IndexScan reads a table through an index. It emits smaller batches than
// a sequential scan and accounts one page read per hundred rows.
type IndexScan struct {
	operatorBase
	TableName        string
	IndexName        string
	Alias            string
	IndexConditions  []sql.Expression
	FilterConditions []sql.Expression

	source  RowSource
	data    []sql.Tuple
	columns []string
	pos     int
}

// NewIndexScan creates an index scan over the named table and index.
func NewIndexScan(tableName, indexName, alias string, source RowSource) *IndexScan {
	return &IndexScan{TableName: tableName, IndexName: indexName, Alias: alias, source: source}
}

func (s *IndexScan) Initialize(ctx *sql.ExecutionContext) {
	s.initBase(ctx)
	if s.data != nil {
		return
	}
	if s.source != nil {
		if rows, columns, ok := s.source.TableRows(s.TableName); ok {
			s.data, s.columns = rows, columns
		}
	}
	if s.data == nil {
		s.data, s.columns = generateMockRows(s.TableName, s.output, mockScanRows)
	}
	if len(s.output) == 0 {
		s.output = s.columns
	}
}

func (s *IndexScan) NextBatch() (*sql.TupleBatch, error) {
	s.startTiming()
	defer s.endTiming()

	if s.pos >= len(s.data) {
		s.hasMore = false
		return nil, io.EOF
	}

	limit := s.batchLimit(estimatedTupleSize) / 10
	if limit < 1 {
		limit = 1
	}
	batch := sql.NewTupleBatch(s.columns...)
	scanned := 0
	for s.pos < len(s.data) && batch.Len() < limit {
		tuple := s.data[s.pos]
		s.pos++
		scanned++
		s.stats.RowsProcessed++
		if passesFilters(tuple, s.IndexConditions) && passesFilters(tuple, s.FilterConditions) {
			batch.Add(tuple)
			s.stats.RowsReturned++
		}
	}
	// One estimated page fetch per hundred rows touched.
	s.stats.DiskReads += (scanned + 99) / 100
	if s.pos >= len(s.data) {
		s.hasMore = false
	}
	return batch, nil
}

func (s *IndexScan) Reset() {
	s.resetBase()
	s.pos = 0
}

func (s *IndexScan) Cleanup() {
	s.cleanupChildren()
}

func (s *IndexScan) Copy() Operator {
	out := *s
	out.operatorBase = s.copyBase()
	out.pos = 0
	return &out
}

func (s *IndexScan) Format(sb *strings.Builder, indent int) {
	sb.WriteString(indentString(indent) + "Index Scan using " + s.IndexName + " on " + s.TableName)
	if s.Alias != "" {
		sb.WriteString(" " + s.Alias)
	}
	sb.WriteString(" (" + s.cost.String() + ")\n")
	if len(s.IndexConditions) > 0 {
		sb.WriteString(indentString(indent+1) + "Index Cond: " + sql.ExprsToString(s.IndexConditions, " AND ") + "\n")
	}
	if len(s.FilterConditions) > 0 {
		sb.WriteString(indentString(indent+1) + "Filter: " + sql.ExprsToString(s.FilterConditions, " AND ") + "\n")
	}
	s.formatChildren(sb, indent+1)
}

func (s *IndexScan) String() string { return operatorString(s) }

// generateMockRows builds a deterministic row set for a table with no
// backing source.
func generateMockRows(tableName string, columns []string, n int) ([]sql.Tuple, []string) {
	if len(columns) == 0 {
		columns = []string{tableName + "_id"}
	}
	t := memory.NewTable(tableName, columns...)
	t.Generate(n)
	return t.Rows(), t.Columns()
}
