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
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/space-rf-org/DB25-sub000/sql"
)

// ParallelSequentialScan splits a table into contiguous row ranges and
// scans them with worker goroutines feeding a bounded channel. The channel
// replaces the classic mutex/condvar result queue: workers are the
// producers, NextBatch the single consumer, and a closed channel is the
// completion signal. Inter-worker interleaving is arbitrary, so overall
// output order is undefined.
type ParallelSequentialScan struct {
	operatorBase
	TableName        string
	FilterConditions []sql.Expression
	Degree           int

	source  RowSource
	data    []sql.Tuple
	columns []string

	results chan *sql.TupleBatch
	group   *errgroup.Group
	mu      sync.Mutex
}

// NewParallelSequentialScan creates a parallel scan of the given degree.
func NewParallelSequentialScan(tableName string, degree int, source RowSource) *ParallelSequentialScan {
	if degree < 1 {
		degree = 1
	}
	return &ParallelSequentialScan{TableName: tableName, Degree: degree, source: source}
}

func (s *ParallelSequentialScan) Initialize(ctx *sql.ExecutionContext) {
	s.initBase(ctx)
	if s.data == nil {
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
	s.startWorkers()
}

func (s *ParallelSequentialScan) startWorkers() {
	s.results = make(chan *sql.TupleBatch, s.Degree*2)
	s.group = &errgroup.Group{}

	chunk := (len(s.data) + s.Degree - 1) / s.Degree
	if chunk < 1 {
		chunk = 1
	}
	for w := 0; w < s.Degree; w++ {
		start := w * chunk
		end := start + chunk
		if start >= len(s.data) {
			break
		}
		if end > len(s.data) {
			end = len(s.data)
		}
		s.group.Go(func() error {
			s.workerScan(start, end)
			return nil
		})
	}
	go func() {
		// Completion signal: every worker done, queue drained.
		_ = s.group.Wait()
		close(s.results)
	}()
}

// workerScan scans one contiguous row range, pushing matching tuples in
// batch-sized chunks. Each worker's own output stays ordered.
func (s *ParallelSequentialScan) workerScan(start, end int) {
	batch := sql.NewTupleBatch(s.columns...)
	flush := func() {
		if !batch.Empty() {
			s.results <- batch
			batch = sql.NewTupleBatch(s.columns...)
		}
	}
	for i := start; i < end; i++ {
		tuple := s.data[i]
		s.mu.Lock()
		s.stats.RowsProcessed++
		s.mu.Unlock()
		if passesFilters(tuple, s.FilterConditions) {
			batch.Add(tuple)
			if batch.Full() {
				flush()
			}
		}
	}
	flush()
}

func (s *ParallelSequentialScan) NextBatch() (*sql.TupleBatch, error) {
	s.startTiming()
	defer s.endTiming()

	batch, ok := <-s.results
	if !ok {
		s.hasMore = false
		return nil, io.EOF
	}
	s.mu.Lock()
	s.stats.RowsReturned += batch.Len()
	s.mu.Unlock()
	return batch, nil
}

func (s *ParallelSequentialScan) Reset() {
	s.drain()
	s.resetBase()
	s.results = nil
	s.group = nil
}

func (s *ParallelSequentialScan) Cleanup() {
	s.drain()
	s.cleanupChildren()
}

// drain joins the workers by consuming the channel to its close.
func (s *ParallelSequentialScan) drain() {
	if s.results == nil {
		return
	}
	for range s.results {
	}
	s.results = nil
}

func (s *ParallelSequentialScan) Copy() Operator {
	out := &ParallelSequentialScan{
		TableName:        s.TableName,
		FilterConditions: append([]sql.Expression(nil), s.FilterConditions...),
		Degree:           s.Degree,
		source:           s.source,
	}
	out.operatorBase = s.copyBase()
	return out
}

func (s *ParallelSequentialScan) Format(sb *strings.Builder, indent int) {
	sb.WriteString(fmt.Sprintf("%sParallel Seq Scan on %s (workers=%d %s)\n",
		indentString(indent), s.TableName, s.Degree, s.cost.String()))
	if len(s.FilterConditions) > 0 {
		sb.WriteString(indentString(indent+1) + "Filter: " + sql.ExprsToString(s.FilterConditions, " AND ") + "\n")
	}
	s.formatChildren(sb, indent+1)
}

func (s *ParallelSequentialScan) String() string { return operatorString(s) }
