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
	"sort"
	"strings"

	"github.com/space-rf-org/DB25-sub000/sql"
	"github.com/space-rf-org/DB25-sub000/sql/expression"
	"github.com/space-rf-org/DB25-sub000/sql/plan"
)

// Sort is blocking: it drains its child completely, sorts in memory, then
// emits batches. Exceeding the work-mem budget is reported through the
// stats; the actual external merge is left to the storage layer.
type Sort struct {
	operatorBase
	SortKeys []plan.SortKey

	buffer []sql.Tuple
	sorted bool
	pos    int
}

// NewSort creates a sort over a child.
func NewSort(keys []plan.SortKey, child Operator) *Sort {
	s := &Sort{SortKeys: keys}
	s.SetChildren(child)
	return s
}

func (s *Sort) Initialize(ctx *sql.ExecutionContext) {
	s.initBase(ctx)
}

func (s *Sort) performSort() error {
	child := s.children[0]
	for {
		batch, err := child.NextBatch()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		s.buffer = append(s.buffer, batch.Tuples...)
		s.stats.RowsProcessed += batch.Len()
	}

	s.stats.MemoryUsedBytes = len(s.buffer) * sortBytesPerRow
	if s.ctx != nil && s.stats.MemoryUsedBytes > s.ctx.WorkMemLimit {
		s.stats.UsedTempFiles = true
		s.stats.DiskWrites += s.stats.MemoryUsedBytes / pageSize
	}

	sort.SliceStable(s.buffer, func(i, j int) bool {
		return s.less(s.buffer[i], s.buffer[j])
	})
	s.sorted = true
	return nil
}

// less orders two tuples by the sort keys. Empty values sort as NULLs, per
// key nulls-first flag.
func (s *Sort) less(a, b sql.Tuple) bool {
	for _, key := range s.SortKeys {
		av, bv := key.Expr.Eval(a), key.Expr.Eval(b)
		if av == bv {
			continue
		}
		if av == "" {
			return key.NullsFirst
		}
		if bv == "" {
			return !key.NullsFirst
		}
		cmp := expression.Compare(av, bv)
		if cmp == 0 {
			continue
		}
		if key.Ascending {
			return cmp < 0
		}
		return cmp > 0
	}
	return false
}

func (s *Sort) NextBatch() (*sql.TupleBatch, error) {
	s.startTiming()
	defer s.endTiming()

	if !s.sorted {
		if err := s.performSort(); err != nil {
			return nil, err
		}
	}
	if s.pos >= len(s.buffer) {
		s.hasMore = false
		return nil, io.EOF
	}

	batch := sql.NewTupleBatch(s.output...)
	for s.pos < len(s.buffer) && !batch.Full() {
		batch.Add(s.buffer[s.pos])
		s.pos++
		s.stats.RowsReturned++
	}
	if s.pos >= len(s.buffer) {
		s.hasMore = false
	}
	return batch, nil
}

func (s *Sort) Reset() {
	s.resetBase()
	s.buffer = nil
	s.sorted = false
	s.pos = 0
}

func (s *Sort) Cleanup() {
	s.buffer = nil
	s.cleanupChildren()
}

func (s *Sort) Copy() Operator {
	out := *s
	out.operatorBase = s.copyBase()
	out.buffer = nil
	out.sorted = false
	out.pos = 0
	out.SortKeys = append([]plan.SortKey(nil), s.SortKeys...)
	return &out
}

func (s *Sort) Format(sb *strings.Builder, indent int) {
	sb.WriteString(indentString(indent) + "Sort (" + s.cost.String() + ")\n")
	if len(s.SortKeys) > 0 {
		sb.WriteString(indentString(indent+1) + "Sort Key: ")
		for i, key := range s.SortKeys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(key.String())
		}
		sb.WriteString("\n")
	}
	s.formatChildren(sb, indent+1)
}

func (s *Sort) String() string { return operatorString(s) }
