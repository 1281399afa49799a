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

	"github.com/space-rf-org/DB25-sub000/sql"
	"github.com/space-rf-org/DB25-sub000/sql/expression"
)

// NestedLoopJoin iterates the inner child to completion for every outer
// tuple, rewinding it in between. It keeps cursor state across NextBatch
// calls instead of buffering the whole inner side. An empty condition list
// makes it a cross product.
type NestedLoopJoin struct {
	operatorBase
	JoinKind       sql.JoinKind
	JoinConditions []sql.Expression

	outerBatch *sql.TupleBatch
	outerIdx   int
}

// NewNestedLoopJoin creates a nested-loop join over two children.
func NewNestedLoopJoin(kind sql.JoinKind, outer, inner Operator) *NestedLoopJoin {
	j := &NestedLoopJoin{JoinKind: kind}
	j.SetChildren(outer, inner)
	return j
}

func (j *NestedLoopJoin) Initialize(ctx *sql.ExecutionContext) {
	j.initBase(ctx)
}

func (j *NestedLoopJoin) NextBatch() (*sql.TupleBatch, error) {
	j.startTiming()
	defer j.endTiming()

	if !j.hasMore {
		return nil, io.EOF
	}

	outer, inner := j.children[0], j.children[1]
	batch := sql.NewTupleBatch(j.output...)

	for !batch.Full() {
		if j.outerBatch == nil || j.outerIdx >= j.outerBatch.Len() {
			next, err := outer.NextBatch()
			if err == io.EOF {
				j.hasMore = false
				break
			}
			if err != nil {
				return nil, err
			}
			j.outerBatch = next
			j.outerIdx = 0
			continue
		}

		outerTuple := j.outerBatch.Tuples[j.outerIdx]
		j.outerIdx++

		matched := false
		inner.Reset()
		inner.Initialize(j.ctx)
		for {
			ib, err := inner.NextBatch()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, err
			}
			for _, innerTuple := range ib.Tuples {
				j.stats.RowsProcessed++
				merged := mergeTuples(outerTuple, innerTuple)
				if j.matches(merged) {
					matched = true
					batch.Add(merged)
					j.stats.RowsReturned++
				}
			}
		}
		if !matched && j.JoinKind == sql.LeftOuterJoin {
			batch.Add(padRight(outerTuple, len(inner.OutputColumns())))
			j.stats.RowsReturned++
		}
	}

	if batch.Empty() && !j.hasMore {
		return nil, io.EOF
	}
	return batch, nil
}

func (j *NestedLoopJoin) matches(merged sql.Tuple) bool {
	if len(j.JoinConditions) == 0 {
		return true
	}
	return passesFilters(merged, j.JoinConditions)
}

func (j *NestedLoopJoin) Reset() {
	j.resetBase()
	j.outerBatch = nil
	j.outerIdx = 0
}

func (j *NestedLoopJoin) Cleanup() {
	j.outerBatch = nil
	j.cleanupChildren()
}

func (j *NestedLoopJoin) Copy() Operator {
	out := *j
	out.operatorBase = j.copyBase()
	out.outerBatch = nil
	out.outerIdx = 0
	out.JoinConditions = append([]sql.Expression(nil), j.JoinConditions...)
	return &out
}

func (j *NestedLoopJoin) Format(sb *strings.Builder, indent int) {
	sb.WriteString(indentString(indent) + "Nested Loop " + j.JoinKind.String() + " (" + j.cost.String() + ")\n")
	if len(j.JoinConditions) > 0 {
		sb.WriteString(indentString(indent+1) + "Join Filter: " + sql.ExprsToString(j.JoinConditions, " AND ") + "\n")
	}
	j.formatChildren(sb, indent+1)
}

func (j *NestedLoopJoin) String() string { return operatorString(j) }

// padRight appends empty values standing in for the missing inner side of
// an outer join.
func padRight(t sql.Tuple, width int) sql.Tuple {
	out := t.Copy()
	for i := 0; i < width; i++ {
		out.Values = append(out.Values, "")
	}
	return out
}

// HashJoin builds a multimap over its right child on the first call, then
// streams the left child through it batch by batch. Left-outer joins emit
// unmatched probe tuples padded with nulls.
type HashJoin struct {
	operatorBase
	JoinKind       sql.JoinKind
	JoinConditions []sql.Expression

	hashTable     map[string][]sql.Tuple
	buildComplete bool
	probeBatch    *sql.TupleBatch
	probeIdx      int
	probeKey      sql.Expression
	buildKey      sql.Expression
	keysPlanned   bool
}

// NewHashJoin creates a hash join: children[0] is the probe side,
// children[1] the build side.
func NewHashJoin(kind sql.JoinKind, probe, build Operator) *HashJoin {
	j := &HashJoin{JoinKind: kind}
	j.SetChildren(probe, build)
	return j
}

func (j *HashJoin) Initialize(ctx *sql.ExecutionContext) {
	j.initBase(ctx)
}

// planKeys picks the hash-key expression for each side from the first
// equality condition whose column names place its operands on opposite
// children. When no condition is that clear the first tuple column keys
// both sides.
func (j *HashJoin) planKeys() {
	j.keysPlanned = true
	probeCols := columnSet(j.children[0].OutputColumns())
	buildCols := columnSet(j.children[1].OutputColumns())
	for _, cond := range j.JoinConditions {
		op, ok := cond.(*expression.BinaryOp)
		if !ok || op.Op != "=" {
			continue
		}
		lName, lOK := fieldName(op.Left)
		rName, rOK := fieldName(op.Right)
		if !lOK || !rOK {
			continue
		}
		switch {
		case probeCols[lName] && !buildCols[lName] && buildCols[rName]:
			j.probeKey, j.buildKey = op.Left, op.Right
			return
		case probeCols[rName] && !buildCols[rName] && buildCols[lName]:
			j.probeKey, j.buildKey = op.Right, op.Left
			return
		}
	}
}

func columnSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

func fieldName(e sql.Expression) (string, bool) {
	if f, ok := e.(*expression.GetField); ok {
		return f.Name, true
	}
	return "", false
}

func (j *HashJoin) probeKeyFor(t sql.Tuple) string {
	if j.probeKey != nil {
		return j.probeKey.Eval(t)
	}
	return t.Value(0)
}

func (j *HashJoin) buildKeyFor(t sql.Tuple) string {
	if j.buildKey != nil {
		return j.buildKey.Eval(t)
	}
	return t.Value(0)
}

func (j *HashJoin) buildHashTable() error {
	build := j.children[1]
	j.hashTable = make(map[string][]sql.Tuple)
	rows := 0
	for {
		batch, err := build.NextBatch()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		for _, t := range batch.Tuples {
			key := j.buildKeyFor(t)
			j.hashTable[key] = append(j.hashTable[key], t)
			rows++
			j.stats.RowsProcessed++
		}
	}
	j.stats.MemoryUsedBytes = rows * hashJoinBytesPerRow
	if j.ctx != nil && j.stats.MemoryUsedBytes > j.ctx.WorkMemLimit {
		j.stats.UsedTempFiles = true
		j.stats.DiskWrites += j.stats.MemoryUsedBytes / int(pageSize)
	}
	j.buildComplete = true
	return nil
}

func (j *HashJoin) NextBatch() (*sql.TupleBatch, error) {
	j.startTiming()
	defer j.endTiming()

	if !j.hasMore {
		return nil, io.EOF
	}
	if !j.keysPlanned {
		j.planKeys()
	}
	if !j.buildComplete {
		if err := j.buildHashTable(); err != nil {
			return nil, err
		}
	}

	probe := j.children[0]
	batch := sql.NewTupleBatch(j.output...)

	for !batch.Full() {
		if j.probeBatch == nil || j.probeIdx >= j.probeBatch.Len() {
			next, err := probe.NextBatch()
			if err == io.EOF {
				j.hasMore = false
				break
			}
			if err != nil {
				return nil, err
			}
			j.probeBatch = next
			j.probeIdx = 0
			continue
		}

		probeTuple := j.probeBatch.Tuples[j.probeIdx]
		j.probeIdx++
		j.stats.RowsProcessed++

		matches := j.hashTable[j.probeKeyFor(probeTuple)]
		if len(matches) == 0 {
			if j.JoinKind == sql.LeftOuterJoin {
				batch.Add(padRight(probeTuple, len(j.children[1].OutputColumns())))
				j.stats.RowsReturned++
			}
			continue
		}
		for _, buildTuple := range matches {
			batch.Add(mergeTuples(probeTuple, buildTuple))
			j.stats.RowsReturned++
		}
	}

	if batch.Empty() && !j.hasMore {
		return nil, io.EOF
	}
	return batch, nil
}

func (j *HashJoin) Reset() {
	j.resetBase()
	j.hashTable = nil
	j.buildComplete = false
	j.probeBatch = nil
	j.probeIdx = 0
	j.probeKey, j.buildKey = nil, nil
	j.keysPlanned = false
}

func (j *HashJoin) Cleanup() {
	j.hashTable = nil
	j.probeBatch = nil
	j.cleanupChildren()
}

func (j *HashJoin) Copy() Operator {
	out := *j
	out.operatorBase = j.copyBase()
	out.hashTable = nil
	out.buildComplete = false
	out.probeBatch = nil
	out.probeIdx = 0
	out.probeKey, out.buildKey = nil, nil
	out.keysPlanned = false
	out.JoinConditions = append([]sql.Expression(nil), j.JoinConditions...)
	return &out
}

func (j *HashJoin) Format(sb *strings.Builder, indent int) {
	sb.WriteString(indentString(indent) + "Hash " + j.JoinKind.String() + " (" + j.cost.String() + ")\n")
	if len(j.JoinConditions) > 0 {
		sb.WriteString(indentString(indent+1) + "Hash Cond: " + sql.ExprsToString(j.JoinConditions, " AND ") + "\n")
	}
	j.formatChildren(sb, indent+1)
}

func (j *HashJoin) String() string { return operatorString(j) }
