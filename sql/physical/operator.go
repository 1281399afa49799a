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

// Package physical implements the executable plan layer: the pull-based
// batched operator protocol, the operator implementations, and the planner
// that selects them from a logical plan.
package physical

import (
	"strings"
	"time"

	"github.com/space-rf-org/DB25-sub000/sql"
	"github.com/space-rf-org/DB25-sub000/sql/plan"
)

// Operator is the pull-based execution interface every physical operator
// implements. The parent asks each child for batches; data flows upward,
// control downward. NextBatch returns io.EOF once the stream is done.
type Operator interface {
	// Initialize readies the operator for execution. It is called
	// top-down before the first NextBatch, and again after each Reset.
	Initialize(ctx *sql.ExecutionContext)
	// NextBatch returns the next batch of tuples, or io.EOF at the end of
	// the stream.
	NextBatch() (*sql.TupleBatch, error)
	// HasMoreData reports whether the stream may yield more tuples. It
	// transitions true to false exactly once.
	HasMoreData() bool
	// Reset returns the operator to its pre-initialize state, recursively
	// resetting children and clearing local stats.
	Reset()
	// Cleanup releases held resources: hash tables, sort buffers, worker
	// goroutines.
	Cleanup()

	Children() []Operator
	SetChildren(children ...Operator)
	Stats() *sql.ExecutionStats
	EstimatedCost() plan.PlanCost
	OutputColumns() []string
	Copy() Operator
	Format(sb *strings.Builder, indent int)
	String() string
}

// RowSource supplies materialized rows for scans, standing in for the
// storage layer.
type RowSource interface {
	TableRows(tableName string) ([]sql.Tuple, []string, bool)
}

// operatorBase carries the state shared by every operator.
type operatorBase struct {
	ctx      *sql.ExecutionContext
	children []Operator
	output   []string
	cost     plan.PlanCost
	stats    sql.ExecutionStats
	hasMore  bool
	started  time.Time
}

func (b *operatorBase) Children() []Operator             { return b.children }
func (b *operatorBase) SetChildren(children ...Operator) { b.children = children }
func (b *operatorBase) Stats() *sql.ExecutionStats       { return &b.stats }
func (b *operatorBase) EstimatedCost() plan.PlanCost     { return b.cost }
func (b *operatorBase) OutputColumns() []string          { return b.output }
func (b *operatorBase) HasMoreData() bool                { return b.hasMore }

// SetEstimatedCost installs the cost carried over from the logical node.
func (b *operatorBase) SetEstimatedCost(cost plan.PlanCost) { b.cost = cost }

// SetOutputColumns installs the operator's output column names.
func (b *operatorBase) SetOutputColumns(columns ...string) { b.output = columns }

func (b *operatorBase) initBase(ctx *sql.ExecutionContext) {
	b.ctx = ctx
	b.hasMore = true
	for _, child := range b.children {
		child.Initialize(ctx)
	}
}

func (b *operatorBase) resetBase() {
	b.stats = sql.ExecutionStats{}
	b.hasMore = true
	for _, child := range b.children {
		child.Reset()
	}
}

func (b *operatorBase) cleanupChildren() {
	for _, child := range b.children {
		child.Cleanup()
	}
}

// startTiming and endTiming bracket one NextBatch call.
func (b *operatorBase) startTiming() { b.started = time.Now() }

func (b *operatorBase) endTiming() {
	b.stats.ExecutionTimeMs += float64(time.Since(b.started).Microseconds()) / 1000.0
}

func (b *operatorBase) copyBase() operatorBase {
	out := operatorBase{
		output:  append([]string(nil), b.output...),
		cost:    b.cost,
		hasMore: true,
	}
	for _, child := range b.children {
		out.children = append(out.children, child.Copy())
	}
	return out
}

// batchLimit returns how many tuples an operator should emit per batch
// under the current memory limit and an assumed tuple footprint.
func (b *operatorBase) batchLimit(tupleSize int) int {
	limit := sql.DefaultBatchSize
	if b.ctx != nil && b.ctx.WorkMemLimit > 0 && tupleSize > 0 {
		if byMem := b.ctx.WorkMemLimit / tupleSize; byMem < limit {
			limit = byMem
		}
	}
	if limit < 1 {
		limit = 1
	}
	return limit
}

func indentString(indent int) string { return strings.Repeat("  ", indent) }

func operatorString(op Operator) string {
	var sb strings.Builder
	op.Format(&sb, 0)
	return sb.String()
}

func (b *operatorBase) formatChildren(sb *strings.Builder, indent int) {
	for _, child := range b.children {
		child.Format(sb, indent)
	}
}

// mergeTuples concatenates two tuples. Named values keep the left side on
// a collision, so a shared column name like "id" still reads the outer
// side's value.
func mergeTuples(left, right sql.Tuple) sql.Tuple {
	out := left.Copy()
	out.Values = append(out.Values, right.Values...)
	for k, v := range right.ColumnMap {
		if _, exists := out.ColumnMap[k]; !exists {
			out.SetNamedValue(k, v)
		}
	}
	return out
}

// passesFilters evaluates a conjunction of filter conditions on a tuple.
func passesFilters(t sql.Tuple, conditions []sql.Expression) bool {
	for _, cond := range conditions {
		if cond.Eval(t) != "true" {
			return false
		}
	}
	return true
}
