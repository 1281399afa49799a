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

	"github.com/mitchellh/hashstructure"
	"github.com/spf13/cast"

	"github.com/space-rf-org/DB25-sub000/sql"
	"github.com/space-rf-org/DB25-sub000/sql/expression"
)

// aggState accumulates one aggregate function over one group.
type aggState struct {
	fn    *expression.Function
	count int
	sum   float64
	min   string
	max   string
	seen  bool
}

func (a *aggState) update(t sql.Tuple) {
	a.count++
	var v string
	if len(a.fn.Args) > 0 {
		v = a.fn.Args[0].Eval(t)
	}
	switch a.fn.Name {
	case "sum", "avg":
		a.sum += cast.ToFloat64(v)
	case "min":
		if !a.seen || expression.Compare(v, a.min) < 0 {
			a.min = v
		}
	case "max":
		if !a.seen || expression.Compare(v, a.max) > 0 {
			a.max = v
		}
	}
	a.seen = true
}

func (a *aggState) result() string {
	switch a.fn.Name {
	case "count":
		return cast.ToString(a.count)
	case "sum":
		return expression.FormatNumeric(a.sum)
	case "avg":
		if a.count == 0 {
			return ""
		}
		return expression.FormatNumeric(a.sum / float64(a.count))
	case "min":
		return a.min
	case "max":
		return a.max
	}
	return ""
}

// group holds one group's key values and accumulators.
type group struct {
	keyValues []string
	states    []*aggState
}

// HashAggregate is blocking: it consumes its whole input, partitions
// tuples by the composite group key, then emits one tuple per group in
// first-seen order. Hash-based, so callers must not rely on any output
// order beyond that.
type HashAggregate struct {
	operatorBase
	GroupBy          []sql.Expression
	Aggregates       []sql.Expression
	HavingConditions []sql.Expression

	groups     map[uint64]*group
	groupOrder []uint64
	results    []sql.Tuple
	done       bool
	pos        int
}

// NewHashAggregate creates an aggregation over a child.
func NewHashAggregate(groupBy, aggregates []sql.Expression, child Operator) *HashAggregate {
	a := &HashAggregate{GroupBy: groupBy, Aggregates: aggregates}
	a.SetChildren(child)
	return a
}

func (a *HashAggregate) Initialize(ctx *sql.ExecutionContext) {
	a.initBase(ctx)
}

// groupKey hashes the evaluated group-by values into the composite key.
func (a *HashAggregate) groupKey(values []string) uint64 {
	key, err := hashstructure.Hash(values, nil)
	if err != nil {
		// Hashing a string slice cannot fail; keep a deterministic
		// fallback anyway.
		var h uint64
		for _, v := range values {
			for i := 0; i < len(v); i++ {
				h = h*31 + uint64(v[i])
			}
		}
		return h
	}
	return key
}

func (a *HashAggregate) performAggregation() error {
	child := a.children[0]
	a.groups = make(map[uint64]*group)

	for {
		batch, err := child.NextBatch()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		for _, t := range batch.Tuples {
			a.stats.RowsProcessed++
			values := make([]string, 0, len(a.GroupBy))
			for _, e := range a.GroupBy {
				values = append(values, e.Eval(t))
			}
			key := a.groupKey(values)
			g, ok := a.groups[key]
			if !ok {
				g = &group{keyValues: values}
				for _, e := range a.Aggregates {
					fn, isFn := e.(*expression.Function)
					if !isFn {
						fn = expression.NewFunction("count")
					}
					g.states = append(g.states, &aggState{fn: fn})
				}
				a.groups[key] = g
				a.groupOrder = append(a.groupOrder, key)
			}
			for _, state := range g.states {
				state.update(t)
			}
		}
	}

	a.stats.MemoryUsedBytes = len(a.groups) * hashAggBytesPerGroup
	if a.ctx != nil && a.stats.MemoryUsedBytes > a.ctx.WorkMemLimit {
		a.stats.UsedTempFiles = true
	}

	for _, key := range a.groupOrder {
		g := a.groups[key]
		t := sql.NewTuple()
		for i, e := range a.GroupBy {
			t.Values = append(t.Values, g.keyValues[i])
			t.SetNamedValue(e.String(), g.keyValues[i])
		}
		for i, e := range a.Aggregates {
			v := g.states[i].result()
			t.Values = append(t.Values, v)
			t.SetNamedValue(e.String(), v)
		}
		if passesFilters(t, a.HavingConditions) {
			a.results = append(a.results, t)
		}
	}
	a.done = true
	return nil
}

func (a *HashAggregate) NextBatch() (*sql.TupleBatch, error) {
	a.startTiming()
	defer a.endTiming()

	if !a.done {
		if err := a.performAggregation(); err != nil {
			return nil, err
		}
	}
	if a.pos >= len(a.results) {
		a.hasMore = false
		return nil, io.EOF
	}

	batch := sql.NewTupleBatch(a.output...)
	for a.pos < len(a.results) && !batch.Full() {
		batch.Add(a.results[a.pos])
		a.pos++
		a.stats.RowsReturned++
	}
	if a.pos >= len(a.results) {
		a.hasMore = false
	}
	return batch, nil
}

func (a *HashAggregate) Reset() {
	a.resetBase()
	a.groups = nil
	a.groupOrder = nil
	a.results = nil
	a.done = false
	a.pos = 0
}

func (a *HashAggregate) Cleanup() {
	a.groups = nil
	a.results = nil
	a.cleanupChildren()
}

func (a *HashAggregate) Copy() Operator {
	out := *a
	out.operatorBase = a.copyBase()
	out.groups = nil
	out.groupOrder = nil
	out.results = nil
	out.done = false
	out.pos = 0
	out.GroupBy = append([]sql.Expression(nil), a.GroupBy...)
	out.Aggregates = append([]sql.Expression(nil), a.Aggregates...)
	out.HavingConditions = append([]sql.Expression(nil), a.HavingConditions...)
	return &out
}

func (a *HashAggregate) Format(sb *strings.Builder, indent int) {
	sb.WriteString(fmt.Sprintf("%sHashAggregate (%s)\n", indentString(indent), a.cost.String()))
	if len(a.GroupBy) > 0 {
		sb.WriteString(indentString(indent+1) + "Group Key: " + sql.ExprsToString(a.GroupBy, ", ") + "\n")
	}
	if len(a.Aggregates) > 0 {
		sb.WriteString(indentString(indent+1) + "Aggregates: " + sql.ExprsToString(a.Aggregates, ", ") + "\n")
	}
	if len(a.HavingConditions) > 0 {
		sb.WriteString(indentString(indent+1) + "Filter: " + sql.ExprsToString(a.HavingConditions, " AND ") + "\n")
	}
	a.formatChildren(sb, indent+1)
}

func (a *HashAggregate) String() string { return operatorString(a) }
