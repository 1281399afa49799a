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
)

// Materialize buffers its child's output and replays it, applying any
// residual filter conditions. Selections that cannot be pushed into a scan
// become Materialize operators.
type Materialize struct {
	operatorBase
	FilterConditions []sql.Expression

	buffer   []sql.Tuple
	buffered bool
	pos      int
}

// NewMaterialize creates a materialization over a child.
func NewMaterialize(conditions []sql.Expression, child Operator) *Materialize {
	m := &Materialize{FilterConditions: conditions}
	m.SetChildren(child)
	return m
}

func (m *Materialize) Initialize(ctx *sql.ExecutionContext) {
	m.initBase(ctx)
}

func (m *Materialize) fill() error {
	child := m.children[0]
	for {
		batch, err := child.NextBatch()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		for _, t := range batch.Tuples {
			m.stats.RowsProcessed++
			if passesFilters(t, m.FilterConditions) {
				m.buffer = append(m.buffer, t)
			}
		}
	}
	m.stats.MemoryUsedBytes = len(m.buffer) * estimatedTupleSize
	m.buffered = true
	return nil
}

func (m *Materialize) NextBatch() (*sql.TupleBatch, error) {
	m.startTiming()
	defer m.endTiming()

	if !m.buffered {
		if err := m.fill(); err != nil {
			return nil, err
		}
	}
	if m.pos >= len(m.buffer) {
		m.hasMore = false
		return nil, io.EOF
	}

	batch := sql.NewTupleBatch(m.output...)
	for m.pos < len(m.buffer) && !batch.Full() {
		batch.Add(m.buffer[m.pos])
		m.pos++
		m.stats.RowsReturned++
	}
	if m.pos >= len(m.buffer) {
		m.hasMore = false
	}
	return batch, nil
}

func (m *Materialize) Reset() {
	m.resetBase()
	m.buffer = nil
	m.buffered = false
	m.pos = 0
}

func (m *Materialize) Cleanup() {
	m.buffer = nil
	m.cleanupChildren()
}

func (m *Materialize) Copy() Operator {
	out := *m
	out.operatorBase = m.copyBase()
	out.buffer = nil
	out.buffered = false
	out.pos = 0
	out.FilterConditions = append([]sql.Expression(nil), m.FilterConditions...)
	return &out
}

func (m *Materialize) Format(sb *strings.Builder, indent int) {
	sb.WriteString(indentString(indent) + "Materialize (" + m.cost.String() + ")\n")
	if len(m.FilterConditions) > 0 {
		sb.WriteString(indentString(indent+1) + "Filter: " + sql.ExprsToString(m.FilterConditions, " AND ") + "\n")
	}
	m.formatChildren(sb, indent+1)
}

func (m *Materialize) String() string { return operatorString(m) }

// Gather drains its children in order into one stream. The parallel scan
// gathers its own workers; the planner emits Gather for logical set
// operations, concatenating both inputs.
type Gather struct {
	operatorBase
	childIdx int
}

// NewGather creates a gather over any number of children.
func NewGather(children ...Operator) *Gather {
	g := &Gather{}
	g.SetChildren(children...)
	return g
}

func (g *Gather) Initialize(ctx *sql.ExecutionContext) {
	g.initBase(ctx)
}

func (g *Gather) NextBatch() (*sql.TupleBatch, error) {
	g.startTiming()
	defer g.endTiming()

	for g.childIdx < len(g.children) {
		batch, err := g.children[g.childIdx].NextBatch()
		if err == io.EOF {
			g.childIdx++
			continue
		}
		if err != nil {
			return nil, err
		}
		g.stats.RowsReturned += batch.Len()
		return batch, nil
	}
	g.hasMore = false
	return nil, io.EOF
}

func (g *Gather) Reset() {
	g.resetBase()
	g.childIdx = 0
}

func (g *Gather) Cleanup() {
	g.cleanupChildren()
}

func (g *Gather) Copy() Operator {
	out := *g
	out.operatorBase = g.copyBase()
	out.childIdx = 0
	return &out
}

func (g *Gather) Format(sb *strings.Builder, indent int) {
	sb.WriteString(indentString(indent) + "Gather (" + g.cost.String() + ")\n")
	g.formatChildren(sb, indent+1)
}

func (g *Gather) String() string { return operatorString(g) }
