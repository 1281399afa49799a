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

	"github.com/space-rf-org/DB25-sub000/sql"
)

// Plan is an executable operator tree plus the shared execution context.
type Plan struct {
	Root    Operator
	Context *sql.ExecutionContext

	initialized bool
}

// NewPlan wraps a root operator with a context.
func NewPlan(root Operator, ctx *sql.ExecutionContext) *Plan {
	if ctx == nil {
		ctx = sql.NewExecutionContext()
	}
	return &Plan{Root: root, Context: ctx}
}

// Initialize readies the operator tree. Execute calls it implicitly.
func (p *Plan) Initialize() {
	if p.Root != nil && !p.initialized {
		p.Root.Initialize(p.Context)
		p.initialized = true
	}
}

// Execute runs the plan to completion and materializes every tuple.
func (p *Plan) Execute() ([]sql.Tuple, error) {
	if p.Root == nil {
		return nil, fmt.Errorf("physical: empty plan")
	}
	p.Initialize()
	var tuples []sql.Tuple
	for {
		batch, err := p.Root.NextBatch()
		if err == io.EOF {
			return tuples, nil
		}
		if err != nil {
			return tuples, err
		}
		if batch != nil {
			tuples = append(tuples, batch.Tuples...)
		}
	}
}

// ExecuteBatch returns the next batch of the stream, io.EOF at the end.
func (p *Plan) ExecuteBatch() (*sql.TupleBatch, error) {
	if p.Root == nil {
		return nil, fmt.Errorf("physical: empty plan")
	}
	p.Initialize()
	return p.Root.NextBatch()
}

// Reset rewinds the plan so it can execute again.
func (p *Plan) Reset() {
	if p.Root != nil {
		p.Root.Reset()
		p.initialized = false
	}
}

// Cleanup releases the resources of every operator.
func (p *Plan) Cleanup() {
	if p.Root != nil {
		p.Root.Cleanup()
	}
}

// Stats merges every operator's counters into plan totals.
func (p *Plan) Stats() sql.ExecutionStats {
	var total sql.ExecutionStats
	var walk func(op Operator)
	walk = func(op Operator) {
		total.Merge(*op.Stats())
		for _, child := range op.Children() {
			walk(child)
		}
	}
	if p.Root != nil {
		walk(p.Root)
	}
	return total
}

func (p *Plan) String() string {
	if p.Root == nil {
		return "<empty plan>\n"
	}
	return p.Root.String()
}

// ExplainAnalyze renders the plan with each operator's actual runtime
// counters.
func (p *Plan) ExplainAnalyze() string {
	var sb strings.Builder
	var walk func(op Operator, indent int)
	walk = func(op Operator, indent int) {
		stats := op.Stats()
		line := op.String()
		if i := strings.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
		}
		sb.WriteString(indentString(indent) + line + "\n")
		sb.WriteString(fmt.Sprintf("%s(actual rows=%d processed=%d time=%.3fms",
			indentString(indent+1), stats.RowsReturned, stats.RowsProcessed, stats.ExecutionTimeMs))
		if stats.MemoryUsedBytes > 0 {
			sb.WriteString(fmt.Sprintf(" memory=%dB", stats.MemoryUsedBytes))
		}
		if stats.UsedTempFiles {
			sb.WriteString(" temp=used")
		}
		sb.WriteString(")\n")
		for _, child := range op.Children() {
			walk(child, indent+1)
		}
	}
	if p.Root != nil {
		walk(p.Root, 0)
	}
	return sb.String()
}

// Copy returns an independently-owned plan sharing the same context.
func (p *Plan) Copy() *Plan {
	out := &Plan{Context: p.Context}
	if p.Root != nil {
		out.Root = p.Root.Copy()
	}
	return out
}
