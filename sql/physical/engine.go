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
	"sync/atomic"
	"time"

	"github.com/space-rf-org/DB25-sub000/sql"
)

// Engine drives a physical plan to completion with pause/resume/cancel
// control. Cancellation takes effect at the next batch boundary: the run
// stops and the tuples collected so far are returned.
type Engine struct {
	ctx       *sql.ExecutionContext
	stats     sql.ExecutionStats
	paused    atomic.Bool
	cancelled atomic.Bool
}

// NewEngine creates an engine over the given context.
func NewEngine(ctx *sql.ExecutionContext) *Engine {
	if ctx == nil {
		ctx = sql.NewExecutionContext()
	}
	return &Engine{ctx: ctx}
}

// ExecutePlan runs the plan to completion, honoring pause and cancel.
func (e *Engine) ExecutePlan(p *Plan) ([]sql.Tuple, error) {
	p.Context = e.ctx
	p.Initialize()
	var tuples []sql.Tuple
	for {
		if e.cancelled.Load() {
			break
		}
		for e.paused.Load() && !e.cancelled.Load() {
			time.Sleep(time.Millisecond)
		}
		batch, err := p.Root.NextBatch()
		if err == io.EOF {
			break
		}
		if err != nil {
			return tuples, err
		}
		if batch != nil {
			tuples = append(tuples, batch.Tuples...)
		}
	}
	e.stats = p.Stats()
	return tuples, nil
}

// ExecuteBatch pulls a single batch from the plan.
func (e *Engine) ExecuteBatch(p *Plan) (*sql.TupleBatch, error) {
	if e.cancelled.Load() {
		return nil, io.EOF
	}
	p.Initialize()
	return p.Root.NextBatch()
}

// Pause suspends execution at the next batch boundary.
func (e *Engine) Pause() { e.paused.Store(true) }

// Resume continues a paused execution.
func (e *Engine) Resume() { e.paused.Store(false) }

// Cancel stops execution at the next batch boundary.
func (e *Engine) Cancel() { e.cancelled.Store(true) }

// Stats returns the totals of the last completed run.
func (e *Engine) Stats() sql.ExecutionStats { return e.stats }
