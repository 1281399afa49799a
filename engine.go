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

// Package db25 compiles PostgreSQL-dialect SQL into executable plans:
// parse, bind against a schema registry, lower to a logical plan, optimize
// it, and select physical operators for a vectorized pull-based executor.
package db25

import (
	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"

	"github.com/space-rf-org/DB25-sub000/sql"
	"github.com/space-rf-org/DB25-sub000/sql/binder"
	"github.com/space-rf-org/DB25-sub000/sql/physical"
	"github.com/space-rf-org/DB25-sub000/sql/plan"
	"github.com/space-rf-org/DB25-sub000/sql/planner"
)

// Engine is the SQL-text-to-executable-plan compiler. The registry lives
// for the engine's lifetime; each query compilation owns its transient
// state, so concurrent compilations must not share one Engine without
// external serialization around schema mutation.
type Engine struct {
	Registry        *sql.Registry
	Planner         *planner.Planner
	PhysicalPlanner *physical.Planner
}

// New creates an engine over a schema.
func New(schema *sql.Database) *Engine {
	registry := sql.NewRegistry(schema)
	return &Engine{
		Registry:        registry,
		Planner:         planner.New(registry),
		PhysicalPlanner: physical.NewPlanner(),
	}
}

// SetTableStats installs statistics for one table on both planners.
func (e *Engine) SetTableStats(tableName string, stats sql.TableStats) {
	e.Planner.SetTableStats(tableName, stats)
	e.PhysicalPlanner.SetTableStats(tableName, stats)
}

// SetRowSource installs the storage hook physical scans read from.
func (e *Engine) SetRowSource(source physical.RowSource) {
	e.PhysicalPlanner.SetRowSource(source)
}

// Result is the outcome of BindAndPlan. On failure Errors is non-empty and
// the other fields are unset.
type Result struct {
	Success        bool
	BoundStatement binder.Statement
	LogicalPlan    *plan.LogicalPlan
	Errors         []string
}

// BindAndPlan binds the query and builds its logical plan. Binder errors
// are surfaced unchanged; no plan is produced when binding failed.
func (e *Engine) BindAndPlan(query string) *Result {
	span := opentracing.StartSpan("bind_and_plan")
	defer span.Finish()

	b := binder.New(e.Registry)
	bound := b.Bind(query)
	if bound == nil {
		result := &Result{}
		for _, err := range b.Errors() {
			result.Errors = append(result.Errors, err.Error())
		}
		if len(result.Errors) == 0 {
			result.Errors = append(result.Errors, "binding produced no statement")
		}
		logrus.WithField("errors", len(result.Errors)).Debug("binding failed")
		return result
	}

	lp, err := e.Planner.Plan(bound)
	if err != nil {
		return &Result{Errors: []string{err.Error()}}
	}

	return &Result{Success: true, BoundStatement: bound, LogicalPlan: lp}
}

// Query compiles SQL all the way to a physical plan: bind, plan, optimize,
// convert.
func (e *Engine) Query(query string) (*physical.Plan, error) {
	span := opentracing.StartSpan("query")
	defer span.Finish()

	result := e.BindAndPlan(query)
	if !result.Success {
		return nil, &CompileError{Errors: result.Errors}
	}

	optimizeSpan := opentracing.StartSpan("optimize", opentracing.ChildOf(span.Context()))
	optimized := e.Planner.Optimize(result.LogicalPlan)
	optimizeSpan.Finish()

	physicalSpan := opentracing.StartSpan("physical_plan", opentracing.ChildOf(span.Context()))
	defer physicalSpan.Finish()
	return e.PhysicalPlanner.CreatePhysicalPlan(optimized)
}

// Execute compiles and runs a query, materializing every result tuple.
func (e *Engine) Execute(query string) ([]sql.Tuple, error) {
	p, err := e.Query(query)
	if err != nil {
		return nil, err
	}
	defer p.Cleanup()
	return p.Execute()
}

// CompileError carries the accumulated binder errors of a failed
// compilation.
type CompileError struct {
	Errors []string
}

func (e *CompileError) Error() string {
	if len(e.Errors) == 0 {
		return "compilation failed"
	}
	return e.Errors[0]
}
