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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/space-rf-org/DB25-sub000/sql"
	"github.com/space-rf-org/DB25-sub000/sql/expression"
	"github.com/space-rf-org/DB25-sub000/sql/plan"
)

func scanWithCost(table string, rows int, cost float64) *plan.TableScan {
	scan := plan.NewTableScan(1, table, "")
	scan.Cost().EstimatedRows = rows
	scan.Cost().TotalCost = cost
	scan.SetOutputColumns(table + "_col")
	return scan
}

func TestConvertTableScan(t *testing.T) {
	require := require.New(t)
	p := NewPlanner()

	lp := plan.NewLogicalPlan(scanWithCost("users", 100, 20))
	physicalPlan, err := p.CreatePhysicalPlan(lp)
	require.NoError(err)

	scan, ok := physicalPlan.Root.(*SequentialScan)
	require.True(ok)
	require.Equal("users", scan.TableName)
	require.Equal(100, scan.EstimatedCost().EstimatedRows)
}

func TestConvertTableScanPrefersCheaperIndex(t *testing.T) {
	require := require.New(t)
	p := NewPlanner()
	p.AddAccessMethod("users", AccessMethod{
		Type:      IndexScanMethod,
		IndexName: "users_pkey",
		Cost:      5,
	})

	lp := plan.NewLogicalPlan(scanWithCost("users", 100, 20))
	physicalPlan, err := p.CreatePhysicalPlan(lp)
	require.NoError(err)

	scan, ok := physicalPlan.Root.(*IndexScan)
	require.True(ok)
	require.Equal("users_pkey", scan.IndexName)

	// A costlier index loses to the sequential scan.
	p2 := NewPlanner()
	p2.AddAccessMethod("users", AccessMethod{Type: IndexScanMethod, IndexName: "slow", Cost: 100})
	physicalPlan, err = p2.CreatePhysicalPlan(plan.NewLogicalPlan(scanWithCost("users", 100, 20)))
	require.NoError(err)
	_, ok = physicalPlan.Root.(*SequentialScan)
	require.True(ok)
}

func TestSelectJoinAlgorithm(t *testing.T) {
	require := require.New(t)
	p := NewPlanner()

	// One large side, unequal sizes: hash join with the smaller side as
	// the build input.
	join := plan.NewNestedLoopJoin(sql.InnerJoin,
		scanWithCost("users", 100, 10),
		scanWithCost("orders", 100000, 900))
	op, err := p.ConvertLogicalNode(join)
	require.NoError(err)
	hash, ok := op.(*HashJoin)
	require.True(ok)
	probe := hash.Children()[0].(*SequentialScan)
	build := hash.Children()[1].(*SequentialScan)
	require.Equal("orders", probe.TableName)
	require.Equal("users", build.TableName)

	// A left-outer join keeps probe=left and build=right even when the
	// left side is smaller: the preserved side's unmatched tuples must
	// flow through the probe.
	leftOuter := plan.NewNestedLoopJoin(sql.LeftOuterJoin,
		scanWithCost("users", 100, 10),
		scanWithCost("orders", 100000, 900))
	op, err = p.ConvertLogicalNode(leftOuter)
	require.NoError(err)
	hash, ok = op.(*HashJoin)
	require.True(ok)
	require.Equal(sql.LeftOuterJoin, hash.JoinKind)
	require.Equal("users", hash.Children()[0].(*SequentialScan).TableName)
	require.Equal("orders", hash.Children()[1].(*SequentialScan).TableName)

	// Small inputs fall back to a nested loop.
	small := plan.NewNestedLoopJoin(sql.InnerJoin,
		scanWithCost("users", 100, 10),
		scanWithCost("orders", 200, 15))
	op, err = p.ConvertLogicalNode(small)
	require.NoError(err)
	_, ok = op.(*NestedLoopJoin)
	require.True(ok)

	// Equal sizes avoid the hash join even when large.
	equal := plan.NewNestedLoopJoin(sql.InnerJoin,
		scanWithCost("users", 50000, 10),
		scanWithCost("orders", 50000, 15))
	op, err = p.ConvertLogicalNode(equal)
	require.NoError(err)
	_, ok = op.(*NestedLoopJoin)
	require.True(ok)

	// Disabling hash joins forces the nested loop.
	cfg := p.Config()
	cfg.EnableHashJoins = false
	p.SetConfig(cfg)
	op, err = p.ConvertLogicalNode(join)
	require.NoError(err)
	_, ok = op.(*NestedLoopJoin)
	require.True(ok)
}

func TestConvertProjectionAbsorbed(t *testing.T) {
	require := require.New(t)
	p := NewPlanner()

	scan := scanWithCost("users", 100, 20)
	proj := plan.NewProject([]sql.Expression{
		expression.NewGetField(1, 1, "id", sql.Integer, false),
	}, scan)
	proj.SetOutputColumns("id")

	op, err := p.ConvertLogicalNode(proj)
	require.NoError(err)
	seq, ok := op.(*SequentialScan)
	require.True(ok)
	require.Equal([]string{"id"}, seq.OutputColumns())
}

func TestConvertFilterPushedIntoScan(t *testing.T) {
	require := require.New(t)
	p := NewPlanner()

	cond := expression.NewBinaryOp(">",
		expression.NewGetField(1, 1, "id", sql.Integer, false),
		expression.NewLiteral("10", sql.Integer), sql.Boolean)
	filter := plan.NewFilter([]sql.Expression{cond}, scanWithCost("users", 100, 20))

	op, err := p.ConvertLogicalNode(filter)
	require.NoError(err)
	seq, ok := op.(*SequentialScan)
	require.True(ok)
	require.Len(seq.FilterConditions, 1)
}

func TestConvertFilterMaterializedOverNonScan(t *testing.T) {
	require := require.New(t)
	p := NewPlanner()

	cond := expression.NewBinaryOp(">",
		expression.NewGetField(1, 1, "id", sql.Integer, false),
		expression.NewLiteral("10", sql.Integer), sql.Boolean)
	join := plan.NewNestedLoopJoin(sql.InnerJoin,
		scanWithCost("users", 10, 1),
		scanWithCost("orders", 10, 1))
	filter := plan.NewFilter([]sql.Expression{cond}, join)

	op, err := p.ConvertLogicalNode(filter)
	require.NoError(err)
	mat, ok := op.(*Materialize)
	require.True(ok)
	require.Len(mat.FilterConditions, 1)
	_, ok = mat.Children()[0].(*NestedLoopJoin)
	require.True(ok)
}

func TestConvertAggregateSortLimit(t *testing.T) {
	require := require.New(t)
	p := NewPlanner()

	field := expression.NewGetField(1, 1, "id", sql.Integer, false)
	agg := plan.NewAggregate([]sql.Expression{field},
		[]sql.Expression{expression.NewFunction("count", field)},
		scanWithCost("users", 100, 20))
	op, err := p.ConvertLogicalNode(agg)
	require.NoError(err)
	_, ok := op.(*HashAggregate)
	require.True(ok)

	sortNode := plan.NewSort([]plan.SortKey{{Expr: field, Ascending: true}}, scanWithCost("users", 100, 20))
	op, err = p.ConvertLogicalNode(sortNode)
	require.NoError(err)
	_, ok = op.(*Sort)
	require.True(ok)

	five := 5
	limit := plan.NewLimit(&five, nil, scanWithCost("users", 100, 20))
	op, err = p.ConvertLogicalNode(limit)
	require.NoError(err)
	lim, ok := op.(*Limit)
	require.True(ok)
	require.Equal(5, *lim.Limit)
}

func TestDMLIsRejected(t *testing.T) {
	require := require.New(t)
	p := NewPlanner()

	_, err := p.CreatePhysicalPlan(plan.NewLogicalPlan(plan.NewInsertInto("users", nil, nil)))
	require.Error(err)
}

func TestShouldParallelizeAndDegree(t *testing.T) {
	require := require.New(t)
	p := NewPlanner()
	cfg := p.Config()
	cfg.MaxParallelWorkers = 4
	p.SetConfig(cfg)

	require.False(p.ShouldParallelize(plan.PlanCost{TotalCost: 10}))
	require.True(p.ShouldParallelize(plan.PlanCost{TotalCost: 5000}))

	require.Equal(1, p.ParallelDegree(100))
	require.Equal(2, p.ParallelDegree(25000))
	require.Equal(4, p.ParallelDegree(1000000))
}

func TestAddParallelizationWrapsEligibleScans(t *testing.T) {
	require := require.New(t)
	p := NewPlanner()
	cfg := p.Config()
	cfg.MaxParallelWorkers = 8
	p.SetConfig(cfg)

	// Expensive scan with enough rows for a multi-worker degree.
	scan := scanWithCost("events", 50000, 5000)
	lp := plan.NewLogicalPlan(scan)
	physicalPlan, err := p.CreatePhysicalPlan(lp)
	require.NoError(err)

	par, ok := physicalPlan.Root.(*ParallelSequentialScan)
	require.True(ok)
	require.Equal(5, par.Degree)

	// Below the threshold nothing is wrapped.
	cheap := plan.NewLogicalPlan(scanWithCost("events", 1000, 20))
	physicalPlan, err = p.CreatePhysicalPlan(cheap)
	require.NoError(err)
	_, ok = physicalPlan.Root.(*SequentialScan)
	require.True(ok)

	// Parallel execution disabled leaves the plan serial.
	cfg.EnableParallelExecution = false
	p.SetConfig(cfg)
	physicalPlan, err = p.CreatePhysicalPlan(plan.NewLogicalPlan(scanWithCost("events", 50000, 5000)))
	require.NoError(err)
	_, ok = physicalPlan.Root.(*SequentialScan)
	require.True(ok)
}

func TestMemoryBudgeting(t *testing.T) {
	require := require.New(t)
	p := NewPlanner()

	probe := NewSequentialScan("orders", "", nil)
	probe.SetEstimatedCost(plan.PlanCost{EstimatedRows: 1000})
	build := NewSequentialScan("users", "", nil)
	build.SetEstimatedCost(plan.PlanCost{EstimatedRows: 500})
	join := NewHashJoin(sql.InnerJoin, probe, build)

	require.Equal(500*hashJoinBytesPerRow, p.EstimateMemoryUsage(join))

	sortOp := NewSort(nil, probe.Copy())
	sortOp.Children()[0].(*SequentialScan).SetEstimatedCost(plan.PlanCost{EstimatedRows: 1000})
	require.Equal(1000*sortBytesPerRow, p.EstimateMemoryUsage(sortOp))

	agg := NewHashAggregate(nil, nil, build.Copy())
	agg.SetEstimatedCost(plan.PlanCost{EstimatedRows: 100})
	require.Equal(100*hashAggBytesPerGroup, p.EstimateMemoryUsage(agg))

	require.False(p.ShouldUseTempFiles(join))
	cfg := p.Config()
	cfg.WorkMem = 1000
	p.SetConfig(cfg)
	require.True(p.ShouldUseTempFiles(join))
}
