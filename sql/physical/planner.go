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

	"github.com/sirupsen/logrus"

	"github.com/space-rf-org/DB25-sub000/sql"
	"github.com/space-rf-org/DB25-sub000/sql/plan"
)

// Memory footprint assumptions for budgeting.
const (
	pageSize             = 8192
	hashJoinBytesPerRow  = 64
	sortBytesPerRow      = 32
	hashAggBytesPerGroup = 50
)

// AccessMethodType enumerates table access paths.
type AccessMethodType int

const (
	HeapScanMethod AccessMethodType = iota
	IndexScanMethod
	BitmapScanMethod
)

// AccessMethod describes one way to read a table, with its estimated cost.
type AccessMethod struct {
	Type        AccessMethodType
	IndexName   string
	KeyColumns  []string
	Selectivity float64
	Cost        float64
}

// Planner converts optimized logical plans into executable operator trees,
// choosing algorithms, memory strategy, and parallelism.
type Planner struct {
	config        Config
	tableStats    map[string]sql.TableStats
	accessMethods map[string][]AccessMethod
	source        RowSource
}

// NewPlanner creates a physical planner with the default configuration.
func NewPlanner() *Planner {
	return &Planner{
		config:        DefaultConfig(),
		tableStats:    make(map[string]sql.TableStats),
		accessMethods: make(map[string][]AccessMethod),
	}
}

// Config returns the current configuration.
func (p *Planner) Config() Config { return p.config }

// SetConfig replaces the configuration.
func (p *Planner) SetConfig(cfg Config) { p.config = cfg }

// SetTableStats installs statistics for one table.
func (p *Planner) SetTableStats(tableName string, stats sql.TableStats) {
	p.tableStats[tableName] = stats
}

// AddAccessMethod registers an access path for a table.
func (p *Planner) AddAccessMethod(tableName string, method AccessMethod) {
	p.accessMethods[tableName] = append(p.accessMethods[tableName], method)
}

// SetRowSource installs the storage hook scans read from.
func (p *Planner) SetRowSource(source RowSource) { p.source = source }

// CreatePhysicalPlan converts a logical plan into an executable one.
func (p *Planner) CreatePhysicalPlan(lp *plan.LogicalPlan) (*Plan, error) {
	if lp == nil || lp.Root == nil {
		return nil, fmt.Errorf("physical: empty logical plan")
	}
	root, err := p.ConvertLogicalNode(lp.Root)
	if err != nil {
		return nil, err
	}
	if p.config.EnableParallelExecution {
		root = p.addParallelization(root)
	}

	logrus.WithFields(logrus.Fields{
		"total_cost": root.EstimatedCost().TotalCost,
		"rows":       root.EstimatedCost().EstimatedRows,
	}).Debug("built physical plan")

	return NewPlan(root, p.config.ExecutionContext()), nil
}

// ConvertLogicalNode maps one logical subtree onto operators.
func (p *Planner) ConvertLogicalNode(node plan.Node) (Operator, error) {
	switch n := node.(type) {
	case *plan.TableScan:
		return p.convertTableScan(n), nil

	case *plan.IndexScan:
		op := NewIndexScan(n.TableName, n.IndexName, n.Alias, p.source)
		op.IndexConditions = append([]sql.Expression(nil), n.IndexConditions...)
		op.FilterConditions = append([]sql.Expression(nil), n.FilterConditions...)
		p.carryOver(op, n)
		return op, nil

	case *plan.NestedLoopJoin:
		return p.convertJoin(n, n.JoinKind, n.JoinConditions)

	case *plan.HashJoin:
		return p.convertJoin(n, n.JoinKind, n.JoinConditions)

	case *plan.MergeJoin:
		// No physical merge join in v1; it goes through the same hash /
		// nested-loop selection as the other joins.
		return p.convertJoin(n, n.JoinKind, n.JoinConditions)

	case *plan.Project:
		// Absorbed: the projection travels via output columns.
		if len(n.Children()) == 0 {
			return nil, fmt.Errorf("physical: projection without input is not executable")
		}
		child, err := p.ConvertLogicalNode(n.Children()[0])
		if err != nil {
			return nil, err
		}
		child.SetOutputColumns(n.OutputColumns()...)
		return child, nil

	case *plan.Filter:
		return p.convertFilter(n)

	case *plan.Aggregate:
		child, err := p.ConvertLogicalNode(n.Children()[0])
		if err != nil {
			return nil, err
		}
		op := NewHashAggregate(n.GroupBy, n.Aggregates, child)
		op.HavingConditions = append([]sql.Expression(nil), n.HavingConditions...)
		p.carryOver(op, n)
		return op, nil

	case *plan.Sort:
		child, err := p.ConvertLogicalNode(n.Children()[0])
		if err != nil {
			return nil, err
		}
		op := NewSort(n.SortKeys, child)
		p.carryOver(op, n)
		return op, nil

	case *plan.Limit:
		child, err := p.ConvertLogicalNode(n.Children()[0])
		if err != nil {
			return nil, err
		}
		op := NewLimit(n.Limit, n.Offset, child)
		p.carryOver(op, n)
		return op, nil

	case *plan.SetOp:
		left, err := p.ConvertLogicalNode(n.Children()[0])
		if err != nil {
			return nil, err
		}
		right, err := p.ConvertLogicalNode(n.Children()[1])
		if err != nil {
			return nil, err
		}
		op := NewGather(left, right)
		p.carryOver(op, n)
		return op, nil

	case *plan.InsertInto, *plan.Update, *plan.DeleteFrom:
		return nil, fmt.Errorf("physical: DML execution is not supported; writes stay with the storage layer")

	default:
		return nil, fmt.Errorf("physical: no conversion for %T", node)
	}
}

// carryOver copies the logical node's cost and output columns onto the
// operator.
func (p *Planner) carryOver(op Operator, n plan.Node) {
	type costSetter interface {
		SetEstimatedCost(plan.PlanCost)
		SetOutputColumns(...string)
	}
	if cs, ok := op.(costSetter); ok {
		cs.SetEstimatedCost(*n.Cost())
		cs.SetOutputColumns(n.OutputColumns()...)
	}
}

// convertTableScan picks between a sequential scan and a registered index
// access path, whichever is estimated cheaper.
func (p *Planner) convertTableScan(n *plan.TableScan) Operator {
	if am, ok := p.bestIndexMethod(n.TableName); ok && am.Cost < n.Cost().TotalCost {
		op := NewIndexScan(n.TableName, am.IndexName, n.Alias, p.source)
		op.FilterConditions = append([]sql.Expression(nil), n.FilterConditions...)
		p.carryOver(op, n)
		logrus.WithFields(logrus.Fields{
			"table": n.TableName,
			"index": am.IndexName,
		}).Debug("selected index scan")
		return op
	}
	op := NewSequentialScan(n.TableName, n.Alias, p.source)
	op.FilterConditions = append([]sql.Expression(nil), n.FilterConditions...)
	p.carryOver(op, n)
	return op
}

func (p *Planner) bestIndexMethod(tableName string) (AccessMethod, bool) {
	var best AccessMethod
	found := false
	for _, am := range p.accessMethods[tableName] {
		if am.Type != IndexScanMethod {
			continue
		}
		if !found || am.Cost < best.Cost {
			best = am
			found = true
		}
	}
	return best, found
}

// convertJoin selects the join algorithm from the children's estimated
// sizes: hash join when one side crosses the threshold and the sides are
// not equal-sized, nested loop otherwise. For inner and cross joins the
// smaller side becomes the hash join's build side.
func (p *Planner) convertJoin(n plan.Node, kind sql.JoinKind, conditions []sql.Expression) (Operator, error) {
	left, err := p.ConvertLogicalNode(n.Children()[0])
	if err != nil {
		return nil, err
	}
	right, err := p.ConvertLogicalNode(n.Children()[1])
	if err != nil {
		return nil, err
	}

	leftRows := n.Children()[0].Cost().EstimatedRows
	rightRows := n.Children()[1].Cost().EstimatedRows

	if p.shouldUseHashJoin(leftRows, rightRows) {
		probe, build := left, right
		// Outer joins fix the roles: the preserved side must be the probe
		// so its unmatched tuples can be emitted null-padded. Only inner
		// and cross joins may build on the smaller input.
		if (kind == sql.InnerJoin || kind == sql.CrossJoin) && leftRows < rightRows {
			probe, build = right, left
		}
		op := NewHashJoin(kind, probe, build)
		op.JoinConditions = append([]sql.Expression(nil), conditions...)
		p.carryOver(op, n)
		op.SetOutputColumns(append(append([]string(nil), probe.OutputColumns()...), build.OutputColumns()...)...)
		logrus.WithFields(logrus.Fields{
			"left_rows":  leftRows,
			"right_rows": rightRows,
		}).Debug("selected hash join")
		return op, nil
	}

	op := NewNestedLoopJoin(kind, left, right)
	op.JoinConditions = append([]sql.Expression(nil), conditions...)
	p.carryOver(op, n)
	op.SetOutputColumns(append(append([]string(nil), left.OutputColumns()...), right.OutputColumns()...)...)
	return op, nil
}

func (p *Planner) shouldUseHashJoin(leftRows, rightRows int) bool {
	if !p.config.EnableHashJoins {
		return false
	}
	return (leftRows > p.config.HashJoinThreshold || rightRows > p.config.HashJoinThreshold) &&
		leftRows != rightRows
}

// convertFilter pushes the conditions into a scan child when possible and
// otherwise materializes a separate filtering operator.
func (p *Planner) convertFilter(n *plan.Filter) (Operator, error) {
	switch child := n.Children()[0].(type) {
	case *plan.TableScan:
		pushed := child.Copy().(*plan.TableScan)
		pushed.FilterConditions = append(pushed.FilterConditions, n.Conditions...)
		op := p.convertTableScan(pushed)
		p.carryOver(op, n)
		return op, nil
	case *plan.IndexScan:
		pushed := child.Copy().(*plan.IndexScan)
		pushed.FilterConditions = append(pushed.FilterConditions, n.Conditions...)
		return p.ConvertLogicalNode(pushed)
	default:
		converted, err := p.ConvertLogicalNode(n.Children()[0])
		if err != nil {
			return nil, err
		}
		op := NewMaterialize(n.Conditions, converted)
		p.carryOver(op, n)
		return op, nil
	}
}

// ShouldParallelize reports whether a node's cost clears the parallel
// threshold.
func (p *Planner) ShouldParallelize(cost plan.PlanCost) bool {
	return p.config.EnableParallelExecution && cost.TotalCost > p.config.ParallelThreshold
}

// ParallelDegree clamps rows/10000 to [1, MaxParallelWorkers].
func (p *Planner) ParallelDegree(rows int) int {
	degree := rows / 10000
	if degree > p.config.MaxParallelWorkers {
		degree = p.config.MaxParallelWorkers
	}
	if degree < 1 {
		degree = 1
	}
	return degree
}

// addParallelization replaces eligible sequential-scan leaves with
// parallel scans of the chosen degree.
func (p *Planner) addParallelization(op Operator) Operator {
	children := op.Children()
	for i, child := range children {
		children[i] = p.addParallelization(child)
	}
	if len(children) > 0 {
		op.SetChildren(children...)
	}

	scan, ok := op.(*SequentialScan)
	if !ok || !p.ShouldParallelize(scan.EstimatedCost()) {
		return op
	}
	degree := p.ParallelDegree(scan.EstimatedCost().EstimatedRows)
	if degree < 2 {
		return op
	}
	par := NewParallelSequentialScan(scan.TableName, degree, scan.source)
	par.FilterConditions = scan.FilterConditions
	par.SetEstimatedCost(scan.EstimatedCost())
	par.SetOutputColumns(scan.OutputColumns()...)
	logrus.WithFields(logrus.Fields{
		"table":   scan.TableName,
		"workers": degree,
	}).Debug("parallelized sequential scan")
	return par
}

// EstimateMemoryUsage totals the blocking operators' estimated footprints.
func (p *Planner) EstimateMemoryUsage(op Operator) int {
	total := 0
	switch o := op.(type) {
	case *HashJoin:
		if len(o.Children()) == 2 {
			total += o.Children()[1].EstimatedCost().EstimatedRows * hashJoinBytesPerRow
		}
	case *Sort:
		if len(o.Children()) == 1 {
			total += o.Children()[0].EstimatedCost().EstimatedRows * sortBytesPerRow
		}
	case *HashAggregate:
		total += o.EstimatedCost().EstimatedRows * hashAggBytesPerGroup
	}
	for _, child := range op.Children() {
		total += p.EstimateMemoryUsage(child)
	}
	return total
}

// ShouldUseTempFiles reports whether the plan's estimated footprint
// exceeds the work-mem budget. Operators receive the actual signal at
// runtime through their ExecutionContext.
func (p *Planner) ShouldUseTempFiles(op Operator) bool {
	return p.EstimateMemoryUsage(op) > p.config.WorkMem
}
