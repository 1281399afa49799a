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

package planner

import (
	"math"

	"github.com/space-rf-org/DB25-sub000/sql"
	"github.com/space-rf-org/DB25-sub000/sql/expression"
	"github.com/space-rf-org/DB25-sub000/sql/plan"
)

const pageSize = 8192.0

// estimateCosts populates every node's PlanCost bottom-up.
func (p *Planner) estimateCosts(node plan.Node) {
	for _, child := range node.Children() {
		p.estimateCosts(child)
	}

	cost := node.Cost()
	switch n := node.(type) {
	case *plan.TableScan:
		stats := p.TableStats(n.TableName)
		sel := p.EstimateSelectivity(n.FilterConditions)
		pages := float64(stats.RowCount) * stats.AvgRowSize / pageSize
		cost.StartupCost = 0
		cost.TotalCost = pages*p.config.SeqPageCost + float64(stats.RowCount)*p.config.CPUTupleCost
		cost.EstimatedRows = int(float64(stats.RowCount) * sel)
		cost.Selectivity = sel

	case *plan.IndexScan:
		stats := p.TableStats(n.TableName)
		sel := p.EstimateSelectivity(n.IndexConditions)
		selected := float64(stats.RowCount) * sel
		cost.StartupCost = 0
		cost.TotalCost = math.Log2(math.Max(2, float64(stats.RowCount)))*p.config.RandomPageCost +
			selected*p.config.RandomPageCost +
			selected*p.config.CPUIndexTupleCost
		cost.EstimatedRows = int(selected)
		cost.Selectivity = sel

	case *plan.NestedLoopJoin:
		left, right := childCost(n, 0), childCost(n, 1)
		sel := p.EstimateSelectivity(n.JoinConditions)
		pairs := float64(left.EstimatedRows) * float64(right.EstimatedRows)
		cost.StartupCost = left.StartupCost + right.StartupCost
		cost.TotalCost = left.TotalCost + right.TotalCost + pairs*sel*p.config.CPUTupleCost
		cost.EstimatedRows = int(pairs * sel)
		cost.Selectivity = sel

	case *plan.HashJoin:
		left, right := childCost(n, 0), childCost(n, 1)
		sel := p.EstimateSelectivity(n.JoinConditions)
		buildCost := float64(right.EstimatedRows) * p.config.CPUTupleCost
		probeCost := float64(left.EstimatedRows) * p.config.CPUTupleCost * 0.5
		cost.StartupCost = right.TotalCost + buildCost
		cost.TotalCost = left.TotalCost + right.TotalCost + buildCost + probeCost
		cost.EstimatedRows = int(float64(left.EstimatedRows) * float64(right.EstimatedRows) * sel)
		cost.Selectivity = sel

	case *plan.MergeJoin:
		left, right := childCost(n, 0), childCost(n, 1)
		sel := p.EstimateSelectivity(n.JoinConditions)
		cost.StartupCost = left.TotalCost + right.TotalCost
		cost.TotalCost = cost.StartupCost +
			(float64(left.EstimatedRows)+float64(right.EstimatedRows))*p.config.CPUOperatorCost
		cost.EstimatedRows = int(float64(left.EstimatedRows) * float64(right.EstimatedRows) * sel)
		cost.Selectivity = sel

	case *plan.Project:
		child := childCost(n, 0)
		cost.StartupCost = child.StartupCost
		cost.TotalCost = child.TotalCost + float64(child.EstimatedRows)*p.config.CPUTupleCost
		cost.EstimatedRows = child.EstimatedRows
		cost.Selectivity = child.Selectivity

	case *plan.Filter:
		child := childCost(n, 0)
		sel := p.EstimateSelectivity(n.Conditions)
		cost.StartupCost = child.StartupCost
		cost.TotalCost = child.TotalCost + float64(child.EstimatedRows)*p.config.CPUOperatorCost
		cost.EstimatedRows = int(float64(child.EstimatedRows) * sel)
		cost.Selectivity = sel

	case *plan.Aggregate:
		child := childCost(n, 0)
		cost.TotalCost = child.TotalCost + float64(child.EstimatedRows)*p.config.CPUOperatorCost
		// Blocking: nothing flows until every input group is complete.
		cost.StartupCost = cost.TotalCost
		groups := child.EstimatedRows / 10
		if len(n.GroupBy) == 0 {
			groups = 1
		}
		if groups < 1 {
			groups = 1
		}
		cost.EstimatedRows = groups
		cost.Selectivity = child.Selectivity

	case *plan.Sort:
		child := childCost(n, 0)
		rows := math.Max(1, float64(child.EstimatedRows))
		cost.TotalCost = child.TotalCost + rows*math.Log2(math.Max(2, rows))*p.config.CPUOperatorCost
		cost.StartupCost = cost.TotalCost
		cost.EstimatedRows = child.EstimatedRows
		cost.Selectivity = child.Selectivity

	case *plan.Limit:
		child := childCost(n, 0)
		limitFraction := 1.0
		rows := child.EstimatedRows
		if n.Limit != nil && child.EstimatedRows > 0 {
			limitFraction = math.Min(1.0, float64(*n.Limit)/float64(child.EstimatedRows))
			if *n.Limit < rows {
				rows = *n.Limit
			}
		}
		cost.StartupCost = child.StartupCost
		cost.TotalCost = child.StartupCost + child.TotalCost*limitFraction
		cost.EstimatedRows = rows
		cost.Selectivity = child.Selectivity

	case *plan.SetOp:
		left, right := childCost(n, 0), childCost(n, 1)
		cost.StartupCost = left.StartupCost + right.StartupCost
		cost.TotalCost = left.TotalCost + right.TotalCost
		cost.EstimatedRows = left.EstimatedRows + right.EstimatedRows
		cost.Selectivity = 1.0

	case *plan.InsertInto:
		if len(node.Children()) > 0 {
			child := childCost(n, 0)
			cost.TotalCost = child.TotalCost
			cost.EstimatedRows = child.EstimatedRows
		} else {
			cost.EstimatedRows = len(n.ValueLists)
			cost.TotalCost = float64(len(n.ValueLists)) * p.config.CPUTupleCost
		}

	case *plan.Update, *plan.DeleteFrom:
		child := childCost(node, 0)
		cost.StartupCost = child.StartupCost
		cost.TotalCost = child.TotalCost + float64(child.EstimatedRows)*p.config.CPUTupleCost
		cost.EstimatedRows = child.EstimatedRows
	}
}

func childCost(n plan.Node, i int) plan.PlanCost {
	children := n.Children()
	if i >= len(children) {
		return plan.NewPlanCost()
	}
	return *children[i].Cost()
}

// EstimateSelectivity estimates the fraction of rows surviving a condition
// list: equality 0.1, range 0.3, LIKE 0.2, anything else 0.5. Conditions
// combine multiplicatively, clamped to [0.001, 1.0]. An empty list selects
// everything.
func (p *Planner) EstimateSelectivity(conditions []sql.Expression) float64 {
	if len(conditions) == 0 {
		return 1.0
	}
	sel := 1.0
	for _, cond := range conditions {
		sel *= conditionSelectivity(cond)
	}
	return math.Max(0.001, math.Min(1.0, sel))
}

func conditionSelectivity(cond sql.Expression) float64 {
	op, ok := cond.(*expression.BinaryOp)
	if !ok {
		return 0.5
	}
	switch op.Op {
	case "=":
		return 0.1
	case "<", ">", "<=", ">=":
		return 0.3
	case "LIKE", "NOT LIKE":
		return 0.2
	default:
		return 0.5
	}
}
