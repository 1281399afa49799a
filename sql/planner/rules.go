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
	"github.com/sirupsen/logrus"

	"github.com/space-rf-org/DB25-sub000/sql/plan"
)

// Rule is one rewrite pass over a plan tree. Every rule must be
// idempotent: applying it to its own output changes nothing.
type Rule struct {
	Name  string
	Apply func(plan.Node) plan.Node
}

// OptimizationRules returns the default rule set in application order.
func (p *Planner) OptimizationRules() []Rule {
	return []Rule{
		{Name: "predicate_pushdown", Apply: p.applyPredicatePushdown},
		{Name: "projection_pushdown", Apply: p.applyProjectionPushdown},
		{Name: "join_reordering", Apply: p.applyJoinReordering},
	}
}

// Optimize applies the rewrite rules to a copy of the plan and recomputes
// its costs. The input plan is never mutated.
func (p *Planner) Optimize(lp *plan.LogicalPlan) *plan.LogicalPlan {
	out := lp.Copy()
	if out.Root == nil {
		return out
	}
	for _, rule := range p.OptimizationRules() {
		out.Root = rule.Apply(out.Root)
		logrus.WithField("rule", rule.Name).Debug("applied optimization rule")
	}
	p.estimateCosts(out.Root)
	out.TotalCost = *out.Root.Cost()
	return out
}

// transformUp rewrites the tree bottom-up: children first, then the node
// itself.
func transformUp(n plan.Node, f func(plan.Node) plan.Node) plan.Node {
	children := n.Children()
	if len(children) > 0 {
		newChildren := make([]plan.Node, len(children))
		for i, child := range children {
			newChildren[i] = transformUp(child, f)
		}
		n.SetChildren(newChildren...)
	}
	return f(n)
}

// applyPredicatePushdown moves a Filter that sits directly above a
// Project below it, so rows are dropped before they are projected.
func (p *Planner) applyPredicatePushdown(root plan.Node) plan.Node {
	return transformUp(root, func(n plan.Node) plan.Node {
		filter, ok := n.(*plan.Filter)
		if !ok || len(filter.Children()) != 1 {
			return n
		}
		proj, ok := filter.Children()[0].(*plan.Project)
		if !ok || len(proj.Children()) != 1 {
			return n
		}
		filter.SetChildren(proj.Children()[0])
		proj.SetChildren(filter)
		return proj
	})
}

// applyProjectionPushdown is a placeholder: the pass exists so the
// pipeline stays symmetric, but it performs no rewrite yet.
func (p *Planner) applyProjectionPushdown(root plan.Node) plan.Node {
	return root
}

// applyJoinReordering swaps the children of a nested-loop join when the
// right side is estimated smaller, so the smaller relation drives the
// outer loop. Hash joins already build on the smaller side and are left
// alone.
func (p *Planner) applyJoinReordering(root plan.Node) plan.Node {
	return transformUp(root, func(n plan.Node) plan.Node {
		join, ok := n.(*plan.NestedLoopJoin)
		if !ok || len(join.Children()) != 2 {
			return n
		}
		left, right := join.Children()[0], join.Children()[1]
		if right.Cost().EstimatedRows < left.Cost().EstimatedRows {
			join.SetChildren(right, left)
		}
		return join
	})
}

// AlternativePlans returns the base plan and its optimized variant so a
// caller (or the physical planner) can compare them.
func (p *Planner) AlternativePlans(lp *plan.LogicalPlan) []*plan.LogicalPlan {
	return []*plan.LogicalPlan{lp, p.Optimize(lp)}
}
