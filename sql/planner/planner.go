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

// Package planner lowers bound statements into logical plans, estimates
// their costs from table statistics, and applies the rule-based rewrites.
package planner

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/space-rf-org/DB25-sub000/sql"
	"github.com/space-rf-org/DB25-sub000/sql/binder"
	"github.com/space-rf-org/DB25-sub000/sql/expression"
	"github.com/space-rf-org/DB25-sub000/sql/plan"
)

// Config holds the planner's enable flags and cost constants. The cost
// constants follow the PostgreSQL defaults.
type Config struct {
	EnableHashJoins   bool
	EnableMergeJoins  bool
	EnableIndexScans  bool
	RandomPageCost    float64
	SeqPageCost       float64
	CPUTupleCost      float64
	CPUIndexTupleCost float64
	CPUOperatorCost   float64
	WorkMem           int
}

// DefaultConfig returns the default planner configuration.
func DefaultConfig() Config {
	return Config{
		EnableHashJoins:   true,
		EnableMergeJoins:  true,
		EnableIndexScans:  true,
		RandomPageCost:    4.0,
		SeqPageCost:       1.0,
		CPUTupleCost:      0.01,
		CPUIndexTupleCost: 0.005,
		CPUOperatorCost:   0.0025,
		WorkMem:           1024 * 1024,
	}
}

// Planner converts bound statements into cost-annotated logical plans. It
// never re-parses SQL text.
type Planner struct {
	registry   *sql.Registry
	config     Config
	tableStats map[string]sql.TableStats
}

// New creates a planner over the given registry with the default config.
func New(registry *sql.Registry) *Planner {
	return &Planner{
		registry:   registry,
		config:     DefaultConfig(),
		tableStats: make(map[string]sql.TableStats),
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

// TableStats returns the statistics for a table, defaults when none were
// supplied.
func (p *Planner) TableStats(tableName string) sql.TableStats {
	if stats, ok := p.tableStats[tableName]; ok {
		return stats
	}
	return sql.DefaultTableStats()
}

// Plan lowers a bound statement into a logical plan and computes its
// costs. The caller must only pass statements the binder accepted.
func (p *Planner) Plan(stmt binder.Statement) (*plan.LogicalPlan, error) {
	if stmt == nil {
		return nil, fmt.Errorf("planner: nil bound statement")
	}

	var root plan.Node
	aliases := make(map[string]string)
	switch s := stmt.(type) {
	case *binder.SelectStatement:
		root = p.buildSelect(s)
	case *binder.InsertStatement:
		root = p.buildInsert(s)
	case *binder.UpdateStatement:
		root = p.buildUpdate(s)
	case *binder.DeleteStatement:
		root = p.buildDelete(s)
	default:
		return nil, fmt.Errorf("planner: unsupported statement type %v", stmt.StatementType())
	}
	if root == nil {
		return nil, fmt.Errorf("planner: statement produced no plan")
	}

	for name, ref := range stmt.TableRefs() {
		aliases[name] = ref.TableName
	}

	p.estimateCosts(root)

	lp := plan.NewLogicalPlan(root)
	lp.TableAliases = aliases
	lp.TotalCost = *root.Cost()

	logrus.WithFields(logrus.Fields{
		"total_cost": lp.TotalCost.TotalCost,
		"rows":       lp.TotalCost.EstimatedRows,
	}).Debug("built logical plan")

	return lp, nil
}

// buildSelect assembles the SELECT shape bottom-up: scans, joins, the
// projection, the WHERE filter, then aggregation, sort, and limit. The
// filter lands above the projection here; the pushdown rewrite moves it
// below.
func (p *Planner) buildSelect(s *binder.SelectStatement) plan.Node {
	if s.From == nil {
		// FROM-less selects (constant queries, CTE anchors) project over
		// nothing.
		proj := plan.NewProject(s.SelectList, nil)
		proj.SetChildren()
		proj.Aliases = append([]string(nil), s.OutputNames...)
		proj.SetOutputColumns(s.OutputNames...)
		return proj
	}

	root := p.buildScan(s.From)

	for i, jt := range s.JoinTables {
		right := p.buildScan(jt)
		kind := sql.InnerJoin
		if i < len(s.JoinKinds) {
			kind = s.JoinKinds[i]
		}
		join := plan.NewNestedLoopJoin(kind, root, right)
		if i < len(s.JoinConditions) && s.JoinConditions[i] != nil {
			join.JoinConditions = splitConjunction(s.JoinConditions[i])
		}
		join.SetOutputColumns(append(root.OutputColumns(), right.OutputColumns()...)...)
		root = join
	}

	if !s.Star && len(s.SelectList) > 0 {
		proj := plan.NewProject(s.SelectList, root)
		proj.Aliases = append([]string(nil), s.OutputNames...)
		proj.SetOutputColumns(s.OutputNames...)
		root = proj
	}

	if s.Where != nil {
		root = plan.NewFilter(splitConjunction(s.Where), root)
		root.SetOutputColumns(root.Children()[0].OutputColumns()...)
	}

	aggregates := aggregateCalls(s.SelectList)
	if len(s.GroupBy) > 0 || len(aggregates) > 0 {
		agg := plan.NewAggregate(s.GroupBy, aggregates, root)
		if s.Having != nil {
			agg.HavingConditions = splitConjunction(s.Having)
		}
		var out []string
		for _, e := range s.GroupBy {
			out = append(out, e.String())
		}
		for _, e := range aggregates {
			out = append(out, e.String())
		}
		agg.SetOutputColumns(out...)
		root = agg
	}

	if len(s.OrderBy) > 0 {
		keys := make([]plan.SortKey, 0, len(s.OrderBy))
		for _, key := range s.OrderBy {
			keys = append(keys, plan.SortKey{
				Expr:       key.Expr,
				Ascending:  key.Ascending,
				NullsFirst: key.NullsFirst,
			})
		}
		sort := plan.NewSort(keys, root)
		sort.SetOutputColumns(root.OutputColumns()...)
		root = sort
	}

	if s.Limit != nil || s.Offset != nil {
		limit := plan.NewLimit(s.Limit, s.Offset, root)
		limit.SetOutputColumns(root.OutputColumns()...)
		root = limit
	}

	return root
}

// buildScan creates the leaf scan for a bound table reference. CTE-backed
// references scan their virtual table; the physical layer resolves them
// against registered row sources by name.
func (p *Planner) buildScan(ref *binder.BoundTableRef) plan.Node {
	scan := plan.NewTableScan(ref.TableID, ref.TableName, ref.Alias)
	names := make([]string, 0, len(ref.Columns))
	for _, col := range ref.Columns {
		names = append(names, col.Name)
	}
	scan.SetOutputColumns(names...)
	return scan
}

func (p *Planner) buildInsert(s *binder.InsertStatement) plan.Node {
	var child plan.Node
	if s.Source != nil {
		child = p.buildSelect(s.Source)
	}
	node := plan.NewInsertInto(s.Target.TableName, p.columnNames(s.Target, s.TargetColumns), child)
	node.ValueLists = s.Values
	node.SetOutputColumns(node.TargetColumns...)
	return node
}

func (p *Planner) buildUpdate(s *binder.UpdateStatement) plan.Node {
	var child plan.Node = p.buildScan(s.Target)
	if s.Where != nil {
		child = plan.NewFilter(splitConjunction(s.Where), child)
	}
	columns := make([]string, 0, len(s.Assignments))
	values := make([]sql.Expression, 0, len(s.Assignments))
	for _, a := range s.Assignments {
		columns = append(columns, a.Column)
		values = append(values, a.Value)
	}
	return plan.NewUpdate(s.Target.TableName, columns, values, child)
}

func (p *Planner) buildDelete(s *binder.DeleteStatement) plan.Node {
	var child plan.Node = p.buildScan(s.Target)
	if s.Where != nil {
		child = plan.NewFilter(splitConjunction(s.Where), child)
	}
	return plan.NewDeleteFrom(s.Target.TableName, child)
}

func (p *Planner) columnNames(ref *binder.BoundTableRef, ids []sql.ColumnID) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if int(id) >= 1 && int(id) <= len(ref.Columns) {
			names = append(names, ref.Columns[int(id)-1].Name)
		}
	}
	return names
}

// splitConjunction flattens a top-level AND chain into a condition list.
func splitConjunction(e sql.Expression) []sql.Expression {
	if e == nil {
		return nil
	}
	if op, ok := e.(*expression.BinaryOp); ok && op.Op == "AND" {
		return append(splitConjunction(op.Left), splitConjunction(op.Right)...)
	}
	return []sql.Expression{e}
}

// aggregateCalls extracts the aggregate function calls of a select list.
func aggregateCalls(exprs []sql.Expression) []sql.Expression {
	var calls []sql.Expression
	for _, e := range exprs {
		sql.InspectExpr(e, func(e sql.Expression) bool {
			if f, ok := e.(*expression.Function); ok && f.IsAggregate() {
				calls = append(calls, f)
				return false
			}
			return true
		})
	}
	return calls
}
