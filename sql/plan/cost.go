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

package plan

import "fmt"

// PlanCost is the cost annotation every plan node carries: PostgreSQL-style
// startup and total costs, the estimated output cardinality, and the
// selectivity that produced it.
type PlanCost struct {
	StartupCost   float64
	TotalCost     float64
	EstimatedRows int
	Selectivity   float64
}

// NewPlanCost returns a zero cost with neutral selectivity.
func NewPlanCost() PlanCost {
	return PlanCost{Selectivity: 1.0}
}

func (c PlanCost) String() string {
	return fmt.Sprintf("cost=%.2f..%.2f rows=%d", c.StartupCost, c.TotalCost, c.EstimatedRows)
}
