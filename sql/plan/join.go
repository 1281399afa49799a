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

import (
	"strings"

	"github.com/space-rf-org/DB25-sub000/sql"
)

// NestedLoopJoin joins its two children by iterating the inner relation
// once per outer row. An empty condition list is a cross product.
type NestedLoopJoin struct {
	base
	JoinKind       sql.JoinKind
	JoinConditions []sql.Expression
}

// NewNestedLoopJoin creates a nested-loop join over two children.
func NewNestedLoopJoin(kind sql.JoinKind, left, right Node) *NestedLoopJoin {
	j := &NestedLoopJoin{base: newBase(), JoinKind: kind}
	j.SetChildren(left, right)
	return j
}

// Left returns the outer child.
func (j *NestedLoopJoin) Left() Node { return j.children[0] }

// Right returns the inner child.
func (j *NestedLoopJoin) Right() Node { return j.children[1] }

func (j *NestedLoopJoin) Copy() Node {
	out := *j
	out.base = j.copyBase()
	out.JoinConditions = append([]sql.Expression(nil), j.JoinConditions...)
	return &out
}

func (j *NestedLoopJoin) Format(sb *strings.Builder, indent int) {
	sb.WriteString(indentString(indent) + "Nested Loop " + j.JoinKind.String() + " (" + j.cost.String() + ")\n")
	if len(j.JoinConditions) > 0 {
		sb.WriteString(indentString(indent+1) + "Join Filter: " + sql.ExprsToString(j.JoinConditions, " AND ") + "\n")
	}
	j.formatChildren(sb, indent+1)
}

func (j *NestedLoopJoin) String() string { return nodeString(j) }

// HashJoin joins by building a hash table over its right child and probing
// it with the left.
type HashJoin struct {
	base
	JoinKind       sql.JoinKind
	JoinConditions []sql.Expression
	HashKeysLeft   []sql.Expression
	HashKeysRight  []sql.Expression
}

// NewHashJoin creates a hash join over two children.
func NewHashJoin(kind sql.JoinKind, left, right Node) *HashJoin {
	j := &HashJoin{base: newBase(), JoinKind: kind}
	j.SetChildren(left, right)
	return j
}

// Left returns the probe child.
func (j *HashJoin) Left() Node { return j.children[0] }

// Right returns the build child.
func (j *HashJoin) Right() Node { return j.children[1] }

func (j *HashJoin) Copy() Node {
	out := *j
	out.base = j.copyBase()
	out.JoinConditions = append([]sql.Expression(nil), j.JoinConditions...)
	out.HashKeysLeft = append([]sql.Expression(nil), j.HashKeysLeft...)
	out.HashKeysRight = append([]sql.Expression(nil), j.HashKeysRight...)
	return &out
}

func (j *HashJoin) Format(sb *strings.Builder, indent int) {
	sb.WriteString(indentString(indent) + "Hash " + j.JoinKind.String() + " (" + j.cost.String() + ")\n")
	if len(j.JoinConditions) > 0 {
		sb.WriteString(indentString(indent+1) + "Hash Cond: " + sql.ExprsToString(j.JoinConditions, " AND ") + "\n")
	}
	j.formatChildren(sb, indent+1)
}

func (j *HashJoin) String() string { return nodeString(j) }

// MergeJoin joins two sorted inputs. The logical planner never emits it in
// v1; it exists so the physical layer's conversion table is total.
type MergeJoin struct {
	base
	JoinKind       sql.JoinKind
	JoinConditions []sql.Expression
}

// NewMergeJoin creates a merge join over two children.
func NewMergeJoin(kind sql.JoinKind, left, right Node) *MergeJoin {
	j := &MergeJoin{base: newBase(), JoinKind: kind}
	j.SetChildren(left, right)
	return j
}

func (j *MergeJoin) Copy() Node {
	out := *j
	out.base = j.copyBase()
	out.JoinConditions = append([]sql.Expression(nil), j.JoinConditions...)
	return &out
}

func (j *MergeJoin) Format(sb *strings.Builder, indent int) {
	sb.WriteString(indentString(indent) + "Merge " + j.JoinKind.String() + " (" + j.cost.String() + ")\n")
	if len(j.JoinConditions) > 0 {
		sb.WriteString(indentString(indent+1) + "Merge Cond: " + sql.ExprsToString(j.JoinConditions, " AND ") + "\n")
	}
	j.formatChildren(sb, indent+1)
}

func (j *MergeJoin) String() string { return nodeString(j) }
