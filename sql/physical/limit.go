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

// Limit streams its child through, first skipping Offset tuples, then
// emitting at most Limit tuples. Once the quota is met the stream ends
// regardless of child state.
type Limit struct {
	operatorBase
	Limit  *int
	Offset *int

	skipped  int
	returned int
}

// NewLimit creates a limit over a child.
func NewLimit(limit, offset *int, child Operator) *Limit {
	l := &Limit{Limit: limit, Offset: offset}
	l.SetChildren(child)
	return l
}

func (l *Limit) Initialize(ctx *sql.ExecutionContext) {
	l.initBase(ctx)
}

func (l *Limit) quotaMet() bool {
	return l.Limit != nil && l.returned >= *l.Limit
}

func (l *Limit) NextBatch() (*sql.TupleBatch, error) {
	l.startTiming()
	defer l.endTiming()

	if !l.hasMore || l.quotaMet() {
		l.hasMore = false
		return nil, io.EOF
	}

	child := l.children[0]
	batch := sql.NewTupleBatch(l.output...)

	for !batch.Full() && !l.quotaMet() {
		next, err := child.NextBatch()
		if err == io.EOF {
			l.hasMore = false
			break
		}
		if err != nil {
			return nil, err
		}
		for _, t := range next.Tuples {
			l.stats.RowsProcessed++
			if l.Offset != nil && l.skipped < *l.Offset {
				l.skipped++
				continue
			}
			if l.quotaMet() {
				break
			}
			batch.Add(t)
			l.returned++
			l.stats.RowsReturned++
		}
	}

	if l.quotaMet() {
		l.hasMore = false
	}
	if batch.Empty() && !l.hasMore {
		return nil, io.EOF
	}
	return batch, nil
}

func (l *Limit) Reset() {
	l.resetBase()
	l.skipped = 0
	l.returned = 0
}

func (l *Limit) Cleanup() {
	l.cleanupChildren()
}

func (l *Limit) Copy() Operator {
	out := *l
	out.operatorBase = l.copyBase()
	out.skipped = 0
	out.returned = 0
	return &out
}

func (l *Limit) Format(sb *strings.Builder, indent int) {
	sb.WriteString(indentString(indent) + "Limit (" + l.cost.String() + ")\n")
	sb.WriteString(indentString(indent + 1))
	if l.Offset != nil && *l.Offset > 0 {
		sb.WriteString(fmt.Sprintf("Offset: %d ", *l.Offset))
	}
	if l.Limit != nil {
		sb.WriteString(fmt.Sprintf("Limit: %d", *l.Limit))
	} else {
		sb.WriteString("Limit: ALL")
	}
	sb.WriteString("\n")
	l.formatChildren(sb, indent+1)
}

func (l *Limit) String() string { return operatorString(l) }
