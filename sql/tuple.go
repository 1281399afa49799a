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

package sql

// DefaultBatchSize is the nominal number of tuples per TupleBatch.
const DefaultBatchSize = 1000

// Tuple is a positional list of string-encoded values, optionally indexed
// by column name. It is the unit of data produced by physical operators.
type Tuple struct {
	Values    []string
	ColumnMap map[string]string
}

// NewTuple creates a tuple over the given values.
func NewTuple(values ...string) Tuple {
	return Tuple{Values: values}
}

// Value returns the value at index, or "" when out of range.
func (t Tuple) Value(index int) string {
	if index < 0 || index >= len(t.Values) {
		return ""
	}
	return t.Values[index]
}

// NamedValue returns the value stored under a column name, or "" when the
// tuple carries no such name.
func (t Tuple) NamedValue(column string) string {
	if t.ColumnMap == nil {
		return ""
	}
	return t.ColumnMap[column]
}

// SetValue stores a value at index, growing the tuple as needed.
func (t *Tuple) SetValue(index int, value string) {
	for index >= len(t.Values) {
		t.Values = append(t.Values, "")
	}
	t.Values[index] = value
}

// SetNamedValue stores a value under a column name.
func (t *Tuple) SetNamedValue(column, value string) {
	if t.ColumnMap == nil {
		t.ColumnMap = make(map[string]string)
	}
	t.ColumnMap[column] = value
}

// Len returns the number of positional values.
func (t Tuple) Len() int { return len(t.Values) }

// Empty reports whether the tuple carries no values at all.
func (t Tuple) Empty() bool { return len(t.Values) == 0 && len(t.ColumnMap) == 0 }

// Copy returns an independently-owned copy of the tuple.
func (t Tuple) Copy() Tuple {
	out := Tuple{Values: append([]string(nil), t.Values...)}
	if t.ColumnMap != nil {
		out.ColumnMap = make(map[string]string, len(t.ColumnMap))
		for k, v := range t.ColumnMap {
			out.ColumnMap[k] = v
		}
	}
	return out
}

// TupleBatch is the unit of data transfer between operators: a vector of
// tuples plus the column schema they share.
type TupleBatch struct {
	Tuples      []Tuple
	ColumnNames []string
	BatchSize   int
}

// NewTupleBatch creates an empty batch with the default nominal size.
func NewTupleBatch(columns ...string) *TupleBatch {
	return &TupleBatch{ColumnNames: columns, BatchSize: DefaultBatchSize}
}

// Add appends a tuple to the batch.
func (b *TupleBatch) Add(t Tuple) { b.Tuples = append(b.Tuples, t) }

// Clear drops the batch contents, keeping the schema.
func (b *TupleBatch) Clear() { b.Tuples = b.Tuples[:0] }

// Len returns the number of tuples in the batch.
func (b *TupleBatch) Len() int { return len(b.Tuples) }

// Empty reports whether the batch holds no tuples.
func (b *TupleBatch) Empty() bool { return len(b.Tuples) == 0 }

// Full reports whether the batch reached its nominal size.
func (b *TupleBatch) Full() bool {
	size := b.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	return len(b.Tuples) >= size
}
