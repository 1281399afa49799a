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

// Package memory provides the in-memory row source that backs scans during
// testing, standing in for the external storage layer.
package memory

import (
	"fmt"

	"github.com/space-rf-org/DB25-sub000/sql"
)

// Table is a named set of rows with a fixed column list. Rows are stored
// in insertion order, which is the order scans emit them.
type Table struct {
	name    string
	columns []string
	rows    []sql.Tuple
}

// NewTable creates an empty table.
func NewTable(name string, columns ...string) *Table {
	return &Table{name: name, columns: columns}
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Columns returns the column names in order.
func (t *Table) Columns() []string { return t.columns }

// Insert appends one row. Values are matched to columns positionally and
// also indexed by column name so expressions can evaluate against them.
func (t *Table) Insert(values ...string) {
	tuple := sql.NewTuple(values...)
	for i, col := range t.columns {
		if i < len(values) {
			tuple.SetNamedValue(col, values[i])
		}
	}
	t.rows = append(t.rows, tuple)
}

// Rows returns the stored rows.
func (t *Table) Rows() []sql.Tuple { return t.rows }

// Len returns the number of stored rows.
func (t *Table) Len() int { return len(t.rows) }

// Generate fills the table with n deterministic rows: the first column
// counts from 1, the rest are "<column>_<row>".
func (t *Table) Generate(n int) {
	for i := 1; i <= n; i++ {
		values := make([]string, len(t.columns))
		for c, col := range t.columns {
			if c == 0 {
				values[c] = fmt.Sprintf("%d", i)
			} else {
				values[c] = fmt.Sprintf("%s_%d", col, i)
			}
		}
		t.Insert(values...)
	}
}

// Database is a named set of tables implementing the physical layer's row
// source hook.
type Database struct {
	name   string
	tables map[string]*Table
}

// NewDatabase creates an empty database.
func NewDatabase(name string) *Database {
	return &Database{name: name, tables: make(map[string]*Table)}
}

// Name returns the database name.
func (d *Database) Name() string { return d.name }

// AddTable registers a table.
func (d *Database) AddTable(t *Table) { d.tables[t.Name()] = t }

// Table returns the named table.
func (d *Database) Table(name string) (*Table, bool) {
	t, ok := d.tables[name]
	return t, ok
}

// TableRows returns the full row set and column list of a table, or false
// when the table is not present.
func (d *Database) TableRows(tableName string) ([]sql.Tuple, []string, bool) {
	t, ok := d.tables[tableName]
	if !ok {
		return nil, nil, false
	}
	return t.Rows(), t.Columns(), true
}
