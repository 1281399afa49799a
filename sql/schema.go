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

import (
	"fmt"
	"sort"
)

// TableID identifies a registered table. ID 0 is reserved and invalid;
// real tables are numbered densely from 1. IDs at or above
// VirtualTableIDBase belong to CTE-backed virtual tables that exist only
// for the duration of one binding.
type TableID int

// ColumnID identifies a column within its table, 1-based.
type ColumnID int

// VirtualTableIDBase is the first table ID handed out to CTEs.
const VirtualTableIDBase TableID = 10000

// Valid reports whether the ID refers to a real or virtual table.
func (id TableID) Valid() bool { return id > 0 }

// Virtual reports whether the ID belongs to the CTE namespace.
func (id TableID) Virtual() bool { return id >= VirtualTableIDBase }

// Column describes one column of a table.
type Column struct {
	Name       string
	Type       ColumnType
	MaxLength  int
	Nullable   bool
	PrimaryKey bool
	Unique     bool
	Default    string
	// Foreign-key target, empty when the column references nothing.
	ReferencesTable  string
	ReferencesColumn string
}

// Index describes a secondary access path over a table.
type Index struct {
	Name    string
	Columns []string
	Unique  bool
	Method  string // access method tag; AddIndex fills in "BTREE" when empty
}

// Table is a named, ordered set of columns plus its indexes.
type Table struct {
	Name    string
	Columns []Column
	Indexes []Index
	Comment string
}

// Column returns the named column, or nil.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// Database is a mutable schema container the Registry is built from. It is
// a plain bag of tables; all resolution goes through the Registry.
type Database struct {
	Name   string
	tables map[string]Table
}

// NewDatabase creates an empty schema with the given name.
func NewDatabase(name string) *Database {
	return &Database{Name: name, tables: make(map[string]Table)}
}

// AddTable registers a table definition, replacing any previous definition
// with the same name. Index column references are validated against the
// table itself; the columns' foreign-key fields are stored unchecked.
func (d *Database) AddTable(t Table) error {
	for _, idx := range t.Indexes {
		for _, col := range idx.Columns {
			if t.Column(col) == nil {
				return fmt.Errorf("index %q references unknown column %q in table %q", idx.Name, col, t.Name)
			}
		}
	}
	d.tables[t.Name] = t
	return nil
}

// AddIndex attaches an index to an existing table.
func (d *Database) AddIndex(tableName string, idx Index) error {
	t, ok := d.tables[tableName]
	if !ok {
		return fmt.Errorf("table %q not found", tableName)
	}
	for _, col := range idx.Columns {
		if t.Column(col) == nil {
			return fmt.Errorf("index %q references unknown column %q in table %q", idx.Name, col, tableName)
		}
	}
	if idx.Method == "" {
		idx.Method = "BTREE"
	}
	t.Indexes = append(t.Indexes, idx)
	d.tables[tableName] = t
	return nil
}

// AddForeignKey records a foreign-key reference on an existing column. The
// referenced table and column must exist.
func (d *Database) AddForeignKey(tableName, columnName, refTable, refColumn string) error {
	t, ok := d.tables[tableName]
	if !ok {
		return fmt.Errorf("table %q not found", tableName)
	}
	ref, ok := d.tables[refTable]
	if !ok {
		return fmt.Errorf("referenced table %q not found", refTable)
	}
	if ref.Column(refColumn) == nil {
		return fmt.Errorf("referenced column %q not found in table %q", refColumn, refTable)
	}
	col := t.Column(columnName)
	if col == nil {
		return fmt.Errorf("column %q not found in table %q", columnName, tableName)
	}
	col.ReferencesTable = refTable
	col.ReferencesColumn = refColumn
	d.tables[tableName] = t
	return nil
}

// TableNames returns the table names in lexical order.
func (d *Database) TableNames() []string {
	names := make([]string, 0, len(d.tables))
	for name := range d.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Table returns the named table definition.
func (d *Database) Table(name string) (Table, bool) {
	t, ok := d.tables[name]
	return t, ok
}
