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

	"github.com/space-rf-org/DB25-sub000/internal/similartext"
)

// ColumnResolution is one candidate binding for an unqualified column name.
type ColumnResolution struct {
	TableID    TableID
	ColumnID   ColumnID
	TableName  string
	ColumnName string
}

// Registry provides ID-based access to a database schema. It is built once
// from a Database and is read-only afterwards; RegisterSchema and
// RefreshMappings rebuild it wholesale and must not race with lookups.
//
// Name resolution is exact and case-sensitive. Lookups by unknown ID panic:
// an ID can only come from a previous successful resolution, so a miss is a
// bug in the caller, not user input.
type Registry struct {
	schema *Database

	tableNameToID map[string]TableID
	tableIDToName map[TableID]string
	tableDefs     map[TableID]Table

	columnNameToID map[TableID]map[string]ColumnID
	columnIDToName map[TableID]map[ColumnID]string
	columnDefs     map[TableID][]Column

	// Every table exposing a given column name; drives ambiguity detection.
	globalColumnIndex map[string][]ColumnResolution

	tableIndexes map[TableID][]Index

	nextTableID TableID
}

// NewRegistry builds a registry over the given schema. A nil schema yields
// an empty registry.
func NewRegistry(schema *Database) *Registry {
	r := &Registry{}
	r.reset()
	if schema != nil {
		r.schema = schema
		r.initializeMappings()
	}
	return r
}

func (r *Registry) reset() {
	r.tableNameToID = make(map[string]TableID)
	r.tableIDToName = make(map[TableID]string)
	r.tableDefs = make(map[TableID]Table)
	r.columnNameToID = make(map[TableID]map[string]ColumnID)
	r.columnIDToName = make(map[TableID]map[ColumnID]string)
	r.columnDefs = make(map[TableID][]Column)
	r.globalColumnIndex = make(map[string][]ColumnResolution)
	r.tableIndexes = make(map[TableID][]Index)
	r.nextTableID = 1
}

// RegisterSchema discards all mappings and rebuilds them from schema.
func (r *Registry) RegisterSchema(schema *Database) {
	r.reset()
	r.schema = schema
	r.initializeMappings()
}

// RefreshMappings rebuilds the mappings from the current schema, picking up
// tables added to the Database since the registry was built.
func (r *Registry) RefreshMappings() {
	if r.schema != nil {
		r.RegisterSchema(r.schema)
	}
}

func (r *Registry) initializeMappings() {
	for _, name := range r.schema.TableNames() {
		if t, ok := r.schema.Table(name); ok {
			r.registerTable(t)
		}
	}
	r.buildGlobalColumnIndex()
}

func (r *Registry) registerTable(t Table) {
	id := r.nextTableID
	r.nextTableID++

	r.tableNameToID[t.Name] = id
	r.tableIDToName[id] = t.Name
	r.tableDefs[id] = t

	nameToID := make(map[string]ColumnID, len(t.Columns))
	idToName := make(map[ColumnID]string, len(t.Columns))
	for i, col := range t.Columns {
		cid := ColumnID(i + 1)
		nameToID[col.Name] = cid
		idToName[cid] = col.Name
	}
	r.columnNameToID[id] = nameToID
	r.columnIDToName[id] = idToName
	r.columnDefs[id] = append([]Column(nil), t.Columns...)
	r.tableIndexes[id] = append([]Index(nil), t.Indexes...)
}

func (r *Registry) buildGlobalColumnIndex() {
	r.globalColumnIndex = make(map[string][]ColumnResolution)
	ids := r.AllTableIDs()
	for _, tid := range ids {
		for cid, name := range r.columnIDToName[tid] {
			r.globalColumnIndex[name] = append(r.globalColumnIndex[name], ColumnResolution{
				TableID:    tid,
				ColumnID:   cid,
				TableName:  r.tableIDToName[tid],
				ColumnName: name,
			})
		}
	}
	// Deterministic candidate order for error messages and tests.
	for name := range r.globalColumnIndex {
		rs := r.globalColumnIndex[name]
		sort.Slice(rs, func(i, j int) bool {
			if rs[i].TableID != rs[j].TableID {
				return rs[i].TableID < rs[j].TableID
			}
			return rs[i].ColumnID < rs[j].ColumnID
		})
	}
}

// ResolveTable returns the ID of the named table.
func (r *Registry) ResolveTable(name string) (TableID, bool) {
	id, ok := r.tableNameToID[name]
	return id, ok
}

// ResolveColumn returns the ID of the named column within a table.
func (r *Registry) ResolveColumn(tableID TableID, name string) (ColumnID, bool) {
	cols, ok := r.columnNameToID[tableID]
	if !ok {
		return 0, false
	}
	id, ok := cols[name]
	return id, ok
}

// ResolveUnqualifiedColumn returns every table exposing the given column
// name. Callers treat one candidate as a resolution, several as ambiguity.
func (r *Registry) ResolveUnqualifiedColumn(name string) []ColumnResolution {
	return r.globalColumnIndex[name]
}

// IsColumnAmbiguous reports whether more than one table exposes the name.
func (r *Registry) IsColumnAmbiguous(name string) bool {
	return len(r.globalColumnIndex[name]) > 1
}

// TableDefinition returns the definition of a registered table. Panics on
// an unknown ID.
func (r *Registry) TableDefinition(id TableID) Table {
	t, ok := r.tableDefs[id]
	if !ok {
		panic(fmt.Sprintf("sql: table ID %d not found", id))
	}
	return t
}

// TableName returns the name of a registered table. Panics on an unknown ID.
func (r *Registry) TableName(id TableID) string {
	name, ok := r.tableIDToName[id]
	if !ok {
		panic(fmt.Sprintf("sql: table ID %d not found", id))
	}
	return name
}

// ColumnDefinition returns one column of a registered table. Panics when
// either ID is unknown.
func (r *Registry) ColumnDefinition(tableID TableID, columnID ColumnID) Column {
	cols, ok := r.columnDefs[tableID]
	if !ok {
		panic(fmt.Sprintf("sql: table ID %d not found", tableID))
	}
	if columnID <= 0 || int(columnID) > len(cols) {
		panic(fmt.Sprintf("sql: column ID %d not found in table %d", columnID, tableID))
	}
	return cols[columnID-1]
}

// ColumnName returns the name of a column. Panics when either ID is unknown.
func (r *Registry) ColumnName(tableID TableID, columnID ColumnID) string {
	names, ok := r.columnIDToName[tableID]
	if !ok {
		panic(fmt.Sprintf("sql: table ID %d not found", tableID))
	}
	name, ok := names[columnID]
	if !ok {
		panic(fmt.Sprintf("sql: column ID %d not found in table %d", columnID, tableID))
	}
	return name
}

// AllTableIDs returns the registered table IDs in ascending order.
func (r *Registry) AllTableIDs() []TableID {
	ids := make([]TableID, 0, len(r.tableDefs))
	for id := range r.tableDefs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// TableColumnIDs returns the column IDs of a table in ascending order.
func (r *Registry) TableColumnIDs(tableID TableID) []ColumnID {
	cols, ok := r.columnNameToID[tableID]
	if !ok {
		return nil
	}
	ids := make([]ColumnID, 0, len(cols))
	for _, id := range cols {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// TableIndexes returns the indexes defined over a table.
func (r *Registry) TableIndexes(tableID TableID) []Index {
	return r.tableIndexes[tableID]
}

// HasIndexOnColumn reports whether any index of the table covers the column.
func (r *Registry) HasIndexOnColumn(tableID TableID, columnID ColumnID) bool {
	name := r.ColumnName(tableID, columnID)
	for _, idx := range r.tableIndexes[tableID] {
		for _, col := range idx.Columns {
			if col == name {
				return true
			}
		}
	}
	return false
}

// TableExists reports whether the named table is registered.
func (r *Registry) TableExists(name string) bool {
	_, ok := r.tableNameToID[name]
	return ok
}

// ColumnExists reports whether the table has a column of the given name.
func (r *Registry) ColumnExists(tableID TableID, name string) bool {
	_, ok := r.ResolveColumn(tableID, name)
	return ok
}

// ValidateForeignKey reports whether a column may reference another: the
// types must be comparable and the referenced column must be a primary key
// or unique.
func (r *Registry) ValidateForeignKey(tableID TableID, columnID ColumnID, refTableID TableID, refColumnID ColumnID) bool {
	if _, ok := r.columnDefs[tableID]; !ok {
		return false
	}
	if _, ok := r.columnDefs[refTableID]; !ok {
		return false
	}
	if columnID <= 0 || int(columnID) > len(r.columnDefs[tableID]) {
		return false
	}
	if refColumnID <= 0 || int(refColumnID) > len(r.columnDefs[refTableID]) {
		return false
	}
	col := r.columnDefs[tableID][columnID-1]
	ref := r.columnDefs[refTableID][refColumnID-1]
	if !r.AreTypesCompatible(col.Type, ref.Type) {
		return false
	}
	return ref.PrimaryKey || ref.Unique
}

// AreTypesCompatible reports whether two types belong to the same type
// family (numeric, string, date) or are identical.
func (r *Registry) AreTypesCompatible(left, right ColumnType) bool {
	if left == right {
		return true
	}
	if IsNumericType(left) && IsNumericType(right) {
		return true
	}
	if IsStringType(left) && IsStringType(right) {
		return true
	}
	if IsDateType(left) && IsDateType(right) {
		return true
	}
	return false
}

// CanCastImplicitly reports whether from widens to to without loss:
// Integer to BigInt, Varchar to Text, Date to Timestamp.
func (r *Registry) CanCastImplicitly(from, to ColumnType) bool {
	if from == to {
		return true
	}
	switch {
	case from == Integer && to == BigInt:
		return true
	case from == Varchar && to == Text:
		return true
	case from == Date && to == Timestamp:
		return true
	}
	return false
}

// CommonType returns the promotion target for a pair of types: the widest
// member within a family, Text across families.
func (r *Registry) CommonType(left, right ColumnType) ColumnType {
	if left == right {
		return left
	}
	if IsNumericType(left) && IsNumericType(right) {
		if left == BigInt || right == BigInt {
			return BigInt
		}
		if left == Decimal || right == Decimal {
			return Decimal
		}
		return Integer
	}
	if IsStringType(left) && IsStringType(right) {
		return Text
	}
	if IsDateType(left) && IsDateType(right) {
		return Timestamp
	}
	return Text
}

// SuggestTableNames returns up to three table names similar to input,
// best match first.
func (r *Registry) SuggestTableNames(input string) []string {
	names := make([]string, 0, len(r.tableNameToID))
	for name := range r.tableNameToID {
		names = append(names, name)
	}
	return similartext.Suggest(names, input)
}

// SuggestColumnNames returns up to three column names of the given table
// similar to input.
func (r *Registry) SuggestColumnNames(input string, tableID TableID) []string {
	cols, ok := r.columnNameToID[tableID]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	return similartext.Suggest(names, input)
}

// TableCount returns the number of registered tables.
func (r *Registry) TableCount() int { return len(r.tableNameToID) }

// TotalColumnCount returns the number of columns across all tables.
func (r *Registry) TotalColumnCount() int {
	total := 0
	for _, cols := range r.columnNameToID {
		total += len(cols)
	}
	return total
}
