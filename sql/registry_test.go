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
	"testing"

	"github.com/stretchr/testify/require"
)

func testSchema(t *testing.T) *Database {
	t.Helper()
	db := NewDatabase("testdb")
	require.NoError(t, db.AddTable(Table{
		Name: "users",
		Columns: []Column{
			{Name: "id", Type: Integer, PrimaryKey: true},
			{Name: "name", Type: Varchar, MaxLength: 100, Nullable: true},
			{Name: "email", Type: Varchar, MaxLength: 255, Unique: true, Nullable: true},
		},
		Indexes: []Index{
			{Name: "users_pkey", Columns: []string{"id"}, Unique: true, Method: "BTREE"},
		},
	}))
	require.NoError(t, db.AddTable(Table{
		Name: "orders",
		Columns: []Column{
			{Name: "id", Type: Integer, PrimaryKey: true},
			{Name: "user_id", Type: Integer, ReferencesTable: "users", ReferencesColumn: "id"},
			{Name: "total", Type: Decimal, Nullable: true},
		},
	}))
	return db
}

func TestRegistryResolveTable(t *testing.T) {
	require := require.New(t)
	r := NewRegistry(testSchema(t))

	id, ok := r.ResolveTable("users")
	require.True(ok)
	require.True(id.Valid())

	_, ok = r.ResolveTable("nope")
	require.False(ok)

	// Resolution is case-sensitive.
	_, ok = r.ResolveTable("Users")
	require.False(ok)

	// Dense 1-based IDs in name order.
	require.Equal([]TableID{1, 2}, r.AllTableIDs())
	require.Equal("orders", r.TableName(1))
	require.Equal("users", r.TableName(2))
}

func TestRegistryResolveColumn(t *testing.T) {
	require := require.New(t)
	r := NewRegistry(testSchema(t))

	usersID, _ := r.ResolveTable("users")
	id, ok := r.ResolveColumn(usersID, "email")
	require.True(ok)
	require.Equal(ColumnID(3), id)

	_, ok = r.ResolveColumn(usersID, "Email")
	require.False(ok)

	require.Equal([]ColumnID{1, 2, 3}, r.TableColumnIDs(usersID))
	require.Equal("email", r.ColumnName(usersID, 3))
	require.Equal(Varchar, r.ColumnDefinition(usersID, 3).Type)
}

func TestRegistryUnqualifiedColumn(t *testing.T) {
	require := require.New(t)
	r := NewRegistry(testSchema(t))

	// "id" lives in both tables.
	rs := r.ResolveUnqualifiedColumn("id")
	require.Len(rs, 2)
	require.True(r.IsColumnAmbiguous("id"))

	rs = r.ResolveUnqualifiedColumn("email")
	require.Len(rs, 1)
	require.Equal("users", rs[0].TableName)
	require.False(r.IsColumnAmbiguous("email"))

	require.Empty(r.ResolveUnqualifiedColumn("nope"))
}

func TestRegistryUnknownIDPanics(t *testing.T) {
	r := NewRegistry(testSchema(t))
	require.Panics(t, func() { r.TableDefinition(99) })
	require.Panics(t, func() { r.TableName(99) })
	require.Panics(t, func() { r.ColumnDefinition(1, 99) })
	require.Panics(t, func() { r.ColumnName(99, 1) })
}

func TestRegistryIndexes(t *testing.T) {
	require := require.New(t)
	r := NewRegistry(testSchema(t))

	usersID, _ := r.ResolveTable("users")
	idxs := r.TableIndexes(usersID)
	require.Len(idxs, 1)
	require.Equal("users_pkey", idxs[0].Name)

	idCol, _ := r.ResolveColumn(usersID, "id")
	nameCol, _ := r.ResolveColumn(usersID, "name")
	require.True(r.HasIndexOnColumn(usersID, idCol))
	require.False(r.HasIndexOnColumn(usersID, nameCol))
}

func TestRegistryValidateForeignKey(t *testing.T) {
	require := require.New(t)
	r := NewRegistry(testSchema(t))

	usersID, _ := r.ResolveTable("users")
	ordersID, _ := r.ResolveTable("orders")
	userIDCol, _ := r.ResolveColumn(ordersID, "user_id")
	idCol, _ := r.ResolveColumn(usersID, "id")
	nameCol, _ := r.ResolveColumn(usersID, "name")
	emailCol, _ := r.ResolveColumn(usersID, "email")

	// Compatible types, referenced column is a primary key.
	require.True(r.ValidateForeignKey(ordersID, userIDCol, usersID, idCol))
	// Referenced column neither primary key nor unique.
	require.False(r.ValidateForeignKey(ordersID, userIDCol, usersID, nameCol))
	// Unique is enough, but Integer vs Varchar is not compatible.
	require.False(r.ValidateForeignKey(ordersID, userIDCol, usersID, emailCol))
	// Unknown IDs never validate.
	require.False(r.ValidateForeignKey(99, 1, usersID, idCol))
}

func TestRegistrySuggestions(t *testing.T) {
	require := require.New(t)
	r := NewRegistry(testSchema(t))

	suggestions := r.SuggestTableNames("userz")
	require.NotEmpty(suggestions)
	require.Equal("users", suggestions[0])

	usersID, _ := r.ResolveTable("users")
	suggestions = r.SuggestColumnNames("emial", usersID)
	require.NotEmpty(suggestions)
	require.Equal("email", suggestions[0])

	// Empty schema yields no suggestions at all.
	empty := NewRegistry(NewDatabase("empty"))
	require.Empty(empty.SuggestTableNames("anything"))
}

func TestRegistryRefreshMappings(t *testing.T) {
	require := require.New(t)
	db := testSchema(t)
	r := NewRegistry(db)
	require.Equal(2, r.TableCount())
	require.Equal(6, r.TotalColumnCount())

	require.NoError(db.AddTable(Table{
		Name:    "products",
		Columns: []Column{{Name: "id", Type: Integer, PrimaryKey: true}},
	}))
	_, ok := r.ResolveTable("products")
	require.False(ok)

	r.RefreshMappings()
	_, ok = r.ResolveTable("products")
	require.True(ok)
	require.Equal(3, r.TableCount())
}

func TestRegistryTypeCompatibility(t *testing.T) {
	require := require.New(t)
	r := NewRegistry(nil)

	require.True(r.AreTypesCompatible(Integer, BigInt))
	require.True(r.AreTypesCompatible(Integer, Decimal))
	require.True(r.AreTypesCompatible(Varchar, Text))
	require.False(r.AreTypesCompatible(Integer, Varchar))
	require.True(r.AreTypesCompatible(Date, Timestamp))
	require.True(r.AreTypesCompatible(UUID, UUID))

	require.True(r.CanCastImplicitly(Integer, BigInt))
	require.False(r.CanCastImplicitly(BigInt, Integer))
	require.True(r.CanCastImplicitly(Varchar, Text))
	require.False(r.CanCastImplicitly(Text, Varchar))
	require.True(r.CanCastImplicitly(Date, Timestamp))
	require.False(r.CanCastImplicitly(Timestamp, Date))

	require.Equal(BigInt, r.CommonType(Integer, BigInt))
	require.Equal(Decimal, r.CommonType(Integer, Decimal))
	require.Equal(Text, r.CommonType(Varchar, Text))
	require.Equal(Timestamp, r.CommonType(Date, Timestamp))
	require.Equal(Text, r.CommonType(Integer, Varchar))
	require.Equal(Boolean, r.CommonType(Boolean, Boolean))
}

func TestDatabaseValidation(t *testing.T) {
	require := require.New(t)
	db := testSchema(t)

	// Index over a column that does not exist.
	err := db.AddIndex("users", Index{Name: "bad", Columns: []string{"nope"}})
	require.Error(err)

	err = db.AddIndex("users", Index{Name: "users_email", Columns: []string{"email"}, Unique: true})
	require.NoError(err)

	err = db.AddForeignKey("orders", "user_id", "users", "nope")
	require.Error(err)
	err = db.AddForeignKey("orders", "user_id", "users", "id")
	require.NoError(err)
}
