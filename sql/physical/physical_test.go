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
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/space-rf-org/DB25-sub000/memory"
	"github.com/space-rf-org/DB25-sub000/sql"
)

// testSource builds the standard fixture: three users and four orders.
func testSource() *memory.Database {
	db := memory.NewDatabase("testdb")

	users := memory.NewTable("users", "id", "name", "email")
	users.Insert("1", "alice", "alice@example.com")
	users.Insert("2", "bob", "bob@example.com")
	users.Insert("3", "carol", "carol@example.com")
	db.AddTable(users)

	orders := memory.NewTable("orders", "id", "user_id", "total")
	orders.Insert("10", "1", "100")
	orders.Insert("11", "1", "250")
	orders.Insert("12", "2", "75")
	orders.Insert("13", "9", "5")
	db.AddTable(orders)

	return db
}

// drain runs an operator to EOF and returns every tuple.
func drain(t *testing.T, op Operator) []sql.Tuple {
	t.Helper()
	op.Initialize(sql.NewExecutionContext())
	var tuples []sql.Tuple
	for {
		batch, err := op.NextBatch()
		if err == io.EOF {
			return tuples
		}
		require.NoError(t, err)
		if batch != nil {
			tuples = append(tuples, batch.Tuples...)
		}
	}
}
