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

package binder

import (
	"fmt"

	"github.com/space-rf-org/DB25-sub000/sql"
	"github.com/space-rf-org/DB25-sub000/sql/ast"
)

// bindWithClause registers the statement's CTEs in declaration order. Each
// CTE body is bound in a scope where the previously declared CTEs of the
// same WITH are visible; the CTE's own temp ID is registered before its
// body is bound so recursive references resolve.
func (b *Binder) bindWithClause(with ast.WithClause) {
	for _, def := range with.CTEs {
		if _, dup := b.cteByName[def.Name]; dup {
			b.addError(sql.ErrDuplicateCTE.New(def.Name))
			continue
		}
		if !def.Query.Exists() {
			b.addError(sql.ErrCTEMissingQuery.New(def.Name))
			continue
		}
		body, ok := def.Query.SelectStmt()
		if !ok {
			b.addError(sql.ErrCTENotSelect.New(def.Name))
			continue
		}

		cte := &CTEDefinition{
			Name:        def.Name,
			ColumnNames: append([]string(nil), def.ColumnNames...),
			Recursive:   def.Recursive,
			TempTableID: b.nextTempID,
		}
		b.nextTempID++

		// Visible before the body binds, so a self-reference resolves to
		// the temp ID instead of falling through to the real schema.
		b.cteByName[def.Name] = cte
		b.ctes = append(b.ctes, cte)

		b.bindCTEBody(cte, body)
	}
}

// bindCTEBody binds the CTE query and infers the CTE's output schema. A
// set-operation body (the usual shape of a recursive CTE) is anchored on
// its left arm: the anchor determines the schema, then the recursive arm
// is bound against it so its references are checked too.
func (b *Binder) bindCTEBody(cte *CTEDefinition, body ast.Node) {
	savedScope, savedList := b.scope, b.scopeList
	b.scope = make(map[string]*BoundTableRef)
	b.scopeList = nil
	defer func() {
		b.scope, b.scopeList = savedScope, savedList
	}()

	anchor := body
	var recursiveArm ast.Node
	if setop, ok := body.SetOperation(); ok {
		anchor = setop.LArg
		recursiveArm = setop.RArg
	}

	bound := b.bindSelect(anchor)
	if bound == nil {
		return
	}
	cte.Definition = bound
	b.inferCTESchema(cte, bound)

	if recursiveArm.Exists() {
		b.scope = make(map[string]*BoundTableRef)
		b.scopeList = nil
		b.bindSelect(recursiveArm)
	}
}

// inferCTESchema fixes the CTE's column names and types. An explicit
// column list wins but must match the query width; otherwise names come
// from the select list (output name, else a synthesized col_N).
func (b *Binder) inferCTESchema(cte *CTEDefinition, bound *SelectStatement) {
	width := len(bound.SelectList)
	if len(cte.ColumnNames) > 0 {
		if len(cte.ColumnNames) != width {
			b.addError(sql.ErrCTEColumnCountMismatch.New(cte.Name, len(cte.ColumnNames), width))
			return
		}
	} else {
		for i := range bound.SelectList {
			name := ""
			if i < len(bound.OutputNames) {
				name = bound.OutputNames[i]
			}
			if name == "" {
				name = fmt.Sprintf("col_%d", i+1)
			}
			cte.ColumnNames = append(cte.ColumnNames, name)
		}
	}
	for _, e := range bound.SelectList {
		cte.ColumnTypes = append(cte.ColumnTypes, e.Type())
	}
}
