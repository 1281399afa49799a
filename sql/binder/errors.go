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
	"strings"

	"gopkg.in/src-d/go-errors.v1"

	"github.com/space-rf-org/DB25-sub000/internal/similartext"
	"github.com/space-rf-org/DB25-sub000/sql"
)

// suggestFrom ranks a raw candidate list, deduplicating first.
func suggestFrom(candidates []string, input string) []string {
	seen := make(map[string]bool, len(candidates))
	uniq := candidates[:0]
	for _, c := range candidates {
		if !seen[c] {
			seen[c] = true
			uniq = append(uniq, c)
		}
	}
	return similartext.Suggest(uniq, input)
}

// Error is one user-facing binding error. Binding accumulates these and
// keeps going where it can, so a single query may report several.
type Error struct {
	Err         error
	Location    string
	Suggestions []string
}

func (e *Error) Error() string {
	msg := e.Err.Error()
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean: %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

// Is reports whether the error was built from the given kind.
func (e *Error) Is(kind *errors.Kind) bool { return kind.Is(e.Err) }

func (b *Binder) addError(err error) {
	b.errors = append(b.errors, &Error{Err: err})
}

func (b *Binder) addTableNotFoundError(name string) {
	b.errors = append(b.errors, &Error{
		Err:         sql.ErrTableNotFound.New(name),
		Suggestions: b.registry.SuggestTableNames(name),
	})
}

func (b *Binder) addColumnNotFoundError(column, table string) {
	if table == "" {
		// Suggest from every in-scope table.
		var candidates []string
		for _, ref := range b.scopeList {
			for _, col := range ref.Columns {
				candidates = append(candidates, col.Name)
			}
		}
		b.errors = append(b.errors, &Error{
			Err:         sql.ErrColumnNotFound.New(column),
			Suggestions: suggestFrom(candidates, column),
		})
		return
	}
	e := &Error{Err: sql.ErrColumnNotFoundInTable.New(column, table)}
	if id, ok := b.registry.ResolveTable(table); ok {
		e.Suggestions = b.registry.SuggestColumnNames(column, id)
	}
	b.errors = append(b.errors, e)
}

func (b *Binder) addAmbiguousColumnError(column string, refs []*BoundTableRef) {
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, ref.Name()+"."+column)
	}
	b.errors = append(b.errors, &Error{
		Err: sql.ErrAmbiguousColumn.New(column, strings.Join(names, ", ")),
	})
}
