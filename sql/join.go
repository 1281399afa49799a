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

// JoinKind is the logical join variant.
type JoinKind int

const (
	InnerJoin JoinKind = iota
	LeftOuterJoin
	RightOuterJoin
	FullOuterJoin
	CrossJoin
	SemiJoin
	AntiJoin
)

func (k JoinKind) String() string {
	switch k {
	case InnerJoin:
		return "Inner Join"
	case LeftOuterJoin:
		return "Left Join"
	case RightOuterJoin:
		return "Right Join"
	case FullOuterJoin:
		return "Full Join"
	case CrossJoin:
		return "Cross Join"
	case SemiJoin:
		return "Semi Join"
	case AntiJoin:
		return "Anti Join"
	default:
		return "Unknown Join"
	}
}

// JoinKindFromAST maps the parser's jointype tags onto JoinKind.
func JoinKindFromAST(tag string) JoinKind {
	switch tag {
	case "JOIN_LEFT":
		return LeftOuterJoin
	case "JOIN_RIGHT":
		return RightOuterJoin
	case "JOIN_FULL":
		return FullOuterJoin
	default:
		return InnerJoin
	}
}
