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
	"runtime"

	"github.com/space-rf-org/DB25-sub000/sql"
)

// Config holds every physical-planning tunable. There are no environment
// variables and no config files; callers construct and pass this struct.
type Config struct {
	EnableParallelExecution bool
	MaxParallelWorkers      int
	WorkMem                 int
	EnableHashJoins         bool
	HashJoinThreshold       int
	IndexScanThreshold      int
	ParallelThreshold       float64
	EnableVectorization     bool
	BatchSize               int
	TempDir                 string
}

// DefaultConfig returns the default physical planner configuration.
func DefaultConfig() Config {
	return Config{
		EnableParallelExecution: true,
		MaxParallelWorkers:      runtime.NumCPU(),
		WorkMem:                 1024 * 1024,
		EnableHashJoins:         true,
		HashJoinThreshold:       10000,
		IndexScanThreshold:      1000,
		ParallelThreshold:       1000.0,
		EnableVectorization:     true,
		BatchSize:               1000,
		TempDir:                 "/tmp",
	}
}

// ExecutionContext builds the operator-facing limit bag from the config.
func (c Config) ExecutionContext() *sql.ExecutionContext {
	return &sql.ExecutionContext{
		WorkMemLimit:       c.WorkMem,
		TempFileThreshold:  c.WorkMem / 2,
		TempDir:            c.TempDir,
		EnableParallel:     c.EnableParallelExecution,
		MaxParallelWorkers: c.MaxParallelWorkers,
	}
}
