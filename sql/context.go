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

import "runtime"

// ExecutionContext is the read-only bag of limits handed to every operator
// at initialize time. Operators share one context per plan and never
// mutate it.
type ExecutionContext struct {
	WorkMemLimit       int
	TempFileThreshold  int
	TempDir            string
	EnableParallel     bool
	MaxParallelWorkers int
}

// NewExecutionContext returns a context with the default limits: 1MB of
// work memory, 512KB temp-file threshold, parallelism up to the hardware
// concurrency.
func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{
		WorkMemLimit:       1024 * 1024,
		TempFileThreshold:  512 * 1024,
		TempDir:            "/tmp",
		EnableParallel:     true,
		MaxParallelWorkers: runtime.NumCPU(),
	}
}
