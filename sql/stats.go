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

// TableStats carries the per-table statistics the planners cost against.
// Statistics are supplied in-memory by the caller; nothing is persisted.
type TableStats struct {
	RowCount          int
	AvgRowSize        float64
	ColumnSelectivity map[string]float64
	DistinctValues    map[string]int
}

// DefaultTableStats is what the planner assumes for tables it has no
// statistics for.
func DefaultTableStats() TableStats {
	return TableStats{RowCount: 1000, AvgRowSize: 100.0}
}

// ExecutionStats accumulates per-operator runtime counters and merges into
// plan totals.
type ExecutionStats struct {
	RowsProcessed   int
	RowsReturned    int
	ExecutionTimeMs float64
	MemoryUsedBytes int
	DiskReads       int
	DiskWrites      int
	UsedTempFiles   bool
}

// Merge folds other into s. Counters are summed; memory is a high-water
// mark.
func (s *ExecutionStats) Merge(other ExecutionStats) {
	s.RowsProcessed += other.RowsProcessed
	s.RowsReturned += other.RowsReturned
	s.ExecutionTimeMs += other.ExecutionTimeMs
	if other.MemoryUsedBytes > s.MemoryUsedBytes {
		s.MemoryUsedBytes = other.MemoryUsedBytes
	}
	s.DiskReads += other.DiskReads
	s.DiskWrites += other.DiskWrites
	s.UsedTempFiles = s.UsedTempFiles || other.UsedTempFiles
}
