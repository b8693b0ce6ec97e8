// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cellmetrics computes per-cell read quality metrics from a
// single-cell RNA-seq BAM file, such as one produced by Cell Ranger.
//
// Every alignment record carrying a cell barcode from the allow-list is
// classified once, in file order, and folded into one row of a Table. A read
// that maps to N locations contributes 1/N to its cell's total and to the
// multi, polyA and TSO counts, so that the fractional categories add up to the
// total. Unmapped reads contribute 1.
//
// The percent_qual_cbc and percent_qual_umi columns hold the fraction of
// barcode (resp. UMI) bases with quality above 30, as a running mean weighted
// like total. They are kept in [0,1] and scaled by 100 only in Results and
// in the TSV output.
package cellmetrics
