// Package core defines the shared language of the varcat system.
//
// This package contains:
//   - Catalog entities (Variable, Dataset, Catalog)
//   - Raw input shapes (Codebook, DatasetInput)
//   - Build configuration (GroupSpec, IgnoreRule, LongNotesPolicy, BuildConfig)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
