// Package core defines the shared language of the leaprdt system.
//
// This package contains:
//   - Domain entities (Field, Column, Dataset, NumericTable)
//   - The semantic type set (SDType)
//   - The Transformer contract every column encoder satisfies
//   - The error taxonomy shared by transformers and the orchestrator
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
