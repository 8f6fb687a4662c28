// Package workflow drives sessions through the pipeline: merge, entity
// linking, forced alignment, entity extraction, and publication. Progress
// is persisted in the catalog after every stage so interrupted runs resume
// exactly where they stopped.
package workflow
