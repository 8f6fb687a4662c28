// Package catalog tracks every discovered parliamentary session and its
// progress through the pipeline. State is persisted in SQLite so that
// interrupted runs resume where they left off.
package catalog
