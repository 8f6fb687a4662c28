// Package textutil provides the label normalization rules shared by the
// merge scorer and the entity linker: accent stripping, speaker key
// derivation, and knowledge-base lookup cleanup.
package textutil
