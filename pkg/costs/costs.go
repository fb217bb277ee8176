// Package costs holds the static table mapping operation types to credit
// costs. This is policy data consumed by the dispatcher, not runtime state.
package costs

import "github.com/emiliancristea/xeno-ai/pkg/models"

// MinimumCost is charged for unknown operation types so that nothing can be
// dispatched for free by mistyping an operation name.
const MinimumCost int64 = 1

// Table maps an operation type to the credits it requires.
type Table map[string]int64

// Defaults returns the standard cost table.
func Defaults() Table {
	return Table{
		models.OpCodeCompletion: 1,
		models.OpChat:           1,
		models.OpImageGenerate:  3,
		models.OpImageEnhance:   1,
		models.OpObjectRemoval:  2,
		models.OpAudioProcess:   2,
		models.OpVoiceClone:     5,
		models.OpVideoStabilize: 5,
		models.OpVideoAutoedit:  8,
	}
}

// Cost returns the credits required for an operation type. Unknown or
// non-positive entries cost MinimumCost.
func (t Table) Cost(operation string) int64 {
	if c, ok := t[operation]; ok && c > 0 {
		return c
	}
	return MinimumCost
}

// Merge returns a copy of t with the given overrides applied.
func (t Table) Merge(overrides map[string]int64) Table {
	out := make(Table, len(t)+len(overrides))
	for op, c := range t {
		out[op] = c
	}
	for op, c := range overrides {
		out[op] = c
	}
	return out
}
