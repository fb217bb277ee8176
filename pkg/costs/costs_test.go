package costs

import (
	"testing"

	"github.com/emiliancristea/xeno-ai/pkg/models"
)

func TestDefaults(t *testing.T) {
	table := Defaults()

	cases := []struct {
		op   string
		want int64
	}{
		{models.OpCodeCompletion, 1},
		{models.OpChat, 1},
		{models.OpImageGenerate, 3},
		{models.OpImageEnhance, 1},
		{models.OpObjectRemoval, 2},
		{models.OpAudioProcess, 2},
		{models.OpVoiceClone, 5},
		{models.OpVideoStabilize, 5},
		{models.OpVideoAutoedit, 8},
	}
	for _, tc := range cases {
		if got := table.Cost(tc.op); got != tc.want {
			t.Errorf("Cost(%s) = %d, want %d", tc.op, got, tc.want)
		}
	}
}

func TestCostUnknownOperation(t *testing.T) {
	table := Defaults()

	if got := table.Cost("telepathy"); got != MinimumCost {
		t.Errorf("Cost(telepathy) = %d, want MinimumCost %d", got, MinimumCost)
	}
	if got := table.Cost(""); got != MinimumCost {
		t.Errorf("Cost(\"\") = %d, want MinimumCost %d", got, MinimumCost)
	}
}

func TestCostNonPositiveEntry(t *testing.T) {
	table := Table{"freebie": 0, "weird": -4}

	if got := table.Cost("freebie"); got != MinimumCost {
		t.Errorf("Cost(freebie) = %d, want MinimumCost: nothing dispatches for free", got)
	}
	if got := table.Cost("weird"); got != MinimumCost {
		t.Errorf("Cost(weird) = %d, want MinimumCost", got)
	}
}

func TestMerge(t *testing.T) {
	table := Defaults().Merge(map[string]int64{
		models.OpChat: 2,
		"transcribe":  4,
	})

	if got := table.Cost(models.OpChat); got != 2 {
		t.Errorf("Cost(chat) = %d, want override 2", got)
	}
	if got := table.Cost("transcribe"); got != 4 {
		t.Errorf("Cost(transcribe) = %d, want 4", got)
	}
	if got := table.Cost(models.OpVideoAutoedit); got != 8 {
		t.Errorf("Cost(video_autoedit) = %d, want default 8 untouched", got)
	}

	// Merge must not mutate the receiver's defaults for later callers.
	if got := Defaults().Cost(models.OpChat); got != 1 {
		t.Errorf("Defaults().Cost(chat) = %d, want 1", got)
	}
}
