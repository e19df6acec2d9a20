package descriptor

import (
	"testing"

	"github.com/atlas-desktop/discover/pkg/config"
	"github.com/atlas-desktop/discover/pkg/types"
)

func TestSlotForAppliesProfileOverride(t *testing.T) {
	defer SetProfileOverrides(nil)

	SetProfileOverrides(config.ProfileOverrides{
		"rsi": {"aggressive": {"period": 7}},
	})
	slot := SlotFor(types.FamilyRSI, ProfileAggressive)
	if slot.RSI.Period != 7 {
		t.Fatalf("overridden period = %d, want 7", slot.RSI.Period)
	}
	if slot.RSI.Overbought != 65 {
		t.Fatalf("unoverridden field changed: overbought = %v, want 65", slot.RSI.Overbought)
	}
}

func TestSlotForWithNoOverridesUsesBuiltins(t *testing.T) {
	SetProfileOverrides(nil)
	slot := SlotFor(types.FamilyRSI, ProfileDefault)
	if slot.RSI.Period != 14 {
		t.Fatalf("period = %d, want built-in default 14", slot.RSI.Period)
	}
}
