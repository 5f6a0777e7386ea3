package reserve

import "fmt"

// Choose resolves a single target slot from an ordered, filtered set.
//
// With autoFirst, the choice is the first element: earliest date, topmost
// presented time. That tie-break is deterministic and part of the contract,
// not an arbitrary pick. Otherwise the picker is shown the full ordered set
// and must return a member of it; anything else is rejected.
func Choose(slots SlotSet, autoFirst bool, picker SlotPicker) (Slot, error) {
	if slots.Empty() {
		return Slot{}, ErrNoSlotsAvailable
	}

	if autoFirst {
		return slots[0], nil
	}

	if picker == nil {
		return Slot{}, fmt.Errorf("interactive selection requested but no picker available")
	}

	chosen, ok, err := picker.Pick(slots)
	if err != nil {
		return Slot{}, err
	}
	if !ok {
		return Slot{}, ErrSelectionCancelled
	}
	if !slots.Contains(chosen) {
		return Slot{}, fmt.Errorf("picker returned %q, which is not in the offered set", chosen.Display())
	}
	return chosen, nil
}
