package reports

import "github.com/shopspring/decimal"

// CarryForwardState is the running memory of last closing values, keyed
// per category. It must be threaded through records in ascending
// chronological order; it is local to one report run and never shared.
//
// Gas holds a single slot because branches run one gas meter: the
// carried value only applies when the location matches, otherwise the
// opening resets to zero. Water keys by location, electricity by meter
// id (legacy readings fall back to location). The asymmetry matches the
// recorded history and is kept deliberately.
type CarryForwardState struct {
	gas         gasSlot
	water       map[string]decimal.Decimal
	electricity map[string]bandSlot
}

type gasSlot struct {
	value    decimal.Decimal
	location string
	set      bool
}

type bandSlot struct {
	wbp  *decimal.Decimal
	lwbp *decimal.Decimal
}

// NewCarryForwardState returns empty state for one report run.
func NewCarryForwardState() *CarryForwardState {
	return &CarryForwardState{
		water:       make(map[string]decimal.Decimal),
		electricity: make(map[string]bandSlot),
	}
}

// AdvanceGas returns the opening value for a gas reading and stores the
// new closing. The carried value applies only when the location matches
// the stored one. A nil closing leaves the slot untouched so the next
// record still opens from the last real reading.
func (s *CarryForwardState) AdvanceGas(location string, closing *decimal.Decimal) decimal.Decimal {
	location = NormalizeLocation(location)
	opening := decimal.Zero
	if s.gas.set && s.gas.location == location {
		opening = s.gas.value
	}
	if closing != nil {
		s.gas = gasSlot{value: closing.Round(2), location: location, set: true}
	}
	return opening
}

// AdvanceWater returns the opening value for a water location and
// stores the new closing. Unseen locations open at zero. A nil closing
// leaves the entry untouched.
func (s *CarryForwardState) AdvanceWater(location string, closing *decimal.Decimal) decimal.Decimal {
	location = NormalizeLocation(location)
	opening := decimal.Zero
	if value, ok := s.water[location]; ok {
		opening = value
	}
	if closing != nil {
		s.water[location] = closing.Round(2)
	}
	return opening
}

// AdvanceElectricity returns the WBP and LWBP opening values for a
// meter key and stores the new closings. The two bands carry forward
// independently, and a nil band value must not erase a previously known
// closing: that would poison the next record's opening with a false
// zero.
func (s *CarryForwardState) AdvanceElectricity(key string, wbpClosing, lwbpClosing *decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	slot := s.electricity[key]
	wbpOpening := decimal.Zero
	lwbpOpening := decimal.Zero
	if slot.wbp != nil {
		wbpOpening = *slot.wbp
	}
	if slot.lwbp != nil {
		lwbpOpening = *slot.lwbp
	}
	if wbpClosing != nil {
		value := wbpClosing.Round(2)
		slot.wbp = &value
	}
	if lwbpClosing != nil {
		value := lwbpClosing.Round(2)
		slot.lwbp = &value
	}
	s.electricity[key] = slot
	return wbpOpening, lwbpOpening
}
