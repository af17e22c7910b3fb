package cache

import "strings"

// OperatingPoint is the microscope setting a set of tuned parameters belongs to.
// Values are the instrument's own strings, e.g. "15KV"; two points are equal only
// if all four fields match exactly.
type OperatingPoint struct {
	Voltage         string // ACC, accelerating voltage
	Current         string // CC, probe current (coarse)
	WorkingDistance string // WD
	Lens            string // OLAP, objective lens selection
}

// Compare orders points by voltage, then current, then working distance, then
// lens, which is the nesting order of the persisted document.
func (p OperatingPoint) Compare(other OperatingPoint) int {
	if c := strings.Compare(p.Voltage, other.Voltage); c != 0 {
		return c
	}
	if c := strings.Compare(p.Current, other.Current); c != 0 {
		return c
	}
	if c := strings.Compare(p.WorkingDistance, other.WorkingDistance); c != 0 {
		return c
	}

	return strings.Compare(p.Lens, other.Lens)
}

func (p OperatingPoint) String() string {
	return p.Voltage + " > " + p.Current + " > " + p.WorkingDistance + " > " + p.Lens
}

// TunedParams are the beam-tuning values saved for one operating point.
// They are always stored and applied together.
type TunedParams struct {
	GA  string `json:"GA"`  // gun alignment
	OC  string `json:"OC"`  // objective lens focus, coarse
	OF  string `json:"OF"`  // objective lens focus, fine
	ST  string `json:"ST"`  // objective lens astigmatism
	STC string `json:"STC"` // condenser lens astigmatism
}
