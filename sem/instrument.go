package sem

import "github.com/hackerfriendly/jeol-buddy/cache"

// Parameter ids understood by the microscope.
const (
	ParamVoltage         = "ACC"  // accelerating voltage
	ParamGunAlignment    = "GA"   // gun alignment
	ParamLens            = "OLAP" // objective lens selection
	ParamOLAstigmatism   = "ST"   // objective lens astigmatism
	ParamCLAstigmatism   = "STC"  // condenser lens astigmatism
	ParamCurrentCoarse   = "CC"   // probe current, coarse
	ParamCurrentFine     = "CF"   // probe current, fine
	ParamWorkingDistance = "WD"   // working distance
	ParamFocusCoarse     = "OC"   // objective lens focus, coarse
	ParamFocusFine       = "OF"   // objective lens focus, fine
)

// stateParams is the order the full state is read in.
var stateParams = []string{
	ParamVoltage,
	ParamGunAlignment,
	ParamLens,
	ParamOLAstigmatism,
	ParamCLAstigmatism,
	ParamCurrentCoarse,
	ParamCurrentFine,
	ParamWorkingDistance,
	ParamFocusCoarse,
	ParamFocusFine,
}

// tunedParams is the order saved parameters are sent back to the microscope.
var tunedParams = []string{
	ParamGunAlignment,
	ParamOLAstigmatism,
	ParamCLAstigmatism,
	ParamFocusCoarse,
	ParamFocusFine,
}

// StateParamIDs returns the parameter ids of a full state read, in read order.
func StateParamIDs() []string {
	return append([]string(nil), stateParams...)
}

// TunedParamIDs returns the parameter ids restored by Update, in send order.
func TunedParamIDs() []string {
	return append([]string(nil), tunedParams...)
}

// Field is one parameter id and the value the microscope reported for it.
type Field struct {
	Param string
	Value string
}

// InstrumentState is the full set of parameters read from the microscope.
type InstrumentState struct {
	Voltage         string // ACC
	GunAlignment    string // GA
	Lens            string // OLAP
	OLAstigmatism   string // ST
	CLAstigmatism   string // STC
	CurrentCoarse   string // CC
	CurrentFine     string // CF
	WorkingDistance string // WD
	FocusCoarse     string // OC
	FocusFine       string // OF
}

// OperatingPoint returns the cache key for this state.
func (s InstrumentState) OperatingPoint() cache.OperatingPoint {
	return cache.OperatingPoint{
		Voltage:         s.Voltage,
		Current:         s.CurrentCoarse,
		WorkingDistance: s.WorkingDistance,
		Lens:            s.Lens,
	}
}

// Tuned returns the parameters that are saved for this state's operating point.
func (s InstrumentState) Tuned() cache.TunedParams {
	return cache.TunedParams{
		GA:  s.GunAlignment,
		OC:  s.FocusCoarse,
		OF:  s.FocusFine,
		ST:  s.OLAstigmatism,
		STC: s.CLAstigmatism,
	}
}

// Fields returns every parameter in read order.
func (s InstrumentState) Fields() []Field {
	fields := make([]Field, 0, len(stateParams))
	for _, param := range stateParams {
		fields = append(fields, Field{Param: param, Value: *s.field(param)})
	}

	return fields
}

// Map returns the state keyed by parameter id.
func (s InstrumentState) Map() map[string]string {
	m := make(map[string]string, len(stateParams))
	for _, param := range stateParams {
		m[param] = *s.field(param)
	}

	return m
}

// field returns a pointer to the field holding param, or nil for unknown ids.
func (s *InstrumentState) field(param string) *string {
	switch param {
	case ParamVoltage:
		return &s.Voltage
	case ParamGunAlignment:
		return &s.GunAlignment
	case ParamLens:
		return &s.Lens
	case ParamOLAstigmatism:
		return &s.OLAstigmatism
	case ParamCLAstigmatism:
		return &s.CLAstigmatism
	case ParamCurrentCoarse:
		return &s.CurrentCoarse
	case ParamCurrentFine:
		return &s.CurrentFine
	case ParamWorkingDistance:
		return &s.WorkingDistance
	case ParamFocusCoarse:
		return &s.FocusCoarse
	case ParamFocusFine:
		return &s.FocusFine
	default:
		return nil
	}
}

// tunedValue returns the saved value for a tuned parameter id.
func tunedValue(params cache.TunedParams, param string) string {
	switch param {
	case ParamGunAlignment:
		return params.GA
	case ParamOLAstigmatism:
		return params.ST
	case ParamCLAstigmatism:
		return params.STC
	case ParamFocusCoarse:
		return params.OC
	case ParamFocusFine:
		return params.OF
	default:
		return ""
	}
}
