package sem

// Macro names used in logs and MacroError.
const (
	MacroSafeMode     = "safe-mode"
	MacroKeyRemap     = "key-remap"
	MacroAlignmentOn  = "alignment-on"
	MacroAlignmentOff = "alignment-off"
)

const (
	defaultAlignmentOL = "FKEY 7 WBL"
	defaultAlignmentCL = "FKEY 8 FREZ"
	wobblerOff         = "WBL OFF"
	minMagnification   = "MG 25"
)

// safeModeSequence puts the microscope into a known display and detector state.
// The order matters: instant mag is toggled on and off around MG so the zoom level
// is refreshed in both modes.
var safeModeSequence = []string{
	"SS TV",    // fast scan rate
	"MONI I64", // 64 integrations for CRT #2
	"FREZ OFF", // unfreeze
	wobblerOff,
	"INST ON",
	minMagnification,
	"INST OFF",
	minMagnification,
	"SM PIC",    // picture capture mode
	"VIDO ON",   // NTSC compatible video
	"DMG OFF",   // D-MAG off
	"PMT ON",    // PMT link
	"IMS1 SEI",  // upper SEI on the image signal selector
	"EM SHR",    // upper SEI on the emission monitor
	"AEC CNST",  // constant emission mode
	"IS X0 Y0",  // image shift to 0,0
	"YZM OFF",   // YZ modulation off
	"IA1 ANA",   // analog image input
	"DFIS OFF",  // no menus on CRT #1
	"DA 0",      // minimum dynamic focus
	"WFM OFF",   // waveform mode off
	"PNU2 STAT", // CRT #2 standard display
}

// keyRemapSequence restores the default function-key macro bindings.
var keyRemapSequence = []string{
	"FKEY 1 ACB",
	"FKEY 2 FOCUS",
	"FKEY 3 STIG",
	"FKEY 4 MAG",
	"FKEY 5 BRT",
	"FKEY 6 CONT",
	defaultAlignmentOL,
	defaultAlignmentCL,
	"FKEY 9 PHOTO",
	"FKEY 10 SCAN",
}

// alignmentOnSequence binds F7 and F8 to objective and condenser lens aperture
// alignment, with the wobbler running.
var alignmentOnSequence = []string{
	"WBL ON",
	"FKEY 7 OLAL",
	"FKEY 8 CLAL",
}

// alignmentOffSequence stops the wobbler and returns F7 and F8 to their defaults.
var alignmentOffSequence = []string{
	wobblerOff,
	defaultAlignmentOL,
	defaultAlignmentCL,
	"FREZ OFF",
}

// SafeModeSequence returns the commands sent by SafeMode before the key remap.
func SafeModeSequence() []string {
	return append([]string(nil), safeModeSequence...)
}

// KeyRemapSequence returns the commands sent by RemapKeys.
func KeyRemapSequence() []string {
	return append([]string(nil), keyRemapSequence...)
}

// AlignmentSequence returns the commands sent by AlignmentMode.
func AlignmentSequence(enable bool) []string {
	if enable {
		return append([]string(nil), alignmentOnSequence...)
	}

	return append([]string(nil), alignmentOffSequence...)
}
