package dvc

// State is one of the 48 states of the DVC codeword automaton (§4.4.2).
type State int

const (
	Reset State = iota
	Start
	Pixels
	PixLru1
	PixLru0
	PixCode1
	PixCode2
	PixCode3
	PixGrey
	PixRgbR
	PixRpt
	PixRpt1
	PixRptStd1
	PixRptStd2
	PixRptNStd
	Cmd
	Cmd0
	MoveXY0
	ExtCmd
	CmdX
	MoveShortX
	MoveLongX
	BlkRpt
	ExtCmd1
	Firmware
	ExtCmd2
	Mode0
	Timeout
	BlkRpt1
	BlkRptStd
	BlkRptNStd
	PixFan
	PixCode4
	PixDup
	BlkDup
	PixCode
	PixSpec
	Exit
	Latched
	MoveXY1
	Mode1
	PixRgbG
	PixRgbB
	Hunt
	Print0
	Print1
	Corp
	Mode2

	numStates
)

var stateNames = [numStates]string{
	Reset: "Reset", Start: "Start", Pixels: "Pixels", PixLru1: "PixLru1",
	PixLru0: "PixLru0", PixCode1: "PixCode1", PixCode2: "PixCode2",
	PixCode3: "PixCode3", PixGrey: "PixGrey", PixRgbR: "PixRgbR",
	PixRpt: "PixRpt", PixRpt1: "PixRpt1", PixRptStd1: "PixRptStd1",
	PixRptStd2: "PixRptStd2", PixRptNStd: "PixRptNStd", Cmd: "Cmd",
	Cmd0: "Cmd0", MoveXY0: "MoveXY0", ExtCmd: "ExtCmd", CmdX: "CmdX",
	MoveShortX: "MoveShortX", MoveLongX: "MoveLongX", BlkRpt: "BlkRpt",
	ExtCmd1: "ExtCmd1", Firmware: "Firmware", ExtCmd2: "ExtCmd2",
	Mode0: "Mode0", Timeout: "Timeout", BlkRpt1: "BlkRpt1",
	BlkRptStd: "BlkRptStd", BlkRptNStd: "BlkRptNStd", PixFan: "PixFan",
	PixCode4: "PixCode4", PixDup: "PixDup", BlkDup: "BlkDup",
	PixCode: "PixCode", PixSpec: "PixSpec", Exit: "Exit", Latched: "Latched",
	MoveXY1: "MoveXY1", Mode1: "Mode1", PixRgbG: "PixRgbG", PixRgbB: "PixRgbB",
	Hunt: "Hunt", Print0: "Print0", Print1: "Print1", Corp: "Corp", Mode2: "Mode2",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "State(invalid)"
	}
	return stateNames[s]
}

// bitsToRead gives the codeword width w(s) consumed before dispatching from
// state s (§4.4.2).
var bitsToRead = [numStates]int{
	Reset: 0, Start: 1, Pixels: 1, PixLru1: 1, PixLru0: 1, PixCode1: 1,
	PixCode2: 2, PixCode3: 3, PixGrey: 4, PixRgbR: 4, PixRpt: 1, PixRpt1: 1,
	PixRptStd1: 3, PixRptStd2: 3, PixRptNStd: 8, Cmd: 1, Cmd0: 1, MoveXY0: 7,
	ExtCmd: 1, CmdX: 1, MoveShortX: 3, MoveLongX: 7, BlkRpt: 1, ExtCmd1: 1,
	Firmware: 8, ExtCmd2: 1, Mode0: 7, Timeout: 0, BlkRpt1: 1, BlkRptStd: 3,
	BlkRptNStd: 7, PixFan: 1, PixCode4: 4, PixDup: 0, BlkDup: 0, PixCode: 0,
	PixSpec: 1, Exit: 0, Latched: 1, MoveXY1: 7, Mode1: 7, PixRgbG: 4,
	PixRgbB: 4, Hunt: 1, Print0: 8, Print1: 8, Corp: 1, Mode2: 4,
}

// baseNext0 and baseNext1 are the fixed successor tables. next_1[PixFan] is
// dynamic (rewritten whenever the LRU cache population changes, see
// cacheLRU/cachePrune) so the decoder keeps a mutable copy seeded from these.
var baseNext0 = [numStates]State{
	Reset: Start, Start: Pixels, Pixels: PixFan, PixLru1: Pixels, PixLru0: Pixels,
	PixCode1: PixRpt, PixCode2: PixRpt, PixCode3: PixRpt, PixGrey: PixRpt,
	PixRgbR: PixRgbG, PixRpt: Pixels, PixRpt1: PixDup, PixRptStd1: Pixels,
	PixRptStd2: Pixels, PixRptNStd: Pixels, Cmd: Cmd0, Cmd0: CmdX,
	MoveXY0: MoveXY1, ExtCmd: BlkRpt, CmdX: MoveShortX, MoveShortX: Start,
	MoveLongX: Start, BlkRpt: BlkDup, ExtCmd1: ExtCmd2, Firmware: Corp,
	ExtCmd2: Mode0, Mode0: Mode1, Timeout: Start, BlkRpt1: BlkRptStd,
	BlkRptStd: Start, BlkRptNStd: Start, PixFan: PixSpec, PixCode4: PixRpt,
	PixDup: Pixels, BlkDup: Start, PixCode: PixCode, PixSpec: PixGrey,
	Exit: Exit, Latched: Latched, MoveXY1: Start, Mode1: Mode2,
	PixRgbG: PixRgbB, PixRgbB: PixRpt, Hunt: Hunt, Print0: Print1,
	Print1: Print1, Corp: Start, Mode2: Start,
}

var baseNext1 = [numStates]State{
	Reset: Start, Start: Cmd, Pixels: PixLru1, PixLru1: PixRpt1, PixLru0: PixRpt1,
	PixCode1: PixRpt, PixCode2: PixRpt, PixCode3: PixRpt, PixGrey: PixRpt,
	PixRgbR: PixRgbG, PixRpt: PixRpt1, PixRpt1: PixRptStd1, PixRptStd1: Pixels,
	PixRptStd2: Pixels, PixRptNStd: Pixels, Cmd: MoveXY0, Cmd0: ExtCmd,
	MoveXY0: MoveXY1, ExtCmd: ExtCmd1, CmdX: MoveLongX, MoveShortX: Start,
	MoveLongX: Start, BlkRpt: BlkRpt1, ExtCmd1: Firmware, Firmware: Corp,
	ExtCmd2: Timeout, Mode0: Mode1, Timeout: Start, BlkRpt1: BlkRptNStd,
	BlkRptStd: Start, BlkRptNStd: Start, PixFan: PixCode, PixCode4: PixRpt,
	PixDup: Pixels, BlkDup: Start, PixCode: PixCode, PixSpec: PixRgbR,
	Exit: Exit, Latched: Latched, MoveXY1: Start, Mode1: Mode2,
	PixRgbG: PixRgbB, PixRgbB: PixRpt, Hunt: Reset, Print0: Print1,
	Print1: Print1, Corp: Firmware, Mode2: Start,
}

// lruPixcodeForCacheSize selects the PixFan-1 successor (and the code-width
// state used for cache lookups) by current LRU population, per §4.4.3's
// cache_lru/cache_prune dispatch table.
func lruPixcodeForCacheSize(active int) State {
	switch {
	case active <= 1:
		return Latched
	case active == 2:
		return PixLru0
	case active == 3:
		return PixCode1
	case active <= 5:
		return PixCode2
	case active <= 9:
		return PixCode3
	default:
		return PixCode4
	}
}
