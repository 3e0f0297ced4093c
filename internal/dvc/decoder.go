// Package dvc implements the DVC bitstream decoder: a 48-state,
// variable-length codeword automaton that consumes a byte-aligned,
// LSB-first bitstream and produces 16x16 tile updates plus control events.
/*------------------------------------------------------------------
 *
 * Purpose:	Decode the proprietary DVC binary video protocol.  Each
 *		incoming byte advances a state machine that reads
 *		variable-width codewords, maintains a small LRU color
 *		cache, and assembles 16x16 pixel tiles.
 *
 *---------------------------------------------------------------*/
package dvc

import (
	"github.com/charmbracelet/log"
)

const blockPixels = 256

// Decoder is the single-owner DVC state machine. It is driven exclusively
// from the transport's read loop and is not safe for concurrent use.
type Decoder struct {
	guiEvents chan<- Event
	requests  chan<- Request

	// bit reader state (§4.4.1)
	acc, bcnt int
	zeroCount int
	reversal  [256]int
	left      [256]int
	right     [256]int

	// screen geometry
	screenX, screenY int
	scaleX, scaleY   int
	sizeX, sizeY     int
	yClipped         int
	videoDetected    bool

	// cursor
	lastX, lastY int
	newX, newY   int

	// color cache
	cache           [17]cacheEntry
	ccActive        int
	colorRemapTable [4096]int

	// current block
	block       [blockPixels]int
	pixelCount  int
	red, green, blue int
	color, lastColor int

	// transitions
	decoderState, nextState State
	pixcode                 State
	code                    int
	next1                   [numStates]State // mutable copy; next1[PixFan] is rewritten by cacheLRU/cachePrune

	// diagnostics
	countBytes      int64
	timeoutCount    int64
	lastTimeoutByte int64
	fatalCount      int

	// firmware / print channel state
	cmdPBuff      [256]int
	cmdPCount     int
	cmdLast       int
	cmdInProgress bool
	framerate     int
	printChan     int
	printBuf      []byte

	initialized bool
}

// New constructs a Decoder. guiEvents receives tile/repaint/text/geometry
// events; requests receives refresh/rekey requests the decoder asks the
// transport to perform on its behalf (§9's routing note for firmware command
// 9, "rekey", and the Latched refresh thresholds).
func New(guiEvents chan<- Event, requests chan<- Request) *Decoder {
	d := &Decoder{
		guiEvents: guiEvents,
		requests:  requests,
		scaleX:    1,
		scaleY:    1,
		screenX:   1,
		screenY:   1,
		pixcode:   Latched,
		framerate: 30,
	}
	d.next1 = baseNext1
	return d
}

// Process feeds one byte of the decrypted DVC stream into the decoder.
// Returns false when the firmware's Exit state tells the transport to drop
// back out of binary DVC framing (§4.4.4); true otherwise, including after
// internal recoveries (reset sentinel, machine hang) that stay within DVC
// framing but reset the automaton to a known-safe state.
func (d *Decoder) Process(b uint16) bool {
	if !d.initialized {
		d.initTables()
		d.cacheReset()
		d.decoderState = Reset
		d.nextState = Reset
		d.zeroCount = 0
		d.acc = 0
		d.bcnt = 0
		d.initialized = true
	}

	status := d.processBits(b)
	switch status {
	case 0:
		return true
	case 1:
		log.Info("dvc: firmware requested exit from DVC mode", "count_bytes", d.countBytes)
		d.initialized = false
		return false
	case 4:
		// Reset sentinel: addBits has already forced Hunt. Drop the buffered
		// bits, the zero run and the byte count so Hunt starts from the next
		// byte and resynchronizes on its first 1 bit.
		log.Warn("dvc: reset sentinel, hunting for resync", "count_bytes", d.countBytes)
		d.acc, d.bcnt = 0, 0
		d.zeroCount = 0
		d.countBytes = 0
		return true
	default:
		log.Error("dvc: recovering decoder state", "status", status, "lastx", d.lastX, "lasty", d.lastY, "count_bytes", d.countBytes)
		d.decoderState = Latched
		d.nextState = Latched
		d.fatalCount = 0
		return true
	}
}

// processBits runs the automaton until it needs more bits than are
// currently buffered. Returns a non-zero status on the rare conditions the
// original implementation treats as terminal for this call: 4 for the reset
// sentinel, which leaves the decoder in Hunt (§4.4.1), and 6 for a machine
// hang, which Process pushes to Latched (§4.4.3's machine hang guard).
func (d *Decoder) processBits(b uint16) int {
	if d.addBits(b) {
		return 4
	}
	d.countBytes++

	for {
		needed := bitsToRead[d.decoderState]
		if needed > d.bcnt {
			return 0
		}

		d.getBits(needed)
		if d.code == 0 {
			d.nextState = baseNext0[d.decoderState]
		} else {
			d.nextState = d.next1[d.decoderState]
		}

		status := d.runAction()
		if status == exitRequested {
			return 1
		}

		if d.nextState == Pixels && d.pixelCount == blockPixels {
			d.nextBlock(1)
		}

		if d.decoderState == d.nextState && d.decoderState != Print1 && d.decoderState != Latched && d.decoderState != Hunt {
			log.Error("dvc: machine hung", "state", d.decoderState)
			return 6
		}
		d.decoderState = d.nextState
	}
}

const exitRequested = 99

// runAction executes the semantic action for the current decoderState after
// its codeword has been read (§4.4.3). It may adjust d.nextState.
func (d *Decoder) runAction() int {
	switch d.decoderState {
	case PixLru1, PixLru0, PixCode1, PixCode2, PixCode3, PixCode4:
		d.runPixCacheLookup()
	case PixRptStd1:
		d.runPixRptStd1()
	case PixRptStd2, PixRptNStd:
		d.runPixRptStdOrNonStd()
	case PixDup:
		d.appendPixel(d.lastColor)
	case Start, Pixels, PixRpt, PixRpt1, BlkRpt, BlkRpt1, PixFan, PixSpec:
		// no action
	case PixCode:
		d.nextState = d.pixcode
	case PixRgbR:
		d.red = d.code << 8
	case PixRgbG:
		d.green = d.code << 4
	case PixGrey, PixRgbB:
		d.runPixLiteralColor()
	case MoveXY0, Mode0:
		d.runMoveXY0OrMode0()
	case MoveXY1:
		d.runMoveXY1()
	case MoveShortX, MoveLongX:
		d.runMoveX()
	case Timeout:
		d.runTimeout()
	case Firmware:
		d.runFirmware()
	case Corp:
		d.runCorp()
	case Print0:
		d.printChan = d.code
		d.printBuf = d.printBuf[:0]
	case Print1:
		d.runPrint1()
	case Cmd, Cmd0, ExtCmd, CmdX, ExtCmd1, ExtCmd2:
		// no action
	case Reset:
		d.runReset()
	case Latched:
		d.runLatched()
	case BlkDup:
		d.nextBlock(1)
	case BlkRptStd, BlkRptNStd:
		if d.decoderState == BlkRptStd {
			d.code += 2
		}
		d.nextBlock(d.code)
	case Mode1:
		d.sizeX = d.newX
		d.sizeY = d.code
	case Mode2:
		d.runMode2()
	case Hunt:
		d.runHunt()
	case Exit:
		return exitRequested
	}
	return 0
}

func (d *Decoder) emit(ev Event) {
	if d.guiEvents != nil {
		d.guiEvents <- ev
	}
}

func (d *Decoder) request(kind RequestKind) {
	if d.requests != nil {
		d.requests <- Request{Kind: kind}
	}
}
