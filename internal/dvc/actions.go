package dvc

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// appendPixel writes one decoded color into the current block, tracked in
// the 12-bit nibble-packed form (0x0RGB) used throughout the codeword
// automaton; colorRemapTable expands it to 0xRRGGBB when the block is
// flushed (§4.4.3). A pixel offered past the 256-pixel block boundary is
// dropped and forces the machine to Latched instead of being written
// (dvc.rs:803,828, §4.4.3's "overflow past 256 pixels moves to Latched").
func (d *Decoder) appendPixel(color int) {
	if d.pixelCount >= blockPixels {
		d.nextState = Latched
		return
	}
	d.block[d.pixelCount] = color
	d.pixelCount++
	d.lastColor = color
	d.color = color
}

// runPixCacheLookup handles PixLru1, PixLru0, and PixCode1..PixCode4: the
// codeword just read is first transformed into an LRU rank (dvc.rs:733-741),
// then resolved through the color cache and appended as the next pixel. A
// cache miss means the rank doesn't exist in the current population and
// latches the machine rather than guessing at a color (§4.4.3).
func (d *Decoder) runPixCacheLookup() {
	switch {
	case d.ccActive == 1:
		d.code = d.cache[0].usage
	case d.decoderState == PixLru0:
		d.code = 0
	case d.decoderState == PixLru1:
		d.code = 1
	case d.code != 0:
		d.code++
	}

	color := d.cacheFind(d.code)
	if color == -1 {
		d.nextState = Latched
		return
	}
	d.appendPixel(color)
}

// runPixRptStd1 expands a 3-bit standard repeat count (2..7) of the last
// color. The table's next_0/next_1 both point at Pixels, so the two escape
// values are branched here instead: 6 extends into PixRptStd2 for 3 more
// bits, 7 extends into PixRptNStd for a full 8-bit arbitrary count (§4.4.3).
func (d *Decoder) runPixRptStd1() {
	switch d.code {
	case 7:
		d.nextState = PixRptNStd
	case 6:
		d.nextState = PixRptStd2
	default:
		count := d.code + 2
		for i := 0; i < count; i++ {
			d.appendPixel(d.lastColor)
		}
	}
}

// runPixRptStdOrNonStd expands PixRptStd2 (3-bit count, offset 8) and
// PixRptNStd (8-bit arbitrary count) repeats of the last color.
func (d *Decoder) runPixRptStdOrNonStd() {
	count := d.code
	if d.decoderState == PixRptStd2 {
		count = d.code + 8
	}
	for i := 0; i < count; i++ {
		d.appendPixel(d.lastColor)
	}
}

// runPixLiteralColor handles PixGrey (4-bit grey level, replicated across
// all three nibbles) and PixRgbB (completes the R/G/B literal color begun
// at PixRgbR/PixRgbG). A cache hit on a freshly-built literal color is
// never supposed to happen; it is the primary sentinel for catching
// encryption-state corruption early in the stream, so it forces Latched
// instead of being treated as an ordinary repeat (§9).
func (d *Decoder) runPixLiteralColor() {
	var color int
	if d.decoderState == PixGrey {
		color = d.code*0x100 + d.code*0x10 + d.code
	} else {
		d.blue = d.code
		color = d.red | d.green | d.blue
	}
	if d.cacheLRU(color) != 0 {
		if d.countBytes > 6 {
			log.Error("dvc: unexpected cache hit on literal color", "color", color, "count_bytes", d.countBytes)
		} else {
			log.Warn("dvc: cache hit on literal color, possible reset underway", "color", color, "count_bytes", d.countBytes)
		}
		d.nextState = Latched
	}
	d.appendPixel(color)
}

// runMoveXY0OrMode0 stashes the first 7-bit coordinate/width codeword;
// MoveXY1 and Mode1 consume it as the second half of the pair. MoveXY0's
// value is a tile x-coordinate and is clamped to 0 when out of range
// (§4.4.3); Mode0's value is a provisional geometry field consumed as-is by
// Mode1.
func (d *Decoder) runMoveXY0OrMode0() {
	d.newX = d.code
	if d.decoderState == MoveXY0 && (d.newX < 0 || d.newX > d.sizeX) {
		d.newX = 0
	}
}

// runMoveXY1 completes an absolute cursor move in tile coordinates and asks
// the GUI to repaint (§4.4.3).
func (d *Decoder) runMoveXY1() {
	d.newY = d.code
	d.lastX = d.newX
	d.lastY = d.newY
	d.emit(Event{Kind: EventRepaint})
}

// runMoveX applies a relative (3-bit) or absolute (7-bit) horizontal cursor
// move in tile units, wrapped modulo 128 and clamped to 0 when the result
// falls outside the current tile row (§4.4.3, §9's clamp-to-0 open question).
func (d *Decoder) runMoveX() {
	var v int
	if d.decoderState == MoveShortX {
		v = (d.lastX + d.code + 1) % 128
	} else {
		v = d.code & 0x7F
	}
	if v >= d.sizeX {
		v = 0
	}
	d.lastX = v
}

// runTimeout aligns to the next byte boundary and asks the GUI to repaint; a
// Timeout seen twice in a row at the same byte count means the stream is
// stuck rather than merely idle, and the machine latches instead (§4.4.3).
func (d *Decoder) runTimeout() {
	align := d.bcnt & 7
	d.bcnt -= align
	d.acc >>= align

	if d.countBytes == d.lastTimeoutByte {
		d.nextState = Latched
	}
	d.lastTimeoutByte = d.countBytes
	d.timeoutCount++
	d.emit(Event{Kind: EventRepaint})
}

// Firmware sub-command identifiers (§4.4.3, §9).
const (
	fwExit                  = 1
	fwPrintInit             = 2
	fwSetFramerate          = 3
	fwVideoSuspended        = 6
	fwTerminalServicesStart = 7
	fwTerminalServicesStop  = 8
	fwRekey                 = 9
	fwSessionSeize          = 10
)

// runFirmware shifts the previously read byte into cmd_p_buff on every
// re-entry and always keeps the newest byte in cmd_last (Corp loops back
// here via next_1 while the terminator bit signals "more bytes follow").
// The command selector is therefore the last byte read before the Corp
// terminator ends the command; every earlier byte ends up as a parameter,
// in the order it was read.
func (d *Decoder) runFirmware() {
	if d.cmdInProgress {
		d.cmdPBuff[d.cmdPCount%len(d.cmdPBuff)] = d.cmdLast
		d.cmdPCount++
	}
	d.cmdLast = d.code
	d.cmdInProgress = true
}

// runCorp consumes the terminator bit following a Firmware sub-command. A
// zero bit ends the command and dispatches by cmd_last; a one bit loops back
// to Firmware for another parameter byte (§4.4.3).
func (d *Decoder) runCorp() {
	if d.code != 0 {
		return
	}
	d.cmdInProgress = false

	switch d.cmdLast {
	case fwExit:
		d.nextState = Exit
	case fwPrintInit:
		d.nextState = Print0
	case fwSetFramerate:
		if d.cmdPCount > 0 {
			d.framerate = d.cmdPBuff[0]
		} else {
			d.framerate = 0
		}
	case 4, 5:
		// reserved, no-op
	case fwVideoSuspended:
		d.emit(Event{Kind: EventShowText, Text: "Video suspended"})
		d.screenX, d.screenY = 640, 100
	case fwTerminalServicesStart:
		log.Info("dvc: firmware requested terminal services start")
	case fwTerminalServicesStop:
		log.Info("dvc: firmware requested terminal services stop")
	case fwRekey:
		align := d.bcnt & 7
		d.bcnt -= align
		d.acc >>= align
		d.request(RequestUpdateEncryptionKey)
	case fwSessionSeize:
		log.Info("dvc: firmware requested session seize")
	default:
		log.Warn("dvc: unknown firmware command", "cmd", d.cmdLast)
	}

	d.cmdPCount = 0
}

// runPrint1 appends one byte to the pending print-channel text, flushing on
// a line terminator.
func (d *Decoder) runPrint1() {
	d.printBuf = append(d.printBuf, byte(d.code))
	if d.code == 0 || d.code == 0x0D || len(d.printBuf) >= 240 {
		if len(d.printBuf) > 0 {
			d.emit(Event{Kind: EventShowText, Text: string(d.printBuf)})
		}
		d.printBuf = d.printBuf[:0]
	}
}

// runReset clears the color cache, cursor, pixel buffer, working colors, zero
// run, fatal count and pending print/firmware state (§4.4.1). Screen geometry
// and the bit register are left as they are.
func (d *Decoder) runReset() {
	d.cacheReset()
	d.pixcode = Latched
	d.next1[PixFan] = d.pixcode
	d.lastX, d.lastY = 0, 0
	d.newX, d.newY = 0, 0
	d.pixelCount = 0
	d.zeroCount = 0
	d.fatalCount = 0
	d.red, d.green, d.blue = 0, 0, 0
	d.lastColor = 0
	d.printBuf = d.printBuf[:0]
	d.cmdPCount = 0
}

// refreshBackoffThresholds are the fatal-count values at which Latched asks
// the transport for a full refresh, spaced out to avoid flooding the wire
// while the stream is stuck.
var refreshBackoffThresholds = map[int]bool{1: true, 10: true, 50: true, 200: true}

// runLatched tracks how long the decoder has been stuck and periodically
// asks for a refresh (§4.4.3's Latched fatal-count escalation).
func (d *Decoder) runLatched() {
	d.fatalCount++
	if refreshBackoffThresholds[d.fatalCount] {
		d.request(RequestRefresh)
	}
}

// runMode2 derives the pixel screen geometry from the tile geometry Mode1
// captured plus this state's 4-bit clipped-row count, resets the cursor and
// color cache, and announces the result to the GUI (§4.4.3). When the
// geometry comes out degenerate ("no video"), the decoder reports that and
// forces a fallback 640x100 geometry instead.
func (d *Decoder) runMode2() {
	d.screenX = d.sizeX * 16
	d.screenY = d.sizeY*16 + d.code
	if d.code > 0 {
		d.yClipped = 256 - 16*d.code
	} else {
		d.yClipped = 0
	}
	d.videoDetected = d.screenX != 0 && d.screenY != 0

	d.lastX, d.lastY = 0, 0
	d.newX, d.newY = 0, 0
	d.cacheReset()
	d.pixcode = Latched
	d.next1[PixFan] = d.pixcode

	if !d.videoDetected {
		d.emit(Event{Kind: EventShowText, Text: "No Video"})
		d.screenX, d.screenY = 640, 100
		d.emit(Event{Kind: EventSetScreenSize, Width: d.screenX, Height: d.screenY})
		return
	}

	d.emit(Event{Kind: EventShowText, Text: fmt.Sprintf(" Video: %dx%d", d.screenX, d.screenY)})
	d.emit(Event{Kind: EventSetScreenSize, Width: d.screenX, Height: d.screenY})
}

// runHunt resets the zero-run counter once resynchronized; the transition
// back to Reset happens through next_1[Hunt] in the dispatch table.
func (d *Decoder) runHunt() {
	d.zeroCount = 0
}

// nextBlock flushes the current 256-pixel block to the GUI at the cursor's
// tile position (in pixels, lastx*16/lasty*16), repeating it count times
// across successive tile columns (used both for a freshly filled block and
// for the Blk* repeat states that duplicate the last fully-built block
// without refilling pixel data). A partially clipped bottom row is
// overwritten with color index 0 before emission, but only when this call is
// flushing a freshly filled block (pixel_count != 0) rather than replaying an
// already-clipped one (dvc.rs:522-535, §4.4.3). The emitted PasteBlock is
// suppressed entirely while no video has been detected, though the cursor
// still advances; the automaton always resumes at Start once a block is
// flushed (dvc.rs:524-525,535).
func (d *Decoder) nextBlock(count int) {
	if d.pixelCount != 0 && d.yClipped > 0 && d.lastY == d.sizeY {
		for i := d.yClipped; i < blockPixels; i++ {
			d.block[i] = 0
		}
	}
	d.pixelCount = 0
	d.nextState = Start

	var pixels [blockPixels]uint32
	for i, v := range d.block {
		pixels[i] = uint32(d.colorRemapTable[v&0xFFF])
	}

	for i := 0; i < count; i++ {
		if d.videoDetected {
			d.emit(Event{Kind: EventPasteBlock, Pixels: pixels, X: d.lastX * 16, Y: d.lastY * 16})
		}

		d.lastX++
		if d.sizeX > 0 && d.lastX >= d.sizeX {
			break
		}
	}

	d.cachePrune()
}
