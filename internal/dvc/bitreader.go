package dvc

// getmask[k] is the low-k-bits mask used by getBits.
var getmask = [9]int{0x0, 0x1, 0x3, 0x7, 0xf, 0x1f, 0x3f, 0x7f, 0xff}

// initTables computes reversal, left, and right lazily, on the first byte
// processed after New and again after each firmware exit (§4.4.1, §4.4.4). reversal[b] is the bit-reversal of
// byte b. right[b] is the number of trailing zero bits in b (seeds the
// zero-run counter for the byte just added). left[b] is the zero-run length
// carried forward once a 1 bit has been seen in b, reading from the
// lowest-numbered set bit toward the top of the byte.
func (d *Decoder) initTables() {
	for i := 0; i < 256; i++ {
		leadingZero := 8
		trailingRun := 8
		k := i
		m := 0
		for j := 0; j < 8; j++ {
			m <<= 1
			if k&0x1 == 1 {
				if leadingZero > j {
					leadingZero = j
				}
				m |= 0x1
				trailingRun = 7 - j
			}
			k >>= 1
		}
		d.reversal[i] = m
		d.right[i] = leadingZero
		d.left[i] = trailingRun
	}

	for v := 0; v < 4096; v++ {
		d.colorRemapTable[v] = (v&0xF00)*0x1100 + (v&0xF0)*0x110 + (v&0xF)*0x11
	}
}

// addBits accumulates the incoming byte into the bit register in its
// original bit order, updating the zero-run counter. The byte is reversed
// only once, later, when getBits extracts it. Returns true if the run
// exceeded 30 zero bits, forcing a transition to Hunt (the reset sentinel,
// §4.4.1).
func (d *Decoder) addBits(b uint16) bool {
	d.zeroCount += d.right[b]

	d.acc |= int(b) << d.bcnt
	d.bcnt += 8

	if d.zeroCount > 30 {
		d.nextState = Hunt
		d.decoderState = Hunt
		return true
	}
	if b != 0 {
		d.zeroCount = d.left[b]
	}
	return false
}

// getBits consumes k bits (0..8) from the register and stores the decoded
// value in d.code. For k=1 a fast path reads the bit directly; otherwise the
// low k bits are bit-reversed back via the reversal table and shifted down
// by 8-k (§4.4.1).
func (d *Decoder) getBits(k int) {
	if k == 1 {
		d.code = d.acc & 0x1
		d.acc >>= 1
		d.bcnt--
		return
	}
	if k == 0 {
		return
	}
	i := d.acc & getmask[k]
	d.bcnt -= k
	d.acc >>= k
	i = d.reversal[i]
	i >>= 8 - k
	d.code = i
}
