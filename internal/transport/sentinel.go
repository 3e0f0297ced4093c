package transport

// sentinelResult reports what feed() observed.
type sentinelResult int

const (
	sentinelNone sentinelResult = iota
	sentinelEnter
)

// sentinelScanner is a 3-state matcher for the in-band "ESC [ R" / "ESC [ r"
// sequence that switches the control channel into binary DVC framing (§5).
// Any byte that breaks a partial match restarts the scan from byte 0, so a
// lone ESC or "[" elsewhere in the plaintext stream never false-triggers.
type sentinelScanner struct {
	matched int // count of sentinel bytes matched so far: 0, 1 (ESC), or 2 (ESC [)
}

func (s *sentinelScanner) feed(b byte) sentinelResult {
	switch s.matched {
	case 0:
		if b == 0x1b {
			s.matched = 1
		}
	case 1:
		if b == '[' {
			s.matched = 2
		} else if b != 0x1b {
			s.matched = 0
		}
	case 2:
		s.matched = 0
		if b == 'R' || b == 'r' {
			return sentinelEnter
		}
		if b == 0x1b {
			s.matched = 1
		}
	}
	return sentinelNone
}

func (s *sentinelScanner) reset() {
	s.matched = 0
}
