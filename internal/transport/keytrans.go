package transport

// SpecialKey names a non-printable key the GUI can report (§4.3).
type SpecialKey int

const (
	KeyNone SpecialKey = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyInsert
	KeyDelete
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyReturn
	KeyBackspace
	KeyTab
	KeyEscape
	KeyCtrlAltDel
)

// Modifier is a bitmask of held modifier keys.
type Modifier int

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
)

// KeyEvent is a keystroke reported by the GUI surface, either a printable
// rune or a special (non-printable) key, with an up/down transition.
type KeyEvent struct {
	Rune      rune
	Special   SpecialKey
	Modifiers Modifier
	Pressed   bool // false means this is a key-up event
}

// textRemap covers the printable characters the vendor repurposes for its
// own punctuation layout (§4.3, S5): several ASCII punctuation keys are
// swapped, and a handful of non-ASCII symbols become a two-byte sequence
// led by 0x00. Characters absent from this table pass through as their
// UTF-8 bytes unchanged.
var textRemap = map[rune][]byte{
	'\n': {'\r'},
	'`':  {'{'},
	'{':  {'}'},
	'=':  {'_'},
	'"':  {'@'},
	'~':  {0x00, 0x01},
	'|':  {0x00, 0x02},
}

// specialKeyCSI maps a modifier-independent special key (arrows, Home/End,
// PgUp/PgDn, Insert) to its bare CSI final byte(s); these never carry a
// modifier prefix (§4.3).
var specialKeyCSI = map[SpecialKey]string{
	KeyUp:       "A",
	KeyDown:     "B",
	KeyRight:    "C",
	KeyLeft:     "D",
	KeyHome:     "H",
	KeyEnd:      "F",
	KeyPageUp:   "5~",
	KeyPageDown: "6~",
	KeyInsert:   "2~",
}

// functionKeyTails gives, per modifier state, the final byte the vendor's
// table assigns to F1..F12 (§4.3, S5). Only the Shift and Ctrl bases are
// pinned by the spec's worked example (F5+Shift -> 'c', F5+Ctrl -> 'o');
// the "none" and "Alt" bases are this implementation's best-effort,
// internally consistent extension of that pattern (documented in
// DESIGN.md as an open-question resolution).
var functionKeyTails = map[Modifier]byte{
	0:        'S', // none
	ModShift: '_',
	ModCtrl:  'k',
	ModAlt:   'w',
}

func functionKeyTail(fkey SpecialKey, m Modifier) byte {
	base, ok := functionKeyTails[m]
	if !ok {
		base = functionKeyTails[0]
	}
	idx := int(fkey - KeyF1)
	return base + byte(idx)
}

// translateKeyRelease builds the wire bytes for a KeyReleased transport
// event (§4.2's control-event table): a zero byte, followed by a modifier
// byte (bit 0 shift, bit 1 ctrl, bit 2 alt, high bit set) whenever any
// modifier is held.
func translateKeyRelease(m Modifier) []byte {
	if m == 0 {
		return []byte{0x00}
	}
	var bits byte
	if m&ModShift != 0 {
		bits |= 0x01
	}
	if m&ModCtrl != 0 {
		bits |= 0x02
	}
	if m&ModAlt != 0 {
		bits |= 0x04
	}
	return []byte{0x00, 0x80 | bits}
}

// modifierPrefix returns the CSI modifier-selection digit the spec
// specifies: ESC[3 for Shift, ESC[2 for Ctrl, ESC[1 for Alt (§4.3). When
// several modifiers are held, Shift takes precedence over Ctrl and Ctrl over
// Alt; combinations are not part of the normative table.
func modifierPrefix(m Modifier) byte {
	switch {
	case m&ModShift != 0:
		return '3'
	case m&ModCtrl != 0:
		return '2'
	case m&ModAlt != 0:
		return '1'
	}
	return 0
}

// translateKey turns a KeyEvent into the bytes the management processor
// expects on the wire (§4.3). Only key-down events produce bytes; every
// key-up event, Return and Backspace included, yields nil. Key releases are
// framed separately by translateKeyRelease.
func translateKey(ev KeyEvent) []byte {
	if ev.Special == KeyNone {
		return translatePrintable(ev)
	}
	return translateSpecial(ev)
}

func translatePrintable(ev KeyEvent) []byte {
	if !ev.Pressed {
		return nil
	}
	if b, ok := textRemap[ev.Rune]; ok {
		return b
	}
	return []byte(string(ev.Rune))
}

// returnBytes and backspaceBytes give Return/Backspace's four modifier
// variants (§4.3). Shift/Alt for Backspace and Shift for Return are this
// implementation's best-effort extension of the one worked example the
// spec gives (Return+Ctrl -> '\n'); see DESIGN.md.
var returnBytes = map[Modifier][]byte{
	0:        {'\r'},
	ModShift: {'\r'},
	ModCtrl:  {'\n'},
	ModAlt:   {'\n'},
}

var backspaceBytes = map[Modifier][]byte{
	0:        {0x7f},
	ModShift: {0x7f},
	ModCtrl:  {0x08},
	ModAlt:   {0x08},
}

func translateSpecial(ev KeyEvent) []byte {
	switch ev.Special {
	case KeyReturn:
		if !ev.Pressed {
			return nil
		}
		return returnBytes[ev.Modifiers]
	case KeyBackspace:
		if !ev.Pressed {
			return nil
		}
		return backspaceBytes[ev.Modifiers]
	case KeyTab:
		if !ev.Pressed {
			return nil
		}
		return []byte("\t")
	case KeyEscape:
		if !ev.Pressed {
			return nil
		}
		return []byte{0x1b}
	case KeyDelete:
		if !ev.Pressed {
			return nil
		}
		return []byte("\x1b[3~")
	case KeyCtrlAltDel:
		// Triggers a diagnostic hook on the caller's side but still sends
		// the plain DEL byte preceded by the Ctrl modifier prefix (§4.3, §6).
		if !ev.Pressed {
			return nil
		}
		return []byte("\x1b[2\x1b[\x7f")
	}

	if !ev.Pressed {
		return nil
	}

	if ev.Special >= KeyF1 && ev.Special <= KeyF12 {
		tail := functionKeyTail(ev.Special, ev.Modifiers)
		out := []byte("\x1b[")
		if p := modifierPrefix(ev.Modifiers); p != 0 {
			out = append(out, p, 0x1b, '[')
		}
		return append(out, tail)
	}

	tail, ok := specialKeyCSI[ev.Special]
	if !ok {
		return nil
	}
	return append([]byte("\x1b["), []byte(tail)...)
}
