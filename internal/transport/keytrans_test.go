package transport

import (
	"bytes"
	"testing"
)

// S5: printable keys pass through, with the newline/punctuation remaps
// applied and key-up events producing no bytes.
func TestTranslatePrintableKey(t *testing.T) {
	got := translateKey(KeyEvent{Rune: 'a', Pressed: true})
	if !bytes.Equal(got, []byte("a")) {
		t.Fatalf("got %q, want %q", got, "a")
	}

	got = translateKey(KeyEvent{Rune: '\n', Pressed: true})
	if !bytes.Equal(got, []byte("\r")) {
		t.Fatalf("newline should remap to CR, got %q", got)
	}

	got = translateKey(KeyEvent{Rune: '`', Pressed: true})
	if !bytes.Equal(got, []byte("{")) {
		t.Fatalf("backtick should remap to {, got %q", got)
	}

	got = translateKey(KeyEvent{Rune: '"', Pressed: true})
	if !bytes.Equal(got, []byte("@")) {
		t.Fatalf("quote should remap to @, got %q", got)
	}

	got = translateKey(KeyEvent{Rune: 'a', Pressed: false})
	if got != nil {
		t.Fatalf("key-up for a printable key should produce no bytes, got %q", got)
	}
}

func TestTranslateArrowKeyNoModifier(t *testing.T) {
	got := translateKey(KeyEvent{Special: KeyUp, Pressed: true})
	if !bytes.Equal(got, []byte("\x1b[A")) {
		t.Fatalf("got %q, want ESC[A", got)
	}
}

// S5: F5+Shift -> ESC[3 ESC[c; F5+Ctrl -> ESC[2 ESC[o.
func TestTranslateFunctionKeyWithModifiers(t *testing.T) {
	got := translateKey(KeyEvent{Special: KeyF5, Modifiers: ModShift, Pressed: true})
	if !bytes.Equal(got, []byte("\x1b[3\x1b[c")) {
		t.Fatalf("got %q, want shift-modified F5", got)
	}

	got = translateKey(KeyEvent{Special: KeyF5, Modifiers: ModCtrl, Pressed: true})
	if !bytes.Equal(got, []byte("\x1b[2\x1b[o")) {
		t.Fatalf("got %q, want ctrl-modified F5", got)
	}
}

// S5: Return with no modifier -> \r; Return with Ctrl -> \n.
func TestTranslateReturnAndBackspace(t *testing.T) {
	if got := translateKey(KeyEvent{Special: KeyReturn, Pressed: true}); !bytes.Equal(got, []byte("\r")) {
		t.Fatalf("return: got %q", got)
	}
	if got := translateKey(KeyEvent{Special: KeyReturn, Modifiers: ModCtrl, Pressed: true}); !bytes.Equal(got, []byte("\n")) {
		t.Fatalf("ctrl-return: got %q", got)
	}
	if got := translateKey(KeyEvent{Special: KeyBackspace, Pressed: true}); !bytes.Equal(got, []byte{0x7f}) {
		t.Fatalf("backspace: got %q", got)
	}
	if got := translateKey(KeyEvent{Special: KeyReturn, Pressed: false}); got != nil {
		t.Fatalf("return key-up should produce no bytes, got %q", got)
	}
}

// Ctrl+Alt+Delete still sends the DEL byte (prefixed per §6's wire listing).
func TestTranslateCtrlAltDel(t *testing.T) {
	got := translateKey(KeyEvent{Special: KeyCtrlAltDel, Pressed: true})
	if !bytes.Equal(got, []byte("\x1b[2\x1b[\x7f")) {
		t.Fatalf("got %q", got)
	}
}

func TestTranslateUnknownSpecialKeyProducesNothing(t *testing.T) {
	got := translateKey(KeyEvent{Special: SpecialKey(999), Pressed: true})
	if got != nil {
		t.Fatalf("expected nil for an unmapped special key, got %q", got)
	}
}
