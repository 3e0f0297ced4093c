package transport

import (
	"net"
	"testing"
	"time"

	"github.com/kvmconsole/ilo2console/internal/dvc"
	"github.com/kvmconsole/ilo2console/internal/session"
)

func TestSendPreambleFramesKeyIndexAndCleartext(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	params := session.Parameters{
		Host:              "10.0.0.1",
		Port:              23,
		KeyIndex:          0x01020304,
		LoginPreamble:     []byte("hello"),
		EncryptionEnabled: true,
		EncryptKey:        [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
		DecryptKey:        [16]byte{16, 15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1},
	}
	tr, err := New(params, dvc.New(nil, nil), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tr.conn = client

	errCh := make(chan error, 1)
	go func() { errCh <- tr.sendPreamble() }()

	buf := make([]byte, 11)
	_ = server.SetReadDeadline(time.Now().Add(time.Second))
	n, err := server.Read(buf)
	if err != nil {
		t.Fatalf("reading preamble: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("sendPreamble: %v", err)
	}
	if n != 11 {
		t.Fatalf("expected 11 bytes (6 header + 5 body), got %d", n)
	}
	if buf[0] != 0xFF || buf[1] != 0xC0 {
		t.Fatalf("expected marker bytes FF C0, got % x", buf[:2])
	}
	if buf[2] != 0x01 || buf[3] != 0x02 || buf[4] != 0x03 || buf[5] != 0x04 {
		t.Fatalf("expected big-endian key index in bytes 2..5, got % x", buf[2:6])
	}
	if string(buf[6:]) == "hello" {
		t.Fatalf("expected enciphered login body, got cleartext %q", buf[6:])
	}
}

func TestSendPreambleUnencryptedIsCleartext(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	params := session.Parameters{
		Host:          "10.0.0.1",
		Port:          23,
		KeyIndex:      0x01020304,
		LoginPreamble: []byte("hello"),
	}
	tr, err := New(params, dvc.New(nil, nil), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tr.conn = client

	errCh := make(chan error, 1)
	go func() { errCh <- tr.sendPreamble() }()

	buf := make([]byte, 11)
	_ = server.SetReadDeadline(time.Now().Add(time.Second))
	n, err := server.Read(buf)
	if err != nil {
		t.Fatalf("reading preamble: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("sendPreamble: %v", err)
	}
	if n != 11 {
		t.Fatalf("expected 11 bytes (6 header + 5 body), got %d", n)
	}
	if buf[0] != 0xFF || buf[1] != 0xC0 || buf[2] != 0x20 || buf[3] != 0x20 || buf[4] != 0x20 || buf[5] != 0x20 {
		t.Fatalf("expected FF C0 20 20 20 20 header when unencrypted, got % x", buf[:6])
	}
	if string(buf[6:]) != "hello" {
		t.Fatalf("expected cleartext login body (no cipher configured), got %q", buf[6:])
	}
}

// S4 (end to end): a plaintext sentinel switches consume() into DVC mode,
// after which bytes are routed to the decoder instead of the scanner.
func TestConsumeEntersDVCModeOnSentinel(t *testing.T) {
	events := make(chan dvc.Event, 4)
	decoder := dvc.New(events, nil)
	tr := &Transport{decoder: decoder}

	tr.consume([]byte("plain text "))
	if tr.dvcMode {
		t.Fatal("plaintext without the sentinel should not enter DVC mode")
	}

	tr.consume([]byte{0x1b, '[', 'R'})
	if !tr.dvcMode {
		t.Fatal("expected the sentinel to switch into DVC mode")
	}

	tr.consume([]byte{0x00, 0x00, 0x00})
	if !tr.dvcMode {
		t.Fatal("expected to remain in DVC mode while the decoder is running normally")
	}
}

// §4.2: when the decoder declares the stream is no longer DVC-framed, the
// transport raises "DVC mode turned off" directly and resumes scanning.
func TestConsumeAnnouncesDVCModeTurnedOff(t *testing.T) {
	events := make(chan dvc.Event, 16)
	decoder := dvc.New(events, nil)
	tr := &Transport{decoder: decoder, guiEvents: events}

	tr.consume([]byte{0x1b, '[', 'r'})
	if !tr.dvcMode {
		t.Fatal("expected the sentinel to switch into DVC mode")
	}

	// Codeword sequence Start=1, Cmd=0, Cmd0=1, ExtCmd=1, ExtCmd1=1,
	// Firmware=1 (exit sub-command), Corp=0 (dispatch immediately) drives
	// the decoder's firmware-exit path, which makes Process return false
	// and the transport announce DVC mode is off.
	tr.consume([]byte{0x1D, 0x10})

	if tr.dvcMode {
		t.Fatal("expected DVC mode to be exited by the firmware command")
	}

	found := false
	for {
		select {
		case ev := <-events:
			if ev.Kind == dvc.EventShowText && ev.Text == "DVC mode turned off" {
				found = true
			}
		default:
			if !found {
				t.Fatal(`expected a "DVC mode turned off" ShowText event`)
			}
			return
		}
	}
}
