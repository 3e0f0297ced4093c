// Package transport owns the TCP control channel to the management
// processor: login preamble framing, the in-band ESC sentinel that
// switches the stream into binary DVC mode, and the encrypted byte pipe
// that feeds the dvc decoder.
/*------------------------------------------------------------------
 *
 * Purpose:	Dial the console TCP port, send the login preamble, watch
 *		for the "ESC [ R" / "ESC [ r" sentinel that starts binary
 *		DVC framing, and carry keystrokes and decoder
 *		requests back out over the wire.
 *
 *---------------------------------------------------------------*/
package transport

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kvmconsole/ilo2console/internal/cipher"
	"github.com/kvmconsole/ilo2console/internal/dvc"
	"github.com/kvmconsole/ilo2console/internal/session"
)

// readDeadline bounds every socket read so the event loop can keep draining
// its input channels even when the server has nothing to say.
const readDeadline = 10 * time.Millisecond

// Transport owns the TCP connection and the framing state layered over it.
type Transport struct {
	params session.Parameters

	conn net.Conn

	encrypt *cipher.Stream
	decrypt *cipher.Stream

	dvcMode  bool
	sentinel sentinelScanner

	decoder   *dvc.Decoder
	guiEvents chan<- dvc.Event
}

// New prepares a Transport for the given session parameters. The cipher
// streams are only seeded when the session reports encryption enabled
// (§5, ilo2/transport.rs). guiEvents receives the "DVC mode turned off"
// notice the transport raises directly when the decoder declares the
// stream is no longer DVC-framed (§4.2).
func New(params session.Parameters, decoder *dvc.Decoder, guiEvents chan<- dvc.Event) (*Transport, error) {
	t := &Transport{params: params, decoder: decoder, guiEvents: guiEvents}

	if params.EncryptionEnabled {
		enc, err := cipher.New(params.EncryptKey[:])
		if err != nil {
			return nil, fmt.Errorf("transport: encrypt cipher: %w", err)
		}
		dec, err := cipher.New(params.DecryptKey[:])
		if err != nil {
			return nil, fmt.Errorf("transport: decrypt cipher: %w", err)
		}
		t.encrypt = enc
		t.decrypt = dec
	}

	return t, nil
}

// Connect dials the management processor and sends the login preamble.
func (t *Transport) Connect() error {
	addr := net.JoinHostPort(t.params.Host, fmt.Sprintf("%d", t.params.Port))
	conn, err := net.Dial("tcp4", addr)
	if err != nil {
		return fmt.Errorf("transport: dial %s: %w", addr, err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}
	t.conn = conn

	if err := t.sendPreamble(); err != nil {
		_ = conn.Close()
		return err
	}
	return nil
}

// sendPreamble writes the login frame: two marker bytes (0xFF 0xC0) followed
// by the 32-bit key index big-endian, then the login preamble itself. Those
// first six bytes are always cleartext; the preamble is RC4-variant
// enciphered only when the session has encryption enabled, in which case
// the key-index field carries the real value instead of the 0x20 filler
// (§4.2, §6's wire listing).
func (t *Transport) sendPreamble() error {
	header := []byte{0xFF, 0xC0, 0x20, 0x20, 0x20, 0x20}
	if t.params.EncryptionEnabled {
		header[2] = byte(t.params.KeyIndex >> 24)
		header[3] = byte(t.params.KeyIndex >> 16)
		header[4] = byte(t.params.KeyIndex >> 8)
		header[5] = byte(t.params.KeyIndex)
	}

	body := append([]byte(nil), t.params.LoginPreamble...)
	if t.encrypt != nil {
		t.encrypt.ProcessBytes(body, body)
	}

	frame := append(header, body...)
	_, err := t.conn.Write(frame)
	return err
}

// Close releases the underlying connection.
func (t *Transport) Close() error {
	if t.conn == nil {
		return nil
	}
	return t.conn.Close()
}

// Outbound is a command the GUI or keepalive goroutine asks the transport
// to perform against the wire.
type Outbound struct {
	Kind OutboundKind
	Key  KeyEvent
}

// OutboundKind tags the variant of an Outbound command.
type OutboundKind int

const (
	OutboundKeepalive OutboundKind = iota
	OutboundRefreshRequest
	OutboundKey
)

// Run drives the read/write event loop until ctx is canceled or outbound is
// closed. Before each bounded read it drains every pending command on
// outbound, which carries commands toward the wire (keystrokes, keepalives,
// refresh requests); decoded events and decoder requests are delivered on
// the channels the Decoder passed to Transport was constructed with.
func (t *Transport) Run(ctx context.Context, outbound <-chan Outbound) error {
	buf := make([]byte, 4096)

	for {
	drain:
		for {
			select {
			case <-ctx.Done():
				return nil
			case cmd, ok := <-outbound:
				if !ok {
					return nil
				}
				if err := t.sendOutbound(cmd); err != nil {
					return err
				}
			default:
				break drain
			}
		}

		if tc, ok := t.conn.(interface{ SetReadDeadline(time.Time) error }); ok {
			_ = tc.SetReadDeadline(time.Now().Add(readDeadline))
		}
		n, err := t.conn.Read(buf)
		if n > 0 {
			t.consume(buf[:n])
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return fmt.Errorf("transport: read: %w", err)
		}
	}
}

// consume routes freshly read bytes through the sentinel scanner (outside
// DVC mode) or straight into the decrypt cipher and decoder (inside it).
func (t *Transport) consume(data []byte) {
	for _, b := range data {
		if !t.dvcMode {
			if t.sentinel.feed(b) == sentinelEnter {
				t.dvcMode = true
				if b == 'R' {
					log.Info("transport: DVC mode entered (RC4 variant)")
				} else {
					log.Info("transport: DVC mode entered (no encryption)")
				}
			}
			continue
		}

		plain := b
		if t.decrypt != nil {
			plain = t.decrypt.ProcessByte(b)
		}

		if !t.decoder.Process(uint16(plain)) {
			t.dvcMode = false
			t.sentinel.reset()
			if t.guiEvents != nil {
				t.guiEvents <- dvc.Event{Kind: dvc.EventShowText, Text: "DVC mode turned off"}
			}
		}
	}
}

func (t *Transport) sendOutbound(cmd Outbound) error {
	switch cmd.Kind {
	case OutboundKeepalive:
		return t.transmit([]byte("\x1b[("))
	case OutboundRefreshRequest:
		return t.transmit([]byte("\x1b[~"))
	case OutboundKey:
		if !cmd.Key.Pressed {
			return t.transmit(translateKeyRelease(cmd.Key.Modifiers))
		}
		return t.transmit(translateKey(cmd.Key))
	}
	return nil
}

// transmit enciphers (if enabled) and writes a control sequence to the wire.
func (t *Transport) transmit(b []byte) error {
	out := append([]byte(nil), b...)
	if t.encrypt != nil {
		t.encrypt.ProcessBytes(out, out)
	}
	_, err := t.conn.Write(out)
	return err
}

// UpdateEncryptionKey re-derives the encrypt cipher's key schedule, used
// when the decoder relays a firmware rekey request (§9). Only the encrypt
// direction is rotated here; the decryptor's schedule is left alone (§4.2).
func (t *Transport) UpdateEncryptionKey() {
	if t.encrypt != nil {
		t.encrypt.UpdateKey()
	}
	log.Info("transport: encryption key rotated")
}
