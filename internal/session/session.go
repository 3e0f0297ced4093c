// Package session builds the immutable SessionParameters record the
// transport needs to open a connection, from the key/value parameters
// scraped during HTTPS authentication.
/*------------------------------------------------------------------
 *
 * Purpose:	Translate the management processor's scraped "info" page
 *		parameters into a connection-ready Parameters record: host,
 *		port, login preamble, cipher keys, key index, timeouts.
 *
 *---------------------------------------------------------------*/
package session

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"

	"github.com/charmbracelet/log"
)

const defaultSessionTimeoutSeconds = 900
const defaultTerminalServicesPort = 3389

// Parameters is the immutable record the transport dials and logs in with.
type Parameters struct {
	Host                   string
	Port                   uint32
	LoginPreamble          []byte
	EncryptionEnabled      bool
	EncryptKey             [16]byte
	DecryptKey             [16]byte
	KeyIndex               uint32
	SessionTimeoutSeconds  uint32
	LaunchTerminalServices bool
	TSParam                uint32
	TerminalServicesPort   uint32
}

var compaqRIBLogin = regexp.MustCompile(`Compaq-RIB-Login=(.{56})(.{32})`)

// FromScrapedParameters builds Parameters from the "infoNN" values scraped
// from the management processor's authentication page. Parse failures on
// non-essential fields are logged and fall back to documented defaults;
// they are never fatal (matching the original client's tolerant posture).
func FromScrapedParameters(host string, info map[string]string) (Parameters, error) {
	login, err := parseLogin(info["info0"])
	if err != nil {
		return Parameters{}, err
	}

	var preamble string
	if info["info1"] != "" {
		preamble = "\x1b[7\x1b[9\x1b[4" + login
	} else {
		preamble = "\x1b[7\x1b[9" + login
	}

	p := Parameters{
		Host:          host,
		LoginPreamble: []byte(preamble),
	}

	p.Port = parseUintOrWarn(info["info6"], "info6", 23)
	timeoutMinutes := parseUintOrWarn(info["info7"], "info7", defaultSessionTimeoutSeconds/60)
	p.SessionTimeoutSeconds = timeoutMinutes * 60

	p.EncryptionEnabled = parseUintOrWarn(info["infoa"], "infoa", 0) == 1

	if p.EncryptionEnabled {
		decryptKey, err := hex.DecodeString(info["infob"])
		if err != nil || len(decryptKey) != 16 {
			return Parameters{}, fmt.Errorf("session: infob is not a valid 16-byte hex key: %q", info["infob"])
		}
		copy(p.DecryptKey[:], decryptKey)

		encryptKey, err := hex.DecodeString(info["infoc"])
		if err != nil || len(encryptKey) != 16 {
			return Parameters{}, fmt.Errorf("session: infoc is not a valid 16-byte hex key: %q", info["infoc"])
		}
		copy(p.EncryptKey[:], encryptKey)

		keyIndex, err := strconv.ParseUint(info["infod"], 10, 32)
		if err != nil {
			return Parameters{}, fmt.Errorf("session: infod is not a valid key index: %q", info["infod"])
		}
		p.KeyIndex = uint32(keyIndex)
	}

	infon := parseUintOrWarn(info["infon"], "infon", 0)
	tsParam := infon & 0xFF00
	tsParam &= 0xFF
	switch infon & 0xFF {
	case 0:
		p.LaunchTerminalServices = false
		tsParam |= 0x1
	case 1:
		p.LaunchTerminalServices = false
	default:
		p.LaunchTerminalServices = true
		tsParam |= 0x1
	}
	p.TSParam = tsParam

	p.TerminalServicesPort = parseUintOrWarn(info["infoo"], "infoo", defaultTerminalServicesPort)

	return p, nil
}

// parseLogin builds the Compaq-RIB-Login preamble: either the
// "ESC [ ! <56 chars> CR <32 chars> CR" form extracted by regexp, or a
// base64-decoded blob followed by a trailing CR.
func parseLogin(info0 string) (string, error) {
	if m := compaqRIBLogin.FindStringSubmatch(info0); m != nil {
		return fmt.Sprintf("\x1b[!%s\r%s\r", m[1], m[2]), nil
	}

	decoded, err := base64.StdEncoding.DecodeString(info0)
	if err != nil {
		return "", fmt.Errorf("session: info0 is neither a Compaq-RIB-Login nor valid base64: %w", err)
	}
	return string(decoded) + "\r", nil
}

func parseUintOrWarn(value, field string, fallback uint32) uint32 {
	if value == "" {
		return fallback
	}
	n, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		log.Warn("session: field can't be parsed, using default", "field", field, "value", value, "default", fallback, "err", err)
		return fallback
	}
	return uint32(n)
}
