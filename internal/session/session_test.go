package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromScrapedParametersCompaqLogin(t *testing.T) {
	info := map[string]string{
		"info0": `Compaq-RIB-Login=` + stringOfLen(56, 'a') + stringOfLen(32, 'b'),
		"info1": "1",
		"info6": "2381",
		"info7": "15",
		"infoa": "0",
	}

	p, err := FromScrapedParameters("10.0.0.5", info)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.5", p.Host)
	assert.EqualValues(t, 2381, p.Port)
	assert.EqualValues(t, 15*60, p.SessionTimeoutSeconds)
	assert.False(t, p.EncryptionEnabled)
	assert.Contains(t, string(p.LoginPreamble), "\x1b[!")
	assert.Contains(t, string(p.LoginPreamble), "\x1b[7\x1b[9\x1b[4")
}

func TestFromScrapedParametersBase64Login(t *testing.T) {
	info := map[string]string{
		"info0": "aGVsbG8=", // base64("hello")
		"info6": "23",
		"infoa": "0",
	}

	p, err := FromScrapedParameters("host", info)
	require.NoError(t, err)
	assert.Equal(t, "\x1b[7\x1b[9hello\r", string(p.LoginPreamble))
	assert.EqualValues(t, 23, p.Port)
}

func TestFromScrapedParametersEncryptionEnabled(t *testing.T) {
	info := map[string]string{
		"info0": "aGVsbG8=",
		"infoa": "1",
		"infob": "0102030405060708090a0b0c0d0e0f10",
		"infoc": "100f0e0d0c0b0a090807060504030201",
		"infod": "7",
	}

	p, err := FromScrapedParameters("host", info)
	require.NoError(t, err)

	assert.True(t, p.EncryptionEnabled)
	assert.EqualValues(t, 7, p.KeyIndex)
	assert.Equal(t, byte(0x01), p.DecryptKey[0])
	assert.Equal(t, byte(0x10), p.EncryptKey[0])
}

func TestFromScrapedParametersEncryptionEnabledBadKeyRejected(t *testing.T) {
	info := map[string]string{
		"info0": "aGVsbG8=",
		"infoa": "1",
		"infob": "not-hex",
	}

	_, err := FromScrapedParameters("host", info)
	require.Error(t, err)
}

func TestFromScrapedParametersDefaultsOnBadValues(t *testing.T) {
	info := map[string]string{
		"info0": "aGVsbG8=",
		"info6": "not-a-number",
		"info7": "not-a-number",
	}

	p, err := FromScrapedParameters("host", info)
	require.NoError(t, err)
	assert.EqualValues(t, 23, p.Port)
	assert.EqualValues(t, defaultSessionTimeoutSeconds, p.SessionTimeoutSeconds)
}

func TestFromScrapedParametersTerminalServices(t *testing.T) {
	tests := []struct {
		name      string
		infon     string
		wantStart bool
	}{
		{"zero means auto-detect off but still flagged", "0", false},
		{"one means explicitly off", "1", false},
		{"other values mean launch", "2", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := map[string]string{"info0": "aGVsbG8=", "infon": tt.infon}
			p, err := FromScrapedParameters("host", info)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, p.LaunchTerminalServices)
		})
	}
}

func stringOfLen(n int, c byte) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = c
	}
	return string(b)
}
