package ui

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Mohsinsiddi/w3mask/internal/provider"
	"github.com/stretchr/testify/assert"
)

func TestFormattersCarryPrefix(t *testing.T) {
	tests := []struct {
		name   string
		fn     func(string) string
		prefix string
	}{
		{"Success", Success, "✓"},
		{"Warn", Warn, "⚠"},
		{"Err", Err, "✗"},
		{"Info", Info, "ℹ"},
		{"Hint", Hint, "»"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.fn("message")
			assert.Contains(t, result, tt.prefix)
			assert.Contains(t, result, "message")
			assert.Contains(t, tt.fn(""), tt.prefix)
		})
	}
}

func TestInfoDifferentFromHint(t *testing.T) {
	assert.NotEqual(t, Info("message"), Hint("message"))
}

func TestAllFormattersReturnNonEmpty(t *testing.T) {
	formatters := map[string]func(string) string{
		"Success":   Success,
		"Warn":      Warn,
		"Err":       Err,
		"Info":      Info,
		"Hint":      Hint,
		"Addr":      Addr,
		"Val":       Val,
		"Meta":      Meta,
		"ChainName": ChainName,
	}
	for name, fn := range formatters {
		t.Run(name, func(t *testing.T) {
			result := fn("test")
			assert.NotEmpty(t, result, "%s should return non-empty string", name)
			assert.Contains(t, result, "test", "%s should contain the input message", name)
		})
	}
}

func TestNoticeShowsWalletMessage(t *testing.T) {
	rejected := &provider.Error{Code: provider.CodeUserRejected, Message: "User rejected the request."}

	result := Notice(fmt.Errorf("connect: %w", rejected))
	assert.Contains(t, result, "User rejected the request.")
	assert.NotContains(t, result, "provider error")
	assert.Contains(t, result, "✗")

	assert.Contains(t, Notice(errors.New("daemon down")), "daemon down")
}

func TestTruncateAddr(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"0x1234", "0x1234"},
		{"0x12345678", "0x12345678"},
		{"0x1234567890abcdef1234567890abcdef12345678", "0x1234…5678"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TruncateAddr(tt.in))
	}
}

func TestBanner(t *testing.T) {
	result := Banner("1.2.3")
	assert.Contains(t, result, "from the terminal")
	assert.Contains(t, result, "v1.2.3")
}
