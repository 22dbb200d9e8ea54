package printing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ascii unchanged", "Rua das Flores, 10", "Rua das Flores, 10"},
		{"latin accents", "DESTINATÁRIO", "DESTINAT\xc1RIO"},
		{"cedilla", "Conceição", "Concei\xe7\xe3o"},
		{"euro sign", "€", "\x80"},
		{"unsupported rune", "日本", "??"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, encodeText(tt.in))
		})
	}
}
