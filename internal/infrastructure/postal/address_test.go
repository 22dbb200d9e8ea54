package postal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePostalCode(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		valid bool
	}{
		{"01001-000", "01001000", true},
		{" 01.001-000 ", "01001000", true},
		{"01001000", "01001000", true},
		{"1234", "1234", false},
		{"012345678", "012345678", false},
		{"abc", "", false},
		{"０１００１０００", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := NormalizePostalCode(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.valid, IsValidPostalCode(got))
		})
	}
}

func TestPayload_Unmarshal(t *testing.T) {
	t.Run("found record", func(t *testing.T) {
		var p Payload
		require.NoError(t, json.Unmarshal([]byte(`{
			"cep": "01001-000",
			"logradouro": "Praça da Sé",
			"bairro": "Sé",
			"localidade": "São Paulo",
			"uf": "SP"
		}`), &p))
		assert.False(t, bool(p.Erro))
		assert.Equal(t, &Address{
			StreetLine:       "Praça da Sé",
			NeighborhoodLine: "Sé",
			City:             "São Paulo",
			StateCode:        "SP",
		}, p.Address())
	})

	for _, body := range []string{`{"erro": true}`, `{"erro": "true"}`} {
		t.Run("not found "+body, func(t *testing.T) {
			var p Payload
			require.NoError(t, json.Unmarshal([]byte(body), &p))
			assert.True(t, bool(p.Erro))
		})
	}

	t.Run("false string", func(t *testing.T) {
		var p Payload
		require.NoError(t, json.Unmarshal([]byte(`{"erro": "false"}`), &p))
		assert.False(t, bool(p.Erro))
	})

	t.Run("invalid erro value", func(t *testing.T) {
		var p Payload
		assert.Error(t, json.Unmarshal([]byte(`{"erro": 1}`), &p))
	})
}

func TestPayloadFor_RoundTrip(t *testing.T) {
	addr := &Address{StreetLine: "Rua A", NeighborhoodLine: "B", City: "C", StateCode: "RJ"}
	raw, err := json.Marshal(PayloadFor(addr))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "erro")

	var p Payload
	require.NoError(t, json.Unmarshal(raw, &p))
	assert.Equal(t, addr, p.Address())
}
