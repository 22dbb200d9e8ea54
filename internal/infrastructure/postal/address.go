// Package postal looks up Brazilian postal codes (CEP) in a ViaCEP-compatible directory.
package postal

import (
	"bytes"
	"encoding/json"
	"strings"
)

// PostalCodeLength is the number of digits in a valid postal code
const PostalCodeLength = 8

// Address is the part of a directory record used to fill a form
type Address struct {
	StreetLine       string
	NeighborhoodLine string
	City             string
	StateCode        string
}

// Payload is the directory wire format; the proxy endpoint serves the same shape
type Payload struct {
	Logradouro string   `json:"logradouro"`
	Bairro     string   `json:"bairro"`
	Localidade string   `json:"localidade"`
	UF         string   `json:"uf"`
	Erro       FlexBool `json:"erro,omitempty"`
}

// NotFoundPayload is returned by the directory for unknown codes
var NotFoundPayload = Payload{Erro: true}

// Address converts the payload to an Address
func (p Payload) Address() *Address {
	return &Address{
		StreetLine:       p.Logradouro,
		NeighborhoodLine: p.Bairro,
		City:             p.Localidade,
		StateCode:        p.UF,
	}
}

// PayloadFor converts an Address back to the wire format
func PayloadFor(a *Address) Payload {
	return Payload{
		Logradouro: a.StreetLine,
		Bairro:     a.NeighborhoodLine,
		Localidade: a.City,
		UF:         a.StateCode,
	}
}

// FlexBool decodes JSON booleans that some directories send as strings ("true")
type FlexBool bool

// UnmarshalJSON accepts true, false, "true" and "false"
func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*b = false
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = FlexBool(strings.EqualFold(strings.TrimSpace(s), "true"))
		return nil
	}
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*b = FlexBool(v)
	return nil
}

// NormalizePostalCode strips every non-digit character
func NormalizePostalCode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValidPostalCode reports whether digits is a normalized 8-digit code
func IsValidPostalCode(digits string) bool {
	if len(digits) != PostalCodeLength {
		return false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return false
		}
	}
	return true
}
