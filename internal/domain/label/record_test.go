package label

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStaff_Line(t *testing.T) {
	tests := []struct {
		name  string
		staff Staff
		want  string
	}{
		{
			name:  "all fields",
			staff: Staff{Code: "42", Name: "Maria Souza", Phone: "(11) 99999-0000"},
			want:  "42 Maria Souza (11) 99999-0000",
		},
		{
			name:  "empty fields keep separators",
			staff: Staff{},
			want:  "  ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.staff.Line())
		})
	}
}

func TestParty_AddressLines(t *testing.T) {
	p := Party{
		Name:             "João",
		StreetLine:       "Praça da Sé, 100",
		NeighborhoodLine: "Sé",
		PostalCode:       "01001-000",
		Phone:            "(11) 3333-4444",
	}

	assert.Equal(t, []string{"Praça da Sé, 100", "Sé", "CEP: 01001-000", "(11) 3333-4444"}, p.AddressLines())
	assert.Equal(t, "Praça da Sé, 100\nSé\nCEP: 01001-000\n(11) 3333-4444", p.Address())
}

func TestParty_AddressLines_Empty(t *testing.T) {
	var p Party
	assert.Equal(t, []string{"", "", "CEP: ", ""}, p.AddressLines())
}

func TestRecord_HasLogoPath(t *testing.T) {
	assert.False(t, (&Record{}).HasLogoPath())
	assert.False(t, (&Record{LogoPath: "  "}).HasLogoPath())
	assert.True(t, (&Record{LogoPath: "./logo.png"}).HasLogoPath())
}
