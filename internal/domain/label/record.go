package label

import "strings"

// Staff identifies a courier or collector printed in the label header
type Staff struct {
	Code  string
	Name  string
	Phone string
}

// Line returns the single header line printed for the staff member: code, name and phone
// separated by one space each. Empty values leave their slot blank.
func (s Staff) Line() string {
	return s.Code + " " + s.Name + " " + s.Phone
}

// Party is one of the two postal parties bounding the label (recipient or sender)
type Party struct {
	Name             string
	StreetLine       string
	NeighborhoodLine string
	PostalCode       string
	Phone            string
}

// PostalCodePrefix is printed before the postal code in an address block
const PostalCodePrefix = "CEP: "

// AddressLines returns the address block printed below the party name, one entry per line
func (p Party) AddressLines() []string {
	return []string{
		p.StreetLine,
		p.NeighborhoodLine,
		PostalCodePrefix + p.PostalCode,
		p.Phone,
	}
}

// Address joins AddressLines with newlines
func (p Party) Address() string {
	return strings.Join(p.AddressLines(), "\n")
}

// Record is the complete input for rendering one label.
// A Record is built once per request and must not be modified while it is rendered.
type Record struct {
	// LogoPath is optional; a missing asset is rendered as a placeholder box
	LogoPath    string
	Courier     Staff
	Collector   Staff
	Recipient   Party
	Sender      Party
	BarcodeText string
}

// HasLogoPath reports whether a logo asset was configured
func (r *Record) HasLogoPath() bool {
	return strings.TrimSpace(r.LogoPath) != ""
}
