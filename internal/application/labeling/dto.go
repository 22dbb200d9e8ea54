package labeling

import (
	"github.com/etiqueta/backend/internal/domain/label"
	"github.com/google/uuid"
)

// DownloadFilename is the attachment name of every generated label
const DownloadFilename = "etiqueta.pdf"

// GenerateLabelRequest carries the form fields of one label.
// Every field is optional display text; absent fields render blank.
type GenerateLabelRequest struct {
	CourierName    string `form:"entregador_nome"`
	CourierPhone   string `form:"entregador_fone"`
	CourierCode    string `form:"entregador_id"`
	CollectorName  string `form:"coletor_nome"`
	CollectorPhone string `form:"coletor_fone"`
	CollectorCode  string `form:"coletor_id"`

	RecipientName         string `form:"dest_nome"`
	RecipientStreet       string `form:"dest_rua"`
	RecipientNeighborhood string `form:"dest_bairro"`
	RecipientPostalCode   string `form:"dest_cep"`
	RecipientPhone        string `form:"dest_fone"`

	SenderName         string `form:"remet_nome"`
	SenderStreet       string `form:"remet_rua"`
	SenderNeighborhood string `form:"remet_bairro"`
	SenderPostalCode   string `form:"remet_cep"`
	SenderPhone        string `form:"remet_fone"`

	BarcodeText string `form:"barcode_text"`
}

// ToRecord maps the request onto a label record. Values are copied verbatim.
func (r *GenerateLabelRequest) ToRecord(logoPath string) *label.Record {
	return &label.Record{
		LogoPath: logoPath,
		Courier: label.Staff{
			Code:  r.CourierCode,
			Name:  r.CourierName,
			Phone: r.CourierPhone,
		},
		Collector: label.Staff{
			Code:  r.CollectorCode,
			Name:  r.CollectorName,
			Phone: r.CollectorPhone,
		},
		Recipient: label.Party{
			Name:             r.RecipientName,
			StreetLine:       r.RecipientStreet,
			NeighborhoodLine: r.RecipientNeighborhood,
			PostalCode:       r.RecipientPostalCode,
			Phone:            r.RecipientPhone,
		},
		Sender: label.Party{
			Name:             r.SenderName,
			StreetLine:       r.SenderStreet,
			NeighborhoodLine: r.SenderNeighborhood,
			PostalCode:       r.SenderPostalCode,
			Phone:            r.SenderPhone,
		},
		BarcodeText: r.BarcodeText,
	}
}

// FormValues returns the request as form fields, keyed by the names the endpoint reads
func (r *GenerateLabelRequest) FormValues() map[string]string {
	return map[string]string{
		"entregador_nome": r.CourierName,
		"entregador_fone": r.CourierPhone,
		"entregador_id":   r.CourierCode,
		"coletor_nome":    r.CollectorName,
		"coletor_fone":    r.CollectorPhone,
		"coletor_id":      r.CollectorCode,
		"dest_nome":       r.RecipientName,
		"dest_rua":        r.RecipientStreet,
		"dest_bairro":     r.RecipientNeighborhood,
		"dest_cep":        r.RecipientPostalCode,
		"dest_fone":       r.RecipientPhone,
		"remet_nome":      r.SenderName,
		"remet_rua":       r.SenderStreet,
		"remet_bairro":    r.SenderNeighborhood,
		"remet_cep":       r.SenderPostalCode,
		"remet_fone":      r.SenderPhone,
		"barcode_text":    r.BarcodeText,
	}
}

// GenerateLabelResponse is a rendered label ready to be sent
type GenerateLabelResponse struct {
	ID       uuid.UUID
	Filename string
	PDFData  []byte
	// ArchivePath is empty when no archive is configured or archiving failed
	ArchivePath string
}
