package label

// Page dimensions of the shipping label form factor, in PDF points (100mm x 150mm)
const (
	PageWidth  = 283.46
	PageHeight = 425.20
)

// Fixed layout coordinates, in points from the top-left corner
const (
	BorderInset     = 5.0
	ContentMargin   = 15.0
	RuleLineWidth   = 3.0
	HeaderRuleY     = 90.0
	RecipientRuleY  = 200.0
	BarcodeRuleY    = 330.0
	RecipientTitleY = 100.0
	RecipientBodyY  = 130.0
	BarcodeCaptionY = 215.0
	BarcodeImageY   = 235.0
	BarcodeWidth    = 180.0
	SenderTitleY    = 340.0
	LogoSize        = 70.0
	TitleBannerH    = 20.0
)

// Captions printed on the label
const (
	CaptionCourier   = "ENTREGADOR"
	CaptionCollector = "COLETOR"
	CaptionRecipient = "DESTINATÁRIO"
	CaptionSender    = "REMETENTE"
	CaptionLogo      = "LOGO"
)
