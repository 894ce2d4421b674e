package email

const (
	subjectOfferReceived  = "Nieuwe lead beschikbaar"
	subjectLeadWon        = "Lead gewonnen"
	subjectLeadLost       = "Lead niet toegekend"
	subjectLowBalance     = "Uw walletsaldo is laag"
	subjectWalletCredited = "Wallet opgewaardeerd"
)
