package model

import "time"

// Letter is a persisted open letter as seen by the client. Instances come
// from server responses and are treated as immutable, except for IsSigned
// and SignatureCount which are replaced wholesale after a confirmed
// toggle-signature call.
type Letter struct {
	ID             string    `json:"id"`
	SenderEmail    string    `json:"senderEmail"`
	RecipientEmail string    `json:"recipientEmail"`
	Subject        string    `json:"subject"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"createdAt"`
	SignatureCount int       `json:"signatureCount"`
	IsSigned       bool      `json:"isSigned"`
}

// FormatDate returns the creation date for list rows
func (l Letter) FormatDate() string {
	return l.CreatedAt.Format("02/01/2006")
}
