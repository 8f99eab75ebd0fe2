package payment

import (
	"net/url"
	"strings"
)

// RedirectOptions configures the hosted payment page the payer is sent to.
type RedirectOptions struct {
	HostedPaymentURL string
	ReturnURI        string
	ColorPrimary     string
	ColorSecondary   string
	ColorTertiary    string
}

// RedirectURL builds the hosted page link. Parameters go in the fragment so
// the resource token is never sent to a server.
func (o RedirectOptions) RedirectURL(paymentID, resourceToken string) string {
	params := [][2]string{
		{"payment_id", paymentID},
		{"resource_token", resourceToken},
		{"return_uri", o.ReturnURI},
		{"c_primary", o.ColorPrimary},
		{"c_secondary", o.ColorSecondary},
		{"c_tertiary", o.ColorTertiary},
	}

	var b strings.Builder
	b.WriteString(o.HostedPaymentURL)
	sep := byte('#')
	for _, p := range params {
		if p[1] == "" {
			continue
		}
		b.WriteByte(sep)
		sep = '&'
		b.WriteString(p[0])
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p[1]))
	}
	return b.String()
}
