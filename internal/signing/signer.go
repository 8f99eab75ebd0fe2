// Package signing produces Tl-Signature request signatures for the payment
// provider. A signature covers the method, path, the listed headers and the
// exact body bytes, so the request must be sent exactly as signed.
package signing

import (
	"errors"
	"fmt"
	"strings"

	tlsigning "github.com/Truelayer/truelayer-signing/go"
)

var (
	ErrInvalidKey  = errors.New("signing key is missing or malformed")
	ErrInvalidPath = errors.New("request path must start with /")
)

// Header is a signed header. Order is preserved in the signature.
type Header struct {
	Name  string
	Value string
}

type Signer struct {
	keyID      string
	privateKey []byte
}

// New validates the key material up front so a bad key fails at startup
// rather than on the first payment.
func New(keyID string, privateKeyPEM []byte) (*Signer, error) {
	if strings.TrimSpace(keyID) == "" || len(privateKeyPEM) == 0 {
		return nil, ErrInvalidKey
	}

	s := &Signer{keyID: keyID, privateKey: privateKeyPEM}
	if _, err := s.Sign("POST", "/", nil, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	return s, nil
}

func (s *Signer) KeyID() string {
	return s.keyID
}

func (s *Signer) Sign(method, path string, headers []Header, body []byte) (string, error) {
	if !strings.HasPrefix(path, "/") {
		return "", ErrInvalidPath
	}

	req := tlsigning.SignWithPem(s.keyID, s.privateKey).
		Method(strings.ToUpper(method)).
		Path(path).
		Body(body)
	for _, h := range headers {
		req = req.Header(h.Name, []byte(h.Value))
	}

	sig, err := req.Sign()
	if err != nil {
		return "", fmt.Errorf("failed to sign %s %s: %w", method, path, err)
	}

	return sig, nil
}
