package certbridge

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/pavlo-v-chernykh/keystore-go/v4"
)

// HandlesFromJKS decodes a Java KeyStore (JKS) and returns foreign
// handles for the certificates it contains. The same password is used
// for the store and individual entries (standard Java convention).
//
// TrustedCertificateEntry entries yield one handle each. PrivateKeyEntry
// entries yield handles for their certificate chains; the keys
// themselves are ignored. Individual entry errors are skipped; an error
// is returned only if the store cannot be loaded or no certificate is
// found.
func HandlesFromJKS(data []byte, password string) (Chain, error) {
	ks := keystore.New()
	if err := ks.Load(bytes.NewReader(data), []byte(password)); err != nil {
		return nil, fmt.Errorf("loading JKS: %w", err)
	}

	var chain Chain
	for _, alias := range ks.Aliases() {
		if ks.IsTrustedCertificateEntry(alias) {
			entry, err := ks.GetTrustedCertificateEntry(alias)
			if err != nil {
				continue
			}
			h, err := ParseHandle(entry.Certificate.Content)
			if err != nil {
				continue
			}
			chain = append(chain, h)
		}

		if ks.IsPrivateKeyEntry(alias) {
			entry, err := ks.GetPrivateKeyEntry(alias, []byte(password))
			if err != nil {
				continue
			}
			for _, certEntry := range entry.CertificateChain {
				h, err := ParseHandle(certEntry.Content)
				if err != nil {
					continue
				}
				chain = append(chain, h)
			}
		}
	}

	if len(chain) == 0 {
		return nil, errors.New("JKS contains no usable certificates")
	}
	return chain, nil
}

// EncodeHandlesJKS creates a Java KeyStore containing each handle's
// certificate as a trusted entry. Aliases are "cert-0", "cert-1", ...
// in chain order. The password protects the store.
func EncodeHandlesJKS(chain Chain, password string) ([]byte, error) {
	if len(chain) == 0 {
		return nil, errors.New("no certificates to encode")
	}

	ks := keystore.New()
	for i, h := range chain {
		der, err := h.EncodedDER()
		if err != nil {
			return nil, err
		}
		alias := fmt.Sprintf("cert-%d", i)
		if err := ks.SetTrustedCertificateEntry(alias, keystore.TrustedCertificateEntry{
			CreationTime: time.Now(),
			Certificate: keystore.Certificate{
				Type:    "X.509",
				Content: der,
			},
		}); err != nil {
			return nil, fmt.Errorf("setting JKS trusted entry %q: %w", alias, err)
		}
	}

	var buf bytes.Buffer
	if err := ks.Store(&buf, []byte(password)); err != nil {
		return nil, fmt.Errorf("storing JKS: %w", err)
	}
	return buf.Bytes(), nil
}
