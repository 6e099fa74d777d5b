package certbridge

import (
	"errors"
	"fmt"

	"github.com/smallstep/pkcs7"
	gopkcs12 "software.sslmate.com/src/go-pkcs12"
)

// HandlesFromPKCS7 decodes a DER-encoded PKCS#7 bundle and returns
// foreign handles for the certificates it contains, in bundle order.
func HandlesFromPKCS7(derData []byte) (Chain, error) {
	p7, err := pkcs7.Parse(derData)
	if err != nil {
		return nil, fmt.Errorf("parsing PKCS#7: %w", err)
	}
	if len(p7.Certificates) == 0 {
		return nil, errors.New("PKCS#7 bundle contains no certificates")
	}
	chain := make(Chain, 0, len(p7.Certificates))
	for _, cert := range p7.Certificates {
		h, err := ParseHandle(cert.Raw)
		if err != nil {
			return nil, err
		}
		chain = append(chain, h)
	}
	return chain, nil
}

// EncodeHandlesPKCS7 creates a certs-only PKCS#7/P7B bundle from a
// chain of foreign handles. Returns the DER-encoded SignedData.
func EncodeHandlesPKCS7(chain Chain) ([]byte, error) {
	if len(chain) == 0 {
		return nil, errors.New("no certificates to encode")
	}
	var derBytes []byte
	for _, h := range chain {
		der, err := h.EncodedDER()
		if err != nil {
			return nil, err
		}
		derBytes = append(derBytes, der...)
	}
	return pkcs7.DegenerateCertificate(derBytes)
}

// HandlesFromPKCS12 decodes a PKCS#12/PFX container, trying each
// password in order, and returns foreign handles for every certificate
// found: the leaf followed by its CA chain for identity containers, or
// the trusted certificates of a truststore-style container.
func HandlesFromPKCS12(pfxData []byte, passwords []string) (Chain, error) {
	if len(passwords) == 0 {
		passwords = DefaultPasswords()
	}
	var lastErr error
	for _, password := range passwords {
		_, leaf, caCerts, err := gopkcs12.DecodeChain(pfxData, password)
		if err == nil {
			chain := make(Chain, 0, 1+len(caCerts))
			h, err := ParseHandle(leaf.Raw)
			if err != nil {
				return nil, err
			}
			chain = append(chain, h)
			for _, ca := range caCerts {
				h, err := ParseHandle(ca.Raw)
				if err != nil {
					return nil, err
				}
				chain = append(chain, h)
			}
			return chain, nil
		}
		lastErr = err

		// Containers without a private key (truststores) fail DecodeChain.
		tsCerts, tsErr := gopkcs12.DecodeTrustStore(pfxData, password)
		if tsErr == nil && len(tsCerts) > 0 {
			chain := make(Chain, 0, len(tsCerts))
			for _, cert := range tsCerts {
				h, err := ParseHandle(cert.Raw)
				if err != nil {
					return nil, err
				}
				chain = append(chain, h)
			}
			return chain, nil
		}
	}
	return nil, fmt.Errorf("decoding PKCS#12 with any provided password: %w", lastErr)
}
