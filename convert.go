package certbridge

import "errors"

// Platform constructs platform-native certificates from canonical DER
// bytes. Implementations define the handle's ownership convention;
// the bridge only requires that a handle returned from
// CertificateFromDER can be released exactly once.
type Platform interface {
	CertificateFromDER(der []byte) (PlatformCertificate, error)
}

// PlatformCertificate is an opaque platform-native certificate handle.
// Ownership transfers to the caller when a conversion returns it; the
// caller must Release it when done. Release is idempotent only if the
// platform says so — treat it as single-shot.
type PlatformCertificate interface {
	// DER returns the handle's canonical encoding.
	DER() []byte
	// Release frees the handle.
	Release()
}

// Convert converts one foreign certificate handle into a platform
// certificate. The handle is borrowed read-only for the duration of
// the call. On success the returned handle is owned exclusively by
// the caller. All failures are *ConvertError; the bridge never
// retries and never returns a partial result.
func Convert(p Platform, h *Handle) (PlatformCertificate, error) {
	return convertAt(p, h, -1)
}

// ConvertChain converts an ordered sequence of foreign handles,
// preserving input order. The operation is all-or-nothing: on the
// first failing element every platform certificate already
// constructed is released before the element's error is returned.
// An empty chain succeeds with an empty result.
func ConvertChain(p Platform, chain Chain) ([]PlatformCertificate, error) {
	converted := make([]PlatformCertificate, 0, len(chain))
	for i, h := range chain {
		cert, err := convertAt(p, h, i)
		if err != nil {
			for _, c := range converted {
				c.Release()
			}
			return nil, err
		}
		converted = append(converted, cert)
	}
	return converted, nil
}

// convertAt performs one conversion, tagging any error with the
// handle's position (-1 for single conversions).
func convertAt(p Platform, h *Handle, index int) (PlatformCertificate, error) {
	if h == nil || len(h.der) == 0 {
		return nil, &ConvertError{
			Kind:  KindInvalidInput,
			Index: index,
			cause: errors.New("nil or empty certificate handle"),
		}
	}

	der, err := h.EncodedDER()
	if err != nil {
		return nil, &ConvertError{
			Kind:  KindEncodingExtractionFailed,
			Index: index,
			cause: err,
		}
	}

	cert, err := p.CertificateFromDER(der)
	if err != nil {
		return nil, &ConvertError{
			Kind:  KindPlatformRejected,
			Index: index,
			cause: err,
		}
	}
	return cert, nil
}
