package certbridge

import "fmt"

// ErrorKind classifies why a conversion failed.
type ErrorKind int

const (
	// KindInvalidInput means the foreign handle was nil or held no
	// certificate.
	KindInvalidInput ErrorKind = iota + 1

	// KindEncodingExtractionFailed means a canonical DER encoding could
	// not be extracted from the foreign handle.
	KindEncodingExtractionFailed

	// KindPlatformRejected means the platform's certificate constructor
	// refused the extracted bytes.
	KindPlatformRejected
)

// String returns the kind's name.
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindEncodingExtractionFailed:
		return "encoding extraction failed"
	case KindPlatformRejected:
		return "platform rejected"
	default:
		return fmt.Sprintf("unknown kind %d", int(k))
	}
}

// ConvertError describes a failed conversion. Index is the position of
// the failing handle when the error came from ConvertChain, and -1 for
// a single conversion.
type ConvertError struct {
	Kind  ErrorKind
	Index int
	cause error
}

func (e *ConvertError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("converting certificate %d: %s: %v", e.Index, e.Kind, e.cause)
	}
	return fmt.Sprintf("converting certificate: %s: %v", e.Kind, e.cause)
}

// Unwrap returns the underlying diagnostic from the foreign library or
// the platform constructor.
func (e *ConvertError) Unwrap() error {
	return e.cause
}
