package dialqueue

import "github.com/libp2p/go-libp2p-dial-queue/dial"

// Error kinds surfaced by Dial. These are aliases onto the dial package's
// types so callers can type-switch/errors.As against either package path.
type (
	InvalidParametersError = dial.InvalidParametersError
	DialError              = dial.DialError
	TransportError         = dial.TransportError
	DialDeniedError        = dial.DialDeniedError
	TimeoutError           = dial.TimeoutError
)

var (
	// NoValidAddressesError is returned when address calculation ends up
	// with zero candidate addresses.
	NoValidAddressesError = dial.NoValidAddressesError

	// AbortError marks jobs cancelled by Stop.
	AbortError = dial.AbortError
)
