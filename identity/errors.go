package identity

import "errors"

var (
	// ErrInvalidAddress indicates the string is not a valid payout address.
	ErrInvalidAddress = errors.New("identity: invalid address")

	// ErrDuplicateAddress indicates the same address appears more than once.
	ErrDuplicateAddress = errors.New("identity: duplicate address")

	// ErrInvalidHandle indicates a payout handle is not of the form alias@domain.
	ErrInvalidHandle = errors.New("identity: invalid payout handle")

	// ErrDNSLookupFailed indicates a DNS SRV lookup failed.
	ErrDNSLookupFailed = errors.New("identity: DNS lookup failed")

	// ErrNoEndpoints indicates no payout endpoints were found for the domain.
	ErrNoEndpoints = errors.New("identity: no payout endpoints found")

	// ErrNotAuthenticated indicates the domain's DNS records failed DNSSEC validation.
	ErrNotAuthenticated = errors.New("identity: DNSSEC validation failed")

	// ErrHandleResolutionFailed indicates no payout host returned a valid
	// address for the handle.
	ErrHandleResolutionFailed = errors.New("identity: handle resolution failed")
)
