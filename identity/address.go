// Package identity validates claimant and owner payout identities: base58
// addresses checked before any deployment side effect, and alias@domain
// payout handles resolved to hosting endpoints over DNS.
package identity

import (
	"fmt"

	"github.com/bsv-blockchain/go-sdk/script"
)

// ValidateAddress checks that addr parses as a base58check payout address.
func ValidateAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	if _, err := script.NewAddressFromString(addr); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidAddress, addr, err)
	}
	return nil
}

// ValidateAddresses checks every address in the list and rejects duplicates.
// Deployment payee lists must contain each claimant exactly once.
func ValidateAddresses(addrs []string) error {
	seen := make(map[string]struct{}, len(addrs))
	for _, addr := range addrs {
		if err := ValidateAddress(addr); err != nil {
			return err
		}
		if _, dup := seen[addr]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateAddress, addr)
		}
		seen[addr] = struct{}{}
	}
	return nil
}
