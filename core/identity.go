package core

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

const didEthrPrefix = "did:ethr:"

// ParseIdentity extracts the controlling account address from a did:ethr
// identifier. Both the bare form "did:ethr:0xabc..." and the network-qualified
// form "did:ethr:sepolia:0xabc..." are accepted. Address comparison downstream
// happens on common.Address values, which makes it case-insensitive for free.
func ParseIdentity(did string) (common.Address, error) {
	if !strings.HasPrefix(did, didEthrPrefix) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrMalformedIdentity, did)
	}

	rest := strings.TrimPrefix(did, didEthrPrefix)
	parts := strings.Split(rest, ":")
	addr := parts[len(parts)-1]
	if len(parts) > 2 || addr == "" {
		return common.Address{}, fmt.Errorf("%w: %q", ErrMalformedIdentity, did)
	}

	if !common.IsHexAddress(addr) {
		return common.Address{}, fmt.Errorf("%w: %q is not a valid account address", ErrMalformedIdentity, addr)
	}

	return common.HexToAddress(addr), nil
}

// IdentityFromAddress builds the canonical did:ethr identifier for an address.
func IdentityFromAddress(addr common.Address) string {
	return didEthrPrefix + addr.Hex()
}

// SameIdentity reports whether two identifiers resolve to the same account.
// Malformed identifiers never match anything, including themselves.
func SameIdentity(a, b string) bool {
	addrA, errA := ParseIdentity(a)
	addrB, errB := ParseIdentity(b)
	if errA != nil || errB != nil {
		return false
	}
	return addrA == addrB
}
