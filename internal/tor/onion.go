package tor

import (
	"encoding/base32"
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

// OnionSuffix ends every onion host name.
const OnionSuffix = ".onion"

// onionV3Version is the trailing version byte of a v3 address.
const onionV3Version = 0x03

// Onion address errors.
var (
	// ErrInvalidOnionAddress is returned for a .onion host that is not a
	// valid v3 address.
	ErrInvalidOnionAddress = errors.New("invalid onion address")

	// ErrV2AddressDeprecated is returned for a 16-character v2 address.
	// V2 services stopped working in October 2021.
	ErrV2AddressDeprecated = errors.New("v2 onion addresses are deprecated and no longer functional")
)

var (
	onionV3Pattern = regexp.MustCompile(`^[a-z2-7]{56}\.onion$`)
	onionV2Pattern = regexp.MustCompile(`^[a-z2-7]{16}\.onion$`)
)

// checksumPrefix is hashed before the key in a v3 address checksum.
var checksumPrefix = []byte(".onion checksum")

// IsOnionHost reports whether host (without port) is an onion host name.
// Subdomains such as www.<address>.onion count.
func IsOnionHost(host string) bool {
	return strings.HasSuffix(strings.ToLower(host), OnionSuffix)
}

// ValidateOnionHost checks that host is a v3 onion address with a valid
// checksum. A subdomain label in front of the address is ignored.
func ValidateOnionHost(host string) error {
	host = strings.ToLower(host)
	if !strings.HasSuffix(host, OnionSuffix) {
		return ErrInvalidOnionAddress
	}

	// www.<56 chars>.onion -> <56 chars>.onion
	labels := strings.Split(strings.TrimSuffix(host, OnionSuffix), ".")
	address := labels[len(labels)-1] + OnionSuffix

	if IsValidV3Address(address) {
		return nil
	}
	if onionV2Pattern.MatchString(address) {
		return ErrV2AddressDeprecated
	}
	return ErrInvalidOnionAddress
}

// IsValidV3Address checks the format and checksum of a v3 onion address
// such as "<56 base32 chars>.onion".
func IsValidV3Address(address string) bool {
	address = strings.ToLower(address)
	if !onionV3Pattern.MatchString(address) {
		return false
	}

	decoded, err := base32.StdEncoding.DecodeString(strings.ToUpper(strings.TrimSuffix(address, OnionSuffix)))
	if err != nil || len(decoded) != 35 {
		return false
	}

	// pubkey (32) | checksum (2) | version (1)
	pubkey, checksum, version := decoded[:32], decoded[32:34], decoded[34]
	if version != onionV3Version {
		return false
	}

	expected := v3Checksum(pubkey, version)
	return checksum[0] == expected[0] && checksum[1] == expected[1]
}

// v3Checksum returns SHA3-256(".onion checksum" || pubkey || version)[:2].
func v3Checksum(pubkey []byte, version byte) []byte {
	data := make([]byte, 0, len(checksumPrefix)+len(pubkey)+1)
	data = append(data, checksumPrefix...)
	data = append(data, pubkey...)
	data = append(data, version)

	hash := sha3.Sum256(data)
	return hash[:2]
}
