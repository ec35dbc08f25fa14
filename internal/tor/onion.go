package tor

import (
	"encoding/base32"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

// OnionSuffix is the top-level domain of onion services.
const OnionSuffix = ".onion"

const onionV3Version = 0x03

// onionV3Pattern matches 56 base32 characters followed by .onion.
var onionV3Pattern = regexp.MustCompile(`^[a-z2-7]{56}\.onion$`)

var checksumPrefix = []byte(".onion checksum")

// IsOnionHost reports whether host belongs to the .onion domain,
// including subdomains of an onion service.
func IsOnionHost(host string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSuffix(host, ".")), OnionSuffix)
}

// ValidateHost checks that an onion host names a v3 onion service.
// Subdomains are allowed; the last two labels must form a valid address
// with a matching checksum.
func ValidateHost(host string) error {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return fmt.Errorf("%w: %s", ErrInvalidOnionAddress, host)
	}
	service := strings.Join(labels[len(labels)-2:], ".")
	if !validV3Address(service) {
		return fmt.Errorf("%w: %s", ErrInvalidOnionAddress, host)
	}
	return nil
}

// validV3Address checks the format, version byte and checksum of a v3
// address: base32(pubkey[32] | checksum[2] | version[1]).
func validV3Address(address string) bool {
	if !onionV3Pattern.MatchString(address) {
		return false
	}

	decoded, err := base32.StdEncoding.DecodeString(strings.ToUpper(strings.TrimSuffix(address, OnionSuffix)))
	if err != nil || len(decoded) != 35 {
		return false
	}

	pubkey, checksum, version := decoded[:32], decoded[32:34], decoded[34]
	if version != onionV3Version {
		return false
	}
	want := v3Checksum(pubkey, version)
	return checksum[0] == want[0] && checksum[1] == want[1]
}

// v3Checksum returns the first two bytes of
// SHA3-256(".onion checksum" | pubkey | version).
func v3Checksum(pubkey []byte, version byte) []byte {
	data := make([]byte, 0, len(checksumPrefix)+len(pubkey)+1)
	data = append(data, checksumPrefix...)
	data = append(data, pubkey...)
	data = append(data, version)
	sum := sha3.Sum256(data)
	return sum[:2]
}
