package coinpayments

import (
	"errors"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
)

// tronAddressVersion prefixes every TRON mainnet address payload.
const tronAddressVersion = 0x41

var ErrInvalidAddress = errors.New("invalid TRC20 address")

// ValidateTRC20Address checks that address is a base58check TRON address:
// version byte 0x41 followed by a 20 byte account id.
func ValidateTRC20Address(address string) error {
	address = strings.TrimSpace(address)
	if len(address) != 34 || !strings.HasPrefix(address, "T") {
		return ErrInvalidAddress
	}
	payload, version, err := base58.CheckDecode(address)
	if err != nil {
		return ErrInvalidAddress
	}
	if version != tronAddressVersion || len(payload) != 20 {
		return ErrInvalidAddress
	}
	return nil
}
