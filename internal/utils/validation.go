package utils

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"

	ethav "github.com/KOREAN139/ethereum-address-validator"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ethereum/go-ethereum/common"
	"github.com/mr-tron/base58"
)

// xrplAlphabet is the base58 dictionary used by the XRP Ledger.
var xrplAlphabet = base58.NewAlphabet("rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz")

const (
	xrplAccountIDVersion = 0x00
	xrplAccountIDLength  = 20
)

var hexTxHashRegex = regexp.MustCompile(`^(0x)?[0-9a-fA-F]{64}$`)

// ValidateBtcAddress checks if the provided address is a valid address for the given network.
func ValidateBtcAddress(btcAddress string, params *chaincfg.Params) error {
	decodedAddr, err := btcutil.DecodeAddress(btcAddress, params)
	if err != nil {
		return fmt.Errorf("can not decode btc address: %w", err)
	}
	if !decodedAddr.IsForNet(params) {
		return fmt.Errorf("btc address is not for network %s", params.Name)
	}
	switch decodedAddr.(type) {
	case *btcutil.AddressPubKeyHash, *btcutil.AddressScriptHash,
		*btcutil.AddressWitnessPubKeyHash, *btcutil.AddressWitnessScriptHash,
		*btcutil.AddressTaproot:
		return nil
	default:
		return fmt.Errorf("unsupported btc address type")
	}
}

// ValidateXrplAddress checks a classic XRP Ledger account address ("r...").
// X-addresses are not accepted, the memo travels as a destination tag instead.
func ValidateXrplAddress(address string) error {
	if !strings.HasPrefix(address, "r") {
		return errors.New("xrpl address must start with 'r'")
	}
	decoded, err := base58.DecodeAlphabet(address, xrplAlphabet)
	if err != nil {
		return fmt.Errorf("can not decode xrpl address: %w", err)
	}
	if len(decoded) != 1+xrplAccountIDLength+4 {
		return fmt.Errorf("invalid xrpl address length")
	}
	if decoded[0] != xrplAccountIDVersion {
		return fmt.Errorf("invalid xrpl address version")
	}
	payload, checksum := decoded[:len(decoded)-4], decoded[len(decoded)-4:]
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	if !bytes.Equal(second[:4], checksum) {
		return errors.New("invalid xrpl address checksum")
	}
	return nil
}

// ValidateEvmAddress checks the hex form of an EVM address, and its EIP-55
// checksum when the address is written in mixed case.
func ValidateEvmAddress(address string) error {
	if !common.IsHexAddress(address) {
		return errors.New("invalid evm address")
	}
	body := strings.TrimPrefix(strings.TrimPrefix(address, "0x"), "0X")
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return nil
	}
	if err := ethav.Validate(address); err != nil {
		return fmt.Errorf("invalid evm address checksum: %w", err)
	}
	return nil
}

// IsValidTxHash checks if the given string is a valid BTC transaction hash
// Note: it does not check the actual content of the hash.
func IsValidTxHash(txHash string) bool {
	_, err := chainhash.NewHashFromStr(txHash)
	return err == nil && len(txHash) == chainhash.MaxHashStringSize
}

// IsValidHexTxHash checks for a 32 byte hex encoded hash with an optional 0x prefix,
// which is the hash shape used by both the XRP Ledger and EVM chains.
func IsValidHexTxHash(txHash string) bool {
	if !hexTxHashRegex.MatchString(txHash) {
		return false
	}
	_, err := hex.DecodeString(strings.TrimPrefix(txHash, "0x"))
	return err == nil
}
