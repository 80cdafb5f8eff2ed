package utils

import (
	"strings"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/assert"
)

func TestValidateXrplAddress(t *testing.T) {
	valid := []string{
		"rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh",
		"rPT1Sjq2YGrBMTttX4GZHjKu9dyfzbpAYe",
		"rf1BiGeXwwQoi8Z2ueFYTEXSwuJYfV2Jpn",
	}
	for _, address := range valid {
		assert.NoError(t, ValidateXrplAddress(address), address)
	}

	invalid := map[string]string{
		"bad checksum":   "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTj",
		"wrong prefix":   "xHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh",
		"not base58":     "rHb9CJAWyB4rj91VRWn96DkukG4bwdty0l",
		"too short":      "rHb9CJAWyB4rj91",
		"evm address":    "0x52908400098527886E0F7030069857D2E4169EE7",
		"empty":          "",
	}
	for name, address := range invalid {
		assert.Error(t, ValidateXrplAddress(address), name)
	}
}

func TestValidateEvmAddress(t *testing.T) {
	assert.NoError(t, ValidateEvmAddress("0x52908400098527886E0F7030069857D2E4169EE7"))
	assert.NoError(t, ValidateEvmAddress("0x8617e340b3d01fa5f11f306f4090fd50e238070d"))
	assert.NoError(t, ValidateEvmAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"))

	// mixed case with a broken checksum
	assert.Error(t, ValidateEvmAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAeD"))
	assert.Error(t, ValidateEvmAddress("0x5290840009852788"))
	assert.Error(t, ValidateEvmAddress("rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"))
}

func TestValidateBtcAddress(t *testing.T) {
	assert.NoError(t, ValidateBtcAddress("bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", &chaincfg.MainNetParams))
	assert.Error(t, ValidateBtcAddress("bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", &chaincfg.TestNet3Params))
	assert.Error(t, ValidateBtcAddress("bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdx", &chaincfg.MainNetParams))
	assert.Error(t, ValidateBtcAddress("rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh", &chaincfg.MainNetParams))
}

func TestTxHashFormats(t *testing.T) {
	hash := strings.Repeat("ab", 32)

	assert.True(t, IsValidTxHash(hash))
	assert.False(t, IsValidTxHash("0x"+hash))
	assert.False(t, IsValidTxHash(hash[:62]))

	assert.True(t, IsValidHexTxHash(hash))
	assert.True(t, IsValidHexTxHash("0x"+hash))
	assert.True(t, IsValidHexTxHash(strings.ToUpper(hash)))
	assert.False(t, IsValidHexTxHash(hash+"ab"))
	assert.False(t, IsValidHexTxHash(strings.Repeat("zz", 32)))
}

func TestGetBtcNetParamesFromString(t *testing.T) {
	params, err := GetBtcNetParamesFromString("signet")
	assert.NoError(t, err)
	assert.Equal(t, chaincfg.SigNetParams.Name, params.Name)

	_, err = GetBtcNetParamesFromString("litecoin")
	assert.Error(t, err)
}

func TestContains(t *testing.T) {
	assert.True(t, Contains([]string{"a", "b"}, "b"))
	assert.False(t, Contains([]int{1, 2}, 3))
}
