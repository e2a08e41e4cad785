package vouchers

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

// CodeAlphabet is uppercase letters and digits without 0, 1, O and I.
const CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	codePrefix     = "VCH"
	codeGroups     = 3
	codeGroupWidth = 4
)

var codePattern = regexp.MustCompile(`^VCH-[` + CodeAlphabet + `]{4}-[` + CodeAlphabet + `]{4}-[` + CodeAlphabet + `]{4}$`)

// GenerateCode returns a VCH-XXXX-XXXX-XXXX code drawn from CodeAlphabet.
func GenerateCode() (string, error) {
	max := big.NewInt(int64(len(CodeAlphabet)))
	groups := make([]string, 0, codeGroups+1)
	groups = append(groups, codePrefix)
	for g := 0; g < codeGroups; g++ {
		var b strings.Builder
		for i := 0; i < codeGroupWidth; i++ {
			n, err := rand.Int(rand.Reader, max)
			if err != nil {
				return "", fmt.Errorf("generate voucher code: %w", err)
			}
			b.WriteByte(CodeAlphabet[n.Int64()])
		}
		groups = append(groups, b.String())
	}
	return strings.Join(groups, "-"), nil
}

// ValidCode reports whether code has the issued voucher code shape.
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}
