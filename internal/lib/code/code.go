// Package code генерирует одноразовые цифровые коды подтверждения.
package code

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Length число цифр в коде.
const Length = 6

var upper = big.NewInt(1_000_000)

// Generate возвращает равномерно распределённый код из шести цифр с ведущими нулями.
func Generate() (string, error) {
	const op = "code.Generate"
	n, err := rand.Int(rand.Reader, upper)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Sprintf("%0*d", Length, n.Int64()), nil
}
