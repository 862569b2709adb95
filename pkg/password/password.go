// Package password 封装 bcrypt 哈希
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt 只使用前 72 字节
const MaxLength = 72

var (
	ErrEmpty   = errors.New("password is empty")
	ErrTooLong = errors.New("password is longer than 72 bytes")
)

// Cost 哈希成本，测试中可调低
var Cost = bcrypt.DefaultCost

// Hash 生成密码哈希
func Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmpty
	}
	if len(plain) > MaxLength {
		return "", ErrTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), Cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify 校验密码
func Verify(plain, hash string) bool {
	if plain == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
