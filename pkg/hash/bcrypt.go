package hash

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword 使用 bcrypt 对密码进行哈希
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedPassword), nil
}

// CheckPasswordHash 检查密码是否与哈希匹配
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IsHashed 判断存储值是否已经是 bcrypt 哈希（旧数据可能是明文）。
func IsHashed(stored string) bool {
	if !strings.HasPrefix(stored, "$2") {
		return false
	}
	_, err := bcrypt.Cost([]byte(stored))
	return err == nil
}
