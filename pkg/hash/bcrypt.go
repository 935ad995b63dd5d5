// Package hash 封装 bcrypt 校验。
// 本服务不保存明文口令：登录 Webhook 若回带 password_hash，会在发放会话前用这里校验。
package hash

import "golang.org/x/crypto/bcrypt"

// CheckPasswordHash 检查密码是否与哈希匹配
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
