package utils

import "strings"

// joinCodeAlphabet 去掉了容易混淆的 0/O/1/I
const joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Intner 随机数来源
type Intner interface {
	Intn(n int) int
}

// GenerateJoinCode 生成指定长度的房间邀请码
func GenerateJoinCode(length int, rng Intner) string {
	if length <= 0 {
		length = 6
	}
	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		sb.WriteByte(joinCodeAlphabet[rng.Intn(len(joinCodeAlphabet))])
	}
	return sb.String()
}

// NormalizeJoinCode 统一邀请码格式
func NormalizeJoinCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidJoinCode 是否只包含邀请码字符
func ValidJoinCode(code string, length int) bool {
	if len(code) != length {
		return false
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(joinCodeAlphabet, code[i]) < 0 {
			return false
		}
	}
	return true
}
