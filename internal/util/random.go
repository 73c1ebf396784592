package util

import (
	"crypto/rand"
	"math/big"
)

const accessTokenAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789" // 去掉易混淆的 I/O/0/1

// GenerateAccessToken 生成班级入班码，如 "ABC123"
func GenerateAccessToken(length int) string {
	out := make([]byte, length)
	max := big.NewInt(int64(len(accessTokenAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand 基本不会失败；兜底取固定字符
			out[i] = accessTokenAlphabet[0]
			continue
		}
		out[i] = accessTokenAlphabet[n.Int64()]
	}
	return string(out)
}

// GenerateRandomString 生成小写字母数字随机串，用于文件名等
func GenerateRandomString(length int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	out := make([]byte, length)
	max := big.NewInt(int64(len(alphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			out[i] = alphabet[0]
			continue
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out)
}
