package service

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// TranscriptAccuracy 转写文本与课文的相似度，0-100。
// 按词比对，大小写与多余空白不计入差异
func TranscriptAccuracy(transcript, expected string) float64 {
	if strings.TrimSpace(expected) == "" || strings.TrimSpace(transcript) == "" {
		return 0
	}

	a := normalizeWords(transcript)
	b := normalizeWords(expected)

	matcher := difflib.NewMatcher(a, b)
	return matcher.Ratio() * 100
}

func normalizeWords(s string) []string {
	s = strings.ToLower(s)
	// 去掉常见标点，朗读评分只看词
	replacer := strings.NewReplacer(".", "", ",", "", "!", "", "?", "", ";", "", ":", "", "\"", "", "'", "")
	s = replacer.Replace(s)
	return strings.Fields(s)
}
