package utils

import (
	"regexp"
	"strings"

	"github.com/fiam/gounidecode/unidecode"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// CreateSlug: phiên âm về ASCII, viết thường, gộp mọi cụm ký tự không phải chữ/số thành một dấu "-"
func CreateSlug(s string) string {
	s = strings.ToLower(unidecode.Unidecode(s))
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
