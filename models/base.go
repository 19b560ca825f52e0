package models

import (
	"github.com/google/uuid"
)

// StringList lưu danh sách id dạng JSON trong một cột text
type StringList []string

func (l StringList) Contains(s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}

// With trả về danh sách đã thêm s (không trùng) và cho biết có thay đổi hay không
func (l StringList) With(s string) (StringList, bool) {
	if l.Contains(s) {
		return l, false
	}
	out := make(StringList, 0, len(l)+1)
	out = append(out, l...)
	return append(out, s), true
}

// Without trả về danh sách đã bỏ mọi phần tử bằng s
func (l StringList) Without(s string) (StringList, bool) {
	out := make(StringList, 0, len(l))
	for _, v := range l {
		if v != s {
			out = append(out, v)
		}
	}
	return out, len(out) != len(l)
}

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// AllModels liệt kê các bảng cần AutoMigrate
func AllModels() []interface{} {
	return []interface{}{
		&Category{},
		&Discount{},
		&DiscountUsage{},
		&Product{},
		&ProductVariant{},
		&ProductLog{},
		&ProductAnalytic{},
		&Variant{},
		&Feedback{},
	}
}
