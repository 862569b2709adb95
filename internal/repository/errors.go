package repository

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// isDuplicateKey 判断是否为唯一索引冲突
// TranslateError 已开启时驱动会返回 gorm.ErrDuplicatedKey，这里兼容未翻译的原始错误
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // sqlite
		strings.Contains(msg, "Duplicate entry") || // mysql
		strings.Contains(msg, "duplicate key value") // postgres
}

// isNotFound 判断是否为记录不存在
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// likePattern 构造子串匹配模式，小写规则与 model.BuildSearchKey 一致，'!' 作为转义符
func likePattern(query string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(strings.ToLower(query)) + "%"
}
