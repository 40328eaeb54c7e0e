package scanner

import "regexp"

// Category 商品分类
type Category string

const (
	CategoryBook       Category = "book"
	CategoryScroll     Category = "scroll"
	CategorySoulstone4 Category = "soulstone+4"
	CategoryUpgrade    Category = "upgrade"
	CategoryOther      Category = "other"
)

// 分类规则按顺序匹配，命中即返回
var categoryRules = []struct {
	re       *regexp.Regexp
	category Category
}{
	{regexp.MustCompile(`(?i)ksi[eę]ga\s+umiej[eę]tno[sś]ci`), CategoryBook},
	{regexp.MustCompile(`(?i)pergamin`), CategoryScroll},
	{regexp.MustCompile(`(?i)kamie[nń]\s*duszy.*\+4`), CategorySoulstone4},
	{regexp.MustCompile(`(?i)ulepszacz`), CategoryUpgrade},
}

// Classify 根据商品名分类
func Classify(name string) Category {
	for _, rule := range categoryRules {
		if rule.re.MatchString(name) {
			return rule.category
		}
	}
	return CategoryOther
}
