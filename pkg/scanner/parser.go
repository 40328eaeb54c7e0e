// Package scanner 实现市场商店窗口的扫描流水线: 截屏 -> 识别 -> 解析 -> 去重 -> 落盘
package scanner

import (
	"regexp"
	"strings"
)

// ParsedEntry 从识别文本解析出的商品条目
// Price 与 UnitPrice 为空指针表示未识别到
type ParsedEntry struct {
	Name      string
	Price     *int
	UnitPrice *int
}

var (
	// 价格行: "Cena: 1 234 Yang"，OCR 可能在数字间混入空格或点
	priceRe = regexp.MustCompile(`(?i)cena[: ]+([\d\s\.]+)\s*yang`)
	// 单价行: "za sztukę: 56 Yang" 或 "szt.: 56 Yang"
	unitPriceRe = regexp.MustCompile(`(?i)(za\s*sztuk[eę]|szt\.)[: ]+([\d\s\.]+)\s*yang`)
	// 非商品名的标记行，取名字时跳过
	nameSkipRe = regexp.MustCompile(`(?i)(Od Poziomu|Cena|Yang|kup przedmiot|kup wszystkie podobne)`)

	spaceRe = regexp.MustCompile(`[ \t]+`)
	digitRe = regexp.MustCompile(`\D`)
)

// NormalizeText 规范化 OCR 输出文本
// 长横线替换为连字符，连续空白折叠为单个空格，去除首尾空白
func NormalizeText(text string) string {
	text = strings.ReplaceAll(text, "—", "-")
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// ParseFields 从识别文本解析商品名、总价与单价
// 文本无有效行时三个字段均为空
func ParseFields(text string) ParsedEntry {
	var entry ParsedEntry

	lines := make([]string, 0, 8)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return entry
	}

	// 商品名通常在窗口顶部，取前 4 行中第一个非标记行
	entry.Name = lines[0]
	limit := len(lines)
	if limit > 4 {
		limit = 4
	}
	for _, line := range lines[:limit] {
		if !nameSkipRe.MatchString(line) {
			entry.Name = line
			break
		}
	}

	// 价格取最后一个匹配，窗口可能同时显示多件商品的残影
	if matches := priceRe.FindAllStringSubmatch(text, -1); len(matches) > 0 {
		entry.Price = parseAmount(matches[len(matches)-1][1])
	}
	if matches := unitPriceRe.FindAllStringSubmatch(text, -1); len(matches) > 0 {
		entry.UnitPrice = parseAmount(matches[len(matches)-1][2])
	}

	return entry
}

// parseAmount 去除非数字字符后解析金额
func parseAmount(raw string) *int {
	digits := digitRe.ReplaceAllString(raw, "")
	if digits == "" {
		return nil
	}
	value := 0
	for _, c := range digits {
		value = value*10 + int(c-'0')
	}
	return &value
}
