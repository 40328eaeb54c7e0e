package ocr

import (
	"fmt"
	"strings"
)

// NewEngine 根据配置创建 OCR 引擎
// 未知的引擎名返回错误
func NewEngine(cfg Config) (Engine, error) {
	engine := strings.ToLower(strings.TrimSpace(cfg.Engine))
	if engine == "" {
		engine = EngineTesseract
	}

	switch engine {
	case EngineTesseract:
		return NewTesseractEngine(cfg.Language)
	case EnginePaddle:
		return NewPaddleEngine(cfg.Paddle)
	default:
		return nil, fmt.Errorf("不支持的 OCR 引擎: %s", cfg.Engine)
	}
}

// splitLanguages 拆分语言提示字符串
// "pol+eng" -> ["pol", "eng"]，空串返回默认 ["pol", "eng"]
func splitLanguages(language string) []string {
	language = strings.TrimSpace(language)
	if language == "" {
		return []string{"pol", "eng"}
	}
	parts := strings.Split(language, "+")
	langs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			langs = append(langs, p)
		}
	}
	if len(langs) == 0 {
		return []string{"pol", "eng"}
	}
	return langs
}
