package ocr

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/mtscan/mtscanner/internal/logger"
)

// TextRecognizer OCR 识别器
// 包装底层引擎，串行化调用并记录耗时
type TextRecognizer struct {
	engine Engine
	mu     sync.Mutex
}

// NewTextRecognizer 根据配置创建 OCR 识别器
func NewTextRecognizer(cfg Config) (*TextRecognizer, error) {
	engine, err := NewEngine(cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("OCR 引擎初始化成功: %s", cfg.Engine)

	return &TextRecognizer{engine: engine}, nil
}

// WrapEngine 包装已有引擎为识别器
func WrapEngine(engine Engine) *TextRecognizer {
	return &TextRecognizer{engine: engine}
}

// GetText 识别图像中的所有文字
// 底层引擎不保证并发安全，调用串行化
func (r *TextRecognizer) GetText(img image.Image) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	startTime := time.Now()

	text, err := r.engine.Recognize(img)
	elapsed := float64(time.Since(startTime).Milliseconds())
	if err != nil {
		logger.LogEvent("OCR", false, elapsed, "识别失败")
		return "", fmt.Errorf("OCR 识别失败: %w", err)
	}

	logger.LogEvent("OCR", true, elapsed, fmt.Sprintf("识别到 %d 个字符", len([]rune(text))))
	return text, nil
}

// Close 释放资源
func (r *TextRecognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.engine != nil {
		err := r.engine.Close()
		r.engine = nil
		return err
	}
	return nil
}
