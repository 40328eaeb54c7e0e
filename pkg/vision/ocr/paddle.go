package ocr

import (
	"fmt"
	"image"
	"sort"
	"strings"

	goocr "github.com/getcharzp/go-ocr"
)

// PaddleEngine 基于 PaddleOCR (ONNX Runtime) 的 OCR 引擎
type PaddleEngine struct {
	engine goocr.Engine
}

// NewPaddleEngine 创建 PaddleOCR 引擎
// 模型文件缺失时返回错误
func NewPaddleEngine(cfg PaddleConfig) (*PaddleEngine, error) {
	if !cfg.IsAvailable() {
		return nil, fmt.Errorf("PaddleOCR 模型文件不完整: %s", cfg.DetModelPath)
	}

	engine, err := goocr.NewPaddleOcrEngine(goocr.Config{
		OnnxRuntimeLibPath: cfg.OnnxRuntimeLibPath,
		DetModelPath:       cfg.DetModelPath,
		RecModelPath:       cfg.RecModelPath,
		DictPath:           cfg.DictPath,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 PaddleOCR 引擎失败: %w", err)
	}

	return &PaddleEngine{engine: engine}, nil
}

// Recognize 识别图像中的文字
// PaddleOCR 返回无序的文本框，按纵坐标排序后拼接成多行文本
func (e *PaddleEngine) Recognize(img image.Image) (string, error) {
	if img == nil {
		return "", fmt.Errorf("输入图像为空")
	}

	results, err := e.engine.RunOCR(img)
	if err != nil {
		return "", fmt.Errorf("PaddleOCR 识别失败: %w", err)
	}

	return joinResultLines(results), nil
}

// Close 释放 PaddleOCR 引擎
func (e *PaddleEngine) Close() error {
	if e.engine != nil {
		e.engine.Destroy()
		e.engine = nil
	}
	return nil
}

// joinResultLines 按文本框纵坐标排序并拼接为多行文本
func joinResultLines(results []goocr.RecResult) string {
	sorted := make([]goocr.RecResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Box[1] < sorted[j].Box[1]
	})

	lines := make([]string, 0, len(sorted))
	for _, r := range sorted {
		if strings.TrimSpace(r.Text) != "" {
			lines = append(lines, r.Text)
		}
	}
	return strings.Join(lines, "\n")
}
