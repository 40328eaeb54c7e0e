package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine 基于 Tesseract 的 OCR 引擎
type TesseractEngine struct {
	client *gosseract.Client
}

// NewTesseractEngine 创建 Tesseract 引擎
// language 为语言提示，例如 "pol+eng"
func NewTesseractEngine(language string) (*TesseractEngine, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage(splitLanguages(language)...); err != nil {
		client.Close()
		return nil, fmt.Errorf("设置 Tesseract 语言失败: %w", err)
	}
	// 商店窗口是单个文字块，整块识别效果最好
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		client.Close()
		return nil, fmt.Errorf("设置 Tesseract 分页模式失败: %w", err)
	}

	return &TesseractEngine{client: client}, nil
}

// Recognize 识别图像中的文字
func (e *TesseractEngine) Recognize(img image.Image) (string, error) {
	if img == nil {
		return "", fmt.Errorf("输入图像为空")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("图像编码失败: %w", err)
	}

	if err := e.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("设置识别图像失败: %w", err)
	}

	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("Tesseract 识别失败: %w", err)
	}
	return text, nil
}

// Close 释放 Tesseract 客户端
func (e *TesseractEngine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}
