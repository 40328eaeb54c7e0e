package screen

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
)

// SavePNG 将图像保存为 PNG 文件，必要时创建目录
func SavePNG(path string, img image.Image) error {
	if img == nil {
		return fmt.Errorf("图像为空")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建文件失败: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("PNG 编码失败: %w", err)
	}
	return nil
}

// SaveJPEG 将图像保存为 JPEG 文件
// quality: 1-100，越界时取 80
func SaveJPEG(path string, img image.Image, quality int) error {
	if img == nil {
		return fmt.Errorf("图像为空")
	}
	if quality <= 0 || quality > 100 {
		quality = 80
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建文件失败: %w", err)
	}
	defer f.Close()

	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("JPEG 编码失败: %w", err)
	}
	return nil
}
