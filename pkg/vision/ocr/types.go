// Package ocr 提供黑盒文字识别功能: 图像 -> 文本
package ocr

import (
	"image"
	"os"
	"path/filepath"
)

// Engine 黑盒 OCR 引擎
// 实现: TesseractEngine (默认), PaddleEngine
type Engine interface {
	// Recognize 识别图像中的文字，按行返回多行文本
	Recognize(img image.Image) (string, error)
	// Close 释放引擎资源
	Close() error
}

// 引擎名称
const (
	EngineTesseract = "tesseract"
	EnginePaddle    = "paddle"
)

// Config OCR 配置
type Config struct {
	// Engine 引擎名称: "tesseract" 或 "paddle"
	Engine string
	// Language Tesseract 语言提示，多语言以 + 连接，例如 "pol+eng"
	Language string
	// Paddle PaddleOCR 引擎配置，仅 Engine == "paddle" 时使用
	Paddle PaddleConfig
}

// PaddleConfig PaddleOCR 引擎配置
type PaddleConfig struct {
	// OnnxRuntimeLibPath ONNX Runtime 动态库路径
	OnnxRuntimeLibPath string
	// DetModelPath 检测模型路径
	DetModelPath string
	// RecModelPath 识别模型路径
	RecModelPath string
	// DictPath 字典文件路径
	DictPath string
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		Engine:   EngineTesseract,
		Language: "pol+eng",
		Paddle:   DefaultPaddleConfig(),
	}
}

// DefaultPaddleConfig 默认 PaddleOCR 配置
// 模型与动态库在可执行文件旁的 models 目录中查找
func DefaultPaddleConfig() PaddleConfig {
	execDir := getExecutableDir()
	modelsDir := filepath.Join(execDir, "models", "paddle_weights")
	return PaddleConfig{
		OnnxRuntimeLibPath: findOnnxRuntime(execDir),
		DetModelPath:       filepath.Join(modelsDir, "det.onnx"),
		RecModelPath:       filepath.Join(modelsDir, "rec.onnx"),
		DictPath:           filepath.Join(modelsDir, "dict.txt"),
	}
}

// IsAvailable 检查 PaddleOCR 模型文件是否齐全
func (c PaddleConfig) IsAvailable() bool {
	return fileExists(c.OnnxRuntimeLibPath) &&
		fileExists(c.DetModelPath) &&
		fileExists(c.RecModelPath) &&
		fileExists(c.DictPath)
}

// getExecutableDir 获取可执行文件所在目录
func getExecutableDir() string {
	execPath, err := os.Executable()
	if err != nil {
		return "."
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return "."
	}
	return filepath.Dir(execPath)
}

// findOnnxRuntime 在常见位置查找 ONNX Runtime 动态库
func findOnnxRuntime(execDir string) string {
	paths := []string{
		filepath.Join(execDir, "onnxruntime.dll"),
		filepath.Join(execDir, "libonnxruntime.so"),
		filepath.Join(execDir, "libonnxruntime.dylib"),
		filepath.Join(execDir, "models", "lib", "onnxruntime.dll"),
		filepath.Join(execDir, "models", "lib", "libonnxruntime.so"),
	}
	for _, p := range paths {
		if fileExists(p) {
			return p
		}
	}
	return paths[len(paths)-1]
}

// fileExists 检查文件是否存在
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
