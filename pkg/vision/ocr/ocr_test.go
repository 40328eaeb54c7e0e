package ocr

import (
	"image"
	"image/color"
	"image/draw"
	"os"
	"strings"
	"testing"

	goocr "github.com/getcharzp/go-ocr"
	"github.com/golang/freetype"
	"golang.org/x/image/font"
)

// findTestFont 在常见位置查找 TTF 字体
func findTestFont() string {
	candidates := []string{
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/TTF/DejaVuSans.ttf",
		"/usr/share/fonts/dejavu/DejaVuSans.ttf",
		"/System/Library/Fonts/Supplemental/Arial.ttf",
		"C:\\Windows\\Fonts\\arial.ttf",
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// renderTextImage 生成白底黑字的测试图片
func renderTextImage(t *testing.T, lines []string) image.Image {
	fontPath := findTestFont()
	if fontPath == "" {
		t.Skipf("跳过测试：未找到 TTF 字体")
	}

	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		t.Skipf("跳过测试：读取字体失败: %v", err)
	}
	fnt, err := freetype.ParseFont(fontBytes)
	if err != nil {
		t.Skipf("跳过测试：解析字体失败: %v", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, 480, 40+40*len(lines)))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(fnt)
	ctx.SetFontSize(24)
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img)
	ctx.SetSrc(image.NewUniform(color.Black))
	ctx.SetHinting(font.HintingFull)

	for i, line := range lines {
		pt := freetype.Pt(20, 36+40*i)
		if _, err := ctx.DrawString(line, pt); err != nil {
			t.Fatalf("绘制文字失败: %v", err)
		}
	}
	return img
}

func TestSplitLanguages(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"pol+eng", []string{"pol", "eng"}},
		{"pol", []string{"pol"}},
		{" pol + eng ", []string{"pol", "eng"}},
		{"", []string{"pol", "eng"}},
		{"++", []string{"pol", "eng"}},
	}

	for _, tt := range tests {
		got := splitLanguages(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("splitLanguages(%q) = %v, 期望 %v", tt.input, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("splitLanguages(%q)[%d] = %q, 期望 %q", tt.input, i, got[i], tt.want[i])
			}
		}
	}
}

func TestNewEngineUnknown(t *testing.T) {
	_, err := NewEngine(Config{Engine: "azure"})
	if err == nil {
		t.Fatal("未知引擎应返回错误")
	}
	if !strings.Contains(err.Error(), "azure") {
		t.Errorf("错误信息应包含引擎名: %v", err)
	}
}

func TestJoinResultLines(t *testing.T) {
	results := []goocr.RecResult{
		{Box: [4]int{10, 90, 200, 110}, Text: "Cena: 1000 Yang"},
		{Box: [4]int{10, 10, 200, 30}, Text: "Pergamin"},
		{Box: [4]int{10, 50, 200, 70}, Text: "  "},
		{Box: [4]int{10, 40, 200, 60}, Text: "Od Poziomu: 30"},
	}

	got := joinResultLines(results)
	want := "Pergamin\nOd Poziomu: 30\nCena: 1000 Yang"
	if got != want {
		t.Errorf("拼接结果 = %q, 期望 %q", got, want)
	}
}

func TestJoinResultLinesEmpty(t *testing.T) {
	if got := joinResultLines(nil); got != "" {
		t.Errorf("空结果应返回空串, 实际 %q", got)
	}
}

func TestTesseractRecognize(t *testing.T) {
	img := renderTextImage(t, []string{
		"Pergamin wojownika",
		"Cena: 1 500 Yang",
	})

	engine, err := NewTesseractEngine("eng")
	if err != nil {
		t.Skipf("跳过测试：Tesseract 初始化失败（可能未安装）: %v", err)
	}
	defer engine.Close()

	text, err := engine.Recognize(img)
	if err != nil {
		t.Skipf("跳过测试：Tesseract 识别失败: %v", err)
	}

	t.Logf("识别结果:\n%s", text)
	if !strings.Contains(strings.ToLower(text), "pergamin") {
		t.Errorf("识别结果应包含 'pergamin': %q", text)
	}
}

func TestTesseractRecognizeNil(t *testing.T) {
	engine, err := NewTesseractEngine("eng")
	if err != nil {
		t.Skipf("跳过测试：Tesseract 初始化失败: %v", err)
	}
	defer engine.Close()

	if _, err := engine.Recognize(nil); err == nil {
		t.Error("空图像应返回错误")
	}
}

func TestRecognizerWrapEngine(t *testing.T) {
	r := WrapEngine(stubEngine{text: "Miecz+9\nCena: 5 000 Yang"})
	defer r.Close()

	text, err := r.GetText(image.NewRGBA(image.Rect(0, 0, 10, 10)))
	if err != nil {
		t.Fatalf("识别失败: %v", err)
	}
	if text != "Miecz+9\nCena: 5 000 Yang" {
		t.Errorf("识别结果不符: %q", text)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Engine != EngineTesseract {
		t.Errorf("默认引擎应为 tesseract, 实际 %s", cfg.Engine)
	}
	if cfg.Language != "pol+eng" {
		t.Errorf("默认语言应为 pol+eng, 实际 %s", cfg.Language)
	}
	t.Logf("Paddle 默认配置:")
	t.Logf("  OnnxRuntimeLibPath: %s", cfg.Paddle.OnnxRuntimeLibPath)
	t.Logf("  DetModelPath: %s", cfg.Paddle.DetModelPath)
	t.Logf("  IsAvailable: %v", cfg.Paddle.IsAvailable())
}

// stubEngine 固定返回文本的测试引擎
type stubEngine struct {
	text string
}

func (s stubEngine) Recognize(img image.Image) (string, error) { return s.text, nil }
func (s stubEngine) Close() error                              { return nil }
