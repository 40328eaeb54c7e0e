package screen

import (
	"fmt"
	"image"

	"github.com/go-vgo/robotgo"
)

// Capturer 屏幕区域采集接口
// 工作协程通过该接口截屏，测试中以内存图像替代真实屏幕
type Capturer interface {
	Capture(r Region) (image.Image, error)
}

// RobotCapturer 基于 robotgo 的真实屏幕采集
type RobotCapturer struct{}

// NewCapturer 创建默认屏幕采集器
func NewCapturer() *RobotCapturer {
	return &RobotCapturer{}
}

// Capture 截取屏幕区域
func (c *RobotCapturer) Capture(r Region) (image.Image, error) {
	if r.Width <= 0 || r.Height <= 0 {
		return nil, fmt.Errorf("非法采集区域: %s", r)
	}
	img, err := robotgo.CaptureImg(r.Left, r.Top, r.Width, r.Height)
	if err != nil {
		return nil, fmt.Errorf("截取区域失败: %w", err)
	}
	return img, nil
}

// CaptureScreen 截取全屏
func CaptureScreen() (image.Image, error) {
	img, err := robotgo.CaptureImg()
	if err != nil {
		return nil, fmt.Errorf("截屏失败: %w", err)
	}
	return img, nil
}
