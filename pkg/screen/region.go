// Package screen 提供屏幕区域推导与截图功能
package screen

import (
	"fmt"

	"github.com/go-vgo/robotgo"
)

// Region 屏幕矩形区域（像素）
type Region struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// String 便于日志输出
func (r Region) String() string {
	return fmt.Sprintf("%dx%d@(%d,%d)", r.Width, r.Height, r.Left, r.Top)
}

// DeriveRegion 根据指针位置与配置推导采集区域
// 区域以 (pointerX-marginX, pointerY-marginY) 为左上角，并收缩到显示器范围内：
// 先把左上角压回 0，再在右/下越界时整体左移/上移，最后把尺寸截断到显示器大小
func DeriveRegion(pointerX, pointerY, width, height, marginX, marginY, monitorW, monitorH int) Region {
	if width > monitorW {
		width = monitorW
	}
	if height > monitorH {
		height = monitorH
	}

	left := pointerX - marginX
	if left < 0 {
		left = 0
	}
	top := pointerY - marginY
	if top < 0 {
		top = 0
	}

	if left+width > monitorW {
		left = monitorW - width
	}
	if top+height > monitorH {
		top = monitorH - height
	}

	return Region{Left: left, Top: top, Width: width, Height: height}
}

// PointerRegion 以当前鼠标指针为基准推导采集区域
func PointerRegion(width, height, marginX, marginY int) Region {
	x, y := robotgo.Location()
	monW, monH := GetScreenSize()
	return DeriveRegion(x, y, width, height, marginX, marginY, monW, monH)
}

// GetScreenSize 获取主显示器尺寸（物理像素，与截图分辨率一致）
func GetScreenSize() (width, height int) {
	return robotgo.GetScreenSize()
}

// GetDisplayCount 获取显示器数量
func GetDisplayCount() int {
	return robotgo.DisplaysNum()
}
