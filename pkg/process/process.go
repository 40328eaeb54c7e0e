// Package process 提供游戏客户端进程检测
package process

import (
	"fmt"
	"strings"

	"github.com/go-vgo/robotgo"
	"github.com/shirou/gopsutil/v4/process"
)

// ProcessInfo 进程信息
type ProcessInfo struct {
	PID  int    `json:"pid"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// FindProcess 按名称查找进程 (不区分大小写，支持部分匹配)
func FindProcess(name string) ([]ProcessInfo, error) {
	pids, err := process.Pids()
	if err != nil {
		return nil, fmt.Errorf("获取进程列表失败: %w", err)
	}

	name = strings.ToLower(name)
	var matches []ProcessInfo

	for _, pid := range pids {
		proc, err := process.NewProcess(pid)
		if err != nil {
			continue
		}

		procName, err := proc.Name()
		if err != nil {
			continue
		}

		if strings.Contains(strings.ToLower(procName), name) {
			exe, _ := proc.Exe()
			matches = append(matches, ProcessInfo{
				PID:  int(pid),
				Name: procName,
				Path: exe,
			})
		}
	}

	return matches, nil
}

// FindPIDsByName 按名称查找进程 PID
func FindPIDsByName(name string) ([]int, error) {
	pids, err := robotgo.FindIds(name)
	if err != nil {
		return nil, fmt.Errorf("查找进程失败: %w", err)
	}
	return pids, nil
}

// Gate 游戏客户端存活检测
// filter 为空时视为不限制
type Gate struct{}

// NewGate 创建进程检测器
func NewGate() *Gate {
	return &Gate{}
}

// Present 检查是否存在名称包含 filter 的进程
func (g *Gate) Present(filter string) bool {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return true
	}
	matches, err := FindProcess(filter)
	if err != nil {
		// 进程列表不可读时不阻断扫描
		return true
	}
	return len(matches) > 0
}
