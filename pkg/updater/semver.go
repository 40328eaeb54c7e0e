package updater

import (
	"strconv"
	"strings"
)

// parseSemver 解析版本号为数字分量
// 任一分量无法解析时整体按 0.0.0 处理
func parseSemver(v string) []int {
	parts := strings.Split(strings.TrimSpace(v), ".")
	nums := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return []int{0, 0, 0}
		}
		nums = append(nums, n)
	}
	if len(nums) == 0 {
		return []int{0, 0, 0}
	}
	return nums
}

// compareVersions 逐分量比较版本号
// a < b 返回 -1，a > b 返回 1，相等返回 0，前缀相同时分量多者为大
func compareVersions(a, b string) int {
	av, bv := parseSemver(a), parseSemver(b)
	for i := 0; i < len(av) && i < len(bv); i++ {
		if av[i] != bv[i] {
			if av[i] < bv[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(av) < len(bv):
		return -1
	case len(av) > len(bv):
		return 1
	}
	return 0
}
