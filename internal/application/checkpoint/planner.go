// Package checkpoint 实现按阅读百分比生成摘要与人物列表的核心管道
package checkpoint

import (
	"fmt"
)

// Checkpoint 单个检查点：百分比与对应前缀在全文中的末偏移（按 rune 计）
type Checkpoint struct {
	Percent   int `json:"percent"`
	EndOffset int `json:"end_offset"`
}

// Plan 计算检查点序列
// 百分比从 step 到 100（含）按 step 递增，end = floor(len*p/100)。
// 相邻百分比落在同一偏移时只保留第一个，保证不会把两个边界相同的
// 切片交给生成器；全文长度为 0 时返回空计划。
func Plan(fullTextLength, step int) ([]Checkpoint, error) {
	if step < 1 || step > 100 {
		return nil, fmt.Errorf("step must be in [1,100], got %d", step)
	}
	if fullTextLength < 0 {
		return nil, fmt.Errorf("full text length must be >= 0, got %d", fullTextLength)
	}

	plan := make([]Checkpoint, 0, 100/step)
	lastEnd := 0
	for p := step; p <= 100; p += step {
		end := fullTextLength * p / 100
		if end == lastEnd {
			continue
		}
		plan = append(plan, Checkpoint{Percent: p, EndOffset: end})
		lastEnd = end
	}
	return plan, nil
}
