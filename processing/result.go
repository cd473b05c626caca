package processing

import (
	"time"

	"itemhub/domain/item"
)

// Result 一次成功批处理的汇总
//
// Items 为本次实际处理的 Item（按 ID 升序），执行期间被删除的 Item 计入 Skipped。
type Result struct {
	RunID     string        `json:"run_id"`
	Items     []*item.Item  `json:"items"`
	Requested int           `json:"requested"`
	Skipped   int           `json:"skipped"`
	Duration  time.Duration `json:"duration"`
}

// Processed 成功处理的数量
func (r *Result) Processed() int {
	if r == nil {
		return 0
	}
	return len(r.Items)
}

// IDs 已处理 Item 的 ID 列表
func (r *Result) IDs() []int64 {
	if r == nil {
		return nil
	}
	ids := make([]int64, len(r.Items))
	for i, it := range r.Items {
		ids[i] = it.ID
	}
	return ids
}
