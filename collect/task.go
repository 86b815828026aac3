package collect

import (
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// 任务的静态配置
type Property struct {
	Name     string        `json:"name"`
	Cookie   string        `json:"cookie"`
	WaitTime time.Duration `json:"wait_time"`
	Reload   bool          `json:"reload"` // 是否允许重复访问同一个页面
	MaxDepth int64         `json:"max_depth"`
}

// 一个任务实例
type Task struct {
	Property
	Rule    RuleTree
	Fetcher Fetcher
	Limit   *rate.Limiter
	Logger  *zap.Logger
}

func (t *Task) Log() *zap.Logger {
	if t == nil || t.Logger == nil {
		return zap.NewNop()
	}
	return t.Logger
}
