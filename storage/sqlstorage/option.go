package sqlstorage

import "go.uber.org/zap"

type options struct {
	logger     *zap.Logger
	BatchCount int
	fields     func(taskName, ruleName string) []string
}

var defaultOptions = options{
	logger:     zap.NewNop(),
	BatchCount: 100,
}

type Option func(opts *options)

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

func WithBatchCount(batchCount int) Option {
	return func(opts *options) {
		opts.BatchCount = batchCount
	}
}

// 根据任务名和规则名查询输出字段
func WithFields(fields func(taskName, ruleName string) []string) Option {
	return func(opts *options) {
		opts.fields = fields
	}
}
