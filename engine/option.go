package engine

import (
	"trf5-crawler/collect"
	"trf5-crawler/storage"

	"go.uber.org/zap"
)

type options struct {
	WorkCount int
	Fetcher   collect.Fetcher
	Logger    *zap.Logger
	Seeds     []*collect.Task
	Storage   storage.Storage
	scheduler Scheduler
}

var defaultOptions = options{
	Logger:    zap.NewNop(),
	WorkCount: 1,
}

type Option func(opts *options)

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.Logger = logger
	}
}

func WithFetcher(fetcher collect.Fetcher) Option {
	return func(opts *options) {
		opts.Fetcher = fetcher
	}
}

func WithWorkCount(workCount int) Option {
	return func(opts *options) {
		opts.WorkCount = workCount
	}
}

func WithSeeds(seed []*collect.Task) Option {
	return func(opts *options) {
		opts.Seeds = seed
	}
}

func WithScheduler(scheduler Scheduler) Option {
	return func(opts *options) {
		opts.scheduler = scheduler
	}
}

func WithStorage(s storage.Storage) Option {
	return func(opts *options) {
		opts.Storage = s
	}
}
