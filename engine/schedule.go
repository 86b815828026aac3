package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"trf5-crawler/collect"
	"trf5-crawler/storage"

	"go.uber.org/zap"
)

// 全局爬虫任务实例
var Store = &CrawlerStore{
	list: []*collect.Task{},
	hash: map[string]*collect.Task{},
}

type CrawlerStore struct {
	mu   sync.RWMutex
	list []*collect.Task
	hash map[string]*collect.Task
}

func (c *CrawlerStore) Add(task *collect.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.hash[task.Name]; !ok {
		c.list = append(c.list, task)
	}
	c.hash[task.Name] = task
}

func (c *CrawlerStore) Get(name string) (*collect.Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	task, ok := c.hash[name]
	return task, ok
}

// 查询任务规则的输出字段，用于存储建表
func GetFields(taskName string, ruleName string) []string {
	task, ok := Store.Get(taskName)
	if !ok {
		return nil
	}
	rule, ok := task.Rule.Trunk[ruleName]
	if !ok {
		return nil
	}
	return rule.ItemFields
}

type Crawler struct {
	out chan collect.ParseResult
	// 存储请求的唯一标识
	Visited     map[string]bool
	VisitedLock sync.Mutex
	failures    map[string]*collect.Request // 失败请求id -> 失败请求
	failureLock sync.Mutex
	// 尚未处理完的请求数量，归零时任务结束
	inflight atomic.Int64
	stop     context.CancelFunc
	options
}

type Scheduler interface {
	Schedule(ctx context.Context)
	Push(...*collect.Request)
	Pull(ctx context.Context) (*collect.Request, bool)
}

type ScheduleEngine struct {
	requestCh   chan *collect.Request
	workerCh    chan *collect.Request
	done        chan struct{}
	reqQueue    []*collect.Request
	priReqQueue []*collect.Request
}

func NewEngine(opts ...Option) *Crawler {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	e := &Crawler{}
	e.Visited = make(map[string]bool, 100)
	e.failures = make(map[string]*collect.Request)
	e.out = make(chan collect.ParseResult)
	e.options = options
	if e.scheduler == nil {
		e.scheduler = NewSchedule()
	}
	return e
}

func NewSchedule() *ScheduleEngine {
	s := &ScheduleEngine{}
	s.requestCh = make(chan *collect.Request)
	s.workerCh = make(chan *collect.Request)
	s.done = make(chan struct{})
	return s
}

// Run 调度种子请求并阻塞到所有请求处理完毕或 ctx 被取消
func (e *Crawler) Run(ctx context.Context) error {
	reqs, err := e.seedRequests()
	if err != nil {
		return err
	}
	if len(reqs) == 0 {
		e.Logger.Warn("no seed requests")
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	e.stop = cancel

	go e.scheduler.Schedule(ctx)

	if e.WorkCount < 1 {
		e.WorkCount = 1
	}
	var workers sync.WaitGroup
	for i := 0; i < e.WorkCount; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			e.CreateWork(ctx)
		}()
	}

	handled := make(chan struct{})
	go func() {
		defer close(handled)
		e.HandleResult()
	}()

	e.push(reqs...)

	<-ctx.Done()
	workers.Wait()
	close(e.out)
	<-handled

	if f, ok := e.Storage.(storage.Flusher); ok {
		if err := f.Flush(); err != nil {
			e.Logger.Error("flush storage failed", zap.Error(err))
			return err
		}
	}
	return nil
}

func (s *ScheduleEngine) Push(reqs ...*collect.Request) {
	for _, req := range reqs {
		select {
		case s.requestCh <- req:
		case <-s.done:
			return
		}
	}
}

func (s *ScheduleEngine) Pull(ctx context.Context) (*collect.Request, bool) {
	select {
	case r := <-s.workerCh:
		return r, true
	case <-ctx.Done():
		return nil, false
	}
}

// 从请求通道s.requestCh和优先队列s.priReqQueue取请求到reqQueue，送到s.workerCh等待执行
func (s *ScheduleEngine) Schedule(ctx context.Context) {
	defer close(s.done)
	// 放在请求外部，防止取到req后，没有走case ch <- req导致请求丢失的情况
	var req *collect.Request
	var ch chan *collect.Request
	for {
		if req == nil && len(s.priReqQueue) > 0 {
			req = s.priReqQueue[0]
			s.priReqQueue = s.priReqQueue[1:]
			ch = s.workerCh
		}
		if req == nil && len(s.reqQueue) > 0 {
			req = s.reqQueue[0]
			s.reqQueue = s.reqQueue[1:]
			ch = s.workerCh
		}
		select {
		case r := <-s.requestCh:
			if r.Priority > 0 {
				s.priReqQueue = append(s.priReqQueue, r)
			} else {
				s.reqQueue = append(s.reqQueue, r)
			}
		case ch <- req:
			req = nil
			ch = nil
		case <-ctx.Done():
			return
		}
	}
}

// 从seeds中取得Requests
func (e *Crawler) seedRequests() ([]*collect.Request, error) {
	var reqs []*collect.Request
	for _, seed := range e.Seeds {
		task := seed
		if task.Rule.Root == nil {
			// 只给了任务名时，从Store中取得具体task
			registered, ok := Store.Get(seed.Name)
			if !ok {
				e.Logger.Error("task not registered", zap.String("task", seed.Name))
				continue
			}
			task = registered
		}
		if seed.Fetcher != nil {
			task.Fetcher = seed.Fetcher
		}
		if task.Fetcher == nil {
			task.Fetcher = e.Fetcher
		}
		// 获取初始任务的 种子请求（初始url）
		rootreqs, err := task.Rule.Root()
		if err != nil {
			e.Logger.Error("get root failed", zap.String("task", task.Name), zap.Error(err))
			return nil, err
		}
		// 将请求和任务关联
		for _, req := range rootreqs {
			req.Task = task
		}
		reqs = append(reqs, rootreqs...)
	}
	return reqs, nil
}

func (e *Crawler) push(reqs ...*collect.Request) {
	if len(reqs) == 0 {
		return
	}
	e.inflight.Add(int64(len(reqs)))
	go e.scheduler.Push(reqs...)
}

func (e *Crawler) finish() {
	if e.inflight.Add(-1) == 0 {
		e.stop()
	}
}

// 从s.workerCh取请求执行，结果放到s.out
func (e *Crawler) CreateWork(ctx context.Context) {
	for {
		r, ok := e.scheduler.Pull(ctx)
		if !ok {
			return
		}
		e.process(ctx, r)
		e.finish()
	}
}

func (e *Crawler) process(ctx context.Context, r *collect.Request) {
	if err := r.CheckDepth(); err != nil {
		e.Logger.Error("check depth failed", zap.Error(err))
		return
	}
	// 判断当前请求是否已被访问，并设置为已访问
	if !e.markVisited(r) && !r.Task.Reload {
		e.Logger.Debug("request has visited", zap.String("url", r.Url))
		return
	}

	if r.Task.Limit != nil {
		if err := r.Task.Limit.Wait(ctx); err != nil {
			return
		}
	}

	body, err := r.Task.Fetcher.Get(ctx, r)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		e.Logger.Error("can't fetch ", zap.Error(err), zap.String("url", r.Url))
		e.SetFailure(r)
		return
	}
	if r.Task.WaitTime > 0 {
		select {
		case <-time.After(r.Task.WaitTime):
		case <-ctx.Done():
		}
	}

	// 当前请求解析规则
	rule, ok := r.Task.Rule.Trunk[r.RuleName]
	if !ok {
		e.Logger.Error("rule not found", zap.String("rule", r.RuleName), zap.String("url", r.Url))
		return
	}

	result, err := rule.ParseFunc(&collect.Context{Body: body, Req: r})
	if err != nil {
		e.Logger.Error("ParseFunc failed ", zap.Error(err), zap.String("url", r.Url))
	}

	e.push(result.Requests...)

	if len(result.Items) > 0 {
		e.out <- result
	}
}

func (e *Crawler) HandleResult() {
	for result := range e.out {
		for _, item := range result.Items {
			switch d := item.(type) {
			case *storage.DataCell:
				if e.Storage == nil {
					e.Logger.Sugar().Info("get result: ", d.GetItem())
					continue
				}
				if err := e.Storage.Save(d); err != nil {
					e.Logger.Error("save item failed", zap.String("url", d.GetURL()), zap.Error(err))
				}
			default:
				e.Logger.Sugar().Info("get result: ", item)
			}
		}
	}
}

// 检查与标记在同一把锁内完成，返回是否首次访问
func (e *Crawler) markVisited(r *collect.Request) bool {
	e.VisitedLock.Lock()
	defer e.VisitedLock.Unlock()
	unique := r.Unique()
	if e.Visited[unique] {
		return false
	}
	e.Visited[unique] = true
	return true
}

// 首次失败时重新执行一次，再次失败则放弃
func (e *Crawler) SetFailure(req *collect.Request) {
	e.failureLock.Lock()
	_, failedBefore := e.failures[req.Unique()]
	if !failedBefore {
		e.failures[req.Unique()] = req
	}
	e.failureLock.Unlock()

	if failedBefore {
		e.Logger.Warn("request failed twice, giving up", zap.String("url", req.Url))
		return
	}

	e.VisitedLock.Lock()
	delete(e.Visited, req.Unique())
	e.VisitedLock.Unlock()
	e.push(req)
}

// 至少失败过一次的请求
func (e *Crawler) Failures() []*collect.Request {
	e.failureLock.Lock()
	defer e.failureLock.Unlock()
	var out []*collect.Request
	for _, r := range e.failures {
		out = append(out, r)
	}
	return out
}
