package collect

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"time"

	"trf5-crawler/storage"
)

var ErrMaxDepth = errors.New("max depth limit reached")

type Request struct {
	Task     *Task
	Url      string
	Method   string
	Depth    int64
	Priority int64
	RuleName string
}

type ParseResult struct {
	Requests []*Request    //当前url请求中，包含的新的请求
	Items    []interface{} //获取到的数据
}

func (r *Request) CheckDepth() error {
	if r.Task != nil && r.Task.MaxDepth > 0 && r.Depth > r.Task.MaxDepth {
		return fmt.Errorf("%w: depth %d of %s", ErrMaxDepth, r.Depth, r.Url)
	}
	return nil
}

// 请求的唯一识别码
func (r *Request) Unique() string {
	block := md5.Sum([]byte(r.Url + r.Method))
	return hex.EncodeToString(block[:])
}

// 由当前请求派生出新的请求，相对地址基于当前页面解析
func (r *Request) Follow(href, ruleName string) (*Request, error) {
	base, err := url.Parse(r.Url)
	if err != nil {
		return nil, err
	}
	ref, err := url.Parse(href)
	if err != nil {
		return nil, err
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	return &Request{
		Task:     r.Task,
		Url:      resolved.String(),
		Method:   "GET",
		Depth:    r.Depth + 1,
		RuleName: ruleName,
	}, nil
}

type Context struct {
	Body []byte
	Req  *Request
}

func (c *Context) Output(data interface{}) *storage.DataCell {
	res := &storage.DataCell{}
	res.Data = make(map[string]interface{})
	if c.Req.Task != nil {
		res.Data["Task"] = c.Req.Task.Name
	}
	res.Data["Rule"] = c.Req.RuleName
	res.Data["Data"] = data
	res.Data["Url"] = c.Req.Url
	res.Data["Time"] = time.Now().Format("2006-01-02 15:04:05")
	return res
}
