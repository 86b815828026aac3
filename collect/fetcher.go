package collect

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"trf5-crawler/proxy"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36"

type Fetcher interface {
	Get(ctx context.Context, req *Request) ([]byte, error)
}

type BaseFetch struct{}

func (BaseFetch) Get(ctx context.Context, req *Request) ([]byte, error) {
	r, err := http.NewRequestWithContext(ctx, http.MethodGet, req.Url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error status code:%d", resp.StatusCode)
	}
	return decodeBody(resp)
}

type BrowserFetch struct {
	Timeout time.Duration
	Proxy   proxy.ProxyFunc
	Logger  *zap.Logger
}

// 模拟浏览器访问
func (b BrowserFetch) Get(ctx context.Context, request *Request) ([]byte, error) {
	client := &http.Client{
		Timeout: b.Timeout,
	}
	if b.Proxy != nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = b.Proxy
		client.Transport = transport
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, request.Url, nil)
	if err != nil {
		return nil, fmt.Errorf("get url failed:%w", err)
	}

	if request.Task != nil && len(request.Task.Cookie) > 0 {
		req.Header.Set("Cookie", request.Task.Cookie)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := client.Do(req)
	if err != nil {
		if b.Logger != nil {
			b.Logger.Error("fetch failed", zap.String("url", request.Url), zap.Error(err))
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, request.Url)
	}
	return decodeBody(resp)
}

// 使用无头浏览器渲染页面，适用于依赖脚本生成内容的页面
type ChromeFetch struct {
	Timeout time.Duration
	Logger  *zap.Logger
}

func (c ChromeFetch) Get(ctx context.Context, request *Request) ([]byte, error) {
	cctx, cancel := chromedp.NewContext(ctx)
	defer cancel()
	if c.Timeout > 0 {
		cctx, cancel = context.WithTimeout(cctx, c.Timeout)
		defer cancel()
	}

	var body string
	err := chromedp.Run(cctx,
		chromedp.Navigate(request.Url),
		chromedp.OuterHTML("html", &body, chromedp.ByQuery),
	)
	if err != nil {
		if c.Logger != nil {
			c.Logger.Error("chrome fetch failed", zap.String("url", request.Url), zap.Error(err))
		}
		return nil, err
	}
	return []byte(body), nil
}

// 按 Content-Type 与页面内容判断编码，统一转换为 UTF-8
func decodeBody(resp *http.Response) ([]byte, error) {
	bodyReader := bufio.NewReader(resp.Body)
	e := DeterminEncoding(bodyReader, resp.Header.Get("Content-Type"))
	utf8Reader := transform.NewReader(bodyReader, e.NewDecoder())
	return io.ReadAll(utf8Reader)
}

func DeterminEncoding(r *bufio.Reader, contentType string) encoding.Encoding {
	bytes, err := r.Peek(1024)
	if err != nil && len(bytes) == 0 {
		return unicode.UTF8
	}
	e, _, _ := charset.DetermineEncoding(bytes, contentType)
	return e
}
