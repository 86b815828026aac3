package collect

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"trf5-crawler/proxy"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

type RestyConfig struct {
	Timeout   time.Duration
	Retries   int
	RetryWait time.Duration
	Proxy     proxy.ProxyFunc
	Logger    *zap.Logger
}

// 基于 resty 的抓取器，429 与 5xx 响应按退避重试
type RestyFetch struct {
	client *resty.Client
	logger *zap.Logger
}

func NewRestyFetch(cfg RestyConfig) *RestyFetch {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.Proxy != nil {
		transport.Proxy = cfg.Proxy
	}

	client := resty.New()
	client.SetTransport(transport)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("User-Agent", defaultUserAgent)
	client.SetHeader("Accept", "text/html,application/xhtml+xml")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	wait := cfg.RetryWait
	if wait <= 0 {
		wait = time.Second
	}
	client.SetRetryCount(cfg.Retries).
		SetRetryWaitTime(wait).
		SetRetryMaxWaitTime(10 * wait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if r == nil || r.Request == nil {
				return false
			}
			if err != nil {
				return r.Request.Context().Err() == nil
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RestyFetch{client: client, logger: logger}
}

func (f *RestyFetch) Get(ctx context.Context, request *Request) ([]byte, error) {
	req := f.client.R().SetContext(ctx)
	if request.Task != nil && len(request.Task.Cookie) > 0 {
		req.SetHeader("Cookie", request.Task.Cookie)
	}

	resp, err := req.Get(request.Url)
	if err != nil {
		f.logger.Error("fetch failed", zap.String("url", request.Url), zap.Error(err))
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode(), request.Url)
	}
	return decodeBytes(resp.Body(), resp.Header().Get("Content-Type"))
}

func decodeBytes(body []byte, contentType string) ([]byte, error) {
	e, _, _ := charset.DetermineEncoding(body, contentType)
	return e.NewDecoder().Bytes(body)
}
