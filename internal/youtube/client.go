package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"yt-network-go/internal/cache"
	"yt-network-go/internal/config"
	"yt-network-go/internal/crawler"
	"yt-network-go/internal/logger"
	"yt-network-go/internal/proxy"

	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

const (
	platform       = "youtube"
	defaultBaseURL = "https://www.googleapis.com/youtube/v3"
	apiKeyHeader   = "X-Goog-Api-Key"

	maxThreadResults = 100
	maxSearchResults = 50
	maxVideoIDs      = 50
)

// API is the subset of the Data API v3 the collectors use. Every call takes
// the credential explicitly so rotation stays with the caller.
type API interface {
	CommentThreads(ctx context.Context, key string, p ThreadParams) (ThreadPage, error)
	Replies(ctx context.Context, key, parentID, pageToken string) (ReplyPage, error)
	Search(ctx context.Context, key string, p SearchParams, pageToken string) (SearchPage, error)
	Videos(ctx context.Context, key string, ids []string, pageToken string) (VideoPage, error)
}

// PageRecorder receives the raw body of every page returned by the API.
type PageRecorder interface {
	Record(kind string, body []byte) error
}

type Options struct {
	BaseURL        string
	Timeout        time.Duration
	RetryWait      time.Duration
	RequestsPerSec float64
	// Proxy picks the egress proxy of each request; nil goes direct.
	Proxy func(*http.Request) (*url.URL, error)

	Cache    cache.Cache
	CacheTTL time.Duration
	Metrics  *crawler.Metrics
	Recorder PageRecorder
}

type Client struct {
	httpClient *resty.Client
	cache      cache.Cache
	cacheTTL   time.Duration
	metrics    *crawler.Metrics
	recorder   PageRecorder
}

func NewClient(opts Options) *Client {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	hc := &http.Client{Timeout: timeout}
	if opts.Proxy != nil {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.Proxy = opts.Proxy
		hc.Transport = tr
	}
	wait := opts.RetryWait
	if wait <= 0 {
		wait = 2 * time.Second
	}
	rc := resty.NewWithClient(hc)
	rc.SetBaseURL(base)
	rc.SetHeader("accept", "application/json")
	// equal min and max wait pin the backoff to one fixed pause
	rc.SetRetryCount(1)
	rc.SetRetryWaitTime(wait)
	rc.SetRetryMaxWaitTime(wait)
	rc.AddRetryCondition(retryable)

	c := &Client{
		httpClient: rc,
		cache:      opts.Cache,
		cacheTTL:   opts.CacheTTL,
		metrics:    opts.Metrics,
		recorder:   opts.Recorder,
	}
	if opts.RequestsPerSec > 0 {
		limiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSec), 1)
		rc.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}
	return c
}

func NewClientFromConfig(cfg config.Config, pc cache.Cache, m *crawler.Metrics, rec PageRecorder) *Client {
	var egress func(*http.Request) (*url.URL, error)
	if sw := proxy.FromConfig(cfg); sw != nil {
		egress = sw.ProxyFunc
	}
	return NewClient(Options{
		BaseURL:        cfg.APIBaseURL,
		Timeout:        time.Duration(cfg.HttpTimeoutSec) * time.Second,
		RetryWait:      time.Duration(cfg.HttpRetryWaitMs) * time.Millisecond,
		RequestsPerSec: cfg.RequestsPerSec,
		Proxy:          egress,
		Cache:          pc,
		CacheTTL:       cache.TTL(cfg),
		Metrics:        m,
		Recorder:       rec,
	})
}

func (c *Client) CommentThreads(ctx context.Context, key string, p ThreadParams) (ThreadPage, error) {
	if strings.TrimSpace(p.VideoID) == "" {
		return ThreadPage{}, crawler.Error{Kind: crawler.ErrorKindInvalidInput, Platform: platform, Msg: "empty video id"}
	}
	size := p.MaxResults
	if size <= 0 || size > maxThreadResults {
		size = maxThreadResults
	}
	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("videoId", p.VideoID)
	q.Set("textFormat", "plainText")
	q.Set("maxResults", strconv.Itoa(size))
	if p.Order != "" {
		q.Set("order", p.Order)
	}
	setToken(q, p.PageToken)

	var out ThreadPage
	err := c.get(ctx, "commentThreads", "comments_"+p.VideoID, key, q, &out)
	return out, err
}

func (c *Client) Replies(ctx context.Context, key, parentID, pageToken string) (ReplyPage, error) {
	if strings.TrimSpace(parentID) == "" {
		return ReplyPage{}, crawler.Error{Kind: crawler.ErrorKindInvalidInput, Platform: platform, Msg: "empty parent id"}
	}
	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("parentId", parentID)
	q.Set("textFormat", "plainText")
	q.Set("maxResults", strconv.Itoa(maxThreadResults))
	setToken(q, pageToken)

	var out ReplyPage
	err := c.get(ctx, "comments", "replies_"+parentID, key, q, &out)
	return out, err
}

func (c *Client) Search(ctx context.Context, key string, p SearchParams, pageToken string) (SearchPage, error) {
	query := strings.TrimSpace(p.Query)
	if query == "" {
		return SearchPage{}, crawler.Error{Kind: crawler.ErrorKindInvalidInput, Platform: platform, Msg: "empty search query"}
	}
	q := url.Values{}
	q.Set("part", "id")
	q.Set("type", "video")
	q.Set("q", query)
	q.Set("maxResults", strconv.Itoa(maxSearchResults))
	q.Set("safeSearch", "none")
	if p.RegionCode != "" {
		q.Set("regionCode", p.RegionCode)
	}
	if p.RelevanceLanguage != "" {
		q.Set("relevanceLanguage", p.RelevanceLanguage)
	}
	setToken(q, pageToken)

	var out SearchPage
	err := c.get(ctx, "search", "search_"+slugify(query), key, q, &out)
	return out, err
}

func (c *Client) Videos(ctx context.Context, key string, ids []string, pageToken string) (VideoPage, error) {
	if len(ids) == 0 {
		return VideoPage{}, nil
	}
	if len(ids) > maxVideoIDs {
		return VideoPage{}, crawler.Error{Kind: crawler.ErrorKindInvalidInput, Platform: platform, Msg: fmt.Sprintf("videos.list takes at most %d ids, got %d", maxVideoIDs, len(ids))}
	}
	q := url.Values{}
	q.Set("part", "snippet,statistics,contentDetails")
	q.Set("id", strings.Join(ids, ","))
	q.Set("maxResults", strconv.Itoa(maxVideoIDs))
	setToken(q, pageToken)

	var out VideoPage
	err := c.get(ctx, "videos", "videos_list", key, q, &out)
	return out, err
}

func setToken(q url.Values, token string) {
	if token != "" {
		q.Set("pageToken", token)
	}
}

// get issues one GET against endpoint and decodes the body into out. The
// credential travels in a header and never takes part in the cache key.
func (c *Client) get(ctx context.Context, endpoint, kind, key string, q url.Values, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cacheKey := endpoint + "?" + q.Encode()

	if body, ok := c.cached(ctx, cacheKey); ok {
		c.metrics.ObserveCacheHit()
		c.record(kind, body)
		return decode(endpoint, body, out)
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader(apiKeyHeader, key).
		SetQueryParamsFromValues(q).
		Get("/" + endpoint)
	if err == nil && resp.StatusCode() != http.StatusOK {
		err = classify(endpoint, resp.StatusCode(), resp.Body())
		logger.Debug("youtube api error", "endpoint", endpoint, "status", resp.StatusCode(), "error_kind", crawler.KindOf(err))
	}
	c.metrics.ObserveRequest(endpoint, err)
	if err != nil {
		return err
	}
	body := resp.Body()

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, body, c.cacheTTL); err != nil {
			logger.Warn("page cache write failed", "endpoint", endpoint, "err", err)
		}
	}
	c.record(kind, body)
	return decode(endpoint, body, out)
}

func (c *Client) cached(ctx context.Context, key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	body, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("page cache read failed", "err", err)
		return nil, false
	}
	return body, ok
}

func (c *Client) record(kind string, body []byte) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.Record(kind, body); err != nil {
		logger.Warn("raw page not saved", "kind", kind, "err", err)
	}
}

func decode(endpoint string, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return crawler.Error{Kind: crawler.ErrorKindHTTP, Platform: platform, URL: endpoint, Msg: "malformed response", Err: err}
	}
	return nil
}

// retryable allows the one retry for transport faults, 5xx/408 answers and
// short-term rate limiting. Quota answers go to credential rotation instead.
func retryable(resp *resty.Response, err error) bool {
	if err != nil {
		return crawler.ShouldRetryError(err)
	}
	if resp == nil || resp.StatusCode() == http.StatusOK {
		return false
	}
	if crawler.ShouldRetryStatus(resp.StatusCode()) {
		return true
	}
	return crawler.KindOf(classify("", resp.StatusCode(), resp.Body())) == crawler.ErrorKindRateLimited
}

func slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	return strings.Trim(b.String(), "_")
}
