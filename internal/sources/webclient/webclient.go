// Package webclient builds the HTTP clients offer sources fetch through. A
// client is created per session so that rotating the session also rotates
// cookies and the user agent.
package webclient

import (
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"sync/atomic"
	"time"

	"rentscan/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

type Options struct {
	RatePerSecond  float64  `json:"rate_per_second"`
	TimeoutSeconds int      `json:"timeout_seconds"`
	UserAgents     []string `json:"user_agents"`
	Proxy          string   `json:"proxy"`
}

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/136.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0",
}

// UserAgents hands out user agents round robin.
type UserAgents struct {
	list []string
	next atomic.Uint64
}

func NewUserAgents(list []string) *UserAgents {
	if len(list) == 0 {
		list = defaultUserAgents
	}
	return &UserAgents{list: list}
}

func (u *UserAgents) Next() string {
	n := u.next.Add(1) - 1
	return u.list[n%uint64(len(u.list))]
}

// New creates a resty client for baseUrl with its own cookie jar, paced by
// opts.RatePerSecond and instrumented under tracerName.
func New(baseUrl string, opts Options, userAgent string, tracerName string, tel telemetry.API) (*resty.Client, error) {
	parsedBaseUrl, err := url.Parse(baseUrl)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	client := resty.New()
	client.SetBaseURL(baseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)

	// the proxy must be set while the transport is still an *http.Transport
	if opts.Proxy != "" {
		client.SetProxy(opts.Proxy)
	}
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", userAgent)
	client.SetHeader("accept-language", "pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.7")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(parsedBaseUrl.Hostname()))

	timeout := time.Duration(opts.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client.SetTimeout(timeout)

	perSecond := opts.RatePerSecond
	if perSecond <= 0 {
		perSecond = 1
	}
	// burst >= 1 so that a single request is never refused
	rateLimiter := rate.NewLimiter(rate.Limit(perSecond), max(1, int(perSecond)))
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(client, tracerName, tel)
	return client, nil
}
