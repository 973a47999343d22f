// Package rates looks up currency conversion multipliers from an external
// rate API, with an optional redis read-through cache in front.
package rates

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ejdotp/digiWallet/internal/metrics"
	"github.com/go-redis/redis/v8"
	"github.com/tidwall/gjson"
)

var (
	ErrUnknownCurrency = errors.New("unknown currency code")
	ErrUnavailable     = errors.New("rate source unavailable")
)

// Source yields the multiplier from the native currency to code.
type Source interface {
	Rate(ctx context.Context, code string) (float64, error)
}

type Client struct {
	http   *http.Client
	apiURL string
	apiKey string
	base   string
	cache  *redis.Client
	ttl    time.Duration
}

// New builds a client against a currencyapi-style endpoint. cache may be nil;
// lookups then always go to the network.
func New(apiURL, apiKey, baseCurrency string, cache *redis.Client, ttl time.Duration) *Client {
	return &Client{
		http:   &http.Client{Timeout: 10 * time.Second},
		apiURL: apiURL,
		apiKey: apiKey,
		base:   baseCurrency,
		cache:  cache,
		ttl:    ttl,
	}
}

func (c *Client) cacheKey(code string) string {
	return "rate:" + c.base + ":" + code
}

// validCode keeps untrusted input out of cache keys and gjson paths: exactly
// three uppercase letters, like every ISO 4217 code the API serves.
func validCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}

func (c *Client) Rate(ctx context.Context, code string) (float64, error) {
	if code == c.base {
		return 1, nil
	}
	if !validCode(code) {
		return 0, ErrUnknownCurrency
	}
	if c.apiKey == "" {
		return 0, ErrUnavailable
	}

	if c.cache != nil {
		if v, err := c.cache.Get(ctx, c.cacheKey(code)).Result(); err == nil {
			if rate, err := strconv.ParseFloat(v, 64); err == nil {
				metrics.RateLookupsTotal.WithLabelValues("hit").Inc()
				return rate, nil
			}
		}
	}

	rate, err := c.fetch(ctx, code)
	if err != nil {
		metrics.RateLookupsTotal.WithLabelValues("error").Inc()
		return 0, err
	}
	metrics.RateLookupsTotal.WithLabelValues("miss").Inc()

	if c.cache != nil {
		c.cache.Set(ctx, c.cacheKey(code), strconv.FormatFloat(rate, 'f', -1, 64), c.ttl)
	}
	return rate, nil
}

func (c *Client) fetch(ctx context.Context, code string) (float64, error) {
	q := url.Values{}
	q.Set("apikey", c.apiKey)
	q.Set("base_currency", c.base)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+q.Encode(), nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	v := gjson.GetBytes(body, "data."+code+".value")
	if !v.Exists() {
		return 0, ErrUnknownCurrency
	}
	return v.Float(), nil
}
