package services

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	retry "github.com/avast/retry-go/v5"
	"github.com/dmitrijs2005/boostmanager/internal/logging"
	"github.com/dmitrijs2005/boostmanager/internal/netx"
	"github.com/dmitrijs2005/boostmanager/internal/server/config"
	"github.com/dmitrijs2005/boostmanager/internal/server/metrics"
	"github.com/dmitrijs2005/boostmanager/internal/server/ratecache"
	"github.com/tidwall/gjson"
)

// FallbackDollarRate is used whenever the live USD-BRL quote is unavailable.
const FallbackDollarRate = 5.4

const dollarRateKey = "usd-brl"

var ErrRatesUnavailable = errors.New("rates unavailable")

// RetryConfig tunes outbound retries.
type RetryConfig struct {
	Attempts uint
	Delay    time.Duration
	MaxDelay time.Duration
}

var defaultRetry = RetryConfig{Attempts: 3, Delay: 200 * time.Millisecond, MaxDelay: 2 * time.Second}

func newRetrier(ctx context.Context, rc RetryConfig) *retry.Retrier {
	return retry.New(
		retry.RetryIf(func(err error) bool {
			if ctx.Err() != nil {
				return false
			}
			var se *netx.StatusError
			if errors.As(err, &se) {
				return se.Temporary()
			}
			return true
		}),
		retry.Delay(rc.Delay),
		retry.MaxDelay(rc.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.Attempts(rc.Attempts),
		retry.LastErrorOnly(true),
	)
}

// CurrencyService fetches exchange rates and caches them.
type CurrencyService struct {
	client           *http.Client
	cache            ratecache.Cache
	logger           logging.Logger
	dollarRateURL    string
	exchangeRatesURL string
	ttl              time.Duration
	retry            RetryConfig
}

func NewCurrencyService(cfg *config.Config, cache ratecache.Cache, client *http.Client, logger logging.Logger) *CurrencyService {
	return &CurrencyService{
		client:           client,
		cache:            cache,
		logger:           logger,
		dollarRateURL:    cfg.DollarRateURL,
		exchangeRatesURL: cfg.ExchangeRatesURL,
		ttl:              cfg.RateCacheTTL,
		retry:            defaultRetry,
	}
}

func (s *CurrencyService) fetch(ctx context.Context, target string) ([]byte, error) {
	var body []byte
	err := newRetrier(ctx, s.retry).Do(func() error {
		b, err := netx.GetBody(ctx, s.client, target)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	return body, err
}

// ParseDollarRate extracts USDBRL.bid from an awesomeapi payload.
func ParseDollarRate(body []byte) (float64, bool) {
	bid := gjson.GetBytes(body, "USDBRL.bid")
	if !bid.Exists() {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(bid.String()), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// DollarRate returns the cached USD-BRL rate, fetching it on a miss. Any
// failure yields FallbackDollarRate.
func (s *CurrencyService) DollarRate(ctx context.Context) float64 {
	if v, ok, err := s.cache.Get(ctx, dollarRateKey); err == nil && ok {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			return rate
		}
	}
	return s.RefreshDollarRate(ctx)
}

// RefreshDollarRate fetches the live rate and stores it in the cache.
func (s *CurrencyService) RefreshDollarRate(ctx context.Context) float64 {
	body, err := s.fetch(ctx, s.dollarRateURL)
	if err != nil {
		s.logger.Warn(ctx, "dollar rate fetch failed, using fallback", "error", err)
		metrics.SetDollarRate(FallbackDollarRate)
		return FallbackDollarRate
	}
	rate, ok := ParseDollarRate(body)
	if !ok {
		s.logger.Warn(ctx, "dollar rate missing bid, using fallback")
		metrics.SetDollarRate(FallbackDollarRate)
		return FallbackDollarRate
	}
	if err := s.cache.Set(ctx, dollarRateKey, strconv.FormatFloat(rate, 'f', -1, 64), s.ttl); err != nil {
		s.logger.Warn(ctx, "dollar rate cache write failed", "error", err)
	}
	metrics.SetDollarRate(rate)
	return rate
}

// ExchangeRates returns the .rates object for base (default USD).
func (s *CurrencyService) ExchangeRates(ctx context.Context, base string) (map[string]float64, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	if base == "" {
		base = "USD"
	}
	key := "rates:" + base

	if v, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		return parseRates([]byte(v))
	}

	body, err := s.fetch(ctx, s.exchangeRatesURL+"?base="+url.QueryEscape(base))
	if err != nil {
		s.logger.Warn(ctx, "exchange rates fetch failed", "base", base, "error", err)
		return nil, ErrRatesUnavailable
	}
	rates := gjson.GetBytes(body, "rates")
	if !rates.IsObject() {
		return nil, ErrRatesUnavailable
	}
	if err := s.cache.Set(ctx, key, rates.Raw, s.ttl); err != nil {
		s.logger.Warn(ctx, "exchange rates cache write failed", "error", err)
	}
	return parseRates([]byte(rates.Raw))
}

func parseRates(raw []byte) (map[string]float64, error) {
	res := gjson.ParseBytes(raw)
	if !res.IsObject() {
		return nil, ErrRatesUnavailable
	}
	out := make(map[string]float64)
	res.ForEach(func(k, v gjson.Result) bool {
		if v.Type == gjson.Number {
			out[k.String()] = v.Float()
		}
		return true
	})
	return out, nil
}
