// Package ufrate resolves the daily value of the Unidad de Fomento, the
// Chilean inflation-indexed accounting unit some rental contracts are
// denominated in.
package ufrate

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Provider resolves UF values with a fixed fallback chain: a manually pinned
// value, the in-memory cache, the mindicador.cl API, a local config file, and
// finally a default. It never fails; degraded sources only lower precision.
type Provider struct {
	client *resty.Client
	logger *zap.Logger

	manual       decimal.Decimal
	configPath   string
	defaultValue decimal.Decimal

	mu    sync.Mutex
	cache map[string]decimal.Decimal
}

// Options configures a Provider. Zero values fall back to sensible defaults
// except DefaultValue, which callers must set from config.
type Options struct {
	BaseURL      string
	Timeout      time.Duration
	ManualValue  decimal.Decimal
	ConfigPath   string
	DefaultValue decimal.Decimal
}

func New(opts Options, logger *zap.Logger) *Provider {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://mindicador.cl/api"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json")

	return &Provider{
		client:       client,
		logger:       logger,
		manual:       opts.ManualValue,
		configPath:   opts.ConfigPath,
		defaultValue: opts.DefaultValue,
		cache:        make(map[string]decimal.Decimal),
	}
}

type indicatorResponse struct {
	Serie []struct {
		Fecha string  `json:"fecha"`
		Valor float64 `json:"valor"`
	} `json:"serie"`
}

type configFile struct {
	UF float64 `json:"uf"`
}

// Value returns the UF value for a date. Results are cached by day, so a
// quarter's worth of reports hits the API at most once per distinct date.
func (p *Provider) Value(date time.Time) decimal.Decimal {
	if p.manual.IsPositive() {
		return p.manual
	}

	key := date.Format("02-01-2006")

	p.mu.Lock()
	if v, ok := p.cache[key]; ok {
		p.mu.Unlock()
		return v
	}
	p.mu.Unlock()

	v, err := p.fetch(key)
	if err != nil {
		p.logger.Warn("uf api lookup failed, falling back",
			zap.String("date", key),
			zap.Error(err))
		v = p.fromConfigFile()
	}

	p.mu.Lock()
	p.cache[key] = v
	p.mu.Unlock()
	return v
}

func (p *Provider) fetch(ddmmyyyy string) (decimal.Decimal, error) {
	var out indicatorResponse
	// The indicator API does not always declare a JSON content type.
	resp, err := p.client.R().
		SetResult(&out).
		ForceContentType("application/json").
		Get("/uf/" + ddmmyyyy)
	if err != nil {
		return decimal.Zero, err
	}
	if resp.IsError() {
		return decimal.Zero, fmt.Errorf("uf api returned %s", resp.Status())
	}
	if len(out.Serie) == 0 || out.Serie[0].Valor <= 0 {
		return decimal.Zero, fmt.Errorf("uf api returned empty serie for %s", ddmmyyyy)
	}
	return decimal.NewFromFloat(out.Serie[0].Valor), nil
}

func (p *Provider) fromConfigFile() decimal.Decimal {
	if p.configPath != "" {
		data, err := os.ReadFile(p.configPath)
		if err == nil {
			var cfg configFile
			if err := json.Unmarshal(data, &cfg); err == nil && cfg.UF > 0 {
				return decimal.NewFromFloat(cfg.UF)
			}
		}
	}
	p.logger.Warn("using default uf value",
		zap.String("value", p.defaultValue.String()))
	return p.defaultValue
}

// RateFunc adapts the provider to the valuation layer's rate callback.
func (p *Provider) RateFunc() func(time.Time) decimal.Decimal {
	return p.Value
}
