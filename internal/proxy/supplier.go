package proxy

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"resty.dev/v3"
)

const (
	checkTimeout     = 5 * time.Second
	checkConcurrency = 16
)

// ProxySupplier hands out outbound proxies for the scraper.
type ProxySupplier interface {
	// Get returns the next proxy URL, or "" when the scraper should connect directly.
	Get() string
	Len() int
}

type proxySupplier struct {
	mu      sync.Mutex
	proxies []string
	next    int
}

// NewProxySupplier checks every configured proxy against checkURL in parallel and
// keeps the working ones in their configured order. Without a checkURL the proxies
// are used unchecked.
func NewProxySupplier(ctx context.Context, proxies []string, checkURL string) ProxySupplier {
	if len(proxies) == 0 {
		return &proxySupplier{}
	}
	if checkURL == "" {
		log.Warnf("⚠️ No check URL, using %d proxies unchecked", len(proxies))
		return NewStaticSupplier(proxies...)
	}

	log.Infof("🔄 Checking %d proxies against %s...", len(proxies), checkURL)

	working := make([]bool, len(proxies))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(checkConcurrency)
	for i, proxyURL := range proxies {
		i, proxyURL := i, proxyURL
		g.Go(func() error {
			working[i] = checkProxy(gctx, proxyURL, checkURL)
			return nil
		})
	}
	_ = g.Wait()

	valid := make([]string, 0, len(proxies))
	for i, ok := range working {
		if ok {
			valid = append(valid, proxies[i])
		}
	}

	log.Infof("✅ %d of %d proxies are usable", len(valid), len(proxies))
	return &proxySupplier{proxies: valid}
}

// NewStaticSupplier rotates over proxies without checking them.
func NewStaticSupplier(proxies ...string) ProxySupplier {
	return &proxySupplier{proxies: proxies}
}

func (p *proxySupplier) Get() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	proxyURL := p.proxies[p.next]
	p.next = (p.next + 1) % len(p.proxies)
	return proxyURL
}

func (p *proxySupplier) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.proxies)
}

func checkProxy(ctx context.Context, proxyURL, checkURL string) bool {
	client := resty.New().
		SetTimeout(checkTimeout).
		SetProxy(proxyURL)
	defer client.Close()

	resp, err := client.R().
		SetContext(ctx).
		Get(checkURL)
	if err != nil {
		log.Warnf("❌ Proxy %s failed: %v", proxyURL, err)
		return false
	}
	if resp.IsError() {
		log.Warnf("❌ Proxy %s answered %s", proxyURL, resp.Status())
		return false
	}

	log.Debugf("✅ Proxy %s works", proxyURL)
	return true
}
