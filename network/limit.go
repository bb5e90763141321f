package network

import (
	"context"
	"sync"

	"github.com/medley-cli/medley/key"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"
)

var (
	limitersMu sync.Mutex
	limiters   = make(map[string]*rate.Limiter)
)

// limiter returns the limiter of host, created from network.rate on first use.
func limiter(host string) *rate.Limiter {
	limitersMu.Lock()
	defer limitersMu.Unlock()

	if l, ok := limiters[host]; ok {
		return l
	}

	perSecond := viper.GetFloat64(key.NetworkRate)
	l := rate.NewLimiter(rate.Inf, 0)
	if perSecond > 0 {
		l = rate.NewLimiter(rate.Limit(perSecond), max(1, int(perSecond)))
	}
	limiters[host] = l
	return l
}

// Wait blocks until a request to host is allowed or ctx ends.
func Wait(ctx context.Context, host string) error {
	return limiter(host).Wait(ctx)
}

// ResetLimits drops every per-host limiter so the next request rereads network.rate.
func ResetLimits() {
	limitersMu.Lock()
	defer limitersMu.Unlock()
	clear(limiters)
}
