// Package probe answers one question: does the device currently have a
// network path out? The scheduler consults it before burning a replay cycle
// against an unreachable store.
package probe

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Prober checks reachability of a well-known endpoint.
type Prober struct {
	httpClient *resty.Client
	url        string
	logger     *zap.Logger
}

// New builds a prober against the given URL.
func New(url string, logger *zap.Logger) *Prober {
	if logger == nil {
		logger = zap.NewNop()
	}

	restyClient := resty.New()
	restyClient.SetTimeout(5 * time.Second)

	return &Prober{httpClient: restyClient, url: url, logger: logger}
}

// Online reports whether the probe endpoint answered at all. Any HTTP status
// counts as connectivity; only transport failures count as offline.
func (p *Prober) Online(ctx context.Context) bool {
	_, err := p.httpClient.R().SetContext(ctx).Head(p.url)
	if err != nil {
		p.logger.Debug("connectivity probe failed", zap.String("url", p.url), zap.Error(err))
		return false
	}
	return true
}
