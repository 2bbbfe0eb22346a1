package connectivity

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Prober feeds a Monitor from an HTTP HEAD request. Any HTTP response counts
// as reachable; only transport failures mean offline. It implements cron.Job.
type Prober struct {
	monitor *Monitor
	url     string
	client  *http.Client
	log     logrus.FieldLogger
}

func NewProber(m *Monitor, url string, timeout time.Duration, log logrus.FieldLogger) *Prober {
	return &Prober{
		monitor: m,
		url:     url,
		client:  &http.Client{Timeout: timeout},
		log:     log.WithField("probe_url", url),
	}
}

// Probe checks reachability once and pushes the result into the Monitor.
func (p *Prober) Probe(ctx context.Context) bool {
	online := p.reachable(ctx) == nil
	p.monitor.Set(online)

	return online
}

func (p *Prober) reachable(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		return fmt.Errorf("building probe request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.log.WithError(err).Debug("probe failed")
		return err
	}

	resp.Body.Close()

	return nil
}

func (p *Prober) Run() {
	p.Probe(context.Background())
}
