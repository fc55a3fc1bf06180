package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/nao1215/wordscraper/internal/crawler"
	"github.com/nao1215/wordscraper/internal/model"
)

// JobName is the Pushgateway job label.
const JobName = "wordscraper"

// Failure reasons used as the "reason" label of pages_failed_total.
const (
	ReasonStatus      = "status"
	ReasonUnsupported = "unsupported"
	ReasonTimeout     = "timeout"
	ReasonCanceled    = "canceled"
	ReasonOther       = "other"
)

// Collector holds the crawl metrics of one run.
type Collector struct {
	registry *prometheus.Registry

	PagesFetched  prometheus.Counter
	PagesFailed   *prometheus.CounterVec
	FetchDuration prometheus.Histogram
	UniqueWords   prometheus.Gauge
	SelectedWords prometheus.Gauge
	RunDuration   prometheus.Gauge
	TimedOut      prometheus.Gauge
}

// NewCollector creates a Collector with its metrics registered on a new
// registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		PagesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wordscraper_pages_fetched_total",
			Help: "Total number of pages fetched successfully.",
		}),
		PagesFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wordscraper_pages_failed_total",
			Help: "Total number of pages that could not be fetched.",
		}, []string{"reason"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wordscraper_fetch_duration_seconds",
			Help:    "Duration of successful page fetches.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		UniqueWords: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wordscraper_unique_words",
			Help: "Number of distinct words found by the last crawl.",
		}),
		SelectedWords: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wordscraper_selected_words",
			Help: "Number of words selected for the wordlist.",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wordscraper_run_duration_seconds",
			Help: "Wall-clock duration of the last run.",
		}),
		TimedOut: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wordscraper_timed_out",
			Help: "1 if the last crawl stopped at its maximum duration.",
		}),
	}

	c.registry.MustRegister(
		c.PagesFetched,
		c.PagesFailed,
		c.FetchDuration,
		c.UniqueWords,
		c.SelectedWords,
		c.RunDuration,
		c.TimedOut,
	)

	return c
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// PageFetched implements crawler.Observer.
func (c *Collector) PageFetched(_ string, d time.Duration) {
	c.PagesFetched.Inc()
	c.FetchDuration.Observe(d.Seconds())
}

// PageFailed implements crawler.Observer.
func (c *Collector) PageFailed(_ string, err error) {
	c.PagesFailed.WithLabelValues(FailureReason(err)).Inc()
}

// ObserveReport records the totals of a finished run.
func (c *Collector) ObserveReport(report *model.RunReport) {
	c.UniqueWords.Set(float64(report.UniqueWords))
	c.SelectedWords.Set(float64(len(report.Selected)))
	c.RunDuration.Set(report.Duration().Seconds())
	if report.TimedOut {
		c.TimedOut.Set(1)
	} else {
		c.TimedOut.Set(0)
	}
}

// Push sends the collector's metrics to the Pushgateway at gatewayURL,
// replacing earlier metrics of the same job and seed host.
func (c *Collector) Push(ctx context.Context, gatewayURL, seedHost string, client *http.Client) error {
	pusher := push.New(gatewayURL, JobName).
		Gatherer(c.registry).
		Grouping("seed_host", seedHost)
	if client != nil {
		pusher = pusher.Client(client)
	}

	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}

// FailureReason maps a fetch error to a small set of label values.
func FailureReason(err error) string {
	var statusErr *crawler.StatusError
	switch {
	case errors.As(err, &statusErr):
		return ReasonStatus
	case errors.Is(err, crawler.ErrUnsupportedContent):
		return ReasonUnsupported
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, context.Canceled):
		return ReasonCanceled
	default:
		return ReasonOther
	}
}

var _ crawler.Observer = (*Collector)(nil)
