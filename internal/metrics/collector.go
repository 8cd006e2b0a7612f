package metrics

import (
	"time"

	"media-indexer/internal/logging"
)

// StatsProvider supplies catalog counts for the gauge metrics.
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current catalog statistics.
type Stats struct {
	FilesByKind map[string]int
	Directories int
	Tags        int
}

// Collector periodically refreshes the catalog gauges from a StatsProvider.
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector.
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop.
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection.
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	for kind, count := range stats.FilesByKind {
		CatalogFiles.WithLabelValues(kind).Set(float64(count))
	}
	CatalogDirectories.Set(float64(stats.Directories))
	CatalogTags.Set(float64(stats.Tags))

	logging.Debug("Metrics collected: directories=%d, tags=%d", stats.Directories, stats.Tags)
}
