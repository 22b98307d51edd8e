package metrics

import "time"

// sizer is the minimal surface the collector needs from a store; kept as a
// narrow local interface rather than importing pkg/kvstore directly so this
// package stays a leaf dependency of the module graph.
type sizer interface {
	Len() int
}

// Collector periodically samples a store's key count into StoreKeysTotal.
type Collector struct {
	store  sizer
	stopCh chan struct{}
}

// NewCollector creates a new metrics collector for the given store.
func NewCollector(store sizer) *Collector {
	return &Collector{
		store:  store,
		stopCh: make(chan struct{}),
	}
}

// Start begins collecting metrics on a 15-second tick.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	StoreKeysTotal.Set(float64(c.store.Len()))
}
