/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package dispatch

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics is the optional Prometheus instrumentation described in
// SPEC_FULL.md §4.3: a gauge for current nesting depth and a counter for
// dispatched events. It is only ever constructed via WithMetrics, so a
// Dispatcher that doesn't ask for it never touches prometheus — mirroring
// the teacher corpus's stats.Tracker being an injected, optional
// collaborator (ais/backend/common.go's base.init(snode, tr)) rather
// than a hardwired global.
type metrics struct {
	depth  prometheus.Gauge
	events prometheus.Counter
}

var (
	metricsOnce sync.Once
	shared      *metrics
)

func defaultMetrics() *metrics {
	metricsOnce.Do(func() {
		shared = &metrics{
			depth: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "corepb",
				Subsystem: "dispatch",
				Name:      "nesting_depth",
				Help:      "Current number of frames on the dispatcher's delegation stack.",
			}),
			events: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "corepb",
				Subsystem: "dispatch",
				Name:      "events_total",
				Help:      "Total number of decoded events routed through the dispatcher.",
			}),
		}
		prometheus.MustRegister(shared.depth, shared.events)
	})
	return shared
}
