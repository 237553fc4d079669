// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package memento

import (
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// CountFunc reports the current length of a history.
// HistoryManager.Count satisfies it.
type CountFunc func() int

// HistoryCollector exports the length of named histories to Prometheus.
//
// Description:
//
//	Each tracked history becomes one sample of
//	memento_history_entries{history="<name>"}, read at scrape time.
//
//	reg := prometheus.NewRegistry()
//	col := memento.NewHistoryCollector()
//	reg.MustRegister(col)
//	col.Track(hist.Name(), hist.Count)
//
// Thread Safety: Safe for concurrent use.
type HistoryCollector struct {
	mu        sync.RWMutex
	histories map[string]CountFunc
	desc      *prometheus.Desc
}

var _ prometheus.Collector = (*HistoryCollector)(nil)

// NewHistoryCollector creates a collector with no tracked histories.
func NewHistoryCollector() *HistoryCollector {
	return &HistoryCollector{
		histories: make(map[string]CountFunc),
		desc: prometheus.NewDesc(
			"memento_history_entries",
			"Current number of snapshots held by a history",
			[]string{"history"},
			nil,
		),
	}
}

// Track starts exporting count under name, replacing any earlier
// registration with the same name. A nil count is ignored.
func (c *HistoryCollector) Track(name string, count CountFunc) {
	if count == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.histories[name] = count
}

// Untrack stops exporting name.
//
// Outputs:
//   - bool: True if name was tracked.
func (c *HistoryCollector) Untrack(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.histories[name]; ok {
		delete(c.histories, name)
		return true
	}
	return false
}

// Describe implements prometheus.Collector.
func (c *HistoryCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *HistoryCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	names := make([]string, 0, len(c.histories))
	funcs := make(map[string]CountFunc, len(c.histories))
	for name, fn := range c.histories {
		names = append(names, name)
		funcs[name] = fn
	}
	c.mu.RUnlock()

	// Count funcs take history locks; call them without holding ours
	sort.Strings(names)
	for _, name := range names {
		ch <- prometheus.MustNewConstMetric(
			c.desc,
			prometheus.GaugeValue,
			float64(funcs[name]()),
			name,
		)
	}
}
