/*
 * Copyright 2021 The Yorkie Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package prometheus provides a Prometheus metrics exporter.
package prometheus

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/yorkie-team/folio/api/types"
	"github.com/yorkie-team/folio/internal/version"
)

const (
	namespace     = "folio"
	hostnameLabel = "hostname"
	sourceLabel   = "source"
	resultLabel   = "result"
	taskTypeLabel = "task_type"
	opLabel       = "op"
	codeLabel     = "code"
)

// Results of a revert.
const (
	RevertSucceeded  = "succeeded"
	RevertRolledBack = "rolled_back"
	RevertFailed     = "failed"
)

// Results of an autosave flush.
const (
	AutosaveSaved   = "saved"
	AutosaveSkipped = "skipped"
	AutosaveFailed  = "failed"
)

// Metrics manages the metric information that folio is trying to measure.
type Metrics struct {
	registry *prometheus.Registry

	serverVersion    *prometheus.GaugeVec
	opsHandledTotal  *prometheus.CounterVec
	versionsCreated  *prometheus.CounterVec
	versionsDeleted  *prometheus.CounterVec
	seqConflicts     *prometheus.CounterVec
	revertsTotal     *prometheus.CounterVec
	diffSeconds      prometheus.Histogram
	diffCacheLookups *prometheus.CounterVec
	autosavesTotal   *prometheus.CounterVec
	prunedVersions   *prometheus.CounterVec

	backgroundGoroutinesTotal *prometheus.GaugeVec
}

// NewMetrics creates a new instance of Metrics.
func NewMetrics() (*Metrics, error) {
	reg := prometheus.NewRegistry()

	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, fmt.Errorf("register process collector: %w", err)
	}
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("register go collector: %w", err)
	}

	metrics := &Metrics{
		registry: reg,
		serverVersion: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "version",
			Help:      "Which version is running. 1 for 'server_version' label with current version.",
		}, []string{"server_version"}),
		opsHandledTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "handled_total",
			Help:      "Total number of version operations completed, regardless of success or failure.",
		}, []string{opLabel, codeLabel}),
		versionsCreated: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "versions",
			Name:      "created_total",
			Help:      "The total count of created versions.",
		}, []string{sourceLabel, hostnameLabel}),
		versionsDeleted: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "versions",
			Name:      "deleted_total",
			Help:      "The total count of deleted versions.",
		}, []string{hostnameLabel}),
		seqConflicts: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "versions",
			Name:      "seq_conflicts_total",
			Help:      "The total count of sequence conflicts between concurrent writers.",
		}, []string{hostnameLabel}),
		revertsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "versions",
			Name:      "reverts_total",
			Help:      "The total count of reverts by result.",
		}, []string{resultLabel, hostnameLabel}),
		diffSeconds: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "diff",
			Name:      "duration_seconds",
			Help:      "The time spent computing a line diff.",
		}),
		diffCacheLookups: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "diff",
			Name:      "cache_lookups_total",
			Help:      "The total count of diff cache lookups by result.",
		}, []string{resultLabel}),
		autosavesTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "autosave",
			Name:      "flushes_total",
			Help:      "The total count of autosave flushes by result.",
		}, []string{resultLabel, hostnameLabel}),
		prunedVersions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "housekeeping",
			Name:      "pruned_versions_total",
			Help:      "The total count of auto versions removed by retention.",
		}, []string{hostnameLabel}),
		backgroundGoroutinesTotal: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "background",
			Name:      "goroutines_total",
			Help:      "The total number of goroutines attached by a particular background task.",
		}, []string{taskTypeLabel}),
	}

	metrics.serverVersion.With(prometheus.Labels{
		"server_version": version.Version,
	}).Set(1)

	return metrics, nil
}

// AddOpHandled adds the number of operations completed with the given code.
func (m *Metrics) AddOpHandled(op, code string) {
	m.opsHandledTotal.With(prometheus.Labels{
		opLabel:   op,
		codeLabel: code,
	}).Inc()
}

// AddVersionCreated adds the number of created versions of the source.
func (m *Metrics) AddVersionCreated(hostname string, source types.VersionSource) {
	m.versionsCreated.With(prometheus.Labels{
		sourceLabel:   source.String(),
		hostnameLabel: hostname,
	}).Inc()
}

// AddVersionsDeleted adds the number of deleted versions.
func (m *Metrics) AddVersionsDeleted(hostname string, count int) {
	m.versionsDeleted.With(prometheus.Labels{
		hostnameLabel: hostname,
	}).Add(float64(count))
}

// AddSeqConflict adds the number of sequence conflicts.
func (m *Metrics) AddSeqConflict(hostname string) {
	m.seqConflicts.With(prometheus.Labels{
		hostnameLabel: hostname,
	}).Inc()
}

// AddRevert adds the number of reverts with the given result.
func (m *Metrics) AddRevert(hostname, result string) {
	m.revertsTotal.With(prometheus.Labels{
		resultLabel:   result,
		hostnameLabel: hostname,
	}).Inc()
}

// ObserveDiffDurationSeconds adds an observation for computing a diff.
func (m *Metrics) ObserveDiffDurationSeconds(seconds float64) {
	m.diffSeconds.Observe(seconds)
}

// AddDiffCacheLookup adds a diff cache lookup.
func (m *Metrics) AddDiffCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.diffCacheLookups.With(prometheus.Labels{
		resultLabel: result,
	}).Inc()
}

// AddAutosave adds an autosave flush with the given result.
func (m *Metrics) AddAutosave(hostname, result string) {
	m.autosavesTotal.With(prometheus.Labels{
		resultLabel:   result,
		hostnameLabel: hostname,
	}).Inc()
}

// AddPrunedVersions adds the number of versions removed by retention.
func (m *Metrics) AddPrunedVersions(hostname string, count int) {
	m.prunedVersions.With(prometheus.Labels{
		hostnameLabel: hostname,
	}).Add(float64(count))
}

// AddBackgroundGoroutines adds the number of goroutines attached by a particular background task.
func (m *Metrics) AddBackgroundGoroutines(taskType string) {
	m.backgroundGoroutinesTotal.With(prometheus.Labels{
		taskTypeLabel: taskType,
	}).Inc()
}

// RemoveBackgroundGoroutines removes the number of goroutines attached by a particular background task.
func (m *Metrics) RemoveBackgroundGoroutines(taskType string) {
	m.backgroundGoroutinesTotal.With(prometheus.Labels{
		taskTypeLabel: taskType,
	}).Dec()
}

// Registry returns the registry of this metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
