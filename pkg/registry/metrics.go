// Copyright (c) 2025, The nsplugins Authors.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	applyTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nsplugins_registry_apply_total",
			Help: "Total number of registry queries by outcome (hit, miss, error)",
		},
		[]string{"registry", "outcome"},
	)

	applyInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nsplugins_registry_apply_in_flight",
			Help: "Current number of registry queries being processed",
		},
		[]string{"registry"},
	)

	activationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nsplugins_registry_activations_total",
			Help: "Total number of provider activations by mode (eager, lazy) and result",
		},
		[]string{"registry", "mode", "result"},
	)

	promotionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nsplugins_registry_promotions_total",
			Help: "Total number of lazy providers published to the active store",
		},
		[]string{"registry"},
	)

	conditionRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nsplugins_registry_condition_rejections_total",
			Help: "Total number of lazy providers discarded by the compatibility condition",
		},
		[]string{"registry"},
	)

	cleanupSweeps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nsplugins_registry_cleanup_sweeps_total",
			Help: "Total number of promotion cleanup sweeps",
		},
		[]string{"registry"},
	)
)

func observeApply(name string, ok bool, err error) {
	outcome := "miss"
	switch {
	case err != nil:
		outcome = "error"
	case ok:
		outcome = "hit"
	}
	applyTotal.WithLabelValues(name, outcome).Inc()
}
