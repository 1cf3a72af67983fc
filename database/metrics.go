/*
 * Copyright 2025 tomoncle.
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

package database

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
)

var (
	queryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "memberquery",
		Subsystem: "db",
		Name:      "query_duration_seconds",
		Help:      "Duration of SQL statements by operation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "status"})

	pageCountQueries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "memberquery",
		Subsystem: "paging",
		Name:      "count_queries_total",
		Help:      "Count queries per paging strategy, executed or skipped.",
	}, []string{"strategy", "outcome"})
)

func init() {
	prometheus.MustRegister(queryDuration, pageCountQueries)
}

// MetricsHook records every statement in the query duration histogram.
type MetricsHook struct{}

var _ bun.QueryHook = (*MetricsHook)(nil)

func (MetricsHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (MetricsHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	status := "ok"
	if event.Err != nil {
		status = "error"
	}
	queryDuration.
		WithLabelValues(strings.ToLower(event.Operation()), status).
		Observe(time.Since(event.StartTime).Seconds())
}

// ObservePageCount records whether a paging strategy issued its count query.
func ObservePageCount(strategy string, executed bool) {
	outcome := "skipped"
	if executed {
		outcome = "executed"
	}
	pageCountQueries.WithLabelValues(strategy, outcome).Inc()
}
