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

package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/tomoncle/memberquery/database"
	"github.com/tomoncle/memberquery/model"
	"github.com/tomoncle/memberquery/repository"
	"github.com/tomoncle/memberquery/types"
	"github.com/tomoncle/memberquery/utils"
)

// MemberSearcher is the part of the member service the API serves.
type MemberSearcher interface {
	Search(ctx context.Context, cond *model.MemberSearchCondition, orders ...types.Order) ([]*model.MemberTeamDto, error)
	SearchPage(ctx context.Context, cond *model.MemberSearchCondition, page *types.PageRequest) (*types.Pagination[model.MemberTeamDto], error)
	SearchPageCounted(ctx context.Context, cond *model.MemberSearchCondition, page *types.PageRequest) (*types.Pagination[model.MemberTeamDto], error)
	SearchPageSimple(ctx context.Context, cond *model.MemberSearchCondition, page *types.PageRequest) (*types.Pagination[model.MemberTeamDto], error)
	SearchOne(ctx context.Context, cond *model.MemberSearchCondition) (*model.MemberTeamDto, bool, error)
	TeamStats(ctx context.Context) ([]*model.TeamStat, error)
}

// HealthFunc reports the database health for /healthz.
type HealthFunc func(ctx context.Context) *database.HealthStatus

// Server exposes the member search over HTTP.
type Server struct {
	svc     MemberSearcher
	limits  types.PageLimits
	health  HealthFunc
	timeout time.Duration
	logger  *logrus.Logger
}

// NewServer builds a Server paging with the sizes of policy. A nil health
// uses the global database.
func NewServer(svc MemberSearcher, policy database.QueryPolicyConfig, health HealthFunc) *Server {
	if health == nil {
		health = database.GetHealthStatus
	}
	return &Server{
		svc:     svc,
		limits:  types.PageLimits{DefaultSize: policy.DefaultPageSize, MaxSize: policy.MaxPageSize},
		health:  health,
		timeout: 30 * time.Second,
		logger:  utils.NewLogger("API"),
	}
}

// Router returns the handler with every route mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(Recoverer(s.logger))
	r.Use(middleware.RequestID)
	r.Use(AccessLog(s.logger))
	r.Use(middleware.Timeout(s.timeout))

	r.Route("/api", func(r chi.Router) {
		r.Get("/v1/members", s.searchMembers)
		r.Get("/v1/members/one", s.searchOne)
		r.Get("/v2/members", s.pageHandler(s.svc.SearchPageCounted))
		r.Get("/v3/members", s.pageHandler(s.svc.SearchPage))
		r.Get("/v4/members", s.pageHandler(s.svc.SearchPageSimple))
		r.Get("/v1/teams/stats", s.teamStats)
	})

	r.Get("/healthz", s.healthz)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (s *Server) searchMembers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cond, err := parseCondition(q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	orders, err := parseOrders(q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rows, err := s.svc.Search(r.Context(), cond, orders...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) searchOne(w http.ResponseWriter, r *http.Request) {
	cond, err := parseCondition(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	row, found, err := s.svc.SearchOne(r.Context(), cond)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !found {
		s.writeError(w, r, fmt.Errorf("no member matches: %w", repository.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, row)
}

type pageFunc func(context.Context, *model.MemberSearchCondition, *types.PageRequest) (*types.Pagination[model.MemberTeamDto], error)

func (s *Server) pageHandler(search pageFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		cond, err := parseCondition(q)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		page, err := parsePage(q, s.limits)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		result, err := search(r.Context(), cond, page)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) teamStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.TeamStats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	status := s.health(r.Context())
	code := http.StatusOK
	if status == nil || !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}
