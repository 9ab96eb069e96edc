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

package profiling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yorkie-team/folio/pkg/cache"
	"github.com/yorkie-team/folio/server/logging"
	"github.com/yorkie-team/folio/server/profiling/prometheus"
)

const (
	httpPrefixMetrics = "/metrics"
	httpPrefixCache   = "/cache"
	httpPrefixPProf   = "/debug/pprof"
)

// Server serves information for profiling, such as metrics and pprof information.
type Server struct {
	conf       *Config
	serveMux   *http.ServeMux
	httpServer *http.Server
	logger     logging.Logger
}

// NewServer creates an instance of Server. metrics and caches are optional.
func NewServer(conf *Config, metrics *prometheus.Metrics, caches *cache.Manager) *Server {
	serveMux := http.NewServeMux()
	if conf.EnablePprof {
		serveMux.HandleFunc(httpPrefixPProf+"/", pprof.Index)
		serveMux.HandleFunc(httpPrefixPProf+"/cmdline", pprof.Cmdline)
		serveMux.HandleFunc(httpPrefixPProf+"/profile", pprof.Profile)
		serveMux.HandleFunc(httpPrefixPProf+"/symbol", pprof.Symbol)
		serveMux.HandleFunc(httpPrefixPProf+"/trace", pprof.Trace)
	}

	if metrics != nil {
		serveMux.Handle(httpPrefixMetrics, promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
	}

	if caches != nil {
		serveMux.HandleFunc(httpPrefixCache, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(caches.Summaries()); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		})
	}

	return &Server{
		conf:     conf,
		serveMux: serveMux,
		httpServer: &http.Server{
			Addr:    conf.Addr(),
			Handler: serveMux,
		},
		logger: logging.New("prof"),
	}
}

// Start listens on the configured address and serves in the background. A
// port already in use is reported here rather than in the log.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen profiling %s: %w", s.httpServer.Addr, err)
	}

	s.logger.Infof("serving profiling on %s", listener.Addr())
	go func() {
		if err := s.httpServer.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorf("profiling serve: %v", err)
		}
	}()

	return nil
}

// Shutdown shuts down the server. A graceful shutdown waits up to
// DefaultShutdownTimeout for the requests in flight.
func (s *Server) Shutdown(graceful bool) {
	if graceful {
		ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Errorf("profiling shutdown: %v", err)
		}
		return
	}

	if err := s.httpServer.Close(); err != nil {
		s.logger.Errorf("profiling close: %v", err)
	}
}
