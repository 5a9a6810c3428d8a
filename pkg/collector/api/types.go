/*-
 * Copyright 2025 Carver Automation Corporation.
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

package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
)

// FeedEvent is one reading in a live feed frame.
type FeedEvent struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
}

// FeedAverage is one aggregate in a live feed frame.
type FeedAverage struct {
	Timestamp   string  `json:"timestamp"`
	Value       float64 `json:"value"`
	Transmitted bool    `json:"transmitted"`
}

// FeedFrame is pushed to websocket subscribers every feed interval, newest
// entries first.
type FeedFrame struct {
	Events   []FeedEvent   `json:"events"`
	Averages []FeedAverage `json:"averages"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type APIServer struct {
	collector    CollectorService
	router       *mux.Router
	gatherer     prometheus.Gatherer
	logger       *slog.Logger
	addr         string
	maxConns     int
	feedInterval time.Duration
	feedLimit    int
	upgrader     websocket.Upgrader

	mu       sync.Mutex
	srv      *http.Server
	done     chan struct{}
	stopOnce sync.Once
}

// Option customizes an APIServer.
type Option func(*APIServer)
