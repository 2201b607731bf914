// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/AleutianAI/tia/internal/telemetry"
)

var servePort string

// serveCmd runs an HTTP server exposing the persisted map and any
// reports written under --report-dir, for CI dashboards and other
// services that want to poll run state rather than shell out to the
// CLI. It does not itself drive a sequence; `tia run --report-dir`
// still owns execution.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the persisted map, run reports, and a live job stream over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		router := gin.Default()
		router.Use(otelgin.Middleware("tia"))

		hub := newRunHub()

		router.GET("/map/:suite", func(c *gin.Context) {
			dm, err := loadMapOnly()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, dm.ExportSourceCoverage())
		})

		router.GET("/reports/:runID", func(c *gin.Context) {
			path := reportDir + "/" + c.Param("runID") + ".json"
			data, err := os.ReadFile(path)
			if err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.Data(http.StatusOK, "application/json", data)
		})

		router.GET("/runs/:runID/stream", func(c *gin.Context) {
			hub.serveWS(c.Writer, c.Request, c.Param("runID"))
		})

		router.GET("/metrics", func(c *gin.Context) {
			h := telemetry.MetricsHandler()
			if h == nil {
				c.String(http.StatusServiceUnavailable, "metrics exporter is not prometheus; set OTEL_METRICS_EXPORTER=prometheus")
				return
			}
			h.ServeHTTP(c.Writer, c.Request)
		})

		log.Info("serving", "port", servePort)
		return router.Run(":" + servePort)
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "HTTP port")
}

// runHub fans out job-completion events to any websocket clients
// watching a given run, keyed by RunID. A real publisher (e.g. a daemon
// wrapping the orchestrator's OnJobComplete) would call broadcast; this
// server only exposes the subscribe side.
type runHub struct {
	mu       sync.Mutex
	upgrader websocket.Upgrader
}

func newRunHub() *runHub {
	return &runHub{upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024}}
}

func (h *runHub) serveWS(w http.ResponseWriter, r *http.Request, runID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "run_id", runID, "error", err)
		return
	}
	defer conn.Close()

	_ = conn.WriteMessage(websocket.TextMessage, []byte(fmt.Sprintf(`{"subscribed":%q}`, runID)))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
