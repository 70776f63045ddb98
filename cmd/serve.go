package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/painel-enem/enem-cli/internal/artifact"
	"github.com/painel-enem/enem-cli/internal/pipeline"
	"github.com/painel-enem/enem-cli/internal/table"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the processed artifacts over HTTP",
	Long:  "Exposes the snapshot tables as JSON for the dashboard. Artifacts are cached in memory and re-read only when the file on disk changes.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		handler := newServeHandler(pipelines, pipelineEnv(), artifact.NewCache())

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: handler,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			shutdownServer(srv)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// shutdownTimeout bounds how long in-flight requests may drain.
const shutdownTimeout = 10 * time.Second

// shutdownServer drains in-flight requests before closing. The signal
// context is already canceled by the time this runs, so the drain gets
// its own deadline.
func shutdownServer(srv *http.Server) {
	zap.L().Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Error("server shutdown", zap.Error(err))
	}
}

// servedArtifact ties an artifact name to its file and the pipeline
// that produces it, for the "run this first" error message.
type servedArtifact struct {
	file     string
	pipeline string
}

func artifactIndex(reg *pipeline.Registry) map[string]servedArtifact {
	index := make(map[string]servedArtifact)
	for _, p := range reg.All() {
		for _, f := range p.Artifacts() {
			name := strings.TrimSuffix(f, ".parquet")
			index[name] = servedArtifact{file: f, pipeline: p.Name()}
		}
	}
	return index
}

func newServeHandler(reg *pipeline.Registry, env pipeline.Env, cache *artifact.Cache) http.Handler {
	index := artifactIndex(reg)

	names := make([]string, 0, len(index))
	for _, p := range reg.All() {
		for _, f := range p.Artifacts() {
			names = append(names, strings.TrimSuffix(f, ".parquet"))
		}
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/artifacts", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"artifacts": names})
	})

	r.Get("/api/artifacts/{name}", func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "name")
		sa, ok := index[name]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": fmt.Sprintf("unknown artifact %q", name),
			})
			return
		}

		tbl, err := cache.Load(filepath.Join(env.ProcessedDir, sa.file))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{
					"error": fmt.Sprintf("artifact %s not yet produced; run `enem-cli preprocess %s` first", sa.file, sa.pipeline),
				})
				return
			}
			zap.L().Error("artifact read failed", zap.String("artifact", sa.file), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "artifact read failed"})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"columns": tbl.Columns(),
			"rows":    tableRows(tbl),
		})
	})

	return r
}

func tableRows(t *table.Table) []map[string]any {
	cols := t.Columns()
	rows := make([]map[string]any, t.Len())
	for i := range rows {
		row := make(map[string]any, len(cols))
		for _, c := range cols {
			row[c] = t.Value(i, c).Any()
		}
		rows[i] = row
	}
	return rows
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
