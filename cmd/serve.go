package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	servePort int
	serveFile string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the rendered map for preview",
	Long:  "Starts an HTTP server that serves the rendered map at / and a health check at /health. The file is read on every request, so re-running render refreshes the page.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		if port <= 0 {
			return eris.Errorf("serve: invalid port %d", port)
		}
		file := serveFile
		if file == "" {
			file = cfg.Output.Path
		}

		addr := fmt.Sprintf(":%d", port)
		srv := &http.Server{
			Addr:              addr,
			Handler:           newMapRouter(file),
			ReadHeaderTimeout: 10 * time.Second,
		}

		zap.L().Info("starting map preview server", zap.String("addr", addr), zap.String("file", file))

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down map preview server")
			_ = srv.Close()
		}()

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "serve: listen")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP port (default: server.port from config)")
	serveCmd.Flags().StringVar(&serveFile, "file", "", "map file to serve (default: output.path from config)")
	rootCmd.AddCommand(serveCmd)
}

// newMapRouter serves the map file at / and a health check at /health.
func newMapRouter(file string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		data, err := os.ReadFile(file)
		if err != nil {
			if os.IsNotExist(err) {
				http.Error(w, "map not rendered yet; run `listing-map render`", http.StatusNotFound)
				return
			}
			zap.L().Error("serve: read map", zap.String("file", file), zap.Error(err))
			http.Error(w, "cannot read map", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(data)
	})

	return r
}
