package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zagros-analytics/suitability-cli/internal/areaquery"
	"github.com/zagros-analytics/suitability-cli/internal/geometry"
	"github.com/zagros-analytics/suitability-cli/internal/orient"
	"github.com/zagros-analytics/suitability-cli/internal/recommend"
	"github.com/zagros-analytics/suitability-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP query service",
	Long:  "Serves area queries and the stored composite index over HTTP for map front ends.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate(); err != nil {
			return err
		}

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		catalog, err := recommend.Load(cfg.Recommend.CatalogPath)
		if err != nil {
			return err
		}
		engine := areaquery.New(s, cfg, catalog)

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/v1/area-query", handleAreaQuery(engine))
		r.Get("/v1/index/latest", handleIndexLatest(s))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go shutdownOnCancel(ctx, srv)

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "serve: listen")
		}
		return nil
	},
}

const shutdownTimeout = 15 * time.Second

// shutdownOnCancel drains in-flight requests once ctx is canceled. The signal
// context is already dead at that point, so the drain runs on its own
// deadline.
func shutdownOnCancel(ctx context.Context, srv *http.Server) {
	<-ctx.Done()
	zap.L().Info("shutting down server")
	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(drainCtx)
}

// areaQueryRequest mirrors areaquery.Params with raw coordinates, so callers
// may send either vertex order and either flat or nested polygons.
type areaQueryRequest struct {
	Coordinates json.RawMessage `json:"coordinates"`
	BufferDeg   float64         `json:"buffer_deg,omitempty"`
	Date        string          `json:"date,omitempty"`
	Datasets    []string        `json:"datasets,omitempty"`
}

func handleAreaQuery(engine *areaquery.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req areaQueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		coords, err := parseCoords(req.Coordinates)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "coordinates must be [[a,b],...] or [[[a,b],...]]"})
			return
		}

		result, err := engine.Query(r.Context(), areaquery.Params{
			Coordinates: coords,
			BufferDeg:   req.BufferDeg,
			Date:        req.Date,
			Datasets:    req.Datasets,
		})
		if err != nil {
			status := http.StatusInternalServerError
			if eris.Is(err, geometry.ErrDegeneratePolygon) || eris.Is(err, orient.ErrOrientationAmbiguous) {
				status = http.StatusUnprocessableEntity
			}
			zap.L().Warn("area query failed", zap.Error(err))
			writeJSON(w, status, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func handleIndexLatest(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := s.LatestCompositeDate(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if date == "" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no composite index stored"})
			return
		}
		results, err := s.Composite(r.Context(), date)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"date": date, "results": results})
	}
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
