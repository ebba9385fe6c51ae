// Package server exposes the analyses over a read-only JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/mortstat/internal/analysis"
	"github.com/KaramelBytes/mortstat/internal/dataset"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

// api holds the record set loaded at startup. Handlers only read it.
type api struct {
	records  []dataset.Record
	defaults analysis.ReportOptions
	name     string
	log      *logrus.Logger
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// NewRouter creates the API router over records. defaults supplies the
// parameters used when a query omits them.
func NewRouter(name string, records []dataset.Record, defaults analysis.ReportOptions, log *logrus.Logger) *mux.Router {
	a := &api{records: records, defaults: defaults, name: name, log: log}

	router := mux.NewRouter()
	router.Use(a.logRequests)
	router.HandleFunc("/healthz", a.healthHandler).Methods("GET")

	r := router.PathPrefix("/api").Subrouter()
	r.HandleFunc("/statistics", a.statisticsHandler).Methods("GET")
	r.HandleFunc("/correlations", a.correlationsHandler).Methods("GET")
	r.HandleFunc("/regression", a.regressionHandler).Methods("GET")
	r.HandleFunc("/clusters", a.clustersHandler).Methods("GET")
	r.HandleFunc("/forecast", a.forecastHandler).Methods("GET")
	r.HandleFunc("/top", a.topHandler).Methods("GET")
	r.HandleFunc("/generations", a.generationsHandler).Methods("GET")
	r.HandleFunc("/trends", a.trendsHandler).Methods("GET")
	r.HandleFunc("/report", a.reportHandler).Methods("GET")
	return router
}

// Run serves handler on addr until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, handler http.Handler, log *logrus.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("http api listening")
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info("shutting down http api")
		return srv.Shutdown(shutdownCtx)
	}
}

func (a *api) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		a.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Debug("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps caller mistakes to 400 and everything else to 500.
func (a *api) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var bad badRequest
	if analysis.IsContractError(err) || errors.Is(err, dataset.ErrUnknownField) || errors.As(err, &bad) {
		status = http.StatusBadRequest
	} else {
		a.log.WithError(err).Error("request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

type badRequest struct{ msg string }

func (b badRequest) Error() string { return b.msg }

// queryInt reads a base-10 integer in [lo, hi], returning def when absent.
func queryInt(r *http.Request, key string, def, lo, hi int) (int, error) {
	s := strings.TrimSpace(r.URL.Query().Get(key))
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, badRequest{fmt.Sprintf("invalid %s: %q", key, s)}
	}
	if v < lo || v > hi {
		return 0, badRequest{fmt.Sprintf("%s must be between %d and %d, got %d", key, lo, hi, v)}
	}
	return v, nil
}

func queryBool(r *http.Request, key string, def bool) (bool, error) {
	s := strings.TrimSpace(r.URL.Query().Get(key))
	if s == "" {
		return def, nil
	}
	v, err := cast.ToBoolE(s)
	if err != nil {
		return false, badRequest{fmt.Sprintf("invalid %s: %q", key, s)}
	}
	return v, nil
}

func (a *api) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "records": len(a.records)})
}

func (a *api) statisticsHandler(w http.ResponseWriter, r *http.Request) {
	field := r.URL.Query().Get("field")
	if field == "" {
		field = dataset.FieldRate
	}
	vals, err := dataset.Values(a.records, field)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"field":      field,
		"statistics": analysis.ComputeStatistics(vals),
	})
}

func (a *api) correlationsHandler(w http.ResponseWriter, r *http.Request) {
	x, y := r.URL.Query().Get("x"), r.URL.Query().Get("y")
	if x == "" && y == "" {
		writeJSON(w, http.StatusOK, analysis.AnalyzeCorrelations(a.records))
		return
	}
	if x == "" || y == "" {
		a.writeError(w, badRequest{"both x and y are required for a custom pair"})
		return
	}
	res, err := analysis.CorrelateFields(a.records, x, y)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, []analysis.CorrelationResult{res})
}

func (a *api) regressionHandler(w http.ResponseWriter, r *http.Request) {
	predictors := a.defaults.Predictors
	if s := r.URL.Query().Get("predictors"); s != "" {
		predictors = nil
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				predictors = append(predictors, p)
			}
		}
	}
	model, err := analysis.FitLinearModel(a.records, predictors)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model)
}

func (a *api) clustersHandler(w http.ResponseWriter, r *http.Request) {
	k, err := queryInt(r, "k", a.defaults.Clusters, 1, analysis.MaxClusters)
	if err != nil {
		a.writeError(w, err)
		return
	}
	seed, err := queryInt(r, "seed", int(a.defaults.Seed), math.MinInt, math.MaxInt)
	if err != nil {
		a.writeError(w, err)
		return
	}
	opt := a.defaults
	opt.Seed = int64(seed)
	res, err := analysis.KMeans(a.records, k, opt.Rng())
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"result":             res,
		"members":            res.Members(),
		"effective_clusters": res.EffectiveClusters(),
	})
}

func (a *api) forecastHandler(w http.ResponseWriter, r *http.Request) {
	years, err := queryInt(r, "years", a.defaults.ForecastYears, 0, analysis.MaxForecastYears)
	if err != nil {
		a.writeError(w, err)
		return
	}
	method := a.defaults.ForecastMethod
	if s := r.URL.Query().Get("method"); s != "" {
		if method, err = analysis.ParseForecastMethod(s); err != nil {
			a.writeError(w, err)
			return
		}
	}
	points, err := analysis.Forecast(a.records, years, method)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"method": method, "forecast": points})
}

func (a *api) topHandler(w http.ResponseWriter, r *http.Request) {
	n, err := queryInt(r, "n", a.defaults.TopN, 0, math.MaxInt)
	if err != nil {
		a.writeError(w, err)
		return
	}
	highest, lowest := analysis.TopCountries(a.records, n)
	writeJSON(w, http.StatusOK, map[string]any{"highest": highest, "lowest": lowest})
}

func (a *api) generationsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, analysis.AnalyzeGenerations(a.records))
}

func (a *api) trendsHandler(w http.ResponseWriter, r *http.Request) {
	regions, err := queryBool(r, "regions", a.defaults.IncludeRegions)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis.YearTrends(a.records, regions))
}

func (a *api) reportHandler(w http.ResponseWriter, r *http.Request) {
	opt := a.defaults
	opt.Name = a.name
	rep, err := analysis.BuildReport(a.records, opt)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(rep.Markdown()))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
