// Package restserver exposes baseflow separation over HTTP.
package restserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/hydrographs/baseflow/internal/station"
)

// Server handles separation requests over REST.
type Server struct {
	logger *zap.SugaredLogger
	server *http.Server
}

// SeparateRequest is the POST /separate payload.
type SeparateRequest struct {
	// Flow is the streamflow series, oldest sample first.
	Flow []float64 `json:"flow"`
	// Methods is a comma-separated method list; empty means all.
	Methods string `json:"methods,omitempty"`
	// AreaKm2 is the catchment area; 0 or absent means unknown.
	AreaKm2 float64 `json:"area_km2,omitempty"`
	// FreezePeriod is "MM-DD:MM-DD"; requires Dates.
	FreezePeriod string `json:"freeze_period,omitempty"`
	// Dates are sample dates (YYYY-MM-DD), required with FreezePeriod.
	Dates []string `json:"dates,omitempty"`
}

// SeparateResponse is the POST /separate reply.
type SeparateResponse struct {
	Baseflow   map[station.Method][]float64 `json:"baseflow"`
	Parameters map[station.Method]float64   `json:"parameters,omitempty"`
	KGE        map[station.Method]float64   `json:"kge,omitempty"`
	BFI        map[station.Method]float64   `json:"bfi,omitempty"`
	RecessionA float64                      `json:"recession_a,omitempty"`
	Skipped    map[station.Method]string    `json:"skipped,omitempty"`
}

// New creates a Server listening on addr once Start is called.
func New(logger *zap.SugaredLogger, addr string) *Server {
	s := &Server{logger: logger}

	router := mux.NewRouter()
	router.HandleFunc("/separate", s.handleSeparate).Methods(http.MethodPost)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}
	return s
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("REST server listening on %s", s.server.Addr)
		errCh <- s.server.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleSeparate(w http.ResponseWriter, r *http.Request) {
	var req SeparateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if len(req.Flow) == 0 {
		s.badRequest(w, "flow series is required")
		return
	}

	methods, err := station.ParseMethods(req.Methods)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}

	var ice []bool
	if req.FreezePeriod != "" {
		fp, err := station.ParseFreezePeriod(req.FreezePeriod)
		if err != nil {
			s.badRequest(w, err.Error())
			return
		}
		if len(req.Dates) != len(req.Flow) {
			s.badRequest(w, "freeze_period requires one date per flow sample")
			return
		}
		dates := make([]time.Time, len(req.Dates))
		for i, ds := range req.Dates {
			dates[i], err = time.Parse("2006-01-02", ds)
			if err != nil {
				s.badRequest(w, "invalid date "+ds)
				return
			}
		}
		ice = fp.Mask(dates)
	}

	sep := station.NewSeparator(s.logger, methods)
	res, err := sep.Run(r.Context(), req.Flow, req.AreaKm2, ice)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}

	resp := SeparateResponse{
		Baseflow:   res.Baseflow,
		Parameters: res.Parameters,
		KGE:        res.KGE,
		BFI:        res.BFI,
		RecessionA: res.RecessionA,
	}
	if len(res.Skipped) > 0 {
		resp.Skipped = make(map[station.Method]string, len(res.Skipped))
		for m, err := range res.Skipped {
			resp.Skipped[m] = err.Error()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Errorf("encoding response: %v", err)
	}
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	s.logger.Debugf("bad request: %s", msg)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
