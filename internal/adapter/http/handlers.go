package http

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/couchcryptid/rtrwh-assessment-service/internal/adapter/nasapower"
	"github.com/couchcryptid/rtrwh-assessment-service/internal/domain"
)

const maxBodyBytes = 1 << 20

// queryPoint reads lat and lon from the query string. Missing or malformed
// values come back as NaN so the domain validators report them: an absent
// lat or lon is a 400 "must be a valid number", never an implicit 0.
func queryPoint(r *http.Request) (lat, lon float64) {
	parse := func(key string) float64 {
		v, err := strconv.ParseFloat(r.URL.Query().Get(key), 64)
		if err != nil {
			return math.NaN()
		}
		return v
	}
	return parse("lat"), parse("lon")
}

// writeError maps a ValidationError to 400 and anything else to 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "Invalid input",
			"details": verr.Error(),
		})
		return
	}
	s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
}

func (s *Server) handleBoundaries(w http.ResponseWriter, _ *http.Request) {
	probes := domain.ProbeBoundaries()
	passed := true
	for _, p := range probes {
		if !p.Passed() {
			passed = false
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"boundaries": domain.Boundaries(),
		"probes":     probes,
		"passed":     passed,
	})
}

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	lat, lon := queryPoint(r)
	rc, err := s.deps.Service.ResolveContext(r.Context(), lat, lon)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rc)
}

func (s *Server) handleRainfall(w http.ResponseWriter, r *http.Request) {
	lat, lon := queryPoint(r)
	res, err := s.deps.Service.GetRainfall(r.Context(), lat, lon)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGroundwater(w http.ResponseWriter, r *http.Request) {
	lat, lon := queryPoint(r)
	gw, err := s.deps.Service.GetGroundwater(r.Context(), lat, lon)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gw)
}

func (s *Server) handleNASAHourly(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pq := nasapower.ProxyQuery{
		Start:      q.Get("start"),
		End:        q.Get("end"),
		Lat:        q.Get("lat"),
		Lon:        q.Get("lon"),
		Parameters: q.Get("parameters"),
		Community:  q.Get("community"),
		Units:      q.Get("units"),
		Format:     q.Get("format"),
	}
	if missing := pq.Missing(); len(missing) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":   "Missing required parameters",
			"missing": missing,
		})
		return
	}

	body, err := s.deps.Proxy.Proxy(r.Context(), pq)
	if err != nil {
		s.logger.Warn("nasa hourly proxy failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error":   "Upstream request failed",
			"details": err.Error(),
		})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body) //nolint:errcheck // client may have gone away
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	// Wrong-typed fields decode leniently and surface from Assess as
	// validation problems; only malformed JSON or a non-object fails here.
	var req domain.AssessmentRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "Invalid input",
			"details": "Request body must be a JSON object",
		})
		return
	}

	res, err := s.deps.Service.Assess(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
