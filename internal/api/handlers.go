package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tutu-network/numgen/internal/app"
	"github.com/tutu-network/numgen/internal/domain"
	"github.com/tutu-network/numgen/internal/infra/export"
	"github.com/tutu-network/numgen/internal/infra/metrics"
	"github.com/tutu-network/numgen/internal/infra/numplan"
)

// --- /api/resolve ---

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	res, err := s.resolve(r.URL.Query().Get("country"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// resolve resolves non-interactively through the cache. Only successful
// resolutions are cached.
func (s *Server) resolve(identifier string) (domain.CountryResolution, error) {
	key := strings.ToLower(strings.TrimSpace(identifier))
	if res, ok := s.resolutions.Get(key); ok {
		metrics.ResolutionsTotal.WithLabelValues("cached").Inc()
		return res, nil
	}
	res, err := s.svc.Resolve(identifier, nil)
	if err != nil {
		metrics.ResolutionsTotal.WithLabelValues("miss").Inc()
		return res, err
	}
	metrics.ResolutionsTotal.WithLabelValues("hit").Inc()
	s.resolutions.Set(key, res)
	return res, nil
}

// --- /api/regions/{code} ---

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(chi.URLParam(r, "code"), "+")
	code, err := strconv.Atoi(raw)
	if err != nil || code <= 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid calling code %q", raw))
		return
	}
	opts := s.svc.Resolver.Options(code)
	if len(opts) == 0 {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no regions for calling code +%d", code))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"calling_code": code,
		"regions":      opts,
	})
}

// --- /api/lengths/{region} ---

func (s *Server) handleLengths(w http.ResponseWriter, r *http.Request) {
	region := domain.NormalizeRegion(chi.URLParam(r, "region"))
	lengths := s.svc.Plan.PossibleLengths(region)
	if lengths == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown region %q", region))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"region":           region,
		"calling_code":     s.svc.Plan.CallingCodeForRegion(region),
		"possible_lengths": lengths,
	})
}

// --- /api/generate ---

type generateRequest struct {
	Country      string               `json:"country"`
	Count        int                  `json:"count"`
	LocalLength  int                  `json:"local_length"`
	StrictLength bool                 `json:"strict_length"`
	Serial       *domain.SerialPolicy `json:"serial,omitempty"`
}

type recordJSON struct {
	E164Number          string `json:"e164_number"`
	NationalNumber      string `json:"national_number"`
	CountryISO          string `json:"country_iso"`
	CountryCallingCode  int    `json:"country_calling_code"`
	GenerationTimestamp string `json:"generation_timestamp"`
}

type generateResponse struct {
	RunID     string                   `json:"run_id"`
	Country   domain.CountryResolution `json:"country"`
	Mode      domain.GenerationMode    `json:"mode"`
	Requested int                      `json:"requested"`
	Accepted  int                      `json:"accepted"`
	Attempts  int                      `json:"attempts"`
	Exhausted bool                     `json:"exhausted"`
	ElapsedMs int64                    `json:"elapsed_ms"`
	Warning   string                   `json:"warning,omitempty"`
	Records   []recordJSON             `json:"records"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Count > s.maxCount {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("count %d exceeds maximum %d", req.Count, s.maxCount))
		return
	}
	if req.LocalLength > numplan.MaxNationalLength {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("local_length %d exceeds maximum %d", req.LocalLength, numplan.MaxNationalLength))
		return
	}

	country, err := s.resolve(req.Country)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	policy := req.Serial
	if policy == nil {
		policy = domain.RandomPolicy()
	}
	if policy.Step == 0 {
		policy.Step = 1
	}
	placement, err := domain.ParsePlacement(string(policy.Placement))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	policy.Placement = placement

	out, err := s.svc.Run(r.Context(), app.Job{
		Country:      country,
		Count:        req.Count,
		LocalLength:  req.LocalLength,
		Policy:       policy,
		StrictLength: req.StrictLength,
	}, nil)
	if err != nil {
		s.log.Warn("generate failed", "country", req.Country, "error", err)
		writeDomainError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("X-Numgen-Run-Id", out.Run.ID)
		w.WriteHeader(http.StatusOK)
		if err := export.WriteCSV(w, out.Records()); err != nil {
			s.log.Error("write csv response", "error", err)
		}
		return
	}

	resp := generateResponse{
		RunID:     out.Run.ID,
		Country:   country,
		Mode:      out.Run.Mode,
		Requested: out.Run.Requested,
		Accepted:  out.Run.Accepted,
		Attempts:  out.Run.Attempts,
		Exhausted: out.Run.Exhausted,
		ElapsedMs: out.Run.Elapsed.Milliseconds(),
		Records:   make([]recordJSON, 0, out.Run.Accepted),
	}
	if out.Advisory != nil {
		resp.Warning = out.Advisory.String()
	}
	for _, rec := range out.Records() {
		resp.Records = append(resp.Records, recordJSON{
			E164Number:          rec.E164Number,
			NationalNumber:      rec.NationalNumber,
			CountryISO:          rec.RegionCode,
			CountryCallingCode:  rec.CallingCode,
			GenerationTimestamp: rec.Timestamp(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeDomainError maps domain sentinels to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrCountryNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidPolicy),
		errors.Is(err, domain.ErrUnrealisticLength):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrSerialOverflow):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
