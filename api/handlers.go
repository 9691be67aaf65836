package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/pthm-cable/avoid/fuzzy"
	"github.com/pthm-cable/avoid/policy"
)

// maxBody caps request bodies.
const maxBody = 64 << 10

type avoidRequest struct {
	Sonar []float64 `json:"sonar"`
	// Strengths asks for every rule's firing strength in the response.
	Strengths bool `json:"strengths,omitempty"`
}

type avoidResponse struct {
	Velocidad  float64   `json:"velocidad"`
	AngularVel float64   `json:"angular_vel"`
	Left       float64   `json:"left"`
	Right      float64   `json:"right"`
	Fallback   bool      `json:"fallback"`
	Unfired    []string  `json:"unfired,omitempty"`
	Strengths  []float64 `json:"strengths,omitempty"`
}

type errorResponse struct {
	Error   string   `json:"error"`
	Unfired []string `json:"unfired,omitempty"`
}

type ruleResponse struct {
	Index  int     `json:"index"`
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

type rulesResponse struct {
	Inputs  []string       `json:"inputs"`
	Outputs []string       `json:"outputs"`
	Rules   []ruleResponse `json:"rules"`
}

// avoidHandler serves single inferences. Controllers are pooled because a
// session is not safe for concurrent use; requests carry no history, so
// FallbackHold behaves like FallbackStop.
type avoidHandler struct {
	pool    sync.Pool
	observe func(d time.Duration, fallback bool, unfired []string)
}

func newAvoidHandler(sys *fuzzy.System, opts policy.Options, observe func(time.Duration, bool, []string)) *avoidHandler {
	if opts.Fallback == policy.FallbackHold {
		opts.Fallback = policy.FallbackStop
	}
	h := &avoidHandler{observe: observe}
	h.pool.New = func() any { return policy.NewController(sys, opts) }
	return h
}

func (h *avoidHandler) Avoid(w http.ResponseWriter, r *http.Request) {
	var req avoidRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Sonar) < policy.NumSensors {
		writeError(w, http.StatusBadRequest, "sonar needs at least 8 readings")
		return
	}

	ctrl := h.pool.Get().(*policy.Controller)
	start := time.Now()
	cmd, err := ctrl.Avoid(req.Sonar)
	elapsed := time.Since(start)
	h.pool.Put(ctrl)

	if err == nil || errors.Is(err, fuzzy.ErrNoRuleFired) {
		if h.observe != nil {
			h.observe(elapsed, cmd.Fallback || err != nil, cmd.Unfired)
		}
	}

	switch {
	case errors.Is(err, fuzzy.ErrNoRuleFired):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Unfired: cmd.Unfired})
		return
	case errors.Is(err, fuzzy.ErrInputOutOfRange), errors.Is(err, fuzzy.ErrMissingInput):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "inference failed")
		return
	}

	resp := avoidResponse{
		Velocidad:  cmd.Velocidad,
		AngularVel: cmd.AngularVel,
		Left:       cmd.Left,
		Right:      cmd.Right,
		Fallback:   cmd.Fallback,
		Unfired:    cmd.Unfired,
	}
	if req.Strengths {
		resp.Strengths = cmd.Strengths
	}
	writeJSON(w, http.StatusOK, resp)
}

func rulesHandler(sys *fuzzy.System) http.HandlerFunc {
	rules := sys.Rules()
	resp := rulesResponse{
		Inputs:  sys.Inputs(),
		Outputs: sys.Outputs(),
		Rules:   make([]ruleResponse, len(rules)),
	}
	for i, rule := range rules {
		resp.Rules[i] = ruleResponse{Index: i, Text: rule.String(), Weight: rule.Weight()}
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, resp)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
