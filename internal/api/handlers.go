package api

import (
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/browserscan/trustscore/internal/model"
	"github.com/browserscan/trustscore/internal/report"
	"github.com/browserscan/trustscore/internal/scoring"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func validatePorts(ports []int) error {
	for _, p := range ports {
		if p < 0 || p > 65535 {
			return fmt.Errorf("invalid port %d", p)
		}
	}
	return nil
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ScoreRequest carries evidence gathered elsewhere. BotEvidence, when
// present, adds the automation penalty after the rule table.
type ScoreRequest struct {
	Network     *model.NetworkEvidence     `json:"network"`
	Consistency *model.ConsistencyEvidence `json:"consistency"`
	OpenPorts   []int                      `json:"open_ports"`
	BotEvidence *string                    `json:"bot_evidence,omitempty"`
}

func (s *Server) scoreHandler(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validatePorts(req.OpenPorts); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	card := scoring.ComputeScore(req.Network, req.Consistency, req.OpenPorts)
	if req.BotEvidence != nil {
		card = scoring.ApplyBotPenalty(card, *req.BotEvidence)
	}
	s.metrics.ObserveCard(card)

	writeJSON(w, http.StatusOK, card)
}

// ScanRequest is the collector payload. The User-Agent header is used when
// user_agent is empty.
type ScanRequest struct {
	report.ClientSignals
	UserAgent string `json:"user_agent"`
	OpenPorts []int  `json:"open_ports"`
}

func (s *Server) scanHandler(w http.ResponseWriter, r *http.Request) {
	var body ScanRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validatePorts(body.OpenPorts); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ua := body.UserAgent
	if ua == "" {
		ua = r.UserAgent()
	}

	client := body.ClientSignals
	client.Automation.Headers = r.Header

	rep, err := s.assembler.Assemble(r.Context(), report.Request{
		ClientIP:  clientIP(r),
		UserAgent: ua,
		Protocols: protocolFingerprints(r),
		Client:    client,
		OpenPorts: body.OpenPorts,
	})
	if err != nil {
		s.log.Error("scan failed", "err", err)
		writeError(w, http.StatusInternalServerError, "scan failed")
		return
	}

	writeJSON(w, http.StatusCreated, rep)
}

func (s *Server) getScanHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rep, err := s.store.Get(r.Context(), id)
	if errors.Is(err, report.ErrNotFound) {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		s.log.Error("load report", "report_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load report")
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

// clientIP strips the port from RemoteAddr. middleware.RealIP has already
// replaced it with X-Real-IP or X-Forwarded-For when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// protocolFingerprints reads what the TLS terminator forwarded. JA3 and the
// TCP OS guess cannot be computed behind a proxy, so they arrive as headers.
func protocolFingerprints(r *http.Request) model.ProtocolFingerprints {
	p := model.ProtocolFingerprints{
		TLSJA3:      r.Header.Get("X-JA3-Hash"),
		TLSVersion:  r.Header.Get("X-TLS-Version"),
		HTTPVersion: r.Proto,
		TCPOSGuess:  r.Header.Get("X-TCP-OS-Guess"),
	}
	if r.TLS != nil && p.TLSVersion == "" {
		p.TLSVersion = tls.VersionName(r.TLS.Version)
	}
	return p
}
