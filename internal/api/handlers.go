package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ovpnclient/tunprop/internal/config"
	"github.com/ovpnclient/tunprop/internal/dnscheck"
	"github.com/ovpnclient/tunprop/internal/emuexr"
	"github.com/ovpnclient/tunprop/internal/netcfg"
	"github.com/ovpnclient/tunprop/internal/options"
	"github.com/ovpnclient/tunprop/internal/tunprop"
)

// StatusResponse is the GET /api/v1/status payload.
type StatusResponse struct {
	ProfilePath   string `json:"profile_path"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, StatusResponse{
		ProfilePath:   s.profilePath,
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	})
}

func (s *Server) loadProfile(w http.ResponseWriter) *config.Profile {
	profile, err := config.LoadProfile(s.profilePath)
	if err != nil {
		WriteInternalError(w, err.Error())
		return nil
	}
	if err := profile.Validate(); err != nil {
		WriteError(w, http.StatusInternalServerError, ErrCodeValidationFailed, err.Error())
		return nil
	}
	return profile
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	profile := s.loadProfile(w)
	if profile == nil {
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}

// PreviewRequest optionally overrides the profile's pushed directives.
type PreviewRequest struct {
	Options string `json:"options,omitempty"`
}

// PreviewResponse is the result of a dry configuration pass.
type PreviewResponse struct {
	Snapshot netcfg.Snapshot `json:"snapshot"`
	VPNIPv4  string          `json:"vpn_ipv4,omitempty"`
	VPNIPv6  string          `json:"vpn_ipv6,omitempty"`
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	profile := s.loadProfile(w)
	if profile == nil {
		return
	}

	var req PreviewRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteInvalidRequest(w, "invalid JSON body: "+err.Error())
			return
		}
	}

	var opts options.OptionList
	var err error
	if req.Options != "" {
		opts, err = options.Parse(req.Options)
	} else {
		opts, err = profile.DirectiveList()
	}
	if err != nil {
		WriteInvalidRequest(w, err.Error())
		return
	}

	serverAddr, err := profile.ServerAddr()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, ErrCodeValidationFailed, err.Error())
		return
	}
	sessionCfg, err := profile.SessionConfig()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, ErrCodeValidationFailed, err.Error())
		return
	}

	var factory tunprop.EmulateExcludeRouteFactory
	if profile.Network != nil && profile.Network.EmulateExcludeRoutes {
		factory = emuexr.Factory{}
	}

	tb := netcfg.NewTraceBuilder()
	state := &tunprop.State{}
	if err := tunprop.Configure(tb, state, nil, serverAddr, sessionCfg, opts, factory, true); err != nil {
		WriteError(w, http.StatusUnprocessableEntity, ErrCodeConfigureFailed, err.Error())
		return
	}

	resp := PreviewResponse{Snapshot: tb.Snapshot()}
	if !state.VPNIPv4.Unspecified() {
		resp.VPNIPv4 = state.VPNIPv4.String()
	}
	if !state.VPNIPv6.Unspecified() {
		resp.VPNIPv6 = state.VPNIPv6.String()
	}
	WriteJSON(w, http.StatusOK, resp)
}

// CheckDNSRequest names the servers to probe.
type CheckDNSRequest struct {
	Servers []string `json:"servers"`
}

// CheckDNSResponse reports per-server probe outcomes.
type CheckDNSResponse struct {
	Results []DNSProbeResult `json:"results"`
}

type DNSProbeResult struct {
	Server  string `json:"server"`
	OK      bool   `json:"ok"`
	RTTMs   int64  `json:"rtt_ms"`
	Message string `json:"message,omitempty"`
}

func (s *Server) handleCheckDNS(w http.ResponseWriter, r *http.Request) {
	var req CheckDNSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteInvalidRequest(w, "invalid JSON body: "+err.Error())
		return
	}
	if len(req.Servers) == 0 {
		WriteInvalidRequest(w, "servers list is empty")
		return
	}

	checker := dnscheck.NewChecker()
	resp := CheckDNSResponse{Results: make([]DNSProbeResult, 0, len(req.Servers))}
	for _, server := range req.Servers {
		result := DNSProbeResult{Server: server}
		if rtt, err := checker.Probe(r.Context(), server); err != nil {
			result.Message = err.Error()
		} else {
			result.OK = true
			result.RTTMs = rtt.Milliseconds()
		}
		resp.Results = append(resp.Results, result)
	}
	WriteJSON(w, http.StatusOK, resp)
}
