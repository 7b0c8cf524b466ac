package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/voxgate/recordings-gateway/catalog"
)

type loginRequest struct {
	Username string `json:"username"`
	Secret   string `json:"secret"`
}

// LoginHandler authenticates a tenant and returns a signed bearer token.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, s.log, http.StatusBadRequest, "malformed request body")
			return
		}

		credential, err := s.services.Auth.Authenticate(req.Username, req.Secret)
		if err != nil {
			writeDomainError(w, s.log, err)
			return
		}

		writeJSON(w, s.log, http.StatusOK, credential)
	}
}

// LogoutHandler revokes the presented bearer token until its natural expiry.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.services.Auth.Logout(TokenFromContext(r.Context())); err != nil {
			writeDomainError(w, s.log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListRecordingsHandler lists the tenant's recordings, optionally filtered
// by date, agent, and a narrowing key prefix.
func (s *Server) ListRecordingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := TenantFromContext(r.Context())

		filters := catalog.Filters{
			Date:   r.URL.Query().Get("date"),
			Agent:  r.URL.Query().Get("agent"),
			Prefix: r.URL.Query().Get("prefix"),
		}

		recordings, err := s.services.Catalog.List(r.Context(), tenant, filters)
		if err != nil {
			writeDomainError(w, s.log, err)
			return
		}

		writeJSON(w, s.log, http.StatusOK, recordings)
	}
}

// StreamRecordingHandler proxies the recording's bytes to the caller. The
// object is streamed through, never buffered whole; the upstream body is
// closed on every exit path and the copy stops when the client goes away.
func (s *Server) StreamRecordingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := TenantFromContext(r.Context())

		key := r.URL.Query().Get("key")
		if key == "" {
			writeError(w, s.log, http.StatusBadRequest, "missing key parameter")
			return
		}

		stream, err := s.services.Gateway.OpenStream(r.Context(), tenant, key)
		if err != nil {
			writeDomainError(w, s.log, err)
			return
		}
		defer stream.Body.Close()

		w.Header().Set("Content-Type", stream.ContentType)
		if stream.ContentLength > 0 {
			w.Header().Set("Content-Length", strconv.FormatInt(stream.ContentLength, 10))
		}

		if _, err := io.Copy(w, stream.Body); err != nil {
			// Usually the client hung up mid-stream.
			s.log.Debug().Err(err).Str("tenant", tenant.ID).Str("key", key).Msg("stream copy aborted")
		}
	}
}

// SignedURLHandler returns a short-lived pre-signed URL for one recording.
func (s *Server) SignedURLHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := TenantFromContext(r.Context())

		key := r.URL.Query().Get("key")
		if key == "" {
			writeError(w, s.log, http.StatusBadRequest, "missing key parameter")
			return
		}

		var ttl time.Duration
		if raw := r.URL.Query().Get("ttl"); raw != "" {
			seconds, err := strconv.Atoi(raw)
			if err != nil || seconds <= 0 {
				writeError(w, s.log, http.StatusBadRequest, "invalid ttl parameter")
				return
			}
			ttl = time.Duration(seconds) * time.Second
		}

		signed, err := s.services.Gateway.SignedURL(r.Context(), tenant, key, ttl)
		if err != nil {
			writeDomainError(w, s.log, err)
			return
		}

		writeJSON(w, s.log, http.StatusOK, signed)
	}
}

// PreflightHandler terminates OPTIONS requests that carry no Origin header.
// Cross-origin preflights are answered earlier by the CORS middleware.
func (s *Server) PreflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

// HealthzHandler probes the object store.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.services.Store.HealthCheck(r.Context()); err != nil {
			s.log.Warn().Err(err).Msg("store health check failed")
			writeJSON(w, s.log, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, s.log, http.StatusOK, map[string]string{"status": "ok"})
	}
}
