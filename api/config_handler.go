package api

import (
	"net/http"

	"github.com/womenwealthwave/wealthwave/internal/config"
)

// ConfigResponse is the body of GET /api/v1/config.
type ConfigResponse struct {
	Config     *config.Config `json:"config"`
	ConfigFile string         `json:"config_file"`
}

// handleGetConfig returns the running configuration with secrets masked.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ConfigResponse{
		Config:     config.Redacted(s.cfg),
		ConfigFile: s.cfg.File(),
	})
}

// handleGetConfigKeys returns which API keys are configured and where from.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, config.CheckAPIKeys(s.cfg))
}
