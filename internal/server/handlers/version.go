package handlers

import (
	"encoding/json"
	"net/http"
)

// VersionInfo is the build identity served at /version.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

// VersionHandler serves the build identity.
type VersionHandler struct {
	Info VersionInfo
}

func (h *VersionHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.Info)
}
