package handler

import "net/http"

// Version is stamped at build time via -ldflags.
var Version = "dev"

type bannerResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// HandleRoot handles GET / with a small identification banner.
func HandleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, bannerResponse{
		Message: "cannalog api",
		Version: Version,
	})
}

// HandleHealth handles GET /health for liveness probes.
func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy"})
}
