package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/Somtiee/swaparc/internal/domain/model"
	"github.com/Somtiee/swaparc/internal/domain/useCases"
)

// Server represents an HTTP server with all routes configured
type Server struct {
	leaderboard useCases.Leaderboard
	profiles    useCases.Profiles
	broadcaster useCases.Broadcaster
	topN        int
	metricTopN  int
	mux         *http.ServeMux
	server      *http.Server
}

// NewServer creates a new HTTP server with configured routes
func NewServer(addr string, leaderboard useCases.Leaderboard, profiles useCases.Profiles, broadcaster useCases.Broadcaster, topN, metricTopN int) *Server {
	mux := http.NewServeMux()

	server := &Server{
		leaderboard: leaderboard,
		profiles:    profiles,
		broadcaster: broadcaster,
		topN:        topN,
		metricTopN:  metricTopN,
		mux:         mux,
		server: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	server.registerRoutes()

	return server
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/leaderboard", s.handleLeaderboard)
	s.mux.HandleFunc("/leaderboard/all", s.handleLeaderboardAll)
	s.mux.HandleFunc("/profile", s.handleProfile)
	s.mux.HandleFunc("/profile/lp", s.handleUpdateLp)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/ws", s.broadcaster.Handler())
}

// handleLeaderboard serves the public top-N by swap volume.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	entries, err := s.leaderboard.TopN(r.Context(), model.MetricSwapVolume, s.topN)
	if err != nil {
		log.Printf("leaderboard error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleLeaderboardAll serves the per-metric top lists in one response.
func (s *Server) handleLeaderboardAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	ctx := r.Context()
	topVolume, err := s.leaderboard.TopByMetric(ctx, model.MetricSwapVolume, s.metricTopN)
	if err != nil {
		log.Printf("leaderboard error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	topCount, err := s.leaderboard.TopByMetric(ctx, model.MetricSwapCount, s.metricTopN)
	if err != nil {
		log.Printf("leaderboard error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	topLp, err := s.leaderboard.TopByMetric(ctx, model.MetricLpProvided, s.metricTopN)
	if err != nil {
		log.Printf("leaderboard error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"topSwapVolume": topVolume,
		"topSwapCount":  topCount,
		"topLPProvided": topLp,
	})
}

// handleProfile serves profile reads (GET) and identity saves (POST).
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleGetProfile(w, r)
	case http.MethodPost:
		s.handleSaveProfile(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "Missing userId")
		return
	}

	profile, err := s.profiles.Get(r.Context(), userID)
	if err != nil {
		log.Printf("get profile error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if profile == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": false,
			"message": "Profile not found",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"profile": profileJSON(profile),
	})
}

func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID        string `json:"userId"`
		Username      string `json:"username"`
		WalletID      string `json:"walletId"`
		WalletAddress string `json:"walletAddress"`
		Avatar        string `json:"avatar"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid body")
		return
	}
	if body.UserID == "" {
		writeError(w, http.StatusBadRequest, "Missing userId")
		return
	}

	profile, err := s.profiles.Save(r.Context(), &useCases.SaveProfileRequest{
		UserID:        body.UserID,
		Username:      body.Username,
		WalletID:      body.WalletID,
		WalletAddress: body.WalletAddress,
		Avatar:        body.Avatar,
	})
	if err != nil {
		log.Printf("save profile error: %v", err)
		writeError(w, http.StatusInternalServerError, "Save failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"profile": profileJSON(profile),
	})
}

func (s *Server) handleUpdateLp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var body struct {
		UserID       string   `json:"userId"`
		LpTotalValue *float64 `json:"lpTotalValue"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == "" || body.LpTotalValue == nil {
		writeError(w, http.StatusBadRequest, "Missing or invalid userId or lpTotalValue")
		return
	}

	profile, err := s.profiles.UpdateLp(r.Context(), body.UserID, *body.LpTotalValue)
	if err != nil {
		log.Printf("update lp error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"stats": map[string]float64{
			"lpProvided": profile.LpProvided,
		},
	})
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func profileJSON(p *model.Profile) map[string]interface{} {
	return map[string]interface{}{
		"userId":        p.ID,
		"username":      p.Username,
		"walletId":      p.WalletID,
		"walletAddress": p.WalletAddress,
		"avatar":        p.Avatar,
		"swapCount":     p.SwapCount,
		"swapVolume":    p.SwapVolume,
		"lpProvided":    p.LpProvided,
		"badges":        p.Badges,
		"createdAt":     p.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
