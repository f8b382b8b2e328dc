package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/user/volumed/internal/sse"
)

type statusResponse struct {
	Device         string   `json:"device"`
	VolumeControls []string `json:"volume_controls"`
	HasMuteSwitch  bool     `json:"has_mute_switch"`
	VolumeDB       float64  `json:"volume_db"`
	Muted          bool     `json:"muted"`
}

// StatusHandler reports the mixer's discovered controls and the last
// requested volume and mute state.
func (s *Server) StatusHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := statusResponse{
		Device:         s.mixer.Device(),
		VolumeControls: s.mixer.VolumeControlNames(),
		HasMuteSwitch:  s.mixer.HasPlaybackSwitch(),
		VolumeDB:       s.volumeDB,
		Muted:          s.muted,
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func isJSONRequest(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}

// VolumeHandler applies a requested attenuation. The value "db", taken from
// a form field or a JSON body, is the attenuation in decibels; 0 means
// unattenuated, more negative is quieter.
func (s *Server) VolumeHandler(w http.ResponseWriter, r *http.Request) {
	var db float64
	if isJSONRequest(r) {
		var req struct {
			DB *float64 `json:"db"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		if req.DB == nil {
			http.Error(w, "missing db value", http.StatusBadRequest)
			return
		}
		db = *req.DB
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form data", http.StatusBadRequest)
			return
		}
		dbStr := r.Form.Get("db")
		if dbStr == "" {
			http.Error(w, "missing db value", http.StatusBadRequest)
			return
		}
		parsed, err := strconv.ParseFloat(dbStr, 64)
		if err != nil {
			http.Error(w, "invalid db value", http.StatusBadRequest)
			return
		}
		db = parsed
	}

	log.Debug("volume request", "db", db)

	s.mu.Lock()
	s.mixer.SetVolume(db)
	s.volumeDB = db
	s.mu.Unlock()

	if s.hub != nil {
		s.hub.Broadcast(sse.Event{
			Type: sse.TypeVolumeChange,
			Data: map[string]any{"db": db},
		})
	}

	w.WriteHeader(http.StatusNoContent)
}

// MuteHandler sets the mute state. The value "muted", taken from a form
// field or a JSON body, is a boolean; without it the current state is
// toggled.
func (s *Server) MuteHandler(w http.ResponseWriter, r *http.Request) {
	var requested *bool
	if isJSONRequest(r) {
		var req struct {
			Muted *bool `json:"muted"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		requested = req.Muted
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form data", http.StatusBadRequest)
			return
		}
		if v := r.Form.Get("muted"); v != "" {
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				http.Error(w, "invalid muted value", http.StatusBadRequest)
				return
			}
			requested = &parsed
		}
	}

	s.mu.Lock()
	muted := !s.muted
	if requested != nil {
		muted = *requested
	}
	s.mixer.SetMute(muted)
	s.muted = muted
	hasSwitch := s.mixer.HasPlaybackSwitch()
	s.mu.Unlock()

	log.Debug("mute request", "muted", muted, "has_switch", hasSwitch)

	if s.hub != nil {
		s.hub.Broadcast(sse.Event{
			Type: sse.TypeMuteChange,
			Data: map[string]any{"muted": muted},
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"muted":      muted,
		"has_switch": hasSwitch,
	})
}
