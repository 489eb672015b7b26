package proxy

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/abdhe/semantic-llm-cache/pkg/cache"
)

// RegisterCacheAdminRoutes wires the cache's inspection/control surface
// onto mux, grounded on the original cache_integration.py router: stats,
// clear, enable/disable, list, JSON/CSV export, and threshold/TTL get-set.
// The teacher's own HTTP surface (cmd/proxy/main.go) is built on stdlib
// net/http + ServeMux rather than a router framework, so this follows the
// same convention instead of reaching for a new dependency.
func RegisterCacheAdminRoutes(mux *http.ServeMux, c *cache.Cache) {
	mux.HandleFunc("/cache/stats", func(w http.ResponseWriter, r *http.Request) {
		snap := c.Stats()
		writeJSON(w, http.StatusOK, cacheStatsResponse{
			Enabled:        c.Enabled(),
			CacheSize:      c.Size(),
			HitCount:       snap.Hits,
			MissCount:      snap.Misses,
			HitRate:        snap.HitRate(),
			TotalSavedCost: snap.SavedCost,
			Status:         statusOf(c.Enabled()),
		})
	})

	mux.HandleFunc("/cache/clear", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := c.Clear(); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, cacheActionResponse{Status: "cleared"})
	})

	mux.HandleFunc("/cache/enable", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		c.SetEnabled(true)
		writeJSON(w, http.StatusOK, cacheActionResponse{Status: "enabled"})
	})

	mux.HandleFunc("/cache/disable", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		c.SetEnabled(false)
		writeJSON(w, http.StatusOK, cacheActionResponse{Status: "disabled"})
	})

	mux.HandleFunc("/cache/list", func(w http.ResponseWriter, r *http.Request) {
		limit := queryIntOrDefault(r, "limit", 10)
		writeJSON(w, http.StatusOK, c.Recent(limit))
	})

	mux.HandleFunc("/cache/export/json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		limit := queryIntOrDefault(r, "limit", 0)
		if limit == 0 {
			limit = 1 << 30
		}
		if err := c.ExportJSON(w, limit); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	mux.HandleFunc("/cache/export/csv", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		limit := queryIntOrDefault(r, "limit", 0)
		if limit == 0 {
			limit = 1 << 30
		}
		if err := c.ExportCSV(w, limit); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	mux.HandleFunc("/cache/threshold", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]float64{"threshold": c.Threshold()})
		case http.MethodPost:
			v, err := strconv.ParseFloat(r.URL.Query().Get("threshold"), 64)
			if err != nil || v < 0 || v > 1 {
				http.Error(w, "threshold must be a float in [0,1]", http.StatusBadRequest)
				return
			}
			c.SetThreshold(v)
			writeJSON(w, http.StatusOK, map[string]float64{"threshold": v})
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/cache/ttl", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]int64{"ttl_seconds": c.TTL()})
		case http.MethodPost:
			v, err := strconv.ParseInt(r.URL.Query().Get("ttl_seconds"), 10, 64)
			if err != nil || v < 0 {
				http.Error(w, "ttl_seconds must be a non-negative integer", http.StatusBadRequest)
				return
			}
			c.SetTTL(v)
			writeJSON(w, http.StatusOK, map[string]int64{"ttl_seconds": v})
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

type cacheStatsResponse struct {
	Enabled        bool    `json:"enabled"`
	CacheSize      int     `json:"cache_size"`
	HitCount       uint64  `json:"hit_count"`
	MissCount      uint64  `json:"miss_count"`
	HitRate        float64 `json:"hit_rate"`
	TotalSavedCost float64 `json:"total_saved_cost"`
	Status         string  `json:"status"`
}

type cacheActionResponse struct {
	Status string `json:"status"`
}

func statusOf(enabled bool) string {
	if enabled {
		return "active"
	}
	return "disabled"
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func queryIntOrDefault(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
