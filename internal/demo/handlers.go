package demo

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	servertiming "github.com/EmpoweredVote/server-timing"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RootHandler reports that the server is up.
func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("Server is up!\n"))
}

// SimulatedHandler serves a route that pretends to do latency_ms worth of
// work, honoring cancellation while it waits.
func SimulatedHandler(route SimulatedRoute) http.HandlerFunc {
	latency := time.Duration(route.LatencyMS) * time.Millisecond
	return func(w http.ResponseWriter, r *http.Request) {
		if latency > 0 {
			timer := time.NewTimer(latency)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-r.Context().Done():
				return
			}
		}
		writeJSON(w, map[string]any{
			"route":      route.Path,
			"latency_ms": route.LatencyMS,
		})
	}
}

// Handlers carries the demo's shared dependencies.
type Handlers struct {
	DB *gorm.DB
}

// ListBookmarks returns every bookmark, newest first, and contributes a
// dbread segment covering the select.
func (h *Handlers) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	tDB := time.Now()
	var bookmarks []Bookmark
	if err := h.DB.WithContext(r.Context()).Order("created_at DESC").Find(&bookmarks).Error; err != nil {
		log.Printf("[bookmarks] list failed err=%v", err)
		http.Error(w, "Failed to fetch bookmarks", http.StatusInternalServerError)
		return
	}

	_ = servertiming.AppendMetric(w.Header(), servertiming.Metric{
		Name:        "dbread",
		Description: "bookmarks select",
		Duration:    time.Since(tDB),
	})
	writeJSON(w, bookmarks)
}

// CreateBookmark inserts one bookmark from a JSON body and contributes a
// dbwrite segment covering the insert.
func (h *Handlers) CreateBookmark(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Title string   `json:"title"`
		URL   string   `json:"url"`
		Tags  []string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	if input.Title == "" || input.URL == "" {
		http.Error(w, "title and url are required", http.StatusBadRequest)
		return
	}

	bookmark := Bookmark{
		ID:    uuid.New(),
		Title: input.Title,
		URL:   input.URL,
		Tags:  pq.StringArray(input.Tags),
	}

	tDB := time.Now()
	if err := h.DB.WithContext(r.Context()).Create(&bookmark).Error; err != nil {
		log.Printf("[bookmarks] create failed err=%v", err)
		http.Error(w, "Failed to create bookmark", http.StatusInternalServerError)
		return
	}

	_ = servertiming.AppendMetric(w.Header(), servertiming.Metric{
		Name:     "dbwrite",
		Duration: time.Since(tDB),
	})
	writeJSONStatus(w, http.StatusCreated, bookmark)
}
