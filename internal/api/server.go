package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"echoguard/internal/analysis"
	"echoguard/internal/analytics"
	"echoguard/internal/records"
)

const maxBodyBytes = 1 << 20

// Server exposes the analysis service over HTTP.
type Server struct {
	svc           *analysis.Service
	addr          string
	allowedOrigin string
	server        *http.Server
	now           func() time.Time
}

func New(svc *analysis.Service, addr, allowedOrigin string) *Server {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return &Server{svc: svc, addr: addr, allowedOrigin: allowedOrigin, now: time.Now}
}

// Handler returns the routed handler with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	for _, prefix := range []string{"", "/api"} {
		mux.HandleFunc("GET "+prefix+"/health", s.health)
		mux.HandleFunc("POST "+prefix+"/analyze", s.analyze)
		mux.HandleFunc("GET "+prefix+"/stats", s.stats)
		mux.HandleFunc("GET "+prefix+"/stats/trend", s.trend)
	}
	mux.HandleFunc("GET /records", s.listRecords)
	mux.HandleFunc("GET /records/{id}", s.getRecord)
	mux.HandleFunc("DELETE /records/{id}", s.deleteRecord)
	// paths used by the original web client
	mux.HandleFunc("GET /api/emotions", s.listRecords)
	mux.HandleFunc("GET /api/emotions/{id}", s.getRecord)
	mux.HandleFunc("DELETE /api/emotions/{id}", s.deleteRecord)

	return withCORS(s.allowedOrigin, mux)
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	log.Printf("🌐 Starting EchoGuard API on %s", s.addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func withCORS(origin string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

type healthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Message:   "EchoGuard backend is running.",
		Timestamp: s.now().UTC().Format(records.TimestampLayout),
	})
}

// AnalyzeRequest accepts `text`, falling back to the legacy `mockText` field.
type AnalyzeRequest struct {
	Text     string `json:"text"`
	MockText string `json:"mockText,omitempty"`
}

type AnalysisSummary struct {
	Emotion    records.Emotion `json:"emotion"`
	Confidence float64         `json:"confidence"`
	IsCrisis   bool            `json:"is_crisis"`
}

type AnalyzeResponse struct {
	Success         bool            `json:"success"`
	Data            records.Record  `json:"data"`
	Analysis        AnalysisSummary `json:"analysis"`
	CrisisAlertSent bool            `json:"crisis_alert_sent"`
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	// a malformed body counts as missing text
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		log.Printf("⚠️ analyze: invalid request body: %v", err)
	}
	text := req.Text
	if text == "" {
		text = req.MockText
	}

	out, err := s.svc.Analyze(r.Context(), text)
	if err != nil {
		if _, ok := analysis.IsValidation(err); ok {
			writeError(w, http.StatusBadRequest, "No text provided")
			return
		}
		log.Printf("❌ analyze failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, AnalyzeResponse{
		Success: true,
		Data:    out.Record,
		Analysis: AnalysisSummary{
			Emotion:    out.Record.Emotion,
			Confidence: out.Record.Confidence,
			IsCrisis:   out.Record.IsCrisis,
		},
		CrisisAlertSent: out.AlertSent,
	})
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	recs, err := s.svc.List()
	if err != nil {
		log.Printf("❌ list records failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": recs})
}

func (s *Server) getRecord(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, err := s.svc.Get(id)
	if err != nil {
		if errors.Is(err, records.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Record not found")
			return
		}
		log.Printf("❌ get record %s failed: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": rec})
}

func (s *Server) deleteRecord(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.svc.Delete(id); err != nil {
		if errors.Is(err, records.ErrStoreNotFound) {
			writeError(w, http.StatusNotFound, "No records found")
			return
		}
		log.Printf("❌ delete record %s failed: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Record deleted"})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	day := s.now().UTC()
	if q := r.URL.Query().Get("date"); q != "" {
		parsed, err := time.Parse("2006-01-02", q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}
	recs, err := s.svc.List()
	if err != nil {
		log.Printf("❌ stats failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": analytics.AnalyzeDaily(recs, day)})
}

func (s *Server) trend(w http.ResponseWriter, r *http.Request) {
	days := 7
	if q := r.URL.Query().Get("days"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > 366 {
			writeError(w, http.StatusBadRequest, "days must be between 1 and 366")
			return
		}
		days = n
	}
	recs, err := s.svc.List()
	if err != nil {
		log.Printf("❌ trend failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": analytics.WellbeingTrend(recs, s.now().UTC(), days)})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("⚠️ failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
