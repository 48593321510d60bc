package server

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/scythe504/undercover-backend/internal"
)

const qrSize = 320

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	r.Use(s.corsMiddleware)
	r.Use(s.loggingMiddleware)

	r.Handle("/ws", s.gateway)

	r.HandleFunc("/healthz", s.HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/rooms-available", s.GetRoomToJoin).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/rooms/{code}", s.RoomInfoHandler).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/rooms/{code}/qr", s.RoomQRHandler).Methods(http.MethodGet)
	r.HandleFunc("/categories", s.CategoriesHandler).Methods(http.MethodGet, http.MethodOptions)

	return r
}

// CORS middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.allowOrigin(r.Header.Get("Origin")))
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Credentials", "false")

		// The gateway checks websocket origins itself.
		if strings.ToLower(r.Header.Get("Upgrade")) == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowOrigin(origin string) string {
	allowed := s.cfg.AllowedOrigins
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return "*"
	}
	if origin != "" && slices.ContainsFunc(allowed, func(a string) bool {
		return strings.EqualFold(strings.TrimSuffix(a, "/"), origin)
	}) {
		return origin
	}
	return allowed[0]
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrader take over the connection.
func (rec *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rec.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	rec.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(start)))
	})
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"rooms":  s.registry.Count(),
	})
}

func (s *Server) GetRoomToJoin(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()
	roomCode := s.registry.GetJoinableRoom()

	var resp internal.Response

	if roomCode != "" {
		resp = internal.Response{
			StatusCode:    http.StatusOK,
			RespStartTime: startTime,
			Data:          roomCode,
		}
	} else {
		resp = internal.Response{
			StatusCode:    http.StatusNotFound,
			RespStartTime: startTime,
			Data:          "No joinable rooms available",
		}
	}

	endTime := time.Now().UnixMilli()
	resp.RespEndTime = endTime
	resp.NetRespTime = endTime - startTime

	s.writeJSON(w, resp.StatusCode, resp)
}

func (s *Server) RoomInfoHandler(w http.ResponseWriter, r *http.Request) {
	info, err := s.registry.RoomInfo(mux.Vars(r)["code"])
	if err != nil {
		s.writeJSON(w, http.StatusNotFound, internal.ErrorData{Text: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

// RoomQRHandler renders a PNG QR code that opens the client on the room.
func (s *Server) RoomQRHandler(w http.ResponseWriter, r *http.Request) {
	info, err := s.registry.RoomInfo(mux.Vars(r)["code"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	png, err := qrcode.Encode(s.JoinURL(info.Code), qrcode.Medium, qrSize)
	if err != nil {
		s.logger.Warn("qr generation failed", zap.String("room", info.Code), zap.Error(err))
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

// JoinURL is the link a join QR code encodes.
func (s *Server) JoinURL(code string) string {
	return strings.TrimSuffix(s.cfg.PublicURL, "/") + "/?room=" + code
}

func (s *Server) CategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories := s.catalog.Categories()
	out := make([]internal.CategoryData, 0, len(categories)+1)
	for _, c := range categories {
		out = append(out, internal.CategoryData{ID: c.ID, Name: c.Name})
	}
	out = append(out, internal.CategoryData{ID: internal.CustomCategory, Name: "Custom words"})
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("error encoding response", zap.Error(err))
	}
}
