// Package server exposes claim verification over a small JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	verrors "github.com/manya9155/Hallucination-Detector/internal/errors"
	"github.com/manya9155/Hallucination-Detector/internal/extract"
	"github.com/manya9155/Hallucination-Detector/internal/model"
)

const (
	requestTimeout  = 2 * time.Minute
	shutdownTimeout = 10 * time.Second
)

// Checker runs verifications. *pipeline.Pipeline implements it.
type Checker interface {
	CheckText(ctx context.Context, text string) (*model.Report, error)
	CheckClaims(ctx context.Context, lines []string) (*model.Report, error)
	VerifyAttributes(ctx context.Context, title, text string, claims []model.AttributeClaim) (*model.Report, error)
}

// CheckRequest is the body of POST /api/v1/check. Claims, when given, are
// verified as-is; otherwise claims are extracted from Text.
type CheckRequest struct {
	Text   string   `json:"text,omitempty"`
	Claims []string `json:"claims,omitempty"`
}

// AttributesRequest is the body of POST /api/v1/attributes
type AttributesRequest struct {
	Title  string           `json:"title,omitempty"`
	Text   string           `json:"text,omitempty"`
	Claims []AttributeInput `json:"claims,omitempty"`
}

// AttributeInput is one attribute/value pair. Value may be a JSON string or number.
type AttributeInput struct {
	Attribute string      `json:"attribute"`
	Value     interface{} `json:"value"`
}

// ErrorResponse is returned with every non-2xx status
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Server serves the verification API
type Server struct {
	router  *chi.Mux
	checker Checker
	maxBody int64
	logger  *log.Logger
}

// NewServer creates a server for checker using the server section of cfg
func NewServer(checker Checker, cfg model.ServerConfig, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: logger, NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s := &Server{router: r, checker: checker, maxBody: maxBody, logger: logger}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/check", s.handleCheck)
		r.Post("/attributes", s.handleAttributes)
	})
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if !s.decode(w, r, &req) {
		return
	}

	var (
		rep *model.Report
		err error
	)
	if len(req.Claims) > 0 {
		lines := make([]string, 0, len(req.Claims))
		for _, c := range req.Claims {
			if c = extract.Sanitize(c); c != "" {
				lines = append(lines, c)
			}
		}
		rep, err = s.checker.CheckClaims(r.Context(), lines)
	} else {
		rep, err = s.checker.CheckText(r.Context(), req.Text)
	}
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

func (s *Server) handleAttributes(w http.ResponseWriter, r *http.Request) {
	var req AttributesRequest
	if !s.decode(w, r, &req) {
		return
	}

	claims := make([]model.AttributeClaim, 0, len(req.Claims))
	for _, in := range req.Claims {
		ac, err := in.toClaim()
		if err != nil {
			s.respondErr(w, err)
			return
		}
		claims = append(claims, ac)
	}

	rep, err := s.checker.VerifyAttributes(r.Context(), extract.Sanitize(req.Title), req.Text, claims)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

func (in AttributeInput) toClaim() (model.AttributeClaim, error) {
	attr := model.NormalizeAttribute(in.Attribute)
	if !attr.IsKnown() {
		return model.AttributeClaim{}, verrors.Newf(verrors.EUsage, "unknown attribute %q", in.Attribute)
	}

	var value string
	switch v := in.Value.(type) {
	case string:
		value = extract.Sanitize(v)
	case float64:
		value = strconv.FormatFloat(v, 'f', -1, 64)
	}
	if value == "" {
		return model.AttributeClaim{}, verrors.Newf(verrors.EUsage, "attribute %q needs a string or number value", in.Attribute)
	}
	return model.AttributeClaim{Attribute: attr, Value: value}, nil
}

// decode reads a size-limited JSON body, answering 400/413 itself on failure
func (s *Server) decode(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)})
			return false
		}
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body: " + err.Error(), Code: string(verrors.EUsage)})
		return false
	}
	return true
}

func (s *Server) respondErr(w http.ResponseWriter, err error) {
	code := verrors.GetCode(err)

	status := http.StatusInternalServerError
	switch code {
	case verrors.EUsage:
		status = http.StatusBadRequest
	case verrors.EProviderUnavailable, verrors.EProviderAuth:
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		s.logger.Printf("request failed: %v", err)
	}

	msg := err.Error()
	var coded *verrors.Error
	if errors.As(err, &coded) && coded.Cause == nil {
		msg = coded.Msg
	}
	respondJSON(w, status, ErrorResponse{Error: strings.TrimSpace(msg), Code: string(code)})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
