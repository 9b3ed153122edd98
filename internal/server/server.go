// Package server exposes the embed/extract codec over HTTP.
//
// POST /embed takes a multipart "image" file and "string" field and answers
// with the PNG carrying the string. POST /extract takes an "image" file and
// answers {"extracted_string": ...} with the recovered text HTML-escaped.
// Everything else under / is served from the configured static directory.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io/fs"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/zedseven/stegtext"
	"github.com/zedseven/stegtext/internal/config"
)

// multipartOverhead is the slack allowed on top of MaxUploadBytes for the
// multipart framing and the "string" field.
const multipartOverhead = 64 * 1024

// Server handles embed and extract requests.
type Server struct {
	config *config.Config
	log    *slog.Logger
	mux    *http.ServeMux
}

// New creates a Server. If log is nil, slog.Default() is used.
func New(cfg *config.Config, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{config: cfg, log: log, mux: http.NewServeMux()}
	s.mux.HandleFunc("POST /embed", s.handleEmbed)
	s.mux.HandleFunc("POST /extract", s.handleExtract)
	s.mux.Handle("GET /", http.FileServer(staticFS{http.Dir(cfg.StaticDir)}))
	return s
}

// Handler returns the service's root handler, with request logging.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		s.mux.ServeHTTP(rec, r)

		s.log.Info("request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.config.ListenAddr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	timeout, err := s.config.ShutdownDuration()
	if err != nil {
		ln.Close()
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) handleEmbed(w http.ResponseWriter, r *http.Request) {
	file, ok := s.readImagePart(w, r)
	if !ok {
		return
	}
	defer file.Close()

	values, present := r.MultipartForm.Value["string"]
	if !present || len(values) == 0 {
		s.writeError(w, http.StatusBadRequest, "No string part")
		return
	}
	text := values[0]
	if len(text) > s.config.MaxPayloadBytes {
		s.writeError(w, http.StatusRequestedRangeNotSatisfiable, "String size exceeds the limit")
		return
	}

	pixels, ok := s.decodeImage(w, file)
	if !ok {
		return
	}

	encoded, err := stegtext.Embed(pixels, []byte(text))
	if err != nil {
		s.writeCodecError(w, "embed", err)
		return
	}

	var b bytes.Buffer
	if err := stegtext.EncodePNG(&b, encoded); err != nil {
		s.writeCodecError(w, "embed", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := b.WriteTo(w); err != nil {
		s.log.Warn("writing embed response", "error", err)
	}
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	file, ok := s.readImagePart(w, r)
	if !ok {
		return
	}
	defer file.Close()

	pixels, ok := s.decodeImage(w, file)
	if !ok {
		return
	}

	payload, err := stegtext.Extract(pixels)
	if err != nil {
		s.writeCodecError(w, "extract", err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"extracted_string": html.EscapeString(string(payload))})
}

// readImagePart parses the multipart form and returns the validated "image" file.
// On failure it has already written the response.
func (s *Server) readImagePart(w http.ResponseWriter, r *http.Request) (multipart.File, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(s.config.MaxUploadBytes + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "File size exceeds the limit")
			return nil, false
		}
		s.writeError(w, http.StatusBadRequest, "No file part")
		return nil, false
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "No file part")
		return nil, false
	}
	if header.Filename == "" {
		file.Close()
		s.writeError(w, http.StatusBadRequest, "No selected file")
		return nil, false
	}
	if !s.config.AllowedExtension(header.Filename) {
		file.Close()
		s.writeError(w, http.StatusBadRequest, "File type not allowed")
		return nil, false
	}
	if header.Size > s.config.MaxUploadBytes {
		file.Close()
		s.writeError(w, http.StatusRequestEntityTooLarge, "File size exceeds the limit")
		return nil, false
	}
	return file, true
}

// decodeImage decodes the uploaded image, refusing one whose header declares more than
// MaxImagePixels pixels. On failure it has already written the response.
func (s *Server) decodeImage(w http.ResponseWriter, file multipart.File) (*stegtext.PixelBuffer, bool) {
	pixels, _, err := stegtext.DecodeImageLimit(file, s.config.MaxImagePixels)
	if err != nil {
		var tooLarge *stegtext.ImageTooLargeError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, err.Error())
			return nil, false
		}
		s.writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return pixels, true
}

func (s *Server) writeCodecError(w http.ResponseWriter, op string, err error) {
	var (
		capacity    *stegtext.CapacityExceededError
		malformed   *stegtext.MalformedStreamError
		unsupported *stegtext.UnsupportedPixelFormatError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &capacity):
		status = http.StatusRequestedRangeNotSatisfiable
	case errors.As(err, &malformed):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &unsupported):
		status = http.StatusUnsupportedMediaType
	default:
		s.log.Error("codec failure", "op", op, "error", err)
	}
	s.writeError(w, status, err.Error())
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("writing JSON response", "error", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// staticFS serves files but never lists a directory other than the root,
// which http.FileServer answers with index.html.
type staticFS struct {
	http.FileSystem
}

func (f staticFS) Open(name string) (http.File, error) {
	file, err := f.FileSystem.Open(name)
	if err != nil || name == "/" {
		return file, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}
