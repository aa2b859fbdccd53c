package web

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/anseconv/internal/convert"
	"github.com/JonMunkholm/anseconv/internal/logging"
	"github.com/JonMunkholm/anseconv/internal/source"
)

// handleHealth reports that the server is up and which schema it serves.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status": "ok",
		"types":  len(s.schema.TypeNames()),
	})
}

// handleConvertWorkbook converts an uploaded .xlsx workbook into declaration
// text. The multipart form carries the workbook in "file" and an optional
// worksheet selection in "worksheet".
//
// The whole conversion is buffered so a failing row yields a JSON error
// instead of a truncated text body.
func (s *Server) handleConvertWorkbook(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, fmt.Errorf("%w: limit is %d bytes", errFileTooLarge, maxSize))
			return
		}
		s.respondError(w, r, fmt.Errorf("%w: %v", errNoFile, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, errNoFile)
		return
	}
	defer file.Close()

	if _, err := convert.CheckExtension(header.Filename, convert.ExtWorkbook); err != nil {
		s.respondError(w, r, err)
		return
	}

	selection := strings.TrimSpace(r.FormValue("worksheet"))
	if selection == "" {
		selection = s.cfg.Convert.Worksheet
	}

	ctx := r.Context()
	if err := s.limiter.Acquire(ctx); err != nil {
		s.respondError(w, r, err)
		return
	}
	defer s.limiter.Release()

	wb, err := source.ReadWorkbook(file, header.Size, header.Filename)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer wb.Close()

	logger := logging.WithFields(ctx, "file", header.Filename, "worksheet", selection)
	conv := convert.New(s.schema, logger)

	var buf bytes.Buffer
	stats, err := conv.WorkbookToText(ctx, wb, selection, &buf)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Run-ID", stats.RunID)
	w.Header().Set("X-Records", strconv.Itoa(stats.Records))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.Warn("response write failed", "error", err)
	}
}

// clientIP strips the port from a RemoteAddr.
func clientIP(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
