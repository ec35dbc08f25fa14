package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/nao1215/docmetrics/internal/docx"
	"github.com/nao1215/docmetrics/internal/fetch"
	"github.com/nao1215/docmetrics/internal/model"
	"github.com/nao1215/docmetrics/internal/pipeline"
	"github.com/nao1215/docmetrics/internal/report"
)

// errBadUpload marks malformed multipart requests.
var errBadUpload = errors.New("malformed upload")

// maxFieldBytes limits non-file form fields.
const maxFieldBytes = 64

// upload is one document received in a multipart request.
type upload struct {
	name string
	data []byte
}

// outcome is the analysis result of one upload.
type outcome struct {
	name   string
	report *model.Report
	err    error
}

// Result is one entry of the /analyze response.
type Result struct {
	File   string        `json:"file"`
	Report *model.Report `json:"report,omitempty"`
	Error  string        `json:"error,omitempty"`
	Code   string        `json:"code,omitempty"`
}

// AnalyzeResponse is the body of a /analyze response.
type AnalyzeResponse struct {
	Results []Result `json:"results"`
}

type indexData struct {
	Formats   []report.Format
	MaxUpload string
	MaxFiles  int
	Version   string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeErr(w, http.StatusNotFound, "not_found", "not found")
		return
	}

	var buf bytes.Buffer
	err := s.tmpl.ExecuteTemplate(&buf, "index.html", indexData{
		Formats:   report.Formats(),
		MaxUpload: humanize.IBytes(uint64(s.maxUploadBytes)), //nolint:gosec // limit is positive
		MaxFiles:  s.maxFiles,
		Version:   s.version,
	})
	if err != nil {
		s.logger.Error("failed to render index", "request_id", RequestID(r.Context()), "error", err)
		writeErr(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"active":  s.inFlight.Load(),
		"version": s.version,
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	uploads, _, err := s.readUploads(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	outcomes := s.analyzeAll(r.Context(), uploads)
	resp := AnalyzeResponse{Results: make([]Result, len(outcomes))}
	for i, o := range outcomes {
		res := Result{File: o.name, Report: o.report}
		if o.err != nil {
			status := statusFor(o.err)
			res.Error = publicMessage(o.err, status)
			res.Code = codeFor(status)
		}
		resp.Results[i] = res
	}

	status := http.StatusOK
	if err := allFailed(outcomes); err != nil {
		status = statusFor(err)
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	uploads, formField, err := s.readUploads(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	name := r.URL.Query().Get("format")
	if name == "" {
		name = formField
	}
	format, err := report.ParseFormat(name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	outcomes := s.analyzeAll(r.Context(), uploads)
	if err := allFailed(outcomes); err != nil {
		s.writeError(w, r, err)
		return
	}

	batch := model.NewBatch(s.now().UTC())
	for _, o := range outcomes {
		if o.err != nil {
			batch.AddError(o.name, o.err)
			continue
		}
		batch.AddReport(o.name, o.report)
	}

	var buf bytes.Buffer
	wr, err := report.NewWriter(format, &buf)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := wr.WriteBatch(batch); err != nil {
		s.writeError(w, r, fmt.Errorf("failed to write %s report: %w", format, err))
		return
	}

	filename := report.ExportFileName(format, batch.GeneratedAt)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

// readUploads streams the multipart body, reading each "files" part up to
// the per-file limit. It also returns the "format" field if present.
func (s *Server) readUploads(w http.ResponseWriter, r *http.Request) ([]upload, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxRequestBytes())

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", errBadUpload, err)
	}

	var (
		uploads []upload
		format  string
	)
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				return nil, "", fmt.Errorf("%w: request body over %d bytes", fetch.ErrTooLarge, mbe.Limit)
			}
			return nil, "", fmt.Errorf("%w: %w", errBadUpload, err)
		}

		switch part.FormName() {
		case "files":
			if part.FileName() == "" {
				break
			}
			if len(uploads) >= s.maxFiles {
				_ = part.Close()
				return nil, "", fmt.Errorf("%w: at most %d per request", ErrTooManyFiles, s.maxFiles)
			}
			data, err := fetch.ReadAll(part, s.maxUploadBytes)
			if err != nil {
				_ = part.Close()
				if errors.Is(err, fetch.ErrTooLarge) {
					return nil, "", fmt.Errorf("%w: %s is larger than %s",
						fetch.ErrTooLarge, part.FileName(), humanize.IBytes(uint64(s.maxUploadBytes))) //nolint:gosec // limit is positive
				}
				return nil, "", fmt.Errorf("%w: %w", errBadUpload, err)
			}
			uploads = append(uploads, upload{name: part.FileName(), data: data})
		case "format":
			v, err := io.ReadAll(io.LimitReader(part, maxFieldBytes))
			if err != nil {
				_ = part.Close()
				return nil, "", fmt.Errorf("%w: %w", errBadUpload, err)
			}
			format = strings.TrimSpace(string(v))
		}
		_ = part.Close()
	}

	if len(uploads) == 0 {
		return nil, "", ErrNoFiles
	}
	return uploads, format, nil
}

// maxRequestBytes bounds the whole body: every file at its limit plus
// room for multipart framing and form fields.
func (s *Server) maxRequestBytes() int64 {
	return int64(s.maxFiles)*s.maxUploadBytes + 1<<20
}

// analyzeAll analyzes the uploads one after another in upload order.
// Concurrency across requests is bounded by the semaphore.
func (s *Server) analyzeAll(ctx context.Context, uploads []upload) []outcome {
	outcomes := make([]outcome, len(uploads))
	for i, u := range uploads {
		rep, err := pipeline.Analyze(ctx, u.data, u.name, s.analysis)
		if err != nil {
			s.logger.Warn("analysis failed",
				"request_id", RequestID(ctx),
				"file", u.name,
				"error", err,
			)
		}
		outcomes[i] = outcome{name: u.name, report: rep, err: err}
	}
	return outcomes
}

// allFailed returns the first error when no upload was analyzed.
func allFailed(outcomes []outcome) error {
	for _, o := range outcomes {
		if o.err == nil {
			return nil
		}
	}
	if len(outcomes) == 0 {
		return ErrNoFiles
	}
	return outcomes[0].err
}

// statusFor maps an error to an HTTP status code.
func statusFor(err error) int {
	var mbe *http.MaxBytesError
	switch {
	case errors.Is(err, fetch.ErrTooLarge), errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, docx.ErrUnsupportedFormat), errors.Is(err, docx.ErrEmptyDocument):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNoFiles), errors.Is(err, ErrTooManyFiles),
		errors.Is(err, errBadUpload), errors.Is(err, report.ErrUnknownFormat):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func codeFor(status int) string {
	switch status {
	case http.StatusRequestEntityTooLarge:
		return "too_large"
	case http.StatusUnprocessableEntity:
		return "unprocessable_document"
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusServiceUnavailable:
		return "unavailable"
	default:
		return "internal_error"
	}
}

// publicMessage hides internal errors from clients.
func publicMessage(err error, status int) string {
	if status == http.StatusInternalServerError {
		return "internal server error"
	}
	msg := err.Error()
	if len(msg) > 300 {
		msg = msg[:300] + "..."
	}
	return msg
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "request_id", RequestID(r.Context()), "error", err)
	}
	writeErr(w, status, codeFor(status), publicMessage(err, status))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": message,
		"code":  code,
	})
}
