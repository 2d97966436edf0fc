package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/dartrag/internal/document"
	"github.com/dgallion1/dartrag/internal/filing"
	"github.com/dgallion1/dartrag/internal/parser"
	"github.com/dgallion1/dartrag/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

// upload is a validated multipart file.
type upload struct {
	filename string
	data     []byte
}

// readUpload parses the multipart form and returns its "file" part. It writes
// the error response itself and returns false on failure.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, supported func(string) bool) (upload, bool) {
	// extra 1MB for form overhead
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return upload{}, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return upload{}, false
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !supported(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return upload{}, false
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return upload{}, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return upload{}, false
	}
	return upload{filename: filename, data: data}, true
}

func (s *Server) handleFilingUpload(w http.ResponseWriter, r *http.Request) {
	defer removeForm(r)
	up, ok := s.readUpload(w, r, parser.IsSupportedExtension)
	if !ok {
		return
	}

	corpCode := r.FormValue("corp_code")
	if corpCode == "" {
		jsonError(w, "corp_code is required", http.StatusBadRequest)
		return
	}
	job := pipeline.NewJob(pipeline.KindFiling, up.filename, r.FormValue("doc_id"), corpCode, r.FormValue("corp_name"), up.data)
	s.submit(w, job)
}

func (s *Server) handleReportUpload(w http.ResponseWriter, r *http.Request) {
	isPDF := func(name string) bool { return strings.EqualFold(filepath.Ext(name), ".pdf") }
	defer removeForm(r)
	up, ok := s.readUpload(w, r, isPDF)
	if !ok {
		return
	}

	companyCode := r.FormValue("company_code")
	if companyCode == "" {
		jsonError(w, "company_code is required", http.StatusBadRequest)
		return
	}
	job := pipeline.NewJob(pipeline.KindReport, up.filename, r.FormValue("doc_id"), companyCode, "", up.data)
	s.submit(w, job)
}

func removeForm(r *http.Request) {
	if r.MultipartForm != nil {
		r.MultipartForm.RemoveAll()
	}
}

func (s *Server) submit(w http.ResponseWriter, job *pipeline.Job) {
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"doc_id":   job.DocID,
		"kind":     job.Kind,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/jobs/%s/status", job.ID),
	})
}

// handleSections segments the request body synchronously. The body is raw
// filing markup; ?charset= overrides encoding detection.
func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes))
	if err != nil {
		jsonError(w, "failed to read body: "+err.Error(), http.StatusRequestEntityTooLarge)
		return
	}

	q := r.URL.Query()
	meta := filing.Meta{DocID: q.Get("doc_id"), CorpCode: q.Get("corp_code"), CorpName: q.Get("corp_name")}

	root, err := filing.Parse(filing.DecodeContent(body, q.Get("charset")))
	if err != nil {
		code := http.StatusUnprocessableEntity
		if errors.Is(err, filing.ErrEmptyInput) {
			code = http.StatusBadRequest
		}
		jsonError(w, err.Error(), code)
		return
	}

	sections := s.orchestrator.Extractor().Segment(root, meta)
	if sections == nil {
		sections = []document.Section{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"doc_id":   meta.DocID,
		"sections": sections,
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	if !job.Done() {
		jsonError(w, fmt.Sprintf("job is %s", snap.Status), http.StatusConflict)
		return
	}
	res := job.Result()
	writeJSON(w, http.StatusOK, map[string]any{
		"job_id":    snap.ID,
		"status":    snap.Status,
		"sections":  res.Sections,
		"documents": res.Documents,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
