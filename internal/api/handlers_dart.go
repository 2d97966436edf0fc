package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/dgallion1/dartrag/internal/dart"
	"github.com/dgallion1/dartrag/internal/pipeline"
)

type dartFetchRequest struct {
	CorpCode    string   `json:"corp_code"`
	CorpName    string   `json:"corp_name"`
	Year        int      `json:"year"`
	ReportCodes []string `json:"report_codes"`
}

// handleDartFetch downloads the latest periodic report for a company from
// DART and queues it as a filing job.
func (s *Server) handleDartFetch(w http.ResponseWriter, r *http.Request) {
	if s.dart == nil {
		jsonError(w, "dart client not configured", http.StatusServiceUnavailable)
		return
	}

	var req dartFetchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.CorpCode == "" || req.Year <= 0 {
		jsonError(w, "corp_code and year are required", http.StatusBadRequest)
		return
	}
	codes := req.ReportCodes
	if len(codes) == 0 {
		codes = s.cfg.TargetReportCodes
	}

	dir := filepath.Join(s.cfg.DataDir, "dart", req.CorpCode, strconv.Itoa(req.Year))
	fetched, err := s.dart.Fetch(r.Context(), req.CorpCode, req.Year, codes, dir)
	if err != nil {
		code := http.StatusBadGateway
		if errors.Is(err, dart.ErrNoReport) {
			code = http.StatusNotFound
		}
		jsonError(w, err.Error(), code)
		return
	}
	data, err := fetched.ReadReport()
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	corpName := req.CorpName
	if corpName == "" {
		corpName = fetched.Filing.CorpName
	}
	filename := fetched.Filing.ReceiptNo + fetched.Ext
	job := pipeline.NewJob(pipeline.KindFiling, filename, fetched.Filing.ReceiptNo, req.CorpCode, corpName, data)
	s.submit(w, job)
}
