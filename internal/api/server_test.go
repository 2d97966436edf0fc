package api

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/dartrag/internal/config"
	"github.com/dgallion1/dartrag/internal/dart"
	"github.com/dgallion1/dartrag/internal/filing"
	"github.com/dgallion1/dartrag/internal/pathstore"
	"github.com/dgallion1/dartrag/internal/pipeline"
	"github.com/dgallion1/dartrag/internal/retry"
)

const testKey = "test-key"

const filingHTML = `<html><body>
<p>II. 사업의 내용</p>
<p>당사는 반도체와 디스플레이 패널을 제조하여 전 세계에 판매하고 있습니다.</p>
</body></html>`

type fakeDocs struct {
	docs    []pathstore.DocumentMeta
	deleted []string
}

func (f *fakeDocs) ListDocuments(_ context.Context, corpCode string) ([]pathstore.DocumentMeta, error) {
	var out []pathstore.DocumentMeta
	for _, d := range f.docs {
		if d.CorpCode == corpCode {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDocs) DeleteDocument(_ context.Context, corpCode, docID string) error {
	for _, d := range f.docs {
		if d.CorpCode == corpCode && d.DocID == docID {
			f.deleted = append(f.deleted, docID)
			return nil
		}
	}
	return pathstore.ErrNotFound
}

func newTestServer(t *testing.T, dartClient *dart.Client, docs DocumentStore) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.APIKey = testKey
	cfg.DataDir = t.TempDir()

	orch := pipeline.NewOrchestrator(cfg, filing.NewExtractor(nil, nil), nil, nil, nil)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)
	return NewServer(orch, dartClient, docs, nil, cfg)
}

func do(t *testing.T, s *Server, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+testKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func multipartBody(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func waitForJob(t *testing.T, s *Server, jobID string) map[string]any {
	t.Helper()
	var snap map[string]any
	require.Eventually(t, func() bool {
		rec := do(t, s, http.MethodGet, "/api/jobs/"+jobID+"/status", nil, "")
		if rec.Code != http.StatusOK {
			return false
		}
		snap = decode(t, rec)
		switch snap["status"] {
		case "completed", "failed", "partial", "empty":
			return true
		}
		return false
	}, 5*time.Second, 10*time.Millisecond)
	return snap
}

func TestHealthAndAuth(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats/dart", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/stats/dart", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid api key", decode(t, rec)["error"])
}

func TestSections(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := do(t, s, http.MethodPost, "/api/sections?doc_id=d1&corp_code=00126380", strings.NewReader(filingHTML), "text/html")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decode(t, rec)
	assert.Equal(t, "d1", out["doc_id"])
	sections := out["sections"].([]any)
	require.Len(t, sections, 1)
	first := sections[0].(map[string]any)
	assert.Equal(t, "II. 사업의 내용", first["original_section"])

	rec = do(t, s, http.MethodPost, "/api/sections", strings.NewReader("<p>짧음</p>"), "text/html")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode(t, rec)["sections"])

	rec = do(t, s, http.MethodPost, "/api/sections", strings.NewReader(""), "text/html")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFilingUploadLifecycle(t *testing.T) {
	s := newTestServer(t, nil, nil)

	body, ct := multipartBody(t, "20240312000736.html", filingHTML, map[string]string{
		"corp_code": "00126380",
		"corp_name": "삼성전자",
	})
	rec := do(t, s, http.MethodPost, "/api/filings", body, ct)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	accepted := decode(t, rec)
	jobID := accepted["job_id"].(string)
	assert.Equal(t, "20240312000736.html", accepted["doc_id"])
	assert.Equal(t, "filing", accepted["kind"])

	snap := waitForJob(t, s, jobID)
	assert.Equal(t, "completed", snap["status"])

	rec = do(t, s, http.MethodGet, "/api/jobs/"+jobID+"/result", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	sections := decode(t, rec)["sections"].([]any)
	require.Len(t, sections, 1)
}

func TestUploadValidation(t *testing.T) {
	s := newTestServer(t, nil, nil)

	body, ct := multipartBody(t, "filing.html", filingHTML, nil)
	rec := do(t, s, http.MethodPost, "/api/filings", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "corp_code is required", decode(t, rec)["error"])

	body, ct = multipartBody(t, "data.csv", "a,b", map[string]string{"corp_code": "1"})
	rec = do(t, s, http.MethodPost, "/api/filings", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, ct = multipartBody(t, "report.html", filingHTML, map[string]string{"company_code": "005930"})
	rec = do(t, s, http.MethodPost, "/api/reports", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, ct = multipartBody(t, "fnguide.pdf", "%PDF-broken", nil)
	rec = do(t, s, http.MethodPost, "/api/reports", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "company_code is required", decode(t, rec)["error"])
}

func TestReportUploadFailsOnBadPDF(t *testing.T) {
	s := newTestServer(t, nil, nil)

	body, ct := multipartBody(t, "fnguide.pdf", "not a pdf", map[string]string{"company_code": "005930"})
	rec := do(t, s, http.MethodPost, "/api/reports", body, ct)
	require.Equal(t, http.StatusAccepted, rec.Code)

	snap := waitForJob(t, s, decode(t, rec)["job_id"].(string))
	assert.Equal(t, "failed", snap["status"])
}

func TestJobNotFound(t *testing.T) {
	s := newTestServer(t, nil, nil)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/jobs/nope/status", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/jobs/nope/result", nil, "").Code)
}

func TestDocuments(t *testing.T) {
	docs := &fakeDocs{docs: []pathstore.DocumentMeta{
		{DocID: "20240312000736", CorpCode: "00126380", Kind: pathstore.KindFiling, Chunks: 4},
	}}
	s := newTestServer(t, nil, docs)

	rec := do(t, s, http.MethodGet, "/api/companies/00126380/documents", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["documents"], 1)

	rec = do(t, s, http.MethodGet, "/api/companies/999/documents", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, decode(t, rec)["documents"])

	rec = do(t, s, http.MethodDelete, "/api/companies/00126380/documents/20240312000736", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"20240312000736"}, docs.deleted)

	rec = do(t, s, http.MethodDelete, "/api/companies/00126380/documents/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDocumentsWithoutStore(t *testing.T) {
	s := newTestServer(t, nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, s, http.MethodGet, "/api/companies/1/documents", nil, "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, s, http.MethodGet, "/api/stats/dart", nil, "").Code)
}

func fakeDART(t *testing.T) *httptest.Server {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	fw, err := zw.Create("20240312000736.xml")
	require.NoError(t, err)
	_, err = fw.Write([]byte(filingHTML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/list.json":
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"status":"000","message":"정상","list":[{"corp_code":"00126380","corp_name":"삼성전자","rcept_no":"20240312000736","rcept_dt":"20240312"}]}`)
		case "/document.xml":
			w.Write(buf.Bytes())
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDartFetchQueuesFiling(t *testing.T) {
	srv := fakeDART(t)
	client := dart.NewClient(srv.URL, "k", retry.Policy{Attempts: 1}, nil)
	s := newTestServer(t, client, nil)

	rec := do(t, s, http.MethodPost, "/api/dart/filings",
		strings.NewReader(`{"corp_code":"00126380","year":2024,"report_codes":["11011"]}`), "application/json")
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	accepted := decode(t, rec)
	assert.Equal(t, "20240312000736", accepted["doc_id"])
	snap := waitForJob(t, s, accepted["job_id"].(string))
	assert.Equal(t, "completed", snap["status"])

	rec = do(t, s, http.MethodGet, "/api/stats/dart", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode(t, rec)["stats"].(map[string]any)
	assert.Equal(t, float64(2), stats["count"])

	rec = do(t, s, http.MethodPost, "/api/dart/filings", strings.NewReader(`{"corp_code":""}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
