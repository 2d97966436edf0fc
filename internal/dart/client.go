// Package dart talks to the DART OpenAPI (opendart.fss.or.kr) to find and
// download periodic report filings.
package dart

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dgallion1/dartrag/internal/retry"
)

var (
	// ErrNoReport is returned when a search finds no matching filing.
	ErrNoReport = errors.New("dart: no matching report")
	// ErrBadArchive is returned when a downloaded document is not a usable zip.
	ErrBadArchive = errors.New("dart: invalid document archive")
)

// Report codes used by the periodic-report APIs.
const (
	ReportAnnual     = "11011"
	ReportHalfYear   = "11012"
	ReportFirstQtr   = "11013"
	ReportThirdQtr   = "11014"
	minArchiveBytes  = 100
	statusOK         = "000"
	statusNoData     = "013"
	defaultUserAgent = "dartrag/1.0"
)

// detailTypes maps report codes to list.json pblntf_detail_ty values.
var detailTypes = map[string]string{
	ReportAnnual:   "A001",
	ReportHalfYear: "A002",
	ReportFirstQtr: "A003",
	ReportThirdQtr: "A003",
}

// Statuses that retrying will not fix: bad key, unregistered key, locked key,
// request limit exceeded, bad parameters.
var fatalStatuses = map[string]bool{
	"010": true,
	"011": true,
	"012": true,
	"020": true,
	"100": true,
	"101": true,
	"901": true,
}

// Filing is one entry of a list.json search result.
type Filing struct {
	CorpCode    string `json:"corp_code" yaml:"corp_code"`
	CorpName    string `json:"corp_name" yaml:"corp_name"`
	StockCode   string `json:"stock_code" yaml:"stock_code"`
	ReportName  string `json:"report_nm" yaml:"report_nm"`
	ReceiptNo   string `json:"rcept_no" yaml:"rcept_no"`
	FilerName   string `json:"flr_nm" yaml:"flr_nm"`
	ReceiptDate string `json:"rcept_dt" yaml:"rcept_dt"`
	Remark      string `json:"rm" yaml:"rm"`
}

type listResponse struct {
	Status     string   `json:"status"`
	Message    string   `json:"message"`
	TotalCount int      `json:"total_count"`
	List       []Filing `json:"list"`
}

// APIError is a non-success status reported by DART.
type APIError struct {
	Status  string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("dart api status %s: %s", e.Status, e.Message)
}

// Client calls the DART OpenAPI. Every call runs under the client's retry policy.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	policy     retry.Policy
	log        *slog.Logger

	Stats *LatencyStats
}

func NewClient(baseURL, apiKey string, policy retry.Policy, log *slog.Logger) *Client {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if policy.OnRetry == nil {
		policy.OnRetry = func(attempt uint, err error) {
			log.Warn("dart request failed", "attempt", attempt, "error", err)
		}
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		policy: policy,
		log:    log,
		Stats:  NewLatencyStats(time.Hour),
	}
}

// FindLatestReport returns the most recent periodic report filed by corpCode
// during year. reportCodes defaults to the annual report.
func (c *Client) FindLatestReport(ctx context.Context, corpCode string, year int, reportCodes []string) (*Filing, error) {
	if len(reportCodes) == 0 {
		reportCodes = []string{ReportAnnual}
	}
	log := c.log.With("corp_code", corpCode, "year", year, "report_codes", reportCodes)
	log.Debug("searching for report")

	var candidates []Filing
	seen := make(map[string]bool)
	for _, code := range reportCodes {
		detail, ok := detailTypes[code]
		if !ok {
			return nil, fmt.Errorf("unknown report code %q", code)
		}
		if seen[detail] {
			continue
		}
		seen[detail] = true

		f, err := retry.Do(ctx, c.policy, func(ctx context.Context) (*Filing, error) {
			return c.searchOnce(ctx, corpCode, year, detail)
		})
		if errors.Is(err, ErrNoReport) {
			continue
		}
		if err != nil {
			log.Error("report search failed", "detail_type", detail, "error", err)
			return nil, err
		}
		candidates = append(candidates, *f)
	}

	if len(candidates) == 0 {
		log.Warn("no report found")
		return nil, fmt.Errorf("%w: corp %s, year %d", ErrNoReport, corpCode, year)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ReceiptDate > candidates[j].ReceiptDate
	})
	latest := candidates[0]
	log.Info("found report", "report_nm", latest.ReportName, "rcept_no", latest.ReceiptNo)
	return &latest, nil
}

func (c *Client) searchOnce(ctx context.Context, corpCode string, year int, detailType string) (*Filing, error) {
	q := url.Values{}
	q.Set("crtfc_key", c.apiKey)
	q.Set("corp_code", corpCode)
	q.Set("bgn_de", fmt.Sprintf("%d0101", year))
	q.Set("end_de", fmt.Sprintf("%d1231", year))
	q.Set("pblntf_ty", "A")
	q.Set("pblntf_detail_ty", detailType)
	q.Set("sort", "date")
	q.Set("sort_mth", "desc")
	q.Set("page_count", "1")

	resp, err := c.get(ctx, "/list.json", q)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, statusError(resp.StatusCode, body)
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, fmt.Errorf("decode list response: %w", err)
	}
	switch {
	case lr.Status == statusNoData:
		return nil, retry.Unrecoverable(ErrNoReport)
	case lr.Status != statusOK:
		apiErr := &APIError{Status: lr.Status, Message: lr.Message}
		if fatalStatuses[lr.Status] {
			return nil, retry.Unrecoverable(apiErr)
		}
		return nil, apiErr
	case len(lr.List) == 0:
		return nil, retry.Unrecoverable(ErrNoReport)
	}
	return &lr.List[0], nil
}

// DownloadDocument fetches the original filing archive for rceptNo into dir
// and returns the path of the verified zip file.
func (c *Client) DownloadDocument(ctx context.Context, rceptNo, dir string) (string, error) {
	if rceptNo == "" {
		return "", errors.New("dart: empty receipt number")
	}
	log := c.log.With("rcept_no", rceptNo)
	log.Info("downloading document", "dir", dir)

	path, err := retry.Do(ctx, c.policy, func(ctx context.Context) (string, error) {
		return c.downloadOnce(ctx, rceptNo, dir)
	})
	if err != nil {
		log.Error("document download failed", "error", err)
		return "", err
	}
	log.Info("document downloaded", "path", path)
	return path, nil
}

func (c *Client) downloadOnce(ctx context.Context, rceptNo, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", retry.Unrecoverable(fmt.Errorf("create download dir: %w", err))
	}

	q := url.Values{}
	q.Set("crtfc_key", c.apiKey)
	q.Set("rcept_no", rceptNo)
	resp, err := c.get(ctx, "/document.xml", q)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", statusError(resp.StatusCode, body)
	}

	path := filepath.Join(dir, rceptNo+".zip")
	f, err := os.Create(path)
	if err != nil {
		return "", retry.Unrecoverable(fmt.Errorf("create archive file: %w", err))
	}
	size, err := io.Copy(f, resp.Body)
	f.Close()
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write archive: %w", err)
	}

	if size <= minArchiveBytes {
		os.Remove(path)
		return "", retry.Unrecoverable(fmt.Errorf("%w: %d bytes", ErrBadArchive, size))
	}
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", retry.Unrecoverable(fmt.Errorf("%w: %v", ErrBadArchive, err))
	}
	zr.Close()
	return path, nil
}

func (c *Client) get(ctx context.Context, endpoint string, q url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.Stats.Record(time.Since(start).Milliseconds())
	if err != nil {
		return nil, fmt.Errorf("dart %s: %w", endpoint, err)
	}
	return resp, nil
}

// statusError classifies an HTTP failure: 429 and 5xx are worth retrying.
func statusError(code int, body []byte) error {
	err := fmt.Errorf("dart http status %d: %s", code, string(body))
	if code == http.StatusTooManyRequests || code >= 500 {
		return err
	}
	return retry.Unrecoverable(err)
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
