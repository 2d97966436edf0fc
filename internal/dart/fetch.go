package dart

import (
	"context"
	"fmt"
	"os"
)

// Fetched is a downloaded filing with its report document unpacked.
type Fetched struct {
	Filing     Filing `json:"filing" yaml:"filing"`
	ZipPath    string `json:"zip_path" yaml:"zip_path"`
	ReportPath string `json:"report_path" yaml:"report_path"`
	Ext        string `json:"ext" yaml:"ext"`
}

// Fetch finds the latest report for corpCode in year, downloads its archive
// into dir and unpacks the report document.
func (c *Client) Fetch(ctx context.Context, corpCode string, year int, reportCodes []string, dir string) (*Fetched, error) {
	f, err := c.FindLatestReport(ctx, corpCode, year, reportCodes)
	if err != nil {
		return nil, err
	}
	zipPath, err := c.DownloadDocument(ctx, f.ReceiptNo, dir)
	if err != nil {
		return nil, err
	}
	reportPath, ext, err := ExtractReportFile(zipPath, dir)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", f.ReceiptNo, err)
	}
	c.log.Info("report unpacked", "rcept_no", f.ReceiptNo, "path", reportPath)
	return &Fetched{Filing: *f, ZipPath: zipPath, ReportPath: reportPath, Ext: ext}, nil
}

// ReadReport returns the raw bytes of the unpacked report document.
func (f *Fetched) ReadReport() ([]byte, error) {
	b, err := os.ReadFile(f.ReportPath)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	return b, nil
}
