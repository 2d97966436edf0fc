package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgallion1/dartrag/internal/chunker"
	"github.com/dgallion1/dartrag/internal/document"
	"github.com/dgallion1/dartrag/internal/filing"
	"github.com/dgallion1/dartrag/internal/parser"
	"github.com/dgallion1/dartrag/internal/pathstore"
	"github.com/dgallion1/dartrag/internal/report"
)

// Store persists chunked documents. *pathstore.Client implements it.
type Store interface {
	StoreDocument(ctx context.Context, meta pathstore.DocumentMeta, chunks []document.Chunk) error
}

// Worker processes a single document job.
type Worker struct {
	extractor *filing.Extractor
	reports   *report.Processor
	store     Store
	log       *slog.Logger
	chunkCfg  chunker.Config
}

func NewWorker(extractor *filing.Extractor, reports *report.Processor, store Store, log *slog.Logger, chunkCfg chunker.Config) *Worker {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if extractor == nil {
		extractor = filing.NewExtractor(log, nil)
	}
	if reports == nil {
		reports = report.NewProcessor(log, report.DefaultThreshold)
	}
	return &Worker{
		extractor: extractor,
		reports:   reports,
		store:     store,
		log:       log,
		chunkCfg:  chunkCfg,
	}
}

// Process runs the full ingest pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "corp_code", job.CorpCode)

	var chunks []document.Chunk
	var ok bool
	switch job.Kind {
	case KindFiling:
		chunks, ok = w.processFiling(job, log)
	case KindReport:
		chunks, ok = w.processReport(job, log)
	default:
		job.AddError(fmt.Sprintf("unknown job kind %q", job.Kind))
		job.SetStatus(StatusFailed, "loading")
		return
	}
	if !ok {
		return
	}

	job.SetTotalChunks(len(chunks))
	log.Info("chunked document", "chunks", len(chunks))

	if w.store == nil {
		job.SetStatus(StatusCompleted, "done")
		return
	}

	job.SetStatus(StatusStoring, "storing")
	res := job.Result()
	meta := pathstore.DocumentMeta{
		DocID:    job.DocID,
		CorpCode: job.CorpCode,
		CorpName: job.CorpName,
		Kind:     string(job.Kind),
		Source:   job.Filename,
		Sections: len(res.Sections) + len(res.Documents),
	}
	if err := w.store.StoreDocument(ctx, meta, chunks); err != nil {
		log.Error("store failed", "error", err)
		job.AddError(fmt.Sprintf("store: %s", err))
		job.SetStatus(StatusPartial, "storing")
		return
	}
	job.AddChunksStored(len(chunks))
	log.Info("storage complete", "stored", len(chunks))
	job.SetStatus(StatusCompleted, "done")
}

func (w *Worker) processFiling(job *Job, log *slog.Logger) ([]document.Chunk, bool) {
	job.SetStatus(StatusLoading, "loading")
	p, err := parser.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "loading")
		return nil, false
	}

	root, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		if errors.Is(err, filing.ErrEmptyInput) {
			log.Warn("filing content empty")
			job.AddError("no content")
			job.SetStatus(StatusEmpty, "loading")
		} else {
			log.Error("parse failed", "error", err)
			job.AddError(fmt.Sprintf("parse: %s", err))
			job.SetStatus(StatusFailed, "loading")
		}
		return nil, false
	}

	job.SetStatus(StatusSegmenting, "segmenting")
	sections := w.extractor.Segment(root, filing.Meta{DocID: job.DocID, CorpCode: job.CorpCode, CorpName: job.CorpName})
	job.SetSections(sections)
	if len(sections) == 0 {
		job.AddError("no sections extracted")
		job.SetStatus(StatusEmpty, "segmenting")
		return nil, false
	}

	job.SetStatus(StatusChunking, "chunking")
	company := job.CorpName
	if company == "" {
		company = job.CorpCode
	}
	return chunker.ChunkSections(company, sections, w.chunkCfg), true
}

func (w *Worker) processReport(job *Job, log *slog.Logger) ([]document.Chunk, bool) {
	job.SetStatus(StatusLoading, "loading")

	// The PDF reader needs a seekable file.
	tmp, err := os.CreateTemp("", "dartrag-report-*.pdf")
	if err != nil {
		job.AddError(fmt.Sprintf("create temp file: %s", err))
		job.SetStatus(StatusFailed, "loading")
		return nil, false
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	_, err = tmp.Write(job.FileData())
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		job.AddError(fmt.Sprintf("write temp file: %s", err))
		job.SetStatus(StatusFailed, "loading")
		return nil, false
	}

	pages, err := w.reports.ExtractPages(tmpPath)
	if err != nil {
		log.Error("pdf extraction failed", "error", err)
		job.AddError(fmt.Sprintf("pdf: %s", err))
		job.SetStatus(StatusFailed, "loading")
		return nil, false
	}

	job.SetStatus(StatusFiltering, "filtering")
	docs := w.reports.ProcessPages(pages, job.Filename, job.CorpCode)
	job.SetDocuments(docs)
	if len(docs) == 0 {
		job.AddError("no competitor pages")
		job.SetStatus(StatusEmpty, "filtering")
		return nil, false
	}

	job.SetStatus(StatusChunking, "chunking")
	return chunker.ChunkDocuments(docs, w.chunkCfg), true
}
