package pathstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dgallion1/dartrag/internal/document"
)

// ErrNotFound is returned when a document is not in the store.
var ErrNotFound = errors.New("pathstore: document not found")

// Document kinds.
const (
	KindFiling = "filing"
	KindReport = "report"
)

// DocumentMeta is stored at {prefix}/meta for every ingested document.
type DocumentMeta struct {
	DocID    string `json:"doc_id" yaml:"doc_id"`
	CorpCode string `json:"corp_code" yaml:"corp_code"`
	CorpName string `json:"corp_name,omitempty" yaml:"corp_name,omitempty"`
	Kind     string `json:"kind" yaml:"kind"`
	Source   string `json:"source,omitempty" yaml:"source,omitempty"`
	Sections int    `json:"sections" yaml:"sections"`
	Chunks   int    `json:"chunks" yaml:"chunks"`
	StoredAt string `json:"stored_at" yaml:"stored_at"`
}

// CompanyKey is the node under which all of a company's documents live.
func CompanyKey(corpCode string) string {
	return "rag/companies/" + url.PathEscape(corpCode)
}

// DocumentPrefix is rag/companies/{corp}/{kind}/{doc_id}.
func DocumentPrefix(corpCode, kind, docID string) string {
	return CompanyKey(corpCode) + "/" + url.PathEscape(kind) + "/" + url.PathEscape(docID)
}

// StoreDocument writes every chunk, then the meta node, then links the
// company node to the document.
func (c *Client) StoreDocument(ctx context.Context, meta DocumentMeta, chunks []document.Chunk) error {
	prefix := DocumentPrefix(meta.CorpCode, meta.Kind, meta.DocID)

	for _, ch := range chunks {
		err := c.PutNode(ctx, fmt.Sprintf("%s/chunks/%d", prefix, ch.Index), NodeRequest{
			Value: map[string]any{
				"text":       ch.Text,
				"index":      ch.Index,
				"breadcrumb": ch.Breadcrumb,
				"page":       ch.Page,
				"doc_id":     meta.DocID,
			},
			MemoryType: "document",
			Source:     meta.Source,
		})
		if err != nil {
			return fmt.Errorf("store chunk %d: %w", ch.Index, err)
		}
	}

	meta.Chunks = len(chunks)
	if meta.StoredAt == "" {
		meta.StoredAt = time.Now().UTC().Format(time.RFC3339)
	}
	if err := c.PutNode(ctx, prefix+"/meta", NodeRequest{Value: meta, MemoryType: "document", Source: meta.Source}); err != nil {
		return fmt.Errorf("store meta: %w", err)
	}

	return c.PutLink(ctx, LinkRequest{
		From:    CompanyKey(meta.CorpCode),
		To:      prefix + "/meta",
		Weight:  1,
		Summary: meta.Kind + " " + meta.DocID,
	})
}

// ListDocuments returns the meta record of every document stored for corpCode.
func (c *Client) ListDocuments(ctx context.Context, corpCode string) ([]DocumentMeta, error) {
	nodes, err := c.ListChildren(ctx, CompanyKey(corpCode), 0)
	if err != nil {
		return nil, err
	}
	var docs []DocumentMeta
	for _, n := range nodes {
		if !strings.HasSuffix(n.Key, "/meta") {
			continue
		}
		var m DocumentMeta
		if err := json.Unmarshal(n.Value, &m); err != nil {
			return nil, fmt.Errorf("decode meta %s: %w", n.Key, err)
		}
		docs = append(docs, m)
	}
	return docs, nil
}

// DeleteDocument removes a document and all its chunks.
func (c *Client) DeleteDocument(ctx context.Context, corpCode, docID string) error {
	docs, err := c.ListDocuments(ctx, corpCode)
	if err != nil {
		return err
	}
	for _, d := range docs {
		if d.DocID == docID {
			return c.DeleteNode(ctx, DocumentPrefix(corpCode, d.Kind, docID), true)
		}
	}
	return fmt.Errorf("%w: %s/%s", ErrNotFound, corpCode, docID)
}
