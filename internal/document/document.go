package document

// Section is a span of filing text introduced by a recognized heading.
type Section struct {
	Content         string `json:"content" yaml:"content"`
	OriginalSection string `json:"original_section" yaml:"original_section"`
}

// Metadata describes where a report page came from and how it was classified.
type Metadata struct {
	CompanyCode           string `json:"company_code" yaml:"company_code"`
	DocumentType          string `json:"document_type" yaml:"document_type"`
	PotentialRelationType string `json:"potential_relation_type" yaml:"potential_relation_type"`
	Section               string `json:"section" yaml:"section"`
	Source                string `json:"source" yaml:"source"`
	ReportDate            string `json:"report_date" yaml:"report_date"`
	Page                  int    `json:"page,omitempty" yaml:"page,omitempty"`
}

// Document is a unit of retrieval content handed to the RAG store.
type Document struct {
	PageContent string   `json:"page_content" yaml:"page_content"`
	Metadata    Metadata `json:"metadata" yaml:"metadata"`
}

// Chunk is a sized text segment with structural context, ready for the RAG store.
type Chunk struct {
	Text       string   `json:"text"`
	Index      int      `json:"index"`
	Breadcrumb []string `json:"breadcrumb"` // e.g. ["삼성전자", "II. 사업의 내용"]
	Page       int      `json:"page,omitempty"`
}
