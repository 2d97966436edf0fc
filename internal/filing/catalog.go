package filing

// SectionPattern identifies one section of interest in a periodic report.
type SectionPattern struct {
	ID          string
	Title       string   // display title used in metadata
	Expressions []string // matched case-insensitively against a heading's flattened text
}

// Catalog is an ordered list of section patterns. Evaluation follows slice
// order and the first matching pattern wins.
type Catalog []SectionPattern

// DefaultCatalog returns the sections extracted from DART periodic reports.
// Subsections of "II. 사업의 내용" are listed separately so they start their
// own sections.
func DefaultCatalog() Catalog {
	return Catalog{
		{ID: "BUSINESS_CONTENT", Title: "II. 사업의 내용", Expressions: []string{`^[II]+\.[\s\p{Zs}]*사업의[\s\p{Zs}]*내용`}},
		{ID: "RAW_MATERIALS", Title: "II-3. 원재료 관련", Expressions: []string{`\d+\.?[\s\p{Zs}]*원재료`}},
		{ID: "SALES_ORDERS", Title: "II-4. 매출 및 수주 관련", Expressions: []string{`\d+\.?[\s\p{Zs}]*매출`}},
		{ID: "CONTRACTS_RD", Title: "II-6. 주요계약 및 연구개발", Expressions: []string{
			`\d+\.?[\s\p{Zs}]*주요[\s\p{Zs}]*계약`,
			`\d+\.?[\s\p{Zs}]*연구개발`,
		}},
		{ID: "AFFILIATES", Title: "IX. 계열회사 등에 관한 사항", Expressions: []string{`^[IX]+\.[\s\p{Zs}]*계열회사`}},
		{ID: "APPENDIX_SUBSIDIARIES", Title: "XII-1. 연결대상 종속회사 현황", Expressions: []string{`1\.[\s\p{Zs}]*연결대상[\s\p{Zs}]*종속회사`}},
		{ID: "APPENDIX_AFFILIATES", Title: "XII-2. 계열회사 현황", Expressions: []string{`2\.[\s\p{Zs}]*계열회사[\s\p{Zs}]*현황`}},
	}
}

// Lookup returns the pattern with the given ID.
func (c Catalog) Lookup(id string) (SectionPattern, bool) {
	for _, p := range c {
		if p.ID == id {
			return p, true
		}
	}
	return SectionPattern{}, false
}
