package filing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/dartrag/internal/document"
)

const (
	intro = "이 보고서는 회사의 연간 사업 현황을 설명합니다."
	prose = "당사는 반도체와 디스플레이 패널을 생산하고 판매합니다."
)

func extract(t *testing.T, markup string) []document.Section {
	t.Helper()
	return NewExtractor(nil, nil).Extract(markup, Meta{DocID: "test", CorpCode: "005930", CorpName: "삼성전자"})
}

func TestExtract_SingleHeading(t *testing.T) {
	markup := "<html><body><p>" + intro + "</p><p>II. 사업의 내용</p><p>" + prose + "</p></body></html>"

	sections := extract(t, markup)

	require.Len(t, sections, 2)
	assert.Equal(t, document.Section{Content: intro, OriginalSection: DocumentStart}, sections[0])
	assert.Equal(t, document.Section{Content: prose, OriginalSection: "II. 사업의 내용"}, sections[1])
}

func TestExtract_ShortLeadingContentDropped(t *testing.T) {
	markup := "<body><p>짧은 서문</p><p>II. 사업의 내용</p><p>" + prose + "</p></body>"

	sections := extract(t, markup)

	require.Len(t, sections, 1)
	assert.Equal(t, "II. 사업의 내용", sections[0].OriginalSection)
	assert.Equal(t, prose, sections[0].Content)
}

func TestExtract_SectionsFollowHeadingOrder(t *testing.T) {
	markup := `<body>
<title>II. 사업의 내용</title>
<p>` + prose + `</p>
<h3>3. 원재료 및 생산설비</h3>
<p>주요 원재료는 웨이퍼와 각종 화학 소재이며 국내외에서 조달합니다.</p>
<h3>4. 매출 및 수주상황</h3>
<p>매출은 반도체 부문과 디스플레이 부문에서 주로 발생하였습니다.</p>
<title>IX. 계열회사 등에 관한 사항</title>
<p>당사의 계열회사는 국내 및 해외 법인을 포함하여 다수입니다.</p>
</body>`

	sections := extract(t, markup)

	var titles []string
	for _, s := range sections {
		titles = append(titles, s.OriginalSection)
	}
	assert.Equal(t, []string{
		"II. 사업의 내용",
		"3. 원재료 및 생산설비",
		"4. 매출 및 수주상황",
		"IX. 계열회사 등에 관한 사항",
	}, titles)
}

func TestExtract_HeadingTextExcludedFromBodies(t *testing.T) {
	markup := `<body>
<p>` + intro + `</p>
<p><b>II. 사업의 내용</b></p>
<p>` + prose + `</p>
</body>`

	sections := extract(t, markup)

	require.NotEmpty(t, sections)
	for _, s := range sections {
		assert.NotContains(t, s.Content, "사업의 내용")
	}
	last := sections[len(sections)-1]
	assert.Equal(t, "II. 사업의 내용", last.OriginalSection)
	assert.Equal(t, prose, last.Content)
}

func TestExtract_HeadingNestedInTable(t *testing.T) {
	markup := `<body>
<table><tr><td><p>1. 연결대상 종속회사 개황</p></td></tr></table>
<table><tr><td>SEMES Co., Ltd. 반도체 장비 제조 및 판매 법인</td></tr></table>
</body>`

	sections := extract(t, markup)

	require.Len(t, sections, 1)
	assert.Equal(t, "1. 연결대상 종속회사 개황", sections[0].OriginalSection)
	assert.Equal(t, "SEMES Co., Ltd. 반도체 장비 제조 및 판매 법인", sections[0].Content)
}

func TestExtract_SkipsStyleAndScript(t *testing.T) {
	markup := `<html><head><style>p { color: red; } .very-long-selector {}</style></head><body>
<p>II. 사업의 내용</p>
<script>var tracking = "should never reach a section body";</script>
<p>` + prose + `</p>
</body></html>`

	sections := extract(t, markup)

	require.Len(t, sections, 1)
	assert.Equal(t, prose, sections[0].Content)
}

func TestExtract_ToleratesMalformedMarkup(t *testing.T) {
	markup := `<DOCUMENT><BODY><SECTION-1><TITLE ATOC="Y">II. 사업의 내용</TITLE>
<P>` + prose + ` &nbsp &unknown;
<TABLE><TR><TD>미닫힌 셀 내용이 여기에 길게 이어집니다</TABLE>`

	sections := extract(t, markup)

	require.Len(t, sections, 1)
	assert.Equal(t, "II. 사업의 내용", sections[0].OriginalSection)
	assert.Contains(t, sections[0].Content, prose)
	assert.Contains(t, sections[0].Content, "미닫힌 셀 내용이")
}

func TestExtract_Idempotent(t *testing.T) {
	markup := "<body><p>" + intro + "</p><h2>II. 사업의 내용</h2><div>" + prose + "<p>추가 설명 문단은 여기에 길게 적혀 있습니다.</p></div></body>"

	first := extract(t, markup)
	second := extract(t, markup)

	assert.Equal(t, first, second)
}

func TestExtract_ContentLongerThanThreshold(t *testing.T) {
	markup := `<body>
<p>II. 사업의 내용</p><p>스물한 글자 미만의 본문</p>
<p>IX. 계열회사 현황</p><p>` + prose + `</p>
</body>`

	for _, s := range extract(t, markup) {
		assert.Greater(t, len([]rune(s.Content)), 20, "section %q", s.OriginalSection)
	}
}

func TestExtract_EmptyAndUnparsableInput(t *testing.T) {
	tests := map[string]string{
		"empty":      "",
		"whitespace": "   \n\t ",
		"binary":     "\x00\xff\xfe\x01\x02",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Empty(t, extract(t, input))
		})
	}
}

func TestSegment_NilRoot(t *testing.T) {
	assert.Nil(t, NewExtractor(nil, nil).Segment(nil, Meta{}))
}

func TestExtract_CustomCatalogOrder(t *testing.T) {
	// Both patterns match; the first entry in the catalog decides the boundary.
	catalog := Catalog{
		{ID: "FIRST", Title: "first", Expressions: []string{`개요`}},
		{ID: "SECOND", Title: "second", Expressions: []string{`회사의\s*개요`}},
	}
	markup := "<body><h1>I. 회사의 개요</h1><p>" + prose + "</p></body>"

	sections := NewExtractor(nil, catalog).Extract(markup, Meta{})

	require.Len(t, sections, 1)
	assert.Equal(t, "I. 회사의 개요", sections[0].OriginalSection)
	assert.True(t, strings.HasPrefix(sections[0].Content, "당사는"))
}

func TestExtract_InlineMarkupKeepsReadingOrder(t *testing.T) {
	markup := `<body><p>II. 사업의 내용</p>
<p>당사는 <b>반도체</b>와 <span>디스플레이</span> 패널을 생산하고 판매합니다.</p>
<p>주요 고객은 <a href="#">해외 전자업체</a>입니다.</p></body>`

	sections := extract(t, markup)

	require.Len(t, sections, 1)
	assert.Equal(t, "당사는 반도체 와 디스플레이 패널을 생산하고 판매합니다.\n주요 고객은 해외 전자업체 입니다.", sections[0].Content)
}

func TestExtract_TextAfterNestedHeading(t *testing.T) {
	markup := "<body><div><p>II. 사업의 내용</p>" + prose + "</div></body>"

	sections := extract(t, markup)

	require.Len(t, sections, 1)
	assert.Equal(t, document.Section{Content: prose, OriginalSection: "II. 사업의 내용"}, sections[0])
}

func TestExtract_HeadingInsideProse(t *testing.T) {
	markup := "<body><p>" + intro + " <b>II. 사업의 내용</b> " + prose + "</p></body>"

	sections := extract(t, markup)

	require.Len(t, sections, 2)
	assert.Equal(t, document.Section{Content: intro, OriginalSection: DocumentStart}, sections[0])
	assert.Equal(t, document.Section{Content: prose, OriginalSection: "II. 사업의 내용"}, sections[1])
	for _, s := range sections {
		assert.NotContains(t, s.Content, "사업의 내용")
	}
}
