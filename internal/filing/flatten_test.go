package filing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
)

func TestFlatten(t *testing.T) {
	n := firstElement(t, "<div>\n  첫째 <b> 굵은 글씨 </b>\n<!-- comment --><span></span> 마지막 </div>", "div")
	assert.Equal(t, "첫째 굵은 글씨 마지막", Flatten(n))
}

func TestFlatten_Nil(t *testing.T) {
	assert.Equal(t, "", Flatten(nil))
}

func TestParse_ScopesToBody(t *testing.T) {
	root, err := Parse("<html><head><title>문서</title></head><body><p>본문</p></body></html>")
	require.NoError(t, err)
	assert.Equal(t, "body", root.Data)
	assert.Equal(t, "본문", Flatten(root))
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse(" ")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestDecodeContent(t *testing.T) {
	const text = "II. 사업의 내용"
	euckr, err := korean.EUCKR.NewEncoder().String(text)
	require.NoError(t, err)

	t.Run("utf-8", func(t *testing.T) {
		assert.Equal(t, text, DecodeContent([]byte(text), ""))
	})
	t.Run("bom", func(t *testing.T) {
		assert.Equal(t, text, DecodeContent(append([]byte{0xEF, 0xBB, 0xBF}, text...), ""))
	})
	t.Run("undeclared euc-kr", func(t *testing.T) {
		assert.Equal(t, text, DecodeContent([]byte(euckr), ""))
	})
	t.Run("xml declaration", func(t *testing.T) {
		raw := `<?xml version="1.0" encoding="EUC-KR"?><P>` + euckr + `</P>`
		assert.Equal(t, `<?xml version="1.0" encoding="EUC-KR"?><P>`+text+`</P>`, DecodeContent([]byte(raw), ""))
	})
	t.Run("cp949 hint", func(t *testing.T) {
		assert.Equal(t, text, DecodeContent([]byte(euckr), "cp949"))
	})
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "", DecodeContent(nil, ""))
	})
}
