package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatHeadingFollowedByList(t *testing.T) {
	blocks := Format("Safety:\n- wear gloves\n- ventilate")

	assert.Equal(t, Blocks{
		{Kind: Heading, Text: "Safety"},
		{Kind: List, Items: []string{"wear gloves", "ventilate"}},
	}, blocks)
}

func TestFormatClassification(t *testing.T) {
	text := strings.Join([]string{
		"О товаре",
		"Состав для удаления высолов.",
		"",
		"   ",
		"1. Очистить поверхность",
		"2) Нанести кистью",
		"• третий шаг",
		"Расход:",
		"0,2-0,5 л/м2",
		"-без пробела не пункт",
		"- 3. двойной маркер",
	}, "\n")

	blocks := Format(text)
	require.Len(t, blocks, 7)

	assert.Equal(t, Block{Kind: Heading, Text: "О товаре"}, blocks[0])
	assert.Equal(t, Block{Kind: Paragraph, Text: "Состав для удаления высолов."}, blocks[1])
	assert.Equal(t, Block{Kind: List, Items: []string{"Очистить поверхность", "Нанести кистью", "третий шаг"}}, blocks[2])
	assert.Equal(t, Block{Kind: Heading, Text: "Расход"}, blocks[3])
	assert.Equal(t, Block{Kind: Paragraph, Text: "0,2-0,5 л/м2"}, blocks[4])
	assert.Equal(t, Block{Kind: Paragraph, Text: "-без пробела не пункт"}, blocks[5])
	assert.Equal(t, Block{Kind: List, Items: []string{"двойной маркер"}}, blocks[6])
}

func TestFormatHeadingIsCaseInsensitiveAndExact(t *testing.T) {
	assert.Equal(t, Heading, Format("техника безопасности:")[0].Kind)
	assert.Equal(t, Heading, Format("APPLICATION")[0].Kind)
	assert.Equal(t, Paragraph, Format("Применение на фасадах")[0].Kind)
	assert.Equal(t, Paragraph, Format("Safety first: always")[0].Kind)
}

func TestFormatEmpty(t *testing.T) {
	assert.Empty(t, Format(""))
	assert.Empty(t, Format("\n \n\t\n"))
}

func TestPlainTextRoundTrip(t *testing.T) {
	inputs := []string{
		"Safety:\n- wear gloves\n- ventilate",
		"О товаре\nТекст\n1) раз\n2) два\nРасход\n0,3 л",
		"- - вложенный\n• пункт\nабзац",
		"Применение:\n1. a\nb\n- c",
	}

	for _, in := range inputs {
		first := Format(in)
		second := Format(first.PlainText())
		assert.Equal(t, first, second, "input %q", in)
	}
}

func TestHTML(t *testing.T) {
	out := Format("Safety:\n- wear gloves\n- ventilate\nDone").HTML(nil)
	assert.Equal(t, "<h3>Safety</h3><ul><li>wear gloves</li><li>ventilate</li></ul><p>Done</p>", string(out))
}

func TestHTMLSanitizesMarkup(t *testing.T) {
	out := string(Format("Текст <b>жирный</b><script>alert(1)</script>").HTML(NewPolicy()))

	assert.Contains(t, out, "<b>жирный</b>")
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "alert(1)")
}

func TestFormatListMarkersAcceptUnicodeSpaces(t *testing.T) {
	blocks := Format("-\u00a0очистка\n•\u2009сушка\n2)\ufeffгрунтование\n-без пробела")

	require.Len(t, blocks, 2)
	assert.Equal(t, Block{Kind: List, Items: []string{"очистка", "сушка", "грунтование"}}, blocks[0])
	assert.Equal(t, Block{Kind: Paragraph, Text: "-без пробела"}, blocks[1])
}
