package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTemplateB_Valid(t *testing.T) {
	g := blankGrid()
	g[0][1] = " 上海 仓库 "
	g[14][1] = "李四"
	g[9][1] = "周五前到"

	g[3][1] = "方管"
	g[3][4] = float64(3)
	g[3][6] = "件"
	g[4][1] = "扁钢"
	g[4][4] = "2"
	g[4][6] = "捆"

	p := ParseTemplateB(g)

	assert.Equal(t, "李四", p.Printer)
	assert.Equal(t, "上海仓库", p.Address)
	assert.Contains(t, p.Content, "规格和数量：方管 X 3 件，扁钢 X 2 捆")
	assert.Contains(t, p.Content, "备注：周五前到")
}

func TestParseTemplateB_BlankCountDefaultsToZero(t *testing.T) {
	g := blankGrid()
	g[3][1] = "方管"
	g[3][6] = "件"

	p := ParseTemplateB(g)
	assert.Contains(t, p.Content, "方管 X 0 件")
}

func TestParseTemplateB_SkipsFullyBlankRows(t *testing.T) {
	g := blankGrid()
	g[5][1] = "角钢"
	g[5][4] = float64(1)
	g[5][6] = "根"

	p := ParseTemplateB(g)
	require.Contains(t, p.Content, "规格和数量：角钢 X 1 根\n")
}

func TestParseTemplateB_NoArithmeticCheck(t *testing.T) {
	g := blankGrid()
	g[12][1] = float64(99) // declared total is ignored by this template
	g[3][1] = "方管"
	g[3][4] = float64(1)

	p := ParseTemplateB(g)
	assert.Contains(t, p.Content, "方管 X 1")
}
