package template

import "strings"

const (
	itemRowsB  = 4
	remarkRowB = 9

	specColB  = 1
	countColB = 4
	unitColB  = 6
)

// ParseTemplateB reads the per-item spec/count/unit template. There is
// no arithmetic cross-check: a blank count simply counts as zero, and a
// row is skipped only when both spec and count are blank.
func ParseTemplateB(g Grid) Payload {
	address := normalizeAddress(cell(g, addressRow, 1))
	printer := cell(g, printerRow, 1)
	remark := cell(g, remarkRowB, 1)

	var items strings.Builder
	for i := 0; i < itemRowsB; i++ {
		row := i + 3
		spec := cell(g, row, specColB)
		count := cell(g, row, countColB)
		unit := cell(g, row, unitColB)

		if spec == "" && count == "" {
			continue
		}
		if count == "" {
			count = "0"
		}
		items.WriteString(spec + " X " + count + " " + unit + "，")
	}

	content := "规格和数量：" + strings.TrimSuffix(items.String(), "，") +
		"\n\n备注：" + remark

	return Payload{
		Printer: printer,
		Address: address,
		Content: content,
	}
}
