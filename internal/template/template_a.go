package template

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrCountMismatch     = errors.New("item counts do not add up to the declared total")
	ErrMissingLength     = errors.New("item row has a count but no length")
	ErrInvalidTotalCount = errors.New("declared total count is not a number")
)

const (
	itemRowsA      = 9
	totalCountRowA = 12

	specColA   = 0
	lengthColA = 2
	countColA  = 4
	remarkColA = 5
)

// ParseTemplateA reads the per-item length/count template. Every item
// row contributes its spec and remark text; a row is skipped only when
// both length and count are blank. The summed counts must equal the
// separately declared total, otherwise nothing is persisted.
func ParseTemplateA(g Grid) (Payload, error) {
	address := normalizeAddress(cell(g, addressRow, 1))
	printer := cell(g, printerRow, 1)

	totalCount := 0
	if raw := cell(g, totalCountRowA, 1); raw != "" {
		var err error
		totalCount, err = strconv.Atoi(raw)
		if err != nil {
			return Payload{}, ErrInvalidTotalCount
		}
	}

	var specs, remarks, lengths strings.Builder
	sumCount := 0

	for i := 0; i < itemRowsA; i++ {
		row := i + 3
		length := cell(g, row, lengthColA)
		count := cell(g, row, countColA)
		specs.WriteString(cell(g, row, specColA))
		remarks.WriteString(cell(g, row, remarkColA))

		if length == "" && count == "" {
			continue
		}

		n := 0
		if count != "" {
			n, _ = strconv.Atoi(count)
		}
		sumCount += n

		if length == "" {
			return Payload{}, ErrMissingLength
		}

		lengths.WriteString(length + " x " + strconv.Itoa(n) + "，")
	}

	if sumCount != totalCount {
		return Payload{}, ErrCountMismatch
	}

	content := "总条数：" + strconv.Itoa(totalCount) +
		"\n\n规格：" + specs.String() +
		"\n\n长度和条数：" + strings.TrimSuffix(lengths.String(), "，") +
		"\n\n备注：" + remarks.String()

	return Payload{
		Printer: printer,
		Address: address,
		Content: content,
	}, nil
}
