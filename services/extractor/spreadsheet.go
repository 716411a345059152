package extractor

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/customeros/mailsift/dto"
	"github.com/customeros/mailsift/internal/enum"
)

type spreadsheetStrategy struct{}

func (spreadsheetStrategy) Kind() enum.ContentKind { return enum.ContentSpreadsheet }

// Extract flattens every sheet as "Sheet: <name>" followed by tab-separated rows.
func (spreadsheetStrategy) Extract(data []byte) (string, dto.ExtractionMetadata, error) {
	book, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", dto.ExtractionMetadata{}, errors.Wrap(err, "failed to open spreadsheet")
	}
	defer book.Close()

	var sb strings.Builder
	meta := dto.ExtractionMetadata{}
	for _, name := range book.GetSheetList() {
		rows, err := book.GetRows(name)
		if err != nil {
			return sb.String(), meta, errors.Wrapf(err, "failed to read sheet %s", name)
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("Sheet: " + name + "\n")
		for _, row := range rows {
			sb.WriteString(strings.Join(row, "\t"))
			sb.WriteString("\n")
		}
		meta.Sheets++
		meta.Rows += len(rows)
	}

	return strings.TrimRight(sb.String(), "\n"), meta, nil
}
