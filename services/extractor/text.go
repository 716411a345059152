package extractor

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/customeros/mailsift/dto"
	"github.com/customeros/mailsift/internal/enum"
	"github.com/customeros/mailsift/internal/utils"
)

type plainTextStrategy struct{}

func (plainTextStrategy) Kind() enum.ContentKind { return enum.ContentPlainText }

func (plainTextStrategy) Extract(data []byte) (string, dto.ExtractionMetadata, error) {
	return utils.ToValidUTF8(data), dto.ExtractionMetadata{}, nil
}

type jsonStrategy struct{}

func (jsonStrategy) Kind() enum.ContentKind { return enum.ContentJSON }

// Extract re-indents valid JSON and keeps anything else verbatim.
func (jsonStrategy) Extract(data []byte) (string, dto.ExtractionMetadata, error) {
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return utils.ToValidUTF8(data), dto.ExtractionMetadata{}, nil
	}
	return utils.ToValidUTF8(out.Bytes()), dto.ExtractionMetadata{}, nil
}

type csvStrategy struct{}

func (csvStrategy) Kind() enum.ContentKind { return enum.ContentCSV }

func (csvStrategy) Extract(data []byte) (string, dto.ExtractionMetadata, error) {
	reader := csv.NewReader(strings.NewReader(utils.ToValidUTF8(data)))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return "", dto.ExtractionMetadata{}, errors.Wrap(err, "invalid csv")
	}

	lines := make([]string, 0, len(records))
	for _, record := range records {
		lines = append(lines, strings.Join(record, "\t"))
	}
	return strings.Join(lines, "\n"), dto.ExtractionMetadata{Rows: len(records)}, nil
}
