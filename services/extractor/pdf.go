package extractor

import (
	"bytes"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pkg/errors"

	"github.com/customeros/mailsift/dto"
	"github.com/customeros/mailsift/internal/enum"
	"github.com/customeros/mailsift/internal/utils"
)

type pdfStrategy struct{}

func (pdfStrategy) Kind() enum.ContentKind { return enum.ContentPDF }

func (pdfStrategy) Extract(data []byte) (string, dto.ExtractionMetadata, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", dto.ExtractionMetadata{}, errors.Wrap(err, "failed to open pdf")
	}
	meta := dto.ExtractionMetadata{Pages: reader.NumPage()}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", meta, errors.Wrap(err, "failed to read pdf text")
	}
	raw, err := io.ReadAll(plain)
	if err != nil {
		return "", meta, errors.Wrap(err, "failed to read pdf text")
	}

	return strings.TrimSpace(utils.ToValidUTF8(raw)), meta, nil
}
