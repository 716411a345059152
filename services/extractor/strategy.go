package extractor

import (
	"github.com/customeros/mailsift/dto"
	"github.com/customeros/mailsift/interfaces"
	"github.com/customeros/mailsift/internal/enum"
)

// Strategy extracts text from one family of file formats. Only the
// Pages, Sheets and Rows metadata fields are read back from a strategy.
type Strategy interface {
	Kind() enum.ContentKind
	Extract(data []byte) (string, dto.ExtractionMetadata, error)
}

func strategyTable(ocrEngine interfaces.OCREngine) map[string]Strategy {
	pdf := pdfStrategy{}
	plain := plainTextStrategy{}
	json := jsonStrategy{}
	csv := csvStrategy{}
	sheet := spreadsheetStrategy{}
	doc := documentStrategy{}
	img := imageStrategy{engine: ocrEngine}

	return map[string]Strategy{
		"pdf":  pdf,
		"txt":  plain,
		"text": plain,
		"md":   plain,
		"log":  plain,
		"json": json,
		"csv":  csv,
		"xlsx": sheet,
		"xlsm": sheet,
		"xls":  sheet,
		"docx": doc,
		"doc":  doc,
		"png":  img,
		"jpg":  img,
		"jpeg": img,
		"gif":  img,
		"bmp":  img,
		"tif":  img,
		"tiff": img,
		"webp": img,
	}
}

// SupportedExtensions lists every extension with a dedicated strategy.
func SupportedExtensions() []string {
	table := strategyTable(nil)
	exts := make([]string, 0, len(table))
	for ext := range table {
		exts = append(exts, ext)
	}
	return exts
}
