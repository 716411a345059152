package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/customeros/mailsift/dto"
	"github.com/customeros/mailsift/internal/enum"
)

var oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

type documentStrategy struct{}

func (documentStrategy) Kind() enum.ContentKind { return enum.ContentDocument }

// Extract reads paragraphs from word/document.xml of an OOXML package.
func (documentStrategy) Extract(data []byte) (string, dto.ExtractionMetadata, error) {
	if bytes.HasPrefix(data, oleSignature) {
		return "", dto.ExtractionMetadata{}, errors.New("legacy binary .doc format is not supported, convert to .docx")
	}

	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", dto.ExtractionMetadata{}, errors.Wrap(err, "not a valid docx package")
	}

	for _, file := range archive.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", dto.ExtractionMetadata{}, errors.Wrap(err, "failed to open document body")
		}
		defer rc.Close()
		return readDocumentXML(rc)
	}

	return "", dto.ExtractionMetadata{}, errors.New("docx package has no word/document.xml")
}

func readDocumentXML(r io.Reader) (string, dto.ExtractionMetadata, error) {
	decoder := xml.NewDecoder(r)
	var (
		paragraphs []string
		current    strings.Builder
		inText     bool
	)

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return strings.Join(paragraphs, "\n"), dto.ExtractionMetadata{}, errors.Wrap(err, "malformed document xml")
		}

		switch el := token.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				inText = true
			case "tab":
				current.WriteString("\t")
			case "br", "cr":
				current.WriteString("\n")
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(el)
			}
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	return strings.TrimSpace(strings.Join(paragraphs, "\n")), dto.ExtractionMetadata{}, nil
}
