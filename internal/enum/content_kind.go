package enum

type ContentKind string

const (
	ContentPDF         ContentKind = "pdf"
	ContentPlainText   ContentKind = "plain_text"
	ContentJSON        ContentKind = "json"
	ContentCSV         ContentKind = "csv"
	ContentSpreadsheet ContentKind = "spreadsheet"
	ContentDocument    ContentKind = "document"
	ContentImage       ContentKind = "image"
	ContentUnsupported ContentKind = "unsupported"
)

func (k ContentKind) String() string {
	return string(k)
}
