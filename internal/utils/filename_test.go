package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "Incident_Report_May_.pdf", SanitizeFilename("Incident Report (May).pdf"))
	assert.Equal(t, "passwd", SanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "attachment", SanitizeFilename("..."))

	long := strings.Repeat("a", 300) + ".xlsx"
	sanitized := SanitizeFilename(long)
	assert.Len(t, sanitized, maxFilenameLength)
	assert.True(t, strings.HasSuffix(sanitized, ".xlsx"))
}

func TestUniqueFilename(t *testing.T) {
	at := time.Unix(1700000000, 42)
	assert.Equal(t, "18c3a_1700000000000000042_report.pdf", UniqueFilename("18c3a", at, "report.pdf"))
}
