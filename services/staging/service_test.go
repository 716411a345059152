package staging

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailsift/dto"
	mailsift_errors "github.com/customeros/mailsift/internal/errors"
	"github.com/customeros/mailsift/internal/logger"
)

var fixedNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func newTestService() (*Service, afero.Fs) {
	fs := afero.NewMemMapFs()
	svc := NewStagingService(fs, "/staging", logger.NewNopLogger())
	svc.now = func() time.Time { return fixedNow }
	return svc, fs
}

func TestStage_WritesUniqueFile(t *testing.T) {
	svc, fs := newTestService()
	att := &dto.Attachment{Filename: "incident report.pdf", Data: []byte("%PDF")}

	staged, err := svc.Stage(context.Background(), att, "msg-1")

	require.NoError(t, err)
	assert.Equal(t, "msg-1_1715342400000000000_incident_report.pdf", staged.UniqueName)
	assert.Equal(t, filepath.Join("/staging", staged.UniqueName), staged.Path)
	data, err := afero.ReadFile(fs, staged.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), data)
}

func TestStage_CollisionBumpsTimestamp(t *testing.T) {
	svc, _ := newTestService()
	att := &dto.Attachment{Filename: "a.txt", Data: []byte("one")}

	first, err := svc.Stage(context.Background(), att, "m")
	require.NoError(t, err)
	second, err := svc.Stage(context.Background(), att, "m")
	require.NoError(t, err)

	assert.NotEqual(t, first.Path, second.Path)
	assert.Equal(t, "m_1715342400000000001_a.txt", second.UniqueName)
}

func TestStage_NoData(t *testing.T) {
	svc, _ := newTestService()

	staged, err := svc.Stage(context.Background(), &dto.Attachment{Filename: "x.pdf", DownloadError: "timeout"}, "m")

	assert.Nil(t, staged)
	assert.ErrorIs(t, err, mailsift_errors.ErrNoContent)
}

func TestRead(t *testing.T) {
	svc, _ := newTestService()
	staged, err := svc.Stage(context.Background(), &dto.Attachment{Filename: "a.csv", Data: []byte("a,b")}, "m")
	require.NoError(t, err)

	data, err := svc.Read(context.Background(), staged.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("a,b"), data)

	_, err = svc.Read(context.Background(), "/staging/missing")
	assert.Error(t, err)
}

func TestSweep_RemovesOnlyExpiredFiles(t *testing.T) {
	svc, fs := newTestService()
	old, err := svc.Stage(context.Background(), &dto.Attachment{Filename: "old.txt", Data: []byte("x")}, "m1")
	require.NoError(t, err)
	fresh, err := svc.Stage(context.Background(), &dto.Attachment{Filename: "fresh.txt", Data: []byte("y")}, "m2")
	require.NoError(t, err)
	require.NoError(t, fs.Chtimes(old.Path, fixedNow.Add(-48*time.Hour), fixedNow.Add(-48*time.Hour)))
	require.NoError(t, fs.Chtimes(fresh.Path, fixedNow.Add(-time.Hour), fixedNow.Add(-time.Hour)))
	require.NoError(t, fs.MkdirAll("/staging/nested", 0o750))

	result, err := svc.Sweep(context.Background(), 24*time.Hour)

	require.NoError(t, err)
	assert.Equal(t, dto.SweepResult{Scanned: 2, Deleted: 1, Failed: 0}, result)
	exists, _ := afero.Exists(fs, old.Path)
	assert.False(t, exists)
	exists, _ = afero.Exists(fs, fresh.Path)
	assert.True(t, exists)
}

func TestSweep_MissingDirectory(t *testing.T) {
	svc, _ := newTestService()

	result, err := svc.Sweep(context.Background(), time.Hour)

	require.NoError(t, err)
	assert.Equal(t, dto.SweepResult{}, result)
}
