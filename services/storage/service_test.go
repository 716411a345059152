package storage

import (
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailsift/config"
)

type mockS3Client struct {
	mock.Mock
	uploadedBody []byte
}

func (m *mockS3Client) Upload(ctx context.Context, input s3manager.UploadInput) error {
	body, _ := io.ReadAll(input.Body)
	m.uploadedBody = body
	args := m.Called(aws.StringValue(input.Bucket), aws.StringValue(input.Key), aws.StringValue(input.ContentType), input.ACL)
	return args.Error(0)
}

func (m *mockS3Client) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	args := m.Called(bucket, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *mockS3Client) Delete(ctx context.Context, bucket, key string) error {
	return m.Called(bucket, key).Error(0)
}

func TestObjectStorageService_Upload(t *testing.T) {
	client := &mockS3Client{}
	var noACL *string
	client.On("Upload", "attachments", "attachments/u/m/f.pdf", "application/pdf", noACL).Return(nil)

	svc := NewStorageService(client, StorageConfig{BucketName: "attachments", Provider: ProviderR2})
	err := svc.Upload(context.Background(), "attachments/u/m/f.pdf", []byte("%PDF-1.4"), "application/pdf")

	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), client.uploadedBody)
	client.AssertExpectations(t)
}

func TestObjectStorageService_UploadDefaultsContentTypeAndWrapsErrors(t *testing.T) {
	client := &mockS3Client{}
	var noACL *string
	client.On("Upload", "b", "k", "application/octet-stream", noACL).Return(errors.New("denied"))

	svc := NewStorageService(client, StorageConfig{BucketName: "b"})
	err := svc.Upload(context.Background(), "k", []byte("x"), "")

	assert.ErrorContains(t, err, "failed to upload k: denied")
}

func TestObjectStorageService_DownloadAndDelete(t *testing.T) {
	client := &mockS3Client{}
	client.On("Download", "b", "k").Return([]byte("data"), nil)
	client.On("Delete", "b", "k").Return(nil)

	svc := NewStorageService(client, StorageConfig{BucketName: "b"})
	data, err := svc.Download(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), data)
	assert.NoError(t, svc.Delete(context.Background(), "k"))
	client.AssertExpectations(t)
}

func TestObjectStorageService_GetPublicURL(t *testing.T) {
	withCDN := NewStorageService(&mockS3Client{}, StorageConfig{BucketName: "b", CDNDomain: "files.example.com/"})
	assert.Equal(t, "https://files.example.com/a/b.pdf", withCDN.GetPublicURL("a/b.pdf"))

	withoutCDN := NewStorageService(&mockS3Client{}, StorageConfig{BucketName: "b", Provider: ProviderS3})
	assert.Equal(t, "a/b.pdf", withoutCDN.GetPublicURL("a/b.pdf"))
	assert.Equal(t, "b", withoutCDN.Bucket())
	assert.Equal(t, ProviderS3, withoutCDN.Provider())
}

func TestNewAttachmentStorage(t *testing.T) {
	assert.Nil(t, NewAttachmentStorage(&config.R2StorageConfig{EmailAttachmentBucket: "attachments"}))

	svc := NewAttachmentStorage(&config.R2StorageConfig{
		AccountID:             "acct",
		AccessKeyID:           "key",
		AccessKeySecret:       "secret",
		EmailAttachmentBucket: "attachments",
	})
	require.NotNil(t, svc)
	assert.Equal(t, ProviderR2, svc.Provider())
	assert.Equal(t, "attachments", svc.Bucket())
}
