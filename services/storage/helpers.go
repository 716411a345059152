package storage

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"

	"github.com/customeros/mailsift/config"
	"github.com/customeros/mailsift/interfaces"
	"github.com/customeros/mailsift/services/storage/aws_client"
)

// NewR2StorageService creates a StorageService configured for Cloudflare R2
func NewR2StorageService(accountID, accessKeyID, accessKeySecret, bucketName, cdnDomain string, isPublic bool) interfaces.StorageService {
	r2Client := aws_client.NewS3Client(&aws.Config{
		Endpoint:         aws.String("https://" + accountID + ".r2.cloudflarestorage.com"),
		Region:           aws.String("auto"),
		Credentials:      credentials.NewStaticCredentials(accessKeyID, accessKeySecret, ""),
		S3ForcePathStyle: aws.Bool(true),
	})

	return NewStorageService(r2Client, StorageConfig{
		BucketName: bucketName,
		Provider:   ProviderR2,
		IsPublic:   isPublic,
		CDNDomain:  cdnDomain,
	})
}

// NewAttachmentStorage returns nil when the R2 credentials are incomplete;
// callers treat a nil StorageService as "promotion disabled".
func NewAttachmentStorage(cfg *config.R2StorageConfig) interfaces.StorageService {
	if !cfg.IsConfigured() {
		return nil
	}
	return NewR2StorageService(cfg.AccountID, cfg.AccessKeyID, cfg.AccessKeySecret, cfg.EmailAttachmentBucket, cfg.CDNDomain, false)
}
