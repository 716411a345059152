package interfaces

import (
	"context"

	"github.com/customeros/mailsift/dto"
)

type EventPublisher interface {
	PublishRunCompleted(ctx context.Context, report dto.RunReport) error
	Close() error
}
