package interfaces

import (
	"context"
	"time"

	"golang.org/x/oauth2"

	"github.com/customeros/mailsift/dto"
)

// MailProvider lists and fetches the messages of one user's mailbox sent
// within [start, end] (whole days, inclusive). Messages that fail to fetch
// are skipped; an authorization problem fails the call with
// errors.ErrReauthorizationRequired.
type MailProvider interface {
	FetchMessages(ctx context.Context, userID string, start, end time.Time, maxCount int) ([]*dto.Message, error)
}

type TokenStore interface {
	Load(ctx context.Context, userID string) (*oauth2.Token, error)
	Save(ctx context.Context, userID string, token *oauth2.Token) error
	Delete(ctx context.Context, userID string) error
}
