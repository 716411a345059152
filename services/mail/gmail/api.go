package gmail

import (
	"context"

	"golang.org/x/oauth2"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const me = "me"

// messagesAPI is the slice of the Gmail API the provider needs.
type messagesAPI interface {
	List(ctx context.Context, query string, maxResults int64) ([]*gmailapi.Message, error)
	Get(ctx context.Context, messageID string) (*gmailapi.Message, error)
	Attachment(ctx context.Context, messageID, attachmentID string) (string, error)
}

type apiFactory func(ctx context.Context, ts oauth2.TokenSource) (messagesAPI, error)

type gmailMessagesAPI struct {
	svc *gmailapi.Service
}

func newGmailMessagesAPI(ctx context.Context, ts oauth2.TokenSource) (messagesAPI, error) {
	svc, err := gmailapi.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, err
	}
	return &gmailMessagesAPI{svc: svc}, nil
}

func (a *gmailMessagesAPI) List(ctx context.Context, query string, maxResults int64) ([]*gmailapi.Message, error) {
	resp, err := a.svc.Users.Messages.List(me).Q(query).MaxResults(maxResults).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

func (a *gmailMessagesAPI) Get(ctx context.Context, messageID string) (*gmailapi.Message, error) {
	return a.svc.Users.Messages.Get(me, messageID).Format("full").Context(ctx).Do()
}

func (a *gmailMessagesAPI) Attachment(ctx context.Context, messageID, attachmentID string) (string, error) {
	att, err := a.svc.Users.Messages.Attachments.Get(me, messageID, attachmentID).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return att.Data, nil
}
