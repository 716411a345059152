package gmail

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"

	"github.com/customeros/mailsift/config"
	"github.com/customeros/mailsift/dto"
	"github.com/customeros/mailsift/interfaces"
	mailsift_errors "github.com/customeros/mailsift/internal/errors"
	"github.com/customeros/mailsift/internal/logger"
	"github.com/customeros/mailsift/services/mail/tokens"
)

type fakeAPI struct {
	ts          oauth2.TokenSource
	refs        []*gmailapi.Message
	messages    map[string]*gmailapi.Message
	attachments map[string]string
	listErr     error
	queries     []string
	maxResults  int64
}

func (f *fakeAPI) List(ctx context.Context, query string, maxResults int64) ([]*gmailapi.Message, error) {
	if f.ts != nil {
		if _, err := f.ts.Token(); err != nil {
			return nil, err
		}
	}
	f.queries = append(f.queries, query)
	f.maxResults = maxResults
	return f.refs, f.listErr
}

func (f *fakeAPI) Get(ctx context.Context, messageID string) (*gmailapi.Message, error) {
	msg, ok := f.messages[messageID]
	if !ok {
		return nil, &googleapi.Error{Code: http.StatusNotFound, Message: "not found"}
	}
	return msg, nil
}

func (f *fakeAPI) Attachment(ctx context.Context, messageID, attachmentID string) (string, error) {
	data, ok := f.attachments[attachmentID]
	if !ok {
		return "", errors.New("attachment gone")
	}
	return data, nil
}

func b64(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func rawB64(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func newTestProvider(t *testing.T, api *fakeAPI, token *oauth2.Token) (*Provider, interfaces.TokenStore) {
	t.Helper()
	store := tokens.NewKeyringTokenStore(keyring.NewArrayKeyring(nil))
	if token != nil {
		require.NoError(t, store.Save(context.Background(), "user-1", token))
	}
	p := NewProvider(&config.GmailConfig{ClientID: "id", ClientSecret: "secret"}, store, logger.NewNopLogger())
	p.newAPI = func(ctx context.Context, ts oauth2.TokenSource) (messagesAPI, error) {
		api.ts = ts
		return api, nil
	}
	return p, store
}

func validToken() *oauth2.Token {
	return &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)}
}

func incidentMessage() *gmailapi.Message {
	return &gmailapi.Message{
		Id:           "m1",
		ThreadId:     "t1",
		InternalDate: time.Date(2024, 5, 6, 9, 30, 0, 0, time.UTC).UnixMilli(),
		Payload: &gmailapi.MessagePart{
			MimeType: "multipart/mixed",
			Headers: []*gmailapi.MessagePartHeader{
				{Name: "From", Value: "Plant Safety <safety@example.com>"},
				{Name: "Subject", Value: "Gas leak in hall 3"},
			},
			Parts: []*gmailapi.MessagePart{
				{
					MimeType: "multipart/alternative",
					Parts: []*gmailapi.MessagePart{
						{MimeType: "text/html", Body: &gmailapi.MessagePartBody{Data: b64("<p>html version</p>")}},
						{MimeType: "text/plain", Body: &gmailapi.MessagePartBody{Data: rawB64("Evacuate hall 3 now.")}},
					},
				},
				{Filename: "notes.txt", MimeType: "text/plain", Body: &gmailapi.MessagePartBody{Data: b64("inline notes"), Size: 12}},
				{Filename: "incident.pdf", MimeType: "application/pdf", Body: &gmailapi.MessagePartBody{AttachmentId: "att-1", Size: 8}},
				{Filename: "photo.jpg", MimeType: "image/jpeg", Body: &gmailapi.MessagePartBody{AttachmentId: "att-missing", Size: 100}},
			},
		},
	}
}

func TestBuildQuery(t *testing.T) {
	start := time.Date(2024, 4, 29, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "after:2024/04/29 before:2024/05/07", BuildQuery(start, end))
}

func TestFetchMessages(t *testing.T) {
	api := &fakeAPI{
		refs:        []*gmailapi.Message{{Id: "m1"}, {Id: "gone"}},
		messages:    map[string]*gmailapi.Message{"m1": incidentMessage()},
		attachments: map[string]string{"att-1": rawB64("%PDF-1.4")},
	}
	p, _ := newTestProvider(t, api, validToken())
	start := time.Date(2024, 4, 29, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

	messages, err := p.FetchMessages(context.Background(), "user-1", start, end, 5)

	require.NoError(t, err)
	assert.Equal(t, []string{"after:2024/04/29 before:2024/05/07"}, api.queries)
	assert.Equal(t, int64(5), api.maxResults)
	require.Len(t, messages, 1)

	msg := messages[0]
	assert.Equal(t, "m1", msg.ID)
	assert.Equal(t, "t1", msg.ThreadID)
	assert.Equal(t, "user-1", msg.UserID)
	assert.Equal(t, "safety@example.com", msg.From)
	assert.Equal(t, "Gas leak in hall 3", msg.Subject)
	assert.Equal(t, "Evacuate hall 3 now.", msg.Body)
	assert.Equal(t, time.Date(2024, 5, 6, 9, 30, 0, 0, time.UTC), msg.Date)

	require.Len(t, msg.Attachments, 3)
	assert.Equal(t, []byte("inline notes"), msg.Attachments[0].Data)
	assert.Equal(t, "txt", msg.Attachments[0].Extension)
	assert.Equal(t, []byte("%PDF-1.4"), msg.Attachments[1].Data)
	assert.Equal(t, "att-1", msg.Attachments[1].AttachmentID)
	assert.Equal(t, int64(8), msg.Attachments[1].Size)
	assert.Empty(t, msg.Attachments[2].Data)
	assert.Equal(t, "attachment gone", msg.Attachments[2].DownloadError)
	assert.Equal(t, "jpg", msg.Attachments[2].Extension)
}

func TestFetchMessages_HTMLAndEmptyBodies(t *testing.T) {
	api := &fakeAPI{
		refs: []*gmailapi.Message{{Id: "html"}, {Id: "empty"}, {Id: "blank-plain"}},
		messages: map[string]*gmailapi.Message{
			"html": {Id: "html", Payload: &gmailapi.MessagePart{
				MimeType: "text/html",
				Body:     &gmailapi.MessagePartBody{Data: b64("<html><head><style>p{}</style></head><body><p>Invoice</p><script>x()</script><p>overdue</p></body></html>")},
			}},
			"empty": {Id: "empty", Payload: &gmailapi.MessagePart{
				MimeType: "multipart/mixed",
				Headers:  []*gmailapi.MessagePartHeader{{Name: "Date", Value: "Mon, 06 May 2024 10:00:00 +0200"}},
			}},
			"blank-plain": {Id: "blank-plain", Payload: &gmailapi.MessagePart{
				MimeType: "multipart/alternative",
				Parts: []*gmailapi.MessagePart{
					{MimeType: "text/plain", Body: &gmailapi.MessagePartBody{Data: b64(" \r\n\t ")}},
					{MimeType: "text/html", Body: &gmailapi.MessagePartBody{Data: b64("<p>Permit renewal</p>")}},
				},
			}},
		},
	}
	p, _ := newTestProvider(t, api, validToken())

	messages, err := p.FetchMessages(context.Background(), "user-1", time.Now(), time.Now(), 5)

	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "Invoice\noverdue", messages[0].Body)
	assert.Equal(t, dto.NoContentBody, messages[1].Body)
	assert.Equal(t, time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC), messages[1].Date)
	assert.Equal(t, "Permit renewal", messages[2].Body)
}

func TestFetchMessages_NoTokenRequiresReauthorization(t *testing.T) {
	p, _ := newTestProvider(t, &fakeAPI{}, nil)

	_, err := p.FetchMessages(context.Background(), "user-1", time.Now(), time.Now(), 5)

	assert.ErrorIs(t, err, mailsift_errors.ErrReauthorizationRequired)
}

func TestFetchMessages_UnauthorizedListRequiresReauthorization(t *testing.T) {
	api := &fakeAPI{listErr: &googleapi.Error{Code: http.StatusUnauthorized, Message: "invalid credentials"}}
	p, _ := newTestProvider(t, api, validToken())

	_, err := p.FetchMessages(context.Background(), "user-1", time.Now(), time.Now(), 5)

	assert.ErrorIs(t, err, mailsift_errors.ErrReauthorizationRequired)
}

func TestFetchMessages_OtherListErrors(t *testing.T) {
	api := &fakeAPI{listErr: &googleapi.Error{Code: http.StatusInternalServerError, Message: "backend"}}
	p, _ := newTestProvider(t, api, validToken())

	_, err := p.FetchMessages(context.Background(), "user-1", time.Now(), time.Now(), 5)

	require.Error(t, err)
	assert.NotErrorIs(t, err, mailsift_errors.ErrReauthorizationRequired)
}

func tokenServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func expiredToken() *oauth2.Token {
	return &oauth2.Token{AccessToken: "old", RefreshToken: "refresh", TokenType: "Bearer", Expiry: time.Now().Add(-time.Hour)}
}

func TestFetchMessages_RenewedTokenIsPersisted(t *testing.T) {
	server := tokenServer(t, http.StatusOK, `{"access_token":"new","token_type":"Bearer","refresh_token":"refresh","expires_in":3600}`)
	p, store := newTestProvider(t, &fakeAPI{}, expiredToken())
	p.oauth.Endpoint = oauth2.Endpoint{TokenURL: server.URL, AuthStyle: oauth2.AuthStyleInParams}

	_, err := p.FetchMessages(context.Background(), "user-1", time.Now(), time.Now(), 5)
	require.NoError(t, err)

	saved, err := store.Load(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "new", saved.AccessToken)
	assert.Equal(t, "new", p.cache["user-1"].AccessToken)
}

func TestFetchMessages_RevokedRefreshTokenRequiresReauthorization(t *testing.T) {
	server := tokenServer(t, http.StatusBadRequest, `{"error":"invalid_grant","error_description":"Token has been expired or revoked."}`)
	p, _ := newTestProvider(t, &fakeAPI{}, expiredToken())
	p.oauth.Endpoint = oauth2.Endpoint{TokenURL: server.URL, AuthStyle: oauth2.AuthStyleInParams}

	_, err := p.FetchMessages(context.Background(), "user-1", time.Now(), time.Now(), 5)

	assert.ErrorIs(t, err, mailsift_errors.ErrReauthorizationRequired)
}

func TestDecodeBase64URL(t *testing.T) {
	for _, encoded := range []string{b64("hello?"), rawB64("hello?"), b64("hi"), rawB64("hi")} {
		data, err := decodeBase64URL(encoded)
		require.NoError(t, err)
		assert.Contains(t, []string{"hello?", "hi"}, string(data))
	}
}

func TestAuthCodeURL(t *testing.T) {
	p, _ := newTestProvider(t, &fakeAPI{}, nil)

	url := p.AuthCodeURL("state-1")

	assert.Contains(t, url, "state=state-1")
	assert.Contains(t, url, "access_type=offline")
	assert.Contains(t, url, "gmail.readonly")
}
