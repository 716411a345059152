package tokens

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/99designs/keyring"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/customeros/mailsift/config"
	"github.com/customeros/mailsift/interfaces"
	mailsift_errors "github.com/customeros/mailsift/internal/errors"
	"github.com/customeros/mailsift/internal/tracing"
)

const serviceName = "mailsift"

type keyringTokenStore struct {
	ring keyring.Keyring
}

// OpenKeyring opens the keyring backend named in the config. The file backend
// encrypts tokens with TOKEN_STORE_PASSWORD.
func OpenKeyring(cfg *config.TokenStoreConfig) (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName:      serviceName,
		AllowedBackends:  []keyring.BackendType{keyring.BackendType(cfg.Backend)},
		FileDir:          cfg.Dir,
		FilePasswordFunc: keyring.FixedStringPrompt(cfg.Password),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s keyring", cfg.Backend)
	}
	return ring, nil
}

func NewKeyringTokenStore(ring keyring.Keyring) interfaces.TokenStore {
	return &keyringTokenStore{ring: ring}
}

func tokenKey(userID string) string {
	return fmt.Sprintf("gmail-token-%s", userID)
}

func (s *keyringTokenStore) Load(ctx context.Context, userID string) (*oauth2.Token, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "TokenStore.Load")
	defer span.Finish()
	span.SetTag(tracing.SpanTagUserId, userID)

	item, err := s.ring.Get(tokenKey(userID))
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil, mailsift_errors.ErrTokenNotFound
	}
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(err, "reading token for user %s", userID)
	}

	var token oauth2.Token
	if err := json.Unmarshal(item.Data, &token); err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(err, "decoding token for user %s", userID)
	}
	return &token, nil
}

func (s *keyringTokenStore) Save(ctx context.Context, userID string, token *oauth2.Token) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "TokenStore.Save")
	defer span.Finish()
	span.SetTag(tracing.SpanTagUserId, userID)

	if token == nil {
		return mailsift_errors.ErrInvalidInput
	}
	data, err := json.Marshal(token)
	if err != nil {
		return errors.Wrap(err, "encoding token")
	}

	err = s.ring.Set(keyring.Item{
		Key:         tokenKey(userID),
		Data:        data,
		Label:       "mailsift gmail token",
		Description: "OAuth2 token for " + userID,
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrapf(err, "storing token for user %s", userID)
	}
	return nil
}

func (s *keyringTokenStore) Delete(ctx context.Context, userID string) error {
	err := s.ring.Remove(tokenKey(userID))
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return errors.Wrapf(err, "deleting token for user %s", userID)
	}
	return nil
}
