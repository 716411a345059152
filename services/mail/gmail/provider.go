package gmail

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"

	"github.com/customeros/mailsift/config"
	"github.com/customeros/mailsift/dto"
	"github.com/customeros/mailsift/interfaces"
	mailsift_errors "github.com/customeros/mailsift/internal/errors"
	"github.com/customeros/mailsift/internal/logger"
	"github.com/customeros/mailsift/internal/tracing"
)

type Provider struct {
	oauth  *oauth2.Config
	tokens interfaces.TokenStore
	log    logger.Logger
	newAPI apiFactory

	mu    sync.Mutex
	cache map[string]*oauth2.Token
}

func NewProvider(cfg *config.GmailConfig, tokens interfaces.TokenStore, log logger.Logger) *Provider {
	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{gmailapi.GmailReadonlyScope},
			Endpoint:     google.Endpoint,
		},
		tokens: tokens,
		log:    log,
		newAPI: newGmailMessagesAPI,
		cache:  make(map[string]*oauth2.Token),
	}
}

// AuthCodeURL returns the consent page URL for interactive authorization.
func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a token and stores it for the user.
func (p *Provider) Exchange(ctx context.Context, userID, code string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "GmailProvider.Exchange")
	defer span.Finish()
	span.SetTag(tracing.SpanTagUserId, userID)

	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "failed to exchange authorization code")
	}
	if err := p.tokens.Save(ctx, userID, token); err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	p.remember(userID, token)
	return nil
}

func (p *Provider) FetchMessages(ctx context.Context, userID string, start, end time.Time, maxCount int) ([]*dto.Message, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "GmailProvider.FetchMessages")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag(tracing.SpanTagUserId, userID)

	token, err := p.loadToken(ctx, userID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	ts := &persistingTokenSource{
		base:    p.oauth.TokenSource(ctx, token),
		last:    token,
		onRenew: func(t *oauth2.Token) { p.renewed(ctx, userID, t) },
	}
	api, err := p.newAPI(ctx, ts)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to create gmail client")
	}

	query := BuildQuery(start, end)
	span.LogKV("query", query)
	refs, err := api.List(ctx, query, int64(maxCount))
	if err != nil {
		tracing.TraceErr(span, err)
		if isAuthError(err) {
			p.forget(userID)
			return nil, errors.Wrap(mailsift_errors.ErrReauthorizationRequired, err.Error())
		}
		return nil, errors.Wrap(err, "failed to list messages")
	}

	messages := make([]*dto.Message, 0, len(refs))
	for _, ref := range refs {
		full, err := api.Get(ctx, ref.Id)
		if err != nil {
			p.log.Warnf("skipping gmail message %s: %v", ref.Id, err)
			continue
		}
		messages = append(messages, p.convert(ctx, api, userID, full))
	}

	span.LogKV("listed", len(refs), "fetched", len(messages))
	return messages, nil
}

// BuildQuery renders the inclusive [start, end] day window as a Gmail search query.
func BuildQuery(start, end time.Time) string {
	return fmt.Sprintf("after:%s before:%s", start.Format("2006/01/02"), end.AddDate(0, 0, 1).Format("2006/01/02"))
}

func (p *Provider) loadToken(ctx context.Context, userID string) (*oauth2.Token, error) {
	p.mu.Lock()
	cached, ok := p.cache[userID]
	p.mu.Unlock()
	if ok {
		return cached, nil
	}

	token, err := p.tokens.Load(ctx, userID)
	if errors.Is(err, mailsift_errors.ErrTokenNotFound) {
		return nil, errors.Wrapf(mailsift_errors.ErrReauthorizationRequired, "no gmail token stored for user %s", userID)
	}
	if err != nil {
		return nil, err
	}
	p.remember(userID, token)
	return token, nil
}

func (p *Provider) remember(userID string, token *oauth2.Token) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache[userID] = token
}

func (p *Provider) forget(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.cache, userID)
}

func (p *Provider) renewed(ctx context.Context, userID string, token *oauth2.Token) {
	p.remember(userID, token)
	if err := p.tokens.Save(ctx, userID, token); err != nil {
		p.log.Errorf("failed to persist renewed gmail token for user %s: %v", userID, err)
	}
}

// persistingTokenSource reports every token that differs from the last one seen.
type persistingTokenSource struct {
	mu      sync.Mutex
	base    oauth2.TokenSource
	last    *oauth2.Token
	onRenew func(*oauth2.Token)
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	if s.last == nil || token.AccessToken != s.last.AccessToken {
		s.last = token
		if s.onRenew != nil {
			s.onRenew(token)
		}
	}
	return token, nil
}

func isAuthError(err error) bool {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if retrieveErr.ErrorCode == "invalid_grant" {
			return true
		}
		if retrieveErr.Response != nil && retrieveErr.Response.StatusCode == http.StatusUnauthorized {
			return true
		}
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusUnauthorized {
		return true
	}
	return errors.Is(err, mailsift_errors.ErrReauthorizationRequired)
}
