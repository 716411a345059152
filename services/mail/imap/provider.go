package imap

import (
	"bytes"
	"context"
	"io"
	"sort"
	"time"

	go_imap "github.com/emersion/go-imap"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/mailsift/config"
	"github.com/customeros/mailsift/dto"
	mailsift_errors "github.com/customeros/mailsift/internal/errors"
	"github.com/customeros/mailsift/internal/logger"
	"github.com/customeros/mailsift/internal/tracing"
)

type Provider struct {
	cfg  *config.IMAPConfig
	log  logger.Logger
	dial dialFunc
}

func NewProvider(cfg *config.IMAPConfig, log logger.Logger) *Provider {
	return &Provider{cfg: cfg, log: log, dial: connect}
}

// FetchMessages reads the newest maxCount messages of the configured folder
// received within [start, end]. The folder is opened read-only.
func (p *Provider) FetchMessages(ctx context.Context, userID string, start, end time.Time, maxCount int) ([]*dto.Message, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IMAPProvider.FetchMessages")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag(tracing.SpanTagUserId, userID)

	if p.cfg.Server == "" || p.cfg.Username == "" || p.cfg.Password == "" {
		return nil, errors.Wrap(mailsift_errors.ErrReauthorizationRequired, "imap credentials not configured")
	}

	mb, err := p.dial(ctx, p.cfg)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	defer func() {
		if err := mb.Logout(); err != nil {
			p.log.Debugf("imap logout: %v", err)
		}
	}()

	folder := p.cfg.Folder
	if folder == "" {
		folder = "INBOX"
	}
	if _, err := mb.Select(folder, true); err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(err, "failed to select %s", folder)
	}

	criteria := go_imap.NewSearchCriteria()
	criteria.Since = start
	criteria.Before = end.AddDate(0, 0, 1)
	uids, err := mb.UidSearch(criteria)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to search messages")
	}

	sort.Slice(uids, func(i, j int) bool { return uids[i] > uids[j] })
	if maxCount > 0 && len(uids) > maxCount {
		uids = uids[:maxCount]
	}

	messages := make([]*dto.Message, 0, len(uids))
	for _, uid := range uids {
		raw, internalDate, err := fetchRaw(mb, uid)
		if err != nil {
			p.log.Warnf("skipping imap message %d: %v", uid, err)
			continue
		}
		msg, err := ParseMessage(raw, userID)
		if err != nil {
			p.log.Warnf("skipping unparsable imap message %d: %v", uid, err)
			continue
		}
		if msg.ID == "" {
			msg.ID = fallbackID(folder, uid)
		}
		if msg.Date.IsZero() {
			msg.Date = internalDate.UTC()
		}
		messages = append(messages, msg)
	}

	span.LogKV("matched", len(uids), "fetched", len(messages))
	return messages, nil
}

func fetchRaw(mb mailbox, uid uint32) ([]byte, time.Time, error) {
	seqSet := new(go_imap.SeqSet)
	seqSet.AddNum(uid)
	section := &go_imap.BodySectionName{}
	items := []go_imap.FetchItem{go_imap.FetchUid, go_imap.FetchInternalDate, section.FetchItem()}

	ch := make(chan *go_imap.Message, 1)
	if err := mb.UidFetch(seqSet, items, ch); err != nil {
		return nil, time.Time{}, err
	}
	msg, ok := <-ch
	if !ok || msg == nil {
		return nil, time.Time{}, errors.Errorf("message with UID %d not found", uid)
	}

	for name, literal := range msg.Body {
		if len(name.Path) == 0 && name.Specifier == go_imap.EntireSpecifier && literal != nil {
			var buf bytes.Buffer
			if _, err := io.Copy(&buf, literal); err != nil {
				return nil, time.Time{}, err
			}
			return buf.Bytes(), msg.InternalDate, nil
		}
	}
	return nil, time.Time{}, errors.Errorf("message with UID %d has no body", uid)
}
