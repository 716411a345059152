package imap

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	go_imap "github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/mailsift/config"
	mailsift_errors "github.com/customeros/mailsift/internal/errors"
	"github.com/customeros/mailsift/internal/tracing"
)

// mailbox is the part of *client.Client used for one ingestion pass.
type mailbox interface {
	Select(name string, readOnly bool) (*go_imap.MailboxStatus, error)
	UidSearch(criteria *go_imap.SearchCriteria) ([]uint32, error)
	UidFetch(seqset *go_imap.SeqSet, items []go_imap.FetchItem, ch chan *go_imap.Message) error
	Logout() error
}

type dialFunc func(ctx context.Context, cfg *config.IMAPConfig) (mailbox, error)

// connect dials the configured server and logs in.
func connect(ctx context.Context, cfg *config.IMAPConfig) (mailbox, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "IMAPProvider.connect")
	defer span.Finish()
	tracing.TagComponentExternalAPI(span)
	span.SetTag("server", cfg.Server)
	span.SetTag("port", cfg.Port)
	span.SetTag("tls", cfg.TLS)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server, cfg.Port)
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	var c *client.Client
	var err error
	if cfg.TLS {
		c, err = client.DialWithDialerTLS(dialer, serverAddr, &tls.Config{ServerName: cfg.Server})
	} else {
		c, err = client.DialWithDialer(dialer, serverAddr)
	}
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(err, "failed to connect to %s", serverAddr)
	}

	c.Timeout = 30 * time.Second
	if err := c.Login(cfg.Username, cfg.Password); err != nil {
		_ = c.Logout()
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(mailsift_errors.ErrReauthorizationRequired, "login as %s rejected: %v", cfg.Username, err)
	}
	c.Timeout = 2 * time.Minute

	return c, nil
}
