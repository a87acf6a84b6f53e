// Package filter provides the front-ends that feed inbound mail into the
// security analyzer: an SMTP content filter and a CLI for one-shot analysis.
package filter

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/chrisholloway5/hmailserver-security/internal/core"
	"github.com/chrisholloway5/hmailserver-security/internal/security"
)

// VerdictHeaders names the headers stamped onto analyzed messages.
type VerdictHeaders struct {
	Status     string
	Threat     string
	Level      string
	Confidence string
}

// Downstream configures relaying of accepted messages back to the mail
// server's re-injection port.
type Downstream struct {
	Enabled bool
	Address string
	Port    int
}

// SMTPFilter is an SMTP content filter: the mail server hands each inbound
// message over SMTP, the filter analyzes it, stamps verdict headers, and
// either relays it downstream or rejects it.
type SMTPFilter struct {
	analyzer     *security.Analyzer
	logger       *zap.Logger
	listenAddr   string
	server       *smtp.Server
	blockThreats bool
	headers      VerdictHeaders
	downstream   Downstream
}

// NewSMTPFilter creates a new SMTP content filter.
func NewSMTPFilter(
	analyzer *security.Analyzer,
	logger *zap.Logger,
	listenAddr string,
	blockThreats bool,
	headers VerdictHeaders,
	downstream Downstream,
) *SMTPFilter {
	return &SMTPFilter{
		analyzer:     analyzer,
		logger:       logger,
		listenAddr:   listenAddr,
		blockThreats: blockThreats,
		headers:      headers,
		downstream:   downstream,
	}
}

// Start starts the SMTP filter service.
func (f *SMTPFilter) Start() error {
	f.server = smtp.NewServer(&smtpBackend{filter: f})

	f.server.Addr = f.listenAddr
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024
	f.server.MaxRecipients = 50
	f.server.AllowInsecureAuth = true

	f.logger.Info("SMTP filter starting", zap.String("address", f.listenAddr))

	go func() {
		if err := f.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				f.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP filter service.
func (f *SMTPFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessMessage analyzes a message directly, bypassing the SMTP transport.
func (f *SMTPFilter) ProcessMessage(ctx context.Context, msg *core.Message) *core.Verdict {
	return f.analyzer.Analyze(ctx, msg)
}

// handleMessage runs one inbound message through the analyzer and decides its
// fate. Returning an error rejects the SMTP transaction.
func (f *SMTPFilter) handleMessage(sender string, recipients []string, raw []byte) error {
	msg, err := messageFromRaw(sender, recipients, raw)
	if err != nil {
		f.logger.Error("failed to parse inbound message",
			zap.String("sender", sender),
			zap.Error(err))
		// Unparseable mail still goes through the pipeline with what we have.
		msg = &core.Message{Sender: sender, Recipients: recipients, Body: string(raw)}
	}

	verdict := f.analyzer.Analyze(context.Background(), msg)

	if f.blockThreats && !verdict.IsSecure && verdict.Level >= core.LevelHigh {
		f.logger.Info("rejecting message",
			zap.String("sender", sender),
			zap.String("threat", string(verdict.Threat)),
			zap.String("level", verdict.Level.String()))
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 7, 1},
			Message:      fmt.Sprintf("Message rejected: %s detected", verdict.Threat),
		}
	}

	stamped := f.stampHeaders(raw, verdict)

	if f.downstream.Enabled {
		if err := f.relayDownstream(sender, recipients, stamped); err != nil {
			f.logger.Error("failed to relay message downstream", zap.Error(err))
			return err
		}
	}

	return nil
}

// stampHeaders prepends the verdict headers to the raw message.
func (f *SMTPFilter) stampHeaders(raw []byte, verdict *core.Verdict) []byte {
	status := "clean"
	if !verdict.IsSecure {
		status = "threat"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\r\n", f.headers.Status, status)
	fmt.Fprintf(&b, "%s: %s\r\n", f.headers.Threat, verdict.Threat)
	fmt.Fprintf(&b, "%s: %s\r\n", f.headers.Level, verdict.Level)
	fmt.Fprintf(&b, "%s: %.4f\r\n", f.headers.Confidence, verdict.Confidence)

	return append([]byte(b.String()), raw...)
}

// relayDownstream sends the stamped message to the mail server's re-injection
// port.
func (f *SMTPFilter) relayDownstream(sender string, recipients []string, data []byte) error {
	addr := fmt.Sprintf("%s:%d", f.downstream.Address, f.downstream.Port)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to downstream server: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
		} else {
			recipientOK = true
		}
	}
	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send message data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}
	return nil
}

// smtpBackend implements the go-smtp Backend interface.
type smtpBackend struct {
	filter *SMTPFilter
}

// NewSession creates a new SMTP session.
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		filter:     b.filter,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface.
type smtpSession struct {
	filter     *SMTPFilter
	sender     string
	recipients []string
}

// Reset resets the session state.
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// AuthPlain handles PLAIN authentication (not needed for a content filter).
func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the sender address.
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient.
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data handles the message data.
func (s *smtpSession) Data(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Error("failed to read message data", zap.Error(err))
		return err
	}
	return s.filter.handleMessage(s.sender, s.recipients, raw)
}

// Logout ends the session.
func (s *smtpSession) Logout() error {
	return nil
}
