package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/dalemusser/agendapro/internal/app/system/mailer"
	"github.com/dalemusser/agendapro/internal/app/system/push"
)

// FakeMailer records emails instead of sending them.
type FakeMailer struct {
	mu   sync.Mutex
	Sent []mailer.Email
	Err  error // returned from every Send when set
}

func (m *FakeMailer) Send(_ context.Context, e mailer.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, e)
	return nil
}

// Emails returns a copy of the recorded emails.
func (m *FakeMailer) Emails() []mailer.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Email(nil), m.Sent...)
}

// FakePush records push messages. Tokens listed in Invalid are rejected
// with push.ErrInvalidToken and tokens in Fail with a generic error. With
// RejectReservedData, a payload the provider would refuse fails every send.
type FakePush struct {
	mu                 sync.Mutex
	Sent               []push.Message
	Invalid            map[string]bool
	Fail               map[string]error
	RejectReservedData bool
}

// ErrBadPayload is what FakePush returns for a refused payload.
var ErrBadPayload = errors.New("fake push: invalid data payload")

func (p *FakePush) Send(_ context.Context, m push.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.RejectReservedData && !push.ValidData(m.Data) {
		return ErrBadPayload
	}
	if p.Invalid[m.Token] {
		return push.ErrInvalidToken
	}
	if err := p.Fail[m.Token]; err != nil {
		return err
	}
	p.Sent = append(p.Sent, m)
	return nil
}

// Messages returns a copy of the recorded messages.
func (p *FakePush) Messages() []push.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]push.Message(nil), p.Sent...)
}
