package email

import (
	"context"
	"errors"
	"testing"

	"github.com/deppfellow/workshop/internal/config"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []*resend.SendEmailRequest
	err  error
}

func (f *fakeSender) SendWithContext(_ context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, params)
	return &resend.SendEmailResponse{Id: "email-1"}, nil
}

func TestRender_Welcome(t *testing.T) {
	html, err := Render(TemplateWelcome, map[string]string{"UserName": "Maria <Brown>"})
	require.NoError(t, err)

	assert.Contains(t, html, "Hi Maria &lt;Brown&gt;,")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, err := Render("missing", nil)
	assert.Error(t, err)
}

func TestNewClient_DisabledWithoutKey(t *testing.T) {
	logger := zerolog.Nop()
	c := NewClient(&config.Config{}, &logger)

	assert.False(t, c.Enabled())
	assert.NoError(t, c.SendWelcomeEmail(context.Background(), "maria@gmail.com", "Maria"))
}

func TestSendWelcomeEmail(t *testing.T) {
	logger := zerolog.Nop()
	fake := &fakeSender{}
	c := NewClientWithSender(fake, &logger)

	require.NoError(t, c.SendWelcomeEmail(context.Background(), "maria@gmail.com", "Maria Brown"))

	require.Len(t, fake.sent, 1)
	assert.Equal(t, []string{"maria@gmail.com"}, fake.sent[0].To)
	assert.Equal(t, "Welcome to Workshop!", fake.sent[0].Subject)
	assert.Contains(t, fake.sent[0].Html, "Maria Brown")
}

func TestSendEmail_ProviderError(t *testing.T) {
	logger := zerolog.Nop()
	c := NewClientWithSender(&fakeSender{err: errors.New("rate limited")}, &logger)

	err := c.SendWelcomeEmail(context.Background(), "maria@gmail.com", "Maria")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}
