package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/deppfellow/workshop/internal/lib/email"
	"github.com/hibiken/asynq"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	to  []string
	err error
}

func (f *fakeSender) SendWithContext(_ context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.to = append(f.to, params.To...)
	return &resend.SendEmailResponse{}, nil
}

func newTestService(s email.Sender) *JobService {
	logger := zerolog.Nop()
	return &JobService{
		logger:      &logger,
		emailClient: email.NewClientWithSender(s, &logger),
	}
}

func TestNewWelcomeEmailTask(t *testing.T) {
	task, err := NewWelcomeEmailTask("maria@gmail.com", "Maria Brown")
	require.NoError(t, err)

	assert.Equal(t, TaskWelcome, task.Type())

	var p WelcomeEmailPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, WelcomeEmailPayload{To: "maria@gmail.com", Name: "Maria Brown"}, p)
}

func TestHandleWelcomeEmailTask(t *testing.T) {
	sender := &fakeSender{}
	j := newTestService(sender)

	task, err := NewWelcomeEmailTask("alex@gmail.com", "Alex Green")
	require.NoError(t, err)

	require.NoError(t, j.handleWelcomeEmailTask(context.Background(), task))
	assert.Equal(t, []string{"alex@gmail.com"}, sender.to)
}

func TestHandleWelcomeEmailTask_SendFailure(t *testing.T) {
	j := newTestService(&fakeSender{err: errors.New("boom")})

	task, err := NewWelcomeEmailTask("alex@gmail.com", "Alex Green")
	require.NoError(t, err)

	err = j.handleWelcomeEmailTask(context.Background(), task)
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandleWelcomeEmailTask_BadPayload(t *testing.T) {
	j := newTestService(&fakeSender{})

	err := j.handleWelcomeEmailTask(context.Background(), asynq.NewTask(TaskWelcome, []byte("{")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}
