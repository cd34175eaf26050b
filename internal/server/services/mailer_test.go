package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/dmitrijs2005/boostmanager/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogMailer_RedactsBody(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(logging.New(logging.BackendSlog, &buf), false)

	require.NoError(t, m.Send(context.Background(), "ana@example.com", "Confirm your e-mail", "Your code: 482913"))

	assert.Contains(t, buf.String(), "ana@example.com")
	assert.Contains(t, buf.String(), `"body_bytes":17`)
	assert.NotContains(t, buf.String(), "482913")
}

func TestLogMailer_LogsBodyWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(logging.New(logging.BackendSlog, &buf), true)

	require.NoError(t, m.Send(context.Background(), "ana@example.com", "Reset password", "Your code: 482913"))

	assert.Contains(t, buf.String(), "482913")
	assert.Contains(t, buf.String(), `"level":"WARN"`)
}
