package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Name:             "model-api",
		MaxRequests:      2,
		Interval:         10 * time.Second,
		Timeout:          100 * time.Millisecond,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

func TestNew(t *testing.T) {
	cb := New(testConfig())

	assert.Equal(t, "model-api", cb.Name())
	assert.Equal(t, gobreaker.StateClosed, cb.State())
	assert.False(t, cb.IsOpen())
}

func TestExecute_PassesResultAndError(t *testing.T) {
	cb := New(testConfig())

	result, err := cb.Execute(func() (interface{}, error) {
		return "a summary", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "a summary", result)

	backendErr := errors.New("model backend overloaded")
	result, err = cb.Execute(func() (interface{}, error) {
		return nil, backendErr
	})
	assert.Same(t, backendErr, err)
	assert.Nil(t, result)
}

func TestExecute_TripsAtFailureThreshold(t *testing.T) {
	cb := New(testConfig())
	backendErr := errors.New("model backend overloaded")

	// 4 failures + 1 success keeps the breaker closed at the 5-request
	// minimum (80% >= 60%, but the trip check runs on the next call).
	for i := 0; i < 4; i++ {
		_, _ = cb.Execute(func() (interface{}, error) { return nil, backendErr })
	}
	_, err := cb.Execute(func() (interface{}, error) { return "ok", nil })
	require.NoError(t, err)

	_, _ = cb.Execute(func() (interface{}, error) { return nil, backendErr })
	require.True(t, cb.IsOpen(), "failure ratio over threshold must open the circuit")

	// Open circuit rejects without invoking the call.
	_, err = cb.Execute(func() (interface{}, error) {
		t.Fatal("open circuit must not call the backend")
		return nil, nil
	})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestExecute_BelowMinRequestsStaysClosed(t *testing.T) {
	cfg := testConfig()
	cfg.MinRequests = 10
	cb := New(cfg)

	backendErr := errors.New("model backend overloaded")
	for i := 0; i < 4; i++ {
		_, _ = cb.Execute(func() (interface{}, error) { return nil, backendErr })
	}

	assert.Equal(t, gobreaker.StateClosed, cb.State(),
		"too small a sample must not trip the circuit")
}

func TestExecute_RecoversThroughHalfOpen(t *testing.T) {
	cb := New(testConfig())

	backendErr := errors.New("model backend overloaded")
	for i := 0; i < 6; i++ {
		_, _ = cb.Execute(func() (interface{}, error) { return nil, backendErr })
	}
	require.True(t, cb.IsOpen())

	time.Sleep(150 * time.Millisecond)

	_, err := cb.Execute(func() (interface{}, error) { return "a summary", nil })
	assert.NoError(t, err, "probe after the open timeout should go through")
	assert.NotEqual(t, gobreaker.StateOpen, cb.State())
}

func TestBackendConfigs(t *testing.T) {
	claude := ClaudeAPIConfig()
	assert.Equal(t, "claude-api", claude.Name)

	openai := OpenAIAPIConfig()
	assert.Equal(t, "openai-api", openai.Name)

	base := DefaultConfig("anything")
	assert.Equal(t, uint32(3), base.MaxRequests)
	assert.Equal(t, 30*time.Second, base.Interval)
	assert.Equal(t, 60*time.Second, base.Timeout)
	assert.Equal(t, 0.6, base.FailureThreshold)
	assert.Equal(t, uint32(5), base.MinRequests)
}
