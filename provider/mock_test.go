package provider

import (
	"context"
	"testing"

	"github.com/patrickjm/yapl/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProviderCannedResponse(t *testing.T) {
	m := NewMockProvider()
	m.AddResponse("ping", "pong")

	resp, err := m.Execute(context.Background(), Request{
		Model:    core.Model{Name: "m"},
		Messages: []core.Message{{Role: core.RoleUser, Content: "ping"}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, core.RoleAssistant, resp.Messages[0].Role)
	assert.Equal(t, "pong", resp.Messages[0].Content)
	assert.Equal(t, len("pong"), resp.Cost.Tokens)
	assert.Equal(t, 1, m.Calls())
}

func TestMockProviderFallbackResponse(t *testing.T) {
	m := NewMockProvider()
	resp, err := m.Execute(context.Background(), Request{
		Messages: []core.Message{{Role: core.RoleUser, Content: "anything"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: anything", resp.Messages[0].Content)
}

func TestMockProviderHandlerTakesOver(t *testing.T) {
	m := NewMockProvider()
	m.AddResponse("ignored", "by handler")
	m.SetHandler(func(req Request) (*Response, error) {
		return &Response{Messages: []core.Message{{Role: core.RoleAssistant, Content: "scripted"}}}, nil
	})

	resp, err := m.Execute(context.Background(), Request{
		Messages: []core.Message{{Role: core.RoleUser, Content: "ignored"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "scripted", resp.Messages[0].Content)
	assert.Equal(t, 1, m.Calls())
}

func TestMockProviderEmptyMessages(t *testing.T) {
	m := NewMockProvider()
	_, err := m.Execute(context.Background(), Request{})
	assert.Error(t, err)
}

func TestMockProviderHonorsContext(t *testing.T) {
	m := NewMockProvider()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Execute(ctx, Request{
		Messages: []core.Message{{Role: core.RoleUser, Content: "q"}},
	})
	assert.ErrorIs(t, err, context.Canceled)
}
