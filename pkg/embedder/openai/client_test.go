package openai_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eora-ai/recall-go/pkg/embedder/openai"
)

func TestNewClientDefaults(t *testing.T) {
	client, err := openai.NewClient(&openai.Config{APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, 1536, client.Dimensions())
	assert.NoError(t, client.Close())
}

func TestNewClientSupportedModel(t *testing.T) {
	client, err := openai.NewClient(&openai.Config{
		APIKey:     "test-key",
		Model:      "text-embedding-ada-002",
		Dimensions: 1536,
	})
	require.NoError(t, err)
	assert.Equal(t, 1536, client.Dimensions())
}

func TestNewClientUnsupportedModel(t *testing.T) {
	_, err := openai.NewClient(&openai.Config{
		APIKey: "test-key",
		Model:  "text-embedding-3-small",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported embedding model")
}

func TestNewClientCustomDimensions(t *testing.T) {
	client, err := openai.NewClient(&openai.Config{
		APIKey:     "test-key",
		Dimensions: 256,
	})
	require.NoError(t, err)
	assert.Equal(t, 256, client.Dimensions())
}
