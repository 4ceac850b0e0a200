package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"tierly/internal/config"
	"tierly/internal/models/request_models"
	"tierly/pkg/utils"
)

func newAIService(f *fixture, completer *fakeCompleter) AIServiceInterface {
	return NewAIService(f.store, f.usage, completer, config.AIConfig{
		DefaultModel: "gpt-4o-mini",
		MaxTokens:    1000,
		Temperature:  0.7,
	}, zap.NewNop())
}

func TestCalculateCost(t *testing.T) {
	tests := []struct {
		model  string
		tokens int
		want   string
	}{
		{"gpt-4o-mini", 1000, "0.00015"},
		{"gpt-4o-mini", 500, "0.000075"},
		{"gpt-4o", 1000, "0.003"},
		{"gpt-4o", 250, "0.00075"},
		{"some-future-model", 1000, "0.00015"},
		{"gpt-4o", 0, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			got := CalculateCost(tt.model, tt.tokens)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestChat_Success(t *testing.T) {
	f := newFixture()
	user := f.store.addUser("gold")
	completer := &fakeCompleter{result: utils.CompletionResult{
		Content: "hello", PromptTokens: 10, CompletionTokens: 30, TotalTokens: 40,
	}}
	svc := newAIService(f, completer)

	resp, err := svc.Chat(context.Background(), user, request_models.ChatRequest{
		Message:        "hi",
		Model:          "gpt-4o",
		MaxTokens:      200,
		ConversationID: "conv-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "hello", resp.Message)
	assert.Equal(t, "gpt-4o", resp.Model)
	assert.Equal(t, "conv-1", resp.ConversationID)
	assert.Equal(t, 40, resp.TokensUsed)
	assert.True(t, resp.Cost.Equal(decimal.RequireFromString("0.00012")))

	assert.Equal(t, 200, completer.last.MaxTokens)
	assert.InDelta(t, 0.7, completer.last.Temperature, 0.0001)
	require.Len(t, completer.last.Messages, 1)
	assert.Equal(t, "user", completer.last.Messages[0].Role)

	require.Len(t, f.store.usage, 1)
	entry := f.store.usage[0]
	assert.Equal(t, FeatureAIRequests, entry.FeatureID)
	assert.Equal(t, "openai", entry.Provider)
	assert.Equal(t, "gpt-4o", entry.Model)
	assert.Equal(t, 40, entry.TokensUsed)
}

func TestChat_Defaults(t *testing.T) {
	f := newFixture()
	user := f.store.addUser("platinum")
	completer := &fakeCompleter{result: utils.CompletionResult{Content: "ok", TotalTokens: 1}}
	svc := newAIService(f, completer)

	temp := float32(1.5)
	_, err := svc.Chat(context.Background(), user, request_models.ChatRequest{Message: "hi", Temperature: &temp})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", completer.last.Model)
	assert.Equal(t, 1000, completer.last.MaxTokens)
	assert.InDelta(t, 1.5, completer.last.Temperature, 0.0001)
}

func TestChat_FeatureDisabled(t *testing.T) {
	f := newFixture()
	user := f.store.addUser("free")
	completer := &fakeCompleter{}
	svc := newAIService(f, completer)

	_, err := svc.Chat(context.Background(), user, request_models.ChatRequest{Message: "hi"})
	assert.ErrorIs(t, err, utils.ErrUpgradeRequired)
	assert.Zero(t, completer.calls)
	assert.Empty(t, f.store.usage)
}

func TestChat_QuotaExceeded(t *testing.T) {
	f := newFixture()
	user := f.store.addUser("gold")
	f.store.addUsage(user, FeatureAIRequests, fixedNow.Add(-time.Minute), 100)
	completer := &fakeCompleter{}
	svc := newAIService(f, completer)

	_, err := svc.Chat(context.Background(), user, request_models.ChatRequest{Message: "hi"})
	require.ErrorIs(t, err, utils.ErrQuotaExceeded)

	var limitErr *utils.UsageLimitError
	require.True(t, errors.As(err, &limitErr))
	assert.Equal(t, int64(100), limitErr.Current)
	assert.Equal(t, 100, limitErr.Limit)
	assert.Zero(t, completer.calls)
}

func TestChat_ProviderFailureRecordsNothing(t *testing.T) {
	f := newFixture()
	user := f.store.addUser("gold")
	completer := &fakeCompleter{err: errors.New("503 from upstream")}
	svc := newAIService(f, completer)

	_, err := svc.Chat(context.Background(), user, request_models.ChatRequest{Message: "hi"})
	assert.ErrorIs(t, err, utils.ErrExternalService)
	assert.Empty(t, f.store.usage)
}

func TestChat_UnknownUser(t *testing.T) {
	f := newFixture()
	svc := newAIService(f, &fakeCompleter{})

	_, err := svc.Chat(context.Background(), uuid.New(), request_models.ChatRequest{Message: "hi"})
	assert.ErrorIs(t, err, utils.ErrRecordNotFound)
}

func TestAIUsageStatsAndHistory(t *testing.T) {
	f := newFixture()
	user := f.store.addUser("gold")
	f.store.addUsage(user, FeatureAIRequests, fixedNow, 3)
	svc := newAIService(f, &fakeCompleter{})

	stats, err := svc.UsageStats(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.CurrentUsage)
	assert.Equal(t, 97, *stats.Remaining)

	history, err := svc.History(context.Background(), user, 0)
	require.NoError(t, err)
	assert.Len(t, history, 3)

	_, err = svc.UsageStats(context.Background(), uuid.New())
	assert.ErrorIs(t, err, utils.ErrRecordNotFound)
}

func TestChat_RecordsServedModel(t *testing.T) {
	f := newFixture()
	user := f.store.addUser("gold")
	completer := &fakeCompleter{provider: "gemini", result: utils.CompletionResult{
		Content: "hola", Model: "gemini-1.5-flash", TotalTokens: 2000,
	}}
	svc := newAIService(f, completer)

	resp, err := svc.Chat(context.Background(), user, request_models.ChatRequest{Message: "hi"})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", completer.last.Model)
	assert.Equal(t, "gemini-1.5-flash", resp.Model)
	assert.True(t, resp.Cost.Equal(decimal.RequireFromString("0.00015")), "got %s", resp.Cost)

	require.Len(t, f.store.usage, 1)
	assert.Equal(t, "gemini", f.store.usage[0].Provider)
	assert.Equal(t, "gemini-1.5-flash", f.store.usage[0].Model)
	assert.True(t, f.store.usage[0].Cost.Equal(resp.Cost))
}
