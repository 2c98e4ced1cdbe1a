package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accountant-ai/backend/internal/agent"
	"github.com/accountant-ai/backend/internal/archive"
	"github.com/accountant-ai/backend/internal/common"
	"github.com/accountant-ai/backend/internal/domain"
	"github.com/accountant-ai/backend/internal/gemini"
	"github.com/accountant-ai/backend/internal/store/inmemory"
)

type fakeChatService struct {
	result agent.ChatResult
	err    error
	calls  int
}

func (f *fakeChatService) Chat(_ context.Context, req agent.ChatRequest) (agent.ChatResult, error) {
	f.calls++
	if f.err != nil {
		return agent.ChatResult{}, f.err
	}
	return f.result, nil
}

type fakeExtractor struct {
	fields gemini.ReceiptFields
	err    error
}

func (f *fakeExtractor) ExtractReceipt(context.Context, []byte, string) (gemini.ReceiptFields, error) {
	return f.fields, f.err
}

type fakeFeed struct {
	txs []domain.Transaction
	err error
}

func (f *fakeFeed) FetchTransactions(context.Context, string) ([]domain.Transaction, error) {
	return f.txs, f.err
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestChatRejectsUnknownPersonality(t *testing.T) {
	svc := &fakeChatService{}
	h := NewChatHandler(svc, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(
		`{"user_id":"alice","message":"hi","personality":"aggressive"}`))
	rec := httptest.NewRecorder()
	h.Chat(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "unknown personality")
	assert.Zero(t, svc.calls, "service must not run for an invalid personality")
}

func TestChatValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid JSON", `{`},
		{"missing user_id", `{"message":"hi"}`},
		{"missing message", `{"user_id":"alice"}`},
		{"blank message", `{"user_id":"alice","message":"   "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewChatHandler(&fakeChatService{}, zerolog.Nop())
			req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Chat(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestChatHappyPath(t *testing.T) {
	svc := &fakeChatService{result: agent.ChatResult{
		AgentUsed:       domain.DomainSpending,
		Response:        "Skip it.",
		Tone:            domain.PersonalityNoBS,
		ToneDescription: "No sugarcoating, just facts",
	}}
	h := NewChatHandler(svc, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(
		`{"user_id":"alice","message":"should I buy this?","personality":"no_bs"}`))
	rec := httptest.NewRecorder()
	h.Chat(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "spending", body["agent_used"])
	assert.Equal(t, "Skip it.", body["response"])
	assert.Equal(t, "no_bs", body["tone"])
}

func TestChatUpstreamFailureMapsTo502(t *testing.T) {
	svc := &fakeChatService{err: fmt.Errorf("chat: %w", common.ErrUnavailable)}
	h := NewChatHandler(svc, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(
		`{"user_id":"alice","message":"hi"}`))
	rec := httptest.NewRecorder()
	h.Chat(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestChatRateLimitMapsTo429(t *testing.T) {
	svc := &fakeChatService{err: fmt.Errorf("chat: %w", common.ErrRateLimited)}
	h := NewChatHandler(svc, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(
		`{"user_id":"alice","message":"hi"}`))
	rec := httptest.NewRecorder()
	h.Chat(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestLoadTransactionsInline(t *testing.T) {
	st := inmemory.NewStore()
	h := NewTransactionHandler(st, nil, "", zerolog.Nop())

	payload := `{"transactions":[
		{"transaction_id":"t1","date":"2025-03-01","name":"Groceries","amount":-50,"category":["Food"]},
		{"transaction_id":"t2","date":"2025-03-02","name":"Lunch","amount":-20,"category":["Food"]},
		{"transaction_id":"t3","date":"2025-03-03","name":"Paycheck","amount":1000,"category":["Income"]}
	]}`
	req := httptest.NewRequest(http.MethodPost, "/load-transactions?user_id=alice", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	h.Load(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "loaded", body["status"])
	assert.Equal(t, float64(3), body["transactions_loaded"])
	assert.Equal(t, float64(70), body["total_spent"])
	assert.Equal(t, float64(1000), body["total_income"])

	stored, err := st.GetAll(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestLoadTransactionsRequiresUserID(t *testing.T) {
	h := NewTransactionHandler(inmemory.NewStore(), nil, "", zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/load-transactions", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.Load(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoadTransactionsFeedNotConfigured(t *testing.T) {
	h := NewTransactionHandler(inmemory.NewStore(), nil, "", zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/load-transactions?user_id=alice",
		strings.NewReader(`{"access_token":"access-sandbox-123"}`))
	rec := httptest.NewRecorder()
	h.Load(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoadTransactionsFromFeed(t *testing.T) {
	d, _ := time.Parse("2006-01-02", "2025-03-01")
	feed := &fakeFeed{txs: []domain.Transaction{
		{TransactionID: "p1", Date: d, Name: "Coffee", Amount: -4.5, Category: []string{"Food"}, Source: domain.SourceBankFeed},
	}}
	st := inmemory.NewStore()
	h := NewTransactionHandler(st, feed, "", zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/load-transactions?user_id=alice",
		strings.NewReader(`{"access_token":"access-sandbox-123"}`))
	rec := httptest.NewRecorder()
	h.Load(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["transactions_loaded"])
}

func TestLoadTransactionsFeedFailure(t *testing.T) {
	feed := &fakeFeed{err: fmt.Errorf("fetch: %w", common.ErrUnavailable)}
	h := NewTransactionHandler(inmemory.NewStore(), feed, "", zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/load-transactions?user_id=alice",
		strings.NewReader(`{"access_token":"access-sandbox-123"}`))
	rec := httptest.NewRecorder()
	h.Load(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestLoadTransactionsFromSeedFile(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(seed, []byte(`[
		{"transaction_id":"s1","date":"2025-03-01","name":"Groceries","amount":-42.5,"category":["Food"]},
		{"transaction_id":"s2","date":"2025-03-02","name":"Paycheck","amount":500,"category":["Income"]}
	]`), 0o644))

	st := inmemory.NewStore()
	h := NewTransactionHandler(st, nil, seed, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/load-transactions?user_id=alice", nil)
	rec := httptest.NewRecorder()
	h.Load(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(2), body["transactions_loaded"])
	assert.Equal(t, 42.5, body["total_spent"])
}

func TestLoadTransactionsNoBodyNoSeed(t *testing.T) {
	h := NewTransactionHandler(inmemory.NewStore(), nil, "", zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/load-transactions?user_id=alice", nil)
	rec := httptest.NewRecorder()
	h.Load(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTransactionsEmptyUser(t *testing.T) {
	h := NewTransactionHandler(inmemory.NewStore(), nil, "", zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/get-transactions/ghost", nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(0), body["count"])
}

func TestGetTransactionsLimit(t *testing.T) {
	st := inmemory.NewStore()
	d, _ := time.Parse("2006-01-02", "2025-03-01")
	_, err := st.Load(context.Background(), "alice", []domain.Transaction{
		{TransactionID: "t1", Date: d, Name: "a", Amount: -1},
		{TransactionID: "t2", Date: d.AddDate(0, 0, 1), Name: "b", Amount: -2},
	})
	require.NoError(t, err)
	h := NewTransactionHandler(st, nil, "", zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/get-transactions/alice?limit=1", nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["count"])
}

func TestGetTransactionsBadLimit(t *testing.T) {
	h := NewTransactionHandler(inmemory.NewStore(), nil, "", zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/get-transactions/alice?limit=nope", nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func receiptRequest(t *testing.T, userID string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "receipt.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload-receipt?user_id="+userID, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUploadReceiptStoresTransaction(t *testing.T) {
	st := inmemory.NewStore()
	ex := &fakeExtractor{fields: gemini.ReceiptFields{
		Merchant: "Blue Bottle", Amount: 6.5, Date: "2025-03-04", Category: "Food and Drink",
	}}
	h := NewReceiptHandler(st, ex, archive.Disabled{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Upload(rec, receiptRequest(t, "alice"))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "stored", body["status"])

	stored, err := st.GetAll(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, -6.5, stored[0].Amount, "receipt amounts are stored as debits")
	assert.Equal(t, domain.SourceReceiptUpload, stored[0].Source)
	assert.NotEmpty(t, stored[0].TransactionID)
}

func TestUploadReceiptIncompleteExtraction(t *testing.T) {
	st := inmemory.NewStore()
	ex := &fakeExtractor{
		fields: gemini.ReceiptFields{Merchant: "Blue Bottle"},
		err:    fmt.Errorf("%w: missing fields: amount, date, category", common.ErrExtractionIncomplete),
	}
	h := NewReceiptHandler(st, ex, archive.Disabled{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Upload(rec, receiptRequest(t, "alice"))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody(t, rec)
	partial, ok := body["partial_fields"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Blue Bottle", partial["merchant"])

	stored, err := st.GetAll(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, stored, "incomplete extractions must not be stored")
}

func TestUploadReceiptUpstreamFailure(t *testing.T) {
	ex := &fakeExtractor{err: fmt.Errorf("extract: %w", common.ErrUnavailable)}
	h := NewReceiptHandler(inmemory.NewStore(), ex, archive.Disabled{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Upload(rec, receiptRequest(t, "alice"))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestUploadReceiptRequiresFile(t *testing.T) {
	h := NewReceiptHandler(inmemory.NewStore(), &fakeExtractor{}, archive.Disabled{}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/upload-receipt?user_id=alice", strings.NewReader("not multipart"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPersonalitiesCatalog(t *testing.T) {
	h := NewMetaHandler(inmemory.NewStore(), "test-model", zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/personalities", nil)
	rec := httptest.NewRecorder()
	h.Personalities(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "supportive", body["default"])
	entries, ok := body["personalities"].([]any)
	require.True(t, ok)
	assert.Len(t, entries, 5)
}

func TestHealth(t *testing.T) {
	h := NewMetaHandler(inmemory.NewStore(), "test-model", zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test-model", body["model"])
}

func TestSessionEndpoint(t *testing.T) {
	st := inmemory.NewStore()
	d, _ := time.Parse("2006-01-02", "2025-03-01")
	_, err := st.Load(context.Background(), "alice", []domain.Transaction{
		{TransactionID: "t1", Date: d, Name: "a", Amount: -1},
	})
	require.NoError(t, err)
	h := NewMetaHandler(st, "test-model", zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/session/alice", nil)
	rec := httptest.NewRecorder()
	h.Session(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "alice", body["user_id"])
	assert.Equal(t, float64(1), body["transactions_count"])
	assert.Equal(t, float64(0), body["message_count"])
}
