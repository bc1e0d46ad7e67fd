package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"askpa/internal/ai"
	"askpa/internal/app"
	"askpa/internal/registry"
	"askpa/internal/vectorstore"
)

type stubEmbedder struct {
	batchCalls int
	embedCalls int
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.embedCalls++
	return []float32{float32(len(text))}, nil
}

func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	s.batchCalls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i)}
	}
	return out, nil
}

type memoryIndex struct {
	records map[string]vectorstore.Record
	order   []string
	queries int
}

func newMemoryIndex() *memoryIndex {
	return &memoryIndex{records: make(map[string]vectorstore.Record)}
}

func (m *memoryIndex) Upsert(_ context.Context, records []vectorstore.Record) error {
	for _, r := range records {
		if _, seen := m.records[r.ID]; !seen {
			m.order = append(m.order, r.ID)
		}
		m.records[r.ID] = r
	}
	return nil
}

func (m *memoryIndex) Query(_ context.Context, _ []float32, topK int) ([]vectorstore.Match, error) {
	m.queries++
	var out []vectorstore.Match
	for _, id := range m.order {
		if len(out) == topK {
			break
		}
		r := m.records[id]
		out = append(out, vectorstore.Match{ID: r.ID, Score: 0.9, Metadata: r.Metadata})
	}
	return out, nil
}

type stubGenerator struct {
	received []ai.ChatMessage
	answer   string
	calls    int
}

func (g *stubGenerator) Complete(_ context.Context, messages []ai.ChatMessage) (string, error) {
	g.calls++
	g.received = messages
	return g.answer, nil
}

type fixture struct {
	router    *gin.Engine
	registry  *registry.Registry
	embedder  *stubEmbedder
	index     *memoryIndex
	generator *stubGenerator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := registry.New(filepath.Join(t.TempDir(), "users.json"))
	embedder := &stubEmbedder{}
	index := newMemoryIndex()
	generator := &stubGenerator{answer: "You enjoy hiking."}

	authService := app.NewAuthService(reg)
	assistantService := app.NewAssistantService(reg, embedder, index, generator, 1000, 200, 5)
	accountHandler := NewAccountHandler(authService, assistantService)
	assistantHandler := NewAssistantHandler(assistantService)

	router := gin.New()
	router.POST("/signup", accountHandler.Signup)
	router.POST("/login", accountHandler.Login)
	router.POST("/append", assistantHandler.Append)
	router.POST("/chat", assistantHandler.Chat)

	return &fixture{
		router:    router,
		registry:  reg,
		embedder:  embedder,
		index:     index,
		generator: generator,
	}
}

func multipartBody(t *testing.T, fields map[string]string, filename, fileContent string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		fw, err := w.CreateFormFile("document", filename)
		require.NoError(t, err)
		_, err = io.WriteString(fw, fileContent)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func postForm(t *testing.T, router *gin.Engine, path string, form map[string]string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range form {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func signup(t *testing.T, f *fixture, email string) string {
	t.Helper()
	buf, contentType := multipartBody(t, map[string]string{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"email":      email,
		"password":   "secret",
		"about":      "I like hiking",
	}, "about-me.txt", "I also enjoy coding")

	req := httptest.NewRequest(http.MethodPost, "/signup", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "User registered successfully", body["message"])
	userID, _ := body["user_id"].(string)
	require.NotEmpty(t, userID)
	return userID
}

func TestSignupThenChatUsesOwnContent(t *testing.T) {
	f := newFixture(t)
	userID := signup(t, f, "ada@example.com")

	// about + "\n" + extracted text fits in one default-size chunk.
	require.Len(t, f.index.order, 1)
	rec := f.index.records[userID+"-0"]
	assert.Equal(t, "I like hiking\nI also enjoy coding", rec.Metadata.Text)

	httpRec, body := postForm(t, f.router, "/chat", map[string]string{
		"email": "ada@example.com",
		"query": "What outdoor activities do I enjoy?",
	})
	require.Equal(t, http.StatusOK, httpRec.Code)
	assert.Equal(t, "You enjoy hiking.", body["response"])

	// The generated answer was built from context containing the user's
	// own uploaded text.
	require.Len(t, f.generator.received, 2)
	assert.Contains(t, f.generator.received[1].Content, "hiking")
	assert.Contains(t, f.generator.received[1].Content, "What outdoor activities do I enjoy?")
}

func TestSignupMissingFieldIsRejected(t *testing.T) {
	f := newFixture(t)

	buf, contentType := multipartBody(t, map[string]string{
		"first_name": "Ada",
		"email":      "ada@example.com",
	}, "about.txt", "text")

	req := httptest.NewRequest(http.MethodPost, "/signup", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, f.embedder.batchCalls)
}

func TestSignupMissingDocumentIsRejected(t *testing.T) {
	f := newFixture(t)

	buf, contentType := multipartBody(t, map[string]string{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"email":      "ada@example.com",
		"password":   "secret",
		"about":      "hello",
	}, "", "")

	req := httptest.NewRequest(http.MethodPost, "/signup", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginMatchesEmailCaseInsensitively(t *testing.T) {
	f := newFixture(t)
	userID := signup(t, f, "A@B.com")

	httpRec, body := postForm(t, f.router, "/login", map[string]string{
		"email":    "a@b.com",
		"password": "secret",
	})
	require.Equal(t, http.StatusOK, httpRec.Code)
	assert.Equal(t, "Login successful", body["message"])
	assert.Equal(t, userID, body["user_id"])

	_, body = postForm(t, f.router, "/login", map[string]string{
		"email":    "a@b.com",
		"password": "SECRET",
	})
	assert.Equal(t, "Invalid credentials", body["message"])
	_, hasUserID := body["user_id"]
	assert.False(t, hasUserID)
}

func TestAppendUnknownEmail(t *testing.T) {
	f := newFixture(t)

	buf, contentType := multipartBody(t, map[string]string{
		"email": "nobody@example.com",
		"about": "more info",
	}, "extra.txt", "extra text")

	req := httptest.NewRequest(http.MethodPost, "/append", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "User not found", body["message"])
	assert.Equal(t, 0, f.embedder.batchCalls)
}

func TestAppendAddsRetrievableContent(t *testing.T) {
	f := newFixture(t)
	userID := signup(t, f, "ada@example.com")

	buf, contentType := multipartBody(t, map[string]string{
		"email": "ada@example.com",
		"about": "I started sailing",
	}, "extra.txt", "and kayaking")

	req := httptest.NewRequest(http.MethodPost, "/append", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Data appended successfully", body["message"])

	require.Len(t, f.index.order, 2)
	appended := f.index.records[f.index.order[1]]
	assert.Equal(t, userID, appended.Metadata.UserID)
	assert.Equal(t, "I started sailing\nand kayaking", appended.Metadata.Text)
}

func TestChatUnknownEmailSkipsProviders(t *testing.T) {
	f := newFixture(t)

	rec, body := postForm(t, f.router, "/chat", map[string]string{
		"email": "nobody@example.com",
		"query": "anything",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", body["response"])
	assert.Equal(t, 0, f.embedder.embedCalls)
	assert.Equal(t, 0, f.index.queries)
	assert.Equal(t, 0, f.generator.calls)
}

func TestChatOnlySeesOwnUsersRecords(t *testing.T) {
	f := newFixture(t)
	signup(t, f, "ada@example.com")

	// Another user's record sits in the global top-k results.
	require.NoError(t, f.index.Upsert(context.Background(), []vectorstore.Record{{
		ID:     "other-0",
		Values: []float32{1},
		Metadata: vectorstore.Metadata{
			UserID: "other",
			Email:  "grace@example.com",
			Text:   "I collect vintage compilers",
		},
	}}))

	rec, body := postForm(t, f.router, "/chat", map[string]string{
		"email": "ada@example.com",
		"query": "what do I like?",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, body["response"])

	prompt := f.generator.received[1].Content
	assert.Contains(t, prompt, "hiking")
	assert.NotContains(t, prompt, "vintage compilers")
}
