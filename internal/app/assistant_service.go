package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"askpa/internal/ai"
	"askpa/internal/model"
	"askpa/internal/registry"
	"askpa/internal/vectorstore"
)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
	defaultTopK         = 5

	systemInstruction = "You are an assistant answering user-specific questions based on their uploaded data."
)

// Embedder produces one vector per input text, preserving order.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorIndex appends records to and queries an external similarity index.
type VectorIndex interface {
	Upsert(ctx context.Context, records []vectorstore.Record) error
	Query(ctx context.Context, vector []float32, topK int) ([]vectorstore.Match, error)
}

// Generator answers a prompt with a single non-streamed completion.
type Generator interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
}

// AssistantService runs the two pipelines: ingestion (signup and append) and
// question answering. Each call is synchronous; any failing step aborts the
// whole operation.
type AssistantService struct {
	registry  *registry.Registry
	embedder  Embedder
	index     VectorIndex
	generator Generator

	chunkSize    int
	chunkOverlap int
	topK         int
}

func NewAssistantService(
	reg *registry.Registry,
	embedder Embedder,
	index VectorIndex,
	generator Generator,
	chunkSize, chunkOverlap, topK int,
) *AssistantService {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if chunkOverlap <= 0 || chunkOverlap >= chunkSize {
		chunkOverlap = defaultChunkOverlap
	}
	if topK <= 0 {
		topK = defaultTopK
	}
	return &AssistantService{
		registry:     reg,
		embedder:     embedder,
		index:        index,
		generator:    generator,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		topK:         topK,
	}
}

type SignupInput struct {
	FirstName    string
	LastName     string
	Email        string
	Password     string
	About        string
	DocumentText string
}

// Signup registers a new user and indexes their initial content. The
// embeddings are computed before the registry write; if the vector upsert
// then fails, the fresh registry entry is rolled back so no account exists
// without retrievable content.
func (s *AssistantService) Signup(ctx context.Context, input SignupInput) (string, error) {
	if input.FirstName == "" || input.LastName == "" || input.Email == "" ||
		input.Password == "" || input.About == "" {
		return "", ErrInvalidInput
	}

	chunks, embeddings, err := s.embedContent(ctx, input.About, input.DocumentText)
	if err != nil {
		return "", err
	}

	userID := uuid.NewString()
	user := model.User{
		ID:        userID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Password:  input.Password,
	}
	if err := s.registry.Create(user); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	records := make([]vectorstore.Record, len(chunks))
	for i := range chunks {
		records[i] = vectorstore.Record{
			ID:     fmt.Sprintf("%s-%d", userID, i),
			Values: embeddings[i],
			Metadata: vectorstore.Metadata{
				UserID: userID,
				Email:  input.Email,
				Text:   chunks[i],
			},
		}
	}
	if err := s.index.Upsert(ctx, records); err != nil {
		if rbErr := s.registry.Delete(userID); rbErr != nil {
			return "", fmt.Errorf("%w: upsert vectors failed (%v) and rollback failed (%v)", ErrPersistence, err, rbErr)
		}
		return "", fmt.Errorf("%w: upsert vectors failed: %v", ErrExternalService, err)
	}

	return userID, nil
}

type AppendInput struct {
	Email        string
	About        string
	DocumentText string
}

// Append indexes additional content for an existing user. Record ids carry a
// random suffix so repeated appends never collide with each other or with
// the signup records.
func (s *AssistantService) Append(ctx context.Context, input AppendInput) error {
	if input.Email == "" || input.About == "" {
		return ErrInvalidInput
	}

	user := s.registry.FindByEmail(input.Email)
	if user == nil {
		return ErrUserNotFound
	}

	chunks, embeddings, err := s.embedContent(ctx, input.About, input.DocumentText)
	if err != nil {
		return err
	}

	records := make([]vectorstore.Record, len(chunks))
	for i := range chunks {
		records[i] = vectorstore.Record{
			ID:     fmt.Sprintf("%s-extra-%d-%s", user.ID, i, randomSuffix()),
			Values: embeddings[i],
			Metadata: vectorstore.Metadata{
				UserID: user.ID,
				Email:  input.Email,
				Text:   chunks[i],
			},
		}
	}
	if err := s.index.Upsert(ctx, records); err != nil {
		return fmt.Errorf("%w: upsert vectors failed: %v", ErrExternalService, err)
	}
	return nil
}

type AskInput struct {
	Email string
	Query string
}

// Ask answers a question from the user's own indexed content: embed the
// query, take the global top-k matches, keep only this user's, and hand the
// surviving chunk texts to the generation model as context.
func (s *AssistantService) Ask(ctx context.Context, input AskInput) (string, error) {
	query := strings.TrimSpace(input.Query)
	if input.Email == "" || query == "" {
		return "", ErrInvalidInput
	}

	user := s.registry.FindByEmail(input.Email)
	if user == nil {
		return "", ErrUserNotFound
	}

	queryEmb, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("%w: embed query failed: %v", ErrExternalService, err)
	}

	matches, err := s.index.Query(ctx, queryEmb, s.topK)
	if err != nil {
		return "", fmt.Errorf("%w: vector query failed: %v", ErrExternalService, err)
	}

	// The index ranks globally, so other users' records may occupy some of
	// the top-k slots. Context can end up empty even for a known user.
	var relevant []string
	for _, m := range matches {
		if m.Metadata.UserID == user.ID {
			relevant = append(relevant, m.Metadata.Text)
		}
	}
	contextBlock := strings.Join(relevant, "\n")

	messages := []ai.ChatMessage{
		{Role: "system", Content: systemInstruction},
		{Role: "user", Content: fmt.Sprintf("Context: %s\n\nQuestion: %s", contextBlock, query)},
	}
	answer, err := s.generator.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("%w: generate answer failed: %v", ErrExternalService, err)
	}
	return strings.TrimSpace(answer), nil
}

// embedContent composes the raw text, chunks it, and embeds all chunks in
// one batched call.
func (s *AssistantService) embedContent(ctx context.Context, about, documentText string) ([]string, [][]float32, error) {
	text := about + "\n" + documentText

	chunks, err := chunkText(text, s.chunkSize, s.chunkOverlap)
	if err != nil {
		return nil, nil, err
	}
	if len(chunks) == 0 {
		return nil, nil, nil
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: embed chunks failed: %v", ErrExternalService, err)
	}
	if len(embeddings) != len(chunks) {
		return nil, nil, fmt.Errorf("%w: embedding count mismatch", ErrExternalService)
	}
	return chunks, embeddings, nil
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}
