package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"rag-assistant-be/internal/dto"
	"rag-assistant-be/internal/repository/contract"
	"rag-assistant-be/internal/repository/memory"
	"rag-assistant-be/internal/repository/specification"
	"rag-assistant-be/internal/repository/unitofwork"
	"rag-assistant-be/pkg/decision"
	"rag-assistant-be/pkg/embedding"
	"rag-assistant-be/pkg/llm"
	"rag-assistant-be/pkg/llm/gateway"
	"rag-assistant-be/pkg/mode"
	"rag-assistant-be/pkg/store"

	"github.com/google/uuid"
)

// historyWindow caps how many prior turns are replayed to the model.
const historyWindow = 10

const ragSystemPrompt = `You are a product support assistant. Answer the question using ONLY the context below.
If the context does not contain the answer, say so instead of guessing.

Context:
%s`

const generalSystemPrompt = `You are a helpful product support assistant. Answer concisely.`

type IChatService interface {
	SendChat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
	Route(ctx context.Context, req *dto.RouteRequest) (*decision.Result, error)
}

type chatService struct {
	uowFactory        unitofwork.RepositoryFactory
	engine            *decision.Engine
	llmGateway        *gateway.Gateway
	embeddingProvider embedding.Provider
	sessionRepo       *memory.SessionRepository
	defaultMode       string
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	engine *decision.Engine,
	llmGateway *gateway.Gateway,
	embeddingProvider embedding.Provider,
	sessionRepo *memory.SessionRepository,
	defaultMode string,
) IChatService {
	return &chatService{
		uowFactory:        uowFactory,
		engine:            engine,
		llmGateway:        llmGateway,
		embeddingProvider: embeddingProvider,
		sessionRepo:       sessionRepo,
		defaultMode:       defaultMode,
	}
}

func (cs *chatService) SendChat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	session := cs.loadSession(req.SessionId)

	// 1. Route the query through the decision tree.
	dc := decision.NewContext(req.Message).WithSubject(req.Subject)
	verdict, err := cs.engine.Execute(ctx, decision.MainTreeName, dc)
	if err != nil {
		return nil, err
	}

	intent, useRAG := readVerdict(verdict)

	// 2. Resolve the performance mode.
	modeName := req.Mode
	if modeName == "" {
		modeName = cs.defaultMode
	}
	preset := mode.Resolve(modeName)

	res := &dto.ChatResponse{
		SessionId: session.ID,
		Intent:    intent,
		Mode:      preset.Name,
		UsedRAG:   useRAG,
	}
	if verdict != nil {
		res.RoutePath = verdict.Path
		res.Impossible = verdict.Impossible
	}

	// 3. The impossible verdict short-circuits generation: there is nothing
	// to retrieve and guessing would be worse than saying so.
	if res.Impossible {
		res.Answer = verdictSuggestion(verdict)
		cs.saveTurn(session, req.Message, res.Answer, intent, preset.Name)
		return res, nil
	}

	// 4. Generate.
	var answer string
	if useRAG {
		answer, err = cs.answerWithRetrieval(ctx, req.Message, preset, session, res)
	} else {
		answer, err = cs.answerDirect(ctx, req.Message, session)
	}
	if err != nil {
		return nil, err
	}

	res.Answer = answer
	cs.saveTurn(session, req.Message, answer, intent, preset.Name)
	return res, nil
}

// Route exposes the bare routing verdict without generation.
func (cs *chatService) Route(ctx context.Context, req *dto.RouteRequest) (*decision.Result, error) {
	dc := decision.NewContext(req.Query).WithSubject(req.Subject)
	return cs.engine.Execute(ctx, decision.MainTreeName, dc)
}

func (cs *chatService) answerWithRetrieval(ctx context.Context, query string, preset mode.Preset, session *store.Session, res *dto.ChatResponse) (string, error) {
	emb, err := cs.embeddingProvider.Generate(ctx, query, embedding.TaskQuery)
	if err != nil {
		return "", err
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.DocumentChunkRepository().SearchSimilarWithScore(
		ctx, emb.Values, preset.RetrievalCount, preset.SimilarityThreshold,
	)
	if err != nil {
		return "", err
	}

	if len(scored) == 0 {
		// The router saw context but retrieval came back empty (index
		// changed between the check and now). Fall back to direct answering.
		log.Printf("[WARN] Retrieval returned no chunks for query despite routing verdict")
		return cs.answerDirect(ctx, query, session)
	}

	if len(scored) > preset.FinalChunkCount {
		scored = scored[:preset.FinalChunkCount]
	}

	titles, err := cs.documentTitles(ctx, uow, scored)
	if err != nil {
		return "", err
	}

	var contextBlock strings.Builder
	for i, sc := range scored {
		title := titles[sc.Chunk.DocumentId]
		fmt.Fprintf(&contextBlock, "[%d] %s (chunk %d)\n%s\n\n", i+1, title, sc.Chunk.ChunkIndex, sc.Chunk.Content)
		res.Citations = append(res.Citations, dto.ChatCitation{
			DocumentTitle: title,
			ChunkIndex:    sc.Chunk.ChunkIndex,
			Similarity:    sc.Similarity,
		})
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: fmt.Sprintf(ragSystemPrompt, contextBlock.String())},
	}
	messages = append(messages, recentHistory(session)...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: query})

	return cs.llmGateway.ChatCompletion(ctx, messages)
}

func (cs *chatService) answerDirect(ctx context.Context, query string, session *store.Session) (string, error) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: generalSystemPrompt},
	}
	messages = append(messages, recentHistory(session)...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: query})

	return cs.llmGateway.ChatCompletion(ctx, messages)
}

func (cs *chatService) documentTitles(ctx context.Context, uow unitofwork.UnitOfWork, scored []*contract.ScoredDocumentChunk) (map[uuid.UUID]string, error) {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, sc := range scored {
		if !seen[sc.Chunk.DocumentId] {
			seen[sc.Chunk.DocumentId] = true
			ids = append(ids, sc.Chunk.DocumentId)
		}
	}

	docs, err := uow.DocumentRepository().FindAll(ctx, specification.ByIDs{IDs: ids})
	if err != nil {
		return nil, err
	}

	titles := make(map[uuid.UUID]string, len(docs))
	for _, d := range docs {
		titles[d.Id] = d.Title
	}
	return titles, nil
}

func (cs *chatService) loadSession(sessionId string) *store.Session {
	if sessionId != "" {
		if s, found := cs.sessionRepo.Get(sessionId); found {
			return s
		}
	}
	id := sessionId
	if id == "" {
		id = uuid.NewString()
	}
	return &store.Session{ID: id}
}

func (cs *chatService) saveTurn(session *store.Session, question, answer, intent, modeName string) {
	session.Append(llm.RoleUser, question)
	session.Append(llm.RoleAssistant, answer)
	session.LastIntent = intent
	session.LastMode = modeName
	cs.sessionRepo.Save(session)
}

func recentHistory(session *store.Session) []llm.Message {
	h := session.History
	if len(h) > historyWindow {
		h = h[len(h)-historyWindow:]
	}
	return h
}

// readVerdict pulls intent and the retrieval switch out of a verdict. A
// nil verdict (dead-end traversal) behaves like the general path.
func readVerdict(verdict *decision.Result) (intent string, useRAG bool) {
	intent = decision.IntentGeneral
	if verdict == nil || verdict.Result == nil {
		return intent, false
	}
	if v, ok := verdict.Result["intent"].(string); ok {
		intent = v
	}
	if v, ok := verdict.Result["useRAG"].(bool); ok {
		useRAG = v
	}
	return intent, useRAG
}

func verdictSuggestion(verdict *decision.Result) string {
	if verdict != nil && verdict.Result != nil {
		if v, ok := verdict.Result["suggestion"].(string); ok && v != "" {
			return v
		}
	}
	return "I could not find any indexed knowledge for this question."
}
