package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/benvon/board-insights/internal/config"
	"github.com/benvon/board-insights/internal/database"
	"github.com/benvon/board-insights/internal/gateway"
	"github.com/benvon/board-insights/internal/logger"
	"github.com/benvon/board-insights/internal/models"
	"github.com/benvon/board-insights/internal/request"
	"github.com/benvon/board-insights/internal/services/ai"
	"github.com/benvon/board-insights/internal/services/session"
	"go.uber.org/zap"
)

// PreviewLength is the number of characters of the new summary echoed back
const PreviewLength = 100

// ErrEmptySummary is returned when the completion produced no summary text
var ErrEmptySummary = errors.New("completion returned an empty summary")

// CompressResponse is the success body of a compression
type CompressResponse struct {
	Message          string `json:"message"`
	NewSummaryLength int    `json:"new_summary_length"`
	Preview          string `json:"preview"`
}

// CompressHandler folds a batch of boards into the caller's compressed history.
// Two concurrent compressions for one user race between read and upsert; the
// last write wins.
type CompressHandler struct {
	cfg      *config.Config
	sessions session.Establisher
	store    database.SummaryStore
	llm      ai.CompletionService
	logger   *zap.Logger
	inv      invocation
}

// NewCompressHandler creates a compression handler. When cfg lacks a required
// secret every invocation is answered with a configuration error and the other
// dependencies may be nil.
func NewCompressHandler(cfg *config.Config, sessions session.Establisher, store database.SummaryStore, llm ai.CompletionService, log *zap.Logger) *CompressHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CompressHandler{
		cfg:      cfg,
		sessions: sessions,
		store:    store,
		llm:      llm,
		logger:   log,
		inv: invocation{
			name:      handlerCompress,
			configErr: cfg.RequireCompression(),
			logger:    log,
		},
	}
}

// Handle processes one raw invocation event
func (h *CompressHandler) Handle(ctx context.Context, event json.RawMessage) (gateway.Response, error) {
	return h.inv.handle(ctx, event, h.serve)
}

func (h *CompressHandler) serve(ctx context.Context, payload json.RawMessage) (any, error) {
	req, err := DecodeMergeRequest(payload)
	if err != nil {
		return nil, err
	}
	return h.Compress(ctx, req)
}

// Compress establishes the caller's session, merges req.Boards into the stored
// history and writes the result back.
func (h *CompressHandler) Compress(ctx context.Context, req *MergeRequest) (*CompressResponse, error) {
	start := time.Now()

	sess, err := h.sessions.Establish(ctx, session.Credentials{
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		return nil, err
	}
	ctx = request.WithUserID(ctx, sess.User.ID)
	identity := sess.Identity()

	log := h.logger.With(
		zap.String("request_id", request.RequestID(ctx)),
		zap.String("user_id", logger.SanitizeUserID(sess.User.ID.String())),
	)
	log.Info("compression_started",
		zap.Int("boards_count", len(req.Boards)),
		zap.Bool("session_refreshed", sess.Refreshed),
	)

	history, err := h.store.Get(ctx, identity)
	if errors.Is(err, database.ErrNotFound) {
		log.Info("compression_first_run")
		history = ""
	} else if err != nil {
		return nil, err
	}

	boardsJSON, err := models.IndentBoards(req.Boards)
	if err != nil {
		return nil, err
	}

	completion, err := h.llm.Complete(ctx, ai.MergePrompt(history, boardsJSON), ai.MergeParams(h.cfg.CompressionTimeout))
	if err != nil {
		return nil, err
	}
	summary := completion.Text
	if strings.TrimSpace(summary) == "" {
		return nil, newError(KindUpstream, ErrEmptySummary.Error(), ErrEmptySummary)
	}

	if err := h.store.Upsert(ctx, identity, summary); err != nil {
		return nil, err
	}

	resp := &CompressResponse{
		Message:          "Compression successful",
		NewSummaryLength: utf8.RuneCountInString(summary),
		Preview:          previewOf(summary),
	}
	log.Info("compression_completed",
		zap.Int("previous_length", utf8.RuneCountInString(history)),
		zap.Int("new_summary_length", resp.NewSummaryLength),
		zap.Int64("total_tokens", completion.Usage.TotalTokens),
		zap.Duration("duration", time.Since(start)),
	)
	return resp, nil
}

// previewOf returns the first PreviewLength characters of s followed by "..."
func previewOf(s string) string {
	n := 0
	for i := range s {
		if n == PreviewLength {
			return s[:i] + "..."
		}
		n++
	}
	return s + "..."
}
