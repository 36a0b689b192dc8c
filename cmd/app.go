package cmd

import (
	"context"
	"fmt"

	"github.com/longkey1/chatpad/internal/chatpad/chat"
	"github.com/longkey1/chatpad/internal/chatpad/config"
	"github.com/longkey1/chatpad/internal/chatpad/conversation"
	"github.com/longkey1/chatpad/internal/chatpad/image"
	"github.com/longkey1/chatpad/internal/chatpad/kv"
	"github.com/longkey1/chatpad/internal/imagegen"
	"github.com/longkey1/chatpad/internal/llm"
	"go.uber.org/zap"
)

// loadConversations opens the conversation store under the configured data directory.
func loadConversations(ctx context.Context, cfg *config.Config) (*conversation.Store, error) {
	store, err := conversation.Open(ctx, kv.NewDir(cfg.ConversationDir()), logger)
	if err != nil {
		return nil, fmt.Errorf("opening conversations: %w", err)
	}
	return store, nil
}

// newChatService wires the conversation store to a completion client per model.
func newChatService(cfg *config.Config, store *conversation.Store, stream bool) *chat.Service {
	factory := func(ctx context.Context, model string) (llm.Completer, error) {
		c := cfg
		if model != "" {
			c = cfg.WithModel(model)
		}
		return llm.New(ctx, c, logger)
	}
	return chat.NewService(store, factory, logger, chat.WithStreaming(stream))
}

// openImages opens the image store. The returned close function releases the database.
func openImages(ctx context.Context, cfg *config.Config) (*image.Store, func(), error) {
	repo, err := image.NewSQLiteRepository(cfg.ImageDBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("opening image database: %w", err)
	}

	client := imagegen.NewClient(cfg, imagegen.WithLogger(logger))
	store, err := image.Open(ctx, repo, client, logger)
	if err != nil {
		repo.Close()
		return nil, nil, err
	}

	return store, func() {
		if err := repo.Close(); err != nil {
			logger.Warn("failed to close image database", zap.Error(err))
		}
	}, nil
}
