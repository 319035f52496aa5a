//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/evelynko/skinsight/internal/bootstrap"
	"github.com/evelynko/skinsight/internal/domain/auth"
	"github.com/evelynko/skinsight/internal/domain/scan"
	"github.com/evelynko/skinsight/internal/infra/aiskin"
	"github.com/evelynko/skinsight/internal/infra/config"
	"github.com/evelynko/skinsight/internal/infra/llm/chatgpt"
	httpiface "github.com/evelynko/skinsight/internal/interface/http"
	"github.com/evelynko/skinsight/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideScanConfig,
		provideAuthConfig,
		provideClassifierConfig,
		provideChatGPTClient,
		provideFrameDecoder,
		provideEmbedder,
		providePostgresPool,
		provideAuthRepository,
		provideProfileRepository,
		provideShelfRepository,
		provideAnalysisStore,
		provideObjectStorage,
		aiskin.NewClassifier,
		scan.NewService,
		auth.NewService,
		wire.Bind(new(aiskin.ChatClient), new(*chatgpt.Client)),
		wire.Bind(new(scan.Classifier), new(*aiskin.Classifier)),
		wire.Bind(new(auth.ProfileSeeder), new(*scan.Service)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
