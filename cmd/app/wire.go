//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/jeevamithra/internal/bootstrap"
	"github.com/yanqian/jeevamithra/internal/domain/advisor"
	"github.com/yanqian/jeevamithra/internal/domain/auth"
	"github.com/yanqian/jeevamithra/internal/domain/chat"
	"github.com/yanqian/jeevamithra/internal/domain/healthtopic"
	"github.com/yanqian/jeevamithra/internal/domain/news"
	"github.com/yanqian/jeevamithra/internal/domain/prompt"
	"github.com/yanqian/jeevamithra/internal/domain/quiz"
	"github.com/yanqian/jeevamithra/internal/domain/rentals"
	"github.com/yanqian/jeevamithra/internal/domain/speech"
	"github.com/yanqian/jeevamithra/internal/domain/weather"
	"github.com/yanqian/jeevamithra/internal/infra/config"
	httpiface "github.com/yanqian/jeevamithra/internal/interface/http"
	"github.com/yanqian/jeevamithra/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		healthtopic.Default,
		prompt.Default,
		provideTokenCounter,
		provideGenerator,
		providePostgresPool,
		provideValkeyClient,
		provideKVStore,
		provideHistoryStore,
		provideNewsStore,
		provideAudioCache,
		provideImageStore,
		provideSpeechClient,
		provideSynthesizer,
		provideRecognizer,
		provideAuthRepository,
		provideRentalRepository,
		provideChatConfig,
		provideWeatherConfig,
		provideNewsConfig,
		provideQuizConfig,
		provideAdvisorConfig,
		provideSpeechConfig,
		provideAuthConfig,
		provideCleanup,
		chat.NewService,
		weather.NewService,
		news.NewService,
		news.NewRefresher,
		quiz.NewService,
		advisor.NewService,
		speech.NewService,
		auth.NewService,
		rentals.NewService,
		wire.Struct(new(httpiface.Services), "*"),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
