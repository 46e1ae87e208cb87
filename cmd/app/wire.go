//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/smart-faq/internal/bootstrap"
	"github.com/yanqian/smart-faq/internal/domain/faq"
	"github.com/yanqian/smart-faq/internal/infra/config"
	httpiface "github.com/yanqian/smart-faq/internal/interface/http"
	"github.com/yanqian/smart-faq/pkg/logger"
	"github.com/yanqian/smart-faq/pkg/metrics"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		metrics.NewCounters,
		provideFAQConfig,
		provideEntryRepository,
		provideAnswerCache,
		faq.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
