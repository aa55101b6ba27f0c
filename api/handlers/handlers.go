package handlers

import (
	"github.com/finproc/statement-processor/internal/service"
	"github.com/finproc/statement-processor/pkg/logger"
)

type Handlers struct {
	Statement *StatementHandler
}

func NewHandlers(statementService *service.StatementService, maxUploadBytes int64, log logger.Logger) *Handlers {
	return &Handlers{
		Statement: NewStatementHandler(statementService, maxUploadBytes, log),
	}
}
