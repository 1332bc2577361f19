package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/jakechorley/ad-distributor/internal/config"
	"github.com/jakechorley/ad-distributor/pkg/clients/gmailclient"
	"github.com/jakechorley/ad-distributor/pkg/clients/sheetsclient"
	"github.com/jakechorley/ad-distributor/pkg/core/services"
	"github.com/jakechorley/ad-distributor/pkg/db"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg          *config.Config
	SheetsClient *sheetsclient.Client
	GmailClient  *gmailclient.Client // nil when notifications are disabled
	Database     db.Database
	Logger       *zap.Logger
	Ctx          context.Context
}

// Mailer returns the gmail client, or nil when there is none
func (app *AppContext) Mailer() services.Mailer {
	if app.GmailClient == nil {
		return nil
	}
	return app.GmailClient
}
