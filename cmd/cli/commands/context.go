package commands

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/lead-allocator/internal/config"
	"github.com/jakechorley/lead-allocator/pkg/clients/gmailclient"
	"github.com/jakechorley/lead-allocator/pkg/clients/sheetsclient"
	"github.com/jakechorley/lead-allocator/pkg/core/services"
	"github.com/jakechorley/lead-allocator/pkg/core/session"
	"github.com/jakechorley/lead-allocator/pkg/db"
	"github.com/jakechorley/lead-allocator/pkg/utils"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg      *config.Config
	Env      string
	Database db.Database
	Cache    *services.SnapshotCache
	Gate     *session.Gate
	Logger   *zap.Logger
	Ctx      context.Context

	// Now is the clock used to resolve recurring windows
	Now func() time.Time

	tokens *utils.TokenFlow
	sheets *sheetsclient.Client
	gmail  *gmailclient.Client
}

// tokenFlow loads the OAuth client on first use so commands that only touch the
// database never need Google credentials
func (a *AppContext) tokenFlow() (*utils.TokenFlow, error) {
	if a.tokens != nil {
		return a.tokens, nil
	}

	oauthCfg, err := config.LoadOAuthClient(a.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to load OAuth client config: %w", err)
	}

	googleCfg, err := utils.GetOAuthConfig(oauthCfg)
	if err != nil {
		return nil, err
	}

	a.tokens, err = utils.NewTokenFlow(googleCfg, a.Env, a.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create token flow: %w", err)
	}
	return a.tokens, nil
}

// Sheets returns the sheets client, authorizing on first use
func (a *AppContext) Sheets() (*sheetsclient.Client, error) {
	if a.sheets != nil {
		return a.sheets, nil
	}

	flow, err := a.tokenFlow()
	if err != nil {
		return nil, err
	}
	token, err := flow.Token(a.Ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get OAuth token: %w", err)
	}

	a.Logger.Debug("Initializing sheets client")
	a.sheets, err = sheetsclient.NewClient(a.Ctx, flow.Config.Client(a.Ctx, token))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	return a.sheets, nil
}

// Gmail returns the gmail client, sharing the sheets token
func (a *AppContext) Gmail() (*gmailclient.Client, error) {
	if a.gmail != nil {
		return a.gmail, nil
	}

	flow, err := a.tokenFlow()
	if err != nil {
		return nil, err
	}
	token, err := flow.Token(a.Ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get OAuth token: %w", err)
	}

	a.Logger.Debug("Initializing gmail client")
	a.gmail, err = gmailclient.NewClient(a.Ctx, flow.Config.Client(a.Ctx, token), a.Cfg.Report.GmailUserID, a.Cfg.Report.GmailSender)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail client: %w", err)
	}
	return a.gmail, nil
}

// Window resolves the snapshot window, letting explicit dates override the config
func (a *AppContext) Window(start, end string) (time.Time, time.Time, error) {
	w := a.Cfg.Window
	if start != "" || end != "" {
		w = config.Window{Start: start, End: end}
		if w.End == "" {
			w.End = w.Start
		}
		if err := w.Validate(); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	return w.Resolve(now())
}

func (a *AppContext) overlayTabs() sheetsclient.OverlayTabs {
	return sheetsclient.OverlayTabs{
		Manager:  a.Cfg.Overlay.ManagerTab,
		Category: a.Cfg.Overlay.CategoryTab,
		Level:    a.Cfg.Overlay.LevelTab,
	}
}
