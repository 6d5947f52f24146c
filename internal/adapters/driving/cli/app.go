package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/meetsync/internal/adapters/driven/auth"
	configfile "github.com/custodia-labs/meetsync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/meetsync/internal/adapters/driven/envfile"
	"github.com/custodia-labs/meetsync/internal/adapters/driven/llm/gemini"
	"github.com/custodia-labs/meetsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/meetsync/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/meetsync/internal/adapters/driven/workflow"
	"github.com/custodia-labs/meetsync/internal/connectors/google/calendar"
	"github.com/custodia-labs/meetsync/internal/core/domain"
	"github.com/custodia-labs/meetsync/internal/core/ports/driven"
	"github.com/custodia-labs/meetsync/internal/core/services"
	"github.com/custodia-labs/meetsync/internal/logger"
)

// Extra credential keys read from the env file (the rotating token keys
// live in ports/driven).
const (
	credClientID       = "GOOGLE_CLIENT_ID"
	credClientSecret   = "GOOGLE_CLIENT_SECRET"
	credServiceAcctKey = "GOOGLE_SERVICE_ACCOUNT_KEY_PATH"
	credGeminiAPIKey   = "GEMINI_API_KEY"
	credN8NAPIKey      = "N8N_API_KEY"
	credDatabaseURL    = "DATABASE_URL"
)

// app bundles the wired services for one command invocation.
type app struct {
	config      *configfile.ConfigStore
	credentials *envfile.Store

	eventStore driven.EventStore
	schedStore driven.SchedulerStore
	tokens     driven.TokenProvider

	sync      *services.SyncService
	meetings  *services.MeetingService
	proposals *services.ProposalService
	scheduler *services.Scheduler

	closers []func() error
}

// credential reads key from the env file, falling back to the process
// environment so container deployments work without a file.
func (a *app) credential(key string) string {
	if v := a.credentials.Get(key); v != "" {
		return v
	}
	return os.Getenv(key)
}

// newApp wires config, stores, the token provider and the core services.
// withAuth controls whether a token provider is required: read-only
// commands (serve without sync trigger is still possible) degrade
// gracefully when credentials are missing.
func newApp(withAuth bool) (*app, error) {
	cfg, err := configfile.NewConfigStore(flagConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	a := &app{
		config:      cfg,
		credentials: envfile.NewStore(credentialsPath(cfg)),
	}

	if err := a.initStores(); err != nil {
		return nil, err
	}
	if err := a.initTokenProvider(); err != nil {
		if withAuth {
			return nil, err
		}
		logger.Warn("Calendar authentication unavailable: %v", err)
	}
	a.initServices()

	return a, nil
}

// credentialsPath places the env file next to the TOML config.
func credentialsPath(cfg *configfile.ConfigStore) string {
	return filepath.Join(filepath.Dir(cfg.Path()), "credentials.env")
}

func (a *app) initStores() error {
	connString := a.config.GetString(configfile.KeyDatabaseURL)
	if connString == "" {
		connString = a.credential(credDatabaseURL)
	}

	if connString == "" {
		logger.Warn("No database configured, using in-memory store (events are lost on exit)")
		a.eventStore = memory.NewEventStore()
		a.schedStore = memory.NewSchedulerStore()
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	store, err := postgres.NewStore(ctx, connString)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	a.eventStore = store
	a.schedStore = store
	a.closers = append(a.closers, store.Close)
	return nil
}

func (a *app) initTokenProvider() error {
	keyPath := a.credential(credServiceAcctKey)

	provider, err := auth.NewTokenProvider(auth.Options{
		ServiceAccountKeyPath: keyPath,
		ClientID:              a.credential(credClientID),
		ClientSecret:          a.credential(credClientSecret),
		Credentials:           a.credentials,
	})
	if err != nil {
		return err
	}
	a.tokens = provider
	return nil
}

func (a *app) initServices() {
	classifier := services.NewClassifier(services.ClassifierConfig{
		InternalDomains:          a.config.GetStringSlice(configfile.KeyInternalDomains),
		MinDurationMinutes:       a.config.GetInt(configfile.KeyMinDurationMins),
		ImportantDurationMinutes: a.config.GetInt(configfile.KeyImportantDurationMin),
	})

	fetcherConfig := calendar.DefaultConfig()
	if id := a.config.GetString(configfile.KeyCalendarID); id != "" {
		fetcherConfig.CalendarID = id
	}
	if max := a.config.GetInt(configfile.KeyCalendarMaxResults); max > 0 {
		fetcherConfig.MaxResults = int64(max)
	}
	fetcher := calendar.NewFetcher(a.tokens, fetcherConfig)

	a.sync = services.NewSyncService(
		a.tokens,
		fetcher,
		a.eventStore,
		classifier,
		a.config.GetInt(configfile.KeyCalendarWindowDays),
	)
	a.meetings = services.NewMeetingService(a.eventStore)
	a.proposals = services.NewProposalService(a.eventStore, a.newLLM(), a.newWorkflow())

	schedConfig := domain.DefaultSchedulerConfig()
	if mins := a.config.GetInt(configfile.KeySyncIntervalMins); mins > 0 {
		for id, tc := range schedConfig.TaskConfigs {
			tc.Interval = time.Duration(mins) * time.Minute
			schedConfig.TaskConfigs[id] = tc
		}
	}
	a.scheduler = services.NewScheduler(schedConfig, a.schedStore, a.sync)
}

// newLLM returns the Gemini adapter, or nil when no API key is set
// (preview mode then responds with an error).
func (a *app) newLLM() driven.LLMService {
	apiKey := a.credential(credGeminiAPIKey)
	if apiKey == "" {
		return nil
	}
	svc, err := gemini.NewLLMService(gemini.LLMConfig{
		APIKey: apiKey,
		Model:  a.config.GetString(configfile.KeyGeminiModel),
	})
	if err != nil {
		logger.Warn("Gemini unavailable: %v", err)
		return nil
	}
	return svc
}

// newWorkflow returns the n8n client, or nil when no base URL is set
// (delegated proposal requests then respond with an error).
func (a *app) newWorkflow() driven.WorkflowClient {
	baseURL := a.config.GetString(configfile.KeyN8NBaseURL)
	if baseURL == "" {
		return nil
	}
	client, err := workflow.NewN8NClient(workflow.Config{
		BaseURL: baseURL,
		APIKey:  a.credential(credN8NAPIKey),
	})
	if err != nil {
		logger.Warn("n8n unavailable: %v", err)
		return nil
	}
	return client
}

// Close releases held resources, last-opened first.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("Closing resource failed: %v", err)
		}
	}
}
