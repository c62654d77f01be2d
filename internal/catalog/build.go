package catalog

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pitabwire/touchline/internal/config"
	"github.com/pitabwire/touchline/internal/football"
	"github.com/pitabwire/touchline/internal/observability"
	"github.com/pitabwire/touchline/internal/source"
	"github.com/pitabwire/touchline/internal/table"
)

// binder builds a Table of one entity type from its configuration.
type binder func(name string, tc config.TableConfig, client *source.Client, s Settings) Table

func bind[T any](schema *table.Schema[T]) binder {
	return func(name string, tc config.TableConfig, client *source.Client, s Settings) Table {
		var src table.Source[T]
		if tc.Mode == config.ModeCollection {
			src = source.NewCollection(client, tc.Path, schema, tc.CacheTTL, s.Locale)
		} else {
			src = source.NewPaged[T](client, tc.Path)
		}
		return NewEntry(name, schema, src, s)
	}
}

// entities maps configured entity names to their schemas.
var entities = map[string]binder{
	"players":       bind(football.PlayerSchema),
	"teams":         bind(football.TeamSchema),
	"clubs":         bind(football.ClubSchema),
	"leagues":       bind(football.LeagueSchema),
	"squad-players": bind(football.SquadPlayerSchema),
}

// Entities returns the entity names a table can be configured with.
func Entities() []string {
	names := make([]string, 0, len(entities))
	for name := range entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build creates one client per configured source and registers every
// configured table. metrics may be nil.
func Build(cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics) (*Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := New()

	clients := make(map[string]*source.Client, len(cfg.Sources))
	for name, sc := range cfg.Sources {
		breaker := source.NewBreaker(
			sc.CircuitBreaker.FailureThreshold,
			sc.CircuitBreaker.SuccessThreshold,
			sc.CircuitBreaker.Timeout,
		)
		breaker.OnStateChange(breakerObserver(name, logger, metrics))

		client, err := source.NewClient(name, sc.BaseURL,
			source.WithTimeout(sc.Timeout),
			source.WithBreaker(breaker),
			source.WithLogger(logger.With(zap.String("source", name))),
		)
		if err != nil {
			return nil, fmt.Errorf("catalog: source %s: %w", name, err)
		}
		clients[name] = client
		c.clients[name] = client
		if metrics != nil {
			metrics.SetSourceBreakerState(name, breaker.State().String())
		}
	}

	title := cases.Title(language.English)
	for name, tc := range cfg.Tables {
		bindTable, ok := entities[tc.Entity]
		if !ok {
			return nil, fmt.Errorf("catalog: table %s: unknown entity %q (known: %s)",
				name, tc.Entity, strings.Join(Entities(), ", "))
		}
		client, ok := clients[tc.Source]
		if !ok {
			return nil, fmt.Errorf("catalog: table %s: unknown source %q", name, tc.Source)
		}
		locale, err := language.Parse(tc.Locale)
		if err != nil {
			return nil, fmt.Errorf("catalog: table %s: locale %q: %w", name, tc.Locale, err)
		}

		s := Settings{
			Title:        tc.Title,
			DataMode:     tc.Mode,
			ServerSort:   tc.SortMode == config.SortServer,
			PageSize:     tc.PageSize,
			Debounce:     tc.Debounce,
			Locale:       locale,
			FetchTimeout: cfg.Sources[tc.Source].Timeout,
			Logger:       logger,
		}
		if s.Title == "" {
			s.Title = title.String(strings.ReplaceAll(name, "-", " "))
		}
		if metrics != nil {
			s.Recorder = metrics.TableRecorder(name)
		}

		if err := c.Register(bindTable(name, tc, client, s)); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func breakerObserver(name string, logger *zap.Logger, metrics *observability.Metrics) func(source.BreakerState) {
	return func(state source.BreakerState) {
		logger.Warn("source breaker state changed",
			zap.String("source", name),
			zap.String("state", state.String()),
		)
		if metrics != nil {
			metrics.SetSourceBreakerState(name, state.String())
		}
	}
}
