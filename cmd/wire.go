package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/blessandsoul/project-x-sub001/internal/offer"
	"github.com/blessandsoul/project-x-sub001/internal/quote"
	"github.com/blessandsoul/project-x-sub001/internal/rates"
)

// engineEnv holds the initialized store, rates source, calculator, and offer
// service needed by the serve/sweep/quote commands.
type engineEnv struct {
	Store  offer.Store
	Source rates.Source
	Calc   *quote.Calculator
	Offers *offer.Service
}

// Close releases resources held by the environment.
func (e *engineEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initStore builds the offer store from config.
func initStore(ctx context.Context) (offer.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return offer.NewPostgres(ctx, cfg.Store.DatabaseURL, &offer.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	case "sqlite":
		return offer.NewSQLite(cfg.Store.SQLitePath)
	default:
		return nil, eris.Errorf("unknown store driver %q (want postgres or sqlite)", cfg.Store.Driver)
	}
}

// initRatesSource builds the vehicle-facts and provider-rates source. The
// postgres source shares the offer store's pool, so it requires the postgres
// store driver.
func initRatesSource(st offer.Store) (rates.Source, error) {
	switch cfg.Rates.Source {
	case "file":
		return rates.LoadFile(cfg.Rates.File)
	case "postgres":
		pg, ok := st.(*offer.PostgresStore)
		if !ok {
			return nil, eris.New("rates source postgres requires store driver postgres; use rates.source=file with sqlite")
		}
		return rates.NewPostgresSource(pg.Pool()), nil
	default:
		return nil, eris.Errorf("unknown rates source %q (want postgres or file)", cfg.Rates.Source)
	}
}

// initEngine sets up the store, rates source, calculator, and offer service.
// Callers should defer env.Close().
func initEngine(ctx context.Context) (*engineEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	source, err := initRatesSource(st)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	calc := quote.NewCalculator(source, quote.Config{
		ProviderTimeout: time.Duration(cfg.Quotes.ProviderTimeoutSecs) * time.Second,
		MaxParallel:     cfg.Quotes.MaxParallel,
		IndicativeUSD:   cfg.Quotes.IndicativeUSD,
	})

	svc := offer.NewService(st, time.Duration(cfg.Offers.ValidityDays)*24*time.Hour)

	return &engineEnv{Store: st, Source: source, Calc: calc, Offers: svc}, nil
}
