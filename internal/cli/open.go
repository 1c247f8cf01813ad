package cli

import (
	"context"
	"errors"

	"replydesk/internal/mutate"
	"replydesk/internal/store"
)

func openStore(ctx context.Context, app *App) (*store.SQLStore, error) {
	var (
		st  *store.SQLStore
		err error
	)
	switch app.cfg.Store.Driver {
	case "postgres":
		st, err = store.OpenPostgres(ctx, app.cfg.Store.DSN, app.logger)
	default:
		st, err = store.OpenSQLite(ctx, app.cfg.Store.Path, app.logger)
	}
	if err != nil {
		return nil, err
	}
	return st.WithActor(app.ActorID), nil
}

func openOverrides(ctx context.Context, app *App) (store.Overrides, error) {
	switch app.cfg.Overrides.Backend {
	case "redis":
		ro, err := store.NewRedisOverrides(ctx, store.RedisOptions{
			Addr:     app.cfg.Redis.Addr,
			Password: app.cfg.Redis.Password,
			DB:       app.cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		return ro, nil
	case "memory":
		return store.NewMemoryOverrides(), nil
	default:
		return store.NewFileOverrides(app.cfg.Overrides.Path), nil
	}
}

// session is an open record store, override store and coordinator for one command.
type session struct {
	store     *store.SQLStore
	overrides store.Overrides
	coord     *mutate.Coordinator
}

func openSession(ctx context.Context, app *App) (*session, error) {
	st, err := openStore(ctx, app)
	if err != nil {
		return nil, err
	}
	ov, err := openOverrides(ctx, app)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	coord, err := mutate.New(ctx, mutate.Options{
		Domain:    app.domain(),
		Adapter:   st,
		Source:    st,
		Overrides: ov,
		Logger:    app.logger,
	})
	if err != nil {
		_ = ov.Close()
		_ = st.Close()
		return nil, err
	}
	return &session{store: st, overrides: ov, coord: coord}, nil
}

// Close drains pending commits before closing the stores.
func (s *session) Close() error {
	return errors.Join(s.coord.Close(), s.overrides.Close(), s.store.Close())
}
