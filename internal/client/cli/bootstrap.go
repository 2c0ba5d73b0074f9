package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/eden/internal/client/config"
	"github.com/dmitrijs2005/eden/internal/client/localauth"
	"github.com/dmitrijs2005/eden/internal/client/metrics"
	"github.com/dmitrijs2005/eden/internal/client/remote/avatars"
	"github.com/dmitrijs2005/eden/internal/client/remote/identity"
	"github.com/dmitrijs2005/eden/internal/client/remote/profiles"
	"github.com/dmitrijs2005/eden/internal/client/repositories/kv"
	"github.com/dmitrijs2005/eden/internal/client/services"
	"github.com/dmitrijs2005/eden/internal/logging"
)

// NewAppFromConfig wires the device store, the remote adapters and the
// orchestrator from c and returns an App on stdin/stdout. Remote adapters
// that fail to initialize are logged and left out; the App then works from
// the device store alone.
func NewAppFromConfig(ctx context.Context, c *config.Config) (*App, error) {
	log, closeLog, err := newLogger(c)
	if err != nil {
		return nil, err
	}
	closers := []func() error{closeLog}
	fail := func(err error) (*App, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
		return nil, err
	}

	repo, closeRepo, err := openDeviceStore(ctx, c, log)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, closeRepo)

	local := localauth.NewStore(repo, localauth.WithLogger(log.With("component", "localauth")))

	holder := &identity.SessionHolder{}
	r, remoteClosers := buildRemote(ctx, c, log, holder)
	closers = append(closers, remoteClosers...)

	var rec metrics.Recorder = metrics.Nop()
	if c.MetricsAddr != "" {
		p := metrics.NewPrometheus()
		rec = p
		go func() {
			if err := p.Serve(ctx, c.MetricsAddr); err != nil {
				log.Error(ctx, "metrics server", "addr", c.MetricsAddr, "error", err)
			}
		}()
	}

	svc := services.NewAuthService(local, r,
		services.WithLogger(log.With("component", "auth")),
		services.WithMetrics(rec),
		services.WithSessionHolder(holder),
		services.WithRemoteTimeout(c.RemoteTimeout),
	)

	app := NewApp(svc, log, os.Stdin, os.Stdout)
	app.closers = closers
	return app, nil
}

func newLogger(c *config.Config) (logging.Logger, func() error, error) {
	if c.LogBackend == config.LogZap {
		z, err := logging.NewZap(c.LogFormat, c.LogLevel)
		if err != nil {
			return nil, nil, fmt.Errorf("zap logger: %w", err)
		}
		// Sync on a console fd reports EINVAL on some platforms.
		return z, func() error { _ = z.Sync(); return nil }, nil
	}
	return logging.NewSlog(os.Stderr, c.LogFormat, c.LogLevel), func() error { return nil }, nil
}

func openDeviceStore(ctx context.Context, c *config.Config, log logging.Logger) (kv.Repository, func() error, error) {
	switch c.StorageDriver {
	case config.StorageBadger:
		db, err := kv.OpenBadger(kv.BadgerConfig{
			Path:       c.DBPath,
			SyncWrites: true,
			Logger:     log.With("component", "badger"),
		})
		if err != nil {
			return nil, nil, err
		}
		return kv.NewBadgerRepository(db), db.Close, nil

	case config.StorageMemory:
		return kv.NewMemoryRepository(), func() error { return nil }, nil

	default:
		db, err := kv.OpenSQLite(ctx, c.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("error initializing database: %w", err)
		}
		return kv.NewSQLiteRepository(db), db.Close, nil
	}
}

func buildRemote(ctx context.Context, c *config.Config, log logging.Logger, holder *identity.SessionHolder) (services.Remote, []func() error) {
	var (
		r       services.Remote
		closers []func() error
	)

	if !c.RemoteConfigured() {
		log.Info(ctx, "remote services disabled", "offline", c.Offline, "missing", c.MissingFirebaseKeys())
		return r, nil
	}

	backend, err := identity.NewFirebaseBackend(ctx, identity.FirebaseConfig{
		APIKey:   c.Firebase.APIKey,
		Endpoint: c.Firebase.IdentityEndpoint,
	})
	if err != nil {
		log.Warn(ctx, "identity provider unavailable", "error", err)
		return r, nil
	}
	r.Identity = identity.NewClient(backend, log)

	docs, closeDocs, err := openDocumentStore(ctx, c, holder)
	if err != nil {
		log.Warn(ctx, "profile store unavailable", "driver", c.ProfileDriver, "error", err)
	} else {
		r.Profiles = profiles.NewStore(docs)
		closers = append(closers, closeDocs)
	}

	if c.S3.Bucket != "" {
		st, err := avatars.New(ctx, avatars.Config{
			Region:        c.S3.Region,
			Endpoint:      c.S3.Endpoint,
			AccessKey:     c.S3.AccessKey,
			SecretKey:     c.S3.SecretKey,
			Bucket:        c.S3.Bucket,
			PublicBaseURL: c.S3.PublicBaseURL,
		}, nil)
		if err != nil {
			log.Warn(ctx, "avatar storage unavailable", "error", err)
		} else {
			r.Avatars = st
		}
	}
	return r, closers
}

func openDocumentStore(ctx context.Context, c *config.Config, holder *identity.SessionHolder) (profiles.DocumentStore, func() error, error) {
	if c.ProfileDriver == config.ProfilesPostgres {
		db, err := profiles.OpenPostgres(ctx, c.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := profiles.MigratePostgres(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return profiles.NewPostgresStore(db), db.Close, nil
	}

	fs, err := profiles.NewFirestoreStore(ctx, profiles.FirestoreConfig{
		ProjectID: c.Firebase.ProjectID,
		APIKey:    c.Firebase.APIKey,
		Endpoint:  c.Firebase.FirestoreEndpoint,
	}, holder)
	if err != nil {
		return nil, nil, err
	}
	return fs, func() error { return nil }, nil
}
