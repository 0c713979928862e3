// Package app opens the backends selected by configuration and assembles
// the services shared by the api, worker and dayflowctl binaries.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"dayflow/internal/attendance"
	"dayflow/internal/cloudinary"
	"dayflow/internal/config"
	"dayflow/internal/httpmiddleware"
	"dayflow/internal/leave"
	"dayflow/internal/payroll"
	"dayflow/internal/presence"
	"dayflow/internal/profile"
	"dayflow/internal/queue"
	"dayflow/internal/store"
)

// Store backends.
const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Stores holds one store per domain plus the connections behind them.
type Stores struct {
	Backend    string
	Attendance attendance.Store
	Leaves     leave.Store
	Payroll    payroll.Store
	Profiles   profile.Store

	mongo *store.Mongo
	db    *store.DB
}

// OpenStores connects to cfg.StoreBackend and builds the domain stores.
func OpenStores(ctx context.Context, cfg config.App) (*Stores, error) {
	s := &Stores{Backend: cfg.StoreBackend}
	switch cfg.StoreBackend {
	case BackendMongo:
		m, err := store.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			_ = m.Close(context.Background())
			return nil, fmt.Errorf("app: connect mongo: %w", err)
		}
		s.mongo = m
		s.Attendance = attendance.NewMongoStore(m.Database)
		s.Leaves = leave.NewMongoStore(m.Database)
		s.Payroll = payroll.NewMongoStore(m.Database)
		s.Profiles = profile.NewMongoStore(m.Database)
	case BackendPostgres:
		db, err := store.NewDB(ctx, cfg.DatabaseURL)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("app: connect postgres: %w", err)
		}
		s.db = db
		s.Attendance = attendance.NewPostgresStore(db.Client)
		s.Leaves = leave.NewPostgresStore(db.Client)
		s.Payroll = payroll.NewPostgresStore(db.Client)
		s.Profiles = profile.NewPostgresStore(db.Client)
	case BackendMemory:
		s.Attendance = attendance.NewMemoryStore()
		s.Leaves = leave.NewMemoryStore()
		s.Payroll = payroll.NewMemoryStore()
		s.Profiles = profile.NewMemoryStore()
	default:
		return nil, fmt.Errorf("app: unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	return s, nil
}

// EnsureIndexes creates unique indexes or tables for every store.
func (s *Stores) EnsureIndexes(ctx context.Context) error {
	for name, st := range map[string]interface {
		EnsureIndexes(context.Context) error
	}{
		"attendance": s.Attendance,
		"leaves":     s.Leaves,
		"payroll":    s.Payroll,
		"profiles":   s.Profiles,
	} {
		if err := st.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("app: ensure %s indexes: %w", name, err)
		}
	}
	return nil
}

// Healthy reports whether the backing database answers.
func (s *Stores) Healthy(ctx context.Context) bool {
	switch s.Backend {
	case BackendMongo:
		return s.mongo.Healthy(ctx)
	case BackendPostgres:
		return s.db.Healthy(ctx)
	default:
		return true
	}
}

// Close releases the database connections.
func (s *Stores) Close(ctx context.Context) {
	if err := s.mongo.Close(ctx); err != nil {
		log.Printf("mongo close: %v", err)
	}
	if err := s.db.Close(); err != nil {
		log.Printf("postgres close: %v", err)
	}
}

// Services are the domain services over one set of stores.
type Services struct {
	Attendance *attendance.Service
	Leaves     *leave.Service
	Payroll    *payroll.Service
	Profiles   *profile.Service
}

// NewServices wires services to s. uploader may be nil.
func NewServices(s *Stores, loc *time.Location, uploader profile.Uploader) Services {
	att := attendance.NewService(s.Attendance, attendance.WithLocation(loc))
	return Services{
		Attendance: att,
		Leaves:     leave.NewService(s.Leaves),
		Payroll:    payroll.NewService(s.Payroll, att),
		Profiles:   profile.NewService(s.Profiles, uploader),
	}
}

// NewQueue returns the configured event queue. A nil redis forces the
// in-memory queue.
func NewQueue(cfg config.App, r *store.Redis) queue.Queue {
	if cfg.QueueBackend == BackendMemory || r == nil {
		return queue.NewInMemory(256)
	}
	return queue.NewRedisQueue(r.Client, queue.DefaultKey)
}

// NewBoard returns the configured presence board.
func NewBoard(cfg config.App, r *store.Redis) presence.Board {
	if cfg.PresenceBackend == BackendMemory || r == nil {
		return presence.NewMemory()
	}
	return presence.NewRedis(r.Client)
}

// NewLimiter returns the configured rate limiter, or nil when disabled.
func NewLimiter(cfg config.App, r *store.Redis) httpmiddleware.Limiter {
	if cfg.RateLimitPerMin <= 0 {
		return nil
	}
	if cfg.RateLimitBackend == "redis" && r != nil {
		return httpmiddleware.NewRedisWindow(r.Client, cfg.RateLimitPerMin)
	}
	return httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin)
}

// NewUploader returns a Cloudinary uploader, or nil when credentials are
// missing.
func NewUploader(cfg config.App) profile.Uploader {
	if !cfg.CloudinaryConfigured() {
		return nil
	}
	return cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
}

// UsesRedis reports whether any configured component needs Redis.
func UsesRedis(cfg config.App) bool {
	return cfg.QueueBackend != BackendMemory ||
		cfg.PresenceBackend != BackendMemory ||
		cfg.RateLimitBackend == "redis"
}

// RunPresence applies queue events to board until ctx ends or the queue
// closes.
func RunPresence(ctx context.Context, q queue.Queue, board presence.Board) error {
	events, err := q.Consume(ctx)
	if err != nil {
		return fmt.Errorf("app: consume events: %w", err)
	}
	for evt := range events {
		if err := presence.Apply(ctx, board, evt); err != nil {
			log.Printf("presence: apply %s for %s on %s: %v", evt.Type, evt.Owner, evt.Day, err)
			continue
		}
		log.Printf("presence: %s %s on %s", evt.Type, evt.Owner, evt.Day)
	}
	return nil
}
