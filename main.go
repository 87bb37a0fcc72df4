package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/smartcampus/portal/backend/handlers"
	"github.com/smartcampus/portal/backend/internal/auth"
	"github.com/smartcampus/portal/backend/internal/clubs"
	"github.com/smartcampus/portal/backend/internal/config"
	"github.com/smartcampus/portal/backend/internal/database"
	"github.com/smartcampus/portal/backend/internal/events"
	"github.com/smartcampus/portal/backend/internal/issues"
	"github.com/smartcampus/portal/backend/internal/lostitems"
	"github.com/smartcampus/portal/backend/internal/oidc"
	"github.com/smartcampus/portal/backend/internal/server"
	"github.com/smartcampus/portal/backend/internal/sessions"
	"github.com/smartcampus/portal/backend/internal/storage"
	"github.com/smartcampus/portal/backend/internal/users"
	"github.com/smartcampus/portal/backend/pkg/logger"
	"github.com/smartcampus/portal/backend/pkg/metrics"
)

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo_uri=%v redis=%v google=%v minio=%v role_source=%s",
		cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.Google.ClientID != "", cfg.MinIO.Endpoint != "", cfg.Session.RoleSource)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := connectRedis(ctx, cfg.Redis)

	client, ok := awaitDatabase(ctx, cfg.MongoDB)
	if !ok {
		logger.Infof("shutting down before a database connection was made")
		return
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	db := client.Database(database.DatabaseName(cfg.MongoDB))

	userRepo := users.NewMongoUserRepository(db.Collection("users"))
	clubRepo := clubs.NewMongoRepository(db.Collection("clubs"))
	for name, ensure := range map[string]func(context.Context) error{
		"users": userRepo.EnsureIndexes,
		"clubs": clubRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			logger.Warnf("failed to create %s indexes: %v", name, err)
		}
	}
	userSvc := users.NewService(userRepo)

	var revoked sessions.RevocationStore
	if rdb != nil {
		revoked = sessions.NewRedisRevocations(rdb, "")
		logger.Infof("session revocations stored in Redis")
	} else {
		mr := sessions.NewMongoRevocations(db.Collection("revoked_sessions"))
		if err := mr.EnsureIndexes(ctx); err != nil {
			logger.Warnf("failed to create revoked_sessions TTL index: %v", err)
		}
		revoked = mr
	}
	sessionSvc := sessions.NewService(sessions.NewCodec(cfg.Session.Key, cfg.Session.TTL), revoked)

	var verifier oidc.Verifier
	switch {
	case cfg.Google.AllowInsecure:
		logger.Warn("enabling insecure ID-token verifier (integration mode)")
		verifier = oidc.NewInsecureVerifier()
	case cfg.Google.ClientID != "":
		verifier = oidc.NewGoogleVerifier(ctx, cfg.Google.JWKSURL, cfg.Google.ClientID, cfg.Google.VerifyTimeout)
	default:
		logger.Warnf("GOOGLE_CLIENT_ID is not set; Google sign-in is disabled")
	}

	checks := map[string]server.Check{
		"database": func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) },
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	var images lostitems.ImageStore
	if cfg.MinIO.Endpoint != "" {
		st, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			logger.Warnf("image storage unavailable: %v", err)
		} else {
			images = st
			checks["storage"] = st.Ping
		}
	}

	authn := auth.NewAuthenticator(userSvc, sessionSvc, verifier, auth.EmailPolicy{
		Domain:  cfg.Google.AllowedDomain,
		Allowed: cfg.Google.AllowedEmails,
	}).WithVerifyTimeout(cfg.Google.VerifyTimeout)
	cookies := sessions.CookieWriter{Production: cfg.Server.Production(), MaxAge: cfg.Session.TTL}

	router := server.NewRouter(server.Deps{
		Sessions:  sessionSvc,
		Resolver:  auth.NewRoleResolver(cfg.Session.RoleSource, userSvc),
		RateLimit: cfg.RateLimit,
		Redis:     rdb,
		Checks:    checks,
		Routes: []server.Routes{
			handlers.NewAuthHandler(authn, userSvc, cookies),
			handlers.NewAdminHandler(userSvc),
			handlers.NewEventsHandler(events.NewService(events.NewMongoRepository(db.Collection("events")))),
			handlers.NewClubsHandler(clubs.NewService(clubRepo)),
			handlers.NewLostItemsHandler(lostitems.NewService(lostitems.NewMongoRepository(db.Collection("lostitems")), images)),
			handlers.NewIssuesHandler(issues.NewService(issues.NewMongoRepository(db.Collection("issues")))),
		},
	})

	handler := cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORS.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})(router)

	listener := server.NewListener(cfg.Server)
	if err := listener.Start(handler); err != nil {
		logger.Fatalf("failed to listen on %s: %v", net.JoinHostPort(cfg.Server.Host, cfg.Server.Port), err)
	}

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := listener.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}

// connectRedis returns a client when Redis is configured and answers a ping.
func connectRedis(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	if cfg.Host == "" {
		return nil
	}
	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Password, DB: cfg.DB})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warnf("failed to connect to Redis (%s): %v", addr, err)
		_ = rdb.Close()
		return nil
	}
	logger.Infof("connected to Redis: %s", addr)
	return rdb
}

// awaitDatabase runs the connection supervisor in the background and waits
// for its first success. It reports false only when ctx ends first.
func awaitDatabase(ctx context.Context, cfg config.MongoDBConfig) (*mongo.Client, bool) {
	type result struct {
		client *mongo.Client
		err    error
	}
	done := make(chan result, 1)
	go func() {
		client, st, err := database.NewSupervisor(cfg).Run(ctx)
		if err == nil {
			logger.Infof("database ready via %s strategy", st.Name)
		}
		done <- result{client, err}
	}()

	select {
	case r := <-done:
		return r.client, r.err == nil
	case <-ctx.Done():
		return nil, false
	}
}
