package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	_ "taskmanager/docs"
	"taskmanager/internal/config"
	"taskmanager/internal/handlers"
	"taskmanager/internal/middleware"
	"taskmanager/internal/pdf"
	"taskmanager/internal/ratelimit"
	"taskmanager/internal/repositories"
	"taskmanager/internal/routes"
	"taskmanager/internal/services"
)

const connectTimeout = 10 * time.Second

// store is an opened task/user backend plus its release hook.
type store struct {
	tasks  repositories.TaskRepository
	users  repositories.UserRepository
	resets repositories.PasswordResetRepository
	close  func(ctx context.Context) error
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (*store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	switch cfg.Driver {
	case config.DriverMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("mongo connect: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("mongo ping: %w", err)
		}
		db := client.Database(cfg.MongoDatabase)
		if err := repositories.EnsureMongoIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		log.Printf("[app][db] mongo connected database=%s", cfg.MongoDatabase)
		return &store{
			tasks:  repositories.NewMongoTaskRepository(db),
			users:  repositories.NewMongoUserRepository(db),
			resets: repositories.NewMongoPasswordResetRepository(db),
			close:  client.Disconnect,
		}, nil

	case config.DriverPostgres:
		db, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("postgres open: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("postgres ping: %w", err)
		}
		if err := repositories.MigratePostgres(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Printf("[app][db] postgres connected")
		return &store{
			tasks:  repositories.NewPostgresTaskRepository(db),
			users:  repositories.NewPostgresUserRepository(db),
			resets: repositories.NewPostgresPasswordResetRepository(db),
			close:  func(context.Context) error { return db.Close() },
		}, nil

	case config.DriverMemory:
		log.Printf("[app][db] using in-memory store, data is lost on exit")
		mem := repositories.NewMemoryStore()
		return &store{
			tasks:  mem.Tasks(),
			users:  mem.Users(),
			resets: mem.PasswordResets(),
			close:  func(context.Context) error { return nil },
		}, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

// Run starts the API and blocks until shutdown. The returned code is meant
// for os.Exit.
func Run(cfg *config.Config) (int, error) {
	ctx := context.Background()

	// === DB ===
	st, err := openStore(ctx, cfg.Database)
	if err != nil {
		return 1, err
	}

	// === Redis (optional) ===
	var rdb *redis.Client
	var limiter middleware.RateLimiter
	if cfg.Redis.Addr != "" && cfg.RateLimit.Requests > 0 {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Printf("[app][redis] warning: ping %s: %v", cfg.Redis.Addr, err)
		}
		cancel()
		limiter = ratelimit.NewLimiter(rdb, "ratelimit:auth:", cfg.RateLimit.Requests, cfg.RateLimit.Window)
		log.Printf("[app][redis] auth rate limit %d/%s", cfg.RateLimit.Requests, cfg.RateLimit.Window)
	} else {
		log.Printf("[app][redis] not configured, rate limiting disabled")
	}

	// === Services ===
	authService := services.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	var emailService services.EmailService
	if cfg.Email.SMTPHost != "" {
		emailService = services.NewEmailService(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
		)
	}

	var notifier services.TaskNotifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != 0 {
		tg, err := services.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			log.Printf("[app][telegram] warning: notifications disabled: %v", err)
		} else {
			notifier = tg
		}
	}

	userService := services.NewUserService(st.users, emailService, authService)
	resetService := services.NewPasswordResetService(st.users, st.resets, emailService, authService, services.DefaultResetTTL)
	taskService := services.NewTaskService(st.tasks, notifier)

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(userService)
	passwordHandler := handlers.NewPasswordHandler(resetService)
	taskHandler := handlers.NewTaskHandler(taskService)
	exportHandler := handlers.NewExportHandler(taskService, userService, pdf.NewReportGenerator(cfg.Export.FontPath))

	// === Gin ===
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	routes.SetupRoutes(router, routes.Deps{
		Auth:     authHandler,
		Password: passwordHandler,
		Tasks:    taskHandler,
		Export:   exportHandler,
		Tokens:   authService,
		Limiter:  limiter,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// === Run ===
	serveErr := make(chan error, 1)
	go func() {
		log.Printf("[app] listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		ctx,
		cfg.Server.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			// operations run concurrently, so ordering lives in one op
			"taskmanager": func(ctx context.Context) error {
				err := srv.Shutdown(ctx)
				if cerr := st.close(ctx); cerr != nil && err == nil {
					err = cerr
				}
				if rdb != nil {
					if cerr := rdb.Close(); cerr != nil && err == nil {
						err = cerr
					}
				}
				return err
			},
		},
	)

	select {
	case err := <-serveErr:
		_ = st.close(context.Background())
		if rdb != nil {
			_ = rdb.Close()
		}
		return 1, fmt.Errorf("http server: %w", err)
	case code := <-wait:
		log.Printf("[app] exited with code %d", code)
		return code, nil
	}
}
