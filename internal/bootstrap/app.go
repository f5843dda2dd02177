package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/gin-gonic/gin"

	"docstream-backend/internal/companies"
	"docstream-backend/internal/completion"
	"docstream-backend/internal/documents"
	"docstream-backend/internal/jobs"
	"docstream-backend/internal/queue"
	"docstream-backend/internal/shared/auth"
	"docstream-backend/internal/shared/config"
	"docstream-backend/internal/shared/server"
	"docstream-backend/internal/shared/storage/db"
	"docstream-backend/internal/uploads"
	"docstream-backend/internal/users"
	"docstream-backend/internal/workspaces"
)

// App holds shared dependencies, built once at startup.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Tokens *auth.Tokens

	UsersRepo      users.Repo
	CompaniesRepo  companies.Repo
	WorkspacesRepo workspaces.Repo
	UploadsRepo    uploads.Repo
	DocumentsRepo  documents.Repo
	JobsRepo       jobs.Repo

	Dispatcher  queue.Dispatcher
	Coordinator *completion.Coordinator
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	ctx := context.Background()

	tokens, err := buildTokens(cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Tokens: tokens,
	}

	buildRepos(app)

	dispatcher, err := buildDispatcher(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.Dispatcher = dispatcher

	presign, err := buildPresign(ctx, cfg)
	if err != nil {
		return nil, err
	}

	resolver := &workspaces.Resolver{Workspaces: app.WorkspacesRepo, Users: app.UsersRepo}

	var runner completion.TxRunner
	if app.DB != nil {
		runner = &completion.SQLRunner{DB: app.DB}
	} else {
		runner = completion.MemoryRunner{}
	}
	app.Coordinator = &completion.Coordinator{
		Runner:     runner,
		Uploads:    app.UploadsRepo,
		Documents:  app.DocumentsRepo,
		Jobs:       app.JobsRepo,
		Resolver:   resolver,
		Dispatcher: app.Dispatcher,
	}

	userSvc := &users.Service{Repo: app.UsersRepo, Companies: app.CompaniesRepo, Tokens: tokens}
	workspaceSvc := &workspaces.Service{Repo: app.WorkspacesRepo, Resolver: resolver}
	membershipSvc := &workspaces.MembershipService{Workspaces: app.WorkspacesRepo, Users: app.UsersRepo}
	documentSvc := &documents.Service{Repo: app.DocumentsRepo, Resolver: resolver}
	jobSvc := &jobs.Service{Repo: app.JobsRepo}

	app.Router = server.NewRouter(server.RouterDeps{
		Config: cfg,
		Tokens: tokens,
		Handlers: []server.RouteRegistrar{
			users.NewHandler(userSvc),
			workspaces.NewHandler(workspaceSvc, membershipSvc),
			uploads.NewHandler(presign, app.UploadsRepo, cfg.UploadsBucket, cfg.UploadsPrefix),
			documents.NewHandler(documentSvc),
			jobs.NewHandler(jobSvc),
			completion.NewHandler(app.Coordinator),
		},
	})

	return app, nil
}

func buildTokens(cfg config.Config) (*auth.Tokens, error) {
	secret := cfg.JWTSecret
	if strings.TrimSpace(secret) == "" {
		if cfg.Env == "production" {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		log.Printf("bootstrap: JWT_SECRET empty; using insecure dev secret")
		secret = "dev-only-secret"
	}
	return auth.NewTokens(secret, cfg.TokenTTL)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.DefaultServerOptions())
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildRepos(app *App) {
	if app.DB != nil {
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.CompaniesRepo = &companies.PGRepo{DB: app.DB}
		app.WorkspacesRepo = &workspaces.PGRepo{DB: app.DB}
		app.UploadsRepo = &uploads.PGRepo{DB: app.DB}
		app.DocumentsRepo = &documents.PGRepo{DB: app.DB}
		app.JobsRepo = &jobs.PGRepo{DB: app.DB}
		return
	}
	app.UsersRepo = users.NewMemoryRepo()
	app.CompaniesRepo = companies.NewMemoryRepo()
	app.WorkspacesRepo = workspaces.NewMemoryRepo()
	app.UploadsRepo = uploads.NewMemoryRepo()
	app.DocumentsRepo = documents.NewMemoryRepo()
	app.JobsRepo = jobs.NewMemoryRepo()
}

func buildDispatcher(ctx context.Context, cfg config.Config) (queue.Dispatcher, error) {
	if strings.TrimSpace(cfg.SQSQueueURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DS_SQS_QUEUE_URL empty; dispatch will degrade every completion")
			return queue.NoopDispatcher{}, nil
		}
		return nil, fmt.Errorf("DS_SQS_QUEUE_URL is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return queue.NewSQSDispatcher(sqs.NewFromConfig(awsCfg), cfg.SQSQueueURL), nil
}

func buildPresign(ctx context.Context, cfg config.Config) (uploads.Presigner, error) {
	if strings.TrimSpace(cfg.UploadsBucket) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: UPLOADS_S3_BUCKET empty; presign endpoint will fail")
		} else {
			return nil, fmt.Errorf("UPLOADS_S3_BUCKET is required")
		}
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewPresignClient(s3.NewFromConfig(awsCfg)), nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
