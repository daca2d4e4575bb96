package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appAuth "github.com/yigit/studentms/internal/app/auth"
	appControllers "github.com/yigit/studentms/internal/app/controllers"
	appMigrations "github.com/yigit/studentms/internal/app/migrations"
	appRepos "github.com/yigit/studentms/internal/app/repositories"
	appRoutes "github.com/yigit/studentms/internal/app/routes"
	appServices "github.com/yigit/studentms/internal/app/services"
	"github.com/yigit/studentms/internal/config"
	"github.com/yigit/studentms/internal/db"
	appMiddleware "github.com/yigit/studentms/internal/middleware"
	pkgAuth "github.com/yigit/studentms/internal/pkg/auth"
	"github.com/yigit/studentms/internal/pkg/helpers"
	"github.com/yigit/studentms/internal/pkg/logger"
	"github.com/yigit/studentms/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService          appServices.IAuthService
	StudentService       appServices.IStudentService
	DepartmentService    appServices.IDepartmentService
	AuthController       *appControllers.AuthController
	StudentController    *appControllers.StudentController
	DepartmentController *appControllers.DepartmentController
	AuthMiddleware       *appMiddleware.AuthMiddleware
	Authenticator        *appAuth.Authenticator
	Repos                *appRepos.Repositories
	JWTService           *pkgAuth.JWTService
	Logger               zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations
// and seeds default data. Storage faults never abort startup: the pool
// is lazy, so the server comes up degraded and recovers once the
// database answers. Only configuration problems return an error.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Invalid database configuration")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Database unreachable, starting degraded; migrations and seed skipped")
		return dbPool, nil
	}

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error, starting degraded")
		return dbPool, nil
	}

	if err := seed.CreateDefaultData(context.Background(), dbPool, lgr); err != nil {
		// Seeding is idempotent and non-critical; startup continues.
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		RememberMeExp:   helpers.ParseDuration(cfg.Auth.RememberMeExpiration, 2160*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.Authenticator = appAuth.NewAuthenticator(
		deps.Repos.UserRepository,
		deps.Repos.AdminRepository,
		deps.Repos.StudentRepository,
		appAuth.Options{LegacyFallbackOnMismatch: cfg.Auth.LegacyFallbackOnMismatch},
	)

	deps.AuthService = appServices.NewAuthService(
		deps.Authenticator,
		deps.Repos.UserRepository,
		deps.Repos.StudentRepository,
		deps.Repos.AdminRepository,
		deps.Repos.DepartmentRepository,
		deps.Repos.TokenRepository,
		&db.PostgresDB{Pool: dbPool},
		deps.JWTService,
		lgr,
	)

	deps.StudentService = appServices.NewStudentService(
		deps.Repos.StudentRepository,
		deps.Repos.UserRepository,
		deps.Repos.AdminRepository,
		deps.Repos.DepartmentRepository,
		lgr,
	)
	deps.DepartmentService = appServices.NewDepartmentService(deps.Repos.DepartmentRepository, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.Repos.UserRepository)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, deps.Logger)
	deps.StudentController = appControllers.NewStudentController(deps.StudentService, deps.AuthService, deps.Logger)
	deps.DepartmentController = appControllers.NewDepartmentController(deps.DepartmentService, deps.Logger)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.Default()

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.StudentController,
		deps.DepartmentController,
		deps.AuthMiddleware,
	)

	return router
}
