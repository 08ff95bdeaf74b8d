package main

import (
	"context"
	"log"
	"net/http"

	"pingly-server/internal/cache"
	"pingly-server/internal/config"
	"pingly-server/internal/database"
	"pingly-server/internal/repository"
	"pingly-server/internal/services"
	"pingly-server/internal/socket"
	"pingly-server/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewDB(cfg.GetDatabaseURL())
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.AutoMigrate(); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	var sessionCache cache.Cache
	switch cfg.Cache.Driver {
	case "redis":
		sessionCache, err = cache.NewRedis(cfg.GetRedisAddress(), cfg.Cache.Password, cfg.Cache.DB)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
	default:
		sessionCache = cache.NewMemory()
	}
	defer sessionCache.Close()

	tokenService, err := services.NewTokenService(cfg)
	if err != nil {
		log.Fatalf("failed to init token service: %v", err)
	}
	mailer := services.NewEmailService(cfg.SMTP)

	userRepo := repository.NewUserRepo(db.GormDB)
	refreshTokenRepo := repository.NewRefreshTokenRepo(db.GormDB)
	conversationRepo := repository.NewConversationRepo(db.GormDB)
	messageRepo := repository.NewMessageRepo(db.GormDB)

	presenceService := services.NewPresenceService(sessionCache)
	gateway := socket.NewGateway(tokenService, conversationRepo, presenceService)
	defer gateway.Close()

	authService := services.NewAuthService(userRepo, refreshTokenRepo, sessionCache, tokenService, mailer, cfg)
	userService := services.NewUserService(userRepo)
	conversationService := services.NewConversationService(conversationRepo, userRepo, gateway)
	messageService := services.NewMessageService(messageRepo, conversationRepo, gateway)
	gateway.BindMessageService(messageService)

	go authService.SweepExpiredTokens(context.Background(), cfg.Auth.SweepPeriod)

	r := routes.SetupRoutes(routes.Dependencies{
		AuthService:         authService,
		UserService:         userService,
		ConversationService: conversationService,
		MessageService:      messageService,
		TokenService:        tokenService,
		Cache:               sessionCache,
		Gateway:             gateway,
	})

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	log.Printf("server listening on %s", cfg.GetServerAddress())
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
