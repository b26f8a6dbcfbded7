package rewardhub

import (
	"os"
	"os/signal"

	"github.com/earningbd/rewardhub/internal/pkg/logger"
	"github.com/earningbd/rewardhub/internal/rewardhub/config"
	"github.com/earningbd/rewardhub/internal/rewardhub/controller"
	"github.com/earningbd/rewardhub/internal/rewardhub/identity"
	"github.com/earningbd/rewardhub/internal/rewardhub/profile"
	"github.com/earningbd/rewardhub/internal/rewardhub/router"
	"github.com/earningbd/rewardhub/internal/rewardhub/session"
	"github.com/earningbd/rewardhub/internal/rewardhub/tasks"
	"go.uber.org/zap"
)

type App struct {
	router *router.HttpRouter
	logger *zap.Logger
}

func (a *App) Run() error {
	sisChan := make(chan os.Signal, 1)
	go func() {
		if err := a.router.Run(); err != nil {
			a.logger.Error("router.Run failed: ", zap.Error(err))
			sisChan <- os.Interrupt
		}
	}()
	return a.gracefulShutdown(sisChan)
}

func (a *App) gracefulShutdown(sisChan chan os.Signal) error {
	signal.Notify(sisChan, os.Interrupt)
	<-sisChan
	if err := a.router.Close(); err != nil {
		a.logger.Error("router.Close failed: ", zap.Error(err))
	}
	return a.logger.Sync()
}

// NewApp wires identity, profile, navigation and the view surface together:
// the profile is constructed once at startup with the resolved device
// identity, and every later mutation flows through the controller.
func NewApp(cfg *config.Config) *App {
	log, err := logger.InitLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	bridge := identity.StaticBridge{ID: cfg.TelegramUserID, Name: cfg.TelegramUsername}
	resolver := identity.NewResolver(bridge, identity.NewFileStore(cfg.IdentityPath))
	userID, err := resolver.ResolveUserID()
	if err != nil {
		panic(err)
	}
	machine, err := session.NewMachine(cfg.AdminKey, log.Named("session"))
	if err != nil {
		panic(err)
	}
	store := profile.NewStore(userID, resolver.ResolveUsername(), log.Named("profile"))
	catalog := tasks.NewCatalog()
	c := controller.NewController(store, catalog, machine, resolver,
		[]byte(cfg.JWTSecret), cfg.ReferralReward, log.Named("controller"))
	r := router.CreateRouter(c, cfg, log)
	log.Info("session ready", zap.String("user_id", userID))
	return &App{
		router: r,
		logger: log,
	}
}
