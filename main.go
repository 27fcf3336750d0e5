package main

import (
	"log"

	"github.com/cppla/socialhub/config"
	"github.com/cppla/socialhub/models"
	"github.com/cppla/socialhub/routes"
	"github.com/cppla/socialhub/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	db, err := config.InitDatabase(cfg, utils.Logger, models.All()...)
	if err != nil {
		utils.Sugar.Fatalf("init database: %v", err)
	}
	defer func() {
		if err := config.CloseDatabase(db); err != nil {
			utils.Sugar.Warnf("close database: %v", err)
		}
	}()

	sessions, err := utils.NewSessionStore(cfg)
	if err != nil {
		utils.Sugar.Fatalf("init session store: %v", err)
	}
	defer sessions.Close()

	r := routes.SetupRouter(routes.Deps{Config: cfg, DB: db, Sessions: sessions})

	utils.Sugar.Infof("Starting server on port %s (graceful), driver=%s sessions=%s", cfg.AppPort, cfg.DBDriver, cfg.SessionStore)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Errorf("server stopped with error: %v", err)
	}
}
