package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/AprendendoLinux/financeiro/pkg/ledger"
)

var jwtSecret []byte // loaded from config jwt_secret (fallback to dev default)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	jwtSecret = []byte(cfg.JWTSecret)

	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	// Support a lightweight migrate command: `./financeiro migrate`
	// It runs AutoMigrate then exits. Useful for CI or manual DB setup.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		initDB(cfg)
		fmt.Println("migration completed")
		return
	}

	initDB(cfg)

	svc := ledger.New(db)

	r := gin.Default()

	setupRoutes(r, svc)

	r.Run(cfg.ListenAddr)
}
