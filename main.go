package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"ATLAS-backend/internal/assets"
	"ATLAS-backend/internal/borrowing"
	"ATLAS-backend/internal/floorplan"
	"ATLAS-backend/internal/inventory"
	"ATLAS-backend/internal/patches"
	"ATLAS-backend/internal/platform/auth"
	"ATLAS-backend/internal/platform/db"
)

func main() {
	// 設定読み込み
	cfg, err := db.LoadConfig("config/config.yaml")
	if err != nil {
		panic(err)
	}

	mode := cfg.Mode
	log.Printf("[INFO] mode:%s\n", mode)

	if mode != "dev" && mode != "release" {
		log.Fatal("config.mode must be dev or release")
	}

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		panic(err)
	}
	defer conn.Close()

	log.Printf("[INFO] connected to DB: %s", cfg.DB.DBName)

	// 貸出テーブルは環境差があるため起動時に一度だけ解決する
	probeCtx, probeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	schema, err := borrowing.ProbeSchema(probeCtx, conn, cfg.DB.DBName, cfg.Borrowing.Table)
	probeCancel()
	if err != nil {
		log.Fatalf("[ERROR] borrowing schema: %v", err)
	}
	log.Printf("[INFO] borrowing table: %s (id auto: %t)", schema.Table, schema.IDAutoGenerated)

	if cfg.Auth.Secret == "" {
		log.Fatal("[ERROR] auth secret is not configured (config auth.secret or ATLAS_AUTH_SECRET)")
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if mode == "dev" {
		// CORS（開発中のみ必要）
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Location"},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	// ヘルス
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	assetSvc := assets.NewService(conn)
	authSvc := auth.NewService(conn, []byte(cfg.Auth.Secret))

	// /api/v1（login以外はトークン必須）
	api := r.Group("/api/v1")
	auth.RegisterRoutes(api, authSvc)

	protected := api.Group("", auth.RequireAuth(authSvc.Secret()))
	assets.RegisterRoutes(protected, assetSvc)
	borrowing.RegisterRoutes(protected, borrowing.NewService(conn, schema, assetSvc))
	patches.RegisterRoutes(protected, patches.NewService(conn))
	inventory.RegisterRoutes(protected, inventory.NewService(conn))
	floorplan.RegisterRoutes(protected, floorplan.NewService(conn))

	srv := &http.Server{
		Addr:    ":8443",
		Handler: r,
	}

	go func() {
		var err error
		if cfg.Certificate.Cert != "" && cfg.Certificate.Key != "" {
			certFile := "config/tls/" + mode + "/" + cfg.Certificate.Cert
			keyFile := "config/tls/" + mode + "/" + cfg.Certificate.Key
			log.Println("[INFO] listening on https://0.0.0.0:8443")
			err = srv.ListenAndServeTLS(certFile, keyFile)
		} else {
			log.Println("[INFO] listening on http://0.0.0.0:8443")
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("[INFO] shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
