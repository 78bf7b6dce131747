package main

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/SlpAus/tarot-reading-backend/api"
	"github.com/SlpAus/tarot-reading-backend/internal/augment"
	"github.com/SlpAus/tarot-reading-backend/internal/platform/config"
	"github.com/SlpAus/tarot-reading-backend/internal/platform/database"
	"github.com/SlpAus/tarot-reading-backend/internal/platform/health"
	"github.com/SlpAus/tarot-reading-backend/internal/platform/shutdown"
	"github.com/SlpAus/tarot-reading-backend/internal/platform/startup"
	"github.com/SlpAus/tarot-reading-backend/internal/quota"
	"github.com/SlpAus/tarot-reading-backend/internal/reading"
	"github.com/SlpAus/tarot-reading-backend/pkg/lifecycle"
	"github.com/SlpAus/tarot-reading-backend/pkg/token"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// stdRNG 把math/rand/v2的全局随机源适配到抽牌引擎的接口上
type stdRNG struct{}

func (stdRNG) Intn(n int) int   { return rand.IntN(n) }
func (stdRNG) Float64() float64 { return rand.Float64() }

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("配置加载失败，无法启动: %v", err))
	}

	token.GenerateSecretKey()
	database.InitDB(cfg.Database.Sqlite)
	database.InitRedis(cfg.Database.Redis)

	// 1. 执行应用首次启动初始化流程
	if err := startup.InitializeApplication(cfg); err != nil {
		panic(fmt.Sprintf("应用初始化失败，无法启动: %v", err))
	}

	// 2. 阻塞式执行一次启动后健康检查
	fmt.Println("正在执行启动后健康检查...")
	health.PerformCheck()

	// 3. 组装业务服务
	gate := quota.NewGate(quota.NewRedisUsageStore(), cfg.Quota.DailyLimit)

	var augmenter augment.Augmenter
	if cfg.AI.Enabled {
		augmenter = augment.NewClient(
			&http.Client{Timeout: cfg.AI.Timeout()},
			cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Model)
		fmt.Printf("AI解读已启用，模型: %s\n", cfg.AI.Model)
	} else {
		fmt.Println("AI解读未启用，只提供本地解读。")
	}

	reading.SetupService(gate, augmenter, stdRNG{}, cfg.Reading.ReversalProbability)

	// 4. 启动后台服务
	gracefulMgr := lifecycle.NewManager()
	forcefulMgr := lifecycle.NewManager()

	healthHandle, err := gracefulMgr.NewServiceHandle("redis-health-checker")
	if err != nil {
		panic(fmt.Sprintf("无法注册健康检查器: %v", err))
	}
	go health.StartRedisHealthCheck(healthHandle)

	janitorHandle, err := gracefulMgr.NewServiceHandle("session-janitor")
	if err != nil {
		panic(fmt.Sprintf("无法注册会话清扫器: %v", err))
	}
	go reading.StartSessionJanitor(janitorHandle, cfg.Reading.SessionTTL())

	// 5. 配置Gin引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()

	allowedOrigins := cfg.Server.Cors.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Static("/images/cards", "./assets/images/cards")

	api.SetupRoutes(r)

	// 6. 启动HTTP服务器并等待停机信号
	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	go func() {
		fmt.Printf("服务器已准备就绪，开始监听 %s\n", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic("Failed to start server: " + err.Error())
		}
	}()

	coordinator := shutdown.NewCoordinator(gracefulMgr, forcefulMgr)
	coordinator.ListenForSignalsAndShutdown(server)
}
