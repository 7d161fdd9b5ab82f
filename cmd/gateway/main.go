// The gateway binary serves the settlement engine over HTTP.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"upi/internal/directory"
	"upi/internal/handler"
	"upi/internal/qr"
	"upi/internal/registry"
	"upi/internal/settlement"
	"upi/pkg/config"
	"upi/pkg/logger"
	"upi/pkg/validator"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New("upi-gateway")

	log.Info("Starting UPI settlement gateway", map[string]interface{}{
		"port": cfg.Server.Port,
	})

	reg := registry.New()
	dir := directory.New(reg)
	engine := settlement.NewService(reg, dir, log)
	qrService := qr.NewService(cfg.QR.Size)
	val := validator.New()

	if cfg.Gateway.SeedDemoData {
		seedDemoBanks(engine, log)
	}

	router := handler.NewRouter(engine, qrService, val, log)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("Gateway listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down gateway", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Graceful shutdown failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	log.Info("Gateway stopped", nil)
}

// seedDemoBanks registers the three demo banks so a fresh process is
// immediately usable for manual exploration.
func seedDemoBanks(engine *settlement.Service, log logger.Logger) {
	for _, name := range []string{"HDFC", "ICICI", "SBI"} {
		branches := engine.RegisterBank(name)
		log.Info("Seeded demo bank", map[string]interface{}{
			"bank":     name,
			"branches": branches,
		})
	}

	// One merchant and one user make the transfer paths demoable out of
	// the box.
	mid, err := engine.RegisterMerchant(&settlement.RegisterMerchantRequest{
		Bank: "HDFC", Name: "Demo Shop", Password: "demo-pw", Branch: "HDFC001",
		Balance: decimal.NewFromInt(1000),
	})
	if err != nil {
		log.Warn("Demo merchant seeding failed", map[string]interface{}{"error": err.Error()})
		return
	}
	_, mmid, err := engine.RegisterUser(&settlement.RegisterUserRequest{
		Bank: "HDFC", Name: "Demo User", Password: "demo-pw", Branch: "HDFC001",
		Mobile: "9998887777", PIN: "1234", Balance: decimal.NewFromInt(500),
	})
	if err != nil {
		log.Warn("Demo user seeding failed", map[string]interface{}{"error": err.Error()})
		return
	}

	token, _ := engine.ObfuscateMerchantID(mid)
	log.Info("Seeded demo accounts", map[string]interface{}{
		"merchant_mid":   mid,
		"merchant_token": token,
		"user_mmid":      mmid,
	})
}
