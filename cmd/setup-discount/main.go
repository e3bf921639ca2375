package main

import (
	"context"
	"time"

	"github.com/tpprogramming22/weekendinthecity/internal/config"
	"github.com/tpprogramming22/weekendinthecity/internal/external"
	"github.com/tpprogramming22/weekendinthecity/internal/logger"
)

// Creates the referral coupon and its BRINGAFRIEND25 promotion code if missing.
// Safe to run repeatedly.
func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	if cfg.Stripe.SecretKey == "" {
		logger.Fatal("STRIPE_SECRET_KEY is not set")
	}

	client := external.NewStripeClient(cfg.Stripe)

	if account, err := client.AccountStatus(); err != nil {
		logger.Fatal("Failed to reach Stripe", "error", err)
	} else {
		log.Info("Connected to Stripe", "account", account)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	created, err := client.EnsurePromotionCode(ctx)
	if err != nil {
		logger.Fatal("Failed to set up discount code", "error", err)
	}

	if created {
		log.Info("Discount code created",
			"code", external.ReferralPromoCode,
			"amount_off_cents", external.ReferralAmountOffCents)
		return
	}
	log.Info("Discount code already exists", "code", external.ReferralPromoCode)
}
