// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"

	"orbitpay-wallet/pkg/db"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// WalletDefaults centralizes every product default and bound consumed
// by the wallet service, so no call site carries its own magic numbers.
type WalletDefaults struct {
	BaseCurrency string

	DailyLimit   decimal.Decimal
	MonthlyLimit decimal.Decimal

	DailyLimitMin   decimal.Decimal
	DailyLimitMax   decimal.Decimal
	MonthlyLimitMin decimal.Decimal
	MonthlyLimitMax decimal.Decimal

	TransferMin decimal.Decimal
	TransferMax decimal.Decimal

	PinHashCost      int
	RecentTxnLimit   int
	DescriptionLimit int
}

// NewWalletDefaults returns the product-defined defaults.
func NewWalletDefaults() WalletDefaults {
	return WalletDefaults{
		BaseCurrency: "INR",

		DailyLimit:   decimal.NewFromInt(10_000),
		MonthlyLimit: decimal.NewFromInt(100_000),

		DailyLimitMin:   decimal.NewFromInt(1_000),
		DailyLimitMax:   decimal.NewFromInt(1_000_000),
		MonthlyLimitMin: decimal.NewFromInt(10_000),
		MonthlyLimitMax: decimal.NewFromInt(10_000_000),

		TransferMin: decimal.NewFromInt(1),
		TransferMax: decimal.NewFromInt(1_000_000),

		PinHashCost:      10,
		RecentTxnLimit:   5,
		DescriptionLimit: 255,
	}
}

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort string
	DB         db.Config
	Wallet     WalletDefaults
}

// LoadConfig loads configuration from the environment. A .env file in
// the working directory is applied first when present, matching how
// the deployment images are built.
func LoadConfig() (*AppConfig, error) {
	_ = godotenv.Load()

	serverPort := getEnv("SERVER_PORT", "8080")

	dbPortStr := getEnv("DB_PORT", "5432")
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	return &AppConfig{
		ServerPort: serverPort,
		DB: db.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "user"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "walletdb"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Wallet: NewWalletDefaults(),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
