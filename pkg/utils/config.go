package utils

import (
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Payment  PaymentConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type JWTConfig struct {
	Secret        string
	ExpireSeconds int
	MaxActive     int
	CookieName    string
}

// PaymentConfig holds the Robokassa merchant credentials.
// Password1 signs outgoing payment links, Password2 verifies result callbacks.
type PaymentConfig struct {
	MerchantLogin string
	Password1     string
	Password2     string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("JWT_EXPIRE", 86400)
	viper.SetDefault("JWT_MAX", 10)
	viper.SetDefault("AUTH_COOKIE", "auth._token.local")
	viper.SetDefault("LOG_PATH", "logs/")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			ExpireSeconds: viper.GetInt("JWT_EXPIRE"),
			MaxActive:     viper.GetInt("JWT_MAX"),
			CookieName:    viper.GetString("AUTH_COOKIE"),
		},
		Payment: PaymentConfig{
			MerchantLogin: viper.GetString("ROBOKASSA_LOGIN"),
			Password1:     viper.GetString("ROBOKASSA_PASSWORD1"),
			Password2:     viper.GetString("ROBOKASSA_PASSWORD2"),
		},
	}

	return config, nil
}
