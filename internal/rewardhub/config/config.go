package config

import (
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	HTTPPort         string `yaml:"http_port" env:"HTTP_PORT" env-default:"8080"`
	LogLevel         string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	JWTSecret        string `yaml:"jwt_secret" env:"JWT_SECRET" env-default:"secret"`
	AdminKey         string `yaml:"admin_key" env:"ADMIN_KEY" env-default:"admin123"`
	IdentityPath     string `yaml:"identity_path" env:"IDENTITY_PATH" env-default:"./data/device_id"`
	TelegramUserID   int64  `yaml:"telegram_user_id" env:"TELEGRAM_USER_ID" env-default:"0"`
	TelegramUsername string `yaml:"telegram_username" env:"TELEGRAM_USERNAME" env-default:""`
	ReferralReward   int64  `yaml:"referral_reward" env:"REFERRAL_REWARD" env-default:"10"`
}

// MustLoad reads CONFIG_PATH when it is set, environment variables otherwise.
func MustLoad() *Config {
	cfg := &Config{}
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			panic(err)
		}
		return cfg
	}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		panic(err)
	}
	return cfg
}
