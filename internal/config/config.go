package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	RunAddress    string `env:"RUN_ADDRESS"`
	DatabaseDSN   string `env:"DATABASE_URI"`
	MigrationsDir string `env:"MIGRATIONS_DIR"`
	JWTSecret     string `env:"JWT_SECRET"`

	JWTExpire  time.Duration `env:"JWT_EXPIRE"  envDefault:"72h"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10"`
	// AdminEmails адреса администраторов через запятую.
	AdminEmails []string `env:"ADMIN_EMAILS" envSeparator:","`
	// PublicURL адрес витрины, используется в ссылках писем и уведомлений.
	PublicURL string `env:"PUBLIC_URL" envDefault:"http://localhost:3000"`

	RedisAddr     string `env:"REDIS_ADDR"     envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"       envDefault:"0"`

	ResendAPIKey string `env:"RESEND_API_KEY"`
	MailFrom     string `env:"MAIL_FROM"      envDefault:"Groph Grocer <shop@example.com>"`

	VAPIDPublicKey  string `env:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `env:"VAPID_PRIVATE_KEY"`
	VAPIDSubscriber string `env:"VAPID_SUBSCRIBER" envDefault:"mailto:shop@example.com"`

	// MessengerWebhookURL пустое значение отключает уведомления о статусах заказов.
	MessengerWebhookURL string `env:"MESSENGER_WEBHOOK_URL"`
	MessengerToken      string `env:"MESSENGER_TOKEN"`
	MessengerRecipient  string `env:"MESSENGER_RECIPIENT"`

	DeliveryFee           decimal.Decimal `env:"DELIVERY_FEE"            envDefault:"4.99"`
	FreeDeliveryThreshold decimal.Decimal `env:"FREE_DELIVERY_THRESHOLD" envDefault:"50"`
	LoyaltyEarnRate       decimal.Decimal `env:"LOYALTY_EARN_RATE"       envDefault:"1"`
	LoyaltyRedeemRate     decimal.Decimal `env:"LOYALTY_REDEEM_RATE"     envDefault:"0.01"`
	ReferrerReward        decimal.Decimal `env:"REFERRER_REWARD"         envDefault:"5"`
	RefereeReward         decimal.Decimal `env:"REFEREE_REWARD"          envDefault:"5"`

	CatalogCacheTTL time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"5m"`

	AuthRateLimit float64 `env:"AUTH_RATE_LIMIT" envDefault:"1"`
	AuthRateBurst int     `env:"AUTH_RATE_BURST" envDefault:"5"`

	PriceWatchInterval time.Duration `env:"PRICE_WATCH_INTERVAL" envDefault:"30s"`
	CampaignsSchedule  string        `env:"CAMPAIGNS_SCHEDULE"   envDefault:"@every 1m"`
	JobsConcurrency    int           `env:"JOBS_CONCURRENCY"     envDefault:"10"`
}

func LoadConfig() (*Config, error) {
	// .env не обязателен, переменные окружения процесса имеют приоритет.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %s", err.Error())
	}
	return load(os.Args[1:])
}

func MustLoadConfig() *Config {
	config, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return config
}

func load(args []string) (*Config, error) {
	var flagsConfig, envConfig Config

	if envParseErr := env.Parse(&envConfig); envParseErr != nil {
		return nil, fmt.Errorf("parse env config: %s", envParseErr.Error())
	}

	if err := loadFlags(&flagsConfig, args); err != nil {
		return nil, err
	}

	conf := mergeConfig(&envConfig, &flagsConfig)
	if conf.DatabaseDSN == "" {
		return nil, errors.New("database DSN is not set")
	}
	if conf.JWTSecret == "" {
		return nil, errors.New("JWT secret is not set")
	}
	if conf.LoyaltyRedeemRate.IsNegative() || conf.DeliveryFee.IsNegative() {
		return nil, errors.New("money settings must not be negative")
	}
	return conf, nil
}

func loadFlags(flagConfig *Config, args []string) error {
	fl := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fl.StringVar(&flagConfig.RunAddress, "a", "localhost:8080", "Run address in format host:port")
	fl.StringVar(&flagConfig.DatabaseDSN, "d", "", "Database DSN")
	fl.StringVar(&flagConfig.MigrationsDir, "m", "internal/db/migrations", "Database migrations directory")
	fl.StringVar(&flagConfig.JWTSecret, "k", "", "JWT secret key")

	if err := fl.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %s", err.Error())
	}
	return nil
}

// mergeConfig значения окружения приоритетнее флагов. Остальные настройки задаются только окружением.
func mergeConfig(envConfig, flagsConfig *Config) *Config {
	conf := *envConfig
	conf.RunAddress = defaultIfBlank(envConfig.RunAddress, flagsConfig.RunAddress)
	conf.DatabaseDSN = defaultIfBlank(envConfig.DatabaseDSN, flagsConfig.DatabaseDSN)
	conf.MigrationsDir = defaultIfBlank(envConfig.MigrationsDir, flagsConfig.MigrationsDir)
	conf.JWTSecret = defaultIfBlank(envConfig.JWTSecret, flagsConfig.JWTSecret)
	return &conf
}

func defaultIfBlank(value string, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
