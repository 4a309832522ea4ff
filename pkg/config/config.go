package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/utils"
)

type Config struct {
	Env      string   `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTP     `yaml:"http"`
	Postgres PG       `yaml:"postgres"`
	Redis    Redis    `yaml:"redis"`
	Kafka    Kafka    `yaml:"kafka"`
	Services Services `yaml:"services"`
	Razorpay Razorpay `yaml:"razorpay"`
	Reaper   Reaper   `yaml:"reaper"`
	SMTP     SMTP     `yaml:"smtp"`
}

type HTTP struct {
	Port    string        `yaml:"port" env:"HTTP_PORT" env-default:":3000"`
	Timeout time.Duration `yaml:"timeout" env-default:"4s"`
}

type PG struct {
	URL string `yaml:"url" env:"DB_URL"`
}

type Redis struct {
	Addr string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
}

type Kafka struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-default:"localhost:9092"`
}

// Services holds the base URLs of the collaborator services plus the
// per-call deadline applied to every outbound request.
type Services struct {
	ProductURL string        `yaml:"product_url" env:"PRODUCT_SERVICE_URL" env-default:"http://localhost:8081"`
	OrderURL   string        `yaml:"order_url" env:"ORDER_SERVICE_URL" env-default:"http://localhost:8082"`
	PaymentURL string        `yaml:"payment_url" env:"PAYMENT_SERVICE_URL" env-default:"http://localhost:8083"`
	Timeout    time.Duration `yaml:"timeout" env:"SERVICE_CALL_TIMEOUT" env-default:"4s"`
}

type Razorpay struct {
	APIKey        string `yaml:"api_key" env:"RAZORPAY_API_KEY"`
	APISecret     string `yaml:"api_secret" env:"RAZORPAY_API_SECRET"`
	WebhookSecret string `yaml:"webhook_secret" env:"RAZORPAY_WEBHOOK_SECRET"`
	CallbackURL   string `yaml:"callback_url" env:"RAZORPAY_CALLBACK_URL"`
}

type SMTP struct {
	Host     string `yaml:"host" env:"SMTP_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"SMTP_PORT" env-default:"1025"`
	User     string `yaml:"user" env:"SMTP_USER"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
	From     string `yaml:"from" env:"SMTP_FROM" env-default:"no-reply@ecommerce.local"`
}

// Reaper controls how long a reservation may sit behind an unpaid order
// before it is released back to stock.
type Reaper struct {
	Interval time.Duration `yaml:"interval" env:"REAPER_INTERVAL" env-default:"1m"`
	MaxAge   time.Duration `yaml:"max_age" env:"REAPER_MAX_AGE" env-default:"30m"`
}

func MustLoad() *Config {
	configPath := utils.ParseWithFallback("CONFIG_PATH", "./config/local.yaml")

	var cfg Config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Fatalf("error reading config from env: %v", err)
		}
		return &cfg
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("error reading config: %v", err)
	}

	return &cfg
}
