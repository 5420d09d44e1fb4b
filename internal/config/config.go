// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING" env-required:"true"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Redis                   RedisConnection `yaml:"redis_connection"`
	Payment                 Payment         `yaml:"payment"`
	Enrollment              Enrollment      `yaml:"enrollment"`
	Verification            Verification    `yaml:"verification"`
	Mail                    Mail            `yaml:"mail"`
	RabbitMQ                RabbitMQ        `yaml:"rabbitmq"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis.
// Пустой адрес означает, что denylist токенов хранится в памяти процесса.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET" env-required:"true"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// Payment настройки платёжного провайдера и сумм.
type Payment struct {
	Provider   string `yaml:"provider" env:"PAYMENT_PROVIDER" env-default:"stripe"`
	Currency   string `yaml:"currency" env-default:"usd"`
	SuccessURL string `yaml:"success_url" env:"PAYMENT_SUCCESS_URL" env-default:"http://localhost:3000/payment/success"`
	CancelURL  string `yaml:"cancel_url" env:"PAYMENT_CANCEL_URL" env-default:"http://localhost:3000/payment/cancel"`
	// FallbackAmount списывается, если у курса не задана цена (в минимальных единицах валюты).
	FallbackAmount int64 `yaml:"fallback_amount" env-default:"9900"`
	// NominalAmount передаётся в журнал записей при подтверждении оплаты.
	NominalAmount int64    `yaml:"nominal_amount" env-default:"9900"`
	Stripe        Stripe   `yaml:"stripe"`
	Midtrans      Midtrans `yaml:"midtrans"`
}

// Stripe настройки REST API Stripe Checkout.
type Stripe struct {
	SecretKey string        `yaml:"secret_key" env:"STRIPE_SECRET_KEY"`
	APIURL    string        `yaml:"api_url" env-default:"https://api.stripe.com"`
	Timeout   time.Duration `yaml:"timeout" env-default:"10s"`
}

// Midtrans настройки Snap.
type Midtrans struct {
	ServerKey  string `yaml:"server_key" env:"MIDTRANS_SERVER_KEY"`
	Production bool   `yaml:"production" env:"MIDTRANS_PRODUCTION"`
}

// Enrollment правила записи на курс.
type Enrollment struct {
	MinPayment       int64 `yaml:"min_payment" env-default:"5000"`
	UniquePerStudent bool  `yaml:"unique_per_student" env:"ENROLLMENT_UNIQUE_PER_STUDENT"`
	EnforceCapacity  bool  `yaml:"enforce_capacity" env:"ENROLLMENT_ENFORCE_CAPACITY"`
}

// Verification настройки кодов подтверждения.
type Verification struct {
	CodeTTL time.Duration `yaml:"code_ttl" env-default:"10m"`
	// SendRate и SendBurst ограничивают выдачу кодов на одного клиента.
	SendRate  float64 `yaml:"send_rate" env-default:"0.2"`
	SendBurst int     `yaml:"send_burst" env-default:"3"`
}

// Mail настройки отправки писем.
type Mail struct {
	Provider       string `yaml:"provider" env:"MAIL_PROVIDER" env-default:"smtp"`
	From           string `yaml:"from" env:"MAIL_FROM"`
	SMTPHost       string `yaml:"smtp_host" env:"SMTP_HOST"`
	SMTPPort       int    `yaml:"smtp_port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser       string `yaml:"smtp_user" env:"SMTP_USER"`
	SMTPPass       string `yaml:"smtp_pass" env:"SMTP_PASS"`
	SendGridAPIKey string `yaml:"sendgrid_api_key" env:"SENDGRID_API_KEY"`
}

// RabbitMQ настройки публикации доменных событий. Пустой URL отключает публикацию.
type RabbitMQ struct {
	URL        string        `yaml:"url" env:"RABBITMQ_URL"`
	Exchange   string        `yaml:"exchange" env-default:"enrollments"`
	MaxRetries int           `yaml:"max_retries" env-default:"5"`
	RetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// MustLoad функция для загрузки конфига по пути из CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

// Load читает конфиг из файла и переменных окружения.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("file: %s - does not exist", configPath)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Redis: %s\n"+
			"Payment:\n"+
			"  Provider: %s\n"+
			"  Currency: %s\n"+
			"  FallbackAmount: %d\n"+
			"  NominalAmount: %d\n"+
			"Enrollment:\n"+
			"  MinPayment: %d\n"+
			"  UniquePerStudent: %t\n"+
			"  EnforceCapacity: %t\n"+
			"Mail: %s\n"+
			"RabbitMQ: %t\n",
		c.Env,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.Redis.AddressRedis,
		c.Payment.Provider,
		c.Payment.Currency,
		c.Payment.FallbackAmount,
		c.Payment.NominalAmount,
		c.Enrollment.MinPayment,
		c.Enrollment.UniquePerStudent,
		c.Enrollment.EnforceCapacity,
		c.Mail.Provider,
		c.RabbitMQ.URL != "",
	)
}
