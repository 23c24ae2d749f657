package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port      string `env:"PORT" envDefault:"8000"`
	ClientURL string `env:"CLIENT_URL" envDefault:"http://localhost:5173"`
	LogDir    string `env:"LOG_DIR" envDefault:"./logs"`

	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBName     string `env:"DB_NAME" envDefault:"lingo"`

	MongoURL string `env:"MONGO_URL" envDefault:"mongodb://localhost:27017"`
	MongoDB  string `env:"MONGO_DB" envDefault:"lingo"`

	// Empty means presence is tracked in process memory.
	RedisURL string `env:"REDIS_URL"`

	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"168h"`

	MinIOEndpoint  string `env:"MINIO_ENDPOINT" envDefault:"localhost:9000"`
	MinIOAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinIOSecretKey string `env:"MINIO_SECRET_KEY"`
	MinIOBucket    string `env:"MINIO_BUCKET" envDefault:"lingo"`
	MinIOSecure    bool   `env:"MINIO_SECURE" envDefault:"false"`

	LLMProvider  string `env:"LLM_PROVIDER" envDefault:"googleai"`
	LLMModel     string `env:"LLM_MODEL" envDefault:"gemini-2.5-flash"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	OllamaHost   string `env:"OLLAMA_HOST" envDefault:"http://localhost:11434"`

	MaxRoomPeers int `env:"SIGNALING_MAX_ROOM_PEERS" envDefault:"2"`
}

// LoadConfig reads .env (when present) into the process environment and
// parses it into a Config.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.MaxRoomPeers < 2 {
		return Config{}, fmt.Errorf("SIGNALING_MAX_ROOM_PEERS must be at least 2, got %d", cfg.MaxRoomPeers)
	}
	return cfg, nil
}

func (c Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost,
		c.DBPort,
		c.DBUser,
		c.DBPassword,
		c.DBName,
	)
}

func (c Config) Addr() string {
	return ":" + c.Port
}
