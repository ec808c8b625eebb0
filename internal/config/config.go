package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr          string
	WSReadBufferSize  int
	WSWriteBufferSize int

	// Snapshot backend: "mysql", "redis" or "memory".
	SnapshotBackend string
	DBDSN           string
	RedisAddr       string

	AMQPURL      string
	AMQPExchange string

	JWTSecret string

	TemplatesPath string

	WolfVoteTimeout time.Duration
	// StepTimeout auto-fills a none action when a role stalls. Zero
	// disables the per-step deadline.
	StepTimeout time.Duration

	TraceStdout bool
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func Load() Config {
	return Config{
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		WSReadBufferSize:  getEnvInt("WS_READ_BUFFER", 4096),
		WSWriteBufferSize: getEnvInt("WS_WRITE_BUFFER", 4096),
		SnapshotBackend:   getEnv("SNAPSHOT_BACKEND", "mysql"),
		DBDSN:             getEnv("DB_DSN", "root:password@tcp(localhost:3306)/werewolf?parseTime=true&charset=utf8mb4&collation=utf8mb4_unicode_ci"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		AMQPURL:           getEnv("AMQP_URL", ""),
		AMQPExchange:      getEnv("AMQP_EXCHANGE", "werewolf.rooms"),
		JWTSecret:         getEnv("JWT_SECRET", "dev-secret-change"),
		TemplatesPath:     getEnv("TEMPLATES_PATH", ""),
		WolfVoteTimeout:   time.Duration(getEnvInt("WOLF_VOTE_TIMEOUT_SEC", 45)) * time.Second,
		StepTimeout:       time.Duration(getEnvInt("STEP_TIMEOUT_SEC", 0)) * time.Second,
		TraceStdout:       getEnvBool("TRACE_STDOUT", false),
	}
}
