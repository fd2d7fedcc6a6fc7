package util

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// LoadEnv loads `.env.<env>` falling back to plain `.env`.
func LoadEnv(env string) error {
	candidates := []string{fmt.Sprintf(".env.%s", env), ".env"}
	for _, name := range candidates {
		if _, err := os.Stat(name); err == nil {
			return godotenv.Load(name)
		}
	}
	return fmt.Errorf("no env file found for %q", env)
}

func GetEnv(key string) string {
	return os.Getenv(key)
}

func GetEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func GetIntEnv(key string) int64 {
	return cast.ToInt64(os.Getenv(key))
}
