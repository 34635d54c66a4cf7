package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// AppEnvKey selects the .env.{APP_ENV} overlay
const AppEnvKey = "APP_ENV"

// LoadEnv loads dir/.env then overloads it with dir/.env.$APP_ENV.
// Missing files are skipped. It returns the files actually loaded.
func LoadEnv(dir string) ([]string, error) {
	var loaded []string
	base := filepath.Join(dir, ".env")
	if err := godotenv.Load(base); err == nil {
		loaded = append(loaded, base)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return loaded, err
	}
	appEnv := os.Getenv(AppEnvKey)
	if appEnv == "" {
		return loaded, nil
	}
	overlay := filepath.Join(dir, ".env."+appEnv)
	if err := godotenv.Overload(overlay); err == nil {
		loaded = append(loaded, overlay)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return loaded, err
	}
	return loaded, nil
}
