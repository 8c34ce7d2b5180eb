package server

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"taskdeck/internal/domain/errors"
)

type Config struct {
	Addr        string
	Port        int
	DBStr       string
	MigratePath string
	TokenSecret string `json:"-"`
}

const (
	defaultAddr        = "0.0.0.0"
	defaultPort        = 8080
	defaultDBStr       = "postgresql://taskdeck:taskdeck@db:5432/taskdeck?sslmode=disable"
	defaultMigratePath = "migrations"
)

var (
	addr        = flag.String("addr", defaultAddr, "server listen address")
	port        = flag.Int("port", defaultPort, "server listen port")
	dbstr       = flag.String("dbstr", defaultDBStr, "database connection string")
	migratePath = flag.String("migratepath", defaultMigratePath, "path to the migrations directory")
	configFile  = flag.String("c", "", "path to a JSON configuration file")
	parsed      = false
)

// ReadConfig builds the configuration in three layers: defaults, then an
// optional JSON file, then environment variables, then explicitly set flags.
// The token secret is taken from the environment only so it never shows up
// in argv.
func ReadConfig() *Config {
	if !parsed {
		flag.Parse()
		parsed = true
	}

	cfg := &Config{
		Addr:        defaultAddr,
		Port:        defaultPort,
		DBStr:       defaultDBStr,
		MigratePath: defaultMigratePath,
	}

	if jsonConfig := loadJSONConfig(); jsonConfig != nil {
		cfg = jsonConfig
	}

	applyEnvOverrides(cfg)
	applyFlagOverrides(cfg)

	return cfg
}

func loadJSONConfig() *Config {
	configPath := *configFile
	if configPath == "" {
		configPath = os.Getenv("CONFIG")
	}
	if configPath == "" {
		return nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		log.Printf("[WARN] %s %s: %v", errors.ErrConfigFileReadFailed.Error(), configPath, err)
		return nil
	}

	var jsonConfig Config
	if err := json.Unmarshal(data, &jsonConfig); err != nil {
		log.Printf("[WARN] %s: %v", errors.ErrConfigParseFailed.Error(), err)
		return nil
	}

	log.Println("[SUCCESS] JSON configuration loaded from:", configPath)
	return &jsonConfig
}

func applyEnvOverrides(cfg *Config) {
	if addr := os.Getenv("ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err != nil {
			log.Printf("[WARN] %s in PORT: %s", errors.ErrConfigInvalidFormat.Error(), port)
		} else if p < 1 || p > 65535 {
			log.Printf("[WARN] %s, port must be between 1 and 65535: %d", errors.ErrConfigInvalidFormat.Error(), p)
		} else {
			cfg.Port = p
		}
	}
	if dbStr := os.Getenv("DB_STR"); dbStr != "" {
		cfg.DBStr = dbStr
	}
	if migratePath := os.Getenv("MIGRATE_PATH"); migratePath != "" {
		cfg.MigratePath = migratePath
	}
	if secret := os.Getenv("TOKEN_SECRET"); secret != "" {
		cfg.TokenSecret = secret
	}

	if cfg.DBStr == defaultDBStr {
		dbUser := os.Getenv("DB_USER")
		dbPassword := os.Getenv("DB_PASSWORD")
		dbName := os.Getenv("DB_NAME")
		dbHost := os.Getenv("DB_HOST")
		dbPort := os.Getenv("DB_PORT")
		if dbUser != "" && dbPassword != "" && dbName != "" && dbHost != "" && dbPort != "" {
			cfg.DBStr = fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=disable", dbUser, dbPassword, dbHost, dbPort, dbName)
		}
	}
}

// applyFlagOverrides applies only flags the caller actually set, so
// environment values survive when the flag keeps its default.
func applyFlagOverrides(cfg *Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addr
		case "port":
			cfg.Port = *port
		case "dbstr":
			cfg.DBStr = *dbstr
		case "migratepath":
			cfg.MigratePath = *migratePath
		}
	})
}
