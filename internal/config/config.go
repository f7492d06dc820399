package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"pharmstock/m/domain"
)

// Config holds application configuration values.
type Config struct {
	Secret           string
	HTTPPort         string
	DatabaseDriver   string
	DatabaseDSN      string
	PublicBaseURL    string
	CategoryPassword string
	AdminPassword    string
	HorizonMonths    int
	NotificationDays int
	LowStockAt       int
	Roster           domain.Roster
	SeedCSV          string
}

// Load reads configuration from environment variables with reasonable defaults.
func Load() Config {
	port := getenv("HTTP_PORT", "8080")
	// Validate that port is numeric.
	if _, err := strconv.Atoi(port); err != nil {
		log.Printf("invalid HTTP_PORT value %q, defaulting to 8080", port)
		port = "8080"
	}

	driver := getenv("DATABASE_DRIVER", "sqlite")
	switch driver {
	case "sqlite", "pgx", "memory":
	default:
		log.Printf("unknown DATABASE_DRIVER %q, defaulting to sqlite", driver)
		driver = "sqlite"
	}

	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		switch driver {
		case "pgx":
			dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
				getenv("DB_USER", "postgres"), os.Getenv("DB_PASSWORD"),
				getenv("DB_HOST", "localhost"), getenv("DB_PORT", "5432"), getenv("DB_NAME", "pharmstock"))
		case "sqlite":
			dsn = "pharmstock.db"
		}
	}

	roster := domain.Roster(domain.DefaultEmployees)
	if path := os.Getenv("ROSTER_FILE"); path != "" {
		loaded, err := LoadRoster(path)
		if err != nil {
			log.Printf("unable to load roster %s, using default: %v", path, err)
		} else {
			roster = loaded
		}
	}

	return Config{
		Secret:           getenv("SECRET", "dev_secret"),
		HTTPPort:         port,
		DatabaseDriver:   driver,
		DatabaseDSN:      dsn,
		PublicBaseURL:    getenv("PUBLIC_BASE_URL", "http://localhost:"+port),
		CategoryPassword: getenv("CATEGORY_PASSWORD", "964"),
		AdminPassword:    getenv("ADMIN_PASSWORD", "000"),
		HorizonMonths:    getint("EXPIRY_HORIZON_MONTHS", 3),
		NotificationDays: getint("NOTIFICATION_DAYS", 30),
		LowStockAt:       getint("LOW_STOCK_AT", 0),
		Roster:           roster,
		SeedCSV:          os.Getenv("SEED_CSV"),
	}
}

type rosterFile struct {
	Employees []string `yaml:"employees"`
}

// LoadRoster reads a YAML file of the form "employees: [a, b, c]". Blank and repeated
// names are dropped.
func LoadRoster(path string) (domain.Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f rosterFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	roster := domain.Roster{}
	for _, name := range f.Employees {
		name = strings.TrimSpace(name)
		if name == "" || roster.Contains(name) {
			continue
		}
		roster = append(roster, name)
	}
	if len(roster) == 0 {
		return nil, fmt.Errorf("roster %s lists no employees", path)
	}
	return roster, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("invalid %s value %q, defaulting to %d", key, raw, fallback)
		return fallback
	}
	return n
}
