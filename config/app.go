package config

import (
	"strings"
	"sync"
	"time"
)

// AppConfig holds global application configuration
var AppConfig *Config
var once sync.Once

type Config struct {
	AppName string
	Port    string
	Env     string
	Debug   bool

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	BcryptCost      int

	CorsOrigins []string
	MediaDir    string
	MediaURL    string
	PhoneRegion string

	SearchHost  string
	SearchIndex string

	DashboardCacheTTL time.Duration
	StockLockTTL      time.Duration
}

// LoadAppConfig initializes the global AppConfig variable
func LoadAppConfig() {
	once.Do(func() {
		AppConfig = newConfig()
	})
}

// GetConfig returns AppConfig, loading it on first use.
func GetConfig() *Config {
	LoadAppConfig()
	return AppConfig
}

func newConfig() *Config {
	origins := []string{"*"}
	if v := GetEnv("CORS_ORIGINS", ""); v != "" {
		origins = origins[:0]
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}
	return &Config{
		AppName: GetEnv("APP_NAME", "warehouse.GO"),
		Port:    GetEnv("PORT", "8080"),
		Env:     GetEnv("APP_ENV", "development"),
		Debug:   GetEnv("DEBUG", "") == "true",

		JWTSecret:       GetEnv("JWT_SECRET", "warehouse-dev-secret"),
		AccessTokenTTL:  getEnvDuration("JWT_ACCESS_TTL", 15*time.Minute),
		RefreshTokenTTL: getEnvDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
		BcryptCost:      getEnvInt("BCRYPT_COST", 10),

		CorsOrigins: origins,
		MediaDir:    GetEnv("MEDIA_DIR", "media"),
		MediaURL:    GetEnv("MEDIA_URL", "/media"),
		PhoneRegion: GetEnv("PHONE_REGION", "VN"),

		SearchHost:  GetEnv("ELASTICSEARCH_HOST", ""),
		SearchIndex: GetEnv("ELASTICSEARCH_INDEX", "warehouse_products"),

		DashboardCacheTTL: getEnvDuration("DASHBOARD_CACHE_TTL", time.Minute),
		StockLockTTL:      getEnvDuration("STOCK_LOCK_TTL", 10*time.Second),
	}
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
