package config

import (
	"errors"
	"flag"
	"net"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr          string
	DBUrl         string
	TokenSecret   string
	TokenTTL      time.Duration
	Debug         bool
	RedisURL      string
	SubmitRate    float64
	SubmitBurst   int
	AdminUser     string
	AdminPassword string
	TrustProxy    bool
}

// ParseFlags reads the command line, falling back to environment variables
// (optionally loaded from a .env file) for anything left unset.
func ParseFlags(args []string) (cfg Config, err error) {
	// a missing .env is fine
	_ = godotenv.Load()

	fs := flag.NewFlagSet("teamsurvey", flag.ContinueOnError)

	var host string
	fs.StringVar(&host, "host", getenv("QS_HOST", "0.0.0.0"), "listen host name")
	var port uint
	fs.UintVar(&port, "port", uint(getenvInt("QS_PORT", 80)), "listen port number")
	fs.StringVar(&cfg.DBUrl, "db-url", getenv("DATABASE_URL", "qsurvey.sqlite"), "path to SQLite3 DB file")
	fs.StringVar(&cfg.TokenSecret, "token-secret", os.Getenv("TOKEN_SECRET"), "secret key for token encryption and decryption")
	var ttl uint
	fs.UintVar(&ttl, "token-ttl", uint(getenvInt("TOKEN_TTL", 120)), "token TTL in seconds")
	fs.BoolVar(&cfg.Debug, "debug", os.Getenv("QS_DEBUG") != "", "log at DEBUG level")
	fs.StringVar(&cfg.RedisURL, "redis-url", os.Getenv("REDIS_URL"), "Redis URL for shared rate limiting (in-memory when empty)")
	fs.Float64Var(&cfg.SubmitRate, "submit-rate", getenvFloat("SUBMIT_RATE", 1), "response submissions per second per client")
	fs.IntVar(&cfg.SubmitBurst, "submit-burst", getenvInt("SUBMIT_BURST", 5), "response submission burst per client")
	fs.StringVar(&cfg.AdminUser, "admin-user", os.Getenv("ADMIN_USER"), "admin account to create or update at startup")
	fs.StringVar(&cfg.AdminPassword, "admin-password", os.Getenv("ADMIN_PASSWORD"), "password for -admin-user")
	fs.BoolVar(&cfg.TrustProxy, "trust-proxy", os.Getenv("QS_TRUST_PROXY") != "", "take client IPs from X-Forwarded-For / X-Real-IP (only behind a reverse proxy)")
	if err = fs.Parse(args); err != nil {
		return
	}

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.TokenTTL = time.Duration(ttl) * time.Second

	switch {
	case cfg.TokenSecret == "":
		err = errors.New("missing parameter -token-secret")
	case cfg.AdminUser != "" && cfg.AdminPassword == "":
		err = errors.New("missing parameter -admin-password for -admin-user")
	case cfg.SubmitRate <= 0 || cfg.SubmitBurst < 1:
		err = errors.New("-submit-rate and -submit-burst must be positive")
	}

	return
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	parsed, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvFloat(key string, fallback float64) float64 {
	parsed, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return parsed
}
