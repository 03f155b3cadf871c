package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting of a run. CollectReplies left unset means on in
// replies mode and off in search mode.
type Config struct {
	Mode                   string   `mapstructure:"MODE"`
	APIKeys                string   `mapstructure:"API_KEYS"`
	APIKeyOverride         []string `mapstructure:"API_KEY_OVERRIDE"`
	VideoIDs               []string `mapstructure:"VIDEO_IDS"`
	Query                  string   `mapstructure:"QUERY"`
	MaxSeeds               int      `mapstructure:"MAX_SEEDS"`
	CollectComments        bool     `mapstructure:"COLLECT_COMMENTS"`
	CollectReplies         *bool    `mapstructure:"COLLECT_REPLIES"`
	CommentsPerVideo       int      `mapstructure:"COMMENTS_PER_VIDEO"`
	BuildSimilarity        bool     `mapstructure:"BUILD_SIMILARITY"`
	TopK                   int      `mapstructure:"TOP_K"`
	MinSim                 float64  `mapstructure:"MIN_SIM"`
	OutDir                 string   `mapstructure:"OUTDIR"`
	RegionCode             string   `mapstructure:"REGION_CODE"`
	RelevanceLanguage      string   `mapstructure:"RELEVANCE_LANGUAGE"`
	Identity               string   `mapstructure:"IDENTITY"`
	CountRepliesAsComments bool     `mapstructure:"COUNT_REPLIES_AS_COMMENTS"`
	EdgeWeightColumn       string   `mapstructure:"EDGE_WEIGHT_COLUMN"`
	SaveDataOption         string   `mapstructure:"SAVE_DATA_OPTION"`
	WriteGraphML           bool     `mapstructure:"WRITE_GRAPHML"`
	SaveRawPages           bool     `mapstructure:"SAVE_RAW_PAGES"`
	RawCompress            bool     `mapstructure:"RAW_COMPRESS"`

	StoreBackend string `mapstructure:"STORE_BACKEND"`
	SQLitePath   string `mapstructure:"SQLITE_PATH"`
	MySQLDSN     string `mapstructure:"MYSQL_DSN"`
	PostgresDSN  string `mapstructure:"POSTGRES_DSN"`
	MongoURI     string `mapstructure:"MONGO_URI"`
	MongoDB      string `mapstructure:"MONGO_DB"`

	CacheBackend       string `mapstructure:"CACHE_BACKEND"`
	CacheDefaultTTLSec int    `mapstructure:"CACHE_DEFAULT_TTL_SEC"`
	FreecacheSizeMB    int    `mapstructure:"FREECACHE_SIZE_MB"`
	RedisAddr          string `mapstructure:"REDIS_ADDR"`
	RedisPassword      string `mapstructure:"REDIS_PASSWORD"`
	RedisDB            int    `mapstructure:"REDIS_DB"`
	RedisKeyPrefix     string `mapstructure:"REDIS_KEY_PREFIX"`

	S3Endpoint        string `mapstructure:"S3_ENDPOINT"`
	S3Region          string `mapstructure:"S3_REGION"`
	S3Bucket          string `mapstructure:"S3_BUCKET"`
	S3AccessKeyID     string `mapstructure:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `mapstructure:"S3_SECRET_ACCESS_KEY"`
	S3Prefix          string `mapstructure:"S3_PREFIX"`

	APIBaseURL      string  `mapstructure:"API_BASE_URL"`
	HttpTimeoutSec  int     `mapstructure:"HTTP_TIMEOUT_SEC"`
	HttpRetryWaitMs int     `mapstructure:"HTTP_RETRY_WAIT_MS"`
	RequestsPerSec  float64 `mapstructure:"REQUESTS_PER_SEC"`
	ProxyList       string  `mapstructure:"PROXY_LIST"`
	ProxyFile       string  `mapstructure:"PROXY_FILE"`

	LogLevel        string `mapstructure:"LOG_LEVEL"`
	LogFormat       string `mapstructure:"LOG_FORMAT"`
	LogFile         string `mapstructure:"LOG_FILE"`
	MetricsTextfile string `mapstructure:"METRICS_TEXTFILE"`
}

var AppConfig Config

var ErrNoAPIKey = errors.New("missing API key: pass --api-key or set YOUTUBE_API_KEY / YT_NETWORK_API_KEYS")

func SetDefaults(v *viper.Viper) {
	v.SetDefault("MODE", "replies")
	v.SetDefault("API_KEYS", "")
	v.SetDefault("API_KEY_OVERRIDE", []string{})
	v.SetDefault("VIDEO_IDS", []string{})
	v.SetDefault("QUERY", "")
	v.SetDefault("MAX_SEEDS", 50)
	v.SetDefault("COLLECT_COMMENTS", false)
	_ = v.BindEnv("COLLECT_REPLIES")
	v.SetDefault("COMMENTS_PER_VIDEO", 0)
	v.SetDefault("BUILD_SIMILARITY", false)
	v.SetDefault("TOP_K", 5)
	v.SetDefault("MIN_SIM", 0.25)
	v.SetDefault("OUTDIR", "data/raw")
	v.SetDefault("REGION_CODE", "")
	v.SetDefault("RELEVANCE_LANGUAGE", "")
	v.SetDefault("IDENTITY", "display_name")
	v.SetDefault("COUNT_REPLIES_AS_COMMENTS", false)
	v.SetDefault("EDGE_WEIGHT_COLUMN", "peso")
	v.SetDefault("SAVE_DATA_OPTION", "csv")
	v.SetDefault("WRITE_GRAPHML", true)
	v.SetDefault("SAVE_RAW_PAGES", false)
	v.SetDefault("RAW_COMPRESS", false)
	v.SetDefault("STORE_BACKEND", "file")
	v.SetDefault("SQLITE_PATH", "data/yt_network.db")
	v.SetDefault("MYSQL_DSN", "")
	v.SetDefault("POSTGRES_DSN", "")
	v.SetDefault("MONGO_URI", "")
	v.SetDefault("MONGO_DB", "yt_network")
	v.SetDefault("CACHE_BACKEND", "none")
	v.SetDefault("CACHE_DEFAULT_TTL_SEC", 3600)
	v.SetDefault("FREECACHE_SIZE_MB", 64)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_KEY_PREFIX", "yt_network:")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_ACCESS_KEY_ID", "")
	v.SetDefault("S3_SECRET_ACCESS_KEY", "")
	v.SetDefault("S3_PREFIX", "yt-network")
	v.SetDefault("API_BASE_URL", "https://www.googleapis.com/youtube/v3")
	v.SetDefault("HTTP_TIMEOUT_SEC", 30)
	v.SetDefault("HTTP_RETRY_WAIT_MS", 2000)
	v.SetDefault("REQUESTS_PER_SEC", 0)
	v.SetDefault("PROXY_LIST", "")
	v.SetDefault("PROXY_FILE", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("METRICS_TEXTFILE", "")
}

// LoadConfig reads path/config.yaml (optional), the .env file of the working
// directory (optional) and YT_NETWORK_* environment variables into AppConfig.
func LoadConfig(path string) error {
	return LoadInto(viper.GetViper(), path)
}

func LoadInto(v *viper.Viper, path string) error {
	_ = godotenv.Load()

	if path != "" {
		v.AddConfigPath(path)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	SetDefaults(v)

	v.SetEnvPrefix("YT_NETWORK")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return err
	}
	Normalize(&cfg)
	AppConfig = cfg
	return nil
}

// APIKeysList returns the ordered, de-duplicated credential list. Keys given on
// the command line replace every other source.
func (c Config) APIKeysList() []string {
	if keys := splitAll(c.APIKeyOverride); len(keys) > 0 {
		return dedupe(keys)
	}
	keys := splitCSV(c.APIKeys)
	for _, name := range []string{"YOUTUBE_API_KEY", "YT_API_KEY"} {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			keys = append(keys, v)
		}
	}
	return dedupe(keys)
}

func (c Config) VideoIDList() []string {
	return dedupe(splitAll(c.VideoIDs))
}

func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.Mode = strings.ToLower(strings.TrimSpace(cfg.Mode))
	cfg.SaveDataOption = strings.ToLower(strings.TrimSpace(cfg.SaveDataOption))
	if cfg.SaveDataOption == "excel" {
		cfg.SaveDataOption = "xlsx"
	}
	if cfg.SaveDataOption == "" {
		cfg.SaveDataOption = "csv"
	}
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	cfg.CacheBackend = strings.ToLower(strings.TrimSpace(cfg.CacheBackend))
	switch strings.ToLower(strings.TrimSpace(cfg.Identity)) {
	case "channel", "channel_id", "channelid":
		cfg.Identity = "channel_id"
	default:
		cfg.Identity = "display_name"
	}
	cfg.EdgeWeightColumn = strings.TrimSpace(cfg.EdgeWeightColumn)
	if cfg.EdgeWeightColumn == "" {
		cfg.EdgeWeightColumn = "peso"
	}
	cfg.RegionCode = strings.ToUpper(strings.TrimSpace(cfg.RegionCode))
	cfg.RelevanceLanguage = strings.ToLower(strings.TrimSpace(cfg.RelevanceLanguage))
	if cfg.MinSim < 0 {
		cfg.MinSim = 0
	}
	if cfg.MinSim > 1 {
		cfg.MinSim = 1
	}
	if cfg.TopK < 0 {
		cfg.TopK = 0
	}
}

// splitAll flattens entries that may themselves be comma separated, which is
// what env vars and repeated flags both produce.
func splitAll(in []string) []string {
	var out []string
	for _, s := range in {
		out = append(out, splitCSV(s)...)
	}
	return out
}

func splitCSV(s string) []string {
	v := strings.TrimSpace(s)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
