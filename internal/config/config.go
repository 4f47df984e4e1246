package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env           string            `yaml:"env" env:"ENV" env-default:"local"`
	DSN           string            `yaml:"dsn" env:"DSN" env-required:"true"`
	SessionTTL    time.Duration     `yaml:"session_ttl" env:"SESSION_TTL" env-default:"24h"`
	SessionSecret string            `yaml:"session_secret" env:"SESSION_SECRET" env-required:"true"`
	HTTP          HTTPConfig        `yaml:"http"`
	FileStorage   FileStorageConfig `yaml:"file_storage"`
	ObjectStorage ObjectStorageConf `yaml:"object_storage"`
	Upload        UploadConfig      `yaml:"upload"`
	Redis         RedisConf         `yaml:"redis"`
	Cache         CacheConf         `yaml:"cache"`
	Billing       BillingConf       `yaml:"billing"`
}

type HTTPConfig struct {
	Host      string `yaml:"host"`
	Port      string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	BodyLimit string `yaml:"body_limit" env-default:"60M"`
}

// FileStorageConfig describes the two local directories every processed
// artifact is written to. UploadsDir is served by this process under
// BaseURL, PublicDir is the mirror used by the client's static host.
type FileStorageConfig struct {
	UploadsDir string `yaml:"uploads_dir" env:"UPLOADS_DIR" env-default:"./uploads"`
	PublicDir  string `yaml:"public_dir" env:"PUBLIC_UPLOADS_DIR" env-default:"./client/public/uploads"`
	WorkDir    string `yaml:"work_dir" env-default:""`
	BaseURL    string `yaml:"base_url" env-default:"/uploads"`
}

// ObjectStorageConf enables an optional S3-compatible mirror.
type ObjectStorageConf struct {
	Enabled   bool   `yaml:"enabled" env:"S3_ENABLED"`
	Endpoint  string `yaml:"endpoint" env:"S3_ENDPOINT"`
	AccessKey string `yaml:"access_key" env:"S3_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"S3_SECRET_KEY"`
	Bucket    string `yaml:"bucket" env:"S3_BUCKET"`
	UseSSL    bool   `yaml:"use_ssl" env:"S3_USE_SSL"`
}

// UploadPolicy bounds a single upload endpoint. Zero fields fall back to the
// endpoint's defaults.
type UploadPolicy struct {
	MaxFileSize int64 `yaml:"max_file_size"`
	MinWidth    int   `yaml:"min_width"`
	MinHeight   int   `yaml:"min_height"`
	MaxWidth    int   `yaml:"max_width"`
	MaxHeight   int   `yaml:"max_height"`
	Quality     int   `yaml:"quality"`
}

type UploadConfig struct {
	Gallery UploadPolicy `yaml:"gallery"`
	Content UploadPolicy `yaml:"content"`
	Profile UploadPolicy `yaml:"profile"`
}

type RedisConf struct {
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB"`
}

type CacheConf struct {
	CreatorStatusTTL time.Duration `yaml:"creator_status_ttl" env-default:"30s"`
}

// BillingConf prices the stubbed payment flow. No processor is called.
type BillingConf struct {
	SubscriptionPeriod time.Duration `yaml:"subscription_period" env-default:"720h"`
	ItemPriceCents     int64         `yaml:"item_price_cents" env-default:"499"`
}

const mb = 1024 * 1024

var (
	DefaultGalleryPolicy = UploadPolicy{
		MaxFileSize: 5 * mb,
		MinWidth:    400,
		MinHeight:   400,
		MaxWidth:    1920,
		MaxHeight:   1080,
		Quality:     85,
	}

	DefaultContentPolicy = UploadPolicy{
		MaxFileSize: 50 * mb,
		MinWidth:    480,
		MinHeight:   360,
		MaxWidth:    2000,
		MaxHeight:   2000,
		Quality:     80,
	}

	DefaultProfilePolicy = UploadPolicy{
		MaxFileSize: 5 * mb,
		MinWidth:    400,
		MinHeight:   400,
		MaxWidth:    1200,
		MaxHeight:   800,
		Quality:     85,
	}
)

// WithDefaults fills every zero field of p from def.
func (p UploadPolicy) WithDefaults(def UploadPolicy) UploadPolicy {
	if p.MaxFileSize <= 0 {
		p.MaxFileSize = def.MaxFileSize
	}
	if p.MinWidth <= 0 {
		p.MinWidth = def.MinWidth
	}
	if p.MinHeight <= 0 {
		p.MinHeight = def.MinHeight
	}
	if p.MaxWidth <= 0 {
		p.MaxWidth = def.MaxWidth
	}
	if p.MaxHeight <= 0 {
		p.MaxHeight = def.MaxHeight
	}
	if p.Quality <= 0 || p.Quality > 100 {
		p.Quality = def.Quality
	}

	return p
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}

	return MustLoadPath(path)
}

func MustLoadPath(configPath string) *Config {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	cfg.Upload.Gallery = cfg.Upload.Gallery.WithDefaults(DefaultGalleryPolicy)
	cfg.Upload.Content = cfg.Upload.Content.WithDefaults(DefaultContentPolicy)
	cfg.Upload.Profile = cfg.Upload.Profile.WithDefaults(DefaultProfilePolicy)

	if cfg.FileStorage.WorkDir == "" {
		cfg.FileStorage.WorkDir = os.TempDir()
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	// --config="path/to/config.yaml"
	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
