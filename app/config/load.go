package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"
)

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: HTTPServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 180 * time.Second,
		},
		LLM: LLMConfig{
			Provider: "gemini",
		},
		Pipeline: PipelineConfig{
			AnalysisTimeout:  30 * time.Second,
			ScaffoldTimeout:  90 * time.Second,
			StylingTimeout:   60 * time.Second,
			RunTimeout:       120 * time.Second,
			PreviewCacheSize: 256,
		},
		Mongo: MongoConfig{
			Database: "uistudio",
		},
		Storage: StorageConfig{
			ArtifactDir: "./artifacts",
		},
		Metrics: MetricsConfig{
			Addr: ":2112",
		},
		Worker: WorkerConfig{
			Interval:    2 * time.Second,
			Concurrency: 2,
		},
	}
}

// Load builds the configuration from defaults, then the optional HCL file at
// path, then a .env file in the working directory, then the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	switch c.LLM.Provider {
	case "gemini", "openai", "gateway", "mock":
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	if c.LLM.Provider == "gateway" && c.LLM.BaseURL == "" {
		return errors.New("llm base_url is required for the gateway provider")
	}
	for name, d := range map[string]time.Duration{
		"analysis_timeout": c.Pipeline.AnalysisTimeout,
		"scaffold_timeout": c.Pipeline.ScaffoldTimeout,
		"styling_timeout":  c.Pipeline.StylingTimeout,
		"run_timeout":      c.Pipeline.RunTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("pipeline %s must be positive", name)
		}
	}
	return nil
}

// Addr is the listen address of the API server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

type fileConfig struct {
	Server *struct {
		Host         string `hcl:"host,optional"`
		Port         int    `hcl:"port,optional"`
		ReadTimeout  string `hcl:"read_timeout,optional"`
		WriteTimeout string `hcl:"write_timeout,optional"`
	} `hcl:"server,block"`
	LLM *struct {
		Provider   string `hcl:"provider,optional"`
		APIKey     string `hcl:"api_key,optional"`
		BaseURL    string `hcl:"base_url,optional"`
		Model      string `hcl:"model,optional"`
		AuthHeader string `hcl:"auth_header,optional"`
	} `hcl:"llm,block"`
	Pipeline *struct {
		AnalysisTimeout  string `hcl:"analysis_timeout,optional"`
		ScaffoldTimeout  string `hcl:"scaffold_timeout,optional"`
		StylingTimeout   string `hcl:"styling_timeout,optional"`
		RunTimeout       string `hcl:"run_timeout,optional"`
		PreviewCacheSize int    `hcl:"preview_cache_size,optional"`
	} `hcl:"pipeline,block"`
	Mongo *struct {
		URI      string `hcl:"uri,optional"`
		Database string `hcl:"database,optional"`
	} `hcl:"mongo,block"`
	Storage *struct {
		ArtifactDir string `hcl:"artifact_dir,optional"`
		S3          *struct {
			Endpoint  string `hcl:"endpoint,optional"`
			Region    string `hcl:"region,optional"`
			Bucket    string `hcl:"bucket,optional"`
			AccessKey string `hcl:"access_key,optional"`
			SecretKey string `hcl:"secret_key,optional"`
			UseSSL    bool   `hcl:"use_ssl,optional"`
		} `hcl:"s3,block"`
	} `hcl:"storage,block"`
	Metrics *struct {
		Addr string `hcl:"addr,optional"`
	} `hcl:"metrics,block"`
	Worker *struct {
		Interval    string `hcl:"interval,optional"`
		Concurrency int    `hcl:"concurrency,optional"`
	} `hcl:"worker,block"`
}

func applyFile(cfg *Config, path string) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("parse config %s: %s", path, diags.Error())
	}
	var fc fileConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &fc); diags.HasErrors() {
		return fmt.Errorf("decode config %s: %s", path, diags.Error())
	}

	var errs []error
	dur := func(dst *time.Duration, field, v string) {
		if v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
			return
		}
		*dst = d
	}

	if s := fc.Server; s != nil {
		setString(&cfg.Server.Host, s.Host)
		setInt(&cfg.Server.Port, s.Port)
		dur(&cfg.Server.ReadTimeout, "server.read_timeout", s.ReadTimeout)
		dur(&cfg.Server.WriteTimeout, "server.write_timeout", s.WriteTimeout)
	}
	if l := fc.LLM; l != nil {
		setString(&cfg.LLM.Provider, l.Provider)
		setString(&cfg.LLM.APIKey, l.APIKey)
		setString(&cfg.LLM.BaseURL, l.BaseURL)
		setString(&cfg.LLM.Model, l.Model)
		setString(&cfg.LLM.AuthHeader, l.AuthHeader)
	}
	if p := fc.Pipeline; p != nil {
		dur(&cfg.Pipeline.AnalysisTimeout, "pipeline.analysis_timeout", p.AnalysisTimeout)
		dur(&cfg.Pipeline.ScaffoldTimeout, "pipeline.scaffold_timeout", p.ScaffoldTimeout)
		dur(&cfg.Pipeline.StylingTimeout, "pipeline.styling_timeout", p.StylingTimeout)
		dur(&cfg.Pipeline.RunTimeout, "pipeline.run_timeout", p.RunTimeout)
		setInt(&cfg.Pipeline.PreviewCacheSize, p.PreviewCacheSize)
	}
	if m := fc.Mongo; m != nil {
		setString(&cfg.Mongo.URI, m.URI)
		setString(&cfg.Mongo.Database, m.Database)
	}
	if st := fc.Storage; st != nil {
		setString(&cfg.Storage.ArtifactDir, st.ArtifactDir)
		if s3 := st.S3; s3 != nil {
			setString(&cfg.Storage.S3.Endpoint, s3.Endpoint)
			setString(&cfg.Storage.S3.Region, s3.Region)
			setString(&cfg.Storage.S3.Bucket, s3.Bucket)
			setString(&cfg.Storage.S3.AccessKey, s3.AccessKey)
			setString(&cfg.Storage.S3.SecretKey, s3.SecretKey)
			cfg.Storage.S3.UseSSL = cfg.Storage.S3.UseSSL || s3.UseSSL
		}
	}
	if m := fc.Metrics; m != nil {
		setString(&cfg.Metrics.Addr, m.Addr)
	}
	if w := fc.Worker; w != nil {
		dur(&cfg.Worker.Interval, "worker.interval", w.Interval)
		setInt(&cfg.Worker.Concurrency, w.Concurrency)
	}
	if len(errs) > 0 {
		return fmt.Errorf("config %s: %w", path, errors.Join(errs...))
	}
	return nil
}

func applyEnv(cfg *Config) error {
	var errs []error
	dur := func(dst *time.Duration, key string) {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	num := func(dst *int, key string) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	num(&cfg.Server.Port, "SERVER_PORT")

	cfg.LLM.Provider = strings.ToLower(getEnv("LLM_PROVIDER", cfg.LLM.Provider))
	cfg.LLM.APIKey = getEnv("LLM_API_KEY", cfg.LLM.APIKey)
	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "gemini":
			cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
	cfg.LLM.Model = getEnv("LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.BaseURL = getEnv("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.AuthHeader = getEnv("LLM_AUTH_HEADER", cfg.LLM.AuthHeader)

	dur(&cfg.Pipeline.AnalysisTimeout, "PIPELINE_ANALYSIS_TIMEOUT")
	dur(&cfg.Pipeline.ScaffoldTimeout, "PIPELINE_SCAFFOLD_TIMEOUT")
	dur(&cfg.Pipeline.StylingTimeout, "PIPELINE_STYLING_TIMEOUT")
	dur(&cfg.Pipeline.RunTimeout, "PIPELINE_RUN_TIMEOUT")
	num(&cfg.Pipeline.PreviewCacheSize, "PREVIEW_CACHE_SIZE")

	cfg.Mongo.URI = getEnv("MONGO_URI", cfg.Mongo.URI)
	cfg.Mongo.Database = getEnv("MONGO_DB", cfg.Mongo.Database)

	cfg.Storage.ArtifactDir = getEnv("CONFIG_DIR", cfg.Storage.ArtifactDir)
	cfg.Storage.S3.Endpoint = getEnv("ARTIFACT_S3_ENDPOINT", cfg.Storage.S3.Endpoint)
	cfg.Storage.S3.Region = getEnv("ARTIFACT_S3_REGION", cfg.Storage.S3.Region)
	cfg.Storage.S3.Bucket = getEnv("ARTIFACT_S3_BUCKET", cfg.Storage.S3.Bucket)
	cfg.Storage.S3.AccessKey = getEnv("ARTIFACT_S3_ACCESS_KEY", cfg.Storage.S3.AccessKey)
	cfg.Storage.S3.SecretKey = getEnv("ARTIFACT_S3_SECRET_KEY", cfg.Storage.S3.SecretKey)
	if v := os.Getenv("ARTIFACT_S3_USE_SSL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("ARTIFACT_S3_USE_SSL: %w", err))
		}
		cfg.Storage.S3.UseSSL = b
	}

	cfg.Metrics.Addr = getEnv("METRICS_ADDR", cfg.Metrics.Addr)
	dur(&cfg.Worker.Interval, "WORKER_INTERVAL")
	num(&cfg.Worker.Concurrency, "WORKER_CONCURRENCY")

	if len(errs) > 0 {
		return fmt.Errorf("environment: %w", errors.Join(errs...))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
