package config

import "time"

type Config struct {
	Server   HTTPServerConfig `json:"server"`
	LLM      LLMConfig        `json:"llm"`
	Pipeline PipelineConfig   `json:"pipeline"`
	Mongo    MongoConfig      `json:"mongo"`
	Storage  StorageConfig    `json:"storage"`
	Metrics  MetricsConfig    `json:"metrics"`
	Worker   WorkerConfig     `json:"worker"`
}

type HTTPServerConfig struct {
	Host         string        `json:"host" default:"0.0.0.0"`
	Port         int           `json:"port" default:"8080"`
	ReadTimeout  time.Duration `json:"read_timeout" default:"30s"`
	WriteTimeout time.Duration `json:"write_timeout" default:"180s"`
}

type LLMConfig struct {
	Provider   string `json:"provider" default:"gemini"` // gemini, openai, gateway, mock
	APIKey     string `json:"api_key"`
	BaseURL    string `json:"base_url"`
	Model      string `json:"model"`
	AuthHeader string `json:"auth_header"`
}

type PipelineConfig struct {
	AnalysisTimeout  time.Duration `json:"analysis_timeout" default:"30s"`
	ScaffoldTimeout  time.Duration `json:"scaffold_timeout" default:"90s"`
	StylingTimeout   time.Duration `json:"styling_timeout" default:"60s"`
	RunTimeout       time.Duration `json:"run_timeout" default:"120s"`
	PreviewCacheSize int           `json:"preview_cache_size" default:"256"`
}

// MongoConfig is optional; runs are kept in memory when URI is empty.
type MongoConfig struct {
	URI      string `json:"uri"`
	Database string `json:"database" default:"uistudio"`
}

type StorageConfig struct {
	ArtifactDir string   `json:"artifact_dir" default:"./artifacts"`
	S3          S3Config `json:"s3"`
}

// S3Config enables the bucket artifact store when Endpoint is set.
type S3Config struct {
	Endpoint  string `json:"endpoint"`
	Region    string `json:"region"`
	Bucket    string `json:"bucket"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	UseSSL    bool   `json:"use_ssl"`
}

type MetricsConfig struct {
	Addr string `json:"addr" default:":2112"`
}

type WorkerConfig struct {
	Interval    time.Duration `json:"interval" default:"2s"`
	Concurrency int           `json:"concurrency" default:"2"`
}
