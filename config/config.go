package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/folio/ai"
	"github.com/poiesic/folio/core"
	"gopkg.in/yaml.v3"
)

// File store types.
const (
	FileStoreFilesystem = "filesystem"
	FileStoreS3         = "s3"
	FileStorePostgres   = "postgres"
)

// FileStore selects and configures where preview PDFs are kept.
// An empty Type disables the file store.
type FileStore struct {
	Type      string `yaml:"type"`
	BasePath  string `yaml:"base_path"`
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// VectorStore holds the connection URL and default collection of the index.
type VectorStore struct {
	URL        string `yaml:"url"`
	Collection string `yaml:"collection"`
}

// Converter configures the external programs used for PDF conversion.
type Converter struct {
	Soffice   string        `yaml:"soffice"`
	Pandoc    string        `yaml:"pandoc"`
	UsePandoc bool          `yaml:"use_pandoc"`
	Timeout   time.Duration `yaml:"timeout"`
	CodeStyle string        `yaml:"code_style"`
}

// Ingestion configures batch ingestion.
type Ingestion struct {
	Workers int `yaml:"workers"`
}

// Config is the root configuration.
type Config struct {
	TempRoot    string      `yaml:"temp_root"`
	FileStore   FileStore   `yaml:"file_store"`
	VectorStore VectorStore `yaml:"vector_store"`
	AI          ai.Config   `yaml:"ai"`
	Converter   Converter   `yaml:"converter"`
	Ingestion   Ingestion   `yaml:"ingestion"`
}

// Default returns the configuration used when nothing else is given.
func Default() *Config {
	return &Config{
		VectorStore: VectorStore{Collection: core.DefaultCollection},
		AI:          *ai.DefaultConfig(),
		Converter: Converter{
			Soffice:   "soffice",
			Pandoc:    "pandoc",
			Timeout:   2 * time.Minute,
			CodeStyle: "github",
		},
	}
}

// LoadOption customizes Load.
type LoadOption func(*loader)

type loader struct {
	dotenv string
	lookup func(string) (string, bool)
}

// WithDotEnv reads variables from file instead of ./.env.
func WithDotEnv(file string) LoadOption {
	return func(l *loader) {
		l.dotenv = file
	}
}

// WithLookup replaces the process environment, mainly for tests.
func WithLookup(lookup func(string) (string, bool)) LoadOption {
	return func(l *loader) {
		l.lookup = lookup
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty), the .env file if present, and the environment. Later
// sources win; a variable set in the environment beats one in .env.
func Load(path string, opts ...LoadOption) (*Config, error) {
	l := &loader{dotenv: ".env", lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(l)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	dotenv, err := godotenv.Read(l.dotenv)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", l.dotenv, err)
	}
	lookup := func(key string) (string, bool) {
		if v, ok := l.lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"TMP_FILES_ROOT":                &c.TempRoot,
		"FILE_STORE_TYPE":               &c.FileStore.Type,
		"FILESTORE_FILESYSTEM_BASEPATH": &c.FileStore.BasePath,
		"FILESTORE_S3_ENDPOINT":         &c.FileStore.Endpoint,
		"FILESTORE_S3_BUCKET":           &c.FileStore.Bucket,
		"FILESTORE_S3_REGION":           &c.FileStore.Region,
		"FILESTORE_S3_ACCESS_KEY":       &c.FileStore.AccessKey,
		"FILESTORE_S3_SECRET_KEY":       &c.FileStore.SecretKey,
		"STORE_PGVECTOR_URL":            &c.VectorStore.URL,
		"STORE_PGVECTOR_INDEX_NAME":     &c.VectorStore.Collection,
		"EMBEDDING_HOST":                &c.AI.EmbeddingHost,
		"EMBEDDING_MODEL":               &c.AI.EmbeddingModel,
		"EMBEDDING_API_KEY":             &c.AI.APIKey,
		"SOFFICE_BINARY":                &c.Converter.Soffice,
		"PANDOC_BINARY":                 &c.Converter.Pandoc,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("FILESTORE_S3_USE_SSL"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("FILESTORE_S3_USE_SSL: %w", err)
		}
		c.FileStore.UseSSL = b
	}
	if v, ok := lookup("EMBEDDING_BATCH_SIZE"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("EMBEDDING_BATCH_SIZE: %w", err)
		}
		c.AI.BatchSize = n
	}
	return nil
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if c.VectorStore.URL == "" {
		return fmt.Errorf("%w: vector store url (STORE_PGVECTOR_URL)", core.ErrConfigurationMissing)
	}
	if err := c.AI.Validate(); err != nil {
		return err
	}
	if c.Converter.Timeout < 0 {
		return errors.New("config: converter timeout must not be negative")
	}
	return nil
}
