// Package config loads settings of the plainkv command line tool
// from a YAML file.
//
// ${NAME} in the file is replaced with the value of environment
// variable NAME. It's an error if the variable is not set, which is
// useful for keeping S3 secrets out of the file. A $ that is not part
// of ${NAME} is kept as-is.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/kjk/plainkv/minioutil"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath      = "plainkv.txt"
	DefaultDelimiter = "="
)

type S3 struct {
	Endpoint string `yaml:"endpoint"`
	Access   string `yaml:"access"`
	Secret   string `yaml:"secret"`
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	Insecure bool   `yaml:"insecure"`
}

type Config struct {
	// path of the store file
	Path      string `yaml:"db"`
	Delimiter string `yaml:"delimiter"`
	Atomic    bool   `yaml:"atomic"`
	// directory for log files, no log files if empty
	LogDir  string `yaml:"log_dir"`
	Verbose bool   `yaml:"verbose"`
	S3      S3     `yaml:"s3"`
}

// Default returns config used when there's no config file
func Default() *Config {
	return &Config{
		Path:      DefaultPath,
		Delimiter: DefaultDelimiter,
	}
}

var reEnvVar = regexp.MustCompile(`\${([^}]+)}`)

// ExpandEnvStrict expands ${NAME} references, failing on unset variables.
// Other uses of $ are kept as-is.
func ExpandEnvStrict(s string) (string, error) {
	for _, m := range reEnvVar.FindAllStringSubmatch(s, -1) {
		name := m[1]
		if _, ok := os.LookupEnv(name); !ok {
			return "", fmt.Errorf("environment variable %s is not set", name)
		}
	}
	res := reEnvVar.ReplaceAllStringFunc(s, func(ref string) string {
		name := ref[2 : len(ref)-1]
		return os.Getenv(name)
	})
	return res, nil
}

// Parse parses YAML config. Fields missing in d have default values.
func Parse(d []byte) (*Config, error) {
	expanded, err := ExpandEnvStrict(string(d))
	if err != nil {
		return nil, err
	}
	c := Default()
	if err = yaml.Unmarshal([]byte(expanded), c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err = c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads config from path. If path doesn't exist and
// mustExist is false, returns Default().
func Load(path string, mustExist bool) (*Config, error) {
	d, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !mustExist {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	c, err := Parse(d)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.Path == "" {
		return errors.New("db path is empty")
	}
	if c.Delimiter == "" {
		return errors.New("delimiter is empty")
	}
	return nil
}

// HasS3 returns true if S3 backups are configured
func (c *Config) HasS3() bool {
	return c.S3.Endpoint != "" || c.S3.Bucket != ""
}

// MinioConfig returns config for minioutil.New
func (c *Config) MinioConfig() *minioutil.Config {
	return &minioutil.Config{
		Endpoint: c.S3.Endpoint,
		Access:   c.S3.Access,
		Secret:   c.S3.Secret,
		Bucket:   c.S3.Bucket,
		Region:   c.S3.Region,
		Insecure: c.S3.Insecure,
	}
}
