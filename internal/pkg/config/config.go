package config

import (
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sebastienferry/mongo-opcode-emulator/internal/pkg/log"
	"github.com/spf13/pflag"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
	"gopkg.in/yaml.v2"
)

const (
	DefaultListen       = ":3000"
	DefaultWriteConcern = "acknowledged"
)

type MongoConfig struct {
	// The address of the MongoDB server the removes are executed against
	Target string `json:"target" yaml:"target"`
}

type EmulationConfig struct {
	// Write concern applied when a request does not carry one
	WriteConcern string `yaml:"write_concern"`
	// Deadline of a single remove, 0 means none
	Timeout time.Duration `yaml:"timeout"`

	// Databases removes may target, empty means all of them
	Databases   []string        `yaml:"databases"`
	DatabasesIn map[string]bool `yaml:"-"`

	// Collection whitelist/blacklist
	Filters    map[string][]string `yaml:"filters"`
	FiltersIn  map[string]bool     `yaml:"-"`
	FiltersOut map[string]bool     `yaml:"-"`
}

type ApiConfig struct {
	Listen string `yaml:"listen"`
}

type AppConfig struct {
	// Application logging configuration
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`

	Mongo     MongoConfig     `yaml:"mongo"`
	Emulation EmulationConfig `yaml:"emulation"`
	Api       ApiConfig       `yaml:"api"`

	// Features flags
	Features        []string        `yaml:"features"`
	FeaturesEnabled map[string]bool `yaml:"-"`
}

// NewConfig returns a new Config struct
func NewConfig() *AppConfig {
	return &AppConfig{}
}

var Current *AppConfig = NewConfig()

// LoadConfig loads the configuration from the file named by the
// CONFIG_FILE_PATH environment variable or the -c flag.
func (c *AppConfig) LoadConfig(args []string) error {

	flags := pflag.NewFlagSet("opcode-emulator", pflag.ContinueOnError)
	configFileArg := flags.StringP("config", "c", "", "configuration file path")
	if err := flags.Parse(args); err != nil {
		return err
	}

	// Fetch the environment variable
	configFilePath := os.Getenv("CONFIG_FILE_PATH")
	if configFilePath == "" {
		configFilePath = *configFileArg
	}
	log.Info("configuration file path: ", configFilePath)

	// Open the configuration file
	f, err := os.Open(configFilePath)
	if err != nil {
		return errors.Wrap(err, "error opening configuration file")
	}
	defer f.Close()

	return c.Load(f)
}

// Load decodes a YAML configuration, applies the environment overrides and
// the defaults, then validates the result.
func (c *AppConfig) Load(r io.Reader) error {

	// Decode the configuration file
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(c); err != nil && err != io.EOF {
		return errors.Wrap(err, "error decoding configuration file")
	}

	// Override the log level if set in the environment
	if os.Getenv("LOG_LEVEL") != "" {
		c.Logging.Level = os.Getenv("LOG_LEVEL")
	}
	if c.Logging.Level == "" {
		c.Logging.Level = log.InfoLevel
	}

	// Override the target if set in the environment
	if os.Getenv("TARGET") != "" {
		c.Mongo.Target = os.Getenv("TARGET")
	}

	if c.Api.Listen == "" {
		c.Api.Listen = DefaultListen
	}
	if c.Emulation.WriteConcern == "" {
		c.Emulation.WriteConcern = DefaultWriteConcern
	}

	c.Emulation.DatabasesIn = make(map[string]bool)
	for _, db := range c.Emulation.Databases {
		c.Emulation.DatabasesIn[db] = true
	}

	// Initialize the filters
	c.Emulation.FiltersIn = make(map[string]bool)
	for _, filter := range c.Emulation.Filters["in"] {
		c.Emulation.FiltersIn[filter] = true
	}

	c.Emulation.FiltersOut = make(map[string]bool)
	for _, filter := range c.Emulation.Filters["out"] {
		c.Emulation.FiltersOut[filter] = true
	}

	// Features
	c.FeaturesEnabled = make(map[string]bool)
	for _, feature := range c.Features {
		c.FeaturesEnabled[strings.TrimSpace(feature)] = true
	}

	return c.Validate()
}

func (c *AppConfig) Validate() error {
	if c.Mongo.Target == "" {
		return errors.New("mongo.target is required")
	}
	if c.Emulation.Timeout < 0 {
		return errors.New("emulation.timeout must not be negative")
	}
	if _, err := ParseWriteConcern(c.Emulation.WriteConcern); err != nil {
		return errors.Wrap(err, "emulation.write_concern")
	}
	return nil
}

// DefaultWriteConcernValue returns the configured write concern. It is only
// called on a validated configuration.
func (c *AppConfig) DefaultWriteConcernValue() *writeconcern.WriteConcern {
	wc, err := ParseWriteConcern(c.Emulation.WriteConcern)
	if err != nil {
		return writeconcern.W1()
	}
	return wc
}

func (c *AppConfig) LogConfig() {
	log.Info("mongo configuration:")
	log.Info("- target: ", ObfuscateCrendentials(c.Mongo.Target))
	log.Info("emulation configuration:")
	log.Info("- write concern: ", c.Emulation.WriteConcern)
	log.Info("- timeout: ", c.Emulation.Timeout)
	log.Info("- databases: ", c.Emulation.Databases)
	log.Info("- filters in: ", c.Emulation.Filters["in"])
	log.Info("- filters out: ", c.Emulation.Filters["out"])
	log.Info("api listening on ", c.Api.Listen)
	for _, feature := range c.Features {
		log.Info("- feature: ", feature)
	}
}

// ParseWriteConcern understands "acknowledged", "unacknowledged",
// "majority" and a number of nodes.
func ParseWriteConcern(value string) (*writeconcern.WriteConcern, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "acknowledged", "":
		return writeconcern.W1(), nil
	case "unacknowledged":
		return writeconcern.Unacknowledged(), nil
	case "majority":
		return writeconcern.Majority(), nil
	}

	w, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || w < 0 {
		return nil, errors.Errorf("unknown write concern %q", value)
	}
	return &writeconcern.WriteConcern{W: w}, nil
}

// Considering the following structure for MongoDB connection string:
// "mongodb://<username>:<password>@<host>:<port>"
// The following function will replaces the username and password with "****"
func ObfuscateCrendentials(mongoConnectionString string) string {
	// Find the username and password
	regexp := regexp.MustCompile(`mongodb:\/\/(.*):(.*)@`)
	matches := regexp.FindStringSubmatch(mongoConnectionString)
	if len(matches) == 3 {
		// Replace the username and password with "****"
		return regexp.ReplaceAllString(mongoConnectionString, "mongodb://****:****@")
	}
	return mongoConnectionString
}
