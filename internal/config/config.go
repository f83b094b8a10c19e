package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-yaml/yaml"
)

type Config struct {
	Server Server `yaml:"server"`
}

type Server struct {
	Addr             string `yaml:"addr"`
	PublicOrigin     string `yaml:"publicOrigin"`
	PostgresDsn      string `yaml:"postgresDsn"`
	RedisAddr        string `yaml:"redisAddr"`
	RedisDB          int    `yaml:"redisDB"`
	RedisPassword    string `yaml:"redisPassword"`
	MemcachedAddr    string `yaml:"memcachedAddr"`
	EnableTrace      bool   `yaml:"enableTrace"`
	TraceEndpoint    string `yaml:"traceEndpoint"`
	JWTSecret        string `yaml:"jwtSecret"`
	NotifyWebhookURL string `yaml:"notifyWebhookUrl"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.Server.Addr == "" {
		config.Server.Addr = ":8000"
	}
	if config.Server.PublicOrigin == "" {
		return Config{}, fmt.Errorf("server.publicOrigin is required")
	}
	config.Server.PublicOrigin = strings.TrimRight(config.Server.PublicOrigin, "/")

	return config, nil
}
