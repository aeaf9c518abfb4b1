package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Addr            string
	ReadTimeoutSec  int
	WriteTimeoutSec int
}

type DB struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
	LogLevel     string
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWT struct {
	AccessSecret  string
	RefreshSecret string
}

type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type Kafka struct {
	Enable  bool
	Brokers []string
	Topic   string
}

type Upload struct {
	// 本地 blob 根目录
	Root string
	// 单文件上限（MB）
	MaxSizeMB int
}

type Log struct {
	Level    string
	JSON     bool
	Filename string
}

type Search struct {
	MaxResults   int
	SuggestCount int
}

type Config struct {
	HTTP   HTTP
	DB     DB
	Redis  Redis  `mapstructure:"redis"`
	JWT    JWT    `mapstructure:"jwt"`
	SMTP   SMTP   `mapstructure:"smtp"`
	Kafka  Kafka  `mapstructure:"kafka"`
	Upload Upload `mapstructure:"upload"`
	Log    Log    `mapstructure:"log"`
	Search Search `mapstructure:"search"`
}

// Load 读取 yaml 配置，APP_ 前缀环境变量可覆盖同名键
func Load(path string) *Config {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("upload.root", "uploads")
	v.SetDefault("upload.maxsizemb", 10)
	v.SetDefault("search.maxresults", 50)
	v.SetDefault("search.suggestcount", 10)

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("read config: %v", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		log.Fatalf("unmarshal config: %v", err)
	}
	return &c
}
