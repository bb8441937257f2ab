package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

type WebConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Secret  string `yaml:"secret"`
	JwtDays int    `yaml:"jwt_days"`
}

type DBConfig struct {
	Type     string `yaml:"type"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

type AppConfig struct {
	System   SysConfig `yaml:"system" json:"system"`
	Web      WebConfig `yaml:"web" json:"web"`
	Database DBConfig  `yaml:"database" json:"database"`
	Logger   LogConfig `yaml:"logger" json:"logger"`
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "smartstore",
		Location: "Asia/Jakarta",
		Workdir:  "/var/smartstore",
		Debug:    true,
	},
	Web: WebConfig{
		Host:    "0.0.0.0",
		Port:    1816,
		Secret:  "9b6de5cc-smartstore-0cf2-8f2b",
		JwtDays: 7,
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "smartstore",
		User:     "postgres",
		Passwd:   "",
		MaxConn:  100,
		IdleConn: 10,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/smartstore/smartstore.log",
	},
}

func setEnvValue(name string, f func(v string)) {
	if v, ok := os.LookupEnv(name); ok {
		f(v)
	}
}

// LoadConfig reads the YAML configuration file and applies environment
// overrides. A missing file yields the default configuration.
func LoadConfig(cfile string) *AppConfig {
	cfg := DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			cfg = new(AppConfig)
			if err := yaml.Unmarshal(data, cfg); err != nil {
				panic(err)
			}
		}
	}

	setEnvValue("SMARTSTORE_SYSTEM_WORKDIR", func(v string) { cfg.System.Workdir = v })
	setEnvValue("SMARTSTORE_WEB_SECRET", func(v string) { cfg.Web.Secret = v })
	setEnvValue("SMARTSTORE_DB_TYPE", func(v string) { cfg.Database.Type = v })
	setEnvValue("SMARTSTORE_DB_HOST", func(v string) { cfg.Database.Host = v })
	setEnvValue("SMARTSTORE_DB_NAME", func(v string) { cfg.Database.Name = v })
	setEnvValue("SMARTSTORE_DB_USER", func(v string) { cfg.Database.User = v })
	setEnvValue("SMARTSTORE_DB_PWD", func(v string) { cfg.Database.Passwd = v })

	_ = os.MkdirAll(cfg.System.Workdir, 0o755)
	_ = os.MkdirAll(filepath.Join(cfg.System.Workdir, "data"), 0o755)

	return cfg
}
