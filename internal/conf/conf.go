// Package conf 服务配置，toml 文件加载，缺省时落地默认配置
package conf

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration toml 里以 "30s" "1h" 形式书写的时长
type Duration string

func (d Duration) Duration() time.Duration {
	v, err := time.ParseDuration(string(d))
	if err != nil {
		return 0
	}
	return v
}

type Bootstrap struct {
	Debug        bool     `toml:"debug"`
	BuildVersion string   `toml:"-"` // 编译期注入
	Server       Server   `toml:"server"`
	Data         Data     `toml:"data"`
	Pipeline     Pipeline `toml:"pipeline"`
}

type Server struct {
	HTTP HTTP `toml:"http"`
}

type HTTP struct {
	Port  int   `toml:"port"`
	PProf PProf `toml:"pprof"`
}

type PProf struct {
	Enabled   bool     `toml:"enabled"`
	AccessIps []string `toml:"access_ips"`
}

type Data struct {
	Database Database `toml:"database"`
}

type Database struct {
	Dsn             string   `toml:"dsn"` // sqlite 文件名或 postgres/mysql 连接串
	MaxIdleConns    int      `toml:"max_idle_conns"`
	MaxOpenConns    int      `toml:"max_open_conns"`
	ConnMaxLifetime Duration `toml:"conn_max_lifetime"`
	SlowThreshold   Duration `toml:"slow_threshold"`
}

// Pipeline 计数流水线（SenseVision 分析服务）地址
type Pipeline struct {
	URL string `toml:"url"`
}

func defaultBootstrap() Bootstrap {
	return Bootstrap{
		Server: Server{
			HTTP: HTTP{Port: 8080},
		},
		Data: Data{
			Database: Database{
				Dsn:             "sense.db",
				MaxIdleConns:    10,
				MaxOpenConns:    100,
				ConnMaxLifetime: "1h",
				SlowThreshold:   "200ms",
			},
		},
		Pipeline: Pipeline{URL: "http://127.0.0.1:8000"},
	}
}

// SetupConfig 加载配置文件，文件不存在时写出默认配置再使用
func SetupConfig(path string) (*Bootstrap, error) {
	cfg := defaultBootstrap()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		out, err := toml.Marshal(cfg)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
