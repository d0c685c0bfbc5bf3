package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Addr     string   `koanf:"addr"`
	Database Database `koanf:"db"`
	Gemini   Gemini   `koanf:"gemini"`
}

// Database selects the snapshot store backend. The sqlite driver uses Path;
// the postgres driver uses the connection fields.
type Database struct {
	Driver string `koanf:"driver"`
	Path   string `koanf:"path"`
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

// Gemini configures the generative AI endpoint used for receipt parsing.
// BaseURL is overridable for tests.
type Gemini struct {
	ApiKey  string `koanf:"apikey"`
	Model   string `koanf:"model"`
	BaseURL string `koanf:"baseurl"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Addr: ":8181",
		Database: Database{
			Driver: "sqlite",
			Path:   "./splitledger.db",
			Host:   "localhost",
			Port:   5432,
			User:   "splitledger",
			Pass:   "",
			Name:   "splitledger",
			Schema: "splitledger",
		},
		Gemini: Gemini{
			Model: "gemini-2.5-flash-lite",
		},
	}, "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider("SPLITLEDGER_", ".", func(s string) string {
		// Transform the key.
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "SPLITLEDGER_")), "_", ".")
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
