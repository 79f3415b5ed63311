package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Host      string    `koanf:"host"`
	Addr      string    `koanf:"addr"`
	Database  Database  `koanf:"db"`
	PiggyBank PiggyBank `koanf:"piggybank"`
	Dashboard Dashboard `koanf:"dashboard"`
	Report    Report    `koanf:"report"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
	// MaxConns caps the pool size; 0 keeps the pgx default.
	MaxConns int32 `koanf:"maxconns"`
}

type PiggyBank struct {
	// LookbackDays is used as the tracking start of a goal that has neither a creation nor a last deposit date.
	LookbackDays int `koanf:"lookbackdays"`
}

type Dashboard struct {
	WindowMonths int `koanf:"windowmonths"`
}

type Report struct {
	TopCategories   int `koanf:"topcategories"`
	MaxTransactions int `koanf:"maxtransactions"`
}

func Defaults() Application {
	return Application{
		Host: "http://localhost:3000",
		Addr: ":8181",
		Database: Database{
			Host:     "localhost",
			Port:     5432,
			User:     "finpro",
			Pass:     "",
			Name:     "finpro",
			Schema:   "finpro",
			MaxConns: 10,
		},
		PiggyBank: PiggyBank{
			LookbackDays: 30,
		},
		Dashboard: Dashboard{
			WindowMonths: 4,
		},
		Report: Report{
			TopCategories:   5,
			MaxTransactions: 50,
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
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

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "FINPRO_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "FINPRO_")), "_", ".")
			return k, v
		},
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
