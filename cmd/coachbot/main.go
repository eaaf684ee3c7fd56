package main

import (
	"fmt"
	"log"

	"github.com/nosmoke/coachbot/bot/handlers"
	corecmd "github.com/nosmoke/coachbot/core/cmd"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			cfg, err := handlers.LoadConfig(path)
			if err != nil {
				return nil, err
			}
			return cfg, nil
		},
		Bootstrap: func(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			cfg, ok := carrier.(*handlers.Config)
			if !ok {
				return nil, fmt.Errorf("unexpected config type %T", carrier)
			}
			app, err := handlers.Bootstrap(cfg)
			if err != nil {
				return nil, err
			}
			return app, nil
		},
	})
	if err != nil {
		log.Fatalf("coachbot: %v", err)
	}
}
