package main

import (
	"os"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"appointer/config"
	"appointer/helper"
	"appointer/shared/logger"
)

const (
	argLength = 2
)

func main() {
	cfg := config.Get()

	logger.InitLogger(cfg.Server.Env)
	logger.SetLogLevel(cfg)

	if len(os.Args) < argLength || !slices.Contains(helper.Actions, os.Args[1]) {
		log.Fatal().Str("actions", strings.Join(helper.Actions, ", ")).Msg("Migration action is required")
	}

	if err := helper.Runner(cfg, os.Args[1]); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}
