package main

import (
	"bytes"
	"fmt"
	"os"

	"server-warden/internal/commands"
	"server-warden/internal/config"
	"server-warden/internal/docs"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

func main() {
	// Only the prefix matters here; no token is needed.
	var cfg config.Config
	if err := env.Parse(&cfg); err != nil {
		fail(err)
	}

	registry, err := commands.Build(commands.Options{Prefix: cfg.CommandPrefix, Logger: zerolog.Nop()}, nil)
	if err != nil {
		fail(err)
	}

	tmpl, err := os.ReadFile("README.md.tmpl")
	if err != nil {
		fail(err)
	}

	var out bytes.Buffer
	if err := docs.WriteReadme(&out, string(tmpl), registry, cfg.CommandPrefix); err != nil {
		fail(err)
	}
	if err := os.WriteFile("README.md", out.Bytes(), 0o644); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "build-readme:", err)
	os.Exit(1)
}
