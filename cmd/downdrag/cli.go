package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/CodeBeast357/downdrag"
	"github.com/CodeBeast357/downdrag/extract"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Config   *downdrag.Config
	Now      time.Time
	Logger   *slog.Logger
	Pipeline *extract.Pipeline
	Sink     downdrag.Sink
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config string `short:"c" default:"downdrag.yml" type:"path" help:"Configuration file"`

	Run    RunCmd    `cmd:"" help:"Scrape every profile and write the results"`
	Check  CheckCmd  `cmd:"" help:"Validate the configuration and compile its patterns"`
	Fields FieldsCmd `cmd:"" help:"Print the ordered output fields"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	Now     string `help:"Reference time for date patterns (RFC3339)"`
	LogFile string `name:"log-file" help:"Log file, - for stderr (default downdrag_<timestamp>.log)"`
	Debug   bool   `help:"Log at debug level"`
}

// CheckCmd is the "check" subcommand.
type CheckCmd struct{}

// FieldsCmd is the "fields" subcommand.
type FieldsCmd struct{}
