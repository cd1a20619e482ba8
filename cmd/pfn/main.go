package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/livegamesio/pfn/internal/api"
	"github.com/livegamesio/pfn/internal/engine"
	"github.com/livegamesio/pfn/internal/games"
	"github.com/livegamesio/pfn/internal/store"
)

const usage = `Usage: pfn <command> [flags]

Commands:
  serve    run the HTTP API
  hash     print the SHA-256 commitment for a server seed
  gen      emit a deterministic stream of floats or integers
  verify   evaluate one game round for a seed pair and nonce

Run "pfn <command> -h" for command flags.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(os.Args[2:])
	case "hash":
		err = runHash(os.Args[2:])
	case "gen":
		err = runGen(os.Args[2:])
	case "verify":
		err = runVerify(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "pfn: unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "pfn: %v\n", err)
		os.Exit(1)
	}
}

type serveConfig struct {
	Addr     string `env:"PFN_ADDR" envDefault:":8077"`
	DBPath   string `env:"PFN_DB" envDefault:"pfn.db"`
	LogLevel string `env:"PFN_LOG_LEVEL" envDefault:"info"`
}

func runServe(args []string) error {
	var cfg serveConfig
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}

	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "sqlite database path (empty disables persistence)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "zerolog level (trace..panic)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", cfg.LogLevel, err)
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	var db store.DB
	if cfg.DBPath != "" {
		sdb, err := store.NewSQLiteDB(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		if err := sdb.Migrate(); err != nil {
			return multierr.Append(fmt.Errorf("migrate database: %w", err), sdb.Close())
		}
		db = sdb
	}

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      api.NewServer(db, logger).Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Str("db", cfg.DBPath).Msg("listening")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if db != nil {
			err = multierr.Append(err, db.Close())
		}
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = srv.Shutdown(shutdownCtx)
	if db != nil {
		err = multierr.Append(err, db.Close())
	}
	return err
}

func runHash(args []string) error {
	fs := flag.NewFlagSet("hash", flag.ExitOnError)
	serverSeed := fs.String("server", "", "server seed (empty generates one)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	state, err := engine.NewSeedState(engine.SeedConfig{ServerSeed: *serverSeed})
	if err != nil {
		return err
	}
	if *serverSeed == "" {
		fmt.Printf("server seed: %s\n", state.ServerSeed())
	}
	fmt.Printf("commitment:  %s\n", state.ServerSeedHash())
	return nil
}

func runGen(args []string) error {
	fs := flag.NewFlagSet("gen", flag.ExitOnError)
	serverSeed := fs.String("server", "", "server seed (required)")
	clientSeed := fs.String("client", "", "client seed (empty generates one)")
	nonce := fs.Uint64("nonce", 0, "starting nonce; the first value is drawn at nonce+1")
	count := fs.Int("count", 10, "number of values to emit")
	kind := fs.String("kind", "float", "value kind: float or int")
	min := fs.Int64("min", 0, "inclusive lower bound (int kind)")
	max := fs.Int64("max", 99, "inclusive upper bound (int kind)")
	outPath := fs.String("out", "", "write values to a file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *serverSeed == "" {
		return errors.New("gen: -server is required")
	}
	if *count <= 0 {
		return errors.New("gen: -count must be positive")
	}

	state, err := engine.NewSeedState(engine.SeedConfig{
		ServerSeed: *serverSeed,
		ClientSeed: *clientSeed,
		Nonce:      *nonce,
	})
	if err != nil {
		return err
	}
	g, err := engine.New(state)
	if err != nil {
		return err
	}

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			return fmt.Errorf("gen: %w", err)
		}
		defer f.Close()
		out = f
	}

	for i := 0; i < *count; i++ {
		switch *kind {
		case "float":
			fmt.Fprintf(out, "%d\t%.17g\n", state.Nonce()+1, g.NextFloat())
		case "int":
			v, err := g.NextInt(*min, *max)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d\t%d\n", state.Nonce(), v)
		default:
			return fmt.Errorf("gen: unknown kind %q", *kind)
		}
	}
	return nil
}

func runVerify(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	gameID := fs.String("game", "", "game id (required; see the games API for the list)")
	serverSeed := fs.String("server", "", "server seed (required)")
	clientSeed := fs.String("client", "", "client seed (required)")
	nonce := fs.Uint64("nonce", 1, "nonce to evaluate")
	paramsJSON := fs.String("params", "", "game parameters as a JSON object")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *gameID == "" || *serverSeed == "" || *clientSeed == "" {
		return errors.New("verify: -game, -server, and -client are required")
	}

	var params map[string]any
	if *paramsJSON != "" {
		if err := json.Unmarshal([]byte(*paramsJSON), &params); err != nil {
			return fmt.Errorf("verify: parse -params: %w", err)
		}
	}

	game, err := games.GetGame(*gameID)
	if err != nil {
		return err
	}
	result, err := game.Evaluate(games.Seeds{Server: *serverSeed, Client: *clientSeed}, *nonce, params)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
