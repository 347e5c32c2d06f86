package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/hospital-records/auth"
	"github.com/jrsteele09/hospital-records/internal/config"
	"github.com/jrsteele09/hospital-records/jobs"
	"github.com/jrsteele09/hospital-records/server"
	fakesessionrepo "github.com/jrsteele09/hospital-records/sessions/repofakes"
	fakeuserrepo "github.com/jrsteele09/hospital-records/users/repofake"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") == "" || os.Getenv("ENV") == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	// Users and sessions live in memory; the patient records themselves are behind RECORDS_BACKEND_URL.
	repos := auth.Repos{
		Users:    fakeuserrepo.NewFakeUserRepo(),
		Sessions: fakesessionrepo.NewFakeSessionRepo(),
	}
	handler, err := server.New(c, repos, server.WithLogger(log.Logger))
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	scheduler := jobs.NewScheduler(handler.Identity(), c.GetSessionPurgeSchedule(), log.Logger)
	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("scheduler.Start: %w", err)
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(httpServer)
	}()

	select {
	case err := <-serveErr:
		returnError = err
	case <-waitForStopSignal():
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.GetShutdownTimeout())
	defer cancel()
	if err := scheduler.Stop(ctx); err != nil {
		log.Warn().Err(err).Msg("scheduler did not stop cleanly")
	}
	return errors.Join(returnError, shutdown(ctx, httpServer))
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(ctx context.Context, server *http.Server) error {
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
