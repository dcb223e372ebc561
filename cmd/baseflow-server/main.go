// Command baseflow-server serves baseflow separation over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hydrographs/baseflow/internal/log"
	"github.com/hydrographs/baseflow/internal/restserver"
)

var version = "devel"

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	debug := flag.Bool("debug", false, "enable debug logging")
	logFile := flag.String("logfile", "", "also write JSON logs to this file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("baseflow-server %s\n", version)
		os.Exit(0)
	}

	var err error
	if *logFile != "" {
		err = log.InitWithFile(*debug, *logFile)
	} else {
		err = log.Init(*debug)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger := log.GetSugaredLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := restserver.New(logger, *addr)
	if err := srv.Start(ctx); err != nil {
		logger.Fatalf("server: %v", err)
	}
	logger.Info("shutdown complete")
}
