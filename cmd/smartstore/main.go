package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/smartstore/smartstore/config"
	"github.com/smartstore/smartstore/internal/adminapi"
	"github.com/smartstore/smartstore/internal/app"
	"github.com/smartstore/smartstore/internal/webserver"
)

var (
	cfile   = flag.String("c", "/etc/smartstore.yml", "config file")
	initdb  = flag.Bool("initdb", false, "drop and recreate the database schema, then exit")
	showVer = flag.Bool("v", false, "show version")
)

var version = "dev"

func main() {
	flag.Parse()

	if *showVer {
		fmt.Println("smartstore", version)
		return
	}

	cfg := config.LoadConfig(*cfile)
	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.S().Info("database initialized")
		return
	}

	server := webserver.Init(application)
	adminapi.InitRouter()

	go func() {
		if err := server.Listen(); err != nil {
			zap.S().Fatalf("web server stopped: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	zap.S().Info("shutting down")
}
