package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/iulianpascalau/pagespeed-monitoring/commonGo"
	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/config"
	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/factory"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/urfave/cli"
)

const (
	defaultLogsPath      = "logs"
	logFilePrefix        = "pagespeed"
	logFileLifeSpanInSec = 86400 // 24h
	logFileLifeSpanInMB  = 1024  // 1GB
	envAPIKey            = "API_KEY"
	envServiceKey        = "SERVICE_KEY"
)

// appVersion should be populated at build time using ldflags
// Usage examples:
// Linux/macOS:
//
//	go build -v -ldflags="-X main.appVersion=$(git describe --all | cut -c7-32)
var appVersion = "undefined"
var fileLogging commonGo.FileLoggingHandler

var (
	proxyHelpTemplate = `NAME:
   {{.Name}} - {{.Usage}}
USAGE:
   {{.HelpName}} {{if .VisibleFlags}}[global options]{{end}}
   {{if len .Authors}}
AUTHOR:
   {{range .Authors}}{{ . }}{{end}}
   {{end}}{{if .Commands}}
GLOBAL OPTIONS:
   {{range .VisibleFlags}}{{.}}
   {{end}}
VERSION:
   {{.Version}}
   {{end}}
`

	log = logger.GetOrCreate("main")

	// logLevel defines the logger level
	logLevel = cli.StringFlag{
		Name: "log-level",
		Usage: "This flag specifies the logger `level(s)`. It can contain multiple comma-separated value. For example" +
			", if set to *:INFO the logs for all packages will have the INFO level. However, if set to *:INFO,sampler:DEBUG" +
			" the logs for all packages will have the INFO level, excepting the sampler package which will receive a DEBUG" +
			" log level.",
		Value: "*:" + logger.LogInfo.String(),
	}
	// logFile is used when the log output needs to be logged in a file
	logSaveFile = cli.BoolFlag{
		Name:  "log-save",
		Usage: "Boolean option for enabling log saving. If set, it will automatically save all the logs into a file.",
	}
	// workingDirectory defines a flag for the path for the working directory.
	workingDirectory = cli.StringFlag{
		Name:  "working-directory",
		Usage: "This flag specifies the `directory` where the service will store databases, reports and logs.",
		Value: "",
	}
	// configFile defines the path to the TOML configuration file
	configFile = cli.StringFlag{
		Name:  "config",
		Usage: "This flag specifies the `path` of the TOML configuration file.",
		Value: "./config.toml",
	}
	// envFile defines the path to the file holding the secrets
	envFile = cli.StringFlag{
		Name:  "env-file",
		Usage: "This flag specifies the `path` of the .env file holding the API_KEY and the SERVICE_KEY values.",
		Value: "./.env",
	}
	// runOnce forces a single sampling run regardless of the configured interval
	runOnce = cli.BoolFlag{
		Name:  "run-once",
		Usage: "Boolean option for performing a single sampling run and exiting afterwards.",
	}
)

func main() {
	app := cli.NewApp()
	cli.AppHelpTemplate = proxyHelpTemplate
	app.Name = "PageSpeed monitoring service"
	app.Version = fmt.Sprintf("%s/%s/%s-%s", appVersion, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	app.Usage = "This is the entry point for sampling the PageSpeed metrics of a list of sites on desktop and mobile"
	app.Flags = []cli.Flag{
		logLevel,
		logSaveFile,
		workingDirectory,
		configFile,
		envFile,
		runOnce,
	}
	app.Authors = []cli.Author{
		{
			Name:  "Iulian Pascalau",
			Email: "iulian.pascalau@gmail.com",
		},
	}

	app.Action = run

	defer func() {
		if fileLogging != nil {
			_ = fileLogging.Close()
		}
	}()

	err := app.Run(os.Args)
	if err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	saveLogFile := ctx.GlobalBool(logSaveFile.Name)
	workingDir := ctx.GlobalString(workingDirectory.Name)

	err := logger.SetLogLevel(ctx.GlobalString(logLevel.Name))
	if err != nil {
		return err
	}

	fileLogging, err = commonGo.AttachFileLogger(log, defaultLogsPath, logFilePrefix, saveLogFile, workingDir)
	if err != nil {
		return err
	}

	if !check.IfNil(fileLogging) {
		timeLogLifeSpan := time.Second * time.Duration(logFileLifeSpanInSec)
		sizeLogLifeSpanInMB := uint64(logFileLifeSpanInMB)
		err = fileLogging.ChangeFileLifeSpan(timeLogLifeSpan, sizeLogLifeSpanInMB)
		if err != nil {
			return err
		}
	}

	log.Info("Starting PageSpeed monitoring service", "version", appVersion, "pid", os.Getpid())

	cfg, err := config.LoadConfig(ctx.GlobalString(configFile.Name))
	if err != nil {
		return err
	}

	envFileContents := map[string]string{
		envAPIKey: "",
	}
	needsServiceKey := len(cfg.API.ListenAddress) > 0 || len(cfg.Report.Endpoint) > 0
	if needsServiceKey {
		envFileContents[envServiceKey] = ""
	}

	err = commonGo.ReadEnvFile(ctx.GlobalString(envFile.Name), envFileContents)
	if err != nil {
		return err
	}

	components, err := factory.NewComponentsHandler(factory.ArgsComponentsHandler{
		Config:        *cfg,
		APIKey:        envFileContents[envAPIKey],
		ServiceKeyApi: envFileContents[envServiceKey],
	})
	if err != nil {
		return err
	}
	defer components.Close()

	if ctx.GlobalBool(runOnce.Name) || cfg.RunInterval() == 0 {
		return runSingle(components)
	}

	components.Start()

	log.Info("PageSpeed monitoring service started", "interval", cfg.RunInterval(), "sites file", cfg.SitesFile)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	<-sigs

	log.Info("Application closing, calling Close on all subcomponents...")

	return nil
}

func runSingle(components factory.ComponentsHandler) error {
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	go func() {
		select {
		case <-sigs:
			log.Info("interrupt received, cancelling the sampling run")
			cancel()
		case <-runCtx.Done():
		}
	}()

	report, err := components.RunOnce(runCtx)
	if err != nil {
		return err
	}

	log.Info("sampling run completed", "run", report.ID, "averaged", len(report.Averaged),
		"samples", len(report.Raw), "faults", len(report.Faults))

	return nil
}
