package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"gitee.com/czyczk/sbom-asset-transfer/internal/appinit"
	"gitee.com/czyczk/sbom-asset-transfer/internal/controller"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	var configPath, logLevel string

	confFlag := &cli.StringFlag{
		Name:        "conf",
		Aliases:     []string{"c"},
		Value:       "server.yaml",
		EnvVars:     []string{"SAT_CONF"},
		Destination: &configPath,
	}

	app := &cli.App{
		Name:  "sbom-asset-transfer",
		Usage: "Create SBOM assets on a Fabric network and transfer them between organizations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Value:       "info",
				EnvVars:     []string{"SAT_LOG_LEVEL"},
				Destination: &logLevel,
			},
		},
		Before: func(c *cli.Context) error {
			return setupLogger(logLevel)
		},
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"s"},
				Usage:   "Start as server",
				Flags:   []cli.Flag{confFlag},
				Action:  getServeFunc(&configPath),
			},
			{
				Name:  "create",
				Usage: "Create an asset out of an SBOM file",
				Flags: []cli.Flag{
					confFlag,
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Required: true, Usage: "the SBOM file"},
				},
				Action: getCreateFunc(&configPath),
			},
			{
				Name:  "transfer",
				Usage: "Transfer an asset to the buyer organization",
				Flags: []cli.Flag{
					confFlag,
					&cli.StringFlag{Name: "asset", Aliases: []string{"a"}, Required: true, Usage: "the asset ID"},
					&cli.StringFlag{Name: "org", Aliases: []string{"o"}, Value: "Org2", Usage: "the buyer organization"},
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Required: true, Usage: "the SBOM file the buyer agrees on"},
				},
				Action: getTransferFunc(&configPath),
			},
			{
				Name:   "enroll",
				Usage:  "Enroll the admin and the application user of every configured organization",
				Flags:  []cli.Flag{confFlag},
				Action: getEnrollFunc(&configPath),
			},
		},
	}

	// Run the cli helper
	if err := app.Run(os.Args); err != nil {
		log.Fatalln(err)
	}
}

func setupLogger(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return errors.Wrap(err, "invalid log level")
	}

	log.SetLevel(lvl)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	return nil
}

// loadApp loads the config and wires the app. The caller must close the app.
func loadApp(configPath string) (*appinit.App, error) {
	serverInfo, err := appinit.LoadServerInfo(configPath)
	if err != nil {
		return nil, err
	}

	return appinit.SetupApp(&serverInfo)
}

func getCreateFunc(configPath *string) func(c *cli.Context) error {
	return func(c *cli.Context) error {
		app, err := loadApp(*configPath)
		if err != nil {
			return err
		}
		defer app.Close()

		assetID, err := app.AssetSvc.CreateAsset(c.Context, c.String("file"))
		if err != nil {
			return err
		}

		fmt.Printf("Created asset: %v\n", assetID)
		return nil
	}
}

func getTransferFunc(configPath *string) func(c *cli.Context) error {
	return func(c *cli.Context) error {
		app, err := loadApp(*configPath)
		if err != nil {
			return err
		}
		defer app.Close()

		assetID := c.String("asset")
		txID, err := app.AssetSvc.TransferAsset(c.Context, assetID, c.String("org"), c.String("file"))
		if err != nil {
			return errors.Wrap(err, assetID)
		}

		fmt.Printf("Transferred asset: %v with transactionId: %v\n", assetID, txID)
		return nil
	}
}

func getEnrollFunc(configPath *string) func(c *cli.Context) error {
	return func(c *cli.Context) error {
		app, err := loadApp(*configPath)
		if err != nil {
			return err
		}
		defer app.Close()

		return app.EnrollAll(c.Context)
	}
}

func getServeFunc(configPath *string) func(c *cli.Context) error {
	serveFunc := func(c *cli.Context) error {
		app, err := loadApp(*configPath)
		if err != nil {
			return err
		}
		defer app.Close()

		serverInfo := app.ServerInfo

		// Instantiate controllers
		pingPongController := &controller.PingPongController{}

		assetController := &controller.AssetController{
			AssetSvc:  app.AssetSvc,
			UploadDir: serverInfo.UploadDir,
		}

		transactionController := &controller.TransactionController{
			AssetSvc: app.AssetSvc,
		}

		// Register controller handlers
		if log.IsLevelEnabled(log.DebugLevel) {
			gin.SetMode(gin.DebugMode)
		} else {
			gin.SetMode(gin.ReleaseMode)
		}
		router, err := controller.NewRouter(pingPongController, assetController, transactionController)
		if err != nil {
			return err
		}

		// Start the HTTP server
		httpServer := &http.Server{
			Addr:    fmt.Sprintf(":%v", serverInfo.Port),
			Handler: router,
		}

		chanError := make(chan error, 1)
		go func() {
			log.Infof("Listening on port %v...", serverInfo.Port)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				chanError <- errors.Wrap(err, "cannot start the HTTP server")
			}
		}()

		// Listen Ctrl+C signals. On receiving a signal stops the app elegantly
		chanQuit := make(chan os.Signal, 1)
		signal.Notify(chanQuit, os.Interrupt)
		select {
		case err := <-chanError:
			return err
		case <-chanQuit:
			log.Infoln("Received Ctrl+C. Exiting...")

			// Stop the HTTP server elegantly
			ctx, cancel := context.WithTimeout(context.Background(), serverInfo.Timeouts.Shutdown)
			defer cancel()
			log.Infoln("Stopping the HTTP server...")
			if err := httpServer.Shutdown(ctx); err != nil {
				return errors.Wrap(err, "cannot stop the HTTP server gracefully")
			}
		}

		return nil
	}

	return serveFunc
}
