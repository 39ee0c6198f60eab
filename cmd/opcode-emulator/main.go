package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sebastienferry/mongo-opcode-emulator/internal/pkg/api"
	"github.com/sebastienferry/mongo-opcode-emulator/internal/pkg/config"
	"github.com/sebastienferry/mongo-opcode-emulator/internal/pkg/filters"
	"github.com/sebastienferry/mongo-opcode-emulator/internal/pkg/log"
	"github.com/sebastienferry/mongo-opcode-emulator/internal/pkg/mdb"
	"github.com/sebastienferry/mongo-opcode-emulator/internal/pkg/operations"
	logrus "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

func main() {

	// Load the configuration
	err := config.Current.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatal("Error loading configuration: ", err)
	}

	// Logger initiatilization
	level := log.FromString(config.Current.Logging.Level)
	log.SetLogLevel(level)
	log.SetLogFormatter(&logrus.TextFormatter{
		FullTimestamp: false,
		DisableColors: false,
	})
	log.Debug("Starting mongo-opcode-emulator")
	log.Debug(fmt.Sprintf("log level: %d (%s)", level, config.Current.Logging.Level))
	config.Current.LogConfig()

	// Setup mongodb connectivity
	mdb.Registry = mdb.NewMongoRegistry(config.Current)
	target := mdb.Registry.GetTarget()

	connections := func(ctx context.Context) (operations.Connection, error) {
		conn, err := target.Connection(ctx)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
	removeApi := api.NewRemoveApi(connections, api.RemoveOptions{
		DefaultWriteConcern: config.Current.DefaultWriteConcernValue(),
		Timeout:             config.Current.Emulation.Timeout,
		AllowUnacknowledged: config.IsFeatureEnabled(config.UnacknowledgedWrites),
		EncoderSettings:     &operations.MessageEncoderSettings{Registry: bson.DefaultRegistry},
		Filter:              filters.NewFilterFromConfig(config.Current),
	})

	healthHandler, err := api.CreateHealthCheckHandler(target)
	if err != nil {
		log.Fatal("Error creating the health check: ", err)
	}

	// Start the API server
	server := api.StartApi(config.Current.Api.Listen, api.NewRouter(removeApi, healthHandler))

	// Prepare to handle SIGINT
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	// Shutdown
	log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("api shutdown: ", err)
	}
	if err := target.Disconnect(ctx); err != nil {
		log.Error("mongodb disconnect: ", err)
	}
}
