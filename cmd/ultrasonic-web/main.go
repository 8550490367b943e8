package main

import (
	"context"
	"fmt"
	"github.com/rs/zerolog/log"
	"os"
	"os/signal"
	"syscall"
	"ultrasonic-web/internal/api"
	"ultrasonic-web/internal/config"
	"ultrasonic-web/internal/logger"
	"ultrasonic-web/internal/mq"
	"ultrasonic-web/internal/network"
	"ultrasonic-web/internal/sensor"
	"ultrasonic-web/internal/services"
)

type Application struct {
	config *config.Config

	sensor         *sensor.HCSR04
	rangingService *services.RangingService

	mqttClient *mq.Client
	server     *api.Server

	shutdownChan chan os.Signal
	ctx          context.Context
	cancelFunc   context.CancelFunc
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	app := &Application{}

	if err := app.initialize(cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}

	if err := app.run(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run application")
	}
}

func (app *Application) initialize(cfg *config.Config) error {
	app.config = cfg

	logger.NewLogger(app.config.Logger)
	log.Info().
		Str("component", "main").
		Str("service", app.config.Service.Name).
		Str("version", app.config.Service.Version).
		Msg("Setting up service...")

	app.ctx, app.cancelFunc = context.WithCancel(context.Background())
	app.shutdownChan = make(chan os.Signal, 1)
	signal.Notify(app.shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	if err := app.initializeSensor(); err != nil {
		return fmt.Errorf("error while initializing sensor: %w", err)
	}

	app.joinNetwork()
	app.initializeMQTT()

	if err := app.initializeServer(); err != nil {
		return fmt.Errorf("error while initializing HTTP server: %w", err)
	}

	log.Info().Msg("Successfully initialized application")
	return nil
}

func (app *Application) initializeSensor() error {
	var err error

	app.sensor, err = sensor.Open(app.config.Sensor, logger.GetLogger("sensor"))
	if err != nil {
		return fmt.Errorf("could not open HC-SR04: %w", err)
	}

	app.rangingService = services.NewRangingService(
		app.sensor,
		sensor.SystemClock{},
		app.config.Sensor.Samples,
		app.config.Sensor.SampleDelay,
		logger.GetLogger("ranging-service"),
	)

	return nil
}

// joinNetwork never fails the startup: the server comes up on whatever
// network state results.
func (app *Application) joinNetwork() {
	joiner := network.NewStationJoiner(app.config.Network, logger.GetLogger("network"))

	status, err := joiner.Join(app.ctx)
	if err != nil {
		log.Warn().
			Err(err).
			Str("component", "main").
			Str("interface", status.Interface).
			Int("attempts", status.Attempts).
			Dur("elapsed", status.Elapsed).
			Msg("Network not joined, starting HTTP server anyway")
		return
	}

	log.Info().
		Str("component", "main").
		Str("address", status.Address).
		Dur("elapsed", status.Elapsed).
		Msg("Open http://" + status.Address + app.config.Service.ListenAddr + " in a browser")
}

// initializeMQTT attaches telemetry when enabled. A broker that cannot be
// reached leaves telemetry off for this run.
func (app *Application) initializeMQTT() {
	if !app.config.MQTT.Enabled {
		return
	}

	client, err := mq.NewClient(&app.config.MQTT, logger.GetLogger("mq-client"))
	if err != nil {
		log.Warn().Err(err).Msg("could not create MQTT client, telemetry disabled")
		return
	}

	connectCtx, cancel := context.WithTimeout(app.ctx, app.config.MQTT.ConnectTimeout)
	defer cancel()

	if err := client.Connect(connectCtx); err != nil {
		client.Disconnect()
		log.Warn().Err(err).Msg("could not connect to MQTT broker, telemetry disabled")
		return
	}
	app.mqttClient = client

	publisher := mq.NewReadingPublisher(
		client,
		mq.NewTopicManager(app.config.MQTT.BaseTopic),
		app.config.Sensor.ID,
		logger.GetLogger("reading-publisher"),
	)
	app.rangingService.SetPublisher(publisher)

	log.Info().
		Str("component", "main").
		Str("broker", app.config.MQTT.GetUrl()).
		Msg("Successfully initialized MQTT client")
}

func (app *Application) initializeServer() error {
	var err error

	app.server, err = api.NewServer(app.config.Service, app.rangingService, logger.GetLogger("api"))
	if err != nil {
		return err
	}

	return app.server.Start()
}

func (app *Application) run() error {
	var runErr error

	select {
	case sig := <-app.shutdownChan:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-app.server.Errors():
		runErr = err
	case <-app.ctx.Done():
		log.Info().Msg("context cancelled, shutting down application")
	}

	if err := app.shutdown(); err != nil {
		return err
	}
	return runErr
}

func (app *Application) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), app.config.Service.ShutdownTimeout)
	defer cancel()

	var shutdownErr error
	if app.server != nil {
		if err := app.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("error stopping HTTP server: %w", err)
		}
	}

	if app.mqttClient != nil {
		app.mqttClient.Disconnect()
	}

	if app.sensor != nil {
		if err := app.sensor.Halt(); err != nil {
			log.Error().Err(err).Msg("Error halting sensor pins")
		}
	}

	app.cancelFunc()
	return shutdownErr
}
