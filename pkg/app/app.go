package app

import (
	"net/url"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"

	"ptrx/pkg/app/config"
	"ptrx/pkg/message"
	"ptrx/pkg/mqtt"
	"ptrx/pkg/raspberry"
	"ptrx/pkg/rflink"
	"ptrx/pkg/sampler"
)

// App is the main application struct.
// App is where the application is wired up.
type App struct {
	// web is the fiber web framework instance
	web *fiber.App

	// config is the application configuration
	config *config.Config

	// urlParsed contains the parsed Config.Webserver.URL parameter
	urlParsed *url.URL

	// mqtt is the handler to the mqtt broker
	mqtt *mqtt.Handler

	// mem is the memory-mapped gpio access (poll source)
	mem *raspberry.MemGPIO
	// pin is the polled receiver line (poll source)
	pin raspberry.Pin
	// chip is the gpio character device (events source)
	chip *raspberry.Chip
	// line is the watched receiver line (events source)
	line *raspberry.Line

	// sampler is the fixed-cadence sample clock feeding the decoder
	sampler *sampler.Sampler
	// link is the frame receiver on top of the sample stream
	link *rflink.Handler
	// msg is the message device on top of the frame receiver
	msg *message.Handler

	// data holds the last received message record
	data struct {
		sync.Mutex
		record message.Record
		ok     bool
	}

	// published holds the last record sent to the mqtt broker
	published struct {
		sync.Mutex
		record message.Record
		ok     bool
	}

	// restart signals application restart
	restart chan struct{}
	// shutdown signals application shutdown
	shutdown chan struct{}
}

// New checks the web server URL and initializes the main app structure.
func New(config *config.Config) (*App, error) {
	u, err := url.Parse(config.Webserver.URL)
	if err != nil {
		debug.ErrorLog.Printf("error parsing url %q: %s", config.Webserver.URL, err.Error())
		return &App{}, err
	}

	return &App{
		config:    config,
		urlParsed: u,

		web:  fiber.New(),
		mqtt: mqtt.New(),
		msg:  message.New(),

		restart:  make(chan struct{}),
		shutdown: make(chan struct{}),
	}, nil
}

// Run starts the application.
func (app *App) Run() error {
	if err := app.init(); err != nil {
		return err
	}

	go app.mqtt.Service()
	go app.runWebServer()
	go app.readMessages()

	return nil
}

// init opens the receiver line, stacks the sampler, the frame link and the
// message device on top of it and connects the mqtt broker.
func (app *App) init() (err error) {
	switch app.config.Source {
	case "events":
		if app.chip, err = raspberry.Open(); err != nil {
			debug.ErrorLog.Printf("can't open gpio chip: %v", err)
			return err
		}
		if app.line, err = app.chip.NewLine(app.config.Gpio, app.config.Terminator, app.config.BounceTime); err != nil {
			debug.ErrorLog.Printf("can't open line: %v", err)
			return err
		}
		app.sampler = sampler.Events(app.line.C, app.config.Clock)
	default:
		if app.mem, err = raspberry.OpenMem(); err != nil {
			debug.ErrorLog.Printf("can't open gpio memory: %v", err)
			return err
		}
		if app.pin, err = app.mem.NewPin(app.config.Gpio, app.config.Terminator); err != nil {
			debug.ErrorLog.Printf("can't open pin: %v", err)
			return err
		}
		app.sampler = sampler.Poll(app.pin, app.config.Clock)
	}

	app.link = rflink.New(app.sampler.C)

	if err = app.msg.Connect(app.link); err != nil {
		debug.ErrorLog.Printf("can't connect message device: %v", err)
		return err
	}

	if err = app.mqtt.Connect(app.config.MQTT.Connection); err != nil {
		debug.ErrorLog.Printf("can't open mqtt broker: %v", err)
		return err
	}

	// initDefaultRoutes should always be called last, it may access
	// handlers initialized above
	app.initDefaultRoutes()

	return nil
}

// Restart returns the read only restart channel.
// Restart is used to be able to react on application restart.
func (app *App) Restart() <-chan struct{} {
	return app.restart
}

// Shutdown returns the read only shutdown channel.
// Shutdown is used to be able to react on application shutdown.
func (app *App) Shutdown() <-chan struct{} {
	return app.shutdown
}

// Close tears the receiver stack down in reverse order of init.
func (app *App) Close() error {
	if app.mqtt != nil {
		_ = app.mqtt.Disconnect()
	}

	if app.sampler != nil {
		_ = app.sampler.Close()
	}
	if app.msg != nil {
		_ = app.msg.Close()
	}
	if app.line != nil {
		_ = app.line.Close()
	}
	if app.chip != nil {
		_ = app.chip.Close()
	}
	if app.pin != nil {
		_ = app.pin.Close()
	}
	if app.mem != nil {
		_ = app.mem.Close()
	}
	return nil
}
