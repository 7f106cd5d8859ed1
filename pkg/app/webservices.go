package app

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
)

// runWebServer starts the application's web server and listens for web
// requests. It's designed to run in a separate go routine to not block
// the main one, see app.Run().
func (app *App) runWebServer() {
	err := app.web.Listen(app.urlParsed.Host)
	debug.ErrorLog.Print(err)
}

// HandleData is the web handler returning the last received message.
func (app *App) HandleData() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request data")

		app.data.Lock()
		defer app.data.Unlock()

		if !app.data.ok {
			ctx.Status(http.StatusNoContent)
			return nil
		}
		return ctx.JSON(app.data.record)
	}
}

// HandleDiag is the web handler returning a decoder diagnostics snapshot:
// framing state, interval window with its write position, tick counter
// and the recovered bit period.
func (app *App) HandleDiag() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request diag")

		return ctx.JSON(app.link.Diagnostics())
	}
}
