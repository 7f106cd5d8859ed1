package app

// initDefaultRoutes initializes the application's default routes. These
// are the routes which are the same in every application: version, health
// and the data endpoints.
func (app *App) initDefaultRoutes() {
	api := app.web.Group("/")
	if app.config.Webserver.Webservices["version"] {
		api.Get("/version", app.HandleVersion())
	}
	if app.config.Webserver.Webservices["health"] {
		api.Get("/health", app.HandleHealth())
	}
	if app.config.Webserver.Webservices["data"] {
		api.Get("/data", app.HandleData())
	}
	if app.config.Webserver.Webservices["diag"] {
		api.Get("/diag", app.HandleDiag())
	}
}
