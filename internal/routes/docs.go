package routes

import "github.com/gofiber/fiber/v2"

type docEndpoint struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Auth   string `json:"auth"`
	Desc   string `json:"desc"`
}

var docEndpoints = []docEndpoint{
	{"POST", "/api/auth/register", "none", "Create an account and receive a token"},
	{"POST", "/api/auth/login", "none", "Exchange credentials for a token"},
	{"GET", "/api/auth", "x-auth-token", "Current principal"},
	{"POST", "/api/profiles/client", "x-auth-token (client)", "Create or update the client profile"},
	{"POST", "/api/profiles/trainer", "x-auth-token (trainer)", "Create or update the trainer profile"},
	{"POST", "/api/profiles/trainer/picture", "x-auth-token (trainer)", "Upload a profile picture"},
	{"GET", "/api/profiles/me", "x-auth-token", "Own profile with owner embedded"},
	{"GET", "/health", "none", "Liveness"},
}

// registerDocs exposes the endpoint listing, only wired up in development
// with docs explicitly enabled.
func registerDocs(app *fiber.App) {
	app.Get("/docs", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"name":      "gymapp API",
			"endpoints": docEndpoints,
		})
	})
}
