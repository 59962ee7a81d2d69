package stub

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/textlinq/smsbridge-admin/internal/models"
)

const defaultPageSize = 10

// Server is the sandbox API server.
type Server struct {
	app    *fiber.App
	store  Store
	signer *Signer
	log    *zap.Logger
}

// Config configures the sandbox server.
type Config struct {
	Store  Store
	Signer *Signer
	Logger *zap.Logger
}

// New creates the sandbox server and registers its routes.
func New(cfg Config) *Server {
	if cfg.Signer == nil {
		cfg.Signer = NewSigner("", 0, 0)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName: "SMSBridge Sandbox v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"detail": err.Error()})
		},
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	s := &Server{app: app, store: cfg.Store, signer: cfg.Signer, log: cfg.Logger}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy", "service": "smsbridge-sandbox"})
	})

	core := s.app.Group("/core")
	core.Post("/login/", s.handleLogin)
	core.Post("/auth/refresh/", s.handleRefresh)
	core.Post("/logout/", s.handleLogout)

	auth := s.RequireAuth()

	core.Get("/account-mappings/", auth, s.handleMappingList)
	core.Post("/account-mappings/", auth, s.handleMappingCreate)
	core.Delete("/account-mappings/:id/", auth, s.handleMappingDelete)

	core.Get("/ghl-auth-credentials/", auth, s.handleGHLAccountList)
	core.Post("/ghl-auth-credentials/", auth, s.handleGHLAccountCreate)
	core.Put("/ghl-auth-credentials/:id/", auth, s.handleGHLAccountUpdate)
	core.Delete("/ghl-auth-credentials/:id/", auth, s.handleGHLAccountDelete)

	core.Get("/wallets-list/", auth, s.handleWalletList)
	core.Get("/wallets-summary/", auth, s.handleWalletSummary)
	core.Get("/wallet-transactions/", auth, s.handleTransactionList)
	core.Get("/dashboard-analytics/", auth, s.handleDashboard)

	sms := s.app.Group("/sms")
	sms.Get("/sms-messages/", auth, s.handleMessageList)

	transmit := s.app.Group("/transmit-sms")
	transmit.Get("/accounts/", auth, s.handleTransmitAccountList)
	transmit.Post("/accounts/", auth, s.handleTransmitAccountCreate)
	transmit.Put("/accounts/:id/", auth, s.handleTransmitAccountUpdate)
	transmit.Delete("/accounts/:id/", auth, s.handleTransmitAccountDelete)
	transmit.Get("/numbers/", auth, s.handleNumberList)
}

// App exposes the fiber app for Listen and tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen starts the sandbox on addr.
func (s *Server) Listen(addr string) error { return s.app.Listen(addr) }

// Transport returns an http.RoundTripper that executes requests against
// the in-process app without a network listener, so tests and demo tooling
// can point a real client at the sandbox.
func (s *Server) Transport() http.RoundTripper {
	return &appTransport{app: s.app}
}

type appTransport struct {
	app *fiber.App
}

func (t *appTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.app.Test(req, -1)
}

// envelope paginates items into the {count, next, previous, results} shape,
// with next/previous as full URLs preserving every other query parameter.
func envelope[T any](c *fiber.Ctx, items []T) models.Page[T] {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := c.QueryInt("page_size", defaultPageSize)
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	count := len(items)
	start := (page - 1) * pageSize
	if start > count {
		start = count
	}
	end := start + pageSize
	if end > count {
		end = count
	}

	out := models.Page[T]{Count: count, Results: items[start:end]}
	if out.Results == nil {
		out.Results = []T{}
	}
	if end < count {
		out.Next = pageURL(c, page+1)
	}
	if page > 1 {
		out.Previous = pageURL(c, page-1)
	}
	return out
}

func pageURL(c *fiber.Ctx, page int) *string {
	query := url.Values{}
	for key, vals := range c.Queries() {
		query.Set(key, vals)
	}
	query.Set("page", strconv.Itoa(page))
	u := c.BaseURL() + c.Path() + "?" + query.Encode()
	return &u
}

// queryDate parses a YYYY-MM-DD query parameter; absent means zero time.
func queryDate(c *fiber.Ctx, key string) time.Time {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

// queryFloat parses an optional float parameter; absent means nil.
func queryFloat(c *fiber.Ctx, key string) *float64 {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &f
}
