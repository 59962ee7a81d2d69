package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/term"

	"github.com/textlinq/smsbridge-admin/internal/api"
	"github.com/textlinq/smsbridge-admin/internal/client"
	"github.com/textlinq/smsbridge-admin/internal/config"
	"github.com/textlinq/smsbridge-admin/internal/logger"
	"github.com/textlinq/smsbridge-admin/internal/models"
	"github.com/textlinq/smsbridge-admin/internal/stub"
	"github.com/textlinq/smsbridge-admin/internal/views"
)

const usage = `smsbridge - SMS routing admin CLI

Usage:
  smsbridge <command> [flags]

Commands:
  login              Authenticate against the admin API
  logout             Revoke the session and clear credentials
  dashboard          Message volume and delivery summary
  mappings           List account mappings
  map                Create an account mapping
  unmap              Delete an account mapping
  messages           List messages with delivery state
  ghl-accounts       List/create/update/delete HighLevel accounts
  transmit-accounts  List/create/update/delete Transmit-SMS accounts
  numbers            List purchasable dedicated numbers
  wallets            List wallets and the balance summary
  transactions       List wallet transactions
  demo               Run the local sandbox backend

Run 'smsbridge <command> -h' for command flags.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()

	if os.Args[1] == "demo" {
		runDemo(cfg, os.Args[2:])
		return
	}

	zlog := logger.New(cfg.Debug)
	defer zlog.Sync()

	c, err := client.New(cfg, zlog, client.Options{})
	if err != nil {
		log.Fatalf("❌ Failed to initialize client: %v", err)
	}
	defer c.Close()

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, c)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := dispatch(ctx, c, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func dispatch(ctx context.Context, c *client.Client, command string, args []string) error {
	switch command {
	case "login":
		return cmdLogin(ctx, c, args)
	case "logout":
		return cmdLogout(ctx, c)
	case "dashboard":
		return cmdDashboard(ctx, c, args)
	case "mappings":
		return cmdMappings(ctx, c, args)
	case "map":
		return cmdMap(ctx, c, args)
	case "unmap":
		return cmdUnmap(ctx, c, args)
	case "messages":
		return cmdMessages(ctx, c, args)
	case "ghl-accounts":
		return cmdGHLAccounts(ctx, c, args)
	case "transmit-accounts":
		return cmdTransmitAccounts(ctx, c, args)
	case "numbers":
		return cmdNumbers(ctx, c, args)
	case "wallets":
		return cmdWallets(ctx, c, args)
	case "transactions":
		return cmdTransactions(ctx, c, args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func cmdLogin(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "operator email")
	password := fs.String("password", "", "password (prompted if omitted)")
	fs.Parse(args)

	if *email == "" {
		return fmt.Errorf("-email is required")
	}
	pass := *password
	if pass == "" {
		fmt.Fprint(os.Stderr, "Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		pass = string(raw)
	}

	if err := c.Login(ctx, *email, pass); err != nil {
		return err
	}
	fmt.Println("✅ Logged in as", *email)
	return nil
}

func cmdLogout(ctx context.Context, c *client.Client) error {
	if !c.Authenticated() {
		fmt.Println("Not logged in.")
		return nil
	}
	if err := c.Logout(ctx); err != nil {
		// Credentials are cleared locally even when revocation fails.
		fmt.Fprintf(os.Stderr, "⚠️  Server-side revoke failed: %v\n", err)
	}
	fmt.Println("✅ Logged out")
	return nil
}

func cmdDashboard(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ExitOnError)
	days := fs.Int("days", 7, "day window")
	account := fs.String("account", "", "filter to one HighLevel account")
	watch := fs.Bool("watch", false, "re-render when the summary goes stale")
	fs.Parse(args)

	query := api.DashboardArgs{Days: *days, GHLAccount: *account}
	summary, err := c.Dashboard(ctx, query)
	if err != nil {
		return err
	}
	views.Dashboard(os.Stdout, &summary)

	if !*watch {
		return nil
	}
	sub := c.WatchDashboard(query)
	defer sub.Cancel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-sub.C:
			if !ok {
				return nil
			}
			summary, err := c.Dashboard(ctx, query)
			if err != nil {
				fmt.Fprintf(os.Stderr, "refresh failed: %v\n", err)
				continue
			}
			fmt.Println("\n--- refreshed", time.Now().Format("15:04:05"), "---")
			views.Dashboard(os.Stdout, &summary)
		}
	}
}

func cmdMappings(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("mappings", flag.ExitOnError)
	page := fs.Int("page", 0, "page number")
	size := fs.Int("size", 0, "page size")
	fs.Parse(args)

	result, err := c.Mappings(ctx, api.MappingListArgs{Page: *page, PageSize: *size})
	if err != nil {
		return err
	}
	views.Mappings(os.Stdout, result.Results)
	if result.HasNext() {
		fmt.Println("(more pages; use -page)")
	}
	return nil
}

func cmdMap(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("map", flag.ExitOnError)
	ghl := fs.String("ghl", "", "HighLevel account ID")
	transmit := fs.String("transmit", "", "Transmit-SMS account ID")
	fs.Parse(args)

	if *ghl == "" || *transmit == "" {
		return fmt.Errorf("-ghl and -transmit are required")
	}
	mapping, err := c.CreateMapping(ctx, *ghl, *transmit)
	if err != nil {
		return err
	}
	fmt.Printf("✅ Mapped %s → %s (%s)\n",
		mapping.GHLAccountName, mapping.TransmitAccountName, mapping.ID)
	return nil
}

func cmdUnmap(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("unmap", flag.ExitOnError)
	id := fs.String("id", "", "mapping ID")
	fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("-id is required")
	}
	if err := c.DeleteMapping(ctx, *id); err != nil {
		return err
	}
	fmt.Println("✅ Mapping deleted")
	return nil
}

func cmdMessages(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("messages", flag.ExitOnError)
	page := fs.Int("page", 0, "page number")
	size := fs.Int("size", 0, "page size")
	search := fs.String("search", "", "match against to/from/body")
	status := fs.String("status", "all", "queued|sent|delivered|failed|all")
	direction := fs.String("direction", "all", "inbound|outbound|all")
	ordering := fs.String("ordering", "", "sent_at|-sent_at")
	from := fs.String("from", "", "date from (YYYY-MM-DD)")
	to := fs.String("to", "", "date to (YYYY-MM-DD)")
	fs.Parse(args)

	query := api.MessageListArgs{
		Page:      *page,
		PageSize:  *size,
		Search:    *search,
		Status:    *status,
		Direction: *direction,
		Ordering:  *ordering,
	}
	var err error
	if query.DateFrom, err = parseDate(*from); err != nil {
		return err
	}
	if query.DateTo, err = parseDate(*to); err != nil {
		return err
	}

	result, err := c.Messages(ctx, query)
	if err != nil {
		return err
	}
	views.Messages(os.Stdout, &result)
	return nil
}

func cmdGHLAccounts(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("ghl-accounts", flag.ExitOnError)
	page := fs.Int("page", 0, "page number")
	search := fs.String("search", "", "match against name/email")
	add := fs.Bool("add", false, "create an account from -name/-location/-email")
	update := fs.String("update", "", "account ID to update")
	del := fs.String("delete", "", "account ID to delete")
	name := fs.String("name", "", "account name")
	location := fs.String("location", "", "HighLevel location ID")
	email := fs.String("email", "", "contact email")
	fs.Parse(args)

	switch {
	case *add:
		acc, err := c.CreateGHLAccount(ctx, models.GHLAccountInput{
			Name: *name, LocationID: *location, Email: *email,
		})
		if err != nil {
			return err
		}
		fmt.Printf("✅ Connected %s (%s)\n", acc.Name, acc.ID)
		return nil
	case *update != "":
		acc, err := c.UpdateGHLAccount(ctx, *update, models.GHLAccountInput{
			Name: *name, LocationID: *location, Email: *email,
		})
		if err != nil {
			return err
		}
		fmt.Printf("✅ Updated %s\n", acc.Name)
		return nil
	case *del != "":
		if err := c.DeleteGHLAccount(ctx, *del); err != nil {
			return err
		}
		fmt.Println("✅ Account disconnected")
		return nil
	}

	result, err := c.GHLAccounts(ctx, api.GHLAccountListArgs{Page: *page, Search: *search})
	if err != nil {
		return err
	}
	views.GHLAccounts(os.Stdout, &result)
	return nil
}

func cmdTransmitAccounts(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("transmit-accounts", flag.ExitOnError)
	page := fs.Int("page", 0, "page number")
	search := fs.String("search", "", "match against name")
	add := fs.Bool("add", false, "create an account from -name/-sender/-key")
	update := fs.String("update", "", "account ID to update")
	del := fs.String("delete", "", "account ID to delete")
	name := fs.String("name", "", "account name")
	sender := fs.String("sender", "", "default sender ID")
	key := fs.String("key", "", "Transmit-SMS API key")
	fs.Parse(args)

	switch {
	case *add:
		acc, err := c.CreateTransmitAccount(ctx, models.TransmitAccountInput{
			Name: *name, SenderID: *sender, APIKey: *key,
		})
		if err != nil {
			return err
		}
		fmt.Printf("✅ Added %s (%s)\n", acc.Name, acc.ID)
		return nil
	case *update != "":
		acc, err := c.UpdateTransmitAccount(ctx, *update, models.TransmitAccountInput{
			Name: *name, SenderID: *sender, APIKey: *key,
		})
		if err != nil {
			return err
		}
		fmt.Printf("✅ Updated %s\n", acc.Name)
		return nil
	case *del != "":
		if err := c.DeleteTransmitAccount(ctx, *del); err != nil {
			return err
		}
		fmt.Println("✅ Account removed")
		return nil
	}

	result, err := c.TransmitAccounts(ctx, api.TransmitAccountListArgs{Page: *page, Search: *search})
	if err != nil {
		return err
	}
	views.TransmitAccounts(os.Stdout, &result)
	return nil
}

func cmdNumbers(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("numbers", flag.ExitOnError)
	page := fs.Int("page", 0, "page number")
	search := fs.String("search", "", "match against the number")
	label := fs.String("label", "", "filter by label")
	minPrice := fs.Float64("min-price", -1, "minimum price")
	maxPrice := fs.Float64("max-price", -1, "maximum price")
	sortBy := fs.String("sort", "", "number|price")
	fs.Parse(args)

	result, err := c.Numbers(ctx, api.NumberListArgs{
		Page:     *page,
		Search:   *search,
		Label:    *label,
		MinPrice: optFloat(*minPrice),
		MaxPrice: optFloat(*maxPrice),
		SortBy:   *sortBy,
	})
	if err != nil {
		return err
	}
	views.Numbers(os.Stdout, &result)
	return nil
}

func cmdWallets(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("wallets", flag.ExitOnError)
	page := fs.Int("page", 0, "page number")
	minBalance := fs.Float64("min-balance", -1, "minimum balance")
	maxBalance := fs.Float64("max-balance", -1, "maximum balance")
	sortBy := fs.String("sort", "", "name|balance")
	fs.Parse(args)

	summary, err := c.WalletSummary(ctx)
	if err != nil {
		return err
	}
	views.WalletSummary(os.Stdout, &summary)
	fmt.Println()

	result, err := c.Wallets(ctx, api.WalletListArgs{
		Page:       *page,
		MinBalance: optFloat(*minBalance),
		MaxBalance: optFloat(*maxBalance),
		SortBy:     *sortBy,
	})
	if err != nil {
		return err
	}
	views.Wallets(os.Stdout, &result)
	return nil
}

func cmdTransactions(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("transactions", flag.ExitOnError)
	page := fs.Int("page", 0, "page number")
	wallet := fs.String("wallet", "", "filter to one wallet ID")
	txType := fs.String("type", "all", "credit|debit|all")
	minAmount := fs.Float64("min-amount", -1, "minimum amount")
	maxAmount := fs.Float64("max-amount", -1, "maximum amount")
	from := fs.String("from", "", "date from (YYYY-MM-DD)")
	to := fs.String("to", "", "date to (YYYY-MM-DD)")
	fs.Parse(args)

	query := api.TransactionListArgs{
		Page:      *page,
		Wallet:    *wallet,
		Type:      *txType,
		MinAmount: optFloat(*minAmount),
		MaxAmount: optFloat(*maxAmount),
	}
	var err error
	if query.DateFrom, err = parseDate(*from); err != nil {
		return err
	}
	if query.DateTo, err = parseDate(*to); err != nil {
		return err
	}

	result, err := c.Transactions(ctx, query)
	if err != nil {
		return err
	}
	views.Transactions(os.Stdout, &result)
	return nil
}

// runDemo starts the local sandbox backend so the CLI has something to talk
// to without the real routing service.
func runDemo(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	port := fs.String("port", cfg.DemoPort, "listen port")
	fs.Parse(args)

	zlog := logger.New(cfg.Debug)
	defer zlog.Sync()

	var store stub.Store
	if strings.EqualFold(os.Getenv("USE_MEMORY_STORE"), "false") {
		log.Println("🗄️  Using Postgres sandbox store")
		db, err := stub.Connect()
		if err != nil {
			log.Fatalf("❌ Failed to connect to database: %v", err)
		}
		store = stub.NewDatabaseStore(db)
	} else {
		log.Println("💾 Using in-memory sandbox store with demo data")
		mem := stub.NewMemoryStore()
		stub.Seed(mem)
		store = mem
	}

	server := stub.New(stub.Config{Store: store, Logger: zlog.Named("sandbox")})

	log.Println("🚀 SMSBridge sandbox starting on port", *port)
	log.Printf("🔑 Demo credentials: %s / %s", stub.DemoEmail, stub.DemoPassword)
	log.Printf("👉 Point the CLI at it: SMSBRIDGE_API_URL=http://localhost:%s", *port)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Println("👋 Shutting down sandbox")
		_ = server.App().Shutdown()
	}()

	if err := server.Listen(":" + *port); err != nil {
		log.Fatalf("❌ Sandbox failed: %v", err)
	}
}

func serveMetrics(addr string, c *client.Client) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.Metrics().Registry, promhttp.HandlerOpts{}))
	log.Printf("📊 Metrics on %s/metrics", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("⚠️  Metrics server stopped: %v", err)
	}
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", raw)
	}
	return t, nil
}

func optFloat(v float64) *float64 {
	if v < 0 {
		return nil
	}
	return &v
}
