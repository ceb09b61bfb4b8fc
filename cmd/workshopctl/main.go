// Command workshopctl drives work orders through the lifecycle controller
// from the command line.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"autoservice-backend/apiclient"
	"autoservice-backend/config"
	"autoservice-backend/models"
	"autoservice-backend/tickets"
	"autoservice-backend/utils"
	"autoservice-backend/workorder"

	"github.com/spf13/pflag"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const usage = `usage: workshopctl [flags] <command> [args]

commands:
  list [--q text] [--status STATUS]   list orders
  pending                             list orders awaiting payment
  show <id>                           print an order with its totals
  pay <id> [--method cash|card|later] [--amount N]
  settle <id> [--method cash|card]    pay the outstanding amount of a pending order
  status <id> <STATUS>                set NEW, IN_PROGRESS, PENDING_PAYMENT or PAYED
  retry-ticket <id>                   regenerate the ticket of a paid order
  delete <id>                         delete an order, its tickets and its draft
  services [query]                    suggest service titles
`

// httpClient overrides the transport; tests point it at an in-memory server.
var httpClient *fasthttp.Client

type cli struct {
	out         io.Writer
	client      *apiclient.Client
	drafts      workorder.DraftStore
	log         *zap.Logger
	loadTimeout time.Duration
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()

	fs := pflag.NewFlagSet("workshopctl", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetInterspersed(false)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage, "\nflags:\n")
		fs.PrintDefaults()
	}
	apiURL := fs.String("api", envOr("WORKSHOP_API_URL", "http://localhost:5050"), "API base URL")
	login := fs.String("login", envOr("WORKSHOP_LOGIN", "admin"), "operator login")
	password := fs.String("password", os.Getenv("WORKSHOP_PASSWORD"), "operator password")
	draftsPath := fs.String("drafts", os.Getenv("WORKSHOP_DRAFTS"), "drafts JSON file (in-memory when empty)")
	shopName := fs.String("shop", cfg.ShopName, "shop name printed on tickets")
	fontPath := fs.String("font", cfg.TicketFontPath, "UTF-8 TrueType font for tickets")
	loadTimeout := fs.Duration("load-timeout", cfg.OrderLoadTimeout, "order load timeout")
	timeout := fs.Duration("timeout", 30*time.Second, "overall command timeout")
	verbose := fs.BoolP("verbose", "v", false, "log to stderr")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	log := zap.NewNop()
	if *verbose {
		if l, err := zap.NewDevelopment(); err == nil {
			log = l
		}
	}
	defer log.Sync()

	renderer := tickets.Renderer{ShopName: *shopName, FontPath: *fontPath}
	opts := []apiclient.Option{apiclient.WithLogger(log), apiclient.WithRenderer(renderer)}
	if httpClient != nil {
		opts = append(opts, apiclient.WithHTTPClient(httpClient))
	}
	c := &cli{
		out:         stdout,
		client:      apiclient.New(*apiURL, opts...),
		drafts:      workorder.NewMemoryDrafts(),
		log:         log,
		loadTimeout: *loadTimeout,
	}
	if *draftsPath != "" {
		c.drafts = workorder.NewFileDrafts(*draftsPath)
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	if err := c.client.Login(ctx, *login, *password); err != nil {
		fmt.Fprintln(stderr, "login:", err)
		return 1
	}
	if err := c.dispatch(ctx, fs.Arg(0), fs.Args()[1:]); err != nil {
		var u usageError
		if errors.As(err, &u) {
			fmt.Fprintln(stderr, err)
			fmt.Fprint(stderr, usage)
			return 2
		}
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

type usageError string

func (u usageError) Error() string { return string(u) }

func (c *cli) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "list":
		return c.list(ctx, args)
	case "pending":
		return c.pending(ctx)
	case "show":
		return c.withOrder(ctx, args, 1, func(ctrl *workorder.Controller, _ []string) error {
			return c.print(ctrl.Order(), ctrl.Totals())
		})
	case "pay":
		return c.pay(ctx, args)
	case "settle":
		return c.settle(ctx, args)
	case "status":
		return c.withOrder(ctx, args, 2, func(ctrl *workorder.Controller, rest []string) error {
			next := models.WorkStatus(strings.ToUpper(strings.TrimSpace(rest[0])))
			saved, err := ctrl.ChangeStatus(ctx, next)
			if err != nil {
				return err
			}
			return c.print(saved, workorder.OrderTotals(saved))
		})
	case "retry-ticket":
		return c.withOrder(ctx, args, 1, func(ctrl *workorder.Controller, _ []string) error {
			ref, err := ctrl.RetryTicket(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, ref.URL)
			return nil
		})
	case "delete":
		return c.withOrder(ctx, args, 1, func(ctrl *workorder.Controller, _ []string) error {
			id := ctrl.Order().ID
			if err := ctrl.Delete(ctx); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "deleted", id)
			return nil
		})
	case "services":
		ctrl := workorder.NewController(c.client, c.client, c.drafts, workorder.WithCatalog(c.client), workorder.WithLogger(c.log))
		for _, name := range ctrl.SuggestTitles(ctx, strings.Join(args, " ")) {
			fmt.Fprintln(c.out, name)
		}
		return nil
	}
	return usageError(fmt.Sprintf("unknown command %q", cmd))
}

// withOrder loads the order named by args[0] into a fresh controller and
// hands fn the remaining positional arguments.
func (c *cli) withOrder(ctx context.Context, args []string, want int, fn func(*workorder.Controller, []string) error) error {
	if len(args) < want {
		return usageError("missing arguments")
	}
	ctrl := workorder.NewController(c.client, c.client, c.drafts,
		workorder.WithLogger(c.log), workorder.WithLoadTimeout(c.loadTimeout))
	if _, err := ctrl.Load(ctx, args[0]); err != nil {
		return err
	}
	if err := ctrl.LoadError(); err != nil {
		return err
	}
	return fn(ctrl, args[1:])
}

func (c *cli) list(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("list", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	q := fs.String("q", "", "search text")
	status := fs.String("status", "", "status filter")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	orders, err := c.client.SearchOrders(ctx, *q, models.WorkStatus(strings.ToUpper(*status)))
	if err != nil {
		return err
	}
	return c.table(orders)
}

func (c *cli) pending(ctx context.Context) error {
	orders, err := c.client.PendingOrders(ctx)
	if err != nil {
		return err
	}
	return c.table(orders)
}

func (c *cli) pay(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("pay", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	method := fs.String("method", string(models.MethodCash), "cash, card or later")
	amount := fs.String("amount", "", "amount paid (the whole due amount when empty)")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	return c.withOrder(ctx, fs.Args(), 1, func(ctrl *workorder.Controller, _ []string) error {
		res, err := ctrl.AcceptPayment(ctx, models.PaymentMethod(strings.ToLower(*method)), *amount)
		if err != nil {
			return err
		}
		return c.paymentResult(res)
	})
}

func (c *cli) settle(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("settle", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	method := fs.String("method", string(models.MethodCash), "cash or card")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	return c.withOrder(ctx, fs.Args(), 1, func(ctrl *workorder.Controller, _ []string) error {
		res, err := ctrl.SettlePending(ctx, models.PaymentMethod(strings.ToLower(*method)))
		if err != nil {
			return err
		}
		return c.paymentResult(res)
	})
}

func (c *cli) paymentResult(res workorder.PaymentResult) error {
	if err := c.print(res.Order, workorder.OrderTotals(res.Order)); err != nil {
		return err
	}
	switch {
	case res.TicketErr != nil:
		fmt.Fprintln(c.out, "ticket failed, run retry-ticket:", res.TicketErr)
	case res.Ticket != nil:
		fmt.Fprintln(c.out, "ticket:", res.Ticket.URL)
	}
	return nil
}

type orderView struct {
	models.Order
	Totals workorder.Totals `json:"totals"`
	Paid   float64          `json:"paid"`
	Due    float64          `json:"due"`
}

func (c *cli) print(o models.Order, t workorder.Totals) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(orderView{
		Order:  o,
		Totals: t,
		Paid:   utils.Round2(workorder.Paid(o.Payments)),
		Due:    workorder.Due(o),
	})
}

func (c *cli) table(orders []models.Order) error {
	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tSTATUS\tCUSTOMER\tCAR\tTOTAL\tDUE")
	for _, o := range orders {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", o.ID, o.Date, o.Status, o.Customer, o.Car,
			utils.FormatMoney(workorder.OrderTotals(o).Total), utils.FormatMoney(workorder.Due(o)))
	}
	return w.Flush()
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
