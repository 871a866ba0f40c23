// Command revalidationd runs the revalidation pipeline against in-memory
// adapters: it seeds a little content, simulates a save and a slug rename,
// and drains the deferred job queue. Useful as a wiring reference and for
// smoke-testing a frontend endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	revalidation "github.com/Dexerto/on-demand-revalidation"
	adapters "github.com/Dexerto/on-demand-revalidation/internal/adapters/memory"
	"github.com/Dexerto/on-demand-revalidation/internal/di"
)

type allowAll struct{}

func (allowAll) Can(context.Context, string, string) bool { return true }

func main() {
	var (
		frontendURL = flag.String("frontend", os.Getenv("REVALIDATION_FRONTEND_URL"), "Next.js frontend base URL")
		secretKey   = flag.String("secret", os.Getenv("REVALIDATION_SECRET"), "revalidate secret key")
		interval    = flag.Duration("interval", 30*time.Second, "deferred job poll interval")
		inline      = flag.Bool("inline", true, "dispatch inline instead of deferring")
	)
	flag.Parse()

	cfg := revalidation.DefaultConfig()
	cfg.Frontend.URL = *frontendURL
	cfg.Frontend.SecretKey = *secretKey
	cfg.Frontend.DisableCron = *inline
	cfg.Features.Logger = true

	reader := adapters.NewReader()
	reader.SeedAuthor(adapters.Author{ID: 7, Nicename: "jane-doe", Username: "jane"})
	reader.SeedItem(adapters.Item{
		ID:        42,
		Title:     "Hello World",
		AuthorID:  7,
		Status:    "publish",
		Permalink: "https://example.com/hello-world/",
		Terms:     map[string][]string{"category": {"news"}},
	})

	module, err := revalidation.New(cfg,
		di.WithContentReader(reader),
		di.WithAuthorizer(allowAll{}),
	)
	if err != nil {
		log.Fatalf("revalidationd: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	item, err := reader.GetByID(ctx, 42)
	if err != nil {
		log.Fatalf("revalidationd: %v", err)
	}
	if err := module.HandleSaved(ctx, item, revalidation.SaveOptions{}); err != nil {
		log.Fatalf("revalidationd: save dispatch: %v", err)
	}
	fmt.Println("dispatched save for item 42")

	if *inline {
		return
	}

	fmt.Printf("draining deferred jobs every %s (ctrl-c to stop)\n", *interval)
	if err := module.Worker().Run(ctx, *interval); err != nil && ctx.Err() == nil {
		log.Fatalf("revalidationd: worker: %v", err)
	}
}
