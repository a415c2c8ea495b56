package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/tbourn/marketplace-state/internal/catalog"
	"github.com/tbourn/marketplace-state/internal/repo"
	"github.com/tbourn/marketplace-state/internal/session"
	"github.com/tbourn/marketplace-state/internal/storage"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create or upgrade the SQLite schema",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "db", Usage: "SQLite `PATH` (defaults to DB_PATH)"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			path := cfg.Storage.DBPath
			if p := c.String("db"); p != "" {
				path = p
			}
			db, err := openMigrated(path)
			if err != nil {
				return err
			}
			defer closeDB(db)
			fmt.Fprintf(c.App.Writer, "schema up to date: %s\n", path)
			return nil
		},
	}
}

func slotsCommand() *cli.Command {
	return &cli.Command{
		Name:  "slots",
		Usage: "Print the persisted slots of a session",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "session", Aliases: []string{"s"}, Usage: "session `ID` to dump"},
			&cli.BoolFlag{Name: "all", Usage: "list every namespace with slot counts (sqlite only)"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			be, err := openBackend(c.Context, cfg.Storage)
			if err != nil {
				return err
			}
			defer be.close()

			if c.Bool("all") {
				if storage.Kind(cfg.Storage.Backend) != storage.KindSQLite {
					return fmt.Errorf("--all requires the sqlite backend, have %q", cfg.Storage.Backend)
				}
				return printNamespaces(c.Context, c.App.Writer, be)
			}
			sid, err := session.Normalize(c.String("session"))
			if err != nil {
				return err
			}
			return printSlots(c.Context, c.App.Writer, be.provider, sid)
		},
	}
}

// printSlots writes each slot of ns with its indented JSON value.
func printSlots(ctx context.Context, w io.Writer, p storage.Provider, ns string) error {
	lister, ok := p.(storage.Lister)
	if !ok {
		return errors.New("storage backend cannot enumerate slots")
	}
	names, err := lister.Names(ctx, ns)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintf(w, "session %s has no slots\n", ns)
		return nil
	}
	b := p.Namespace(ns)
	for _, name := range names {
		raw, err := b.Get(ctx, name)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("slot %s: %w", name, err)
		}
		var out bytes.Buffer
		if json.Indent(&out, raw, "", "  ") != nil {
			out.Reset()
			out.Write(raw)
		}
		fmt.Fprintf(w, "== %s (%d bytes)\n%s\n", name, len(raw), out.String())
	}
	return nil
}

func printNamespaces(ctx context.Context, w io.Writer, be *backend) error {
	nss, err := repo.Namespaces(ctx, be.db)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tSLOTS\tUPDATED")
	for _, ns := range nss {
		n, last, err := repo.SlotsStats(ctx, be.db, ns)
		if err != nil {
			return err
		}
		updated := "-"
		if last != nil {
			updated = last.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", ns, n, updated)
	}
	return tw.Flush()
}

func catalogCommand() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Fetch the upstream catalog and print product identities",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "base-url", Usage: "catalog API `URL` (defaults to CATALOG_BASE_URL)"},
			&cli.StringFlag{Name: "search", Usage: "rank products against `QUERY` instead of listing them"},
			&cli.IntFlag{Name: "k", Value: 10, Usage: "number of search hits"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			base := cfg.Catalog.BaseURL
			if u := c.String("base-url"); u != "" {
				base = u
			}
			if base == "" {
				return errors.New("no catalog configured: set CATALOG_BASE_URL or --base-url")
			}
			svc := catalog.NewService(catalog.NewClient(base, cfg.Catalog.Timeout))
			rep, err := svc.Refresh(c.Context)
			if err != nil {
				return err
			}
			printRefresh(c.App.ErrWriter, rep, svc.RefreshedAt())
			if q := c.String("search"); q != "" {
				return printHits(c.App.Writer, svc.Search(q, c.Int("k")))
			}
			return printProducts(c.App.Writer, svc)
		},
	}
}

func printRefresh(w io.Writer, rep catalog.RefreshReport, at time.Time) {
	fmt.Fprintf(w, "fetched=%d skipped=%d collisions=%d refreshed=%s\n",
		rep.Fetched, rep.Skipped, rep.Collisions, at.UTC().Format(time.RFC3339))
}

func printProducts(w io.Writer, svc *catalog.Service) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSERVER ID\tPRICE\tNAME")
	for _, p := range svc.All() {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%s\n", p.ID, p.ServerID, p.Price, p.Name)
	}
	return tw.Flush()
}

func printHits(w io.Writer, hits []catalog.Hit) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tID\tSERVER ID\tNAME")
	for _, h := range hits {
		fmt.Fprintf(tw, "%.3f\t%d\t%s\t%s\n", h.Score, h.Product.ID, h.Product.ServerID, h.Product.Name)
	}
	return tw.Flush()
}
