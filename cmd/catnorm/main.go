package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"catnorm/internal/config"
	"catnorm/internal/logging"
	"catnorm/internal/pipeline"
	"catnorm/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	cmd := "run"
	args := []string{}
	if len(os.Args) > 1 {
		cmd = os.Args[1]
		args = os.Args[2:]
	}

	switch cmd {
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		fs.StringVar(&cfg.InputPath, "input", cfg.InputPath, "input products json")
		fs.StringVar(&cfg.CategoriesPath, "categories", cfg.CategoriesPath, "category dictionary output")
		fs.StringVar(&cfg.BrandsPath, "brands", cfg.BrandsPath, "brand dictionary output")
		fs.StringVar(&cfg.ProductsPath, "products", cfg.ProductsPath, "rewritten products output")
		fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "optional sqlite store")
		fs.StringVar(&cfg.WorkbookPath, "xlsx", cfg.WorkbookPath, "optional xlsx workbook")
		_ = fs.Parse(args)

		svc := pipeline.NewService(cfg)
		if strings.TrimSpace(cfg.DBPath) != "" {
			db, err := storage.Open(cfg.DBPath)
			must(err)
			defer db.Close()
			svc.WithStore(db)
		}
		res, err := svc.Run()
		must(err)
		fmt.Printf("run done products=%d categories=%d brands=%d trace=%s\n", len(res.Products), len(res.Categories), len(res.Brands), res.TraceID)
	case "resolve":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		dbPath := fs.String("db", cfg.DBPath, "sqlite store")
		out := fs.String("out", "", "resolved products json path")
		_ = fs.Parse(args)
		if strings.TrimSpace(*dbPath) == "" || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--db and --out are required"))
		}
		db, err := storage.Open(*dbPath)
		must(err)
		defer db.Close()
		printSummary(db)
		resolved, err := pipeline.ResolveFromStore(db)
		must(err)
		blob, err := pipeline.EncodeResolved(resolved)
		must(err)
		must(pipeline.WriteJSON(*out, blob))
		fmt.Printf("resolved %d products to %s\n", len(resolved), *out)
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		dbPath := fs.String("db", cfg.DBPath, "sqlite store")
		out := fs.String("out", cfg.WorkbookPath, "output xlsx path")
		_ = fs.Parse(args)
		if strings.TrimSpace(*dbPath) == "" || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--db and --out are required"))
		}
		db, err := storage.Open(*dbPath)
		must(err)
		defer db.Close()
		printSummary(db)
		n, err := pipeline.ExportStoreWorkbook(db, *out)
		must(err)
		fmt.Printf("exported %d products to %s\n", n, *out)
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage: catnorm [command]")
	fmt.Println("commands:")
	fmt.Println("  run [--input=... --categories=... --brands=... --products=... --db=... --xlsx=...]  (default)")
	fmt.Println("  resolve --db=./data/catalog.db --out=./out/resolved.json")
	fmt.Println("  export:xlsx --db=./data/catalog.db --out=./out/catalog.xlsx")
}

func printSummary(db *storage.DB) {
	sum, err := pipeline.SummarizeStore(db)
	must(err)
	if sum.TraceID == "" {
		fmt.Println("store has no recorded run")
		return
	}
	fmt.Printf("store products=%d last_run=%s stored_at=%s\n", sum.Products, sum.TraceID, sum.StoredAt)
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
