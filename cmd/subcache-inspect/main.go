// subcache-inspect is the operator CLI for a running subcache-backed
// process: it fetches each configured family's debug snapshot, prints it as
// text or JSON, and can poll on an interval or fan out across several
// targets at once.
//
// The target Go service is expected to expose, per family name:
//   - GET /debug/subcache/<family>/snapshot – JSON payload with cache stats.
//
// The snapshot object is intentionally generic; we decode into map[string]any
// to avoid version skew between CLI and library.
//
// © 2025 subcache authors. MIT License.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

var version = "dev"

type options struct {
	targets  []string
	families []string
	json     bool
	watch    bool
	interval time.Duration
	version  bool
}

func parseFlags() *options {
	opts := &options{}
	var targets, families string
	fs := flag.NewFlagSet("subcache-inspect", flag.ExitOnError)
	fs.StringVar(&targets, "targets", "http://127.0.0.1:6060", "comma-separated list of subcache-debug base URLs")
	fs.StringVar(&families, "families", "font,outline,glyphmetrics,shaperfont,bitmap,composite", "comma-separated list of family names to query")
	fs.BoolVar(&opts.json, "json", false, "print machine-readable JSON instead of text")
	fs.BoolVar(&opts.watch, "watch", false, "poll every -interval instead of exiting after one snapshot")
	fs.DurationVar(&opts.interval, "interval", 2*time.Second, "polling interval when -watch is set")
	fs.BoolVar(&opts.version, "version", false, "print the CLI version and exit")
	fs.Parse(os.Args[1:])

	opts.targets = splitNonEmpty(targets)
	opts.families = splitNonEmpty(families)
	return opts
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func main() {
	opts := parseFlags()

	if opts.version {
		fmt.Println(version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	if opts.watch {
		ticker := time.NewTicker(opts.interval)
		defer ticker.Stop()
		for {
			if err := dumpOnce(ctx, opts); err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
			}
			select {
			case <-ticker.C:
				continue
			case <-ctx.Done():
				return
			}
		}
	}

	if err := dumpOnce(ctx, opts); err != nil {
		fatal(err)
	}
}

// dumpOnce fans out one snapshot fetch per (target, family) pair
// concurrently via errgroup. Text output lists the results in the order they
// were requested so watch-mode output stays stable across polls; JSON output
// is one object keyed by "<target>/<family>".
func dumpOnce(ctx context.Context, opts *options) error {
	type key struct{ target, family string }
	order := make([]key, 0, len(opts.targets)*len(opts.families))
	for _, target := range opts.targets {
		for _, family := range opts.families {
			order = append(order, key{target, family})
		}
	}

	snaps := make([]map[string]any, len(order))
	g, gctx := errgroup.WithContext(ctx)
	for i, k := range order {
		i, k := i, k
		g.Go(func() error {
			snap, err := fetchSnapshot(gctx, k.target, k.family)
			if err != nil {
				return fmt.Errorf("%s/%s: %w", k.target, k.family, err)
			}
			snaps[i] = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if opts.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		out := make(map[string]map[string]any, len(order))
		for i, k := range order {
			out[k.target+"/"+k.family] = snaps[i]
		}
		return enc.Encode(out)
	}
	for i, k := range order {
		prettyPrint(k.target, k.family, snaps[i])
	}
	return nil
}

func fetchSnapshot(ctx context.Context, base, family string) (map[string]any, error) {
	url := fmt.Sprintf("%s/debug/subcache/%s/snapshot", base, family)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", res.Status)
	}
	var data map[string]any
	if err := json.NewDecoder(res.Body).Decode(&data); err != nil {
		return nil, err
	}
	return data, nil
}

func prettyPrint(target, family string, data map[string]any) {
	fmt.Printf("%s [%s] hits=%v misses=%v items=%v size_bytes=%v hit_ratio=%v\n",
		target, family, data["hits"], data["misses"], data["items"], data["size_bytes"], data["hit_ratio"])
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "subcache-inspect:", err)
	os.Exit(1)
}
