// irrq is a command-line client for IRRd query servers.
//
// Usage:
//
//	irrq [--host whois.radb.net:43] --version
//	irrq --as-set AS-EXAMPLE [--expand [-6]]
//	irrq --routes AS65000 [-6]
//	irrq --mnt-by MNT-EXAMPLE
//	irrq --object mntner,MNT-EXAMPLE
//
// With --expand, the as-set is expanded recursively and the originated
// prefixes of every member are fetched over a single pipelined
// connection. --redis enables a response cache for expansion results and
// --metrics-addr exposes Prometheus metrics while the query runs.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	flags "github.com/jessevdk/go-flags"
	"github.com/redis/go-redis/v9"

	"github.com/irrkit/go-irrd/cache"
	"github.com/irrkit/go-irrd/client"
	"github.com/irrkit/go-irrd/metrics"
)

type options struct {
	Host          string        `short:"H" long:"host" default:"whois.radb.net:43" description:"IRRd server address"`
	ServerTimeout time.Duration `long:"server-timeout" description:"Idle timeout requested from the server"`
	Debug         bool          `long:"debug" description:"Enable debug logging"`

	Version bool   `short:"v" long:"version" description:"Print the server version"`
	Sources bool   `long:"sources" description:"List the sources currently selected on the connection"`
	ASSet   string `long:"as-set" value-name:"NAME" description:"Expand an as-set"`
	Expand  bool   `long:"expand" description:"With --as-set: expand recursively and fetch each member's routes"`
	Routes  string `long:"routes" value-name:"ASN" description:"List prefixes originated by an autonomous system"`
	IPv6    bool   `short:"6" long:"ipv6" description:"Query IPv6 routes instead of IPv4"`
	MntBy   string `long:"mnt-by" value-name:"NAME" description:"List objects maintained by a mntner"`
	Object  string `long:"object" value-name:"CLASS,KEY" description:"Retrieve one RPSL object"`

	Redis       string        `long:"redis" value-name:"ADDR" description:"Redis address for response caching"`
	CacheTTL    time.Duration `long:"cache-ttl" default:"1h" description:"Cache entry lifetime"`
	MetricsAddr string        `long:"metrics-addr" value-name:"ADDR" description:"Serve Prometheus metrics on this address"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		// go-flags has already printed the message (or the help text).
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}
	if err := run(&opts); err != nil {
		fmt.Fprintf(os.Stderr, "irrq: %v\n", err)
		os.Exit(1)
	}
}

func run(opts *options) error {
	cfg := client.DefaultConfig()
	cfg.ServerTimeout = opts.ServerTimeout
	if opts.Debug {
		cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	if opts.MetricsAddr != "" {
		metrics.Serve(opts.MetricsAddr)
	}

	var store cache.Store
	if opts.Redis != "" {
		store = cache.NewRedis(redis.NewClient(&redis.Options{Addr: opts.Redis}), opts.CacheTTL)
	}

	irr, err := client.New(opts.Host, cfg)
	if err != nil {
		return err
	}

	switch {
	case opts.Version:
		return withConnection(irr, func(conn *client.Connection) error {
			version, err := conn.Version()
			if err != nil {
				return err
			}
			fmt.Println(version)
			return nil
		})
	case opts.Sources:
		return withConnection(irr, func(conn *client.Connection) error {
			return printItems(conn.Sources())
		})
	case opts.ASSet != "" && opts.Expand:
		return expand(irr, store, opts)
	case opts.ASSet != "":
		return withConnection(irr, func(conn *client.Connection) error {
			return printItems(conn.ASSetMembers(opts.ASSet))
		})
	case opts.Routes != "":
		return withConnection(irr, func(conn *client.Connection) error {
			if opts.IPv6 {
				return printItems(conn.IPv6Routes(opts.Routes))
			}
			return printItems(conn.IPv4Routes(opts.Routes))
		})
	case opts.MntBy != "":
		return query(irr, client.MntBy(opts.MntBy))
	case opts.Object != "":
		class, key, ok := strings.Cut(opts.Object, ",")
		if !ok {
			return fmt.Errorf("--object wants CLASS,KEY, got %q", opts.Object)
		}
		return query(irr, client.RpslObject(client.ObjectClass(class), key))
	default:
		return errors.New("no query requested (try --help)")
	}
}

func withConnection(irr *client.IrrClient, f func(*client.Connection) error) error {
	conn, err := irr.Connect(context.Background())
	if err != nil {
		return err
	}
	defer conn.Close()
	return f(conn)
}

func printItems(items []client.ResponseItem[string], err error) error {
	if err != nil {
		return err
	}
	for _, item := range items {
		fmt.Println(item.Content())
	}
	return nil
}

// query runs a single catalogue query and prints each response item on
// its own line (paragraph items separated by blank lines).
func query(irr *client.IrrClient, q client.Query) error {
	return withConnection(irr, func(conn *client.Connection) error {
		pipeline := conn.Pipeline()
		defer pipeline.Clear()
		if err := pipeline.Push(q); err != nil {
			return err
		}
		stream := client.Responses(pipeline, client.ParseString)
		first := true
		for {
			item, err := stream.Next()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			if !first {
				fmt.Println()
			}
			first = false
			fmt.Println(item.Content())
		}
	})
}

// expand recursively expands an as-set and fetches the originated
// prefixes of every member over one pipelined connection, consulting the
// response cache when one is configured.
func expand(irr *client.IrrClient, store cache.Store, opts *options) error {
	routes := func(autnum string) client.Query {
		if opts.IPv6 {
			return client.Ipv6Routes(autnum)
		}
		return client.Ipv4Routes(autnum)
	}
	initial := client.AsSetMembersRecursive(opts.ASSet)
	cacheKey := initial.Cmd() + routes("*").Cmd()

	ctx := context.Background()
	if store != nil {
		if prefixes, ok, err := store.Get(ctx, cacheKey); err == nil && ok {
			for _, prefix := range prefixes {
				fmt.Println(prefix)
			}
			return nil
		} else if err != nil {
			fmt.Fprintf(os.Stderr, "irrq: cache read failed: %v\n", err)
		}
	}

	return withConnection(irr, func(conn *client.Connection) error {
		pipeline, err := conn.FromInitial(initial,
			func(item client.ResponseItem[string], err error) []client.Query {
				if err != nil {
					fmt.Fprintf(os.Stderr, "irrq: skipping member: %v\n", err)
					return nil
				}
				return []client.Query{routes(item.Content())}
			})
		if err != nil {
			return err
		}
		defer pipeline.Clear()

		var prefixes []string
		stream := client.Responses(pipeline, client.ParseString)
		for {
			item, err := stream.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				var serverErr *client.ServerError
				if errors.As(err, &serverErr) {
					fmt.Fprintf(os.Stderr, "irrq: %v\n", serverErr)
					continue
				}
				return err
			}
			prefixes = append(prefixes, item.Content())
			fmt.Println(item.Content())
		}

		if store != nil {
			if err := store.Put(ctx, cacheKey, prefixes); err != nil {
				fmt.Fprintf(os.Stderr, "irrq: cache write failed: %v\n", err)
			}
		}
		return nil
	})
}
