package main

import (
	"context"
	"fmt"
	"time"

	"github.com/agentuity/go-cacheadapter/adapter"
	"github.com/agentuity/go-cacheadapter/config"
	"github.com/agentuity/go-cacheadapter/env"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/xhit/go-str2duration/v2"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "cachekeys",
		Short:        "Inspect and invalidate keys across configured cache stores",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "configuration file (env "+env.EnvConfig+", default "+env.DefaultConfigFile+")")
	root.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error or none")

	root.AddCommand(
		newKeysCmd(),
		newGetCmd(),
		newSetCmd(),
		newDelCmd(),
		newInvalidateCmd(),
	)
	return root
}

// withClient loads the configuration, opens the stores and registers an
// adapter for the duration of fn.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, c adapter.Client) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	log := env.NewLogger(cmd)

	cfg, err := config.Load(env.ConfigFile(cmd))
	if err != nil {
		return err
	}
	backends, err := cfg.Build(ctx, log)
	if err != nil {
		return err
	}
	defer backends.Close()

	var reg adapter.Registry
	if _, err := adapter.Use(&reg, backends.Manager, backends.Stores,
		adapter.WithAdapterOptions(adapter.WithLogger(log))); err != nil {
		return err
	}
	return fn(ctx, reg.Client())
}

func newKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys <pattern>",
		Short: "List keys matching a glob, SQL LIKE or regex pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c adapter.Client) error {
				keys, err := c.Keys(ctx, args[0])
				if err != nil {
					return err
				}
				for _, key := range keys {
					fmt.Fprintln(cmd.OutOrStdout(), key)
				}
				return nil
			})
		},
	}
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the value stored under a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c adapter.Client) error {
				val, found, err := c.Get(ctx, args[0])
				if err != nil {
					return err
				}
				if !found {
					return errors.Newf("key %q not found", args[0])
				}
				// serialized backends hand back msgpack
				if data, ok := val.([]byte); ok {
					var decoded any
					if err := msgpack.Unmarshal(data, &decoded); err == nil {
						val = decoded
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), val)
				return nil
			})
		},
	}
}

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a string value under a key in every store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ttlFlag, _ := cmd.Flags().GetString("ttl")
			var ttl time.Duration
			if ttlFlag != "" {
				d, err := str2duration.ParseDuration(ttlFlag)
				if err != nil {
					return errors.Wrapf(err, "invalid --ttl %q", ttlFlag)
				}
				ttl = d
			}
			return withClient(cmd, func(ctx context.Context, c adapter.Client) error {
				_, err := c.Set(ctx, args[0], args[1], ttl)
				return err
			})
		},
	}
	cmd.Flags().String("ttl", "", "time to live, e.g. 90s, 2h or 1d (default: store default)")
	return cmd
}

func newDelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "del <key>...",
		Short: "Delete keys from every store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c adapter.Client) error {
				return c.Del(ctx, args...)
			})
		},
	}
}

func newInvalidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate <pattern>...",
		Short: "Delete every key matching any of the patterns",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c adapter.Client) error {
				return c.DelHash(ctx, args...)
			})
		},
	}
}
