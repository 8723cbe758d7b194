package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paxxchal/alx-backend-storage/internal/instrument"
	"github.com/paxxchal/alx-backend-storage/internal/store"
)

var storeCmd = &cobra.Command{
	Use:   "store <value>",
	Short: "Store a value under a new random key",
	Long:  "Store a value under a new random key and print the key. The call is counted and recorded.",
	Args:  cobra.ExactArgs(1),
	RunE:  runStore,
}

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the value stored under a key",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

var replayCmd = &cobra.Command{
	Use:   "replay [operation]",
	Short: "Print the recorded calls of an operation",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReplay,
}

var flushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Remove every key from the store",
	Args:  cobra.NoArgs,
	RunE:  runFlush,
}

func init() {
	storeCmd.Flags().String("kind", "text", "value kind: text, bytes, int or float")
	getCmd.Flags().String("as", "text", "decode as: text, bytes, int or float")
	rootCmd.AddCommand(storeCmd, getCmd, replayCmd, flushCmd)
}

func runStore(cmd *cobra.Command, args []string) (err error) {
	kind, _ := cmd.Flags().GetString("kind")
	v, err := store.ParseValue(kind, args[0])
	if err != nil {
		return err
	}
	c, _, err := openCache(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := c.KV().Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	key, err := c.Store(cmd.Context(), v)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), key)
	return nil
}

func runGet(cmd *cobra.Command, args []string) (err error) {
	as, _ := cmd.Flags().GetString("as")
	c, _, err := openCache(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := c.KV().Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	out, ok, err := c.RetrieveKind(cmd.Context(), args[0], as)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "(absent)")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func runReplay(cmd *cobra.Command, args []string) (err error) {
	op := store.StoreOp
	if len(args) > 0 {
		op = args[0]
	}
	c, _, err := openCache(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := c.KV().Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return instrument.Replay(cmd.Context(), c.KV(), cmd.OutOrStdout(), op)
}

func runFlush(cmd *cobra.Command, args []string) (err error) {
	c, _, err := openCache(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := c.KV().Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return c.KV().FlushDB(cmd.Context())
}
