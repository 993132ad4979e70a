package app

import (
	"context"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath    string
	format        string
	workers       int
	maxIterations uint64
	nibbles       int
	bytes         int
	policy        string
}

func (f *rootFlags) overrides(cmd *cobra.Command) Overrides {
	var o Overrides
	flags := cmd.Flags()
	if flags.Changed("workers") {
		o.Workers = &f.workers
	}
	if flags.Changed("max-iterations") {
		o.MaxIterations = &f.maxIterations
	}
	if flags.Changed("policy") {
		o.Policy = &f.policy
	}
	if flags.Changed("nibbles") {
		o.Nibbles = &f.nibbles
	}
	if flags.Changed("bytes") {
		o.Bytes = &f.bytes
	}
	return o
}

// NewRootCommand builds the powattest command tree.
func NewRootCommand() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "powattest",
		Short: "Proof-of-work commitments over JSON documents, attested with RSA",
		Long: `powattest finds the smallest nonce such that SHA-256(document || nonce)
meets a leading-zero difficulty target, signs the resulting hash with an RSA
key pair and emits an attestation record carrying the public key.

Documents are read from a file path, or from stdin when the path is "-".`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "YAML configuration file (environment variables override it)")
	pf.StringVarP(&flags.format, "format", "f", FormatJSON, "attestation output format: json or yaml")
	pf.IntVar(&flags.workers, "workers", 0, "parallel search workers (0 = one per CPU)")
	pf.Uint64Var(&flags.maxIterations, "max-iterations", 0, "nonce budget (0 = unbounded)")
	pf.StringVar(&flags.policy, "policy", "hex", "difficulty policy: hex or bytes")
	pf.IntVar(&flags.nibbles, "nibbles", 4, "leading zero hex nibbles for the hex policy")
	pf.IntVar(&flags.bytes, "bytes", 2, "leading zero bytes for the bytes policy")

	root.AddCommand(newAttestCommand(flags), newVerifyCommand(flags))
	return root
}

func newAttestCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "attest <document.json>",
		Short: "Search a nonce for the document and print a signed attestation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := loadEngine(flags.configPath, flags.overrides(cmd))
			if err != nil {
				return err
			}
			defer engine.Logger.Sync() //nolint:errcheck

			return RunAttest(cmd.Context(), engine, args[0], flags.format, cmd.OutOrStdout())
		},
	}
}

func newVerifyCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <document.json> <attestation>",
		Short: "Check an attestation against its document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := loadEngine(flags.configPath, flags.overrides(cmd))
			if err != nil {
				return err
			}
			defer engine.Logger.Sync() //nolint:errcheck

			return RunVerify(cmd.Context(), engine, args[0], args[1], cmd.OutOrStdout())
		},
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
