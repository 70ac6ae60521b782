// fundsplit is the operator CLI for the revenue-splitting ledger: it closes
// funded rounds into deployed ledgers, retries and reconciles deployments,
// and simulates payout distribution.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fundsplit/libfundsplit-go/allocation"
	"github.com/fundsplit/libfundsplit-go/config"
	"github.com/fundsplit/libfundsplit-go/deploy"
	"github.com/fundsplit/libfundsplit-go/funding"
	"github.com/fundsplit/libfundsplit-go/identity"
	"github.com/fundsplit/libfundsplit-go/ledger"
	"github.com/fundsplit/libfundsplit-go/rates"
	"github.com/fundsplit/libfundsplit-go/simulator"
	"github.com/fundsplit/libfundsplit-go/transfer"
)

var (
	cfgPath string
	cfg     config.Config
	logger  zerolog.Logger
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fundsplit",
		Short:         "Revenue-splitting ledger deployment and payout tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			if err := config.ValidateConfig(cfg); err != nil {
				return err
			}
			level, _ := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
			logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
				Level(level).With().Timestamp().Logger()
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "fundsplit.yaml", "path to the configuration file")

	root.AddCommand(deployCmd())
	root.AddCommand(retryCmd())
	root.AddCommand(reconcileCmd())
	root.AddCommand(statusCmd())
	root.AddCommand(simulateCmd())
	return root
}

// roundFile is the YAML description of a funding round to close. Owner and
// claimants may be settlement addresses or alias@domain payout handles;
// handles are resolved to addresses before the round is built.
type roundFile struct {
	Owner         string `yaml:"owner"`
	TargetFiat    uint64 `yaml:"target_fiat"`
	RateFiat      uint64 `yaml:"rate_fiat_per_unit"`
	Contributions []struct {
		Claimant string `yaml:"claimant"`
		Amount   uint64 `yaml:"amount"`
	} `yaml:"contributions"`
}

// resolveParticipant turns a payout handle into its settlement address;
// anything without an '@' is passed through as an address.
func resolveParticipant(ctx context.Context, resolver *identity.AddressResolver, id string) (string, error) {
	if !strings.Contains(id, "@") {
		return id, nil
	}
	address, err := resolver.ResolveAddress(ctx, id)
	if err != nil {
		return "", err
	}
	logger.Info().Str("handle", id).Str("address", address).Msg("resolved payout handle")
	return address, nil
}

func openOrchestrator() (*deploy.Orchestrator, *deploy.BoltRecordStore, error) {
	store, err := deploy.OpenBoltRecordStore(cfg.RecordStorePath())
	if err != nil {
		return nil, nil, err
	}
	provisioner := &deploy.ExecProvisioner{Command: cfg.ProvisionCommand}
	return deploy.NewOrchestrator(store, provisioner, cfg.ProvisionTimeout(), logger), store, nil
}

func deployCmd() *cobra.Command {
	var (
		roundPath string
		dnssec    bool
	)
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Close a funded round and provision its ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(roundPath)
			if err != nil {
				return fmt.Errorf("read round file: %w", err)
			}
			var rf roundFile
			if err := yaml.Unmarshal(data, &rf); err != nil {
				return fmt.Errorf("parse round file: %w", err)
			}

			var dnssecResolver *identity.DNSSECResolver
			if dnssec {
				dnssecResolver = identity.NewDNSSECResolver("")
			}
			resolver := identity.NewAddressResolver(nil, dnssecResolver)

			owner, err := resolveParticipant(cmd.Context(), resolver, rf.Owner)
			if err != nil {
				return err
			}

			round, err := funding.NewRound(rf.TargetFiat)
			if err != nil {
				return err
			}
			for _, c := range rf.Contributions {
				claimant, err := resolveParticipant(cmd.Context(), resolver, c.Claimant)
				if err != nil {
					return err
				}
				if err := round.Contribute(claimant, c.Amount); err != nil {
					return err
				}
			}

			orchestrator, store, err := openOrchestrator()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			machine, err := funding.NewStateMachine(orchestrator, nil, logger)
			if err != nil {
				return err
			}

			rate := rates.Rate{FiatPerUnit: rf.RateFiat, SettlementDecimals: cfg.SettlementDecimals}
			address, err := machine.OnGoalReached(cmd.Context(), round, owner, cfg.CapMultiplierBps, rate)
			if err != nil {
				return err
			}

			fmt.Printf("round %s live: ledger %s\n", round.ID(), address)
			return nil
		},
	}
	cmd.Flags().StringVar(&roundPath, "round-file", "", "YAML file describing the round (required)")
	cmd.Flags().BoolVar(&dnssec, "dnssec", false, "require DNSSEC authentication when resolving payout handles")
	_ = cmd.MarkFlagRequired("round-file")
	return cmd
}

func retryCmd() *cobra.Command {
	var roundID string
	cmd := &cobra.Command{
		Use:   "retry",
		Short: "Retry a failed deployment with its recorded parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			orchestrator, store, err := openOrchestrator()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			address, err := orchestrator.Retry(cmd.Context(), roundID)
			if err != nil {
				return err
			}
			fmt.Printf("round %s deployed: ledger %s\n", roundID, address)
			return nil
		},
	}
	cmd.Flags().StringVar(&roundID, "round", "", "round id (required)")
	_ = cmd.MarkFlagRequired("round")
	return cmd
}

func reconcileCmd() *cobra.Command {
	var roundID, address string
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Resolve an ambiguous deployment with an operator-observed address",
		RunE: func(cmd *cobra.Command, args []string) error {
			orchestrator, store, err := openOrchestrator()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := orchestrator.Reconcile(roundID, address); err != nil {
				return err
			}
			fmt.Printf("round %s reconciled: ledger %s\n", roundID, address)
			return nil
		},
	}
	cmd.Flags().StringVar(&roundID, "round", "", "round id (required)")
	cmd.Flags().StringVar(&address, "address", "", "observed ledger address (required)")
	_ = cmd.MarkFlagRequired("round")
	_ = cmd.MarkFlagRequired("address")
	return cmd
}

func statusCmd() *cobra.Command {
	var roundID string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show deployment records",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := openOrchestrator()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			var records []*deploy.DeploymentRecord
			if roundID != "" {
				record, err := store.Get(roundID)
				if err != nil {
					return err
				}
				records = append(records, record)
			} else {
				if records, err = store.List(); err != nil {
					return err
				}
			}

			for _, r := range records {
				fmt.Printf("%s\t%s\t%s\t%s\n", r.RoundID, r.Status, r.LedgerAddress, r.Error)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&roundID, "round", "", "show a single round")
	return cmd
}

func simulateCmd() *cobra.Command {
	var (
		repaymentCap uint64
		deposits     []string
		dryRun       bool
	)
	cmd := &cobra.Command{
		Use:   "simulate shares.yaml",
		Short: "Exercise distribution against a share table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read share file: %w", err)
			}
			var entries []struct {
				Claimant string `yaml:"claimant"`
				Shares   uint64 `yaml:"shares"`
			}
			if err := yaml.Unmarshal(data, &entries); err != nil {
				return fmt.Errorf("parse share file: %w", err)
			}
			table := make(allocation.ShareTable, 0, len(entries))
			for _, e := range entries {
				table = append(table, allocation.ShareEntry{ClaimantID: e.Claimant, Shares: e.Shares})
			}

			var transferrer ledger.Transferrer
			if dryRun {
				transferrer = dryRunTransferrer{}
			} else {
				rpcCfg, err := transfer.ResolveConfig(&cfg.RPC, envMap(), cfg.Network)
				if err != nil {
					return err
				}
				transferrer = transfer.NewRPCTransferrer(transfer.NewRPCClient(*rpcCfg), cfg.SettlementDecimals)
			}

			cred, err := ledger.NewAdminCredential("simulate")
			if err != nil {
				return err
			}
			l, err := ledger.New(table, repaymentCap, "simulate", cred, transferrer)
			if err != nil {
				return err
			}

			schedule := make([]uint64, 0, len(deposits))
			for _, d := range deposits {
				amount, err := strconv.ParseUint(d, 10, 64)
				if err != nil {
					return fmt.Errorf("bad deposit %q: %w", d, err)
				}
				schedule = append(schedule, amount)
			}

			report, err := simulator.New(l, logger).Run(context.Background(), schedule)
			if err != nil {
				return err
			}
			for claimant, amount := range report.Released {
				fmt.Printf("%s\t%s\n", claimant, rates.FormatAmount(amount, cfg.SettlementDecimals))
			}
			fmt.Printf("total released %s of cap %s (cap reached: %v)\n",
				rates.FormatAmount(report.TotalReleased, cfg.SettlementDecimals),
				rates.FormatAmount(repaymentCap, cfg.SettlementDecimals),
				report.CapReached)
			return nil
		},
	}
	cmd.Flags().Uint64Var(&repaymentCap, "cap", 0, "repayment cap in smallest settlement units (required)")
	cmd.Flags().StringSliceVar(&deposits, "deposits", nil, "deposit schedule in smallest settlement units")
	cmd.Flags().BoolVar(&dryRun, "dry-run", true, "log transfers instead of sending them")
	_ = cmd.MarkFlagRequired("cap")
	return cmd
}

// dryRunTransferrer logs transfers instead of performing them.
type dryRunTransferrer struct{}

func (dryRunTransferrer) Transfer(_ context.Context, toAddress string, amount uint64) error {
	logger.Info().Str("to", toAddress).Uint64("amount", amount).Msg("dry-run transfer")
	return nil
}

// envMap exposes the process environment as a map for config resolution.
func envMap() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i > 0 {
			env[kv[:i]] = kv[i+1:]
		}
	}
	return env
}
