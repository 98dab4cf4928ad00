package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
	errs "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
	coreport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/core"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/database"
	timeadapter "github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/bootstrap"
)

func newServiceCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newServeCommand(ctx),
		newMigrateCommand(ctx),
		newSweepCommand(ctx),
		newTransferCommand(ctx),
	}
}

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the expiry sweeper",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log, err := bootstrap.NewLogger(cfg)
			if err != nil {
				return err
			}

			app, err := bootstrap.New(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			serveErr := app.Serve(cmd.Context())
			return errors.Join(serveErr, app.Close())
		},
	}
}

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log, err := bootstrap.NewLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = log.Flush() }()

			manager := database.NewManager(database.FromAppConfig(cfg), log, timeadapter.NewRealTimeProvider())
			if _, err := manager.Connect(cmd.Context()); err != nil {
				return err
			}
			defer func() { _ = manager.Close() }()

			if err := manager.Migrate(cmd.Context()); err != nil {
				return err
			}
			version, err := manager.MigrationManager().GetCurrentVersion(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %s\n", version)
			return nil
		},
	}
}

func newSweepCommand(ctx *commandContext) *cobra.Command {
	var lockPath string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Expire and refund every envelope past its deadline, once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if lockPath == "" {
				lockPath = cfg.Envelope.SweepLockPath
			}

			lock := flock.New(lockPath)
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !ok {
				return fmt.Errorf("another sweep holds %s", lockPath)
			}
			defer func() { _ = lock.Unlock() }()

			log, err := bootstrap.NewLogger(cfg)
			if err != nil {
				return err
			}
			app, err := bootstrap.New(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}

			expired, sweepErr := app.Envelopes.Sweep(cmd.Context())
			if sweepErr != nil {
				log.Error("Sweep finished with failures", coreport.ErrorFields(sweepErr, map[string]any{"expired": expired}))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "expired %d envelope(s)\n", expired)
			return errors.Join(sweepErr, app.Close())
		},
	}

	cmd.Flags().StringVar(&lockPath, "lock", "", "Lock file guarding against concurrent sweeps")
	return cmd
}

func newTransferCommand(ctx *commandContext) *cobra.Command {
	var reference string

	cmd := &cobra.Command{
		Use:   "transfer <from-user> <to-user> <amount>",
		Short: "Move money between two wallets",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: %s", errs.ErrInvalidUserID, args[0])
			}
			to, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: %s", errs.ErrInvalidUserID, args[1])
			}
			if from == 0 || to == 0 || from == to {
				return errs.ErrInvalidUserID
			}
			amount, err := entity.ValidateAndConvertAmount(args[2])
			if err != nil {
				return err
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log, err := bootstrap.NewLogger(cfg)
			if err != nil {
				return err
			}
			app, err := bootstrap.New(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}

			res, transferErr := app.Ledger.Transfer(cmd.Context(), usecase.TransferRequest{
				FromUserID: from,
				ToUserID:   to,
				Amount:     amount,
				Reference:  reference,
			})
			if transferErr == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "user %d: %s, user %d: %s\n",
					from, entity.AmountInCentsToString(res.Debit.Balance),
					to, entity.AmountInCentsToString(res.Credit.Balance))
			}
			return errors.Join(transferErr, app.Close())
		},
	}

	cmd.Flags().StringVar(&reference, "reference", "", "Idempotency reference; a replay is rejected")
	return cmd
}
