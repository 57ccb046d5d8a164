package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/timnew/Fuel-price/internal/utils"
	"github.com/timnew/Fuel-price/pkg/config"
	"github.com/timnew/Fuel-price/pkg/digest"
	"github.com/timnew/Fuel-price/pkg/feed"
	"github.com/timnew/Fuel-price/pkg/mail"
	"github.com/timnew/Fuel-price/pkg/report"
	"github.com/timnew/Fuel-price/pkg/storage"
)

// runCmd implements: fuelprice run
//
// One synchronous batch: fetch the feed, update history, build reports and
// send one digest per subscriber. Scheduling is left to cron.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch the feed, update history and email digests",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return fmt.Errorf("unknown command: '%s'. See 'fuelprice run --help'", args[0])
		}

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		force, _ := cmd.Flags().GetBool("force")

		settings, subErrs := config.Load(viper.GetViper())
		for _, err := range subErrs {
			utils.Log.Warnf("Skipping subscriber: %v", err)
		}

		var sender digest.Sender
		if dryRun {
			sender = mail.StdoutSender{}
		} else {
			if settings.SMTP.Host == "" {
				return errors.New("smtp.host not configured; set it in ~/.fuelprice.yaml or use --dry-run")
			}
			sender = mail.NewSMTPSender(settings.SMTP.Host, settings.SMTP.Port,
				settings.SMTP.Username, settings.SMTP.Password, settings.SMTP.From)
		}

		return runBatch(cmd.Context(), settings, sender, force)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("dry-run", false, "Print digests to stdout instead of emailing them")
	runCmd.Flags().Bool("force", false, "Send digests even when nothing changed")
}

// runBatch executes one batch end to end. A feed failure aborts before any
// history is mutated or any email sent.
func runBatch(ctx context.Context, settings config.Settings, sender digest.Sender, force bool) error {
	now := time.Now().UTC()

	observations, err := feed.NewClient(settings.FeedURL).Fetch(now)
	if err != nil {
		return err
	}
	utils.Log.Infof("Fetched %d observations", len(observations))

	dbLock, err := utils.NewDBLock(settings.DBPath)
	if err != nil {
		return err
	}
	if err := dbLock.Lock(); err != nil {
		return err
	}
	defer dbLock.Unlock()

	db, err := storage.Open(settings.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	builder := report.NewBuilder(db, settings.AlertThreshold, settings.HistoryLimit)
	set, buildErrs := builder.BuildSet(ctx, observations)
	for _, err := range buildErrs {
		utils.Log.Errorf("Report skipped: %v", err)
	}

	for _, sub := range settings.Subscribers {
		d := digest.New(sub.Email, sub.FuelTypes, sub.HomeState, sub.ForceSend || force, now)
		d.AddReports(set)
		sent, err := d.TrySend(sender)
		if err != nil {
			utils.Log.Errorf("Sending digest to %s failed: %v", sub.Email, err)
			continue
		}
		if sent {
			utils.Log.Infof("Digest sent to %s", sub.Email)
		} else {
			utils.Log.Debugf("No changes for %s, digest skipped", sub.Email)
		}
	}
	return nil
}
