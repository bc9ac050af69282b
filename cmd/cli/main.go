package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/galan4520/finanzas/internal/config"
	"github.com/galan4520/finanzas/internal/domain"
	"github.com/galan4520/finanzas/internal/logger"
	"github.com/galan4520/finanzas/internal/projector"
	"github.com/galan4520/finanzas/internal/remote"
	"github.com/rs/zerolog"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "summary":
		runSummary(log)
	case "pending":
		runPending(log)
	case "goals":
		runGoals(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Finanzas CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  summary   Fetch the remote snapshot and print every balance")
	fmt.Println("  pending   List pending debts and subscriptions")
	fmt.Println("  goals     List savings goals and their progress")
	fmt.Println("  help      Show this help message")
}

func fetchSnapshot(log zerolog.Logger) domain.Snapshot {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	gateway := remote.NewGateway(cfg.BaseURL, cfg.PIN, cfg.HTTPTimeout, log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	snap, err := gateway.Fetch(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch remote snapshot")
	}
	return snap
}

func runSummary(log zerolog.Logger) {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	snap := fetchSnapshot(log)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	for _, acct := range snap.Accounts {
		switch acct.Type {
		case domain.AccountWallet:
			fmt.Fprintf(w, "%s\t%s\n", acct.Name, projector.WalletBalance(snap.Transactions))
		case domain.AccountDebit:
			fmt.Fprintf(w, "%s\t%s\n", acct.Name, projector.DebitAccountBalance(snap.Transactions, acct))
		case domain.AccountCredit:
			fmt.Fprintf(w, "%s\tavailable %s of %s\n", acct.Name, projector.CreditAvailable(snap.Obligations, acct), acct.Limit)
		}
	}
	fmt.Fprintf(w, "\nTotal\t%s\n", projector.TotalBalance(snap.Transactions, snap.Accounts))
	fmt.Fprintf(w, "Debt\t%s\n", projector.TotalRemainingDebt(snap.Obligations))
	fmt.Fprintf(w, "Utilization\t%s%%\n", projector.CreditUtilization(snap.Obligations, snap.Accounts).StringFixed(1))
}

func runPending(log zerolog.Logger) {
	fs := flag.NewFlagSet("pending", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	snap := fetchSnapshot(log)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "DESCRIPTION\tCARD\tREMAINING\tINSTALLMENTS\tDUE")
	for _, o := range snap.Obligations {
		installments := fmt.Sprintf("%d/%d", o.InstallmentsPaid(), o.InstallmentCount)
		if o.Type == domain.ObligationSubscription {
			installments = "monthly"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			o.Description, o.CardAccount, o.RemainingDebt(), installments, o.DueDate.Format("2006-01-02"))
	}
}

func runGoals(log zerolog.Logger) {
	fs := flag.NewFlagSet("goals", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	snap := fetchSnapshot(log)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "GOAL\tSAVED\tTARGET\tSTATE")
	for _, g := range snap.Goals {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", g.Name, g.SavedAmount, g.TargetAmount, g.State)
	}
}
