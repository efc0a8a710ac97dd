package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"moneta/internal/game"
)

var (
	accent  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	warn    = color.New(color.FgYellow, color.Bold)
	danger  = color.New(color.FgRed, color.Bold)
	neutral = color.New(color.FgHiWhite)
)

func printDanger(msg string) {
	danger.Fprintln(os.Stderr, msg)
}

func formatLira(micros int64) string {
	return fmt.Sprintf("%.2f TL", game.MicrosToLira(micros))
}

func printLeaderboard(rows []game.Summary, seed int64) {
	accent.Printf("Leaderboard (seed %d)\n", seed)
	neutral.Printf("%-4s %-16s %-11s %7s %16s %14s\n", "#", "player", "status", "months", "net worth", "debt")
	for i, row := range rows {
		line := fmt.Sprintf("%-4d %-16s %-11s %7d %16s %14s",
			i+1, row.Player, string(row.Status), row.MonthsCompleted,
			formatLira(row.NetWorthMicros), formatLira(row.DebtMicros))
		switch row.Status {
		case game.StatusDefaulted:
			danger.Println(line)
		case game.StatusCompleted:
			success.Println(line)
		default:
			fmt.Println(line)
		}
	}
}

func printBanks(offers []game.BankOffer, month int) {
	if len(offers) == 0 {
		warn.Printf("No banks are open in month %d.\n", month)
		return
	}
	accent.Printf("Bank market, month %d\n", month)
	neutral.Printf("%-10s %10s %11s %10s\n", "bank", "term rate", "guarantee", "loan rate")
	for _, o := range offers {
		fmt.Printf("%-10s %9.2f%% %10.0f%% %9.2f%%\n",
			o.ID, o.TermRate*100, o.Guarantee*100, o.LoanRate*100)
	}
}
