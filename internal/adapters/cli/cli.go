package cli

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"relief-ledger/internal/app"
	"relief-ledger/internal/core"
)

// Run executes a one-shot CLI command and exits.
// args is os.Args[1:]; the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string) {
	if len(args) == 0 {
		log.Fatal("Usage: stockctl <stock|alerts|history> [args]\n" +
			"  stock [department_id]      current stock levels\n" +
			"  alerts [department_id]     low stock, critical, expiring, expired\n" +
			"  history <item_code> [n]    last n transactions for an item")
	}

	switch args[0] {
	case "stock", "st", "s":
		departmentID := optionalInt(args, 1, 0)
		result, err := svc.QueryItems(ctx, core.ItemFilter{
			DepartmentID: departmentID,
			PerPage:      100,
			Sort:         "item_code",
		})
		if err != nil {
			log.Fatalf("Failed to query stock: %v", err)
		}
		printStock(result)

	case "alerts", "al", "a":
		departmentID := optionalInt(args, 1, 0)
		printAlerts(ctx, svc, departmentID)

	case "history", "hist", "h":
		if len(args) < 2 {
			log.Fatal("Usage: stockctl history <item_code> [limit]")
		}
		limit := optionalInt(args, 2, 20)
		result, err := svc.ItemHistory(ctx, args[1], limit)
		if err != nil {
			log.Fatalf("Failed to load history: %v", err)
		}
		printHistory(strings.ToUpper(args[1]), result)

	default:
		log.Fatalf("Unknown command: %s\nAvailable: stock, alerts, history", args[0])
	}
}

// optionalInt reads args[idx] as an integer, or returns def when the
// argument is absent or not a number.
func optionalInt(args []string, idx, def int) int {
	if len(args) <= idx {
		return def
	}
	n, err := strconv.Atoi(args[idx])
	if err != nil {
		return def
	}
	return n
}

func printStock(result *app.ItemPageResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 78))
	fmt.Printf("  %-74s\n", "STOCK LEVELS")
	fmt.Printf("  Items  : %d   Total value: %s\n", result.Total, result.Aggregates.TotalValue.StringFixed(2))
	fmt.Printf("  Low: %d   Critical: %d   Out of stock: %d\n",
		result.Aggregates.LowStockCount, result.Aggregates.CriticalCount, result.Aggregates.OutOfStockCount)
	fmt.Println(strings.Repeat("=", 78))
	fmt.Printf("  %-12s %-24s %8s %8s %8s %-12s\n", "CODE", "NAME", "CURRENT", "RESERVED", "AVAIL", "STATUS")
	fmt.Println(strings.Repeat("-", 78))
	for _, it := range result.Items {
		fmt.Printf("  %-12s %-24s %8d %8d %8d %-12s\n",
			it.ItemCode, clip(it.Name, 24), it.Quantity.Current, it.Quantity.Reserved,
			it.AvailableQuantity, it.StockStatus)
	}
	fmt.Println(strings.Repeat("=", 78))
	if result.Total > len(result.Items) {
		fmt.Printf("  showing %d of %d items\n", len(result.Items), result.Total)
	}
}

func printAlerts(ctx context.Context, svc app.ApplicationService, departmentID int) {
	critical, err := svc.CriticalStockAlerts(ctx, departmentID)
	if err != nil {
		log.Fatalf("Failed to load critical alerts: %v", err)
	}
	low, err := svc.LowStockAlerts(ctx, departmentID)
	if err != nil {
		log.Fatalf("Failed to load low stock alerts: %v", err)
	}
	expiring, err := svc.ExpiringItems(ctx, departmentID, 0)
	if err != nil {
		log.Fatalf("Failed to load expiring items: %v", err)
	}
	expired, err := svc.ExpiredItems(ctx, departmentID)
	if err != nil {
		log.Fatalf("Failed to load expired items: %v", err)
	}

	fmt.Println()
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("  %-66s\n", "STOCK ALERTS")
	fmt.Println(strings.Repeat("=", 70))

	printAlertSection("CRITICAL (at or below half minimum)", critical)
	printAlertSection("LOW STOCK (at or below minimum)", low)
	printAlertSection("EXPIRING SOON", expiring)
	printAlertSection("EXPIRED", expired)
}

func printAlertSection(title string, result *app.AlertResult) {
	fmt.Printf("  %s: %d item(s)\n", title, result.Count)
	if result.Count == 0 {
		fmt.Println(strings.Repeat("-", 70))
		return
	}
	for _, it := range result.Items {
		line := fmt.Sprintf("    %-12s %-28s %5d / min %d", it.ItemCode, clip(it.Name, 28),
			it.Quantity.Current, it.Quantity.Minimum)
		if it.ExpiryDate != nil {
			line += "   expires " + it.ExpiryDate.Format("2006-01-02")
		}
		fmt.Println(line)
	}
	fmt.Println(strings.Repeat("-", 70))
}

func printHistory(code string, result *app.TransactionListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 92))
	fmt.Printf("  TRANSACTION HISTORY %s (%d entries)\n", code, result.Count)
	fmt.Println(strings.Repeat("=", 92))
	fmt.Printf("  %-28s %-12s %6s %-10s %-20s %s\n", "TRANSACTION", "TYPE", "QTY", "STATUS", "DATE", "REASON")
	fmt.Println(strings.Repeat("-", 92))
	for _, txn := range result.Transactions {
		fmt.Printf("  %-28s %-12s %6d %-10s %-20s %s\n",
			txn.TransactionID, txn.Type, txn.Quantity, txn.Status,
			txn.CreatedAt.Format("2006-01-02 15:04:05"), clip(txn.Reason, 30))
	}
	fmt.Println(strings.Repeat("=", 92))
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
