package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Summarizes one day of API logs: authentication activity, escrow and
// payment operations, and the most frequent errors. Run from the repo root
// so ./logs resolves.

type logStats struct {
	TotalErrors        int
	LoginSuccess       int
	LoginFailures      int
	OrdersPlaced       int
	OrdersCancelled    int
	OrdersCompleted    int
	RechargesCompleted int
	SignatureMismatch  int
	FlaggedMessages    int
	UserActivity       map[string]int
	ErrorPatterns      map[string]int
}

func main() {
	date := time.Now().Format("2006-01-02")
	if len(os.Args) > 1 {
		date = os.Args[1]
	}
	logDir := "./logs"

	stats := &logStats{
		UserActivity:  make(map[string]int),
		ErrorPatterns: make(map[string]int),
	}

	analyzeErrorLog(filepath.Join(logDir, fmt.Sprintf("error-%s.log", date)), stats)
	analyzeInfoLog(filepath.Join(logDir, fmt.Sprintf("info-%s.log", date)), stats)

	printReport(date, stats)
}

func analyzeErrorLog(logFile string, stats *logStats) {
	file, err := os.Open(logFile)
	if err != nil {
		fmt.Printf("Error opening log file %s: %v\n", logFile, err)
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		stats.TotalErrors++

		if strings.Contains(line, "Signature mismatch") {
			stats.SignatureMismatch++
		}

		extractErrorPattern(line, stats)
	}
}

func analyzeInfoLog(logFile string, stats *logStats) {
	file, err := os.Open(logFile)
	if err != nil {
		fmt.Printf("Error opening log file %s: %v\n", logFile, err)
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.Contains(line, "User logged in"):
			stats.LoginSuccess++
			extractUserActivity(line, stats)
		case strings.Contains(line, "Order placed"):
			stats.OrdersPlaced++
		case strings.Contains(line, "Order cancelled"):
			stats.OrdersCancelled++
		case strings.Contains(line, "Order completed"):
			stats.OrdersCompleted++
		case strings.Contains(line, "Recharge completed"):
			stats.RechargesCompleted++
		case strings.Contains(line, "Flagged message"):
			stats.FlaggedMessages++
		}
	}
}

func extractUserActivity(line string, stats *logStats) {
	emailRegex := regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	if email := emailRegex.FindString(line); email != "" {
		stats.UserActivity[email]++
	}
}

func extractErrorPattern(line string, stats *logStats) {
	if strings.Contains(line, "Failed login attempt") {
		stats.LoginFailures++
	}
	parts := strings.SplitN(line, ":", 2)
	if len(parts) > 1 {
		msg := strings.TrimSpace(parts[1])
		stats.ErrorPatterns[msg]++
	}
}

func printReport(date string, stats *logStats) {
	fmt.Println("\n=== KABAADWALA Log Report:", date, "===")

	fmt.Println("\n1. Authentication:")
	fmt.Printf("   Successful logins: %d\n", stats.LoginSuccess)
	fmt.Printf("   Failed logins: %d\n", stats.LoginFailures)

	fmt.Println("\n2. Orders and Escrow:")
	fmt.Printf("   Placed: %d\n", stats.OrdersPlaced)
	fmt.Printf("   Cancelled (refunded): %d\n", stats.OrdersCancelled)
	fmt.Printf("   Completed (released): %d\n", stats.OrdersCompleted)

	fmt.Println("\n3. Payments:")
	fmt.Printf("   Recharges completed: %d\n", stats.RechargesCompleted)
	fmt.Printf("   Signature mismatches: %d\n", stats.SignatureMismatch)

	fmt.Println("\n4. Moderation:")
	fmt.Printf("   Flagged chat messages: %d\n", stats.FlaggedMessages)

	fmt.Println("\n5. Errors:")
	fmt.Printf("   Total: %d\n", stats.TotalErrors)

	fmt.Println("\n6. Most active users:")
	printTop(stats.UserActivity, 5, "activities")

	fmt.Println("\n7. Most common errors:")
	printTop(stats.ErrorPatterns, 5, "occurrences")
}

func printTop(counts map[string]int, limit int, unit string) {
	type entry struct {
		key   string
		count int
	}
	var entries []entry
	for k, c := range counts {
		entries = append(entries, entry{k, c})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].count > entries[j].count
	})
	for i, e := range entries {
		if i >= limit {
			break
		}
		fmt.Printf("   %s: %d %s\n", e.key, e.count, unit)
	}
}
