package main

import (
	"chat-hub/repositories"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
)

var typeColors = map[string]color.Style{
	"USER":   color.New(color.FgCyan),
	"GROUP":  color.New(color.FgMagenta),
	"DIRECT": color.New(color.FgBlue),
	"INDEX":  color.New(color.FgGray),
	"RAW":    color.New(color.FgRed),
}

func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	// user:, chat:, msg: or idx: for the secondary indexes
	prefix := flag.String("prefix", "chat:", "Prefix to scan")
	limit := flag.Int("limit", 0, "Maximum rows, 0 for all")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	rows, err := repositories.Inspect(db, *prefix, *limit)
	if err != nil {
		log.Fatal(err)
	}

	header := fmt.Sprintf(" %d entries under %q ", len(rows), *prefix)
	fmt.Println(color.New(color.BgBlack, color.FgGreen).Render(header))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Timestamp", "Entity ID", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, row := range rows {
		rowType := row.Type
		if style, ok := typeColors[rowType]; ok {
			rowType = style.Render(rowType)
		} else {
			rowType = color.New(color.FgGreen).Render(rowType)
		}
		table.Append([]string{row.Key, rowType, row.Timestamp, row.EntityID, row.Detail})
	}
	table.Render()
}

// openDB opens the store read-only, next to a running server.
func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)

	db, err := badger.Open(opts)
	if err != nil {
		if strings.Contains(err.Error(), "Log truncate required") {
			// A crashed writer left the value log dirty: open once in write mode to truncate it
			repairOpts := badger.DefaultOptions(path).
				WithLogger(nil).WithBypassLockGuard(true)

			db, err = badger.Open(repairOpts)
			if err != nil {
				return nil, fmt.Errorf("repair failed: %w", err)
			}
			_ = db.Close()
			return badger.Open(opts)
		}
		return nil, err
	}
	return db, nil
}
