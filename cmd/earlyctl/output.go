package main

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/earlyalloc/alloc"
)

// printer groups digits in counts so large regions stay readable.
var printer = message.NewPrinter(language.English)

// formatBytes formats a byte count with a human unit.
func formatBytes(n uintptr) string {
	const unit = 1024
	if n < unit {
		return printer.Sprintf("%d B", n)
	}
	div, exp := uintptr(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return printer.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// formatCount formats a count with thousands separators.
func formatCount(n uintptr) string {
	return printer.Sprintf("%d", n)
}

func hexAddr(addr uintptr) string {
	return fmt.Sprintf("%#x", addr)
}

// statsView is the JSON shape of alloc.Stats with addresses as hex strings.
type statsView struct {
	PageSize       uintptr `json:"page_size"`
	Start          string  `json:"start"`
	End            string  `json:"end"`
	BytePos        string  `json:"byte_pos"`
	PagePos        string  `json:"page_pos"`
	ByteCount      uintptr `json:"byte_count"`
	TotalBytes     uintptr `json:"total_bytes"`
	UsedBytes      uintptr `json:"used_bytes"`
	AvailableBytes uintptr `json:"available_bytes"`
	TotalPages     uintptr `json:"total_pages"`
	UsedPages      uintptr `json:"used_pages"`
	AvailablePages uintptr `json:"available_pages"`
}

func newStatsView(s alloc.Stats) statsView {
	return statsView{
		PageSize:       s.PageSize,
		Start:          hexAddr(s.Start),
		End:            hexAddr(s.End),
		BytePos:        hexAddr(s.BytePos),
		PagePos:        hexAddr(s.PagePos),
		ByteCount:      s.ByteCount,
		TotalBytes:     s.TotalBytes,
		UsedBytes:      s.UsedBytes,
		AvailableBytes: s.AvailableBytes,
		TotalPages:     s.TotalPages,
		UsedPages:      s.UsedPages,
		AvailablePages: s.AvailablePages,
	}
}

// printStats prints the allocator layout and counters as text.
func printStats(s alloc.Stats) {
	printInfo("Range:      %s - %s (%s)\n", hexAddr(s.Start), hexAddr(s.End), formatBytes(s.TotalBytes))
	printInfo("Frontiers:  bytes at %s, pages at %s\n", hexAddr(s.BytePos), hexAddr(s.PagePos))
	printInfo("Bytes:      %s used, %s available, %s live allocation(s)\n",
		formatBytes(s.UsedBytes), formatBytes(s.AvailableBytes), formatCount(s.ByteCount))
	printInfo("Pages:      %s used, %s available of %s (page size %s)\n",
		formatCount(s.UsedPages), formatCount(s.AvailablePages), formatCount(s.TotalPages), formatBytes(s.PageSize))
}
