package interfaces

// EodSummarizer aggregates one day of the trade log into a CSV report.
type EodSummarizer interface {
	// SummarizeDay writes the report for day (YYYY-MM-DD). It returns "" when
	// the day has no trades.
	SummarizeDay(day string) (csvPath string, err error)

	// ShouldRun reports whether day still needs a report.
	ShouldRun(day string) (shouldRun bool, csvPath string)
}
