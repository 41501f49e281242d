package cli

var (
	PrintResult    = printResult
	GetIndexConfig = getIndexConfig
)
