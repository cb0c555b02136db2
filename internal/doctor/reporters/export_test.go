package reporters

var (
	ColumnWidths = columnWidths
	PadToWidth   = padToWidth
)
