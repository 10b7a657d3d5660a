package args

// Typed argument records, one per tool.

type ListSpreadsheets struct{}

type OpenSpreadsheet struct {
	Identifier string `mapstructure:"identifier"`
}

type ListWorksheets struct {
	SpreadsheetID string `mapstructure:"spreadsheet_id"`
}

type ReadWorksheet struct {
	SpreadsheetID string `mapstructure:"spreadsheet_id"`
	WorksheetName string `mapstructure:"worksheet_name"`
	Range         string `mapstructure:"range"`
}

type UpdateCell struct {
	SpreadsheetID string `mapstructure:"spreadsheet_id"`
	WorksheetName string `mapstructure:"worksheet_name"`
	Cell          string `mapstructure:"cell"`
	Value         any    `mapstructure:"value"`
}

type UpdateRange struct {
	SpreadsheetID string  `mapstructure:"spreadsheet_id"`
	WorksheetName string  `mapstructure:"worksheet_name"`
	Range         string  `mapstructure:"range"`
	Values        [][]any `mapstructure:"values"`
}

type AppendRow struct {
	SpreadsheetID string `mapstructure:"spreadsheet_id"`
	WorksheetName string `mapstructure:"worksheet_name"`
	Values        []any  `mapstructure:"values"`
}

type CreateSpreadsheet struct {
	Title string `mapstructure:"title"`
}

type CreateWorksheet struct {
	SpreadsheetID string `mapstructure:"spreadsheet_id"`
	Title         string `mapstructure:"title"`
	Rows          int    `mapstructure:"rows"`
	Cols          int    `mapstructure:"cols"`
}
