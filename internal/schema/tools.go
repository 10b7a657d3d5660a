package schema

// Tool names.
const (
	ListSpreadsheets  = "list_spreadsheets"
	OpenSpreadsheet   = "open_spreadsheet"
	ListWorksheets    = "list_worksheets"
	ReadWorksheet     = "read_worksheet"
	UpdateCell        = "update_cell"
	UpdateRange       = "update_range"
	AppendRow         = "append_row"
	CreateSpreadsheet = "create_spreadsheet"
	CreateWorksheet   = "create_worksheet"
)

const (
	DefaultWorksheetRows = 100
	DefaultWorksheetCols = 26
)

func str(desc string) *Node {
	return &Node{Kind: KindString, Description: desc}
}

func object(required []string, props ...Property) *Node {
	if required == nil {
		required = []string{}
	}
	return &Node{Kind: KindObject, Properties: props, Required: required}
}

func prop(name string, n *Node) Property {
	return Property{Name: name, Node: n}
}

func spreadsheetID() Property {
	return prop("spreadsheet_id", str("The ID of the spreadsheet"))
}

func cellScalar() *Node {
	return &Node{Kind: KindUnion, Types: []Kind{KindString, KindNumber, KindBoolean, KindNull}}
}

// Tools returns the tool table in its advertised order. Each call returns a
// fresh copy so callers cannot mutate the table.
func Tools() []ToolDescriptor {
	return []ToolDescriptor{
		{
			Name:        ListSpreadsheets,
			Description: "List all available spreadsheets",
			InputSchema: object(nil),
			Annotations: Annotations{Title: "List Spreadsheets", ReadOnly: true, Idempotent: true, OpenWorld: true},
		},
		{
			Name:        OpenSpreadsheet,
			Description: "Open a spreadsheet by title or URL",
			InputSchema: object([]string{"identifier"},
				prop("identifier", str("The title or URL of the spreadsheet to open")),
			),
			Annotations: Annotations{Title: "Open Spreadsheet", ReadOnly: true, Idempotent: true, OpenWorld: true},
		},
		{
			Name:        ListWorksheets,
			Description: "List all worksheets in the currently opened spreadsheet",
			InputSchema: object([]string{"spreadsheet_id"},
				spreadsheetID(),
			),
			Annotations: Annotations{Title: "List Worksheets", ReadOnly: true, Idempotent: true, OpenWorld: true},
		},
		{
			Name:        ReadWorksheet,
			Description: "Read data from a worksheet",
			InputSchema: object([]string{"spreadsheet_id", "worksheet_name"},
				spreadsheetID(),
				prop("worksheet_name", str("The name of the worksheet to read")),
				prop("range", str("The range to read (e.g., 'A1:D10'). Optional, defaults to entire worksheet.")),
			),
			Annotations: Annotations{Title: "Read Worksheet", ReadOnly: true, Idempotent: true, OpenWorld: true},
		},
		{
			Name:        UpdateCell,
			Description: "Update a single cell in a worksheet",
			InputSchema: object([]string{"spreadsheet_id", "worksheet_name", "cell", "value"},
				spreadsheetID(),
				prop("worksheet_name", str("The name of the worksheet")),
				prop("cell", str("The cell reference (e.g., 'A1')")),
				prop("value", &Node{
					Kind:        KindUnion,
					Types:       []Kind{KindString, KindNumber, KindBoolean},
					Description: "The value to write to the cell",
				}),
			),
			Annotations: Annotations{Title: "Update Cell", Destructive: true, Idempotent: true, OpenWorld: true},
		},
		{
			Name:        UpdateRange,
			Description: "Update a range of cells in a worksheet",
			InputSchema: object([]string{"spreadsheet_id", "worksheet_name", "range", "values"},
				spreadsheetID(),
				prop("worksheet_name", str("The name of the worksheet")),
				prop("range", str("The range to update (e.g., 'A1:B2')")),
				prop("values", &Node{
					Kind:        KindArray,
					Description: "The values to write to the range (2D array)",
					Items:       &Node{Kind: KindArray, Items: cellScalar()},
				}),
			),
			Annotations: Annotations{Title: "Update Range", Destructive: true, Idempotent: true, OpenWorld: true},
		},
		{
			Name:        AppendRow,
			Description: "Append a row to a worksheet",
			InputSchema: object([]string{"spreadsheet_id", "worksheet_name", "values"},
				spreadsheetID(),
				prop("worksheet_name", str("The name of the worksheet")),
				prop("values", &Node{
					Kind:        KindArray,
					Description: "The values to append as a new row",
					Items:       cellScalar(),
				}),
			),
			Annotations: Annotations{Title: "Append Row", OpenWorld: true},
		},
		{
			Name:        CreateSpreadsheet,
			Description: "Create a new spreadsheet",
			InputSchema: object([]string{"title"},
				prop("title", str("The title for the new spreadsheet")),
			),
			Annotations: Annotations{Title: "Create Spreadsheet", OpenWorld: true},
		},
		{
			Name:        CreateWorksheet,
			Description: "Create a new worksheet in an existing spreadsheet",
			InputSchema: object([]string{"spreadsheet_id", "title"},
				spreadsheetID(),
				prop("title", str("The title for the new worksheet")),
				prop("rows", &Node{Kind: KindInteger, Description: "Number of rows (default: 100)", Default: DefaultWorksheetRows}),
				prop("cols", &Node{Kind: KindInteger, Description: "Number of columns (default: 26)", Default: DefaultWorksheetCols}),
			),
			Annotations: Annotations{Title: "Create Worksheet", OpenWorld: true},
		},
	}
}
