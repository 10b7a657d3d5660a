package telemetry

// Attribute names for tool call spans and metrics.
const (
	AttrMCPToolName               = "mcp.tool.name"
	AttrMCPToolArguments          = "mcp.tool.arguments"
	AttrMCPToolArgumentsTruncated = "mcp.tool.arguments.truncated"
	AttrMCPToolOutcome            = "mcp.tool.outcome" // succeeded, not_found, failed, contract_violation
	AttrMCPToolSuccess            = "mcp.tool.result.success"
	AttrMCPToolError              = "mcp.tool.result.error"

	AttrMCPSessionID = "mcp.session.id"
	AttrMCPTransport = "mcp.transport"

	AttrSheetsSpreadsheetID = "sheets.spreadsheet.id"
	AttrSheetsWorksheet     = "sheets.worksheet.name"
)

// Span names
const (
	SpanNameToolExecute = "mcp.tool.execute"
)
