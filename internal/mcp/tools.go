package mcp

import "github.com/mark3labs/mcp-go/mcp"

func collectionParam(opts ...mcp.PropertyOption) mcp.ToolOption {
	opts = append([]mcp.PropertyOption{
		mcp.Description("Collection: excelSheets, websiteLinks or tasks (aliases: sheets, links)"),
	}, opts...)
	return mcp.WithString("collection", opts...)
}

// filterParams are shared by list and search.
func filterParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("q", mcp.Description("Case-insensitive text matched against name, description, url and tags")),
		mcp.WithString("category", mcp.Description("Exact category; \"all\" disables the filter")),
		mcp.WithString("status", mcp.Enum("pending", "completed", "inactive")),
		mcp.WithBoolean("pinned", mcp.Description("Only pinned (true) or unpinned (false) records")),
		mcp.WithString("tag", mcp.Description("Records carrying this tag")),
	}
}

func recordFieldParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("description", mcp.Description("Free text; rendered as markdown on request")),
		mcp.WithString("url", mcp.Description("Required for excelSheets and websiteLinks")),
		mcp.WithString("category", mcp.Description("Defaults to Finance")),
		mcp.WithString("status", mcp.Enum("pending", "completed", "inactive")),
		mcp.WithBoolean("is_pinned"),
		mcp.WithString("priority", mcp.Enum("low", "medium", "high"), mcp.Description("Tasks only")),
		mcp.WithString("due_date", mcp.Description("Tasks only, e.g. 2026-05-01")),
		mcp.WithArray("tags", mcp.WithStringItems()),
	}
}

var listToolDef = mcp.NewTool("record_list", append([]mcp.ToolOption{
	mcp.WithDescription("List a collection, newest first, optionally filtered."),
	mcp.WithReadOnlyHintAnnotation(true),
	collectionParam(mcp.Required()),
}, filterParams()...)...)

var getToolDef = mcp.NewTool("record_get",
	mcp.WithDescription("Fetch one record by id."),
	mcp.WithReadOnlyHintAnnotation(true),
	collectionParam(mcp.Required()),
	mcp.WithString("id", mcp.Required()),
	mcp.WithBoolean("render_markdown", mcp.Description("Add description_html rendered from the markdown description")),
)

var createToolDef = mcp.NewTool("record_create", append([]mcp.ToolOption{
	mcp.WithDescription("Create a record at the head of its collection. Missing fields get defaults."),
	collectionParam(mcp.Required()),
	mcp.WithString("name", mcp.Required()),
}, recordFieldParams()...)...)

var updateToolDef = mcp.NewTool("record_update", append([]mcp.ToolOption{
	mcp.WithDescription("Update fields of a record. Omitted fields are unchanged; due_date null clears it."),
	collectionParam(mcp.Required()),
	mcp.WithString("id", mcp.Required()),
	mcp.WithString("name"),
}, recordFieldParams()...)...)

var deleteToolDef = mcp.NewTool("record_delete",
	mcp.WithDescription("Delete a record by id."),
	mcp.WithDestructiveHintAnnotation(true),
	collectionParam(mcp.Required()),
	mcp.WithString("id", mcp.Required()),
)

var searchToolDef = mcp.NewTool("record_search", append([]mcp.ToolOption{
	mcp.WithDescription("Search several collections with one filter. At least one criterion is required."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithArray("collections", mcp.WithStringItems(), mcp.Description("Restrict to these collections")),
}, filterParams()...)...)

var statsToolDef = mcp.NewTool("record_stats",
	mcp.WithDescription("Dashboard counters: totals, categories, statuses, pinned, recent activity, overdue tasks."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var healthToolDef = mcp.NewTool("record_health",
	mcp.WithDescription("Storage backend and per-collection count and last update."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var clearAllToolDef = mcp.NewTool("record_clear_all",
	mcp.WithDescription("Delete every record in every collection."),
	mcp.WithDestructiveHintAnnotation(true),
	mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Must be true")),
)

var exportToolDef = mcp.NewTool("record_export",
	mcp.WithDescription("Export collections to a JSONL file in the exports directory."),
	mcp.WithString("path", mcp.Description("Destination .jsonl file; defaults to a timestamped file")),
	mcp.WithArray("collections", mcp.WithStringItems()),
)

var importToolDef = mcp.NewTool("record_import",
	mcp.WithDescription("Import records from a JSONL export."),
	mcp.WithString("path", mcp.Required()),
	mcp.WithString("mode", mcp.Enum("error", "replace", "skip"), mcp.Description("Id collision handling; default error")),
)
