package mcp

import "github.com/mark3labs/mcp-go/mcp"

var storeToolDef = mcp.NewTool("capsule_store",
	mcp.WithDescription("Seal a message in a new time capsule. The message can only be read on or after open_date. Returns the new capsule_id."),
	mcp.WithString("message",
		mcp.Required(),
		mcp.Description("Message to seal"),
	),
	mcp.WithString("open_date",
		mcp.Required(),
		mcp.Description("Date the capsule opens, formatted YYYY-MM-DD (local time)"),
	),
)

var fetchToolDef = mcp.NewTool("capsule_fetch",
	mcp.WithDescription("Open a capsule. Returns the message when the open date has arrived, otherwise a notice naming the open date."),
	mcp.WithString("capsule_id",
		mcp.Required(),
		mcp.Description("Capsule id returned by capsule_store"),
	),
)

var listToolDef = mcp.NewTool("capsule_list",
	mcp.WithDescription("List every capsule's id and open date in the order they were stored, including capsules that are not yet due. Messages are not returned."),
)

var deleteToolDef = mcp.NewTool("capsule_delete",
	mcp.WithDescription("Permanently delete a capsule."),
	mcp.WithString("capsule_id",
		mcp.Required(),
		mcp.Description("Capsule id to delete"),
	),
)
