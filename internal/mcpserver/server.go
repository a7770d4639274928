// Package mcpserver exposes MoneyLover operations as MCP tools for
// AI-assistant clients, over stdio or streamable HTTP.
package mcpserver

import (
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ferdhika31/moneylover-mcp/internal/moneylover"
	"github.com/ferdhika31/moneylover-mcp/internal/session"
)

// Server bridges MCP tool calls to the MoneyLover API, with the session
// manager supplying and refreshing access tokens.
type Server struct {
	client  *moneylover.Client
	manager *session.Manager
	mcp     *server.MCPServer

	// httpServer is set only while the streamable HTTP transport runs.
	httpServer *http.Server
}

// New creates a Server with all tools registered.
func New(client *moneylover.Client, manager *session.Manager) (*Server, error) {
	if client == nil {
		return nil, fmt.Errorf("missing moneylover client")
	}
	if manager == nil {
		return nil, fmt.Errorf("missing session manager")
	}

	mcpServer := server.NewMCPServer(
		"moneylover-mcp",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s := &Server{
		client:  client,
		manager: manager,
		mcp:     mcpServer,
	}
	s.registerTools()

	return s, nil
}

// withTokenArg is the optional explicit-token argument shared by every
// tool. A supplied token overrides configured credentials entirely.
func withTokenArg() mcp.ToolOption {
	return mcp.WithString("token",
		mcp.Description("Explicit access token; overrides configured credentials and disables automatic refresh"),
	)
}

// registerTools declares every MoneyLover operation as an MCP tool.
func (s *Server) registerTools() {
	getUserInfoTool := mcp.NewTool("get_user_info",
		mcp.WithDescription("Get the authenticated MoneyLover account profile"),
		withTokenArg(),
	)
	s.mcp.AddTool(getUserInfoTool, s.handleGetUserInfo)

	listWalletsTool := mcp.NewTool("list_wallets",
		mcp.WithDescription("List all wallets of the MoneyLover account"),
		withTokenArg(),
	)
	s.mcp.AddTool(listWalletsTool, s.handleListWallets)

	listCategoriesTool := mcp.NewTool("list_categories",
		mcp.WithDescription("List the transaction categories of a wallet"),
		mcp.WithString("wallet_id",
			mcp.Required(),
			mcp.Description("ID of the wallet to list categories for"),
		),
		withTokenArg(),
	)
	s.mcp.AddTool(listCategoriesTool, s.handleListCategories)

	listTransactionsTool := mcp.NewTool("list_transactions",
		mcp.WithDescription("List the transactions of a wallet in a date range"),
		mcp.WithString("wallet_id",
			mcp.Required(),
			mcp.Description("ID of the wallet to list transactions for"),
		),
		mcp.WithString("start_date",
			mcp.Description("Range start, YYYY-MM-DD (default: 30 days ago)"),
		),
		mcp.WithString("end_date",
			mcp.Description("Range end, YYYY-MM-DD (default: today)"),
		),
		withTokenArg(),
	)
	s.mcp.AddTool(listTransactionsTool, s.handleListTransactions)

	addTransactionTool := mcp.NewTool("add_transaction",
		mcp.WithDescription("Book a new transaction in a wallet"),
		mcp.WithString("wallet_id",
			mcp.Required(),
			mcp.Description("ID of the wallet to book the transaction in"),
		),
		mcp.WithString("category_id",
			mcp.Required(),
			mcp.Description("ID of the transaction category"),
		),
		mcp.WithNumber("amount",
			mcp.Required(),
			mcp.Description("Transaction amount in the wallet currency"),
		),
		mcp.WithString("note",
			mcp.Description("Free-form note attached to the transaction"),
		),
		mcp.WithString("display_date",
			mcp.Description("Booking date, YYYY-MM-DD (default: today)"),
		),
		withTokenArg(),
	)
	s.mcp.AddTool(addTransactionTool, s.handleAddTransaction)
}

// ServeStdio serves the MCP protocol over stdin/stdout, blocking until the
// client closes the connection. All logging must go to stderr while this
// transport is active.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}
