package mcpserver

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ferdhika31/moneylover-mcp/internal/moneylover"
	"github.com/ferdhika31/moneylover-mcp/internal/session"
)

const dateLayout = "2006-01-02"

// handleGetUserInfo serves the get_user_info tool.
func (s *Server) handleGetUserInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token := request.GetString("token", "")

	profile, err := session.Run(ctx, s.manager, token,
		func(ctx context.Context, token string) (*moneylover.Profile, error) {
			return s.client.GetUserInfo(ctx, token)
		})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(profile), nil
}

// handleListWallets serves the list_wallets tool.
func (s *Server) handleListWallets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token := request.GetString("token", "")

	wallets, err := session.Run(ctx, s.manager, token,
		func(ctx context.Context, token string) ([]moneylover.Wallet, error) {
			return s.client.ListWallets(ctx, token)
		})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(wallets), nil
}

// handleListCategories serves the list_categories tool.
func (s *Server) handleListCategories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	walletID, err := request.RequireString("wallet_id")
	if err != nil {
		return mcp.NewToolResultError("wallet_id argument is required"), nil
	}
	token := request.GetString("token", "")

	categories, err := session.Run(ctx, s.manager, token,
		func(ctx context.Context, token string) ([]moneylover.Category, error) {
			return s.client.ListCategories(ctx, token, walletID)
		})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(categories), nil
}

// handleListTransactions serves the list_transactions tool. The date range
// defaults to the trailing 30 days.
func (s *Server) handleListTransactions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	walletID, err := request.RequireString("wallet_id")
	if err != nil {
		return mcp.NewToolResultError("wallet_id argument is required"), nil
	}

	now := time.Now()
	req := moneylover.ListTransactionsRequest{
		WalletID:  walletID,
		StartDate: request.GetString("start_date", now.AddDate(0, 0, -30).Format(dateLayout)),
		EndDate:   request.GetString("end_date", now.Format(dateLayout)),
	}
	token := request.GetString("token", "")

	page, err := session.Run(ctx, s.manager, token,
		func(ctx context.Context, token string) (*moneylover.TransactionPage, error) {
			return s.client.ListTransactions(ctx, token, req)
		})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(page), nil
}

// handleAddTransaction serves the add_transaction tool.
func (s *Server) handleAddTransaction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	walletID, err := request.RequireString("wallet_id")
	if err != nil {
		return mcp.NewToolResultError("wallet_id argument is required"), nil
	}
	categoryID, err := request.RequireString("category_id")
	if err != nil {
		return mcp.NewToolResultError("category_id argument is required"), nil
	}
	amount, err := request.RequireFloat("amount")
	if err != nil {
		return mcp.NewToolResultError("amount argument is required"), nil
	}

	tx := moneylover.NewTransaction{
		WalletID:    walletID,
		CategoryID:  categoryID,
		Amount:      amount,
		Note:        request.GetString("note", ""),
		DisplayDate: request.GetString("display_date", time.Now().Format(dateLayout)),
	}
	token := request.GetString("token", "")

	created, err := session.Run(ctx, s.manager, token,
		func(ctx context.Context, token string) (*moneylover.Transaction, error) {
			return s.client.AddTransaction(ctx, token, tx)
		})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(created), nil
}
