package stub

import (
	"github.com/gofiber/fiber/v2"

	"github.com/textlinq/smsbridge-admin/internal/models"
)

// Mapping handlers

func (s *Server) handleMappingList(c *fiber.Ctx) error {
	mappings, err := s.store.ListMappings()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"detail": err.Error()})
	}
	return c.JSON(envelope(c, mappings))
}

func (s *Server) handleMappingCreate(c *fiber.Ctx) error {
	var req struct {
		GHLAccount      string `json:"ghl_account"`
		TransmitAccount string `json:"transmit_account"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"detail": "invalid request body"})
	}
	if req.GHLAccount == "" || req.TransmitAccount == "" {
		return c.Status(400).JSON(fiber.Map{"detail": "ghl_account and transmit_account are required"})
	}

	mapping, err := s.store.CreateMapping(req.GHLAccount, req.TransmitAccount)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"detail": err.Error()})
	}
	return c.Status(201).JSON(mapping)
}

func (s *Server) handleMappingDelete(c *fiber.Ctx) error {
	if err := s.store.DeleteMapping(c.Params("id")); err != nil {
		return c.Status(404).JSON(fiber.Map{"detail": err.Error()})
	}
	return c.SendStatus(204)
}

// HighLevel account handlers

func (s *Server) handleGHLAccountList(c *fiber.Ctx) error {
	accounts, err := s.store.ListGHLAccounts(c.Query("search"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"detail": err.Error()})
	}
	return c.JSON(envelope(c, accounts))
}

func (s *Server) handleGHLAccountCreate(c *fiber.Ctx) error {
	var in models.GHLAccountInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(400).JSON(fiber.Map{"detail": "invalid request body"})
	}
	if in.Name == "" || in.LocationID == "" {
		return c.Status(400).JSON(fiber.Map{"detail": "name and location_id are required"})
	}

	acc, err := s.store.CreateGHLAccount(in)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"detail": err.Error()})
	}
	return c.Status(201).JSON(acc)
}

func (s *Server) handleGHLAccountUpdate(c *fiber.Ctx) error {
	var in models.GHLAccountInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(400).JSON(fiber.Map{"detail": "invalid request body"})
	}

	acc, err := s.store.UpdateGHLAccount(c.Params("id"), in)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"detail": err.Error()})
	}
	return c.JSON(acc)
}

func (s *Server) handleGHLAccountDelete(c *fiber.Ctx) error {
	if err := s.store.DeleteGHLAccount(c.Params("id")); err != nil {
		return c.Status(404).JSON(fiber.Map{"detail": err.Error()})
	}
	return c.SendStatus(204)
}

// Transmit-SMS account handlers

func (s *Server) handleTransmitAccountList(c *fiber.Ctx) error {
	accounts, err := s.store.ListTransmitAccounts(c.Query("search"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"detail": err.Error()})
	}
	return c.JSON(envelope(c, accounts))
}

func (s *Server) handleTransmitAccountCreate(c *fiber.Ctx) error {
	var in models.TransmitAccountInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(400).JSON(fiber.Map{"detail": "invalid request body"})
	}
	if in.Name == "" {
		return c.Status(400).JSON(fiber.Map{"detail": "name is required"})
	}

	acc, err := s.store.CreateTransmitAccount(in)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"detail": err.Error()})
	}
	return c.Status(201).JSON(acc)
}

func (s *Server) handleTransmitAccountUpdate(c *fiber.Ctx) error {
	var in models.TransmitAccountInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(400).JSON(fiber.Map{"detail": "invalid request body"})
	}

	acc, err := s.store.UpdateTransmitAccount(c.Params("id"), in)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"detail": err.Error()})
	}
	return c.JSON(acc)
}

func (s *Server) handleTransmitAccountDelete(c *fiber.Ctx) error {
	if err := s.store.DeleteTransmitAccount(c.Params("id")); err != nil {
		return c.Status(404).JSON(fiber.Map{"detail": err.Error()})
	}
	return c.SendStatus(204)
}

// Message handler. Filters are only applied when the parameter is present,
// so an omitted filter and an empty one behave differently by design of
// the real backend.

func (s *Server) handleMessageList(c *fiber.Ctx) error {
	filter := MessageFilter{
		Search:    c.Query("search"),
		Status:    c.Query("status"),
		Direction: c.Query("direction"),
		Ordering:  c.Query("ordering"),
		DateFrom:  queryDate(c, "date_from"),
		DateTo:    queryDate(c, "date_to"),
	}
	messages, err := s.store.ListMessages(filter)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"detail": err.Error()})
	}
	return c.JSON(envelope(c, messages))
}

// Number handler

func (s *Server) handleNumberList(c *fiber.Ctx) error {
	filter := NumberFilter{
		Search:   c.Query("search"),
		Label:    c.Query("label"),
		MinPrice: queryFloat(c, "min_price"),
		MaxPrice: queryFloat(c, "max_price"),
		SortBy:   c.Query("sort_by"),
	}
	numbers, err := s.store.ListNumbers(filter)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"detail": err.Error()})
	}
	return c.JSON(envelope(c, numbers))
}

// Wallet handlers

func (s *Server) handleWalletList(c *fiber.Ctx) error {
	filter := WalletFilter{
		MinBalance: queryFloat(c, "min_balance"),
		MaxBalance: queryFloat(c, "max_balance"),
		SortBy:     c.Query("sort_by"),
	}
	wallets, err := s.store.ListWallets(filter)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"detail": err.Error()})
	}
	return c.JSON(envelope(c, wallets))
}

func (s *Server) handleWalletSummary(c *fiber.Ctx) error {
	summary, err := s.store.WalletSummary()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"detail": err.Error()})
	}
	return c.JSON(summary)
}

func (s *Server) handleTransactionList(c *fiber.Ctx) error {
	filter := TransactionFilter{
		Wallet:    c.Query("wallet"),
		Type:      c.Query("type"),
		MinAmount: queryFloat(c, "min_amount"),
		MaxAmount: queryFloat(c, "max_amount"),
		DateFrom:  queryDate(c, "date_from"),
		DateTo:    queryDate(c, "date_to"),
	}
	transactions, err := s.store.ListTransactions(filter)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"detail": err.Error()})
	}
	return c.JSON(envelope(c, transactions))
}

// Dashboard handler

func (s *Server) handleDashboard(c *fiber.Ctx) error {
	summary, err := s.store.DashboardSummary(c.QueryInt("days", 7), c.Query("ghl_account"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"detail": err.Error()})
	}
	return c.JSON(summary)
}
