package stub

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/textlinq/smsbridge-admin/internal/models"
)

// DemoEmail and DemoPassword are the credentials demo mode announces.
const (
	DemoEmail    = "admin@smsbridge.local"
	DemoPassword = "demo1234"
)

// Seed fills a memory store with believable demo data.
func Seed(store *MemoryStore) {
	store.AddUser(DemoEmail, DemoPassword)

	ghlNames := []struct{ name, location string }{
		{"Brightwave Dental", "loc_brightwave"},
		{"Harbour Realty", "loc_harbour"},
		{"Peak Fitness Co", "loc_peakfit"},
	}
	var ghlIDs []string
	for _, g := range ghlNames {
		acc, _ := store.CreateGHLAccount(models.GHLAccountInput{
			Name:       g.name,
			LocationID: g.location,
			Email:      fmt.Sprintf("ops@%s.example.com", g.location),
		})
		ghlIDs = append(ghlIDs, acc.ID)
	}

	transmitNames := []string{"AU Shared Pool", "NZ Dedicated", "Marketing Sender"}
	var transmitIDs []string
	for i, name := range transmitNames {
		acc, _ := store.CreateTransmitAccount(models.TransmitAccountInput{
			Name:     name,
			SenderID: fmt.Sprintf("6140000%03d", i+1),
			APIKey:   uuid.New().String(),
		})
		transmitIDs = append(transmitIDs, acc.ID)
	}

	_, _ = store.CreateMapping(ghlIDs[0], transmitIDs[0])
	_, _ = store.CreateMapping(ghlIDs[1], transmitIDs[1])

	statuses := []string{
		models.MessageDelivered, models.MessageDelivered, models.MessageDelivered,
		models.MessageSent, models.MessageFailed, models.MessageQueued,
	}
	now := time.Now()
	for i := 0; i < 48; i++ {
		status := statuses[i%len(statuses)]
		direction := models.DirectionOutbound
		if i%5 == 0 {
			direction = models.DirectionInbound
		}
		sentAt := now.Add(-time.Duration(i*3) * time.Hour)
		msg := models.Message{
			ID:         uuid.New().String(),
			To:         fmt.Sprintf("+6140011%04d", i),
			From:       "61400000001",
			Body:       fmt.Sprintf("Appointment reminder #%d", i+1),
			Status:     status,
			Direction:  direction,
			GHLAccount: ghlIDs[i%len(ghlIDs)],
			SentAt:     sentAt,
		}
		if status == models.MessageDelivered {
			delivered := sentAt.Add(12 * time.Second)
			msg.DeliveredAt = &delivered
		}
		if status == models.MessageFailed {
			msg.ErrorDetail = "handset unreachable"
		}
		store.AddMessage(msg)
	}

	for i, transmitID := range transmitIDs {
		wallet := models.Wallet{
			ID:              uuid.New().String(),
			Name:            transmitNames[i] + " Wallet",
			TransmitAccount: transmitID,
			Balance:         float64(120+i*85) + 0.5,
			Currency:        "AUD",
			UpdatedAt:       now,
		}
		store.AddWallet(wallet)

		for j := 0; j < 8; j++ {
			txType := models.TransactionDebit
			amount := 0.08
			description := "outbound SMS"
			if j%4 == 0 {
				txType = models.TransactionCredit
				amount = 50
				description = "top-up"
			}
			store.AddTransaction(models.Transaction{
				ID:          uuid.New().String(),
				Wallet:      wallet.ID,
				Type:        txType,
				Amount:      amount,
				Description: description,
				CreatedAt:   now.Add(-time.Duration(j*7) * time.Hour),
			})
		}
	}

	labels := []string{"gold", "silver", "", "gold", ""}
	for i, label := range labels {
		store.AddNumber(models.AvailableNumber{
			ID:      uuid.New().String(),
			Number:  fmt.Sprintf("+6142888%04d", 1000+i*37),
			Label:   label,
			Country: "AU",
			Price:   19 + float64(i)*6,
		})
	}
}
