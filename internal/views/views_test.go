package views

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/textlinq/smsbridge-admin/internal/models"
)

func TestMessageStatsArePageLocal(t *testing.T) {
	page := models.Page[models.Message]{
		Count: 500, // totals across pages do not enter the stats
		Results: []models.Message{
			{Status: models.MessageDelivered},
			{Status: models.MessageDelivered},
			{Status: models.MessageFailed},
			{Status: models.MessageQueued},
			{Status: models.MessageSent},
		},
	}
	stats := MessageStats(page.Results)
	assert.Equal(t, 2, stats.Delivered)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 2, stats.Pending)
}

func TestMessagesRendersStatsFooter(t *testing.T) {
	next := "http://api.local/sms/sms-messages/?page=2"
	page := models.Page[models.Message]{
		Count: 20,
		Next:  &next,
		Results: []models.Message{
			{To: "+614001", From: "61400", Body: "hello", Status: models.MessageDelivered,
				Direction: models.DirectionOutbound, SentAt: time.Now()},
			{To: "+614002", From: "61400", Body: "hi", Status: models.MessageFailed,
				ErrorDetail: "handset unreachable", Direction: models.DirectionOutbound, SentAt: time.Now()},
		},
	}

	var buf strings.Builder
	Messages(&buf, &page)
	out := buf.String()

	assert.Contains(t, out, "1 delivered, 1 failed, 0 pending")
	assert.Contains(t, out, "Total matching: 20")
	assert.Contains(t, out, "handset unreachable")
	assert.Contains(t, out, "more pages")
}

func TestMappingsPrefersNames(t *testing.T) {
	var buf strings.Builder
	Mappings(&buf, []models.AccountMapping{
		{ID: "abcdef123456", GHLAccount: "g1", TransmitAccount: "t1",
			GHLAccountName: "Brightwave Dental", TransmitAccountName: "AU Shared Pool",
			CreatedAt: time.Now()},
		{ID: "xyz", GHLAccount: "g2", TransmitAccount: "t2", CreatedAt: time.Now()},
	})
	out := buf.String()

	assert.Contains(t, out, "Brightwave Dental")
	assert.Contains(t, out, "AU Shared Pool")
	// Falls back to raw IDs when the backend sent no names.
	assert.Contains(t, out, "g2")
	assert.Contains(t, out, "t2")
}

func TestEmptyStates(t *testing.T) {
	var buf strings.Builder
	Mappings(&buf, nil)
	assert.Contains(t, buf.String(), "No account mappings")

	buf.Reset()
	Messages(&buf, &models.Page[models.Message]{})
	assert.Contains(t, buf.String(), "No messages")
}

func TestTransmitAccountKeyMasking(t *testing.T) {
	var buf strings.Builder
	TransmitAccounts(&buf, &models.Page[models.TransmitAccount]{
		Count: 1,
		Results: []models.TransmitAccount{
			{ID: "id1", Name: "Pool", SenderID: "61400", APIKeyEnd: "1234", Active: true},
		},
	})
	assert.Contains(t, buf.String(), "…1234")
	assert.NotContains(t, buf.String(), "sk-")
}
