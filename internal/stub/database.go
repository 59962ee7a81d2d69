package stub

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/textlinq/smsbridge-admin/internal/models"
)

// Connect opens the sandbox Postgres database from environment variables.
// Used when a demo sandbox should survive restarts; tests and the default
// demo mode use the memory store instead.
func Connect() (*gorm.DB, error) {
	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		dbUser = "postgres"
	}
	dbPass := os.Getenv("DB_PASS")
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "smsbridge_sandbox"
	}
	var dsn string
	if instance := os.Getenv("INSTANCE_CONNECTION_NAME"); instance != "" {
		// Cloud SQL via unix socket.
		dsn = fmt.Sprintf("host=/cloudsql/%s user=%s password=%s dbname=%s sslmode=disable",
			instance, dbUser, dbPass, dbName)
	} else {
		dbHost := os.Getenv("DB_HOST")
		if dbHost == "" {
			dbHost = "localhost"
		}
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=5432 sslmode=disable",
			dbHost, dbUser, dbPass, dbName)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&User{},
		&RevokedToken{},
		&models.AccountMapping{},
		&models.GHLAccount{},
		&models.TransmitAccount{},
		&models.Message{},
		&models.AvailableNumber{},
		&models.Wallet{},
		&models.Transaction{},
	); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

// DatabaseStore is the Postgres-backed sandbox store.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore wraps a connected gorm DB.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// Auth operations

func (d *DatabaseStore) Authenticate(email, password string) (*User, error) {
	var user User
	if err := d.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}
	if user.Password != password {
		return nil, fmt.Errorf("invalid credentials")
	}
	return &user, nil
}

func (d *DatabaseStore) RevokeRefresh(token string) error {
	return d.db.Create(&RevokedToken{Token: token, RevokedAt: time.Now()}).Error
}

func (d *DatabaseStore) IsRefreshRevoked(token string) bool {
	var count int64
	d.db.Model(&RevokedToken{}).Where("token = ?", token).Count(&count)
	return count > 0
}

// Mapping operations

func (d *DatabaseStore) ListMappings() ([]models.AccountMapping, error) {
	var out []models.AccountMapping
	err := d.db.Order("created_at asc").Find(&out).Error
	return out, err
}

func (d *DatabaseStore) CreateMapping(ghlAccount, transmitAccount string) (*models.AccountMapping, error) {
	var ghl models.GHLAccount
	if err := d.db.First(&ghl, "id = ?", ghlAccount).Error; err != nil {
		return nil, fmt.Errorf("ghl account not found")
	}
	var tx models.TransmitAccount
	if err := d.db.First(&tx, "id = ?", transmitAccount).Error; err != nil {
		return nil, fmt.Errorf("transmit account not found")
	}

	var count int64
	d.db.Model(&models.AccountMapping{}).Where("ghl_account = ?", ghlAccount).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("ghl account already mapped")
	}

	mapping := &models.AccountMapping{
		ID:                  uuid.New().String(),
		GHLAccount:          ghlAccount,
		TransmitAccount:     transmitAccount,
		GHLAccountName:      ghl.Name,
		TransmitAccountName: tx.Name,
		CreatedAt:           time.Now(),
	}
	if err := d.db.Create(mapping).Error; err != nil {
		return nil, err
	}
	return mapping, nil
}

func (d *DatabaseStore) DeleteMapping(id string) error {
	res := d.db.Delete(&models.AccountMapping{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("mapping not found")
	}
	return nil
}

// HighLevel account operations

func (d *DatabaseStore) ListGHLAccounts(search string) ([]models.GHLAccount, error) {
	q := d.db.Order("created_at asc")
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("name ILIKE ? OR email ILIKE ?", like, like)
	}
	var out []models.GHLAccount
	err := q.Find(&out).Error
	return out, err
}

func (d *DatabaseStore) CreateGHLAccount(in models.GHLAccountInput) (*models.GHLAccount, error) {
	now := time.Now()
	acc := &models.GHLAccount{
		ID:         uuid.New().String(),
		Name:       in.Name,
		LocationID: in.LocationID,
		Email:      in.Email,
		Connected:  true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := d.db.Create(acc).Error; err != nil {
		return nil, err
	}
	return acc, nil
}

func (d *DatabaseStore) UpdateGHLAccount(id string, in models.GHLAccountInput) (*models.GHLAccount, error) {
	var acc models.GHLAccount
	if err := d.db.First(&acc, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("ghl account not found")
	}
	if in.Name != "" {
		acc.Name = in.Name
	}
	if in.LocationID != "" {
		acc.LocationID = in.LocationID
	}
	if in.Email != "" {
		acc.Email = in.Email
	}
	acc.UpdatedAt = time.Now()
	if err := d.db.Save(&acc).Error; err != nil {
		return nil, err
	}
	return &acc, nil
}

func (d *DatabaseStore) DeleteGHLAccount(id string) error {
	res := d.db.Delete(&models.GHLAccount{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("ghl account not found")
	}
	return d.db.Delete(&models.AccountMapping{}, "ghl_account = ?", id).Error
}

// Transmit-SMS account operations

func (d *DatabaseStore) ListTransmitAccounts(search string) ([]models.TransmitAccount, error) {
	q := d.db.Order("created_at asc")
	if search != "" {
		q = q.Where("name ILIKE ?", "%"+search+"%")
	}
	var out []models.TransmitAccount
	err := q.Find(&out).Error
	return out, err
}

func (d *DatabaseStore) CreateTransmitAccount(in models.TransmitAccountInput) (*models.TransmitAccount, error) {
	now := time.Now()
	acc := &models.TransmitAccount{
		ID:        uuid.New().String(),
		Name:      in.Name,
		SenderID:  in.SenderID,
		APIKeyEnd: lastFour(in.APIKey),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := d.db.Create(acc).Error; err != nil {
		return nil, err
	}
	return acc, nil
}

func (d *DatabaseStore) UpdateTransmitAccount(id string, in models.TransmitAccountInput) (*models.TransmitAccount, error) {
	var acc models.TransmitAccount
	if err := d.db.First(&acc, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("transmit account not found")
	}
	if in.Name != "" {
		acc.Name = in.Name
	}
	if in.SenderID != "" {
		acc.SenderID = in.SenderID
	}
	if in.APIKey != "" {
		acc.APIKeyEnd = lastFour(in.APIKey)
	}
	acc.UpdatedAt = time.Now()
	if err := d.db.Save(&acc).Error; err != nil {
		return nil, err
	}
	return &acc, nil
}

func (d *DatabaseStore) DeleteTransmitAccount(id string) error {
	res := d.db.Delete(&models.TransmitAccount{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("transmit account not found")
	}
	return d.db.Delete(&models.AccountMapping{}, "transmit_account = ?", id).Error
}

// Read-only resources

func (d *DatabaseStore) ListMessages(f MessageFilter) ([]models.Message, error) {
	q := d.db.Model(&models.Message{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Direction != "" {
		q = q.Where("direction = ?", f.Direction)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where(`"to" ILIKE ? OR "from" ILIKE ? OR body ILIKE ?`, like, like, like)
	}
	if !f.DateFrom.IsZero() {
		q = q.Where("sent_at >= ?", f.DateFrom)
	}
	if !f.DateTo.IsZero() {
		q = q.Where("sent_at < ?", f.DateTo.Add(24*time.Hour))
	}
	if f.Ordering == "sent_at" {
		q = q.Order("sent_at asc")
	} else {
		q = q.Order("sent_at desc")
	}
	var out []models.Message
	err := q.Find(&out).Error
	return out, err
}

func (d *DatabaseStore) ListNumbers(f NumberFilter) ([]models.AvailableNumber, error) {
	q := d.db.Model(&models.AvailableNumber{})
	if f.Search != "" {
		q = q.Where("number ILIKE ?", "%"+f.Search+"%")
	}
	if f.Label != "" {
		q = q.Where("label ILIKE ?", "%"+f.Label+"%")
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.SortBy == "price" {
		q = q.Order("price asc")
	} else {
		q = q.Order("number asc")
	}
	var out []models.AvailableNumber
	err := q.Find(&out).Error
	return out, err
}

func (d *DatabaseStore) ListWallets(f WalletFilter) ([]models.Wallet, error) {
	q := d.db.Model(&models.Wallet{})
	if f.MinBalance != nil {
		q = q.Where("balance >= ?", *f.MinBalance)
	}
	if f.MaxBalance != nil {
		q = q.Where("balance <= ?", *f.MaxBalance)
	}
	if f.SortBy == "balance" {
		q = q.Order("balance asc")
	} else {
		q = q.Order("name asc")
	}
	var out []models.Wallet
	err := q.Find(&out).Error
	return out, err
}

func (d *DatabaseStore) WalletSummary() (*models.WalletSummary, error) {
	summary := &models.WalletSummary{Currency: "AUD"}
	row := d.db.Model(&models.Wallet{}).
		Select("COALESCE(SUM(balance), 0), COUNT(*)").Row()
	if err := row.Scan(&summary.TotalBalance, &summary.WalletCount); err != nil {
		return nil, err
	}
	return summary, nil
}

func (d *DatabaseStore) ListTransactions(f TransactionFilter) ([]models.Transaction, error) {
	q := d.db.Model(&models.Transaction{})
	if f.Wallet != "" {
		q = q.Where("wallet = ?", f.Wallet)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	if !f.DateFrom.IsZero() {
		q = q.Where("created_at >= ?", f.DateFrom)
	}
	if !f.DateTo.IsZero() {
		q = q.Where("created_at < ?", f.DateTo.Add(24*time.Hour))
	}
	var out []models.Transaction
	err := q.Order("created_at desc").Find(&out).Error
	return out, err
}

func (d *DatabaseStore) DashboardSummary(days int, ghlAccount string) (*models.DashboardSummary, error) {
	if days <= 0 {
		days = 7
	}
	q := d.db.Model(&models.Message{}).Where("sent_at >= ?", time.Now().AddDate(0, 0, -days))
	if ghlAccount != "" {
		q = q.Where("ghl_account = ?", ghlAccount)
	}
	var messages []models.Message
	if err := q.Find(&messages).Error; err != nil {
		return nil, err
	}

	byDay := make(map[string]*models.DayCount)
	summary := &models.DashboardSummary{}
	for _, msg := range messages {
		summary.TotalMessages++
		switch msg.Status {
		case models.MessageDelivered:
			summary.Delivered++
		case models.MessageFailed:
			summary.Failed++
		}
		switch msg.Direction {
		case models.DirectionInbound:
			summary.Inbound++
		case models.DirectionOutbound:
			summary.Outbound++
		}
		day := msg.SentAt.Format("2006-01-02")
		dc, ok := byDay[day]
		if !ok {
			dc = &models.DayCount{Date: day}
			byDay[day] = dc
		}
		dc.Sent++
		switch msg.Status {
		case models.MessageDelivered:
			dc.Delivered++
		case models.MessageFailed:
			dc.Failed++
		}
	}

	var mappingCount int64
	d.db.Model(&models.AccountMapping{}).Count(&mappingCount)
	summary.ActiveMappings = int(mappingCount)

	for _, dc := range byDay {
		summary.Days = append(summary.Days, *dc)
	}
	sort.Slice(summary.Days, func(i, j int) bool { return summary.Days[i].Date < summary.Days[j].Date })
	return summary, nil
}
