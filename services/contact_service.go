package services

import (
	"context"
	"net/mail"
	"strings"

	"myhotel/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type ContactService struct {
	DB     *gorm.DB
	Ledger *Ledger
	Log    *zap.Logger
}

func NewContactService(db *gorm.DB, ledger *Ledger, log *zap.Logger) *ContactService {
	if log == nil {
		log = zap.NewNop()
	}
	if ledger == nil {
		ledger = NewLedger(db)
	}
	return &ContactService{DB: db, Ledger: ledger, Log: log}
}

// Submit stores a message from the public contact form.
func (s *ContactService) Submit(ctx context.Context, in ContactInput) (models.ContactMessage, error) {
	msg := models.ContactMessage{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Subject: strings.TrimSpace(in.Subject),
		Message: strings.TrimSpace(in.Message),
	}
	var errs []string
	if msg.Name == "" {
		errs = append(errs, "Name is required.")
	}
	if msg.Email == "" {
		errs = append(errs, "Email is required.")
	} else if !validEmail(msg.Email) {
		errs = append(errs, "Invalid email format.")
	}
	if msg.Subject == "" {
		errs = append(errs, "Subject is required.")
	}
	if msg.Message == "" {
		errs = append(errs, "Message is required.")
	}
	if len(errs) > 0 {
		return msg, Validation("invalid_contact", errs...)
	}
	if err := s.DB.WithContext(ctx).Create(&msg).Error; err != nil {
		return msg, Internal(err)
	}
	s.Log.Info("contact message received", zap.Uint("id", msg.ID), zap.String("subject", msg.Subject))
	return msg, nil
}

func (s *ContactService) List(ctx context.Context, mode QueryMode) ([]models.ContactMessage, error) {
	return listRows[models.ContactMessage](s.DB.WithContext(ctx), mode, "created_at DESC")
}

func (s *ContactService) Get(ctx context.Context, id uint) (models.ContactMessage, error) {
	return getRow[models.ContactMessage](s.DB.WithContext(ctx), id, QueryDefault, "message_not_found", "Message not found.")
}

func (s *ContactService) Delete(ctx context.Context, id uint, actorID *uint) error {
	return s.Ledger.SoftDelete(ctx, &models.ContactMessage{}, id, actorID)
}

func (s *ContactService) Restore(ctx context.Context, id uint) error {
	return s.Ledger.Restore(ctx, &models.ContactMessage{}, id)
}
