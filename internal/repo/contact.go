package repo

import (
	"context"
	"errors"

	"github.com/KNICEX/price-watch/internal/domain"
	"github.com/KNICEX/price-watch/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ContactRepo interface {
	Save(ctx context.Context, contact domain.Contact) error
	FindByOwner(ctx context.Context, ownerID string) (domain.Contact, error)
}

type contactRepo struct {
	db *gorm.DB
}

func NewContactRepo(db *gorm.DB) ContactRepo {
	return &contactRepo{
		db: db,
	}
}

func (r *contactRepo) Save(ctx context.Context, contact domain.Contact) error {
	e := entity.Contact{
		OwnerId:      contact.OwnerID,
		Email:        contact.Email,
		SmtpHost:     contact.SMTP.Host,
		SmtpPort:     contact.SMTP.Port,
		SmtpUsername: contact.SMTP.Username,
		SmtpPassword: contact.SMTP.Password,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "smtp_host", "smtp_port", "smtp_username", "smtp_password", "updated_at"}),
	}).Create(&e).Error
	return wrapErr("save contact", err)
}

func (r *contactRepo) FindByOwner(ctx context.Context, ownerID string) (domain.Contact, error) {
	var e entity.Contact
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Contact{}, ErrContactNotFound
	}
	if err != nil {
		return domain.Contact{}, wrapErr("find contact", err)
	}
	return domain.Contact{
		OwnerID: e.OwnerId,
		Email:   e.Email,
		SMTP: domain.SMTPSettings{
			Host:     e.SmtpHost,
			Port:     e.SmtpPort,
			Username: e.SmtpUsername,
			Password: e.SmtpPassword,
		},
	}, nil
}
