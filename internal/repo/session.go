package repo

import (
	"context"
	"errors"
	"time"

	"github.com/KNICEX/price-watch/internal/domain"
	"github.com/KNICEX/price-watch/internal/entity"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SessionRepo 监控会话, 价格样本和告警记录的存储
// 所有更新都以 session id 为条件, 不依赖调用方的单活跃会话约束
type SessionRepo interface {
	FindByID(ctx context.Context, id string) (domain.Session, error)
	FindActiveByOwner(ctx context.Context, ownerID string) (domain.Session, error)
	FindByOwnerAndSymbol(ctx context.Context, ownerID, symbol string) (domain.Session, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Session, error)
	ListActive(ctx context.Context) ([]domain.Session, error)

	Create(ctx context.Context, session domain.Session) error
	// Reactivate replaces the thresholds, clears both flags and marks the session active.
	Reactivate(ctx context.Context, id string, buy, sell decimal.Decimal) error
	UpdateStatus(ctx context.Context, id string, status domain.SessionStatus) error
	SetAlertFlag(ctx context.Context, id string, kind domain.AlertKind, value bool) error
	ResetFlags(ctx context.Context, id string) error

	AppendPriceSample(ctx context.Context, sample domain.PriceSample) error
	AppendAlertRecord(ctx context.Context, record domain.AlertRecord) error
	// RecordAlert sets the flag of record.Kind and writes the record in one transaction.
	// It fails with ErrAlertAlreadyRecorded when the flag is already set.
	RecordAlert(ctx context.Context, record domain.AlertRecord) error

	ListAlertHistory(ctx context.Context, id string, limit int) ([]domain.AlertRecord, error)
	ListPriceHistory(ctx context.Context, id string, since time.Time) ([]domain.PriceSample, error)
}

type sessionRepo struct {
	db *gorm.DB
}

func NewSessionRepo(db *gorm.DB) SessionRepo {
	return &sessionRepo{
		db: db,
	}
}

func (r *sessionRepo) findOne(ctx context.Context, op string, query any, args ...any) (domain.Session, error) {
	var s entity.Session
	err := r.db.WithContext(ctx).Where(query, args...).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, wrapErr(op, err)
	}
	return fromSessionEntity(s)
}

func (r *sessionRepo) FindByID(ctx context.Context, id string) (domain.Session, error) {
	return r.findOne(ctx, "find session", "id = ?", id)
}

func (r *sessionRepo) FindActiveByOwner(ctx context.Context, ownerID string) (domain.Session, error) {
	return r.findOne(ctx, "find active session", "owner_id = ? AND status = ?", ownerID, entity.SessionStatusActive)
}

func (r *sessionRepo) FindByOwnerAndSymbol(ctx context.Context, ownerID, symbol string) (domain.Session, error) {
	return r.findOne(ctx, "find session by symbol", "owner_id = ? AND symbol = ?", ownerID, symbol)
}

func (r *sessionRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Session, error) {
	var sessions []entity.Session
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&sessions).Error
	if err != nil {
		return nil, wrapErr("list sessions", err)
	}
	return fromSessionEntities(sessions)
}

func (r *sessionRepo) ListActive(ctx context.Context) ([]domain.Session, error) {
	var sessions []entity.Session
	err := r.db.WithContext(ctx).Where("status = ?", entity.SessionStatusActive).Find(&sessions).Error
	if err != nil {
		return nil, wrapErr("list active sessions", err)
	}
	return fromSessionEntities(sessions)
}

func (r *sessionRepo) Create(ctx context.Context, session domain.Session) error {
	e := toSessionEntity(session)
	return wrapErr("create session", r.db.WithContext(ctx).Create(&e).Error)
}

// updateByID 按 id 更新, 没有匹配的行时返回 ErrSessionNotFound
func (r *sessionRepo) updateByID(ctx context.Context, op, id string, values map[string]any) error {
	values["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&entity.Session{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return wrapErr(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *sessionRepo) Reactivate(ctx context.Context, id string, buy, sell decimal.Decimal) error {
	return r.updateByID(ctx, "reactivate session", id, map[string]any{
		"buy_threshold":   buy.String(),
		"sell_threshold":  sell.String(),
		"status":          entity.SessionStatusActive,
		"buy_alert_sent":  false,
		"sell_alert_sent": false,
	})
}

func (r *sessionRepo) UpdateStatus(ctx context.Context, id string, status domain.SessionStatus) error {
	return r.updateByID(ctx, "update status", id, map[string]any{
		"status": string(status),
	})
}

func (r *sessionRepo) SetAlertFlag(ctx context.Context, id string, kind domain.AlertKind, value bool) error {
	col, err := flagColumn(kind)
	if err != nil {
		return err
	}
	return r.updateByID(ctx, "set alert flag", id, map[string]any{
		col: value,
	})
}

func (r *sessionRepo) ResetFlags(ctx context.Context, id string) error {
	return r.updateByID(ctx, "reset flags", id, map[string]any{
		"buy_alert_sent":  false,
		"sell_alert_sent": false,
	})
}

func (r *sessionRepo) AppendPriceSample(ctx context.Context, sample domain.PriceSample) error {
	e := entity.PriceSample{
		SessionId:  sample.SessionID,
		Price:      sample.Price.String(),
		ObservedAt: sample.ObservedAt,
	}
	return wrapErr("append price sample", r.db.WithContext(ctx).Create(&e).Error)
}

func (r *sessionRepo) AppendAlertRecord(ctx context.Context, record domain.AlertRecord) error {
	if !record.Kind.Valid() {
		return wrapErr("append alert record", errors.New("unknown alert kind "+record.Kind.ToString()))
	}
	e := toAlertRecordEntity(record)
	return wrapErr("append alert record", r.db.WithContext(ctx).Create(&e).Error)
}

func (r *sessionRepo) RecordAlert(ctx context.Context, record domain.AlertRecord) error {
	col, err := flagColumn(record.Kind)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 条件更新: 只有标记仍为 false 时才写入记录
		res := tx.Model(&entity.Session{}).
			Where("id = ? AND "+col+" = ?", record.SessionID, false).
			Updates(map[string]any{col: true, "updated_at": time.Now().UTC()})
		if res.Error != nil {
			return wrapErr("set alert flag", res.Error)
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&entity.Session{}).Where("id = ?", record.SessionID).Count(&count).Error; err != nil {
				return wrapErr("count session", err)
			}
			if count == 0 {
				return ErrSessionNotFound
			}
			return ErrAlertAlreadyRecorded
		}
		e := toAlertRecordEntity(record)
		return wrapErr("append alert record", tx.Create(&e).Error)
	})
}

func (r *sessionRepo) ListAlertHistory(ctx context.Context, id string, limit int) ([]domain.AlertRecord, error) {
	var records []entity.AlertRecord
	err := r.db.WithContext(ctx).
		Where("session_id = ?", id).
		Order("sent_at DESC, id DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, wrapErr("list alert history", err)
	}
	res := make([]domain.AlertRecord, 0, len(records))
	for _, e := range records {
		rec, err := fromAlertRecordEntity(e)
		if err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, nil
}

func (r *sessionRepo) ListPriceHistory(ctx context.Context, id string, since time.Time) ([]domain.PriceSample, error) {
	var samples []entity.PriceSample
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND observed_at >= ?", id, since.UTC()).
		Order("observed_at ASC, id ASC").
		Find(&samples).Error
	if err != nil {
		return nil, wrapErr("list price history", err)
	}
	res := make([]domain.PriceSample, 0, len(samples))
	for _, e := range samples {
		s, err := fromPriceSampleEntity(e)
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, nil
}
