package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ocumatch/platform/pkg/common/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrAlreadyMatched = errors.New("record already matched")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&donorModel{}, &recipientModel{}, &matchAuditModel{})
}

func (r *Repository) CreateDonor(ctx context.Context, record *models.DonorRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	record.Status = models.StatusActive
	record.CreatedAt = time.Now().UTC()

	model := donorModel{
		ID:                 record.ID,
		Name:               record.Name,
		Age:                record.Age,
		Gender:             record.Gender,
		Contact:            record.Contact,
		Address:            record.Address,
		BloodGroup:         string(record.BloodGroup),
		VisionScore:        record.VisionScore,
		HLAMatchScore:      record.HLAMatchScore,
		TissueQualityScore: record.TissueQualityScore,
		Status:             string(record.Status),
		CreatedAt:          record.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *Repository) CreateRecipient(ctx context.Context, record *models.RecipientRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	record.Status = models.StatusWaiting
	record.CreatedAt = time.Now().UTC()

	model := recipientModel{
		ID:                    record.ID,
		Name:                  record.Name,
		Age:                   record.Age,
		Gender:                record.Gender,
		Contact:               record.Contact,
		Address:               record.Address,
		BloodGroup:            string(record.BloodGroup),
		VisionScore:           record.VisionScore,
		BloodMatchScore:       record.BloodMatchScore,
		HLAMatchScore:         record.HLAMatchScore,
		TissueQualityScore:    record.TissueQualityScore,
		RecipientUrgencyScore: record.RecipientUrgencyScore,
		Status:                string(record.Status),
		CreatedAt:             record.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *Repository) GetDonor(ctx context.Context, id string) (*models.DonorRecord, error) {
	var model donorModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}
	record := model.toRecord()
	return &record, nil
}

func (r *Repository) GetRecipient(ctx context.Context, id string) (*models.RecipientRecord, error) {
	var model recipientModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}
	record := model.toRecord()
	return &record, nil
}

func (r *Repository) ListDonors(ctx context.Context, status string) ([]models.DonorRecord, error) {
	query := r.db.WithContext(ctx).Order("created_at ASC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var rows []donorModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	records := make([]models.DonorRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toRecord())
	}
	return records, nil
}

func (r *Repository) ListRecipients(ctx context.Context, status string) ([]models.RecipientRecord, error) {
	query := r.db.WithContext(ctx).Order("created_at ASC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var rows []recipientModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	records := make([]models.RecipientRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toRecord())
	}
	return records, nil
}

// CommitMatch applies the two-record transition inside one transaction.
// Each side is updated with a compare-and-swap on status, so a record
// matched by a concurrent commit makes the whole transaction roll back
// with ErrAlreadyMatched; no half-matched state is ever visible.
func (r *Repository) CommitMatch(ctx context.Context, donorID, recipientID string) (*models.MatchResult, error) {
	var result models.MatchResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var donor donorModel
		if err := tx.First(&donor, "id = ?", donorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("donor %s: %w", donorID, ErrNotFound)
			}
			return err
		}
		var recipient recipientModel
		if err := tx.First(&recipient, "id = ?", recipientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("recipient %s: %w", recipientID, ErrNotFound)
			}
			return err
		}

		now := time.Now().UTC()
		date := now.Format("2006-01-02")

		donorUpdate := tx.Model(&donorModel{}).
			Where("id = ? AND status = ?", donorID, string(models.StatusActive)).
			Updates(map[string]interface{}{
				"status":        string(models.StatusMatched),
				"matched_with":  recipient.Name,
				"match_date":    now,
				"match_message": fmt.Sprintf("Matched with %s on %s", recipient.Name, date),
			})
		if donorUpdate.Error != nil {
			return donorUpdate.Error
		}
		if donorUpdate.RowsAffected != 1 {
			return fmt.Errorf("donor %s: %w", donorID, ErrAlreadyMatched)
		}

		recipientUpdate := tx.Model(&recipientModel{}).
			Where("id = ? AND status = ?", recipientID, string(models.StatusWaiting)).
			Updates(map[string]interface{}{
				"status":        string(models.StatusMatched),
				"matched_with":  donor.Name,
				"match_date":    now,
				"match_message": fmt.Sprintf("Matched with %s on %s", donor.Name, date),
			})
		if recipientUpdate.Error != nil {
			return recipientUpdate.Error
		}
		if recipientUpdate.RowsAffected != 1 {
			return fmt.Errorf("recipient %s: %w", recipientID, ErrAlreadyMatched)
		}

		audit := matchAuditModel{
			ID:          uuid.New().String(),
			DonorID:     donorID,
			RecipientID: recipientID,
			Attributes: datatypes.JSONMap{
				"donor_name":          donor.Name,
				"recipient_name":      recipient.Name,
				"donor_blood_group":   donor.BloodGroup,
				"donor_vision_score":  donor.VisionScore,
				"recipient_urgency":   recipient.RecipientUrgencyScore,
				"recipient_hla_score": recipient.HLAMatchScore,
			},
			CreatedAt: now,
		}
		if err := tx.Create(&audit).Error; err != nil {
			return err
		}

		var updatedDonor donorModel
		if err := tx.First(&updatedDonor, "id = ?", donorID).Error; err != nil {
			return err
		}
		var updatedRecipient recipientModel
		if err := tx.First(&updatedRecipient, "id = ?", recipientID).Error; err != nil {
			return err
		}

		result = models.MatchResult{
			Donor:     updatedDonor.toRecord(),
			Recipient: updatedRecipient.toRecord(),
			MatchedAt: now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *Repository) ListMatchAudits(ctx context.Context, limit int) ([]models.MatchResult, error) {
	if limit <= 0 {
		limit = 50
	}
	var audits []matchAuditModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&audits).Error; err != nil {
		return nil, err
	}

	results := make([]models.MatchResult, 0, len(audits))
	for _, audit := range audits {
		donor, err := r.GetDonor(ctx, audit.DonorID)
		if err != nil {
			continue
		}
		recipient, err := r.GetRecipient(ctx, audit.RecipientID)
		if err != nil {
			continue
		}
		results = append(results, models.MatchResult{
			Donor:     *donor,
			Recipient: *recipient,
			MatchedAt: audit.CreatedAt,
		})
	}
	return results, nil
}
