package registry

import (
	"time"

	"github.com/ocumatch/platform/pkg/common/models"
	"gorm.io/datatypes"
)

type donorModel struct {
	ID                 string     `gorm:"primaryKey;column:id"`
	Name               string     `gorm:"column:name"`
	Age                int        `gorm:"column:age"`
	Gender             string     `gorm:"column:gender"`
	Contact            string     `gorm:"column:contact"`
	Address            string     `gorm:"column:address"`
	BloodGroup         string     `gorm:"column:blood_group;index"`
	VisionScore        float64    `gorm:"column:vision_score"`
	HLAMatchScore      float64    `gorm:"column:hla_match_score"`
	TissueQualityScore float64    `gorm:"column:tissue_quality_score"`
	Status             string     `gorm:"column:status;index"`
	MatchedWith        string     `gorm:"column:matched_with"`
	MatchDate          *time.Time `gorm:"column:match_date"`
	MatchMessage       string     `gorm:"column:match_message"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
}

func (donorModel) TableName() string { return "donors" }

type recipientModel struct {
	ID                    string     `gorm:"primaryKey;column:id"`
	Name                  string     `gorm:"column:name"`
	Age                   int        `gorm:"column:age"`
	Gender                string     `gorm:"column:gender"`
	Contact               string     `gorm:"column:contact"`
	Address               string     `gorm:"column:address"`
	BloodGroup            string     `gorm:"column:blood_group;index"`
	VisionScore           float64    `gorm:"column:vision_score"`
	BloodMatchScore       float64    `gorm:"column:blood_match_score"`
	HLAMatchScore         float64    `gorm:"column:hla_match_score"`
	TissueQualityScore    float64    `gorm:"column:tissue_quality_score"`
	RecipientUrgencyScore float64    `gorm:"column:recipient_urgency_score"`
	Status                string     `gorm:"column:status;index"`
	MatchedWith           string     `gorm:"column:matched_with"`
	MatchDate             *time.Time `gorm:"column:match_date"`
	MatchMessage          string     `gorm:"column:match_message"`
	CreatedAt             time.Time  `gorm:"column:created_at"`
}

func (recipientModel) TableName() string { return "recipients" }

type matchAuditModel struct {
	ID          string            `gorm:"primaryKey;column:id"`
	DonorID     string            `gorm:"column:donor_id;index"`
	RecipientID string            `gorm:"column:recipient_id;index"`
	Attributes  datatypes.JSONMap `gorm:"column:attributes"`
	CreatedAt   time.Time         `gorm:"column:created_at"`
}

func (matchAuditModel) TableName() string { return "match_audits" }

func (m donorModel) toRecord() models.DonorRecord {
	return models.DonorRecord{
		ID:                 m.ID,
		Name:               m.Name,
		Age:                m.Age,
		Gender:             m.Gender,
		Contact:            m.Contact,
		Address:            m.Address,
		BloodGroup:         models.BloodGroup(m.BloodGroup),
		VisionScore:        m.VisionScore,
		HLAMatchScore:      m.HLAMatchScore,
		TissueQualityScore: m.TissueQualityScore,
		Status:             models.RecordStatus(m.Status),
		MatchedWith:        m.MatchedWith,
		MatchDate:          m.MatchDate,
		MatchMessage:       m.MatchMessage,
		CreatedAt:          m.CreatedAt,
	}
}

func (m recipientModel) toRecord() models.RecipientRecord {
	return models.RecipientRecord{
		ID:                    m.ID,
		Name:                  m.Name,
		Age:                   m.Age,
		Gender:                m.Gender,
		Contact:               m.Contact,
		Address:               m.Address,
		BloodGroup:            models.BloodGroup(m.BloodGroup),
		VisionScore:           m.VisionScore,
		BloodMatchScore:       m.BloodMatchScore,
		HLAMatchScore:         m.HLAMatchScore,
		TissueQualityScore:    m.TissueQualityScore,
		RecipientUrgencyScore: m.RecipientUrgencyScore,
		Status:                models.RecordStatus(m.Status),
		MatchedWith:           m.MatchedWith,
		MatchDate:             m.MatchDate,
		MatchMessage:          m.MatchMessage,
		CreatedAt:             m.CreatedAt,
	}
}
