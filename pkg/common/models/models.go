package models

import (
	"time"
)

// Blood groups accepted at intake.
type BloodGroup string

const (
	BloodAPositive  BloodGroup = "A+"
	BloodANegative  BloodGroup = "A-"
	BloodBPositive  BloodGroup = "B+"
	BloodBNegative  BloodGroup = "B-"
	BloodABPositive BloodGroup = "AB+"
	BloodABNegative BloodGroup = "AB-"
	BloodOPositive  BloodGroup = "O+"
	BloodONegative  BloodGroup = "O-"
)

var bloodGroups = map[BloodGroup]struct{}{
	BloodAPositive: {}, BloodANegative: {},
	BloodBPositive: {}, BloodBNegative: {},
	BloodABPositive: {}, BloodABNegative: {},
	BloodOPositive: {}, BloodONegative: {},
}

func (b BloodGroup) Valid() bool {
	_, ok := bloodGroups[b]
	return ok
}

// Record lifecycle. Donors start Active, recipients start Waiting; both
// transition to Matched exactly once.
type RecordStatus string

const (
	StatusActive  RecordStatus = "Active"
	StatusWaiting RecordStatus = "Waiting"
	StatusMatched RecordStatus = "Matched"
)

type DonorRecord struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name"`
	Age                int          `json:"age"`
	Gender             string       `json:"gender"`
	Contact            string       `json:"contact"`
	Address            string       `json:"address"`
	BloodGroup         BloodGroup   `json:"bloodGroup"`
	VisionScore        float64      `json:"visionScore"`
	HLAMatchScore      float64      `json:"hlaMatchScore"`
	TissueQualityScore float64      `json:"tissueQualityScore"`
	Status             RecordStatus `json:"status"`
	MatchedWith        string       `json:"matchedWith,omitempty"`
	MatchDate          *time.Time   `json:"matchDate,omitempty"`
	MatchMessage       string       `json:"matchMessage,omitempty"`
	CreatedAt          time.Time    `json:"createdAt"`
}

func (d DonorRecord) Matched() bool {
	return d.Status == StatusMatched
}

type RecipientRecord struct {
	ID                    string       `json:"id"`
	Name                  string       `json:"name"`
	Age                   int          `json:"age"`
	Gender                string       `json:"gender"`
	Contact               string       `json:"contact"`
	Address               string       `json:"address"`
	BloodGroup            BloodGroup   `json:"bloodGroup"`
	VisionScore           float64      `json:"visionScore"`
	BloodMatchScore       float64      `json:"bloodMatchScore"`
	HLAMatchScore         float64      `json:"hlaMatchScore"`
	TissueQualityScore    float64      `json:"tissueQualityScore"`
	RecipientUrgencyScore float64      `json:"recipientUrgencyScore"`
	Status                RecordStatus `json:"status"`
	MatchedWith           string       `json:"matchedWith,omitempty"`
	MatchDate             *time.Time   `json:"matchDate,omitempty"`
	MatchMessage          string       `json:"matchMessage,omitempty"`
	CreatedAt             time.Time    `json:"createdAt"`
}

func (r RecipientRecord) Matched() bool {
	return r.Status == StatusMatched
}

// DonorIntake carries the raw clinical measurements collected at
// registration. Composites are derived once from these and persisted;
// pointer fields distinguish a missing sub-factor from a genuine zero.
type DonorIntake struct {
	Name          string   `json:"name"`
	Age           int      `json:"age"`
	Gender        string   `json:"gender"`
	Contact       string   `json:"contact"`
	Address       string   `json:"address"`
	BloodGroup    string   `json:"bloodGroup"`
	ClarityScore  *float64 `json:"clarityScore"`
	OpacityScore  *float64 `json:"opacityScore"`
	HLAA          *float64 `json:"hla_a"`
	HLAB          *float64 `json:"hla_b"`
	HLAC          *float64 `json:"hla_c"`
	HLADR         *float64 `json:"hla_dr"`
	HLADQ         *float64 `json:"hla_dq"`
	TissueQuality *float64 `json:"tissueQuality"`
	StorageDays   *float64 `json:"storageDays"`
}

// RecipientIntake carries composites entered directly by clinicians;
// recipients have no raw sub-factors.
type RecipientIntake struct {
	Name                  string   `json:"name"`
	Age                   int      `json:"age"`
	Gender                string   `json:"gender"`
	Contact               string   `json:"contact"`
	Address               string   `json:"address"`
	BloodGroup            string   `json:"bloodGroup"`
	VisionScore           *float64 `json:"visionScore"`
	BloodMatchScore       *float64 `json:"bloodMatchScore"`
	HLAMatchScore         *float64 `json:"hlaMatchScore"`
	TissueQualityScore    *float64 `json:"tissueQualityScore"`
	RecipientUrgencyScore *float64 `json:"recipientUrgencyScore"`
}

type MatchRequest struct {
	DonorID     string `json:"donorId"`
	RecipientID string `json:"recipientId"`
}

// MatchResult is the committed pair as returned by the store after the
// two-record transition; both sides are Matched or the commit failed.
type MatchResult struct {
	Donor     DonorRecord     `json:"donor"`
	Recipient RecipientRecord `json:"recipient"`
	MatchedAt time.Time       `json:"matchedAt"`
}

// Event is the bus envelope shared by all services.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // donor.registered, recipient.registered, match.committed
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}
