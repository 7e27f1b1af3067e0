package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"rfp-backend/models"
	"rfp-backend/scoring"

	"gorm.io/gorm"
)

// ErrRFPNotFound is returned when an operation references an unknown RFP.
var ErrRFPNotFound = errors.New("RFP not found")

// Inbox is the slice of MailService the matcher needs.
type Inbox interface {
	CheckInbox() ([]InboundEmail, error)
}

// Extractor is the slice of AIService the pipeline needs.
type Extractor interface {
	ParseVendorResponse(ctx context.Context, body string, rfp *models.RFP) (*ParsedProposal, error)
	Recommend(ctx context.Context, rfp *models.RFP, ranked []models.Proposal) (string, error)
}

// proposalStore is the narrow persistence surface the matcher runs against,
// split out from gorm so the discard paths can be exercised with a fake.
type proposalStore interface {
	rfpsNewestFirst() ([]models.RFP, error)
	vendorByEmail(addr string) (*models.Vendor, error)
	proposalExists(rfpID, vendorID string) (bool, error)
	createProposal(p *models.Proposal) error
}

type gormProposalStore struct {
	db *gorm.DB
}

func (s gormProposalStore) rfpsNewestFirst() ([]models.RFP, error) {
	var rfps []models.RFP
	err := s.db.Order("created_at DESC").Find(&rfps).Error
	return rfps, err
}

// vendorByEmail returns nil without error for unknown addresses. Stored
// casing is preserved, but gateways rewrite address case, so the lookup
// itself is case-insensitive.
func (s gormProposalStore) vendorByEmail(addr string) (*models.Vendor, error) {
	var vendor models.Vendor
	err := s.db.Where("LOWER(email) = LOWER(?)", addr).First(&vendor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (s gormProposalStore) proposalExists(rfpID, vendorID string) (bool, error) {
	var existing models.Proposal
	err := s.db.Where("rfp_id = ? AND vendor_id = ?", rfpID, vendorID).First(&existing).Error
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

func (s gormProposalStore) createProposal(p *models.Proposal) error {
	return s.db.Create(p).Error
}

// ProposalService correlates inbound vendor mail with outstanding RFPs and
// runs the comparison pipeline. All collaborators are injected at
// construction; the clock is injectable so scoring runs against a fixed
// reference date in tests.
type ProposalService struct {
	db    *gorm.DB
	store proposalStore
	inbox Inbox
	ai    Extractor
	now   func() time.Time
}

func NewProposalService(db *gorm.DB, inbox Inbox, ai Extractor, now func() time.Time) *ProposalService {
	if now == nil {
		now = time.Now
	}
	return &ProposalService{db: db, store: gormProposalStore{db: db}, inbox: inbox, ai: ai, now: now}
}

var subjectPattern = regexp.MustCompile(`(?i)Re:\s*RFP:\s*(.+)`)

// MatchSubject extracts the candidate RFP title from a reply subject line.
func MatchSubject(subject string) (string, bool) {
	m := subjectPattern.FindStringSubmatch(subject)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// matchRFP returns the first RFP whose title contains the candidate title,
// case-insensitively. First match wins: titles are not unique, so when one
// title contains another the newest RFP silently takes the reply. A reply
// token in the outbound mail would be a sturdier correlation key.
func matchRFP(rfps []models.RFP, title string) *models.RFP {
	needle := strings.ToLower(title)
	for i := range rfps {
		if strings.Contains(strings.ToLower(rfps[i].Title), needle) {
			return &rfps[i]
		}
	}
	return nil
}

// CheckResult is the outcome of one inbox batch.
type CheckResult struct {
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
	Message   string `json:"message"`
}

// CheckAndProcessEmails pulls unseen inbox messages and turns each one that
// matches a known vendor and RFP into a proposal. Messages are handled
// independently: an unknown sender, unmatched subject, duplicate, or
// extraction failure skips that message only. Processed counts successes;
// the remainder up to Total failed or was discarded.
func (s *ProposalService) CheckAndProcessEmails(ctx context.Context) (*CheckResult, error) {
	log.Println("checking for new vendor responses...")

	emails, err := s.inbox.CheckInbox()
	if err != nil {
		return nil, fmt.Errorf("check inbox: %w", err)
	}
	if len(emails) == 0 {
		return &CheckResult{Processed: 0, Total: 0, Message: "No new emails found"}, nil
	}

	// Newest first, the order the title heuristic resolves against.
	rfps, err := s.store.rfpsNewestFirst()
	if err != nil {
		return nil, fmt.Errorf("load RFPs: %w", err)
	}

	processed := 0
	for _, email := range emails {
		created, err := s.processEmail(ctx, email, rfps)
		if err != nil {
			log.Printf("error processing email from %s: %v", email.From, err)
			continue
		}
		if created {
			processed++
		}
	}

	return &CheckResult{
		Processed: processed,
		Total:     len(emails),
		Message:   fmt.Sprintf("Processed %d out of %d emails", processed, len(emails)),
	}, nil
}

// processEmail resolves one inbound message to a (RFP, vendor) pair and
// persists the extracted proposal. It returns (false, nil) for messages that
// are discarded on purpose and an error only for real failures.
func (s *ProposalService) processEmail(ctx context.Context, email InboundEmail, rfps []models.RFP) (bool, error) {
	senderAddr := ExtractAddress(email.From)

	vendor, err := s.store.vendorByEmail(senderAddr)
	if err != nil {
		return false, fmt.Errorf("vendor lookup: %w", err)
	}
	if vendor == nil {
		log.Printf("email from unknown vendor: %s", senderAddr)
		return false, nil
	}

	title, ok := MatchSubject(email.Subject)
	if !ok {
		log.Printf("email subject doesn't match RFP pattern: %s", email.Subject)
		return false, nil
	}

	rfp := matchRFP(rfps, title)
	if rfp == nil {
		log.Printf("no matching RFP found for: %s", title)
		return false, nil
	}

	// One proposal per (RFP, vendor) pair; redelivered mail is dropped.
	exists, err := s.store.proposalExists(rfp.Id, vendor.Id)
	if err != nil {
		return false, fmt.Errorf("duplicate check: %w", err)
	}
	if exists {
		log.Printf("proposal already exists for RFP %s and vendor %s", rfp.Id, vendor.Id)
		return false, nil
	}

	body := email.BodyText()
	parsed, err := s.ai.ParseVendorResponse(ctx, body, rfp)
	if err != nil {
		return false, fmt.Errorf("extraction: %w", err)
	}

	parsedJSON, err := json.Marshal(parsed)
	if err != nil {
		return false, fmt.Errorf("encode parsed data: %w", err)
	}

	proposal := models.Proposal{
		RFPId:        rfp.Id,
		VendorId:     vendor.Id,
		RawEmail:     body,
		ParsedData:   parsedJSON,
		TotalPrice:   parsed.TotalPrice,
		DeliveryTime: parsed.DeliveryTime,
		Terms:        parsed.Terms,
	}
	if err := s.store.createProposal(&proposal); err != nil {
		return false, fmt.Errorf("create proposal: %w", err)
	}

	log.Printf("proposal created: RFP %s, vendor %s (price=%v delivery=%v terms=%v)",
		rfp.Id, vendor.Id, parsed.TotalPrice, textOr(parsed.DeliveryTime, "-"), textOr(parsed.Terms, "-"))
	return true, nil
}

// noProposalsMessage is the fixed narrative for the valid "nothing received
// yet" terminal state.
const noProposalsMessage = "No proposals have been received yet. Once vendors respond to your RFP, their proposals will appear here for comparison."

// ComparisonResult is the consumer-facing ranked comparison.
type ComparisonResult struct {
	Proposals      []models.Proposal `json:"proposals"`
	Recommendation string            `json:"recommendation"`
	TopChoice      *models.Proposal  `json:"topChoice"`
	RFP            *models.RFP       `json:"rfp"`
}

// CompareProposals scores every proposal for the RFP, ranks them descending,
// persists score and breakdown back onto each proposal, and attaches the
// narrative recommendation. Recomputation overwrites prior scores.
func (s *ProposalService) CompareProposals(ctx context.Context, rfpID string) (*ComparisonResult, error) {
	var rfp models.RFP
	if err := s.db.First(&rfp, "id = ?", rfpID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRFPNotFound
		}
		return nil, fmt.Errorf("load RFP: %w", err)
	}

	var proposals []models.Proposal
	if err := s.db.Preload("Vendor").Where("rfp_id = ?", rfpID).
		Order("received_at DESC").Find(&proposals).Error; err != nil {
		return nil, fmt.Errorf("load proposals: %w", err)
	}

	if len(proposals) == 0 {
		log.Printf("no proposals found for RFP %s", rfpID)
		return &ComparisonResult{
			Proposals:      []models.Proposal{},
			Recommendation: noProposalsMessage,
			TopChoice:      nil,
			RFP:            &rfp,
		}, nil
	}

	now := s.now()
	req := scoring.Request{Budget: rfp.Budget, Deadline: rfp.Deadline, PaymentTerms: rfp.PaymentTerms}
	resps := make([]scoring.Response, len(proposals))
	for i, p := range proposals {
		resps[i] = scoring.Response{TotalPrice: p.TotalPrice, DeliveryTime: p.DeliveryTime, Terms: p.Terms}
	}

	ranked := scoring.RankResponses(resps, req, now)

	sorted := make([]models.Proposal, len(ranked))
	for pos, r := range ranked {
		p := proposals[r.Index]
		total := r.Total
		p.Score = &total
		factorsJSON, err := json.Marshal(r.Factors)
		if err != nil {
			return nil, fmt.Errorf("encode score factors: %w", err)
		}
		p.ScoreFactors = factorsJSON
		sorted[pos] = p
	}

	recommendation, err := s.ai.Recommend(ctx, &rfp, sorted)
	if err != nil {
		return nil, fmt.Errorf("generate recommendation: %w", err)
	}

	// One UPDATE per proposal writes score and breakdown together.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i := range sorted {
			p := &sorted[i]
			p.AISummary = recommendation
			err := tx.Model(&models.Proposal{}).Where("id = ?", p.Id).
				Updates(map[string]any{
					"score":         *p.Score,
					"score_factors": p.ScoreFactors,
					"ai_summary":    recommendation,
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("persist scores: %w", err)
	}

	log.Printf("compared %d proposals for RFP %s", len(sorted), rfpID)

	return &ComparisonResult{
		Proposals:      sorted,
		Recommendation: recommendation,
		TopChoice:      &sorted[0],
		RFP:            &rfp,
	}, nil
}
