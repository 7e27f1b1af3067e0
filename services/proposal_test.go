package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"rfp-backend/models"
)

func testRFP(title, description string) *models.RFP {
	return &models.RFP{Title: title, Description: description}
}

// fakeProposalStore keeps vendors, RFPs and answered pairs in memory and
// records every created proposal.
type fakeProposalStore struct {
	rfps     []models.RFP
	vendors  map[string]models.Vendor
	answered map[string]bool
	created  []models.Proposal
}

func (f *fakeProposalStore) rfpsNewestFirst() ([]models.RFP, error) { return f.rfps, nil }

func (f *fakeProposalStore) vendorByEmail(addr string) (*models.Vendor, error) {
	v, ok := f.vendors[strings.ToLower(addr)]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (f *fakeProposalStore) proposalExists(rfpID, vendorID string) (bool, error) {
	return f.answered[rfpID+"|"+vendorID], nil
}

func (f *fakeProposalStore) createProposal(p *models.Proposal) error {
	f.created = append(f.created, *p)
	return nil
}

type fakeExtractor struct {
	calls int
	out   ParsedProposal
}

func (f *fakeExtractor) ParseVendorResponse(ctx context.Context, body string, rfp *models.RFP) (*ParsedProposal, error) {
	f.calls++
	out := f.out
	return &out, nil
}

func (f *fakeExtractor) Recommend(ctx context.Context, rfp *models.RFP, ranked []models.Proposal) (string, error) {
	return "go with the first vendor", nil
}

type fakeInbox struct {
	emails []InboundEmail
}

func (f *fakeInbox) CheckInbox() ([]InboundEmail, error) { return f.emails, nil }

func newTestService(store *fakeProposalStore, inbox Inbox, ai Extractor) *ProposalService {
	return &ProposalService{store: store, inbox: inbox, ai: ai, now: time.Now}
}

func TestProcessEmail_UnknownSenderDiscarded(t *testing.T) {
	store := &fakeProposalStore{
		rfps:     []models.RFP{{Id: "r1", Title: "Office Laptops"}},
		vendors:  map[string]models.Vendor{},
		answered: map[string]bool{},
	}
	ai := &fakeExtractor{}
	svc := newTestService(store, nil, ai)

	email := InboundEmail{
		From:    "Ghost Vendor <ghost@nowhere.example>",
		Subject: "Re: RFP: Office Laptops",
		Text:    "Total Price: 45000",
	}
	created, err := svc.processEmail(context.Background(), email, store.rfps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("expected message to be discarded, got created=true")
	}
	if len(store.created) != 0 {
		t.Errorf("expected no proposal, got %d", len(store.created))
	}
	if ai.calls != 0 {
		t.Errorf("extraction should not run for unknown senders, ran %d times", ai.calls)
	}
}

func TestProcessEmail_DuplicatePairDiscarded(t *testing.T) {
	store := &fakeProposalStore{
		rfps:     []models.RFP{{Id: "r1", Title: "Office Laptops"}},
		vendors:  map[string]models.Vendor{"sales@acme.example": {Id: "v1", Email: "sales@acme.example"}},
		answered: map[string]bool{"r1|v1": true},
	}
	ai := &fakeExtractor{}
	svc := newTestService(store, nil, ai)

	email := InboundEmail{
		From:    "ACME <Sales@ACME.example>",
		Subject: "Re: RFP: Office Laptops",
		Text:    "Resending our quote",
	}
	created, err := svc.processEmail(context.Background(), email, store.rfps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("expected redelivered message to be discarded, got created=true")
	}
	if len(store.created) != 0 {
		t.Errorf("expected no duplicate proposal, got %d", len(store.created))
	}
	if ai.calls != 0 {
		t.Errorf("extraction should not run for duplicates, ran %d times", ai.calls)
	}
}

func TestProcessEmail_CreatesProposal(t *testing.T) {
	price := 45000.0
	delivery := "20 days"
	store := &fakeProposalStore{
		rfps:     []models.RFP{{Id: "r1", Title: "Office Laptops"}},
		vendors:  map[string]models.Vendor{"sales@acme.example": {Id: "v1", Email: "sales@acme.example"}},
		answered: map[string]bool{},
	}
	ai := &fakeExtractor{out: ParsedProposal{TotalPrice: &price, DeliveryTime: &delivery}}
	svc := newTestService(store, nil, ai)

	email := InboundEmail{
		From:    "ACME <sales@acme.example>",
		Subject: "Re: RFP: Office Laptops",
		Text:    "Total Price: 45000, Delivery: 20 days",
	}
	created, err := svc.processEmail(context.Background(), email, store.rfps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Fatal("expected a proposal to be created")
	}
	if len(store.created) != 1 {
		t.Fatalf("expected 1 proposal, got %d", len(store.created))
	}
	p := store.created[0]
	if p.RFPId != "r1" || p.VendorId != "v1" {
		t.Errorf("proposal bound to wrong pair: rfp=%q vendor=%q", p.RFPId, p.VendorId)
	}
	if p.TotalPrice == nil || *p.TotalPrice != price {
		t.Errorf("expected extracted price %v, got %v", price, p.TotalPrice)
	}
	if p.RawEmail != email.Text {
		t.Errorf("expected raw body preserved, got %q", p.RawEmail)
	}
}

func TestCheckAndProcessEmails_BatchCounts(t *testing.T) {
	price := 45000.0
	store := &fakeProposalStore{
		rfps:     []models.RFP{{Id: "r1", Title: "Office Laptops"}},
		vendors:  map[string]models.Vendor{"sales@acme.example": {Id: "v1", Email: "sales@acme.example"}},
		answered: map[string]bool{},
	}
	inbox := &fakeInbox{emails: []InboundEmail{
		{From: "ACME <sales@acme.example>", Subject: "Re: RFP: Office Laptops", Text: "quote"},
		{From: "Ghost <ghost@nowhere.example>", Subject: "Re: RFP: Office Laptops", Text: "quote"},
		{From: "ACME <sales@acme.example>", Subject: "Meeting notes", Text: "unrelated"},
	}}
	svc := newTestService(store, inbox, &fakeExtractor{out: ParsedProposal{TotalPrice: &price}})

	result, err := svc.CheckAndProcessEmails(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Processed != 1 || result.Total != 3 {
		t.Errorf("expected 1/3 processed, got %d/%d", result.Processed, result.Total)
	}
	if result.Message != "Processed 1 out of 3 emails" {
		t.Errorf("unexpected message %q", result.Message)
	}
}

func TestMatchSubject(t *testing.T) {
	cases := []struct {
		subject string
		title   string
		ok      bool
	}{
		{"Re: RFP: Office Laptops", "Office Laptops", true},
		{"RE: rfp: Office Laptops", "Office Laptops", true},
		{"Re:RFP:Office Laptops", "Office Laptops", true},
		{"Re: RFP:   padded title  ", "padded title", true},
		{"Fwd: Re: RFP: Forwarded Reply", "Forwarded Reply", true},
		{"RFP: Office Laptops", "", false},
		{"Re: Office Laptops", "", false},
		{"Invoice overdue", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		title, ok := MatchSubject(c.subject)
		if ok != c.ok || title != c.title {
			t.Errorf("MatchSubject(%q) = (%q, %v), want (%q, %v)", c.subject, title, ok, c.title, c.ok)
		}
	}
}

func TestMatchRFP_FirstSubstringWins(t *testing.T) {
	rfps := []models.RFP{
		{Id: "new", Title: "Office Laptops 2026"},
		{Id: "old", Title: "Office Laptops"},
	}

	// Both titles contain the candidate; the first (newest) entry wins.
	got := matchRFP(rfps, "Office Laptops")
	if got == nil || got.Id != "new" {
		t.Fatalf("expected first match, got %+v", got)
	}

	// Case-insensitive containment
	got = matchRFP(rfps, "office laptops 2026")
	if got == nil || got.Id != "new" {
		t.Fatalf("expected case-insensitive match, got %+v", got)
	}
}

func TestMatchRFP_NoMatch(t *testing.T) {
	rfps := []models.RFP{{Id: "a", Title: "Office Laptops"}}
	if got := matchRFP(rfps, "Server Racks"); got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
	if got := matchRFP(nil, "anything"); got != nil {
		t.Errorf("expected nil for empty list, got %+v", got)
	}
}
