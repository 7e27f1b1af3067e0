package services

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/smtp"
	"regexp"
	"strings"
	"time"

	"rfp-backend/models"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	gomail "github.com/emersion/go-message/mail"
	"golang.org/x/net/html"
)

// SMTPConfig holds outbound mail settings.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// IMAPConfig holds inbox polling settings.
type IMAPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
}

// InboundEmail is one message pulled from the inbox.
type InboundEmail struct {
	From      string
	Subject   string
	Text      string
	HTML      string
	Date      time.Time
	MessageID string
}

// BodyText returns the plain-text body, converting from HTML when the
// message carried no text part.
func (e InboundEmail) BodyText() string {
	if e.Text != "" {
		return e.Text
	}
	return htmlToText(e.HTML)
}

// MailService dispatches RFPs over SMTP and polls the inbox over IMAP.
type MailService struct {
	smtp SMTPConfig
	imap IMAPConfig
}

func NewMailService(smtpCfg SMTPConfig, imapCfg IMAPConfig) *MailService {
	return &MailService{smtp: smtpCfg, imap: imapCfg}
}

// SendRFP mails the request to every vendor in the list. The subject line
// "RFP: <title>" is what replies are later matched against, so it must stay
// in sync with the subject pattern in the proposal matcher.
func (m *MailService) SendRFP(rfp *models.RFP, vendors []models.Vendor) error {
	log.Printf("sending RFP %q to %d vendors", rfp.Title, len(vendors))

	body := htmlToText(renderRFPBody(rfp))
	subject := "RFP: " + rfp.Title

	auth := smtp.PlainAuth("", m.smtp.User, m.smtp.Password, m.smtp.Host)
	addr := fmt.Sprintf("%s:%d", m.smtp.Host, m.smtp.Port)

	for _, vendor := range vendors {
		headers := []string{
			"From: " + m.smtp.From,
			"To: " + vendor.Email,
			"Subject: " + subject,
			"",
			body,
		}
		msg := []byte(strings.Join(headers, "\r\n") + "\r\n")

		if err := smtp.SendMail(addr, auth, m.smtp.From, []string{vendor.Email}, msg); err != nil {
			return fmt.Errorf("send RFP to %s: %w", vendor.Email, err)
		}
	}
	return nil
}

// renderRFPBody builds the outbound request as simple HTML; it is flattened
// to plain text before sending.
func renderRFPBody(rfp *models.RFP) string {
	var items []models.RFPItem
	_ = json.Unmarshal(rfp.Items, &items)

	var itemsList strings.Builder
	for _, item := range items {
		itemsList.WriteString(fmt.Sprintf("<li>%dx %s", item.Quantity, item.Name))
		if item.Specifications != "" {
			itemsList.WriteString(" (" + item.Specifications + ")")
		}
		itemsList.WriteString("</li>")
	}
	if itemsList.Len() == 0 {
		itemsList.WriteString("<li>See description for details</li>")
	}

	orDiscuss := func(s *string) string {
		if s != nil && *s != "" {
			return *s
		}
		return "To be discussed"
	}
	deadline := "To be discussed"
	if rfp.Deadline != nil {
		deadline = rfp.Deadline.Format("2006-01-02")
	}
	budget := rfp.Budget
	if budget == "" {
		budget = "To be discussed"
	}

	return fmt.Sprintf(`<div>
<h2>Request for Proposal</h2>
<h3>%s</h3>
<p>Description:</p><p>%s</p>
<p>Items Required:</p><ul>%s</ul>
<p>Budget: %s</p>
<p>Deadline: %s</p>
<p>Payment Terms: %s</p>
<p>Warranty: %s</p>
<p>Please reply to this email with your proposal including:</p>
<ul><li>Total price quote</li><li>Delivery timeframe</li><li>Payment terms</li><li>Warranty details</li><li>Any additional information</li></ul>
<p>This is an automated email from the RFP Management System.</p>
</div>`,
		rfp.Title, rfp.Description, itemsList.String(), budget, deadline,
		orDiscuss(rfp.PaymentTerms), orDiscuss(rfp.Warranty))
}

// CheckInbox fetches unseen messages from INBOX and marks them seen. Each
// message is reduced to the sender, subject and body parts the matcher needs.
func (m *MailService) CheckInbox() ([]InboundEmail, error) {
	addr := fmt.Sprintf("%s:%d", m.imap.Host, m.imap.Port)
	c, err := client.DialTLS(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("imap dial: %w", err)
	}
	defer c.Logout()

	if err := c.Login(m.imap.User, m.imap.Password); err != nil {
		return nil, fmt.Errorf("imap login: %w", err)
	}
	if _, err := c.Select("INBOX", false); err != nil {
		return nil, fmt.Errorf("imap select: %w", err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	ids, err := c.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("imap search: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	log.Printf("found %d new emails", len(ids))

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)

	// Fetching BODY[] (no peek) sets \Seen on the server.
	section := &imap.BodySectionName{}
	messages := make(chan *imap.Message, len(ids))
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, []imap.FetchItem{section.FetchItem()}, messages)
	}()

	var emails []InboundEmail
	for msg := range messages {
		body := msg.GetBody(section)
		if body == nil {
			continue
		}
		email, err := parseInbound(body)
		if err != nil {
			log.Printf("skipping unparseable message: %v", err)
			continue
		}
		emails = append(emails, email)
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("imap fetch: %w", err)
	}
	return emails, nil
}

func parseInbound(r io.Reader) (InboundEmail, error) {
	mr, err := gomail.CreateReader(r)
	if err != nil {
		return InboundEmail{}, err
	}

	var email InboundEmail
	email.From, _ = mr.Header.Text("From")
	email.Subject, _ = mr.Header.Subject()
	email.Date, _ = mr.Header.Date()
	email.MessageID, _ = mr.Header.MessageID()

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return InboundEmail{}, err
		}
		header, ok := part.Header.(*gomail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := header.ContentType()
		content, _ := io.ReadAll(part.Body)
		switch contentType {
		case "text/plain":
			if email.Text == "" {
				email.Text = string(content)
			}
		case "text/html":
			if email.HTML == "" {
				email.HTML = string(content)
			}
		}
	}
	return email, nil
}

var addressPattern = regexp.MustCompile(`<(.+?)>`)

// ExtractAddress pulls the bare address out of a "Display Name <addr>"
// sender field, falling back to the raw string when no angle brackets exist.
func ExtractAddress(from string) string {
	if m := addressPattern.FindStringSubmatch(from); m != nil {
		return m[1]
	}
	return from
}

// htmlToText flattens HTML content to plain text, inserting line breaks for
// block elements and bullets for list items.
func htmlToText(src string) string {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return src
	}

	var text strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			text.WriteString(n.Data)
		case html.ElementNode:
			switch n.Data {
			case "p", "div", "br", "h1", "h2", "h3", "h4", "h5", "h6", "table", "tr":
				text.WriteString("\n")
			case "li":
				text.WriteString("\n- ")
			case "td", "th":
				text.WriteString(" | ")
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	result := strings.ReplaceAll(text.String(), "\n\n\n", "\n\n")
	return strings.TrimSpace(result)
}
